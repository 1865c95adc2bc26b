package orchestrator

import (
	"sync"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// Metrics accumulates orchestrator counters under a single mutex (spec
// §4.3: "Metrics are always updated", even on the error path).
type Metrics struct {
	mu        sync.Mutex
	requests  int64
	errors    int64
	attempts  map[aimodels.Provider]int64
	successes map[aimodels.Provider]int64
	failures  map[aimodels.Provider]int64
}

// MetricsSnapshot is an immutable copy safe to hand to callers.
type MetricsSnapshot struct {
	Requests  int64
	Errors    int64
	Attempts  map[aimodels.Provider]int64
	Successes map[aimodels.Provider]int64
	Failures  map[aimodels.Provider]int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		attempts:  map[aimodels.Provider]int64{},
		successes: map[aimodels.Provider]int64{},
		failures:  map[aimodels.Provider]int64{},
	}
}

func (m *Metrics) IncRequests() {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()
}

func (m *Metrics) IncErrors() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}

func (m *Metrics) IncAttempt(p aimodels.Provider) {
	m.mu.Lock()
	m.attempts[p]++
	m.mu.Unlock()
}

func (m *Metrics) IncSuccess(p aimodels.Provider) {
	m.mu.Lock()
	m.successes[p]++
	m.mu.Unlock()
}

func (m *Metrics) IncFailure(p aimodels.Provider) {
	m.mu.Lock()
	m.failures[p]++
	m.mu.Unlock()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := MetricsSnapshot{
		Requests:  m.requests,
		Errors:    m.errors,
		Attempts:  make(map[aimodels.Provider]int64, len(m.attempts)),
		Successes: make(map[aimodels.Provider]int64, len(m.successes)),
		Failures:  make(map[aimodels.Provider]int64, len(m.failures)),
	}
	for k, v := range m.attempts {
		snap.Attempts[k] = v
	}
	for k, v := range m.successes {
		snap.Successes[k] = v
	}
	for k, v := range m.failures {
		snap.Failures[k] = v
	}
	return snap
}
