// Package flow implements spec §4.5: the per-user conversation flow
// manager, which serializes turns, tracks running classification
// statistics, and plans next actions via internal/dispatcher.
package flow

import (
	"sync"
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/classifier"
)

// SessionState is a single user's accumulated conversation state (spec
// §4.5 step 3).
type SessionState struct {
	UserID            string
	TurnCount         int
	CurrentIntent     classifier.Intent
	SuccessfulIntents int
	FailedIntents     int
	AvgConfidence     float64
	IncompleteEntities []string
	LastUpdated       time.Time
}

// snapshot returns a value copy safe to hand to callers outside the lock.
func (s SessionState) snapshot() SessionState {
	cp := s
	cp.IncompleteEntities = append([]string(nil), s.IncompleteEntities...)
	return cp
}

// sessionStore holds one SessionState per user behind one mutex per user,
// grounded on the teacher's per-key sync.Map + updater-closure pattern
// (pkg/simpleruntime/session_store.go's sessionStoreLock/updateSessionEntry).
type sessionStore struct {
	locks sync.Map // userID -> *sync.Mutex
	data  sync.Map // userID -> *SessionState
}

func newSessionStore() *sessionStore { return &sessionStore{} }

func (s *sessionStore) lockFor(userID string) *sync.Mutex {
	if v, ok := s.locks.Load(userID); ok {
		return v.(*sync.Mutex)
	}
	mu := &sync.Mutex{}
	actual, _ := s.locks.LoadOrStore(userID, mu)
	return actual.(*sync.Mutex)
}

// withSession serializes all mutation for a single user (spec §4.5:
// sessions are per-user, turns apply one at a time).
func (s *sessionStore) withSession(userID string, fn func(state *SessionState)) SessionState {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	var state *SessionState
	if v, ok := s.data.Load(userID); ok {
		state = v.(*SessionState)
	} else {
		state = &SessionState{UserID: userID}
	}

	fn(state)
	s.data.Store(userID, state)
	return state.snapshot()
}

func (s *sessionStore) get(userID string) (SessionState, bool) {
	v, ok := s.data.Load(userID)
	if !ok {
		return SessionState{}, false
	}
	return v.(*SessionState).snapshot(), true
}
