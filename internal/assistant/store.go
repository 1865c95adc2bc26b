package assistant

import (
	"context"
	"sync"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/permission"
)

// Store persists AssistantProfiles and enforces the single-default and
// per-owner-cap invariants (spec §3.2 invariants 2-3). A sqlite-backed
// implementation lives in internal/store; MemoryStore below is used for
// tests and single-instance deployments.
type Store interface {
	Create(ctx context.Context, p Profile) (Profile, error)
	Get(ctx context.Context, id string) (Profile, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Profile, error)
	Update(ctx context.Context, id string, mutate func(p *Profile) error) (Profile, error)
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	now      func() int64
}

func NewMemoryStore(nowMillis func() int64) *MemoryStore {
	return &MemoryStore{profiles: map[string]Profile{}, now: nowMillis}
}

func (m *MemoryStore) Create(_ context.Context, p Profile) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := 0
	for _, existing := range m.profiles {
		if existing.OwnerID == p.OwnerID {
			owned++
		}
	}
	if owned >= MaxProfilesPerUser {
		return Profile{}, aimodels.ErrValidation
	}

	p.Style.Formality = ClampTrait(p.Style.Formality)
	p.Style.Directness = ClampTrait(p.Style.Directness)
	p.Style.Humor = ClampTrait(p.Style.Humor)
	p.Style.Empathy = ClampTrait(p.Style.Empathy)
	p.Style.Motivation = ClampTrait(p.Style.Motivation)
	p.DialogueTemperature = ClampTemperature(p.DialogueTemperature)
	p.IntentTemperature = ClampTemperature(p.IntentTemperature)
	p.Version = m.now()

	if p.IsDefault {
		m.clearDefaultLocked(p.OwnerID)
	}
	m.profiles[p.ID] = p
	return p, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, aimodels.ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Profile
	for _, p := range m.profiles {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update applies mutate under lock, bumps Version (spec §3.1: "updated on
// every mutation"), and re-enforces the single-default invariant if mutate
// set IsDefault.
func (m *MemoryStore) Update(_ context.Context, id string, mutate func(p *Profile) error) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, aimodels.ErrNotFound
	}
	if err := mutate(&p); err != nil {
		return Profile{}, err
	}
	p.Version = m.now()
	if p.IsDefault {
		m.clearDefaultLocked(p.OwnerID)
	}
	m.profiles[id] = p
	return p, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
	return nil
}

func (m *MemoryStore) CountByOwner(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.profiles {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// clearDefaultLocked clears is_default on every other profile owned by
// ownerID (spec §3.2 invariant 2); caller must hold m.mu.
func (m *MemoryStore) clearDefaultLocked(ownerID string) {
	for id, existing := range m.profiles {
		if existing.OwnerID == ownerID && existing.IsDefault {
			existing.IsDefault = false
			m.profiles[id] = existing
		}
	}
}

// permissionLookup adapts a Store to permission.AssistantLookup.
type permissionLookup struct {
	store Store
}

// NewPermissionLookup exposes a Store as a permission.AssistantLookup so
// internal/permission can resolve ownership/visibility without importing
// this package's concrete types.
func NewPermissionLookup(store Store) permission.AssistantLookup {
	return &permissionLookup{store: store}
}

func (l *permissionLookup) GetAssistantInfo(ctx context.Context, id string) (permission.AssistantInfo, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return permission.AssistantInfo{}, err
	}
	return permission.AssistantInfo{ID: p.ID, OwnerID: p.OwnerID, IsPublic: p.IsPublic}, nil
}

func (l *permissionLookup) BumpVersion(ctx context.Context, id string) error {
	_, err := l.store.Update(ctx, id, func(p *Profile) error { return nil })
	return err
}
