// Package permission implements spec §4.8: hierarchical, TTL'd
// AssistantProfile sharing.
package permission

import (
	"context"
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// Level is a point in the total order read < edit < admin < owner (spec
// §4.8).
type Level int

const (
	LevelRead Level = iota
	LevelEdit
	LevelAdmin
	LevelOwner
)

func (l Level) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelEdit:
		return "edit"
	case LevelAdmin:
		return "admin"
	case LevelOwner:
		return "owner"
	}
	return "unknown"
}

// ParseLevel maps a wire-format level string back to a Level.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "read":
		return LevelRead, true
	case "edit":
		return LevelEdit, true
	case "admin":
		return LevelAdmin, true
	case "owner":
		return LevelOwner, true
	}
	return 0, false
}

// Grant is a single (assistant, grantee) permission row (spec §3.1
// AssistantPermission).
type Grant struct {
	AssistantID string
	GranteeID   string
	Level       Level
	GrantedBy   string
	ExpiresAt   *time.Time
}

func (g Grant) expired(now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}

// AssistantInfo is the subset of AssistantProfile the permission service
// needs: owner and public-read flag (spec §4.8 checks 1-2).
type AssistantInfo struct {
	ID       string
	OwnerID  string
	IsPublic bool
}

// AssistantLookup resolves assistant ownership/visibility. Implemented by
// internal/assistant's store; kept as a narrow interface to avoid a
// dependency cycle.
type AssistantLookup interface {
	GetAssistantInfo(ctx context.Context, assistantID string) (AssistantInfo, error)
	BumpVersion(ctx context.Context, assistantID string) error
}

// Store persists Grants. An in-memory implementation is provided in
// memory_store.go; internal/store supplies a sqlite-backed one.
type Store interface {
	Get(ctx context.Context, assistantID, granteeID string) (Grant, bool, error)
	Upsert(ctx context.Context, g Grant) error
	Delete(ctx context.Context, assistantID, granteeID string) error
	ListForAssistant(ctx context.Context, assistantID string) ([]Grant, error)
	ListForGrantee(ctx context.Context, granteeID string) ([]Grant, error)
	ListAll(ctx context.Context) ([]Grant, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Service implements spec §4.8's check/share/revoke/list_accessible/
// sweep_expired/get_level operations.
type Service struct {
	store     Store
	assistant AssistantLookup
	now       func() time.Time
}

func New(store Store, assistant AssistantLookup) *Service {
	return &Service{store: store, assistant: assistant, now: time.Now}
}

// Check implements spec §4.8 check().
func (s *Service) Check(ctx context.Context, userID, assistantID string, required Level) (bool, error) {
	info, err := s.assistant.GetAssistantInfo(ctx, assistantID)
	if err != nil {
		return false, err
	}
	if info.OwnerID == userID {
		return true, nil
	}
	if info.IsPublic && required == LevelRead {
		return true, nil
	}
	grant, ok, err := s.store.Get(ctx, assistantID, userID)
	if err != nil {
		return false, err
	}
	if !ok || grant.expired(s.now()) {
		return false, nil
	}
	return grant.Level >= required, nil
}

// GetLevel implements spec §4.8 get_level().
func (s *Service) GetLevel(ctx context.Context, userID, assistantID string) (Level, bool, error) {
	info, err := s.assistant.GetAssistantInfo(ctx, assistantID)
	if err != nil {
		return 0, false, err
	}
	if info.OwnerID == userID {
		return LevelOwner, true, nil
	}
	grant, ok, err := s.store.Get(ctx, assistantID, userID)
	if err != nil {
		return 0, false, err
	}
	if ok && !grant.expired(s.now()) {
		return grant.Level, true, nil
	}
	if info.IsPublic {
		return LevelRead, true, nil
	}
	return 0, false, nil
}

// Share implements spec §4.8 share(): granted_by must hold admin, and
// cannot grant a level strictly above its own.
func (s *Service) Share(ctx context.Context, assistantID, targetID, grantedBy string, level Level, expiresAt *time.Time) error {
	grantorLevel, ok, err := s.GetLevel(ctx, grantedBy, assistantID)
	if err != nil {
		return err
	}
	if !ok || grantorLevel < LevelAdmin {
		return aimodels.ErrInsufficientPermission
	}
	if level > grantorLevel {
		return aimodels.ErrInsufficientPermission
	}

	if err := s.store.Upsert(ctx, Grant{
		AssistantID: assistantID,
		GranteeID:   targetID,
		Level:       level,
		GrantedBy:   grantedBy,
		ExpiresAt:   expiresAt,
	}); err != nil {
		return err
	}
	return s.assistant.BumpVersion(ctx, assistantID)
}

// Revoke implements spec §4.8 revoke(): requires admin.
func (s *Service) Revoke(ctx context.Context, assistantID, targetID, revokedBy string) error {
	level, ok, err := s.GetLevel(ctx, revokedBy, assistantID)
	if err != nil {
		return err
	}
	if !ok || level < LevelAdmin {
		return aimodels.ErrInsufficientPermission
	}
	if err := s.store.Delete(ctx, assistantID, targetID); err != nil {
		return err
	}
	return s.assistant.BumpVersion(ctx, assistantID)
}

// ListAccessible implements spec §4.8 list_accessible(): union of owned,
// public, and explicitly-granted-and-not-expired assistant ids. Ownership
// and public-ness are resolved by the caller against internal/assistant;
// this method only returns the ids this service itself can vouch for via
// explicit grants, which the caller merges with its own owned/public
// listings.
func (s *Service) ListAccessible(ctx context.Context, userID string) ([]string, error) {
	grants, err := s.store.ListForGrantee(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		if !g.expired(now) {
			ids = append(ids, g.AssistantID)
		}
	}
	return ids, nil
}

// SweepExpired implements spec §4.8 sweep_expired().
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, s.now())
}
