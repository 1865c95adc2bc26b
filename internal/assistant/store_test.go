package assistant

import (
	"context"
	"testing"
)

func newTestStore() *MemoryStore {
	tick := int64(1000)
	return NewMemoryStore(func() int64 {
		tick++
		return tick
	})
}

func TestCreate_EnforcesPerOwnerCap(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	for i := 0; i < MaxProfilesPerUser; i++ {
		id := string(rune('a' + i))
		if _, err := store.Create(ctx, Profile{ID: id, OwnerID: "u1", Name: id}); err != nil {
			t.Fatalf("unexpected error on profile %d: %v", i, err)
		}
	}
	if _, err := store.Create(ctx, Profile{ID: "overflow", OwnerID: "u1", Name: "overflow"}); err == nil {
		t.Fatal("expected an error creating a 6th profile for the same owner")
	}
}

func TestCreate_ClampsOutOfRangeValues(t *testing.T) {
	store := newTestStore()
	p, err := store.Create(context.Background(), Profile{
		ID:                  "p1",
		OwnerID:             "u1",
		Style:               Style{Formality: 150, Directness: -10},
		DialogueTemperature: 5,
		IntentTemperature:   -1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Style.Formality != 100 || p.Style.Directness != 0 {
		t.Fatalf("expected traits clamped, got %+v", p.Style)
	}
	if p.DialogueTemperature != 2 || p.IntentTemperature != 0 {
		t.Fatalf("expected temperatures clamped, got dialogue=%v intent=%v", p.DialogueTemperature, p.IntentTemperature)
	}
}

func TestCreate_SettingDefaultClearsPriorDefault(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	first, _ := store.Create(ctx, Profile{ID: "p1", OwnerID: "u1", IsDefault: true})
	second, _ := store.Create(ctx, Profile{ID: "p2", OwnerID: "u1", IsDefault: true})

	reloadedFirst, _ := store.Get(ctx, first.ID)
	if reloadedFirst.IsDefault {
		t.Fatal("expected the first profile's default flag to be cleared")
	}
	if !second.IsDefault {
		t.Fatal("expected the second profile to remain default")
	}
}

func TestUpdate_BumpsVersion(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	created, _ := store.Create(ctx, Profile{ID: "p1", OwnerID: "u1", Name: "original"})

	updated, err := store.Update(ctx, created.ID, func(p *Profile) error {
		p.Name = "renamed"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("expected name to be updated, got %q", updated.Name)
	}
	if updated.Version <= created.Version {
		t.Fatalf("expected version to increase, got %d -> %d", created.Version, updated.Version)
	}
}

func TestUpdate_UnknownID_ReturnsNotFound(t *testing.T) {
	store := newTestStore()
	_, err := store.Update(context.Background(), "missing", func(p *Profile) error { return nil })
	if err == nil {
		t.Fatal("expected an error updating a nonexistent profile")
	}
}

func TestPermissionLookup_ReflectsOwnerAndPublicFlag(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()
	_, _ = store.Create(ctx, Profile{ID: "p1", OwnerID: "u1", IsPublic: true})

	lookup := NewPermissionLookup(store)
	info, err := lookup.GetAssistantInfo(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.OwnerID != "u1" || !info.IsPublic {
		t.Fatalf("unexpected info: %+v", info)
	}

	if err := lookup.BumpVersion(ctx, "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reloaded, _ := store.Get(ctx, "p1")
	if reloaded.Version <= 0 {
		t.Fatal("expected version to be set after bump")
	}
}
