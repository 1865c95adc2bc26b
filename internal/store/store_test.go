package store

import (
	"context"
	"testing"
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/assistant"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/classifier"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/permission"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/syncengine"
	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open in-memory sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAssistantStore_CreateEnforcesCapAndDefaultSwap(t *testing.T) {
	db := openTestDB(t)
	store := NewAssistantStore(db)
	ctx := context.Background()

	for i := 0; i < assistant.MaxProfilesPerUser; i++ {
		id := string(rune('a' + i))
		if _, err := store.Create(ctx, assistant.Profile{ID: id, OwnerID: "u1", Name: id, IsDefault: i == 0}); err != nil {
			t.Fatalf("unexpected error creating profile %d: %v", i, err)
		}
	}
	if _, err := store.Create(ctx, assistant.Profile{ID: "overflow", OwnerID: "u1"}); err == nil {
		t.Fatal("expected cap violation on 6th profile")
	}

	second, err := store.Create(ctx, assistant.Profile{ID: "z", OwnerID: "u2", IsDefault: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.IsDefault {
		t.Fatal("expected new owner's profile to remain default")
	}
}

func TestAssistantStore_UpdateBumpsVersionAndPersists(t *testing.T) {
	db := openTestDB(t)
	store := NewAssistantStore(db)
	ctx := context.Background()

	created, err := store.Create(ctx, assistant.Profile{ID: "p1", OwnerID: "u1", Name: "original"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := store.Update(ctx, created.ID, func(p *assistant.Profile) error {
		p.Name = "renamed"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "renamed" || updated.Version <= created.Version {
		t.Fatalf("expected updated, versioned profile, got %+v", updated)
	}

	reloaded, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Name != "renamed" {
		t.Fatalf("expected persisted rename, got %q", reloaded.Name)
	}
}

func TestPermissionStore_UpsertAndDeleteExpired(t *testing.T) {
	db := openTestDB(t)
	store := NewPermissionStore(db)
	ctx := context.Background()

	g := permission.Grant{AssistantID: "a1", GranteeID: "g1", Level: permission.LevelEdit, GrantedBy: "owner"}
	if err := store.Upsert(ctx, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := store.Get(ctx, "a1", "g1")
	if err != nil || !ok {
		t.Fatalf("expected grant to be retrievable, got ok=%v err=%v", ok, err)
	}
	if got.Level != permission.LevelEdit {
		t.Fatalf("expected LevelEdit, got %v", got.Level)
	}

	// Upsert again at a different level — single row per pair.
	g.Level = permission.LevelAdmin
	if err := store.Upsert(ctx, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, err := store.ListForAssistant(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].Level != permission.LevelAdmin {
		t.Fatalf("expected single upgraded row, got %+v", all)
	}
}

func TestSyncStore_PutGetListSince(t *testing.T) {
	db := openTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	obj := syncengine.Object{ID: "o1", Type: "goal", OwnerID: "u1", Data: map[string]any{"title": "run"}, Version: 100}
	if err := store.Put(ctx, obj); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := store.Get(ctx, "goal", "o1")
	if err != nil || !ok {
		t.Fatalf("expected object retrievable, got ok=%v err=%v", ok, err)
	}
	if got.Data["title"] != "run" {
		t.Fatalf("expected round-tripped data, got %+v", got.Data)
	}

	changes, err := store.ListSince(ctx, 50, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change since version 50, got %d", len(changes))
	}

	none, err := store.ListSince(ctx, 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no changes strictly after version 100, got %d", len(none))
	}
}

func TestConversationLogStore_RecordFeedbackAnnotatesExistingLog(t *testing.T) {
	db := openTestDB(t)
	store := NewConversationLogStore(db)
	ctx := context.Background()

	store.RecordClassification(classifier.ConversationLog{
		LogID:       "log-1",
		Timestamp:   time.Now(),
		UserMessage: "create a task to buy milk",
		Intent:      classifier.IntentChatContinuation,
		Confidence:  0.4,
	})

	before, ok, err := store.Get(ctx, "log-1")
	if err != nil || !ok {
		t.Fatalf("expected log-1 to be retrievable, got ok=%v err=%v", ok, err)
	}
	if before.HasFeedback {
		t.Fatal("expected no feedback before RecordFeedback is called")
	}

	store.RecordFeedback(classifier.IntentFeedback{
		LogID:           "log-1",
		CorrectedIntent: classifier.IntentCreateTask,
		FeedbackType:    classifier.FeedbackTypeUserCorrection,
		Timestamp:       time.Now(),
	})

	after, ok, err := store.Get(ctx, "log-1")
	if err != nil || !ok {
		t.Fatalf("expected log-1 to still be retrievable, got ok=%v err=%v", ok, err)
	}
	if !after.HasFeedback || after.CorrectedIntent != classifier.IntentCreateTask {
		t.Fatalf("expected corrected_intent=create_task, got %+v", after)
	}
	if after.FeedbackType != classifier.FeedbackTypeUserCorrection {
		t.Fatalf("expected feedback_type=user_correction, got %q", after.FeedbackType)
	}
}

func TestConversationLogStore_RecordFeedbackForUnknownLogID_IsSilentNoOp(t *testing.T) {
	db := openTestDB(t)
	store := NewConversationLogStore(db)

	// Must not panic and must leave nothing behind to find.
	store.RecordFeedback(classifier.IntentFeedback{LogID: "does-not-exist", CorrectedIntent: classifier.IntentCreateGoal})

	_, ok, err := store.Get(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no row to exist for an unknown log id")
	}
}
