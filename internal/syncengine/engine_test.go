package syncengine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestEngine(clock func() time.Time) (*Engine, Store) {
	store := NewMemoryStore()
	e := New(store, SelfOnlyAccess{}, zerolog.Nop())
	if clock != nil {
		e.now = clock
	}
	return e, store
}

func versionPtr(v int64) *int64 { return &v }

func TestApplyBatch_CreateThenDeltaContainsObjectExactlyOnce(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()

	results := e.ApplyBatch(ctx, "user-1", BatchRequest{
		ClientID: "client-1",
		Operations: []Op{
			{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{"title": "Run 5k"}},
		},
	})
	if len(results) != 1 || results[0].Status != StatusSuccess {
		t.Fatalf("expected single success result, got %+v", results)
	}

	delta, err := e.Delta(ctx, "user-1", 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, obj := range delta.Changes {
		if obj.ID == "goal-1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected goal-1 to appear exactly once, got %d", count)
	}
}

func TestApplyBatch_UpdateWithStaleIfMatch_YieldsConflictAndLeavesFirstUpdateResult(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()

	createResults := e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{"title": "v0"}},
	}})
	originalVersion := createResults[0].NewVersion

	firstUpdate := e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpUpdate, Data: map[string]any{"title": "v1"}, IfMatchVersion: versionPtr(originalVersion)},
	}})[0]
	if firstUpdate.Status != StatusSuccess {
		t.Fatalf("expected first update to succeed, got %+v", firstUpdate)
	}

	secondUpdate := e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpUpdate, Data: map[string]any{"title": "v2"}, IfMatchVersion: versionPtr(originalVersion)},
	}})[0]
	if secondUpdate.Status != StatusConflict {
		t.Fatalf("expected conflict on stale if_match_version, got %+v", secondUpdate)
	}
	if secondUpdate.ServerData["title"] != "v1" {
		t.Fatalf("expected conflict server_data to reflect first update, got %+v", secondUpdate.ServerData)
	}
	if secondUpdate.NewVersion != firstUpdate.NewVersion {
		t.Fatalf("expected conflict new_version to equal first update's version")
	}
}

func TestApplyBatch_UpdateWithoutIfMatch_AlwaysProceeds(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{"title": "v0"}},
	}})
	result := e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpUpdate, Data: map[string]any{"title": "v1"}},
	}})[0]
	if result.Status != StatusSuccess {
		t.Fatalf("expected update without if_match_version to succeed, got %+v", result)
	}
}

func TestApplyBatch_UnknownObjectType_ErrorsButDoesNotAbortBatch(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	results := e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "x", ObjectType: "", Operation: OpCreate},
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{"title": "ok"}},
	}})
	if len(results) != 2 {
		t.Fatalf("expected a result for every op, got %d", len(results))
	}
	if results[0].Status != StatusError {
		t.Fatalf("expected first op to error, got %+v", results[0])
	}
	if results[1].Status != StatusSuccess {
		t.Fatalf("expected second op to still succeed, got %+v", results[1])
	}
}

func TestNextVersion_BumpsByOneOnClockRegression(t *testing.T) {
	clock := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	e, _ := newTestEngine(func() time.Time { return clock })

	v1 := e.nextVersion("goal", "g1")
	clock = clock.Add(-time.Minute)
	v2 := e.nextVersion("goal", "g1")
	if v2 != v1+1 {
		t.Fatalf("expected version to bump by exactly 1 after the clock regressed, got %d then %d", v1, v2)
	}
}

func TestResolveConflict_IsIdempotentModuloVersion(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()

	first, err := e.ResolveConflict(ctx, "user-1", "goal", "goal-1", map[string]any{"title": "merged"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.ResolveConflict(ctx, "user-1", "goal", "goal-1", map[string]any{"title": "merged"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != "resolved" || second.Status != "resolved" {
		t.Fatalf("expected both resolutions to report resolved")
	}
	if second.NewVersion <= first.NewVersion {
		t.Fatalf("expected version to advance on repeated resolution")
	}
}

func TestDelta_FiltersByObjectType(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{}},
		{ObjectID: "task-1", ObjectType: "task", Operation: OpCreate, Data: map[string]any{}},
	}})

	delta, err := e.Delta(ctx, "user-1", 0, []string{"goal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delta.Changes) != 1 || delta.Changes[0].Type != "goal" {
		t.Fatalf("expected only goal objects, got %+v", delta.Changes)
	}
}

func TestDelta_HidesObjectsNotOwnedByCaller(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	e.ApplyBatch(ctx, "owner-a", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{}},
	}})

	delta, err := e.Delta(ctx, "owner-b", 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delta.Changes) != 0 {
		t.Fatalf("expected no visible objects for a different owner, got %+v", delta.Changes)
	}
}

func TestStatus_CountsTotalsPerType(t *testing.T) {
	e, _ := newTestEngine(nil)
	ctx := context.Background()
	e.ApplyBatch(ctx, "user-1", BatchRequest{Operations: []Op{
		{ObjectID: "goal-1", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{}},
		{ObjectID: "goal-2", ObjectType: "goal", Operation: OpCreate, Data: map[string]any{}},
	}})

	statuses, err := e.Status(ctx, []string{"goal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statuses) != 1 || statuses[0].TotalObjects != 2 {
		t.Fatalf("expected 2 goals counted, got %+v", statuses)
	}
}
