package permission

import (
	"context"
	"testing"
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

type stubLookup struct {
	assistants map[string]AssistantInfo
	bumps      int
}

func (s *stubLookup) GetAssistantInfo(_ context.Context, id string) (AssistantInfo, error) {
	info, ok := s.assistants[id]
	if !ok {
		return AssistantInfo{}, aimodels.ErrNotFound
	}
	return info, nil
}

func (s *stubLookup) BumpVersion(context.Context, string) error {
	s.bumps++
	return nil
}

func newHarness() (*Service, *stubLookup) {
	lookup := &stubLookup{assistants: map[string]AssistantInfo{
		"asst-1": {ID: "asst-1", OwnerID: "owner"},
	}}
	return New(NewMemoryStore(), lookup), lookup
}

func TestCheck_OwnerAlwaysHasEveryLevel(t *testing.T) {
	svc, _ := newHarness()
	for _, lvl := range []Level{LevelRead, LevelEdit, LevelAdmin, LevelOwner} {
		ok, err := svc.Check(context.Background(), "owner", "asst-1", lvl)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatalf("owner should have level %s", lvl)
		}
	}
}

func TestCheck_NonOwnerHasNoPermissionsByDefault(t *testing.T) {
	svc, _ := newHarness()
	ok, err := svc.Check(context.Background(), "stranger", "asst-1", LevelRead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("non-owner should not have default access")
	}
}

func TestCheck_PublicAssistantGrantsReadOnly(t *testing.T) {
	lookup := &stubLookup{assistants: map[string]AssistantInfo{
		"asst-1": {ID: "asst-1", OwnerID: "owner", IsPublic: true},
	}}
	svc := New(NewMemoryStore(), lookup)

	read, _ := svc.Check(context.Background(), "stranger", "asst-1", LevelRead)
	if !read {
		t.Fatal("expected public read access")
	}
	edit, _ := svc.Check(context.Background(), "stranger", "asst-1", LevelEdit)
	if edit {
		t.Fatal("public assistant must not confer edit access")
	}
}

func TestShare_HierarchyIncludesLowerLevels(t *testing.T) {
	svc, _ := newHarness()
	if err := svc.Share(context.Background(), "asst-1", "grantee", "owner", LevelEdit, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	read, _ := svc.Check(context.Background(), "grantee", "asst-1", LevelRead)
	if !read {
		t.Fatal("EDIT should include READ")
	}
	edit, _ := svc.Check(context.Background(), "grantee", "asst-1", LevelEdit)
	if !edit {
		t.Fatal("expected EDIT")
	}
	admin, _ := svc.Check(context.Background(), "grantee", "asst-1", LevelAdmin)
	if admin {
		t.Fatal("EDIT should not include ADMIN")
	}
}

func TestCheck_ExpiredPermissionIsIgnored(t *testing.T) {
	svc, _ := newHarness()
	past := time.Now().Add(-time.Hour)
	if err := svc.Share(context.Background(), "asst-1", "grantee", "owner", LevelEdit, &past); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, _ := svc.Check(context.Background(), "grantee", "asst-1", LevelRead)
	if ok {
		t.Fatal("expired permission must be treated as absent")
	}
}

func TestShare_RequiresAdmin(t *testing.T) {
	svc, _ := newHarness()
	if err := svc.Share(context.Background(), "asst-1", "editor", "owner", LevelEdit, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.Share(context.Background(), "asst-1", "target", "editor", LevelRead, nil)
	if err == nil {
		t.Fatal("expected InsufficientPermission when grantor only holds edit")
	}
}

func TestShare_CannotGrantHigherThanOwnLevel(t *testing.T) {
	svc, _ := newHarness()
	if err := svc.Share(context.Background(), "asst-1", "admin-user", "owner", LevelAdmin, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.Share(context.Background(), "asst-1", "target", "admin-user", LevelOwner, nil)
	if err == nil {
		t.Fatal("expected InsufficientPermission granting owner level from admin")
	}
}

func TestRevoke_RemovesAccessAndRequiresAdmin(t *testing.T) {
	svc, _ := newHarness()
	if err := svc.Share(context.Background(), "asst-1", "grantee", "owner", LevelEdit, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := svc.Check(context.Background(), "grantee", "asst-1", LevelEdit); !ok {
		t.Fatal("expected permission before revoke")
	}
	if err := svc.Revoke(context.Background(), "asst-1", "grantee", "owner"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := svc.Check(context.Background(), "grantee", "asst-1", LevelEdit); ok {
		t.Fatal("expected permission revoked")
	}
}

func TestShare_UpdatesExistingGrantInPlace(t *testing.T) {
	svc, _ := newHarness()
	if err := svc.Share(context.Background(), "asst-1", "grantee", "owner", LevelRead, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Share(context.Background(), "asst-1", "grantee", "owner", LevelEdit, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	level, ok, _ := svc.GetLevel(context.Background(), "grantee", "asst-1")
	if !ok || level != LevelEdit {
		t.Fatalf("expected single upgraded grant at EDIT, got %v ok=%v", level, ok)
	}
}

func TestSweepExpired_SecondRunRemovesNothing(t *testing.T) {
	svc, _ := newHarness()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	_ = svc.Share(context.Background(), "asst-1", "expired-grantee", "owner", LevelEdit, &past)
	_ = svc.Share(context.Background(), "asst-1", "active-grantee", "owner", LevelRead, &future)

	n, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected to sweep 1 expired grant, got %d", n)
	}

	n2, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n2 != 0 {
		t.Fatalf("expected second sweep to remove 0, got %d", n2)
	}
}

// TestShare_PermissionTransitivityScenario is spec §8's end-to-end scenario
// 6, verbatim: owner grants admin to A; A's grant of edit to B succeeds;
// A's attempt to grant owner to B fails; B's attempt to share with C fails.
func TestShare_PermissionTransitivityScenario(t *testing.T) {
	svc, _ := newHarness()
	ctx := context.Background()

	if err := svc.Share(ctx, "asst-1", "A", "owner", LevelAdmin, nil); err != nil {
		t.Fatalf("owner granting admin to A should succeed: %v", err)
	}

	if err := svc.Share(ctx, "asst-1", "B", "A", LevelEdit, nil); err != nil {
		t.Fatalf("A granting edit to B should succeed: %v", err)
	}
	edit, _ := svc.Check(ctx, "B", "asst-1", LevelEdit)
	if !edit {
		t.Fatal("expected B to have edit access after A's grant")
	}

	if err := svc.Share(ctx, "asst-1", "B", "A", LevelOwner, nil); err != aimodels.ErrInsufficientPermission {
		t.Fatalf("A granting owner to B should fail with InsufficientPermission, got %v", err)
	}

	if err := svc.Share(ctx, "asst-1", "C", "B", LevelRead, nil); err != aimodels.ErrInsufficientPermission {
		t.Fatalf("B sharing with C should fail with InsufficientPermission, got %v", err)
	}
}

func TestGetLevel_NonExistentAssistant_ReturnsError(t *testing.T) {
	svc, _ := newHarness()
	_, _, err := svc.GetLevel(context.Background(), "user", "does-not-exist")
	if err == nil {
		t.Fatal("expected an error for an unknown assistant")
	}
}
