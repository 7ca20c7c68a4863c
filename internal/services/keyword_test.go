package services

import (
	"context"
	"errors"
	"testing"

	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

func newKeywordService(t *testing.T) (KeywordService, *types.User) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewKeywordService(db, log, repos.NewKeywordRepo(db, log))
	return svc, seedUser(t, db)
}

func TestKeywordCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	svc, user := newKeywordService(t)
	ctx := context.Background()

	kw, err := svc.Create(ctx, user.ID, "  Cats  ", types.PlatformTikTok, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if kw.Keyword != "cats" {
		t.Fatalf("keyword: want=%q got=%q", "cats", kw.Keyword)
	}
	if kw.ResultsPerRun != 10 {
		t.Fatalf("results_per_run default: want=10 got=%d", kw.ResultsPerRun)
	}

	if _, err := svc.Create(ctx, user.ID, "CATS", types.PlatformTikTok, 5); !errors.Is(err, ErrKeywordExists) {
		t.Fatalf("want ErrKeywordExists got %v", err)
	}

	// Same term on another platform is a separate keyword.
	if _, err := svc.Create(ctx, user.ID, "cats", types.PlatformInstagram, 5); err != nil {
		t.Fatalf("cross-platform Create: %v", err)
	}
}

func TestKeywordCreateBulkSkipsExisting(t *testing.T) {
	svc, user := newKeywordService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, user.ID, "cats", types.PlatformTikTok, 10); err != nil {
		t.Fatalf("seed Create: %v", err)
	}

	created, skipped, err := svc.CreateBulk(ctx, user.ID, []string{"cats", "dogs", "birds"}, types.PlatformTikTok, 10)
	if err != nil {
		t.Fatalf("CreateBulk: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created: want=2 got=%d", len(created))
	}
	if len(skipped) != 1 || skipped[0] != "cats" {
		t.Fatalf("skipped: want=[cats] got=%v", skipped)
	}
}

func TestKeywordUpdateIgnoresUnknownFields(t *testing.T) {
	svc, user := newKeywordService(t)
	ctx := context.Background()

	kw, err := svc.Create(ctx, user.ID, "cats", types.PlatformTikTok, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, kw.ID, map[string]interface{}{
		"is_active": false,
		"keyword":   "hacked",
		"user_id":   "hacked",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Fatal("is_active update must apply")
	}
	if updated.Keyword != "cats" {
		t.Fatalf("keyword must be immutable, got %q", updated.Keyword)
	}
}

func TestKeywordDeleteRequiresOwnership(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewKeywordService(db, log, repos.NewKeywordRepo(db, log))
	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	kw := seedKeyword(t, db, owner.ID, "cats", types.PlatformTikTok)

	if err := svc.Delete(context.Background(), stranger.ID, kw.ID); !errors.Is(err, ErrKeywordNotFound) {
		t.Fatalf("want ErrKeywordNotFound got %v", err)
	}
	if err := svc.Delete(context.Background(), owner.ID, kw.ID); err != nil {
		t.Fatalf("owner Delete: %v", err)
	}
}
