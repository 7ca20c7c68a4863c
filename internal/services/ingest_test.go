package services

import (
	"context"
	"testing"

	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

func TestIngestInsertsNewCandidate(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	videoRepo := repos.NewVideoRepo(db, log)
	svc := NewIngestService(db, log, videoRepo)

	user := seedUser(t, db)
	kw := seedKeyword(t, db, user.ID, "cats", types.PlatformTikTok)

	outcome, video, err := svc.Ingest(context.Background(), user.ID, kw.ID, candidate("https://tiktok.com/v/1", 500))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if outcome != IngestInserted {
		t.Fatalf("outcome: want=Inserted got=%v", outcome)
	}
	if video == nil || video.TranscriptionStatus != types.TranscriptionPending {
		t.Fatalf("new video must start pending, got %+v", video)
	}
	if video.UserID != user.ID || video.KeywordID != kw.ID {
		t.Fatalf("attribution mismatch: %+v", video)
	}
}

func TestIngestSkipsDuplicateURL(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	videoRepo := repos.NewVideoRepo(db, log)
	svc := NewIngestService(db, log, videoRepo)

	user := seedUser(t, db)
	kw := seedKeyword(t, db, user.ID, "cats", types.PlatformTikTok)

	if _, _, err := svc.Ingest(context.Background(), user.ID, kw.ID, candidate("https://tiktok.com/v/1", 500)); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	outcome, _, err := svc.Ingest(context.Background(), user.ID, kw.ID, candidate("https://tiktok.com/v/1", 999))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if outcome != IngestSkipped {
		t.Fatalf("outcome: want=Skipped got=%v", outcome)
	}

	var count int64
	if err := db.Model(&types.Video{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("video rows: want=1 got=%d", count)
	}
}

func TestIngestDedupIsGlobalAcrossUsers(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	videoRepo := repos.NewVideoRepo(db, log)
	svc := NewIngestService(db, log, videoRepo)

	userA := seedUser(t, db)
	kwA := seedKeyword(t, db, userA.ID, "cats", types.PlatformTikTok)
	userB := seedUser(t, db)
	kwB := seedKeyword(t, db, userB.ID, "cats", types.PlatformTikTok)

	if _, _, err := svc.Ingest(context.Background(), userA.ID, kwA.ID, candidate("https://tiktok.com/v/7", 100)); err != nil {
		t.Fatalf("Ingest user A: %v", err)
	}
	outcome, _, err := svc.Ingest(context.Background(), userB.ID, kwB.ID, candidate("https://tiktok.com/v/7", 100))
	if err != nil {
		t.Fatalf("Ingest user B: %v", err)
	}
	if outcome != IngestSkipped {
		t.Fatalf("cross-user outcome: want=Skipped got=%v", outcome)
	}

	// The row keeps its original attribution.
	stored, err := videoRepo.GetByURL(context.Background(), nil, "https://tiktok.com/v/7")
	if err != nil {
		t.Fatalf("GetByURL: %v", err)
	}
	if stored == nil || stored.UserID != userA.ID {
		t.Fatalf("stored attribution: want user A, got %+v", stored)
	}
}

func TestIngestRejectsEmptyURL(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewIngestService(db, log, repos.NewVideoRepo(db, log))

	user := seedUser(t, db)
	kw := seedKeyword(t, db, user.ID, "cats", types.PlatformTikTok)

	cand := candidate("", 10)
	cand.VideoURL = ""
	if _, _, err := svc.Ingest(context.Background(), user.ID, kw.ID, cand); err == nil {
		t.Fatal("expected error for empty url")
	}
}
