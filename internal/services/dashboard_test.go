package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

func TestDashboardStatsAggregates(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	videoRepo := repos.NewVideoRepo(db, log)
	keywordRepo := repos.NewKeywordRepo(db, log)
	jobRepo := repos.NewScrapeJobRepo(db, log)
	svc := NewDashboardService(db, log, videoRepo, keywordRepo, jobRepo, nil)

	user := seedUser(t, db)
	kw := seedKeyword(t, db, user.ID, "cats", types.PlatformTikTok)

	// Two videos scraped today, one from earlier this week, one pending
	// among them. Only today's count toward the daily rollup.
	v1 := seedVideo(t, db, user.ID, kw.ID, types.TranscriptionPending)
	_ = v1
	v2 := seedVideo(t, db, user.ID, kw.ID, types.TranscriptionCompleted)
	_ = v2
	old := seedVideo(t, db, user.ID, kw.ID, types.TranscriptionCompleted)
	if err := db.Model(&types.Video{}).Where("id = ?", old.ID).
		Update("scraped_at", time.Now().UTC().AddDate(0, 0, -3)).Error; err != nil {
		t.Fatalf("age video: %v", err)
	}

	finishedAt := time.Now().UTC().Add(-time.Hour)
	job := &types.ScrapeJob{
		ID:          uuid.New(),
		UserID:      user.ID,
		Status:      types.JobCompleted,
		CreatedAt:   time.Now().UTC(),
		CompletedAt: &finishedAt,
	}
	if err := jobRepo.Create(context.Background(), nil, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	stats, err := svc.Stats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalVideos != 3 {
		t.Fatalf("total_videos: want=3 got=%d", stats.TotalVideos)
	}
	if stats.VideosToday != 2 {
		t.Fatalf("videos_today: want=2 got=%d", stats.VideosToday)
	}
	if stats.PendingTranscriptions != 1 {
		t.Fatalf("pending: want=1 got=%d", stats.PendingTranscriptions)
	}
	if stats.ActiveKeywords != 1 {
		t.Fatalf("active_keywords: want=1 got=%d", stats.ActiveKeywords)
	}
	if stats.LastScrapeStatus != string(types.JobCompleted) {
		t.Fatalf("last_scrape_status: want=completed got=%s", stats.LastScrapeStatus)
	}
	if stats.LastScrapeAt == nil || !stats.LastScrapeAt.Equal(finishedAt) {
		t.Fatalf("last_scrape_at: want=%v got=%v", finishedAt, stats.LastScrapeAt)
	}
}

func TestDashboardStatsByKeyword(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	videoRepo := repos.NewVideoRepo(db, log)
	keywordRepo := repos.NewKeywordRepo(db, log)
	jobRepo := repos.NewScrapeJobRepo(db, log)
	svc := NewDashboardService(db, log, videoRepo, keywordRepo, jobRepo, nil)

	user := seedUser(t, db)
	cats := seedKeyword(t, db, user.ID, "cats", types.PlatformTikTok)
	dogs := seedKeyword(t, db, user.ID, "dogs", types.PlatformInstagram)

	for i, likes := range []int{100, 300} {
		v := seedVideo(t, db, user.ID, cats.ID, types.TranscriptionCompleted)
		if err := db.Model(&types.Video{}).Where("id = ?", v.ID).Update("likes", likes).Error; err != nil {
			t.Fatalf("set likes %d: %v", i, err)
		}
	}
	v := seedVideo(t, db, user.ID, dogs.ID, types.TranscriptionCompleted)
	if err := db.Model(&types.Video{}).Where("id = ?", v.ID).Update("likes", 50).Error; err != nil {
		t.Fatalf("set likes: %v", err)
	}

	stats, err := svc.StatsByKeyword(context.Background(), user.ID, nil, 30)
	if err != nil {
		t.Fatalf("StatsByKeyword: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("keyword rows: want=2 got=%d", len(stats))
	}
	// Ordered by total likes, cats first.
	if stats[0].Keyword != "cats" || stats[0].TotalVideos != 2 || stats[0].TotalLikes != 400 {
		t.Fatalf("top keyword: got %+v", stats[0])
	}

	tiktok := types.PlatformTikTok
	filtered, err := svc.StatsByKeyword(context.Background(), user.ID, &tiktok, 30)
	if err != nil {
		t.Fatalf("StatsByKeyword filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Keyword != "cats" {
		t.Fatalf("filtered rows: got %+v", filtered)
	}
}
