package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

const dashboardCacheTTL = 60 * time.Second

type DashboardStats struct {
	TotalVideos           int64      `json:"total_videos"`
	VideosToday           int64      `json:"videos_today"`
	PendingTranscriptions int64      `json:"pending_transcriptions"`
	ActiveKeywords        int64      `json:"active_keywords"`
	LastScrapeStatus      string     `json:"last_scrape_status,omitempty"`
	LastScrapeAt          *time.Time `json:"last_scrape_at,omitempty"`
}

// DashboardService aggregates per-user stats for the overview screen. The
// summary is cached in Redis when a client is configured; every cache failure
// falls through to the store.
type DashboardService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
	StatsByPlatform(ctx context.Context, userID uuid.UUID, days int) ([]repos.PlatformStats, error)
	StatsByKeyword(ctx context.Context, userID uuid.UUID, platform *types.Platform, days int) ([]repos.KeywordStats, error)
}

type dashboardService struct {
	db          *gorm.DB
	log         *logger.Logger
	videoRepo   repos.VideoRepo
	keywordRepo repos.KeywordRepo
	jobRepo     repos.ScrapeJobRepo
	cache       *redis.Client
}

// NewDashboardCache dials Redis from REDIS_ADDR. Returns nil (no caching)
// when the variable is unset or the server is unreachable.
func NewDashboardCache(log *logger.Logger) *redis.Client {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, dashboard caching disabled", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	videoRepo repos.VideoRepo,
	keywordRepo repos.KeywordRepo,
	jobRepo repos.ScrapeJobRepo,
	cache *redis.Client,
) DashboardService {
	return &dashboardService{
		db:          db,
		log:         log.With("service", "DashboardService"),
		videoRepo:   videoRepo,
		keywordRepo: keywordRepo,
		jobRepo:     jobRepo,
		cache:       cache,
	}
}

func (s *dashboardService) Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:stats:%s", userID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached DashboardStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	total, err := s.videoRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count videos: %w", err)
	}
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	today, err := s.videoRepo.CountByUserSince(ctx, nil, userID, startOfDay)
	if err != nil {
		return nil, fmt.Errorf("count today's videos: %w", err)
	}
	pending, err := s.videoRepo.CountPendingByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count pending videos: %w", err)
	}
	activeKeywords, err := s.keywordRepo.CountActiveByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("count keywords: %w", err)
	}

	stats := &DashboardStats{
		TotalVideos:           total,
		VideosToday:           today,
		PendingTranscriptions: pending,
		ActiveKeywords:        activeKeywords,
	}

	lastJob, err := s.jobRepo.GetLatestByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest job: %w", err)
	}
	if lastJob != nil {
		stats.LastScrapeStatus = string(lastJob.Status)
		stats.LastScrapeAt = lastJob.CompletedAt
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				s.log.Debug("Dashboard cache write failed", "error", err)
			}
		}
	}
	return stats, nil
}

func (s *dashboardService) StatsByPlatform(ctx context.Context, userID uuid.UUID, days int) ([]repos.PlatformStats, error) {
	return s.videoRepo.StatsByPlatform(ctx, nil, userID, statsWindow(days))
}

func (s *dashboardService) StatsByKeyword(ctx context.Context, userID uuid.UUID, platform *types.Platform, days int) ([]repos.KeywordStats, error) {
	return s.videoRepo.StatsByKeyword(ctx, nil, userID, platform, statsWindow(days))
}

func statsWindow(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return time.Now().UTC().AddDate(0, 0, -days)
}
