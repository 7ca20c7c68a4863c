package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

// ScrapeJobService owns the scrape job lifecycle:
// pending -> running -> completed|failed, terminal states never revisited.
// Execution is fire-and-forget: StartJob returns the job handle immediately
// and the run communicates only through the store; callers observe progress
// by polling the job.
type ScrapeJobService interface {
	StartJob(ctx context.Context, userID uuid.UUID, platform *types.Platform) (*types.ScrapeJob, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*types.ScrapeJob, error)
	ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ScrapeJob, error)
}

type scrapeJobService struct {
	db           *gorm.DB
	log          *logger.Logger
	jobRepo      repos.ScrapeJobRepo
	userRepo     repos.UserRepo
	keywordRepo  repos.KeywordRepo
	settings     SettingsService
	search       SearchProviderService
	ingest       IngestService
	mirror       SheetMirrorService
	admissionsMu userLocks
}

func NewScrapeJobService(
	db *gorm.DB,
	log *logger.Logger,
	jobRepo repos.ScrapeJobRepo,
	userRepo repos.UserRepo,
	keywordRepo repos.KeywordRepo,
	settings SettingsService,
	search SearchProviderService,
	ingest IngestService,
	mirror SheetMirrorService,
) ScrapeJobService {
	return &scrapeJobService{
		db:          db,
		log:         log.With("service", "ScrapeJobService"),
		jobRepo:     jobRepo,
		userRepo:    userRepo,
		keywordRepo: keywordRepo,
		settings:    settings,
		search:      search,
		ingest:      ingest,
		mirror:      mirror,
	}
}

// userLocks hands out one mutex per user id. Admission holds the lock only
// across the check-then-create, never for the run itself.
type userLocks struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*sync.Mutex
}

func (l *userLocks) lock(userID uuid.UUID) func() {
	l.mu.Lock()
	if l.byUser == nil {
		l.byUser = map[uuid.UUID]*sync.Mutex{}
	}
	m, ok := l.byUser[userID]
	if !ok {
		m = &sync.Mutex{}
		l.byUser[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *scrapeJobService) StartJob(ctx context.Context, userID uuid.UUID, platform *types.Platform) (*types.ScrapeJob, error) {
	unlock := s.admissionsMu.lock(userID)
	defer unlock()

	active, err := s.jobRepo.HasActive(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("check active jobs: %w", err)
	}
	if active {
		return nil, ErrJobAlreadyRunning
	}

	job := &types.ScrapeJob{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    types.JobPending,
		Platform:  platform,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobRepo.Create(ctx, nil, job); err != nil {
		return nil, fmt.Errorf("create scrape job: %w", err)
	}

	go s.runJob(context.Background(), job.ID, userID, platform)
	return job, nil
}

func (s *scrapeJobService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*types.ScrapeJob, error) {
	job, err := s.jobRepo.GetByID(ctx, nil, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *scrapeJobService) ListJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ScrapeJob, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.jobRepo.ListByUser(ctx, nil, userID, limit)
}

// runJob executes one scrape run to a terminal state. A single keyword's
// failure is contained and skipped; only errors in the surrounding control
// logic fail the whole job.
func (s *scrapeJobService) runJob(ctx context.Context, jobID, userID uuid.UUID, platform *types.Platform) {
	runLog := s.log.With("job_id", jobID, "user_id", userID)

	now := time.Now().UTC()
	if err := s.jobRepo.UpdateFields(ctx, nil, jobID, map[string]interface{}{
		"status":     types.JobRunning,
		"started_at": now,
	}); err != nil {
		runLog.Error("Failed to mark job running", "error", err)
		s.failJob(ctx, jobID, runLog, fmt.Errorf("mark job running: %w", err))
		return
	}

	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		s.failJob(ctx, jobID, runLog, fmt.Errorf("load user: %w", err))
		return
	}
	if user == nil {
		s.failJob(ctx, jobID, runLog, fmt.Errorf("user %s not found", userID))
		return
	}
	settings, err := s.settings.GetOrCreate(ctx, userID)
	if err != nil {
		s.failJob(ctx, jobID, runLog, fmt.Errorf("load settings: %w", err))
		return
	}

	keywords, err := s.keywordRepo.ListByUser(ctx, nil, userID, platform, true)
	if err != nil {
		s.failJob(ctx, jobID, runLog, fmt.Errorf("list keywords: %w", err))
		return
	}

	keywordsProcessed := 0
	videosFound := 0
	for _, kw := range keywords {
		inserted, err := s.runKeyword(ctx, user, settings, kw)
		if err != nil {
			runLog.Warn("Keyword run failed, skipping", "keyword", kw.Keyword, "platform", kw.Platform, "error", err)
			continue
		}
		keywordsProcessed++
		videosFound += inserted

		// Persist partial progress so pollers see it before the run ends.
		if err := s.jobRepo.UpdateFields(ctx, nil, jobID, map[string]interface{}{
			"keywords_processed": keywordsProcessed,
			"videos_found":       videosFound,
		}); err != nil {
			runLog.Warn("Failed to persist job progress", "error", err)
		}
	}

	completed := time.Now().UTC()
	if err := s.jobRepo.UpdateFields(ctx, nil, jobID, map[string]interface{}{
		"status":             types.JobCompleted,
		"keywords_processed": keywordsProcessed,
		"videos_found":       videosFound,
		"completed_at":       completed,
	}); err != nil {
		runLog.Error("Failed to mark job completed", "error", err)
		return
	}
	runLog.Info("Scrape job completed", "keywords_processed", keywordsProcessed, "videos_found", videosFound)
}

// runKeyword searches one keyword and ingests its candidates. The returned
// count covers Inserted outcomes only; duplicates are never double-counted.
func (s *scrapeJobService) runKeyword(ctx context.Context, user *types.User, settings *types.UserSettings, kw *types.Keyword) (int, error) {
	candidates, err := s.search.Search(ctx, kw.Platform, kw.Keyword, kw.ResultsPerRun, settings.MinLikes, settings.DateFilter)
	if err != nil {
		return 0, fmt.Errorf("search: %w", err)
	}

	inserted := 0
	for _, cand := range candidates {
		outcome, _, err := s.ingest.Ingest(ctx, user.ID, kw.ID, cand)
		if err != nil {
			return inserted, fmt.Errorf("ingest %s: %w", cand.VideoURL, err)
		}
		if outcome == IngestInserted {
			inserted++
		}
	}

	// Best effort; the mirror never affects the run's outcome.
	if err := s.mirror.SyncNewVideos(ctx, user, kw, candidates); err != nil {
		s.log.Warn("Mirror sync failed", "keyword", kw.Keyword, "error", err)
	}
	return inserted, nil
}

func (s *scrapeJobService) failJob(ctx context.Context, jobID uuid.UUID, runLog *logger.Logger, cause error) {
	runLog.Error("Scrape job failed", "error", cause)
	if err := s.jobRepo.UpdateFields(ctx, nil, jobID, map[string]interface{}{
		"status":        types.JobFailed,
		"error_message": cause.Error(),
		"completed_at":  time.Now().UTC(),
	}); err != nil {
		runLog.Error("Failed to mark job failed", "error", err)
	}
}
