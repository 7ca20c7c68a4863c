package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type ScrapeJobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, job *types.ScrapeJob) error
	GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*types.ScrapeJob, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ScrapeJob, error)
	GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.ScrapeJob, error)
	// HasActive reports whether the user owns a job in pending or running state.
	HasActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, updates map[string]interface{}) error
}

type scrapeJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScrapeJobRepo(db *gorm.DB, baseLog *logger.Logger) ScrapeJobRepo {
	return &scrapeJobRepo{db: db, log: baseLog.With("repo", "ScrapeJobRepo")}
}

func (r *scrapeJobRepo) Create(ctx context.Context, tx *gorm.DB, job *types.ScrapeJob) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(job).Error
}

func (r *scrapeJobRepo) GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*types.ScrapeJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.ScrapeJob
	err := transaction.WithContext(ctx).
		Where("id = ?", jobID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *scrapeJobRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ScrapeJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.ScrapeJob
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scrapeJobRepo) GetLatestByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.ScrapeJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.ScrapeJob
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *scrapeJobRepo) HasActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ScrapeJob{}).
		Where("user_id = ? AND status IN ?", userID, []types.JobStatus{types.JobPending, types.JobRunning}).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *scrapeJobRepo) UpdateFields(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if jobID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ScrapeJob{}).
		Where("id = ?", jobID).
		Updates(updates).Error
}
