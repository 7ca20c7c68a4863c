package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type KeywordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, keyword *types.Keyword) error
	GetByID(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID) (*types.Keyword, error)
	// ListByUser returns the user's keywords, optionally restricted to a
	// platform and to active ones only.
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, platform *types.Platform, activeOnly bool) ([]*types.Keyword, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keyword string, platform types.Platform) (bool, error)
	CountActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID) error
}

type keywordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	return &keywordRepo{db: db, log: baseLog.With("repo", "KeywordRepo")}
}

func (r *keywordRepo) Create(ctx context.Context, tx *gorm.DB, keyword *types.Keyword) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(keyword).Error
}

func (r *keywordRepo) GetByID(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID) (*types.Keyword, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var kw types.Keyword
	err := transaction.WithContext(ctx).
		Where("id = ?", keywordID).
		First(&kw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

func (r *keywordRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, platform *types.Platform, activeOnly bool) ([]*types.Keyword, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if platform != nil {
		q = q.Where("platform = ?", *platform)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []*types.Keyword
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *keywordRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keyword string, platform types.Platform) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Keyword{}).
		Where("user_id = ? AND keyword = ? AND platform = ?", userID, keyword, platform).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *keywordRepo) CountActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Keyword{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *keywordRepo) UpdateFields(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if keywordID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Keyword{}).
		Where("id = ?", keywordID).
		Updates(updates).Error
}

func (r *keywordRepo) Delete(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", keywordID).
		Delete(&types.Keyword{}).Error
}
