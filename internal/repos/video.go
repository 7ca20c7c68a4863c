package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

// VideoFilter narrows List; zero values mean "no restriction".
type VideoFilter struct {
	Platform            *types.Platform
	KeywordID           *uuid.UUID
	TranscriptionStatus *types.TranscriptionStatus
	ScrapedSince        *time.Time
	Limit               int
	Offset              int
}

type PlatformStats struct {
	Platform    types.Platform `json:"platform"`
	TotalVideos int64          `json:"total_videos"`
	TotalLikes  int64          `json:"total_likes"`
	AvgLikes    int64          `json:"avg_likes"`
	TotalViews  int64          `json:"total_views"`
}

type KeywordStats struct {
	Keyword     string         `json:"keyword"`
	Platform    types.Platform `json:"platform"`
	TotalVideos int64          `json:"total_videos"`
	TotalLikes  int64          `json:"total_likes"`
	AvgLikes    int64          `json:"avg_likes"`
}

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, video *types.Video) error
	GetByID(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*types.Video, error)
	GetByURL(ctx context.Context, tx *gorm.DB, videoURL string) (*types.Video, error)
	List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter VideoFilter) ([]*types.Video, error)
	ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Video, error)
	ListByKeyword(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID, limit int) ([]*types.Video, error)
	ListPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Video, error)
	Search(ctx context.Context, tx *gorm.DB, userID uuid.UUID, term string, includeTranscripts bool, limit int) ([]*types.Video, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error

	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CountByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error)
	CountPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	StatsByPlatform(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]PlatformStats, error)
	StatsByKeyword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, platform *types.Platform, since time.Time) ([]KeywordStats, error)
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, video *types.Video) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(video).Error
}

func (r *videoRepo) GetByID(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var video types.Video
	err := transaction.WithContext(ctx).
		Where("id = ?", videoID).
		First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) GetByURL(ctx context.Context, tx *gorm.DB, videoURL string) (*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var video types.Video
	err := transaction.WithContext(ctx).
		Where("video_url = ?", videoURL).
		First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter VideoFilter) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Platform != nil {
		q = q.Where("platform = ?", *filter.Platform)
	}
	if filter.KeywordID != nil {
		q = q.Where("keyword_id = ?", *filter.KeywordID)
	}
	if filter.TranscriptionStatus != nil {
		q = q.Where("transcription_status = ?", *filter.TranscriptionStatus)
	}
	if filter.ScrapedSince != nil {
		q = q.Where("scraped_at >= ?", *filter.ScrapedSince)
	}
	q = q.Order("likes DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var out []*types.Video
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) ListRecent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Video
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scraped_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) ListByKeyword(ctx context.Context, tx *gorm.DB, keywordID uuid.UUID, limit int) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Video
	if err := transaction.WithContext(ctx).
		Where("keyword_id = ?", keywordID).
		Order("likes DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) ListPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND transcription_status = ?", userID, types.TranscriptionPending).
		Order("scraped_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Video
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) Search(ctx context.Context, tx *gorm.DB, userID uuid.UUID, term string, includeTranscripts bool, limit int) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	pattern := "%" + term + "%"
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if includeTranscripts {
		q = q.Where("description LIKE ? OR transcription LIKE ?", pattern, pattern)
	} else {
		q = q.Where("description LIKE ?", pattern)
	}
	var out []*types.Video
	if err := q.Order("likes DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) UpdateFields(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if videoID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("id = ?", videoID).
		Updates(updates).Error
}

func (r *videoRepo) Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", videoID).
		Delete(&types.Video{}).Error
}

func (r *videoRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *videoRepo) CountByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("user_id = ? AND scraped_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *videoRepo) CountPendingByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("user_id = ? AND transcription_status = ?", userID, types.TranscriptionPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *videoRepo) StatsByPlatform(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]PlatformStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []PlatformStats
	err := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Select(`platform,
			COUNT(id) AS total_videos,
			COALESCE(SUM(likes), 0) AS total_likes,
			COALESCE(AVG(likes), 0) AS avg_likes,
			COALESCE(SUM(views), 0) AS total_views`).
		Where("user_id = ? AND scraped_at >= ?", userID, since).
		Group("platform").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) StatsByKeyword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, platform *types.Platform, since time.Time) ([]KeywordStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Select(`keyword.keyword AS keyword,
			keyword.platform AS platform,
			COUNT(video.id) AS total_videos,
			COALESCE(SUM(video.likes), 0) AS total_likes,
			COALESCE(AVG(video.likes), 0) AS avg_likes`).
		Joins("JOIN keyword ON keyword.id = video.keyword_id").
		Where("keyword.user_id = ? AND video.scraped_at >= ?", userID, since)
	if platform != nil {
		q = q.Where("keyword.platform = ?", *platform)
	}
	var out []KeywordStats
	if err := q.Group("keyword.id, keyword.keyword, keyword.platform").
		Order("total_likes DESC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
