package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

// VideoService is the read/delete surface over stored videos. Writes happen
// only through ingestion and transcription.
type VideoService interface {
	Get(ctx context.Context, userID, videoID uuid.UUID) (*types.Video, error)
	List(ctx context.Context, userID uuid.UUID, filter repos.VideoFilter) ([]*types.Video, error)
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Video, error)
	ListByKeyword(ctx context.Context, userID, keywordID uuid.UUID, limit int) ([]*types.Video, error)
	ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Video, error)
	Search(ctx context.Context, userID uuid.UUID, term string, includeTranscripts bool, limit int) ([]*types.Video, error)
	Delete(ctx context.Context, userID, videoID uuid.UUID) error
}

type videoService struct {
	db          *gorm.DB
	log         *logger.Logger
	videoRepo   repos.VideoRepo
	keywordRepo repos.KeywordRepo
}

func NewVideoService(db *gorm.DB, log *logger.Logger, videoRepo repos.VideoRepo, keywordRepo repos.KeywordRepo) VideoService {
	return &videoService{
		db:          db,
		log:         log.With("service", "VideoService"),
		videoRepo:   videoRepo,
		keywordRepo: keywordRepo,
	}
}

func (s *videoService) Get(ctx context.Context, userID, videoID uuid.UUID) (*types.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil || video.UserID != userID {
		return nil, ErrVideoNotFound
	}
	return video, nil
}

func (s *videoService) List(ctx context.Context, userID uuid.UUID, filter repos.VideoFilter) ([]*types.Video, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.videoRepo.List(ctx, nil, userID, filter)
}

func (s *videoService) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Video, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return s.videoRepo.ListRecent(ctx, nil, userID, limit)
}

func (s *videoService) ListByKeyword(ctx context.Context, userID, keywordID uuid.UUID, limit int) ([]*types.Video, error) {
	kw, err := s.keywordRepo.GetByID(ctx, nil, keywordID)
	if err != nil {
		return nil, err
	}
	if kw == nil || kw.UserID != userID {
		return nil, ErrKeywordNotFound
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.videoRepo.ListByKeyword(ctx, nil, keywordID, limit)
}

func (s *videoService) ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Video, error) {
	return s.videoRepo.ListPendingByUser(ctx, nil, userID, limit)
}

func (s *videoService) Search(ctx context.Context, userID uuid.UUID, term string, includeTranscripts bool, limit int) ([]*types.Video, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.videoRepo.Search(ctx, nil, userID, term, includeTranscripts, limit)
}

func (s *videoService) Delete(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, videoID); err != nil {
		return err
	}
	return s.videoRepo.Delete(ctx, nil, videoID)
}
