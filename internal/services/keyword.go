package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

// KeywordService manages the search terms a user tracks. A keyword is unique
// per (user, keyword text, platform); the same text may be tracked on several
// platforms independently.
type KeywordService interface {
	Create(ctx context.Context, userID uuid.UUID, keyword string, platform types.Platform, resultsPerRun int) (*types.Keyword, error)
	CreateBulk(ctx context.Context, userID uuid.UUID, keywords []string, platform types.Platform, resultsPerRun int) ([]*types.Keyword, []string, error)
	List(ctx context.Context, userID uuid.UUID, platform *types.Platform, activeOnly bool) ([]*types.Keyword, error)
	Update(ctx context.Context, userID, keywordID uuid.UUID, updates map[string]interface{}) (*types.Keyword, error)
	Delete(ctx context.Context, userID, keywordID uuid.UUID) error
}

type keywordService struct {
	db          *gorm.DB
	log         *logger.Logger
	keywordRepo repos.KeywordRepo
}

func NewKeywordService(db *gorm.DB, log *logger.Logger, keywordRepo repos.KeywordRepo) KeywordService {
	return &keywordService{
		db:          db,
		log:         log.With("service", "KeywordService"),
		keywordRepo: keywordRepo,
	}
}

func (s *keywordService) Create(ctx context.Context, userID uuid.UUID, keyword string, platform types.Platform, resultsPerRun int) (*types.Keyword, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, fmt.Errorf("keyword required")
	}
	if resultsPerRun <= 0 {
		resultsPerRun = 10
	}

	exists, err := s.keywordRepo.Exists(ctx, nil, userID, keyword, platform)
	if err != nil {
		return nil, fmt.Errorf("check keyword: %w", err)
	}
	if exists {
		return nil, ErrKeywordExists
	}

	kw := &types.Keyword{
		ID:            uuid.New(),
		UserID:        userID,
		Keyword:       keyword,
		Platform:      platform,
		IsActive:      true,
		ResultsPerRun: resultsPerRun,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.keywordRepo.Create(ctx, nil, kw); err != nil {
		return nil, fmt.Errorf("create keyword: %w", err)
	}
	return kw, nil
}

// CreateBulk adds several keywords at once, skipping the ones already
// tracked. It returns the created rows and the skipped terms.
func (s *keywordService) CreateBulk(ctx context.Context, userID uuid.UUID, keywords []string, platform types.Platform, resultsPerRun int) ([]*types.Keyword, []string, error) {
	var created []*types.Keyword
	var skipped []string
	for _, raw := range keywords {
		kw, err := s.Create(ctx, userID, raw, platform, resultsPerRun)
		if err != nil {
			if err == ErrKeywordExists {
				skipped = append(skipped, strings.ToLower(strings.TrimSpace(raw)))
				continue
			}
			return created, skipped, err
		}
		created = append(created, kw)
	}
	return created, skipped, nil
}

func (s *keywordService) List(ctx context.Context, userID uuid.UUID, platform *types.Platform, activeOnly bool) ([]*types.Keyword, error) {
	return s.keywordRepo.ListByUser(ctx, nil, userID, platform, activeOnly)
}

// allowedKeywordFields guards Update against writing arbitrary columns.
var allowedKeywordFields = map[string]bool{
	"is_active":       true,
	"results_per_run": true,
}

func (s *keywordService) Update(ctx context.Context, userID, keywordID uuid.UUID, updates map[string]interface{}) (*types.Keyword, error) {
	kw, err := s.owned(ctx, userID, keywordID)
	if err != nil {
		return nil, err
	}

	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowedKeywordFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) > 0 {
		if err := s.keywordRepo.UpdateFields(ctx, nil, kw.ID, filtered); err != nil {
			return nil, fmt.Errorf("update keyword: %w", err)
		}
	}
	return s.keywordRepo.GetByID(ctx, nil, kw.ID)
}

func (s *keywordService) Delete(ctx context.Context, userID, keywordID uuid.UUID) error {
	kw, err := s.owned(ctx, userID, keywordID)
	if err != nil {
		return err
	}
	return s.keywordRepo.Delete(ctx, nil, kw.ID)
}

func (s *keywordService) owned(ctx context.Context, userID, keywordID uuid.UUID) (*types.Keyword, error) {
	kw, err := s.keywordRepo.GetByID(ctx, nil, keywordID)
	if err != nil {
		return nil, err
	}
	if kw == nil || kw.UserID != userID {
		return nil, ErrKeywordNotFound
	}
	return kw, nil
}
