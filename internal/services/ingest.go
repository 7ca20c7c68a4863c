package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

type IngestOutcome int

const (
	IngestSkipped IngestOutcome = iota
	IngestInserted
)

// IngestService decides whether a search candidate is new and persists it
// exactly once. The video URL is the sole dedup key and its scope is global:
// two users tracking the same keyword share one Video row.
type IngestService interface {
	Ingest(ctx context.Context, userID, keywordID uuid.UUID, candidate VideoCandidate) (IngestOutcome, *types.Video, error)
}

type ingestService struct {
	db        *gorm.DB
	log       *logger.Logger
	videoRepo repos.VideoRepo
}

func NewIngestService(db *gorm.DB, log *logger.Logger, videoRepo repos.VideoRepo) IngestService {
	return &ingestService{
		db:        db,
		log:       log.With("service", "IngestService"),
		videoRepo: videoRepo,
	}
}

func (s *ingestService) Ingest(ctx context.Context, userID, keywordID uuid.UUID, candidate VideoCandidate) (IngestOutcome, *types.Video, error) {
	if candidate.VideoURL == "" {
		return IngestSkipped, nil, fmt.Errorf("candidate has no video url")
	}

	var (
		outcome IngestOutcome
		video   *types.Video
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.videoRepo.GetByURL(ctx, tx, candidate.VideoURL)
		if err != nil {
			return fmt.Errorf("lookup video by url: %w", err)
		}
		if existing != nil {
			outcome = IngestSkipped
			return nil
		}

		v := &types.Video{
			ID:                  uuid.New(),
			UserID:              userID,
			KeywordID:           keywordID,
			Platform:            candidate.Platform,
			VideoURL:            candidate.VideoURL,
			VideoID:             candidate.VideoID,
			AuthorUsername:      candidate.AuthorUsername,
			AuthorName:          candidate.AuthorName,
			Description:         candidate.Description,
			Likes:               candidate.Likes,
			Comments:            candidate.Comments,
			Shares:              candidate.Shares,
			Views:               candidate.Views,
			TranscriptionStatus: types.TranscriptionPending,
			PostedAt:            candidate.PostedAt,
			ScrapedAt:           time.Now().UTC(),
		}
		if len(candidate.Raw) > 0 {
			v.ProviderData = datatypes.JSON(candidate.Raw)
		}
		if err := s.videoRepo.Create(ctx, tx, v); err != nil {
			// The unique index on video_url is the backstop against a
			// concurrent insert racing past the lookup above.
			if isDuplicateKey(err) {
				outcome = IngestSkipped
				return nil
			}
			return fmt.Errorf("insert video: %w", err)
		}
		outcome = IngestInserted
		video = v
		return nil
	})
	if err != nil {
		return IngestSkipped, nil, err
	}
	return outcome, video, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}
