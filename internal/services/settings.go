package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/logger"
	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

// SettingsService manages per-user preferences. Settings rows are created
// lazily with defaults the first time a user touches them.
type SettingsService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error)
	Update(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) (*types.UserSettings, error)
	ConnectSheet(ctx context.Context, userID uuid.UUID, sheetID string) error
}

type settingsService struct {
	db           *gorm.DB
	log          *logger.Logger
	settingsRepo repos.UserSettingsRepo
	userRepo     repos.UserRepo
	mirror       SheetMirrorService
}

func NewSettingsService(
	db *gorm.DB,
	log *logger.Logger,
	settingsRepo repos.UserSettingsRepo,
	userRepo repos.UserRepo,
	mirror SheetMirrorService,
) SettingsService {
	return &settingsService{
		db:           db,
		log:          log.With("service", "SettingsService"),
		settingsRepo: settingsRepo,
		userRepo:     userRepo,
		mirror:       mirror,
	}
}

func (s *settingsService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	settings = types.DefaultUserSettings(userID)
	if err := s.settingsRepo.Create(ctx, nil, settings); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	s.log.Info("Created default settings", "user_id", userID)
	return settings, nil
}

// allowedSettingsFields guards Update against writing arbitrary columns.
var allowedSettingsFields = map[string]bool{
	"auto_scrape_enabled": true,
	"scrape_frequency":    true,
	"scrape_time":         true,
	"min_likes":           true,
	"min_views":           true,
	"date_filter":         true,
	"email_notifications": true,
}

func (s *settingsService) Update(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) (*types.UserSettings, error) {
	settings, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowedSettingsFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) > 0 {
		if err := s.settingsRepo.UpdateFields(ctx, nil, settings.ID, filtered); err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
	}
	return s.settingsRepo.GetByUserID(ctx, nil, userID)
}

// ConnectSheet stores the spreadsheet id on the user after verifying the
// service account can actually write to it, then provisions the per-platform
// worksheets.
func (s *settingsService) ConnectSheet(ctx context.Context, userID uuid.UUID, sheetID string) error {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if _, err := s.mirror.VerifyAccess(ctx, sheetID); err != nil {
		return fmt.Errorf("verify sheet access: %w", err)
	}
	if err := s.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{
		"google_sheet_id": sheetID,
	}); err != nil {
		return fmt.Errorf("save sheet id: %w", err)
	}
	if err := s.mirror.SetupUserSheet(ctx, sheetID); err != nil {
		s.log.Warn("Worksheet setup failed", "user_id", userID, "error", err)
	}
	s.log.Info("Connected spreadsheet", "user_id", userID)
	return nil
}
