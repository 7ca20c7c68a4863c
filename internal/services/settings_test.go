package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/viraltrack/viraltrack-backend/internal/repos"
	"github.com/viraltrack/viraltrack-backend/internal/types"
)

func newSettingsFixture(t *testing.T, mirror SheetMirrorService) (SettingsService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewSettingsService(db, log, repos.NewUserSettingsRepo(db, log), repos.NewUserRepo(db, log), mirror)
	return svc, db
}

func TestGetOrCreateLazilyCreatesDefaults(t *testing.T) {
	svc, db := newSettingsFixture(t, &fakeMirror{})
	user := seedUser(t, db)
	ctx := context.Background()

	settings, err := svc.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if settings.ScrapeFrequency != "daily" || settings.ScrapeTime != "09:00" {
		t.Fatalf("schedule defaults: %+v", settings)
	}
	if settings.MinLikes != 1000 || settings.MinViews != 5000 {
		t.Fatalf("threshold defaults: %+v", settings)
	}
	if settings.DateFilter != "this_week" || !settings.EmailNotifications {
		t.Fatalf("remaining defaults: %+v", settings)
	}

	again, err := svc.GetOrCreate(ctx, user.ID)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if again.ID != settings.ID {
		t.Fatal("second call must return the same row, not create another")
	}

	var count int64
	if err := db.Model(&types.UserSettings{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if count != 1 {
		t.Fatalf("want 1 settings row got %d", count)
	}
}

func TestUpdateIgnoresUnknownSettingsFields(t *testing.T) {
	svc, db := newSettingsFixture(t, &fakeMirror{})
	user := seedUser(t, db)
	ctx := context.Background()

	updated, err := svc.Update(ctx, user.ID, map[string]interface{}{
		"min_likes":       2500,
		"scrape_time":     "17:30",
		"google_sheet_id": "smuggled",
		"user_id":         "smuggled",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MinLikes != 2500 || updated.ScrapeTime != "17:30" {
		t.Fatalf("allowed fields not applied: %+v", updated)
	}
	if updated.UserID != user.ID {
		t.Fatal("user_id must never be writable")
	}

	var fresh types.User
	if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.GoogleSheetID != "" {
		t.Fatalf("google_sheet_id must only change via ConnectSheet, got %q", fresh.GoogleSheetID)
	}
}

func TestConnectSheetVerifiesBeforeSaving(t *testing.T) {
	svc, db := newSettingsFixture(t, NewNoopSheetMirror(newTestLogger(t)))
	user := seedUser(t, db)
	ctx := context.Background()

	// The noop mirror rejects verification, so nothing may be persisted.
	if err := svc.ConnectSheet(ctx, user.ID, "sheet-123"); err == nil {
		t.Fatal("expected verification failure")
	}
	var fresh types.User
	if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.GoogleSheetID != "" {
		t.Fatalf("sheet id persisted despite failed verification: %q", fresh.GoogleSheetID)
	}
}

func TestConnectSheetSavesVerifiedSheet(t *testing.T) {
	svc, db := newSettingsFixture(t, &fakeMirror{})
	user := seedUser(t, db)
	ctx := context.Background()

	if err := svc.ConnectSheet(ctx, user.ID, "sheet-123"); err != nil {
		t.Fatalf("ConnectSheet: %v", err)
	}
	var fresh types.User
	if err := db.First(&fresh, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if fresh.GoogleSheetID != "sheet-123" {
		t.Fatalf("sheet id: %q", fresh.GoogleSheetID)
	}
}
