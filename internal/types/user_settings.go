package types

import (
	"time"

	"github.com/google/uuid"
)

type UserSettings struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	AutoScrapeEnabled bool   `gorm:"column:auto_scrape_enabled;not null;default:true" json:"auto_scrape_enabled"`
	ScrapeFrequency   string `gorm:"column:scrape_frequency;size:50;not null;default:'daily'" json:"scrape_frequency"`
	ScrapeTime        string `gorm:"column:scrape_time;size:10;not null;default:'09:00'" json:"scrape_time"`

	MinLikes int `gorm:"column:min_likes;not null;default:1000" json:"min_likes"`
	// Read by the fan-out but not applied as a search filter.
	MinViews   int    `gorm:"column:min_views;not null;default:5000" json:"min_views"`
	DateFilter string `gorm:"column:date_filter;size:50;not null;default:'this_week'" json:"date_filter"`

	EmailNotifications bool `gorm:"column:email_notifications;not null;default:true" json:"email_notifications"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// DefaultUserSettings returns the settings row a user starts with before
// ever saving preferences.
func DefaultUserSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		ID:                 uuid.New(),
		UserID:             userID,
		AutoScrapeEnabled:  true,
		ScrapeFrequency:    "daily",
		ScrapeTime:         "09:00",
		MinLikes:           1000,
		MinViews:           5000,
		DateFilter:         "this_week",
		EmailNotifications: true,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
}
