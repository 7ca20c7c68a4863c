package types

import (
	"time"

	"github.com/google/uuid"
)

type Keyword struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Keyword       string    `gorm:"column:keyword;size:255;not null" json:"keyword"`
	Platform      Platform  `gorm:"column:platform;size:50;not null" json:"platform"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	ResultsPerRun int       `gorm:"column:results_per_run;not null;default:10" json:"results_per_run"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (Keyword) TableName() string {
	return "keyword"
}
