package types

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition may leave this status.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

type ScrapeJob struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Status JobStatus `gorm:"column:status;size:50;not null;default:'pending';index" json:"status"`

	// Nil means the run covers all platforms.
	Platform *Platform `gorm:"column:platform;size:50" json:"platform,omitempty"`

	KeywordsProcessed int `gorm:"column:keywords_processed;not null;default:0" json:"keywords_processed"`
	VideosFound       int `gorm:"column:videos_found;not null;default:0" json:"videos_found"`
	// Reserved; nothing in the pipeline increments this yet.
	VideosTranscribed int    `gorm:"column:videos_transcribed;not null;default:0" json:"videos_transcribed"`
	ErrorMessage      string `gorm:"column:error_message;type:text" json:"error_message"`

	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
}

func (ScrapeJob) TableName() string {
	return "scrape_job"
}
