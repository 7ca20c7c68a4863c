package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TranscriptionStatus string

const (
	TranscriptionPending    TranscriptionStatus = "pending"
	TranscriptionProcessing TranscriptionStatus = "processing"
	TranscriptionCompleted  TranscriptionStatus = "completed"
	TranscriptionFailed     TranscriptionStatus = "failed"
)

type Video struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	KeywordID uuid.UUID `gorm:"type:uuid;not null;index" json:"keyword_id"`
	Keyword   *Keyword  `gorm:"constraint:OnDelete:CASCADE;foreignKey:KeywordID;references:ID" json:"keyword,omitempty"`

	Platform       Platform `gorm:"column:platform;size:50;not null" json:"platform"`
	VideoURL       string   `gorm:"column:video_url;size:500;not null;uniqueIndex" json:"video_url"`
	VideoID        string   `gorm:"column:video_id;size:255" json:"video_id"`
	AuthorUsername string   `gorm:"column:author_username;size:255" json:"author_username"`
	AuthorName     string   `gorm:"column:author_name;size:255" json:"author_name"`
	Description    string   `gorm:"column:description;type:text" json:"description"`

	Likes    int `gorm:"column:likes;not null;default:0" json:"likes"`
	Comments int `gorm:"column:comments;not null;default:0" json:"comments"`
	Shares   int `gorm:"column:shares;not null;default:0" json:"shares"`
	Views    int `gorm:"column:views;not null;default:0" json:"views"`

	Transcription       string              `gorm:"column:transcription;type:text" json:"transcription"`
	TranscriptionStatus TranscriptionStatus `gorm:"column:transcription_status;size:50;not null;default:'pending';index" json:"transcription_status"`

	// Raw provider payload for fields the columns above do not capture.
	ProviderData datatypes.JSON `gorm:"column:provider_data;type:jsonb" json:"provider_data,omitempty"`

	PostedAt  *time.Time `gorm:"column:posted_at" json:"posted_at,omitempty"`
	ScrapedAt time.Time  `gorm:"column:scraped_at;not null;index" json:"scraped_at"`
}

func (Video) TableName() string {
	return "video"
}
