package design

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GeneratedDesign is a finalized generation session published to the feed.
// SessionID is kept for traceability only and is deliberately not unique.
type GeneratedDesign struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Title       string `gorm:"column:title;not null" json:"title"`
	Description string `gorm:"column:description;type:text;not null" json:"description"`
	Hashtags    string `gorm:"column:hashtags;not null;default:''" json:"hashtags"`
	Materials   string `gorm:"column:materials;type:text;not null;default:''" json:"materials"`

	ImageURL       string         `gorm:"column:image_url;not null" json:"image_url"`
	ImageURLs      datatypes.JSON `gorm:"column:image_urls" json:"image_urls"`
	SketchURL      string         `gorm:"column:sketch_url" json:"sketch_url"`
	FinalDesignURL string         `gorm:"column:final_design_url" json:"final_design_url"`
	TechFlatURL    string         `gorm:"column:tech_flat_url" json:"tech_flat_url"`
	TryOnURL       string         `gorm:"column:try_on_url" json:"try_on_url"`

	SessionID string `gorm:"column:session_id;index" json:"session_id"`
	ViewCount int64  `gorm:"column:view_count;not null;default:0" json:"view_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GeneratedDesign) TableName() string { return "design" }

func (d *GeneratedDesign) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
