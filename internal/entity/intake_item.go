package entity

import (
	"time"

	"gorm.io/datatypes"
)

// IntakeItem is a raw candidate item as collected from a source, before analysis.
// Rows are written once with insert-or-ignore and never updated.
type IntakeItem struct {
	ID         string         `gorm:"primaryKey;size:32" json:"id"`
	ObservedAt time.Time      `gorm:"not null;index:idx_intake_observed_at,sort:desc" json:"observed_at"`
	Sector     string         `gorm:"size:64;not null;index:idx_intake_sector" json:"sector"`
	Title      string         `gorm:"not null" json:"title"`
	Link       string         `json:"link"`
	SourceURL  string         `gorm:"column:source_url" json:"source_url"`
	RawPayload datatypes.JSON `json:"raw_payload,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the IntakeItem model.
func (IntakeItem) TableName() string {
	return "intake_items"
}
