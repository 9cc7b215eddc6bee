package entity

import "time"

// Curation is an operator annotation on a signal. The pipeline only reads it.
type Curation struct {
	SignalID  string    `gorm:"primaryKey;size:32" json:"signal_id"`
	Starred   bool      `gorm:"not null;default:false;index:idx_curations_starred" json:"starred"`
	Note      string    `json:"note"`
	Tags      string    `json:"tags"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Curation model.
func (Curation) TableName() string {
	return "curations"
}
