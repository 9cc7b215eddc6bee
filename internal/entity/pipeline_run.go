package entity

import (
	"database/sql"
	"time"
)

// RunStatus represents the lifecycle of one pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun records one ingest, reconcile and analyze cycle.
type PipelineRun struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Trigger     string         `gorm:"size:16;not null" json:"trigger"`
	Sectors     string         `json:"sectors"`
	Status      RunStatus      `gorm:"size:16;not null;index:idx_pipeline_runs_status" json:"status"`
	StartedAt   time.Time      `gorm:"not null;index:idx_pipeline_runs_started_at,sort:desc" json:"started_at"`
	CompletedAt sql.NullTime   `json:"completed_at"`
	Collected   int            `json:"collected"`
	Orphans     int            `json:"orphans"`
	Candidates  int            `json:"candidates"`
	Persisted   int            `json:"persisted"`
	Failed      int            `json:"failed"`
	Error       sql.NullString `json:"error"`
}

// TableName specifies the table name for the PipelineRun model.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
