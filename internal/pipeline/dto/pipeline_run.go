package dto

import "time"

// RunRequest describes one pipeline invocation.
type RunRequest struct {
	Trigger string
	Sectors []string
}

// RunResult is what a finished pipeline run reports.
type RunResult struct {
	RunID      string `json:"run_id"`
	Collected  int    `json:"collected"`
	Orphans    int    `json:"orphans"`
	Candidates int    `json:"candidates"`
	Persisted  int    `json:"new_signals"`
	Failed     int    `json:"failed"`
}

// PipelineRunResponse is the API view of a run history record.
type PipelineRunResponse struct {
	ID          string     `json:"id"`
	Trigger     string     `json:"trigger"`
	Sectors     []string   `json:"sectors"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    int64      `json:"duration_ms"`
	Collected   int        `json:"collected"`
	Orphans     int        `json:"orphans"`
	Candidates  int        `json:"candidates"`
	Persisted   int        `json:"persisted"`
	Failed      int        `json:"failed"`
	Error       string     `json:"error,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	OK      bool                 `json:"ok"`
	UTC     time.Time            `json:"utc"`
	Sectors []string             `json:"sectors"`
	State   string               `json:"state"`
	LastRun *PipelineRunResponse `json:"last_run,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
