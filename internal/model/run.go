package model

import "time"

// RunStatus tracks a spread run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// ExtractionMode selects the orchestration path for a run.
type ExtractionMode string

const (
	ModeSingle      ExtractionMode = "single"
	ModeMultiPeriod ExtractionMode = "multi_period"
	ModeCombined    ExtractionMode = "combined"
)

// Run is one persisted spread invocation.
type Run struct {
	ID            string         `json:"id"`
	FilePath      string         `json:"file_path"`
	StatementType StatementType  `json:"statement_type"`
	Mode          ExtractionMode `json:"mode"`
	Status        RunStatus      `json:"status"`
	Result        *SpreadResult  `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// BatchFileResult is one document's outcome inside a batch. The batch result
// slice preserves submission order; a failed file occupies its slot with
// Error set rather than being dropped.
type BatchFileResult struct {
	FilePath string        `json:"file_path"`
	Result   *SpreadResult `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	Files     []BatchFileResult `json:"files"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
}
