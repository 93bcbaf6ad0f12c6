package models

import "time"

// JobStatus enumerates batch job lifecycle states. Transitions are monotonic:
// pending -> processing -> completed|failed, with no regressions.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobResultItem holds the outcome for one input message. Exactly one of
// Output or Error is set once the item resolves.
type JobResultItem struct {
	Index   int             `json:"index"`
	Message string          `json:"message"`
	Output  *AnalysisResult `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Resolved reports whether the item reached a terminal outcome.
func (i JobResultItem) Resolved() bool {
	return i.Output != nil || i.Error != ""
}

// BatchJob is the durable record for one asynchronous batch of analyses.
// Results are index-addressed so the externally observed ordering is always
// input order regardless of completion order.
type BatchJob struct {
	JobID               string          `json:"job_id"`
	OwnerID             string          `json:"owner_id"`
	Status              JobStatus       `json:"status"`
	Total               int             `json:"total"`
	Processed           int             `json:"processed"`
	Results             []JobResultItem `json:"results"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	EstimatedCompletion *time.Time      `json:"estimated_completion,omitempty"`
	// Error holds a job-level fatal error only; per-item failures live in Results.
	Error string `json:"error,omitempty"`
}

// ProgressPercentage derives completion progress from the processed counter.
func (j BatchJob) ProgressPercentage() float64 {
	if j.Total == 0 {
		return 0
	}
	return float64(j.Processed) / float64(j.Total) * 100
}

// Clone returns a deep copy safe to hand to concurrent readers.
func (j BatchJob) Clone() BatchJob {
	out := j
	out.Results = append([]JobResultItem(nil), j.Results...)
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	if j.EstimatedCompletion != nil {
		t := *j.EstimatedCompletion
		out.EstimatedCompletion = &t
	}
	return out
}
