package history

import "time"

// Status is the outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one row of the ledger.
type Run struct {
	ID               int64
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	Status           Status
	DryRun           bool
	OutputPath       string
	BackupPath       string
	OutputSHA256     string
	Libraries        int
	Categories       int
	Links            int
	InlineItems      int
	InvalidFragments int
	Error            string
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
