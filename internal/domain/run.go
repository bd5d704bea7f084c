package domain

import "time"

// Run records one tool invocation
type Run struct {
	ID          string       `json:"id"`
	Tool        string       `json:"tool"`
	Input       string       `json:"input"`
	Output      string       `json:"output,omitempty"`
	Outcome     Outcome      `json:"outcome"`
	Error       string       `json:"error,omitempty"`
	N           uint64       `json:"n"`
	M           uint64       `json:"m"`
	Digest      string       `json:"digest,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// Duration returns how long the run took
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Finish stamps the run with its outcome
func (r *Run) Finish(err error) {
	r.FinishedAt = time.Now()
	r.Outcome = Classify(err)
	if err != nil {
		r.Error = err.Error()
	}
}
