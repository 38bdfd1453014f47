package domain

import "time"

// Outcome is the result of synchronizing one record.
type Outcome string

const (
	OutcomeCreated        Outcome = "created"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeRemoteError    Outcome = "remote_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeProbeDegraded  Outcome = "probe_degraded"
)

// IsError reports whether the outcome counts towards the run's errors.
func (o Outcome) IsError() bool {
	switch o {
	case OutcomeRemoteError, OutcomeTransportError, OutcomeProbeDegraded:
		return true
	}
	return false
}

// SyncResult pairs an outcome with the causal error text, if any.
type SyncResult struct {
	Outcome Outcome
	Detail  string
}

// OutcomeEvent is the per-record message handed to the notification layer.
type OutcomeEvent struct {
	RunID     string    `json:"run_id" db:"run_id"`
	Row       int       `json:"row" db:"sheet_row"`
	Name      string    `json:"name" db:"name"`
	Article   string    `json:"article" db:"article"`
	Outcome   Outcome   `json:"outcome" db:"outcome"`
	Detail    string    `json:"detail,omitempty" db:"detail"`
	Timestamp time.Time `json:"timestamp" db:"processed_at"`
}

// RunStats holds statistics about one import run.
type RunStats struct {
	RunID         string        `json:"run_id" db:"run_id"`
	Source        string        `json:"source" db:"source"`
	Rows          int           `json:"rows" db:"rows"`
	Rejected      int           `json:"rejected" db:"rejected"`
	Total         int           `json:"total" db:"total"`
	Created       int           `json:"created" db:"created"`
	Duplicate     int           `json:"duplicate" db:"duplicate"`
	Errors        int           `json:"error" db:"errors"`
	ProbeDegraded int           `json:"probe_degraded" db:"probe_degraded"`
	StartedAt     time.Time     `json:"started_at" db:"started_at"`
	Duration      time.Duration `json:"duration" db:"duration"`
}

// Record counts one outcome. Probe-degraded records count as errors too.
func (s *RunStats) Record(o Outcome) {
	s.Total++
	switch o {
	case OutcomeCreated:
		s.Created++
	case OutcomeDuplicate:
		s.Duplicate++
	case OutcomeProbeDegraded:
		s.ProbeDegraded++
	}
	if o.IsError() {
		s.Errors++
	}
}
