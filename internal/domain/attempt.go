package domain

import "time"

// Outcome classifies a single probe attempt.
type Outcome string

const (
	// OutcomeOK is any 2xx response.
	OutcomeOK Outcome = "ok"
	// OutcomeWarning is a non-2xx response outside the blocked set.
	// The endpoint answered, so the run keeps going.
	OutcomeWarning Outcome = "ok-with-warning"
	// OutcomeBlocked is a response from the blocked set (429, 403, 503).
	// It terminates the run.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeError is a transport-level failure: no HTTP status exists.
	OutcomeError Outcome = "error"
)

// Reason records why a probe run stopped.
type Reason string

const (
	ReasonBlocked     Reason = "blocked"
	ReasonMaxAttempts Reason = "max_attempts"
	ReasonCancelled   Reason = "cancelled"
)

// Attempt is the record of one request issued by a probe run.
// Attempts are appended in issue order; Index is 1-based.
type Attempt struct {
	Index      int       `json:"index"`
	StatusCode int       `json:"status_code,omitempty"`
	LatencyMS  float64   `json:"latency_ms"`
	Outcome    Outcome   `json:"outcome"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CacheQuery string    `json:"cache_query,omitempty"`
	Err        string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

// Summary aggregates a finished probe run. It is complete for every
// termination reason, including cancellation after zero attempts.
type Summary struct {
	RunID       string    `json:"run_id"`
	Target      string    `json:"target"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Attempts    int       `json:"attempts"`
	OK          int       `json:"ok"`
	Warnings    int       `json:"warnings"`
	Blocked     int       `json:"blocked"`
	Errors      int       `json:"errors"`
	FinalStatus int       `json:"final_status,omitempty"`
	Reason      Reason    `json:"reason"`
}

// Duration is the wall-clock span of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
