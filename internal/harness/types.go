package harness

import (
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/scoring"
)

// TraceEvent records what one step did.
type TraceEvent struct {
	Step         int       `json:"step"`
	Op           string    `json:"op"`
	At           time.Time `json:"at"`
	Contest      string    `json:"contest,omitempty"`
	Catch        string    `json:"catch,omitempty"`
	Status       string    `json:"status,omitempty"`
	ValidationID string    `json:"validation_id,omitempty"`
	Seq          int64     `json:"seq,omitempty"`
	Error        string    `json:"error,omitempty"`

	// Catches lists catch ids returned by poll and candidates, in order.
	Catches []string `json:"catches,omitempty"`

	// Ranks lists "rank user score" lines returned by score.
	Ranks []string `json:"ranks,omitempty"`

	// Count is the number of records returned by history.
	Count int `json:"count,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Leaderboards holds the final leaderboard of every contest in the facts,
	// keyed by contest id.
	Leaderboards map[string]scoring.Leaderboard `json:"leaderboards"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:         true,
		Trace:        []TraceEvent{},
		Errors:       []string{},
		Leaderboards: make(map[string]scoring.Leaderboard),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
