package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/fixtures"
)

// Scenario defines a conformance test scenario.
// A scenario seeds facts, runs timed steps and asserts on the final ledger.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Clock is the RFC 3339 time the manual clock starts at.
	Clock string `yaml:"clock"`

	// Facts seeds the store before the first step.
	Facts fixtures.Document `yaml:"facts"`

	// Steps run in order against the engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state after all steps.
	// Supported types: leaderboard, current_status, feed, candidates, history_count
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation against the engine.
type Step struct {
	// Op is one of decide, score, poll, candidates, history.
	Op string `yaml:"op"`

	// At sets the clock to an absolute RFC 3339 time before the step runs.
	At string `yaml:"at,omitempty"`

	// Advance moves the clock forward by a Go duration before the step runs.
	Advance string `yaml:"advance,omitempty"`

	// Contest is the contest id (score, poll, candidates).
	Contest string `yaml:"contest,omitempty"`

	// Catch is the catch id (decide, history).
	Catch string `yaml:"catch,omitempty"`

	// Validator, Status and Reason describe a decision (decide).
	Validator string `yaml:"validator,omitempty"`
	Status    string `yaml:"status,omitempty"`
	Reason    string `yaml:"reason,omitempty"`

	// Since is the RFC 3339 lower bound of a poll. Empty uses the feed default.
	Since string `yaml:"since,omitempty"`

	// Expect specifies a required failure. If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected step failure.
type ExpectClause struct {
	// Error is the expected error code (NOT_FOUND, INVALID_DECISION, STORE_UNAVAILABLE).
	Error string `yaml:"error"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "leaderboard": check ranks and totals of a contest
	// - "current_status": check the derived status of a catch
	// - "feed": check the catch ids a poll returns
	// - "candidates": check the candidate catch ids of a contest
	// - "history_count": check the number of records for a catch
	Type string `yaml:"type"`

	// Contest is the contest id (leaderboard, feed, candidates).
	Contest string `yaml:"contest,omitempty"`

	// Catch is the catch id (current_status, history_count).
	Catch string `yaml:"catch,omitempty"`

	// Status is the expected status (current_status).
	Status string `yaml:"status,omitempty"`

	// Ranks is the expected entry list, in rank order (leaderboard).
	// The list must match exactly; an empty list expects an empty leaderboard.
	Ranks []RankExpectation `yaml:"ranks,omitempty"`

	// TotalParticipants and TotalApprovedCatches are optional totals (leaderboard).
	TotalParticipants    *int `yaml:"total_participants,omitempty"`
	TotalApprovedCatches *int `yaml:"total_approved_catches,omitempty"`

	// Since is the poll lower bound (feed). Empty uses the feed default.
	Since string `yaml:"since,omitempty"`

	// Catches is the expected catch id order (feed, candidates).
	Catches []string `yaml:"catches,omitempty"`

	// Count is the expected record count (history_count).
	Count *int `yaml:"count,omitempty"`
}

// RankExpectation is one expected leaderboard entry.
type RankExpectation struct {
	User  string   `yaml:"user"`
	Score *float64 `yaml:"score,omitempty"`
}

// Step op constants.
const (
	OpDecide     = "decide"
	OpScore      = "score"
	OpPoll       = "poll"
	OpCandidates = "candidates"
	OpHistory    = "history"
)

// Assertion type constants.
const (
	AssertLeaderboard   = "leaderboard"
	AssertCurrentStatus = "current_status"
	AssertFeed          = "feed"
	AssertCandidates    = "candidates"
	AssertHistoryCount  = "history_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// The facts block is checked against the fixtures schema before the
	// strict decode so that structural errors carry schema paths.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if facts, ok := raw["facts"]; ok {
		if errs := fixtures.CheckSchema(facts); len(errs) > 0 {
			return nil, fmt.Errorf("invalid scenario facts: %w", errs)
		}
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Clock == "" {
		return fmt.Errorf("clock is required")
	}
	if _, err := fixtures.ParseTime(s.Clock); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	if errs := s.Facts.Validate(); len(errs) > 0 {
		return fmt.Errorf("facts: %w", errs)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, st *Step) error {
	if st.At != "" && st.Advance != "" {
		return fmt.Errorf("steps[%d]: at and advance are mutually exclusive", index)
	}
	if st.At != "" {
		if _, err := fixtures.ParseTime(st.At); err != nil {
			return fmt.Errorf("steps[%d].at: %w", index, err)
		}
	}
	if st.Advance != "" {
		d, err := time.ParseDuration(st.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d].advance: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d].advance: clock cannot move backwards", index)
		}
	}
	if st.Since != "" {
		if _, err := fixtures.ParseTime(st.Since); err != nil {
			return fmt.Errorf("steps[%d].since: %w", index, err)
		}
	}
	if st.Expect != nil {
		switch contest.ErrorCode(st.Expect.Error) {
		case contest.ErrCodeNotFound, contest.ErrCodeInvalidDecision, contest.ErrCodeStoreUnavailable:
		default:
			return fmt.Errorf("steps[%d].expect: unknown error code %q", index, st.Expect.Error)
		}
	}

	switch st.Op {
	case OpDecide, OpHistory:
		if st.Catch == "" {
			return fmt.Errorf("steps[%d]: catch is required for %s", index, st.Op)
		}
	case OpScore, OpPoll, OpCandidates:
		if st.Contest == "" {
			return fmt.Errorf("steps[%d]: contest is required for %s", index, st.Op)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLeaderboard, AssertCandidates:
		if a.Contest == "" {
			return fmt.Errorf("assertions[%d]: contest is required for %s", index, a.Type)
		}
		for j, r := range a.Ranks {
			if r.User == "" {
				return fmt.Errorf("assertions[%d].ranks[%d]: user is required", index, j)
			}
		}
	case AssertFeed:
		if a.Contest == "" {
			return fmt.Errorf("assertions[%d]: contest is required for feed", index)
		}
		if a.Since != "" {
			if _, err := fixtures.ParseTime(a.Since); err != nil {
				return fmt.Errorf("assertions[%d].since: %w", index, err)
			}
		}
	case AssertCurrentStatus:
		if a.Catch == "" {
			return fmt.Errorf("assertions[%d]: catch is required for current_status", index)
		}
		if _, err := contest.ParseStatus(a.Status); err != nil && a.Status != string(contest.StatusUnvalidated) {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertHistoryCount:
		if a.Catch == "" {
			return fmt.Errorf("assertions[%d]: catch is required for history_count", index)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for history_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
