package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/feed"
	"github.com/ChristianJusjong/FishLog-sub000/internal/fixtures"
	"github.com/ChristianJusjong/FishLog-sub000/internal/scoring"
	"github.com/ChristianJusjong/FishLog-sub000/internal/store"
	"github.com/ChristianJusjong/FishLog-sub000/internal/testutil"
	"github.com/ChristianJusjong/FishLog-sub000/internal/validation"
)

// Harness is the test execution engine.
// It runs scenarios with a manual clock and sequential validation ids.
type Harness struct {
	store    *store.Store
	workflow *validation.Workflow
	scoring  *scoring.Engine
	feed     *feed.Feed
	clock    *testutil.ManualClock
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Create fresh in-memory database with manual clock and sequential ids
// 2. Seed the scenario facts
// 3. Execute steps, checking expected failures
// 4. Evaluate assertions
// 5. Record the final leaderboard of every contest
//
// The returned error is reserved for infrastructure failures; step and
// assertion failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	start, err := fixtures.ParseTime(scenario.Clock)
	if err != nil {
		return nil, fmt.Errorf("invalid clock: %w", err)
	}
	clk := testutil.NewManualClock(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(":memory:",
		store.WithClock(clk),
		store.WithIDGenerator(testutil.NewSequentialIDs("val")),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		workflow: validation.New(st, validation.WithLogger(logger)),
		scoring:  scoring.New(st, scoring.WithLogger(logger)),
		feed:     feed.New(st, feed.WithClock(clk), feed.WithLogger(logger)),
		clock:    clk,
		logger:   logger,
	}

	ctx := context.Background()

	facts, err := scenario.Facts.Facts()
	if err != nil {
		return nil, fmt.Errorf("failed to convert facts: %w", err)
	}
	if _, err := fixtures.Seed(ctx, st, facts); err != nil {
		return nil, fmt.Errorf("failed to seed facts: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Workflow: h.workflow,
		Scoring:  h.scoring,
		Feed:     h.feed,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	for _, c := range facts.Contests {
		lb, err := h.scoring.Score(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to score contest %s: %w", c.ID, err)
		}
		result.Leaderboards[c.ID] = lb
	}

	return result, nil
}

// executeStep moves the clock, runs one op and records its trace event.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	switch {
	case step.At != "":
		at, _ := fixtures.ParseTime(step.At)
		h.clock.Set(at)
	case step.Advance != "":
		d, _ := time.ParseDuration(step.Advance)
		h.clock.Advance(d)
	}

	ev := TraceEvent{
		Step:    index,
		Op:      step.Op,
		At:      h.clock.Now(),
		Contest: step.Contest,
		Catch:   step.Catch,
	}

	var err error
	switch step.Op {
	case OpDecide:
		var rec contest.ValidationRecord
		rec, err = h.workflow.Decide(ctx, step.Catch, step.Validator, contest.Status(step.Status), step.Reason)
		if err == nil {
			ev.Status = string(rec.Status)
			ev.ValidationID = rec.ID
			ev.Seq = rec.Seq
		}
	case OpScore:
		var lb scoring.Leaderboard
		lb, err = h.scoring.Score(ctx, step.Contest)
		if err == nil {
			ev.Ranks = rankLines(lb)
		}
	case OpPoll:
		var updates []feed.Update
		updates, err = h.feed.PollUpdates(ctx, step.Contest, sinceOf(step.Since))
		if err == nil {
			ev.Catches = updateCatchIDs(updates)
		}
	case OpCandidates:
		var cands []validation.Candidate
		cands, err = h.workflow.ListCandidates(ctx, step.Contest)
		if err == nil {
			ev.Catches = candidateIDs(cands)
		}
	case OpHistory:
		var recs []contest.ValidationRecord
		recs, err = h.workflow.History(ctx, step.Catch)
		if err == nil {
			ev.Count = len(recs)
		}
	default:
		err = fmt.Errorf("unknown op %q", step.Op)
	}

	if err != nil {
		ev.Error = string(contest.CodeOf(err))
		if ev.Error == "" {
			ev.Error = err.Error()
		}
	}
	result.AddTrace(ev)

	switch {
	case step.Expect != nil && err == nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got success", index, step.Op, step.Expect.Error))
	case step.Expect != nil && string(contest.CodeOf(err)) != step.Expect.Error:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %v", index, step.Op, step.Expect.Error, err))
	case step.Expect == nil && err != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, err))
	}
}

// sinceOf parses a validated RFC 3339 bound; empty yields the zero time.
func sinceOf(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := fixtures.ParseTime(s)
	return t
}

func rankLines(lb scoring.Leaderboard) []string {
	lines := make([]string, len(lb.Entries))
	for i, e := range lb.Entries {
		lines[i] = fmt.Sprintf("%d %s %s", e.Rank, e.User.ID, formatScore(e.Score))
	}
	return lines
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func updateCatchIDs(updates []feed.Update) []string {
	ids := make([]string, len(updates))
	for i, u := range updates {
		ids[i] = u.Catch.ID
	}
	return ids
}

func candidateIDs(cands []validation.Candidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.Catch.ID
	}
	return ids
}
