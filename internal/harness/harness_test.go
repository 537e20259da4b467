package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/fixtures"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }

func smallFacts() fixtures.Document {
	return fixtures.Document{
		Users: []fixtures.UserDoc{{ID: "ann", Name: "Ann"}, {ID: "ben", Name: "Ben"}, {ID: "ref"}},
		Events: []fixtures.EventDoc{{
			ID:      "ev",
			OwnerID: "ref",
			Title:   "Test",
			StartAt: "2025-01-01T00:00:00Z",
			EndAt:   "2025-01-31T23:59:59Z",
			Participants: []fixtures.ParticipantDoc{
				{UserID: "ann"},
				{UserID: "ben"},
			},
		}},
		Contests: []fixtures.ContestDoc{{ID: "c", EventID: "ev", Rule: "biggest_single"}},
		Catches: []fixtures.CatchDoc{
			{ID: "a1", OwnerID: "ann", Species: "Pike", WeightKg: f64(2), CreatedAt: "2025-01-05T10:00:00Z"},
			{ID: "b1", OwnerID: "ben", Species: "Pike", WeightKg: f64(5), CreatedAt: "2025-01-06T10:00:00Z"},
		},
	}
}

func TestRun_DecideAndScore(t *testing.T) {
	scenario := &Scenario{
		Name:        "decide_and_score",
		Description: "two approvals rank by weight",
		Clock:       "2025-02-01T00:00:00Z",
		Facts:       smallFacts(),
		Steps: []Step{
			{Op: OpDecide, Catch: "a1", Validator: "ref", Status: "approved"},
			{Op: OpDecide, Advance: "30s", Catch: "b1", Validator: "ref", Status: "approved"},
			{Op: OpScore, Contest: "c"},
		},
		Assertions: []Assertion{
			{
				Type:                 AssertLeaderboard,
				Contest:              "c",
				Ranks:                []RankExpectation{{User: "ben", Score: f64(5)}, {User: "ann", Score: f64(2)}},
				TotalParticipants:    intp(2),
				TotalApprovedCatches: intp(2),
			},
			{Type: AssertFeed, Contest: "c", Catches: []string{"b1", "a1"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, "val-0001", result.Trace[0].ValidationID)
	assert.Equal(t, int64(2), result.Trace[1].Seq)
	assert.Equal(t, "2025-02-01T00:00:30Z", result.Trace[1].At.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, []string{"1 ben 5", "2 ann 2"}, result.Trace[2].Ranks)

	require.Contains(t, result.Leaderboards, "c")
	assert.Len(t, result.Leaderboards["c"].Entries, 2)
}

func TestRun_ExpectedErrorMatched(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected_error",
		Description: "rejection without reason",
		Clock:       "2025-02-01T00:00:00Z",
		Facts:       smallFacts(),
		Steps: []Step{
			{Op: OpDecide, Catch: "a1", Validator: "ref", Status: "rejected", Expect: &ExpectClause{Error: "INVALID_DECISION"}},
			{Op: OpHistory, Catch: "a1"},
		},
		Assertions: []Assertion{
			{Type: AssertHistoryCount, Catch: "a1", Count: intp(0)},
			{Type: AssertCurrentStatus, Catch: "a1", Status: "unvalidated"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "INVALID_DECISION", result.Trace[0].Error)
	assert.Empty(t, result.Trace[0].ValidationID)
}

func TestRun_StepFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "step_failures",
		Description: "mismatched expectations are reported",
		Clock:       "2025-02-01T00:00:00Z",
		Facts:       smallFacts(),
		Steps: []Step{
			// Succeeds although a failure is expected.
			{Op: OpDecide, Catch: "a1", Validator: "ref", Status: "approved", Expect: &ExpectClause{Error: "NOT_FOUND"}},
			// Fails with a different code.
			{Op: OpDecide, Catch: "ghost", Validator: "ref", Status: "approved", Expect: &ExpectClause{Error: "INVALID_DECISION"}},
			// Fails unexpectedly.
			{Op: OpScore, Contest: "missing"},
		},
		Assertions: []Assertion{
			{Type: AssertHistoryCount, Catch: "a1", Count: intp(1)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expected error NOT_FOUND, got success")
	assert.Contains(t, result.Errors[1], "expected error INVALID_DECISION")
	assert.Contains(t, result.Errors[2], "unexpected error")
	assert.Equal(t, "NOT_FOUND", result.Trace[2].Error)
}

func TestRun_AssertionFailures(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertion_failures",
		Description: "every assertion type can fail",
		Clock:       "2025-02-01T00:00:00Z",
		Facts:       smallFacts(),
		Steps: []Step{
			{Op: OpDecide, Catch: "a1", Validator: "ref", Status: "approved"},
		},
		Assertions: []Assertion{
			{Type: AssertLeaderboard, Contest: "c", Ranks: []RankExpectation{{User: "ben"}}},
			{Type: AssertLeaderboard, Contest: "c", Ranks: []RankExpectation{{User: "ann", Score: f64(3)}}},
			{Type: AssertCurrentStatus, Catch: "a1", Status: "rejected"},
			{Type: AssertFeed, Contest: "c", Catches: []string{}},
			{Type: AssertCandidates, Contest: "c", Catches: []string{"a1", "b1"}},
			{Type: AssertHistoryCount, Catch: "a1", Count: intp(2)},
			{Type: AssertLeaderboard, Contest: "missing"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "rank 1 is ben")
	assert.Contains(t, result.Errors[1], "ann scores 3")
	assert.Contains(t, result.Errors[2], "Expected: rejected")
	assert.Contains(t, result.Errors[3], "Actual: [a1]")
	assert.Contains(t, result.Errors[4], "Actual: [b1 a1]")
	assert.Contains(t, result.Errors[5], "2 records")
	assert.Contains(t, result.Errors[6], "NOT_FOUND")
}

func TestRun_InvalidClock(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Clock: "yesterday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid clock")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertFeed, Subject: "c", Expected: "[a]", Actual: "[]"}
	assert.Equal(t, "Assertion failed: feed (c)\n  Expected: [a]\n  Actual: []", err.Error())
}

func TestLatestRecord(t *testing.T) {
	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	older := contest.ValidationRecord{ID: "v1", Seq: 3, Status: contest.StatusRejected, ValidatedAt: at.Add(-time.Minute)}
	tieLow := contest.ValidationRecord{ID: "v2", Seq: 1, Status: contest.StatusRejected, ValidatedAt: at}
	tieHigh := contest.ValidationRecord{ID: "v3", Seq: 2, Status: contest.StatusApproved, ValidatedAt: at}

	assert.Equal(t, "v3", latestRecord([]contest.ValidationRecord{older, tieLow, tieHigh}).ID)
	assert.Equal(t, "v3", latestRecord([]contest.ValidationRecord{tieHigh, tieLow, older}).ID)
	assert.Equal(t, "v1", latestRecord([]contest.ValidationRecord{older}).ID)
}
