package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/feed"
	"github.com/ChristianJusjong/FishLog-sub000/internal/scoring"
	"github.com/ChristianJusjong/FishLog-sub000/internal/validation"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Contest or catch the assertion is about
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Type, e.Subject)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides the engine components assertions read from.
type AssertionContext struct {
	Ctx      context.Context
	Workflow *validation.Workflow
	Scoring  *scoring.Engine
	Feed     *feed.Feed
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLeaderboard:
			err = assertLeaderboard(actx, assertion)
		case AssertCurrentStatus:
			err = assertCurrentStatus(actx, assertion)
		case AssertFeed:
			err = assertFeed(actx, assertion)
		case AssertCandidates:
			err = assertCandidates(actx, assertion)
		case AssertHistoryCount:
			err = assertHistoryCount(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertLeaderboard checks entry order, optional scores and optional totals.
func assertLeaderboard(actx *AssertionContext, a Assertion) error {
	lb, err := actx.Scoring.Score(actx.Ctx, a.Contest)
	if err != nil {
		return fmt.Errorf("leaderboard %s: %w", a.Contest, err)
	}

	fail := func(expected, actual string) error {
		return &AssertionError{Type: AssertLeaderboard, Subject: a.Contest, Expected: expected, Actual: actual}
	}

	if len(lb.Entries) != len(a.Ranks) {
		return fail(fmt.Sprintf("%d entries %v", len(a.Ranks), expectedUsers(a.Ranks)),
			fmt.Sprintf("%d entries %v", len(lb.Entries), rankLines(lb)))
	}
	for i, want := range a.Ranks {
		got := lb.Entries[i]
		if got.User.ID != want.User {
			return fail(fmt.Sprintf("rank %d is %s", i+1, want.User),
				fmt.Sprintf("rank %d is %s (%v)", i+1, got.User.ID, rankLines(lb)))
		}
		if want.Score != nil && got.Score != *want.Score {
			return fail(fmt.Sprintf("%s scores %s", want.User, formatScore(*want.Score)),
				fmt.Sprintf("%s scores %s", got.User.ID, formatScore(got.Score)))
		}
	}
	if a.TotalParticipants != nil && lb.TotalParticipants != *a.TotalParticipants {
		return fail(fmt.Sprintf("total_participants %d", *a.TotalParticipants),
			fmt.Sprintf("total_participants %d", lb.TotalParticipants))
	}
	if a.TotalApprovedCatches != nil && lb.TotalApprovedCatches != *a.TotalApprovedCatches {
		return fail(fmt.Sprintf("total_approved_catches %d", *a.TotalApprovedCatches),
			fmt.Sprintf("total_approved_catches %d", lb.TotalApprovedCatches))
	}
	return nil
}

func expectedUsers(ranks []RankExpectation) []string {
	users := make([]string, len(ranks))
	for i, r := range ranks {
		users[i] = r.User
	}
	return users
}

// assertCurrentStatus checks the derived status via the catch's history.
func assertCurrentStatus(actx *AssertionContext, a Assertion) error {
	recs, err := actx.Workflow.History(actx.Ctx, a.Catch)
	if err != nil {
		return fmt.Errorf("current_status %s: %w", a.Catch, err)
	}

	// History is newest first, so its head must be the record that
	// supersedes every other one.
	got := contest.StatusUnvalidated
	if len(recs) > 0 {
		latest := latestRecord(recs)
		if latest.ID != recs[0].ID {
			return &AssertionError{
				Type:     AssertCurrentStatus,
				Subject:  a.Catch,
				Expected: fmt.Sprintf("history headed by %s", latest.ID),
				Actual:   fmt.Sprintf("history headed by %s", recs[0].ID),
			}
		}
		got = latest.Status
	}
	if string(got) != a.Status {
		return &AssertionError{
			Type:     AssertCurrentStatus,
			Subject:  a.Catch,
			Expected: a.Status,
			Actual:   string(got),
		}
	}
	return nil
}

// latestRecord picks the authoritative record of a non-empty history.
func latestRecord(recs []contest.ValidationRecord) contest.ValidationRecord {
	latest := recs[0]
	for _, r := range recs[1:] {
		if r.Supersedes(latest) {
			latest = r
		}
	}
	return latest
}

// assertFeed polls the feed at the current clock and compares catch ids.
func assertFeed(actx *AssertionContext, a Assertion) error {
	updates, err := actx.Feed.PollUpdates(actx.Ctx, a.Contest, sinceOf(a.Since))
	if err != nil {
		return fmt.Errorf("feed %s: %w", a.Contest, err)
	}
	got := updateCatchIDs(updates)
	if !slices.Equal(got, a.Catches) {
		return &AssertionError{
			Type:     AssertFeed,
			Subject:  a.Contest,
			Expected: fmt.Sprintf("%v", a.Catches),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// assertCandidates compares candidate catch ids in listing order.
func assertCandidates(actx *AssertionContext, a Assertion) error {
	cands, err := actx.Workflow.ListCandidates(actx.Ctx, a.Contest)
	if err != nil {
		return fmt.Errorf("candidates %s: %w", a.Contest, err)
	}
	got := candidateIDs(cands)
	if !slices.Equal(got, a.Catches) {
		return &AssertionError{
			Type:     AssertCandidates,
			Subject:  a.Contest,
			Expected: fmt.Sprintf("%v", a.Catches),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// assertHistoryCount checks the number of ledger records for a catch.
func assertHistoryCount(actx *AssertionContext, a Assertion) error {
	recs, err := actx.Workflow.History(actx.Ctx, a.Catch)
	if err != nil {
		return fmt.Errorf("history_count %s: %w", a.Catch, err)
	}
	if len(recs) != *a.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Subject:  a.Catch,
			Expected: fmt.Sprintf("%d records", *a.Count),
			Actual:   fmt.Sprintf("%d records", len(recs)),
		}
	}
	return nil
}
