package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/testutil"
)

var (
	eventStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	eventEnd   = time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC)
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createLedgerStore creates a store with a manual clock and sequential ids.
func createLedgerStore(t *testing.T) (*Store, *testutil.ManualClock) {
	t.Helper()
	clk := testutil.NewManualClock(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	s := createTestStore(t, WithClock(clk), WithIDGenerator(testutil.NewSequentialIDs("val")))
	return s, clk
}

func kg(v float64) *float64 { return &v }

// seedWorld writes one event (ev-1) with contest c-1 for pike, two
// participants (alice, bob), a non-participant (carol) and a validator.
func seedWorld(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	users := []contest.User{
		{ID: "alice", Name: "Alice", Email: "alice@example.com"},
		{ID: "bob", Name: "Bob", Email: "bob@example.com"},
		{ID: "carol", Name: "Carol"},
		{ID: "judge", Name: "Judge Judy", Email: "judge@example.com"},
	}
	for _, u := range users {
		mustNoErr(t, s.PutUser(ctx, u))
	}
	mustNoErr(t, s.PutEvent(ctx, contest.Event{
		ID: "ev-1", OwnerID: "judge", Title: "June Pike Open",
		StartAt: eventStart, EndAt: eventEnd, Visibility: contest.VisibilityPublic,
	}))
	mustNoErr(t, s.PutContest(ctx, contest.Contest{
		ID: "c-1", EventID: "ev-1", Rule: contest.RuleBiggestSingle, SpeciesFilter: "Pike",
	}))
	mustNoErr(t, s.AddParticipant(ctx, contest.Participant{EventID: "ev-1", UserID: "alice", JoinedAt: eventStart.Add(-48 * time.Hour)}))
	mustNoErr(t, s.AddParticipant(ctx, contest.Participant{EventID: "ev-1", UserID: "bob", JoinedAt: eventStart.Add(-24 * time.Hour)}))
}

func putCatch(t *testing.T, s *Store, c contest.Catch) {
	t.Helper()
	mustNoErr(t, s.PutCatch(context.Background(), c))
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
