package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

func seedCatch(t *testing.T, s *Store, id, owner string) {
	t.Helper()
	putCatch(t, s, contest.Catch{
		ID: id, Owner: contest.User{ID: owner}, Species: "Pike",
		WeightKg: kg(3.5), CreatedAt: eventStart.Add(24 * time.Hour),
		PhotoURL: "https://img.example.com/" + id + ".jpg",
	})
}

func approve(id string) contest.Decision {
	return contest.Decision{CatchID: id, ValidatorID: "judge", Status: contest.StatusApproved}
}

func reject(id, reason string) contest.Decision {
	return contest.Decision{CatchID: id, ValidatorID: "judge", Status: contest.StatusRejected, Reason: reason}
}

func TestAppend_AssignsIdentityTimeAndSnapshot(t *testing.T) {
	s, clk := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")

	rec, err := s.Append(context.Background(), approve("k-1"))
	require.NoError(t, err)

	assert.Equal(t, "val-0001", rec.ID)
	assert.Equal(t, int64(1), rec.Seq)
	assert.True(t, rec.ValidatedAt.Equal(clk.Now()))
	assert.Equal(t, contest.StatusApproved, rec.Status)
	assert.Equal(t, contest.User{ID: "judge", Name: "Judge Judy", Email: "judge@example.com"}, rec.Validator)
	assert.Equal(t, "k-1", rec.Catch.ID)
	assert.Equal(t, "Pike", rec.Catch.Species)
	assert.Equal(t, "Alice", rec.Catch.Owner.Name)
	require.NotNil(t, rec.Catch.WeightKg)
	assert.Equal(t, 3.5, *rec.Catch.WeightKg)

	history, err := s.History(context.Background(), "k-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec, history[0])
}

func TestAppend_SeqIncreases(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	seedCatch(t, s, "k-2", "bob")
	ctx := context.Background()

	r1, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)
	r2, err := s.Append(ctx, reject("k-2", "blurry photo"))
	require.NoError(t, err)
	r3, err := s.Append(ctx, approve("k-2"))
	require.NoError(t, err)

	assert.Less(t, r1.Seq, r2.Seq)
	assert.Less(t, r2.Seq, r3.Seq)
}

func TestAppend_Errors(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")

	tests := []struct {
		name    string
		d       contest.Decision
		wantErr func(error) bool
	}{
		{"reject without reason", reject("k-1", ""), contest.IsInvalidDecision},
		{"reject with blank reason", reject("k-1", "   "), contest.IsInvalidDecision},
		{"unknown status", contest.Decision{CatchID: "k-1", ValidatorID: "judge", Status: "pending"}, contest.IsInvalidDecision},
		{"missing validator", contest.Decision{CatchID: "k-1", Status: contest.StatusApproved}, contest.IsInvalidDecision},
		{"unknown catch", approve("ghost"), contest.IsNotFound},
		{"unknown catch and bad decision", reject("ghost", ""), contest.IsInvalidDecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Append(context.Background(), tt.d)
			require.Error(t, err)
			assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
		})
	}

	history, err := s.History(context.Background(), "k-1")
	require.NoError(t, err)
	assert.Empty(t, history, "failed appends must not leave records")
}

func TestAppend_ApproveMayCarryReason(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")

	rec, err := s.Append(context.Background(), contest.Decision{
		CatchID: "k-1", ValidatorID: "judge", Status: contest.StatusApproved, Reason: "clear photo",
	})
	require.NoError(t, err)
	assert.Equal(t, "clear photo", rec.Reason)
}

func TestAppend_UnknownValidatorHasEmptyDisplayFields(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")

	rec, err := s.Append(context.Background(), contest.Decision{
		CatchID: "k-1", ValidatorID: "stranger", Status: contest.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, contest.User{ID: "stranger"}, rec.Validator)
}

func TestAppend_SnapshotSurvivesFactChanges(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	ctx := context.Background()

	_, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)

	require.NoError(t, s.PutUser(ctx, contest.User{ID: "judge", Name: "Renamed"}))
	putCatch(t, s, contest.Catch{ID: "k-1", Owner: contest.User{ID: "alice"}, Species: "Zander", CreatedAt: eventStart})

	history, err := s.History(ctx, "k-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Judge Judy", history[0].Validator.Name)
	assert.Equal(t, "Pike", history[0].Catch.Species)
}

func TestLedger_RejectsUpdateAndDelete(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")

	_, err := s.Append(context.Background(), approve("k-1"))
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE catch_validations SET status = 'rejected', reason = 'x'`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	_, err = s.db.Exec(`DELETE FROM catch_validations`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")
}

func TestCurrentStatus_Unvalidated(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")

	for _, id := range []string{"k-1", "ghost"} {
		st, err := s.CurrentStatus(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, contest.Unvalidated, st)
		assert.False(t, st.Approved())
	}
}

func TestCurrentStatus_LatestWins(t *testing.T) {
	s, clk := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	ctx := context.Background()

	_, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	latest, err := s.Append(ctx, reject("k-1", "wrong species"))
	require.NoError(t, err)

	st, err := s.CurrentStatus(ctx, "k-1")
	require.NoError(t, err)
	assert.Equal(t, contest.StatusRejected, st.Status)
	require.NotNil(t, st.Record)
	assert.Equal(t, latest.ID, st.Record.ID)
	assert.Equal(t, "wrong species", st.Record.Reason)
}

func TestCurrentStatus_SameTimestampHigherSeqWins(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	ctx := context.Background()

	first, err := s.Append(ctx, reject("k-1", "blurry"))
	require.NoError(t, err)
	second, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)
	require.True(t, first.ValidatedAt.Equal(second.ValidatedAt))

	st, err := s.CurrentStatus(ctx, "k-1")
	require.NoError(t, err)
	assert.Equal(t, contest.StatusApproved, st.Status)
	assert.Equal(t, second.Seq, st.Record.Seq)
}

func TestCurrentStatus_TimestampBeatsAppendOrder(t *testing.T) {
	s, clk := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	ctx := context.Background()

	start := clk.Now()
	clk.Set(start.Add(time.Hour))
	_, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)
	clk.Set(start)
	_, err = s.Append(ctx, reject("k-1", "late appeal"))
	require.NoError(t, err)

	st, err := s.CurrentStatus(ctx, "k-1")
	require.NoError(t, err)
	assert.Equal(t, contest.StatusApproved, st.Status)
}

func TestCurrentStatuses_BatchMatchesSingle(t *testing.T) {
	s, clk := createLedgerStore(t)
	seedWorld(t, s)
	ctx := context.Background()
	for _, id := range []string{"k-1", "k-2", "k-3"} {
		seedCatch(t, s, id, "alice")
	}

	_, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)
	_, err = s.Append(ctx, approve("k-2"))
	require.NoError(t, err)
	clk.Advance(time.Second)
	_, err = s.Append(ctx, reject("k-2", "duplicate photo"))
	require.NoError(t, err)

	ids := []string{"k-1", "k-2", "k-3"}
	batch, err := s.CurrentStatuses(ctx, ids)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for _, id := range ids {
		single, err := s.CurrentStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, single, batch[id], "catch %s", id)
	}
	assert.Equal(t, contest.StatusApproved, batch["k-1"].Status)
	assert.Equal(t, contest.StatusRejected, batch["k-2"].Status)
	assert.Equal(t, contest.StatusUnvalidated, batch["k-3"].Status)
}

func TestHistory_NewestFirst(t *testing.T) {
	s, clk := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	ctx := context.Background()

	var appended []contest.ValidationRecord
	for i, d := range []contest.Decision{approve("k-1"), reject("k-1", "blurry"), approve("k-1")} {
		if i > 0 {
			clk.Advance(time.Minute)
		}
		rec, err := s.Append(ctx, d)
		require.NoError(t, err)
		appended = append(appended, rec)
	}

	history, err := s.History(ctx, "k-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, appended[2].ID, history[0].ID)
	assert.Equal(t, appended[1].ID, history[1].ID)
	assert.Equal(t, appended[0].ID, history[2].ID)
}

func TestHistory_UnknownCatchIsEmpty(t *testing.T) {
	s, _ := createLedgerStore(t)

	history, err := s.History(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestApprovals_FiltersAndOrders(t *testing.T) {
	s, clk := createLedgerStore(t)
	seedWorld(t, s)
	ctx := context.Background()
	seedCatch(t, s, "k-1", "alice")
	seedCatch(t, s, "k-2", "bob")
	seedCatch(t, s, "k-3", "alice")
	seedCatch(t, s, "out", "carol")

	t0 := clk.Now()
	_, err := s.Append(ctx, approve("k-1"))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = s.Append(ctx, reject("k-2", "no fish visible"))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = s.Append(ctx, approve("k-3"))
	require.NoError(t, err)
	_, err = s.Append(ctx, approve("out"))
	require.NoError(t, err)

	scope, err := s.Scope(ctx, "c-1")
	require.NoError(t, err)

	all, err := s.Approvals(ctx, scope, time.Time{}, 20)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "k-3", all[0].CatchID)
	assert.Equal(t, "k-1", all[1].CatchID)

	// strictly after the watermark
	after, err := s.Approvals(ctx, scope, t0, 20)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "k-3", after[0].CatchID)

	limited, err := s.Approvals(ctx, scope, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "k-3", limited[0].CatchID)

	none, err := s.Approvals(ctx, scope, time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppend_Concurrent(t *testing.T) {
	s, _ := createLedgerStore(t)
	seedWorld(t, s)
	seedCatch(t, s, "k-1", "alice")
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := approve("k-1")
			if i%2 == 1 {
				d = reject("k-1", fmt.Sprintf("reason %d", i))
			}
			if _, err := s.Append(ctx, d); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent append failed: %v", err)
	}

	history, err := s.History(ctx, "k-1")
	require.NoError(t, err)
	require.Len(t, history, n)

	seen := make(map[int64]bool, n)
	for _, r := range history {
		assert.False(t, seen[r.Seq], "duplicate seq %d", r.Seq)
		seen[r.Seq] = true
	}

	// All records share one timestamp; the highest seq decides.
	st, err := s.CurrentStatus(ctx, "k-1")
	require.NoError(t, err)
	assert.Equal(t, history[0].ID, st.Record.ID)
	assert.Equal(t, int64(n), st.Record.Seq)
}
