// Package feed serves newly approved catches for a contest.
//
// The feed is a projection of the validation ledger: each update carries the
// catch and validator exactly as they were snapshotted when the approval was
// recorded. Callers poll with a watermark; there is no push delivery.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/clock"
	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// Defaults for polling.
const (
	DefaultWindow = 5 * time.Minute
	DefaultLimit  = 20
)

// Source is the slice of the store the feed reads from.
type Source interface {
	Scope(ctx context.Context, contestID string) (contest.Scope, error)
	Approvals(ctx context.Context, scope contest.Scope, since time.Time, limit int) ([]contest.ValidationRecord, error)
}

// Update is one approval as seen by the feed.
type Update struct {
	ValidationID string                `json:"validation_id"`
	Seq          int64                 `json:"seq"`
	ContestID    string                `json:"contest_id"`
	Catch        contest.CatchSnapshot `json:"catch"`
	Validator    contest.User          `json:"validator"`
	Reason       string                `json:"reason,omitempty"`
	ValidatedAt  time.Time             `json:"validated_at"`
}

func updateOf(contestID string, r contest.ValidationRecord) Update {
	return Update{
		ValidationID: r.ID,
		Seq:          r.Seq,
		ContestID:    contestID,
		Catch:        r.Catch,
		Validator:    r.Validator,
		Reason:       r.Reason,
		ValidatedAt:  r.ValidatedAt,
	}
}

// Feed answers polls for recent approvals.
//
// Thread-safety: Feed is immutable after construction and safe for
// concurrent use.
type Feed struct {
	source Source
	clock  clock.Clock
	window time.Duration
	limit  int
	logger *slog.Logger
}

// Option configures a Feed.
type Option func(*Feed)

// WithClock sets the clock used for the default watermark.
func WithClock(c clock.Clock) Option {
	return func(f *Feed) { f.clock = c }
}

// WithWindow sets how far back a poll without a watermark looks.
func WithWindow(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.window = d
		}
	}
}

// WithLimit caps the number of updates per poll.
func WithLimit(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.limit = n
		}
	}
}

// WithLogger sets the feed logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Feed) { f.logger = l }
}

// New creates a Feed.
func New(source Source, opts ...Option) *Feed {
	f := &Feed{
		source: source,
		clock:  clock.System{},
		window: DefaultWindow,
		limit:  DefaultLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// PollUpdates returns approvals recorded strictly after since whose catch is
// eligible for the contest, newest first and capped at the feed limit.
//
// A zero since means "the last window" (5 minutes unless configured). Any
// past since is accepted. Repeated polls with an advancing since are not
// guaranteed to deliver each approval exactly once.
func (f *Feed) PollUpdates(ctx context.Context, contestID string, since time.Time) ([]Update, error) {
	if since.IsZero() {
		since = f.clock.Now().Add(-f.window)
	}

	scope, err := f.source.Scope(ctx, contestID)
	if err != nil {
		return nil, err
	}

	records, err := f.source.Approvals(ctx, scope, since, f.limit)
	if err != nil {
		return nil, err
	}

	updates := make([]Update, len(records))
	for i, r := range records {
		updates[i] = updateOf(scope.Contest.ID, r)
	}

	f.logger.Debug("feed polled",
		"contest_id", contestID,
		"since", since,
		"updates", len(updates))
	return updates, nil
}
