package scoring

import (
	"context"
	"log/slog"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// Source is the slice of the store scoring reads from.
type Source interface {
	Scope(ctx context.Context, contestID string) (contest.Scope, error)
	ScopeCatches(ctx context.Context, scope contest.Scope) ([]contest.Catch, error)
	CurrentStatuses(ctx context.Context, catchIDs []string) (map[string]contest.CurrentStatus, error)
}

// Engine computes leaderboards on demand.
//
// Thread-safety: Engine is immutable after construction and safe for
// concurrent use.
type Engine struct {
	source Source
	size   int
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSize sets how many entries a leaderboard keeps (default 10).
func WithSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.size = n
		}
	}
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates a scoring Engine.
func New(source Source, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		size:   DefaultSize,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score ranks the contest's participants by their approved, eligible catches.
// A contest with no approved catches yields an empty leaderboard, not an
// error. Returns a NOT_FOUND error for an unknown contest.
func (e *Engine) Score(ctx context.Context, contestID string) (Leaderboard, error) {
	scope, err := e.source.Scope(ctx, contestID)
	if err != nil {
		return Leaderboard{}, err
	}

	approved, err := e.Approved(ctx, scope)
	if err != nil {
		return Leaderboard{}, err
	}

	lb := Leaderboard{
		ContestID:            scope.Contest.ID,
		Rule:                 scope.Contest.Rule,
		SpeciesFilter:        scope.Contest.SpeciesFilter,
		Entries:              Rank(scope.Contest.Rule, approved, e.size),
		TotalParticipants:    len(scope.Participants),
		TotalApprovedCatches: len(approved),
	}

	e.logger.Debug("leaderboard computed",
		"contest_id", contestID,
		"rule", lb.Rule,
		"entries", len(lb.Entries),
		"approved_catches", lb.TotalApprovedCatches)
	return lb, nil
}

// Approved returns the scope's candidate catches whose current status is
// approved, newest first.
func (e *Engine) Approved(ctx context.Context, scope contest.Scope) ([]contest.Catch, error) {
	catches, err := e.source.ScopeCatches(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(catches) == 0 {
		return []contest.Catch{}, nil
	}

	ids := make([]string, len(catches))
	for i, c := range catches {
		ids[i] = c.ID
	}
	statuses, err := e.source.CurrentStatuses(ctx, ids)
	if err != nil {
		return nil, err
	}

	approved := make([]contest.Catch, 0, len(catches))
	for _, c := range catches {
		if statuses[c.ID].Approved() {
			approved = append(approved, c)
		}
	}
	return approved, nil
}
