// Package validation is the admin-facing validation workflow: it lists the
// catches awaiting review for a contest, records decisions and exposes the
// audit trail.
//
// The workflow never decides anything on its own. Reconciliation reports are
// attached to candidates for the reviewer; only an explicit Decide call
// changes a catch's status.
package validation

import (
	"context"
	"log/slog"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
	"github.com/ChristianJusjong/FishLog-sub000/internal/reconcile"
)

// Ledger is the slice of the store the workflow needs.
type Ledger interface {
	Scope(ctx context.Context, contestID string) (contest.Scope, error)
	ScopeCatches(ctx context.Context, scope contest.Scope) ([]contest.Catch, error)
	SocialCounts(ctx context.Context, catchIDs []string) (map[string]contest.SocialCounts, error)
	CurrentStatuses(ctx context.Context, catchIDs []string) (map[string]contest.CurrentStatus, error)
	Append(ctx context.Context, d contest.Decision) (contest.ValidationRecord, error)
	History(ctx context.Context, catchID string) ([]contest.ValidationRecord, error)
}

// Candidate is a catch presented to a validator.
// Validation is nil when the catch has never been reviewed.
type Candidate struct {
	Catch          contest.Catch             `json:"catch"`
	Social         contest.SocialCounts      `json:"social"`
	Reconciliation reconcile.Report          `json:"reconciliation"`
	Validation     *contest.ValidationRecord `json:"validation"`
}

// Status returns the candidate's current status.
func (c Candidate) Status() contest.Status {
	if c.Validation == nil {
		return contest.StatusUnvalidated
	}
	return c.Validation.Status
}

// Workflow coordinates candidate listing and decisions.
//
// Thread-safety: Workflow holds no mutable state; all methods are safe for
// concurrent use as long as the Ledger is.
type Workflow struct {
	ledger     Ledger
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the workflow logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithReconciler replaces the default-threshold reconciler.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(w *Workflow) { w.reconciler = r }
}

// New creates a Workflow over the given ledger.
func New(ledger Ledger, opts ...Option) *Workflow {
	w := &Workflow{
		ledger:     ledger,
		reconciler: reconcile.New(reconcile.DefaultThresholds()),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ListCandidates returns every candidate catch of the contest, newest first,
// each with owner, social counters, reconciliation report and current
// validation. Returns a NOT_FOUND error for an unknown contest.
func (w *Workflow) ListCandidates(ctx context.Context, contestID string) ([]Candidate, error) {
	scope, err := w.ledger.Scope(ctx, contestID)
	if err != nil {
		return nil, err
	}

	catches, err := w.ledger.ScopeCatches(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(catches) == 0 {
		return []Candidate{}, nil
	}

	ids := make([]string, len(catches))
	for i, c := range catches {
		ids[i] = c.ID
	}
	social, err := w.ledger.SocialCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	statuses, err := w.ledger.CurrentStatuses(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(catches))
	for i, c := range catches {
		candidates[i] = Candidate{
			Catch:          c,
			Social:         social[c.ID],
			Reconciliation: w.reconciler.Reconcile(reconcile.ClaimOf(c), c.PhotoMetadata),
			Validation:     statuses[c.ID].Record,
		}
	}

	w.logger.Debug("listed candidates",
		"contest_id", contestID,
		"count", len(candidates))
	return candidates, nil
}

// Decide records a validator's decision for a catch.
//
// An invalid status or a rejection without a reason fails with
// INVALID_DECISION before the catch is looked up; an unknown catch fails with
// NOT_FOUND. Repeated decisions are not deduplicated: each call appends a new
// record, and the newest one becomes the catch's status.
func (w *Workflow) Decide(ctx context.Context, catchID, validatorID string, status contest.Status, reason string) (contest.ValidationRecord, error) {
	d := contest.Decision{
		CatchID:     catchID,
		ValidatorID: validatorID,
		Status:      status,
		Reason:      reason,
	}
	if err := contest.ValidateDecision(d); err != nil {
		w.logger.Debug("decision refused",
			"catch_id", catchID,
			"validator_id", validatorID,
			"error", err)
		return contest.ValidationRecord{}, err
	}

	rec, err := w.ledger.Append(ctx, d)
	if err != nil {
		return contest.ValidationRecord{}, err
	}

	w.logger.Info("catch validated",
		"catch_id", rec.CatchID,
		"validator_id", rec.Validator.ID,
		"status", rec.Status,
		"seq", rec.Seq)
	return rec, nil
}

// History returns every decision recorded for a catch, newest first.
// A catch without decisions, known or not, has an empty history.
func (w *Workflow) History(ctx context.Context, catchID string) ([]contest.ValidationRecord, error) {
	return w.ledger.History(ctx, catchID)
}
