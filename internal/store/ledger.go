package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

var validationColumns = []string{
	"seq", "id", "catch_id",
	"validator_id", "validator_name", "validator_email",
	"status", "reason", "validated_at",
	"catch_species", "catch_weight_kg", "catch_length_cm",
	"catch_photo_url", "catch_photo_hash",
	"owner_id", "owner_name", "owner_email",
}

// columns renders the ledger column list, optionally qualified by a table alias.
func columns(alias string) string {
	if alias == "" {
		return strings.Join(validationColumns, ", ")
	}
	qualified := make([]string, len(validationColumns))
	for i, c := range validationColumns {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

func scanValidation(row rowScanner) (contest.ValidationRecord, error) {
	var (
		r              contest.ValidationRecord
		status         string
		validatedAt    int64
		weight, length sql.NullFloat64
	)
	if err := row.Scan(
		&r.Seq, &r.ID, &r.CatchID,
		&r.Validator.ID, &r.Validator.Name, &r.Validator.Email,
		&status, &r.Reason, &validatedAt,
		&r.Catch.Species, &weight, &length,
		&r.Catch.PhotoURL, &r.Catch.PhotoHash,
		&r.Catch.Owner.ID, &r.Catch.Owner.Name, &r.Catch.Owner.Email,
	); err != nil {
		return contest.ValidationRecord{}, err
	}
	r.Status = contest.Status(status)
	r.ValidatedAt = fromNanos(validatedAt)
	r.Catch.ID = r.CatchID
	r.Catch.WeightKg = floatPtr(weight)
	r.Catch.LengthCm = floatPtr(length)
	return r, nil
}

func collectValidations(rows *sql.Rows) ([]contest.ValidationRecord, error) {
	records := []contest.ValidationRecord{}
	for rows.Next() {
		r, err := scanValidation(rows)
		if err != nil {
			return nil, contest.NewStoreUnavailable("scan validation", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, contest.NewStoreUnavailable("iterate validations", err)
	}
	return records, nil
}

// Append records a validator decision as a new ledger entry.
//
// The decision is checked first (INVALID_DECISION), then the catch must
// exist (NOT_FOUND). Inside a single transaction the store snapshots the
// validator and catch display fields, stamps validated_at from its clock and
// allocates seq. Either the whole record becomes visible or none of it does.
func (s *Store) Append(ctx context.Context, d contest.Decision) (contest.ValidationRecord, error) {
	if err := contest.ValidateDecision(d); err != nil {
		return contest.ValidationRecord{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contest.ValidationRecord{}, contest.NewStoreUnavailable("begin append", err)
	}
	defer tx.Rollback()

	rec := contest.ValidationRecord{
		CatchID: d.CatchID,
		Status:  d.Status,
		Reason:  d.Reason,
	}
	rec.Catch.ID = d.CatchID

	var weight, length sql.NullFloat64
	err = tx.QueryRowContext(ctx, `
		SELECT c.species, c.weight_kg, c.length_cm, c.photo_url, c.photo_hash,
		       c.user_id, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM catches c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`, d.CatchID).Scan(
		&rec.Catch.Species, &weight, &length, &rec.Catch.PhotoURL, &rec.Catch.PhotoHash,
		&rec.Catch.Owner.ID, &rec.Catch.Owner.Name, &rec.Catch.Owner.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return contest.ValidationRecord{}, contest.NewCatchNotFound(d.CatchID)
	}
	if err != nil {
		return contest.ValidationRecord{}, contest.NewStoreUnavailable("read catch snapshot", err)
	}
	rec.Catch.WeightKg = floatPtr(weight)
	rec.Catch.LengthCm = floatPtr(length)

	rec.Validator.ID = d.ValidatorID
	err = tx.QueryRowContext(ctx, `SELECT name, email FROM users WHERE id = ?`, d.ValidatorID).
		Scan(&rec.Validator.Name, &rec.Validator.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return contest.ValidationRecord{}, contest.NewStoreUnavailable("read validator", err)
	}

	rec.ID = s.ids.Generate()
	rec.ValidatedAt = s.clock.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO catch_validations (
			id, catch_id, validator_id, validator_name, validator_email,
			status, reason, validated_at,
			catch_species, catch_weight_kg, catch_length_cm, catch_photo_url, catch_photo_hash,
			owner_id, owner_name, owner_email
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.CatchID, rec.Validator.ID, rec.Validator.Name, rec.Validator.Email,
		string(rec.Status), rec.Reason, toNanos(rec.ValidatedAt),
		rec.Catch.Species, weight, length, rec.Catch.PhotoURL, rec.Catch.PhotoHash,
		rec.Catch.Owner.ID, rec.Catch.Owner.Name, rec.Catch.Owner.Email,
	)
	if err != nil {
		return contest.ValidationRecord{}, contest.NewStoreUnavailable("write validation", err)
	}
	rec.Seq, err = res.LastInsertId()
	if err != nil {
		return contest.ValidationRecord{}, contest.NewStoreUnavailable("read validation seq", err)
	}

	if err := tx.Commit(); err != nil {
		return contest.ValidationRecord{}, contest.NewStoreUnavailable("commit validation", err)
	}

	s.logger.Debug("validation appended",
		"validation_id", rec.ID,
		"catch_id", rec.CatchID,
		"status", rec.Status,
		"seq", rec.Seq)
	return rec, nil
}

// CurrentStatus derives the status of a single catch from its latest record.
// A catch without records, known or not, is unvalidated.
func (s *Store) CurrentStatus(ctx context.Context, catchID string) (contest.CurrentStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+columns("")+`
		FROM catch_validations
		WHERE catch_id = ?
		ORDER BY validated_at DESC, seq DESC
		LIMIT 1
	`, catchID)
	rec, err := scanValidation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return contest.Unvalidated, nil
	}
	if err != nil {
		return contest.CurrentStatus{}, contest.NewStoreUnavailable("read current status", err)
	}
	return contest.StatusOf(&rec), nil
}

// CurrentStatuses derives current statuses for many catches at once.
// Every requested id is present in the result.
func (s *Store) CurrentStatuses(ctx context.Context, catchIDs []string) (map[string]contest.CurrentStatus, error) {
	statuses := make(map[string]contest.CurrentStatus, len(catchIDs))
	for _, id := range catchIDs {
		statuses[id] = contest.Unvalidated
	}

	for _, chunk := range chunks(catchIDs, maxParams) {
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+columns("")+`
			FROM (
				SELECT v.*, ROW_NUMBER() OVER (
					PARTITION BY v.catch_id
					ORDER BY v.validated_at DESC, v.seq DESC
				) AS rn
				FROM catch_validations v
				WHERE v.catch_id IN (`+placeholders(len(chunk))+`)
			)
			WHERE rn = 1
		`, args...)
		if err != nil {
			return nil, contest.NewStoreUnavailable("query current statuses", err)
		}
		records, err := collectValidations(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		for i := range records {
			rec := records[i]
			statuses[rec.CatchID] = contest.StatusOf(&rec)
		}
	}
	return statuses, nil
}

// History returns every record for a catch, newest first.
// Unknown catches have an empty history.
func (s *Store) History(ctx context.Context, catchID string) ([]contest.ValidationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+columns("")+`
		FROM catch_validations
		WHERE catch_id = ?
		ORDER BY validated_at DESC, seq DESC
	`, catchID)
	if err != nil {
		return nil, contest.NewStoreUnavailable("query history", err)
	}
	defer rows.Close()
	return collectValidations(rows)
}

// Approvals returns approval records strictly newer than since whose catch
// is a candidate of the contest, newest first, at most limit rows.
func (s *Store) Approvals(ctx context.Context, scope contest.Scope, since time.Time, limit int) ([]contest.ValidationRecord, error) {
	if limit <= 0 {
		return []contest.ValidationRecord{}, nil
	}
	after := int64(math.MinInt64)
	if !since.IsZero() {
		after = toNanos(since)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+columns("v")+`
		FROM catch_validations v
		JOIN catches c ON c.id = v.catch_id
		JOIN event_participants p ON p.user_id = c.user_id AND p.event_id = ?
		WHERE v.status = 'approved'
		  AND v.validated_at > ?
		  AND c.is_draft = 0
		  AND c.created_at >= ? AND c.created_at <= ?
		  AND (? = '' OR c.species = ?)
		ORDER BY v.validated_at DESC, v.seq DESC
		LIMIT ?
	`,
		scope.Event.ID,
		after,
		toNanos(scope.Event.StartAt), toNanos(scope.Event.EndAt),
		scope.Contest.SpeciesFilter, scope.Contest.SpeciesFilter,
		limit,
	)
	if err != nil {
		return nil, contest.NewStoreUnavailable("query approvals", err)
	}
	defer rows.Close()
	return collectValidations(rows)
}
