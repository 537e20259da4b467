package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

// PutUser inserts or replaces a user's display fields.
func (s *Store) PutUser(ctx context.Context, u contest.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, avatar) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			avatar = excluded.avatar
	`, u.ID, u.Name, u.Email, u.Avatar)
	if err != nil {
		return contest.NewStoreUnavailable("write user", err)
	}
	return nil
}

// PutEvent inserts or replaces an event.
func (s *Store) PutEvent(ctx context.Context, ev contest.Event) error {
	visibility := ev.Visibility
	if visibility == "" {
		visibility = contest.VisibilityPublic
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, owner_id, title, start_at, end_at, visibility)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			title = excluded.title,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			visibility = excluded.visibility
	`, ev.ID, ev.OwnerID, ev.Title, toNanos(ev.StartAt), toNanos(ev.EndAt), string(visibility))
	if err != nil {
		return contest.NewStoreUnavailable("write event", err)
	}
	return nil
}

// PutContest inserts or replaces a contest. The event must exist.
func (s *Store) PutContest(ctx context.Context, c contest.Contest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contests (id, event_id, rule, species_filter) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_id = excluded.event_id,
			rule = excluded.rule,
			species_filter = excluded.species_filter
	`, c.ID, c.EventID, string(c.Rule), c.SpeciesFilter)
	if err != nil {
		return contest.NewStoreUnavailable("write contest", err)
	}
	return nil
}

// AddParticipant joins a user to an event. Joining twice is a no-op.
func (s *Store) AddParticipant(ctx context.Context, p contest.Participant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_participants (event_id, user_id, joined_at) VALUES (?, ?, ?)
		ON CONFLICT(event_id, user_id) DO NOTHING
	`, p.EventID, p.UserID, toNanos(p.JoinedAt))
	if err != nil {
		return contest.NewStoreUnavailable("write participant", err)
	}
	return nil
}

// PutCatch inserts or replaces a catch. Only the owner's id is stored;
// owner display fields come from the users table.
func (s *Store) PutCatch(ctx context.Context, c contest.Catch) error {
	meta, err := marshalMetadata(c.PhotoMetadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catches (
			id, user_id, species, weight_kg, length_cm, created_at,
			latitude, longitude, photo_url, photo_hash, photo_metadata, is_draft
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			species = excluded.species,
			weight_kg = excluded.weight_kg,
			length_cm = excluded.length_cm,
			created_at = excluded.created_at,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			photo_url = excluded.photo_url,
			photo_hash = excluded.photo_hash,
			photo_metadata = excluded.photo_metadata,
			is_draft = excluded.is_draft
	`,
		c.ID, c.Owner.ID, c.Species, nullFloat(c.WeightKg), nullFloat(c.LengthCm), toNanos(c.CreatedAt),
		nullFloat(c.Latitude), nullFloat(c.Longitude), c.PhotoURL, c.PhotoHash, meta, boolInt(c.IsDraft),
	)
	if err != nil {
		return contest.NewStoreUnavailable("write catch", err)
	}
	return nil
}

// SetSocialCounts records like and comment counters for a catch.
func (s *Store) SetSocialCounts(ctx context.Context, catchID string, counts contest.SocialCounts) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catch_social (catch_id, like_count, comment_count) VALUES (?, ?, ?)
		ON CONFLICT(catch_id) DO UPDATE SET
			like_count = excluded.like_count,
			comment_count = excluded.comment_count
	`, catchID, counts.Likes, counts.Comments)
	if err != nil {
		return contest.NewStoreUnavailable("write social counts", err)
	}
	return nil
}

// Scope resolves a contest together with its event and participant population.
// Returns a NOT_FOUND error if the contest or its event does not exist.
func (s *Store) Scope(ctx context.Context, contestID string) (contest.Scope, error) {
	var (
		c                contest.Contest
		ev               contest.Event
		rule, visibility string
		startAt, endAt   int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.rule, c.species_filter,
		       e.id, e.owner_id, e.title, e.start_at, e.end_at, e.visibility
		FROM contests c
		JOIN events e ON e.id = c.event_id
		WHERE c.id = ?
	`, contestID).Scan(
		&c.ID, &rule, &c.SpeciesFilter,
		&ev.ID, &ev.OwnerID, &ev.Title, &startAt, &endAt, &visibility,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return contest.Scope{}, contest.NewContestNotFound(contestID)
	}
	if err != nil {
		return contest.Scope{}, contest.NewStoreUnavailable("read contest", err)
	}
	c.EventID = ev.ID
	c.Rule = contest.Rule(rule)
	ev.StartAt = fromNanos(startAt)
	ev.EndAt = fromNanos(endAt)
	ev.Visibility = contest.Visibility(visibility)

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, user_id, joined_at
		FROM event_participants
		WHERE event_id = ?
		ORDER BY joined_at ASC, user_id ASC COLLATE BINARY
	`, ev.ID)
	if err != nil {
		return contest.Scope{}, contest.NewStoreUnavailable("read participants", err)
	}
	defer rows.Close()

	participants := []contest.Participant{}
	for rows.Next() {
		var p contest.Participant
		var joinedAt int64
		if err := rows.Scan(&p.EventID, &p.UserID, &joinedAt); err != nil {
			return contest.Scope{}, contest.NewStoreUnavailable("scan participant", err)
		}
		p.JoinedAt = fromNanos(joinedAt)
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return contest.Scope{}, contest.NewStoreUnavailable("iterate participants", err)
	}

	return contest.NewScope(c, ev, participants), nil
}

const catchColumns = `
	c.id, c.user_id, COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.avatar, ''),
	c.species, c.weight_kg, c.length_cm, c.created_at, c.latitude, c.longitude,
	c.photo_url, c.photo_hash, c.photo_metadata, c.is_draft`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatch(row rowScanner) (contest.Catch, error) {
	var (
		c                        contest.Catch
		weight, length, lat, lon sql.NullFloat64
		createdAt                int64
		meta                     sql.NullString
		isDraft                  int
	)
	if err := row.Scan(
		&c.ID, &c.Owner.ID, &c.Owner.Name, &c.Owner.Email, &c.Owner.Avatar,
		&c.Species, &weight, &length, &createdAt, &lat, &lon,
		&c.PhotoURL, &c.PhotoHash, &meta, &isDraft,
	); err != nil {
		return contest.Catch{}, err
	}
	m, err := unmarshalMetadata(meta)
	if err != nil {
		return contest.Catch{}, err
	}
	c.WeightKg = floatPtr(weight)
	c.LengthCm = floatPtr(length)
	c.CreatedAt = fromNanos(createdAt)
	c.Latitude = floatPtr(lat)
	c.Longitude = floatPtr(lon)
	c.PhotoMetadata = m
	c.IsDraft = isDraft != 0
	return c, nil
}

// Catch reads a single catch with its owner's display fields.
// Returns a NOT_FOUND error if no such catch exists.
func (s *Store) Catch(ctx context.Context, id string) (contest.Catch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+catchColumns+`
		FROM catches c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`, id)
	c, err := scanCatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return contest.Catch{}, contest.NewCatchNotFound(id)
	}
	if err != nil {
		return contest.Catch{}, contest.NewStoreUnavailable("read catch", err)
	}
	return c, nil
}

// ScopeCatches returns the candidate catches of a contest: non-draft catches
// owned by participants, created inside the event window, matching the
// species filter.
// Ordered newest first, ties by id.
func (s *Store) ScopeCatches(ctx context.Context, scope contest.Scope) ([]contest.Catch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+catchColumns+`
		FROM catches c
		JOIN event_participants p ON p.user_id = c.user_id AND p.event_id = ?
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.is_draft = 0
		  AND c.created_at >= ? AND c.created_at <= ?
		  AND (? = '' OR c.species = ?)
		ORDER BY c.created_at DESC, c.id ASC COLLATE BINARY
	`,
		scope.Event.ID,
		toNanos(scope.Event.StartAt), toNanos(scope.Event.EndAt),
		scope.Contest.SpeciesFilter, scope.Contest.SpeciesFilter,
	)
	if err != nil {
		return nil, contest.NewStoreUnavailable("query contest catches", err)
	}
	defer rows.Close()

	catches := []contest.Catch{}
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, contest.NewStoreUnavailable("scan catch", err)
		}
		if !scope.Admits(c) {
			continue
		}
		catches = append(catches, c)
	}
	if err := rows.Err(); err != nil {
		return nil, contest.NewStoreUnavailable("iterate catches", err)
	}

	s.logger.Debug("loaded contest catches",
		"contest_id", scope.Contest.ID,
		"count", len(catches))
	return catches, nil
}

// SocialCounts returns like and comment counters keyed by catch id.
// Catches without counters are reported as zero.
func (s *Store) SocialCounts(ctx context.Context, catchIDs []string) (map[string]contest.SocialCounts, error) {
	counts := make(map[string]contest.SocialCounts, len(catchIDs))
	for _, id := range catchIDs {
		counts[id] = contest.SocialCounts{}
	}

	for _, chunk := range chunks(catchIDs, maxParams) {
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := s.db.QueryContext(ctx, `
			SELECT catch_id, like_count, comment_count
			FROM catch_social
			WHERE catch_id IN (`+placeholders(len(chunk))+`)
		`, args...)
		if err != nil {
			return nil, contest.NewStoreUnavailable("query social counts", err)
		}
		for rows.Next() {
			var id string
			var sc contest.SocialCounts
			if err := rows.Scan(&id, &sc.Likes, &sc.Comments); err != nil {
				rows.Close()
				return nil, contest.NewStoreUnavailable("scan social counts", err)
			}
			counts[id] = sc
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, contest.NewStoreUnavailable("iterate social counts", err)
		}
	}
	return counts, nil
}

// maxParams keeps IN lists under SQLite's bound-parameter limit.
const maxParams = 500

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}
