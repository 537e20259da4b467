package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

var (
	minNanoTime = time.Unix(0, math.MinInt64).UTC()
	maxNanoTime = time.Unix(0, math.MaxInt64).UTC()
)

// toNanos converts a time to the stored INTEGER representation.
// Times outside the int64 nanosecond range clamp to its ends so that range
// comparisons keep their order.
func toNanos(t time.Time) int64 {
	switch {
	case t.Before(minNanoTime):
		return math.MinInt64
	case t.After(maxNanoTime):
		return math.MaxInt64
	}
	return t.UTC().UnixNano()
}

// fromNanos converts a stored INTEGER back into a UTC time.
func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// marshalMetadata converts photo metadata to JSON TEXT. Nil stays NULL.
func marshalMetadata(m *contest.PhotoMetadata) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal photo metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalMetadata parses JSON TEXT into photo metadata.
func unmarshalMetadata(data sql.NullString) (*contest.PhotoMetadata, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var m contest.PhotoMetadata
	if err := json.Unmarshal([]byte(data.String), &m); err != nil {
		return nil, fmt.Errorf("unmarshal photo metadata: %w", err)
	}
	if m.CapturedAt != nil {
		t := m.CapturedAt.UTC()
		m.CapturedAt = &t
	}
	return &m, nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}
