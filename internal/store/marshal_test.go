package store

import (
	"math"
	"testing"
	"time"
)

func TestToNanos_ClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want int64
	}{
		{"before range", time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC), math.MinInt64},
		{"after range", time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC), math.MaxInt64},
		{"epoch", time.Unix(0, 0), 0},
		{"in range", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixNano()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toNanos(tt.in); got != tt.want {
				t.Errorf("toNanos(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestToNanos_PreservesOrderAtEdges(t *testing.T) {
	early := time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2400, 1, 1, 0, 0, 0, 0, time.UTC)

	if !(toNanos(early) < toNanos(stored) && toNanos(stored) < toNanos(late)) {
		t.Errorf("order not preserved: %d, %d, %d", toNanos(early), toNanos(stored), toNanos(late))
	}
}
