// Package scoring computes contest leaderboards.
//
// A leaderboard is never stored. Each call to Score re-derives it from the
// contest's eligible catches and the current validation status of each
// catch, so a re-review is reflected on the next call with no cache to
// invalidate.
//
// Ranking is split in two: Engine loads the approved, eligible catches and
// Rank turns them into ordered entries. Rank is pure and deterministic.
package scoring
