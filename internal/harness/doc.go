// Package harness runs conformance scenarios against the contest engine.
//
// A scenario seeds a fresh in-memory store with facts, drives the validation
// workflow, scoring engine and update feed through a sequence of timed steps,
// and then checks assertions against the resulting ledger. Every run uses a
// manual clock and sequential validation ids, so the same scenario always
// produces the same trace and the same leaderboards.
//
// # Scenario Format
//
//	name: re_review
//	description: "A rejected catch approved later counts again"
//	clock: "2025-01-31T12:00:00Z"
//	facts:
//	  users: [...]
//	  events: [...]
//	  contests: [...]
//	  catches: [...]
//	steps:
//	  - op: decide
//	    catch: b2
//	    validator: ref
//	    status: rejected
//	    reason: "blurry photo"
//	  - op: decide
//	    advance: 1h
//	    catch: b2
//	    validator: ref
//	    status: approved
//	  - op: decide
//	    catch: b2
//	    validator: ref
//	    status: rejected
//	    expect: { error: INVALID_DECISION }
//	assertions:
//	  - type: leaderboard
//	    contest: jan-total
//	    ranks:
//	      - { user: ben, score: 14 }
//	  - type: current_status
//	    catch: b2
//	    status: approved
//
// The facts block uses the fixtures format and is checked against the same
// CUE schema as fixture files.
//
// # Steps
//
// Each step may move the clock before it runs, either to an absolute time
// (at) or by a duration (advance). Supported ops:
//
//   - decide: append a decision for a catch
//   - score: compute the leaderboard of a contest
//   - poll: fetch feed updates of a contest since a time
//   - candidates: list review candidates of a contest
//   - history: list the validation history of a catch
//
// A step with expect.error must fail with that error code; any other step
// must succeed.
//
// # Assertion Types
//
//   - leaderboard: ranks and totals of a contest's leaderboard
//   - current_status: derived status of a catch
//   - feed: catch ids returned by a poll, newest first
//   - candidates: candidate catch ids in listing order
//   - history_count: number of ledger records for a catch
//
// # Golden Files
//
// RunWithGolden snapshots the trace and final leaderboards under
// testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
