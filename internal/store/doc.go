// Package store provides SQLite-backed storage for the contest engine.
//
// It holds two kinds of data:
//   - Facts: users, events, contests, participants, catches and social
//     counters. Other parts of the application write these; the engine
//     only reads them.
//   - The validation ledger: catch_validations, an append-only log of
//     validator decisions. Rows are never updated or deleted, and SQLite
//     triggers enforce this.
//
// # Ordering
//
// Every ledger row carries seq, allocated by AUTOINCREMENT inside the
// append transaction. The current status of a catch is its record with the
// latest validated_at, ties broken by the higher seq. All multi-row queries
// have a total ORDER BY so results are identical across runs.
//
// # Time
//
// Timestamps are stored as INTEGER unix nanoseconds in UTC. validated_at is
// taken from the store's clock when the record is appended; callers cannot
// supply it.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Failures of the underlying database surface as contest errors with code
// STORE_UNAVAILABLE.
package store
