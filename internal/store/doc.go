// Package store provides SQLite-backed durable storage for check runs.
//
// The store is an append-only log with:
//   - Runs: one record per check of a specs directory
//   - Results: one record per checked expression of a run
//
// # Logical Identity and Time
//
// All ordering uses seq INTEGER (logical clock), never timestamps. Result
// IDs are content-addressed from (run, expression, seq) via ir.ResultID, so
// rewriting the same run is a no-op.
//
// # Deterministic Query Results
//
// Every multi-row query orders by seq, then id COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
