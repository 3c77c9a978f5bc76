// Package store provides SQLite-backed storage for brewing records.
//
// Tables:
//   - ingredients: rice, koji, yeast and water lots
//   - recipe: one row per batch, keyed by batch_id
//   - starters: shubo batches, keyed by starter code ("s64")
//   - publish_notes: public description of a finished batch
//   - formulas: append-only calculation history
//
// # Writes
//
// Put* methods replace every column of an existing row. Merge* methods only
// overwrite columns whose incoming value is non-null, which is what a sheet
// pull needs when cells are left blank.
//
// # Ordering
//
// Every list query has an ORDER BY ending in the primary key with
// COLLATE BINARY, so results are stable across runs.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
