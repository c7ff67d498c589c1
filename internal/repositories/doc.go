// Package repositories implements SQLite persistence for check history.
//
// Repositories handle CRUD operations with atomic sequence generation for human-readable ordering.
// Records support soft deletes via deleted_at timestamps and deleted records are excluded from queries.
//
// Key Implementations:
//   - [CheckRunRepository] : One row per checked URL, grouped by run id, with findings stored as JSON.
//     It also implements tasks.Recorder so check runs can persist results as they complete.
//
// Sequence ordinals come from single-row <table>_sequence counters, incremented in the same transaction as the insert.
package repositories
