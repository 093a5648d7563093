// Package database provides SQLite-based storage for run history.
//
// This package implements the RunDB, which stores:
//   - Run reports as JSON for later display
//   - Per-document decisions for querying duplicate clusters
//
// No MinHash signatures or LSH bands are stored, so a saved run never
// influences a later run.
//
// The database is a single file opened through modernc.org/sqlite, which
// needs no CGO, with WAL journaling enabled.
package database
