// Package store persists videos, the practice catalog, annotations,
// transcripts, and the audit log in a single SQLite database.
//
// The schema is embedded and versioned; a version mismatch is reported as
// ErrSchemaMismatch rather than migrated. Writes retry briefly while the
// database is busy so concurrent analysis workers can share one file.
// Store implements pipeline.ProgressSink through UpdateProgress.
package store
