// Package store persists reconstruction runs to SQLite.
//
// The run log exists for auditability: every region reconstruction a
// pipeline performs can be recorded with its exact haplotype output, and
// read back later to compare against a re-run. Runs are identified by
// time-ordered UUIDs, so ID order is chronological order.
package store
