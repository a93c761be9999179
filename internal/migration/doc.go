// Package migration moves persisted data from a legacy blob cache into its
// replacement exactly once.
//
// A run copies artwork blobs verbatim, copies every registered settings
// schema field by field, writes the Sqlite3Migrated marker into the
// destination, and only then invalidates the legacy store. Any copy failure
// aborts before the marker is written, so the next startup retries the whole
// migration from scratch.
//
// Callers gate the run on NeedsMigration(destination) and execute it once at
// startup, before either store is used for anything else.
package migration
