// ABOUTME: SQLite schema for the blob cache
// ABOUTME: One row per key with payload, type name, and creation time
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
CREATE TABLE IF NOT EXISTS cache_elements (
    key TEXT PRIMARY KEY,
    type_name TEXT NOT NULL DEFAULT '',
    value BLOB NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// SchemaVersion is the current schema version
const SchemaVersion = 1
