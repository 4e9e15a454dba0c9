// Package mediastore implements media.Repository on PostgreSQL (pgx/v5) and on
// an embedded SQLite database (modernc.org/sqlite).
//
// Both stores answer ReferencesPath with a single EXISTS query on every call,
// which is what the reference ledger relies on. Schema migrations are embedded
// and applied with goose: PostgresMigrations is passed to pg.Migrate, the SQLite
// store migrates itself in OpenSQLite.
package mediastore
