// Package sqlite persists scheduler state and git sync run history in a
// single SQLite file (metadata.db) under the configured data directory.
//
// The driver is modernc.org/sqlite, so no cgo toolchain is needed.
// Schema changes live in migrations/NNN_name.up.sql and are applied in
// version order when the store is opened.
package sqlite
