// Package history records merge runs in a SQLite ledger beside the
// diagnostics log.
//
// Each run is inserted as running when it starts and updated once it
// finishes with its status, output hash, backup path, and counts. The
// history command and unchanged-output detection read from it.
package history
