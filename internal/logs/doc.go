// Package logs reads the JSON diagnostics log written by each merge run.
//
// Records are decoded one per line, filtered by level, event type, or
// library, and rendered in a compact single-line form for the CLI. Follow
// polls the file for appended records and starts over when a new run
// truncates it.
package logs
