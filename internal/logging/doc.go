// Package logging assembles the structured slog loggers used by the merger
// and the CLI.
//
// A run logs to the terminal through a console handler (or JSON when
// configured) and, when a diagnostics file is configured, to that file as JSON
// records. The file is truncated at the start of each run so it always
// describes the most recent merge. Every record carries the run identifier.
//
// Components take a *slog.Logger and tag it with NewComponentLogger. Warnings
// and errors go through WarnWithContext and ErrorWithContext so each one names
// its event type, a hint, and the impact on the produced configuration.
package logging
