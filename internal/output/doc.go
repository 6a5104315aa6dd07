// Package output serializes the merged configuration and replaces the
// previous output file.
//
// Render emits block-style YAML and rewrites empty-string and null values to
// a bare trailing colon, which is how Kometa configs are conventionally
// written. Writer moves any existing output into the backup directory under a
// timestamped name, writes the new document atomically, and optionally prunes
// old backups. AcquireLock serializes merge runs that share a log directory.
package output
