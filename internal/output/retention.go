package output

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
)

// PruneBackups removes backups of outputPath in dir whose timestamp is older
// than retention. The timestamp comes from the file name; files whose name
// does not parse fall back to their modification time. Removed paths are
// returned.
func PruneBackups(logger *slog.Logger, dir, outputPath string, retention time.Duration, now time.Time) []string {
	if retention <= 0 || strings.TrimSpace(dir) == "" {
		return nil
	}
	cutoff := now.Add(-retention)
	prefix := backupStem(outputPath) + ".backup."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".yml") {
			continue
		}
		stamp, ok := backupTime(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".yml"))
		if !ok {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			stamp = info.ModTime()
		}
		if !stamp.Before(cutoff) {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if err := os.Remove(fullPath); err != nil {
			logging.WarnWithContext(logger, "backup retention remove failed; file remains", "backup_pruned",
				logging.String(logging.FieldPath, fullPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check file permissions and backup_dir ownership"),
				logging.String(logging.FieldImpact, "old backup remains on disk"),
			)
			continue
		}
		removed = append(removed, fullPath)
		if logger != nil {
			logger.Info("backup pruned",
				logging.String(logging.FieldPath, fullPath),
				logging.String(logging.FieldEventType, "backup_pruned"),
			)
		}
	}
	return removed
}

// backupTime parses "20060102-150405", allowing a "-N" collision suffix.
func backupTime(stamp string) (time.Time, bool) {
	if len(stamp) > len(backupTimestampLayout) {
		stamp = stamp[:len(backupTimestampLayout)]
	}
	ts, err := time.ParseInLocation(backupTimestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
