package output

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/V3L/kometa-yaml-merger/internal/fileutil"
	"github.com/V3L/kometa-yaml-merger/internal/logging"
)

const backupTimestampLayout = "20060102-150405"

// Writer replaces the output file, keeping the previous one as a backup.
type Writer struct {
	OutputPath    string
	BackupDir     string
	BackupEnabled bool
	// Retention removes backups older than this after a write. Zero keeps all.
	Retention time.Duration
	Logger    *slog.Logger

	now func() time.Time
}

// Result describes one completed write.
type Result struct {
	OutputPath string
	BackupPath string
	SHA256     string
	// Unchanged reports that the new document matches the file it replaced.
	Unchanged bool
	Pruned    []string
}

// NewWriter returns a Writer with the clock set to time.Now.
func NewWriter(outputPath, backupDir string, backupEnabled bool, retention time.Duration, logger *slog.Logger) *Writer {
	return &Writer{
		OutputPath:    outputPath,
		BackupDir:     backupDir,
		BackupEnabled: backupEnabled,
		Retention:     retention,
		Logger:        logging.NewComponentLogger(logger, "output"),
		now:           time.Now,
	}
}

// Write backs up any existing output and atomically writes data in its place.
func (w *Writer) Write(data []byte) (Result, error) {
	result := Result{OutputPath: w.OutputPath, SHA256: fileutil.HashBytes(data)}
	logger := w.logger().With(logging.String(logging.FieldPath, w.OutputPath))

	previous, err := fileutil.HashFile(w.OutputPath)
	if err != nil {
		return result, fmt.Errorf("read previous output: %w", err)
	}
	result.Unchanged = previous == result.SHA256
	if result.Unchanged {
		logger.Info("output unchanged since last write",
			logging.String(logging.FieldEventType, "output_unchanged"),
			logging.String("sha256", result.SHA256),
		)
	}

	if w.BackupEnabled && previous != "" {
		backupPath, err := w.backup()
		if err != nil {
			logging.ErrorWithContext(logger, "backup of previous output failed", "backup_created",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check backup_dir permissions and free space"),
				logging.String(logging.FieldImpact, "previous output left in place; nothing written"),
			)
			return result, err
		}
		result.BackupPath = backupPath
		logger.Info("previous output backed up",
			logging.String(logging.FieldEventType, "backup_created"),
			logging.String("backup", backupPath),
		)
	}

	if err := writeAtomic(w.OutputPath, data); err != nil {
		logging.ErrorWithContext(logger, "writing output failed", "output_written",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check output_path permissions and free space"),
			logging.String(logging.FieldImpact, "no new configuration written"),
		)
		return result, err
	}
	logger.Info("configuration written",
		logging.String(logging.FieldEventType, "output_written"),
		logging.Int("bytes", len(data)),
	)

	if w.BackupEnabled && w.Retention > 0 {
		result.Pruned = PruneBackups(w.logger(), w.BackupDir, w.OutputPath, w.Retention, w.clock())
	}
	return result, nil
}

// BackupName returns the backup file name for outputPath at ts.
func BackupName(outputPath string, ts time.Time) string {
	return backupStem(outputPath) + ".backup." + ts.Format(backupTimestampLayout) + ".yml"
}

func backupStem(outputPath string) string {
	base := filepath.Base(outputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (w *Writer) backup() (string, error) {
	if err := os.MkdirAll(w.BackupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	target := filepath.Join(w.BackupDir, BackupName(w.OutputPath, w.clock()))
	target = uniquePath(target)
	if err := fileutil.MoveFile(w.OutputPath, target); err != nil {
		return "", fmt.Errorf("move %s to %s: %w", w.OutputPath, target, err)
	}
	return target, nil
}

// uniquePath appends -2, -3, ... before the extension while path exists.
func uniquePath(path string) string {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 2; ; i++ {
		candidate := stem + "-" + strconv.Itoa(i) + ext
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
	}
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending output file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write output data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace output file: %w", err)
	}
	return nil
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return logging.NewNop()
	}
	return w.Logger
}

func (w *Writer) clock() time.Time {
	if w.now == nil {
		return time.Now()
	}
	return w.now()
}
