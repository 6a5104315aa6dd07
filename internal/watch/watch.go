// Package watch re-runs the merge when fragment files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
)

// RunFunc performs one merge pass.
type RunFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	Root     string
	Debounce time.Duration
	Logger   *slog.Logger
	Run      RunFunc
	// Ignore lists files whose changes never trigger a run, such as an
	// output file that lives inside Root.
	Ignore []string
}

// Watcher observes the fragment tree below Root.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
	run      RunFunc
	ignore   map[string]struct{}
	fsw      *fsnotify.Watcher
	runs     atomic.Int64
}

// New validates options and creates the underlying fsnotify watcher.
func New(opts Options) (*Watcher, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, errors.New("watch root is required")
	}
	if opts.Run == nil {
		return nil, errors.New("watch run func is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     filepath.Clean(opts.Root),
		debounce: opts.Debounce,
		logger:   logging.NewComponentLogger(opts.Logger, "watch"),
		run:      opts.Run,
		ignore:   make(map[string]struct{}, len(opts.Ignore)),
		fsw:      fsw,
	}
	for _, path := range opts.Ignore {
		if strings.TrimSpace(path) != "" {
			w.ignore[filepath.Clean(path)] = struct{}{}
		}
	}
	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Runs reports how many merge passes the watcher has triggered.
func (w *Watcher) Runs() int64 {
	return w.runs.Load()
}

// Watch blocks until ctx is cancelled, running the merge once per burst of
// changes. Run errors are logged and do not stop the loop.
func (w *Watcher) Watch(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	w.logger.Info("watching fragment tree",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String(logging.FieldPath, w.root),
		logging.Duration("debounce", w.debounce),
	)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("watcher stopped", logging.String(logging.FieldEventType, "watch_stopped"))
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("fragment tree changed",
				logging.String(logging.FieldEventType, "watch_change"),
				logging.String(logging.FieldPath, event.Name),
				logging.String("op", event.Op.String()),
			)
			timer.Reset(w.debounce)

		case <-timer.C:
			w.runs.Add(1)
			if err := w.run(ctx); err != nil {
				logging.ErrorWithContext(w.logger, "merge after change failed", "watch_run_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "fix the reported fragment and save again"),
				)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error", logging.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if skipped(w.root, event.Name) {
		return false
	}
	if _, ok := w.ignore[filepath.Clean(event.Name)]; ok {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logging.WarnWithContext(w.logger, "watch new directory failed", "watch_error",
					logging.String(logging.FieldPath, event.Name), logging.Error(err))
			}
			return true
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		// Removed directories have no extension either.
		return isYAML(event.Name) || filepath.Ext(event.Name) == ""
	}
	return isYAML(event.Name)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && skipped(w.root, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// skipped reports whether path sits below an underscore-prefixed directory
// such as the log or backup folders.
func skipped(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, "_") {
			return true
		}
	}
	return false
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
