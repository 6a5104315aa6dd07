// Package scaffold creates the fragment directory skeleton described by a
// core configuration. It never merges or writes fragments.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/merge"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// ErrCoreNotFound reports a missing core configuration file.
var ErrCoreNotFound = errors.New("core configuration not found")

// Options names the directories to create and the core file to read.
type Options struct {
	MergeDir  string
	CorePath  string
	LogDir    string
	BackupDir string
	Logger    *slog.Logger
}

// Folder is one directory of the skeleton.
type Folder struct {
	Path string
	// Group labels the folder for the summary, e.g. "global" or "library Movies - Disney".
	Group   string
	Created bool
}

// Summary lists every folder of the skeleton in creation order.
type Summary struct {
	MergeDir   string
	Folders    []Folder
	Libraries  []string
	Categories []string
}

// Created counts folders that did not exist before.
func (s Summary) Created() int {
	n := 0
	for _, f := range s.Folders {
		if f.Created {
			n++
		}
	}
	return n
}

// Create reads the core configuration and creates every missing folder.
// Existing folders are left untouched, so repeated runs are harmless.
func Create(opts Options) (Summary, error) {
	logger := logging.NewComponentLogger(opts.Logger, "scaffold")
	summary := Summary{MergeDir: opts.MergeDir}

	core, err := loadCore(opts.CorePath)
	if err != nil {
		return summary, err
	}

	var plan []Folder
	add := func(group string, parts ...string) {
		plan = append(plan, Folder{Path: filepath.Join(parts...), Group: group})
	}

	add("base", opts.MergeDir)
	add("base", opts.LogDir)
	add("base", opts.BackupDir)
	libraries := filepath.Join(opts.MergeDir, merge.LibrariesDir)
	add("libraries", libraries)
	for _, scope := range []string{merge.GlobalScope, merge.MoviesScope, merge.TVScope, merge.LibrarySpecificDir} {
		add("libraries", libraries, scope)
	}
	for _, scope := range []string{merge.GlobalScope, merge.MoviesScope, merge.TVScope} {
		for _, category := range merge.Categories {
			add(scope, libraries, scope, category.Folder)
		}
	}

	for _, entry := range core.Entries() {
		if merge.IsLibrariesKey(entry.Key) {
			decl, ok := entry.Value.Mapping()
			if !ok {
				continue
			}
			for _, key := range decl.Keys() {
				summary.Libraries = append(summary.Libraries, key)
				folder := merge.LibraryFolder(key)
				group := "library " + key
				add(group, libraries, merge.LibrarySpecificDir, folder)
				for _, category := range merge.Categories {
					add(group, libraries, merge.LibrarySpecificDir, folder, category.Folder)
				}
			}
			continue
		}
		summary.Categories = append(summary.Categories, entry.Key)
		add("category", opts.MergeDir, entry.Key)
	}

	for _, folder := range plan {
		created, err := ensureDir(folder.Path)
		if err != nil {
			return summary, err
		}
		folder.Created = created
		summary.Folders = append(summary.Folders, folder)
		if created {
			logger.Debug("folder created",
				logging.String(logging.FieldPath, folder.Path),
				logging.String("group", folder.Group),
			)
		}
	}
	logger.Info("folder structure ready",
		logging.String(logging.FieldPath, opts.MergeDir),
		logging.Int("folders", len(summary.Folders)),
		logging.Int("created", summary.Created()),
	)
	return summary, nil
}

func loadCore(path string) (*yamldoc.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrCoreNotFound)
		}
		return nil, fmt.Errorf("read core configuration: %w", err)
	}
	value, err := yamldoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse core configuration %s: %w", path, err)
	}
	core, _ := value.Mapping()
	return core, nil
}

func ensureDir(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%s exists and is not a directory", path)
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", path, err)
	}
	return true, nil
}
