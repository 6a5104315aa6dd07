package merge

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// ErrEmptyCore reports a core configuration that is missing, unreadable,
// empty, or not a mapping. No output is produced for such a run.
var ErrEmptyCore = errors.New("core configuration missing or empty")

// Options configures how a Merger renders file links.
type Options struct {
	// MergeDir is the host path the fragment FS is rooted at.
	MergeDir string
	// ConfigBase is the host prefix rewritten to MountPrefix in file links.
	ConfigBase  string
	MountPrefix string
	Logger      *slog.Logger
}

// Stats counts what a Build produced.
type Stats struct {
	Libraries        int
	Categories       int
	Fragments        int
	InvalidFragments int
	Links            int
	InlineItems      int
}

// Merger reads fragments from an fs.FS rooted at the merge directory.
// A Merger is not safe for concurrent use.
type Merger struct {
	fsys        fs.FS
	mergeDir    string
	configBase  string
	mountPrefix string
	logger      *slog.Logger
	stats       Stats
}

// New returns a Merger reading from fsys.
func New(fsys fs.FS, opts Options) *Merger {
	mount := strings.TrimSpace(opts.MountPrefix)
	if mount == "" {
		mount = "/config"
	}
	return &Merger{
		fsys:        fsys,
		mergeDir:    opts.MergeDir,
		configBase:  opts.ConfigBase,
		mountPrefix: path.Clean(filepath.ToSlash(mount)),
		logger:      logging.NewComponentLogger(opts.Logger, "merge"),
	}
}

// Stats returns the counters accumulated since the last Build.
func (m *Merger) Stats() Stats {
	return m.stats
}

// LoadFragment reads and decodes one fragment. Unreadable or malformed files
// and empty documents yield an empty mapping; both are logged, never returned.
func (m *Merger) LoadFragment(name string) yamldoc.Value {
	logger := m.logger.With(logging.String(logging.FieldPath, name))
	data, err := fs.ReadFile(m.fsys, name)
	if err != nil {
		m.stats.InvalidFragments++
		logging.ErrorWithContext(logger, "fragment unreadable", "fragment_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions"),
			logging.String(logging.FieldImpact, "fragment treated as empty"),
		)
		return emptyMapping()
	}
	value, err := yamldoc.Parse(data)
	if err != nil {
		m.stats.InvalidFragments++
		logging.ErrorWithContext(logger, "fragment is not valid YAML", "fragment_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the YAML syntax in this file"),
			logging.String(logging.FieldImpact, "fragment treated as empty"),
		)
		return emptyMapping()
	}
	m.stats.Fragments++
	if value.IsNull() {
		logging.WarnWithContext(logger, "fragment is empty", "fragment_empty",
			logging.String(logging.FieldErrorHint, "add content or remove the file"),
			logging.String(logging.FieldImpact, "fragment treated as empty"),
		)
		return emptyMapping()
	}
	logger.Debug("fragment loaded",
		logging.String(logging.FieldEventType, "fragment_loaded"),
		logging.String("kind", value.Kind().String()),
	)
	return value
}

// fragments lists the YAML files directly inside dir in lexicographic order.
// A missing directory yields no files and ok=false.
func (m *Merger) fragments(dir string) (names []string, ok bool) {
	entries, err := fs.ReadDir(m.fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("directory not found",
				logging.String(logging.FieldEventType, "directory_missing"),
				logging.String(logging.FieldPath, dir),
			)
		} else {
			logging.WarnWithContext(m.logger, "directory unreadable", "directory_missing",
				logging.String(logging.FieldPath, dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
				logging.String(logging.FieldImpact, "directory treated as empty"),
			)
		}
		return nil, false
	}
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLName(entry.Name()) {
			continue
		}
		names = append(names, path.Join(dir, entry.Name()))
	}
	sortNames(names)
	return names, true
}

// MergeDirectory deep merges every fragment in dir, in lexicographic order.
// Fragments that are not mappings are skipped.
func (m *Merger) MergeDirectory(dir string) *yamldoc.Mapping {
	result := yamldoc.NewMapping()
	names, _ := m.fragments(dir)
	for _, name := range names {
		value := m.LoadFragment(name)
		mapping, ok := value.Mapping()
		if !ok {
			logging.WarnWithContext(m.logger, "fragment is not a mapping", "fragment_invalid",
				logging.String(logging.FieldPath, name),
				logging.String("kind", value.Kind().String()),
				logging.String(logging.FieldErrorHint, "top level of a merged fragment must be a mapping"),
				logging.String(logging.FieldImpact, "fragment skipped"),
			)
			continue
		}
		yamldoc.Merge(result, mapping)
	}
	return result
}

func emptyMapping() yamldoc.Value {
	return yamldoc.MappingValue(yamldoc.NewMapping())
}

func isYAMLName(name string) bool {
	return strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml")
}
