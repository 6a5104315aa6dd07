package merge

import (
	"fmt"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// LoadCore loads the core configuration at name. A core that is missing,
// invalid, empty, or not a mapping yields ErrEmptyCore.
func (m *Merger) LoadCore(name string) (*yamldoc.Mapping, error) {
	core, ok := m.LoadFragment(name).Mapping()
	if !ok || core.Len() == 0 {
		logging.ErrorWithContext(m.logger, "core configuration not found or empty", "core_missing",
			logging.String(logging.FieldPath, name),
			logging.String(logging.FieldErrorHint, "create the core file or run 'kometa-merge scaffold' against an existing one"),
			logging.String(logging.FieldImpact, "no output written"),
		)
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyCore)
	}
	m.logger.Info("core configuration loaded",
		logging.String(logging.FieldPath, name),
		logging.Int("keys", core.Len()),
	)
	return core, nil
}

// Build produces the final configuration for the core file at coreName.
// The result has exactly the core's top-level keys, in core order.
func (m *Merger) Build(coreName string) (*yamldoc.Mapping, Stats, error) {
	m.stats = Stats{}
	core, err := m.LoadCore(coreName)
	if err != nil {
		return nil, m.stats, err
	}

	final := yamldoc.NewMapping()
	for _, entry := range core.Entries() {
		if IsLibrariesKey(entry.Key) {
			entry.Value = yamldoc.MappingValue(m.buildLibraries(entry.Value))
			final.SetEntry(entry)
			continue
		}
		entry.Value = m.ProcessCategory(entry.Key, entry.Value)
		m.stats.Categories++
		final.SetEntry(entry)
	}
	return final, m.stats, nil
}

// buildLibraries processes every declared library and keeps only the
// categories that library declares.
func (m *Merger) buildLibraries(declared yamldoc.Value) *yamldoc.Mapping {
	out := yamldoc.NewMapping()
	libraries, ok := declared.Mapping()
	if !ok {
		if !declared.IsNull() {
			logging.WarnWithContext(m.logger, "libraries is not a mapping", "core_missing",
				logging.String("kind", declared.Kind().String()),
				logging.String(logging.FieldErrorHint, "declare libraries as a mapping of library names"),
				logging.String(logging.FieldImpact, "no libraries processed"),
			)
		}
		return out
	}
	for _, lib := range libraries.Entries() {
		allowed := yamldoc.Sequence()
		if decl, ok := lib.Value.Mapping(); ok {
			allowed = yamldoc.KeySequence(decl)
		} else {
			logging.WarnWithContext(m.logger, "library declaration is not a mapping", "library_merged",
				logging.String(logging.FieldLibrary, lib.Key),
				logging.String(logging.FieldErrorHint, "list the categories this library uses, e.g. metadata_files:"),
				logging.String(logging.FieldImpact, "library written without categories"),
			)
		}
		processed := m.ProcessLibrary(lib.Key)
		lib.Value = yamldoc.Filter(yamldoc.MappingValue(processed), allowed)
		out.SetEntry(lib)
		m.stats.Libraries++
	}
	return out
}
