package merge

import (
	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// ProcessLibrary builds every content category for one library from the
// global, media-type, and library-specific scopes. Categories with no
// content are omitted.
func (m *Merger) ProcessLibrary(libraryKey string) *yamldoc.Mapping {
	logger := m.logger.With(logging.String(logging.FieldLibrary, libraryKey))
	result := yamldoc.NewMapping()
	for _, category := range Categories {
		dirs := ScopeDirs(libraryKey, category.Folder)
		var merged yamldoc.Value
		if category.Grouped {
			var items []yamldoc.Value
			for _, dir := range dirs {
				items = append(items, m.ResolveLinks(dir, category.Key)...)
			}
			merged = yamldoc.Sequence(items...)
		} else {
			combined := yamldoc.NewMapping()
			for _, dir := range dirs {
				yamldoc.Merge(combined, m.MergeDirectory(dir))
			}
			merged = yamldoc.MappingValue(combined)
		}
		if merged.IsEmpty() {
			logger.Debug("no content for category",
				logging.String(logging.FieldCategory, category.Folder),
			)
			continue
		}
		result.Set(category.Key, merged)
		logger.Info("category merged",
			logging.String(logging.FieldEventType, "library_merged"),
			logging.String(logging.FieldCategory, category.Folder),
			logging.String("key", category.Key),
			logging.Int("entries", entryCount(merged)),
		)
	}
	return result
}

func entryCount(v yamldoc.Value) int {
	if items, ok := v.Items(); ok {
		return len(items)
	}
	if mapping, ok := v.Mapping(); ok {
		return mapping.Len()
	}
	return 1
}
