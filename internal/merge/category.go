package merge

import (
	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// ProcessCategory deep merges the fragments in the directory named after a
// non-library category on top of its core value. A single top-level key
// matching the category name is unwrapped first. An unwrapped sequence or
// scalar, such as a top-level playlist_files list, replaces the core value.
// The core value is not modified.
func (m *Merger) ProcessCategory(name string, original yamldoc.Value) yamldoc.Value {
	logger := m.logger.With(logging.String(logging.FieldCategory, name))

	onDisk := m.MergeDirectory(name)
	additional := yamldoc.MappingValue(onDisk)
	if onDisk.Len() == 1 {
		if first, _ := onDisk.First(); sameKey(first.Key, name) {
			additional = first.Value
		}
	}

	additionalMap, ok := additional.Mapping()
	if !ok {
		if additional.IsNull() {
			additionalMap = yamldoc.NewMapping()
		} else {
			logger.Info("category replaced",
				logging.String(logging.FieldEventType, "category_replaced"),
				logging.String("kind", additional.Kind().String()),
			)
			return additional.Clone()
		}
	}

	var merged yamldoc.Value
	switch baseMap, isMap := original.Mapping(); {
	case isMap:
		out := baseMap.Clone()
		yamldoc.Merge(out, additionalMap)
		merged = yamldoc.MappingValue(out)
	case original.IsNull() || additionalMap.Len() > 0:
		merged = yamldoc.MappingValue(additionalMap.Clone())
	default:
		merged = original.Clone()
	}

	logger.Info("category merged",
		logging.String(logging.FieldEventType, "category_merged"),
		logging.Int("disk_keys", additionalMap.Len()),
	)
	return merged
}
