package yamldoc

// Merge folds update into base in place. When both sides hold a mapping under
// the same key the mappings merge recursively; any other combination replaces
// the base value, so sequences are replaced rather than concatenated and a
// scalar can become a mapping. Values taken from update are cloned.
func Merge(base, update *Mapping) {
	if base == nil || update == nil {
		return
	}
	for _, entry := range update.entries {
		if current, ok := base.Get(entry.Key); ok {
			baseMap, baseIsMap := current.Mapping()
			updateMap, updateIsMap := entry.Value.Mapping()
			if baseIsMap && updateIsMap {
				Merge(baseMap, updateMap)
				continue
			}
		}
		base.set(entry.Key, entry.keyTag, entry.Value.Clone())
	}
}

// Filter restricts value to the keys described by allowed.
//
// When allowed is a mapping, only keys present in both are kept, in allowed's
// order, and each child is filtered by the matching allowed child. When
// allowed is a sequence, top-level keys of value that appear as scalars in the
// sequence are kept in value's order without recursing. Non-mapping values and
// any other allowed shape return value unchanged.
func Filter(value, allowed Value) Value {
	valueMap, ok := value.Mapping()
	if !ok {
		return value.Clone()
	}
	switch allowed.Kind() {
	case KindMapping:
		spec, _ := allowed.Mapping()
		out := NewMapping()
		for _, entry := range spec.entries {
			child, ok := valueMap.Get(entry.Key)
			if !ok {
				continue
			}
			out.set(entry.Key, valueMap.entries[valueMap.index[entry.Key]].keyTag, Filter(child, entry.Value))
		}
		return MappingValue(out)
	case KindSequence:
		items, _ := allowed.Items()
		keep := make(map[string]struct{}, len(items))
		for _, item := range items {
			if s, ok := item.Scalar(); ok {
				keep[s.Text] = struct{}{}
			}
		}
		out := NewMapping()
		for _, entry := range valueMap.entries {
			if _, ok := keep[entry.Key]; ok {
				out.set(entry.Key, entry.keyTag, entry.Value.Clone())
			}
		}
		return MappingValue(out)
	default:
		return value.Clone()
	}
}

// KeySequence returns a sequence of string scalars naming the keys of m.
// It is the allowed-keys shape Filter expects for a flat whitelist.
func KeySequence(m *Mapping) Value {
	keys := m.Keys()
	items := make([]Value, len(keys))
	for i, key := range keys {
		items[i] = String(key)
	}
	return Sequence(items...)
}
