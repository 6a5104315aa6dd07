package yamldoc

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value

	keyTag string
}

// Mapping is an insertion-ordered YAML mapping with string keys.
// Setting an existing key replaces its value in place and keeps its position.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Len returns the number of entries. A nil mapping has none.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	idx, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.entries[idx].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. The value is stored as given, not cloned.
func (m *Mapping) Set(key string, value Value) {
	m.set(key, TagStr, value)
}

// SetEntry stores entry.Value under entry.Key, keeping the key's original tag.
func (m *Mapping) SetEntry(entry Entry) {
	tag := entry.keyTag
	if tag == "" {
		tag = TagStr
	}
	m.set(entry.Key, tag, entry.Value)
}

func (m *Mapping) set(key, keyTag string, value Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if idx, ok := m.index[key]; ok {
		m.entries[idx].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value, keyTag: keyTag})
}

// Delete removes key if present.
func (m *Mapping) Delete(key string) {
	if m == nil {
		return
	}
	idx, ok := m.index[key]
	if !ok {
		return
	}
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	delete(m.index, key)
	for i := idx; i < len(m.entries); i++ {
		m.index[m.entries[i].Key] = i
	}
}

// Keys returns the keys in declaration order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, entry := range m.entries {
		keys[i] = entry.Key
	}
	return keys
}

// Entries returns the entries in declaration order. The slice must not be
// modified by the caller.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	return m.entries
}

// First returns the first declared entry.
func (m *Mapping) First() (Entry, bool) {
	if m.Len() == 0 {
		return Entry{}, false
	}
	return m.entries[0], true
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	out := NewMapping()
	if m == nil {
		return out
	}
	out.entries = make([]Entry, len(m.entries))
	for i, entry := range m.entries {
		out.entries[i] = Entry{Key: entry.Key, Value: entry.Value.Clone(), keyTag: entry.keyTag}
		out.index[entry.Key] = i
	}
	return out
}
