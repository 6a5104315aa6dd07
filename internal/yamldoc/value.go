package yamldoc

import "fmt"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Scalar is a leaf value with the YAML tag it resolved to.
type Scalar struct {
	Tag   string
	Text  string
	Style Style
}

// Style records how a scalar was quoted in its source document.
type Style uint8

const (
	StylePlain Style = iota
	StyleSingleQuoted
	StyleDoubleQuoted
	StyleLiteral
	StyleFolded
)

// Value is a YAML node: null, scalar, mapping, or sequence.
// The zero Value is null.
type Value struct {
	kind    Kind
	scalar  Scalar
	mapping *Mapping
	items   []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// ScalarValue wraps a scalar.
func ScalarValue(s Scalar) Value {
	return Value{kind: KindScalar, scalar: s}
}

// String returns a plain string scalar.
func String(s string) Value {
	return ScalarValue(Scalar{Tag: TagStr, Text: s})
}

// Bool returns a boolean scalar.
func Bool(b bool) Value {
	text := "false"
	if b {
		text = "true"
	}
	return ScalarValue(Scalar{Tag: TagBool, Text: text})
}

// Int returns an integer scalar.
func Int(n int) Value {
	return ScalarValue(Scalar{Tag: TagInt, Text: fmt.Sprintf("%d", n)})
}

// MappingValue wraps m. A nil mapping becomes an empty one.
func MappingValue(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, mapping: m}
}

// Sequence returns a sequence holding items.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Scalar returns the scalar payload when v is a scalar.
func (v Value) Scalar() (Scalar, bool) {
	if v.kind != KindScalar {
		return Scalar{}, false
	}
	return v.scalar, true
}

// Mapping returns the mapping payload when v is a mapping.
func (v Value) Mapping() (*Mapping, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.mapping, true
}

// Items returns the elements when v is a sequence.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.items, true
}

// IsEmpty reports whether v is null, an empty mapping, or an empty sequence.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindMapping:
		return v.mapping.Len() == 0
	case KindSequence:
		return len(v.items) == 0
	default:
		return false
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMapping:
		return MappingValue(v.mapping.Clone())
	case KindSequence:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.Clone()
		}
		return Value{kind: KindSequence, items: items}
	default:
		return v
	}
}

// Equal reports whether a and b hold the same structure and scalar text.
// Scalar style is ignored; mapping order is significant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindScalar:
		return a.scalar.Tag == b.scalar.Tag && a.scalar.Text == b.scalar.Text
	case KindSequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if a.mapping.Len() != b.mapping.Len() {
			return false
		}
		for i, entry := range a.mapping.entries {
			other := b.mapping.entries[i]
			if entry.Key != other.Key || !Equal(entry.Value, other.Value) {
				return false
			}
		}
		return true
	}
	return false
}
