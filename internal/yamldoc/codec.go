package yamldoc

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resolved YAML tags used by the codec.
const (
	TagNull  = "!!null"
	TagStr   = "!!str"
	TagInt   = "!!int"
	TagBool  = "!!bool"
	TagMap   = "!!map"
	TagSeq   = "!!seq"
	tagMerge = "!!merge"
)

// ErrRecursiveAlias is returned when an alias refers back to a node that is
// still being decoded.
var ErrRecursiveAlias = errors.New("recursive alias")

// Parse decodes the first YAML document in data. Empty input and documents
// holding only comments decode to null.
func Parse(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	d := &decoder{expanding: make(map[*yaml.Node]bool)}
	return d.value(&doc)
}

type decoder struct {
	expanding map[*yaml.Node]bool
}

func (d *decoder) value(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return d.value(n.Content[0])
	case yaml.AliasNode:
		return d.alias(n)
	case yaml.ScalarNode:
		tag := n.ShortTag()
		if tag == TagNull {
			return Null(), nil
		}
		return ScalarValue(Scalar{Tag: tag, Text: n.Value, Style: styleFromNode(n.Style)}), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := d.value(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		m, err := d.mapping(n)
		if err != nil {
			return Value{}, err
		}
		return MappingValue(m), nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func (d *decoder) alias(n *yaml.Node) (Value, error) {
	target := n.Alias
	if target == nil {
		return Null(), nil
	}
	if d.expanding[target] {
		return Value{}, fmt.Errorf("line %d: %w %q", n.Line, ErrRecursiveAlias, n.Value)
	}
	d.expanding[target] = true
	defer delete(d.expanding, target)
	return d.value(target)
}

// mapping decodes a mapping node. Merge keys (<<) contribute their entries
// first; explicit keys then override them in place, and a repeated key keeps
// its first position with the last value.
func (d *decoder) mapping(n *yaml.Node) (*Mapping, error) {
	out := NewMapping()
	var explicit []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == tagMerge {
			if err := d.mergeInto(out, valueNode); err != nil {
				return nil, err
			}
			continue
		}
		explicit = append(explicit, keyNode, valueNode)
	}
	for i := 0; i+1 < len(explicit); i += 2 {
		keyNode := explicit[i]
		if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
			keyNode = keyNode.Alias
		}
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		value, err := d.value(explicit[i+1])
		if err != nil {
			return nil, err
		}
		out.set(keyNode.Value, keyNode.ShortTag(), value)
	}
	return out, nil
}

func (d *decoder) mergeInto(out *Mapping, n *yaml.Node) error {
	source, err := d.value(n)
	if err != nil {
		return err
	}
	var sources []*Mapping
	switch source.Kind() {
	case KindMapping:
		m, _ := source.Mapping()
		sources = append(sources, m)
	case KindSequence:
		items, _ := source.Items()
		for _, item := range items {
			m, ok := item.Mapping()
			if !ok {
				return fmt.Errorf("line %d: merge key sequence must contain mappings", n.Line)
			}
			sources = append(sources, m)
		}
	default:
		return fmt.Errorf("line %d: merge key requires a mapping", n.Line)
	}
	for _, src := range sources {
		for _, entry := range src.entries {
			if !out.Has(entry.Key) {
				out.set(entry.Key, entry.keyTag, entry.Value)
			}
		}
	}
	return nil
}

func styleFromNode(s yaml.Style) Style {
	switch {
	case s&yaml.DoubleQuotedStyle != 0:
		return StyleDoubleQuoted
	case s&yaml.SingleQuotedStyle != 0:
		return StyleSingleQuoted
	case s&yaml.LiteralStyle != 0:
		return StyleLiteral
	case s&yaml.FoldedStyle != 0:
		return StyleFolded
	default:
		return StylePlain
	}
}

func (s Style) node() yaml.Style {
	switch s {
	case StyleDoubleQuoted:
		return yaml.DoubleQuotedStyle
	case StyleSingleQuoted:
		return yaml.SingleQuotedStyle
	case StyleLiteral:
		return yaml.LiteralStyle
	case StyleFolded:
		return yaml.FoldedStyle
	default:
		return 0
	}
}

// Node converts v into a yaml.v3 node tree.
func (v Value) Node() *yaml.Node {
	switch v.kind {
	case KindScalar:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: v.scalar.Tag, Value: v.scalar.Text, Style: v.scalar.Style.node()}
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: TagSeq}
		for _, item := range v.items {
			n.Content = append(n.Content, item.Node())
		}
		return n
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: TagMap}
		for _, entry := range v.mapping.entries {
			keyTag := entry.keyTag
			if keyTag == "" {
				keyTag = TagStr
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: keyTag, Value: entry.Key},
				entry.Value.Node(),
			)
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: TagNull, Value: "null"}
	}
}

// Marshal encodes v as a block-style YAML document with two-space indentation.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v.Node()); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}
