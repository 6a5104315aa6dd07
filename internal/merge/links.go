package merge

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// linkKey is the key of a file link object.
const linkKey = "file"

// ResolveLinks turns the fragments in dir into file links and inline items.
//
// A fragment whose first key matches expectedKey case-insensitively is
// inlined with that key stripped; a sequence contributes each element.
// Every other fragment becomes {file: <path>}. All links precede all inline
// items. A missing directory yields an empty result.
func (m *Merger) ResolveLinks(dir, expectedKey string) []yamldoc.Value {
	names, _ := m.fragments(dir)
	var links, raw []yamldoc.Value
	for _, name := range names {
		value := m.LoadFragment(name)
		if content, ok := unwrap(value, expectedKey); ok {
			if items, isSeq := content.Items(); isSeq {
				raw = append(raw, items...)
				m.stats.InlineItems += len(items)
			} else {
				raw = append(raw, content)
				m.stats.InlineItems++
			}
			m.logger.Debug("fragment inlined",
				logging.String(logging.FieldEventType, "raw_included"),
				logging.String(logging.FieldPath, name),
				logging.String("stripped_key", expectedKey),
			)
			continue
		}
		link := m.FormatLink(m.hostPath(name))
		links = append(links, fileLink(link))
		m.stats.Links++
		m.logger.Debug("file link added",
			logging.String(logging.FieldEventType, "link_added"),
			logging.String(logging.FieldPath, name),
			logging.String("link", link),
		)
	}
	return append(links, raw...)
}

// unwrap returns the payload under value's first key when it matches expectedKey.
func unwrap(value yamldoc.Value, expectedKey string) (yamldoc.Value, bool) {
	if expectedKey == "" {
		return yamldoc.Value{}, false
	}
	mapping, ok := value.Mapping()
	if !ok {
		return yamldoc.Value{}, false
	}
	first, ok := mapping.First()
	if !ok || !sameKey(first.Key, expectedKey) {
		return yamldoc.Value{}, false
	}
	return first.Value, true
}

// FormatLink rewrites a host path under the config base to the container
// mount prefix and normalizes it to forward slashes.
func (m *Merger) FormatLink(hostPath string) string {
	p := path.Clean(strings.ReplaceAll(hostPath, "\\", "/"))
	base := strings.TrimSpace(m.configBase)
	if base == "" {
		return p
	}
	base = path.Clean(strings.ReplaceAll(base, "\\", "/"))
	switch {
	case p == base:
		return m.mountPrefix
	case strings.HasPrefix(p, strings.TrimSuffix(base, "/")+"/"):
		return path.Join(m.mountPrefix, strings.TrimPrefix(p, base))
	default:
		return p
	}
}

func (m *Merger) hostPath(name string) string {
	if m.mergeDir == "" {
		return name
	}
	return filepath.Join(m.mergeDir, filepath.FromSlash(name))
}

func fileLink(target string) yamldoc.Value {
	link := yamldoc.NewMapping()
	link.Set(linkKey, yamldoc.String(target))
	return yamldoc.MappingValue(link)
}

func sortNames(names []string) {
	slices.Sort(names)
}
