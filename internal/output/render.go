package output

import (
	"bytes"
	"fmt"

	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

// emptyValueSuffixes are rendered values rewritten to a bare colon.
var emptyValueSuffixes = [][]byte{
	[]byte(`: ""`),
	[]byte(`: ''`),
	[]byte(`: null`),
}

// Render serializes doc and strips explicit empty and null values.
func Render(doc *yamldoc.Mapping) ([]byte, error) {
	data, err := yamldoc.Marshal(yamldoc.MappingValue(doc))
	if err != nil {
		return nil, fmt.Errorf("serialize configuration: %w", err)
	}
	return StripEmptyValues(data), nil
}

// StripEmptyValues rewrites lines ending in `: ""`, `: ''`, or `: null` to
// end in a bare colon. Only whole trailing values are touched, so keys or
// strings that merely contain "null" are left alone.
func StripEmptyValues(data []byte) []byte {
	lines := bytes.SplitAfter(data, []byte("\n"))
	var out bytes.Buffer
	out.Grow(len(data))
	for _, line := range lines {
		body := bytes.TrimSuffix(line, []byte("\n"))
		newline := len(body) != len(line)
		for _, suffix := range emptyValueSuffixes {
			if bytes.HasSuffix(body, suffix) {
				body = append(body[:len(body)-len(suffix):len(body)-len(suffix)], ':')
				break
			}
		}
		out.Write(body)
		if newline {
			out.WriteByte('\n')
		}
	}
	return out.Bytes()
}
