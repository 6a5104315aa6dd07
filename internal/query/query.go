// Package query selects a subtree of a rendered configuration by path.
//
// Paths separate segments with a colon so library names containing dots or
// spaces need no quoting: "libraries:Movies - Disney:metadata_files:0".
// Purely numeric segments index sequences. A path starting with "$" is passed
// to goccy/go-yaml as a YAMLPath expression unchanged.
package query

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// ErrPathNotFound is returned when the path does not resolve to a node.
var ErrPathNotFound = errors.New("path not found")

// ErrEmptyDocument is returned when there is nothing to query.
var ErrEmptyDocument = errors.New("empty document")

// Compile converts a colon-separated path into a YAMLPath.
func Compile(path string) (*yaml.Path, error) {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "$") {
		p, err := yaml.PathString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", path, err)
		}
		return p, nil
	}

	builder := (&yaml.PathBuilder{}).Root()
	for _, segment := range strings.Split(path, ":") {
		if segment == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
		if idx, err := strconv.ParseUint(segment, 10, 32); err == nil {
			builder = builder.Index(uint(idx))
			continue
		}
		builder = builder.Child(segment)
	}
	return builder.Build(), nil
}

// Select returns the YAML rendering of the node at path in data, keeping
// mapping key order. An empty path returns data unchanged.
func Select(data []byte, path string) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	if strings.TrimSpace(path) == "" {
		return data, nil
	}

	p, err := Compile(path)
	if err != nil {
		return nil, err
	}
	node, err := p.ReadNode(bytes.NewReader(data))
	if err != nil {
		if yaml.IsNotFoundNodeError(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("reading path %q: %w", path, err)
	}

	var value any
	if err := yaml.NodeToValue(node, &value, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("decode node at %q: %w", path, err)
	}
	out, err := yaml.MarshalWithOptions(value, yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("encode node at %q: %w", path, err)
	}
	return out, nil
}
