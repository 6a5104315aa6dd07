// Package yamldoc models YAML documents as a tagged value type and provides the
// merge and filter primitives the merger is built on.
//
// A Value is exactly one of null, scalar, mapping, or sequence. Mappings keep
// their declaration order so emitted documents follow the order fragments and
// the core configuration were written in. Scalars retain the tag and style
// they were decoded with, which lets documents round-trip without quoting
// surprises (for example "1" stays a string, 1 stays an int).
//
// Parse and Marshal bridge to gopkg.in/yaml.v3 nodes. Merge and Filter never
// alias their inputs: values copied into a destination are cloned first.
package yamldoc
