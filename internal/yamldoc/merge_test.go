package yamldoc_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

func mustParse(t *testing.T, src string) yamldoc.Value {
	t.Helper()
	v, err := yamldoc.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return v
}

func mustMapping(t *testing.T, src string) *yamldoc.Mapping {
	t.Helper()
	m, ok := mustParse(t, src).Mapping()
	if !ok {
		t.Fatalf("expected mapping for %q", src)
	}
	return m
}

func render(t *testing.T, v yamldoc.Value) string {
	t.Helper()
	out, err := yamldoc.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return string(out)
}

func assertYAML(t *testing.T, got yamldoc.Value, want string) {
	t.Helper()
	wantValue := mustParse(t, want)
	if !yamldoc.Equal(got, wantValue) {
		t.Fatalf("document mismatch (-want +got):\n%s", cmp.Diff(render(t, wantValue), render(t, got)))
	}
}

func TestMergeCombinesNestedMappings(t *testing.T) {
	base := yamldoc.NewMapping()
	yamldoc.Merge(base, mustMapping(t, "a: {b: {x: 1}}"))
	yamldoc.Merge(base, mustMapping(t, "a: {b: {y: 2}}"))

	assertYAML(t, yamldoc.MappingValue(base), "a: {b: {x: 1, y: 2}}")
}

func TestMergeReplacesNonMappingWithMapping(t *testing.T) {
	base := yamldoc.NewMapping()
	yamldoc.Merge(base, mustMapping(t, "a: 1"))
	yamldoc.Merge(base, mustMapping(t, "a: {b: 2}"))

	assertYAML(t, yamldoc.MappingValue(base), "a: {b: 2}")
}

func TestMergeReplacesSequences(t *testing.T) {
	base := mustMapping(t, "list: [1, 2]\nkeep: true")
	yamldoc.Merge(base, mustMapping(t, "list: [3]"))

	assertYAML(t, yamldoc.MappingValue(base), "list: [3]\nkeep: true")
}

func TestMergeKeepsExistingKeyPosition(t *testing.T) {
	base := mustMapping(t, "first: 1\nsecond: 2")
	yamldoc.Merge(base, mustMapping(t, "third: 3\nfirst: 10"))

	if diff := cmp.Diff([]string{"first", "second", "third"}, base.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotAliasUpdate(t *testing.T) {
	base := yamldoc.NewMapping()
	update := mustMapping(t, "settings: {cache: true}")
	yamldoc.Merge(base, update)
	yamldoc.Merge(base, mustMapping(t, "settings: {run_order: [operations]}"))

	assertYAML(t, yamldoc.MappingValue(update), "settings: {cache: true}")
}

func TestMergeNilIsNoop(t *testing.T) {
	base := mustMapping(t, "a: 1")
	yamldoc.Merge(base, nil)
	yamldoc.Merge(nil, base)
	assertYAML(t, yamldoc.MappingValue(base), "a: 1")
}

func TestFilterWithSequenceKeepsListedKeys(t *testing.T) {
	value := mustParse(t, "metadata_files: [{file: a.yml}]\noperations: {mass_genre_update: tmdb}")
	allowed := mustParse(t, "[metadata_files]")

	assertYAML(t, yamldoc.Filter(value, allowed), "metadata_files: [{file: a.yml}]")
}

func TestFilterWithSequenceKeepsValueOrder(t *testing.T) {
	value := mustParse(t, "a: 1\nb: 2\nc: 3")
	allowed := mustParse(t, "[c, a]")

	got, _ := yamldoc.Filter(value, allowed).Mapping()
	if diff := cmp.Diff([]string{"a", "c"}, got.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterWithMappingRecurses(t *testing.T) {
	value := mustParse(t, "plex: {url: http://plex, token: abc, timeout: 60}\nextra: true")
	allowed := mustParse(t, "plex: [url, token]")

	assertYAML(t, yamldoc.Filter(value, allowed), "plex: {url: http://plex, token: abc}")
}

func TestFilterWithMappingUsesAllowedOrder(t *testing.T) {
	value := mustParse(t, "a: 1\nb: 2")
	allowed := mustParse(t, "b: null\na: null")

	got, _ := yamldoc.Filter(value, allowed).Mapping()
	if diff := cmp.Diff([]string{"b", "a"}, got.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterLeavesNonMappingUnchanged(t *testing.T) {
	value := mustParse(t, "[1, 2, 3]")
	assertYAML(t, yamldoc.Filter(value, mustParse(t, "[a]")), "[1, 2, 3]")

	scalar := mustParse(t, "hello")
	assertYAML(t, yamldoc.Filter(scalar, mustParse(t, "a: b")), "hello")
}

func TestFilterWithScalarAllowedReturnsValue(t *testing.T) {
	value := mustParse(t, "a: 1")
	assertYAML(t, yamldoc.Filter(value, yamldoc.Null()), "a: 1")
}

func TestKeySequence(t *testing.T) {
	m := mustMapping(t, "metadata_files: null\ncollection_files: null")
	assertYAML(t, yamldoc.KeySequence(m), "[metadata_files, collection_files]")
}
