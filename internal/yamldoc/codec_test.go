package yamldoc_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/V3L/kometa-yaml-merger/internal/yamldoc"
)

func TestParseEmptyDocumentIsNull(t *testing.T) {
	for _, src := range []string{"", "# only a comment\n", "null", "~"} {
		v := mustParse(t, src)
		if !v.IsNull() {
			t.Fatalf("Parse(%q) kind = %s, want null", src, v.Kind())
		}
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := yamldoc.Parse([]byte("key: [unclosed")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	m := mustMapping(t, "zeta: 1\nalpha: 2\nmid: 3\n")
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, m.Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResolvesMergeKeys(t *testing.T) {
	src := `
defaults: &defaults
  sync_mode: sync
  schedule: daily
collection:
  <<: *defaults
  schedule: weekly(sunday)
`
	m := mustMapping(t, src)
	collection, _ := m.Get("collection")
	assertYAML(t, collection, "sync_mode: sync\nschedule: weekly(sunday)")
}

func TestParseRejectsNonMappingMergeKey(t *testing.T) {
	src := "base: &b [1]\nitem:\n  <<: *b\n"
	if _, err := yamldoc.Parse([]byte(src)); err == nil {
		t.Fatal("expected error for sequence merge source")
	}
}

func TestParseExpandsAliases(t *testing.T) {
	m := mustMapping(t, "a: &x {k: v}\nb: *x\n")
	b, _ := m.Get("b")
	assertYAML(t, b, "k: v")
}

func TestMarshalRoundTripKeepsScalarTypes(t *testing.T) {
	src := "port: 32400\nid: \"1234\"\nenabled: true\nname: Movies\n"
	out := render(t, mustParse(t, src))
	for _, want := range []string{"port: 32400", `id: "1234"`, "enabled: true", "name: Movies"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestMarshalNullAndEmptyString(t *testing.T) {
	m := yamldoc.NewMapping()
	m.Set("empty", yamldoc.String(""))
	m.Set("missing", yamldoc.Null())
	out := render(t, yamldoc.MappingValue(m))
	want := "empty: \"\"\nmissing: null\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("marshal mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalBlockStyle(t *testing.T) {
	out := render(t, mustParse(t, "libraries: {Movies: {metadata_files: [{file: a.yml}]}}"))
	want := "libraries:\n  Movies:\n    metadata_files:\n      - file: a.yml\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("marshal mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := mustParse(t, "a: {b: [1]}")
	clone := original.Clone()
	m, _ := clone.Mapping()
	m.Set("a", yamldoc.String("changed"))
	assertYAML(t, original, "a: {b: [1]}")
}

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"null", true},
		{"{}", true},
		{"[]", true},
		{"''", false},
		{"0", false},
		{"[null]", false},
		{"a: 1", false},
	}
	for _, tc := range cases {
		if got := mustParse(t, tc.src).IsEmpty(); got != tc.want {
			t.Fatalf("IsEmpty(%q) = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestRecursiveAliasIsRejected(t *testing.T) {
	if _, err := yamldoc.Parse([]byte("a: &x\n  b: *x\n")); err == nil {
		t.Fatal("expected error for self-referencing alias")
	}
}
