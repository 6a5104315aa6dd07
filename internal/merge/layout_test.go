package merge_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/V3L/kometa-yaml-merger/internal/merge"
)

func TestLibraryFolder(t *testing.T) {
	cases := map[string]string{
		"Movies - Disney":  "Movies-Disney",
		"TV Shows":         "TV-Shows",
		"4K Movies - Kids": "4K-Movies-Kids",
		"Anime":            "Anime",
	}
	for in, want := range cases {
		if got := merge.LibraryFolder(in); got != want {
			t.Errorf("LibraryFolder(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMediaScope(t *testing.T) {
	cases := map[string]string{
		"Movies - Disney": "movies",
		"TV Shows":        "tv",
		"Kids TV Movies":  "movies",
		"Anime":           "",
		"4K MOVIES":       "movies",
	}
	for in, want := range cases {
		if got := merge.MediaScope(in); got != want {
			t.Errorf("MediaScope(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScopeDirs(t *testing.T) {
	want := []string{
		"libraries/global/collections",
		"libraries/movies/collections",
		"libraries/library_specific/Movies-Disney/collections",
	}
	if diff := cmp.Diff(want, merge.ScopeDirs("Movies - Disney", "collections")); diff != "" {
		t.Fatalf("scope dirs mismatch (-want +got):\n%s", diff)
	}

	want = []string{
		"libraries/global/metadata",
		"libraries/library_specific/Anime/metadata",
	}
	if diff := cmp.Diff(want, merge.ScopeDirs("Anime", "metadata")); diff != "" {
		t.Fatalf("scope dirs mismatch (-want +got):\n%s", diff)
	}
}

func TestIsLibrariesKey(t *testing.T) {
	for _, key := range []string{"libraries", "Libraries", "LIBRARIES"} {
		if !merge.IsLibrariesKey(key) {
			t.Errorf("IsLibrariesKey(%q) = false", key)
		}
	}
	if merge.IsLibrariesKey("library") {
		t.Error("IsLibrariesKey(\"library\") = true")
	}
}
