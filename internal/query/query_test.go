package query_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/V3L/kometa-yaml-merger/internal/query"
)

const document = `libraries:
  Movies - Disney:
    metadata_files:
      - file: /config/config_merge/libraries/global/metadata/a.yml
      - pmm: basic
    operations:
      mass_genre_update: tmdb
      delete_collections:
        less: 1
settings:
  cache: true
`

func TestSelectNestedKeyWithSpaces(t *testing.T) {
	got, err := query.Select([]byte(document), "libraries:Movies - Disney:operations")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	out := string(got)
	first := strings.Index(out, "mass_genre_update: tmdb")
	second := strings.Index(out, "delete_collections:")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected ordered operations subtree, got:\n%s", out)
	}
}

func TestSelectSequenceIndex(t *testing.T) {
	got, err := query.Select([]byte(document), "libraries:Movies - Disney:metadata_files:1:pmm")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if strings.TrimSpace(string(got)) != "basic" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestSelectYAMLPathExpression(t *testing.T) {
	got, err := query.Select([]byte(document), "$.settings.cache")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if strings.TrimSpace(string(got)) != "true" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestSelectMissingPath(t *testing.T) {
	_, err := query.Select([]byte(document), "libraries:TV Shows")
	if !errors.Is(err, query.ErrPathNotFound) {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
}

func TestSelectEmptyPathReturnsDocument(t *testing.T) {
	got, err := query.Select([]byte(document), "")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if string(got) != document {
		t.Fatal("expected document unchanged")
	}
}

func TestSelectEmptyDocument(t *testing.T) {
	if _, err := query.Select([]byte("  \n"), "settings"); !errors.Is(err, query.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestCompileRejectsEmptySegment(t *testing.T) {
	if _, err := query.Compile("libraries::Movies"); err == nil {
		t.Fatal("expected error for empty segment")
	}
}
