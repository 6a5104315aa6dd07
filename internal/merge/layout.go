package merge

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
)

// Directory names inside the merge directory.
const (
	LibrariesDir       = "libraries"
	GlobalScope        = "global"
	MoviesScope        = "movies"
	TVScope            = "tv"
	LibrarySpecificDir = "library_specific"
	librariesKey       = "libraries"
)

// Category is one content folder of a library scope and the key it
// produces in the library's output.
type Category struct {
	Folder string
	Key    string
	// Grouped categories collect links and inline items into a sequence.
	// The rest are deep merged into a mapping.
	Grouped bool
}

// Categories lists the library content folders in output order.
var Categories = []Category{
	{Folder: "metadata", Key: "metadata_files", Grouped: true},
	{Folder: "collections", Key: "collection_files", Grouped: true},
	{Folder: "overlays", Key: "overlay_files", Grouped: true},
	{Folder: "playlists", Key: "playlist_files", Grouped: true},
	{Folder: "operations", Key: "operations"},
}

// MediaScopes lists the media-type scopes under the libraries directory.
var MediaScopes = []string{MoviesScope, TVScope}

// LibraryFolder converts a library key to its library_specific folder name.
// "Movies - Disney" becomes "Movies-Disney".
func LibraryFolder(libraryKey string) string {
	return strings.ReplaceAll(strings.ReplaceAll(libraryKey, " - ", "-"), " ", "-")
}

// MediaScope returns the media-type scope for a library key, or "" when the
// key names neither movies nor tv. Movies wins when both appear.
func MediaScope(libraryKey string) string {
	folded := fold(libraryKey)
	for _, scope := range MediaScopes {
		if strings.Contains(folded, scope) {
			return scope
		}
	}
	return ""
}

// ScopeDirs returns the directories consulted for one library category, in
// precedence order.
func ScopeDirs(libraryKey, folder string) []string {
	dirs := []string{path.Join(LibrariesDir, GlobalScope, folder)}
	if scope := MediaScope(libraryKey); scope != "" {
		dirs = append(dirs, path.Join(LibrariesDir, scope, folder))
	}
	return append(dirs, path.Join(LibrariesDir, LibrarySpecificDir, LibraryFolder(libraryKey), folder))
}

// IsLibrariesKey reports whether a top-level core key holds library definitions.
func IsLibrariesKey(key string) bool {
	return sameKey(key, librariesKey)
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func sameKey(a, b string) bool {
	return fold(a) == fold(b)
}
