// Package merge assembles the final Kometa configuration from the fragment
// tree under the merge directory.
//
// The core configuration names libraries and top-level setting categories.
// Each library is built from three scopes (global, movies or tv, and the
// library's own folder) per content category; file-grouping categories become
// sequences of file links and inlined items, operations are deep merged.
// Every other top-level key is deep merged with the fragments found in the
// directory named after it.
//
// The Merger reads through an fs.FS rooted at the merge directory and never
// writes. Directory listings are processed in lexicographic order so the
// output is stable across runs and platforms.
package merge
