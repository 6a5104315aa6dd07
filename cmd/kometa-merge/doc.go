// Package main hosts the kometa-merge CLI entrypoint and command graph.
//
// The Cobra-based command tree runs merge passes, scaffolds the fragment
// tree from a core configuration, watches fragments for changes, and reports
// on past runs and path readiness. It centralizes configuration resolution
// and logger setup so subcommands stay small.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through dedicated commands or flags here.
package main
