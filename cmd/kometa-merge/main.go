package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/V3L/kometa-yaml-merger/internal/merge"
	"github.com/V3L/kometa-yaml-merger/internal/output"
)

// Exit codes let cron wrappers tell an aborted merge from a busy one.
const (
	exitFailure   = 1
	exitEmptyCore = 2
	exitLocked    = 3
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, merge.ErrEmptyCore):
		return exitEmptyCore
	case errors.Is(err, output.ErrLocked):
		return exitLocked
	default:
		return exitFailure
	}
}
