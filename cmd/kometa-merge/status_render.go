package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/V3L/kometa-yaml-merger/internal/history"
	"github.com/V3L/kometa-yaml-merger/internal/mergerun"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// outputStatus describes what a pass did to the output file.
func outputStatus(report mergerun.Report) (statusKind, string) {
	path := report.Output.OutputPath
	switch {
	case report.DryRun && report.WouldChange:
		return statusWarn, "would change " + path
	case report.DryRun:
		return statusOK, "up to date " + path
	case report.Output.Unchanged:
		return statusInfo, "unchanged " + path
	default:
		return statusOK, "written " + path
	}
}

// runStatusKind maps a ledger status to its status line colour.
func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusSucceeded:
		return statusOK
	case history.StatusFailed:
		return statusError
	case history.StatusRunning:
		return statusWarn
	default:
		return statusInfo
	}
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
