package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode selects how a command renders progress and results.
type OutputMode int

const (
	// ModeTUI drives a live bubbletea program.
	ModeTUI OutputMode = iota
	// ModePlain prints a static table once the work is over.
	ModePlain
	// ModeJSON emits a machine-readable summary and nothing else.
	ModeJSON
)

// DetectMode picks the output mode for out: JSON when asked for, plain when
// progress is suppressed or out is not an interactive terminal, TUI
// otherwise.
func DetectMode(out io.Writer, noProgress, jsonOut bool) OutputMode {
	switch {
	case jsonOut:
		return ModeJSON
	case noProgress, !isTerminal(out), dumbTerm():
		return ModePlain
	}
	return ModeTUI
}

// isTerminal reports whether w writes to an interactive character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// dumbTerm reports a TERM value no full-screen program can drive. Windows
// consoles carry no TERM, so the check is skipped there.
func dumbTerm() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	term := os.Getenv("TERM")
	return term == "" || strings.EqualFold(term, "dumb")
}
