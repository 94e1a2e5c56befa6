package cliconfig

import (
	"os"
	"strconv"

	"golang.org/x/term"
)

// Fallback terminal geometry when neither the environment nor the terminal
// report a size.
const (
	DefaultColumns = 80
	DefaultLines   = 24
)

// TerminalSize returns the columns and lines available for output on fd.
// COLUMNS and LINES take precedence over the size reported by the terminal.
func TerminalSize(fd int) (cols, lines int) {
	cols, lines = DefaultColumns, DefaultLines
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil && w > 0 && h > 0 {
			cols, lines = w, h
		}
	}
	if v, ok := positiveEnv("COLUMNS"); ok {
		cols = v
	}
	if v, ok := positiveEnv("LINES"); ok {
		lines = v
	}
	return cols, lines
}

func positiveEnv(key string) (int, bool) {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
