package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY returns true if the given writer is a terminal.
// It supports os.File and any wrapper that provides an Fd() method.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor returns true if the given writer supports ANSI color codes.
//
// NO_COLOR and TERM=dumb always disable color. FORCE_COLOR enables it for
// non-TTY writers, which is how CI runners that render ANSI opt in.
func SupportsColor(w io.Writer) bool {
	return supportsColor(w, IsTTY(w))
}

func supportsColor(_ io.Writer, isTTY bool) bool {
	// https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	if v, ok := os.LookupEnv("FORCE_COLOR"); ok && v != "" && v != "0" {
		return true
	}

	return isTTY
}
