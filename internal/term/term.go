// Package term holds ANSI color state and terminal detection for console
// output: log level tags, analyze flags, the banner, and whether the
// progress bar may draw.
//
// Colors are package-level strings set once by [Configure]. When colors are
// off they are empty, so concatenation and [Paint] are no-ops.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/thumbvtt/internal/config"
)

// ANSI color codes. Empty when colors are disabled.
var (
	Red     = ""
	Green   = ""
	Yellow  = ""
	Orange  = ""
	Blue    = ""
	Cyan    = ""
	Magenta = ""
	NC      = "" // Reset sequence.
)

var palette = []struct {
	dst  *string
	code string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Orange, "\033[1;38;5;208m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&NC, "\033[0m"},
}

// Configure resolves the color mode and sets the package-level ANSI
// variables. Called once during startup by logging.NewLogger.
func Configure(mode config.ColorMode) {
	on := resolve(mode)
	for _, p := range palette {
		if on {
			*p.dst = p.code
		} else {
			*p.dst = ""
		}
	}
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// Paint wraps s in color c and a reset. s is returned unchanged when
// colors are off or c is empty.
func Paint(c, s string) string {
	if c == "" || NC == "" {
		return s
	}
	return c + s + NC
}

// resolve applies, in order: the explicit mode, NO_COLOR
// (https://no-color.org), CLICOLOR_FORCE, then TTY detection on stdout.
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	return Interactive(os.Stdout)
}

// Interactive reports whether f is a TTY whose terminal understands
// escape sequences (TERM is not "dumb"). The progress bar only draws on
// interactive stderr.
func Interactive(f *os.File) bool {
	return IsTerminal(f) && !strings.EqualFold(os.Getenv("TERM"), "dumb")
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
