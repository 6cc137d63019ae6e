// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // decide from the environment and the output
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses "auto", "always" or "never". The empty string
// means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q: want auto, always or never", s)
}

// palette holds the escape sequences of each role in rendered output. The
// zero palette renders plain text.
type palette struct {
	bold    string
	gutter  string // line numbers, arrows and bars
	marker  string // underlines and their labels
	note    string
	warning string
	reset   string
}

var ansiPalette = palette{
	bold:    "\033[1m",
	gutter:  "\033[1;34m",
	marker:  "\033[1;31m",
	note:    "\033[1;36m",
	warning: "\033[33m",
	reset:   "\033[0m",
}

// severity returns the sequence used for the severity label.
func (p palette) severity(s Severity) string {
	switch s {
	case SeverityWarning:
		return p.warning
	case SeverityNote:
		return p.note
	default:
		return p.marker
	}
}

// choosePalette selects the palette for output written to w. In auto mode
// NO_COLOR wins over FORCE_COLOR, which follows the Node.js convention of
// "0" or "false" to disable and any other value to enable. Without either
// variable, colors are used on terminals other than TERM=dumb.
func choosePalette(mode ColorMode, w *os.File, getenv func(string) string) palette {
	switch mode {
	case ColorAlways:
		return ansiPalette
	case ColorNever:
		return palette{}
	}
	if getenv("NO_COLOR") != "" {
		return palette{}
	}
	if force, ok := forceColor(getenv("FORCE_COLOR")); ok {
		if force {
			return ansiPalette
		}
		return palette{}
	}
	if getenv("TERM") == "dumb" || !isTerminal(w) {
		return palette{}
	}
	return ansiPalette
}

// forceColor interprets FORCE_COLOR. An unset or empty variable reports
// false for ok.
func forceColor(v string) (force, ok bool) {
	switch strings.ToLower(v) {
	case "":
		return false, false
	case "0", "false":
		return false, true
	}
	return true, true
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
