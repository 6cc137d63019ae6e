// Copyright © 2024 The ELPS authors

// Package diagnostic provides Rust-style annotated rendering of findings
// against JavaScript and TypeScript sources, together with the byte offset
// to line and column conversions the renderers and the language server
// share. It does not depend on the analysis packages.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// ColumnUnit selects how the column in a rendered location is counted.
// Span columns are always byte columns; the unit only changes what the
// reader is shown.
type ColumnUnit int

const (
	// ColumnUTF16 counts UTF-16 code units, as tsc, ESLint and editors do
	// for JavaScript sources.
	ColumnUTF16 ColumnUnit = iota
	// ColumnByte counts bytes of the UTF-8 source.
	ColumnByte
)

func (u ColumnUnit) String() string {
	if u == ColumnByte {
		return "byte"
	}
	return "utf16"
}

// ParseColumnUnit parses "utf16" or "byte". The empty string means utf16.
func ParseColumnUnit(s string) (ColumnUnit, error) {
	switch strings.ToLower(s) {
	case "", "utf16", "utf-16":
		return ColumnUTF16, nil
	case "byte", "bytes":
		return ColumnByte, nil
	}
	return ColumnUTF16, fmt.Errorf("invalid column unit %q: want utf16 or byte", s)
}

// column converts the 1-based byte column col of line to u. Columns past
// the end of the line keep their distance from it.
func (u ColumnUnit) column(line string, col int) int {
	if u == ColumnByte || col <= 1 {
		return col
	}
	n := col - 1
	if n > len(line) {
		n = len(line)
	}
	units := 0
	for _, r := range line[:n] {
		units += utf16Len(r)
	}
	return units + col - n
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start byte column
	EndCol int    // 1-based end byte column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	// Code names the check that produced the diagnostic, such as
	// "no-undef". It is shown next to the severity when set.
	Code    string
	Message string
	Spans   []Span
	Notes   []string // "= note:" lines
}
