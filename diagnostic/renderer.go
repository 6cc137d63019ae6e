// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Renderer formats diagnostics as Rust-style annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// Columns selects the unit of the column shown in locations. Default
	// is ColumnUTF16.
	Columns ColumnUnit

	// Sources holds file contents already in memory, keyed by span file.
	// Files missing from Sources are read with SourceReader.
	Sources map[string][]byte

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	lines map[string]*Lines
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w), os.Getenv)
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	// Header: "error: message" or "warning: message"
	r.writeHeader(ew, d, p)

	// Source spans
	for _, span := range d.Spans {
		r.writeSpan(ew, span, p)
	}

	// Notes
	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.note, p.reset, note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	sevText := d.Severity.String()
	if d.Code != "" {
		sevText += "[" + d.Code + "]"
	}
	ew.printf("%s%s%s%s:%s %s%s%s\n",
		p.severity(d.Severity), p.bold, sevText, p.reset,
		p.reset,
		p.bold, d.Message, p.reset)
}

func (r *Renderer) writeSpan(ew *errWriter, span Span, p palette) {
	source := r.readSourceLine(span.File, span.Line)

	// Location line: "  --> file:line:col"
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			col := span.Col
			if source != "" {
				col = r.Columns.column(source, span.Col)
			}
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, col)
		}
	}
	ew.printf("  %s-->%s %s\n", p.gutter, p.reset, loc)

	if source == "" {
		// No source available; show the location line with a gutter
		ew.printf("   %s|%s\n", p.gutter, p.reset)
		return
	}

	lineStr := fmt.Sprintf("%d", span.Line)
	pad := strings.Repeat(" ", len(lineStr))

	// Empty gutter line
	ew.printf(" %s%s |%s\n", p.gutter, pad, p.reset)

	// Source line with line number
	// Replace tabs with spaces for consistent alignment
	displaySource := strings.ReplaceAll(source, "\t", "    ")
	ew.printf(" %s%s |%s  %s\n", p.gutter, lineStr, p.reset, displaySource)

	// Underline
	col := span.Col
	endCol := span.EndCol
	if col <= 0 {
		col = 1
	}
	if endCol <= 0 {
		endCol = r.detectEndCol(source, col)
	}
	if endCol < col {
		endCol = col
	}
	underLen := endCol - col + 1
	if endCol <= len(source) {
		underLen = max(displayWidth(source[col-1:endCol]), 1)
	}

	// Account for tab expansion in positioning
	prefix := ""
	if col > 1 && col-1 <= len(source) {
		prefix = source[:col-1]
	}
	displayCol := displayWidth(prefix)

	underPad := strings.Repeat(" ", displayCol)
	underline := strings.Repeat("^", underLen)

	ew.printf(" %s%s |%s  %s%s%s%s", p.gutter, pad, p.reset, underPad, p.marker, underline, p.reset)
	if span.Label != "" {
		ew.printf(" %s%s%s", p.marker, span.Label, p.reset)
	}
	ew.print("\n")

	// Trailing gutter
	ew.printf(" %s%s |%s\n", p.gutter, pad, p.reset)
}

func (r *Renderer) readSourceLine(file string, line int) string {
	if line <= 0 || file == "" {
		return ""
	}
	if l, ok := r.lines[file]; ok {
		return l.Text(line)
	}
	data, ok := r.Sources[file]
	if !ok {
		reader := r.SourceReader
		if reader == nil {
			reader = func(name string) ([]byte, error) {
				return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
			}
		}
		var err error
		data, err = reader(file)
		if err != nil {
			return ""
		}
	}
	if r.lines == nil {
		r.lines = make(map[string]*Lines)
	}
	l := NewLines(data)
	r.lines[file] = l
	return l.Text(line)
}

// detectEndCol scans from col to find the end of the identifier starting
// there.
func (r *Renderer) detectEndCol(source string, col int) int {
	if col <= 0 || col > len(source) {
		return col
	}
	end := col - 1 // 0-based
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if !isIdentPart(ch) {
			break
		}
		end += size
	}
	if end == col-1 {
		return col // single character
	}
	return end // convert back to 1-based end column
}

func isIdentPart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// displayWidth returns the terminal width of s, expanding tabs to 4 spaces.
// East Asian wide characters and most emoji take two cells.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 4
		} else {
			w += runewidth.RuneWidth(ch)
		}
	}
	return w
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
