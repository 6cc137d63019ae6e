// Copyright © 2024 The ELPS authors

// Package lint provides static checks for JavaScript and TypeScript source
// files built on the semantic model.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives an analyzed file and reports diagnostics. The framework
// handles analysis, running analyzers, suppression comments and output.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/semantic"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "no-undef").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// File is the analyzed source file.
	File *driver.File

	// Program and Semantic are shorthands for File.Program and
	// File.Semantic.
	Program  *ast.Program
	Semantic *semantic.Semantic

	lines *diagnostic.Lines
	nodes map[ast.NodeID]ast.Node

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Node returns the node with the given id.
func (p *Pass) Node(id ast.NodeID) ast.Node {
	if p.nodes == nil {
		p.nodes = astutil.Index(p.Program)
	}
	return p.nodes[id]
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	if d.Pos.File == "" {
		d.Pos.File = p.File.Path
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a span.
func (p *Pass) Reportf(span ast.Span, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     p.Position(span),
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	})
}

// Position converts the start of a span to a file position.
func (p *Pass) Position(span ast.Span) Position {
	line, col := p.lines.Position(span.Start)
	return Position{File: p.File.Path, Line: line, Col: col}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Span is the byte range of the problem.
	Span ast.Span `json:"span"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Options configure the analysis of files passed to LintFile. The
	// control-flow graph is always kept.
	Options driver.Options
}

// LintFile analyzes a single source file and returns all diagnostics.
func (l *Linter) LintFile(ctx context.Context, source []byte, filename string) ([]Diagnostic, error) {
	opts := l.Options
	opts.CFG = true
	f, err := driver.AnalyzeFile(ctx, source, filename, opts)
	if err != nil {
		return nil, err
	}
	return l.Lint(f)
}

// Lint runs the analyzers over an analyzed file. Checks that need the
// control-flow graph report nothing when the file was analyzed without
// one.
func (l *Linter) Lint(f *driver.File) ([]Diagnostic, error) {
	lines := diagnostic.NewLines(f.Source)
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			File:     f,
			Program:  f.Program,
			Semantic: f.Semantic,
			lines:    lines,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", f.Path, analyzer.Name, err)
		}
		all = append(all, pass.diagnostics...)
	}

	// Filter suppressed diagnostics (// nolint comments)
	all = filterSuppressed(all, nolintLines(f.Program, lines))

	// Sort by file, then position
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})

	return all, nil
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, nolint map[int]string) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolint[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		// Check if this specific analyzer is suppressed
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// nolintLines maps the line of every nolint comment to its directive: ""
// to suppress every analyzer or a comma separated list of names. A
// comment applies to the line it ends on.
func nolintLines(prog *ast.Program, lines *diagnostic.Lines) map[int]string {
	out := make(map[int]string)
	for _, c := range prog.Comments {
		text := c.Text
		if c.Block {
			text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		} else {
			text = strings.TrimPrefix(text, "//")
		}
		text = strings.TrimSpace(text)
		if !strings.HasPrefix(text, "nolint") {
			continue
		}
		end := c.Span.End
		if end > c.Span.Start {
			end--
		}
		line, _ := lines.Position(end)
		rest := strings.TrimPrefix(text, "nolint")
		switch {
		case rest == "":
			out[line] = ""
		case strings.HasPrefix(rest, ":"):
			names := strings.Fields(strings.TrimPrefix(rest, ":"))
			if len(names) > 0 {
				out[line] = names[0]
			}
		}
	}
	return out
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// ToDiagnostic converts a lint diagnostic for annotated rendering. src is
// the text of the file the diagnostic refers to.
func ToDiagnostic(d Diagnostic, src []byte) diagnostic.Diagnostic {
	sev := diagnostic.SeverityWarning
	switch d.Severity {
	case SeverityError:
		sev = diagnostic.SeverityError
	case SeverityInfo:
		sev = diagnostic.SeverityNote
	}
	out := diagnostic.Diagnostic{
		Severity: sev,
		Code:     d.Analyzer,
		Message:  d.Message,
		Notes:    d.Notes,
	}
	if d.Pos.Line > 0 {
		out.Spans = []diagnostic.Span{
			diagnostic.NewLines(src).SpanAt(d.Pos.File, d.Span.Start, d.Span.End, ""),
		}
	}
	return out
}
