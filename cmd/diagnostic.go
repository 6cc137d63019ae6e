// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/lint"
)

// newRenderer returns a renderer honoring the color and columns settings.
// The sources of files are served from memory so stdin input can be
// annotated too.
func (c *cmdConfig) newRenderer(files []*driver.File) (*diagnostic.Renderer, error) {
	mode, err := diagnostic.ParseColorMode(c.v.GetString("color"))
	if err != nil {
		return nil, err
	}
	unit, err := diagnostic.ParseColumnUnit(c.v.GetString("columns"))
	if err != nil {
		return nil, err
	}
	r := &diagnostic.Renderer{Color: mode, Columns: unit, Sources: make(map[string][]byte, len(files))}
	for _, f := range files {
		r.Sources[f.Path] = f.Source
	}
	return r, nil
}

// lintDiagToDiagnostic converts a lint.Diagnostic for annotated rendering.
func lintDiagToDiagnostic(ld lint.Diagnostic, src []byte) diagnostic.Diagnostic {
	d := lint.ToDiagnostic(ld, src)
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" at the end of this line")
	return d
}

// fileErrors returns the syntax errors and early errors of f.
func fileErrors(f *driver.File) []diagnostic.Diagnostic {
	lines := diagnostic.NewLines(f.Source)
	var out []diagnostic.Diagnostic
	if f.SyntaxError != nil {
		for _, span := range f.SyntaxError.Spans {
			out = append(out, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Code:     "syntax",
				Message:  "syntax error",
				Spans:    []diagnostic.Span{lines.SpanAt(f.Path, span.Start, span.End, "")},
			})
		}
	}
	if f.Semantic != nil {
		for _, e := range f.Semantic.Errors {
			out = append(out, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Message:  e.Msg,
				Spans:    []diagnostic.Span{lines.SpanAt(f.Path, e.Span.Start, e.Span.End, "")},
			})
		}
	}
	return out
}
