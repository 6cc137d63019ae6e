// Copyright © 2024 The ELPS authors

package lsp

import (
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/lint"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer func() { _ = recover() }() // don't crash the server on analysis panic
		d := s.docs.Get(doc.URI)
		if d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	// Cancel any pending debounce and publish immediately.
	s.cancelDebounce(params.TextDocument.URI)

	doc := s.docs.Get(params.TextDocument.URI)
	if doc != nil {
		s.analyzeAndPublish(doc)
	}
	s.invalidateIndexed(params.TextDocument.URI)
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish runs analysis and lint on a document and publishes
// the resulting diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)
	f, lines := doc.snapshot()

	diags := []protocol.Diagnostic{}
	if f != nil {
		lintDiags, err := s.linter.Lint(f)
		if err != nil {
			s.log.WithError(err).WithField("uri", doc.URI).Warn("lint failed")
		}
		for _, d := range lintDiags {
			diags = append(diags, convertLintDiagnostic(lines, d))
		}
	}

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(lines *diagnostic.Lines, d lint.Diagnostic) protocol.Diagnostic {
	sev := mapLintSeverity(d.Severity)
	out := protocol.Diagnostic{
		Range:    toRange(lines, d.Span),
		Severity: &sev,
		Source:   strPtr(serverName),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
	if d.Analyzer == lint.AnalyzerUnreachable.Name || (d.Analyzer == lint.AnalyzerUnused.Name) {
		out.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
	}
	return out
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func strPtr(s string) *string {
	return &s
}
