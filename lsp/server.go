// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for JavaScript
// and TypeScript backed by the semantic model. It provides diagnostics,
// hover, go-to-definition, references, highlights, completion, document
// and workspace symbols, folding, semantic tokens and rename support.
package lsp

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/lint"
)

const serverName = "jsem-lsp"

// Server is the JavaScript and TypeScript language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string

	// Analysis options shared by every document and the workspace scan.
	opts driver.Options
	log  logrus.FieldLogger

	// Linter instance shared across diagnostics runs.
	linter *lint.Linter

	// Workspace symbol index, built on first demand.
	indexMu   sync.Mutex
	index     *workspaceIndex
	indexOnce sync.Once

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithOptions sets the analysis options used for documents and the
// workspace scan.
func WithOptions(opts driver.Options) Option {
	return func(s *Server) { s.opts = opts }
}

// WithAnalyzers replaces the default lint analyzers.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(s *Server) { s.linter.Analyzers = analyzers }
}

// WithLogger sets the server logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a new language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		linter:   &lint.Linter{Analyzers: lint.DefaultAnalyzers()},
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.opts.Logger == nil {
		s.opts.Logger = s.log
	}
	s.opts.CFG = true
	s.linter.Options = s.opts

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:              s.textDocumentHover,
		TextDocumentDefinition:         s.textDocumentDefinition,
		TextDocumentCompletion:         s.textDocumentCompletion,
		TextDocumentReferences:         s.textDocumentReferences,
		TextDocumentDocumentHighlight:  s.textDocumentDocumentHighlight,
		TextDocumentDocumentSymbol:     s.textDocumentDocumentSymbol,
		TextDocumentRename:             s.textDocumentRename,
		TextDocumentPrepareRename:      s.textDocumentPrepareRename,
		TextDocumentFoldingRange:       s.textDocumentFoldingRange,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		WorkspaceSymbol:                s.workspaceSymbol,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.log.WithField("root", s.rootPath).Debug("initialize")

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	// Enable prepare rename.
	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: boolPtr(true),
	}

	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: semanticTokenLegend(),
		Full:   true,
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// initialized starts the workspace scan in the background so the first
// workspace/symbol request does not pay for it.
func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	go func() {
		defer func() { _ = recover() }() // don't crash the server on scan panic
		s.ensureWorkspaceIndex()
	}()
	return nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	return nil
}

// exit handles the LSP exit notification by terminating the process.
// We always exit with 0 since shutdown is handled gracefully.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureAnalysis ensures the document has a current analysis result.
func (s *Server) ensureAnalysis(doc *Document) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.file != nil || doc.err != nil {
		return
	}
	doc.analyze(context.Background(), s.opts)
	if doc.err != nil {
		s.log.WithError(doc.err).WithField("uri", doc.URI).Debug("analysis failed")
	}
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
