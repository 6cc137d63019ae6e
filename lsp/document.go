// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"sync"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	// file is the cached analysis. It is nil until the document is
	// analyzed and after every change. err records why analysis failed,
	// for example an unsupported file extension.
	file  *driver.File
	err   error
	lines *diagnostic.Lines
	nodes map[ast.NodeID]ast.Node
}

// analyze parses and analyzes the document content. A syntax error does
// not prevent analysis; the tree holds whatever the parser recovered.
func (d *Document) analyze(ctx context.Context, opts driver.Options) {
	d.lines = diagnostic.NewLines([]byte(d.Content))
	d.nodes = nil
	d.file, d.err = driver.AnalyzeFile(ctx, []byte(d.Content), uriToPath(d.URI), opts)
}

// snapshot returns the analysis of the document. The returned values are
// immutable and may be used without holding the lock.
func (d *Document) snapshot() (*driver.File, *diagnostic.Lines) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.file, d.lines
}

// node returns the node with the given id in the current analysis.
func (d *Document) node(id ast.NodeID) ast.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	if d.nodes == nil {
		d.nodes = astutil.Index(d.file.Program)
	}
	return d.nodes[id]
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store. Analysis is deferred until first use.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and drops its analysis.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	// Clear cached analysis; it will be rebuilt on next request.
	doc.file = nil
	doc.err = nil
	doc.nodes = nil
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns every open document.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out
}
