// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
)

// workspaceIndex holds the module-scope declarations of every source file
// under the workspace root, keyed by document URI.
type workspaceIndex struct {
	mu    sync.RWMutex
	files map[string][]protocol.SymbolInformation
}

func newWorkspaceIndex() *workspaceIndex {
	return &workspaceIndex{files: make(map[string][]protocol.SymbolInformation)}
}

func (idx *workspaceIndex) set(uri string, syms []protocol.SymbolInformation) {
	idx.mu.Lock()
	idx.files[uri] = syms
	idx.mu.Unlock()
}

// match returns the indexed symbols matching a lower-cased query, skipping
// the URIs in skip.
func (idx *workspaceIndex) match(query string, skip map[string]bool) []protocol.SymbolInformation {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	uris := make([]string, 0, len(idx.files))
	for uri := range idx.files {
		if !skip[uri] {
			uris = append(uris, uri)
		}
	}
	sort.Strings(uris)
	var out []protocol.SymbolInformation
	for _, uri := range uris {
		for _, si := range idx.files[uri] {
			if matchesQuery(si.Name, query) {
				out = append(out, si)
			}
		}
	}
	return out
}

// fileSymbols lists the module-scope declarations of an analyzed file.
func fileSymbols(uri string, f *driver.File, lines *diagnostic.Lines) []protocol.SymbolInformation {
	sem := f.Semantic
	var out []protocol.SymbolInformation
	for name, sym := range sem.Scopes.Bindings(sem.Scopes.Root()).All() {
		out = append(out, protocol.SymbolInformation{
			Name: name,
			Kind: mapSymbolKind(sem.Symbols.Flags(sym)),
			Location: protocol.Location{
				URI:   uri,
				Range: toRange(lines, sem.Symbols.Span(sym)),
			},
		})
	}
	return out
}

// ensureWorkspaceIndex scans the workspace root once. Files that fail to
// parse still contribute what the parser recovered; unreadable files are
// skipped by the scan.
func (s *Server) ensureWorkspaceIndex() {
	s.indexOnce.Do(func() {
		idx := newWorkspaceIndex()
		defer func() {
			s.indexMu.Lock()
			s.index = idx
			s.indexMu.Unlock()
		}()
		if s.rootPath == "" {
			return
		}
		opts := s.opts
		opts.CFG = false
		files, err := driver.ScanWorkspace(context.Background(), s.rootPath, opts)
		if err != nil {
			s.log.WithError(err).WithField("root", s.rootPath).Warn("workspace scan failed")
			return
		}
		for _, f := range files {
			path := f.Path
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			uri := pathToURI(path)
			idx.set(uri, fileSymbols(uri, f, diagnostic.NewLines(f.Source)))
		}
		s.log.WithField("files", len(files)).Debug("workspace indexed")
	})
}

// workspaceIndexSnapshot returns the index, or nil if no scan finished yet.
func (s *Server) workspaceIndexSnapshot() *workspaceIndex {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	return s.index
}

// invalidateIndexed refreshes the index entry of a saved document.
func (s *Server) invalidateIndexed(uri string) {
	idx := s.workspaceIndexSnapshot()
	doc := s.docs.Get(uri)
	if idx == nil || doc == nil {
		return
	}
	s.ensureAnalysis(doc)
	if f, lines := doc.snapshot(); f != nil {
		idx.set(uri, fileSymbols(uri, f, lines))
	}
}

// workspaceSymbol handles the workspace/symbol request.
// It returns all top-level definitions across the workspace that match the
// query string. An empty query returns all symbols.
func (s *Server) workspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	s.ensureWorkspaceIndex()
	query := strings.ToLower(params.Query)

	// Open documents take precedence over their indexed copy since the
	// user may be editing them.
	open := make(map[string]bool)
	var results []protocol.SymbolInformation
	for _, doc := range s.docs.All() {
		s.ensureAnalysis(doc)
		f, lines := doc.snapshot()
		if f == nil {
			continue
		}
		open[doc.URI] = true
		for _, si := range fileSymbols(doc.URI, f, lines) {
			if matchesQuery(si.Name, query) {
				results = append(results, si)
			}
		}
	}
	if idx := s.workspaceIndexSnapshot(); idx != nil {
		results = append(results, idx.match(query, open)...)
	}
	return results, nil
}

// matchesQuery performs case-insensitive substring matching. An empty query
// matches everything, which is how clients request all symbols.
func matchesQuery(name, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), lowerQuery)
}
