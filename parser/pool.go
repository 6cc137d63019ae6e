// Copyright © 2024 The ELPS authors

package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"
)

// Pool recycles tree-sitter parsers for one grammar. A tree-sitter parser
// is not safe for concurrent use, but a Pool is.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
type Pool struct {
	lang   *sitter.Language
	pool   sync.Pool
	leased atomic.Int64
}

// NewPool returns a pool of parsers configured for lang.
func NewPool(lang *sitter.Language) *Pool {
	p := &Pool{lang: lang}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(lang)
		return sp
	}
	return p
}

// Get returns a parser configured for the pool's language.
func (p *Pool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	sp.SetLanguage(p.lang)
	p.leased.Add(1)
	return sp
}

// Put resets sp and returns it to the pool. sp must not be used afterwards.
func (p *Pool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

// Leased returns the number of parsers currently checked out.
func (p *Pool) Leased() int { return int(p.leased.Load()) }
