// Copyright © 2024 The ELPS authors

package parser

import (
	"errors"
	"fmt"

	"github.com/luthersystems/jsem/ast"
)

// ErrUnsupported is returned for files whose extension names no known
// grammar.
var ErrUnsupported = errors.New("unsupported source language")

// SyntaxError lists the regions of a source file the grammar could not
// parse. Parse returns it alongside a best-effort program that omits the
// erroneous regions.
type SyntaxError struct {
	Filename string
	// Spans holds the byte ranges of error and missing nodes in source
	// order.
	Spans []ast.Span
}

func (e *SyntaxError) Error() string {
	if len(e.Spans) == 0 {
		return fmt.Sprintf("%s: syntax error", e.Filename)
	}
	msg := fmt.Sprintf("%s[%d]: syntax error", e.Filename, e.Spans[0].Start)
	if n := len(e.Spans) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}
