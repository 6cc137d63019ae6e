// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/semantic"
)

// AnalyzerSyntax reports parse errors and early errors found during
// semantic analysis.
var AnalyzerSyntax = &Analyzer{
	Name:     "syntax",
	Doc:      "Report syntax errors and early errors.\n\nParse errors are reported at every span the parser could not consume. Early errors include break and continue statements outside a loop or switch and jumps to labels that do not exist.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		if pass.File.SyntaxError != nil {
			for _, span := range pass.File.SyntaxError.Spans {
				pass.Reportf(span, "syntax error")
			}
		}
		for _, e := range pass.Semantic.Errors {
			pass.Reportf(e.Span, "%s", e.Msg)
		}
		return nil
	},
}

// AnalyzerUndefined reports references that resolve to no declaration and
// name no known global.
var AnalyzerUndefined = &Analyzer{
	Name:     "no-undef",
	Doc:      "Report references to names that are never declared.\n\nA reference is undefined when no enclosing scope declares its name and the name is not a global of ECMAScript, the browser or Node.js. The operand of `typeof` is exempt since `typeof x` is the portable way to test for a global.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		typeofs := TypeofOperands(pass.Program)
		sem := pass.Semantic
		for _, name := range sem.UnresolvedNames() {
			if IsKnownGlobal(name) {
				continue
			}
			for _, id := range sem.Unresolved[name] {
				ref := sem.Symbols.Reference(id)
				if typeofs[ref.Node] {
					continue
				}
				node := pass.Node(ref.Node)
				if node == nil {
					continue
				}
				pass.Reportf(node.Loc(), "'%s' is not defined", name)
			}
		}
		return nil
	},
}

// AnalyzerUnused reports declarations that are never read.
var AnalyzerUnused = &Analyzer{
	Name:     "no-unused-vars",
	Doc:      "Report variables, functions and imports that are never read.\n\nExported and ambient declarations are exempt, as are catch parameters and names starting with an underscore. Only parameters after the last used one are reported. In TypeScript files, declarations that may be used only in type positions (imports, classes, enums, namespaces and types) are exempt.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		st := pass.Semantic.Symbols
		params := make(map[ast.NodeID]bool) // functions already checked
		for sym := range st.All() {
			if !unusedCandidate(pass, sym) {
				continue
			}
			flags := st.Flags(sym)
			if flags.Has(semantic.SymbolParameter) {
				fn, ok := pass.Node(st.Declaration(sym)).(*ast.Function)
				if ok && !params[fn.ID] {
					params[fn.ID] = true
					reportUnusedParams(pass, fn)
				}
				continue
			}
			if isRead(st, sym) {
				continue
			}
			reportUnused(pass, sym)
		}
		return nil
	},
}

func unusedCandidate(pass *Pass, sym semantic.SymbolID) bool {
	st := pass.Semantic.Symbols
	flags := st.Flags(sym)
	name := st.Name(sym)
	switch {
	case strings.HasPrefix(name, "_"):
		return false
	case flags.Intersects(semantic.SymbolExport | semantic.SymbolAmbient | semantic.SymbolCatchVariable | semantic.SymbolEnumMember):
		return false
	case flags.IsTypeOnly():
		return false
	case pass.Program.TypeScript && flags.Intersects(semantic.SymbolType|semantic.SymbolImport|semantic.SymbolNameSpaceModule):
		return false
	}
	// The name of a function or class expression is bound inside its own
	// scope.
	if flags.Intersects(semantic.SymbolFunction|semantic.SymbolClass) &&
		pass.Semantic.Scopes.Node(st.Scope(sym)) == st.Declaration(sym) {
		return false
	}
	return true
}

func isRead(st *semantic.SymbolTable, sym semantic.SymbolID) bool {
	for _, ref := range st.ResolvedReferences(sym) {
		if ref.IsRead() {
			return true
		}
	}
	return false
}

func reportUnused(pass *Pass, sym semantic.SymbolID) {
	st := pass.Semantic.Symbols
	assigned := st.SymbolIsMutated(sym)
	if d, ok := pass.Node(st.Declaration(sym)).(*ast.VariableDeclarator); ok && d.Init != nil {
		assigned = true
	}
	if assigned {
		pass.Reportf(st.Span(sym), "'%s' is assigned a value but never used", st.Name(sym))
		return
	}
	pass.Reportf(st.Span(sym), "'%s' is defined but never used", st.Name(sym))
}

// reportUnusedParams reports the unused parameters of fn that follow the
// last used one.
func reportUnusedParams(pass *Pass, fn *ast.Function) {
	if !hasBody(fn) {
		return
	}
	sem := pass.Semantic
	names := ParamNames(fn)
	syms := make([]semantic.SymbolID, len(names))
	last := -1
	for i, id := range names {
		sym, ok := sem.SymbolOf(id.ID)
		if !ok {
			syms[i] = semantic.NoSymbol
			continue
		}
		syms[i] = sym
		if isRead(sem.Symbols, sym) {
			last = i
		}
	}
	for i := last + 1; i < len(names); i++ {
		if syms[i] == semantic.NoSymbol || !unusedCandidate(pass, syms[i]) {
			continue
		}
		reportUnused(pass, syms[i])
	}
}

// AnalyzerRedeclare reports names declared more than once in a scope.
var AnalyzerRedeclare = &Analyzer{
	Name:     "no-redeclare",
	Doc:      "Report names declared more than once in the same scope.\n\nDeclarations that TypeScript merges are exempt: interfaces, namespaces, enums, ambient declarations and TypeScript function overloads.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		st := pass.Semantic.Symbols
		for sym := range st.All() {
			redecls := st.Redeclarations(sym)
			if len(redecls) == 0 {
				continue
			}
			flags := st.Flags(sym)
			if flags.Intersects(semantic.SymbolInterface | semantic.SymbolNameSpaceModule | semantic.SymbolEnum | semantic.SymbolAmbient) {
				continue
			}
			if pass.Program.TypeScript && flags.Has(semantic.SymbolFunction) {
				continue
			}
			first := pass.Position(st.Span(sym))
			for _, span := range redecls {
				pass.ReportWithNotes(Diagnostic{
					Pos:     pass.Position(span),
					Span:    span,
					Message: fmt.Sprintf("'%s' is already defined", st.Name(sym)),
				}, fmt.Sprintf("first declared at %d:%d", first.Line, first.Col))
			}
		}
		return nil
	},
}

// AnalyzerConstAssign reports assignments to constants and imports.
var AnalyzerConstAssign = &Analyzer{
	Name:     "no-const-assign",
	Doc:      "Report assignments to const declarations and imports.\n\nAssigning to a const binding or an imported binding throws a TypeError at run time.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		st := pass.Semantic.Symbols
		for sym := range st.All() {
			if !st.Flags(sym).IsConstLike() {
				continue
			}
			for _, ref := range st.ResolvedReferences(sym) {
				if !ref.IsWrite() {
					continue
				}
				if node := pass.Node(ref.Node); node != nil {
					pass.Reportf(node.Loc(), "'%s' is constant", ref.Name)
				}
			}
		}
		return nil
	},
}

// AnalyzerUnreachable reports statements that control flow cannot reach.
var AnalyzerUnreachable = &Analyzer{
	Name:     "no-unreachable",
	Doc:      "Report statements that can never execute.\n\nStatements following a return, throw, break or continue, or an infinite loop without a break, are unreachable. Function declarations and var declarations without an initializer are exempt since they are hoisted. Consecutive unreachable statements are reported once.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		sem := pass.Semantic
		if sem.CFG == nil {
			return nil
		}
		reachable := sem.CFG.Reachable()
		dead := func(s ast.Statement) bool {
			b, ok := sem.BlockOf(s.NodeID())
			return ok && !reachable[b]
		}
		var reported []ast.Span
		covered := func(s ast.Statement) bool {
			for _, span := range reported {
				if span.Contains(s.Loc().Start) {
					return true
				}
			}
			return false
		}
		StatementLists(pass.Program, func(list []ast.Statement) {
			if len(list) == 0 || covered(list[0]) {
				return
			}
			var first, last ast.Statement
			flush := func() {
				if first != nil {
					span := ast.Span{Start: first.Loc().Start, End: last.Loc().End}
					reported = append(reported, span)
					pass.Reportf(span, "unreachable code")
				}
				first, last = nil, nil
			}
			for _, s := range list {
				switch {
				case !dead(s):
					flush()
				case hoisted(s):
				default:
					if first == nil {
						first = s
					}
					last = s
				}
			}
			flush()
		})
		return nil
	},
}

// hoisted reports whether a statement has no effect at its position.
func hoisted(s ast.Statement) bool {
	switch s := s.(type) {
	case *ast.Function, *ast.EmptyStatement, *ast.TypeAliasDeclaration, *ast.InterfaceDeclaration:
		return true
	case *ast.VariableDeclaration:
		if s.Kind != ast.Var {
			return false
		}
		for _, d := range s.Declarations {
			if d.Init != nil {
				return false
			}
		}
		return true
	}
	return false
}

// DefaultAnalyzers returns the standard set of analyzers.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerSyntax,
		AnalyzerUndefined,
		AnalyzerUnused,
		AnalyzerRedeclare,
		AnalyzerConstAssign,
		AnalyzerUnreachable,
	}
}

// SelectAnalyzers returns the default analyzers named in names, in default
// order. An empty list selects every analyzer.
func SelectAnalyzers(names []string) ([]*Analyzer, error) {
	all := DefaultAnalyzers()
	if len(names) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []*Analyzer
	for _, a := range all {
		if want[a.Name] {
			out = append(out, a)
			delete(want, a.Name)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown analyzer: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// AnalyzerNames returns the names of all default analyzers.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
