// Copyright © 2024 The ELPS authors

package semantic

import (
	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/cfg"
)

// analyzer is the internal state for a single analysis run.
type analyzer struct {
	sem     *Semantic
	config  *Config
	scopes  *ScopeTree
	symbols *SymbolTable
	// flow is always built; it also tracks the jump targets used to
	// validate break and continue. It is discarded unless Config.CFG is set.
	flow *cfg.Builder

	scope   ScopeID
	pending [][]ReferenceID // per scope: references awaiting scope exit
	exports []ReferenceID   // local references of export specifiers
	// merged maps an enum body to the bodies of earlier declarations of
	// the same enum, whose members it can name unqualified.
	merged map[ScopeID][]ScopeID
}

func newAnalyzer(prog *ast.Program, config *Config) *analyzer {
	sem := newSemantic(prog)
	return &analyzer{
		sem:     sem,
		config:  config,
		scopes:  sem.Scopes,
		symbols: sem.Symbols,
		flow:    cfg.NewBuilder(prog.ID),
		scope:   NoScope,
	}
}

func (a *analyzer) finish() *Semantic {
	for _, ref := range a.exports {
		if r := a.symbols.Reference(ref); r.IsResolved() {
			a.symbols.UnionFlag(r.Symbol, SymbolExport)
		}
	}
	graph := a.flow.Build()
	if a.config.CFG {
		a.sem.CFG = graph
	} else {
		a.sem.nodeBlock = nil
	}
	return a.sem
}

func (a *analyzer) errorf(span ast.Span, msg string) {
	a.sem.Errors = append(a.sem.Errors, &Error{Filename: a.config.Filename, Span: span, Msg: msg})
}

// ---- scopes ----

func (a *analyzer) enterScope(flags ScopeFlags, node ast.NodeID) ScopeID {
	id := a.scopes.PushScope(a.scope, flags, node)
	a.pending = append(a.pending, nil)
	setNode(&a.sem.nodeScope, node, id, NoScope)
	a.scope = id
	return id
}

// leaveScope retries the references left pending in the current scope
// against its now complete bindings. Those that still fail move to the
// parent, or to the unresolved set at the root.
func (a *analyzer) leaveScope() {
	id := a.scope
	parent := a.scopes.Parent(id)
	for _, ref := range a.pending[id] {
		name := a.sem.ReferenceName(ref)
		if sym, ok := a.scopeBinding(id, name); ok {
			a.symbols.AddResolvedReference(sym, ref)
			continue
		}
		if parent == NoScope {
			a.sem.Unresolved[name] = append(a.sem.Unresolved[name], ref)
			continue
		}
		a.pending[parent] = append(a.pending[parent], ref)
	}
	a.pending[id] = nil
	a.scope = parent
}

// valueBinding looks name up in one scope, ignoring bindings that only
// exist in the type space.
func (a *analyzer) valueBinding(scope ScopeID, name string) (SymbolID, bool) {
	sym, ok := a.scopes.Binding(scope, name)
	if !ok || a.symbols.Flags(sym).IsTypeOnly() {
		return NoSymbol, false
	}
	return sym, true
}

// scopeBinding is valueBinding extended, for an enum body, to the members of
// earlier declarations of the same enum.
func (a *analyzer) scopeBinding(scope ScopeID, name string) (SymbolID, bool) {
	if sym, ok := a.valueBinding(scope, name); ok {
		return sym, true
	}
	for _, prev := range a.merged[scope] {
		if sym, ok := a.valueBinding(prev, name); ok {
			return sym, true
		}
	}
	return NoSymbol, false
}

func (a *analyzer) lookup(name string) (SymbolID, bool) {
	for s := range a.scopes.Ancestors(a.scope) {
		if sym, ok := a.scopeBinding(s, name); ok {
			return sym, true
		}
	}
	return NoSymbol, false
}

// ---- symbols and references ----

// declare binds id in scope. A binding node is declared once; a second
// declaration of the same name in the same scope merges into the existing
// symbol.
func (a *analyzer) declare(scope ScopeID, id *ast.BindingIdentifier, flags SymbolFlags, decl ast.NodeID) SymbolID {
	if id == nil {
		return NoSymbol
	}
	if sym, ok := a.sem.SymbolOf(id.ID); ok {
		return sym
	}
	sym, ok := a.scopes.Binding(scope, id.Name)
	if ok {
		a.symbols.UnionFlag(sym, flags)
		a.symbols.AddRedeclaration(sym, id.Span)
	} else {
		sym = a.symbols.CreateSymbol(id.Span, id.Name, flags, scope, decl)
		a.scopes.AddBinding(scope, id.Name, sym)
	}
	setNode(&a.sem.nodeSymbol, id.ID, sym, NoSymbol)
	return sym
}

func (a *analyzer) reference(id *ast.Identifier, flags ReferenceFlags) ReferenceID {
	ref := a.symbols.CreateReference(Reference{Node: id.ID, Symbol: NoSymbol, Flags: flags, Name: id.Name})
	setNode(&a.sem.nodeReference, id.ID, ref, NoReference)
	if sym, ok := a.lookup(id.Name); ok {
		a.symbols.AddResolvedReference(sym, ref)
	} else {
		a.pending[a.scope] = append(a.pending[a.scope], ref)
	}
	return ref
}

// binding declares every name of a declaration pattern and visits the
// expressions embedded in it.
func (a *analyzer) binding(p ast.Pattern, scope ScopeID, flags SymbolFlags, decl ast.NodeID) {
	switch p := p.(type) {
	case *ast.BindingIdentifier:
		a.declare(scope, p, flags, decl)
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			if prop.Computed {
				a.expr(prop.Key)
			}
			a.binding(prop.Value, scope, flags, decl)
		}
		if p.Rest != nil {
			a.binding(p.Rest, scope, flags, decl)
		}
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				a.binding(el, scope, flags, decl)
			}
		}
		if p.Rest != nil {
			a.binding(p.Rest, scope, flags, decl)
		}
	case *ast.AssignmentPattern:
		a.binding(p.Left, scope, flags, decl)
		a.expr(p.Right)
	}
}

// target records the references of an assignment target. flags apply to a
// plain identifier target; names inside a destructuring pattern are always
// written.
func (a *analyzer) target(p ast.Pattern, flags ReferenceFlags) {
	switch p := p.(type) {
	case *ast.Identifier:
		a.reference(p, flags)
	case *ast.MemberExpression:
		a.expr(p)
	case *ast.ObjectPattern:
		for _, prop := range p.Properties {
			if prop.Computed {
				a.expr(prop.Key)
			}
			a.target(prop.Value, ReferenceWrite)
		}
		if p.Rest != nil {
			a.target(p.Rest, ReferenceWrite)
		}
	case *ast.ArrayPattern:
		for _, el := range p.Elements {
			if el != nil {
				a.target(el, ReferenceWrite)
			}
		}
		if p.Rest != nil {
			a.target(p.Rest, ReferenceWrite)
		}
	case *ast.AssignmentPattern:
		a.target(p.Left, ReferenceWrite)
		a.expr(p.Right)
	}
}

// ---- program, functions, classes ----

func (a *analyzer) program(prog *ast.Program) {
	flags := ScopeTop
	if prog.Module || hasUseStrict(prog.Body) {
		flags |= ScopeStrictMode
	}
	a.enterScope(flags, prog.ID)
	a.hoist(prog.Body)
	a.statements(prog.Body)
	a.leaveScope()
}

// function analyzes a function of any kind. extra adds the accessor or
// constructor flags of class members.
func (a *analyzer) function(fn *ast.Function, extra ScopeFlags) {
	if fn.Type == ast.FunctionDeclaration && fn.Name != nil {
		a.declare(a.scope, fn.Name, SymbolFunction|ambient(fn.Declare), fn.ID)
	}
	a.flow.EnterFunction(fn.ID)
	flags := ScopeFunction | extra
	if fn.Type == ast.ArrowFunction {
		flags |= ScopeArrow
	}
	if fn.Body != nil && hasUseStrict(fn.Body.Body) {
		flags |= ScopeStrictMode
	}
	scope := a.enterScope(flags, fn.ID)
	if fn.Type == ast.FunctionExpression && fn.Name != nil {
		a.declare(scope, fn.Name, SymbolFunction, fn.ID)
	}
	params := SymbolFunctionScopedVariable | SymbolParameter
	for _, p := range fn.Params {
		a.binding(p, scope, params, fn.ID)
	}
	if fn.Rest != nil {
		a.binding(fn.Rest, scope, params, fn.ID)
	}
	switch {
	case fn.Body != nil:
		a.hoist(fn.Body.Body)
		a.statements(fn.Body.Body)
	case fn.ExprBody != nil:
		a.expr(fn.ExprBody)
		a.flow.PutReturn(cfg.NotImplicitUndefined, fn.ExprBody.NodeID())
	}
	a.leaveScope()
	a.flow.LeaveFunction()
}

func (a *analyzer) class(c *ast.Class) {
	if c.Type == ast.ClassDeclaration && c.Name != nil {
		a.declare(a.scope, c.Name, SymbolClass|ambient(c.Declare), c.ID)
	}
	scope := a.enterScope(ScopeClass|ScopeStrictMode, c.ID)
	if c.Type == ast.ClassExpression && c.Name != nil {
		a.declare(scope, c.Name, SymbolClass, c.ID)
	}
	a.expr(c.SuperClass)
	for _, m := range c.Body {
		switch m := m.(type) {
		case *ast.MethodDefinition:
			if m.Computed {
				a.expr(m.Key)
			}
			if m.Value != nil {
				a.function(m.Value, methodScopeFlags(m.Kind))
			}
		case *ast.PropertyDefinition:
			if m.Computed {
				a.expr(m.Key)
			}
			a.expr(m.Value)
		case *ast.StaticBlock:
			a.flow.EnterFunction(m.ID)
			a.enterScope(ScopeClassStaticBlock, m.ID)
			a.hoist(m.Body)
			a.statements(m.Body)
			a.leaveScope()
			a.flow.LeaveFunction()
		}
	}
	a.leaveScope()
}

func methodScopeFlags(kind ast.MethodKind) ScopeFlags {
	switch kind {
	case ast.MethodConstructor:
		return ScopeConstructor
	case ast.MethodGet:
		return ScopeGetAccessor
	case ast.MethodSet:
		return ScopeSetAccessor
	}
	return 0
}

// ---- expressions ----

func (a *analyzer) expr(e ast.Expression) {
	switch e := e.(type) {
	case nil:
	case *ast.Identifier:
		a.reference(e, ReferenceRead)
	case *ast.Function:
		a.function(e, 0)
	case *ast.Class:
		a.class(e)
	case *ast.AssignmentExpression:
		flags := ReferenceWrite
		if e.Operator.IsCompound() {
			flags = ReferenceReadWrite
		}
		a.target(e.Left, flags)
		if e.Operator.IsLogical() {
			a.branch(e.Right)
		} else {
			a.expr(e.Right)
		}
	case *ast.UpdateExpression:
		switch arg := ast.Unparen(e.Argument).(type) {
		case *ast.Identifier:
			a.reference(arg, ReferenceReadWrite)
		default:
			a.expr(arg)
		}
	case *ast.LogicalExpression:
		a.expr(e.Left)
		a.branch(e.Right)
	case *ast.ConditionalExpression:
		a.conditional(e)
	default:
		ast.EachChild(e, a.child)
	}
}

func (a *analyzer) child(n ast.Node) {
	switch n := n.(type) {
	case *ast.Property:
		a.property(n)
	case ast.Expression:
		a.expr(n)
	}
}

func (a *analyzer) property(p *ast.Property) {
	if p.Computed {
		a.expr(p.Key)
	}
	if fn, ok := p.Value.(*ast.Function); ok && fn.Type == ast.MethodFunction {
		a.function(fn, methodScopeFlags(p.Kind))
		return
	}
	a.expr(p.Value)
}
