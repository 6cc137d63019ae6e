// Copyright © 2024 The ELPS authors

package semantic

import (
	"math"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/cfg"
)

func (a *analyzer) statements(list []ast.Statement) {
	for _, s := range list {
		a.statement(s, nil)
	}
}

// statement analyzes s. labels are the labels written directly in front of
// s; only loops and switch statements receive them.
func (a *analyzer) statement(s ast.Statement, labels []string) {
	setNode(&a.sem.nodeBlock, s.NodeID(), a.flow.Current(), cfg.NoBlock)
	switch s := s.(type) {
	case *ast.ExpressionStatement:
		a.expr(s.Expression)
	case *ast.VariableDeclaration:
		a.variableDeclaration(s)
	case *ast.Function:
		a.function(s, 0)
	case *ast.Class:
		a.class(s)
	case *ast.BlockStatement:
		a.block(s)
	case *ast.IfStatement:
		a.ifStatement(s)
	case *ast.WhileStatement:
		a.whileStatement(s, labels)
	case *ast.DoWhileStatement:
		a.doWhileStatement(s, labels)
	case *ast.ForStatement:
		a.forStatement(s, labels)
	case *ast.ForInStatement:
		a.forInStatement(s, labels)
	case *ast.SwitchStatement:
		a.switchStatement(s, labels)
	case *ast.WithStatement:
		a.withStatement(s)
	case *ast.LabeledStatement:
		a.labeledStatement(s, labels)
	case *ast.TryStatement:
		a.tryStatement(s)
	case *ast.ReturnStatement:
		a.expr(s.Argument)
		value := cfg.NotImplicitUndefined
		if s.Argument == nil {
			value = cfg.ImplicitUndefined
		}
		a.flow.PutReturn(value, s.ID)
	case *ast.ThrowStatement:
		a.expr(s.Argument)
		r := a.flow.PutAssignment(cfg.NotImplicitUndefined, s.ID)
		a.flow.PutThrow(r, s.ID)
	case *ast.BreakStatement:
		if !a.flow.HasBreakTarget(s.Label) {
			a.jumpError(s.Span, "break", s.Label)
			return
		}
		a.flow.Break(s.Label)
	case *ast.ContinueStatement:
		if !a.flow.HasContinueTarget(s.Label) {
			a.jumpError(s.Span, "continue", s.Label)
			return
		}
		a.flow.Continue(s.Label)
	case *ast.EnumDeclaration:
		a.enum(s)
	case *ast.ModuleDeclaration:
		a.namespace(s)
	case *ast.ImportDeclaration:
		for _, spec := range s.Specifiers {
			flags := SymbolImport
			if s.TypeOnly || spec.TypeOnly {
				flags = SymbolTypeImport
			}
			a.declare(a.scope, spec.Local, flags, spec.ID)
		}
	case *ast.ExportNamedDeclaration:
		if s.Declaration != nil {
			a.statement(s.Declaration, nil)
		}
		if s.Source == "" {
			for _, spec := range s.Specifiers {
				if spec.Local != nil {
					a.exports = append(a.exports, a.reference(spec.Local, ReferenceRead))
				}
			}
		}
	case *ast.ExportDefaultDeclaration:
		switch d := s.Declaration.(type) {
		case ast.Statement:
			a.statement(d, nil)
		case ast.Expression:
			a.expr(d)
		}
	case *ast.TypeAliasDeclaration:
		a.declare(a.scope, s.Name, SymbolTypeAlias|ambient(s.Declare), s.ID)
	case *ast.InterfaceDeclaration:
		a.declare(a.scope, s.Name, SymbolInterface|ambient(s.Declare), s.ID)
	}
}

func (a *analyzer) jumpError(span ast.Span, keyword, label string) {
	if label == "" {
		a.errorf(span, "illegal "+keyword+" statement")
		return
	}
	a.errorf(span, "undefined label '"+label+"'")
}

func (a *analyzer) variableDeclaration(d *ast.VariableDeclaration) {
	scope := a.scope
	if d.Kind == ast.Var {
		scope = a.scopes.NearestVar(a.scope)
	}
	flags := declarationFlags(d.Kind) | ambient(d.Declare)
	for _, decl := range d.Declarations {
		a.binding(decl.Target, scope, flags, decl.ID)
		a.expr(decl.Init)
		value := cfg.NotImplicitUndefined
		if decl.Init == nil {
			value = cfg.ImplicitUndefined
		}
		a.flow.PutAssignment(value, decl.ID)
	}
}

func (a *analyzer) block(b *ast.BlockStatement) {
	a.enterScope(ScopeBlock, b.ID)
	a.hoist(b.Body)
	a.statements(b.Body)
	a.leaveScope()
}

func (a *analyzer) enum(e *ast.EnumDeclaration) {
	flags := SymbolRegularEnum
	if e.Const {
		flags = SymbolConstEnum
	}
	sym := a.declare(a.scope, e.Name, flags|ambient(e.Declare), e.ID)
	scope := a.enterScope(ScopeEnum, e.ID)
	for _, prev := range a.sem.enums {
		if sym != NoSymbol && prev.Symbol == sym {
			if a.merged == nil {
				a.merged = make(map[ScopeID][]ScopeID)
			}
			a.merged[scope] = append(a.merged[scope], prev.Scope)
		}
	}
	for _, m := range e.Members {
		a.declare(scope, m.Name, SymbolEnumMember, m.ID)
	}
	for _, m := range e.Members {
		a.expr(m.Initializer)
	}
	a.leaveScope()
	a.sem.enums = append(a.sem.enums, Enum{Decl: e, Symbol: sym, Scope: scope})
}

func (a *analyzer) namespace(m *ast.ModuleDeclaration) {
	if m.Name != nil {
		a.declare(a.scope, m.Name, SymbolNameSpaceModule|SymbolValueModule|ambient(m.Declare), m.ID)
	}
	a.enterScope(ScopeTsModuleBlock, m.ID)
	a.hoist(m.Body)
	a.statements(m.Body)
	a.leaveScope()
}

// ---- control flow ----

func (a *analyzer) ifStatement(s *ast.IfStatement) {
	f := a.flow
	a.expr(s.Test)
	test := f.Current()

	f.AddEdge(test, f.NewBasicBlock(), cfg.EdgeNormal)
	a.statement(s.Consequent, nil)
	var ends []cfg.BlockID
	if end, live := f.Tail(); live {
		ends = append(ends, end)
	}
	if s.Alternate != nil {
		f.AddEdge(test, f.NewBasicBlock(), cfg.EdgeNormal)
		a.statement(s.Alternate, nil)
		if end, live := f.Tail(); live {
			ends = append(ends, end)
		}
	} else {
		ends = append(ends, test)
	}
	f.Join(ends...)
}

// withStatement gives the object its own block, which flows both into the
// body and past it.
func (a *analyzer) withStatement(s *ast.WithStatement) {
	if a.scopes.Flags(a.scope).IsStrict() {
		a.errorf(s.Span, "'with' statement is not allowed in strict mode")
	}
	f := a.flow
	before := f.Current()
	object := f.NewBasicBlock()
	f.AddEdge(before, object, cfg.EdgeNormal)
	a.expr(s.Object)
	objectEnd := f.Current()

	f.AddEdge(objectEnd, f.NewBasicBlock(), cfg.EdgeNormal)
	a.statement(s.Body, nil)
	ends := []cfg.BlockID{objectEnd}
	if end, live := f.Tail(); live {
		ends = append(ends, end)
	}
	f.Join(ends...)
}

func (a *analyzer) whileStatement(s *ast.WhileStatement, labels []string) {
	f := a.flow
	before := f.Current()
	test := f.NewBasicBlock()
	f.AddEdge(before, test, cfg.EdgeNormal)
	a.expr(s.Test)
	testEnd := f.Current()

	f.BeforeStatement(s.ID, labels, cfg.FrameLoop)
	f.AddEdge(testEnd, f.NewBasicBlock(), cfg.EdgeNormal)
	a.statement(s.Body, nil)
	if end, live := f.Tail(); live {
		f.AddEdge(end, test, cfg.EdgeBackedge)
	}
	after := f.NewBlock()
	if !alwaysTrue(s.Test) {
		f.AddEdge(testEnd, after, cfg.EdgeNormal)
	}
	f.AfterStatement(s.ID, after, test)
	f.Resume(after)
}

func (a *analyzer) doWhileStatement(s *ast.DoWhileStatement, labels []string) {
	f := a.flow
	before := f.Current()
	body := f.NewBasicBlock()
	f.AddEdge(before, body, cfg.EdgeNormal)

	f.BeforeStatement(s.ID, labels, cfg.FrameLoop)
	a.statement(s.Body, nil)
	test := f.NewBlock()
	if end, live := f.Tail(); live {
		f.AddEdge(end, test, cfg.EdgeNormal)
	}
	f.SetCurrent(test)
	a.expr(s.Test)
	testEnd := f.Current()
	f.AddEdge(testEnd, body, cfg.EdgeBackedge)
	after := f.NewBlock()
	if !alwaysTrue(s.Test) {
		f.AddEdge(testEnd, after, cfg.EdgeNormal)
	}
	f.AfterStatement(s.ID, after, test)
	f.Seal(test)
	f.Resume(after)
}

func (a *analyzer) forStatement(s *ast.ForStatement, labels []string) {
	f := a.flow
	a.enterScope(ScopeLoop, s.ID)
	switch init := s.Init.(type) {
	case *ast.VariableDeclaration:
		if init.Kind != ast.Var {
			a.hoistDeclarators(init, a.scope, 0)
		}
		a.variableDeclaration(init)
	case ast.Expression:
		a.expr(init)
	}

	before := f.Current()
	test := f.NewBasicBlock()
	f.AddEdge(before, test, cfg.EdgeNormal)
	a.expr(s.Test)
	testEnd := f.Current()

	f.BeforeStatement(s.ID, labels, cfg.FrameLoop)
	f.AddEdge(testEnd, f.NewBasicBlock(), cfg.EdgeNormal)
	a.statement(s.Body, nil)
	update := f.NewBlock()
	if end, live := f.Tail(); live {
		f.AddEdge(end, update, cfg.EdgeNormal)
	}
	f.SetCurrent(update)
	a.expr(s.Update)
	f.AddEdge(f.Current(), test, cfg.EdgeBackedge)
	after := f.NewBlock()
	if s.Test != nil && !alwaysTrue(s.Test) {
		f.AddEdge(testEnd, after, cfg.EdgeNormal)
	}
	f.AfterStatement(s.ID, after, update)
	f.Seal(update)
	f.Resume(after)
	a.leaveScope()
}

func (a *analyzer) forInStatement(s *ast.ForInStatement, labels []string) {
	f := a.flow
	a.enterScope(ScopeLoop, s.ID)
	decl, isDecl := s.Left.(*ast.VariableDeclaration)
	if isDecl && decl.Kind != ast.Var {
		a.hoistDeclarators(decl, a.scope, 0)
	}
	a.expr(s.Right)

	before := f.Current()
	head := f.NewBasicBlock()
	f.AddEdge(before, head, cfg.EdgeNormal)
	if isDecl {
		scope := a.scope
		if decl.Kind == ast.Var {
			scope = a.scopes.NearestVar(a.scope)
		}
		flags := declarationFlags(decl.Kind) | ambient(decl.Declare)
		for _, d := range decl.Declarations {
			a.binding(d.Target, scope, flags, d.ID)
			a.flow.PutAssignment(cfg.NotImplicitUndefined, d.ID)
		}
	} else if p, ok := s.Left.(ast.Pattern); ok {
		a.target(p, ReferenceWrite)
	}

	f.BeforeStatement(s.ID, labels, cfg.FrameLoop)
	f.AddEdge(head, f.NewBasicBlock(), cfg.EdgeNormal)
	a.statement(s.Body, nil)
	if end, live := f.Tail(); live {
		f.AddEdge(end, head, cfg.EdgeBackedge)
	}
	after := f.NewBlock()
	f.AddEdge(head, after, cfg.EdgeNormal)
	f.AfterStatement(s.ID, after, head)
	f.Resume(after)
	a.leaveScope()
}

func (a *analyzer) switchStatement(s *ast.SwitchStatement, labels []string) {
	f := a.flow
	a.expr(s.Discriminant)
	a.enterScope(ScopeSwitch, s.ID)
	var body []ast.Statement
	for _, c := range s.Cases {
		body = append(body, c.Consequent...)
	}
	a.hoist(body)
	hasDefault := false
	for _, c := range s.Cases {
		if c.Test == nil {
			hasDefault = true
		}
		a.expr(c.Test)
	}
	disc := f.Current()

	f.BeforeStatement(s.ID, labels, cfg.FrameSwitch)
	prev, prevLive := cfg.NoBlock, false
	for _, c := range s.Cases {
		block := f.NewBasicBlock()
		f.AddEdge(disc, block, cfg.EdgeNormal)
		if prevLive {
			f.AddEdge(prev, block, cfg.EdgeNormal)
		}
		a.statements(c.Consequent)
		prev, prevLive = f.Tail()
	}
	after := f.NewBlock()
	if prevLive {
		f.AddEdge(prev, after, cfg.EdgeNormal)
	}
	if !hasDefault {
		f.AddEdge(disc, after, cfg.EdgeNormal)
	}
	f.AfterStatement(s.ID, after, cfg.NoBlock)
	f.Resume(after)
	a.leaveScope()
}

func (a *analyzer) labeledStatement(s *ast.LabeledStatement, labels []string) {
	labels = append(labels[:len(labels):len(labels)], s.Label)
	switch s.Body.(type) {
	case *ast.LabeledStatement, *ast.WhileStatement, *ast.DoWhileStatement,
		*ast.ForStatement, *ast.ForInStatement, *ast.SwitchStatement:
		a.statement(s.Body, labels)
		return
	}
	f := a.flow
	f.BeforeStatement(s.ID, labels, cfg.FrameLabel)
	a.statement(s.Body, nil)
	after := f.NewBlock()
	if end, live := f.Tail(); live {
		f.AddEdge(end, after, cfg.EdgeNormal)
	}
	f.AfterStatement(s.ID, after, cfg.NoBlock)
	f.Resume(after)
}

// tryStatement models an exception as possible anywhere in the protected
// block: the catch and finally blocks are entered from the start of the
// try block as well as from every throw inside it.
func (a *analyzer) tryStatement(s *ast.TryStatement) {
	f := a.flow
	before := f.Current()
	catch := cfg.NoBlock
	if s.Handler != nil {
		catch = f.NewBlock()
		f.PushHandler(catch)
	}
	start := f.NewBasicBlock()
	f.AddEdge(before, start, cfg.EdgeNormal)
	if s.Block != nil {
		setNode(&a.sem.nodeBlock, s.Block.ID, start, cfg.NoBlock)
		a.block(s.Block)
	}
	var ends []cfg.BlockID
	if end, live := f.Tail(); live {
		ends = append(ends, end)
	}

	if s.Handler != nil {
		f.PopHandler()
		f.AddEdge(start, catch, cfg.EdgeNormal)
		f.SetCurrent(catch)
		a.catchClause(s.Handler)
		if end, live := f.Tail(); live {
			ends = append(ends, end)
		}
	}

	if s.Finalizer == nil {
		f.Join(ends...)
		return
	}
	fin := f.NewBlock()
	for _, end := range ends {
		f.AddEdge(end, fin, cfg.EdgeNormal)
	}
	f.AddEdge(start, fin, cfg.EdgeNormal)
	f.SetCurrent(fin)
	setNode(&a.sem.nodeBlock, s.Finalizer.ID, fin, cfg.NoBlock)
	a.block(s.Finalizer)
	if end, live := f.Tail(); live && len(ends) > 0 {
		f.Join(end)
	} else {
		f.Join()
	}
}

func (a *analyzer) catchClause(c *ast.CatchClause) {
	scope := a.enterScope(ScopeCatchClause, c.ID)
	if c.Param != nil {
		a.binding(c.Param, scope, SymbolCatchVariable, c.ID)
	}
	if c.Body != nil {
		setNode(&a.sem.nodeBlock, c.Body.ID, a.flow.Current(), cfg.NoBlock)
		a.hoist(c.Body.Body)
		a.statements(c.Body.Body)
	}
	a.leaveScope()
}

// branch analyzes an expression that runs only on some paths, such as the
// right operand of a logical operator.
func (a *analyzer) branch(e ast.Expression) {
	f := a.flow
	from := f.Current()
	f.AddEdge(from, f.NewBasicBlock(), cfg.EdgeNormal)
	a.expr(e)
	f.Join(from, f.Current())
}

func (a *analyzer) conditional(e *ast.ConditionalExpression) {
	f := a.flow
	a.expr(e.Test)
	from := f.Current()
	f.AddEdge(from, f.NewBasicBlock(), cfg.EdgeNormal)
	a.expr(e.Consequent)
	cons := f.Current()
	f.AddEdge(from, f.NewBasicBlock(), cfg.EdgeNormal)
	a.expr(e.Alternate)
	f.Join(cons, f.Current())
}

// alwaysTrue reports whether a loop test is a literal that never ends the
// loop.
func alwaysTrue(e ast.Expression) bool {
	switch e := ast.Unparen(e).(type) {
	case *ast.BooleanLiteral:
		return e.Value
	case *ast.NumberLiteral:
		return e.Value != 0 && !math.IsNaN(e.Value)
	}
	return false
}
