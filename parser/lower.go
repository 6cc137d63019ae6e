// Copyright © 2024 The ELPS authors

package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/luthersystems/jsem/ast"
)

// lowerer converts a tree-sitter syntax tree into an ast.Program. Node
// kinds it does not model, such as type annotations and decorators, are
// dropped; error nodes are skipped.
type lowerer struct {
	src  []byte
	next ast.NodeID
	errs []ast.Span
}

func span(n *sitter.Node) ast.Span {
	return ast.Span{Start: n.StartByte(), End: n.EndByte()}
}

func (l *lowerer) base(n *sitter.Node) ast.Base {
	id := l.next
	l.next++
	return ast.Base{ID: id, Span: span(n)}
}

func (l *lowerer) text(n *sitter.Node) string { return n.Content(l.src) }

// children returns the named children of n other than comments.
func children(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// firstChild returns the first named non-comment child of n.
func firstChild(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() != "comment" {
			return c
		}
	}
	return nil
}

// hasToken reports whether n has an anonymous child spelled tok.
func hasToken(n *sitter.Node, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == tok {
			return true
		}
	}
	return false
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func (l *lowerer) program(n *sitter.Node) *ast.Program {
	prog := &ast.Program{Base: l.base(n)}
	prog.Body = l.statements(children(n))
	for _, s := range prog.Body {
		switch s.(type) {
		case *ast.ImportDeclaration, *ast.ExportNamedDeclaration,
			*ast.ExportDefaultDeclaration, *ast.ExportAllDeclaration:
			prog.Module = true
		}
	}
	return prog
}

func (l *lowerer) statements(nodes []*sitter.Node) []ast.Statement {
	var body []ast.Statement
	for _, c := range nodes {
		if s := l.statement(c); s != nil {
			body = append(body, s)
		}
	}
	return body
}

func (l *lowerer) block(n *sitter.Node) *ast.BlockStatement {
	b := &ast.BlockStatement{Base: l.base(n)}
	b.Body = l.statements(children(n))
	return b
}

// statement lowers one statement. It returns nil for nodes with no
// runtime meaning and for error nodes.
func (l *lowerer) statement(n *sitter.Node) ast.Statement {
	switch n.Type() {
	case "expression_statement":
		inner := firstChild(n)
		if inner == nil {
			return nil
		}
		if inner.Type() == "internal_module" {
			return l.module(inner, false)
		}
		return &ast.ExpressionStatement{Base: l.base(n), Expression: l.expr(inner)}
	case "variable_declaration", "lexical_declaration":
		return l.variableDeclaration(n)
	case "function_declaration", "generator_function_declaration":
		return l.function(n, ast.FunctionDeclaration)
	case "function_signature":
		fn := l.function(n, ast.FunctionDeclaration)
		fn.Declare = true
		return fn
	case "class_declaration", "abstract_class_declaration":
		return l.class(n, ast.ClassDeclaration)
	case "statement_block":
		return l.block(n)
	case "empty_statement":
		return &ast.EmptyStatement{Base: l.base(n)}
	case "debugger_statement":
		return &ast.DebuggerStatement{Base: l.base(n)}
	case "if_statement":
		s := &ast.IfStatement{Base: l.base(n)}
		s.Test = l.condition(n.ChildByFieldName("condition"))
		s.Consequent = l.body(n.ChildByFieldName("consequence"))
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				alt = firstChild(alt)
			}
			if alt != nil {
				s.Alternate = l.statement(alt)
			}
		}
		return s
	case "while_statement":
		s := &ast.WhileStatement{Base: l.base(n)}
		s.Test = l.condition(n.ChildByFieldName("condition"))
		s.Body = l.body(n.ChildByFieldName("body"))
		return s
	case "do_statement":
		s := &ast.DoWhileStatement{Base: l.base(n)}
		s.Body = l.body(n.ChildByFieldName("body"))
		s.Test = l.condition(n.ChildByFieldName("condition"))
		return s
	case "with_statement":
		s := &ast.WithStatement{Base: l.base(n)}
		s.Object = l.condition(n.ChildByFieldName("object"))
		s.Body = l.body(n.ChildByFieldName("body"))
		return s
	case "for_statement":
		return l.forStatement(n)
	case "for_in_statement":
		return l.forInStatement(n)
	case "return_statement":
		s := &ast.ReturnStatement{Base: l.base(n)}
		if arg := firstChild(n); arg != nil {
			s.Argument = l.expr(arg)
		}
		return s
	case "throw_statement":
		s := &ast.ThrowStatement{Base: l.base(n)}
		if arg := firstChild(n); arg != nil {
			s.Argument = l.expr(arg)
		}
		return s
	case "break_statement":
		return &ast.BreakStatement{Base: l.base(n), Label: l.label(n)}
	case "continue_statement":
		return &ast.ContinueStatement{Base: l.base(n), Label: l.label(n)}
	case "labeled_statement":
		s := &ast.LabeledStatement{Base: l.base(n), Label: l.label(n)}
		body := n.ChildByFieldName("body")
		if body == nil {
			if cs := children(n); len(cs) > 0 {
				body = cs[len(cs)-1]
			}
		}
		s.Body = l.body(body)
		return s
	case "try_statement":
		return l.tryStatement(n)
	case "switch_statement":
		return l.switchStatement(n)
	case "import_statement":
		return l.importDeclaration(n)
	case "export_statement":
		return l.exportDeclaration(n)
	case "enum_declaration":
		return l.enum(n)
	case "type_alias_declaration":
		return &ast.TypeAliasDeclaration{Base: l.base(n), Name: l.binding(n.ChildByFieldName("name"))}
	case "interface_declaration":
		return &ast.InterfaceDeclaration{Base: l.base(n), Name: l.binding(n.ChildByFieldName("name"))}
	case "module", "internal_module":
		return l.module(n, false)
	case "ambient_declaration":
		return l.ambient(n)
	case "import_alias":
		// import A = B.C
		spec := &ast.ImportSpecifier{Base: l.base(n), Kind: ast.ImportDefault}
		if id := firstChild(n); id != nil {
			spec.Local = l.binding(id)
		}
		return &ast.ImportDeclaration{Base: l.base(n), Specifiers: []*ast.ImportSpecifier{spec}}
	}
	return nil
}

// body lowers a statement in a position that requires one.
func (l *lowerer) body(n *sitter.Node) ast.Statement {
	if n != nil {
		if s := l.statement(n); s != nil {
			return s
		}
		return &ast.EmptyStatement{Base: l.base(n)}
	}
	return &ast.EmptyStatement{Base: ast.Base{ID: l.take()}}
}

func (l *lowerer) take() ast.NodeID {
	id := l.next
	l.next++
	return id
}

// condition lowers the parenthesized test of a control statement.
func (l *lowerer) condition(n *sitter.Node) ast.Expression {
	if n == nil {
		return nil
	}
	if n.Type() == "parenthesized_expression" {
		if inner := firstChild(n); inner != nil {
			return l.expr(inner)
		}
		return nil
	}
	return l.expr(n)
}

func (l *lowerer) label(n *sitter.Node) string {
	if lb := n.ChildByFieldName("label"); lb != nil {
		return l.text(lb)
	}
	if lb := childOfType(n, "statement_identifier"); lb != nil {
		return l.text(lb)
	}
	return ""
}

func (l *lowerer) variableDeclaration(n *sitter.Node) *ast.VariableDeclaration {
	d := &ast.VariableDeclaration{Base: l.base(n), Kind: ast.Var}
	if n.Type() == "lexical_declaration" {
		kind := ""
		if k := n.ChildByFieldName("kind"); k != nil {
			kind = l.text(k)
		} else if c := n.Child(0); c != nil {
			kind = c.Type()
		}
		switch kind {
		case "let":
			d.Kind = ast.Let
		case "using", "await":
			d.Kind = ast.Using
		default:
			d.Kind = ast.Const
		}
	}
	for _, c := range children(n) {
		if c.Type() != "variable_declarator" {
			continue
		}
		decl := &ast.VariableDeclarator{Base: l.base(c)}
		decl.Target = l.pattern(c.ChildByFieldName("name"), true)
		if v := c.ChildByFieldName("value"); v != nil {
			decl.Init = l.expr(v)
		}
		d.Declarations = append(d.Declarations, decl)
	}
	return d
}

func (l *lowerer) forStatement(n *sitter.Node) *ast.ForStatement {
	s := &ast.ForStatement{Base: l.base(n)}
	if init := n.ChildByFieldName("initializer"); init != nil {
		switch init.Type() {
		case "lexical_declaration", "variable_declaration":
			s.Init = l.variableDeclaration(init)
		case "expression_statement":
			if e := firstChild(init); e != nil {
				s.Init = l.expr(e)
			}
		case "empty_statement", ";":
		default:
			s.Init = l.expr(init)
		}
	}
	if test := n.ChildByFieldName("condition"); test != nil {
		switch test.Type() {
		case "expression_statement":
			if e := firstChild(test); e != nil {
				s.Test = l.expr(e)
			}
		case "empty_statement", ";":
		default:
			s.Test = l.expr(test)
		}
	}
	if update := n.ChildByFieldName("increment"); update != nil {
		s.Update = l.expr(update)
	}
	s.Body = l.body(n.ChildByFieldName("body"))
	return s
}

func (l *lowerer) forInStatement(n *sitter.Node) *ast.ForInStatement {
	s := &ast.ForInStatement{Base: l.base(n)}
	if op := n.ChildByFieldName("operator"); op != nil {
		s.Of = l.text(op) == "of"
	} else {
		s.Of = hasToken(n, "of")
	}
	s.Await = hasToken(n, "await")
	left := n.ChildByFieldName("left")
	if kind := n.ChildByFieldName("kind"); kind != nil && left != nil {
		d := &ast.VariableDeclaration{Base: ast.Base{ID: l.take(), Span: ast.Span{Start: kind.StartByte(), End: left.EndByte()}}}
		switch l.text(kind) {
		case "var":
			d.Kind = ast.Var
		case "let":
			d.Kind = ast.Let
		default:
			d.Kind = ast.Const
		}
		decl := &ast.VariableDeclarator{Base: l.base(left), Target: l.pattern(left, true)}
		d.Declarations = []*ast.VariableDeclarator{decl}
		s.Left = d
	} else if left != nil {
		s.Left = l.pattern(left, false)
	}
	if right := n.ChildByFieldName("right"); right != nil {
		s.Right = l.expr(right)
	}
	s.Body = l.body(n.ChildByFieldName("body"))
	return s
}

func (l *lowerer) tryStatement(n *sitter.Node) *ast.TryStatement {
	s := &ast.TryStatement{Base: l.base(n)}
	if b := n.ChildByFieldName("body"); b != nil {
		s.Block = l.block(b)
	}
	if h := n.ChildByFieldName("handler"); h != nil {
		c := &ast.CatchClause{Base: l.base(h)}
		if p := h.ChildByFieldName("parameter"); p != nil {
			c.Param = l.pattern(p, true)
		}
		if b := h.ChildByFieldName("body"); b != nil {
			c.Body = l.block(b)
		}
		s.Handler = c
	}
	if f := n.ChildByFieldName("finalizer"); f != nil {
		if b := f.ChildByFieldName("body"); b != nil {
			s.Finalizer = l.block(b)
		} else if b := childOfType(f, "statement_block"); b != nil {
			s.Finalizer = l.block(b)
		}
	}
	return s
}

func (l *lowerer) switchStatement(n *sitter.Node) *ast.SwitchStatement {
	s := &ast.SwitchStatement{Base: l.base(n)}
	s.Discriminant = l.condition(n.ChildByFieldName("value"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return s
	}
	for _, c := range children(body) {
		if c.Type() != "switch_case" && c.Type() != "switch_default" {
			continue
		}
		sc := &ast.SwitchCase{Base: l.base(c)}
		test := c.ChildByFieldName("value")
		if test != nil {
			sc.Test = l.expr(test)
		}
		for _, st := range children(c) {
			if test != nil && st.StartByte() == test.StartByte() && st.EndByte() == test.EndByte() {
				continue
			}
			if x := l.statement(st); x != nil {
				sc.Consequent = append(sc.Consequent, x)
			}
		}
		s.Cases = append(s.Cases, sc)
	}
	return s
}

func (l *lowerer) importDeclaration(n *sitter.Node) *ast.ImportDeclaration {
	d := &ast.ImportDeclaration{Base: l.base(n), TypeOnly: hasToken(n, "type")}
	if src := n.ChildByFieldName("source"); src != nil {
		d.Source = l.stringValue(src)
	}
	if req := childOfType(n, "import_require_clause"); req != nil {
		// import x = require("m")
		if id := childOfType(req, "identifier"); id != nil {
			d.Specifiers = append(d.Specifiers, &ast.ImportSpecifier{
				Base: l.base(id), Kind: ast.ImportDefault, Local: l.binding(id),
			})
		}
		if src := req.ChildByFieldName("source"); src != nil {
			d.Source = l.stringValue(src)
		} else if src := childOfType(req, "string"); src != nil {
			d.Source = l.stringValue(src)
		}
		return d
	}
	clause := childOfType(n, "import_clause")
	if clause == nil {
		return d
	}
	for _, c := range children(clause) {
		switch c.Type() {
		case "identifier":
			d.Specifiers = append(d.Specifiers, &ast.ImportSpecifier{
				Base: l.base(c), Kind: ast.ImportDefault, Local: l.binding(c),
			})
		case "namespace_import":
			if id := childOfType(c, "identifier"); id != nil {
				d.Specifiers = append(d.Specifiers, &ast.ImportSpecifier{
					Base: l.base(c), Kind: ast.ImportNamespace, Local: l.binding(id),
				})
			}
		case "named_imports":
			for _, sp := range children(c) {
				if sp.Type() != "import_specifier" {
					continue
				}
				name := sp.ChildByFieldName("name")
				local := sp.ChildByFieldName("alias")
				if local == nil {
					local = name
				}
				if name == nil {
					continue
				}
				d.Specifiers = append(d.Specifiers, &ast.ImportSpecifier{
					Base:     l.base(sp),
					Kind:     ast.ImportNamed,
					Imported: l.moduleExportName(name),
					Local:    l.binding(local),
					TypeOnly: hasToken(sp, "type"),
				})
			}
		}
	}
	return d
}

func (l *lowerer) moduleExportName(n *sitter.Node) string {
	if n.Type() == "string" {
		return l.stringValue(n)
	}
	return l.text(n)
}

func (l *lowerer) exportDeclaration(n *sitter.Node) ast.Statement {
	isDefault := hasToken(n, "default") || hasToken(n, "=")
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		s := l.statement(decl)
		if s == nil {
			return nil
		}
		if isDefault {
			return &ast.ExportDefaultDeclaration{Base: l.base(n), Declaration: s}
		}
		return &ast.ExportNamedDeclaration{Base: l.base(n), Declaration: s, TypeOnly: hasToken(n, "type")}
	}
	if v := n.ChildByFieldName("value"); v != nil {
		return &ast.ExportDefaultDeclaration{Base: l.base(n), Declaration: l.expr(v)}
	}
	source := ""
	if src := n.ChildByFieldName("source"); src != nil {
		source = l.stringValue(src)
	}
	if clause := childOfType(n, "export_clause"); clause != nil {
		d := &ast.ExportNamedDeclaration{Base: l.base(n), Source: source, TypeOnly: hasToken(n, "type")}
		for _, sp := range children(clause) {
			if sp.Type() != "export_specifier" {
				continue
			}
			name := sp.ChildByFieldName("name")
			if name == nil {
				continue
			}
			spec := &ast.ExportSpecifier{Base: l.base(sp), Exported: l.moduleExportName(name)}
			if alias := sp.ChildByFieldName("alias"); alias != nil {
				spec.Exported = l.moduleExportName(alias)
			}
			if name.Type() != "string" {
				spec.Local = &ast.Identifier{Base: l.base(name), Name: l.text(name)}
			}
			d.Specifiers = append(d.Specifiers, spec)
		}
		return d
	}
	if hasToken(n, "*") {
		d := &ast.ExportAllDeclaration{Base: l.base(n), Source: source}
		if ns := childOfType(n, "namespace_export"); ns != nil {
			if name := firstChild(ns); name != nil {
				d.Exported = l.moduleExportName(name)
			}
		}
		return d
	}
	// export as namespace X and other declaration-only forms.
	return nil
}

func (l *lowerer) enum(n *sitter.Node) *ast.EnumDeclaration {
	e := &ast.EnumDeclaration{Base: l.base(n), Const: hasToken(n, "const")}
	e.Name = l.binding(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return e
	}
	for _, c := range children(body) {
		m := &ast.EnumMember{Base: l.base(c)}
		name := c
		if c.Type() == "enum_assignment" {
			name = c.ChildByFieldName("name")
			if v := c.ChildByFieldName("value"); v != nil {
				m.Initializer = l.expr(v)
			}
		}
		if name == nil {
			continue
		}
		m.Name = &ast.BindingIdentifier{Base: l.base(name), Name: l.propertyName(name)}
		e.Members = append(e.Members, m)
	}
	return e
}

// propertyName returns the name a property key spells.
func (l *lowerer) propertyName(n *sitter.Node) string {
	if n.Type() == "string" {
		return l.stringValue(n)
	}
	return l.text(n)
}

// module lowers namespace and module declarations. A dotted name
// `namespace A.B {}` nests one declaration per component.
func (l *lowerer) module(n *sitter.Node, declare bool) *ast.ModuleDeclaration {
	m := &ast.ModuleDeclaration{Base: l.base(n), Declare: declare}
	var names []*sitter.Node
	if name := n.ChildByFieldName("name"); name != nil {
		switch name.Type() {
		case "string":
			m.Source = l.stringValue(name)
		case "nested_identifier":
			names = identifiers(name)
		default:
			names = []*sitter.Node{name}
		}
	}
	var body []ast.Statement
	if b := n.ChildByFieldName("body"); b != nil {
		body = l.statements(children(b))
	}
	if len(names) == 0 {
		m.Body = body
		return m
	}
	outer := m
	for i, name := range names {
		m.Name = l.binding(name)
		if i == len(names)-1 {
			break
		}
		inner := &ast.ModuleDeclaration{Base: l.base(n), Declare: declare}
		m.Body = []ast.Statement{inner}
		m = inner
	}
	m.Body = body
	return outer
}

// identifiers returns the identifier leaves of a dotted name in order.
func identifiers(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range children(n) {
		switch c.Type() {
		case "identifier", "property_identifier":
			out = append(out, c)
		case "nested_identifier", "member_expression":
			out = append(out, identifiers(c)...)
		}
	}
	return out
}

// ambient lowers a `declare` declaration.
func (l *lowerer) ambient(n *sitter.Node) ast.Statement {
	if hasToken(n, "global") {
		m := &ast.ModuleDeclaration{Base: l.base(n), Source: "global", Declare: true}
		if b := childOfType(n, "statement_block"); b != nil {
			m.Body = l.statements(children(b))
		}
		return m
	}
	inner := firstChild(n)
	if inner == nil {
		return nil
	}
	if inner.Type() == "module" || inner.Type() == "internal_module" {
		return l.module(inner, true)
	}
	s := l.statement(inner)
	switch s := s.(type) {
	case *ast.VariableDeclaration:
		s.Declare = true
	case *ast.Function:
		s.Declare = true
	case *ast.Class:
		s.Declare = true
	case *ast.EnumDeclaration:
		s.Declare = true
	case *ast.TypeAliasDeclaration:
		s.Declare = true
	case *ast.InterfaceDeclaration:
		s.Declare = true
	case *ast.ModuleDeclaration:
		s.Declare = true
	}
	return s
}

func (l *lowerer) stringValue(n *sitter.Node) string {
	raw := l.text(n)
	if len(raw) >= 2 {
		raw = raw[1 : len(raw)-1]
	}
	return cook(raw)
}

func (l *lowerer) binding(n *sitter.Node) *ast.BindingIdentifier {
	if n == nil {
		return nil
	}
	return &ast.BindingIdentifier{Base: l.base(n), Name: strings.TrimPrefix(l.text(n), "#")}
}
