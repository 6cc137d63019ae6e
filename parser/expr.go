// Copyright © 2024 The ELPS authors

package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/luthersystems/jsem/ast"
)

// expr lowers an expression. It returns nil for nodes that are not
// expressions, including error nodes.
func (l *lowerer) expr(n *sitter.Node) ast.Expression {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "undefined":
		return &ast.Identifier{Base: l.base(n), Name: l.text(n)}
	case "this":
		return &ast.ThisExpression{Base: l.base(n)}
	case "super":
		return &ast.SuperExpression{Base: l.base(n)}
	case "true", "false":
		return &ast.BooleanLiteral{Base: l.base(n), Value: n.Type() == "true"}
	case "null":
		return &ast.NullLiteral{Base: l.base(n)}
	case "number":
		raw := l.text(n)
		if strings.HasSuffix(raw, "n") {
			return &ast.BigIntLiteral{Base: l.base(n), Raw: strings.ReplaceAll(strings.TrimSuffix(raw, "n"), "_", "")}
		}
		return &ast.NumberLiteral{Base: l.base(n), Value: parseNumber(raw), Raw: raw}
	case "string":
		return &ast.StringLiteral{Base: l.base(n), Value: l.stringValue(n)}
	case "template_string":
		return l.template(n)
	case "regex":
		re := &ast.RegExpLiteral{Base: l.base(n)}
		if p := n.ChildByFieldName("pattern"); p != nil {
			re.Pattern = l.text(p)
		}
		if f := n.ChildByFieldName("flags"); f != nil {
			re.Flags = l.text(f)
		}
		return re
	case "parenthesized_expression":
		p := &ast.ParenthesizedExpression{Base: l.base(n)}
		for _, c := range children(n) {
			if c.Type() != "type_annotation" {
				p.Expression = l.expr(c)
				break
			}
		}
		return p
	case "array":
		return &ast.ArrayExpression{Base: l.base(n), Elements: l.elements(n)}
	case "object":
		return l.object(n)
	case "function", "function_expression", "generator_function":
		return l.function(n, ast.FunctionExpression)
	case "arrow_function":
		return l.function(n, ast.ArrowFunction)
	case "class":
		return l.class(n, ast.ClassExpression)
	case "call_expression":
		return l.call(n)
	case "new_expression":
		e := &ast.NewExpression{Base: l.base(n)}
		e.Callee = l.expr(n.ChildByFieldName("constructor"))
		if args := n.ChildByFieldName("arguments"); args != nil {
			e.Arguments = l.arguments(args)
		}
		return e
	case "member_expression":
		e := &ast.MemberExpression{Base: l.base(n), Optional: l.optional(n)}
		e.Object = l.expr(n.ChildByFieldName("object"))
		if p := n.ChildByFieldName("property"); p != nil {
			e.Property = l.propertyKey(p)
		}
		return e
	case "subscript_expression":
		e := &ast.MemberExpression{Base: l.base(n), Computed: true, Optional: l.optional(n)}
		e.Object = l.expr(n.ChildByFieldName("object"))
		e.Property = l.expr(n.ChildByFieldName("index"))
		return e
	case "assignment_expression":
		e := &ast.AssignmentExpression{Base: l.base(n), Operator: ast.Assign}
		e.Left = l.pattern(n.ChildByFieldName("left"), false)
		e.Right = l.expr(n.ChildByFieldName("right"))
		return e
	case "augmented_assignment_expression":
		e := &ast.AssignmentExpression{Base: l.base(n), Operator: ast.Assign}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Operator = ast.AssignOp(l.text(op))
		}
		e.Left = l.pattern(n.ChildByFieldName("left"), false)
		e.Right = l.expr(n.ChildByFieldName("right"))
		return e
	case "unary_expression":
		e := &ast.UnaryExpression{Base: l.base(n)}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Operator = ast.UnaryOp(l.text(op))
		}
		e.Argument = l.expr(n.ChildByFieldName("argument"))
		return e
	case "update_expression":
		e := &ast.UpdateExpression{Base: l.base(n), Operator: ast.Increment}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Operator = ast.UpdateOp(l.text(op))
			e.Prefix = op.StartByte() == n.StartByte()
		}
		e.Argument = l.expr(n.ChildByFieldName("argument"))
		return e
	case "binary_expression":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = l.text(o)
		}
		left := l.expr(n.ChildByFieldName("left"))
		right := l.expr(n.ChildByFieldName("right"))
		switch op {
		case "&&", "||", "??":
			return &ast.LogicalExpression{Base: l.base(n), Operator: ast.LogicalOp(op), Left: left, Right: right}
		}
		return &ast.BinaryExpression{Base: l.base(n), Operator: ast.BinaryOp(op), Left: left, Right: right}
	case "ternary_expression":
		e := &ast.ConditionalExpression{Base: l.base(n)}
		e.Test = l.expr(n.ChildByFieldName("condition"))
		e.Consequent = l.expr(n.ChildByFieldName("consequence"))
		e.Alternate = l.expr(n.ChildByFieldName("alternative"))
		return e
	case "sequence_expression":
		e := &ast.SequenceExpression{Base: l.base(n)}
		l.sequence(n, e)
		return e
	case "spread_element":
		return &ast.SpreadElement{Base: l.base(n), Argument: l.expr(firstChild(n))}
	case "await_expression":
		return &ast.AwaitExpression{Base: l.base(n), Argument: l.expr(firstChild(n))}
	case "yield_expression":
		return &ast.YieldExpression{Base: l.base(n), Argument: l.expr(firstChild(n)), Delegate: hasToken(n, "*")}
	case "meta_property":
		meta, prop, _ := strings.Cut(l.text(n), ".")
		return &ast.MetaProperty{Base: l.base(n), Meta: strings.TrimSpace(meta), Property: strings.TrimSpace(prop)}
	case "private_property_identifier":
		return &ast.PrivateName{Base: l.base(n), Name: strings.TrimPrefix(l.text(n), "#")}
	case "as_expression", "satisfies_expression", "non_null_expression", "instantiation_expression":
		return l.expr(firstChild(n))
	case "type_assertion":
		// <T>x
		cs := children(n)
		if len(cs) == 0 {
			return nil
		}
		return l.expr(cs[len(cs)-1])
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return &ast.ArrayExpression{Base: l.base(n), Elements: l.jsx(n, nil)}
	}
	return nil
}

func (l *lowerer) optional(n *sitter.Node) bool {
	return n.ChildByFieldName("optional_chain") != nil || hasToken(n, "?.")
}

func (l *lowerer) sequence(n *sitter.Node, e *ast.SequenceExpression) {
	for _, c := range children(n) {
		if c.Type() == "sequence_expression" {
			l.sequence(c, e)
			continue
		}
		if x := l.expr(c); x != nil {
			e.Expressions = append(e.Expressions, x)
		}
	}
}

func (l *lowerer) call(n *sitter.Node) ast.Expression {
	callee := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	if args != nil && args.Type() == "template_string" {
		e := &ast.TaggedTemplateExpression{Base: l.base(n)}
		e.Tag = l.expr(callee)
		e.Quasi = l.template(args)
		return e
	}
	if callee != nil && callee.Type() == "import" {
		e := &ast.ImportExpression{Base: l.base(n)}
		if args != nil {
			if list := l.arguments(args); len(list) > 0 {
				e.Source = list[0]
			}
		}
		return e
	}
	e := &ast.CallExpression{Base: l.base(n), Optional: l.optional(n)}
	e.Callee = l.expr(callee)
	if args != nil {
		e.Arguments = l.arguments(args)
	}
	return e
}

func (l *lowerer) arguments(n *sitter.Node) []ast.Expression {
	var args []ast.Expression
	for _, c := range children(n) {
		if x := l.expr(c); x != nil {
			args = append(args, x)
		}
	}
	return args
}

// elements lowers array literal elements, keeping holes as nil.
func (l *lowerer) elements(n *sitter.Node) []ast.Expression {
	var out []ast.Expression
	pending := true
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == ",":
			if pending {
				out = append(out, nil)
			}
			pending = true
		case c.IsNamed() && c.Type() != "comment":
			out = append(out, l.expr(c))
			pending = false
		}
	}
	return out
}

func (l *lowerer) template(n *sitter.Node) *ast.TemplateLiteral {
	t := &ast.TemplateLiteral{Base: l.base(n)}
	pos := n.StartByte() + 1
	for _, c := range children(n) {
		if c.Type() != "template_substitution" {
			continue
		}
		t.Quasis = append(t.Quasis, cook(string(l.src[pos:c.StartByte()])))
		t.Expressions = append(t.Expressions, l.expr(firstChild(c)))
		pos = c.EndByte()
	}
	end := n.EndByte()
	if end > pos {
		end--
	}
	t.Quasis = append(t.Quasis, cook(string(l.src[pos:end])))
	return t
}

func (l *lowerer) object(n *sitter.Node) *ast.ObjectExpression {
	o := &ast.ObjectExpression{Base: l.base(n)}
	for _, c := range children(n) {
		switch c.Type() {
		case "pair":
			key := c.ChildByFieldName("key")
			if key == nil {
				continue
			}
			o.Properties = append(o.Properties, &ast.Property{
				Base:     l.base(c),
				Key:      l.propertyKey(key),
				Computed: key.Type() == "computed_property_name",
				Value:    l.expr(c.ChildByFieldName("value")),
			})
		case "shorthand_property_identifier":
			o.Properties = append(o.Properties, &ast.Property{
				Base:      l.base(c),
				Key:       &ast.IdentifierName{Base: l.base(c), Name: l.text(c)},
				Value:     &ast.Identifier{Base: l.base(c), Name: l.text(c)},
				Shorthand: true,
			})
		case "method_definition":
			name := c.ChildByFieldName("name")
			if name == nil {
				continue
			}
			o.Properties = append(o.Properties, &ast.Property{
				Base:     l.base(c),
				Key:      l.propertyKey(name),
				Computed: name.Type() == "computed_property_name",
				Value:    l.function(c, ast.MethodFunction),
				Kind:     methodKind(c, ""),
			})
		case "spread_element":
			if x := l.expr(c); x != nil {
				o.Properties = append(o.Properties, x)
			}
		}
	}
	return o
}

// propertyKey lowers a property name or computed key.
func (l *lowerer) propertyKey(n *sitter.Node) ast.Expression {
	switch n.Type() {
	case "property_identifier", "identifier", "type_identifier":
		return &ast.IdentifierName{Base: l.base(n), Name: l.text(n)}
	case "private_property_identifier":
		return &ast.PrivateName{Base: l.base(n), Name: strings.TrimPrefix(l.text(n), "#")}
	case "computed_property_name":
		return l.expr(firstChild(n))
	}
	return l.expr(n)
}

// pattern lowers a binding pattern when bind is set and an assignment
// target otherwise.
func (l *lowerer) pattern(n *sitter.Node, bind bool) ast.Pattern {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern", "undefined":
		if bind {
			return l.binding(n)
		}
		return &ast.Identifier{Base: l.base(n), Name: l.text(n)}
	case "object_pattern":
		return l.objectPattern(n, bind)
	case "array_pattern":
		p := &ast.ArrayPattern{Base: l.base(n)}
		pending := true
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch {
			case c.Type() == ",":
				if pending {
					p.Elements = append(p.Elements, nil)
				}
				pending = true
			case c.Type() == "rest_pattern":
				p.Rest = l.pattern(firstChild(c), bind)
				pending = false
			case c.IsNamed() && c.Type() != "comment":
				p.Elements = append(p.Elements, l.pattern(c, bind))
				pending = false
			}
		}
		return p
	case "assignment_pattern", "object_assignment_pattern":
		p := &ast.AssignmentPattern{Base: l.base(n)}
		p.Left = l.pattern(n.ChildByFieldName("left"), bind)
		p.Right = l.expr(n.ChildByFieldName("right"))
		return p
	case "rest_pattern":
		return l.pattern(firstChild(n), bind)
	case "parenthesized_expression", "non_null_expression", "as_expression", "satisfies_expression":
		return l.pattern(firstChild(n), bind)
	case "member_expression", "subscript_expression":
		if m, ok := l.expr(n).(*ast.MemberExpression); ok {
			return m
		}
	}
	return nil
}

func (l *lowerer) objectPattern(n *sitter.Node, bind bool) *ast.ObjectPattern {
	p := &ast.ObjectPattern{Base: l.base(n)}
	for _, c := range children(n) {
		switch c.Type() {
		case "pair_pattern":
			key := c.ChildByFieldName("key")
			if key == nil {
				continue
			}
			p.Properties = append(p.Properties, &ast.PatternProperty{
				Base:     l.base(c),
				Key:      l.propertyKey(key),
				Computed: key.Type() == "computed_property_name",
				Value:    l.pattern(c.ChildByFieldName("value"), bind),
			})
		case "shorthand_property_identifier_pattern":
			p.Properties = append(p.Properties, &ast.PatternProperty{
				Base:      l.base(c),
				Key:       &ast.IdentifierName{Base: l.base(c), Name: l.text(c)},
				Value:     l.pattern(c, bind),
				Shorthand: true,
			})
		case "object_assignment_pattern":
			left := c.ChildByFieldName("left")
			if left == nil {
				continue
			}
			p.Properties = append(p.Properties, &ast.PatternProperty{
				Base:      l.base(c),
				Key:       &ast.IdentifierName{Base: l.base(left), Name: l.text(left)},
				Value:     l.pattern(c, bind),
				Shorthand: true,
			})
		case "rest_pattern":
			p.Rest = l.pattern(firstChild(c), bind)
		}
	}
	return p
}

// function lowers every form of function. Method forms take their name
// from the enclosing definition, so only declarations and expressions bind
// one here.
func (l *lowerer) function(n *sitter.Node, typ ast.FunctionType) *ast.Function {
	fn := &ast.Function{
		Base:      l.base(n),
		Type:      typ,
		Async:     hasToken(n, "async"),
		Generator: hasToken(n, "*"),
	}
	if typ == ast.FunctionDeclaration || typ == ast.FunctionExpression {
		if name := n.ChildByFieldName("name"); name != nil {
			fn.Name = l.binding(name)
		}
	}
	if p := n.ChildByFieldName("parameter"); p != nil {
		fn.Params = []ast.Pattern{l.pattern(p, true)}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		l.parameters(fn, params)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			fn.Body = l.block(body)
		} else {
			fn.ExprBody = l.expr(body)
		}
	}
	return fn
}

func (l *lowerer) parameters(fn *ast.Function, n *sitter.Node) {
	for _, c := range children(n) {
		p := c
		var def *sitter.Node
		switch c.Type() {
		case "required_parameter", "optional_parameter":
			p = c.ChildByFieldName("pattern")
			def = c.ChildByFieldName("value")
			if p == nil || p.Type() == "this" {
				continue
			}
		case "decorator", "type_annotation":
			continue
		}
		if p.Type() == "rest_pattern" {
			fn.Rest = l.pattern(firstChild(p), true)
			continue
		}
		param := l.pattern(p, true)
		if param == nil {
			continue
		}
		if def != nil {
			param = &ast.AssignmentPattern{Base: l.base(c), Left: param, Right: l.expr(def)}
		}
		fn.Params = append(fn.Params, param)
	}
}

func (l *lowerer) class(n *sitter.Node, typ ast.ClassType) *ast.Class {
	c := &ast.Class{
		Base:     l.base(n),
		Type:     typ,
		Abstract: n.Type() == "abstract_class_declaration",
		Declare:  hasToken(n, "declare"),
	}
	if name := n.ChildByFieldName("name"); name != nil {
		c.Name = l.binding(name)
	}
	if h := childOfType(n, "class_heritage"); h != nil {
		if ext := childOfType(h, "extends_clause"); ext != nil {
			if v := ext.ChildByFieldName("value"); v != nil {
				c.SuperClass = l.expr(v)
			} else {
				c.SuperClass = l.expr(firstChild(ext))
			}
		} else if first := firstChild(h); first != nil && first.Type() != "implements_clause" {
			c.SuperClass = l.expr(first)
		}
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return c
	}
	for _, m := range children(body) {
		if member := l.classMember(m); member != nil {
			c.Body = append(c.Body, member)
		}
	}
	return c
}

func (l *lowerer) classMember(n *sitter.Node) ast.ClassMember {
	switch n.Type() {
	case "method_definition":
		name := n.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		return &ast.MethodDefinition{
			Base:     l.base(n),
			Key:      l.propertyKey(name),
			Computed: name.Type() == "computed_property_name",
			Static:   hasToken(n, "static"),
			Kind:     methodKind(n, l.text(name)),
			Value:    l.function(n, ast.MethodFunction),
		}
	case "field_definition", "public_field_definition":
		name := n.ChildByFieldName("property")
		if name == nil {
			name = n.ChildByFieldName("name")
		}
		if name == nil {
			return nil
		}
		return &ast.PropertyDefinition{
			Base:     l.base(n),
			Key:      l.propertyKey(name),
			Computed: name.Type() == "computed_property_name",
			Static:   hasToken(n, "static"),
			Value:    l.expr(n.ChildByFieldName("value")),
			Declare:  hasToken(n, "declare"),
		}
	case "class_static_block":
		b := &ast.StaticBlock{Base: l.base(n)}
		if body := n.ChildByFieldName("body"); body != nil {
			b.Body = l.statements(children(body))
		}
		return b
	}
	return nil
}

func methodKind(n *sitter.Node, name string) ast.MethodKind {
	switch {
	case hasToken(n, "get"):
		return ast.MethodGet
	case hasToken(n, "set"):
		return ast.MethodSet
	case name == "constructor":
		return ast.MethodConstructor
	}
	return ast.MethodNormal
}

// jsx lowers the embedded expressions of a JSX tree, along with the
// component names it references, into out.
func (l *lowerer) jsx(n *sitter.Node, out []ast.Expression) []ast.Expression {
	switch n.Type() {
	case "jsx_opening_element", "jsx_self_closing_element":
		if name := n.ChildByFieldName("name"); name != nil {
			if ref := l.jsxName(name); ref != nil {
				out = append(out, ref)
			}
		}
	}
	for _, c := range children(n) {
		switch c.Type() {
		case "jsx_expression":
			if e := l.expr(firstChild(c)); e != nil {
				out = append(out, e)
			}
		case "jsx_element", "jsx_opening_element", "jsx_self_closing_element",
			"jsx_attribute", "jsx_fragment":
			out = l.jsx(c, out)
		}
	}
	return out
}

// jsxName returns the reference made by an element name. Lower-case names
// are intrinsic elements and reference nothing.
func (l *lowerer) jsxName(n *sitter.Node) ast.Expression {
	switch n.Type() {
	case "identifier":
		r, _ := utf8.DecodeRuneInString(l.text(n))
		if !unicode.IsUpper(r) {
			return nil
		}
		return &ast.Identifier{Base: l.base(n), Name: l.text(n)}
	case "member_expression", "nested_identifier":
		ids := identifiers(n)
		if len(ids) == 0 {
			return nil
		}
		return &ast.Identifier{Base: l.base(ids[0]), Name: l.text(ids[0])}
	}
	return nil
}
