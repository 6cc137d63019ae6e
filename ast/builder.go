// Copyright © 2024 The ELPS authors

package ast

// Builder constructs syntax trees without a parser. Each constructed node
// receives the next dense NodeID and a synthetic span that starts where the
// previous node's span ended, so spans are unique and increasing in
// construction order.
type Builder struct {
	next NodeID
	pos  uint32
}

// NewBuilder returns a Builder whose first node gets id 0.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) base(width uint32) Base {
	if width == 0 {
		width = 1
	}
	base := Base{ID: b.next, Span: Span{Start: b.pos, End: b.pos + width}}
	b.next++
	b.pos += width + 1
	return base
}

// Count returns the number of nodes built so far.
func (b *Builder) Count() uint32 { return uint32(b.next) }

func (b *Builder) Program(body ...Statement) *Program {
	p := &Program{Base: b.base(1), Body: body}
	p.NodeCount = b.Count()
	return p
}

func (b *Builder) Module(body ...Statement) *Program {
	p := b.Program(body...)
	p.Module = true
	return p
}

// ---- identifiers and literals ----

func (b *Builder) Ident(name string) *Identifier {
	return &Identifier{Base: b.base(uint32(len(name))), Name: name}
}

func (b *Builder) Bind(name string) *BindingIdentifier {
	return &BindingIdentifier{Base: b.base(uint32(len(name))), Name: name}
}

func (b *Builder) Name(name string) *IdentifierName {
	return &IdentifierName{Base: b.base(uint32(len(name))), Name: name}
}

func (b *Builder) Num(v float64) *NumberLiteral {
	return &NumberLiteral{Base: b.base(1), Value: v}
}

func (b *Builder) Str(s string) *StringLiteral {
	return &StringLiteral{Base: b.base(uint32(len(s) + 2)), Value: s}
}

func (b *Builder) Bool(v bool) *BooleanLiteral {
	return &BooleanLiteral{Base: b.base(4), Value: v}
}

func (b *Builder) BigInt(raw string) *BigIntLiteral {
	return &BigIntLiteral{Base: b.base(uint32(len(raw) + 1)), Raw: raw}
}

func (b *Builder) Template(quasis []string, exprs ...Expression) *TemplateLiteral {
	return &TemplateLiteral{Base: b.base(2), Quasis: quasis, Expressions: exprs}
}

// ---- expressions ----

func (b *Builder) Paren(e Expression) *ParenthesizedExpression {
	return &ParenthesizedExpression{Base: b.base(2), Expression: e}
}

func (b *Builder) Unary(op UnaryOp, arg Expression) *UnaryExpression {
	return &UnaryExpression{Base: b.base(1), Operator: op, Argument: arg}
}

func (b *Builder) Update(op UpdateOp, prefix bool, arg Expression) *UpdateExpression {
	return &UpdateExpression{Base: b.base(2), Operator: op, Prefix: prefix, Argument: arg}
}

func (b *Builder) Binary(op BinaryOp, l, r Expression) *BinaryExpression {
	return &BinaryExpression{Base: b.base(1), Operator: op, Left: l, Right: r}
}

func (b *Builder) Logical(op LogicalOp, l, r Expression) *LogicalExpression {
	return &LogicalExpression{Base: b.base(2), Operator: op, Left: l, Right: r}
}

func (b *Builder) Assign(op AssignOp, target Pattern, value Expression) *AssignmentExpression {
	return &AssignmentExpression{Base: b.base(1), Operator: op, Left: target, Right: value}
}

func (b *Builder) Cond(test, cons, alt Expression) *ConditionalExpression {
	return &ConditionalExpression{Base: b.base(1), Test: test, Consequent: cons, Alternate: alt}
}

func (b *Builder) Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{Base: b.base(2), Callee: callee, Arguments: args}
}

func (b *Builder) New(callee Expression, args ...Expression) *NewExpression {
	return &NewExpression{Base: b.base(3), Callee: callee, Arguments: args}
}

// Member builds the static member expression obj.prop.
func (b *Builder) Member(obj Expression, prop string) *MemberExpression {
	return &MemberExpression{Base: b.base(1), Object: obj, Property: b.Name(prop)}
}

// Index builds the computed member expression obj[prop].
func (b *Builder) Index(obj Expression, prop Expression) *MemberExpression {
	return &MemberExpression{Base: b.base(2), Object: obj, Property: prop, Computed: true}
}

func (b *Builder) Seq(exprs ...Expression) *SequenceExpression {
	return &SequenceExpression{Base: b.base(1), Expressions: exprs}
}

func (b *Builder) Array(elems ...Expression) *ArrayExpression {
	return &ArrayExpression{Base: b.base(2), Elements: elems}
}

func (b *Builder) Object(props ...Node) *ObjectExpression {
	return &ObjectExpression{Base: b.base(2), Properties: props}
}

func (b *Builder) Prop(key string, value Expression) *Property {
	return &Property{Base: b.base(1), Key: b.Name(key), Value: value}
}

// Shorthand builds the shorthand property `{ name }`.
func (b *Builder) Shorthand(name string) *Property {
	return &Property{Base: b.base(1), Key: b.Name(name), Value: b.Ident(name), Shorthand: true}
}

func (b *Builder) This() *ThisExpression { return &ThisExpression{Base: b.base(4)} }

// ---- patterns ----

func (b *Builder) ObjPat(props ...*PatternProperty) *ObjectPattern {
	return &ObjectPattern{Base: b.base(2), Properties: props}
}

// PatProp builds the pattern property `key: value`.
func (b *Builder) PatProp(key string, value Pattern) *PatternProperty {
	return &PatternProperty{Base: b.base(1), Key: b.Name(key), Value: value}
}

func (b *Builder) ArrPat(elems ...Pattern) *ArrayPattern {
	return &ArrayPattern{Base: b.base(2), Elements: elems}
}

func (b *Builder) Default(left Pattern, right Expression) *AssignmentPattern {
	return &AssignmentPattern{Base: b.base(1), Left: left, Right: right}
}

// ---- functions and classes ----

// Params builds binding identifiers for simple parameter lists.
func (b *Builder) Params(names ...string) []Pattern {
	ps := make([]Pattern, len(names))
	for i, n := range names {
		ps[i] = b.Bind(n)
	}
	return ps
}

// Func builds a function declaration. An empty name yields an anonymous
// function, as in `export default function () {}`.
func (b *Builder) Func(name string, params []Pattern, body ...Statement) *Function {
	f := &Function{Base: b.base(8), Type: FunctionDeclaration, Params: params, Body: b.Block(body...)}
	if name != "" {
		f.Name = b.Bind(name)
	}
	return f
}

// FuncExpr builds a function expression.
func (b *Builder) FuncExpr(name string, params []Pattern, body ...Statement) *Function {
	f := b.Func(name, params, body...)
	f.Type = FunctionExpression
	return f
}

// Arrow builds an arrow function with a block body.
func (b *Builder) Arrow(params []Pattern, body ...Statement) *Function {
	return &Function{Base: b.base(2), Type: ArrowFunction, Params: params, Body: b.Block(body...)}
}

// ArrowExpr builds an arrow function with an expression body.
func (b *Builder) ArrowExpr(params []Pattern, body Expression) *Function {
	return &Function{Base: b.base(2), Type: ArrowFunction, Params: params, ExprBody: body}
}

func (b *Builder) Class(name string, super Expression, members ...ClassMember) *Class {
	c := &Class{Base: b.base(5), Type: ClassDeclaration, SuperClass: super, Body: members}
	if name != "" {
		c.Name = b.Bind(name)
	}
	return c
}

func (b *Builder) Method(key string, kind MethodKind, static bool, fn *Function) *MethodDefinition {
	fn.Type = MethodFunction
	return &MethodDefinition{Base: b.base(1), Key: b.Name(key), Kind: kind, Static: static, Value: fn}
}

func (b *Builder) Field(key string, static bool, value Expression) *PropertyDefinition {
	return &PropertyDefinition{Base: b.base(1), Key: b.Name(key), Static: static, Value: value}
}

func (b *Builder) StaticBlock(body ...Statement) *StaticBlock {
	return &StaticBlock{Base: b.base(6), Body: body}
}

// ---- statements ----

func (b *Builder) Expr(e Expression) *ExpressionStatement {
	return &ExpressionStatement{Base: b.base(1), Expression: e}
}

func (b *Builder) Decl(kind VarKind, decls ...*VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{Base: b.base(3), Kind: kind, Declarations: decls}
}

func (b *Builder) Declarator(target Pattern, init Expression) *VariableDeclarator {
	return &VariableDeclarator{Base: b.base(1), Target: target, Init: init}
}

// Var builds `var name = init`. A nil init leaves the binding uninitialized.
func (b *Builder) Var(name string, init Expression) *VariableDeclaration {
	return b.Decl(Var, b.Declarator(b.Bind(name), init))
}

func (b *Builder) Let(name string, init Expression) *VariableDeclaration {
	return b.Decl(Let, b.Declarator(b.Bind(name), init))
}

func (b *Builder) Const(name string, init Expression) *VariableDeclaration {
	return b.Decl(Const, b.Declarator(b.Bind(name), init))
}

func (b *Builder) Block(body ...Statement) *BlockStatement {
	return &BlockStatement{Base: b.base(2), Body: body}
}

func (b *Builder) Empty() *EmptyStatement { return &EmptyStatement{Base: b.base(1)} }

func (b *Builder) If(test Expression, cons, alt Statement) *IfStatement {
	return &IfStatement{Base: b.base(2), Test: test, Consequent: cons, Alternate: alt}
}

func (b *Builder) While(test Expression, body Statement) *WhileStatement {
	return &WhileStatement{Base: b.base(5), Test: test, Body: body}
}

func (b *Builder) DoWhile(body Statement, test Expression) *DoWhileStatement {
	return &DoWhileStatement{Base: b.base(2), Body: body, Test: test}
}

func (b *Builder) For(init Node, test, update Expression, body Statement) *ForStatement {
	return &ForStatement{Base: b.base(3), Init: init, Test: test, Update: update, Body: body}
}

func (b *Builder) ForOf(left Node, right Expression, body Statement) *ForInStatement {
	return &ForInStatement{Base: b.base(3), Left: left, Right: right, Body: body, Of: true}
}

func (b *Builder) ForIn(left Node, right Expression, body Statement) *ForInStatement {
	return &ForInStatement{Base: b.base(3), Left: left, Right: right, Body: body}
}

func (b *Builder) With(object Expression, body Statement) *WithStatement {
	return &WithStatement{Base: b.base(4), Object: object, Body: body}
}

func (b *Builder) Return(arg Expression) *ReturnStatement {
	return &ReturnStatement{Base: b.base(6), Argument: arg}
}

func (b *Builder) Throw(arg Expression) *ThrowStatement {
	return &ThrowStatement{Base: b.base(5), Argument: arg}
}

func (b *Builder) Break(label string) *BreakStatement {
	return &BreakStatement{Base: b.base(5), Label: label}
}

func (b *Builder) Continue(label string) *ContinueStatement {
	return &ContinueStatement{Base: b.base(8), Label: label}
}

func (b *Builder) Labeled(label string, body Statement) *LabeledStatement {
	return &LabeledStatement{Base: b.base(uint32(len(label) + 1)), Label: label, Body: body}
}

// Try builds a try statement. param may be nil for `catch {}`; handler and
// finalizer may be nil when absent.
func (b *Builder) Try(block *BlockStatement, param Pattern, handler *BlockStatement, finalizer *BlockStatement) *TryStatement {
	t := &TryStatement{Base: b.base(3), Block: block, Finalizer: finalizer}
	if handler != nil {
		t.Handler = &CatchClause{Base: b.base(5), Param: param, Body: handler}
	}
	return t
}

func (b *Builder) Switch(disc Expression, cases ...*SwitchCase) *SwitchStatement {
	return &SwitchStatement{Base: b.base(6), Discriminant: disc, Cases: cases}
}

// Case builds a switch case; a nil test builds `default:`.
func (b *Builder) Case(test Expression, body ...Statement) *SwitchCase {
	return &SwitchCase{Base: b.base(4), Test: test, Consequent: body}
}

func (b *Builder) Enum(name string, members ...*EnumMember) *EnumDeclaration {
	return &EnumDeclaration{Base: b.base(4), Name: b.Bind(name), Members: members}
}

func (b *Builder) EnumMember(name string, init Expression) *EnumMember {
	return &EnumMember{Base: b.base(1), Name: b.Bind(name), Initializer: init}
}

func (b *Builder) Namespace(name string, body ...Statement) *ModuleDeclaration {
	return &ModuleDeclaration{Base: b.base(9), Name: b.Bind(name), Body: body}
}

func (b *Builder) TypeAlias(name string) *TypeAliasDeclaration {
	return &TypeAliasDeclaration{Base: b.base(4), Name: b.Bind(name)}
}

func (b *Builder) Interface(name string) *InterfaceDeclaration {
	return &InterfaceDeclaration{Base: b.base(9), Name: b.Bind(name)}
}

// Import builds `import { imported as local } from source` for each pair.
func (b *Builder) Import(source string, specs ...*ImportSpecifier) *ImportDeclaration {
	return &ImportDeclaration{Base: b.base(6), Specifiers: specs, Source: source}
}

func (b *Builder) ImportSpec(kind ImportKind, imported, local string) *ImportSpecifier {
	return &ImportSpecifier{Base: b.base(1), Kind: kind, Imported: imported, Local: b.Bind(local)}
}

// Export builds `export <decl>`.
func (b *Builder) Export(decl Statement) *ExportNamedDeclaration {
	return &ExportNamedDeclaration{Base: b.base(6), Declaration: decl}
}

// ExportNames builds `export { local as exported, ... }` for each name.
func (b *Builder) ExportNames(names ...string) *ExportNamedDeclaration {
	e := &ExportNamedDeclaration{Base: b.base(6)}
	for _, n := range names {
		e.Specifiers = append(e.Specifiers, &ExportSpecifier{Base: b.base(1), Local: b.Ident(n), Exported: n})
	}
	return e
}

func (b *Builder) ExportDefault(decl Node) *ExportDefaultDeclaration {
	return &ExportDefaultDeclaration{Base: b.base(14), Declaration: decl}
}
