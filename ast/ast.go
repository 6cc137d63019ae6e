// Copyright © 2024 The ELPS authors

// Package ast defines the JavaScript/TypeScript syntax tree consumed by the
// semantic analyzer.
//
// Every node carries a dense NodeID assigned by the producer and a byte
// offset span into the source. Analysis never mutates a tree; it records its
// results in side tables keyed by NodeID.
package ast

// NodeID identifies a node within one Program. Ids are dense and stable for
// the lifetime of the tree.
type NodeID uint32

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint32 { return s.End - s.Start }

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(off uint32) bool { return off >= s.Start && off < s.End }

// Node is implemented by every syntax tree node.
type Node interface {
	NodeID() NodeID
	Loc() Span
}

// Base holds the identity shared by all nodes. Embed it in node structs.
type Base struct {
	ID   NodeID
	Span Span
}

// NodeID returns the node's identifier.
func (b *Base) NodeID() NodeID { return b.ID }

// Loc returns the node's source span.
func (b *Base) Loc() Span { return b.Span }

// Statement is a node that may appear in a statement list.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	exprNode()
}

// Pattern is a binding or assignment target. Declarations use
// BindingIdentifier leaves; assignment expressions use Identifier and
// MemberExpression leaves.
type Pattern interface {
	Node
	patternNode()
}

// ClassMember is an element of a class body.
type ClassMember interface {
	Node
	memberNode()
}

// Comment is a source comment. Comments are not nodes.
type Comment struct {
	Span  Span
	Text  string
	Block bool
}

// Program is the root of a parsed source file.
type Program struct {
	Base
	Body       []Statement
	Module     bool // ES module goal; implies strict mode
	TypeScript bool
	Comments   []Comment
	// NodeCount is one greater than the largest NodeID in the tree.
	NodeCount uint32
}

// VarKind is the declaration keyword of a VariableDeclaration.
type VarKind uint8

const (
	Var VarKind = iota
	Let
	Const
	Using
)

func (k VarKind) String() string {
	switch k {
	case Var:
		return "var"
	case Let:
		return "let"
	case Const:
		return "const"
	case Using:
		return "using"
	default:
		return "unknown"
	}
}

// ---- Statements ----

type (
	ExpressionStatement struct {
		Base
		Expression Expression
	}

	VariableDeclaration struct {
		Base
		Kind         VarKind
		Declarations []*VariableDeclarator
		Declare      bool // TypeScript `declare`
	}

	VariableDeclarator struct {
		Base
		Target Pattern
		Init   Expression
	}

	BlockStatement struct {
		Base
		Body []Statement
	}

	EmptyStatement struct {
		Base
	}

	DebuggerStatement struct {
		Base
	}

	IfStatement struct {
		Base
		Test       Expression
		Consequent Statement
		Alternate  Statement
	}

	WhileStatement struct {
		Base
		Test Expression
		Body Statement
	}

	DoWhileStatement struct {
		Base
		Body Statement
		Test Expression
	}

	// ForStatement is a C-style for loop. Init is nil, a
	// *VariableDeclaration, or an Expression.
	ForStatement struct {
		Base
		Init   Node
		Test   Expression
		Update Expression
		Body   Statement
	}

	// ForInStatement covers for-in, for-of and for-await-of. Left is a
	// *VariableDeclaration or a Pattern.
	ForInStatement struct {
		Base
		Left  Node
		Right Expression
		Body  Statement
		Of    bool
		Await bool
	}

	// WithStatement is the sloppy-mode with statement.
	WithStatement struct {
		Base
		Object Expression
		Body   Statement
	}

	ReturnStatement struct {
		Base
		Argument Expression
	}

	ThrowStatement struct {
		Base
		Argument Expression
	}

	BreakStatement struct {
		Base
		Label string
	}

	ContinueStatement struct {
		Base
		Label string
	}

	LabeledStatement struct {
		Base
		Label string
		Body  Statement
	}

	TryStatement struct {
		Base
		Block     *BlockStatement
		Handler   *CatchClause
		Finalizer *BlockStatement
	}

	CatchClause struct {
		Base
		Param Pattern // nil for `catch {}`
		Body  *BlockStatement
	}

	SwitchStatement struct {
		Base
		Discriminant Expression
		Cases        []*SwitchCase
	}

	SwitchCase struct {
		Base
		Test       Expression // nil for default
		Consequent []Statement
	}

	// EnumDeclaration is a TypeScript enum.
	EnumDeclaration struct {
		Base
		Name    *BindingIdentifier
		Members []*EnumMember
		Const   bool
		Declare bool
	}

	// EnumMember is one member of an enum. Name holds the unquoted member
	// name even when the source used a string literal key.
	EnumMember struct {
		Base
		Name        *BindingIdentifier
		Initializer Expression
	}

	TypeAliasDeclaration struct {
		Base
		Name    *BindingIdentifier
		Declare bool
	}

	InterfaceDeclaration struct {
		Base
		Name    *BindingIdentifier
		Declare bool
	}

	// ModuleDeclaration is a TypeScript namespace or ambient module. Name is
	// nil for `declare module "x"` and `declare global`.
	ModuleDeclaration struct {
		Base
		Name    *BindingIdentifier
		Source  string
		Body    []Statement
		Declare bool
	}

	ImportDeclaration struct {
		Base
		Specifiers []*ImportSpecifier
		Source     string
		TypeOnly   bool
	}

	ImportSpecifier struct {
		Base
		Kind     ImportKind
		Imported string // exported name in the source module; empty for default/namespace
		Local    *BindingIdentifier
		TypeOnly bool
	}

	ExportNamedDeclaration struct {
		Base
		Declaration Statement
		Specifiers  []*ExportSpecifier
		Source      string
		TypeOnly    bool
	}

	// ExportSpecifier exports Local under Exported. Local is a reference
	// only when the enclosing declaration has no Source.
	ExportSpecifier struct {
		Base
		Local    *Identifier
		Exported string
	}

	// ExportDefaultDeclaration exports a function, class or expression.
	ExportDefaultDeclaration struct {
		Base
		Declaration Node
	}

	ExportAllDeclaration struct {
		Base
		Source   string
		Exported string
	}
)

// ImportKind distinguishes the forms of an import specifier.
type ImportKind uint8

const (
	ImportNamed ImportKind = iota
	ImportDefault
	ImportNamespace
)

// ---- Functions and classes ----

// FunctionType distinguishes where a Function appears.
type FunctionType uint8

const (
	FunctionDeclaration FunctionType = iota
	FunctionExpression
	ArrowFunction
	MethodFunction
)

// Function is a function declaration, function expression, arrow function
// or method body. Arrow functions with an expression body set ExprBody.
type Function struct {
	Base
	Type      FunctionType
	Name      *BindingIdentifier
	Params    []Pattern
	Rest      Pattern
	Body      *BlockStatement
	ExprBody  Expression
	Async     bool
	Generator bool
	Declare   bool
}

// ClassType distinguishes class declarations from class expressions.
type ClassType uint8

const (
	ClassDeclaration ClassType = iota
	ClassExpression
)

type Class struct {
	Base
	Type       ClassType
	Name       *BindingIdentifier
	SuperClass Expression
	Body       []ClassMember
	Abstract   bool
	Declare    bool
}

// MethodKind is the role of a MethodDefinition or object Property.
type MethodKind uint8

const (
	MethodNormal MethodKind = iota
	MethodConstructor
	MethodGet
	MethodSet
)

type (
	MethodDefinition struct {
		Base
		Key      Expression
		Computed bool
		Static   bool
		Kind     MethodKind
		Value    *Function
	}

	PropertyDefinition struct {
		Base
		Key      Expression
		Computed bool
		Static   bool
		Value    Expression
		Declare  bool
	}

	StaticBlock struct {
		Base
		Body []Statement
	}
)

// ---- Expressions ----

type (
	// Identifier is an identifier reference: a use of a name.
	Identifier struct {
		Base
		Name string
	}

	// IdentifierName is a name that is not a reference, such as a
	// non-computed property key.
	IdentifierName struct {
		Base
		Name string
	}

	PrivateName struct {
		Base
		Name string
	}

	NumberLiteral struct {
		Base
		Value float64
		Raw   string
	}

	StringLiteral struct {
		Base
		Value string
	}

	BooleanLiteral struct {
		Base
		Value bool
	}

	NullLiteral struct {
		Base
	}

	// BigIntLiteral holds the literal text without the trailing `n`.
	BigIntLiteral struct {
		Base
		Raw string
	}

	RegExpLiteral struct {
		Base
		Pattern string
		Flags   string
	}

	// TemplateLiteral has len(Quasis) == len(Expressions)+1. Quasis hold
	// cooked strings.
	TemplateLiteral struct {
		Base
		Quasis      []string
		Expressions []Expression
	}

	TaggedTemplateExpression struct {
		Base
		Tag   Expression
		Quasi *TemplateLiteral
	}

	// ArrayExpression elements are nil for holes.
	ArrayExpression struct {
		Base
		Elements []Expression
	}

	// ObjectExpression properties are *Property or *SpreadElement.
	ObjectExpression struct {
		Base
		Properties []Node
	}

	Property struct {
		Base
		Key       Expression
		Value     Expression
		Computed  bool
		Shorthand bool
		Kind      MethodKind
	}

	SpreadElement struct {
		Base
		Argument Expression
	}

	UnaryExpression struct {
		Base
		Operator UnaryOp
		Argument Expression
	}

	UpdateExpression struct {
		Base
		Operator UpdateOp
		Prefix   bool
		Argument Expression
	}

	BinaryExpression struct {
		Base
		Operator BinaryOp
		Left     Expression
		Right    Expression
	}

	LogicalExpression struct {
		Base
		Operator LogicalOp
		Left     Expression
		Right    Expression
	}

	AssignmentExpression struct {
		Base
		Operator AssignOp
		Left     Pattern
		Right    Expression
	}

	ConditionalExpression struct {
		Base
		Test       Expression
		Consequent Expression
		Alternate  Expression
	}

	CallExpression struct {
		Base
		Callee    Expression
		Arguments []Expression
		Optional  bool
	}

	NewExpression struct {
		Base
		Callee    Expression
		Arguments []Expression
	}

	// MemberExpression is `a.b`, `a[b]` or `a.#b`. Non-computed properties
	// are *IdentifierName or *PrivateName.
	MemberExpression struct {
		Base
		Object   Expression
		Property Expression
		Computed bool
		Optional bool
	}

	SequenceExpression struct {
		Base
		Expressions []Expression
	}

	ParenthesizedExpression struct {
		Base
		Expression Expression
	}

	ThisExpression struct {
		Base
	}

	SuperExpression struct {
		Base
	}

	AwaitExpression struct {
		Base
		Argument Expression
	}

	YieldExpression struct {
		Base
		Argument Expression
		Delegate bool
	}

	// ImportExpression is a dynamic `import(source)`.
	ImportExpression struct {
		Base
		Source Expression
	}

	// MetaProperty is `new.target` or `import.meta`.
	MetaProperty struct {
		Base
		Meta     string
		Property string
	}
)

// ---- Patterns ----

type (
	// BindingIdentifier is a name introduced by a declaration.
	BindingIdentifier struct {
		Base
		Name string
	}

	ObjectPattern struct {
		Base
		Properties []*PatternProperty
		Rest       Pattern
	}

	PatternProperty struct {
		Base
		Key       Expression
		Value     Pattern
		Computed  bool
		Shorthand bool
	}

	// ArrayPattern elements are nil for holes.
	ArrayPattern struct {
		Base
		Elements []Pattern
		Rest     Pattern
	}

	AssignmentPattern struct {
		Base
		Left  Pattern
		Right Expression
	}
)

func (*ExpressionStatement) stmtNode() {}
func (*VariableDeclaration) stmtNode() {}
func (*BlockStatement) stmtNode() {}
func (*EmptyStatement) stmtNode() {}
func (*DebuggerStatement) stmtNode() {}
func (*IfStatement) stmtNode() {}
func (*WhileStatement) stmtNode() {}
func (*DoWhileStatement) stmtNode() {}
func (*ForStatement) stmtNode() {}
func (*ForInStatement) stmtNode() {}
func (*WithStatement) stmtNode() {}
func (*ReturnStatement) stmtNode() {}
func (*ThrowStatement) stmtNode() {}
func (*BreakStatement) stmtNode() {}
func (*ContinueStatement) stmtNode() {}
func (*LabeledStatement) stmtNode() {}
func (*TryStatement) stmtNode() {}
func (*SwitchStatement) stmtNode() {}
func (*EnumDeclaration) stmtNode() {}
func (*TypeAliasDeclaration) stmtNode() {}
func (*InterfaceDeclaration) stmtNode() {}
func (*ModuleDeclaration) stmtNode() {}
func (*ImportDeclaration) stmtNode() {}
func (*ExportNamedDeclaration) stmtNode() {}
func (*ExportDefaultDeclaration) stmtNode() {}
func (*ExportAllDeclaration) stmtNode() {}
func (*Function) stmtNode() {}
func (*Class) stmtNode() {}

func (*Function) exprNode() {}
func (*Class) exprNode() {}
func (*Identifier) exprNode() {}
func (*IdentifierName) exprNode() {}
func (*PrivateName) exprNode() {}
func (*NumberLiteral) exprNode() {}
func (*StringLiteral) exprNode() {}
func (*BooleanLiteral) exprNode() {}
func (*NullLiteral) exprNode() {}
func (*BigIntLiteral) exprNode() {}
func (*RegExpLiteral) exprNode() {}
func (*TemplateLiteral) exprNode() {}
func (*TaggedTemplateExpression) exprNode() {}
func (*ArrayExpression) exprNode() {}
func (*ObjectExpression) exprNode() {}
func (*SpreadElement) exprNode() {}
func (*UnaryExpression) exprNode() {}
func (*UpdateExpression) exprNode() {}
func (*BinaryExpression) exprNode() {}
func (*LogicalExpression) exprNode() {}
func (*AssignmentExpression) exprNode() {}
func (*ConditionalExpression) exprNode() {}
func (*CallExpression) exprNode() {}
func (*NewExpression) exprNode() {}
func (*MemberExpression) exprNode() {}
func (*SequenceExpression) exprNode() {}
func (*ParenthesizedExpression) exprNode() {}
func (*ThisExpression) exprNode() {}
func (*SuperExpression) exprNode() {}
func (*AwaitExpression) exprNode() {}
func (*YieldExpression) exprNode() {}
func (*ImportExpression) exprNode() {}
func (*MetaProperty) exprNode() {}

func (*Identifier) patternNode() {}
func (*MemberExpression) patternNode() {}
func (*BindingIdentifier) patternNode() {}
func (*ObjectPattern) patternNode() {}
func (*ArrayPattern) patternNode() {}
func (*AssignmentPattern) patternNode() {}

func (*MethodDefinition) memberNode() {}
func (*PropertyDefinition) memberNode() {}
func (*StaticBlock) memberNode() {}

// IsLoop reports whether the statement is an iteration statement.
func IsLoop(s Statement) bool {
	switch s.(type) {
	case *WhileStatement, *DoWhileStatement, *ForStatement, *ForInStatement:
		return true
	}
	return false
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expression) Expression {
	for {
		p, ok := e.(*ParenthesizedExpression)
		if !ok {
			return e
		}
		e = p.Expression
	}
}
