// Copyright © 2024 The ELPS authors

package ast

// EachChild calls fn for every direct child of n in source order. Nil
// children (absent optional parts, array holes) are skipped.
func EachChild(n Node, fn func(Node)) {
	c := childVisitor(fn)
	switch n := n.(type) {
	case *Program:
		c.stmts(n.Body)
	case *ExpressionStatement:
		c.expr(n.Expression)
	case *VariableDeclaration:
		for _, d := range n.Declarations {
			c.node(d)
		}
	case *VariableDeclarator:
		c.pattern(n.Target)
		c.expr(n.Init)
	case *BlockStatement:
		c.stmts(n.Body)
	case *IfStatement:
		c.expr(n.Test)
		c.stmt(n.Consequent)
		c.stmt(n.Alternate)
	case *WhileStatement:
		c.expr(n.Test)
		c.stmt(n.Body)
	case *DoWhileStatement:
		c.stmt(n.Body)
		c.expr(n.Test)
	case *ForStatement:
		if n.Init != nil {
			c.node(n.Init)
		}
		c.expr(n.Test)
		c.expr(n.Update)
		c.stmt(n.Body)
	case *ForInStatement:
		if n.Left != nil {
			c.node(n.Left)
		}
		c.expr(n.Right)
		c.stmt(n.Body)
	case *WithStatement:
		c.expr(n.Object)
		c.stmt(n.Body)
	case *ReturnStatement:
		c.expr(n.Argument)
	case *ThrowStatement:
		c.expr(n.Argument)
	case *LabeledStatement:
		c.stmt(n.Body)
	case *TryStatement:
		if n.Block != nil {
			c.node(n.Block)
		}
		if n.Handler != nil {
			c.node(n.Handler)
		}
		if n.Finalizer != nil {
			c.node(n.Finalizer)
		}
	case *CatchClause:
		c.pattern(n.Param)
		if n.Body != nil {
			c.node(n.Body)
		}
	case *SwitchStatement:
		c.expr(n.Discriminant)
		for _, sc := range n.Cases {
			c.node(sc)
		}
	case *SwitchCase:
		c.expr(n.Test)
		c.stmts(n.Consequent)
	case *EnumDeclaration:
		c.binding(n.Name)
		for _, m := range n.Members {
			c.node(m)
		}
	case *EnumMember:
		c.binding(n.Name)
		c.expr(n.Initializer)
	case *TypeAliasDeclaration:
		c.binding(n.Name)
	case *InterfaceDeclaration:
		c.binding(n.Name)
	case *ModuleDeclaration:
		c.binding(n.Name)
		c.stmts(n.Body)
	case *ImportDeclaration:
		for _, s := range n.Specifiers {
			c.node(s)
		}
	case *ImportSpecifier:
		c.binding(n.Local)
	case *ExportNamedDeclaration:
		c.stmt(n.Declaration)
		for _, s := range n.Specifiers {
			c.node(s)
		}
	case *ExportSpecifier:
		if n.Local != nil {
			c.node(n.Local)
		}
	case *ExportDefaultDeclaration:
		if n.Declaration != nil {
			c.node(n.Declaration)
		}
	case *Function:
		c.binding(n.Name)
		for _, p := range n.Params {
			c.pattern(p)
		}
		c.pattern(n.Rest)
		if n.Body != nil {
			c.node(n.Body)
		}
		c.expr(n.ExprBody)
	case *Class:
		c.binding(n.Name)
		c.expr(n.SuperClass)
		for _, m := range n.Body {
			c.node(m)
		}
	case *MethodDefinition:
		c.expr(n.Key)
		if n.Value != nil {
			c.node(n.Value)
		}
	case *PropertyDefinition:
		c.expr(n.Key)
		c.expr(n.Value)
	case *StaticBlock:
		c.stmts(n.Body)
	case *TemplateLiteral:
		c.exprs(n.Expressions)
	case *TaggedTemplateExpression:
		c.expr(n.Tag)
		if n.Quasi != nil {
			c.node(n.Quasi)
		}
	case *ArrayExpression:
		c.exprs(n.Elements)
	case *ObjectExpression:
		for _, p := range n.Properties {
			if p != nil {
				c.node(p)
			}
		}
	case *Property:
		if !n.Shorthand {
			c.expr(n.Key)
		}
		c.expr(n.Value)
	case *SpreadElement:
		c.expr(n.Argument)
	case *UnaryExpression:
		c.expr(n.Argument)
	case *UpdateExpression:
		c.expr(n.Argument)
	case *BinaryExpression:
		c.expr(n.Left)
		c.expr(n.Right)
	case *LogicalExpression:
		c.expr(n.Left)
		c.expr(n.Right)
	case *AssignmentExpression:
		c.pattern(n.Left)
		c.expr(n.Right)
	case *ConditionalExpression:
		c.expr(n.Test)
		c.expr(n.Consequent)
		c.expr(n.Alternate)
	case *CallExpression:
		c.expr(n.Callee)
		c.exprs(n.Arguments)
	case *NewExpression:
		c.expr(n.Callee)
		c.exprs(n.Arguments)
	case *MemberExpression:
		c.expr(n.Object)
		c.expr(n.Property)
	case *SequenceExpression:
		c.exprs(n.Expressions)
	case *ParenthesizedExpression:
		c.expr(n.Expression)
	case *AwaitExpression:
		c.expr(n.Argument)
	case *YieldExpression:
		c.expr(n.Argument)
	case *ImportExpression:
		c.expr(n.Source)
	case *ObjectPattern:
		for _, p := range n.Properties {
			c.node(p)
		}
		c.pattern(n.Rest)
	case *PatternProperty:
		if !n.Shorthand {
			c.expr(n.Key)
		}
		c.pattern(n.Value)
	case *ArrayPattern:
		for _, e := range n.Elements {
			c.pattern(e)
		}
		c.pattern(n.Rest)
	case *AssignmentPattern:
		c.pattern(n.Left)
		c.expr(n.Right)
	}
}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node
	EachChild(n, func(c Node) { out = append(out, c) })
	return out
}

type childVisitor func(Node)

func (c childVisitor) node(n Node) { c(n) }

func (c childVisitor) stmt(s Statement) {
	if s != nil {
		c(s)
	}
}

func (c childVisitor) stmts(list []Statement) {
	for _, s := range list {
		c.stmt(s)
	}
}

func (c childVisitor) expr(e Expression) {
	if e != nil {
		c(e)
	}
}

func (c childVisitor) exprs(list []Expression) {
	for _, e := range list {
		c.expr(e)
	}
}

func (c childVisitor) pattern(p Pattern) {
	if p != nil {
		c(p)
	}
}

func (c childVisitor) binding(b *BindingIdentifier) {
	if b != nil {
		c(b)
	}
}
