// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
)

// StatementLists calls fn for every statement list in the tree, in source
// order. A statement in a single-statement position (an if branch or a loop
// body) is passed as a list of one.
func StatementLists(root ast.Node, fn func(list []ast.Statement)) {
	astutil.Inspect(root, func(n ast.Node) bool {
		for _, list := range statementLists(n) {
			fn(list)
		}
		return true
	})
}

func statementLists(n ast.Node) [][]ast.Statement {
	one := func(s ast.Statement) [][]ast.Statement {
		if s == nil {
			return nil
		}
		if _, ok := s.(*ast.BlockStatement); ok {
			return nil
		}
		return [][]ast.Statement{{s}}
	}
	switch n := n.(type) {
	case *ast.Program:
		return [][]ast.Statement{n.Body}
	case *ast.BlockStatement:
		return [][]ast.Statement{n.Body}
	case *ast.StaticBlock:
		return [][]ast.Statement{n.Body}
	case *ast.ModuleDeclaration:
		return [][]ast.Statement{n.Body}
	case *ast.SwitchCase:
		return [][]ast.Statement{n.Consequent}
	case *ast.IfStatement:
		return append(one(n.Consequent), one(n.Alternate)...)
	case *ast.WhileStatement:
		return one(n.Body)
	case *ast.WithStatement:
		return one(n.Body)
	case *ast.DoWhileStatement:
		return one(n.Body)
	case *ast.ForStatement:
		return one(n.Body)
	case *ast.ForInStatement:
		return one(n.Body)
	case *ast.LabeledStatement:
		return one(n.Body)
	}
	return nil
}

// TypeofOperands returns the ids of identifiers that are the direct
// operand of a typeof expression. Such references may name undeclared
// globals without error.
func TypeofOperands(root ast.Node) map[ast.NodeID]bool {
	out := make(map[ast.NodeID]bool)
	astutil.Inspect(root, func(n ast.Node) bool {
		u, ok := n.(*ast.UnaryExpression)
		if !ok || u.Operator != ast.UnaryTypeof {
			return true
		}
		if id, ok := ast.Unparen(u.Argument).(*ast.Identifier); ok {
			out[id.ID] = true
		}
		return true
	})
	return out
}

// ParamNames returns the binding names of a function's parameters in
// declaration order, including the rest parameter.
func ParamNames(fn *ast.Function) []*ast.BindingIdentifier {
	var out []*ast.BindingIdentifier
	for _, p := range fn.Params {
		out = append(out, astutil.BindingNames(p)...)
	}
	if fn.Rest != nil {
		out = append(out, astutil.BindingNames(fn.Rest)...)
	}
	return out
}

// hasBody reports whether a function has an implementation. Overload
// signatures and abstract or ambient declarations do not.
func hasBody(fn *ast.Function) bool {
	return !fn.Declare && (fn.Body != nil || fn.ExprBody != nil)
}
