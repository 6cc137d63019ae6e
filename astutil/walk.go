// Copyright © 2024 The ELPS authors

// Package astutil provides shared syntax tree walking utilities.
//
// These helpers are used by the lint, lsp and report packages for
// traversing parsed programs.
package astutil

import "github.com/luthersystems/jsem/ast"

// Walk calls fn for every node in the tree, depth-first in source order.
// parent is nil for the root.
func Walk(root ast.Node, fn func(node ast.Node, parent ast.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	ast.EachChild(node, func(child ast.Node) {
		walkNode(child, node, depth+1, fn)
	})
}

// Inspect traverses the tree depth-first. If fn returns false the children
// of that node are skipped.
func Inspect(root ast.Node, fn func(ast.Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	ast.EachChild(root, func(child ast.Node) {
		Inspect(child, fn)
	})
}

// Index maps every node id in the tree to its node.
func Index(root ast.Node) map[ast.NodeID]ast.Node {
	idx := make(map[ast.NodeID]ast.Node)
	Inspect(root, func(n ast.Node) bool {
		idx[n.NodeID()] = n
		return true
	})
	return idx
}

// NodeAt returns the innermost node whose span contains the byte offset, or
// nil when no node does. Sibling spans never overlap, so the last containing
// node in pre-order is the innermost one.
func NodeAt(root ast.Node, off uint32) ast.Node {
	var found ast.Node
	Inspect(root, func(n ast.Node) bool {
		if n.Loc().Contains(off) {
			found = n
		}
		return true
	})
	return found
}

// CalleeName returns the dotted name of a call's callee, such as "f" or
// "console.log", or "" when the callee is not a plain name chain.
func CalleeName(call *ast.CallExpression) string {
	return dottedName(call.Callee)
}

func dottedName(e ast.Expression) string {
	switch e := ast.Unparen(e).(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.MemberExpression:
		if e.Computed {
			return ""
		}
		prop, ok := e.Property.(*ast.IdentifierName)
		if !ok {
			return ""
		}
		obj := dottedName(e.Object)
		if obj == "" {
			return ""
		}
		return obj + "." + prop.Name
	}
	return ""
}

// BindingNames returns every name bound by a pattern, in source order.
func BindingNames(p ast.Pattern) []*ast.BindingIdentifier {
	var out []*ast.BindingIdentifier
	Inspect(p, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.BindingIdentifier:
			out = append(out, n)
		case *ast.AssignmentPattern:
			out = append(out, BindingNames(n.Left)...)
			return false
		case *ast.PatternProperty:
			if n.Value != nil {
				out = append(out, BindingNames(n.Value)...)
			}
			return false
		}
		return true
	})
	return out
}
