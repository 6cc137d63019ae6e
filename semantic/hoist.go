// Copyright © 2024 The ELPS authors

package semantic

import (
	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
)

// hoist binds the declarations a statement list makes visible before its
// first statement runs. Lexical declarations of the list itself bind in the
// current scope. When the current scope receives var declarations, every
// var in the list and its nested statements binds there too; nested
// functions, classes and namespaces are not entered.
func (a *analyzer) hoist(body []ast.Statement) {
	for _, s := range body {
		a.hoistLexical(s, 0)
	}
	if a.scopes.Flags(a.scope).IsVar() {
		for _, s := range body {
			a.hoistVar(s, 0)
		}
	}
}

func (a *analyzer) hoistLexical(s ast.Statement, extra SymbolFlags) {
	switch s := s.(type) {
	case *ast.VariableDeclaration:
		if s.Kind != ast.Var {
			a.hoistDeclarators(s, a.scope, extra)
		}
	case *ast.Function:
		if s.Name != nil {
			a.declare(a.scope, s.Name, SymbolFunction|ambient(s.Declare)|extra, s.ID)
		}
	case *ast.Class:
		if s.Name != nil {
			a.declare(a.scope, s.Name, SymbolClass|ambient(s.Declare)|extra, s.ID)
		}
	case *ast.EnumDeclaration:
		flags := SymbolRegularEnum
		if s.Const {
			flags = SymbolConstEnum
		}
		a.declare(a.scope, s.Name, flags|ambient(s.Declare)|extra, s.ID)
	case *ast.ModuleDeclaration:
		if s.Name != nil {
			a.declare(a.scope, s.Name, SymbolNameSpaceModule|SymbolValueModule|ambient(s.Declare)|extra, s.ID)
		}
	case *ast.TypeAliasDeclaration:
		a.declare(a.scope, s.Name, SymbolTypeAlias|ambient(s.Declare)|extra, s.ID)
	case *ast.InterfaceDeclaration:
		a.declare(a.scope, s.Name, SymbolInterface|ambient(s.Declare)|extra, s.ID)
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
			a.hoistLexical(s.Declaration, extra|SymbolExport)
		}
	case *ast.ExportDefaultDeclaration:
		if d, ok := s.Declaration.(ast.Statement); ok {
			a.hoistLexical(d, extra|SymbolExport)
		}
	}
}

func (a *analyzer) hoistVar(s ast.Statement, extra SymbolFlags) {
	switch s := s.(type) {
	case *ast.VariableDeclaration:
		if s.Kind == ast.Var {
			a.hoistDeclarators(s, a.scope, extra)
		}
	case *ast.BlockStatement:
		a.hoistVarList(s.Body)
	case *ast.IfStatement:
		a.hoistVar(s.Consequent, 0)
		if s.Alternate != nil {
			a.hoistVar(s.Alternate, 0)
		}
	case *ast.WhileStatement:
		a.hoistVar(s.Body, 0)
	case *ast.WithStatement:
		a.hoistVar(s.Body, 0)
	case *ast.DoWhileStatement:
		a.hoistVar(s.Body, 0)
	case *ast.ForStatement:
		if d, ok := s.Init.(*ast.VariableDeclaration); ok {
			a.hoistVar(d, 0)
		}
		a.hoistVar(s.Body, 0)
	case *ast.ForInStatement:
		if d, ok := s.Left.(*ast.VariableDeclaration); ok {
			a.hoistVar(d, 0)
		}
		a.hoistVar(s.Body, 0)
	case *ast.LabeledStatement:
		a.hoistVar(s.Body, 0)
	case *ast.TryStatement:
		if s.Block != nil {
			a.hoistVarList(s.Block.Body)
		}
		if s.Handler != nil && s.Handler.Body != nil {
			a.hoistVarList(s.Handler.Body.Body)
		}
		if s.Finalizer != nil {
			a.hoistVarList(s.Finalizer.Body)
		}
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			a.hoistVarList(c.Consequent)
		}
	case *ast.ExportNamedDeclaration:
		if s.Declaration != nil {
			a.hoistVar(s.Declaration, extra|SymbolExport)
		}
	}
}

func (a *analyzer) hoistVarList(body []ast.Statement) {
	for _, s := range body {
		a.hoistVar(s, 0)
	}
}

func (a *analyzer) hoistDeclarators(d *ast.VariableDeclaration, scope ScopeID, extra SymbolFlags) {
	flags := declarationFlags(d.Kind) | ambient(d.Declare) | extra
	for _, decl := range d.Declarations {
		for _, id := range astutil.BindingNames(decl.Target) {
			a.declare(scope, id, flags, decl.ID)
		}
	}
}

func declarationFlags(kind ast.VarKind) SymbolFlags {
	switch kind {
	case ast.Var:
		return SymbolFunctionScopedVariable
	case ast.Let:
		return SymbolBlockScopedVariable
	default:
		return SymbolBlockScopedVariable | SymbolConstVariable
	}
}

func ambient(declare bool) SymbolFlags {
	if declare {
		return SymbolAmbient
	}
	return 0
}

// hasUseStrict reports whether the directive prologue of body contains
// "use strict".
func hasUseStrict(body []ast.Statement) bool {
	for _, s := range body {
		es, ok := s.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.StringLiteral)
		if !ok {
			return false
		}
		if lit.Value == "use strict" {
			return true
		}
	}
	return false
}
