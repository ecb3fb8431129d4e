package borrow

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

// binding is one local/parameter/self symbol tracked by the borrow
// checker, independent of (but parallel to) sema's own symbol table —
// §4.6 only needs a binding's name, mutability flag, and type.
type binding struct {
	Name    string
	Mutable bool
	Type    types.Type
}

// env is a scope stack of bindings, pushed/popped in lockstep with
// checkBlock the same way internal/sema's own scopes are.
type env struct {
	scopes []map[string]*binding
}

func newEnv() *env {
	e := &env{}
	e.push()
	return e
}

func (e *env) push() { e.scopes = append(e.scopes, map[string]*binding{}) }
func (e *env) pop()   { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *env) define(b *binding) {
	e.scopes[len(e.scopes)-1][b.Name] = b
}

func (e *env) lookup(name string) (*binding, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}

// rootIdent recovers the base identifier an L-value expression resolves
// through, unwrapping field access, indexing, and dereference so
// `a.b[0].c` and `*p` both resolve to the binding that owns the storage
// (§4.6 "each intermediate field access is legal").
func rootIdent(e ast.Expr) (string, bool) {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name, true
	case *ast.FieldAccessExpr:
		return rootIdent(x.Receiver)
	case *ast.IndexExpr:
		return rootIdent(x.Receiver)
	case *ast.UnaryExpr:
		if x.Op == token.STAR {
			return rootIdent(x.Operand)
		}
	}
	return "", false
}

// fieldPath returns the dotted field path from the root binding to e, for
// partial-move tracking (`x.a.b` -> "a.b"); an empty string means e is the
// root binding itself.
func fieldPath(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.FieldAccessExpr:
		prefix := fieldPath(x.Receiver)
		if prefix == "" {
			return x.Field
		}
		return prefix + "." + x.Field
	case *ast.IndexExpr:
		return fieldPath(x.Receiver)
	case *ast.UnaryExpr:
		if x.Op == token.STAR {
			return fieldPath(x.Operand)
		}
	}
	return ""
}
