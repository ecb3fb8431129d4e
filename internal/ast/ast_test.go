package ast

import (
	"testing"

	"github.com/vexlang/vexc/pkg/token"
)

func TestBinaryExprString(t *testing.T) {
	e := &BinaryExpr{
		Op:    token.PLUS,
		Left:  &IntLiteral{Value: 1},
		Right: &IntLiteral{Value: 2},
	}
	if got, want := e.String(), "(1 + 2)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUnionTypeStringPreservesDeclaredOrder(t *testing.T) {
	u := &UnionType{Members: []TypeExpr{
		&NamedType{Name: "i32"},
		&NamedType{Name: "string"},
	}}
	if got, want := u.String(), "(i32 | string)"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFunctionDeclExportedVisibility(t *testing.T) {
	d := &FunctionDecl{Name: "main", Exported: true}
	if !d.IsExported() {
		t.Fatal("expected exported")
	}
	if d.DeclName() != "main" {
		t.Fatalf("got %q", d.DeclName())
	}
}

func TestBlockStmtIsAlsoAnExpr(t *testing.T) {
	var _ Expr = &BlockStmt{}
	var _ Stmt = &BlockStmt{}
}
