// Package ast defines the abstract syntax tree produced by the parser (C2)
// for one Vex source file. Node shapes mirror the grammar in spec §4.2.
package ast

import (
	"strings"

	"github.com/vexlang/vexc/pkg/token"
)

// Node is the base interface every AST node implements.
type Node interface {
	Span() token.Span
	String() string
}

// Expr is any node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that performs an action.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is a top-level or nested declaration (§3.2).
type Decl interface {
	Node
	declNode()
	DeclName() string
	IsExported() bool
}

// Visibility is the exported/private flag every declaration carries (§3.2).
type Visibility int

const (
	Private Visibility = iota
	Exported
)

// File is the parsed form of one SourceFile: an ordered list of
// declarations, exactly as produced by C2 before C3 expands imports.
type File struct {
	Path    string
	Imports []*ImportDecl
	Decls   []Decl
}

func (f *File) Span() token.Span {
	if len(f.Decls) > 0 {
		return f.Decls[0].Span()
	}
	return token.Span{File: f.Path}
}

func (f *File) String() string {
	var b strings.Builder
	for _, imp := range f.Imports {
		b.WriteString(imp.String())
		b.WriteString("\n")
	}
	for _, d := range f.Decls {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Ident is a bare identifier reference.
type Ident struct {
	Name string
	Sp   token.Span
}

func (i *Ident) Span() token.Span { return i.Sp }
func (i *Ident) String() string   { return i.Name }
func (i *Ident) exprNode()        {}

// TypeParam is one generic parameter with its optional contract bound set
// (§3.2 "zero or more type parameters with optional contract bounds").
type TypeParam struct {
	Name   string
	Bounds []TypeExpr // contracts intersected as a bound
	Sp     token.Span
}

// Param is one function parameter. Grouping ("a, b, c: T") is expanded by
// the parser into one Param per name sharing the same Type. Default and
// Variadic support §4.2's parameter grammar.
type Param struct {
	Name     string
	Type     TypeExpr
	Default  Expr
	Variadic bool
	Sp       token.Span
}
