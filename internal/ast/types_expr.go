package ast

import (
	"strings"

	"github.com/vexlang/vexc/pkg/token"
)

// TypeExpr is a type exactly as written in source, before C4 elaborates it
// into an internal/types.Type (§3.3, §4.2 "Types as written in source").
type TypeExpr interface {
	Node
	typeExprNode()
}

// NamedType is a bare or generic-applied type name: `i32`, `Vec<T>`.
type NamedType struct {
	Name string
	Args []TypeExpr
	Sp   token.Span
}

func (t *NamedType) Span() token.Span { return t.Sp }
func (t *NamedType) typeExprNode()    {}
func (t *NamedType) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// RefType is `&T` or `&T!` (§3.3 Reference).
type RefType struct {
	Elem    TypeExpr
	Mutable bool
	Sp      token.Span
}

func (t *RefType) Span() token.Span { return t.Sp }
func (t *RefType) typeExprNode()    {}
func (t *RefType) String() string {
	if t.Mutable {
		return "&" + t.Elem.String() + "!"
	}
	return "&" + t.Elem.String()
}

// RawPtrType is `*T` or `*T!` (§3.3 RawPointer).
type RawPtrType struct {
	Elem    TypeExpr
	Mutable bool
	Sp      token.Span
}

func (t *RawPtrType) Span() token.Span { return t.Sp }
func (t *RawPtrType) typeExprNode()    {}
func (t *RawPtrType) String() string {
	if t.Mutable {
		return "*" + t.Elem.String() + "!"
	}
	return "*" + t.Elem.String()
}

// ArrayType is `[T; N]` (§3.3 Array). N is kept as an expression since it
// must be a compile-time natural number, evaluated later by C4/C5.
type ArrayType struct {
	Elem TypeExpr
	Size Expr
	Sp   token.Span
}

func (t *ArrayType) Span() token.Span { return t.Sp }
func (t *ArrayType) typeExprNode()    {}
func (t *ArrayType) String() string   { return "[" + t.Elem.String() + "; " + t.Size.String() + "]" }

// SliceType is `&[T]` / `&[T]!` (§3.3 Slice).
type SliceType struct {
	Elem    TypeExpr
	Mutable bool
	Sp      token.Span
}

func (t *SliceType) Span() token.Span { return t.Sp }
func (t *SliceType) typeExprNode()    {}
func (t *SliceType) String() string {
	if t.Mutable {
		return "&[" + t.Elem.String() + "]!"
	}
	return "&[" + t.Elem.String() + "]"
}

// TupleType is `(T1, ..., Tn)` (§3.3 Tuple).
type TupleType struct {
	Elems []TypeExpr
	Sp    token.Span
}

func (t *TupleType) Span() token.Span { return t.Sp }
func (t *TupleType) typeExprNode()    {}
func (t *TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FuncType is `fn(T1,...): R` (§3.3 Function pointer).
type FuncType struct {
	Params []TypeExpr
	Result TypeExpr
	Sp     token.Span
}

func (t *FuncType) Span() token.Span { return t.Sp }
func (t *FuncType) typeExprNode()    {}
func (t *FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	s := "fn(" + strings.Join(parts, ", ") + ")"
	if t.Result != nil {
		s += ": " + t.Result.String()
	}
	return s
}

// UnionType is `(T1 | T2 | ... | Tn)` (§3.3 Union). Member order is kept
// exactly as written: it fixes the tag assignment at elaboration (§3.3).
type UnionType struct {
	Members []TypeExpr
	Sp      token.Span
}

func (t *UnionType) Span() token.Span { return t.Sp }
func (t *UnionType) typeExprNode()    {}
func (t *UnionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// IntersectionType is `(C1 & C2 & ... & Cn)`, valid only as a bound
// (§3.3 Intersection).
type IntersectionType struct {
	Members []TypeExpr
	Sp      token.Span
}

func (t *IntersectionType) Span() token.Span { return t.Sp }
func (t *IntersectionType) typeExprNode()    {}
func (t *IntersectionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, " & ") + ")"
}

// ConditionalType is `T extends U ? X : Y`; binders introduced by `infer`
// appear as InferType nodes inside Extends (§3.3 Conditional, §4.5).
type ConditionalType struct {
	Checked TypeExpr
	Extends TypeExpr
	Then    TypeExpr
	Else    TypeExpr
	Sp      token.Span
}

func (t *ConditionalType) Span() token.Span { return t.Sp }
func (t *ConditionalType) typeExprNode()    {}
func (t *ConditionalType) String() string {
	return t.Checked.String() + " extends " + t.Extends.String() + " ? " + t.Then.String() + " : " + t.Else.String()
}

// InferType is an `infer X` binder appearing inside a ConditionalType's
// Extends clause.
type InferType struct {
	Name string
	Sp   token.Span
}

func (t *InferType) Span() token.Span { return t.Sp }
func (t *InferType) typeExprNode()    {}
func (t *InferType) String() string   { return "infer " + t.Name }
