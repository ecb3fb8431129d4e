package ast

import (
	"strconv"
	"strings"

	"github.com/vexlang/vexc/pkg/token"
)

// IntLiteral is an integer literal with an optional type suffix (§4.5
// "integer literal without suffix infers i32").
type IntLiteral struct {
	Value  int64
	Suffix string
	Sp     token.Span
}

func (e *IntLiteral) Span() token.Span { return e.Sp }
func (e *IntLiteral) exprNode()        {}
func (e *IntLiteral) String() string   { return strconv.FormatInt(e.Value, 10) }

// FloatLiteral is a float literal with an optional type suffix.
type FloatLiteral struct {
	Value  float64
	Suffix string
	Sp     token.Span
}

func (e *FloatLiteral) Span() token.Span { return e.Sp }
func (e *FloatLiteral) exprNode()        {}
func (e *FloatLiteral) String() string   { return strconv.FormatFloat(e.Value, 'g', -1, 64) }

// StringLiteral is a plain string literal.
type StringLiteral struct {
	Value string
	Sp    token.Span
}

func (e *StringLiteral) Span() token.Span { return e.Sp }
func (e *StringLiteral) exprNode()        {}
func (e *StringLiteral) String() string   { return strconv.Quote(e.Value) }

// InterpStringPart is one piece of an InterpStringLiteral: either literal
// text (Expr == nil) or an embedded expression.
type InterpStringPart struct {
	Text string
	Expr Expr
}

// InterpStringLiteral is `f"...{expr}..."` (§4.1, §4.2).
type InterpStringLiteral struct {
	Parts []InterpStringPart
	Sp    token.Span
}

func (e *InterpStringLiteral) Span() token.Span { return e.Sp }
func (e *InterpStringLiteral) exprNode()        {}
func (e *InterpStringLiteral) String() string   { return "f\"...\"" }

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	Value bool
	Sp    token.Span
}

func (e *BoolLiteral) Span() token.Span { return e.Sp }
func (e *BoolLiteral) exprNode()        {}
func (e *BoolLiteral) String() string   { return strconv.FormatBool(e.Value) }

// NilLiteral is the `nil` literal.
type NilLiteral struct{ Sp token.Span }

func (e *NilLiteral) Span() token.Span { return e.Sp }
func (e *NilLiteral) exprNode()        {}
func (e *NilLiteral) String() string   { return "nil" }

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Sp     token.Span
}

func (e *CallExpr) Span() token.Span { return e.Sp }
func (e *CallExpr) exprNode()        {}
func (e *CallExpr) String() string   { return e.Callee.String() + "(...)" }

// MethodCallExpr is `recv.method(args...)`, resolved later (§4.4) to
// either an inherent method or a contract method.
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Sp       token.Span
}

func (e *MethodCallExpr) Span() token.Span { return e.Sp }
func (e *MethodCallExpr) exprNode()        {}
func (e *MethodCallExpr) String() string   { return e.Receiver.String() + "." + e.Method + "(...)" }

// FieldAccessExpr is `expr.field`.
type FieldAccessExpr struct {
	Receiver Expr
	Field    string
	Sp       token.Span
}

func (e *FieldAccessExpr) Span() token.Span { return e.Sp }
func (e *FieldAccessExpr) exprNode()        {}
func (e *FieldAccessExpr) String() string   { return e.Receiver.String() + "." + e.Field }

// VariantExpr is `Enum::Variant(...)` or the equivalent `Enum.Variant(...)`
// call form (§4.4).
type VariantExpr struct {
	Enum    string
	Variant string
	Args    []Expr
	Sp      token.Span
}

func (e *VariantExpr) Span() token.Span { return e.Sp }
func (e *VariantExpr) exprNode()        {}
func (e *VariantExpr) String() string   { return e.Enum + "::" + e.Variant + "(...)" }

// IndexExpr is `expr[index]`.
type IndexExpr struct {
	Receiver Expr
	Index    Expr
	Sp       token.Span
}

func (e *IndexExpr) Span() token.Span { return e.Sp }
func (e *IndexExpr) exprNode()        {}
func (e *IndexExpr) String() string   { return e.Receiver.String() + "[" + e.Index.String() + "]" }

// RangeExpr covers all five forms: a..b, a..=b, ..b, a.., .. (§4.2).
type RangeExpr struct {
	From      Expr // nil for `..b` and `..`
	To        Expr // nil for `a..` and `..`
	Inclusive bool
	Sp        token.Span
}

func (e *RangeExpr) Span() token.Span { return e.Sp }
func (e *RangeExpr) exprNode()        {}
func (e *RangeExpr) String() string {
	op := ".."
	if e.Inclusive {
		op = "..="
	}
	from, to := "", ""
	if e.From != nil {
		from = e.From.String()
	}
	if e.To != nil {
		to = e.To.String()
	}
	return from + op + to
}

// BinaryExpr is a binary operator expression, precedence per §6.3.
type BinaryExpr struct {
	Op    token.Kind
	Left  Expr
	Right Expr
	Sp    token.Span
}

func (e *BinaryExpr) Span() token.Span { return e.Sp }
func (e *BinaryExpr) exprNode()        {}
func (e *BinaryExpr) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// UnaryExpr is `!x`, `-x`, `*x`, `&x`, or `&x!` (§4.2).
type UnaryExpr struct {
	Op        token.Kind
	Operand   Expr
	RefMut    bool // true for the `&x!` mutable-reference form
	Sp        token.Span
}

func (e *UnaryExpr) Span() token.Span { return e.Sp }
func (e *UnaryExpr) exprNode()        {}
func (e *UnaryExpr) String() string {
	if e.Op == token.AMP && e.RefMut {
		return "&" + e.Operand.String() + "!"
	}
	return e.Op.String() + e.Operand.String()
}

// IfExpr is `if cond { ... } else { ... }`, usable as an expression.
type IfExpr struct {
	Cond Expr
	Then *BlockStmt
	Else Node // *BlockStmt or *IfExpr, nil if no else
	Sp   token.Span
}

func (e *IfExpr) Span() token.Span { return e.Sp }
func (e *IfExpr) exprNode()        {}
func (e *IfExpr) String() string   { return "if " + e.Cond.String() + " {...}" }

// MatchArm is one arm of a MatchExpr: either a pattern or a wildcard.
type MatchArm struct {
	Pattern   Pattern // nil for wildcard
	Wildcard  bool
	Guard     Expr // optional `if` guard
	Body      Node // Expr or *BlockStmt
}

// Pattern is a match-arm pattern: an enum variant, a union member type, a
// literal, or a binding.
type Pattern interface {
	Node
	patternNode()
}

// VariantPattern matches `Enum::Variant(binders...)`.
type VariantPattern struct {
	Enum     string
	Variant  string
	Bindings []string // "_" for an ignored field
	Sp       token.Span
}

func (p *VariantPattern) Span() token.Span { return p.Sp }
func (p *VariantPattern) patternNode()      {}
func (p *VariantPattern) String() string    { return p.Enum + "::" + p.Variant }

// TypePattern matches one member type of a union-typed scrutinee.
type TypePattern struct {
	Type    TypeExpr
	Binding string
	Sp      token.Span
}

func (p *TypePattern) Span() token.Span { return p.Sp }
func (p *TypePattern) patternNode()      {}
func (p *TypePattern) String() string    { return p.Type.String() }

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Value Expr
	Sp    token.Span
}

func (p *LiteralPattern) Span() token.Span { return p.Sp }
func (p *LiteralPattern) patternNode()      {}
func (p *LiteralPattern) String() string    { return p.Value.String() }

// MatchExpr is `match scrutinee { arms... }` (§4.2, exhaustiveness §4.5).
type MatchExpr struct {
	Scrutinee Expr
	Arms      []*MatchArm
	Sp        token.Span
}

func (e *MatchExpr) Span() token.Span { return e.Sp }
func (e *MatchExpr) exprNode()        {}
func (e *MatchExpr) String() string   { return "match " + e.Scrutinee.String() + " {...}" }

// BlockExpr wraps a BlockStmt used in expression position (e.g. as an if
// arm's value).
type BlockExpr struct {
	Block *BlockStmt
}

func (e *BlockExpr) Span() token.Span { return e.Block.Span() }
func (e *BlockExpr) exprNode()        {}
func (e *BlockExpr) String() string   { return e.Block.String() }

// StructLiteralField is `name: value` inside a StructLiteralExpr.
type StructLiteralField struct {
	Name  string
	Value Expr
}

// StructLiteralExpr is `Name { field: value, ... }`.
type StructLiteralExpr struct {
	Type   string
	Fields []StructLiteralField
	Sp     token.Span
}

func (e *StructLiteralExpr) Span() token.Span { return e.Sp }
func (e *StructLiteralExpr) exprNode()        {}
func (e *StructLiteralExpr) String() string   { return e.Type + "{...}" }

// TupleLiteralExpr is `(e1, e2, ...)`.
type TupleLiteralExpr struct {
	Elems []Expr
	Sp    token.Span
}

func (e *TupleLiteralExpr) Span() token.Span { return e.Sp }
func (e *TupleLiteralExpr) exprNode()        {}
func (e *TupleLiteralExpr) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ArrayLiteralExpr is `[e1, e2, ...]` or the repeat form `[e; N]` (§4.2).
type ArrayLiteralExpr struct {
	Elems  []Expr // nil when Repeat is set
	Repeat Expr
	Count  Expr
	Sp     token.Span
}

func (e *ArrayLiteralExpr) Span() token.Span { return e.Sp }
func (e *ArrayLiteralExpr) exprNode()        {}
func (e *ArrayLiteralExpr) String() string {
	if e.Repeat != nil {
		return "[" + e.Repeat.String() + "; " + e.Count.String() + "]"
	}
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AwaitExpr is `await expr`, valid only inside `async fn` bodies (§5, §9).
type AwaitExpr struct {
	Operand Expr
	Sp      token.Span
}

func (e *AwaitExpr) Span() token.Span { return e.Sp }
func (e *AwaitExpr) exprNode()        {}
func (e *AwaitExpr) String() string   { return "await " + e.Operand.String() }

// GoExpr is `go <call>`; the operand must be a call expression (§5).
type GoExpr struct {
	Call *CallExpr
	Sp   token.Span
}

func (e *GoExpr) Span() token.Span { return e.Sp }
func (e *GoExpr) exprNode()        {}
func (e *GoExpr) String() string   { return "go " + e.Call.String() }

// CastExpr is `expr as T`, the only way to convert across numeric sign,
// width, or float/int boundaries (§4.5 "never implicit").
type CastExpr struct {
	Operand Expr
	Target  TypeExpr
	Sp      token.Span
}

func (e *CastExpr) Span() token.Span { return e.Sp }
func (e *CastExpr) exprNode()        {}
func (e *CastExpr) String() string   { return e.Operand.String() + " as " + e.Target.String() }
