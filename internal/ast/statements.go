package ast

import (
	"strings"

	"github.com/vexlang/vexc/pkg/token"
)

// LetStmt is `let`/`let!` with an optional type annotation (§4.2, §3.4).
type LetStmt struct {
	Name    string
	Mutable bool
	Type    TypeExpr // nil if inferred
	Value   Expr
	Sp      token.Span
}

func (s *LetStmt) Span() token.Span { return s.Sp }
func (s *LetStmt) stmtNode()        {}
func (s *LetStmt) String() string {
	kw := "let"
	if s.Mutable {
		kw = "let!"
	}
	return kw + " " + s.Name + " = " + s.Value.String() + ";"
}

// AssignStmt is `target op= value` for `=` and every compound form (§6.6).
type AssignStmt struct {
	Target Expr
	Op     token.Kind // ASSIGN or one of the *_ASSIGN compound forms
	Value  Expr
	Sp     token.Span
}

func (s *AssignStmt) Span() token.Span { return s.Sp }
func (s *AssignStmt) stmtNode()        {}
func (s *AssignStmt) String() string {
	return s.Target.String() + " " + s.Op.String() + " " + s.Value.String() + ";"
}

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	X  Expr
	Sp token.Span
}

func (s *ExprStmt) Span() token.Span { return s.Sp }
func (s *ExprStmt) stmtNode()        {}
func (s *ExprStmt) String() string   { return s.X.String() + ";" }

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	Value Expr // nil for bare `return;`
	Sp    token.Span
}

func (s *ReturnStmt) Span() token.Span { return s.Sp }
func (s *ReturnStmt) stmtNode()        {}
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// BreakStmt is `break;`.
type BreakStmt struct{ Sp token.Span }

func (s *BreakStmt) Span() token.Span { return s.Sp }
func (s *BreakStmt) stmtNode()        {}
func (s *BreakStmt) String() string   { return "break;" }

// ContinueStmt is `continue;`.
type ContinueStmt struct{ Sp token.Span }

func (s *ContinueStmt) Span() token.Span { return s.Sp }
func (s *ContinueStmt) stmtNode()        {}
func (s *ContinueStmt) String() string   { return "continue;" }

// DeferStmt is `defer <expr>;`; it schedules Expr to run at the enclosing
// scope's exit in LIFO order (§4.2, §5).
type DeferStmt struct {
	Call Expr
	Sp   token.Span
}

func (s *DeferStmt) Span() token.Span { return s.Sp }
func (s *DeferStmt) stmtNode()        {}
func (s *DeferStmt) String() string   { return "defer " + s.Call.String() + ";" }

// IfLetStmt is `if let pattern = expr [if guard] { ... } else { ... }`
// (§4.2 "if-let with optional guard").
type IfLetStmt struct {
	Pattern Pattern
	Value   Expr
	Guard   Expr // optional
	Then    *BlockStmt
	Else    Node // *BlockStmt or *IfLetStmt, may be nil
	Sp      token.Span
}

func (s *IfLetStmt) Span() token.Span { return s.Sp }
func (s *IfLetStmt) stmtNode()        {}
func (s *IfLetStmt) String() string   { return "if let " + s.Pattern.String() + " = " + s.Value.String() + " {...}" }

// ForStmt is `for x in iter { ... }`.
type ForStmt struct {
	Binding string
	Iter    Expr
	Body    *BlockStmt
	Sp      token.Span
}

func (s *ForStmt) Span() token.Span { return s.Sp }
func (s *ForStmt) stmtNode()        {}
func (s *ForStmt) String() string   { return "for " + s.Binding + " in " + s.Iter.String() + " {...}" }

// WhileStmt is `while cond { ... }`.
type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	Sp   token.Span
}

func (s *WhileStmt) Span() token.Span { return s.Sp }
func (s *WhileStmt) stmtNode()        {}
func (s *WhileStmt) String() string   { return "while " + s.Cond.String() + " {...}" }

// LoopStmt is an unconditional `loop { ... }`.
type LoopStmt struct {
	Body *BlockStmt
	Sp   token.Span
}

func (s *LoopStmt) Span() token.Span { return s.Sp }
func (s *LoopStmt) stmtNode()        {}
func (s *LoopStmt) String() string   { return "loop {...}" }

// UnsafeStmt is `unsafe { ... }`: the only scope in which raw-pointer
// arithmetic is permitted (§3.3 RawPointer).
type UnsafeStmt struct {
	Body *BlockStmt
	Sp   token.Span
}

func (s *UnsafeStmt) Span() token.Span { return s.Sp }
func (s *UnsafeStmt) stmtNode()        {}
func (s *UnsafeStmt) String() string   { return "unsafe " + s.Body.String() }

// BlockStmt is `{ stmts... }`; the trailing expression (if the last
// element is an ExprStmt without a terminating `;`) is this block's value
// when used in expression position.
type BlockStmt struct {
	Stmts []Stmt
	Sp    token.Span
}

func (s *BlockStmt) Span() token.Span { return s.Sp }
func (s *BlockStmt) stmtNode()        {}
func (s *BlockStmt) exprNode()        {}
func (s *BlockStmt) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
