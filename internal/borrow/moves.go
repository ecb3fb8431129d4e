package borrow

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// moveState is the live/moved flow state for one Move-classified binding
// (§4.6 Phase 2, §3.4). A binding with a non-empty movedFields set has had
// only those struct fields moved out (a partial move); Whole tracks a move
// of the entire binding.
type moveState struct {
	Whole       bool
	MovedFields map[string]bool
}

// moveEnv carries the move-tracking table alongside the shared scope env;
// a binding only appears here once it is known to be Move (non-Copy),
// since Copy bindings never participate in move analysis (§3.4).
type moveEnv struct {
	*env
	states map[string]*moveState
}

func newMoveEnv() *moveEnv {
	return &moveEnv{env: newEnv(), states: map[string]*moveState{}}
}

// movesPass is Phase 2 of §4.6: a flow-sensitive live/moved analysis over
// Move-classified bindings.
type movesPass struct{}

func (movesPass) Name() string { return "moves" }

func (p movesPass) Run(b *body, ctx *sema.Context, sink *diag.Sink) {
	e := newMoveEnv()
	if b.SelfName != "" {
		e.define(&binding{Name: b.SelfName, Mutable: b.SelfMutable, Type: b.SelfType})
	}
	for i, param := range b.Params {
		var t types.Type
		if i < len(b.ParamTypes) {
			t = b.ParamTypes[i]
		}
		e.define(&binding{Name: param.Name, Type: t})
	}
	p.walkBlock(b.Block, e, ctx, sink)
}

func (p movesPass) walkBlock(block *ast.BlockStmt, e *moveEnv, ctx *sema.Context, sink *diag.Sink) {
	e.push()
	defer e.pop()
	for _, stmt := range block.Stmts {
		p.walkStmt(stmt, e, ctx, sink)
	}
}

func (p movesPass) walkStmt(stmt ast.Stmt, e *moveEnv, ctx *sema.Context, sink *diag.Sink) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		p.consumeExpr(s.Value, e, ctx, sink)
		e.define(&binding{Name: s.Name, Mutable: s.Mutable, Type: ctx.Info[s.Value]})
	case *ast.AssignStmt:
		// The target itself is written, not read: a moved binding may be
		// assigned, and a moved field only needs its owner readable.
		switch t := s.Target.(type) {
		case *ast.Ident:
		case *ast.FieldAccessExpr:
			p.checkExprUse(t.Receiver, e, ctx, sink)
		default:
			p.checkExprUse(s.Target, e, ctx, sink)
		}
		p.consumeExpr(s.Value, e, ctx, sink)
		// Reassigning a fully moved binding restores it to live; assigning
		// one of its fields clears only that field's moved flag (§4.6).
		if name, ok := rootIdent(s.Target); ok {
			if st, ok := e.states[name]; ok {
				if path := fieldPath(s.Target); path == "" {
					st.Whole = false
					st.MovedFields = nil
				} else {
					delete(st.MovedFields, path)
				}
			}
		}
	case *ast.ExprStmt:
		p.consumeExpr(s.X, e, ctx, sink)
	case *ast.ReturnStmt:
		if s.Value != nil {
			p.consumeExpr(s.Value, e, ctx, sink)
		}
	case *ast.DeferStmt:
		p.consumeExpr(s.Call, e, ctx, sink)
	case *ast.IfLetStmt:
		p.checkExprUse(s.Value, e, ctx, sink)
		if s.Guard != nil {
			p.checkExprUse(s.Guard, e, ctx, sink)
		}
		p.walkBlock(s.Then, e, ctx, sink)
		switch els := s.Else.(type) {
		case *ast.BlockStmt:
			p.walkBlock(els, e, ctx, sink)
		case *ast.IfLetStmt:
			p.walkStmt(els, e, ctx, sink)
		}
	case *ast.ForStmt:
		p.checkExprUse(s.Iter, e, ctx, sink)
		e.push()
		e.define(&binding{Name: s.Binding})
		p.walkBlock(s.Body, e, ctx, sink)
		e.pop()
	case *ast.WhileStmt:
		p.checkExprUse(s.Cond, e, ctx, sink)
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.LoopStmt:
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.UnsafeStmt:
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.BlockStmt:
		p.walkBlock(s, e, ctx, sink)
	}
}

// consumeExpr checks a value-position expression and, if it is a bare
// Ident (or field path) of Move type, marks it moved (§3.4 "Copy types
// never move"). Any other expression shape is checked for use but never
// itself a move source (calls/operators/literals produce fresh values).
func (p movesPass) consumeExpr(x ast.Expr, e *moveEnv, ctx *sema.Context, sink *diag.Sink) {
	p.checkExprUse(x, e, ctx, sink)
	name, ok := rootIdent(x)
	if !ok {
		return
	}
	b, ok := e.lookup(name)
	if !ok || b.Type == nil || types.IsCopy(b.Type) {
		return
	}
	if _, isIdent := x.(*ast.Ident); !isIdent {
		path := fieldPath(x)
		if path == "" {
			return
		}
		st := e.states[name]
		if st == nil {
			st = &moveState{MovedFields: map[string]bool{}}
			e.states[name] = st
		}
		if st.MovedFields == nil {
			st.MovedFields = map[string]bool{}
		}
		st.MovedFields[path] = true
		return
	}
	st := e.states[name]
	if st == nil {
		st = &moveState{}
		e.states[name] = st
	}
	st.Whole = true
}

// checkExprUse walks x reporting a MoveUseAfterMove diagnostic anywhere a
// moved binding (or a moved field of it) is read, then recurses into
// subexpressions without itself treating them as move sources (that is
// consumeExpr's job, invoked only at the specific positions §4.6 treats
// as consuming: let-initializers, assignment RHS, call/variant arguments,
// and return values).
func (p movesPass) checkExprUse(x ast.Expr, e *moveEnv, ctx *sema.Context, sink *diag.Sink) {
	switch expr := x.(type) {
	case *ast.Ident:
		if st, ok := e.states[expr.Name]; ok && st.Whole {
			sink.Errorf(diag.MoveUseAfterMove, expr.Sp, "use of moved value %q", expr.Name)
		}
	case *ast.FieldAccessExpr:
		if name, ok := rootIdent(expr); ok {
			if st, ok := e.states[name]; ok {
				path := fieldPath(expr)
				if st.Whole || st.MovedFields[path] {
					sink.Errorf(diag.MoveUseAfterMove, expr.Sp, "use of moved value %q", name+"."+path)
					return
				}
			}
		}
		p.checkExprUse(expr.Receiver, e, ctx, sink)
	case *ast.IndexExpr:
		p.checkExprUse(expr.Receiver, e, ctx, sink)
		p.checkExprUse(expr.Index, e, ctx, sink)
	case *ast.UnaryExpr:
		p.checkExprUse(expr.Operand, e, ctx, sink)
	case *ast.BinaryExpr:
		p.checkExprUse(expr.Left, e, ctx, sink)
		p.checkExprUse(expr.Right, e, ctx, sink)
	case *ast.CallExpr:
		p.checkExprUse(expr.Callee, e, ctx, sink)
		for _, a := range expr.Args {
			p.consumeExpr(a, e, ctx, sink)
		}
	case *ast.MethodCallExpr:
		p.checkExprUse(expr.Receiver, e, ctx, sink)
		for _, a := range expr.Args {
			p.consumeExpr(a, e, ctx, sink)
		}
	case *ast.VariantExpr:
		for _, a := range expr.Args {
			p.consumeExpr(a, e, ctx, sink)
		}
	case *ast.StructLiteralExpr:
		for _, f := range expr.Fields {
			p.consumeExpr(f.Value, e, ctx, sink)
		}
	case *ast.TupleLiteralExpr:
		for _, el := range expr.Elems {
			p.consumeExpr(el, e, ctx, sink)
		}
	case *ast.ArrayLiteralExpr:
		for _, el := range expr.Elems {
			p.consumeExpr(el, e, ctx, sink)
		}
	case *ast.IfExpr:
		p.checkExprUse(expr.Cond, e, ctx, sink)
		p.walkBlock(expr.Then, e, ctx, sink)
		switch els := expr.Else.(type) {
		case *ast.BlockStmt:
			p.walkBlock(els, e, ctx, sink)
		case *ast.IfExpr:
			p.checkExprUse(els, e, ctx, sink)
		}
	case *ast.MatchExpr:
		p.checkExprUse(expr.Scrutinee, e, ctx, sink)
		for _, arm := range expr.Arms {
			if bodyExpr, ok := arm.Body.(ast.Expr); ok {
				p.checkExprUse(bodyExpr, e, ctx, sink)
			}
		}
	case *ast.BlockExpr:
		p.walkBlock(expr.Block, e, ctx, sink)
	case *ast.BlockStmt:
		p.walkBlock(expr, e, ctx, sink)
	case *ast.AwaitExpr:
		p.checkExprUse(expr.Operand, e, ctx, sink)
	case *ast.CastExpr:
		p.checkExprUse(expr.Operand, e, ctx, sink)
	case *ast.GoExpr:
		p.checkExprUse(expr.Call, e, ctx, sink)
	case *ast.RangeExpr:
		if expr.From != nil {
			p.checkExprUse(expr.From, e, ctx, sink)
		}
		if expr.To != nil {
			p.checkExprUse(expr.To, e, ctx, sink)
		}
	}
}
