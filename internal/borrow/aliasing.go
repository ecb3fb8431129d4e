package borrow

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

// activeBorrow is one live borrow of a root binding's storage (§4.6 Phase
// 3); scope is the block-nesting depth it was taken at, so it can be
// cleared when that scope pops (a `let`-bound reference's borrow lives to
// the end of its enclosing scope the same as any other local). Transient
// borrows last for the duration of one call/statement only and are
// released before the next statement runs.
type activeBorrow struct {
	Mutable   bool
	Scope     int
	Transient bool
}

// aliasEnv tracks, per root binding name, every currently live borrow of
// its storage.
type aliasEnv struct {
	*env
	borrows map[string][]*activeBorrow
	depth   int
}

func newAliasEnv() *aliasEnv {
	return &aliasEnv{env: newEnv(), borrows: map[string][]*activeBorrow{}}
}

func (e *aliasEnv) pushScope() { e.push(); e.depth++ }
func (e *aliasEnv) popScope() {
	e.pop()
	for name, list := range e.borrows {
		kept := list[:0]
		for _, b := range list {
			if b.Scope < e.depth {
				kept = append(kept, b)
			}
		}
		e.borrows[name] = kept
	}
	e.depth--
}

// releaseTransient drops every statement-scoped borrow: a call takes its
// argument borrows for the duration of the call only (§4.6 Phase 3), so
// they must not stay live into the next statement.
func (e *aliasEnv) releaseTransient() {
	for name, list := range e.borrows {
		kept := list[:0]
		for _, b := range list {
			if !b.Transient {
				kept = append(kept, b)
			}
		}
		e.borrows[name] = kept
	}
}

// aliasingPass is Phase 3 of §4.6: a mutable borrow of a root binding's
// storage is exclusive; any number of immutable borrows may coexist.
type aliasingPass struct{}

func (aliasingPass) Name() string { return "aliasing" }

func (p aliasingPass) Run(b *body, ctx *sema.Context, sink *diag.Sink) {
	e := newAliasEnv()
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

// walkBlock walks block's statements; persistent borrows taken by a `let`
// binding or a `defer` in this block are released when popScope runs.
func (p aliasingPass) walkBlock(block *ast.BlockStmt, e *aliasEnv, ctx *sema.Context, sink *diag.Sink) {
	e.pushScope()
	defer e.popScope()
	for _, stmt := range block.Stmts {
		p.walkStmt(stmt, e, ctx, sink)
		e.releaseTransient()
	}
}

func (p aliasingPass) walkStmt(stmt ast.Stmt, e *aliasEnv, ctx *sema.Context, sink *diag.Sink) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		// A reference-typed let binding's initializer borrow persists for
		// this binding's whole scope, not just the statement (§4.6 Phase 3).
		if _, isRef := ctx.Info[s.Value].(*types.Reference); isRef {
			p.takeBorrow(s.Value, e, sink, e.depth)
		} else {
			p.scanTransientBorrows(s.Value, e, sink)
		}
		e.define(&binding{Name: s.Name, Mutable: s.Mutable, Type: ctx.Info[s.Value]})
	case *ast.AssignStmt:
		p.scanTransientBorrows(s.Target, e, sink)
		p.scanTransientBorrows(s.Value, e, sink)
	case *ast.ExprStmt:
		p.scanTransientBorrows(s.X, e, sink)
	case *ast.ReturnStmt:
		if s.Value != nil {
			p.scanTransientBorrows(s.Value, e, sink)
		}
	case *ast.DeferStmt:
		// A defer's borrow lives to the end of the enclosing scope (§4.6
		// Phase 3), not just the defer statement itself.
		p.takeDeferredBorrows(s.Call, e, sink, e.depth)
	case *ast.IfLetStmt:
		p.scanTransientBorrows(s.Value, e, sink)
		if s.Guard != nil {
			p.scanTransientBorrows(s.Guard, e, sink)
		}
		p.walkBlock(s.Then, e, ctx, sink)
		switch els := s.Else.(type) {
		case *ast.BlockStmt:
			p.walkBlock(els, e, ctx, sink)
		case *ast.IfLetStmt:
			p.walkStmt(els, e, ctx, sink)
		}
	case *ast.ForStmt:
		p.scanTransientBorrows(s.Iter, e, sink)
		e.pushScope()
		e.define(&binding{Name: s.Binding})
		for _, inner := range s.Body.Stmts {
			p.walkStmt(inner, e, ctx, sink)
			e.releaseTransient()
		}
		e.popScope()
	case *ast.WhileStmt:
		p.scanTransientBorrows(s.Cond, e, sink)
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.LoopStmt:
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.UnsafeStmt:
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.BlockStmt:
		p.walkBlock(s, e, ctx, sink)
	}
}

// scanTransientBorrows finds every `&expr`/`&expr!` occurring inline in x
// (as a call/method argument, for instance) and registers a borrow scoped
// to the current statement only — releaseTransient drops it before the
// next statement runs, since nothing retains it past evaluation (§4.6
// Phase 3 "function calls take borrows for the duration of the call").
func (p aliasingPass) scanTransientBorrows(x ast.Expr, e *aliasEnv, sink *diag.Sink) {
	var found []*ast.UnaryExpr
	collectBorrows(x, &found)
	for _, u := range found {
		p.register(u, e, sink, e.depth, true)
	}
}

func collectBorrows(x ast.Expr, out *[]*ast.UnaryExpr) {
	switch expr := x.(type) {
	case *ast.UnaryExpr:
		if expr.Op == token.AMP {
			*out = append(*out, expr)
			return
		}
		collectBorrows(expr.Operand, out)
	case *ast.CallExpr:
		collectBorrows(expr.Callee, out)
		for _, a := range expr.Args {
			collectBorrows(a, out)
		}
	case *ast.MethodCallExpr:
		collectBorrows(expr.Receiver, out)
		for _, a := range expr.Args {
			collectBorrows(a, out)
		}
	case *ast.FieldAccessExpr:
		collectBorrows(expr.Receiver, out)
	case *ast.IndexExpr:
		collectBorrows(expr.Receiver, out)
		collectBorrows(expr.Index, out)
	case *ast.BinaryExpr:
		collectBorrows(expr.Left, out)
		collectBorrows(expr.Right, out)
	case *ast.TupleLiteralExpr:
		for _, el := range expr.Elems {
			collectBorrows(el, out)
		}
	case *ast.ArrayLiteralExpr:
		for _, el := range expr.Elems {
			collectBorrows(el, out)
		}
	case *ast.StructLiteralExpr:
		for _, f := range expr.Fields {
			collectBorrows(f.Value, out)
		}
	case *ast.VariantExpr:
		for _, a := range expr.Args {
			collectBorrows(a, out)
		}
	case *ast.CastExpr:
		collectBorrows(expr.Operand, out)
	}
}

func (p aliasingPass) takeBorrow(x ast.Expr, e *aliasEnv, sink *diag.Sink, scope int) {
	u, ok := x.(*ast.UnaryExpr)
	if !ok || u.Op != token.AMP {
		return
	}
	p.registerBorrowAt(u, e, sink, scope)
}

func (p aliasingPass) takeDeferredBorrows(x ast.Expr, e *aliasEnv, sink *diag.Sink, scope int) {
	var found []*ast.UnaryExpr
	collectBorrows(x, &found)
	for _, u := range found {
		p.registerBorrowAt(u, e, sink, scope)
	}
}

// registerBorrowAt records a persistent borrow (a `let`-bound reference's
// initializer, or a `defer` call's arguments) that stays live until the
// scope it was taken at pops.
func (p aliasingPass) registerBorrowAt(u *ast.UnaryExpr, e *aliasEnv, sink *diag.Sink, scope int) {
	p.register(u, e, sink, scope, false)
}

// register checks u against every currently live borrow of the same root
// binding's storage and, if compatible, adds it to the live set at the
// given scope depth (§4.6 Phase 3).
func (p aliasingPass) register(u *ast.UnaryExpr, e *aliasEnv, sink *diag.Sink, scope int, transient bool) {
	name, ok := rootIdent(u.Operand)
	if !ok {
		return
	}
	mutable := u.RefMut
	for _, existing := range e.borrows[name] {
		if mutable || existing.Mutable {
			sink.Errorf(diag.AliasingViolation, u.Sp, "conflicting borrows of %q: a mutable borrow must be exclusive", name)
			return
		}
	}
	e.borrows[name] = append(e.borrows[name], &activeBorrow{Mutable: mutable, Scope: scope, Transient: transient})
}
