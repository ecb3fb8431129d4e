package borrow

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// lifetimesPass is Phase 4 of §4.6. Full region-variable unification
// (explicit `'a` names, elision, per-signature constraint solving) is
// future work; what this phase checks today is the constraint's most
// common violation and the one every other phase's soundness assumes
// holds — a function must never return a reference into storage that
// does not outlive the call, which in practice means a returned reference
// must trace back to a parameter (whose region the caller controls and
// which is guaranteed ⊇ the callee's own stack frame), not to a local
// binding or a literal's address, both of which end their region at
// function return.
type lifetimesPass struct{}

func (lifetimesPass) Name() string { return "lifetimes" }

// lifeState is the per-function tracking this phase threads through a
// body: which names are parameters (their region always outlives the
// call) and which let-bound locals were themselves initialized from a
// borrow of a non-parameter, and so carry a region that ends at function
// return.
type lifeState struct {
	params    map[string]bool
	dangling  map[string]bool
}

func (p lifetimesPass) Run(b *body, ctx *sema.Context, sink *diag.Sink) {
	if _, ok := b.Result.(*types.Reference); !ok {
		return
	}
	st := &lifeState{params: map[string]bool{}, dangling: map[string]bool{}}
	if b.SelfName != "" {
		st.params[b.SelfName] = true
	}
	for _, param := range b.Params {
		st.params[param.Name] = true
	}
	p.walkBlock(b.Block, st, sink)
}

func (p lifetimesPass) walkBlock(block *ast.BlockStmt, st *lifeState, sink *diag.Sink) {
	for _, stmt := range block.Stmts {
		p.walkStmt(stmt, st, sink)
	}
}

func (p lifetimesPass) walkStmt(stmt ast.Stmt, st *lifeState, sink *diag.Sink) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		if p.escapesLocal(s.Value, st) {
			st.dangling[s.Name] = true
		}
	case *ast.ReturnStmt:
		if s.Value != nil {
			p.checkReturnedRegion(s.Value, st, sink)
		}
	case *ast.IfLetStmt:
		p.walkBlock(s.Then, st, sink)
		if blk, ok := s.Else.(*ast.BlockStmt); ok {
			p.walkBlock(blk, st, sink)
		}
	case *ast.ForStmt:
		p.walkBlock(s.Body, st, sink)
	case *ast.WhileStmt:
		p.walkBlock(s.Body, st, sink)
	case *ast.LoopStmt:
		p.walkBlock(s.Body, st, sink)
	case *ast.UnsafeStmt:
		p.walkBlock(s.Body, st, sink)
	case *ast.BlockStmt:
		p.walkBlock(s, st, sink)
	}
}

// escapesLocal reports whether x is itself a borrow of a non-parameter
// (`&localVar`) or a bare reference to an already-dangling local.
func (p lifetimesPass) escapesLocal(x ast.Expr, st *lifeState) bool {
	switch expr := x.(type) {
	case *ast.UnaryExpr:
		name, ok := rootIdent(expr.Operand)
		return ok && !st.params[name]
	case *ast.Ident:
		return st.dangling[expr.Name]
	}
	return false
}

// checkReturnedRegion rejects the canonical dangling-reference shape: a
// fresh borrow of a local (`&x` / `&!x` where x is not a parameter), or a
// let-bound reference whose own initializer traces back to one. Anything
// else (a parameter passed straight through, a field/method projection
// off a parameter-derived reference) is accepted, erring toward the
// common safe patterns rather than a full alias/escape analysis.
func (p lifetimesPass) checkReturnedRegion(x ast.Expr, st *lifeState, sink *diag.Sink) {
	switch expr := x.(type) {
	case *ast.UnaryExpr:
		name, ok := rootIdent(expr.Operand)
		if ok && !st.params[name] {
			sink.Errorf(diag.LifetimeViolation, expr.Sp, "reference to local variable %q does not live long enough to be returned", name)
		}
	case *ast.Ident:
		if st.dangling[expr.Name] {
			sink.Errorf(diag.LifetimeViolation, expr.Sp, "returned reference %q was borrowed from a local variable and does not live long enough", expr.Name)
		}
	}
}
