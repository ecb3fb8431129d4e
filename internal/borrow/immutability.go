package borrow

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// immutabilityPass is Phase 1 of §4.6: every assignment target and every
// `!`-receiver call site must resolve to a mutable L-value.
type immutabilityPass struct{}

func (immutabilityPass) Name() string { return "immutability" }

func (p immutabilityPass) Run(b *body, ctx *sema.Context, sink *diag.Sink) {
	e := newEnv()
	if b.SelfName != "" {
		e.define(&binding{Name: b.SelfName, Mutable: b.SelfMutable, Type: b.SelfType})
	}
	for i, param := range b.Params {
		var t types.Type
		if i < len(b.ParamTypes) {
			t = b.ParamTypes[i]
		}
		e.define(&binding{Name: param.Name, Mutable: false, Type: t})
	}
	p.walkBlock(b.Block, e, ctx, sink)
}

func (p immutabilityPass) walkBlock(block *ast.BlockStmt, e *env, ctx *sema.Context, sink *diag.Sink) {
	e.push()
	defer e.pop()
	for _, stmt := range block.Stmts {
		p.walkStmt(stmt, e, ctx, sink)
	}
}

func (p immutabilityPass) walkStmt(stmt ast.Stmt, e *env, ctx *sema.Context, sink *diag.Sink) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		p.walkExpr(s.Value, e, ctx, sink)
		e.define(&binding{Name: s.Name, Mutable: s.Mutable, Type: ctx.Info[s.Value]})
	case *ast.AssignStmt:
		p.checkMutableLValue(s.Target, e, sink)
		p.walkExpr(s.Target, e, ctx, sink)
		p.walkExpr(s.Value, e, ctx, sink)
	case *ast.ExprStmt:
		p.walkExpr(s.X, e, ctx, sink)
	case *ast.ReturnStmt:
		if s.Value != nil {
			p.walkExpr(s.Value, e, ctx, sink)
		}
	case *ast.DeferStmt:
		p.walkExpr(s.Call, e, ctx, sink)
	case *ast.IfLetStmt:
		p.walkExpr(s.Value, e, ctx, sink)
		e.push()
		if s.Guard != nil {
			p.walkExpr(s.Guard, e, ctx, sink)
		}
		p.walkBlock(s.Then, e, ctx, sink)
		e.pop()
		switch els := s.Else.(type) {
		case *ast.BlockStmt:
			p.walkBlock(els, e, ctx, sink)
		case *ast.IfLetStmt:
			p.walkStmt(els, e, ctx, sink)
		}
	case *ast.ForStmt:
		p.walkExpr(s.Iter, e, ctx, sink)
		e.push()
		e.define(&binding{Name: s.Binding, Mutable: false})
		p.walkBlock(s.Body, e, ctx, sink)
		e.pop()
	case *ast.WhileStmt:
		p.walkExpr(s.Cond, e, ctx, sink)
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.LoopStmt:
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.UnsafeStmt:
		p.walkBlock(s.Body, e, ctx, sink)
	case *ast.BlockStmt:
		p.walkBlock(s, e, ctx, sink)
	}
}

// checkMutableLValue implements §4.6 Phase 1: the target's root binding
// must be mutable, and every field access between the root and the final
// storage location must itself be reached through a mutable path (a
// mutable reference dereferenced out of an immutable binding is still
// rejected, since the binding's own immutability governs what the
// compiler will let the programmer overwrite through it).
func (p immutabilityPass) checkMutableLValue(target ast.Expr, e *env, sink *diag.Sink) {
	name, ok := rootIdent(target)
	if !ok {
		return
	}
	b, ok := e.lookup(name)
	if !ok {
		return
	}
	if !b.Mutable {
		sink.Errorf(diag.ImmutabilityViolation, target.Span(), "cannot assign through %q: binding is not mutable (declare it with `let!`)", name)
	}
}

// checkMutableReceiver reports a `!`-receiver call through an immutable
// binding (§4.6 Phase 1). Called from the moves/aliasing passes is not
// needed: method-mutability is purely a Phase-1 concern, so it is
// exercised directly from walkExpr below.
func (p immutabilityPass) checkMutableReceiver(recv ast.Expr, e *env, sink *diag.Sink, method string) {
	name, ok := rootIdent(recv)
	if !ok {
		return
	}
	b, ok := e.lookup(name)
	if !ok {
		return
	}
	if !b.Mutable {
		sink.Errorf(diag.ImmutabilityViolation, recv.Span(), "cannot call mutable method %q through %q: binding is not mutable", method, name)
	}
}

func (p immutabilityPass) walkExpr(x ast.Expr, e *env, ctx *sema.Context, sink *diag.Sink) {
	switch expr := x.(type) {
	case *ast.MethodCallExpr:
		p.walkExpr(expr.Receiver, e, ctx, sink)
		if target, ok := ctx.MethodTargets[expr]; ok {
			mutable := methodRequiresMutableReceiver(ctx, expr, target)
			if mutable {
				p.checkMutableReceiver(expr.Receiver, e, sink, expr.Method)
			}
		}
		for _, a := range expr.Args {
			p.walkExpr(a, e, ctx, sink)
		}
	case *ast.CallExpr:
		p.walkExpr(expr.Callee, e, ctx, sink)
		for _, a := range expr.Args {
			p.walkExpr(a, e, ctx, sink)
		}
	case *ast.FieldAccessExpr:
		p.walkExpr(expr.Receiver, e, ctx, sink)
	case *ast.IndexExpr:
		p.walkExpr(expr.Receiver, e, ctx, sink)
		p.walkExpr(expr.Index, e, ctx, sink)
	case *ast.UnaryExpr:
		p.walkExpr(expr.Operand, e, ctx, sink)
	case *ast.BinaryExpr:
		p.walkExpr(expr.Left, e, ctx, sink)
		p.walkExpr(expr.Right, e, ctx, sink)
	case *ast.IfExpr:
		p.walkExpr(expr.Cond, e, ctx, sink)
		p.walkBlock(expr.Then, e, ctx, sink)
		switch els := expr.Else.(type) {
		case *ast.BlockStmt:
			p.walkBlock(els, e, ctx, sink)
		case *ast.IfExpr:
			p.walkExpr(els, e, ctx, sink)
		}
	case *ast.MatchExpr:
		p.walkExpr(expr.Scrutinee, e, ctx, sink)
		for _, arm := range expr.Arms {
			if body, ok := arm.Body.(ast.Expr); ok {
				p.walkExpr(body, e, ctx, sink)
			}
		}
	case *ast.BlockExpr:
		p.walkBlock(expr.Block, e, ctx, sink)
	case *ast.BlockStmt:
		p.walkBlock(expr, e, ctx, sink)
	case *ast.StructLiteralExpr:
		for _, f := range expr.Fields {
			p.walkExpr(f.Value, e, ctx, sink)
		}
	case *ast.TupleLiteralExpr:
		for _, el := range expr.Elems {
			p.walkExpr(el, e, ctx, sink)
		}
	case *ast.ArrayLiteralExpr:
		for _, el := range expr.Elems {
			p.walkExpr(el, e, ctx, sink)
		}
		if expr.Repeat != nil {
			p.walkExpr(expr.Repeat, e, ctx, sink)
		}
	case *ast.VariantExpr:
		for _, a := range expr.Args {
			p.walkExpr(a, e, ctx, sink)
		}
	case *ast.AwaitExpr:
		p.walkExpr(expr.Operand, e, ctx, sink)
	case *ast.CastExpr:
		p.walkExpr(expr.Operand, e, ctx, sink)
	case *ast.GoExpr:
		p.walkExpr(expr.Call, e, ctx, sink)
	case *ast.RangeExpr:
		if expr.From != nil {
			p.walkExpr(expr.From, e, ctx, sink)
		}
		if expr.To != nil {
			p.walkExpr(expr.To, e, ctx, sink)
		}
	}
}

// methodRequiresMutableReceiver consults the inherent/contract method the
// checker's dispatch resolved to, since that is the only place a method's
// receiver polarity is recorded (§4.4, §6.6).
func methodRequiresMutableReceiver(ctx *sema.Context, x *ast.MethodCallExpr, target sema.MethodTarget) bool {
	recvType, ok := ctx.Info[x.Receiver]
	if !ok {
		return false
	}
	typeName := namedTypeName(recvType)
	if typeName == "" {
		return false
	}
	if target.Inherent {
		for _, m := range ctx.InherentMethods[typeName] {
			if decl, ok := m.Decl.(*ast.MethodDecl); ok && decl.Name == x.Method {
				return m.ReceiverMut
			}
		}
		return false
	}
	for _, sig := range ctx.Contracts.Methods(typeName) {
		if sig.Name == x.Method {
			return sig.ReceiverMutable
		}
	}
	return false
}

func namedTypeName(t types.Type) string {
	switch x := t.(type) {
	case *types.Named:
		return x.Name
	case *types.Reference:
		return namedTypeName(x.Elem)
	case *types.RawPointer:
		return namedTypeName(x.Elem)
	}
	return ""
}
