package ir

import (
	"sort"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/mono"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// Lower runs C8: it emits one ir.Function per concrete (non-generic) free
// function and inherent method, plus one per internal/mono.Specialization,
// under its canonical name, with every call site rewritten to the direct
// symbol a backend should link against (§4.7, §4.8 "no virtual dispatch").
// It assumes ctx has already passed internal/borrow.
func Lower(ctx *sema.Context, mr *mono.Result, sink *diag.Sink) *Module {
	l := &lowerer{ctx: ctx, mono: mr, sink: sink}
	l.registerLayouts()

	m := &Module{}

	names := make([]string, 0, len(ctx.Functions))
	for name, info := range ctx.Functions {
		if len(info.TypeParams) == 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		info := ctx.Functions[name]
		decl, ok := info.Decl.(*ast.FunctionDecl)
		if !ok || decl.Body == nil {
			continue
		}
		m.Functions = append(m.Functions, l.lowerFunction(name, decl.Params, info.Result, decl.Body, nil))
	}

	structNames := make([]string, 0, len(ctx.InherentMethods))
	for sname := range ctx.InherentMethods {
		structNames = append(structNames, sname)
	}
	sort.Strings(structNames)
	for _, sname := range structNames {
		infos := append([]*sema.FuncInfo(nil), ctx.InherentMethods[sname]...)
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].Decl.(*ast.MethodDecl).Name < infos[j].Decl.(*ast.MethodDecl).Name
		})
		for _, info := range infos {
			if len(info.TypeParams) > 0 {
				continue
			}
			decl, ok := info.Decl.(*ast.MethodDecl)
			if !ok || decl.Body == nil {
				continue
			}
			fname := sname + "." + decl.Name
			m.Functions = append(m.Functions, l.lowerFunction(fname, decl.Params, info.Result, decl.Body, nil))
		}
	}

	for _, spec := range mr.Specializations {
		var params []*ast.Param
		var body *ast.BlockStmt
		switch d := spec.Decl.(type) {
		case *ast.FunctionDecl:
			params, body = d.Params, d.Body
		case *ast.MethodDecl:
			params, body = d.Params, d.Body
		}
		if body == nil {
			continue
		}
		fn := l.lowerFunction(spec.CanonicalName, params, spec.Result, body, spec.Subst)
		for i := range fn.Params {
			if i < len(spec.Params) {
				fn.Params[i].Type = spec.Params[i]
			}
		}
		m.Functions = append(m.Functions, fn)
	}

	return m
}

// registerLayouts wires internal/ir's struct/enum layout lookups to this
// Context's declaration tables (internal/ir has no dependency on
// internal/sema otherwise, to keep the layering one-directional).
func (l *lowerer) registerLayouts() {
	ctx := l.ctx
	SetResolvers(
		func(name string) ([]types.Type, bool) {
			fields, ok := ctx.StructFields[name]
			if !ok {
				return nil, false
			}
			out := make([]types.Type, len(fields))
			for i, f := range fields {
				out[i] = f.Type
			}
			return out, true
		},
		func(name string) ([][]types.Type, bool) {
			variants, ok := ctx.EnumVariants[name]
			if !ok {
				return nil, false
			}
			out := make([][]types.Type, len(variants))
			for i, v := range variants {
				out[i] = v.Payload
			}
			return out, true
		},
	)
}

type lowerer struct {
	ctx  *sema.Context
	mono *mono.Result
	sink *diag.Sink
}

// builder lowers one function body to basic blocks.
type builder struct {
	l          *lowerer
	subst      map[string]types.Type // non-nil inside a monomorphized specialization
	fn         *Function
	cur        *Block
	terminated bool
	vars       map[string]Value
	defers     []*ast.CallExpr
	loops      []loopCtx
	labels     int
}

type loopCtx struct {
	breakLabel, continueLabel string
}

func (l *lowerer) lowerFunction(name string, params []*ast.Param, result types.Type, body *ast.BlockStmt, subst map[string]types.Type) *Function {
	fn := &Function{Name: name, Result: result}
	b := &builder{l: l, subst: subst, fn: fn, vars: map[string]Value{}}

	for _, p := range params {
		pt := l.ctx.ElaborateType(p.Type)
		if subst != nil {
			pt = types.Substitute(pt, subst)
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: pt})
		reg := b.newReg(pt)
		b.vars[p.Name] = reg
	}

	b.cur = b.newBlock("entry")
	b.lowerBlock(body)
	if !b.terminated {
		b.flushDefers()
		b.setTerm(Term{Kind: TermRet, HasValue: false})
	}
	return fn
}

func (b *builder) newReg(t types.Type) Value {
	v := Reg(b.fn.NumRegs, t)
	b.fn.NumRegs++
	return v
}

func (b *builder) newBlock(prefix string) *Block {
	b.labels++
	label := prefix
	if prefix == "entry" && b.labels > 1 {
		label = prefix
	}
	if prefix != "entry" {
		label = prefix + "." + itoaLabel(b.labels)
	}
	blk := &Block{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	return blk
}

func itoaLabel(n int) string {
	digits := []byte{}
	if n == 0 {
		return "0"
	}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func (b *builder) emit(in Instr) Value {
	b.cur.Instrs = append(b.cur.Instrs, in)
	return in.Dst
}

func (b *builder) setTerm(t Term) {
	if b.terminated {
		return
	}
	b.cur.Term = t
	b.terminated = true
}

func (b *builder) switchTo(blk *Block) {
	b.cur = blk
	b.terminated = false
}

func (b *builder) flushDefers() {
	for i := len(b.defers) - 1; i >= 0; i-- {
		b.lowerCallForEffect(b.defers[i])
	}
}

func (b *builder) lowerCallForEffect(call *ast.CallExpr) {
	b.lowerCall(call)
}

func (b *builder) elaboratedType(e ast.Expr) types.Type {
	t := b.l.ctx.Info[e]
	if t == nil {
		return &types.Primitive{Kind: types.I32}
	}
	if b.subst != nil {
		return types.Substitute(t, b.subst)
	}
	return t
}
