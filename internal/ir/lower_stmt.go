package ir

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

func (b *builder) lowerBlock(blk *ast.BlockStmt) {
	for _, s := range blk.Stmts {
		if b.terminated {
			return
		}
		b.lowerStmt(s)
	}
}

func (b *builder) lowerStmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LetStmt:
		val := b.lowerExpr(x.Value)
		reg := b.newReg(val.Type)
		b.emit(Instr{Op: OpMove, Dst: reg, Args: []Value{val}})
		b.vars[x.Name] = reg

	case *ast.AssignStmt:
		b.lowerAssign(x)

	case *ast.ExprStmt:
		b.lowerExpr(x.X)

	case *ast.ReturnStmt:
		var v Value
		hasValue := x.Value != nil
		if hasValue {
			v = b.lowerExpr(x.Value)
		}
		b.flushDefers()
		b.setTerm(Term{Kind: TermRet, Value: v, HasValue: hasValue})

	case *ast.BreakStmt:
		if len(b.loops) == 0 {
			return
		}
		b.setTerm(Term{Kind: TermJump, Then: b.loops[len(b.loops)-1].breakLabel})

	case *ast.ContinueStmt:
		if len(b.loops) == 0 {
			return
		}
		b.setTerm(Term{Kind: TermJump, Then: b.loops[len(b.loops)-1].continueLabel})

	case *ast.DeferStmt:
		if call, ok := x.Call.(*ast.CallExpr); ok {
			b.defers = append(b.defers, call)
		}

	case *ast.IfLetStmt:
		b.lowerIfLet(x)

	case *ast.ForStmt:
		b.lowerFor(x)

	case *ast.WhileStmt:
		b.lowerWhile(x)

	case *ast.LoopStmt:
		b.lowerLoop(x)

	case *ast.UnsafeStmt:
		b.lowerBlock(x.Body)

	case *ast.BlockStmt:
		b.lowerBlock(x)
	}
}

func (b *builder) lowerAssign(x *ast.AssignStmt) {
	rhs := b.lowerExpr(x.Value)
	if x.Op != token.ASSIGN {
		cur := b.lowerExpr(x.Target)
		rhs = b.emit(Instr{Op: compoundOp(x.Op), Dst: b.newReg(cur.Type), Args: []Value{cur, rhs}})
	}

	switch target := x.Target.(type) {
	case *ast.Ident:
		if reg, ok := b.vars[target.Name]; ok {
			b.emit(Instr{Op: OpMove, Dst: reg, Args: []Value{rhs}})
			return
		}
		reg := b.newReg(rhs.Type)
		b.emit(Instr{Op: OpMove, Dst: reg, Args: []Value{rhs}})
		b.vars[target.Name] = reg

	case *ast.FieldAccessExpr:
		recv := b.lowerExpr(target.Receiver)
		idx := b.fieldIndex(target.Receiver, target.Field)
		b.emit(Instr{Op: OpFieldSet, Args: []Value{recv, rhs}, Field: idx})

	case *ast.IndexExpr:
		recv := b.lowerExpr(target.Receiver)
		idx := b.lowerExpr(target.Index)
		b.emit(Instr{Op: OpIndexSet, Args: []Value{recv, idx, rhs}})

	case *ast.UnaryExpr:
		addr := b.lowerExpr(target.Operand)
		b.emit(Instr{Op: OpStore, Args: []Value{addr, rhs}})
	}
}

func (b *builder) lowerFor(x *ast.ForStmt) {
	if rng, ok := x.Iter.(*ast.RangeExpr); ok {
		b.lowerRangeFor(x, rng)
		return
	}
	b.lowerSliceFor(x)
}

// lowerRangeFor lowers `for x in a..b { ... }` (and the inclusive/unbounded
// variants) as a counted loop over an i32 induction variable.
func (b *builder) lowerRangeFor(x *ast.ForStmt, rng *ast.RangeExpr) {
	i32 := &types.Primitive{Kind: types.I32}
	var from Value
	if rng.From != nil {
		from = b.lowerExpr(rng.From)
	} else {
		from = Imm(0, i32)
	}
	induction := b.newReg(i32)
	b.emit(Instr{Op: OpMove, Dst: induction, Args: []Value{from}})
	b.vars[x.Binding] = induction

	condBlk := b.newBlock("for.cond")
	bodyBlk := b.newBlock("for.body")
	stepBlk := b.newBlock("for.step")
	doneBlk := b.newBlock("for.done")

	b.setTerm(Term{Kind: TermJump, Then: condBlk.Label})
	b.switchTo(condBlk)
	if rng.To != nil {
		to := b.lowerExpr(rng.To)
		op := OpLt
		if rng.Inclusive {
			op = OpLe
		}
		cond := b.emit(Instr{Op: op, Dst: b.newReg(&types.Primitive{Kind: types.Bool}), Args: []Value{induction, to}})
		b.setTerm(Term{Kind: TermBranch, Cond: cond, Then: bodyBlk.Label, Else: doneBlk.Label})
	} else {
		b.setTerm(Term{Kind: TermJump, Then: bodyBlk.Label})
	}

	b.switchTo(bodyBlk)
	b.loops = append(b.loops, loopCtx{breakLabel: doneBlk.Label, continueLabel: stepBlk.Label})
	b.lowerBlock(x.Body)
	b.loops = b.loops[:len(b.loops)-1]
	b.setTerm(Term{Kind: TermJump, Then: stepBlk.Label})

	b.switchTo(stepBlk)
	next := b.emit(Instr{Op: OpAdd, Dst: b.newReg(i32), Args: []Value{induction, Imm(1, i32)}})
	b.emit(Instr{Op: OpMove, Dst: induction, Args: []Value{next}})
	b.setTerm(Term{Kind: TermJump, Then: condBlk.Label})

	b.switchTo(doneBlk)
}

// lowerSliceFor lowers `for x in iterable { ... }` over any other iterable
// (a slice or array) as an index-counted loop reading each element.
func (b *builder) lowerSliceFor(x *ast.ForStmt) {
	i32 := &types.Primitive{Kind: types.I32}
	iterable := b.lowerExpr(x.Iter)
	elemType := elementTypeOf(b.elaboratedType(x.Iter))

	idx := b.newReg(i32)
	b.emit(Instr{Op: OpMove, Dst: idx, Args: []Value{Imm(0, i32)}})
	length := b.emit(Instr{Op: OpSliceLen, Dst: b.newReg(i32), Args: []Value{iterable}})

	condBlk := b.newBlock("for.cond")
	bodyBlk := b.newBlock("for.body")
	stepBlk := b.newBlock("for.step")
	doneBlk := b.newBlock("for.done")

	b.setTerm(Term{Kind: TermJump, Then: condBlk.Label})
	b.switchTo(condBlk)
	cond := b.emit(Instr{Op: OpLt, Dst: b.newReg(&types.Primitive{Kind: types.Bool}), Args: []Value{idx, length}})
	b.setTerm(Term{Kind: TermBranch, Cond: cond, Then: bodyBlk.Label, Else: doneBlk.Label})

	b.switchTo(bodyBlk)
	elem := b.emit(Instr{Op: OpIndexGet, Dst: b.newReg(elemType), Args: []Value{iterable, idx}})
	b.vars[x.Binding] = elem
	b.loops = append(b.loops, loopCtx{breakLabel: doneBlk.Label, continueLabel: stepBlk.Label})
	b.lowerBlock(x.Body)
	b.loops = b.loops[:len(b.loops)-1]
	b.setTerm(Term{Kind: TermJump, Then: stepBlk.Label})

	b.switchTo(stepBlk)
	next := b.emit(Instr{Op: OpAdd, Dst: b.newReg(i32), Args: []Value{idx, Imm(1, i32)}})
	b.emit(Instr{Op: OpMove, Dst: idx, Args: []Value{next}})
	b.setTerm(Term{Kind: TermJump, Then: condBlk.Label})

	b.switchTo(doneBlk)
}

func (b *builder) lowerWhile(x *ast.WhileStmt) {
	condBlk := b.newBlock("while.cond")
	bodyBlk := b.newBlock("while.body")
	doneBlk := b.newBlock("while.done")

	b.setTerm(Term{Kind: TermJump, Then: condBlk.Label})
	b.switchTo(condBlk)
	cond := b.lowerExpr(x.Cond)
	b.setTerm(Term{Kind: TermBranch, Cond: cond, Then: bodyBlk.Label, Else: doneBlk.Label})

	b.switchTo(bodyBlk)
	b.loops = append(b.loops, loopCtx{breakLabel: doneBlk.Label, continueLabel: condBlk.Label})
	b.lowerBlock(x.Body)
	b.loops = b.loops[:len(b.loops)-1]
	b.setTerm(Term{Kind: TermJump, Then: condBlk.Label})

	b.switchTo(doneBlk)
}

func (b *builder) lowerLoop(x *ast.LoopStmt) {
	bodyBlk := b.newBlock("loop.body")
	doneBlk := b.newBlock("loop.done")

	b.setTerm(Term{Kind: TermJump, Then: bodyBlk.Label})
	b.switchTo(bodyBlk)
	b.loops = append(b.loops, loopCtx{breakLabel: doneBlk.Label, continueLabel: bodyBlk.Label})
	b.lowerBlock(x.Body)
	b.loops = b.loops[:len(b.loops)-1]
	b.setTerm(Term{Kind: TermJump, Then: bodyBlk.Label})

	b.switchTo(doneBlk)
}

func (b *builder) lowerIfLet(x *ast.IfLetStmt) {
	scrutType := b.elaboratedType(x.Value)
	scrut := b.lowerExpr(x.Value)

	thenBlk := b.newBlock("iflet.then")
	elseBlk := b.newBlock("iflet.else")
	doneBlk := b.newBlock("iflet.done")

	matched, binds := b.lowerPatternTest(x.Pattern, scrut, scrutType)
	cond := matched
	if x.Guard != nil {
		for name, v := range binds {
			b.vars[name] = v
		}
		guard := b.lowerExpr(x.Guard)
		cond = b.emit(Instr{Op: OpAnd, Dst: b.newReg(&types.Primitive{Kind: types.Bool}), Args: []Value{matched, guard}})
	}
	b.setTerm(Term{Kind: TermBranch, Cond: cond, Then: thenBlk.Label, Else: elseBlk.Label})

	b.switchTo(thenBlk)
	for name, v := range binds {
		b.vars[name] = v
	}
	b.lowerBlock(x.Then)
	if !b.terminated {
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	}

	b.switchTo(elseBlk)
	switch e := x.Else.(type) {
	case *ast.BlockStmt:
		b.lowerBlock(e)
	case *ast.IfLetStmt:
		b.lowerIfLet(e)
	}
	if !b.terminated {
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	}

	b.switchTo(doneBlk)
}
