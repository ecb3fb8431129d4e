package ir

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/mono"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

func compoundOp(k token.Kind) Op {
	switch k {
	case token.PLUS_ASSIGN:
		return OpAdd
	case token.MINUS_ASSIGN:
		return OpSub
	case token.STAR_ASSIGN:
		return OpMul
	case token.SLASH_ASSIGN:
		return OpDiv
	case token.PERCENT_ASSIGN:
		return OpMod
	}
	return OpAdd
}

func binOp(k token.Kind) Op {
	switch k {
	case token.PLUS:
		return OpAdd
	case token.MINUS:
		return OpSub
	case token.STAR:
		return OpMul
	case token.SLASH:
		return OpDiv
	case token.PERCENT:
		return OpMod
	case token.AMP:
		return OpBitAnd
	case token.PIPE:
		return OpBitOr
	case token.CARET:
		return OpBitXor
	case token.SHL:
		return OpShl
	case token.SHR:
		return OpShr
	case token.EQ:
		return OpEq
	case token.NE:
		return OpNe
	case token.LT:
		return OpLt
	case token.LE:
		return OpLe
	case token.GT:
		return OpGt
	case token.GE:
		return OpGe
	}
	return OpAdd
}

func (b *builder) lowerExpr(e ast.Expr) Value {
	switch x := e.(type) {
	case *ast.IntLiteral:
		return Imm(int(x.Value), b.elaboratedType(e))
	case *ast.FloatLiteral:
		return Imm(x.Value, b.elaboratedType(e))
	case *ast.BoolLiteral:
		return Imm(x.Value, &types.Primitive{Kind: types.Bool})
	case *ast.StringLiteral:
		return Imm(x.Value, &types.Primitive{Kind: types.Str})
	case *ast.NilLiteral:
		return Imm(nil, b.elaboratedType(e))

	case *ast.InterpStringLiteral:
		return b.lowerInterpString(x)

	case *ast.Ident:
		if reg, ok := b.vars[x.Name]; ok {
			return reg
		}
		return b.emit(Instr{Op: OpIntrinsic, Dst: b.newReg(b.elaboratedType(e)), Callee: "const." + x.Name})

	case *ast.CallExpr:
		return b.lowerCall(x)

	case *ast.MethodCallExpr:
		return b.lowerMethodCall(x)

	case *ast.FieldAccessExpr:
		recv := b.lowerExpr(x.Receiver)
		idx := b.fieldIndex(x.Receiver, x.Field)
		return b.emit(Instr{Op: OpFieldGet, Dst: b.newReg(b.elaboratedType(e)), Args: []Value{recv}, Field: idx})

	case *ast.VariantExpr:
		args := make([]Value, len(x.Args))
		for i, a := range x.Args {
			args[i] = b.lowerExpr(a)
		}
		idx := b.l.variantIndex(x.Enum, x.Variant)
		return b.emit(Instr{Op: OpVariantNew, Dst: b.newReg(b.elaboratedType(e)), Args: args, Field: idx})

	case *ast.IndexExpr:
		recv := b.lowerExpr(x.Receiver)
		idx := b.lowerExpr(x.Index)
		return b.emit(Instr{Op: OpIndexGet, Dst: b.newReg(b.elaboratedType(e)), Args: []Value{recv, idx}})

	case *ast.RangeExpr:
		// A standalone range value (outside a `for` binding) is lowered as
		// a (from, to) pair; `for` over a range is lowered by lowerRangeFor.
		i32 := &types.Primitive{Kind: types.I32}
		from, to := Imm(0, i32), Imm(0, i32)
		if x.From != nil {
			from = b.lowerExpr(x.From)
		}
		if x.To != nil {
			to = b.lowerExpr(x.To)
		}
		return b.emit(Instr{Op: OpTupleNew, Dst: b.newReg(&types.Tuple{Elems: []types.Type{i32, i32}}), Args: []Value{from, to}})

	case *ast.BinaryExpr:
		return b.lowerBinary(x)

	case *ast.UnaryExpr:
		return b.lowerUnary(x)

	case *ast.IfExpr:
		return b.lowerIf(x)

	case *ast.MatchExpr:
		return b.lowerMatch(x)

	case *ast.BlockExpr:
		return b.lowerBlockValue(x.Block)

	case *ast.StructLiteralExpr:
		return b.lowerStructLiteral(x)

	case *ast.TupleLiteralExpr:
		args := make([]Value, len(x.Elems))
		for i, el := range x.Elems {
			args[i] = b.lowerExpr(el)
		}
		return b.emit(Instr{Op: OpTupleNew, Dst: b.newReg(b.elaboratedType(e)), Args: args})

	case *ast.ArrayLiteralExpr:
		return b.lowerArrayLiteral(x)

	case *ast.AwaitExpr:
		operand := b.lowerExpr(x.Operand)
		return b.emit(Instr{Op: OpAwait, Dst: b.newReg(b.elaboratedType(e)), Args: []Value{operand}})

	case *ast.CastExpr:
		operand := b.lowerExpr(x.Operand)
		return b.emit(Instr{Op: OpCast, Dst: b.newReg(b.elaboratedType(e)), Args: []Value{operand}})

	case *ast.GoExpr:
		args := make([]Value, len(x.Call.Args))
		for i, a := range x.Call.Args {
			args[i] = b.lowerExpr(a)
		}
		callee, _ := x.Call.Callee.(*ast.Ident)
		name := ""
		if callee != nil {
			name = b.resolveCallee(x.Call, callee.Name)
		}
		return b.emit(Instr{Op: OpSpawn, Dst: b.newReg(b.elaboratedType(e)), Args: args, Callee: name})
	}
	return Imm(nil, nil)
}

func (b *builder) lowerInterpString(x *ast.InterpStringLiteral) Value {
	var result Value
	first := true
	strType := &types.Primitive{Kind: types.Str}
	for _, part := range x.Parts {
		var piece Value
		if part.Expr != nil {
			piece = b.lowerExpr(part.Expr)
		} else {
			piece = Imm(part.Text, strType)
		}
		if first {
			result = piece
			first = false
			continue
		}
		result = b.emit(Instr{Op: OpAdd, Dst: b.newReg(strType), Args: []Value{result, piece}})
	}
	if first {
		return Imm("", strType)
	}
	return result
}

func (b *builder) lowerBinary(x *ast.BinaryExpr) Value {
	resultType := b.elaboratedType(x)
	if x.Op == token.ANDAND || x.Op == token.OROR {
		return b.lowerShortCircuit(x)
	}
	left := b.lowerExpr(x.Left)
	right := b.lowerExpr(x.Right)
	return b.emit(Instr{Op: binOp(x.Op), Dst: b.newReg(resultType), Args: []Value{left, right}})
}

// lowerShortCircuit lowers `&&`/`||` with real control flow so a
// side-effecting right-hand side only runs when it has to (§4.2).
func (b *builder) lowerShortCircuit(x *ast.BinaryExpr) Value {
	boolType := &types.Primitive{Kind: types.Bool}
	result := b.newReg(boolType)
	left := b.lowerExpr(x.Left)

	rhsBlk := b.newBlock("sc.rhs")
	doneBlk := b.newBlock("sc.done")

	if x.Op == token.ANDAND {
		shortBlk := b.newBlock("sc.short")
		b.setTerm(Term{Kind: TermBranch, Cond: left, Then: rhsBlk.Label, Else: shortBlk.Label})
		b.switchTo(shortBlk)
		b.emit(Instr{Op: OpMove, Dst: result, Args: []Value{Imm(false, boolType)}})
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	} else {
		shortBlk := b.newBlock("sc.short")
		b.setTerm(Term{Kind: TermBranch, Cond: left, Then: shortBlk.Label, Else: rhsBlk.Label})
		b.switchTo(shortBlk)
		b.emit(Instr{Op: OpMove, Dst: result, Args: []Value{Imm(true, boolType)}})
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	}

	b.switchTo(rhsBlk)
	right := b.lowerExpr(x.Right)
	b.emit(Instr{Op: OpMove, Dst: result, Args: []Value{right}})
	if !b.terminated {
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	}

	b.switchTo(doneBlk)
	return result
}

func (b *builder) lowerUnary(x *ast.UnaryExpr) Value {
	resultType := b.elaboratedType(x)
	operand := b.lowerExpr(x.Operand)
	switch x.Op {
	case token.BANG:
		return b.emit(Instr{Op: OpNot, Dst: b.newReg(resultType), Args: []Value{operand}})
	case token.MINUS:
		return b.emit(Instr{Op: OpNeg, Dst: b.newReg(resultType), Args: []Value{operand}})
	case token.STAR:
		return b.emit(Instr{Op: OpDeref, Dst: b.newReg(resultType), Args: []Value{operand}})
	case token.AMP:
		return b.emit(Instr{Op: OpAddrOf, Dst: b.newReg(resultType), Args: []Value{operand}})
	}
	return operand
}

func (b *builder) lowerIf(x *ast.IfExpr) Value {
	resultType := b.elaboratedType(x)
	cond := b.lowerExpr(x.Cond)

	thenBlk := b.newBlock("if.then")
	elseBlk := b.newBlock("if.else")
	doneBlk := b.newBlock("if.done")
	b.setTerm(Term{Kind: TermBranch, Cond: cond, Then: thenBlk.Label, Else: elseBlk.Label})

	var result Value
	hasResult := resultType != nil
	if hasResult {
		result = b.newReg(resultType)
	}

	b.switchTo(thenBlk)
	thenVal := b.lowerBlockValue(x.Then)
	if hasResult && !b.terminated {
		b.emit(Instr{Op: OpMove, Dst: result, Args: []Value{thenVal}})
	}
	if !b.terminated {
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	}

	b.switchTo(elseBlk)
	if x.Else != nil {
		var elseVal Value
		switch e := x.Else.(type) {
		case *ast.BlockStmt:
			elseVal = b.lowerBlockValue(e)
		case *ast.IfExpr:
			elseVal = b.lowerIf(e)
		}
		if hasResult && !b.terminated {
			b.emit(Instr{Op: OpMove, Dst: result, Args: []Value{elseVal}})
		}
	}
	if !b.terminated {
		b.setTerm(Term{Kind: TermJump, Then: doneBlk.Label})
	}

	b.switchTo(doneBlk)
	return result
}

// lowerBlockValue lowers a block, treating a trailing bare-expression
// statement as the block's value (§4.2's expression-oriented blocks).
func (b *builder) lowerBlockValue(blk *ast.BlockStmt) Value {
	for i, s := range blk.Stmts {
		if b.terminated {
			return Value{Reg: -1}
		}
		if i == len(blk.Stmts)-1 {
			if es, ok := s.(*ast.ExprStmt); ok {
				return b.lowerExpr(es.X)
			}
		}
		b.lowerStmt(s)
	}
	return Imm(nil, nil)
}

func (b *builder) lowerStructLiteral(x *ast.StructLiteralExpr) Value {
	fields := b.l.ctx.StructFields[x.Type]
	args := make([]Value, len(fields))
	for i, f := range fields {
		var v Value
		for _, lit := range x.Fields {
			if lit.Name == f.Name {
				v = b.lowerExpr(lit.Value)
				break
			}
		}
		args[i] = v
	}
	return b.emit(Instr{Op: OpStructNew, Dst: b.newReg(b.elaboratedType(x)), Args: args})
}

func (b *builder) lowerArrayLiteral(x *ast.ArrayLiteralExpr) Value {
	resultType := b.elaboratedType(x)
	if x.Repeat != nil {
		val := b.lowerExpr(x.Repeat)
		count := b.lowerExpr(x.Count)
		return b.emit(Instr{Op: OpArrayNew, Dst: b.newReg(resultType), Args: []Value{val, count}})
	}
	args := make([]Value, len(x.Elems))
	for i, el := range x.Elems {
		args[i] = b.lowerExpr(el)
	}
	return b.emit(Instr{Op: OpArrayNew, Dst: b.newReg(resultType), Args: args})
}

func (b *builder) lowerCall(x *ast.CallExpr) Value {
	resultType := b.elaboratedType(x)
	args := make([]Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = b.lowerExpr(a)
	}
	callee, ok := x.Callee.(*ast.Ident)
	if !ok {
		inner := b.lowerExpr(x.Callee)
		args = append([]Value{inner}, args...)
		return b.emit(Instr{Op: OpCall, Dst: b.newReg(resultType), Args: args, Callee: "<indirect>"})
	}
	name := b.resolveCallee(x, callee.Name)
	return b.emit(Instr{Op: OpCall, Dst: b.newReg(resultType), Args: args, Callee: name})
}

// resolveCallee names the direct symbol a call site should link against:
// a generic call's monomorphized specialization (rewritten through the
// enclosing specialization's own substitution when lowering inside an
// already-specialized body), or the bare function name otherwise (§4.7,
// §4.8 "no virtual dispatch").
func (b *builder) resolveCallee(call *ast.CallExpr, declName string) string {
	if name, ok := b.l.mono.CallSites[call]; ok {
		return name
	}
	if info, ok := b.l.ctx.Functions[declName]; ok && len(info.TypeParams) > 0 {
		if args, ok := b.l.ctx.GenericCallArgs[call]; ok {
			substituted := args
			if b.subst != nil {
				substituted = make([]types.Type, len(args))
				for i, a := range args {
					substituted[i] = types.Substitute(a, b.subst)
				}
			}
			return mono.CanonicalName(declName, substituted)
		}
	}
	return declName
}

func (b *builder) lowerMethodCall(x *ast.MethodCallExpr) Value {
	resultType := b.elaboratedType(x)
	// `Enum.Variant(args)` construction: the receiver is a type name, so
	// there is no receiver value to lower (§4.4).
	if enumIdent, ok := x.Receiver.(*ast.Ident); ok {
		if _, isVar := b.vars[enumIdent.Name]; !isVar {
			if variants, isEnum := b.l.ctx.EnumVariants[enumIdent.Name]; isEnum {
				for _, v := range variants {
					if v.Name == x.Method {
						args := make([]Value, len(x.Args))
						for i, a := range x.Args {
							args[i] = b.lowerExpr(a)
						}
						idx := b.l.variantIndex(enumIdent.Name, x.Method)
						return b.emit(Instr{Op: OpVariantNew, Dst: b.newReg(resultType), Args: args, Field: idx})
					}
				}
			}
		}
	}
	recv := b.lowerExpr(x.Receiver)
	args := make([]Value, 0, len(x.Args)+1)
	args = append(args, recv)
	for _, a := range x.Args {
		args = append(args, b.lowerExpr(a))
	}
	// Dispatch is already resolved by internal/sema (MethodTargets); either
	// way the callee is the receiver type's own method, never a vtable
	// slot (§4.8 "no virtual dispatch").
	typeName := namedTypeNameOf(b.elaboratedType(x.Receiver))
	callee := typeName + "." + x.Method
	return b.emit(Instr{Op: OpCall, Dst: b.newReg(resultType), Args: args, Callee: callee})
}

func (b *builder) fieldIndex(receiver ast.Expr, field string) int {
	typeName := namedTypeNameOf(b.elaboratedType(receiver))
	fields := b.l.ctx.StructFields[typeName]
	for i, f := range fields {
		if f.Name == field {
			return i
		}
	}
	return 0
}

func (l *lowerer) variantIndex(enum, variant string) int {
	variants := l.ctx.EnumVariants[enum]
	for i, v := range variants {
		if v.Name == variant {
			return i
		}
	}
	return 0
}

// namedTypeNameOf unwraps a Reference/RawPointer down to the Named type it
// ultimately addresses, mirroring internal/sema's own receiver-type
// resolution for method dispatch.
func namedTypeNameOf(t types.Type) string {
	switch x := t.(type) {
	case *types.Named:
		return x.Name
	case *types.Reference:
		return namedTypeNameOf(x.Elem)
	case *types.RawPointer:
		return namedTypeNameOf(x.Elem)
	}
	return ""
}

func elementTypeOf(t types.Type) types.Type {
	switch x := t.(type) {
	case *types.Slice:
		return x.Elem
	case *types.Array:
		return x.Elem
	}
	return &types.Primitive{Kind: types.I32}
}
