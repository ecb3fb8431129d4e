// Pass 3 of the sema package: C5 type checking. Walks every function and
// method body, and every const initializer, against the signatures Pass 2
// resolved, producing the typed-AST annotations in Context.Info and
// Context.MethodTargets (§4.5 "Produces a typed AST").
package sema

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

// selfSymbolName is the implicit receiver binding every method body sees,
// whether the method was declared inline in the struct body (contract
// impl, §3.5) or externally with a Go-style receiver parameter — both
// forms bind it under "self" so body code never has to special-case which
// form declared the method; an external method's own receiver parameter
// name is also bound as an alias to the same symbol for readability.
const selfSymbolName = "self"

// CheckAll is Pass 3 (C5): type-check every function/method body and
// const initializer now that every signature is resolved by ResolveAll.
func (c *Context) CheckAll() {
	for _, decl := range c.funcDecls {
		c.curModule = c.declFileOf[decl]
		c.checkFunction(decl)
	}
	for _, entry := range c.methodDecls {
		c.curModule = c.declFileOf[entry.Decl]
		c.checkMethod(entry)
	}
	for name, decl := range c.constDecls {
		c.curModule = c.declFileOf[decl]
		c.checkConst(name, decl)
	}
}

func (c *Context) checkFunction(decl *ast.FunctionDecl) {
	info := c.Functions[decl.Name]
	if info == nil || decl.Body == nil {
		return
	}
	c.enterFuncScope(info.TypeParams, decl.Params, info.Params, info.Result)
	prevAsync := c.inAsync
	c.inAsync = decl.Async
	c.checkBlockAgainstResult(decl.Body, info.Result)
	c.inAsync = prevAsync
	c.popTypeParams()
	c.popScope()
}

func (c *Context) checkMethod(entry methodEntry) {
	decl := entry.Decl
	info := c.lookupMethodInfo(entry.StructName, decl.Name)
	if info == nil || decl.Body == nil {
		return
	}
	c.enterFuncScope(info.TypeParams, decl.Params, info.Params, info.Result)
	recvType := &types.Reference{Elem: c.Types[entry.StructName], Mutable: decl.ReceiverMutable}
	c.define(&Symbol{Name: selfSymbolName, Kind: VarSymbol, Type: recvType, Mutable: decl.ReceiverMutable})
	if decl.Receiver != nil && decl.Receiver.Name != "" && decl.Receiver.Name != selfSymbolName {
		c.define(&Symbol{Name: decl.Receiver.Name, Kind: VarSymbol, Type: recvType, Mutable: decl.ReceiverMutable})
	}
	prevAsync := c.inAsync
	c.inAsync = decl.Async
	c.checkBlockAgainstResult(decl.Body, info.Result)
	c.inAsync = prevAsync
	c.popTypeParams()
	c.popScope()
}

func (c *Context) lookupMethodInfo(structName, methodName string) *FuncInfo {
	for _, m := range c.InherentMethods[structName] {
		if m.Decl.(*ast.MethodDecl).Name == methodName {
			return m
		}
	}
	return nil
}

func (c *Context) enterFuncScope(tps []*types.GenericParam, params []*ast.Param, paramTypes []types.Type, result types.Type) {
	c.pushScope()
	m := map[string]*types.GenericParam{}
	for _, tp := range tps {
		m[tp.Name] = tp
	}
	c.pushTypeParams(m)
	for i, p := range params {
		if i < len(paramTypes) {
			c.define(&Symbol{Name: p.Name, Kind: VarSymbol, Type: paramTypes[i], Mutable: false})
		}
	}
}

// checkBlockAgainstResult checks a function/method body, additionally
// diagnosing a block whose trailing expression has a type not assignable
// to the non-unit declared result. The check is shallow: it looks only at
// the block's own trailing expression, and a body that has no trailing
// expression is not diagnosed here whether or not it ends in a `return`.
func (c *Context) checkBlockAgainstResult(block *ast.BlockStmt, result types.Type) {
	prev := c.curResult
	c.curResult = result
	trailing := c.checkBlock(block)
	if result != nil && trailing != nil && !assignableTo(trailing, result, c.Contracts) {
		c.Sink.Errorf(diag.TypeMismatch, block.Span(), "block evaluates to %s, expected %s", trailing.String(), result.String())
	}
	c.curResult = prev
}

// checkBlock type-checks every statement in block in its own nested scope
// and returns the type of its trailing expression (an ExprStmt as the
// final statement), or nil if the block ends in `;`-terminated statements
// only.
func (c *Context) checkBlock(block *ast.BlockStmt) types.Type {
	c.pushScope()
	defer c.popScope()
	var trailing types.Type
	for i, stmt := range block.Stmts {
		if i == len(block.Stmts)-1 {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				trailing = c.checkExpr(es.X, nil)
				continue
			}
		}
		c.checkStmt(stmt)
	}
	return trailing
}

func (c *Context) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.checkLet(s)
	case *ast.AssignStmt:
		c.checkAssign(s)
	case *ast.ExprStmt:
		c.checkExpr(s.X, nil)
	case *ast.ReturnStmt:
		c.checkReturn(s)
	case *ast.BreakStmt:
		if c.loopDepth == 0 {
			c.Sink.Errorf(diag.TypeMismatch, s.Sp, "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if c.loopDepth == 0 {
			c.Sink.Errorf(diag.TypeMismatch, s.Sp, "continue outside of a loop")
		}
	case *ast.DeferStmt:
		if _, ok := s.Call.(*ast.CallExpr); !ok {
			if _, ok := s.Call.(*ast.MethodCallExpr); !ok {
				c.Sink.Errorf(diag.TypeMismatch, s.Sp, "defer operand must be a call expression")
			}
		}
		c.checkExpr(s.Call, nil)
	case *ast.IfLetStmt:
		c.checkIfLet(s)
	case *ast.ForStmt:
		c.checkFor(s)
	case *ast.WhileStmt:
		c.checkExpectBool(s.Cond)
		c.loopDepth++
		c.checkBlock(s.Body)
		c.loopDepth--
	case *ast.LoopStmt:
		c.loopDepth++
		c.checkBlock(s.Body)
		c.loopDepth--
	case *ast.UnsafeStmt:
		prev := c.inUnsafe
		c.inUnsafe = true
		c.checkBlock(s.Body)
		c.inUnsafe = prev
	case *ast.BlockStmt:
		c.checkBlock(s)
	}
}

func (c *Context) checkLet(s *ast.LetStmt) {
	var expected types.Type
	if s.Type != nil {
		expected = c.ElaborateType(s.Type)
	}
	valType := c.checkExpr(s.Value, expected)
	declared := expected
	if declared == nil {
		declared = valType
		if declared == nil {
			c.Sink.Errorf(diag.InferenceUnresolved, s.Sp, "cannot infer type of %q; add a type annotation", s.Name)
			declared = &types.Never{}
		}
	} else if valType != nil && !assignableTo(valType, declared, c.Contracts) {
		c.Sink.Errorf(diag.TypeMismatch, s.Sp, "cannot assign %s to %q of type %s", valType.String(), s.Name, declared.String())
	}
	c.define(&Symbol{Name: s.Name, Kind: VarSymbol, Type: declared, Mutable: s.Mutable})
	if p, ok := declared.(*types.Primitive); ok && p.IsInteger() {
		if v, ok := c.constEvalInt(s.Value); ok {
			c.constIntValues[s.Name] = v
		}
	}
}

func (c *Context) checkAssign(s *ast.AssignStmt) {
	targetType := c.checkExpr(s.Target, nil)
	var expected types.Type = targetType
	valType := c.checkExpr(s.Value, expected)
	if s.Op != token.ASSIGN {
		if !c.checkOperatorDispatch(s.Op, targetType, valType, s.Sp) {
			return
		}
		return
	}
	if targetType != nil && valType != nil && !assignableTo(valType, targetType, c.Contracts) {
		c.Sink.Errorf(diag.TypeMismatch, s.Sp, "cannot assign %s to target of type %s", valType.String(), targetType.String())
	}
}

func (c *Context) checkReturn(s *ast.ReturnStmt) {
	if s.Value == nil {
		if c.curResult != nil {
			if _, unit := c.curResult.(*types.Primitive); !unit || c.curResult.(*types.Primitive).Kind != types.Unit {
				c.Sink.Errorf(diag.TypeMismatch, s.Sp, "bare return in function expecting %s", c.curResult.String())
			}
		}
		return
	}
	vt := c.checkExpr(s.Value, c.curResult)
	if c.curResult != nil && vt != nil && !assignableTo(vt, c.curResult, c.Contracts) {
		c.Sink.Errorf(diag.TypeMismatch, s.Sp, "return type %s does not match declared result %s", vt.String(), c.curResult.String())
	}
}

func (c *Context) checkIfLet(s *ast.IfLetStmt) {
	scrutType := c.checkExpr(s.Value, nil)
	c.pushScope()
	c.bindPattern(s.Pattern, scrutType)
	if s.Guard != nil {
		c.checkExpectBool(s.Guard)
	}
	c.checkBlock(s.Then)
	c.popScope()
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		c.checkBlock(e)
	case *ast.IfLetStmt:
		c.checkIfLet(e)
	}
}

func (c *Context) checkFor(s *ast.ForStmt) {
	iterType := c.checkExpr(s.Iter, nil)
	c.pushScope()
	c.define(&Symbol{Name: s.Binding, Kind: VarSymbol, Type: elementTypeOf(iterType)})
	c.loopDepth++
	c.checkBlock(s.Body)
	c.loopDepth--
	c.popScope()
}

// elementTypeOf reports the per-iteration binding type for a `for x in
// iter` loop: the element type of an array/slice (also behind a
// reference). Any other iterable, including a range of any integer
// width, binds the element as i32.
func elementTypeOf(t types.Type) types.Type {
	switch x := t.(type) {
	case *types.Array:
		return x.Elem
	case *types.Slice:
		return x.Elem
	case *types.Reference:
		return elementTypeOf(x.Elem)
	}
	return &types.Primitive{Kind: types.I32}
}

func (c *Context) checkExpectBool(e ast.Expr) {
	t := c.checkExpr(e, &types.Primitive{Kind: types.Bool})
	if t != nil {
		if p, ok := t.(*types.Primitive); !ok || p.Kind != types.Bool {
			c.Sink.Errorf(diag.TypeMismatch, e.Span(), "condition must be bool, found %s", t.String())
		}
	}
}

// checkExpr type-checks e and records its inferred type in Context.Info
// (§4.5 "every expression node gains its inferred type"). expected carries
// the outside-in expected type for bidirectional inference (§4.5); it may
// be nil.
func (c *Context) checkExpr(e ast.Expr, expected types.Type) types.Type {
	t := c.inferExpr(e, expected)
	if t != nil {
		c.Info[e] = t
	}
	return t
}

func (c *Context) inferExpr(e ast.Expr, expected types.Type) types.Type {
	switch x := e.(type) {
	case *ast.IntLiteral:
		return c.inferIntLiteral(x, expected)
	case *ast.FloatLiteral:
		return c.inferFloatLiteral(x, expected)
	case *ast.StringLiteral:
		return &types.Primitive{Kind: types.Str}
	case *ast.InterpStringLiteral:
		for _, part := range x.Parts {
			if part.Expr != nil {
				c.checkExpr(part.Expr, nil)
			}
		}
		return &types.Primitive{Kind: types.Str}
	case *ast.BoolLiteral:
		return &types.Primitive{Kind: types.Bool}
	case *ast.NilLiteral:
		return &types.Never{}
	case *ast.Ident:
		return c.inferIdent(x)
	case *ast.CallExpr:
		return c.inferCall(x)
	case *ast.MethodCallExpr:
		return c.inferMethodCall(x)
	case *ast.FieldAccessExpr:
		return c.inferFieldAccess(x)
	case *ast.VariantExpr:
		return c.inferVariant(x)
	case *ast.IndexExpr:
		return c.inferIndex(x)
	case *ast.RangeExpr:
		return c.inferRange(x)
	case *ast.BinaryExpr:
		return c.inferBinary(x)
	case *ast.UnaryExpr:
		return c.inferUnary(x)
	case *ast.IfExpr:
		return c.inferIf(x, expected)
	case *ast.MatchExpr:
		return c.inferMatch(x, expected)
	case *ast.BlockExpr:
		return c.checkBlockAsExpr(x.Block, expected)
	case *ast.BlockStmt:
		return c.checkBlockAsExpr(x, expected)
	case *ast.StructLiteralExpr:
		return c.inferStructLiteral(x)
	case *ast.TupleLiteralExpr:
		return c.inferTuple(x, expected)
	case *ast.ArrayLiteralExpr:
		return c.inferArray(x, expected)
	case *ast.AwaitExpr:
		if !c.inAsync {
			c.Sink.Errorf(diag.TypeMismatch, x.Sp, "await may only appear inside an async fn body")
		}
		return c.checkExpr(x.Operand, nil)
	case *ast.GoExpr:
		return c.checkExpr(x.Call, nil)
	case *ast.CastExpr:
		return c.inferCast(x)
	}
	return nil
}

// inferCast checks `expr as T`. Casts are the only conversion across
// numeric sign, width, or float/int boundaries (§4.5); anything that is
// not numeric-to-numeric must already be the target type.
func (c *Context) inferCast(x *ast.CastExpr) types.Type {
	operand := c.checkExpr(x.Operand, nil)
	target := c.ElaborateType(x.Target)
	if operand == nil || target == nil {
		return target
	}
	if types.Equal(operand, target) {
		return target
	}
	from, fromOk := operand.(*types.Primitive)
	to, toOk := target.(*types.Primitive)
	numeric := func(p *types.Primitive) bool { return p.IsInteger() || p.IsFloat() }
	if fromOk && toOk && numeric(from) && numeric(to) {
		return target
	}
	if fromOk && toOk && from.Kind == types.Bool && to.IsInteger() {
		return target
	}
	c.Sink.Errorf(diag.TypeBadCast, x.Sp, "cannot cast %s to %s", operand, target)
	return target
}

func (c *Context) checkBlockAsExpr(b *ast.BlockStmt, expected types.Type) types.Type {
	_ = expected
	return c.checkBlock(b)
}

// inferIntLiteral implements §4.5's literal-default rule: an unsuffixed
// integer literal infers i32 unless the expected type is itself an
// integer primitive, in which case the literal adopts it (no implicit
// conversion is involved — the literal is typed directly as the target
// width, the way untyped constants adopt a context type).
func (c *Context) inferIntLiteral(x *ast.IntLiteral, expected types.Type) types.Type {
	if x.Suffix != "" {
		if k, ok := primitiveKinds[x.Suffix]; ok {
			return &types.Primitive{Kind: k}
		}
	}
	if p, ok := expected.(*types.Primitive); ok && p.IsInteger() {
		return p
	}
	return &types.Primitive{Kind: types.I32}
}

func (c *Context) inferFloatLiteral(x *ast.FloatLiteral, expected types.Type) types.Type {
	if x.Suffix != "" {
		if k, ok := primitiveKinds[x.Suffix]; ok {
			return &types.Primitive{Kind: k}
		}
	}
	if p, ok := expected.(*types.Primitive); ok && p.IsFloat() {
		return p
	}
	return &types.Primitive{Kind: types.F64}
}

func (c *Context) inferIdent(x *ast.Ident) types.Type {
	if sym, ok := c.lookup(x.Name); ok {
		c.checkVisibility(x.Name, x.Sp)
		return sym.Type
	}
	if g, ok := c.lookupTypeParam(x.Name); ok {
		return g
	}
	c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "unknown name %q", x.Name)
	return &types.Never{}
}

func (c *Context) inferCall(x *ast.CallExpr) types.Type {
	callee, ok := x.Callee.(*ast.Ident)
	if !ok {
		ct := c.checkExpr(x.Callee, nil)
		fn, ok := ct.(*types.Func)
		if !ok {
			c.Sink.Errorf(diag.TypeNotCallable, x.Sp, "expression is not callable")
			for _, a := range x.Args {
				c.checkExpr(a, nil)
			}
			return &types.Never{}
		}
		c.checkArgs(x.Args, fn.Params, x.Sp)
		return fn.Result
	}
	c.checkVisibility(callee.Name, x.Sp)
	if sym, ok := c.lookup(callee.Name); ok && sym.Kind != FuncSymbol {
		if fn, ok := sym.Type.(*types.Func); ok {
			c.checkArgs(x.Args, fn.Params, x.Sp)
			return fn.Result
		}
		c.Sink.Errorf(diag.TypeNotCallable, x.Sp, "%q is not callable", callee.Name)
		return &types.Never{}
	}
	info, ok := c.Functions[callee.Name]
	if !ok {
		c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "unknown function %q", callee.Name)
		for _, a := range x.Args {
			c.checkExpr(a, nil)
		}
		return &types.Never{}
	}
	if len(info.TypeParams) == 0 {
		c.checkArgs(x.Args, info.Params, x.Sp)
		return info.Result
	}
	return c.inferGenericCall(x, info)
}

// inferGenericCall instantiates a generic free function at one call site
// (§4.5 bidirectional inference feeding §4.7's monomorphizer): it checks
// each argument against the function's declared (still-generic) parameter
// types, unifies each argument's inferred type against that parameter to
// solve every type variable, then substitutes the solved tuple into the
// declared result so the call expression gets a concrete type instead of a
// bare type parameter. The solved tuple is recorded in GenericCallArgs,
// ordered by info.TypeParams, for internal/mono to consume directly.
func (c *Context) inferGenericCall(x *ast.CallExpr, info *FuncInfo) types.Type {
	c.checkArgs(x.Args, info.Params, x.Sp)
	subst := map[string]types.Type{}
	for i, a := range x.Args {
		if i >= len(info.Params) {
			break
		}
		at := c.Info[a]
		if at == nil {
			continue
		}
		types.Unify(info.Params[i], at, subst)
	}
	args := make([]types.Type, len(info.TypeParams))
	for i, tp := range info.TypeParams {
		bound, ok := subst[tp.Name]
		if !ok {
			c.Sink.Errorf(diag.InferenceAmbiguous, x.Sp, "cannot infer type argument %q for %q", tp.Name, functionNameOf(x))
			bound = &types.Never{}
		}
		args[i] = bound
	}
	c.GenericCallArgs[x] = args
	return types.Substitute(info.Result, subst)
}

func functionNameOf(x *ast.CallExpr) string {
	if id, ok := x.Callee.(*ast.Ident); ok {
		return id.Name
	}
	return "<expr>"
}

// checkArgs checks each argument's type against the declared parameter
// list, reporting arity/type mismatches (§4.5 "function-call argument
// checking"). A trailing variadic parameter (marked on the ast.Param, not
// reflected in the elaborated Type slice length) is accepted by the
// parser per §9c ("accept only pass-through to externs until defined");
// this checker tolerates extra trailing args without further type
// checking against a variadic tail since Vex has not yet defined variadic
// iteration semantics beyond extern pass-through.
func (c *Context) checkArgs(args []ast.Expr, params []types.Type, sp token.Span) {
	if len(args) < len(params) {
		c.Sink.Errorf(diag.TypeWrongArity, sp, "expected %d argument(s), found %d", len(params), len(args))
	}
	for i, a := range args {
		var expected types.Type
		if i < len(params) {
			expected = params[i]
		}
		at := c.checkExpr(a, expected)
		if i < len(params) && at != nil && !assignableTo(at, expected, c.Contracts) {
			c.Sink.Errorf(diag.TypeMismatch, a.Span(), "argument %d: expected %s, found %s", i+1, expected.String(), at.String())
		}
	}
}

// inferMethodCall resolves dispatch on a receiver whose type names a
// struct or enum (directly or behind a reference/pointer): an inherent
// method on that type first, then a method in the type's registered impl
// set (Contracts.Methods), which holds the same inherent methods. A
// receiver typed by a type parameter is not resolved through its bounds
// and is reported as unresolved, and no ambiguity between contracts is
// detected.
func (c *Context) inferMethodCall(x *ast.MethodCallExpr) types.Type {
	// `Enum.Variant(args)` is the call-form equivalent of
	// `Enum::Variant(args)` (§4.4); the receiver names the enum type, not
	// a value, so it must not be checked as an expression.
	if enumIdent, ok := x.Receiver.(*ast.Ident); ok {
		if variants, isEnum := c.EnumVariants[enumIdent.Name]; isEnum {
			for _, v := range variants {
				if v.Name == x.Method {
					return c.checkVariantConstruct(enumIdent.Name, x.Method, x.Args, x.Sp)
				}
			}
		}
	}
	recvType := c.checkExpr(x.Receiver, nil)
	typeName := namedTypeNameOf(recvType)
	if typeName == "" {
		for _, a := range x.Args {
			c.checkExpr(a, nil)
		}
		c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "cannot resolve method %q on %s", x.Method, describeType(recvType))
		return &types.Never{}
	}
	for _, m := range c.InherentMethods[typeName] {
		if m.Decl.(*ast.MethodDecl).Name == x.Method {
			c.MethodTargets[x] = MethodTarget{Inherent: true}
			c.checkArgs(x.Args, m.Params, x.Sp)
			return m.Result
		}
	}
	for _, sig := range c.Contracts.Methods(typeName) {
		if sig.Name == x.Method {
			c.MethodTargets[x] = MethodTarget{Inherent: false}
			c.checkArgs(x.Args, sig.Params, x.Sp)
			return sig.Result
		}
	}
	for _, a := range x.Args {
		c.checkExpr(a, nil)
	}
	c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "no method %q on %s", x.Method, typeName)
	return &types.Never{}
}

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

func describeType(t types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

func (c *Context) inferFieldAccess(x *ast.FieldAccessExpr) types.Type {
	recvType := c.checkExpr(x.Receiver, nil)
	typeName := namedTypeNameOf(recvType)
	if typeName == "" {
		c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "cannot access field %q on %s", x.Field, describeType(recvType))
		return &types.Never{}
	}
	for _, f := range c.StructFields[typeName] {
		if f.Name == x.Field {
			return f.Type
		}
	}
	// Tuple positional fields are written `.0`, `.1`, ... in source and
	// parsed as an ordinary field name; resolve those against a Tuple
	// receiver if the struct-field lookup above found nothing.
	if tup, ok := recvType.(*types.Tuple); ok {
		if idx, ok := tupleIndex(x.Field); ok && idx < len(tup.Elems) {
			return tup.Elems[idx]
		}
	}
	c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "%s has no field %q", typeName, x.Field)
	return &types.Never{}
}

func tupleIndex(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// inferVariant checks `Enum::Variant(args...)` / `Enum.Variant(args...)`
// construction against the enum's declared payload shape (§4.4, §4.8).
func (c *Context) inferVariant(x *ast.VariantExpr) types.Type {
	return c.checkVariantConstruct(x.Enum, x.Variant, x.Args, x.Sp)
}

func (c *Context) checkVariantConstruct(enum, variant string, args []ast.Expr, sp token.Span) types.Type {
	c.checkVisibility(enum, sp)
	variants, ok := c.EnumVariants[enum]
	if !ok {
		for _, a := range args {
			c.checkExpr(a, nil)
		}
		c.Sink.Errorf(diag.ResolveUnknownName, sp, "unknown enum %q", enum)
		return &types.Never{}
	}
	var payload []types.Type
	found := false
	for _, v := range variants {
		if v.Name == variant {
			payload = v.Payload
			found = true
			break
		}
	}
	if !found {
		for _, a := range args {
			c.checkExpr(a, nil)
		}
		c.Sink.Errorf(diag.ResolveUnknownName, sp, "%s has no variant %q", enum, variant)
		return &types.Never{}
	}
	if len(args) != len(payload) {
		c.Sink.Errorf(diag.TypeWrongArity, sp, "%s::%s expects %d argument(s), found %d", enum, variant, len(payload), len(args))
	}
	for i, a := range args {
		var expected types.Type
		if i < len(payload) {
			expected = payload[i]
		}
		at := c.checkExpr(a, expected)
		if i < len(payload) && at != nil && !assignableTo(at, expected, c.Contracts) {
			c.Sink.Errorf(diag.TypeMismatch, a.Span(), "%s::%s argument %d: expected %s, found %s", enum, variant, i+1, expected.String(), at.String())
		}
	}
	return c.Types[enum]
}

func (c *Context) inferIndex(x *ast.IndexExpr) types.Type {
	recvType := c.checkExpr(x.Receiver, nil)
	c.checkExpr(x.Index, nil)
	switch t := recvType.(type) {
	case *types.Array:
		return t.Elem
	case *types.Slice:
		return t.Elem
	case *types.Reference:
		switch e := t.Elem.(type) {
		case *types.Array:
			return e.Elem
		case *types.Slice:
			return e.Elem
		}
	}
	c.Sink.Errorf(diag.TypeMismatch, x.Sp, "cannot index %s", describeType(recvType))
	return &types.Never{}
}

func (c *Context) inferRange(x *ast.RangeExpr) types.Type {
	var elem types.Type
	if x.From != nil {
		elem = c.checkExpr(x.From, nil)
	}
	if x.To != nil {
		t := c.checkExpr(x.To, elem)
		if elem == nil {
			elem = t
		}
	}
	return elem
}

// inferBinary dispatches every binary operator per §6.6: built-in
// numeric/bool/string operators short-circuit contract resolution
// (§4.5); anything else resolves to the operand's contract method and
// errors with OperatorNoOverload if none applies.
func (c *Context) inferBinary(x *ast.BinaryExpr) types.Type {
	lt := c.checkExpr(x.Left, nil)
	rt := c.checkExpr(x.Right, lt)
	if lt == nil || rt == nil {
		return nil
	}
	if isComparisonOp(x.Op) {
		if !c.checkOperatorDispatch(x.Op, lt, rt, x.Sp) {
			return &types.Never{}
		}
		return &types.Primitive{Kind: types.Bool}
	}
	if x.Op == token.ANDAND || x.Op == token.OROR {
		c.expectBoolOperand(lt, x.Left.Span())
		c.expectBoolOperand(rt, x.Right.Span())
		return &types.Primitive{Kind: types.Bool}
	}
	if ptr, ok := lt.(*types.RawPointer); ok && (x.Op == token.PLUS || x.Op == token.MINUS) {
		// Raw-pointer arithmetic is confined to unsafe scopes (§3.3).
		if !c.inUnsafe {
			c.Sink.Errorf(diag.TypeMismatch, x.Sp, "raw pointer arithmetic requires an unsafe block")
			return &types.Never{}
		}
		if rp, ok := rt.(*types.Primitive); !ok || !rp.IsInteger() {
			c.Sink.Errorf(diag.TypeMismatch, x.Right.Span(), "raw pointer offset must be an integer, found %s", describeType(rt))
		}
		return ptr
	}
	if !c.checkOperatorDispatch(x.Op, lt, rt, x.Sp) {
		return &types.Never{}
	}
	return lt
}

func (c *Context) expectBoolOperand(t types.Type, sp token.Span) {
	if p, ok := t.(*types.Primitive); !ok || p.Kind != types.Bool {
		c.Sink.Errorf(diag.TypeMismatch, sp, "expected bool operand, found %s", describeType(t))
	}
}

func isComparisonOp(op token.Kind) bool {
	switch op {
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

// checkOperatorDispatch implements §4.5/§6.6: built-in numeric and string
// `+`/comparison operators apply directly when both operands are the same
// primitive kind (§4.5 "numeric conversions... require an explicit `as`
// cast" — so mismatched widths are always an error here, never silently
// widened); otherwise the left operand's type must name a struct/enum
// that implements the operator's mapped contract method.
func (c *Context) checkOperatorDispatch(op token.Kind, lt, rt types.Type, sp token.Span) bool {
	lp, lok := lt.(*types.Primitive)
	rp, rok := rt.(*types.Primitive)
	if lok && rok {
		if lp.Kind != rp.Kind {
			c.Sink.Errorf(diag.OperatorMixedNumeric, sp, "mismatched operand types %s and %s; use an explicit `as` cast", lp.String(), rp.String())
			return false
		}
		return true
	}
	methodName, ok := types.OperatorMethod[baseOp(op)]
	if !ok {
		c.Sink.Errorf(diag.OperatorNoOverload, sp, "operator has no overload mapping")
		return false
	}
	typeName := namedTypeNameOf(lt)
	if typeName == "" {
		c.Sink.Errorf(diag.OperatorNoOverload, sp, "no overload of %q applies to %s", methodName, describeType(lt))
		return false
	}
	wantMutable := types.IsCompoundAssign(op)
	for _, sig := range c.Contracts.Methods(typeName) {
		if sig.Name == methodName && sig.ReceiverMutable == wantMutable {
			return true
		}
	}
	c.Sink.Errorf(diag.OperatorNoOverload, sp, "%s does not implement %q", typeName, methodName)
	return false
}

// baseOp maps a compound-assignment token to its non-assigning operator
// so a single OperatorMethod table entry covers both forms' base name
// (the `_assign` suffix and mutable-receiver requirement are applied by
// the caller, §6.6).
func baseOp(op token.Kind) token.Kind {
	switch op {
	case token.PLUS_ASSIGN:
		return token.PLUS
	case token.MINUS_ASSIGN:
		return token.MINUS
	case token.STAR_ASSIGN:
		return token.STAR
	case token.SLASH_ASSIGN:
		return token.SLASH
	case token.PERCENT_ASSIGN:
		return token.PERCENT
	}
	return op
}

func (c *Context) inferUnary(x *ast.UnaryExpr) types.Type {
	operandType := c.checkExpr(x.Operand, nil)
	switch x.Op {
	case token.AMP:
		return &types.Reference{Elem: operandType, Mutable: x.RefMut}
	case token.STAR:
		switch t := operandType.(type) {
		case *types.Reference:
			return t.Elem
		case *types.RawPointer:
			return t.Elem
		}
		c.Sink.Errorf(diag.TypeMismatch, x.Sp, "cannot dereference %s", describeType(operandType))
		return &types.Never{}
	case token.BANG:
		c.expectBoolOperand(operandType, x.Sp)
		return &types.Primitive{Kind: types.Bool}
	case token.MINUS:
		if p, ok := operandType.(*types.Primitive); ok && (p.IsInteger() || p.IsFloat()) {
			return p
		}
		c.Sink.Errorf(diag.TypeMismatch, x.Sp, "cannot negate %s", describeType(operandType))
		return &types.Never{}
	}
	return operandType
}

func (c *Context) inferIf(x *ast.IfExpr, expected types.Type) types.Type {
	c.checkExpectBool(x.Cond)
	thenType := c.checkBlockAsExpr(x.Then, expected)
	switch e := x.Else.(type) {
	case *ast.BlockStmt:
		elseType := c.checkBlockAsExpr(e, expected)
		if thenType != nil && elseType != nil && !types.Equal(thenType, elseType) {
			c.Sink.Errorf(diag.TypeMismatch, x.Sp, "if/else arms have different types: %s vs %s", thenType.String(), elseType.String())
		}
	case *ast.IfExpr:
		c.inferIf(e, expected)
	}
	return thenType
}

// inferMatch checks every arm's body and, per §4.5, enforces exhaustiveness:
// enums require every variant reached or a wildcard; unions require one
// arm per member or a wildcard; everything else requires a wildcard.
func (c *Context) inferMatch(x *ast.MatchExpr, expected types.Type) types.Type {
	scrutType := c.checkExpr(x.Scrutinee, nil)
	var resultType types.Type
	hasWildcard := false
	seenVariants := map[string]bool{}
	seenUnionMembers := 0

	for _, arm := range x.Arms {
		c.pushScope()
		if arm.Wildcard {
			hasWildcard = true
		} else if arm.Pattern != nil {
			c.bindPattern(arm.Pattern, scrutType)
			switch p := arm.Pattern.(type) {
			case *ast.VariantPattern:
				seenVariants[p.Variant] = true
			case *ast.TypePattern:
				seenUnionMembers++
			}
		}
		if arm.Guard != nil {
			c.checkExpectBool(arm.Guard)
		}
		// arm.Body is an Expr or a *BlockStmt; BlockStmt itself satisfies
		// ast.Expr (it is usable in expression position), so a single
		// assertion to ast.Expr covers both shapes.
		var armType types.Type
		if body, ok := arm.Body.(ast.Expr); ok {
			armType = c.checkExpr(body, expected)
		}
		c.popScope()
		if resultType == nil {
			resultType = armType
		} else if armType != nil && !types.Equal(resultType, armType) {
			c.Sink.Errorf(diag.TypeMismatch, x.Sp, "match arms have different types: %s vs %s", resultType.String(), armType.String())
		}
	}

	c.checkExhaustiveness(x, scrutType, hasWildcard, seenVariants, seenUnionMembers)
	return resultType
}

func (c *Context) checkExhaustiveness(x *ast.MatchExpr, scrutType types.Type, hasWildcard bool, seenVariants map[string]bool, seenUnionMembers int) {
	if hasWildcard {
		return
	}
	typeName := namedTypeNameOf(scrutType)
	if typeName != "" {
		if variants, ok := c.EnumVariants[typeName]; ok {
			for _, v := range variants {
				if !seenVariants[v.Name] {
					c.Sink.Errorf(diag.ExhaustivenessGap, x.Sp, "non-exhaustive match: missing %s::%s", typeName, v.Name)
				}
			}
			return
		}
	}
	if u, ok := scrutType.(*types.Union); ok {
		if seenUnionMembers < len(u.Members) {
			c.Sink.Errorf(diag.ExhaustivenessGap, x.Sp, "non-exhaustive match over union type %s: add the missing member arm(s) or a wildcard", u.String())
		}
		return
	}
	// Integers/booleans/strings always require a wildcard (§4.5); no
	// literal-set enumeration can be proven exhaustive.
	c.Sink.Errorf(diag.ExhaustivenessGap, x.Sp, "non-exhaustive match: add a wildcard arm")
}

// bindPattern introduces the bindings a match/if-let pattern names, given
// the scrutinee's type.
func (c *Context) bindPattern(p ast.Pattern, scrutType types.Type) {
	switch pat := p.(type) {
	case *ast.VariantPattern:
		var payload []types.Type
		if variants, ok := c.EnumVariants[pat.Enum]; ok {
			for _, v := range variants {
				if v.Name == pat.Variant {
					payload = v.Payload
					break
				}
			}
		}
		for i, name := range pat.Bindings {
			if name == "_" {
				continue
			}
			var t types.Type
			if i < len(payload) {
				t = payload[i]
			}
			c.define(&Symbol{Name: name, Kind: VarSymbol, Type: t})
		}
	case *ast.TypePattern:
		t := c.ElaborateType(pat.Type)
		if pat.Binding != "" && pat.Binding != "_" {
			c.define(&Symbol{Name: pat.Binding, Kind: VarSymbol, Type: t})
		}
	case *ast.LiteralPattern:
		c.checkExpr(pat.Value, scrutType)
	}
}

func (c *Context) inferStructLiteral(x *ast.StructLiteralExpr) types.Type {
	fields, ok := c.StructFields[x.Type]
	if !ok {
		for _, f := range x.Fields {
			c.checkExpr(f.Value, nil)
		}
		c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "unknown struct %q", x.Type)
		return &types.Never{}
	}
	seen := map[string]bool{}
	for _, lit := range x.Fields {
		seen[lit.Name] = true
		var expected types.Type
		for _, f := range fields {
			if f.Name == lit.Name {
				expected = f.Type
				break
			}
		}
		if expected == nil {
			c.checkExpr(lit.Value, nil)
			c.Sink.Errorf(diag.ResolveUnknownName, x.Sp, "%s has no field %q", x.Type, lit.Name)
			continue
		}
		vt := c.checkExpr(lit.Value, expected)
		if vt != nil && !assignableTo(vt, expected, c.Contracts) {
			c.Sink.Errorf(diag.TypeMismatch, lit.Value.Span(), "field %q: expected %s, found %s", lit.Name, expected.String(), vt.String())
		}
	}
	for _, f := range fields {
		if !seen[f.Name] {
			c.Sink.Errorf(diag.TypeWrongArity, x.Sp, "missing field %q in %s literal", f.Name, x.Type)
		}
	}
	return c.Types[x.Type]
}

func (c *Context) inferTuple(x *ast.TupleLiteralExpr, expected types.Type) types.Type {
	expectedTup, _ := expected.(*types.Tuple)
	elems := make([]types.Type, len(x.Elems))
	for i, el := range x.Elems {
		var want types.Type
		if expectedTup != nil && i < len(expectedTup.Elems) {
			want = expectedTup.Elems[i]
		}
		elems[i] = c.checkExpr(el, want)
	}
	return &types.Tuple{Elems: elems}
}

func (c *Context) inferArray(x *ast.ArrayLiteralExpr, expected types.Type) types.Type {
	var expectedElem types.Type
	if at, ok := expected.(*types.Array); ok {
		expectedElem = at.Elem
	}
	if x.Repeat != nil {
		elemType := c.checkExpr(x.Repeat, expectedElem)
		n, _ := c.constEvalInt(x.Count)
		c.checkExpr(x.Count, nil)
		return &types.Array{Elem: elemType, Size: n}
	}
	if len(x.Elems) == 0 {
		if expectedElem != nil {
			return &types.Array{Elem: expectedElem, Size: 0}
		}
		c.Sink.Errorf(diag.InferenceUnresolved, x.Sp, "cannot infer element type of empty array literal; add a type annotation")
		return &types.Array{Elem: &types.Never{}, Size: 0}
	}
	var elemType types.Type
	for i, el := range x.Elems {
		want := expectedElem
		if want == nil {
			want = elemType
		}
		t := c.checkExpr(el, want)
		if elemType == nil {
			elemType = t
		} else if t != nil && !types.Equal(elemType, t) {
			c.Sink.Errorf(diag.TypeMismatch, el.Span(), "array element %d: expected %s, found %s", i, elemType.String(), t.String())
		}
	}
	return &types.Array{Elem: elemType, Size: len(x.Elems)}
}

func (c *Context) checkConst(name string, decl *ast.ConstDecl) {
	sym := c.Consts[name]
	vt := c.checkExpr(decl.Value, sym.Type)
	if sym.Type == nil {
		sym.Type = vt
	} else if vt != nil && !assignableTo(vt, sym.Type, c.Contracts) {
		c.Sink.Errorf(diag.TypeMismatch, decl.Sp, "const %q: expected %s, found %s", name, sym.Type.String(), vt.String())
	}
	if p, ok := sym.Type.(*types.Primitive); ok && p.IsInteger() {
		if v, ok := c.constEvalInt(decl.Value); ok {
			c.constIntValues[name] = v
		}
	}
}

// assignableTo implements the narrow coercions §4.5 allows: identical
// types, a concrete type coercing into a union that contains it
// (§4.5 "an expression of type T coerces to (T | U) by tag-construction"),
// or Never (the uninhabited type) coercing into anything (§3.3 "subtype of
// every type"). Everything else — including numeric width/signedness
// changes — requires an explicit `as` cast and is rejected here.
func assignableTo(from, to types.Type, reg *types.ContractRegistry) bool {
	if to == nil {
		return true
	}
	if types.Equal(from, to) {
		return true
	}
	if _, ok := from.(*types.Never); ok {
		return true
	}
	if _, ok := to.(*types.GenericParam); ok {
		// A still-generic parameter type accepts any argument shape here.
		// inferGenericCall then binds each type parameter to the type of
		// the first argument it meets (types.Unify is first-bind-wins);
		// a later argument bound to a different type is not diagnosed.
		return true
	}
	if u, ok := to.(*types.Union); ok {
		for _, m := range u.Members {
			if assignableTo(from, m, reg) {
				return true
			}
		}
		return false
	}
	if fromRef, ok := from.(*types.Reference); ok {
		if toRef, ok := to.(*types.Reference); ok {
			if fromRef.Mutable || !toRef.Mutable {
				return assignableTo(fromRef.Elem, toRef.Elem, reg)
			}
		}
	}
	return false
}
