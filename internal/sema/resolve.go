package sema

import (
	"sort"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

// ResolveAll is Pass 2 (of C4): now that every name in the program is
// registered (Pass 1 ran for every module first, see Run), elaborate
// every declared type's members/signature, then check declared contract
// impls for satisfaction (§3.5, §4.4). It runs exactly once over the
// whole program: every map it walks is keyed by declaration name and
// already holds every module's declarations, so a per-file loop would
// only re-resolve (and, for methods, re-register) the same entries once
// per module.
func (c *Context) ResolveAll(files []*ast.File) {
	for name, decl := range c.aliasDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveAlias(name, decl)
	}
	for name, decl := range c.structDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveStruct(name, decl)
	}
	for name, decl := range c.enumDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveEnum(name, decl)
	}
	for name, decl := range c.contractDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveContract(name, decl)
	}
	for _, decl := range c.funcDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveFunction(decl)
	}
	for _, entry := range c.methodDecls {
		c.curModule = c.declFileOf[entry.Decl]
		c.resolveMethod(entry)
	}
	for _, decl := range c.externDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveExtern(decl)
	}
	for name, decl := range c.constDecls {
		c.curModule = c.declFileOf[decl]
		c.resolveConstSignature(name, decl)
	}

	c.checkEmbeddingCycles()

	// Contract satisfaction is checked once every struct's inherent method
	// set is fully registered (§3.5 "the checker verifies every method
	// required by C is provided with a compatible signature").
	for _, file := range files {
		for _, d := range file.Decls {
			sd, ok := d.(*ast.StructDecl)
			if !ok {
				continue
			}
			for _, contractName := range sd.Impls {
				if !c.Contracts.Satisfies(sd.Name, contractName) {
					c.Sink.Errorf(diag.ContractUnsatisfied, sd.Sp, "%q does not satisfy contract %q", sd.Name, contractName)
				}
			}
		}
	}
}

func (c *Context) resolveAlias(name string, decl *ast.TypeAliasDecl) {
	tp := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParams()
	underlying := c.ElaborateType(decl.Underlying)
	named := c.Types[name].(*types.Named)
	named.Underlying = underlying
	_ = tp
}

func (c *Context) resolveStruct(name string, decl *ast.StructDecl) {
	tp := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParams()
	fields := make([]FieldInfo, len(decl.Fields))
	for i, f := range decl.Fields {
		fields[i] = FieldInfo{Name: f.Name, Type: c.ElaborateType(f.Type), Exported: f.Exported}
	}
	c.StructFields[name] = fields
	_ = tp
}

func (c *Context) resolveEnum(name string, decl *ast.EnumDecl) {
	tp := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParams()
	variants := make([]VariantInfo, len(decl.Variants))
	plain := true
	for i, v := range decl.Variants {
		payload := make([]types.Type, len(v.Payload))
		for j, p := range v.Payload {
			payload[j] = c.ElaborateType(p)
		}
		if len(payload) > 0 {
			plain = false
		}
		variants[i] = VariantInfo{Name: v.Name, Payload: payload}
	}
	c.EnumVariants[name] = variants
	if named, ok := c.Types[name].(*types.Named); ok {
		named.PlainEnum = plain
	}
	_ = tp
}

func (c *Context) resolveContract(name string, decl *ast.ContractDecl) {
	methods := make([]types.MethodSig, len(decl.Methods))
	for i, m := range decl.Methods {
		methods[i] = c.methodSigFromAST(m.Name, m.ReceiverMutable, m.Params, m.Result)
	}
	c.Contracts.RegisterContract(&types.Contract{Name: name, Methods: methods})
}

func (c *Context) resolveFunction(decl *ast.FunctionDecl) {
	tp := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParams()
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = c.ElaborateType(p.Type)
	}
	var result types.Type
	if decl.Result != nil {
		result = c.ElaborateType(decl.Result)
	}
	c.Functions[decl.Name] = &FuncInfo{Decl: decl, TypeParams: tp, Params: params, Result: result, Exported: decl.Exported}
}

func (c *Context) resolveMethod(entry methodEntry) {
	decl := entry.Decl
	tp := c.pushTypeParamScope(decl.TypeParams)
	defer c.popTypeParams()
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = c.ElaborateType(p.Type)
	}
	var result types.Type
	if decl.Result != nil {
		result = c.ElaborateType(decl.Result)
	}
	recvType := c.Types[entry.StructName]
	info := &FuncInfo{
		Decl: decl, Receiver: recvType, ReceiverMut: decl.ReceiverMutable,
		TypeParams: tp, Params: params, Result: result, Exported: decl.Exported,
	}
	c.InherentMethods[entry.StructName] = append(c.InherentMethods[entry.StructName], info)
	c.Contracts.RegisterImpl(entry.StructName, types.MethodSig{
		Name: decl.Name, ReceiverMutable: decl.ReceiverMutable, Params: params, Result: result,
	})
}

func (c *Context) resolveExtern(decl *ast.ExternFunctionDecl) {
	params := make([]types.Type, len(decl.Params))
	for i, p := range decl.Params {
		params[i] = c.ElaborateType(p.Type)
	}
	var result types.Type
	if decl.Result != nil {
		result = c.ElaborateType(decl.Result)
	}
	c.Functions[decl.Name] = &FuncInfo{Decl: decl, Params: params, Result: result, Exported: decl.Exported}
}

// resolveConstSignature elaborates a const's declared type (if any); the
// value itself is type-checked in Pass 3 against this (possibly nil,
// meaning inferred) expected type.
func (c *Context) resolveConstSignature(name string, decl *ast.ConstDecl) {
	sym := c.Consts[name]
	if decl.Type != nil {
		sym.Type = c.ElaborateType(decl.Type)
	}
}

func (c *Context) methodSigFromAST(name string, receiverMutable bool, params []*ast.Param, result ast.TypeExpr) types.MethodSig {
	pts := make([]types.Type, len(params))
	for i, p := range params {
		pts[i] = c.ElaborateType(p.Type)
	}
	var r types.Type
	if result != nil {
		r = c.ElaborateType(result)
	}
	return types.MethodSig{Name: name, ReceiverMutable: receiverMutable, Params: pts, Result: r}
}

// pushTypeParamScope elaborates a declaration's generic parameter bounds
// (contract names only; §3.3) and pushes them into scope so the rest of
// the signature/body can reference them, returning the GenericParam list
// in declaration order for FuncInfo.TypeParams.
func (c *Context) pushTypeParamScope(tps []*ast.TypeParam) []*types.GenericParam {
	m := map[string]*types.GenericParam{}
	out := make([]*types.GenericParam, len(tps))
	for i, tp := range tps {
		bounds := make([]string, 0, len(tp.Bounds))
		for _, b := range tp.Bounds {
			if n, ok := b.(*ast.NamedType); ok {
				bounds = append(bounds, n.Name)
			}
		}
		g := &types.GenericParam{Name: tp.Name, Bounds: bounds}
		m[tp.Name] = g
		out[i] = g
	}
	c.pushTypeParams(m)
	return out
}

// checkEmbeddingCycles rejects a struct or enum that embeds itself by
// value, directly or through other types (§9: the layout of such a type
// is infinite). Indirection through a reference, raw pointer, slice, or
// function type breaks the cycle; arrays, tuples, unions, and enum
// payloads embed by value and do not.
func (c *Context) checkEmbeddingCycles() {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[string]int{}

	var visitType func(t types.Type) bool
	var visitNamed func(name string) bool

	visitType = func(t types.Type) bool {
		switch x := t.(type) {
		case *types.Named:
			if x.Underlying != nil {
				return visitType(x.Underlying)
			}
			return visitNamed(x.Name)
		case *types.Array:
			return visitType(x.Elem)
		case *types.Tuple:
			for _, e := range x.Elems {
				if visitType(e) {
					return true
				}
			}
		case *types.Union:
			for _, m := range x.Members {
				if visitType(m) {
					return true
				}
			}
		}
		return false
	}

	visitNamed = func(name string) bool {
		switch state[name] {
		case visiting:
			return true
		case done:
			return false
		}
		state[name] = visiting
		defer func() { state[name] = done }()
		for _, f := range c.StructFields[name] {
			if f.Type != nil && visitType(f.Type) {
				return true
			}
		}
		for _, v := range c.EnumVariants[name] {
			for _, p := range v.Payload {
				if p != nil && visitType(p) {
					return true
				}
			}
		}
		return false
	}

	names := make([]string, 0, len(c.structDecls)+len(c.enumDecls))
	for n := range c.structDecls {
		names = append(names, n)
	}
	for n := range c.enumDecls {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if state[n] != unvisited {
			continue
		}
		if visitNamed(n) {
			span := c.declSpan(n)
			c.Sink.Errorf(diag.CyclicType, span, "%q embeds itself by value and has no finite layout; break the cycle with a reference or raw pointer", n)
		}
	}
}

func (c *Context) declSpan(name string) token.Span {
	if d, ok := c.structDecls[name]; ok {
		return d.Sp
	}
	if d, ok := c.enumDecls[name]; ok {
		return d.Sp
	}
	return token.Span{}
}
