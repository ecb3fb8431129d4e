package sema

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/types"
)

// conditionalRewriteBound caps how many times a conditional type may
// rewrite to another conditional before CyclicTypeError (§4.5, default
// 64).
const conditionalRewriteBound = 64

// primitiveKinds maps every spelling in §3.3 (including the "byte" alias,
// which elaborates directly to u8, §3.3) to its Kind.
var primitiveKinds = map[string]types.Kind{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128,
	"byte": types.U8,
	"f16":  types.F16, "f32": types.F32, "f64": types.F64,
	"bool": types.Bool, "String": types.Str, "str": types.Str,
	"unit": types.Unit,
}

// ElaborateType converts a parsed TypeExpr into an internal Type (§3.3,
// §4.4 "type names in type position are elaborated to internal Type
// nodes"). Generic parameters currently in scope take priority over a
// same-named declared type, matching ordinary identifier shadowing.
func (c *Context) ElaborateType(te ast.TypeExpr) types.Type {
	if te == nil {
		return nil
	}
	switch t := te.(type) {
	case *ast.NamedType:
		return c.elaborateNamed(t)
	case *ast.RefType:
		return &types.Reference{Elem: c.ElaborateType(t.Elem), Mutable: t.Mutable}
	case *ast.RawPtrType:
		return &types.RawPointer{Elem: c.ElaborateType(t.Elem), Mutable: t.Mutable}
	case *ast.ArrayType:
		size, ok := c.constEvalInt(t.Size)
		if !ok {
			size = -1
		}
		return &types.Array{Elem: c.ElaborateType(t.Elem), Size: size}
	case *ast.SliceType:
		return &types.Slice{Elem: c.ElaborateType(t.Elem), Mutable: t.Mutable}
	case *ast.TupleType:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = c.ElaborateType(e)
		}
		return &types.Tuple{Elems: elems}
	case *ast.FuncType:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.ElaborateType(p)
		}
		var result types.Type
		if t.Result != nil {
			result = c.ElaborateType(t.Result)
		}
		return &types.Func{Params: params, Result: result}
	case *ast.UnionType:
		return c.elaborateUnion(t)
	case *ast.IntersectionType:
		names := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			if n, ok := m.(*ast.NamedType); ok {
				names = append(names, n.Name)
			} else {
				c.Sink.Errorf(diag.ResolveUnknownName, m.Span(), "intersection bound must name a contract")
			}
		}
		return &types.Intersection{Contracts: names}
	case *ast.ConditionalType:
		checked := c.ElaborateType(t.Checked)
		extends := c.ElaborateType(t.Extends)
		then := c.ElaborateType(t.Then)
		els := c.ElaborateType(t.Else)
		var out types.Type = &types.Conditional{Checked: checked, Extends: extends, Then: then, Else: els}
		for i := 0; i < conditionalRewriteBound; i++ {
			cond, ok := out.(*types.Conditional)
			if !ok {
				return out
			}
			reduced, progressed := types.ReduceConditional(cond, c.Contracts)
			if !progressed {
				// Not reducible yet (a generic parameter is still
				// unbound); left for instantiation to finish.
				return out
			}
			out = reduced
		}
		c.Sink.Errorf(diag.CyclicType, t.Sp, "conditional type did not resolve within %d rewrites", conditionalRewriteBound)
		return &types.Never{}
	case *ast.InferType:
		// Only meaningful inside a ConditionalType's Extends clause; bare
		// use elaborates to an unbound generic placeholder that
		// ReduceConditional (or, failing that, the monomorphizer) binds
		// from the matched structure (§3.3 Conditional, §4.5).
		return &types.GenericParam{Name: t.Name}
	}
	return nil
}

func (c *Context) elaborateNamed(t *ast.NamedType) types.Type {
	if g, ok := c.lookupTypeParam(t.Name); ok {
		return g
	}
	if k, ok := primitiveKinds[t.Name]; ok {
		return &types.Primitive{Kind: k}
	}
	decl, ok := c.Types[t.Name]
	if !ok {
		c.Sink.Errorf(diag.ResolveUnknownName, t.Sp, "unknown type %q", t.Name)
		return &types.Never{}
	}
	c.checkVisibility(t.Name, t.Sp)
	named, ok := decl.(*types.Named)
	if !ok {
		return decl
	}
	if len(t.Args) == 0 {
		return named
	}
	args := make([]types.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = c.ElaborateType(a)
	}
	return &types.Named{Name: named.Name, Kind: named.Kind, Underlying: named.Underlying, Args: args, PlainEnum: named.PlainEnum}
}

// elaborateUnion flattens nested unions at elaboration time (§4.5 "Nested
// unions are flattened during elaboration") and preserves declared order
// for discriminant stability (§3.3, §8).
func (c *Context) elaborateUnion(t *ast.UnionType) types.Type {
	var members []types.Type
	for _, m := range t.Members {
		elaborated := c.ElaborateType(m)
		if nested, ok := elaborated.(*types.Union); ok {
			members = append(members, nested.Members...)
			continue
		}
		members = append(members, elaborated)
	}
	return &types.Union{Members: members}
}

// constEvalInt evaluates a compile-time natural-number expression, used
// for array sizes (§3.3 Array: "N a compile-time constant"). Only integer
// literals and references to an already-resolved top-level const are
// supported; for anything else it reports false, ElaborateType records
// the array's Size as -1, and no diagnostic is reported for it.
func (c *Context) constEvalInt(e ast.Expr) (int, bool) {
	switch x := e.(type) {
	case *ast.IntLiteral:
		return int(x.Value), true
	case *ast.Ident:
		if sym, ok := c.Consts[x.Name]; ok {
			if p, ok := sym.Type.(*types.Primitive); ok && p.IsInteger() {
				if v, ok := c.constIntValues[x.Name]; ok {
					return v, true
				}
			}
		}
	}
	return 0, false
}
