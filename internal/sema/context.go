// Package sema implements C4 (name & type resolution) and C5 (type
// checking) as two ordered passes over one shared Context, following §4.4
// and §4.5. Declaration collection runs first across every module so
// forward references between modules and within a module resolve
// regardless of declaration order, then type checking walks function
// bodies and const initializers against the now-complete registries.
package sema

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/source"
	"github.com/vexlang/vexc/internal/types"
	"github.com/vexlang/vexc/pkg/token"
)

// SymbolKind classifies an entry in the symbol table.
type SymbolKind int

const (
	VarSymbol SymbolKind = iota
	ConstSymbol
	FuncSymbol
	TypeParamSymbol
)

// Symbol is one bound name: a local, a parameter, a top-level const, or a
// function (§4.4 "identifiers resolve ... local binding, enclosing
// function parameter, ... module-local declaration").
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    types.Type
	Mutable bool
}

// scope is one lexical block's bindings.
type scope map[string]*Symbol

// FuncInfo is a fully resolved function/method signature.
type FuncInfo struct {
	Decl       ast.Node // *ast.FunctionDecl or *ast.MethodDecl
	Receiver   types.Type // nil for free functions
	ReceiverMut bool
	TypeParams []*types.GenericParam
	Params     []types.Type
	Result     types.Type // nil means unit
	Exported   bool
}

// Context is the shared state threaded through both sema passes and read
// by the borrow checker and monomorphizer afterward (§4.4, §4.5).
type Context struct {
	Sink *diag.Sink

	// Types holds every declared struct/enum/alias, keyed by name. Contract
	// names live in Contracts instead since they are never a storage type.
	Types map[string]types.Type

	// Contracts records required method sets and impls (§3.5).
	Contracts *types.ContractRegistry

	// Functions holds every free function's resolved signature, keyed by
	// name. Methods are not listed here: method dispatch goes through
	// Contracts.Methods(typeName) plus the inherent-method table below.
	Functions map[string]*FuncInfo

	// InherentMethods maps a type name to its inline/external method set,
	// consulted before contract methods per §4.4's dispatch order.
	InherentMethods map[string][]*FuncInfo

	// Consts holds resolved top-level constant types (and, for the simple
	// literal case, their evaluated integer value for use as an array
	// size).
	Consts map[string]*Symbol

	// constIntValues caches the evaluated integer value of a top-level
	// const, consulted by constEvalInt when elaborating an array size that
	// names a const instead of a literal.
	constIntValues map[string]int

	// Info annotates every type-checked expression with its inferred type,
	// the typed-AST output of C5 (§4.5 "Produces a typed AST").
	Info map[ast.Expr]types.Type

	// MethodTargets records, for each MethodCallExpr, whether dispatch
	// resolved to an inherent method or a named contract (§4.4).
	MethodTargets map[*ast.MethodCallExpr]MethodTarget

	// GenericCallArgs records, for each call to a generic free function,
	// the concrete type-argument tuple solved from the call's argument
	// types (§4.7 "Instantiate generics to concrete specializations"),
	// ordered to match the callee's FuncInfo.TypeParams. Consulted by
	// internal/mono instead of re-deriving unification from scratch.
	GenericCallArgs map[*ast.CallExpr][]types.Type

	// StructFields and EnumVariants carry the member shape of a Named type;
	// kept outside internal/types since that package stays a slim Type sum
	// with no declaration-level concerns (§3.3).
	StructFields  map[string][]FieldInfo
	EnumVariants  map[string][]VariantInfo

	// Visibility bookkeeping (§3.2): every top-level name's declaring
	// module, its export flag, and the per-module implicit export-all
	// fallback (a module with zero explicit exports exposes everything;
	// one explicit export flips it to explicit-only). curModule tracks
	// which module's declaration is being resolved or checked so
	// cross-module references to private names can be rejected.
	declModule   map[string]string
	declExported map[string]bool
	exportAll    map[string]bool
	declFileOf   map[ast.Node]string
	curModule    string

	scopes     []scope
	typeParams []map[string]*types.GenericParam

	loopDepth int
	inAsync   bool
	inUnsafe  bool
	curResult types.Type // current function's declared result type, for return-checking

	// Raw declarations kept from Pass 1 for Pass 2/3 to walk.
	structDecls   map[string]*ast.StructDecl
	enumDecls     map[string]*ast.EnumDecl
	contractDecls map[string]*ast.ContractDecl
	aliasDecls    map[string]*ast.TypeAliasDecl
	constDecls    map[string]*ast.ConstDecl
	funcDecls     []*ast.FunctionDecl
	methodDecls   []methodEntry
	externDecls   []*ast.ExternFunctionDecl
}

// methodEntry pairs a method declaration with the struct name it extends,
// recovered from either the enclosing struct body (inline methods) or the
// Go-style `fn (r: &T!) name(...)` receiver parameter (external methods).
type methodEntry struct {
	StructName string
	Decl       *ast.MethodDecl
}

// FieldInfo is one resolved struct field.
type FieldInfo struct {
	Name     string
	Type     types.Type
	Exported bool
}

// VariantInfo is one resolved enum variant (§4.8: plain vs. tagged-union
// lowering is decided later from whether Payload is empty).
type VariantInfo struct {
	Name    string
	Payload []types.Type
}

// MethodTarget records method-dispatch resolution (§4.4, §4.5).
type MethodTarget struct {
	Inherent bool
	Contract string // not filled in by the checker; empty for every target
}

// NewContext creates an empty Context. Builtin primitive names are not
// registered in Types; ElaborateType handles them directly.
func NewContext(sink *diag.Sink) *Context {
	return &Context{
		Sink:            sink,
		Types:           map[string]types.Type{},
		Contracts:       types.NewContractRegistry(),
		Functions:       map[string]*FuncInfo{},
		InherentMethods: map[string][]*FuncInfo{},
		Consts:          map[string]*Symbol{},
		constIntValues:  map[string]int{},
		Info:            map[ast.Expr]types.Type{},
		MethodTargets:   map[*ast.MethodCallExpr]MethodTarget{},
		GenericCallArgs: map[*ast.CallExpr][]types.Type{},
		StructFields:    map[string][]FieldInfo{},
		EnumVariants:    map[string][]VariantInfo{},
		declModule:      map[string]string{},
		declExported:    map[string]bool{},
		exportAll:       map[string]bool{},
		declFileOf:      map[ast.Node]string{},
		structDecls:     map[string]*ast.StructDecl{},
		enumDecls:       map[string]*ast.EnumDecl{},
		contractDecls:   map[string]*ast.ContractDecl{},
		aliasDecls:      map[string]*ast.TypeAliasDecl{},
		constDecls:      map[string]*ast.ConstDecl{},
	}
}

func (c *Context) pushScope()         { c.scopes = append(c.scopes, scope{}) }
func (c *Context) popScope()          { c.scopes = c.scopes[:len(c.scopes)-1] }
func (c *Context) pushTypeParams(m map[string]*types.GenericParam) {
	c.typeParams = append(c.typeParams, m)
}
func (c *Context) popTypeParams() { c.typeParams = c.typeParams[:len(c.typeParams)-1] }

// define binds name in the innermost scope.
func (c *Context) define(sym *Symbol) {
	c.scopes[len(c.scopes)-1][sym.Name] = sym
}

// lookup resolves name through local scopes (innermost first), then
// top-level consts/functions, implementing the first four tiers of §4.4's
// resolution order (builtins are resolved separately by the caller).
func (c *Context) lookup(name string) (*Symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if s, ok := c.scopes[i][name]; ok {
			return s, true
		}
	}
	if s, ok := c.Consts[name]; ok {
		return s, true
	}
	if f, ok := c.Functions[name]; ok {
		return &Symbol{Name: name, Kind: FuncSymbol, Type: &types.Func{Params: f.Params, Result: f.Result}}, true
	}
	return nil, false
}

// checkVisibility rejects a cross-module reference to a private top-level
// name (§3.2 "module-scoped public": only exported declarations are
// visible from outside, unless the declaring module never exports
// anything and so falls back to implicit export-all). Locally bound names
// are never cross-module references.
func (c *Context) checkVisibility(name string, sp token.Span) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i][name]; ok {
			return
		}
	}
	mod, ok := c.declModule[name]
	if !ok || mod == c.curModule || c.declExported[name] || c.exportAll[mod] {
		return
	}
	c.Sink.Errorf(diag.ResolvePrivateAccess, sp, "%q is private to module %q", name, mod)
}

func (c *Context) lookupTypeParam(name string) (*types.GenericParam, bool) {
	for i := len(c.typeParams) - 1; i >= 0; i-- {
		if g, ok := c.typeParams[i][name]; ok {
			return g, true
		}
	}
	return nil, false
}

// Run drives all three sema passes across every module in prog, in the
// program's deterministic order (§5: merge results in a deterministic,
// not scheduling-dependent, order). Declaration collection for every
// module happens before any module is resolved so modules may refer to
// each other regardless of import order (§4.3 "cycles are permitted");
// resolution and type checking each then run exactly once over the whole
// program rather than once per file, since both read and mutate the
// global registries Pass 1 built rather than per-file state.
func Run(prog *source.Program, sink *diag.Sink) *Context {
	ctx := NewContext(sink)
	order := prog.Order()

	var files []*ast.File
	for _, id := range order {
		m := prog.Modules[id]
		if m.Source == nil || m.Source.File == nil {
			continue
		}
		files = append(files, m.Source.File)
	}

	for _, f := range files {
		ctx.DeclareFile(f)
	}
	ctx.ResolveAll(files)
	ctx.CheckAll()
	return ctx
}
