// Package mono implements C7: it instantiates every generic function or
// method use site collected during type checking into one concrete
// specialization per unique type-argument tuple (§4.7), deduplicated by a
// canonical name derived from the declaration path and a stable
// type-argument encoding, and bounds recursive instantiation so a
// self-referential generic cannot loop the compiler forever.
package mono

import (
	"sort"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// DefaultOverflowDepth is §4.7's "configurable depth (default 256)" bound
// on how many distinct specializations one generic head may produce
// before the monomorphizer gives up and reports MonomorphizationOverflow.
const DefaultOverflowDepth = 256

// Specialization is one concrete instantiation of a generic function or
// method (§4.7).
type Specialization struct {
	// DeclName is the generic declaration's own name ("id", or
	// "Box.get" for a method), before mangling.
	DeclName string
	// CanonicalName is the deduplicated, stable IR symbol (§4.7
	// "canonical name derived from the declaration path and a stable
	// type-argument encoding"), e.g. "id_i32".
	CanonicalName string
	Args          []types.Type
	Decl          ast.Node // *ast.FunctionDecl or *ast.MethodDecl
	Receiver      types.Type
	ReceiverMut   bool
	Params        []types.Type // substituted
	Result        types.Type   // substituted
	Subst         map[string]types.Type
}

// Result is the monomorphizer's output (§4.7): one Specialization per
// unique instantiation, plus the per-call-site canonical name every
// caller should link against instead of the bare generic name.
type Result struct {
	Specializations []*Specialization
	// CallSites maps a generic CallExpr to the canonical name of the
	// specialization internal/ir should emit a direct call to.
	CallSites map[*ast.CallExpr]string
}

type pending struct {
	declName string
	args     []types.Type
	subst    map[string]types.Type
}

// Run walks every non-generic function and inherent method body (exported
// or not; reachability from "main" is not considered), collects every
// call to a generic function, and emits one Specialization
// per unique (name, type-argument tuple) pair, following nested generic
// calls made from inside an already-specialized body (§4.7 "collects its
// use sites"). It is meant to run after internal/borrow accepts the
// program.
func Run(ctx *sema.Context, sink *diag.Sink) *Result {
	m := &monomorphizer{
		ctx:        ctx,
		sink:       sink,
		seen:       map[string]*Specialization{},
		headCount:  map[string]int{},
		overflowed: map[string]bool{},
		callSites:  map[*ast.CallExpr]string{},
	}
	m.collectRoots()
	m.drain()
	return m.result()
}

type monomorphizer struct {
	ctx        *sema.Context
	sink       *diag.Sink
	queue      []pending
	seen       map[string]*Specialization // canonical name -> spec
	headCount  map[string]int
	overflowed map[string]bool
	callSites  map[*ast.CallExpr]string
}

// collectRoots walks every concrete (non-generic) function and inherent
// method body, looking for calls into generic functions. Root order is
// sorted by name rather than declaration order, so instantiation discovery
// order never depends on map iteration or file discovery order (§8
// "Monomorphization determinism").
func (m *monomorphizer) collectRoots() {
	names := make([]string, 0, len(m.ctx.Functions))
	for name, info := range m.ctx.Functions {
		if len(info.TypeParams) > 0 {
			continue // only a concrete root's call sites seed the work-list
		}
		if decl, ok := info.Decl.(*ast.FunctionDecl); ok && decl.Body != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		m.scanBody(m.ctx.Functions[name].Decl.(*ast.FunctionDecl).Body, nil)
	}

	structNames := make([]string, 0, len(m.ctx.InherentMethods))
	for name := range m.ctx.InherentMethods {
		structNames = append(structNames, name)
	}
	sort.Strings(structNames)
	for _, sname := range structNames {
		infos := m.ctx.InherentMethods[sname]
		sort.Slice(infos, func(i, j int) bool { return infos[i].Decl.(*ast.MethodDecl).Name < infos[j].Decl.(*ast.MethodDecl).Name })
		for _, info := range infos {
			if len(info.TypeParams) > 0 {
				continue
			}
			if decl, ok := info.Decl.(*ast.MethodDecl); ok && decl.Body != nil {
				m.scanBody(decl.Body, nil)
			}
		}
	}
}

// scanBody walks one already-checked body for CallExprs targeting a
// generic free function, substituting outerSubst into any recorded
// GenericCallArgs first so a call made from inside an already-specialized
// generic body resolves to concrete types too (nil outerSubst for a
// concrete root).
func (m *monomorphizer) scanBody(n ast.Node, outerSubst map[string]types.Type) {
	walk(n, func(e ast.Expr) {
		call, ok := e.(*ast.CallExpr)
		if !ok {
			return
		}
		callee, ok := call.Callee.(*ast.Ident)
		if !ok {
			return
		}
		info, ok := m.ctx.Functions[callee.Name]
		if !ok || len(info.TypeParams) == 0 {
			return
		}
		args := m.ctx.GenericCallArgs[call]
		if args == nil {
			return
		}
		if outerSubst != nil {
			substituted := make([]types.Type, len(args))
			for i, a := range args {
				substituted[i] = types.Substitute(a, outerSubst)
			}
			args = substituted
		}
		m.enqueue(call, callee.Name, info, args)
	})
}

func (m *monomorphizer) enqueue(site *ast.CallExpr, name string, info *sema.FuncInfo, args []types.Type) {
	canonical := CanonicalName(name, args)
	m.callSites[site] = canonical
	if _, ok := m.seen[canonical]; ok {
		return
	}
	if m.overflowed[name] {
		return
	}
	m.headCount[name]++
	if m.headCount[name] > DefaultOverflowDepth {
		m.overflowed[name] = true
		m.sink.Errorf(diag.MonomorphizationOverflow, info.Decl.Span(),
			"monomorphization of %q exceeded the instantiation-depth bound (%d)", name, DefaultOverflowDepth)
		return
	}
	subst := map[string]types.Type{}
	for i, tp := range info.TypeParams {
		if i < len(args) {
			subst[tp.Name] = args[i]
		}
	}
	spec := &Specialization{
		DeclName:      name,
		CanonicalName: canonical,
		Args:          args,
		Decl:          info.Decl,
		Receiver:      types.Substitute(info.Receiver, subst),
		ReceiverMut:   info.ReceiverMut,
		Result:        types.Substitute(info.Result, subst),
		Subst:         subst,
	}
	spec.Params = make([]types.Type, len(info.Params))
	for i, p := range info.Params {
		spec.Params[i] = types.Substitute(p, subst)
	}
	m.seen[canonical] = spec
	m.queue = append(m.queue, pending{declName: name, args: args, subst: subst})
}

// drain processes the work-list, scanning each newly discovered
// specialization's body for further nested generic calls (§4.7).
func (m *monomorphizer) drain() {
	for len(m.queue) > 0 {
		p := m.queue[0]
		m.queue = m.queue[1:]
		canonical := CanonicalName(p.declName, p.args)
		spec, ok := m.seen[canonical]
		if !ok {
			continue
		}
		var body *ast.BlockStmt
		switch d := spec.Decl.(type) {
		case *ast.FunctionDecl:
			body = d.Body
		case *ast.MethodDecl:
			body = d.Body
		}
		if body != nil {
			m.scanBody(body, p.subst)
		}
	}
}

func (m *monomorphizer) result() *Result {
	names := make([]string, 0, len(m.seen))
	for name := range m.seen {
		names = append(names, name)
	}
	sort.Strings(names)
	specs := make([]*Specialization, len(names))
	for i, name := range names {
		specs[i] = m.seen[name]
	}
	return &Result{Specializations: specs, CallSites: m.callSites}
}

// CanonicalName implements §4.7's "canonical name derived from the
// declaration path and a stable type-argument encoding", e.g. "id_i32".
func CanonicalName(declName string, args []types.Type) string {
	if len(args) == 0 {
		return declName
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = encodeTypeArg(a)
	}
	return declName + "_" + strings.Join(parts, "_")
}

// encodeTypeArg renders one type argument into a symbol-safe fragment.
// Primitive kinds use their bare spelling ("i32", "f64"); everything
// else falls back to a sanitized String().
func encodeTypeArg(t types.Type) string {
	s := t.String()
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
