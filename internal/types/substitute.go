package types

// Substitute rewrites t, replacing every GenericParam whose name appears in
// subst with its bound concrete type (§4.7 "Instantiate generics to
// concrete specializations"). GenericParams left unbound by subst pass
// through unchanged, which is what keeps a partially-applied signature
// printable during diagnostics.
func Substitute(t Type, subst map[string]Type) Type {
	if t == nil {
		return nil
	}
	switch x := t.(type) {
	case *GenericParam:
		if bound, ok := subst[x.Name]; ok {
			return bound
		}
		return x
	case *Reference:
		return &Reference{Elem: Substitute(x.Elem, subst), Mutable: x.Mutable}
	case *RawPointer:
		return &RawPointer{Elem: Substitute(x.Elem, subst), Mutable: x.Mutable}
	case *Array:
		return &Array{Elem: Substitute(x.Elem, subst), Size: x.Size}
	case *Slice:
		return &Slice{Elem: Substitute(x.Elem, subst), Mutable: x.Mutable}
	case *Tuple:
		elems := make([]Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = Substitute(e, subst)
		}
		return &Tuple{Elems: elems}
	case *Func:
		params := make([]Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = Substitute(p, subst)
		}
		var result Type
		if x.Result != nil {
			result = Substitute(x.Result, subst)
		}
		return &Func{Params: params, Result: result}
	case *Named:
		if len(x.Args) == 0 {
			return x
		}
		args := make([]Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = Substitute(a, subst)
		}
		return &Named{Name: x.Name, Kind: x.Kind, Underlying: x.Underlying, Args: args, PlainEnum: x.PlainEnum}
	case *Union:
		members := make([]Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = Substitute(m, subst)
		}
		return &Union{Members: members}
	default:
		return t
	}
}

// Unify walks param (a possibly-generic declared type) against arg (a
// concrete type inferred at a call site), binding every GenericParam it
// encounters into subst (§4.7's instantiation-key collection; §4.5
// "generic Sig bidirectional inference"). It reports false only on a
// structural shape mismatch (different type constructors); a GenericParam
// already bound to a different concrete type simply keeps its first
// binding; Vex has no subtyping to reconcile the two, so first-bind-wins
// matches ordinary left-to-right argument unification.
func Unify(param, arg Type, subst map[string]Type) bool {
	if param == nil || arg == nil {
		return true
	}
	if g, ok := param.(*GenericParam); ok {
		if _, bound := subst[g.Name]; !bound {
			subst[g.Name] = arg
		}
		return true
	}
	switch p := param.(type) {
	case *Reference:
		a, ok := arg.(*Reference)
		return ok && Unify(p.Elem, a.Elem, subst)
	case *RawPointer:
		a, ok := arg.(*RawPointer)
		return ok && Unify(p.Elem, a.Elem, subst)
	case *Array:
		a, ok := arg.(*Array)
		return ok && Unify(p.Elem, a.Elem, subst)
	case *Slice:
		a, ok := arg.(*Slice)
		return ok && Unify(p.Elem, a.Elem, subst)
	case *Tuple:
		a, ok := arg.(*Tuple)
		if !ok || len(a.Elems) != len(p.Elems) {
			return false
		}
		for i := range p.Elems {
			if !Unify(p.Elems[i], a.Elems[i], subst) {
				return false
			}
		}
		return true
	case *Func:
		a, ok := arg.(*Func)
		if !ok || len(a.Params) != len(p.Params) {
			return false
		}
		for i := range p.Params {
			if !Unify(p.Params[i], a.Params[i], subst) {
				return false
			}
		}
		return Unify(p.Result, a.Result, subst)
	case *Named:
		a, ok := arg.(*Named)
		if !ok || a.Name != p.Name || len(a.Args) != len(p.Args) {
			return true // nominal shape mismatch is a type error elsewhere, not a unify failure
		}
		for i := range p.Args {
			if !Unify(p.Args[i], a.Args[i], subst) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// HasUnbound reports whether t still contains a GenericParam not present
// in subst, used to detect an instantiation the caller left ambiguous
// (§4.5 InferenceError "ambiguous generic").
func HasUnbound(t Type, subst map[string]Type) bool {
	switch x := t.(type) {
	case *GenericParam:
		_, ok := subst[x.Name]
		return !ok
	case *Reference:
		return HasUnbound(x.Elem, subst)
	case *RawPointer:
		return HasUnbound(x.Elem, subst)
	case *Array:
		return HasUnbound(x.Elem, subst)
	case *Slice:
		return HasUnbound(x.Elem, subst)
	case *Tuple:
		for _, e := range x.Elems {
			if HasUnbound(e, subst) {
				return true
			}
		}
	case *Func:
		for _, p := range x.Params {
			if HasUnbound(p, subst) {
				return true
			}
		}
		if x.Result != nil {
			return HasUnbound(x.Result, subst)
		}
	case *Named:
		for _, a := range x.Args {
			if HasUnbound(a, subst) {
				return true
			}
		}
	}
	return false
}
