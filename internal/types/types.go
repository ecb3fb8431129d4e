// Package types implements §3.3's type sum: the internal Type nodes
// produced by elaborating an ast.TypeExpr, nominal/structural equality,
// the Copy/Move classification of §3.4, and contract satisfaction
// (§3.5). It has no dependency on internal/sema so the type checker,
// borrow checker, and monomorphizer can all build on the same vocabulary
// without import cycles.
package types

import (
	"sort"
	"strconv"
	"strings"
)

// Type is the common interface every type-sum variant implements.
type Type interface {
	String() string
	typeNode()
}

// Kind classifies a primitive's width/signedness/float-ness.
type Kind int

const (
	I8 Kind = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F16
	F32
	F64
	Bool
	Str
	Unit
)

var kindNames = map[Kind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64", I128: "i128",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64", U128: "u128",
	F16: "f16", F32: "f32", F64: "f64", Bool: "bool", Str: "String", Unit: "()",
}

// Primitive is one of §3.3's primitive variants. "byte" elaborates
// directly to U8 (§3.3 "the byte alias (= u8)") so there is exactly one
// Kind per representation, never a separate alias node.
type Primitive struct{ Kind Kind }

func (p *Primitive) String() string { return kindNames[p.Kind] }
func (*Primitive) typeNode()        {}

func (p *Primitive) IsInteger() bool {
	switch p.Kind {
	case I8, I16, I32, I64, I128, U8, U16, U32, U64, U128:
		return true
	}
	return false
}

func (p *Primitive) IsSigned() bool {
	switch p.Kind {
	case I8, I16, I32, I64, I128:
		return true
	}
	return false
}

func (p *Primitive) IsFloat() bool {
	switch p.Kind {
	case F16, F32, F64:
		return true
	}
	return false
}

// Reference is `&T` (immutable) or `&T!` (mutable); always non-null
// (§3.3).
type Reference struct {
	Elem    Type
	Mutable bool
}

func (r *Reference) String() string {
	if r.Mutable {
		return "&" + r.Elem.String() + "!"
	}
	return "&" + r.Elem.String()
}
func (*Reference) typeNode() {}

// RawPointer is `*T` / `*T!`; arithmetic is only legal inside an unsafe
// scope (checked by internal/sema, not here).
type RawPointer struct {
	Elem    Type
	Mutable bool
}

func (p *RawPointer) String() string {
	if p.Mutable {
		return "*" + p.Elem.String() + "!"
	}
	return "*" + p.Elem.String()
}
func (*RawPointer) typeNode() {}

// Array is `[T; N]`, N a compile-time constant (§3.3). Size is resolved
// to a concrete int by the const-evaluator in internal/sema before this
// node is constructed; -1 marks "not yet resolved" for diagnostics.
type Array struct {
	Elem Type
	Size int
}

func (a *Array) String() string { return "[" + a.Elem.String() + ";" + strconv.Itoa(a.Size) + "]" }
func (*Array) typeNode()        {}

// Slice is `&[T]` / `&[T]!`, pointer+length (§3.3).
type Slice struct {
	Elem    Type
	Mutable bool
}

func (s *Slice) String() string {
	if s.Mutable {
		return "&[" + s.Elem.String() + "]!"
	}
	return "&[" + s.Elem.String() + "]"
}
func (*Slice) typeNode() {}

// Tuple is `(T1,...,Tn)`, structurally equal (§3.3).
type Tuple struct{ Elems []Type }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (*Tuple) typeNode() {}

// Func is `fn(T1,...,Tn): R`.
type Func struct {
	Params []Type
	Result Type // nil means unit
}

func (f *Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	s := "fn(" + strings.Join(parts, ", ") + ")"
	if f.Result != nil {
		s += ": " + f.Result.String()
	}
	return s
}
func (*Func) typeNode() {}

// UserKind distinguishes the three UserDefined shapes of §3.3.
type UserKind int

const (
	StructKind UserKind = iota
	EnumKind
	AliasKind
)

// Named is a UserDefined type: Struct, Enum, or TypeAlias. Equality for
// Struct/Enum is nominal (by Name); TypeAlias is transparent during
// checking — internal/sema always substitutes Underlying before
// comparing, keeping Named only as a diagnostics-facing wrapper (§3.3
// "Type aliases are transparent during checking but preserved in
// diagnostics").
type Named struct {
	Name       string
	Kind       UserKind
	Underlying Type // set for AliasKind; nil otherwise
	Args       []Type
	// PlainEnum marks an EnumKind whose variants all carry zero payload
	// fields; set when the enum's variants are resolved. Such an enum is
	// represented as a bare discriminant (§4.8) and classifies as Copy
	// (§3.4 lists only enums-with-data as Move).
	PlainEnum bool
}

func (n *Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (*Named) typeNode() {}

// GenericParam is a type variable with an optional contract bound set.
type GenericParam struct {
	Name   string
	Bounds []string // contract names
}

func (g *GenericParam) String() string { return g.Name }
func (*GenericParam) typeNode()        {}

// Union is `(T1|T2|...|Tn)`, tagged (§4.8); discriminant = declaration
// order (§8 "Discriminant stability"). Membership comparisons are
// order-insensitive (Equal below sorts before comparing) but Members
// itself preserves declaration order since the discriminant depends on
// it.
type Union struct{ Members []Type }

func (u *Union) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}
func (*Union) typeNode() {}

// Intersection is `(C1&C2&...&Cn)` over contracts only, used as a bound,
// never as a concrete storage type (§3.3).
type Intersection struct{ Contracts []string }

func (i *Intersection) String() string { return "(" + strings.Join(i.Contracts, " & ") + ")" }
func (*Intersection) typeNode()        {}

// Conditional is `T extends U ? X : Y`; resolved to X or Y at
// elaboration time by internal/sema, so this node only ever appears
// before reduction (e.g. in an unresolved generic function signature).
type Conditional struct {
	Checked Type
	Extends Type
	Then    Type
	Else    Type
}

func (c *Conditional) String() string {
	return c.Checked.String() + " extends " + c.Extends.String() + " ? " + c.Then.String() + " : " + c.Else.String()
}
func (*Conditional) typeNode() {}

// Never is the uninhabited type, a subtype of every type (§3.3).
type Never struct{}

func (*Never) String() string { return "!" }
func (*Never) typeNode()      {}

// Equal implements §3.3's equality rules: nominal for Struct/Enum
// (TypeAlias must already be substituted away by the caller),
// structural for everything else. Union membership is order-insensitive.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Kind == y.Kind
	case *Reference:
		y, ok := b.(*Reference)
		return ok && x.Mutable == y.Mutable && Equal(x.Elem, y.Elem)
	case *RawPointer:
		y, ok := b.(*RawPointer)
		return ok && x.Mutable == y.Mutable && Equal(x.Elem, y.Elem)
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Size == y.Size && Equal(x.Elem, y.Elem)
	case *Slice:
		y, ok := b.(*Slice)
		return ok && x.Mutable == y.Mutable && Equal(x.Elem, y.Elem)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !Equal(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case *Func:
		y, ok := b.(*Func)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return resultEqual(x.Result, y.Result)
	case *Named:
		y, ok := b.(*Named)
		// Nominal: same declared name and kind, generic args compared
		// structurally (two instantiations of the same struct with
		// different arguments are distinct types).
		if !ok || x.Name != y.Name || x.Kind != y.Kind || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *GenericParam:
		y, ok := b.(*GenericParam)
		return ok && x.Name == y.Name
	case *Union:
		y, ok := b.(*Union)
		if !ok || len(x.Members) != len(y.Members) {
			return false
		}
		return sameSetUnordered(x.Members, y.Members)
	case *Intersection:
		y, ok := b.(*Intersection)
		if !ok || len(x.Contracts) != len(y.Contracts) {
			return false
		}
		xs, ys := append([]string{}, x.Contracts...), append([]string{}, y.Contracts...)
		sort.Strings(xs)
		sort.Strings(ys)
		for i := range xs {
			if xs[i] != ys[i] {
				return false
			}
		}
		return true
	case *Never:
		_, ok := b.(*Never)
		return ok
	}
	return false
}

func resultEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(a, b)
}

func sameSetUnordered(xs, ys []Type) bool {
	used := make([]bool, len(ys))
	for _, x := range xs {
		found := false
		for i, y := range ys {
			if !used[i] && Equal(x, y) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ReduceConditional attempts to resolve `Checked extends Extends ? Then :
// Else` to Then or Else (§3.3 Conditional, §4.5). It succeeds only when
// Checked and Extends are both fully concrete (no GenericParam/Never
// placeholder left unbound by an `infer` binder); generic bodies keep the
// Conditional node unresolved until the monomorphizer substitutes concrete
// type arguments and retries (§4.7).
func ReduceConditional(c *Conditional, reg *ContractRegistry) (Type, bool) {
	if hasGenericParam(c.Extends) {
		return nil, false
	}
	if extendsContract(c.Checked, c.Extends, reg) {
		return c.Then, true
	}
	return c.Else, true
}

// extendsContract reports whether checked "extends" extends: either they
// are the same type, checked is Never (a subtype of everything, §3.3), or
// extends names a contract/intersection every part of which checked's
// named type satisfies.
func extendsContract(checked, extends Type, reg *ContractRegistry) bool {
	if _, ok := checked.(*Never); ok {
		return true
	}
	if Equal(checked, extends) {
		return true
	}
	named, ok := checked.(*Named)
	if !ok || reg == nil {
		return false
	}
	switch e := extends.(type) {
	case *Intersection:
		return reg.SatisfiesAll(named.Name, e.Contracts)
	case *GenericParam:
		return reg.SatisfiesAll(named.Name, e.Bounds)
	}
	return false
}

func hasGenericParam(t Type) bool {
	switch x := t.(type) {
	case *GenericParam:
		return true
	case *Reference:
		return hasGenericParam(x.Elem)
	case *RawPointer:
		return hasGenericParam(x.Elem)
	case *Slice:
		return hasGenericParam(x.Elem)
	case *Array:
		return hasGenericParam(x.Elem)
	case *Tuple:
		for _, e := range x.Elems {
			if hasGenericParam(e) {
				return true
			}
		}
	case *Named:
		for _, a := range x.Args {
			if hasGenericParam(a) {
				return true
			}
		}
	}
	return false
}

// IsCopy implements §3.4's Copy/Move classification.
func IsCopy(t Type) bool {
	switch x := t.(type) {
	case *Primitive:
		// The string is the one Move primitive (§3.4 names strings in the
		// Move list): a heap-owned pointer+length, not a byte value.
		return x.Kind != Str
	case *Reference, *RawPointer, *GenericParam:
		return true
	case *Tuple:
		for _, e := range x.Elems {
			if !IsCopy(e) {
				return false
			}
		}
		return true
	case *Array:
		return IsCopy(x.Elem)
	case *Named:
		switch x.Kind {
		case AliasKind:
			return IsCopy(x.Underlying)
		case EnumKind:
			// A plain enum is just its discriminant integer (§4.8); only
			// enums-with-data transfer ownership (§3.4).
			return x.PlainEnum
		default:
			return false // structs are Move (§3.4)
		}
	default:
		return false
	}
}
