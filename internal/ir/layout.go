// Package ir implements C8: lowering of the typed, monomorphized AST to a
// portable intermediate representation of basic blocks and typed
// operations (§4.8), including the platform-ABI-matching size/alignment
// table of §6.7 and the tagged-union layout rules for enums and union
// types.
package ir

import "github.com/vexlang/vexc/internal/types"

// PointerSize is one machine word, matching §6.7 ("reference and raw
// pointer = 1 machine pointer"). The portable IR targets a 64-bit ABI;
// the native backend this core hands off to (out of scope, §1) is free
// to retarget narrower pointers, but no component downstream of lowering
// depends on that choice.
const PointerSize = 8

// DiscriminantKind is the integer width used for every enum/union tag
// (§4.8 "a discriminant integer sized to hold all variants (default:
// i32)").
var DiscriminantKind = types.I32

// SizeOf returns a type's size in bytes per §6.7's ABI table and §4.8's
// layout rules. Never/unresolved inputs report 0 since they carry no
// runtime representation.
func SizeOf(t types.Type) int {
	switch x := t.(type) {
	case *types.Primitive:
		return primitiveSize(x.Kind)
	case *types.Reference, *types.RawPointer:
		return PointerSize
	case *types.Slice:
		return 2 * PointerSize // pointer + length, §6.7
	case *types.Array:
		if x.Size < 0 {
			return 0
		}
		return x.Size * alignedStride(x.Elem)
	case *types.Tuple:
		return tupleLayout(x.Elems).Size
	case *types.Func:
		return PointerSize // a function pointer is one machine word (§3.3)
	case *types.Named:
		return namedSize(x)
	case *types.Union:
		return unionLayout(x).Size
	case *types.GenericParam, *types.Conditional, *types.Intersection, *types.Never:
		return 0
	}
	return 0
}

// AlignOf returns a type's alignment in bytes.
func AlignOf(t types.Type) int {
	switch x := t.(type) {
	case *types.Primitive:
		if x.Kind == types.Str {
			return PointerSize // pointer + length pair aligns to one word
		}
		return primitiveSize(x.Kind) // every other primitive self-aligns
	case *types.Reference, *types.RawPointer, *types.Func:
		return PointerSize
	case *types.Slice:
		return PointerSize
	case *types.Array:
		return AlignOf(x.Elem)
	case *types.Tuple:
		return tupleLayout(x.Elems).Align
	case *types.Named:
		return namedAlign(x)
	case *types.Union:
		return unionLayout(x).Align
	}
	return 1
}

func primitiveSize(k types.Kind) int {
	switch k {
	case types.I8, types.U8, types.Bool:
		return 1
	case types.I16, types.U16, types.F16:
		return 2
	case types.I32, types.U32, types.F32:
		return 4
	case types.I64, types.U64, types.F64:
		return 8
	case types.I128, types.U128:
		return 16
	case types.Str:
		return 2 * PointerSize // pointer + length, §6.7
	case types.Unit:
		return 0
	}
	return 0
}

func alignedStride(t types.Type) int {
	size, align := SizeOf(t), AlignOf(t)
	if align <= 1 {
		return size
	}
	return padTo(size, align)
}

func padTo(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

// StructLayout describes one struct's field offsets, preserving
// declaration order with no reordering (§4.8, §8 "Layout stability").
type StructLayout struct {
	FieldOffsets []int
	Size         int
	Align        int
}

// ComputeStructLayout lays fields out in declaration order, each field
// padded to its own alignment, with trailing padding bringing the whole
// struct up to a multiple of its own alignment (§4.8).
func ComputeStructLayout(fieldTypes []types.Type) StructLayout {
	offsets := make([]int, len(fieldTypes))
	offset, maxAlign := 0, 1
	for i, ft := range fieldTypes {
		a := AlignOf(ft)
		if a < 1 {
			a = 1
		}
		if a > maxAlign {
			maxAlign = a
		}
		offset = padTo(offset, a)
		offsets[i] = offset
		offset += SizeOf(ft)
	}
	return StructLayout{FieldOffsets: offsets, Size: padTo(offset, maxAlign), Align: maxAlign}
}

func tupleLayout(elems []types.Type) StructLayout {
	return ComputeStructLayout(elems)
}

// VariantLayout is one enum/union-member payload's shape (§4.8): a
// single-field variant `V(T)` stores T directly; a multi-field variant
// stores an anonymous struct `{f0:T1,...}`.
type VariantLayout struct {
	Fields StructLayout
	Size   int // payload size only, not including the tag
}

// TaggedLayout is the full `{ tag: i32, data: Union<Variants> }`
// representation of §4.8, shared by enums-with-data and union types.
type TaggedLayout struct {
	TagSize      int
	DataOffset   int // tag is padded up to the widest payload's alignment
	DataSize     int // widest payload, so every variant fits
	DataAlign    int
	Variants     []VariantLayout
	Size         int
	Align        int
}

// ComputeTaggedLayout lays out an enum's variant payloads (or a union
// type's flattened members, same representation per §4.8) as a tagged
// union: the discriminant first, then the widest payload shared by every
// variant.
func ComputeTaggedLayout(payloads [][]types.Type) TaggedLayout {
	tl := TaggedLayout{TagSize: primitiveSize(DiscriminantKind)}
	tl.Variants = make([]VariantLayout, len(payloads))
	dataAlign := 1
	dataSize := 0
	for i, fields := range payloads {
		fl := ComputeStructLayout(fields)
		tl.Variants[i] = VariantLayout{Fields: fl, Size: fl.Size}
		if fl.Size > dataSize {
			dataSize = fl.Size
		}
		if fl.Align > dataAlign {
			dataAlign = fl.Align
		}
	}
	tl.DataAlign = dataAlign
	tl.DataSize = dataSize
	tl.DataOffset = padTo(tl.TagSize, dataAlign)
	totalAlign := dataAlign
	if tl.TagSize > totalAlign {
		totalAlign = tl.TagSize
	}
	tl.Align = totalAlign
	tl.Size = padTo(tl.DataOffset+dataSize, totalAlign)
	return tl
}

// namedSize/namedAlign are resolved through a process-global registry
// populated by internal/sema's StructFields/EnumVariants, consulted via
// SetResolvers since internal/types has no dependency on internal/sema
// (it must stay the shared vocabulary both the checker and the borrow
// checker build on, per internal/types's own package doc).
var fieldResolver func(name string) ([]types.Type, bool)
var variantResolver func(name string) ([][]types.Type, bool)

// SetResolvers wires the struct-field and enum-variant lookups the
// layout functions need; Lower calls this (via registerLayouts) before
// lowering any body, so before any SizeOf/AlignOf call touches a Named type.
func SetResolvers(fields func(name string) ([]types.Type, bool), variants func(name string) ([][]types.Type, bool)) {
	fieldResolver = fields
	variantResolver = variants
}

func namedSize(n *types.Named) int {
	if n.Underlying != nil {
		return SizeOf(n.Underlying)
	}
	if fieldResolver != nil {
		if fields, ok := fieldResolver(n.Name); ok {
			return ComputeStructLayout(fields).Size
		}
	}
	if variantResolver != nil {
		if payloads, ok := variantResolver(n.Name); ok {
			if !anyPayload(payloads) {
				return primitiveSize(DiscriminantKind) // plain enum (§4.8)
			}
			return ComputeTaggedLayout(payloads).Size
		}
	}
	return 0
}

func namedAlign(n *types.Named) int {
	if n.Underlying != nil {
		return AlignOf(n.Underlying)
	}
	if fieldResolver != nil {
		if fields, ok := fieldResolver(n.Name); ok {
			return ComputeStructLayout(fields).Align
		}
	}
	if variantResolver != nil {
		if payloads, ok := variantResolver(n.Name); ok {
			if !anyPayload(payloads) {
				return primitiveSize(DiscriminantKind)
			}
			return ComputeTaggedLayout(payloads).Align
		}
	}
	return 1
}

func anyPayload(payloads [][]types.Type) bool {
	for _, p := range payloads {
		if len(p) > 0 {
			return true
		}
	}
	return false
}

func unionLayout(u *types.Union) TaggedLayout {
	payloads := make([][]types.Type, len(u.Members))
	for i, m := range u.Members {
		payloads[i] = []types.Type{m}
	}
	return ComputeTaggedLayout(payloads)
}
