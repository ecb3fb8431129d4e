package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vexlang/vexc/internal/types"
)

func prim(k types.Kind) types.Type { return &types.Primitive{Kind: k} }

func TestPrimitiveSizes(t *testing.T) {
	cases := []struct {
		t    types.Type
		size int
	}{
		{prim(types.I8), 1},
		{prim(types.I16), 2},
		{prim(types.I32), 4},
		{prim(types.I64), 8},
		{prim(types.I128), 16},
		{prim(types.U8), 1},
		{prim(types.F16), 2},
		{prim(types.F32), 4},
		{prim(types.F64), 8},
		{prim(types.Bool), 1},
		{prim(types.Unit), 0},
		{prim(types.Str), 2 * PointerSize},
		{&types.Reference{Elem: prim(types.I32)}, PointerSize},
		{&types.RawPointer{Elem: prim(types.I32)}, PointerSize},
		{&types.Slice{Elem: prim(types.U8)}, 2 * PointerSize},
	}
	for _, c := range cases {
		assert.Equal(t, c.size, SizeOf(c.t), "SizeOf(%s)", c.t)
	}
}

func TestStructLayoutPadsInDeclarationOrder(t *testing.T) {
	// { a: u8, b: i32, c: u8 } must not be reordered: offsets are fixed
	// by declaration order and field alignment alone.
	layout := ComputeStructLayout([]types.Type{prim(types.U8), prim(types.I32), prim(types.U8)})

	assert.Equal(t, []int{0, 4, 8}, layout.FieldOffsets)
	assert.Equal(t, 12, layout.Size)
	assert.Equal(t, 4, layout.Align)
}

func TestArrayStrideUsesElementAlignment(t *testing.T) {
	// [(u8, i32); 3]: each element is 8 bytes after padding.
	elem := &types.Tuple{Elems: []types.Type{prim(types.U8), prim(types.I32)}}
	arr := &types.Array{Elem: elem, Size: 3}

	assert.Equal(t, 24, SizeOf(arr))
	assert.Equal(t, 4, AlignOf(arr))
}

func TestTaggedLayoutMixedVariants(t *testing.T) {
	// enum IpAddr { V4(u8,u8,u8,u8), V6(String) }: the payload area is
	// sized for the widest variant and aligned for the strictest one.
	layout := ComputeTaggedLayout([][]types.Type{
		{prim(types.U8), prim(types.U8), prim(types.U8), prim(types.U8)},
		{prim(types.Str)},
	})

	assert.Equal(t, 4, layout.TagSize)
	assert.Equal(t, 8, layout.DataOffset, "tag pads up to the String payload's alignment")
	assert.Equal(t, 16, layout.DataSize, "payload area fits the String variant")
	assert.Equal(t, 24, layout.Size)
	assert.Equal(t, 8, layout.Align)

	assert.Equal(t, 4, layout.Variants[0].Size)
	assert.Equal(t, []int{0, 1, 2, 3}, layout.Variants[0].Fields.FieldOffsets)
	assert.Equal(t, 16, layout.Variants[1].Size)
}

func TestUnionSharesTaggedRepresentation(t *testing.T) {
	u := &types.Union{Members: []types.Type{prim(types.I32), prim(types.Str)}}

	assert.Equal(t, 24, SizeOf(u))
	assert.Equal(t, 8, AlignOf(u))
}

func TestPlainEnumIsBareDiscriminant(t *testing.T) {
	layout := ComputeTaggedLayout([][]types.Type{{}, {}, {}})

	assert.Equal(t, 0, layout.DataSize)
	assert.Equal(t, 4, layout.Size, "no payload: the tag alone, i32-sized")
}
