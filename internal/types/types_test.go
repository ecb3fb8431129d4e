package types

import (
	"testing"

	"github.com/vexlang/vexc/pkg/token"
)

func TestEqualNominalForNamedTypes(t *testing.T) {
	a := &Named{Name: "Point", Kind: StructKind}
	b := &Named{Name: "Point", Kind: StructKind}
	c := &Named{Name: "Vector", Kind: StructKind}
	if !Equal(a, b) {
		t.Fatalf("two Named(Point) values should be equal")
	}
	if Equal(a, c) {
		t.Fatalf("Named(Point) and Named(Vector) should not be equal despite identical shape")
	}
}

func TestEqualStructuralForTuplesAndArrays(t *testing.T) {
	t1 := &Tuple{Elems: []Type{&Primitive{Kind: I32}, &Primitive{Kind: Bool}}}
	t2 := &Tuple{Elems: []Type{&Primitive{Kind: I32}, &Primitive{Kind: Bool}}}
	if !Equal(t1, t2) {
		t.Fatalf("structurally identical tuples should be equal")
	}
	arr1 := &Array{Elem: &Primitive{Kind: U8}, Size: 4}
	arr2 := &Array{Elem: &Primitive{Kind: U8}, Size: 4}
	arr3 := &Array{Elem: &Primitive{Kind: U8}, Size: 8}
	if !Equal(arr1, arr2) || Equal(arr1, arr3) {
		t.Fatalf("array equality should compare element type and size")
	}
}

func TestUnionMembershipIsOrderInsensitive(t *testing.T) {
	u1 := &Union{Members: []Type{&Primitive{Kind: I32}, &Primitive{Kind: Str}}}
	u2 := &Union{Members: []Type{&Primitive{Kind: Str}, &Primitive{Kind: I32}}}
	if !Equal(u1, u2) {
		t.Fatalf("union equality should ignore declared member order")
	}
	// Declaration order is still preserved in Members for discriminant
	// assignment purposes.
	if u1.Members[0].(*Primitive).Kind != I32 {
		t.Fatalf("Members should preserve declared order even though Equal ignores it")
	}
}

func TestIsCopyClassification(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		copy bool
	}{
		{"i32 is Copy", &Primitive{Kind: I32}, true},
		{"reference is Copy", &Reference{Elem: &Primitive{Kind: I32}}, true},
		{"string is Move", &Primitive{Kind: Str}, false},
		{"struct is Move", &Named{Name: "Point", Kind: StructKind}, false},
		{"tuple of Copy is Copy", &Tuple{Elems: []Type{&Primitive{Kind: I32}, &Primitive{Kind: Bool}}}, true},
		{"array of Move is Move", &Array{Elem: &Named{Name: "Point", Kind: StructKind}, Size: 2}, false},
		{"plain enum is Copy", &Named{Name: "Color", Kind: EnumKind, PlainEnum: true}, true},
		{"enum with data is Move", &Named{Name: "Shape", Kind: EnumKind}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsCopy(c.typ); got != c.copy {
				t.Errorf("IsCopy(%s) = %v, want %v", c.typ.String(), got, c.copy)
			}
		})
	}
}

func TestContractSatisfactionRespectsReceiverPolarity(t *testing.T) {
	reg := NewContractRegistry()
	reg.RegisterContract(&Contract{Name: "Display", Methods: []MethodSig{
		{Name: "show", ReceiverMutable: false, Result: &Primitive{Kind: Str}},
	}})
	reg.RegisterImpl("Point", MethodSig{Name: "show", ReceiverMutable: true, Result: &Primitive{Kind: Str}})

	if reg.Satisfies("Point", "Display") {
		t.Fatalf("a &Self! impl should not satisfy a &Self contract method")
	}

	reg.RegisterImpl("Point", MethodSig{Name: "show", ReceiverMutable: false, Result: &Primitive{Kind: Str}})
	if !reg.Satisfies("Point", "Display") {
		t.Fatalf("Point should now satisfy Display")
	}
}

func TestOperatorMethodMapping(t *testing.T) {
	if OperatorMethod[token.PLUS] != "add" || OperatorMethod[token.NE] != "ne" {
		t.Fatalf("got unexpected operator-to-method mapping")
	}
	if !IsCompoundAssign(token.PLUS_ASSIGN) || IsCompoundAssign(token.PLUS) {
		t.Fatalf("IsCompoundAssign should only match the op= forms")
	}
}
