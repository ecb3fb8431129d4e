package ast

import (
	"strings"

	"github.com/vexlang/vexc/pkg/token"
)

func vis(exported bool) string {
	if exported {
		return "export "
	}
	return ""
}

// ImportDecl models one of the four import forms in §6.4 / §4.3.
type ImportDecl struct {
	Path      string
	StarAlias string            // `import * as N from "path"`
	Names     map[string]string // name -> alias, for `import { a, b as c } from "path"`
	Sp        token.Span
}

func (d *ImportDecl) Span() token.Span { return d.Sp }
func (d *ImportDecl) String() string   { return "import \"" + d.Path + "\"" }

// FunctionDecl is a top-level `fn` declaration (§3.2, §4.2).
type FunctionDecl struct {
	Name       string
	Exported   bool
	Async      bool
	TypeParams []*TypeParam
	Params     []*Param
	Result     TypeExpr
	Body       *BlockStmt
	Sp         token.Span
}

func (d *FunctionDecl) Span() token.Span   { return d.Sp }
func (d *FunctionDecl) declNode()          {}
func (d *FunctionDecl) DeclName() string   { return d.Name }
func (d *FunctionDecl) IsExported() bool   { return d.Exported }
func (d *FunctionDecl) String() string     { return vis(d.Exported) + "fn " + d.Name + "(...)" }

// MethodDecl is a method declared either inline in a struct body (contract
// implementation) or externally with a receiver parameter, Go-style
// `fn (r: &T!) name(...)` (§4.2).
type MethodDecl struct {
	Receiver        *Param // nil for inline methods; the receiver type is the enclosing struct
	ReceiverMutable bool
	Name            string
	Exported        bool
	Async           bool
	TypeParams      []*TypeParam
	Params          []*Param
	Result          TypeExpr
	Body            *BlockStmt
	External        bool // declared outside the struct body
	Sp              token.Span
}

func (d *MethodDecl) Span() token.Span { return d.Sp }
func (d *MethodDecl) declNode()        {}
func (d *MethodDecl) DeclName() string { return d.Name }
func (d *MethodDecl) IsExported() bool { return d.Exported }
func (d *MethodDecl) String() string   { return vis(d.Exported) + "fn " + d.Name + "(...)" }

// FieldDecl is one struct field.
type FieldDecl struct {
	Name     string
	Exported bool
	Type     TypeExpr
	Sp       token.Span
}

// StructDecl is a `struct` declaration, optionally implementing contracts
// (§3.2, §3.5: "Contract methods must be declared inline in the
// implementing type's body").
type StructDecl struct {
	Name       string
	Exported   bool
	TypeParams []*TypeParam
	Fields     []*FieldDecl
	Impls      []string      // contract names this struct implements
	Methods    []*MethodDecl // inline contract methods plus any declared in the body
	Sp         token.Span
}

func (d *StructDecl) Span() token.Span { return d.Sp }
func (d *StructDecl) declNode()        {}
func (d *StructDecl) DeclName() string { return d.Name }
func (d *StructDecl) IsExported() bool { return d.Exported }
func (d *StructDecl) String() string   { return vis(d.Exported) + "struct " + d.Name }

// EnumVariant is one variant of an EnumDecl. Payload is nil for a plain
// variant, one element for `V(T)`, more for `V(T1,...,Tn)` (§4.8).
type EnumVariant struct {
	Name    string
	Payload []TypeExpr
	Sp      token.Span
}

// EnumDecl is an `enum` declaration. Each variant's discriminant is its
// declaration index (§8 "Discriminant stability"); variants carry no
// explicit discriminant values.
type EnumDecl struct {
	Name       string
	Exported   bool
	TypeParams []*TypeParam
	Variants   []*EnumVariant
	Sp         token.Span
}

func (d *EnumDecl) Span() token.Span { return d.Sp }
func (d *EnumDecl) declNode()        {}
func (d *EnumDecl) DeclName() string { return d.Name }
func (d *EnumDecl) IsExported() bool { return d.Exported }
func (d *EnumDecl) String() string   { return vis(d.Exported) + "enum " + d.Name }

// ContractMethodSig is one required method signature in a ContractDecl.
type ContractMethodSig struct {
	Name            string
	ReceiverMutable bool
	Params          []*Param
	Result          TypeExpr
	Sp              token.Span
}

// ContractDecl is a `contract` (a.k.a. `trait`, §9a) declaration (§3.5).
type ContractDecl struct {
	Name     string
	Exported bool
	Methods  []*ContractMethodSig
	Sp       token.Span
}

func (d *ContractDecl) Span() token.Span { return d.Sp }
func (d *ContractDecl) declNode()        {}
func (d *ContractDecl) DeclName() string { return d.Name }
func (d *ContractDecl) IsExported() bool { return d.Exported }
func (d *ContractDecl) String() string   { return vis(d.Exported) + "contract " + d.Name }

// TypeAliasDecl is a `type` declaration; aliases are transparent during
// checking but preserved in diagnostics (§3.3).
type TypeAliasDecl struct {
	Name       string
	Exported   bool
	TypeParams []*TypeParam
	Underlying TypeExpr
	Sp         token.Span
}

func (d *TypeAliasDecl) Span() token.Span { return d.Sp }
func (d *TypeAliasDecl) declNode()        {}
func (d *TypeAliasDecl) DeclName() string { return d.Name }
func (d *TypeAliasDecl) IsExported() bool { return d.Exported }
func (d *TypeAliasDecl) String() string   { return vis(d.Exported) + "type " + d.Name + " = " + d.Underlying.String() }

// ConstDecl is a `const` declaration.
type ConstDecl struct {
	Name     string
	Exported bool
	Type     TypeExpr
	Value    Expr
	Sp       token.Span
}

func (d *ConstDecl) Span() token.Span { return d.Sp }
func (d *ConstDecl) declNode()        {}
func (d *ConstDecl) DeclName() string { return d.Name }
func (d *ConstDecl) IsExported() bool { return d.Exported }
func (d *ConstDecl) String() string   { return vis(d.Exported) + "const " + d.Name }

// PolicyDecl declares a compiler policy (e.g. a monomorphization or
// recursion-depth override) scoped to the module that declares it.
type PolicyDecl struct {
	Name     string
	Exported bool
	Args     []Expr
	Sp       token.Span
}

func (d *PolicyDecl) Span() token.Span { return d.Sp }
func (d *PolicyDecl) declNode()        {}
func (d *PolicyDecl) DeclName() string { return d.Name }
func (d *PolicyDecl) IsExported() bool { return d.Exported }
func (d *PolicyDecl) String() string   { return "policy " + d.Name }

// ExternFunctionDecl declares a function implemented by the runtime
// library (§6.7); the core only checks its signature.
type ExternFunctionDecl struct {
	Name     string
	Exported bool
	Params   []*Param
	Result   TypeExpr
	Sp       token.Span
}

func (d *ExternFunctionDecl) Span() token.Span { return d.Sp }
func (d *ExternFunctionDecl) declNode()        {}
func (d *ExternFunctionDecl) DeclName() string { return d.Name }
func (d *ExternFunctionDecl) IsExported() bool { return d.Exported }
func (d *ExternFunctionDecl) String() string   { return "extern fn " + d.Name }

// ParamsString renders a parameter list for diagnostics/printers.
func ParamsString(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return strings.Join(parts, ", ")
}
