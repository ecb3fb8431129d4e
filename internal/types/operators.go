package types

import "github.com/vexlang/vexc/pkg/token"

// OperatorMethod maps a binary/compound-assignment token to the method
// name a contract or inherent impl must supply (§6.6). Built primitives
// handle these operators directly; OperatorMethod is only consulted for
// user-defined operand types.
var OperatorMethod = map[token.Kind]string{
	token.PLUS: "add", token.MINUS: "sub", token.STAR: "mul", token.SLASH: "div", token.PERCENT: "rem",
	token.EQ: "eq", token.NE: "ne", token.LT: "lt", token.LE: "le", token.GT: "gt", token.GE: "ge",
	token.PLUS_ASSIGN: "add_assign", token.MINUS_ASSIGN: "sub_assign",
	token.STAR_ASSIGN: "mul_assign", token.SLASH_ASSIGN: "div_assign", token.PERCENT_ASSIGN: "rem_assign",
}

// IsCompoundAssign reports whether op is one of the `op=` forms whose
// dispatch requires `&Self!` receiver polarity (§6.6).
func IsCompoundAssign(op token.Kind) bool {
	switch op {
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		return true
	}
	return false
}

// MethodSig is one contract method requirement or a registered impl
// method's signature, compared structurally when checking satisfaction.
type MethodSig struct {
	Name            string
	ReceiverMutable bool // &Self! vs &Self
	Params          []Type
	Result          Type // nil means unit
}

func sigEqual(a, b MethodSig) bool {
	if a.Name != b.Name || a.ReceiverMutable != b.ReceiverMutable || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !Equal(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return resultEqual(a.Result, b.Result)
}

// Contract is a declared set of required method signatures (§3.5).
type Contract struct {
	Name    string
	Methods []MethodSig
}

// ContractRegistry records every declared contract and every type's
// implemented method set, and answers satisfaction queries. One registry
// is shared across a Program; internal/sema populates it while walking
// declarations, the type checker and borrow checker only read it.
//
// The shape is a name-keyed map of entries behind a Register/Lookup
// pair, covering both operator overloads and contract satisfaction.
type ContractRegistry struct {
	contracts map[string]*Contract
	impls     map[string][]MethodSig // type name -> every method it implements
}

// NewContractRegistry creates an empty registry.
func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{contracts: map[string]*Contract{}, impls: map[string][]MethodSig{}}
}

// RegisterContract records a contract's required methods.
func (r *ContractRegistry) RegisterContract(c *Contract) { r.contracts[c.Name] = c }

// Contract looks up a declared contract by name.
func (r *ContractRegistry) Contract(name string) (*Contract, bool) {
	c, ok := r.contracts[name]
	return c, ok
}

// RegisterImpl records that typeName implements method sig.
func (r *ContractRegistry) RegisterImpl(typeName string, sig MethodSig) {
	r.impls[typeName] = append(r.impls[typeName], sig)
}

// Satisfies reports whether typeName implements every method required by
// contractName, with matching receiver polarity (§3.5).
func (r *ContractRegistry) Satisfies(typeName, contractName string) bool {
	c, ok := r.contracts[contractName]
	if !ok {
		return false
	}
	have := r.impls[typeName]
	for _, want := range c.Methods {
		found := false
		for _, got := range have {
			if sigEqual(got, MethodSig{Name: want.Name, ReceiverMutable: want.ReceiverMutable, Params: want.Params, Result: want.Result}) {
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

// SatisfiesAll reports whether typeName satisfies every contract named in
// bounds, implementing intersection-as-bound semantics (§3.3, §3.5).
func (r *ContractRegistry) SatisfiesAll(typeName string, bounds []string) bool {
	for _, b := range bounds {
		if !r.Satisfies(typeName, b) {
			return false
		}
	}
	return true
}

// Methods returns every method typeName implements, used by the name
// resolver's method-dispatch rule (inherent, then contract-visible).
func (r *ContractRegistry) Methods(typeName string) []MethodSig {
	return r.impls[typeName]
}
