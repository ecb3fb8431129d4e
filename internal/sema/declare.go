package sema

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/types"
)

// DeclareFile is Pass 1 (of C4): register every top-level name in file
// without resolving the types it mentions, so Pass 2 can resolve
// references regardless of declaration order.
func (c *Context) DeclareFile(file *ast.File) {
	anyExported := false
	for _, d := range file.Decls {
		if d.IsExported() {
			anyExported = true
		}
	}
	c.exportAll[file.Path] = !anyExported

	for _, d := range file.Decls {
		c.declFileOf[d] = file.Path
		// Methods do not own a top-level name slot: their visibility
		// follows the receiver type's.
		if _, isMethod := d.(*ast.MethodDecl); !isMethod {
			c.declModule[d.DeclName()] = file.Path
			c.declExported[d.DeclName()] = d.IsExported()
		}
		switch decl := d.(type) {
		case *ast.StructDecl:
			c.declareStruct(decl)
		case *ast.EnumDecl:
			c.declareEnum(decl)
		case *ast.ContractDecl:
			c.declareContract(decl)
		case *ast.TypeAliasDecl:
			c.declareAlias(decl)
		case *ast.FunctionDecl:
			c.funcDecls = append(c.funcDecls, decl)
		case *ast.MethodDecl:
			if name, ok := receiverStructName(decl.Receiver); ok {
				c.methodDecls = append(c.methodDecls, methodEntry{StructName: name, Decl: decl})
			} else {
				c.Sink.Errorf(diag.ResolveUnknownName, decl.Sp, "external method %q has no resolvable receiver type", decl.Name)
			}
		case *ast.ConstDecl:
			c.declareConst(decl)
		case *ast.ExternFunctionDecl:
			c.externDecls = append(c.externDecls, decl)
		}
	}
}

func (c *Context) declareStruct(decl *ast.StructDecl) {
	if _, exists := c.Types[decl.Name]; exists {
		c.Sink.Errorf(diag.ResolveAmbiguous, decl.Sp, "type %q already declared", decl.Name)
		return
	}
	c.Types[decl.Name] = &types.Named{Name: decl.Name, Kind: types.StructKind}
	c.structDecls[decl.Name] = decl
	for _, m := range decl.Methods {
		c.declFileOf[m] = c.declModule[decl.Name]
		c.methodDecls = append(c.methodDecls, methodEntry{StructName: decl.Name, Decl: m})
	}
}

// receiverStructName recovers the struct name an external method's
// receiver parameter names, e.g. `fn (r: &T!) name(...)` -> "T".
func receiverStructName(recv *ast.Param) (string, bool) {
	if recv == nil {
		return "", false
	}
	switch rt := recv.Type.(type) {
	case *ast.RefType:
		if n, ok := rt.Elem.(*ast.NamedType); ok {
			return n.Name, true
		}
	case *ast.NamedType:
		return rt.Name, true
	}
	return "", false
}

func (c *Context) declareEnum(decl *ast.EnumDecl) {
	if _, exists := c.Types[decl.Name]; exists {
		c.Sink.Errorf(diag.ResolveAmbiguous, decl.Sp, "type %q already declared", decl.Name)
		return
	}
	c.Types[decl.Name] = &types.Named{Name: decl.Name, Kind: types.EnumKind}
	c.enumDecls[decl.Name] = decl
}

func (c *Context) declareContract(decl *ast.ContractDecl) {
	if _, exists := c.contractDecls[decl.Name]; exists {
		c.Sink.Errorf(diag.ResolveAmbiguous, decl.Sp, "contract %q already declared", decl.Name)
		return
	}
	c.contractDecls[decl.Name] = decl
}

func (c *Context) declareAlias(decl *ast.TypeAliasDecl) {
	if _, exists := c.Types[decl.Name]; exists {
		c.Sink.Errorf(diag.ResolveAmbiguous, decl.Sp, "type %q already declared", decl.Name)
		return
	}
	c.Types[decl.Name] = &types.Named{Name: decl.Name, Kind: types.AliasKind}
	c.aliasDecls[decl.Name] = decl
}

func (c *Context) declareConst(decl *ast.ConstDecl) {
	if _, exists := c.Consts[decl.Name]; exists {
		c.Sink.Errorf(diag.ResolveAmbiguous, decl.Sp, "constant %q already declared", decl.Name)
		return
	}
	c.constDecls[decl.Name] = decl
	c.Consts[decl.Name] = &Symbol{Name: decl.Name, Kind: ConstSymbol}
}
