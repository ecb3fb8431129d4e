// Package printer renders a parsed ast.File back to Vex source text. The
// output is canonical: it re-parses to an equal tree, and formatting an
// already-formatted file is a no-op. The fmt subcommand and the
// round-trip tests are its two consumers.
package printer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/pkg/token"
)

// Config controls the rendered style.
type Config struct {
	// Indent is the unit of indentation. Defaults to one tab.
	Indent string
}

// Printer pretty-prints AST nodes with the configured style.
type Printer struct {
	cfg Config
	b   strings.Builder
	lvl int
}

// New creates a Printer; a zero Config selects the defaults.
func New(cfg Config) *Printer {
	if cfg.Indent == "" {
		cfg.Indent = "\t"
	}
	return &Printer{cfg: cfg}
}

// Format renders a whole file: imports first, then declarations separated
// by blank lines, trailing newline included.
func Format(file *ast.File) string {
	return New(Config{}).Format(file)
}

func (p *Printer) Format(file *ast.File) string {
	p.b.Reset()
	for _, imp := range file.Imports {
		p.importDecl(imp)
		p.b.WriteString("\n")
	}
	if len(file.Imports) > 0 && len(file.Decls) > 0 {
		p.b.WriteString("\n")
	}
	for i, d := range file.Decls {
		if i > 0 {
			p.b.WriteString("\n")
		}
		p.decl(d)
		p.b.WriteString("\n")
	}
	return p.b.String()
}

func (p *Printer) indent() {
	for i := 0; i < p.lvl; i++ {
		p.b.WriteString(p.cfg.Indent)
	}
}

func (p *Printer) importDecl(d *ast.ImportDecl) {
	switch {
	case d.StarAlias != "":
		p.b.WriteString("import * as " + d.StarAlias + " from \"" + d.Path + "\";")
	case d.Names != nil:
		names := make([]string, 0, len(d.Names))
		for n := range d.Names {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			if alias := d.Names[n]; alias != n {
				parts[i] = n + " as " + alias
			} else {
				parts[i] = n
			}
		}
		p.b.WriteString("import { " + strings.Join(parts, ", ") + " } from \"" + d.Path + "\";")
	default:
		p.b.WriteString("import \"" + d.Path + "\";")
	}
}

func (p *Printer) decl(d ast.Decl) {
	switch x := d.(type) {
	case *ast.FunctionDecl:
		p.function(x)
	case *ast.MethodDecl:
		p.method(x)
	case *ast.StructDecl:
		p.structDecl(x)
	case *ast.EnumDecl:
		p.enumDecl(x)
	case *ast.ContractDecl:
		p.contractDecl(x)
	case *ast.TypeAliasDecl:
		p.b.WriteString(exportPrefix(x.Exported) + "type " + x.Name + typeParams(x.TypeParams) + " = " + x.Underlying.String() + ";")
	case *ast.ConstDecl:
		p.b.WriteString(exportPrefix(x.Exported) + "const " + x.Name)
		if x.Type != nil {
			p.b.WriteString(": " + x.Type.String())
		}
		p.b.WriteString(" = ")
		p.expr(x.Value)
		p.b.WriteString(";")
	case *ast.PolicyDecl:
		p.b.WriteString("policy " + x.Name)
		if len(x.Args) > 0 {
			p.b.WriteString("(")
			p.exprList(x.Args)
			p.b.WriteString(")")
		}
		p.b.WriteString(";")
	case *ast.ExternFunctionDecl:
		p.b.WriteString(exportPrefix(x.Exported) + "extern fn " + x.Name + "(")
		p.params(x.Params)
		p.b.WriteString(")")
		if x.Result != nil {
			p.b.WriteString(": " + x.Result.String())
		}
		p.b.WriteString(";")
	}
}

func exportPrefix(exported bool) string {
	if exported {
		return "export "
	}
	return ""
}

func typeParams(tps []*ast.TypeParam) string {
	if len(tps) == 0 {
		return ""
	}
	parts := make([]string, len(tps))
	for i, tp := range tps {
		parts[i] = tp.Name
		if len(tp.Bounds) > 0 {
			bounds := make([]string, len(tp.Bounds))
			for j, b := range tp.Bounds {
				bounds[j] = b.String()
			}
			parts[i] += ": " + strings.Join(bounds, " & ")
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (p *Printer) params(params []*ast.Param) {
	for i, prm := range params {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.b.WriteString(prm.Name + ": ")
		if prm.Variadic {
			p.b.WriteString("...")
		}
		p.b.WriteString(prm.Type.String())
		if prm.Default != nil {
			p.b.WriteString(" = ")
			p.expr(prm.Default)
		}
	}
}

func (p *Printer) function(d *ast.FunctionDecl) {
	p.b.WriteString(exportPrefix(d.Exported))
	if d.Async {
		p.b.WriteString("async ")
	}
	p.b.WriteString("fn " + d.Name + typeParams(d.TypeParams) + "(")
	p.params(d.Params)
	p.b.WriteString(")")
	if d.Result != nil {
		p.b.WriteString(": " + d.Result.String())
	}
	p.b.WriteString(" ")
	p.block(d.Body)
}

func (p *Printer) method(d *ast.MethodDecl) {
	p.b.WriteString(exportPrefix(d.Exported))
	if d.Async {
		p.b.WriteString("async ")
	}
	if d.External && d.Receiver != nil {
		p.b.WriteString("fn (" + d.Receiver.Name + ": " + d.Receiver.Type.String() + ") " + d.Name + "(")
		p.params(d.Params)
		p.b.WriteString(")")
	} else {
		p.b.WriteString("fn " + d.Name + typeParams(d.TypeParams) + "(")
		p.params(d.Params)
		p.b.WriteString(")")
		if d.ReceiverMutable {
			p.b.WriteString("!")
		}
	}
	if d.Result != nil {
		p.b.WriteString(": " + d.Result.String())
	}
	p.b.WriteString(" ")
	p.block(d.Body)
}

func (p *Printer) structDecl(d *ast.StructDecl) {
	p.b.WriteString(exportPrefix(d.Exported) + "struct " + d.Name + typeParams(d.TypeParams))
	if len(d.Impls) > 0 {
		p.b.WriteString(" impl " + strings.Join(d.Impls, " & "))
	}
	p.b.WriteString(" {\n")
	p.lvl++
	for _, f := range d.Fields {
		p.indent()
		p.b.WriteString(exportPrefix(f.Exported) + f.Name + ": " + f.Type.String() + ",\n")
	}
	for _, m := range d.Methods {
		p.b.WriteString("\n")
		p.indent()
		p.method(m)
		p.b.WriteString("\n")
	}
	p.lvl--
	p.indent()
	p.b.WriteString("}")
}

func (p *Printer) enumDecl(d *ast.EnumDecl) {
	p.b.WriteString(exportPrefix(d.Exported) + "enum " + d.Name + typeParams(d.TypeParams) + " {\n")
	p.lvl++
	for _, v := range d.Variants {
		p.indent()
		p.b.WriteString(v.Name)
		if len(v.Payload) > 0 {
			parts := make([]string, len(v.Payload))
			for i, t := range v.Payload {
				parts[i] = t.String()
			}
			p.b.WriteString("(" + strings.Join(parts, ", ") + ")")
		}
		p.b.WriteString(",\n")
	}
	p.lvl--
	p.indent()
	p.b.WriteString("}")
}

func (p *Printer) contractDecl(d *ast.ContractDecl) {
	p.b.WriteString(exportPrefix(d.Exported) + "contract " + d.Name + " {\n")
	p.lvl++
	for _, m := range d.Methods {
		p.indent()
		p.b.WriteString("fn " + m.Name + "(")
		p.params(m.Params)
		p.b.WriteString(")")
		if m.ReceiverMutable {
			p.b.WriteString("!")
		}
		if m.Result != nil {
			p.b.WriteString(": " + m.Result.String())
		}
		p.b.WriteString(";\n")
	}
	p.lvl--
	p.indent()
	p.b.WriteString("}")
}

func (p *Printer) block(b *ast.BlockStmt) {
	if b == nil {
		p.b.WriteString("{}")
		return
	}
	p.b.WriteString("{\n")
	p.lvl++
	for _, s := range b.Stmts {
		p.indent()
		p.stmt(s)
		p.b.WriteString("\n")
	}
	p.lvl--
	p.indent()
	p.b.WriteString("}")
}

func (p *Printer) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.LetStmt:
		if x.Mutable {
			p.b.WriteString("let! " + x.Name)
		} else {
			p.b.WriteString("let " + x.Name)
		}
		if x.Type != nil {
			p.b.WriteString(": " + x.Type.String())
		}
		p.b.WriteString(" = ")
		p.expr(x.Value)
		p.b.WriteString(";")
	case *ast.AssignStmt:
		p.expr(x.Target)
		p.b.WriteString(" " + x.Op.String() + " ")
		p.expr(x.Value)
		p.b.WriteString(";")
	case *ast.ExprStmt:
		p.expr(x.X)
		if !blockLike(x.X) {
			p.b.WriteString(";")
		}
	case *ast.ReturnStmt:
		if x.Value == nil {
			p.b.WriteString("return;")
		} else {
			p.b.WriteString("return ")
			p.expr(x.Value)
			p.b.WriteString(";")
		}
	case *ast.BreakStmt:
		p.b.WriteString("break;")
	case *ast.ContinueStmt:
		p.b.WriteString("continue;")
	case *ast.DeferStmt:
		p.b.WriteString("defer ")
		p.expr(x.Call)
		p.b.WriteString(";")
	case *ast.IfLetStmt:
		p.ifLet(x)
	case *ast.ForStmt:
		p.b.WriteString("for " + x.Binding + " in ")
		p.expr(x.Iter)
		p.b.WriteString(" ")
		p.block(x.Body)
	case *ast.WhileStmt:
		p.b.WriteString("while ")
		p.expr(x.Cond)
		p.b.WriteString(" ")
		p.block(x.Body)
	case *ast.LoopStmt:
		p.b.WriteString("loop ")
		p.block(x.Body)
	case *ast.UnsafeStmt:
		p.b.WriteString("unsafe ")
		p.block(x.Body)
	case *ast.BlockStmt:
		p.block(x)
	}
}

func (p *Printer) ifLet(s *ast.IfLetStmt) {
	p.b.WriteString("if let ")
	p.pattern(s.Pattern)
	p.b.WriteString(" = ")
	p.expr(s.Value)
	if s.Guard != nil {
		p.b.WriteString(" if ")
		p.expr(s.Guard)
	}
	p.b.WriteString(" ")
	p.block(s.Then)
	switch els := s.Else.(type) {
	case *ast.IfLetStmt:
		p.b.WriteString(" else ")
		p.ifLet(els)
	case *ast.BlockStmt:
		p.b.WriteString(" else ")
		p.block(els)
	}
}

func blockLike(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IfExpr, *ast.MatchExpr, *ast.BlockExpr:
		return true
	}
	return false
}

func (p *Printer) exprList(exprs []ast.Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.expr(e)
	}
}

// operand prints a sub-expression of an operator, parenthesizing the
// forms whose reparse would otherwise regroup under the parent operator.
func (p *Printer) operand(e ast.Expr) {
	switch e.(type) {
	case *ast.BinaryExpr, *ast.RangeExpr, *ast.CastExpr, *ast.StructLiteralExpr:
		p.b.WriteString("(")
		p.expr(e)
		p.b.WriteString(")")
	default:
		p.expr(e)
	}
}

func (p *Printer) expr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.IntLiteral:
		p.b.WriteString(strconv.FormatInt(x.Value, 10) + x.Suffix)
	case *ast.FloatLiteral:
		s := strconv.FormatFloat(x.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		p.b.WriteString(s + x.Suffix)
	case *ast.StringLiteral:
		p.b.WriteString(strconv.Quote(x.Value))
	case *ast.InterpStringLiteral:
		p.interpString(x)
	case *ast.BoolLiteral:
		p.b.WriteString(strconv.FormatBool(x.Value))
	case *ast.NilLiteral:
		p.b.WriteString("nil")
	case *ast.Ident:
		p.b.WriteString(x.Name)
	case *ast.CallExpr:
		p.expr(x.Callee)
		p.b.WriteString("(")
		p.exprList(x.Args)
		p.b.WriteString(")")
	case *ast.MethodCallExpr:
		p.operand(x.Receiver)
		p.b.WriteString("." + x.Method + "(")
		p.exprList(x.Args)
		p.b.WriteString(")")
	case *ast.FieldAccessExpr:
		p.operand(x.Receiver)
		p.b.WriteString("." + x.Field)
	case *ast.VariantExpr:
		p.b.WriteString(x.Enum + "::" + x.Variant + "(")
		p.exprList(x.Args)
		p.b.WriteString(")")
	case *ast.IndexExpr:
		p.operand(x.Receiver)
		p.b.WriteString("[")
		p.expr(x.Index)
		p.b.WriteString("]")
	case *ast.RangeExpr:
		if x.From != nil {
			p.operand(x.From)
		}
		if x.Inclusive {
			p.b.WriteString("..=")
		} else {
			p.b.WriteString("..")
		}
		if x.To != nil {
			p.operand(x.To)
		}
	case *ast.BinaryExpr:
		p.operand(x.Left)
		p.b.WriteString(" " + x.Op.String() + " ")
		p.operand(x.Right)
	case *ast.UnaryExpr:
		if x.Op == token.AMP && x.RefMut {
			p.b.WriteString("&")
			p.operand(x.Operand)
			p.b.WriteString("!")
			return
		}
		p.b.WriteString(x.Op.String())
		p.operand(x.Operand)
	case *ast.CastExpr:
		p.operand(x.Operand)
		p.b.WriteString(" as " + x.Target.String())
	case *ast.IfExpr:
		p.ifExpr(x)
	case *ast.MatchExpr:
		p.matchExpr(x)
	case *ast.BlockExpr:
		p.block(x.Block)
	case *ast.BlockStmt:
		p.block(x)
	case *ast.StructLiteralExpr:
		p.b.WriteString(x.Type + " { ")
		for i, f := range x.Fields {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.b.WriteString(f.Name + ": ")
			p.expr(f.Value)
		}
		p.b.WriteString(" }")
	case *ast.TupleLiteralExpr:
		p.b.WriteString("(")
		p.exprList(x.Elems)
		if len(x.Elems) == 1 {
			p.b.WriteString(",")
		}
		p.b.WriteString(")")
	case *ast.ArrayLiteralExpr:
		p.b.WriteString("[")
		if x.Repeat != nil {
			p.expr(x.Repeat)
			p.b.WriteString("; ")
			p.expr(x.Count)
		} else {
			p.exprList(x.Elems)
		}
		p.b.WriteString("]")
	case *ast.AwaitExpr:
		p.b.WriteString("await ")
		p.operand(x.Operand)
	case *ast.GoExpr:
		p.b.WriteString("go ")
		p.expr(x.Call)
	}
}

func (p *Printer) ifExpr(x *ast.IfExpr) {
	p.b.WriteString("if ")
	p.expr(x.Cond)
	p.b.WriteString(" ")
	p.block(x.Then)
	switch els := x.Else.(type) {
	case *ast.IfExpr:
		p.b.WriteString(" else ")
		p.ifExpr(els)
	case *ast.BlockStmt:
		p.b.WriteString(" else ")
		p.block(els)
	}
}

func (p *Printer) matchExpr(x *ast.MatchExpr) {
	p.b.WriteString("match ")
	p.expr(x.Scrutinee)
	p.b.WriteString(" {\n")
	p.lvl++
	for _, arm := range x.Arms {
		p.indent()
		if arm.Wildcard {
			p.b.WriteString("_")
		} else {
			p.pattern(arm.Pattern)
		}
		if arm.Guard != nil {
			p.b.WriteString(" if ")
			p.expr(arm.Guard)
		}
		p.b.WriteString(" => ")
		switch body := arm.Body.(type) {
		case *ast.BlockStmt:
			p.block(body)
		case ast.Expr:
			p.expr(body)
		}
		p.b.WriteString(",\n")
	}
	p.lvl--
	p.indent()
	p.b.WriteString("}")
}

func (p *Printer) pattern(pat ast.Pattern) {
	switch x := pat.(type) {
	case *ast.VariantPattern:
		p.b.WriteString(x.Enum + "::" + x.Variant)
		if len(x.Bindings) > 0 {
			p.b.WriteString("(" + strings.Join(x.Bindings, ", ") + ")")
		}
	case *ast.TypePattern:
		p.b.WriteString(x.Type.String())
		if x.Binding != "" {
			p.b.WriteString(" " + x.Binding)
		}
	case *ast.LiteralPattern:
		p.expr(x.Value)
	}
}

func (p *Printer) interpString(x *ast.InterpStringLiteral) {
	p.b.WriteString("f\"")
	for _, part := range x.Parts {
		if part.Expr != nil {
			p.b.WriteString("{")
			p.expr(part.Expr)
			p.b.WriteString("}")
			continue
		}
		p.b.WriteString(escapeInterpText(part.Text))
	}
	p.b.WriteString("\"")
}

func escapeInterpText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
