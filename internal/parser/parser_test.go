package parser

import (
	"testing"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
)

func parseSrc(t *testing.T, src string) (*ast.File, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	f := ParseFile("test.vx", src, sink)
	return f, sink
}

func TestParseFunctionDecl(t *testing.T) {
	f, sink := parseSrc(t, `
fn add(a: i32, b: i32): i32 {
	return a + b;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(f.Decls) != 1 {
		t.Fatalf("want 1 decl, got %d", len(f.Decls))
	}
	fn, ok := f.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FunctionDecl", f.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("got fn %q with %d params", fn.Name, len(fn.Params))
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("want 1 statement in body, got %d", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("body stmt is %T, want *ast.ReturnStmt", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("return value is %T, want *ast.BinaryExpr", ret.Value)
	}
	if bin.Op.String() != "+" {
		t.Errorf("op = %q, want +", bin.Op.String())
	}
}

func TestParseExternalMethodDecl(t *testing.T) {
	f, sink := parseSrc(t, `
fn (p: &Point!) translate(dx: i32, dy: i32) {
	p.x = p.x + dx;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	m, ok := f.Decls[0].(*ast.MethodDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.MethodDecl", f.Decls[0])
	}
	if !m.External || m.Receiver == nil || !m.ReceiverMutable {
		t.Fatalf("got MethodDecl %+v, want external mutable receiver", m)
	}
}

func TestParseStructWithInlineMethod(t *testing.T) {
	f, sink := parseSrc(t, `
struct Point impl Display {
	x: i32,
	y: i32,

	fn show(): String {
		return "point";
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	s, ok := f.Decls[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.StructDecl", f.Decls[0])
	}
	if len(s.Fields) != 2 || len(s.Methods) != 1 {
		t.Fatalf("got %d fields, %d methods", len(s.Fields), len(s.Methods))
	}
	if len(s.Impls) != 1 || s.Impls[0] != "Display" {
		t.Fatalf("got impls %v, want [Display]", s.Impls)
	}
}

func TestParseEnumWithPayload(t *testing.T) {
	f, sink := parseSrc(t, `
enum Shape {
	Circle(f64),
	Rect(f64, f64),
	Empty,
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	e := f.Decls[0].(*ast.EnumDecl)
	if len(e.Variants) != 3 {
		t.Fatalf("got %d variants, want 3", len(e.Variants))
	}
	if len(e.Variants[0].Payload) != 1 || len(e.Variants[1].Payload) != 2 || e.Variants[2].Payload != nil {
		t.Fatalf("unexpected variant payloads: %+v", e.Variants)
	}
}

func TestParseUnionAndIntersectionTypes(t *testing.T) {
	f, sink := parseSrc(t, `
type Num = i32 | f64 | String;
type Both = Display & Clone;
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	alias := f.Decls[0].(*ast.TypeAliasDecl)
	u, ok := alias.Underlying.(*ast.UnionType)
	if !ok {
		t.Fatalf("got %T, want *ast.UnionType", alias.Underlying)
	}
	if len(u.Members) != 3 {
		t.Fatalf("got %d union members, want 3 (flattened)", len(u.Members))
	}
	alias2 := f.Decls[1].(*ast.TypeAliasDecl)
	if _, ok := alias2.Underlying.(*ast.IntersectionType); !ok {
		t.Fatalf("got %T, want *ast.IntersectionType", alias2.Underlying)
	}
}

func TestParseIfElseExpression(t *testing.T) {
	f, sink := parseSrc(t, `
fn max(a: i32, b: i32): i32 {
	return if a > b { a } else { b };
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	ie, ok := ret.Value.(*ast.IfExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.IfExpr", ret.Value)
	}
	if ie.Else == nil {
		t.Fatalf("want non-nil else branch")
	}
}

func TestParseMatchWithVariantAndWildcard(t *testing.T) {
	f, sink := parseSrc(t, `
fn area(s: Shape): f64 {
	return match s {
		Shape::Circle(r) => r * r,
		_ => 0.0,
	};
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	m := ret.Value.(*ast.MatchExpr)
	if len(m.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(m.Arms))
	}
	vp, ok := m.Arms[0].Pattern.(*ast.VariantPattern)
	if !ok {
		t.Fatalf("arm 0 pattern is %T, want *ast.VariantPattern", m.Arms[0].Pattern)
	}
	if vp.Enum != "Shape" || vp.Variant != "Circle" || len(vp.Bindings) != 1 {
		t.Fatalf("got variant pattern %+v", vp)
	}
	if !m.Arms[1].Wildcard {
		t.Fatalf("arm 1 should be the wildcard arm")
	}
}

func TestParseLetMutableAndAssignment(t *testing.T) {
	f, sink := parseSrc(t, `
fn counter() {
	let! n = 0;
	n += 1;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	if !let.Mutable || let.Name != "n" {
		t.Fatalf("got let %+v, want mutable n", let)
	}
	assign := fn.Body.Stmts[1].(*ast.AssignStmt)
	if assign.Op.String() != "+=" {
		t.Fatalf("got assign op %q, want +=", assign.Op.String())
	}
}

func TestParseIfLetWithGuard(t *testing.T) {
	f, sink := parseSrc(t, `
fn check(s: Shape) {
	if let Shape::Circle(r) = s if r > 0.0 {
		return;
	} else {
		return;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	il, ok := fn.Body.Stmts[0].(*ast.IfLetStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.IfLetStmt", fn.Body.Stmts[0])
	}
	if il.Guard == nil {
		t.Fatalf("want a non-nil guard")
	}
	if il.Else == nil {
		t.Fatalf("want a non-nil else branch")
	}
}

func TestParseForWhileLoop(t *testing.T) {
	f, sink := parseSrc(t, `
fn run() {
	for x in 0..10 {
		continue;
	}
	while true {
		break;
	}
	loop {
		break;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(fn.Body.Stmts))
	}
	forS, ok := fn.Body.Stmts[0].(*ast.ForStmt)
	if !ok || forS.Binding != "x" {
		t.Fatalf("got %T, want *ast.ForStmt binding x", fn.Body.Stmts[0])
	}
	rangeExpr, ok := forS.Iter.(*ast.RangeExpr)
	if !ok || rangeExpr.Inclusive {
		t.Fatalf("got iter %+v, want exclusive range", forS.Iter)
	}
	if _, ok := fn.Body.Stmts[1].(*ast.WhileStmt); !ok {
		t.Fatalf("got %T, want *ast.WhileStmt", fn.Body.Stmts[1])
	}
	if _, ok := fn.Body.Stmts[2].(*ast.LoopStmt); !ok {
		t.Fatalf("got %T, want *ast.LoopStmt", fn.Body.Stmts[2])
	}
}

func TestParseDeferStatement(t *testing.T) {
	f, sink := parseSrc(t, `
fn run() {
	defer close();
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	d, ok := fn.Body.Stmts[0].(*ast.DeferStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.DeferStmt", fn.Body.Stmts[0])
	}
	if _, ok := d.Call.(*ast.CallExpr); !ok {
		t.Fatalf("got %T, want *ast.CallExpr", d.Call)
	}
}

func TestParseInterpolatedStringExpression(t *testing.T) {
	f, sink := parseSrc(t, `
fn greet(name: String): String {
	return f"hello {name}!";
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	lit, ok := ret.Value.(*ast.InterpStringLiteral)
	if !ok {
		t.Fatalf("got %T, want *ast.InterpStringLiteral", ret.Value)
	}
	if len(lit.Parts) != 3 {
		t.Fatalf("got %d parts, want 3 (\"hello \", {name}, \"!\")", len(lit.Parts))
	}
	if lit.Parts[1].Expr == nil {
		t.Fatalf("middle part should carry an embedded expression")
	}
}

func TestParseImportForms(t *testing.T) {
	f, sink := parseSrc(t, `
import "std/io";
import * as io from "std/io";
import { Reader, Writer as W } from "std/io";
fn main() {}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(f.Imports) != 3 {
		t.Fatalf("got %d imports, want 3", len(f.Imports))
	}
	if f.Imports[1].StarAlias != "io" {
		t.Fatalf("got star alias %q, want io", f.Imports[1].StarAlias)
	}
	if f.Imports[2].Names["Writer"] != "W" {
		t.Fatalf("got names %v, want Writer aliased to W", f.Imports[2].Names)
	}
}

func TestParseRecoversFromMalformedDeclAndContinues(t *testing.T) {
	f, sink := parseSrc(t, `
fn broken( {
	1 +;
}
fn ok(): i32 {
	return 1;
}
`)
	if !sink.HasErrors() {
		t.Fatalf("expected at least one diagnostic from the malformed declaration")
	}
	found := false
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FunctionDecl); ok && fn.Name == "ok" {
			found = true
		}
	}
	if !found {
		t.Fatalf("parser should recover and still parse the trailing 'ok' declaration")
	}
}

func TestParseGenericFunctionWithContractBound(t *testing.T) {
	f, sink := parseSrc(t, `
fn first<T: Clone>(xs: &[T]): T {
	return xs[0];
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	if len(fn.TypeParams) != 1 || fn.TypeParams[0].Name != "T" {
		t.Fatalf("got type params %+v", fn.TypeParams)
	}
	if len(fn.TypeParams[0].Bounds) != 1 {
		t.Fatalf("want one contract bound, got %d", len(fn.TypeParams[0].Bounds))
	}
}

func TestParseCastExpression(t *testing.T) {
	f, sink := parseSrc(t, `
fn f(d: u8): i32 {
	return d as i32 + 1;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	// `as` binds tighter than `+`: (d as i32) + 1.
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("return value is %T, want *ast.BinaryExpr", ret.Value)
	}
	cast, ok := bin.Left.(*ast.CastExpr)
	if !ok {
		t.Fatalf("left operand is %T, want *ast.CastExpr", bin.Left)
	}
	named, ok := cast.Target.(*ast.NamedType)
	if !ok || named.Name != "i32" {
		t.Fatalf("cast target = %v, want i32", cast.Target)
	}
}

func TestParseAsyncFunction(t *testing.T) {
	f, sink := parseSrc(t, `
async fn fetch(url: String): i32 {
	return 0;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn, ok := f.Decls[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FunctionDecl", f.Decls[0])
	}
	if !fn.Async {
		t.Errorf("fn.Async = false, want true")
	}
}

func TestParseStructLiteral(t *testing.T) {
	f, sink := parseSrc(t, `
struct P { x: i32, y: i32 }

fn main(): i32 {
	let a = P { x: 1, y: 2 };
	return a.x;
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[1].(*ast.FunctionDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	lit, ok := let.Value.(*ast.StructLiteralExpr)
	if !ok {
		t.Fatalf("initializer is %T, want *ast.StructLiteralExpr", let.Value)
	}
	if lit.Type != "P" || len(lit.Fields) != 2 {
		t.Fatalf("got %s with %d fields", lit.Type, len(lit.Fields))
	}
}

func TestParseMatchHeaderDoesNotEatStructLiteral(t *testing.T) {
	// `match s {` must open the match block; a struct literal in an arm
	// body still parses normally.
	f, sink := parseSrc(t, `
struct P { x: i32 }
enum E { A, B }

fn f(s: E): P {
	return match s {
		E::A => P { x: 1 },
		E::B => P { x: 2 },
	};
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(f.Decls) != 3 {
		t.Fatalf("want 3 decls, got %d", len(f.Decls))
	}
}

func TestParseUnsafeBlock(t *testing.T) {
	f, sink := parseSrc(t, `
fn f(p: *u8): *u8 {
	unsafe {
		return p + 1;
	}
}
`)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	fn := f.Decls[0].(*ast.FunctionDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.UnsafeStmt); !ok {
		t.Fatalf("stmt is %T, want *ast.UnsafeStmt", fn.Body.Stmts[0])
	}
}
