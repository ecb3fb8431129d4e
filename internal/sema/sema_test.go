package sema_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/resolver"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// memFS is the same in-memory FileReader used by the resolver's own tests,
// reused here so a whole program can be built from source text without
// touching disk.
type memFS map[string]string

func (m memFS) ReadFile(path string) (string, error) {
	if text, ok := m[path]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no such file: %s", path)
}

func (m memFS) Exists(path string) bool {
	_, ok := m[path]
	return ok
}

// run resolves a single-file program rooted at /app/main.vx and feeds it
// through sema.Run, returning the checked Context and its sink.
func run(t *testing.T, src string) (*sema.Context, *diag.Sink) {
	t.Helper()
	fs := memFS{"/app/main.vx": src}
	sink := diag.NewSink()
	r := resolver.New(fs, "", sink)
	prog := r.Resolve("/app/main.vx")
	require.False(t, sink.HasErrors(), "unexpected resolver errors: %v", sink.All())
	ctx := sema.Run(prog, sink)
	return ctx, sink
}

func TestIntegerLiteralDefaultsToI32(t *testing.T) {
	ctx, sink := run(t, `
fn main(): i32 {
	let x = 42;
	return x;
}
`)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())

	fn, ok := ctx.Functions["main"]
	require.True(t, ok, "main should be registered")
	require.NotNil(t, fn.Result)
	assert.Equal(t, &types.Primitive{Kind: types.I32}, fn.Result)

	// find the LetStmt's initializer inside main's body and confirm its
	// inferred type defaulted to i32 (§4.5's unsuffixed-integer-literal rule).
	decl, ok := fn.Decl.(*ast.FunctionDecl)
	require.True(t, ok)
	let, ok := decl.Body.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	typ, ok := ctx.Info[let.Value]
	require.True(t, ok, "initializer should carry an inferred type")
	assert.Equal(t, &types.Primitive{Kind: types.I32}, typ)
}

func TestMixedWidthArithmeticRejected(t *testing.T) {
	_, sink := run(t, `
fn main(): i32 {
	let a: i32 = 1;
	let b: i64 = 2;
	return a + b;
}
`)
	require.True(t, sink.HasErrors(), "expected a mixed-width numeric error")
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.OperatorMixedNumeric {
			found = true
		}
	}
	assert.True(t, found, "expected diag.OperatorMixedNumeric, got: %v", sink.All())
}

func TestNonExhaustiveMatchOverEnumIsRejected(t *testing.T) {
	_, sink := run(t, `
enum Signal {
	Red,
	Yellow,
	Green,
}

fn classify(s: Signal): i32 {
	return match s {
		Signal::Red => 0,
		Signal::Yellow => 1,
	};
}

fn main(): i32 {
	return classify(Signal::Red);
}
`)
	require.True(t, sink.HasErrors(), "expected a non-exhaustive match error")
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ExhaustivenessGap {
			found = true
		}
	}
	assert.True(t, found, "expected diag.ExhaustivenessGap, got: %v", sink.All())
}

func TestExhaustiveMatchOverEnumAccepted(t *testing.T) {
	_, sink := run(t, `
enum Signal {
	Red,
	Yellow,
	Green,
}

fn classify(s: Signal): i32 {
	return match s {
		Signal::Red => 0,
		Signal::Yellow => 1,
		Signal::Green => 2,
	};
}

fn main(): i32 {
	return classify(Signal::Green);
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestWildcardSatisfiesExhaustiveness(t *testing.T) {
	_, sink := run(t, `
enum Signal {
	Red,
	Yellow,
	Green,
}

fn classify(s: Signal): i32 {
	return match s {
		Signal::Red => 0,
		_ => 1,
	};
}

fn main(): i32 {
	return classify(Signal::Green);
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestTaggedUnionVariantConstructAndMatchRoundTrip(t *testing.T) {
	_, sink := run(t, `
enum Shape {
	Circle(i32),
	Rect(i32, i32),
}

fn area(s: Shape): i32 {
	return match s {
		Shape::Circle(r) => r * r,
		Shape::Rect(w, h) => w * h,
	};
}

fn main(): i32 {
	return area(Shape::Rect(3, 4));
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestUndeclaredContractMethodIsRejected(t *testing.T) {
	_, sink := run(t, `
contract Describable {
	fn describe(): i32;
}

struct Widget impl Describable {
	id: i32,
}

fn main(): i32 {
	return 0;
}
`)
	require.True(t, sink.HasErrors(), "expected an unsatisfied-contract error")
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ContractUnsatisfied {
			found = true
		}
	}
	assert.True(t, found, "expected diag.ContractUnsatisfied, got: %v", sink.All())
}

func TestGenericCallInfersTypeArgumentFromArgument(t *testing.T) {
	ctx, sink := run(t, `
fn id<T>(x: T): T {
	return x;
}

fn main(): i32 {
	let a = id(1);
	let b = id(1.0);
	return a;
}
`)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())

	fn, ok := ctx.Functions["main"]
	require.True(t, ok)
	decl := fn.Decl.(*ast.FunctionDecl)
	letA := decl.Body.Stmts[0].(*ast.LetStmt)
	letB := decl.Body.Stmts[1].(*ast.LetStmt)

	aType, ok := ctx.Info[letA.Value]
	require.True(t, ok)
	assert.Equal(t, &types.Primitive{Kind: types.I32}, aType, "id(1) should resolve to i32, not the bare type parameter")

	bType, ok := ctx.Info[letB.Value]
	require.True(t, ok)
	assert.Equal(t, &types.Primitive{Kind: types.F64}, bType, "id(1.0) should resolve to f64")

	callA := letA.Value.(*ast.CallExpr)
	callB := letB.Value.(*ast.CallExpr)
	require.Len(t, ctx.GenericCallArgs[callA], 1)
	require.Len(t, ctx.GenericCallArgs[callB], 1)
	assert.Equal(t, &types.Primitive{Kind: types.I32}, ctx.GenericCallArgs[callA][0])
	assert.Equal(t, &types.Primitive{Kind: types.F64}, ctx.GenericCallArgs[callB][0])
}

func TestInherentMethodSatisfiesContract(t *testing.T) {
	_, sink := run(t, `
contract Describable {
	fn describe(): i32;
}

struct Widget impl Describable {
	id: i32,

	fn describe(): i32 {
		return self.id;
	}
}

fn main(): i32 {
	return 0;
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestCastAllowsNumericConversions(t *testing.T) {
	_, sink := run(t, `
fn f(d: u8): i32 {
	return d as i32;
}

fn g(x: i32): f64 {
	return x as f64;
}
`)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestCastRejectsNonNumericTarget(t *testing.T) {
	_, sink := run(t, `
struct P { x: i32 }

fn f(p: P): i32 {
	return p as i32;
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.TypeBadCast {
			found = true
		}
	}
	assert.True(t, found, "want %s, got %v", diag.TypeBadCast, sink.All())
}

func TestImplicitNumericConversionStillRejectedWithoutCast(t *testing.T) {
	_, sink := run(t, `
fn f(d: u8): i32 {
	return d;
}
`)
	require.True(t, sink.HasErrors(), "u8 must not widen to i32 without an explicit cast")
}

func TestAwaitAllowedInsideAsyncFn(t *testing.T) {
	_, sink := run(t, `
async fn fetch(): i32 {
	return 1;
}

async fn work(): i32 {
	let v = await fetch();
	return v;
}
`)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestAwaitOutsideAsyncFnRejected(t *testing.T) {
	_, sink := run(t, `
async fn fetch(): i32 {
	return 1;
}

fn main(): i32 {
	return await fetch();
}
`)
	require.True(t, sink.HasErrors(), "await outside async fn must be rejected")
}

func runFiles(t *testing.T, files map[string]string) (*sema.Context, *diag.Sink) {
	t.Helper()
	fs := memFS(files)
	sink := diag.NewSink()
	r := resolver.New(fs, "", sink)
	prog := r.Resolve("/app/main.vx")
	require.False(t, sink.HasErrors(), "unexpected resolver errors: %v", sink.All())
	ctx := sema.Run(prog, sink)
	return ctx, sink
}

func TestCrossModulePrivateAccessRejected(t *testing.T) {
	_, sink := runFiles(t, map[string]string{
		"/app/main.vx": `import "./util";
fn main(): i32 {
	return secret();
}
`,
		"/app/util.vx": `export fn public_entry(): i32 { return secret(); }
fn secret(): i32 { return 7; }
`,
	})
	require.True(t, sink.HasErrors(), "private cross-module call must be rejected")
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ResolvePrivateAccess {
			found = true
		}
	}
	assert.True(t, found, "want %s, got %v", diag.ResolvePrivateAccess, sink.All())
}

func TestCrossModuleExportAllFallback(t *testing.T) {
	// util.vx never exports, so its whole surface is visible (§3.2).
	_, sink := runFiles(t, map[string]string{
		"/app/main.vx": `import "./util";
fn main(): i32 {
	return helper();
}
`,
		"/app/util.vx": `fn helper(): i32 { return 7; }
`,
	})
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestSelfEmbeddingStructRejected(t *testing.T) {
	_, sink := run(t, `
struct Node {
	value: i32,
	next: Node,
}

fn main(): i32 { return 0; }
`)
	require.True(t, sink.HasErrors(), "by-value self embedding has no finite layout")
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.CyclicType {
			found = true
		}
	}
	assert.True(t, found, "want %s, got %v", diag.CyclicType, sink.All())
}

func TestSelfReferenceThroughPointerAccepted(t *testing.T) {
	_, sink := run(t, `
struct Node {
	value: i32,
	next: *Node,
}

fn main(): i32 { return 0; }
`)
	assert.False(t, sink.HasErrors(), "indirection breaks the embedding cycle: %v", sink.All())
}

func TestRawPointerArithmeticRequiresUnsafe(t *testing.T) {
	_, sink := run(t, `
fn advance(p: *u8): *u8 {
	return p + 1;
}
`)
	require.True(t, sink.HasErrors(), "pointer arithmetic outside unsafe must be rejected")
}

func TestRawPointerArithmeticInsideUnsafeAccepted(t *testing.T) {
	_, sink := run(t, `
fn advance(p: *u8): *u8 {
	let! out = p;
	unsafe {
		out = p + 1;
	}
	return out;
}
`)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}
