package borrow_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/borrow"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/resolver"
	"github.com/vexlang/vexc/internal/sema"
)

// memFS mirrors the in-memory FileReader used by the resolver and sema test
// suites, so a whole program can be built from source text without touching
// disk.
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

// check resolves and type-checks a single-file program, then runs the
// four-phase borrow checker over it, returning the sink so callers can
// assert on whatever diagnostics (if any) it accumulated.
func check(t *testing.T, src string) *diag.Sink {
	t.Helper()
	fs := memFS{"/app/main.vx": src}
	sink := diag.NewSink()
	r := resolver.New(fs, "", sink)
	prog := r.Resolve("/app/main.vx")
	require.False(t, sink.HasErrors(), "unexpected resolver errors: %v", sink.All())
	ctx := sema.Run(prog, sink)
	require.False(t, sink.HasErrors(), "unexpected sema errors: %v", sink.All())
	borrow.Run(ctx, sink)
	return sink
}

func hasCode(sink *diag.Sink, code diag.Code) bool {
	for _, d := range sink.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestAssignThroughImmutableParamIsRejected(t *testing.T) {
	sink := check(t, `
fn bump(x: i32): i32 {
	x = x + 1;
	return x;
}

fn main(): i32 {
	return bump(1);
}
`)
	require.True(t, sink.HasErrors(), "expected an immutability violation")
	assert.True(t, hasCode(sink, diag.ImmutabilityViolation), "expected diag.ImmutabilityViolation, got: %v", sink.All())
}

func TestAssignThroughMutableLetIsAccepted(t *testing.T) {
	sink := check(t, `
fn main(): i32 {
	let! x = 1;
	x = x + 1;
	return x;
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestUseAfterMoveIsRejected(t *testing.T) {
	sink := check(t, `
enum Box {
	Wrap(i32),
}

fn consume(b: Box): i32 {
	return match b {
		Box::Wrap(v) => v,
	};
}

fn main(): i32 {
	let b = Box::Wrap(5);
	let c = consume(b);
	let d = consume(b);
	return c + d;
}
`)
	require.True(t, sink.HasErrors(), "expected a use-after-move violation")
	assert.True(t, hasCode(sink, diag.MoveUseAfterMove), "expected diag.MoveUseAfterMove, got: %v", sink.All())
}

func TestMoveThenReassignIsAccepted(t *testing.T) {
	sink := check(t, `
enum Box {
	Wrap(i32),
}

fn consume(b: Box): i32 {
	return match b {
		Box::Wrap(v) => v,
	};
}

fn main(): i32 {
	let! b = Box::Wrap(5);
	let c = consume(b);
	b = Box::Wrap(7);
	let d = consume(b);
	return c + d;
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestOverlappingMutableBorrowIsRejected(t *testing.T) {
	sink := check(t, `
fn useBoth(a: &i32, b: &!i32): i32 {
	return 0;
}

fn main(): i32 {
	let! x = 1;
	return useBoth(&x, &!x);
}
`)
	require.True(t, sink.HasErrors(), "expected an aliasing violation")
	assert.True(t, hasCode(sink, diag.AliasingViolation), "expected diag.AliasingViolation, got: %v", sink.All())
}

func TestTwoImmutableBorrowsAreAccepted(t *testing.T) {
	sink := check(t, `
fn useBoth(a: &i32, b: &i32): i32 {
	return 0;
}

fn main(): i32 {
	let x = 1;
	return useBoth(&x, &x);
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestReturningReferenceToLocalIsRejected(t *testing.T) {
	sink := check(t, `
fn dangling(): &i32 {
	let x = 1;
	return &x;
}

fn main(): i32 {
	return 0;
}
`)
	require.True(t, sink.HasErrors(), "expected a lifetime violation")
	assert.True(t, hasCode(sink, diag.LifetimeViolation), "expected diag.LifetimeViolation, got: %v", sink.All())
}

func TestReturningReferenceToParamIsAccepted(t *testing.T) {
	sink := check(t, `
fn identity(x: &i32): &i32 {
	return x;
}

fn main(): i32 {
	return 0;
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

func TestCleanProgramPassesAllPhases(t *testing.T) {
	sink := check(t, `
enum Box {
	Wrap(i32),
}

fn consume(b: Box): i32 {
	return match b {
		Box::Wrap(v) => v,
	};
}

fn addOne(x: &i32): i32 {
	return *x + 1;
}

fn main(): i32 {
	let! total = 0;
	let b = Box::Wrap(5);
	total = total + consume(b);
	total = total + addOne(&total);
	return total;
}
`)
	assert.False(t, sink.HasErrors(), "unexpected errors: %v", sink.All())
}

// A call's argument borrows end with the call (§4.6 Phase 3), so two
// sequential, non-overlapping calls borrowing the same binding — one of
// them mutably — must be accepted.
func TestSequentialBorrowsOfSameBindingAccepted(t *testing.T) {
	sink := check(t, `
fn bump(r: &!i32): i32 {
	return 0;
}

fn read(r: &i32): i32 {
	return 0;
}

fn main(): i32 {
	let! x = 1;
	bump(&!x);
	return read(&x);
}
`)
	assert.False(t, sink.HasErrors(), "sequential call borrows must not conflict: %v", sink.All())
}

func TestStringUseAfterMoveIsRejected(t *testing.T) {
	sink := check(t, `
fn consume(s: String): i32 {
	return 0;
}

fn main(): i32 {
	let a: String = "x";
	let b = a;
	return consume(a);
}
`)
	require.True(t, sink.HasErrors(), "a string is a Move type and must be tracked")
	assert.True(t, hasCode(sink, diag.MoveUseAfterMove), "expected diag.MoveUseAfterMove, got: %v", sink.All())
}

func TestPlainEnumCopiesWithoutMove(t *testing.T) {
	sink := check(t, `
enum S {
	A,
	B,
	C,
}

fn eat(s: S): i32 {
	return 0;
}

fn main(): i32 {
	let a = S::A;
	let b = a;
	let c = eat(a);
	return c + eat(b);
}
`)
	assert.False(t, sink.HasErrors(), "a data-less enum is Copy and never moves: %v", sink.All())
}
