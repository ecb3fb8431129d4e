package ir_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/borrow"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/mono"
	"github.com/vexlang/vexc/internal/resolver"
	"github.com/vexlang/vexc/internal/sema"
)

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

func lowerProgram(t *testing.T, src string) *ir.Module {
	t.Helper()
	fs := memFS{"/app/main.vx": src}
	sink := diag.NewSink()
	r := resolver.New(fs, "", sink)
	prog := r.Resolve("/app/main.vx")
	require.False(t, sink.HasErrors(), "unexpected resolver errors: %v", sink.All())
	ctx := sema.Run(prog, sink)
	require.False(t, sink.HasErrors(), "unexpected sema errors: %v", sink.All())
	borrow.Run(ctx, sink)
	require.False(t, sink.HasErrors(), "unexpected borrow errors: %v", sink.All())
	mr := mono.Run(ctx, sink)
	require.False(t, sink.HasErrors(), "unexpected mono errors: %v", sink.All())
	m := ir.Lower(ctx, mr, sink)
	require.False(t, sink.HasErrors(), "unexpected lowering errors: %v", sink.All())
	return m
}

func printModule(m *ir.Module) string {
	var b strings.Builder
	ir.NewPrinter(&b).Print(m)
	return b.String()
}

func TestLowerReturnConstant(t *testing.T) {
	m := lowerProgram(t, `fn main(): i32 { let x = 42; return x; }
`)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "main", m.Functions[0].Name)

	snaps.MatchSnapshot(t, printModule(m))
}

func TestLowerTaggedUnionMatch(t *testing.T) {
	m := lowerProgram(t, `enum IpAddr { V4(u8,u8,u8,u8), V6(String) }
fn main(): i32 {
  let a = IpAddr.V4(127,0,0,1);
  match a {
    IpAddr.V4(_,_,_,d) => { return d as i32; },
    IpAddr.V6(_) => { return 0; },
  }
}
`)
	require.Len(t, m.Functions, 1)

	snaps.MatchSnapshot(t, printModule(m))
}

func TestLowerGenericSpecializations(t *testing.T) {
	m := lowerProgram(t, `fn id<T>(x: T): T { return x; }
fn main(): i32 { let a = id(1); let b = id(1.0); return a; }
`)
	var names []string
	for _, fn := range m.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "id_i32")
	assert.Contains(t, names, "id_f64")

	snaps.MatchSnapshot(t, printModule(m))
}

func TestLowerDeferRunsInReverseOrderOnEveryExit(t *testing.T) {
	m := lowerProgram(t, `extern fn trace(n: i32): ();
fn main(): i32 {
  defer trace(1);
  defer trace(2);
  return 0;
}
`)
	require.Len(t, m.Functions, 1)
	text := printModule(m)

	// LIFO: the second defer's argument shows up before the first's.
	i1 := strings.Index(text, "trace(1)")
	i2 := strings.Index(text, "trace(2)")
	require.GreaterOrEqual(t, i1, 0, "defers must lower to calls:\n%s", text)
	require.GreaterOrEqual(t, i2, 0, "defers must lower to calls:\n%s", text)
	assert.Less(t, i2, i1, "defers must run last-in first-out:\n%s", text)
	snaps.MatchSnapshot(t, text)
}

// Identical programs must print byte-identical IR in the same order
// across runs; symbol order never depends on map iteration.
func TestLowerDeterministicAcrossRuns(t *testing.T) {
	src := `fn id<T>(x: T): T { return x; }
fn helper(n: i32): i32 { return n; }
fn main(): i32 { let a = id(1); let b = id(true); return helper(a); }
`
	first := printModule(lowerProgram(t, src))
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, printModule(lowerProgram(t, src)), "run %d differed", i)
	}
}
