package driver

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vexc/internal/diag"
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

func newTestDriver(fs memFS) *Driver {
	return New(Options{FS: fs, Log: io.Discard})
}

func TestCompileIntegerDefaultInference(t *testing.T) {
	fs := memFS{"/app/main.vx": `fn main(): i32 { let x = 42; return x; }
`}
	res := newTestDriver(fs).Compile("/app/main.vx")

	require.False(t, res.Sink.HasErrors(), "unexpected errors: %v", res.Sink.All())
	require.NotNil(t, res.IR)
	require.Len(t, res.IR.Functions, 1)
	assert.Equal(t, "main", res.IR.Functions[0].Name)
	assert.Equal(t, 0, res.Sink.ExitCode())
}

func TestCompileMoveAfterAssignmentRejected(t *testing.T) {
	fs := memFS{"/app/main.vx": `struct P { x: i32, y: i32 }
fn main(): i32 { let a = P { x: 1, y: 2 }; let b = a; return a.x; }
`}
	res := newTestDriver(fs).Compile("/app/main.vx")

	require.True(t, res.Sink.HasErrors())
	assert.Nil(t, res.IR, "codegen must not run after borrow errors")
	found := false
	for _, d := range res.Sink.All() {
		if d.Code == diag.MoveUseAfterMove {
			found = true
		}
	}
	assert.True(t, found, "want %s, got %v", diag.MoveUseAfterMove, res.Sink.All())
	assert.NotEqual(t, 0, res.Sink.ExitCode())
}

func TestCompileGenericSpecializations(t *testing.T) {
	fs := memFS{"/app/main.vx": `fn id<T>(x: T): T { return x; }
fn main(): i32 { let a = id(1); let b = id(1.0); return a; }
`}
	res := newTestDriver(fs).Compile("/app/main.vx")

	require.False(t, res.Sink.HasErrors(), "unexpected errors: %v", res.Sink.All())
	require.NotNil(t, res.IR)

	names := map[string]bool{}
	for _, fn := range res.IR.Functions {
		names[fn.Name] = true
	}
	assert.True(t, names["id_i32"], "missing id_i32 in %v", names)
	assert.True(t, names["id_f64"], "missing id_f64 in %v", names)
}

func TestCheckStopsBeforeCodegen(t *testing.T) {
	fs := memFS{"/app/main.vx": `fn main(): i32 { return 0; }
`}
	res := newTestDriver(fs).Check("/app/main.vx")

	require.False(t, res.Sink.HasErrors())
	assert.Nil(t, res.IR)
	assert.Nil(t, res.Mono)
	assert.NotNil(t, res.Sema)
}

func TestCancelDiscardsPartialWork(t *testing.T) {
	fs := memFS{"/app/main.vx": `fn main(): i32 { return 0; }
`}
	d := newTestDriver(fs)
	d.Cancel()
	res := d.Compile("/app/main.vx")

	assert.True(t, res.Cancelled)
	assert.Nil(t, res.IR)
	assert.Empty(t, res.Sink.All())
}

func TestCheckManyMergesInArgumentOrder(t *testing.T) {
	fs := memFS{
		"/app/bad1.vx": `fn f(): i32 { return "no"; }
`,
		"/app/ok.vx": `fn g(): i32 { return 1; }
`,
		"/app/bad2.vx": `fn h(): i32 { return missing; }
`,
	}
	d := newTestDriver(fs)

	paths := []string{"/app/bad1.vx", "/app/ok.vx", "/app/bad2.vx"}
	first := d.CheckMany(paths)
	require.True(t, first.Sink.HasErrors())

	// Diagnostics from bad1 must precede bad2 regardless of which
	// worker finished first, on every run.
	for i := 0; i < 8; i++ {
		res := d.CheckMany(paths)
		var files []string
		for _, dg := range res.Sink.All() {
			files = append(files, dg.Primary.File)
		}
		assert.Equal(t, diagFiles(first.Sink), files, "run %d merged out of order", i)
	}
}

func diagFiles(s *diag.Sink) []string {
	var files []string
	for _, d := range s.All() {
		files = append(files, d.Primary.File)
	}
	return files
}

func TestVerboseLogsPassTimings(t *testing.T) {
	fs := memFS{"/app/main.vx": `fn main(): i32 { return 0; }
`}
	var buf logBuffer
	d := New(Options{FS: fs, Verbose: true, Log: &buf})
	res := d.Compile("/app/main.vx")

	require.False(t, res.Sink.HasErrors())
	out := buf.String()
	for _, pass := range []string{"resolve", "sema", "borrow", "mono", "lower"} {
		assert.Contains(t, out, "pass "+pass)
	}
}

type logBuffer struct{ b []byte }

func (l *logBuffer) Write(p []byte) (int, error) {
	l.b = append(l.b, p...)
	return len(p), nil
}

func (l *logBuffer) String() string { return string(l.b) }
