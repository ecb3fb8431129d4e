package resolver

import (
	"fmt"
	"testing"

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

func TestResolveRelativeImport(t *testing.T) {
	fs := memFS{
		"/app/main.vx": `import "./util";
fn main() {}
`,
		"/app/util.vx": `export fn helper() {}
`,
	}
	sink := diag.NewSink()
	r := New(fs, "", sink)
	prog := r.Resolve("/app/main.vx")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if len(prog.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(prog.Modules))
	}
	main, ok := prog.Get("/app/main.vx")
	if !ok {
		t.Fatalf("expected entry module registered")
	}
	if len(main.Imports) != 1 {
		t.Fatalf("got %d imports on main, want 1", len(main.Imports))
	}
}

func TestResolveMutualCycleTerminates(t *testing.T) {
	fs := memFS{
		"/app/a.vx": `import "./b";
export fn a() {}
`,
		"/app/b.vx": `import "./a";
export fn b() {}
`,
	}
	sink := diag.NewSink()
	r := New(fs, "", sink)
	prog := r.Resolve("/app/a.vx")

	if sink.HasErrors() {
		t.Fatalf("mutually recursive modules should be tolerated, got: %v", sink.All())
	}
	if len(prog.Modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(prog.Modules))
	}
}

func TestResolveUnresolvableImportReportsImportNotFound(t *testing.T) {
	fs := memFS{
		"/app/main.vx": `import "./missing";
fn main() {}
`,
	}
	sink := diag.NewSink()
	r := New(fs, "", sink)
	r.Resolve("/app/main.vx")

	if !sink.HasErrors() {
		t.Fatalf("expected an ImportNotFound diagnostic")
	}
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ImportNotFound {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected diag.ImportNotFound among: %v", sink.All())
	}
}

func TestResolvePackageRootByManifest(t *testing.T) {
	fs := memFS{
		"/app/main.vx":            `import "mathlib";` + "\nfn main() {}\n",
		"/app/mathlib/vex.json":   `{"name": "mathlib", "version": "1.2.0", "main": "lib.vx"}`,
		"/app/mathlib/lib.vx":     `export fn add(a: i32, b: i32): i32 { return a + b; }` + "\n",
	}
	sink := diag.NewSink()
	r := New(fs, "", sink)
	prog := r.Resolve("/app/main.vx")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
	if _, ok := prog.Get("/app/mathlib/lib.vx"); !ok {
		t.Fatalf("expected mathlib's main entry to be resolved and registered")
	}
}

func TestDecodeManifestRejectsInvalidSemver(t *testing.T) {
	_, err := DecodeManifest(`{"name": "x", "version": "not-a-version", "main": "lib.vx"}`)
	if err == nil {
		t.Fatalf("expected a semver validation error")
	}
}

func TestDecodeManifestAcceptsValidSemver(t *testing.T) {
	m, err := DecodeManifest(`{"name": "x", "version": "1.0.0", "main": "lib.vx"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Main != "lib.vx" {
		t.Fatalf("got main %q, want lib.vx", m.Main)
	}
}

func TestNamedImportOfUnexportedNameRejected(t *testing.T) {
	fs := memFS{
		"/app/main.vx": `import { hidden } from "./util";
fn main() {}
`,
		"/app/util.vx": `export fn visible() {}
fn hidden() {}
`,
	}
	sink := diag.NewSink()
	New(fs, "", sink).Resolve("/app/main.vx")

	if !sink.HasErrors() {
		t.Fatalf("expected a re-export error for %q", "hidden")
	}
	found := false
	for _, d := range sink.All() {
		if d.Code == diag.ReExportNotFound {
			found = true
		}
	}
	if !found {
		t.Fatalf("want %s, got %v", diag.ReExportNotFound, sink.All())
	}
}

func TestNamedImportUsesExportAllFallback(t *testing.T) {
	// util.vx exports nothing explicitly, so every top-level name is
	// implicitly visible.
	fs := memFS{
		"/app/main.vx": `import { helper } from "./util";
fn main() {}
`,
		"/app/util.vx": `fn helper() {}
`,
	}
	sink := diag.NewSink()
	New(fs, "", sink).Resolve("/app/main.vx")

	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.All())
	}
}
