// Package resolver implements C3: it expands a SourceFile's import
// directives into a fully populated source.Program, following the path
// resolution order of §4.3 and decoding package manifests per §6.5.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/mod/semver"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/internal/source"
	"github.com/vexlang/vexc/pkg/token"
)

// FileReader abstracts the filesystem so tests can resolve imports
// against an in-memory tree instead of touching disk.
type FileReader interface {
	ReadFile(path string) (string, error)
	Exists(path string) bool
}

// Resolver expands imports starting from an entry SourceFile, producing
// the dependency DAG described in §4.3. Cycles are tolerated: a module
// already registered (or currently being resolved) is never re-queued.
type Resolver struct {
	fs        FileReader
	stdlibDir string // the driver-supplied standard-library root (§4.3 rule 3)
	sink      *diag.Sink

	resolving map[string]bool // in-progress set, only used to short-circuit cycles
}

// New creates a Resolver reading files via fs and reporting into sink.
// stdlibDir is consulted last in the path-resolution order; it may be
// empty if the driver supplies no standard-library root.
func New(fs FileReader, stdlibDir string, sink *diag.Sink) *Resolver {
	return &Resolver{fs: fs, stdlibDir: stdlibDir, sink: sink, resolving: map[string]bool{}}
}

// Resolve parses entryPath and transitively expands every import it
// finds, returning the resulting Program. Never returns a non-nil error;
// failures are reported into the sink and affected modules are simply
// absent from the returned Program.
func (r *Resolver) Resolve(entryPath string) *source.Program {
	id := canonical(entryPath)
	prog := source.NewProgram(id)
	r.load(prog, id, entryPath)
	r.validateNamedImports(prog)
	return prog
}

// validateNamedImports checks every `import { a, b } from "path"` against
// the target module's visible surface once the whole program is loaded:
// a name that the source module neither exports explicitly nor exposes
// via the implicit export-all fallback is a ReExportError (§4.3, §3.2).
func (r *Resolver) validateNamedImports(prog *source.Program) {
	for _, id := range prog.Order() {
		m := prog.Modules[id]
		if m.Source == nil || m.Source.File == nil {
			continue
		}
		for _, imp := range m.Source.File.Imports {
			if len(imp.Names) == 0 {
				continue
			}
			target, ok := r.resolvePath(m.Source.Path, imp.Path)
			if !ok {
				continue // already reported as ImportNotFound
			}
			tm, ok := prog.Get(canonical(target))
			if !ok || tm.Source == nil || tm.Source.File == nil {
				continue
			}
			visible := visibleNames(tm.Source.File)
			names := make([]string, 0, len(imp.Names))
			for name := range imp.Names {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if !visible[name] {
					r.sink.Errorf(diag.ReExportNotFound, imp.Sp, "%q is not exported by module %q", name, imp.Path)
				}
			}
		}
	}
}

// visibleNames collects a file's externally visible top-level names: the
// explicitly exported set, or every declaration when the module never
// exports anything (§3.2's implicit export-all fallback).
func visibleNames(f *ast.File) map[string]bool {
	anyExported := false
	for _, d := range f.Decls {
		if d.IsExported() {
			anyExported = true
			break
		}
	}
	names := map[string]bool{}
	for _, d := range f.Decls {
		if !anyExported || d.IsExported() {
			names[d.DeclName()] = true
		}
	}
	return names
}

func (r *Resolver) load(prog *source.Program, id, path string) {
	if prog.Has(id) || r.resolving[id] {
		return
	}
	r.resolving[id] = true
	defer delete(r.resolving, id)

	text, err := r.fs.ReadFile(path)
	if err != nil {
		r.sink.Errorf(diag.ImportNotFound, token.Span{File: path}, "cannot read module %q: %v", path, err)
		return
	}

	sf := &source.SourceFile{Path: path, Text: text}
	sf.File = parser.ParseFile(path, text, r.sink)

	mod := &source.Module{Name: moduleName(path), Source: sf, ReExported: map[string]bool{}}
	prog.Add(id, mod)

	for _, imp := range sf.File.Imports {
		r.resolveImport(prog, path, imp, mod)
	}
}

func (r *Resolver) resolveImport(prog *source.Program, fromPath string, imp *ast.ImportDecl, mod *source.Module) {
	target, ok := r.resolvePath(fromPath, imp.Path)
	if !ok {
		r.sink.Errorf(diag.ImportNotFound, imp.Sp, "cannot resolve import %q", imp.Path)
		return
	}
	id := canonical(target)
	mod.Imports = append(mod.Imports, id)
	for name := range imp.Names {
		mod.ReExported[name] = true
	}
	r.load(prog, id, target)
}

// resolvePath implements §4.3's path-resolution order: relative, then a
// package root's manifest-declared main entry, then the stdlib root.
func (r *Resolver) resolvePath(fromPath, importPath string) (string, bool) {
	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		rel := filepath.Join(filepath.Dir(fromPath), importPath)
		if !strings.HasSuffix(rel, ".vx") {
			rel += ".vx"
		}
		if r.fs.Exists(rel) {
			return rel, true
		}
		return "", false
	}

	if pkgRoot, ok := r.findPackageRoot(filepath.Dir(fromPath), importPath); ok {
		return pkgRoot, true
	}

	if r.stdlibDir != "" {
		p := filepath.Join(r.stdlibDir, importPath+".vx")
		if r.fs.Exists(p) {
			return p, true
		}
	}
	return "", false
}

// findPackageRoot looks for a directory named importPath inside dir that
// contains a manifest file (§4.3 rule 2, §6.5); parent directories of dir
// are not searched.
func (r *Resolver) findPackageRoot(dir, importPath string) (string, bool) {
	candidate := filepath.Join(dir, importPath)
	manifestPath := filepath.Join(candidate, "vex.json")
	if !r.fs.Exists(manifestPath) {
		manifestPath = filepath.Join(candidate, "vex.yaml")
		if !r.fs.Exists(manifestPath) {
			return "", false
		}
	}
	text, err := r.fs.ReadFile(manifestPath)
	if err != nil {
		return "", false
	}
	m, err := DecodeManifest(text)
	if err != nil {
		r.sink.Errorf(diag.ImportNotFound, token.Span{File: manifestPath}, "malformed package manifest: %v", err)
		return "", false
	}
	main := filepath.Join(candidate, m.Main)
	if !r.fs.Exists(main) {
		return "", false
	}
	return main, true
}

// DecodeManifest decodes a package manifest (§6.5) and validates its
// "version" field against semver when present.
func DecodeManifest(text string) (source.Manifest, error) {
	var m source.Manifest
	if err := yaml.Unmarshal([]byte(text), &m); err != nil {
		return m, err
	}
	if m.Version != "" && !semver.IsValid("v"+strings.TrimPrefix(m.Version, "v")) {
		return m, &ManifestError{Field: "version", Value: m.Version}
	}
	return m, nil
}

// ManifestError reports a malformed package-manifest field.
type ManifestError struct {
	Field string
	Value string
}

func (e *ManifestError) Error() string {
	return "manifest field " + e.Field + " has invalid value " + e.Value
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func canonical(path string) string {
	return filepath.Clean(path)
}
