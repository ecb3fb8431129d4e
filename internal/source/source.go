// Package source models the compilation-unit hierarchy of §3.1:
// SourceFile -> Module -> Package -> Program. It carries no resolution
// logic of its own; internal/resolver populates a Program by driving the
// lexer and parser over each reachable SourceFile.
package source

import (
	"sort"

	"github.com/vexlang/vexc/internal/ast"
)

// SourceFile is identified by its absolute filesystem path and carries
// its raw text and parsed declarations (§3.1).
type SourceFile struct {
	Path string
	Text string
	File *ast.File // nil until parsed
}

// Module corresponds 1:1 to a SourceFile; its name is derived from the
// file's basename without extension (§3.1).
type Module struct {
	Name       string
	Source     *SourceFile
	Imports    []string // resolved module identifiers this module depends on
	ReExported map[string]bool
}

// Manifest is the decoded form of a package manifest file (§6.5).
type Manifest struct {
	Name    string `yaml:"name"`
	Main    string `yaml:"main"`
	Version string `yaml:"version,omitempty"`
}

// Package is an optional container grouping files under a manifest with a
// `main` entry (§3.1, §6.5).
type Package struct {
	Root     string // directory containing the manifest
	Manifest Manifest
}

// Program is the transitive closure of modules reachable from the entry
// file, keyed by module identifier (§3.1). Module identifiers are the
// resolved import path used to reach that module, canonicalized by
// internal/resolver so the same file is never loaded twice under two
// different spellings.
type Program struct {
	Entry   string
	Modules map[string]*Module
}

// NewProgram creates an empty Program rooted at entry.
func NewProgram(entry string) *Program {
	return &Program{Entry: entry, Modules: map[string]*Module{}}
}

// Get returns the module registered under id, if any.
func (p *Program) Get(id string) (*Module, bool) {
	m, ok := p.Modules[id]
	return m, ok
}

// Add registers m under id. Re-registering the same id is a no-op so
// callers can tolerate import cycles without clobbering work already in
// flight (§4.3 "cycles are permitted").
func (p *Program) Add(id string, m *Module) {
	if _, exists := p.Modules[id]; exists {
		return
	}
	p.Modules[id] = m
}

// Has reports whether id has already been registered, used by the
// resolver to decide whether a module still needs to be parsed.
func (p *Program) Has(id string) bool {
	_, ok := p.Modules[id]
	return ok
}

// Order returns module identifiers in a stable, deterministic order
// (lexical by id) so downstream passes that merge per-module results
// never depend on map iteration order.
func (p *Program) Order() []string {
	ids := make([]string, 0, len(p.Modules))
	for id := range p.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
