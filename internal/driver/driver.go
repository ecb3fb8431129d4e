// Package driver orchestrates the compilation pipeline: module
// resolution, semantic analysis, borrow checking, monomorphization, and
// lowering, with cancellation checked between passes and per-file
// front-end work fanned out across workers whose results merge in a
// deterministic order.
package driver

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vexlang/vexc/internal/borrow"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/ir"
	"github.com/vexlang/vexc/internal/mono"
	"github.com/vexlang/vexc/internal/resolver"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/source"
)

// osFS reads files from the real filesystem. Tests substitute an
// in-memory resolver.FileReader instead.
type osFS struct{}

func (osFS) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func (osFS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Options configures a Driver.
type Options struct {
	// StdlibDir is the standard-library root consulted last during
	// import resolution. Empty means no stdlib root is available.
	StdlibDir string
	// Verbose enables per-pass timing lines on Log.
	Verbose bool
	// Log receives timing output. Defaults to os.Stderr.
	Log io.Writer
	// FS overrides the filesystem, for tests. Defaults to the real one.
	FS resolver.FileReader
}

// Result carries the artifacts of a pipeline run. Later artifacts are nil
// when an earlier pass reported errors or the run was cancelled.
type Result struct {
	Program   *source.Program
	Sema      *sema.Context
	Mono      *mono.Result
	IR        *ir.Module
	Sink      *diag.Sink
	Cancelled bool
}

// Driver runs the compilation pipeline. One Driver may be reused across
// runs; Cancel affects every run sharing it.
type Driver struct {
	opts   Options
	cancel atomic.Bool
}

// New creates a Driver with the given options, filling in defaults.
func New(opts Options) *Driver {
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	if opts.FS == nil {
		opts.FS = osFS{}
	}
	return &Driver{opts: opts}
}

// Cancel requests that the current run stop at the next pass boundary.
// Partial work is discarded; the Result reports Cancelled.
func (d *Driver) Cancel() { d.cancel.Store(true) }

func (d *Driver) cancelled() bool { return d.cancel.Load() }

func (d *Driver) logf(format string, args ...any) {
	if d.opts.Verbose {
		fmt.Fprintf(d.opts.Log, format+"\n", args...)
	}
}

func (d *Driver) timed(name string, f func()) {
	start := time.Now()
	f()
	d.logf("pass %-10s %v", name, time.Since(start).Round(time.Microsecond))
}

// Compile runs the full pipeline on entryPath, stopping at the first
// pass that reports errors and checking the cancellation flag between
// passes. On success Result.IR holds the lowered module.
func (d *Driver) Compile(entryPath string) *Result {
	res := d.front(entryPath)
	if res.Cancelled || res.Sink.HasErrors() {
		return res
	}

	d.timed("mono", func() { res.Mono = mono.Run(res.Sema, res.Sink) })
	if d.cancelled() {
		return &Result{Sink: diag.NewSink(), Cancelled: true}
	}
	if res.Sink.HasErrors() {
		return res
	}

	d.timed("lower", func() { res.IR = ir.Lower(res.Sema, res.Mono, res.Sink) })
	return res
}

// Check runs the front end only (lex through borrow check), the surface
// behind "vexc check": validation without codegen.
func (d *Driver) Check(entryPath string) *Result {
	return d.front(entryPath)
}

func (d *Driver) front(entryPath string) *Result {
	res := &Result{Sink: diag.NewSink()}

	d.timed("resolve", func() {
		r := resolver.New(d.opts.FS, d.opts.StdlibDir, res.Sink)
		res.Program = r.Resolve(entryPath)
	})
	if d.cancelled() {
		return &Result{Sink: diag.NewSink(), Cancelled: true}
	}
	if res.Sink.HasErrors() {
		return res
	}

	d.timed("sema", func() { res.Sema = sema.Run(res.Program, res.Sink) })
	if d.cancelled() {
		return &Result{Sink: diag.NewSink(), Cancelled: true}
	}
	if res.Sink.HasErrors() {
		return res
	}

	d.timed("borrow", func() { borrow.Run(res.Sema, res.Sink) })
	if d.cancelled() {
		return &Result{Sink: diag.NewSink(), Cancelled: true}
	}
	return res
}

// CheckMany front-end-checks several independent entry files
// concurrently, one worker per file, each writing into its own Sink.
// The per-file sinks merge into the combined Result in argument order,
// never completion order, so output is stable across runs.
func (d *Driver) CheckMany(paths []string) *Result {
	combined := &Result{Sink: diag.NewSink()}
	sinks := make([]*diag.Sink, len(paths))
	cancelled := make([]bool, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			worker := New(Options{
				StdlibDir: d.opts.StdlibDir,
				Verbose:   false,
				Log:       io.Discard,
				FS:        d.opts.FS,
			})
			worker.cancel.Store(d.cancelled())
			r := worker.front(path)
			sinks[i] = r.Sink
			cancelled[i] = r.Cancelled
		}(i, path)
	}
	wg.Wait()

	for i, s := range sinks {
		if cancelled[i] {
			combined.Cancelled = true
			continue
		}
		combined.Sink.Merge(s)
	}
	if combined.Cancelled {
		return &Result{Sink: diag.NewSink(), Cancelled: true}
	}
	return combined
}
