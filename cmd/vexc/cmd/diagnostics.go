package cmd

import (
	"fmt"
	"os"

	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/source"
)

// printDiagnostics renders every accumulated diagnostic to stderr with
// its source snippet. Module text comes from the resolved program when
// available, falling back to re-reading the file from disk.
func printDiagnostics(sink *diag.Sink, prog *source.Program) {
	for _, d := range sink.All() {
		fmt.Fprint(os.Stderr, d.Format(sourceTextFor(d.Primary.File, prog)))
	}
}

func sourceTextFor(path string, prog *source.Program) string {
	if prog != nil {
		for _, m := range prog.Modules {
			if m.Source != nil && m.Source.Path == path {
				return m.Source.Text
			}
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(b)
}
