package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose   bool
	stdlibDir string
)

var rootCmd = &cobra.Command{
	Use:   "vexc",
	Short: "Vex compiler",
	Long: `vexc is the compiler for the Vex programming language.

Vex is a statically-typed, ahead-of-time-compiled systems language with:
  - Type inference, generics (monomorphized), union and conditional types
  - Contracts (statically dispatched interfaces) with operator overloading
  - Compile-time ownership, aliasing, and lifetime checking
  - No garbage collector and no exceptions

vexc runs the front end (lex, parse, resolve, type check, borrow check)
and lowers accepted programs to a portable IR for a native backend.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (per-pass timings)")
	rootCmd.PersistentFlags().StringVar(&stdlibDir, "stdlib", os.Getenv("VEX_STDLIB"), "standard-library root consulted for bare imports")
}
