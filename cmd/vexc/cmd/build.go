package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/driver"
	"github.com/vexlang/vexc/internal/ir"
)

var (
	emitFormat string
	outputPath string
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a Vex program to portable IR",
	Long: `Compile a Vex program through the whole pipeline: front end, borrow
checking, monomorphization, and lowering to the portable IR a native
backend consumes.

Examples:
  # Compile and print the IR
  vexc build main.vx

  # Write the IR to a file
  vexc build -o main.ir main.vx`,
	Args: cobra.ExactArgs(1),
	RunE: buildSource,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&emitFormat, "emit", "ir", "output format (only \"ir\" is supported)")
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to file instead of stdout")
}

func buildSource(cmd *cobra.Command, args []string) error {
	if emitFormat != "ir" {
		return fmt.Errorf("unsupported --emit format %q (the native backend is external; only \"ir\" is emitted here)", emitFormat)
	}

	d := driver.New(driver.Options{StdlibDir: stdlibDir, Verbose: verbose})
	res := d.Compile(args[0])

	printDiagnostics(res.Sink, res.Program)
	if code := res.Sink.ExitCode(); code != 0 {
		os.Exit(code)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		defer f.Close()
		out = f
	}
	ir.NewPrinter(out).Print(res.IR)
	return nil
}
