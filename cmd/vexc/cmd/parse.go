package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/pkg/printer"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Vex file and print its syntax tree",
	Long: `Parse a Vex program and print the reformatted source rendered from
the resulting syntax tree. Parse errors are reported with source
snippets; the parser recovers at statement boundaries and keeps going,
so one run reports as many independent errors as it can isolate.

Examples:
  # Parse a source file
  vexc parse main.vx

  # Parse an inline snippet
  vexc parse -e "fn main(): i32 { return 0; }"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseSource,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func parseSource(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	sink := diag.NewSink()
	file := parser.ParseFile(filename, input, sink)

	for _, d := range sink.All() {
		fmt.Fprint(os.Stderr, d.Format(input))
	}
	if sink.HasErrors() {
		os.Exit(sink.ExitCode())
	}

	fmt.Print(printer.Format(file))
	return nil
}
