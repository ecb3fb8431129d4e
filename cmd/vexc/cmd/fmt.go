package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/parser"
	"github.com/vexlang/vexc/pkg/printer"
)

var (
	fmtWrite bool // -w: write result back to the source file
	fmtList  bool // -l: list files whose formatting differs
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format Vex source files",
	Long: `Format Vex source files using the AST-driven formatter.

The formatter parses each file and pretty-prints it back to canonical
source form. Formatting an already-formatted file changes nothing.

Examples:
  # Format a single file to stdout
  vexc fmt main.vx

  # Overwrite files with their formatted version
  vexc fmt -w main.vx util.vx

  # List files that need formatting
  vexc fmt -l src/*.vx`,
	Args: cobra.MinimumNArgs(1),
	RunE: fmtSource,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to (source) file instead of stdout")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list files whose formatting differs")
}

func fmtSource(cmd *cobra.Command, args []string) error {
	failed := false
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		sink := diag.NewSink()
		file := parser.ParseFile(path, string(content), sink)
		if sink.HasErrors() {
			for _, d := range sink.All() {
				fmt.Fprint(os.Stderr, d.Format(string(content)))
			}
			failed = true
			continue
		}
		formatted := printer.Format(file)
		switch {
		case fmtList:
			if formatted != string(content) {
				fmt.Println(path)
			}
		case fmtWrite:
			if formatted != string(content) {
				if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
			}
		default:
			fmt.Print(formatted)
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}
