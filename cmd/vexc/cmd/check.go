package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Run the front end without generating code",
	Long: `Run the full front end (lex, parse, import resolution, name and type
resolution, type checking, borrow checking) on each entry file without
lowering to IR.

Multiple entry files are checked concurrently, one worker per file, and
their diagnostics are reported in argument order.

Examples:
  # Check a single program
  vexc check main.vx

  # Check several independent programs in parallel
  vexc check a.vx b.vx c.vx`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkSource,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkSource(cmd *cobra.Command, args []string) error {
	d := driver.New(driver.Options{StdlibDir: stdlibDir, Verbose: verbose})

	if len(args) == 1 {
		res := d.Check(args[0])
		printDiagnostics(res.Sink, res.Program)
		if code := res.Sink.ExitCode(); code != 0 {
			os.Exit(code)
		}
		fmt.Println("ok")
		return nil
	}

	res := d.CheckMany(args)
	printDiagnostics(res.Sink, nil)
	if code := res.Sink.ExitCode(); code != 0 {
		os.Exit(code)
	}
	fmt.Println("ok")
	return nil
}
