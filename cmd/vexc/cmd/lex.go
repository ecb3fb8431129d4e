package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/pkg/token"
)

var (
	evalExpr   string
	showPos    bool
	showKind   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Vex file or expression",
	Long: `Tokenize (lex) a Vex program and print the resulting tokens.

This command is useful for debugging the lexer and understanding how
Vex source code is tokenized.

Examples:
  # Tokenize a source file
  vexc lex main.vx

  # Tokenize an inline expression
  vexc lex -e "let x = 42;"

  # Show token kinds and positions
  vexc lex --show-kind --show-pos main.vx

  # Show only lex errors
  vexc lex --only-errors main.vx`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexSource,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show token kind names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only lex errors")
}

func lexSource(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	tokens, errs := lexer.Tokenize(filename, input)

	if !onlyErrors {
		for _, tok := range tokens {
			if tok.Kind == token.EOF {
				break
			}
			line := tok.Literal
			if showKind {
				line = fmt.Sprintf("%-14s %s", tok.Kind, line)
			}
			if showPos {
				line = fmt.Sprintf("%s\t%s", tok.Span.Start, line)
			}
			fmt.Println(line)
		}
	}
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s\n", e.Error())
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
	return nil
}

func readInput(args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
}
