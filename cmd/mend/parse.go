package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mend/internal/diag"
	"mend/internal/diagfmt"
	"mend/internal/driver"
	"mend/internal/lexer"
	"mend/internal/source"
)

var parseCmd = &cobra.Command{
	Use:    "parse [flags] <file>",
	Short:  "Print the syntax tree of a source file",
	Long:   `Parse a Java or JavaScript file and print its syntax tree. Diagnostics go to stderr.`,
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE:   runParse,
}

var tokensCmd = &cobra.Command{
	Use:    "tokens [flags] <file.java>",
	Short:  "Print the tokens of a Java source file",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE:   runTokens,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokensCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	opts, err := driverOptions(cmd)
	if err != nil {
		return err
	}
	a, err := driver.AnalyzeFile(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if err := printStderrDiagnostics(cmd, a.Diagnostics(), a.FileSet); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatASTPretty(os.Stdout, a.Tree, a.FileSet)
	case "json":
		return diagfmt.FormatASTJSON(os.Stdout, a.Tree)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func runTokens(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if !strings.HasSuffix(path, ".java") {
		return fmt.Errorf("%s: tokens are only available for Java sources", path)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return err
	}
	bag := diag.NewBag(maxDiagnostics)
	tokens := lexer.New(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}}).All()
	bag.Sort()
	if err := printStderrDiagnostics(cmd, bag.Items(), fs); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(os.Stdout, tokens, fs)
	case "json":
		return diagfmt.FormatTokensJSON(os.Stdout, tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// printStderrDiagnostics reports the diagnostics of a debug command on
// stderr so that stdout stays machine readable.
func printStderrDiagnostics(cmd *cobra.Command, ds []diag.Diagnostic, fs *source.FileSet) error {
	if len(ds) == 0 || quietFlag(cmd) {
		return nil
	}
	useColor, err := colorFor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	diagfmt.Pretty(os.Stderr, ds, fs, diagfmt.PrettyOpts{Color: useColor, Context: 2})
	return nil
}
