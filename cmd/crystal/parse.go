package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"crystal-hq/crystal/pkg/cli"
	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/engine"
	"crystal-hq/crystal/pkg/query/ast"
	qerrors "crystal-hq/crystal/pkg/query/errors"
	"crystal-hq/crystal/pkg/query/parser"
)

var parseFlags struct {
	format   string
	cst      bool
	noRepair bool
}

var parseCmd = &cobra.Command{
	Use:   "parse <query>",
	Short: "Parse a query and print its syntax tree",
	Long: `Parse a query against the configured schema and print the reduced syntax
tree and its description.

With --cst the concrete syntax tree is printed instead. It keeps groups,
incomplete operators and the exact source spans, and is not checked against
the schema.

Examples:
  # Print the syntax tree
  crystal parse 'title:dune or pages>300'

  # Print the concrete syntax tree
  crystal parse --cst '(a and'

  # Report unbalanced delimiters instead of repairing them
  crystal parse --no-repair '(a b'

  # JSON output
  crystal parse 'tag:(scifi or fantasy)' --format json`,
	Args: cobra.ExactArgs(1),
	RunE: parseQuery,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFlags.format, "format", "f", "text", "output format: text, json, yaml")
	parseCmd.Flags().BoolVar(&parseFlags.cst, "cst", false, "print the concrete syntax tree")
	parseCmd.Flags().BoolVar(&parseFlags.noRepair, "no-repair", false, "do not repair unbalanced parentheses and quotes")
}

// parseResult is the output of the parse command.
type parseResult struct {
	Status      string           `json:"status" yaml:"status"`
	Query       string           `json:"query" yaml:"query"`
	Errors      []qerrors.Report `json:"errors,omitempty" yaml:"errors,omitempty"`
	Repaired    string           `json:"repaired,omitempty" yaml:"repaired,omitempty"`
	Tree        *ast.Tree        `json:"ast,omitempty" yaml:"ast,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`

	node ast.Node
}

func (r *parseResult) Text() string {
	var sb strings.Builder
	sb.WriteString(ast.Format(r.node))
	sb.WriteByte('\n')
	if r.Repaired != "" {
		fmt.Fprintf(&sb, "repaired: %s\n", r.Repaired)
	}
	if r.Description != "" {
		fmt.Fprintf(&sb, "description: %s\n", r.Description)
	}
	return sb.String()
}

func parseQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(parseFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatJSONL {
		return fmt.Errorf("parse does not support %s output", format)
	}

	schemaCfg := state.cfg.Schema
	if parseFlags.noRepair {
		schemaCfg.DisableRepair = true
	}

	input := args[0]
	var (
		result *parseResult
		errs   []qerrors.Error
	)
	if parseFlags.cst {
		result, errs = parseConcrete(&schemaCfg, input)
	} else {
		eng, err := newEngine(&schemaCfg)
		if err != nil {
			return err
		}
		res := eng.Parse(cmd.Context(), input)
		errs = res.Errors
		result = &parseResult{
			Status: engine.Status(res),
			Query:  input,
			Errors: qerrors.Reports(res.Errors),
		}
		if res.Status {
			result.node = res.AST
			result.Tree = ast.ToTree(res.AST)
			result.Description = res.Operations.Describe()
		}
	}

	if len(errs) > 0 && format == cli.FormatText {
		printer := cli.NewDiagnosticPrinter(cmd.ErrOrStderr(), colorEnabled(cmd.ErrOrStderr()))
		if err := printer.Print("", errs); err != nil {
			return err
		}
	}
	if result.Status == engine.StatusSuccess || format != cli.FormatText {
		if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	}
	if result.Status != engine.StatusSuccess {
		return cli.NewExitError(cli.ExitInvalid, nil)
	}
	return nil
}

// parseConcrete parses input without resolving fields.
func parseConcrete(schemaCfg *config.SchemaConfig, input string) (*parseResult, []qerrors.Error) {
	maxDepth := schemaCfg.MaxDepth
	if maxDepth == 0 {
		maxDepth = config.DefaultMaxDepth
	}
	maxOperators := schemaCfg.MaxOperators
	if maxOperators == 0 {
		maxOperators = config.DefaultMaxOperators
	}
	p := parser.New(
		parser.WithRepair(!schemaCfg.DisableRepair),
		parser.WithMaxDepth(maxDepth),
		parser.WithMaxOperators(maxOperators),
	)

	result := &parseResult{Query: input}
	tree, err := p.Parse(input)
	if err != nil {
		var syntaxErr *qerrors.SyntaxError
		if !errors.As(err, &syntaxErr) {
			syntaxErr = &qerrors.SyntaxError{Subtype: qerrors.SubtypeUnknown}
		}
		errs := []qerrors.Error{syntaxErr}
		result.Status = engine.StatusSyntaxError
		result.Errors = qerrors.Reports(errs)
		return result, errs
	}

	result.Status = engine.StatusSuccess
	result.node = tree.Root
	result.Tree = ast.ToTree(tree.Root)
	if balanced := tree.Repair.Balanced(); balanced != input {
		result.Repaired = balanced
	}
	return result, nil
}
