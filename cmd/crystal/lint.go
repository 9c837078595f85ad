package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"crystal-hq/crystal/pkg/cli"
	"crystal-hq/crystal/pkg/engine"
	qerrors "crystal-hq/crystal/pkg/query/errors"
)

var lintFlags struct {
	file   string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint [query...]",
	Short: "Validate queries against the schema",
	Long: `Validate queries for syntax and field errors.

Queries are taken from the arguments, or read from --file with one query per
line. Blank lines and lines starting with '#' are skipped. Every error is
reported with its location, a caret diagnostic and a suggestion when a close
field name or operator exists.

The command exits with status 2 when any query is invalid.

Examples:
  # Lint queries given as arguments
  crystal lint 'title:dune' 'paegs>300'

  # Lint a file of saved searches
  crystal lint --file queries.txt

  # JSON output for CI
  crystal lint --file queries.txt --format json`,
	RunE: lintQueries,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.file, "file", "", `file with one query per line, or "-" for standard input`)
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format: text, json, yaml")
}

// lintQuery is one query to check with where it came from.
type lintQuery struct {
	location string
	query    string
}

// lintResult is the outcome for one query in json and yaml output.
type lintResult struct {
	Location string           `json:"location" yaml:"location"`
	Query    string           `json:"query" yaml:"query"`
	Status   string           `json:"status" yaml:"status"`
	Errors   []qerrors.Report `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type lintSummary struct {
	Queries int          `json:"queries" yaml:"queries"`
	Invalid int          `json:"invalid" yaml:"invalid"`
	Results []lintResult `json:"results" yaml:"results"`
}

func lintQueries(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatJSONL {
		return fmt.Errorf("lint does not support %s output", format)
	}

	queries, err := collectLintQueries(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries to lint: pass queries as arguments or use --file")
	}

	// A query is linted as written: pruning would hide its errors.
	schemaCfg := state.cfg.Schema
	schemaCfg.IgnoreInvalid = false
	eng, err := newEngine(&schemaCfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	printer := cli.NewDiagnosticPrinter(cmd.OutOrStdout(), colorEnabled(cmd.OutOrStdout()))
	summary := lintSummary{Queries: len(queries), Results: make([]lintResult, 0, len(queries))}

	for _, q := range queries {
		res := eng.Parse(ctx, q.query)
		if len(res.Errors) > 0 {
			summary.Invalid++
		}
		if format == cli.FormatText {
			if err := printer.Print(q.location, res.Errors); err != nil {
				return err
			}
			continue
		}
		summary.Results = append(summary.Results, lintResult{
			Location: q.location,
			Query:    q.query,
			Status:   engine.Status(res),
			Errors:   qerrors.Reports(res.Errors),
		})
	}

	if format == cli.FormatText {
		err = printer.Summary(summary.Queries, summary.Invalid)
	} else {
		err = cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		return err
	}

	state.logger.DebugContext(ctx, "lint finished", "queries", summary.Queries, "invalid", summary.Invalid)
	if summary.Invalid > 0 {
		return cli.NewExitError(cli.ExitInvalid, nil)
	}
	return nil
}

// collectLintQueries gathers the queries from args and --file.
func collectLintQueries(stdin io.Reader, args []string) ([]lintQuery, error) {
	var queries []lintQuery
	for i, arg := range args {
		queries = append(queries, lintQuery{location: fmt.Sprintf("arg %d", i+1), query: arg})
	}
	if lintFlags.file == "" {
		return queries, nil
	}

	name := lintFlags.file
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open query file: %w", err)
		}
		defer f.Close()
		r = f
	} else {
		name = "<stdin>"
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if trimmed := strings.TrimSpace(text); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		queries = append(queries, lintQuery{location: fmt.Sprintf("%s:%d", name, line), query: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return queries, nil
}
