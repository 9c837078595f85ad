package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valyala/fastjson"

	"crystal-hq/crystal/pkg/cli"
	"crystal-hq/crystal/pkg/records"
)

var filterFlags struct {
	input       string
	inputFormat string
	db          string
	driver      string
	table       string
	limit       int
	count       bool
	progress    bool
	format      string
}

var filterCmd = &cobra.Command{
	Use:   "filter <query>",
	Short: "Print the records a query matches",
	Long: `Filter records with a query and print the matches in source order.

Records are read from --input (a .jsonl, .ndjson, .json, .yaml or .yml file,
optionally compressed with .gz or .zst, or "-" for standard input), from a
SQLite table with --db and --table, or from the records section of the
configuration. Without any of these, newline-delimited JSON is read from
standard input.

An empty query matches every record.

Examples:
  # Filter a JSON lines file
  crystal filter 'pages>300' --input books.jsonl

  # Filter a compressed export, printing at most 10 matches
  crystal filter 'tag:scifi' --input books.jsonl.zst --limit 10

  # Filter a SQLite table with the cgo driver
  crystal filter 'price<10' --db books.db --table books --driver sqlite3

  # Count matches from standard input
  cat books.jsonl | crystal filter 'not tag:fantasy' --count`,
	Args: cobra.ExactArgs(1),
	RunE: filterRecords,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().StringVarP(&filterFlags.input, "input", "i", "", `records file, or "-" for standard input`)
	filterCmd.Flags().StringVar(&filterFlags.inputFormat, "input-format", "auto", "input format: auto, jsonl, json, yaml, sqlite")
	filterCmd.Flags().StringVar(&filterFlags.db, "db", "", "SQLite database file")
	filterCmd.Flags().StringVar(&filterFlags.driver, "driver", "", "SQLite driver: sqlite (pure Go), sqlite3 (cgo)")
	filterCmd.Flags().StringVarP(&filterFlags.table, "table", "t", "", "SQLite table to read")
	filterCmd.Flags().IntVarP(&filterFlags.limit, "limit", "n", 0, "print at most this many matches (0 for all)")
	filterCmd.Flags().BoolVar(&filterFlags.count, "count", false, "print the number of matches only")
	filterCmd.Flags().BoolVar(&filterFlags.progress, "progress", false, "report scanned records on standard error")
	filterCmd.Flags().StringVarP(&filterFlags.format, "format", "f", "jsonl", "output format: jsonl, json, yaml (text with --count)")
}

type filterCount struct {
	Scanned int `json:"scanned" yaml:"scanned"`
	Matched int `json:"matched" yaml:"matched"`
}

func (c filterCount) Text() string {
	return fmt.Sprintf("%d", c.Matched)
}

func filterRecords(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(filterFlags.format)
	if err != nil {
		return err
	}
	switch {
	case filterFlags.count && !cmd.Flags().Changed("format"):
		format = cli.FormatText
	case format == cli.FormatText && !filterFlags.count:
		format = cli.FormatJSONL
	}
	if filterFlags.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	eng, err := newEngine(&state.cfg.Schema)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res := eng.Parse(ctx, args[0])
	if !res.Status {
		printer := cli.NewDiagnosticPrinter(cmd.ErrOrStderr(), colorEnabled(cmd.ErrOrStderr()))
		if err := printer.Print("", res.Errors); err != nil {
			return err
		}
		return cli.NewExitError(cli.ExitInvalid, nil)
	}

	src, err := openFilterSource()
	if err != nil {
		return err
	}
	defer src.Close()

	var progress *cli.SimpleProgress
	if filterFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		progress.Start(0)
		src = &progressSource{Source: src, progress: progress}
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	var (
		collected []any
		printed   int
	)
	var emit func(records.Record) error
	if !filterFlags.count {
		emit = func(r records.Record) error {
			if format == cli.FormatJSONL {
				if err := writeRecordLine(out, r); err != nil {
					return err
				}
			} else {
				collected = append(collected, records.Native(r))
			}
			printed++
			if filterFlags.limit > 0 && printed >= filterFlags.limit {
				return records.ErrStop
			}
			return nil
		}
	}

	stats, err := eng.Run(ctx, res, src, emit)
	if progress != nil {
		if err != nil {
			progress.Error(err)
		} else {
			progress.Finish()
		}
	}
	if err != nil {
		return err
	}

	state.logger.DebugContext(ctx, "filter finished",
		"source", src.Kind(),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"duration_ms", stats.Duration.Milliseconds(),
	)

	switch {
	case filterFlags.count:
		return cli.NewFormatter(format).FormatTo(out, filterCount{Scanned: stats.Scanned, Matched: stats.Matched})
	case format == cli.FormatJSONL:
		return nil
	case collected == nil:
		collected = []any{}
	}
	return cli.NewFormatter(format).FormatTo(out, collected)
}

// openFilterSource opens the source named by the flags, falling back to the
// configured records and then to standard input.
func openFilterSource() (records.Source, error) {
	rc := state.cfg.Records
	opts := records.Options{
		Format: rc.Format,
		Driver: rc.Driver,
		Table:  rc.Table,
		Limit:  rc.Limit,
	}
	path := rc.Path

	switch {
	case filterFlags.db != "":
		path = filterFlags.db
		opts.Format = records.KindSQLite
	case filterFlags.input != "":
		path = filterFlags.input
	case path == "":
		path = "-"
	}
	if filterFlags.inputFormat != "auto" && filterFlags.db == "" {
		opts.Format = filterFlags.inputFormat
	}
	if filterFlags.driver != "" {
		opts.Driver = filterFlags.driver
	}
	if filterFlags.table != "" {
		opts.Table = filterFlags.table
	}

	src, err := records.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	return src, nil
}

// writeRecordLine writes r as one line of compact JSON.
func writeRecordLine(w *bufio.Writer, r records.Record) error {
	if v, ok := r.(*fastjson.Value); ok {
		buf := v.MarshalTo(w.AvailableBuffer())
		if _, err := w.Write(buf); err != nil {
			return err
		}
		return w.WriteByte('\n')
	}

	data, err := json.Marshal(records.Native(r))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// progressSource reports every scanned record.
type progressSource struct {
	records.Source
	progress *cli.SimpleProgress
	scanned  int64
}

func (s *progressSource) Each(ctx context.Context, fn func(records.Record) error) error {
	return s.Source.Each(ctx, func(r records.Record) error {
		s.scanned++
		s.progress.Update(s.scanned)
		return fn(r)
	})
}
