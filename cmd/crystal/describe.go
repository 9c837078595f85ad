package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"crystal-hq/crystal/pkg/cli"
	"crystal-hq/crystal/pkg/engine"
)

var describeFlags struct {
	format string
}

var fieldsFlags struct {
	format string
}

var describeCmd = &cobra.Command{
	Use:   "describe <query>",
	Short: "Describe a query in plain words",
	Long: `Describe a query in plain words using the field descriptions of the
configured schema.

Examples:
  crystal describe 'pages>300 not tag:scifi'
  # the page count is greater than 300 and the tag is not scifi`,
	Args: cobra.ExactArgs(1),
	RunE: describeQuery,
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields of the configured schema",
	Long: `List the declared fields of the configured schema with their types,
record properties and operators.

Without declared fields every field name is accepted and the list is empty.`,
	Args: cobra.NoArgs,
	RunE: listFields,
}

func init() {
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(fieldsCmd)

	describeCmd.Flags().StringVarP(&describeFlags.format, "format", "f", "text", "output format: text, json, yaml")
	fieldsCmd.Flags().StringVarP(&fieldsFlags.format, "format", "f", "text", "output format: text, json, yaml")
}

type describeResult struct {
	Query       string `json:"query" yaml:"query"`
	Description string `json:"description" yaml:"description"`
}

func (r describeResult) Text() string {
	return r.Description
}

func describeQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(describeFlags.format)
	if err != nil {
		return err
	}

	eng, err := newEngine(&state.cfg.Schema)
	if err != nil {
		return err
	}

	res := eng.Parse(cmd.Context(), args[0])
	if !res.Status {
		printer := cli.NewDiagnosticPrinter(cmd.ErrOrStderr(), colorEnabled(cmd.ErrOrStderr()))
		if err := printer.Print("", res.Errors); err != nil {
			return err
		}
		return cli.NewExitError(cli.ExitInvalid, nil)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), describeResult{
		Query:       args[0],
		Description: res.Operations.Describe(),
	})
}

type fieldList struct {
	Generic bool               `json:"generic" yaml:"generic"`
	Fields  []engine.FieldInfo `json:"fields" yaml:"fields"`
}

func (l fieldList) Text() string {
	if l.Generic {
		return "no fields declared: any field name is accepted\n"
	}
	var sb strings.Builder
	for _, f := range l.Fields {
		name := f.Name
		if f.Default {
			name += " (default)"
		}
		fmt.Fprintf(&sb, "%-24s %-13s %-16s %s\n", name, f.Type, f.Property, strings.Join(f.Operators, " "))
	}
	return sb.String()
}

func listFields(cmd *cobra.Command, _ []string) error {
	format, err := cli.ParseFormat(fieldsFlags.format)
	if err != nil {
		return err
	}

	list := fieldList{Fields: engine.DescribeFields(&state.cfg.Schema)}
	list.Generic = len(list.Fields) == 0
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), list)
}
