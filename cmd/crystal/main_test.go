package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const booksConfig = `
schema:
  default_field: title
  fields:
    title:
      description: the title
      ignore_case: true
      default_operator: ":"
    pages:
      type: number
      description: the page count
    tag:
      type: string_array
      description: the tags
      plural: true
      property: tags
telemetry:
  logging:
    level: error
`

const booksJSONL = `{"title": "The Go Programming Language", "pages": 380, "tags": ["go", "programming"]}
{"title": "Structure and Interpretation", "pages": 657, "tags": ["lisp"]}
{"title": "Go in Action", "pages": 264, "tags": ["go"]}
`

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func booksConfigFile(t *testing.T) string {
	t.Helper()
	return writeFile(t, "crystal.yaml", booksConfig)
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"completion", "describe", "fields", "filter", "lint", "parse", "serve", "version"}
	got := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("root command has no %q subcommand", name)
		}
	}
}

func TestSetup_BrokenConfig(t *testing.T) {
	path := writeFile(t, "crystal.yaml", "schema:\n  fields:\n    a:\n      type: date\n")
	_, _, err := execute(t, "describe", "a", "--config", path)
	if err == nil {
		t.Fatal("describe with invalid config error = nil")
	}
	if !strings.Contains(err.Error(), "config error") {
		t.Errorf("error = %v, want config error", err)
	}
}

func TestSetup_LogLevelOverride(t *testing.T) {
	_, stderr, err := execute(t, "describe", "pages>300", "--config", booksConfigFile(t), "--verbose", "--log-format", "text")
	if err != nil {
		t.Fatalf("describe error = %v", err)
	}
	if !strings.Contains(stderr, "configuration loaded") || !strings.Contains(stderr, "run_id=") {
		t.Errorf("stderr = %q, want debug log with run id", stderr)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s error = %v", shell, err)
			}
			if !strings.Contains(stdout, "crystal") {
				t.Errorf("completion %s output does not mention crystal", shell)
			}
		})
	}

	if _, _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh error = nil")
	}
}
