/*
Package cli provides helpers shared by the crystal commands.

Output formatting renders command results as text, JSON, JSON Lines or YAML:

	formatter := cli.NewFormatter(cli.FormatYAML)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Diagnostics print rejected queries with a caret under the offending text
and the "did you mean" suggestion when there is one:

	printer := cli.NewDiagnosticPrinter(os.Stdout, isTerminal)
	printer.Print("queries.txt:3", result.Errors)

Progress reporting counts records while filtering large inputs, and
SetupSignalHandler turns SIGINT/SIGTERM into context cancellation.

Commands return *ExitError to choose the process exit status; ExitCode maps
any returned error to one.
*/
package cli
