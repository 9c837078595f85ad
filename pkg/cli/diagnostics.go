package cli

import (
	"fmt"
	"io"
	"strings"

	qerrors "crystal-hq/crystal/pkg/query/errors"

	"github.com/fatih/color"
)

// DiagnosticPrinter writes query errors in a compiler-like layout:
//
//	queries.txt:3: error: unknown field "titel"
//	  | titel:go
//	  | ^^^^^^^^
//	  = suggestion: did you mean "title"?
type DiagnosticPrinter struct {
	w        io.Writer
	colorize bool

	errLabel  *color.Color
	caret     *color.Color
	highlight *color.Color
}

// NewDiagnosticPrinter creates a printer. Color is used only when
// colorize is set; callers decide based on the terminal and --no-color.
func NewDiagnosticPrinter(w io.Writer, colorize bool) *DiagnosticPrinter {
	p := &DiagnosticPrinter{
		w:         w,
		colorize:  colorize,
		errLabel:  color.New(color.FgRed, color.Bold),
		caret:     color.New(color.FgRed),
		highlight: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.errLabel, p.caret, p.highlight} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Print writes every error of one query. location prefixes each message
// ("file:line" or "arg 2") and may be empty.
func (p *DiagnosticPrinter) Print(location string, errs []qerrors.Error) error {
	for _, err := range errs {
		if err := p.print(location, err); err != nil {
			return err
		}
	}
	return nil
}

func (p *DiagnosticPrinter) print(location string, err qerrors.Error) error {
	var message, context, suggestion string
	switch e := err.(type) {
	case *qerrors.SyntaxError:
		message, context = e.Message(), e.Context
	case *qerrors.FieldError:
		message, context, suggestion = e.Message, e.Context, e.Suggestion
	default:
		message = err.Error()
	}

	var sb strings.Builder
	if location != "" {
		sb.WriteString(location)
		sb.WriteString(": ")
	}
	sb.WriteString(p.errLabel.Sprint("error"))
	sb.WriteString(": ")
	sb.WriteString(message)
	sb.WriteByte('\n')

	for _, line := range strings.SplitAfter(context, "\n") {
		if line == "" {
			continue
		}
		if strings.Contains(line, "^") {
			i := strings.IndexByte(line, '^')
			sb.WriteString(line[:i])
			sb.WriteString(p.caret.Sprint(strings.TrimRight(line[i:], "\n")))
			sb.WriteByte('\n')
			continue
		}
		sb.WriteString(line)
	}
	if suggestion != "" {
		sb.WriteString("  = suggestion: ")
		sb.WriteString(p.highlight.Sprint(suggestion))
		sb.WriteByte('\n')
	}

	_, werr := io.WriteString(p.w, sb.String())
	return werr
}

// Summary writes the closing line of a lint run.
func (p *DiagnosticPrinter) Summary(queries, invalid int) error {
	if invalid == 0 {
		_, err := fmt.Fprintf(p.w, "%d %s ok\n", queries, plural(queries, "query", "queries"))
		return err
	}
	_, err := fmt.Fprintf(p.w, "%d of %d %s invalid\n", invalid, queries, plural(queries, "query", "queries"))
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
