package parser

import "strings"

// Delimiters describes the parentheses and quotation an input leaves
// unbalanced.
type Delimiters struct {
	// Left counts closing parentheses with nothing to close.
	Left int
	// Right counts opening parentheses that are never closed.
	Right int
	// Escape is true when the input ends right after a backslash in a string.
	Escape bool
	// Quote is true when the input ends inside a quoted string.
	Quote bool
}

// Balanced reports whether no repair is needed.
func (d Delimiters) Balanced() bool {
	return d == Delimiters{}
}

type scanState int

const (
	stateDefault scanState = iota
	stateString
	stateEscape
)

// Missing scans input once and reports which delimiters are unbalanced.
// Parentheses inside quoted strings are not counted.
func Missing(input string) Delimiters {
	var d Delimiters
	state := stateDefault
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch state {
		case stateDefault:
			switch c {
			case '"':
				state = stateString
			case '(':
				d.Right++
			case ')':
				if d.Right > 0 {
					d.Right--
				} else {
					d.Left++
				}
			}
		case stateString:
			switch c {
			case '"':
				state = stateDefault
			case '\\':
				state = stateEscape
			}
		case stateEscape:
			state = stateString
		}
	}
	d.Escape = state == stateEscape
	d.Quote = state == stateString || state == stateEscape
	return d
}

// Repaired is an input together with the synthetic text that balances it.
type Repaired struct {
	Prefix string
	Input  string
	Suffix string
}

// Balanced returns Prefix + Input + Suffix.
func (r Repaired) Balanced() string {
	return r.Prefix + r.Input + r.Suffix
}

// Repair balances input according to d.
func (d Delimiters) Repair(input string) Repaired {
	var suffix strings.Builder
	if d.Escape {
		suffix.WriteByte('\\')
	}
	if d.Quote {
		suffix.WriteByte('"')
	}
	suffix.WriteString(strings.Repeat(")", d.Right))
	return Repaired{
		Prefix: strings.Repeat("(", d.Left),
		Input:  input,
		Suffix: suffix.String(),
	}
}

// Repair balances the parentheses and quotation of input so that it can
// always be parsed. Repairing an already balanced string is a no-op.
func Repair(input string) Repaired {
	return Missing(input).Repair(input)
}
