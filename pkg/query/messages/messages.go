// Package messages holds the English templates used to describe queries and
// to report rejected terms.
package messages

import "fmt"

// Field describes one comparison for the field templates.
type Field struct {
	Name    string // Display name, e.g. "the title"
	Plural  bool   // Conjugate verbs for a plural name
	Value   string // Already formatted value, e.g. `"go"` or "4.5"
	Negated bool
}

// FieldGeneric renders a comparison on an undeclared field.
func FieldGeneric(name, operator, value string, negated bool) string {
	return fmt.Sprintf(`%s%s%s"%s"`, not(negated), name, operator, value)
}

// Conjunction joins two descriptions with "and".
func Conjunction(left, right string) string {
	return left + " and " + right
}

// Disjunction joins two descriptions with "or".
func Disjunction(left, right string) string {
	return left + " or " + right
}

// Parenthetical wraps a description in parentheses.
func Parenthetical(expression string, negated bool) string {
	return fmt.Sprintf("%s(%s)", not(negated), expression)
}

func FieldContains(f Field) string {
	return fmt.Sprintf("%s %s %s", f.Name, verb(f, "contains", "contain", "does not contain", "do not contain"), f.Value)
}

func FieldEquals(f Field) string {
	return fmt.Sprintf("%s %s %s", f.Name, verb(f, "equals", "equal", "does not equal", "do not equal"), f.Value)
}

func FieldGreaterThan(f Field) string    { return fieldSimple(f, "greater than") }
func FieldGreaterOrEqual(f Field) string { return fieldSimple(f, "at least") }
func FieldLessOrEqual(f Field) string    { return fieldSimple(f, "at most") }
func FieldLessThan(f Field) string       { return fieldSimple(f, "less than") }

func fieldSimple(f Field, relation string) string {
	copula := "is"
	if f.Plural {
		copula = "are"
	}
	if f.Negated {
		copula += " not"
	}
	return fmt.Sprintf("%s %s %s %s", f.Name, copula, relation, f.Value)
}

func verb(f Field, singular, plural, negSingular, negPlural string) string {
	switch {
	case f.Plural && f.Negated:
		return negPlural
	case f.Plural:
		return plural
	case f.Negated:
		return negSingular
	default:
		return singular
	}
}

func not(negated bool) string {
	if negated {
		return "not "
	}
	return ""
}

// ErrorNoField reports a term without a field name. term is the term's
// source text, e.g. "=5".
func ErrorNoField(term string) string {
	return fmt.Sprintf("term '%s' is missing a field name", term)
}

func ErrorUnsupportedField(name string) string {
	return fmt.Sprintf("unknown field %q", name)
}

func ErrorNoOperator(term string) string {
	return fmt.Sprintf("term '%s' is missing an operator", term)
}

func ErrorUnsupportedOperator(name, operator string) string {
	return fmt.Sprintf("can't use %q on field %q", operator, name)
}

func ErrorNoValue(term string) string {
	return fmt.Sprintf("term '%s' is missing a value", term)
}

func ErrorWrongType(typ, value string) string {
	return fmt.Sprintf("expected a %s, not %q", typ, value)
}

func ErrorNestedTerm(term string) string {
	return fmt.Sprintf("term '%s' nests a comparison inside a comparison", term)
}
