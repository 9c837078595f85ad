package fields

import (
	"fmt"
	"math"

	qerrors "crystal-hq/crystal/pkg/query/errors"
	"crystal-hq/crystal/pkg/query/messages"
)

// NumberField compares a numeric property. The query value must be a
// finite number.
//
//	: =        the property is exactly the number
//	> >= <= <  ordering, with numeric strings in the input converted
type NumberField struct {
	Name     string
	Plural   bool
	Property string
	Extract  Extractor

	Default string
}

// NewNumberField creates a number field.
func NewNumberField(name string, plural bool, property string) *NumberField {
	return &NumberField{Name: name, Plural: plural, Property: property}
}

func (f *NumberField) Operators() []string     { return []string{":", "=", ">", ">=", "<=", "<"} }
func (f *NumberField) DefaultOperator() string { return f.Default }
func (f *NumberField) AllowAbsentValue() bool  { return false }

// Get implements Field.
func (f *NumberField) Get(operator, value string) (Bundle, error) {
	want, ok := ParseNumber(value)
	if !ok || math.IsInf(want, 0) {
		return nil, qerrors.NewFieldError(qerrors.KindWrongType, messages.ErrorWrongType("number", value))
	}

	var describe func(messages.Field) string
	switch operator {
	case ":", "=":
		describe = messages.FieldEquals
	case ">":
		describe = messages.FieldGreaterThan
	case ">=":
		describe = messages.FieldGreaterOrEqual
	case "<=":
		describe = messages.FieldLessOrEqual
	case "<":
		describe = messages.FieldLessThan
	default:
		return nil, fmt.Errorf("number field %q: unsupported operator %q", f.Name, operator)
	}

	formatted := FormatNumber(want)
	return Funcs{
		DescribeFunc: func(negated bool) string {
			return describe(messages.Field{Name: f.Name, Plural: f.Plural, Value: formatted, Negated: negated})
		},
		MatchFunc: func(input any) bool {
			actual, ok := extract(input, f.Property, f.Extract)
			if !ok {
				return false
			}
			if operator == ":" || operator == "=" {
				n, isNumber := number(actual)
				return isNumber && n == want
			}
			return LooseCompare(actual, operator, want)
		},
	}, nil
}
