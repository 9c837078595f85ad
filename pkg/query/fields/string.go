package fields

import (
	"fmt"
	"strings"

	"crystal-hq/crystal/pkg/query/messages"
)

// Extractor reads a field's value from an input. The boolean is false when
// the input has no such value.
type Extractor func(input any) (any, bool)

// StringField compares a string property.
//
//	:  the property contains the value
//	=  the property equals the value
type StringField struct {
	Name     string // Display name, e.g. "the title"
	Plural   bool
	Property string    // Property path passed to Lookup
	Extract  Extractor // Overrides Property when set

	IgnoreCase bool
	Default    string // Operator for terms without one
	AllowEmpty bool   // Accept terms without a value
}

// NewStringField creates a case-sensitive string field.
func NewStringField(name string, plural bool, property string) *StringField {
	return &StringField{Name: name, Plural: plural, Property: property}
}

func (f *StringField) Operators() []string     { return []string{":", "="} }
func (f *StringField) DefaultOperator() string { return f.Default }
func (f *StringField) AllowAbsentValue() bool  { return f.AllowEmpty }

// Get implements Field.
func (f *StringField) Get(operator, value string) (Bundle, error) {
	want := value
	if f.IgnoreCase {
		want = strings.ToUpper(value)
	}

	switch operator {
	case ":":
		return Funcs{
			DescribeFunc: func(negated bool) string { return messages.FieldContains(f.message(value, negated)) },
			MatchFunc: func(input any) bool {
				actual, ok := f.actual(input)
				return ok && Includes(actual, want)
			},
		}, nil
	case "=":
		return Funcs{
			DescribeFunc: func(negated bool) string { return messages.FieldEquals(f.message(value, negated)) },
			MatchFunc: func(input any) bool {
				actual, ok := f.actual(input)
				s, isString := actual.(string)
				return ok && isString && s == want
			},
		}, nil
	}
	return nil, fmt.Errorf("string field %q: unsupported operator %q", f.Name, operator)
}

// actual returns the property, upper-cased when the field ignores case.
func (f *StringField) actual(input any) (any, bool) {
	v, ok := extract(input, f.Property, f.Extract)
	if !ok || !f.IgnoreCase {
		return v, ok
	}
	s, isString := v.(string)
	if !isString {
		return nil, false
	}
	return strings.ToUpper(s), true
}

func (f *StringField) message(value string, negated bool) messages.Field {
	return messages.Field{Name: f.Name, Plural: f.Plural, Value: `"` + value + `"`, Negated: negated}
}

// StringArrayField matches a list of strings.
//
//	:  some element contains the value
type StringArrayField struct {
	Name     string
	Plural   bool
	Property string
	Extract  Extractor

	IgnoreCase bool
	Default    string
}

// NewStringArrayField creates a case-sensitive string list field.
func NewStringArrayField(name string, plural bool, property string) *StringArrayField {
	return &StringArrayField{Name: name, Plural: plural, Property: property}
}

func (f *StringArrayField) Operators() []string     { return []string{":"} }
func (f *StringArrayField) DefaultOperator() string { return f.Default }
func (f *StringArrayField) AllowAbsentValue() bool  { return false }

// Get implements Field.
func (f *StringArrayField) Get(operator, value string) (Bundle, error) {
	if operator != ":" {
		return nil, fmt.Errorf("string array field %q: unsupported operator %q", f.Name, operator)
	}
	want := value
	if f.IgnoreCase {
		want = strings.ToUpper(value)
	}

	return Funcs{
		DescribeFunc: func(negated bool) string {
			return messages.FieldContains(messages.Field{
				Name:    f.Name,
				Plural:  f.Plural,
				Value:   `"` + value + `"`,
				Negated: negated,
			})
		},
		MatchFunc: func(input any) bool {
			v, ok := extract(input, f.Property, f.Extract)
			if !ok {
				return false
			}
			items, ok := elements(v)
			if !ok {
				return false
			}
			for _, item := range items {
				s, isString := normalize(item).(string)
				if !isString {
					continue
				}
				if f.IgnoreCase {
					s = strings.ToUpper(s)
				}
				if strings.Contains(s, want) {
					return true
				}
			}
			return false
		},
	}, nil
}

func extract(input any, property string, fn Extractor) (any, bool) {
	if fn != nil {
		v, ok := fn(input)
		return normalize(v), ok
	}
	if property == "" {
		return normalize(input), input != nil
	}
	return Lookup(input, property)
}
