package messages

import "testing"

func TestFieldTemplates(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"contains", FieldContains(Field{Name: "the title", Value: `"go"`}), `the title contains "go"`},
		{"contains plural negated", FieldContains(Field{Name: "tags", Plural: true, Negated: true, Value: `"x"`}), `tags do not contain "x"`},
		{"equals negated", FieldEquals(Field{Name: "a number", Negated: true, Value: "5"}), "a number does not equal 5"},
		{"equals plural", FieldEquals(Field{Name: "sizes", Plural: true, Value: "5"}), "sizes equal 5"},
		{"greater", FieldGreaterThan(Field{Name: "a number", Value: "-4.5"}), "a number is greater than -4.5"},
		{"at least", FieldGreaterOrEqual(Field{Name: "a number", Value: "1"}), "a number is at least 1"},
		{"at most plural negated", FieldLessOrEqual(Field{Name: "some numbers", Plural: true, Negated: true, Value: "100"}),
			"some numbers are not at most 100"},
		{"less", FieldLessThan(Field{Name: "some numbers", Plural: true, Value: "-4.5"}), "some numbers are less than -4.5"},
		{"generic", FieldGeneric("b", ":", "c d", true), `not b:"c d"`},
		{"parenthetical", Parenthetical("a or b", true), "not (a or b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestErrorTemplates(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{ErrorNoField("=5"), "term '=5' is missing a field name"},
		{ErrorUnsupportedField("absent"), `unknown field "absent"`},
		{ErrorNoOperator("foo"), "term 'foo' is missing an operator"},
		{ErrorUnsupportedOperator("string", ">"), `can't use ">" on field "string"`},
		{ErrorNoValue("number="), "term 'number=' is missing a value"},
		{ErrorWrongType("number", "foo"), `expected a number, not "foo"`},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
