package fields

import (
	"errors"
	"testing"

	qerrors "crystal-hq/crystal/pkg/query/errors"
)

func mustGet(t *testing.T, f Field, operator, value string) Bundle {
	t.Helper()
	b, err := f.Get(operator, value)
	if err != nil {
		t.Fatalf("Get(%q, %q) error = %v", operator, value, err)
	}
	return b
}

type matchCase struct {
	input any
	want  bool
}

func checkMatches(t *testing.T, b Bundle, cases []matchCase) {
	t.Helper()
	for _, c := range cases {
		if got := b.Match(c.input); got != c.want {
			t.Errorf("Match(%v) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestNumberField(t *testing.T) {
	f := NewNumberField("a number", false, "prop")

	tests := []struct {
		operator string
		value    string
		describe string
		cases    []matchCase
	}{
		{":", "-4.5", "a number equals -4.5", []matchCase{
			{map[string]any{"prop": -4.5}, true},
			{map[string]any{"prop": 4.5}, false},
			{map[string]any{"foo": -4.5}, false},
			{map[string]any{"prop": "-4.5"}, false},
		}},
		{"=", "-4.5", "a number equals -4.5", []matchCase{
			{map[string]any{"prop": -4.5}, true},
			{map[string]any{"prop": 4.5}, false},
		}},
		{">", "-4.5", "a number is greater than -4.5", []matchCase{
			{map[string]any{"prop": -4}, true},
			{map[string]any{"prop": -4.5}, false},
			{map[string]any{"prop": -5}, false},
			{map[string]any{"foo": -4}, false},
			{map[string]any{"prop": "-4"}, true},
		}},
		{">=", "-4.5", "a number is at least -4.5", []matchCase{
			{map[string]any{"prop": -4}, true},
			{map[string]any{"prop": -4.5}, true},
			{map[string]any{"prop": -5}, false},
			{map[string]any{"foo": -4}, false},
		}},
		{"<=", "-4.5", "a number is at most -4.5", []matchCase{
			{map[string]any{"prop": -4}, false},
			{map[string]any{"prop": -4.5}, true},
			{map[string]any{"prop": -5}, true},
			{map[string]any{"foo": -5}, false},
		}},
		{"<", "-4.5", "a number is less than -4.5", []matchCase{
			{map[string]any{"prop": -4}, false},
			{map[string]any{"prop": -4.5}, false},
			{map[string]any{"prop": -5}, true},
			{map[string]any{"foo": -5}, false},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.operator, func(t *testing.T) {
			b := mustGet(t, f, tt.operator, tt.value)
			if got := b.Describe(false); got != tt.describe {
				t.Errorf("Describe() = %q, want %q", got, tt.describe)
			}
			checkMatches(t, b, tt.cases)
		})
	}
}

func TestNumberField_Describe(t *testing.T) {
	f := NewNumberField("some numbers", true, "prop")
	if got, want := mustGet(t, f, "<", "-4.5").Describe(false), "some numbers are less than -4.5"; got != want {
		t.Errorf("plural Describe() = %q, want %q", got, want)
	}
	if got, want := mustGet(t, f, "<=", "0100").Describe(true), "some numbers are not at most 100"; got != want {
		t.Errorf("negated Describe() = %q, want %q", got, want)
	}
}

func TestNumberField_RejectsNonNumbers(t *testing.T) {
	f := NewNumberField("some numbers", true, "prop")
	for _, value := range []string{"foo", "", " ", "1_000", "inf", "Infinity"} {
		_, err := f.Get("<", value)
		var fe *qerrors.FieldError
		if !errors.As(err, &fe) || fe.Kind != qerrors.KindWrongType {
			t.Errorf("Get(%q) error = %v, want wrong type", value, err)
			continue
		}
		if want := `expected a number, not "` + value + `"`; fe.Message != want {
			t.Errorf("Message = %q, want %q", fe.Message, want)
		}
	}
}

func TestStringField(t *testing.T) {
	f := NewStringField("some field", false, "foo")

	contains := mustGet(t, f, ":", "bar")
	if got, want := contains.Describe(false), `some field contains "bar"`; got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
	checkMatches(t, contains, []matchCase{
		{map[string]any{"foo": "bar"}, true},
		{map[string]any{"foo": "foobarbaz"}, true},
		{map[string]any{"foo": "baz"}, false},
		{map[string]any{"baz": "bar"}, false},
	})

	equals := mustGet(t, f, "=", "bar")
	if got, want := equals.Describe(false), `some field equals "bar"`; got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
	checkMatches(t, equals, []matchCase{
		{map[string]any{"foo": "bar"}, true},
		{map[string]any{"foo": "foobarbaz"}, false},
	})
}

func TestStringField_IgnoreCase(t *testing.T) {
	sensitive := NewStringField("some field", false, "foo")
	checkMatches(t, mustGet(t, sensitive, "=", "bar"), []matchCase{{map[string]any{"foo": "BaR"}, false}})
	checkMatches(t, mustGet(t, sensitive, ":", "bar"), []matchCase{{map[string]any{"foo": "BaRBaZ"}, false}})

	insensitive := &StringField{Name: "some field", Property: "foo", IgnoreCase: true}
	checkMatches(t, mustGet(t, insensitive, "=", "bar"), []matchCase{{map[string]any{"foo": "BaR"}, true}})
	checkMatches(t, mustGet(t, insensitive, ":", "bar"), []matchCase{
		{map[string]any{"foo": "BaRBaZ"}, true},
		{map[string]any{"foo": 7}, false},
	})

	if got, want := mustGet(t, insensitive, ":", "Bar").Describe(false), `some field contains "Bar"`; got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestStringField_Describe(t *testing.T) {
	f := NewStringField("some fields", true, "foo")
	if got, want := mustGet(t, f, ":", "Bar").Describe(false), `some fields contain "Bar"`; got != want {
		t.Errorf("plural Describe() = %q, want %q", got, want)
	}
	if got, want := mustGet(t, f, ":", "Bar").Describe(true), `some fields do not contain "Bar"`; got != want {
		t.Errorf("negated Describe() = %q, want %q", got, want)
	}
}

func TestStringField_Extract(t *testing.T) {
	f := &StringField{Name: "the name", Extract: func(input any) (any, bool) {
		s, ok := input.(string)
		return s, ok
	}}
	checkMatches(t, mustGet(t, f, ":", "ell"), []matchCase{
		{"hello", true},
		{map[string]any{"name": "hello"}, false},
	})
}

func TestStringArrayField(t *testing.T) {
	f := NewStringArrayField("some strings", true, "foo")
	b := mustGet(t, f, ":", "bar")
	if got, want := b.Describe(false), `some strings contain "bar"`; got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
	checkMatches(t, b, []matchCase{
		{map[string]any{"foo": []string{"bar", "baz"}}, true},
		{map[string]any{"foo": []any{"xbarx"}}, true},
		{map[string]any{"foo": []string{"baz"}}, false},
		{map[string]any{"foo": "bar"}, false},
		{map[string]any{}, false},
	})

	insensitive := &StringArrayField{Name: "tags", Property: "tags", IgnoreCase: true}
	checkMatches(t, mustGet(t, insensitive, ":", "go"), []matchCase{
		{map[string]any{"tags": []any{"GoLang", 3}}, true},
	})
}
