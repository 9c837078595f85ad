package fields

import (
	"errors"
	"testing"

	qerrors "crystal-hq/crystal/pkg/query/errors"
)

func str(s string) *string { return &s }

func newTestHandler() *Handler {
	return NewHandler(map[string]Field{
		"string": NewStringField("some field", false, "foo"),
		"number": NewNumberField("a number", false, "prop"),
	})
}

func TestHandler_Get_Describe(t *testing.T) {
	h := newTestHandler()
	tests := []struct {
		term Term
		want string
	}{
		{NewTerm("number", "=", "5"), "a number equals 5"},
		{NewTerm("number", ":", "4"), "a number equals 4"},
		{NewTerm("string", ":", "foo"), `some field contains "foo"`},
		{NewTerm("string", ":", `a"b`), `some field contains "a"b"`},
	}

	for _, tt := range tests {
		t.Run(tt.term.String(), func(t *testing.T) {
			b, err := h.Get(tt.term)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got := b.Describe(false); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_Get_DescribeKeepsValueVerbatim(t *testing.T) {
	h := NewHandler(map[string]Field{"tags": NewStringArrayField("the tags", true, "tags")})
	b, err := h.Get(NewTerm("tags", ":", `x\y"z`))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got, want := b.Describe(false), `the tags contain "x\y"z"`; got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  *Handler
		term     Term
		wantKind qerrors.FieldKind
		wantMsg  string
	}{
		{"unsupported field", newTestHandler(), NewTerm("absent", "=", "5"),
			qerrors.KindUnsupportedField, `unknown field "absent"`},
		{"absent field", newTestHandler(), NewTerm("", "=", "5"),
			qerrors.KindNoField, "term '=5' is missing a field name"},
		{"unsupported operator", newTestHandler(), NewTerm("string", ">", "blah"),
			qerrors.KindUnsupportedOperator, `can't use ">" on field "string"`},
		{"absent value", newTestHandler(), NewTerm("number", "=", ""),
			qerrors.KindNoValue, "term 'number=' is missing a value"},
		{"field error relayed", newTestHandler(), NewTerm("number", "=", "foo"),
			qerrors.KindWrongType, `expected a number, not "foo"`},
		{"no default operator", &Handler{
			Fields:       map[string]Field{"string": NewStringField("some field", false, "foo")},
			DefaultField: "string",
		}, NewTerm("", "", "foo"), qerrors.KindNoOperator, "term 'foo' is missing an operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.handler.Get(tt.term)
			var fe *qerrors.FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("Get() error = %v, want *FieldError", err)
			}
			if fe.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", fe.Kind, tt.wantKind)
			}
			if fe.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", fe.Message, tt.wantMsg)
			}
		})
	}
}

func TestHandler_Get_ErrorData(t *testing.T) {
	_, err := newTestHandler().Get(NewTerm("string", ">", "blah"))
	fe := err.(*qerrors.FieldError)
	if fe.Data["field"] != "string" || fe.Data["operator"] != ">" || fe.Data["value"] != "blah" {
		t.Errorf("Data = %v", fe.Data)
	}
}

func TestHandler_DefaultField(t *testing.T) {
	s := NewStringField("some field", false, "foo")
	n := NewNumberField("a number", false, "prop")

	tests := []struct {
		name    string
		handler *Handler
		term    Term
		want    string
	}{
		{"as field", &Handler{Fields: map[string]Field{"string": s}, Default: n},
			NewTerm("", ">", "2"), "a number is greater than 2"},
		{"as name", &Handler{Fields: map[string]Field{"string": s}, DefaultField: "string"},
			NewTerm("", ":", "foo"), `some field contains "foo"`},
		{"default operator", &Handler{Fields: map[string]Field{
			"string": &StringField{Name: "some field", Property: "foo", Default: ":"},
		}, DefaultField: "string"}, NewTerm("", "", "foo"), `some field contains "foo"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.handler.Get(tt.term)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got := b.Describe(false); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_CustomMessages(t *testing.T) {
	h := newTestHandler()
	h.Errors.UnsupportedField = func(t Term) string { return "no such thing: " + t.FieldName() }

	_, err := h.Get(Term{Field: str("nope"), Operator: str(":"), Value: str("x")})
	if err == nil || err.(*qerrors.FieldError).Message != "no such thing: nope" {
		t.Errorf("Get() error = %v, want custom message", err)
	}
}

func TestHandler_FieldLister(t *testing.T) {
	var v Vocabulary = newTestHandler()
	lister, ok := v.(FieldLister)
	if !ok {
		t.Fatal("Handler does not implement FieldLister")
	}
	names := lister.FieldNames()
	if len(names) != 2 || names[0] != "number" || names[1] != "string" {
		t.Errorf("FieldNames() = %v, want [number string]", names)
	}
	if ops := lister.OperatorsFor("string"); len(ops) != 2 {
		t.Errorf("OperatorsFor(string) = %v", ops)
	}
}

func TestTerm_String(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{NewTerm("", "=", "5"), "=5"},
		{NewTerm("number", "=", ""), "number="},
		{Term{Value: str("")}, ""},
		{NewTerm("a", ">=", "b"), "a>=b"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
