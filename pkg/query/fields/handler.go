package fields

import (
	"sort"

	qerrors "crystal-hq/crystal/pkg/query/errors"
	"crystal-hq/crystal/pkg/query/messages"
)

// Field is one declared field of a Handler.
type Field interface {
	// Operators lists the operators the field supports.
	Operators() []string
	// DefaultOperator is used for terms without an operator. An empty
	// result means such terms are rejected.
	DefaultOperator() string
	// AllowAbsentValue reports whether terms without a value are accepted.
	AllowAbsentValue() bool
	// Get builds the comparison for a supported operator. value is "" when
	// absent. Conversion failures should be reported as *errors.FieldError
	// of kind errors.KindWrongType.
	Get(operator, value string) (Bundle, error)
}

// ErrorMessages overrides the messages a Handler reports. Nil entries use
// the defaults from package messages.
type ErrorMessages struct {
	NoField             func(t Term) string
	UnsupportedField    func(t Term) string
	NoOperator          func(t Term) string
	UnsupportedOperator func(t Term) string
	NoValue             func(t Term) string
}

// Handler is a Vocabulary over a fixed set of named fields.
//
// Terms are checked in this order: a field name must be given unless a
// default field is configured; the field must be declared; an operator must
// be given unless the field has a default one; the field must support the
// operator; a value must be given unless the field allows none. Only then
// is the field asked to build the comparison.
type Handler struct {
	Fields map[string]Field

	// DefaultField names the entry of Fields used for terms without a
	// field name. Default is used instead when DefaultField is empty.
	DefaultField string
	Default      Field

	Errors ErrorMessages
}

// NewHandler creates a handler over fields.
func NewHandler(fields map[string]Field) *Handler {
	return &Handler{Fields: fields}
}

// Get implements Vocabulary.
func (h *Handler) Get(t Term) (Bundle, error) {
	field := h.defaultField()
	if t.Field == nil && field == nil {
		return nil, h.fail(qerrors.KindNoField, pick(h.Errors.NoField, defaultNoField), t)
	}
	if t.Field != nil {
		field = h.Fields[*t.Field]
	}
	if field == nil {
		return nil, h.fail(qerrors.KindUnsupportedField, pick(h.Errors.UnsupportedField, defaultUnsupportedField), t)
	}

	operator := field.DefaultOperator()
	if t.Operator != nil {
		operator = *t.Operator
	} else if operator == "" {
		return nil, h.fail(qerrors.KindNoOperator, pick(h.Errors.NoOperator, defaultNoOperator), t)
	}
	if !supports(field, operator) {
		return nil, h.fail(qerrors.KindUnsupportedOperator, pick(h.Errors.UnsupportedOperator, defaultUnsupportedOperator), t)
	}

	if t.Value == nil && !field.AllowAbsentValue() {
		return nil, h.fail(qerrors.KindNoValue, pick(h.Errors.NoValue, defaultNoValue), t)
	}

	bundle, err := field.Get(operator, t.ValueText())
	if err != nil {
		if fe, ok := err.(*qerrors.FieldError); ok {
			return nil, withTerm(fe, t)
		}
		return nil, err
	}
	return bundle, nil
}

// FieldNames implements FieldLister.
func (h *Handler) FieldNames() []string {
	names := make([]string, 0, len(h.Fields))
	for name := range h.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OperatorsFor implements FieldLister.
func (h *Handler) OperatorsFor(name string) []string {
	field := h.Fields[name]
	if name == "" {
		field = h.defaultField()
	}
	if field == nil {
		return nil
	}
	return field.Operators()
}

func (h *Handler) defaultField() Field {
	if h.DefaultField != "" {
		return h.Fields[h.DefaultField]
	}
	return h.Default
}

func (h *Handler) fail(kind qerrors.FieldKind, message func(Term) string, t Term) *qerrors.FieldError {
	return withTerm(qerrors.NewFieldError(kind, message(t)), t)
}

func withTerm(fe *qerrors.FieldError, t Term) *qerrors.FieldError {
	if t.Field != nil {
		fe.WithData("field", *t.Field)
	}
	if t.Operator != nil {
		fe.WithData("operator", *t.Operator)
	}
	if t.Value != nil {
		fe.WithData("value", *t.Value)
	}
	return fe
}

func supports(f Field, operator string) bool {
	for _, op := range f.Operators() {
		if op == operator {
			return true
		}
	}
	return false
}

func pick(custom, fallback func(Term) string) func(Term) string {
	if custom != nil {
		return custom
	}
	return fallback
}

func defaultNoField(t Term) string          { return messages.ErrorNoField(t.String()) }
func defaultUnsupportedField(t Term) string { return messages.ErrorUnsupportedField(t.FieldName()) }
func defaultNoOperator(t Term) string       { return messages.ErrorNoOperator(t.String()) }
func defaultNoValue(t Term) string          { return messages.ErrorNoValue(t.String()) }

func defaultUnsupportedOperator(t Term) string {
	return messages.ErrorUnsupportedOperator(t.FieldName(), t.OperatorText())
}
