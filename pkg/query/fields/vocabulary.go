package fields

// Term is the (field, operator, value) triple of a query term.
// A nil part was absent from the query.
type Term struct {
	Field    *string
	Operator *string
	Value    *string
}

// NewTerm builds a term. Empty strings are treated as absent.
func NewTerm(field, operator, value string) Term {
	return Term{Field: optional(field), Operator: optional(operator), Value: optional(value)}
}

// String renders the term as it would be written, without quoting.
func (t Term) String() string {
	return deref(t.Field) + deref(t.Operator) + deref(t.Value)
}

// FieldName returns the field name, or "" when absent.
func (t Term) FieldName() string { return deref(t.Field) }

// OperatorText returns the operator, or "" when absent.
func (t Term) OperatorText() string { return deref(t.Operator) }

// ValueText returns the value, or "" when absent.
func (t Term) ValueText() string { return deref(t.Value) }

// Bundle is the set of operations a vocabulary supplies for one term.
type Bundle interface {
	// Describe renders the comparison, negated when asked to.
	Describe(negated bool) string
	// Match evaluates the comparison against input.
	Match(input any) bool
}

// Vocabulary resolves terms. Get returns a Bundle, or an error (normally
// a *errors.FieldError) when the term cannot be served.
//
// Implementations must be safe for concurrent use.
type Vocabulary interface {
	Get(term Term) (Bundle, error)
}

// FieldLister is implemented by vocabularies with a closed set of fields.
// It is used to suggest corrections for unknown names.
type FieldLister interface {
	FieldNames() []string
	OperatorsFor(field string) []string
}

// Funcs adapts a pair of functions to Bundle.
type Funcs struct {
	DescribeFunc func(negated bool) string
	MatchFunc    func(input any) bool
}

func (f Funcs) Describe(negated bool) string {
	if f.DescribeFunc == nil {
		return ""
	}
	return f.DescribeFunc(negated)
}

func (f Funcs) Match(input any) bool {
	if f.MatchFunc == nil {
		return false
	}
	return f.MatchFunc(input)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
