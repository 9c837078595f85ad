package fields

import "crystal-hq/crystal/pkg/query/messages"

// Generic is the schema-less vocabulary. The field names a property of the
// input (the input itself when absent) and every operator is accepted:
//
//	: or none  substring for strings, membership for lists
//	=          loose equality
//	< <= > >=  loose ordering
//
// Generic never rejects a term.
type Generic struct{}

// Get implements Vocabulary.
func (Generic) Get(t Term) (Bundle, error) {
	name, operator, value := t.FieldName(), t.OperatorText(), t.ValueText()
	return Funcs{
		DescribeFunc: func(negated bool) string {
			return messages.FieldGeneric(name, operator, value, negated)
		},
		MatchFunc: func(input any) bool {
			actual, ok := input, true
			if name != "" {
				actual, ok = Lookup(input, name)
			} else {
				actual = normalize(actual)
			}
			if !ok {
				actual = Undefined
			}
			switch operator {
			case "", ":":
				return Includes(actual, value)
			case "=":
				return LooseEqual(actual, value)
			case ">", ">=", "<=", "<":
				return LooseCompare(actual, operator, value)
			default:
				return false
			}
		},
	}, nil
}
