// Package fields resolves query terms into comparisons against input values.
//
// A Vocabulary turns the (field, operator, value) triple of a term into a
// Bundle that can describe the comparison in English and evaluate it against
// an input. Two vocabularies are provided:
//
//   - Generic treats the field name as a property of the input and applies
//     loose comparison rules to whatever it finds there.
//   - Handler accepts only declared fields (StringField, NumberField,
//     StringArrayField or any Field implementation) and reports terms it
//     cannot serve as *errors.FieldError values.
//
// Properties are looked up with Lookup, which understands maps, structs,
// pointers, slices, *fastjson.Value documents and dotted paths.
package fields
