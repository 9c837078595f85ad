package fields

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// Undefined stands for a property that does not exist. It differs from nil,
// which is a present null, in that it converts to NaN rather than 0.
var Undefined any = undefined{}

type undefined struct{}

// LooseEqual compares a and b with the coercing equality of loosely typed
// query languages: numbers and numeric strings compare by value, booleans
// compare as 0 and 1, lists and objects compare by their string form, and
// nil and Undefined equal only each other.
func LooseEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)

	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}

	if x, ok := a.(bool); ok {
		return LooseEqual(boolNumber(x), b)
	}
	if y, ok := b.(bool); ok {
		return LooseEqual(a, boolNumber(y))
	}

	an, aNum := number(a)
	bn, bNum := number(b)
	as, aStr := a.(string)
	bs, bStr := b.(string)
	switch {
	case aNum && bNum:
		return an == bn
	case aStr && bStr:
		return as == bs
	case aNum && bStr:
		return an == ToNumber(bs)
	case aStr && bNum:
		return ToNumber(as) == bn
	case aNum || aStr:
		return LooseEqual(a, toPrimitive(b))
	case bNum || bStr:
		return LooseEqual(toPrimitive(a), b)
	}
	return false
}

// LooseCompare applies one of the ordering operators < <= > >= to a and b.
// Two strings compare lexically, anything else numerically. Comparisons
// involving NaN are false.
func LooseCompare(a any, operator string, b any) bool {
	pa, pb := toPrimitive(normalize(a)), toPrimitive(normalize(b))

	if sa, ok := pa.(string); ok {
		if sb, ok := pb.(string); ok {
			switch operator {
			case "<":
				return sa < sb
			case "<=":
				return sa <= sb
			case ">":
				return sa > sb
			case ">=":
				return sa >= sb
			}
			return false
		}
	}

	return compareNumbers(ToNumber(pa), operator, ToNumber(pb))
}

func compareNumbers(x float64, operator string, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	switch operator {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	case "=", ":":
		return x == y
	}
	return false
}

// Includes reports whether container holds value: a substring of a string,
// or an element of a list. Other values contain nothing.
func Includes(container any, value string) bool {
	container = normalize(container)
	if s, ok := container.(string); ok {
		return strings.Contains(s, value)
	}
	items, ok := elements(container)
	if !ok {
		return false
	}
	for _, item := range items {
		if s, ok := normalize(item).(string); ok && s == value {
			return true
		}
	}
	return false
}

// ToNumber converts v to a float64 the way a loosely typed language does.
// Strings are trimmed; the empty string is 0 and malformed strings are NaN.
func ToNumber(v any) float64 {
	v = normalize(v)
	if n, ok := number(v); ok {
		return n
	}
	switch x := v.(type) {
	case nil:
		return 0
	case undefined:
		return math.NaN()
	case bool:
		return boolNumber(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		n, ok := parseNumber(s)
		if !ok {
			return math.NaN()
		}
		return n
	}
	return ToNumber(toPrimitive(v))
}

// ParseNumber parses a trimmed, non-blank numeric literal. Decimal and
// exponent forms are accepted, as are 0x, 0o and 0b integers and Infinity.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	return parseNumber(s)
}

func parseNumber(s string) (float64, bool) {
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatNumber renders n the way it would be printed by a loosely typed
// language: integers without a fraction, and exponents only for very large
// or very small magnitudes.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s := strconv.FormatFloat(n, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + exp
}

// number returns v as a float64 when v has a numeric Go type.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint:
		return float64(x), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func isNullish(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(undefined)
	return ok
}

// toPrimitive reduces lists to their comma-joined elements and objects to
// "[object Object]". Other values are returned unchanged.
func toPrimitive(v any) any {
	switch v.(type) {
	case nil, undefined, bool, string:
		return v
	}
	if _, ok := number(v); ok {
		return v
	}
	if items, ok := elements(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			item = normalize(item)
			if isNullish(item) {
				continue
			}
			parts[i] = toString(toPrimitive(item))
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	case undefined:
		return "undefined"
	}
	if n, ok := number(v); ok {
		return FormatNumber(n)
	}
	return toString(toPrimitive(v))
}

// elements returns the items of a list value.
func elements(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case *fastjson.Value:
		if x.Type() != fastjson.TypeArray {
			return nil, false
		}
		arr, _ := x.Array()
		out := make([]any, len(arr))
		for i, item := range arr {
			out[i] = item
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
