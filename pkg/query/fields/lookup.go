package fields

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

// Lookup returns the property of input named by path.
//
// A path is a key, an exported struct field (or its json name) or a list
// index. Dotted paths descend into nested values; a key containing dots is
// preferred over descending when both exist. Leaves of *fastjson.Value
// documents are returned as string, float64, bool or nil.
func Lookup(input any, path string) (any, bool) {
	if v, ok := property(input, path); ok {
		return v, true
	}
	head, rest, dotted := strings.Cut(path, ".")
	if !dotted {
		return nil, false
	}
	v, ok := property(input, head)
	if !ok {
		return nil, false
	}
	return Lookup(v, rest)
}

func property(input any, key string) (any, bool) {
	switch v := input.(type) {
	case nil:
		return nil, false
	case map[string]any:
		p, ok := v[key]
		return normalize(p), ok
	case map[string]string:
		p, ok := v[key]
		return p, ok
	case []any:
		i, ok := index(key, len(v))
		if !ok {
			return nil, false
		}
		return normalize(v[i]), true
	case *fastjson.Value:
		return jsonProperty(v, key)
	}
	return reflectProperty(reflect.ValueOf(input), key)
}

func jsonProperty(v *fastjson.Value, key string) (any, bool) {
	switch v.Type() {
	case fastjson.TypeObject:
		p := v.Get(key)
		if p == nil {
			return nil, false
		}
		return normalize(p), true
	case fastjson.TypeArray:
		arr, _ := v.Array()
		i, ok := index(key, len(arr))
		if !ok {
			return nil, false
		}
		return normalize(arr[i]), true
	}
	return nil, false
}

func reflectProperty(rv reflect.Value, key string) (any, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		p := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !p.IsValid() {
			return nil, false
		}
		return normalize(p.Interface()), true
	case reflect.Struct:
		f, ok := structField(rv, key)
		if !ok {
			return nil, false
		}
		return normalize(f.Interface()), true
	case reflect.Slice, reflect.Array:
		i, ok := index(key, rv.Len())
		if !ok {
			return nil, false
		}
		return normalize(rv.Index(i).Interface()), true
	}
	return nil, false
}

func structField(rv reflect.Value, key string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == key || (name == "" && sf.Name == key) {
			return rv.Field(i), true
		}
	}
	if f := rv.FieldByName(key); f.IsValid() && f.CanInterface() {
		return f, true
	}
	return reflect.Value{}, false
}

func index(key string, length int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// normalize converts *fastjson.Value leaves into plain Go values. Objects
// and arrays are left as they are.
func normalize(v any) any {
	jv, ok := v.(*fastjson.Value)
	if !ok || jv == nil {
		return v
	}
	switch jv.Type() {
	case fastjson.TypeString:
		return string(jv.GetStringBytes())
	case fastjson.TypeNumber:
		return jv.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNull:
		return nil
	}
	return jv
}
