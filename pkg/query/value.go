package query

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// FormatValue converts a parameter value to its URL string form. Strings
// pass through, booleans become "true"/"false", numbers use their shortest
// decimal form and fmt.Stringer values use String. nil and nil pointers are
// absent and return false.
func FormatValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "", false
		}
		return v.String(), true
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	return formatValue(rv), true
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// FromMap builds Values from a map. Go maps carry no insertion order, so
// keys are sorted to keep the output stable. Absent values are skipped.
func FromMap[V any](m map[string]V) Values {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(Values, 0, len(keys))
	for _, k := range keys {
		values.Add(k, m[k])
	}
	return values
}

// From converts the accepted query argument shapes into Values: Values,
// map[string]any, map[string]string, or a struct (see Marshal). nil gives
// empty Values.
func From(v any) (Values, error) {
	switch q := v.(type) {
	case nil:
		return Values{}, nil
	case Values:
		return q.Clone(), nil
	case map[string]any:
		return FromMap(q), nil
	case map[string]string:
		return FromMap(q), nil
	}
	return Marshal(v)
}
