package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Marshal flattens a struct into Values. Field keys come from the `query`
// tag (lower-cased field name otherwise, "-" to skip). Zero-valued fields
// are left out and []string fields are comma-joined:
//
//	type Filters struct {
//	    Category string   `query:"cat"`
//	    Tags     []string `query:"tags"`
//	}
//	query.Marshal(Filters{"tech", []string{"go", "web"}}) // cat=tech&tags=go%2Cweb
func Marshal(v any) (Values, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Values{}, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("query: cannot marshal %T, want a struct or map", v)
	}

	values := Values{}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		key := fieldKey(field)
		if key == "" {
			continue
		}

		fv := rv.Field(i)
		if fv.IsZero() {
			continue
		}

		if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String {
			values.Set(key, strings.Join(fv.Interface().([]string), ","))
			continue
		}
		values.Set(key, formatValue(fv))
	}
	return values, nil
}

// Unmarshal fills the `query`-tagged fields of the struct target points to.
// Keys missing from values leave their fields untouched.
func Unmarshal(values Values, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("query: target must be a non-nil pointer, got %T", target)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("query: target must point to a struct, got pointer to %s", rv.Kind())
	}

	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := fieldKey(field)
		if key == "" {
			continue
		}
		raw, ok := values.Get(key)
		if !ok {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}
		if err := SetField(fv, raw); err != nil {
			return fmt.Errorf("query: parsing %q: %w", key, err)
		}
	}
	return nil
}

func fieldKey(field reflect.StructField) string {
	key := field.Tag.Get("query")
	if key == "-" {
		return ""
	}
	if key == "" {
		key = strings.ToLower(field.Name)
	}
	return key
}

// SetField parses s into a settable field of a basic kind. []string fields
// take a comma-separated list.
func SetField(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", s)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", s)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", s)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", s)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}
		var parts []string
		if s != "" {
			parts = strings.Split(s, ",")
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}
	return nil
}
