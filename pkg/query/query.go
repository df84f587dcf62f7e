// Package query parses and serializes URL query strings for routetree.
//
// Values keeps keys in insertion order so that a query serialized from a
// Values reads back the way it was built:
//
//	q := query.Parse("withReplies=true&foo=bar")
//	q.Get("withReplies")       // "true", true
//	q.Encode()                 // "withReplies=true&foo=bar"
//
// Decoded values are always strings; "true" stays "true". Typed access goes
// through Unmarshal with `query` struct tags.
package query

import (
	"strings"

	"github.com/vango-dev/routetree/pkg/routepath"
)

// Pair is a single decoded key/value.
type Pair struct {
	Key   string
	Value string
}

// Values is an ordered, flat query mapping. Keys are unique.
type Values []Pair

// Parse decodes a query string. A leading "?" is ignored, empty pairs are
// skipped, a pair without "=" has an empty value, and a repeated key keeps
// its first position but takes the last value.
func Parse(raw string) Values {
	raw = strings.TrimPrefix(raw, "?")
	values := Values{}
	if raw == "" {
		return values
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values.Set(routepath.UnescapeComponent(key), routepath.UnescapeComponent(value))
	}
	return values
}

// Encode serializes values as key=value pairs joined with "&", in order,
// percent-encoding keys and values.
func Encode(values Values) string {
	var b strings.Builder
	for i, p := range values {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(routepath.EscapeComponent(p.Key))
		b.WriteByte('=')
		b.WriteString(routepath.EscapeComponent(p.Value))
	}
	return b.String()
}

// Encode is shorthand for Encode(v).
func (v Values) Encode() string {
	return Encode(v)
}

// Get returns the value stored under key.
func (v Values) Get(key string) (string, bool) {
	if i := v.index(key); i >= 0 {
		return v[i].Value, true
	}
	return "", false
}

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	return v.index(key) >= 0
}

// Len returns the number of keys.
func (v Values) Len() int {
	return len(v)
}

// Keys returns the keys in insertion order.
func (v Values) Keys() []string {
	keys := make([]string, len(v))
	for i, p := range v {
		keys[i] = p.Key
	}
	return keys
}

// Map copies the values into a map.
func (v Values) Map() map[string]string {
	m := make(map[string]string, len(v))
	for _, p := range v {
		m[p.Key] = p.Value
	}
	return m
}

// Set stores value under key, replacing an existing value in place or
// appending a new key.
func (v *Values) Set(key, value string) {
	if i := v.index(key); i >= 0 {
		(*v)[i].Value = value
		return
	}
	*v = append(*v, Pair{Key: key, Value: value})
}

// Add converts value with FormatValue and stores it. Absent values (nil,
// nil pointers) are skipped and reported with false.
func (v *Values) Add(key string, value any) bool {
	s, ok := FormatValue(value)
	if !ok {
		return false
	}
	v.Set(key, s)
	return true
}

// Del removes key.
func (v *Values) Del(key string) {
	if i := v.index(key); i >= 0 {
		*v = append((*v)[:i], (*v)[i+1:]...)
	}
}

// Clone returns a copy that does not share storage with v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	copy(out, v)
	return out
}

func (v Values) index(key string) int {
	for i, p := range v {
		if p.Key == key {
			return i
		}
	}
	return -1
}
