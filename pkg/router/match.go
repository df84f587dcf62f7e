package router

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/routetree/pkg/query"
)

// Match is the result of resolving a path.
type Match struct {
	// Path is the matched path, without fragment marker or query string.
	Path string

	// Params holds the decoded dynamic segments.
	Params map[string]string

	// Query holds the decoded query string. It is never nil.
	Query query.Values

	// Routes is the matched chain, top-level route first.
	Routes []*Route

	// Matcher is the matcher that accepted the path.
	Matcher *Matcher
}

// Route returns the innermost matched route.
func (m *Match) Route() *Route {
	return m.Routes[len(m.Routes)-1]
}

// Names returns the declared names of the matched chain.
func (m *Match) Names() []string {
	names := make([]string, len(m.Routes))
	for i, r := range m.Routes {
		names[i] = r.Name
	}
	return names
}

// Includes reports whether the chain contains the route with the given
// declared or qualified name.
func (m *Match) Includes(name string) bool {
	for _, r := range m.Routes {
		if r.Name == name || r.QualifiedName() == name {
			return true
		}
	}
	return false
}

// ParamMap returns the parameters merged with the query mapping under
// QueryParamsKey.
func (m *Match) ParamMap() map[string]any {
	out := make(map[string]any, len(m.Params)+1)
	for k, v := range m.Params {
		out[k] = v
	}
	out[QueryParamsKey] = m.Query.Map()
	return out
}

// Bind populates a struct from the match. Fields tagged `param:"name"`
// are read from Params, fields tagged `query:"name"` from Query. Absent
// values leave the field untouched.
//
//	var p struct {
//	    User    string `param:"user"`
//	    ID      int    `param:"id"`
//	    Replies bool   `query:"withReplies"`
//	}
//	err := m.Bind(&p)
func (m *Match) Bind(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("router: bind target must be a non-nil pointer, got %T", target)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("router: bind target must point to a struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		var (
			value string
			ok    bool
			kind  string
			name  string
		)
		if name = field.Tag.Get("param"); name != "" {
			value, ok = m.Params[name]
			kind = "param"
		} else if name = field.Tag.Get("query"); name != "" && name != "-" {
			value, ok = m.Query.Get(name)
			kind = "query"
		}
		if !ok {
			continue
		}

		if err := query.SetField(fv, value); err != nil {
			return fmt.Errorf("router: binding %s %q: %w", kind, name, err)
		}
	}
	return nil
}
