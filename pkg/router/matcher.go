package router

import (
	"strings"

	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/pattern"
	"github.com/vango-dev/routetree/pkg/query"
	"github.com/vango-dev/routetree/pkg/routepath"
)

// QueryParamsKey is the mapping key that carries query parameters in
// Generate arguments and in Match.ParamMap.
const QueryParamsKey = "queryParams"

// Params is a parameter mapping for Generate.
type Params map[string]any

// Matcher is the compiled form of one route's full path. Matchers are
// never modified after Build returns them.
type Matcher struct {
	// Path is the absolute template, e.g. "/application/:user/status/:id".
	Path string

	// ParamNames are the template's parameters in order.
	ParamNames []string

	// Routes is the chain from the top-level route down to the owner.
	Routes []*Route

	pattern *pattern.Pattern
}

// Route returns the route that owns the matcher.
func (m *Matcher) Route() *Route {
	return m.Routes[len(m.Routes)-1]
}

// Name returns the owning route's declared name.
func (m *Matcher) Name() string {
	return m.Route().Name
}

// Pattern returns the compiled template.
func (m *Matcher) Pattern() *pattern.Pattern {
	return m.pattern
}

// Match tests a path without query string against the matcher.
func (m *Matcher) Match(path string) (map[string]string, bool) {
	return m.pattern.Match(path)
}

// Matchers is an ordered matcher registry. The first matcher to match a
// path wins.
type Matchers []*Matcher

// Match resolves a path. A leading "#" is ignored and the query string,
// if any, is decoded into Match.Query. It returns nil when no matcher
// fits.
func (ms Matchers) Match(input string) *Match {
	path, raw := routepath.SplitPathAndQuery(routepath.TrimFragment(input))
	for _, m := range ms {
		params, ok := m.Match(path)
		if !ok {
			continue
		}
		return &Match{
			Path:    path,
			Params:  params,
			Query:   query.Parse(raw),
			Routes:  m.Routes,
			Matcher: m,
		}
	}
	return nil
}

// Lookup finds the matcher for the route with the given declared name,
// falling back to the qualified name ("application.status"). A parent
// resolves to the matcher of a descendant sharing its path, such as its
// index route, or else to a matcher compiled for its own path.
func (ms Matchers) Lookup(name string) (*Matcher, bool) {
	r := ms.route(name)
	if r == nil {
		return nil, false
	}

	path := "/" + strings.TrimPrefix(r.FullPath(), "/")
	for _, m := range ms {
		if m.Route() == r {
			return m, true
		}
	}
	for _, m := range ms {
		if m.Path == path && m.owns(r) {
			return m, true
		}
	}

	m, err := newMatcher(r)
	if err != nil {
		return nil, false
	}
	return m, true
}

func (ms Matchers) route(name string) *Route {
	for _, m := range ms {
		for _, r := range m.Routes {
			if r.Name == name {
				return r
			}
		}
	}
	if !strings.Contains(name, ".") {
		return nil
	}
	for _, m := range ms {
		for _, r := range m.Routes {
			if r.QualifiedName() == name {
				return r
			}
		}
	}
	return nil
}

func (m *Matcher) owns(r *Route) bool {
	for _, c := range m.Routes {
		if c == r {
			return true
		}
	}
	return false
}

// Generate builds the rooted path for a route, with the query string
// appended when query parameters are given:
//
//	ms.Generate("status", Params{"user": "foo", "id": 1})
//	ms.Generate("status", "foo", 1, Params{"queryParams": Params{"page": 2}})
//
// Positional values fill ParamNames in order. A trailing mapping supplies
// the remaining parameters and the "queryParams" entry.
func (ms Matchers) Generate(name string, args ...any) (string, error) {
	m, ok := ms.Lookup(name)
	if !ok {
		return "", rterrors.New(rterrors.CodeUnknownRoute).WithDetailf("%q", name)
	}

	params, q, err := m.resolveArgs(args)
	if err != nil {
		return "", err
	}

	path, err := m.pattern.Generate(params)
	if err != nil {
		return "", err
	}
	if q.Len() > 0 {
		path += "?" + q.Encode()
	}
	return path, nil
}

func (m *Matcher) resolveArgs(args []any) (map[string]string, query.Values, error) {
	var named map[string]any
	positional := args
	if n := len(args); n > 0 {
		if mapping, ok := asMapping(args[n-1]); ok {
			named = mapping
			positional = args[:n-1]
		}
	}

	if len(positional) > len(m.ParamNames) {
		return nil, nil, rterrors.New(rterrors.CodeUnexpectedParam).
			WithDetailf("%s takes %d parameters, got %d", m.Path, len(m.ParamNames), len(positional))
	}

	params := make(map[string]string, len(m.ParamNames))
	for i, arg := range positional {
		if _, ok := asMapping(arg); ok {
			return nil, nil, rterrors.New(rterrors.CodeUnexpectedParam).
				WithDetailf("mapping at position %d; only the last argument may be a mapping", i)
		}
		if s, ok := query.FormatValue(arg); ok {
			params[m.ParamNames[i]] = s
		}
	}

	var q query.Values
	for key, value := range named {
		if key == QueryParamsKey {
			if p, ok := value.(Params); ok {
				value = map[string]any(p)
			}
			var err error
			if q, err = query.From(value); err != nil {
				return nil, nil, rterrors.New(rterrors.CodeUnexpectedParam).
					WithDetail(QueryParamsKey).Wrap(err)
			}
			continue
		}
		if _, set := params[key]; set {
			continue
		}
		if s, ok := query.FormatValue(value); ok {
			params[key] = s
		}
	}
	return params, q, nil
}

func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Params:
		return m, true
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}
