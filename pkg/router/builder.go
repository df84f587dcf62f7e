package router

import (
	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/pattern"
)

// DefineFunc declares routes on a Builder.
type DefineFunc func(b *Builder)

// Builder collects route declarations. The route currently being filled
// with children sits on top of an explicit parent stack.
type Builder struct {
	existing []*Route
	routes   []*Route
	stack    []*Route
	names    map[string]*Route
	err      error
}

func newBuilder(existing []*Route) *Builder {
	b := &Builder{
		existing: existing,
		names:    make(map[string]*Route),
	}
	for _, top := range existing {
		top.Walk(func(r *Route) { b.names[r.Name] = r })
	}
	return b
}

// Route declares a route under the current parent and returns it. Errors
// are collected and reported by Build once the definition returns; after
// the first error further declarations are ignored.
func (b *Builder) Route(name string, opts ...RouteOption) *Route {
	var o RouteOptions
	for _, opt := range opts {
		opt(&o)
	}

	route := &Route{Name: name, Options: o}
	if b.err != nil {
		return route
	}

	if name == "" {
		b.fail(rterrors.New(rterrors.CodeInvalidRoute).WithDetail("empty route name"))
		return route
	}
	if _, dup := b.names[name]; dup {
		b.fail(rterrors.New(rterrors.CodeDuplicateRouteName).WithDetailf("%q", name))
		return route
	}
	b.names[name] = route

	switch {
	case o.HasPath:
		route.Path = o.Path
	case isIndexName(name):
		route.Path = ""
	default:
		route.Path = name
	}

	if parent := b.parent(); parent != nil {
		route.parent = parent
		parent.Children = append(parent.Children, route)
	} else {
		b.routes = append(b.routes, route)
	}

	if o.children != nil {
		b.stack = append(b.stack, route)
		o.children(b)
		b.stack = b.stack[:len(b.stack)-1]
	}
	return route
}

func (b *Builder) parent() *Route {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// resolveRoot gives a top-level route declared with an explicit empty
// path the path "/", provided it is the only one.
func (b *Builder) resolveRoot() error {
	var candidates []*Route
	for _, group := range [][]*Route{b.existing, b.routes} {
		for _, r := range group {
			if r.Options.HasPath && r.Options.Path == "" && !r.IsIndex() {
				candidates = append(candidates, r)
			}
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		if r := candidates[0]; r.Path != "/" {
			r.Path = "/"
		}
		return nil
	}

	names := make([]string, len(candidates))
	for i, r := range candidates {
		names[i] = r.Name
	}
	return rterrors.New(rterrors.CodeAmbiguousRootPath).
		WithDetailf("top-level routes %q all declare an empty path", names)
}

// Build runs define and compiles the declared routes. It returns the
// top-level routes and one Matcher per leaf route in depth-first
// pre-order. A parent is reached through its index or empty-path child.
// Name errors are reported before any matcher is compiled.
func Build(define DefineFunc) ([]*Route, []*Matcher, error) {
	return build(define, nil)
}

// build compiles define against routes already mapped by earlier calls,
// so names stay unique across them. Routes in existing are only read.
func build(define DefineFunc, existing []*Route) ([]*Route, []*Matcher, error) {
	if define == nil {
		return nil, nil, rterrors.New(rterrors.CodeInvalidRoute).WithDetail("nil route definition")
	}

	b := newBuilder(existing)
	define(b)
	if b.err != nil {
		return nil, nil, b.err
	}
	if err := b.resolveRoot(); err != nil {
		return nil, nil, err
	}

	var matchers []*Matcher
	for _, top := range b.routes {
		var err error
		top.Walk(func(r *Route) {
			if err != nil || len(r.Children) > 0 {
				return
			}
			var m *Matcher
			m, err = newMatcher(r)
			if err == nil {
				matchers = append(matchers, m)
			}
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return b.routes, matchers, nil
}

func newMatcher(r *Route) (*Matcher, error) {
	p, err := pattern.Compile(r.FullPath())
	if err != nil {
		return nil, err
	}
	return &Matcher{
		Path:       p.Path(),
		ParamNames: p.ParamNames(),
		Routes:     r.Chain(),
		pattern:    p,
	}, nil
}
