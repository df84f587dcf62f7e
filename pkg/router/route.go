package router

import (
	"strings"

	"github.com/vango-dev/routetree/pkg/routepath"
)

// Route is a node in the route tree.
type Route struct {
	// Name is the declared name, unique across the tree.
	Name string

	// Path is the route's own path template after defaulting
	// (e.g. ":user/status/:id", "" for index routes).
	Path string

	// Options holds the normalized declaration options.
	Options RouteOptions

	// Children are the nested routes in declaration order.
	Children []*Route

	parent *Route
}

// RouteOptions is the normalized form of the options a route was declared
// with.
type RouteOptions struct {
	// Path is the explicit path, meaningful only when HasPath is set.
	Path    string
	HasPath bool

	// Extra holds caller-defined options (view names, titles, ...).
	Extra map[string]any

	children DefineFunc
}

// RouteOption configures a route declaration.
type RouteOption func(*RouteOptions)

// Path sets the route's own path template. An empty template makes the
// route share its parent's path.
func Path(template string) RouteOption {
	return func(o *RouteOptions) {
		o.Path = template
		o.HasPath = true
	}
}

// Children declares nested routes.
func Children(define DefineFunc) RouteOption {
	return func(o *RouteOptions) {
		o.children = define
	}
}

// Extra stores a caller-defined option on the route. A string "path"
// value is treated like Path.
func Extra(key string, value any) RouteOption {
	return func(o *RouteOptions) {
		if key == "path" {
			if s, ok := value.(string); ok {
				Path(s)(o)
				return
			}
		}
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[key] = value
	}
}

// Options stores several caller-defined options, as with Extra.
func Options(opts map[string]any) RouteOption {
	return func(o *RouteOptions) {
		for k, v := range opts {
			Extra(k, v)(o)
		}
	}
}

// Get returns a caller-defined option.
func (o RouteOptions) Get(key string) (any, bool) {
	v, ok := o.Extra[key]
	return v, ok
}

// Parent returns the enclosing route, or nil for top-level routes.
func (r *Route) Parent() *Route {
	return r.parent
}

// IsIndex reports whether the route is named "index" or "<x>.index".
func (r *Route) IsIndex() bool {
	return isIndexName(r.Name)
}

// QualifiedName joins the names of the route's ancestors and its own
// name with ".": "application.status".
func (r *Route) QualifiedName() string {
	chain := r.Chain()
	names := make([]string, len(chain))
	for i, route := range chain {
		names[i] = route.Name
	}
	return strings.Join(names, ".")
}

// Chain returns the routes from the root down to r.
func (r *Route) Chain() []*Route {
	depth := 0
	for p := r; p != nil; p = p.parent {
		depth++
	}
	chain := make([]*Route, depth)
	for p := r; p != nil; p = p.parent {
		depth--
		chain[depth] = p
	}
	return chain
}

// FullPath returns the absolute path template: the non-empty own paths of
// the chain joined with "/".
func (r *Route) FullPath() string {
	chain := r.Chain()
	parts := make([]string, len(chain))
	for i, route := range chain {
		parts[i] = route.Path
	}
	return routepath.Join(parts...)
}

// Walk visits r and its descendants in depth-first pre-order.
func (r *Route) Walk(fn func(*Route)) {
	fn(r)
	for _, child := range r.Children {
		child.Walk(fn)
	}
}

func isIndexName(name string) bool {
	return name == "index" || strings.HasSuffix(name, ".index")
}
