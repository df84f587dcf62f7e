package router

import (
	"log/slog"
	"strings"

	rterrors "github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/routepath"
)

// State is the router lifecycle state.
type State int

const (
	StateUnconfigured State = iota
	StateConfigured
	StateListening
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateListening:
		return "listening"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// DefaultAnchor prefixes generated URLs.
const DefaultAnchor = "#"

// Router holds a route map, its matchers and registered middleware.
// A Router is not safe for concurrent use.
type Router struct {
	anchor    string
	canonical bool
	logger    *slog.Logger

	state      State
	middleware []Middleware
	routes     []*Route
	matchers   Matchers
}

// Option configures a Router.
type Option func(*Router)

// WithAnchor sets the prefix of generated URLs. The default is "#"; use
// "/" for history-style URLs.
func WithAnchor(anchor string) Option {
	return func(r *Router) {
		r.anchor = anchor
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCanonicalPaths makes Match clean paths before matching: repeated
// slashes collapse, "." and ".." segments resolve and the trailing slash
// is dropped. Paths that cannot be cleaned do not match.
func WithCanonicalPaths() Option {
	return func(r *Router) {
		r.canonical = true
	}
}

// New creates an unconfigured router.
func New(opts ...Option) *Router {
	r := &Router{
		anchor: DefaultAnchor,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use registers middleware.
func (r *Router) Use(mw ...Middleware) error {
	if r.state == StateDestroyed {
		return r.destroyedError("use")
	}
	r.middleware = append(r.middleware, mw...)
	return nil
}

// Map declares routes. It may be called more than once; route names must
// be unique across all calls. A failing call leaves the router unchanged.
func (r *Router) Map(define DefineFunc) error {
	if r.state == StateDestroyed {
		return r.destroyedError("map")
	}

	routes, matchers, err := build(define, r.routes)
	if err != nil {
		r.logger.Debug("route map rejected", "error", err)
		return err
	}

	r.routes = append(r.routes, routes...)
	r.matchers = append(r.matchers, matchers...)
	if r.state == StateUnconfigured {
		r.state = StateConfigured
	}

	r.logger.Debug("routes mapped",
		"routes", len(routes),
		"matchers", len(matchers),
		"total_matchers", len(r.matchers))
	return nil
}

// Listen enables URL generation.
func (r *Router) Listen() error {
	if r.state == StateDestroyed {
		return r.destroyedError("listen")
	}
	r.state = StateListening
	r.logger.Debug("router listening", "matchers", len(r.matchers))
	return nil
}

// Match resolves a path, which may carry a leading "#" and a query
// string. It returns nil when no route matches.
func (r *Router) Match(path string) *Match {
	if r.canonical {
		clean, err := routepath.Clean(routepath.TrimFragment(path))
		if err != nil {
			r.logger.Debug("path rejected", "path", path, "error", err)
			return nil
		}
		path = clean
	}
	return r.matchers.Match(path)
}

// Generate builds a URL for the named route. See Matchers.Generate for
// the accepted arguments. The result starts with the anchor:
// "#application/foo/status/1?withReplies=true".
func (r *Router) Generate(name string, args ...any) (string, error) {
	switch r.state {
	case StateDestroyed:
		return "", r.destroyedError("generate")
	case StateListening:
	default:
		return "", rterrors.New(rterrors.CodeInvariantViolation)
	}

	path, err := r.matchers.Generate(name, args...)
	if err != nil {
		return "", err
	}
	return r.anchor + strings.TrimPrefix(path, "/"), nil
}

// URL is an alias for Generate.
func (r *Router) URL(name string, args ...any) (string, error) {
	return r.Generate(name, args...)
}

// IsActive reports whether path matches a chain containing the named
// route. It backs active-link styling.
func (r *Router) IsActive(path, name string) bool {
	m := r.Match(path)
	return m != nil && m.Includes(name)
}

// Destroy releases all routes, matchers and middleware. Use, Map, Listen
// and Generate fail afterwards.
func (r *Router) Destroy() {
	r.middleware = nil
	r.routes = nil
	r.matchers = nil
	r.state = StateDestroyed
	r.logger.Debug("router destroyed")
}

// State returns the lifecycle state.
func (r *Router) State() State {
	return r.state
}

// Anchor returns the prefix of generated URLs.
func (r *Router) Anchor() string {
	return r.anchor
}

// Routes returns the top-level routes.
func (r *Router) Routes() []*Route {
	return append([]*Route(nil), r.routes...)
}

// Matchers returns the matchers in registration order.
func (r *Router) Matchers() Matchers {
	return append(Matchers(nil), r.matchers...)
}

// Middleware returns the registered middleware in order.
func (r *Router) Middleware() []Middleware {
	return append([]Middleware(nil), r.middleware...)
}

func (r *Router) destroyedError(op string) error {
	return rterrors.New(rterrors.CodeDestroyed).WithDetailf("cannot %s", op)
}
