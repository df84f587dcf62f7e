package router

// Middleware runs during a transition to a matched route. The router only
// stores middleware; running it is up to the transition engine, which can
// use Compose.
type Middleware interface {
	// Handle processes the transition and optionally calls next.
	// Return an error to abort the transition.
	// Return nil without calling next to stop the chain without error.
	Handle(m *Match, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(m *Match, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(m *Match, next func() error) error {
	return f(m, next)
}

// Compose runs mw in order (first to last) with final at the end.
func Compose(m *Match, mw []Middleware, final func() error) error {
	if len(mw) == 0 {
		return final()
	}

	chain := final
	for i := len(mw) - 1; i >= 0; i-- {
		h := mw[i]
		next := chain
		chain = func() error {
			return h.Handle(m, next)
		}
	}

	return chain()
}

// Chain combines middleware into one, run in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(m *Match, next func() error) error {
		return Compose(m, middleware, next)
	})
}

// Skip bypasses mw for transitions where condition holds.
func Skip(condition func(m *Match) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(m *Match, next func() error) error {
		if condition(m) {
			return next()
		}
		return mw.Handle(m, next)
	})
}

// Only runs mw only for transitions where condition holds.
func Only(condition func(m *Match) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(m *Match, next func() error) error {
		if !condition(m) {
			return next()
		}
		return mw.Handle(m, next)
	})
}
