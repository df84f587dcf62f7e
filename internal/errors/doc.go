// Package errors provides structured, actionable error values for routetree.
//
// Every error carries a stable code (e.g. "R001") that maps to a registered
// template with a short message, a category and a documentation link.
// Callers compare errors with the standard library's errors.Is: two errors
// are considered equal when their codes match, so exported sentinels such as
// router.ErrUnknownRoute match any error built from the same code.
//
// # Error Categories
//
//   - routing: route-map construction (duplicate names, ambiguous paths)
//   - generate: URL generation (missing parameters, unknown routes)
//   - lifecycle: router state preconditions (listen, destroy)
//   - pattern: path template compilation
//   - config: route-map files and environment settings
//
// # Usage
//
//	err := errors.New(errors.CodeUnknownRoute).
//	    WithDetail(`"settings"`).
//	    WithSuggestion("Check the route name against `routetree routes`")
//
//	fmt.Println(err)          // unknown route: "settings"
//	fmt.Print(err.Format())   // colored multi-line report for terminals
package errors
