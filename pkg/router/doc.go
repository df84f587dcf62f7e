// Package router compiles nested route declarations into an ordered list of
// path matchers, and resolves paths to route chains and route names back to
// paths.
//
// # Route Maps
//
// Routes are declared with a definition function that receives a Builder.
// Nesting is expressed with the Children option:
//
//	r := router.New()
//	err := r.Map(func(b *router.Builder) {
//	    b.Route("application", router.Children(func(b *router.Builder) {
//	        b.Route("home", router.Path(""))
//	        b.Route("notifications")
//	        b.Route("status", router.Path(":user/status/:id"))
//	    }))
//	})
//
// A route without an explicit path uses its name as its path, except routes
// named "index" (or ending in ".index") which share their parent's path.
// Every leaf route gets one Matcher, in depth-first declaration order. A
// parent is reached through its index or empty-path child, so "/application"
// resolves to the chain application, home:
//
//	/application
//	/application/notifications
//	/application/:user/status/:id
//
// # Matching
//
// Match returns the first matcher whose template fits the path exactly,
// with decoded parameters and the decoded query string:
//
//	m := r.Match("/application/KidkArolis/status/42?withReplies=true")
//	// m.Params["user"] == "KidkArolis"
//	// m.Query.Get("withReplies") == "true", true
//	// m.Routes names: application, status
//
// # Generating
//
// Generate requires Listen to have been called. Parameters are passed as a
// single mapping, or positionally with an optional trailing mapping:
//
//	r.Listen()
//	r.Generate("status", router.Params{"user": "foo", "id": 1,
//	    "queryParams": router.Params{"withReplies": true}})
//	r.Generate("status", "foo", 1, router.Params{
//	    "queryParams": router.Params{"withReplies": true}})
//	// both: "#application/foo/status/1?withReplies=true"
package router
