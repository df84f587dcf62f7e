// Package dev provides the route preview server used by `routetree serve`.
//
// The server loads a route map, keeps a listening router for it and
// exposes it over HTTP and WebSocket:
//
//	GET /routes              matcher table
//	GET /match?path=...      resolve a path
//	GET /generate/{name}     build a URL (?arg=..., ?user=..., ?query.page=...)
//	GET /metrics             Prometheus metrics
//	GET /ws                  live channel
//
// # Live Channel
//
// Clients send match and generate requests as JSON messages and receive
// the answers on the same connection:
//
//	-> {"type": "match", "id": "1", "path": "/application/42"}
//	<- {"type": "match", "id": "1", "match": {...}}
//
// When the route map file changes the server rebuilds the router and
// pushes {"type": "reload"} to every client, or {"type": "error"} when
// the new map is invalid. The previous router stays active in that case.
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{
//	    Routes: "routes.json",
//	    Addr:   "localhost:4040",
//	    Watch:  true,
//	})
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package dev
