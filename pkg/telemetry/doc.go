// Package telemetry adds Prometheus metrics and OpenTelemetry tracing to
// route resolution.
//
// Instrument wraps anything that matches and generates (usually a
// *router.Router):
//
//	reg := prometheus.NewRegistry()
//	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	res := telemetry.Instrument(r,
//	    telemetry.WithMetrics(metrics),
//	    telemetry.WithTracerName("my-shell"),
//	)
//	m := res.MatchContext(ctx, "/application/42")
//
// Metrics collected:
//   - routetree_matches_total: matches by route and result (hit, miss)
//   - routetree_match_duration_seconds: match latency
//   - routetree_generates_total: generations by route and result (ok or
//     the error code)
//
// Every Metrics value owns its collectors; nothing is registered on the
// global Prometheus registry unless asked for with WithRegistry.
//
// Tracing returns router middleware that wraps each transition in a span.
package telemetry
