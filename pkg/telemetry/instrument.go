package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/routetree/pkg/router"
)

// Default tracer name.
const defaultTracerName = "routetree"

// Resolver matches paths and generates URLs. *router.Router implements it.
type Resolver interface {
	Match(path string) *router.Match
	Generate(name string, args ...any) (string, error)
}

// Option configures Instrument and Tracing.
type Option func(*config)

type config struct {
	metrics    *Metrics
	tracerName string
	tracer     trace.Tracer
}

// WithMetrics records metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTracerName sets the name of the tracer taken from the global
// provider (default: "routetree").
func WithTracerName(name string) Option {
	return func(c *config) {
		c.tracerName = name
	}
}

// WithTracer uses tracer instead of one from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

func newConfig(opts []Option) config {
	c := config{tracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(c.tracerName)
	}
	return c
}

// Instrumented is a Resolver that records metrics and spans.
type Instrumented struct {
	resolver Resolver
	config   config
}

// Instrument wraps r.
func Instrument(r Resolver, opts ...Option) *Instrumented {
	return &Instrumented{resolver: r, config: newConfig(opts)}
}

// Match implements Resolver.
func (i *Instrumented) Match(path string) *router.Match {
	return i.MatchContext(context.Background(), path)
}

// MatchContext matches path inside a "routetree.match" span.
func (i *Instrumented) MatchContext(ctx context.Context, path string) *router.Match {
	_, span := i.config.tracer.Start(ctx, "routetree.match",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("routetree.path", path)),
	)
	defer span.End()

	start := time.Now()
	m := i.resolver.Match(path)
	if i.config.metrics != nil {
		i.config.metrics.ObserveMatch(m, time.Since(start))
	}

	if m == nil {
		span.SetAttributes(attribute.Bool("routetree.matched", false))
		return nil
	}
	span.SetAttributes(
		attribute.Bool("routetree.matched", true),
		attribute.String("routetree.route", m.Route().Name),
		attribute.String("routetree.template", m.Matcher.Path),
	)
	return m
}

// Generate implements Resolver.
func (i *Instrumented) Generate(name string, args ...any) (string, error) {
	return i.GenerateContext(context.Background(), name, args...)
}

// GenerateContext generates a URL inside a "routetree.generate" span.
func (i *Instrumented) GenerateContext(ctx context.Context, name string, args ...any) (string, error) {
	_, span := i.config.tracer.Start(ctx, "routetree.generate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("routetree.route", name)),
	)
	defer span.End()

	url, err := i.resolver.Generate(name, args...)
	if i.config.metrics != nil {
		i.config.metrics.ObserveGenerate(name, err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("routetree.url", url))
	span.SetStatus(codes.Ok, "")
	return url, nil
}

// Tracing returns middleware that wraps each transition in a
// "routetree.transition" span, started from parent.
func Tracing(parent context.Context, opts ...Option) router.Middleware {
	c := newConfig(opts)
	if parent == nil {
		parent = context.Background()
	}

	return router.MiddlewareFunc(func(m *router.Match, next func() error) error {
		attrs := []attribute.KeyValue{}
		if m != nil {
			attrs = append(attrs,
				attribute.String("routetree.path", m.Path),
				attribute.StringSlice("routetree.routes", m.Names()),
			)
		}

		_, span := c.tracer.Start(parent, "routetree.transition",
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}
