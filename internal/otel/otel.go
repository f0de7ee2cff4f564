// Package otel turns lifecycle events into OpenTelemetry spans.
package otel

import (
	"context"
	"strconv"
	"sync"
	"time"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	reqid "github.com/hanpama/bookgraph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentationName = "github.com/hanpama/bookgraph"

// Setup exports spans over OTLP/gRPC to endpoint and subscribes a tracer to
// bus. If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, bus *eventbus.Bus, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Trace(bus, tp.Tracer(instrumentationName))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Trace subscribes tracer to the lifecycle events on bus. Spans are
// correlated by request scope: GraphQL operations are children of their HTTP
// request, and store writes are children of the operation that caused them.
func Trace(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // reqid scope -> trace.Span
	gqlSpans  sync.Map // reqid scope -> trace.Span
}

// parent returns ctx carrying the innermost open span of the request.
func (s *subscriber) parent(ctx context.Context, scope any, maps ...*sync.Map) context.Context {
	if scope == nil {
		return ctx
	}
	for _, m := range maps {
		if v, ok := m.Load(scope); ok {
			return trace.ContextWithSpan(ctx, v.(trace.Span))
		}
	}
	return ctx
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	unsubs := []func(){
		eventbus.On(bus, func(ctx context.Context, e events.HTTPStart) {
			scope, ok := reqid.Scope(ctx)
			if !ok {
				return
			}
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
				attribute.String("http.request_id", rid),
			)
			s.httpSpans.Store(scope, span)
		}),

		eventbus.On(bus, func(ctx context.Context, e events.HTTPFinish) {
			scope, _ := reqid.Scope(ctx)
			v, ok := s.httpSpans.LoadAndDelete(scope)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			if e.Status >= 500 {
				span.SetStatus(codes.Error, strconv.Itoa(e.Status))
			}
			span.End()
		}),

		eventbus.On(bus, func(ctx context.Context, e events.GraphQLStart) {
			scope, ok := reqid.Scope(ctx)
			if !ok {
				return
			}
			_, span := s.tracer.Start(s.parent(ctx, scope, &s.httpSpans), "graphql.operation")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
			)
			s.gqlSpans.Store(scope, span)
		}),

		eventbus.On(bus, func(ctx context.Context, e events.GraphQLFinish) {
			scope, _ := reqid.Scope(ctx)
			v, ok := s.gqlSpans.LoadAndDelete(scope)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
			if len(e.Errors) > 0 {
				span.SetStatus(codes.Error, e.Errors[0])
			}
			span.End()
		}),

		// Store writes are reported after the fact, so the span is
		// backdated by the write duration.
		eventbus.On(bus, func(ctx context.Context, e events.StoreWrite) {
			scope, _ := reqid.Scope(ctx)
			end := time.Now()
			_, span := s.tracer.Start(s.parent(ctx, scope, &s.gqlSpans, &s.httpSpans), "store.write",
				trace.WithTimestamp(end.Add(-e.Duration)))
			span.SetAttributes(
				attribute.String("store.entity", e.Entity),
				attribute.Int("store.id", e.ID),
			)
			span.End(trace.WithTimestamp(end))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
