// Package tracing wraps task executions in OpenTelemetry spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Swind/go-region-runner/core"
)

const tracerName = "github.com/Swind/go-region-runner"

// SpanName is the name of every execution span.
const SpanName = "regionrunner.task.execute"

// Interceptor returns a core.Interceptor using the global tracer provider.
// Without a configured provider the noop tracer makes it a pass-through.
func Interceptor() core.Interceptor {
	return InterceptorWithTracer(otel.Tracer(tracerName))
}

// InterceptorWithTracer returns a core.Interceptor using tracer.
//
// Span attributes: regionrunner.task.id (absent for fire-and-forget actions),
// regionrunner.owner, regionrunner.scope, regionrunner.backend,
// regionrunner.repeating. A panic marks the span as an error and keeps
// propagating.
func InterceptorWithTracer(tracer trace.Tracer) core.Interceptor {
	return func(ctx context.Context, info core.TaskInfo, next func(ctx context.Context)) {
		attrs := []attribute.KeyValue{
			attribute.String("regionrunner.owner", info.Owner),
			attribute.String("regionrunner.scope", info.Scope.String()),
			attribute.String("regionrunner.backend", info.Backend),
			attribute.Bool("regionrunner.repeating", info.Repeating),
		}
		if !info.ID.IsZero() {
			attrs = append(attrs, attribute.String("regionrunner.task.id", info.ID.String()))
		}

		ctx, span := tracer.Start(ctx, SpanName,
			trace.WithAttributes(attrs...),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		completed := false
		defer func() {
			if !completed {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
					span.End()
					panic(rec)
				}
			}
			span.End()
		}()

		next(ctx)
		completed = true
		span.SetStatus(codes.Ok, "")
	}
}
