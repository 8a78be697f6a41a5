package main

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanCounter is a span processor that only counts. The demo has no trace
// backend; the counts end up in the status report.
type spanCounter struct {
	ended  atomic.Int64
	failed atomic.Int64
}

var _ sdktrace.SpanProcessor = (*spanCounter)(nil)

func (c *spanCounter) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (c *spanCounter) OnEnd(s sdktrace.ReadOnlySpan) {
	c.ended.Add(1)
	if s.Status().Code == codes.Error {
		c.failed.Add(1)
	}
}

func (c *spanCounter) Shutdown(context.Context) error   { return nil }
func (c *spanCounter) ForceFlush(context.Context) error { return nil }
