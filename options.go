package regionrunner

import (
	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/logging"
)

type options struct {
	logger          core.Logger
	metrics         core.Metrics
	interceptor     core.Interceptor
	relocationCheck bool
}

// Option configures New.
type Option func(*options)

func defaultOptions() options {
	return options{relocationCheck: true}
}

// WithLogger sets the logger. Defaults to an info-level console logger.
func WithLogger(l core.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to core.NilMetrics.
func WithMetrics(m core.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithInterceptor wraps every execution of caller work.
func WithInterceptor(i core.Interceptor) Option {
	return func(o *options) { o.interceptor = i }
}

// WithRelocationCheck enables or disables the relocation warning.
func WithRelocationCheck(enabled bool) Option {
	return func(o *options) { o.relocationCheck = enabled }
}

func (o options) config() *core.Config {
	logger := o.logger
	if logger == nil {
		logger = logging.NewConsole("info")
	}
	return (&core.Config{
		Logger:      logger,
		Metrics:     o.metrics,
		Interceptor: o.interceptor,
	}).Normalize()
}
