package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	regionrunner "github.com/Swind/go-region-runner"
	"github.com/Swind/go-region-runner/config"
	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
	"github.com/Swind/go-region-runner/logging"
	obs "github.com/Swind/go-region-runner/observability/prometheus"
	"github.com/Swind/go-region-runner/observability/tracing"
	"github.com/Swind/go-region-runner/sim"
)

// simServer is the surface shared by both simulated hosts.
type simServer interface {
	host.Server
	sim.StatsSource
	Step()
	Stop()
}

func newServer(hc config.HostConfig, logger core.Logger) (simServer, error) {
	opts, err := hc.Options(logger)
	if err != nil {
		return nil, err
	}
	switch hc.Model {
	case config.ModelLegacy:
		return sim.NewLegacyServer(opts), nil
	case config.ModelRegionized:
		return sim.NewRegionizedServer(opts), nil
	default:
		return nil, fmt.Errorf("unknown host model %q", hc.Model)
	}
}

// demo owns everything a run needs and tears it down in reverse order.
type demo struct {
	cfg     *config.Config
	logger  *logging.Logger
	server  simServer
	manual  bool
	rt      *regionrunner.Runtime
	spans   *spanCounter
	tp      *sdktrace.TracerProvider
	reg     *prom.Registry
	poller  *obs.SnapshotPoller
	metrics *http.Server
}

func newDemo(cfg *config.Config) (*demo, error) {
	logger, err := logging.New(cfg.Log.Logging())
	if err != nil {
		return nil, err
	}
	d := &demo{cfg: cfg, logger: logger, spans: &spanCounter{}}

	d.server, err = newServer(cfg.Host, logger.With(core.F("component", "sim")))
	if err != nil {
		d.Close()
		return nil, err
	}
	opts, _ := cfg.Host.Options(nil)
	d.manual = opts.Tick == 0

	d.tp = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(d.spans),
	)
	otel.SetTracerProvider(d.tp)

	var metrics core.Metrics
	if cfg.Metrics.Enabled {
		d.reg = prom.NewRegistry()
		exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, d.reg, obs.ExporterOptions{})
		if err != nil {
			d.Close()
			return nil, err
		}
		metrics = exporter

		d.poller, err = obs.NewSnapshotPoller(cfg.Metrics.Namespace, d.reg, cfg.Metrics.PollEvery())
		if err != nil {
			d.Close()
			return nil, err
		}
		d.poller.AddServer(d.server.Name(), d.server)
	}

	owner := sim.NewPlugin(cfg.Runtime.Owner, cfg.Runtime.Package, cfg.Runtime.Authors...)
	d.rt, err = regionrunner.New(owner, d.server,
		regionrunner.WithLogger(logger.With(core.F("component", "runtime"))),
		regionrunner.WithMetrics(metrics),
		regionrunner.WithInterceptor(tracing.Interceptor()),
		regionrunner.WithRelocationCheck(cfg.Runtime.CheckRelocation()),
	)
	if err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Run serves metrics, starts the workload and blocks until ctx is done or
// w.Duration elapses.
func (d *demo) Run(ctx context.Context, w workload) error {
	if w.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Duration)
		defer cancel()
	}

	if d.reg != nil {
		d.serveMetrics()
		d.poller.Start(ctx)
	}

	state, err := w.start(d)
	if err != nil {
		return err
	}
	defer state.stop()

	if d.manual {
		go d.drive(ctx)
	}

	d.logger.Info("demo running",
		core.F("model", d.rt.Model().String()),
		core.F("entities", w.Entities),
		core.F("report", w.Report),
	)
	<-ctx.Done()
	d.logger.Info("demo stopping", core.F("spans", d.spans.ended.Load()))
	return nil
}

// drive steps a manually ticked server at the nominal tick rate.
func (d *demo) drive(ctx context.Context) {
	ticker := time.NewTicker(core.TickDuration)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.server.Step()
		case <-ctx.Done():
			return
		}
	}
}

func (d *demo) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(d.reg, promhttp.HandlerOpts{}))
	d.metrics = &http.Server{Addr: d.cfg.Metrics.Addr, Handler: mux}

	go func() {
		if err := d.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("metrics endpoint failed", core.F("addr", d.cfg.Metrics.Addr), core.Err(err))
		}
	}()
	d.logger.Info("metrics endpoint listening", core.F("addr", d.cfg.Metrics.Addr))
}

func (d *demo) Close() {
	if d.rt != nil {
		d.rt.CancelTasks()
	}
	if d.poller != nil {
		d.poller.Stop()
	}
	if d.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = d.metrics.Shutdown(ctx)
		cancel()
	}
	if d.server != nil {
		d.server.Stop()
	}
	if d.tp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = d.tp.Shutdown(ctx)
		cancel()
	}
	if d.logger != nil {
		_ = d.logger.Close()
	}
}
