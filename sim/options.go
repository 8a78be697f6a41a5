package sim

import (
	"time"

	"github.com/Swind/go-region-runner/core"
)

const (
	// DefaultRegionShift groups 8x8 chunks into one region.
	DefaultRegionShift = 3

	// DefaultAsyncWorkers is the async pool size when Options.AsyncWorkers is zero.
	DefaultAsyncWorkers = 4

	defaultHistoryCapacity = 100
)

// FaultHandler receives panics recovered from tasks.
//
// Parameters:
// - thread: The name of the thread or pool the task ran on
// - taskID: The host task id
// - panicInfo: The recovered panic value
// - stackTrace: The stack trace at the time of panic
type FaultHandler func(thread string, taskID int, panicInfo any, stackTrace []byte)

// Options configures a simulated server.
type Options struct {
	// Name is reported by Server.Name. Defaults to "sim".
	Name string

	// Tick is the wall-clock tick interval. Zero means threads advance only
	// when Step is called.
	Tick time.Duration

	// RegionShift is the number of chunk bits grouped into one region.
	RegionShift int

	// AsyncWorkers is the async pool size.
	AsyncWorkers int

	// Logger receives fault reports when FaultHandler is nil. Defaults to
	// core.NoOpLogger.
	Logger core.Logger

	// FaultHandler receives recovered panics. Reports are rate limited.
	FaultHandler FaultHandler

	// HistoryCapacity bounds the per-thread execution history.
	HistoryCapacity int
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "sim"
	}
	if o.Tick < 0 {
		o.Tick = 0
	}
	if o.RegionShift <= 0 {
		o.RegionShift = DefaultRegionShift
	}
	if o.AsyncWorkers <= 0 {
		o.AsyncWorkers = DefaultAsyncWorkers
	}
	if o.Logger == nil {
		o.Logger = core.NewNoOpLogger()
	}
	if o.HistoryCapacity <= 0 {
		o.HistoryCapacity = defaultHistoryCapacity
	}
	return o
}

// ticksToDuration converts host ticks to wall-clock time for the async pool.
func ticksToDuration(ticks int64) time.Duration {
	if ticks < 0 {
		ticks = 0
	}
	return core.Ticks(ticks).Duration()
}
