package sim

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/Swind/go-region-runner/core"
)

const (
	faultBurst    = 10
	faultInterval = time.Second
)

// faultReporter forwards recovered panics to a FaultHandler or the logger.
// Bursts beyond the limit are counted and summarised with the next report
// that gets through.
type faultReporter struct {
	handler    FaultHandler
	logger     core.Logger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

func newFaultReporter(opts Options) *faultReporter {
	return &faultReporter{
		handler: opts.FaultHandler,
		logger:  opts.Logger,
		limiter: rate.NewLimiter(rate.Every(faultInterval), faultBurst),
	}
}

func (r *faultReporter) Report(thread string, taskID int, panicInfo any, stackTrace []byte) {
	if !r.limiter.Allow() {
		r.suppressed.Add(1)
		return
	}
	if n := r.suppressed.Swap(0); n > 0 {
		r.logger.Warn("task faults suppressed", core.F("thread", thread), core.F("count", n))
	}
	if r.handler != nil {
		r.handler(thread, taskID, panicInfo, stackTrace)
		return
	}
	r.logger.Error("task panicked",
		core.F("thread", thread),
		core.F("task_id", taskID),
		core.F("panic", panicInfo),
		core.F("stack", string(stackTrace)),
	)
}

// Suppressed returns how many reports are waiting to be summarised.
func (r *faultReporter) Suppressed() int64 {
	return r.suppressed.Load()
}
