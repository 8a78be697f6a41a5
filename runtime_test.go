package regionrunner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
	"github.com/Swind/go-region-runner/sim"
)

var testOwner = sim.NewPlugin("runtime-test", "example.com/runtimetest", "alice", "bob")

// recordingLogger keeps every message for inspection.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *recordingLogger) Debug(msg string, _ ...core.Field) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...core.Field)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...core.Field)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...core.Field) { l.record("error", msg) }

func (l *recordingLogger) count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// bareServer exposes no scheduler at all.
type bareServer struct{}

func (bareServer) Name() string    { return "bare" }
func (bareServer) Version() string { return "0" }

// markerOnlyServer looks region-parallel but has no region schedulers.
type markerOnlyServer struct{ bareServer }

func (markerOnlyServer) IsOwnedByCurrentRegion(context.Context, host.Location) bool { return false }

func quiet() Option { return WithLogger(core.NewNoOpLogger()) }

func awaitTask(t *testing.T, task *Task) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := task.Future().Await(ctx); err != nil {
		t.Fatalf("Await() error = %v", err)
	}
}

// TestDetect verifies model detection by capability probing
// Given: A regionized, a legacy and a bare server
// When: Detect is called
// Then: Only the server carrying the region marker is regionized
func TestDetect(t *testing.T) {
	rs := sim.NewRegionizedServer(sim.Options{})
	defer rs.Stop()
	ls := sim.NewLegacyServer(sim.Options{})
	defer ls.Stop()

	tests := []struct {
		name   string
		server host.Server
		want   Model
	}{
		{"regionized", rs, ModelRegionized},
		{"legacy", ls, ModelLegacy},
		{"bare", bareServer{}, ModelLegacy},
		{"marker only", markerOnlyServer{}, ModelRegionized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.server); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNew_SelectsFamily verifies the bound family follows the host model
// Given: A regionized and a legacy server
// When: New is called for each
// Then: The global scheduler is backed by the matching native scheduler
func TestNew_SelectsFamily(t *testing.T) {
	rs := sim.NewRegionizedServer(sim.Options{})
	defer rs.Stop()
	ls := sim.NewLegacyServer(sim.Options{})
	defer ls.Stop()

	tests := []struct {
		server  host.Server
		model   Model
		backend string
	}{
		{rs, ModelRegionized, "regionized.global"},
		{ls, ModelLegacy, "legacy.sync"},
	}
	for _, tt := range tests {
		rt, err := New(testOwner, tt.server, quiet())
		if err != nil {
			t.Fatalf("New(%s) error = %v", tt.server.Version(), err)
		}
		if rt.Model() != tt.model {
			t.Errorf("Model() = %v, want %v", rt.Model(), tt.model)
		}
		if got := rt.Global().Backend(); got != tt.backend {
			t.Errorf("Global().Backend() = %q, want %q", got, tt.backend)
		}
		if rt.Owner() != host.Plugin(testOwner) || rt.Server() != tt.server {
			t.Error("Owner()/Server() not retained")
		}
	}
}

// TestNew_Errors verifies initialization failures
// Given: Missing arguments or servers without a usable scheduler
// When: New is called
// Then: The error wraps ErrInitialization and no runtime is returned
func TestNew_Errors(t *testing.T) {
	srv := sim.NewLegacyServer(sim.Options{})
	defer srv.Stop()

	tests := []struct {
		name   string
		owner  host.Plugin
		server host.Server
	}{
		{"nil owner", nil, srv},
		{"nil server", testOwner, nil},
		{"no scheduler", testOwner, bareServer{}},
		{"partial regionized", testOwner, markerOnlyServer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := New(tt.owner, tt.server, quiet())
			if !errors.Is(err, ErrInitialization) {
				t.Fatalf("New() error = %v, want ErrInitialization", err)
			}
			if rt != nil {
				t.Fatal("New() returned a runtime alongside an error")
			}
		})
	}
}

// TestNew_LogsSelection verifies the selected family is logged
// Given: A recording logger and the relocation check disabled
// When: New succeeds
// Then: One info entry is written and no warnings
func TestNew_LogsSelection(t *testing.T) {
	srv := sim.NewLegacyServer(sim.Options{})
	defer srv.Stop()
	logger := &recordingLogger{}

	if _, err := New(testOwner, srv, WithLogger(logger), WithRelocationCheck(false)); err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := logger.count("info scheduler family selected"); got != 1 {
		t.Errorf("selection logged %d times, want 1", got)
	}
	if got := logger.count("warn"); got != 0 {
		t.Errorf("warnings = %d, want 0", got)
	}
}

// TestRelocationCheck verifies the relocation warning
// Given: The published path and a relocated path
// When: checkRelocation runs
// Then: Only the published path warns, naming the authors as well
func TestRelocationCheck(t *testing.T) {
	logger := &recordingLogger{}
	if !checkRelocation(testOwner, logger, canonicalPath) {
		t.Fatal("checkRelocation(canonical) = false, want true")
	}
	if got := logger.count("warn"); got != 2 {
		t.Errorf("warnings = %d, want 2", got)
	}

	logger = &recordingLogger{}
	if checkRelocation(testOwner, logger, "example.com/runtimetest/internal/regionrunner") {
		t.Fatal("checkRelocation(relocated) = true, want false")
	}
	if got := logger.count("warn"); got != 0 {
		t.Errorf("warnings = %d, want 0", got)
	}

	// an owner without a description gets only the first warning
	logger = &recordingLogger{}
	checkRelocation(struct{ host.Plugin }{testOwner}, logger, canonicalPath)
	if got := logger.count("warn"); got != 1 {
		t.Errorf("warnings without description = %d, want 1", got)
	}
}

// TestRuntime_RegionOverloads verifies every region lookup form
// Given: A location, a block and a chunk inside the same region
// When: Work is scheduled through each overload
// Then: All run on that region's thread and see themselves as owners
func TestRuntime_RegionOverloads(t *testing.T) {
	// Arrange
	srv := sim.NewRegionizedServer(sim.Options{RegionShift: 3})
	defer srv.Stop()
	rt, err := New(testOwner, srv, quiet())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	world := sim.NewWorld("world")
	loc := host.Location{World: world, X: 20, Z: 40}
	block := host.Block{World: world, X: 100, Z: 3}
	chunk := host.Chunk{World: world, X: 7, Z: 7}

	var mu sync.Mutex
	var threads []string
	var owned []bool
	work := Do(func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		threads = append(threads, sim.CurrentThread(ctx).Name())
		owned = append(owned,
			rt.IsOwnedByCurrentRegion(ctx, loc) &&
				rt.IsBlockOwnedByCurrentRegion(ctx, block) &&
				rt.IsChunkOwnedByCurrentRegion(ctx, world, chunk.X, chunk.Z) &&
				rt.IsChunkOwnedByCurrentRegionRadius(ctx, world, 3, 3, 2) &&
				!rt.IsChunkOwnedByCurrentRegion(ctx, world, 8, 0))
	})

	// Act
	tasks := []*Task{
		rt.RegionAt(loc).Run(work),
		rt.RegionOfBlock(block).Run(work),
		rt.RegionOfChunk(chunk).Run(work),
		rt.Region(world, 0, 0).Run(work),
	}
	srv.Step() // creates the region
	srv.Step()
	for _, task := range tasks {
		awaitTask(t, task)
	}

	// Assert
	mu.Lock()
	defer mu.Unlock()
	for i, name := range threads {
		if name != "region[world 0,0]" {
			t.Errorf("thread[%d] = %q, want region[world 0,0]", i, name)
		}
		if !owned[i] {
			t.Errorf("ownership[%d] = false, want true", i)
		}
	}
	if len(threads) != len(tasks) {
		t.Fatalf("ran %d tasks, want %d", len(threads), len(tasks))
	}
}

// TestRuntime_LegacyOwnsEverything verifies the single-thread collapse
// Given: A legacy runtime
// When: Ownership is queried from the primary thread and from outside it
// Then: The primary thread owns every location and nothing else does
func TestRuntime_LegacyOwnsEverything(t *testing.T) {
	srv := sim.NewLegacyServer(sim.Options{})
	defer srv.Stop()
	rt, err := New(testOwner, srv, quiet())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	world := sim.NewWorld("world")
	far := host.Location{World: world, X: 1e6, Z: -1e6}

	var inside bool
	task := rt.RegionAt(far).Run(Do(func(ctx context.Context) {
		inside = rt.IsOwnedByCurrentRegionRadius(ctx, far, 16)
	}))
	srv.Step()
	awaitTask(t, task)

	if !inside {
		t.Error("primary thread should own every location")
	}
	if rt.IsOwnedByCurrentRegion(context.Background(), far) {
		t.Error("a non-tick goroutine should own nothing")
	}
}

// TestRuntime_NilWorldPanics verifies nil worlds are rejected
// Given: A runtime
// When: A region is requested for a nil world
// Then: The call panics
func TestRuntime_NilWorldPanics(t *testing.T) {
	srv := sim.NewLegacyServer(sim.Options{})
	defer srv.Stop()
	rt, err := New(testOwner, srv, quiet())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Region(nil) did not panic")
		}
	}()
	rt.Region(nil, 0, 0)
}

// TestRuntime_CancelTasks verifies bulk cancellation through the facade
// Given: A pending global task
// When: CancelTasks is called before the next tick
// Then: The task never runs
func TestRuntime_CancelTasks(t *testing.T) {
	srv := sim.NewRegionizedServer(sim.Options{})
	defer srv.Stop()
	rt, err := New(testOwner, srv, quiet())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ran := false
	task := rt.Global().RunDelayed(Do(func(context.Context) { ran = true }), 2)
	rt.CancelTasks()
	srv.Step()
	srv.Step()

	if ran {
		t.Error("cancelled task ran")
	}
	if !task.IsCancelled() {
		t.Error("IsCancelled() = false after CancelTasks")
	}
}

// TestRuntime_TeleportAsync verifies teleport completion
// Given: An entity in a regionized world
// When: TeleportAsync is requested and the server ticks
// Then: The future completes true and the entity moved
func TestRuntime_TeleportAsync(t *testing.T) {
	srv := sim.NewRegionizedServer(sim.Options{})
	defer srv.Stop()
	rt, err := New(testOwner, srv, quiet())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	world := sim.NewWorld("world")
	e := sim.NewEntity(host.Location{World: world})
	to := host.Location{World: world, X: 500}

	future := rt.TeleportAsync(e, to)
	for range 3 {
		srv.Step()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ok, err := future.Await(ctx)
	if err != nil || !ok {
		t.Fatalf("Await() = %v, %v; want true, nil", ok, err)
	}
	if got := e.Location().X; got != 500 {
		t.Errorf("entity X = %v, want 500", got)
	}
}
