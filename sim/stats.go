package sim

// ThreadStats is a snapshot of one tick thread.
type ThreadStats struct {
	Name     string
	Tick     int64
	Pending  int
	Executed int64
	Panics   int64
	Running  bool
}

// PoolStats is a snapshot of the async pool.
type PoolStats struct {
	ID       string
	Workers  int
	Queued   int
	Active   int
	Delayed  int
	Executed int64
	Panics   int64
	Running  bool
}

// StatsSource is implemented by both simulated servers.
type StatsSource interface {
	ThreadStats() []ThreadStats
	PoolStats() PoolStats
}
