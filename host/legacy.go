package host

import "context"

// LegacyServer is a host that ticks the whole world on one primary thread.
type LegacyServer interface {
	Server

	Scheduler() LegacyScheduler

	// IsPrimaryThread reports whether ctx belongs to a callback running on the
	// primary tick thread.
	IsPrimaryThread(ctx context.Context) bool
}

// LegacyScheduler is the native scheduler of a LegacyServer. All delays and
// periods are expressed in ticks.
type LegacyScheduler interface {
	RunTask(owner Plugin, fn func(ctx context.Context)) LegacyTask
	RunTaskLater(owner Plugin, fn func(ctx context.Context), delay int64) LegacyTask
	RunTaskTimer(owner Plugin, fn func(ctx context.Context), delay, period int64) LegacyTask

	RunTaskAsynchronously(owner Plugin, fn func(ctx context.Context)) LegacyTask
	RunTaskLaterAsynchronously(owner Plugin, fn func(ctx context.Context), delay int64) LegacyTask
	RunTaskTimerAsynchronously(owner Plugin, fn func(ctx context.Context), delay, period int64) LegacyTask

	IsCurrentlyRunning(taskID int) bool
	CancelTasks(owner Plugin)
}

// LegacyTask is the handle returned by a LegacyScheduler.
type LegacyTask interface {
	TaskID() int
	Owner() Plugin
	IsSync() bool
	IsCancelled() bool
	Cancel()
}

// AsyncTeleporter is an optional LegacyServer capability: an entity teleport
// that may be requested from any thread. done is invoked exactly once.
type AsyncTeleporter interface {
	TeleportAsync(e Entity, to Location, done func(ok bool))
}
