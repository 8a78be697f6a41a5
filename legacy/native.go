package legacy

import "github.com/Swind/go-region-runner/host"

// nativeTask adapts a host.LegacyTask to core.NativeHandle. Legacy handles
// do not know whether they repeat or are running, so the adapter carries
// the submission flag and asks the scheduler.
type nativeTask struct {
	task      host.LegacyTask
	scheduler host.LegacyScheduler
	repeating bool
}

func (n *nativeTask) Cancel()           { n.task.Cancel() }
func (n *nativeTask) IsCancelled() bool { return n.task.IsCancelled() }
func (n *nativeTask) IsRepeating() bool { return n.repeating }

func (n *nativeTask) IsRunning() bool {
	return n.scheduler.IsCurrentlyRunning(n.task.TaskID())
}
