package regionized

import (
	"github.com/Swind/go-region-runner/core"
	"github.com/Swind/go-region-runner/host"
)

// nativeTask adapts a host.ScheduledTask to core.NativeHandle.
type nativeTask struct {
	task host.ScheduledTask
}

func wrapNative(st host.ScheduledTask) core.NativeHandle {
	if st == nil {
		return nil
	}
	return &nativeTask{task: st}
}

func (n *nativeTask) Cancel()           { n.task.Cancel() }
func (n *nativeTask) IsCancelled() bool { return n.task.IsCancelled() }
func (n *nativeTask) IsRepeating() bool { return n.task.IsRepeating() }

func (n *nativeTask) IsRunning() bool {
	s := n.task.ExecutionState()
	return s == host.StateRunning || s == host.StateCancelledRunning
}
