package sim

import (
	"context"
	"testing"

	"github.com/Swind/go-region-runner/host"
)

// TestTask_CancelStates verifies the cancel outcome for every state
// Given: Tasks in each execution state
// When: Cancel is called
// Then: The reported outcome and resulting state match the state machine
func TestTask_CancelStates(t *testing.T) {
	tests := []struct {
		name      string
		state     host.ExecutionState
		repeating bool
		want      host.CancelledState
		after     host.ExecutionState
	}{
		{"idle", host.StateIdle, false, host.CancelledByCaller, host.StateCancelled},
		{"running one-shot", host.StateRunning, false, host.StillRunning, host.StateRunning},
		{"running repeating", host.StateRunning, true, host.NextRunsCancelled, host.StateCancelledRunning},
		{"cancelled running", host.StateCancelledRunning, true, host.NextRunsCancelledAlready, host.StateCancelledRunning},
		{"finished", host.StateFinished, false, host.AlreadyExecuted, host.StateFinished},
		{"cancelled", host.StateCancelled, false, host.CancelledAlready, host.StateCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			tk := noopTask()
			tk.repeating = tt.repeating
			tk.state.Store(int32(tt.state))

			// Act
			got := tk.Cancel()

			// Assert
			if got != tt.want {
				t.Errorf("Cancel() = %d, want %d", got, tt.want)
			}
			if s := tk.ExecutionState(); s != tt.after {
				t.Errorf("state after Cancel() = %v, want %v", s, tt.after)
			}
		})
	}
}

// TestTask_RunTransitions verifies run moves one-shot and repeating tasks
// Given: A one-shot task and a repeating task
// When: Each runs once
// Then: The one-shot finishes and the repeating task returns to idle
func TestTask_RunTransitions(t *testing.T) {
	once := noopTask()
	if !once.run(context.Background()) {
		t.Fatal("run() should start an idle task")
	}
	if once.ExecutionState() != host.StateFinished || once.rearm() {
		t.Fatalf("one-shot state = %v", once.ExecutionState())
	}
	if once.run(context.Background()) {
		t.Fatal("a finished task must not run again")
	}

	rep := noopTask()
	rep.repeating = true
	rep.run(context.Background())
	if !rep.rearm() {
		t.Fatalf("repeating state = %v, want idle", rep.ExecutionState())
	}
}

// TestTask_CancelDuringRun verifies cancelling a repeating task from its own body
// Given: A repeating task that cancels itself while running
// When: It runs
// Then: It ends cancelled and is not re-armed
func TestTask_CancelDuringRun(t *testing.T) {
	tk := newTask(testOwner, func(ctx context.Context, self *task) { self.Cancel() })
	tk.repeating = true

	tk.run(context.Background())

	if tk.ExecutionState() != host.StateCancelled || tk.rearm() {
		t.Fatalf("state = %v, want cancelled", tk.ExecutionState())
	}
	if !tk.IsCancelled() {
		t.Fatal("IsCancelled() = false")
	}
}

// TestLegacyTask_View verifies the legacy handle
func TestLegacyTask_View(t *testing.T) {
	tk := noopTask()
	tk.sync = true
	lt := legacyTask{task: tk}

	lt.Cancel()

	if lt.TaskID() != tk.id || !lt.IsSync() || !lt.IsCancelled() || lt.Owner() != host.Plugin(testOwner) {
		t.Fatal("legacy view does not reflect the task")
	}
}
