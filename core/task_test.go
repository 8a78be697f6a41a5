package core

import (
	"context"
	"testing"
)

// TestTaskID_StringAndIsZero verifies TaskID zero-state and string behavior
// Given: A zero TaskID and a generated TaskID
// When: IsZero and String are called
// Then: Zero ID reports true and generated ID is non-zero with non-empty string
func TestTaskID_StringAndIsZero(t *testing.T) {
	// Arrange
	var zero TaskID

	// Act and Assert
	if !zero.IsZero() {
		t.Fatal("zero TaskID should report IsZero() == true")
	}

	// Act
	id := GenerateTaskID()

	// Assert
	if id.IsZero() {
		t.Fatal("generated TaskID should not be zero")
	}
	if id.String() == "" {
		t.Fatal("TaskID.String() should not be empty")
	}
	if id == GenerateTaskID() {
		t.Fatal("generated TaskIDs should differ")
	}
}

// TestCurrentTask verifies extracting the running task from context
// Given: A plain context and a task executing its work
// When: CurrentTask is called
// Then: It returns nil for plain context and the running task inside work
func TestCurrentTask(t *testing.T) {
	// Arrange, Act and Assert - plain context
	if got := CurrentTask(context.Background()); got != nil {
		t.Fatalf("CurrentTask(background) = %#v, want nil", got)
	}

	// Arrange
	var seen *Task
	task := NewTask(testPlugin{"p"}, ScopeGlobal, "fake", Request{
		Work: func(ctx context.Context, _ *Task) any {
			seen = CurrentTask(ctx)
			return nil
		},
	}, nil)

	// Act
	task.Execute(context.Background(), &fakeNative{})

	// Assert
	if seen != task {
		t.Fatal("CurrentTask(ctx) inside work did not return the running task")
	}
}

// TestWorkAdapters verifies Do and Func
// Given: An action adapted with Do and a typed function adapted with Func
// When: Both run
// Then: Do yields nil and Func yields the typed value
func TestWorkAdapters(t *testing.T) {
	ran := false
	if got := Do(func(ctx context.Context) { ran = true })(context.Background(), nil); got != nil {
		t.Fatalf("Do() work returned %v, want nil", got)
	}
	if !ran {
		t.Fatal("Do() work did not run the action")
	}

	work := Func(func(ctx context.Context, _ *Task) int { return 5 })
	if got := work(context.Background(), nil); got != 5 {
		t.Fatalf("Func() work returned %v, want 5", got)
	}

	if Do(nil) != nil || Func[int](nil) != nil {
		t.Fatal("nil adapters should yield nil work")
	}
}

// TestScopeKind_String verifies scope names used in logs and metrics
func TestScopeKind_String(t *testing.T) {
	names := map[ScopeKind]string{
		ScopeGlobal:   "global",
		ScopeRegion:   "region",
		ScopeAsync:    "async",
		ScopeEntity:   "entity",
		ScopeKind(42): "unknown",
	}
	for k, want := range names {
		if got := k.String(); got != want {
			t.Errorf("ScopeKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
