package core

import "github.com/google/uuid"

// TaskID uniquely identifies a Task handle.
type TaskID uuid.UUID

// GenerateTaskID returns a new random TaskID.
func GenerateTaskID() TaskID {
	return TaskID(uuid.New())
}

// IsZero reports whether id is the zero value.
func (id TaskID) IsZero() bool {
	return id == TaskID(uuid.Nil)
}

func (id TaskID) String() string {
	return uuid.UUID(id).String()
}
