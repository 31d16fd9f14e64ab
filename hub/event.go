package hub

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the lifecycle transition represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageTaskBegin   Stage = "TASK_BEGIN"
	StageTaskAdvance Stage = "TASK_ADVANCE"
	StageTaskDone    Stage = "TASK_DONE"
)

// Event captures a single task transition for sink consumption.
type Event struct {
	// TaskID uniquely identifies a task using the 16-byte UUID form.
	TaskID [16]byte
	// TS is the timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle transition occurred.
	Stage Stage
	// Key is the task's descriptive label, possibly empty.
	Key string
	// Depth is the task's distance from the root of its stack.
	Depth int
	// Step is the task's step counter after the transition.
	Step int
	// Local is the task's own fraction in [0, 1].
	Local float64
	// Aggregate is the fraction observed at the root of the stack.
	Aggregate float64
	// Dur carries the task's wall time; set on TASK_DONE events only.
	Dur time.Duration
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TaskID == [16]byte{} {
		return errors.New("task id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageTaskBegin, StageTaskAdvance, StageTaskDone:
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Depth < 0 {
		return errors.New("depth must be >= 0")
	}
	if e.Step < 0 {
		return errors.New("step must be >= 0")
	}
	if e.Local < 0 || e.Local > 1 {
		return fmt.Errorf("local fraction %v outside [0, 1]", e.Local)
	}
	if e.Aggregate < 0 || e.Aggregate > 1 {
		return fmt.Errorf("aggregate fraction %v outside [0, 1]", e.Aggregate)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// TaskUUID converts the binary task ID to uuid.UUID for registries.
func (e Event) TaskUUID() uuid.UUID {
	return uuid.UUID(e.TaskID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
