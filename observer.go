package taskmeter

import (
	"time"

	"github.com/google/uuid"
)

// DepthAuto lets the system infer an effectively unlimited callback depth:
// every nested level may notify. Any negative maxDepth means the same thing.
const DepthAuto = -1

// Report is the payload delivered to a Callback each time a depth-eligible
// task advances or ends. Fraction is the aggregate as seen at the task the
// callback was registered on; Key, Arg, Depth, and Step describe the task
// that actually moved.
type Report struct {
	Fraction float64
	Key      string
	Arg      any
	Depth    int
	Step     int
	Ended    bool
}

// Callback receives progress reports. Callbacks run synchronously on the
// thread driving the task, so they must not block; panics inside a callback
// propagate to the caller of AdvanceStep or End.
type Callback func(Report)

// EventKind labels a task lifecycle transition seen by an Observer.
type EventKind string

// Supported task lifecycle transitions.
const (
	EventBegin   EventKind = "begin"
	EventAdvance EventKind = "advance"
	EventEnd     EventKind = "end"
)

// TaskEvent captures one lifecycle transition of a task, with the fraction
// blended all the way up to the root of the stack. It is the feed consumed by
// asynchronous pipelines such as the hub package.
type TaskEvent struct {
	// TaskID uniquely identifies the task across its lifetime.
	TaskID uuid.UUID
	// At is the wall time the transition happened.
	At time.Time
	// Kind denotes which transition occurred.
	Kind EventKind
	// Key is the task's descriptive label at the time of the event.
	Key string
	// Depth is the task's distance from the root of its stack.
	Depth int
	// Step is the task's step counter after the transition.
	Step int
	// Local is the task's own fraction.
	Local float64
	// Aggregate is the fraction as observed at the root of the stack.
	Aggregate float64
}

// Observer consumes task lifecycle events from a Stack. Implementations are
// invoked synchronously on the stepping thread and must return quickly;
// hub.Recorder satisfies this interface with a non-blocking hand-off.
type Observer interface {
	Observe(evt TaskEvent)
}
