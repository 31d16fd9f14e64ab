package hub

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskmeter/taskmeter"
)

// Recorder implements taskmeter.Observer by translating stack lifecycle
// transitions into Events and handing them to an Emitter. It tracks begin
// times so TASK_DONE events carry the task's wall time.
//
// A Recorder belongs to the goroutine driving its Stack, like the Stack
// itself; the Emitter hand-off is the concurrency boundary.
type Recorder struct {
	emitter Emitter
	began   map[uuid.UUID]time.Time
}

// NewRecorder wires an Emitter, typically a *Hub.
func NewRecorder(emitter Emitter) *Recorder {
	return &Recorder{
		emitter: emitter,
		began:   make(map[uuid.UUID]time.Time),
	}
}

// Observe converts one stack transition into an Event and emits it.
func (r *Recorder) Observe(evt taskmeter.TaskEvent) {
	if r == nil || r.emitter == nil {
		return
	}
	out := Event{
		TaskID:    UUIDToBytes(evt.TaskID),
		TS:        evt.At,
		Key:       evt.Key,
		Depth:     evt.Depth,
		Step:      evt.Step,
		Local:     evt.Local,
		Aggregate: evt.Aggregate,
	}
	switch evt.Kind {
	case taskmeter.EventBegin:
		out.Stage = StageTaskBegin
		r.began[evt.TaskID] = evt.At
	case taskmeter.EventAdvance:
		out.Stage = StageTaskAdvance
	case taskmeter.EventEnd:
		out.Stage = StageTaskDone
		if began, ok := r.began[evt.TaskID]; ok {
			if d := evt.At.Sub(began); d > 0 {
				out.Dur = d
			}
			delete(r.began, evt.TaskID)
		}
	default:
		return
	}
	r.emitter.Emit(out)
}
