package taskmeter

import (
	"fmt"

	"github.com/google/uuid"
)

// Task is one tracked unit of progress-bearing work: a step counter, a
// calculator, callback registrations, and a position in its Stack. Tasks are
// created by Stack.Begin and must be ended in LIFO order. A Task is owned
// exclusively by the thread of control that began it until it ends.
type Task struct {
	stack  *Stack
	parent *Task
	id     uuid.UUID

	calc           Calculator
	weightInParent float64
	depth          int

	step  int
	local float64
	ended bool

	key string
	arg any

	callbacks []callbackReg
}

type callbackReg struct {
	fn       Callback
	maxDepth int
}

// ID returns the task's unique identifier.
func (t *Task) ID() uuid.UUID { return t.id }

// Step returns the current step counter.
func (t *Task) Step() int { return t.step }

// Fraction returns the task's own fraction, not blended with ancestors.
// It is non-decreasing over the task's lifetime and exactly 1 once ended.
func (t *Task) Fraction() float64 { return t.local }

// Depth returns the task's distance from the root of its stack.
func (t *Task) Depth() int { return t.depth }

// Key returns the descriptive label, empty if none was set.
func (t *Task) Key() string { return t.key }

// Arg returns the opaque value attached alongside the key.
func (t *Task) Arg() any { return t.arg }

// Ended reports whether End has completed for this task.
func (t *Task) Ended() bool { return t.ended }

// SetTaskKey replaces the descriptive label and its opaque argument. It may
// be called repeatedly to describe sub-phases and has no effect on fraction
// computation.
func (t *Task) SetTaskKey(key string, arg any) {
	t.key = key
	t.arg = arg
}

// SetCallback registers a notification target. maxDepth bounds how many
// nested-task levels below this task may trigger the callback directly:
// a task U notifies a callback registered here when U.Depth()-t.Depth() is
// at most maxDepth. Pass DepthAuto (or any negative value) for no bound.
// Deeper tasks still contribute to the aggregate fraction either way.
func (t *Task) SetCallback(cb Callback, maxDepth int) {
	if cb == nil {
		return
	}
	t.callbacks = append(t.callbacks, callbackReg{fn: cb, maxDepth: maxDepth})
}

// SetMaxDepth adjusts depth filtering for every callback already registered
// on this task.
func (t *Task) SetMaxDepth(maxDepth int) {
	for i := range t.callbacks {
		t.callbacks[i].maxDepth = maxDepth
	}
}

// AdvanceStep increments the step counter, recomputes this task's fraction,
// blends it into every ancestor's aggregate, and fires depth-eligible
// callbacks from this task outward. Calculator range violations surface as
// ErrOutOfRange; calling AdvanceStep on an ended task is ErrIllegalState.
func (t *Task) AdvanceStep() error {
	if t.ended {
		return fmt.Errorf("advance on ended task %q: %w", t.key, ErrIllegalState)
	}
	frac, err := t.calc.Fraction(t.step + 1)
	if err != nil {
		return err
	}
	t.step++
	frac = clamp01(frac)
	if frac < t.local {
		// The local fraction never regresses, even under a misbehaving
		// custom calculator.
		frac = t.local
	}
	t.local = frac
	aggregate := t.notify(false)
	t.stack.observe(t, EventAdvance, aggregate)
	return nil
}

// End finalizes the task: its fraction becomes exactly 1.0, it is popped
// from the stack, and a final notification fires. Ending a task that is not
// the top of its stack is ErrIllegalState. Calling End again is a no-op, so
// deferred disposal is always safe.
func (t *Task) End() error {
	if t.ended {
		return nil
	}
	if t.stack.Current() != t {
		return fmt.Errorf("end of task %q violates stack nesting: %w", t.key, ErrIllegalState)
	}
	t.local = 1
	t.ended = true
	t.stack.pop()
	aggregate := t.notify(true)
	t.stack.observe(t, EventEnd, aggregate)
	// Registrations are released once the final notification is out.
	t.callbacks = nil
	return nil
}

// childSpan returns the slice of t's own fraction consumed by its active
// child: the width of t's next step scaled by the child's weight. A parent
// whose calculator is already exhausted contributes a zero span.
func (t *Task) childSpan(child *Task) float64 {
	next, err := t.calc.Fraction(t.step + 1)
	if err != nil {
		return 0
	}
	span := next - t.local
	if span <= 0 {
		return 0
	}
	return span * child.weightInParent
}

// notify walks from t to the root, blending the fraction at each level and
// firing that level's callbacks whose depth limit admits t. It returns the
// aggregate observed at the root.
func (t *Task) notify(ended bool) float64 {
	frac := t.local
	node := t
	for {
		node.fire(frac, t, ended)
		parent := node.parent
		if parent == nil {
			return frac
		}
		frac = clamp01(parent.local + parent.childSpan(node)*frac)
		node = parent
	}
}

// fire delivers one report to every callback on node that admits mover.
func (node *Task) fire(fraction float64, mover *Task, ended bool) {
	distance := mover.depth - node.depth
	for _, reg := range node.callbacks {
		if reg.maxDepth >= 0 && distance > reg.maxDepth {
			continue
		}
		reg.fn(Report{
			Fraction: fraction,
			Key:      mover.key,
			Arg:      mover.arg,
			Depth:    mover.depth,
			Step:     mover.step,
			Ended:    ended,
		})
	}
}

// rootAggregate blends t's current fraction up to the root without firing
// callbacks, used for begin events.
func (t *Task) rootAggregate() float64 {
	frac := t.local
	for node := t; node.parent != nil; node = node.parent {
		frac = clamp01(node.parent.local + node.parent.childSpan(node)*frac)
	}
	return frac
}
