package taskmeter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stack owns the ordered chain of active tasks for one logical thread of
// control, enforcing strict LIFO begin/end nesting. It carries no internal
// locking: drive each Stack from a single goroutine and give concurrent
// hierarchies their own instances.
type Stack struct {
	tasks    []*Task
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

// StackOption customizes a Stack at construction.
type StackOption func(*Stack)

// WithLogger attaches a structured logger; begin/end transitions are logged
// at debug level.
func WithLogger(logger *zap.Logger) StackOption {
	return func(s *Stack) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver attaches a lifecycle observer such as hub.Recorder. The
// observer is invoked synchronously after callbacks on every begin, advance,
// and end.
func WithObserver(obs Observer) StackOption {
	return func(s *Stack) {
		s.observer = obs
	}
}

// NewStack constructs an empty task stack.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TaskOption customizes a task at Begin time.
type TaskOption func(*Task)

// WithWeight sets the task's contribution weight within its parent's current
// step. The default of 1 means the task stands in for exactly one parent
// step; a Weighted parent's per-step weights already flow through unchanged.
// Non-positive values are ignored.
func WithWeight(weight float64) TaskOption {
	return func(t *Task) {
		if weight > 0 {
			t.weightInParent = weight
		}
	}
}

// WithCallback registers a callback at Begin time; see Task.SetCallback.
func WithCallback(cb Callback, maxDepth int) TaskOption {
	return func(t *Task) {
		t.SetCallback(cb, maxDepth)
	}
}

// WithTaskKey sets the descriptive label at Begin time.
func WithTaskKey(key string, arg any) TaskOption {
	return func(t *Task) {
		t.SetTaskKey(key, arg)
	}
}

// Begin creates a task driven by the supplied calculator, pushes it as a
// child of the current top of the stack, and returns it. Every begun task
// must eventually be ended, on every exit path.
func (s *Stack) Begin(calc Calculator, opts ...TaskOption) (*Task, error) {
	if calc == nil {
		return nil, fmt.Errorf("begin task: nil calculator: %w", ErrInvalidArgument)
	}
	t := &Task{
		stack:          s,
		parent:         s.Current(),
		id:             uuid.New(),
		calc:           calc,
		weightInParent: 1,
		depth:          len(s.tasks),
	}
	for _, opt := range opts {
		opt(t)
	}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("task begun",
		zap.String("task_id", t.id.String()),
		zap.String("key", t.key),
		zap.Int("depth", t.depth),
	)
	s.observe(t, EventBegin, t.rootAggregate())
	return t, nil
}

// BeginFixed begins a task with a known number of uniform steps.
func (s *Stack) BeginFixed(totalSteps int, opts ...TaskOption) (*Task, error) {
	calc, err := NewFixedCalculator(totalSteps)
	if err != nil {
		return nil, err
	}
	return s.Begin(calc, opts...)
}

// BeginWeighted begins a task with one explicit weight per expected step.
func (s *Stack) BeginWeighted(weights []float64, opts ...TaskOption) (*Task, error) {
	calc, err := NewWeightedCalculator(weights)
	if err != nil {
		return nil, err
	}
	return s.Begin(calc, opts...)
}

// BeginUnknown begins a task whose total step count is estimated rather
// than known; see NewUnknownCalculator for the curve.
func (s *Stack) BeginUnknown(estimatedCount int, estimatedWeight float64, opts ...TaskOption) (*Task, error) {
	calc, err := NewUnknownCalculator(estimatedCount, estimatedWeight)
	if err != nil {
		return nil, err
	}
	return s.Begin(calc, opts...)
}

// BeginCustom begins a task driven by a caller-supplied calculator. The
// calculator is trusted to honor the Fraction contract; its output is
// clamped but not otherwise policed.
func (s *Stack) BeginCustom(calc Calculator, opts ...TaskOption) (*Task, error) {
	return s.Begin(calc, opts...)
}

// Current returns the most recently begun active task, or nil when the
// stack is empty.
func (s *Stack) Current() *Task {
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

// Depth returns the number of active tasks.
func (s *Stack) Depth() int {
	return len(s.tasks)
}

func (s *Stack) pop() {
	if len(s.tasks) == 0 {
		return
	}
	t := s.tasks[len(s.tasks)-1]
	s.tasks = s.tasks[:len(s.tasks)-1]
	s.logger.Debug("task ended",
		zap.String("task_id", t.id.String()),
		zap.String("key", t.key),
		zap.Int("depth", t.depth),
		zap.Int("steps", t.step),
	)
}

func (s *Stack) observe(t *Task, kind EventKind, aggregate float64) {
	if s.observer == nil {
		return
	}
	s.observer.Observe(TaskEvent{
		TaskID:    t.id,
		At:        s.now(),
		Kind:      kind,
		Key:       t.key,
		Depth:     t.depth,
		Step:      t.step,
		Local:     t.local,
		Aggregate: aggregate,
	})
}
