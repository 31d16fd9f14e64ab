package taskmeter

import (
	"fmt"
	"iter"
	"slices"
)

// Sequence couples a produced sequence of elements with a progress task.
// Each element consumed through Values advances the task by one step;
// exhausting the sequence, breaking out early, or calling Close ends it.
// The underlying task is begun when the Sequence is constructed, so an
// unconsumed Sequence must still be closed.
//
// A Sequence is single-shot: the task's step counter is not reversible, so
// re-enumeration fails with ErrUnsupportedOperation.
type Sequence[T any] struct {
	task    *Task
	src     iter.Seq[T]
	started bool
	closed  bool
}

// TrackFixed begins a fixed-count task over src. total should match the
// number of elements src produces; a longer source trips ErrOutOfRange
// during iteration.
func TrackFixed[T any](s *Stack, src iter.Seq[T], total int, opts ...TaskOption) (*Sequence[T], error) {
	task, err := s.BeginFixed(total, opts...)
	if err != nil {
		return nil, err
	}
	return &Sequence[T]{task: task, src: src}, nil
}

// TrackWeighted begins a weighted task over src, one weight per element.
func TrackWeighted[T any](s *Stack, src iter.Seq[T], weights []float64, opts ...TaskOption) (*Sequence[T], error) {
	task, err := s.BeginWeighted(weights, opts...)
	if err != nil {
		return nil, err
	}
	return &Sequence[T]{task: task, src: src}, nil
}

// TrackUnknown begins an estimated-count task over a sequence whose length
// is not known in advance.
func TrackUnknown[T any](s *Stack, src iter.Seq[T], estimatedCount int, estimatedWeight float64, opts ...TaskOption) (*Sequence[T], error) {
	task, err := s.BeginUnknown(estimatedCount, estimatedWeight, opts...)
	if err != nil {
		return nil, err
	}
	return &Sequence[T]{task: task, src: src}, nil
}

// TrackCustom begins a task over src driven by a caller-supplied calculator.
func TrackCustom[T any](s *Stack, src iter.Seq[T], calc Calculator, opts ...TaskOption) (*Sequence[T], error) {
	task, err := s.BeginCustom(calc, opts...)
	if err != nil {
		return nil, err
	}
	return &Sequence[T]{task: task, src: src}, nil
}

// TrackSlice begins a fixed-count task over the elements of items.
func TrackSlice[T any](s *Stack, items []T, opts ...TaskOption) (*Sequence[T], error) {
	return TrackFixed(s, slices.Values(items), len(items), opts...)
}

// OnProgress registers a callback on the underlying task and returns the
// Sequence for chaining.
func (q *Sequence[T]) OnProgress(cb Callback, maxDepth int) *Sequence[T] {
	q.task.SetCallback(cb, maxDepth)
	return q
}

// WithTaskKey relabels the underlying task and returns the Sequence.
func (q *Sequence[T]) WithTaskKey(key string, arg any) *Sequence[T] {
	q.task.SetTaskKey(key, arg)
	return q
}

// WithMaxDepth retunes depth filtering on the underlying task's callbacks
// and returns the Sequence.
func (q *Sequence[T]) WithMaxDepth(maxDepth int) *Sequence[T] {
	q.task.SetMaxDepth(maxDepth)
	return q
}

// Task exposes the underlying progress task.
func (q *Sequence[T]) Task() *Task {
	return q.task
}

// Values returns the element sequence for use with range. The task advances
// one step after each element is consumed and is guaranteed to end on every
// exit path, including early break and panic. Step-range violations raised
// by the calculator mid-iteration panic with the wrapped error, since a
// range body has no error channel.
//
// Values may be ranged over exactly once; any further enumeration attempt
// panics with an error wrapping ErrUnsupportedOperation.
func (q *Sequence[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		if q.started || q.closed {
			panic(fmt.Errorf("sequence adapter cannot be re-enumerated: %w", ErrUnsupportedOperation))
		}
		q.started = true
		defer func() {
			_ = q.Close()
		}()
		for v := range q.src {
			if !yield(v) {
				return
			}
			if err := q.task.AdvanceStep(); err != nil {
				panic(err)
			}
		}
	}
}

// Close ends the underlying task. It is idempotent and safe to defer
// alongside iteration; the first call wins and the rest are no-ops.
func (q *Sequence[T]) Close() error {
	q.closed = true
	return q.task.End()
}
