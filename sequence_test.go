package taskmeter

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
)

func countingSeq(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// TestSequenceAdvancesAndEnds ranges a tracked slice to exhaustion and
// verifies one step per element plus the automatic end.
func TestSequenceAdvancesAndEnds(t *testing.T) {
	t.Parallel()

	var reports []Report
	stack := NewStack()
	seq, err := TrackSlice(stack, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	seq.OnProgress(func(r Report) { reports = append(reports, r) }, DepthAuto)

	var got []string
	for v := range seq.Values() {
		got = append(got, v)
	}

	require.Equal(t, []string{"a", "b", "c", "d"}, got)
	require.True(t, seq.Task().Ended())
	require.Equal(t, 1.0, seq.Task().Fraction())
	require.Zero(t, stack.Depth())
	// Four advances and the final end notification.
	require.Len(t, reports, 5)
	require.InDelta(t, 0.25, reports[0].Fraction, 1e-12)
	require.True(t, reports[4].Ended)
}

// TestSequenceEarlyTermination breaks out after three of ten elements and
// expects the task ended exactly once with the stack left clean.
func TestSequenceEarlyTermination(t *testing.T) {
	t.Parallel()

	var ends int
	stack := NewStack()
	seq, err := TrackFixed(stack, countingSeq(10), 10)
	require.NoError(t, err)
	seq.OnProgress(func(r Report) {
		if r.Ended {
			ends++
		}
	}, DepthAuto)

	consumed := 0
	for range seq.Values() {
		consumed++
		if consumed == 3 {
			break
		}
	}

	require.Equal(t, 3, consumed)
	require.True(t, seq.Task().Ended())
	require.Equal(t, 1, ends)
	require.Zero(t, stack.Depth())

	// Explicit disposal after the implicit one is a no-op.
	require.NoError(t, seq.Close())
	require.Equal(t, 1, ends)
}

// TestSequenceRestartRejected re-enumerates a consumed adapter and expects
// an UnsupportedOperation signal.
func TestSequenceRestartRejected(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	seq, err := TrackSlice(stack, []int{1, 2, 3})
	require.NoError(t, err)

	for range seq.Values() {
	}

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered, "re-enumeration must panic")
		panicErr, ok := recovered.(error)
		require.True(t, ok)
		require.ErrorIs(t, panicErr, ErrUnsupportedOperation)
	}()
	for range seq.Values() {
	}
}

// TestSequenceClosedBeforeIteration treats enumeration after Close as a
// restart attempt.
func TestSequenceClosedBeforeIteration(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	seq, err := TrackSlice(stack, []int{1, 2})
	require.NoError(t, err)
	require.NoError(t, seq.Close())

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)
		panicErr, ok := recovered.(error)
		require.True(t, ok)
		require.ErrorIs(t, panicErr, ErrUnsupportedOperation)
	}()
	for range seq.Values() {
	}
}

// TestSequenceFluentConfiguration chains the setters and sees them land on
// the underlying task.
func TestSequenceFluentConfiguration(t *testing.T) {
	t.Parallel()

	var keys []string
	stack := NewStack()
	seq, err := TrackSlice(stack, []int{1, 2})
	require.NoError(t, err)

	same := seq.
		WithTaskKey("ingest", nil).
		OnProgress(func(r Report) { keys = append(keys, r.Key) }, 0).
		WithMaxDepth(DepthAuto)
	require.Same(t, seq, same)
	require.Equal(t, "ingest", seq.Task().Key())

	for range seq.Values() {
	}
	require.NotEmpty(t, keys)
	require.Equal(t, "ingest", keys[0])
}

// TestSequenceUnknownLength tracks a source of unknown length and checks the
// fraction stays short of 1 until exhaustion ends the task.
func TestSequenceUnknownLength(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	seq, err := TrackUnknown(stack, countingSeq(40), 10, 0.5)
	require.NoError(t, err)

	var beforeEnd float64
	for range seq.Values() {
		beforeEnd = seq.Task().Fraction()
	}

	require.Less(t, beforeEnd, 1.0)
	require.Equal(t, 1.0, seq.Task().Fraction())
	require.True(t, seq.Task().Ended())
}

// TestSequenceSourceOverrun panics with the range error when the source
// produces more elements than the declared total, and still ends the task.
func TestSequenceSourceOverrun(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	seq, err := TrackFixed(stack, countingSeq(5), 2)
	require.NoError(t, err)

	func() {
		defer func() {
			recovered := recover()
			require.NotNil(t, recovered)
			panicErr, ok := recovered.(error)
			require.True(t, ok)
			require.True(t, errors.Is(panicErr, ErrOutOfRange))
		}()
		for range seq.Values() {
		}
	}()

	require.True(t, seq.Task().Ended())
	require.Zero(t, stack.Depth())
}

// TestTrackWeightedAndCustom covers the remaining construction variants.
func TestTrackWeightedAndCustom(t *testing.T) {
	t.Parallel()

	stack := NewStack()
	weighted, err := TrackWeighted(stack, countingSeq(3), []float64{2, 3, 5})
	require.NoError(t, err)
	var fractions []float64
	weighted.OnProgress(func(r Report) {
		if !r.Ended {
			fractions = append(fractions, r.Fraction)
		}
	}, DepthAuto)
	for range weighted.Values() {
	}
	require.Len(t, fractions, 3)
	require.InDelta(t, 0.2, fractions[0], 1e-12)
	require.InDelta(t, 0.5, fractions[1], 1e-12)
	require.InDelta(t, 1.0, fractions[2], 1e-12)

	custom, err := TrackCustom(stack, countingSeq(2), CalculatorFunc(func(step int) (float64, error) {
		return float64(step) / 2, nil
	}))
	require.NoError(t, err)
	for range custom.Values() {
	}
	require.True(t, custom.Task().Ended())

	_, err = TrackWeighted(stack, countingSeq(1), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Zero(t, stack.Depth())
}
