package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestHubBatchBySize verifies the hub flushes immediately once the batch
// size limit is reached.
func TestHubBatchBySize(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	h := New(Config{
		BufferSize:     8,
		MaxBatchEvents: 2,
		MaxBatchWait:   time.Minute,
	}, sink)
	defer func() {
		require.NoError(t, h.Close(context.Background()))
	}()

	evt := sampleEvent(StageTaskBegin)
	h.Emit(evt)
	h.Emit(evt)
	require.Eventually(t, func() bool {
		return len(sink.Batches()) == 1 && len(sink.Batches()[0]) == 2
	}, time.Second, 10*time.Millisecond)
}

// TestHubBatchByTimer verifies the timer-based flush kicks in when the batch
// is small.
func TestHubBatchByTimer(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	h := New(Config{
		BufferSize:     4,
		MaxBatchEvents: 10,
		MaxBatchWait:   25 * time.Millisecond,
	}, sink)
	defer func() {
		require.NoError(t, h.Close(context.Background()))
	}()

	h.Emit(sampleEvent(StageTaskAdvance))
	require.Eventually(t, func() bool {
		return len(sink.Batches()) == 1
	}, time.Second, 5*time.Millisecond)
}

// TestHubFlushOnClose ensures Close drains any buffered events before
// returning.
func TestHubFlushOnClose(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	h := New(Config{
		BufferSize:     4,
		MaxBatchEvents: 100,
		MaxBatchWait:   time.Minute,
	}, sink)

	h.Emit(sampleEvent(StageTaskDone))

	require.NoError(t, h.Close(context.Background()))
	require.Len(t, sink.Batches(), 1)
	require.Len(t, sink.Batches()[0], 1)
	require.True(t, sink.Closed())
}

// TestHubDiscardsInvalidEvents drops events failing validation instead of
// forwarding them.
func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	h := New(Config{
		BufferSize:     4,
		MaxBatchEvents: 1,
		MaxBatchWait:   time.Minute,
	}, sink)

	h.Emit(Event{}) // missing id, timestamp, stage
	evt := sampleEvent(StageTaskAdvance)
	evt.Aggregate = 1.5
	h.Emit(evt)

	require.NoError(t, h.Close(context.Background()))
	require.Empty(t, sink.Batches())
}

// TestHubEmitAfterClose is a silent no-op.
func TestHubEmitAfterClose(t *testing.T) {
	t.Parallel()

	sink := newStubSink()
	h := New(Config{BufferSize: 4}, sink)
	require.NoError(t, h.Close(context.Background()))

	h.Emit(sampleEvent(StageTaskBegin))
	require.Empty(t, sink.Batches())
	require.NoError(t, h.Close(context.Background()))
}

// TestEventValidate exercises the payload checks.
func TestEventValidate(t *testing.T) {
	t.Parallel()

	valid := sampleEvent(StageTaskAdvance)
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Event)
	}{
		{name: "missing id", mutate: func(e *Event) { e.TaskID = [16]byte{} }},
		{name: "missing timestamp", mutate: func(e *Event) { e.TS = time.Time{} }},
		{name: "unknown stage", mutate: func(e *Event) { e.Stage = "SOMETHING" }},
		{name: "negative depth", mutate: func(e *Event) { e.Depth = -1 }},
		{name: "negative step", mutate: func(e *Event) { e.Step = -1 }},
		{name: "local above one", mutate: func(e *Event) { e.Local = 1.1 }},
		{name: "aggregate below zero", mutate: func(e *Event) { e.Aggregate = -0.1 }},
		{name: "negative duration", mutate: func(e *Event) { e.Dur = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			evt := sampleEvent(StageTaskAdvance)
			tc.mutate(&evt)
			require.Error(t, evt.Validate())
		})
	}
}

type stubSink struct {
	mu      sync.Mutex
	batches [][]Event
	closed  bool
}

func newStubSink() *stubSink {
	return &stubSink{batches: [][]Event{}}
}

func (s *stubSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copyBatch := append([]Event(nil), batch...)
	s.batches = append(s.batches, copyBatch)
	return nil
}

func (s *stubSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) Batches() [][]Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Event, len(s.batches))
	for i, b := range s.batches {
		out[i] = append([]Event(nil), b...)
	}
	return out
}

func (s *stubSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func sampleEvent(stage Stage) Event {
	return Event{
		TaskID:    UUIDToBytes(uuid.New()),
		TS:        time.Now(),
		Stage:     stage,
		Key:       "sample",
		Step:      1,
		Local:     0.5,
		Aggregate: 0.5,
	}
}
