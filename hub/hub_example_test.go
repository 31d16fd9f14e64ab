package hub_test

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmeter/taskmeter"
	"github.com/taskmeter/taskmeter/hub"
)

type countingSink struct {
	total int
}

func (s *countingSink) Consume(_ context.Context, batch []hub.Event) error {
	s.total += len(batch)
	return nil
}

func (s *countingSink) Close(context.Context) error {
	return nil
}

// Example wires a stack through a recorder into the hub and counts the
// events a sink receives.
func Example() {
	sink := &countingSink{}
	h := hub.New(hub.Config{
		BufferSize:     8,
		MaxBatchEvents: 1,
		MaxBatchWait:   time.Second,
	}, sink)

	stack := taskmeter.NewStack(taskmeter.WithObserver(hub.NewRecorder(h)))
	task, err := stack.BeginFixed(2, taskmeter.WithTaskKey("load", nil))
	if err != nil {
		panic(err)
	}
	_ = task.AdvanceStep()
	_ = task.AdvanceStep()
	_ = task.End()

	if err := h.Close(context.Background()); err != nil {
		panic(err)
	}

	fmt.Printf("events forwarded: %d\n", sink.total)
	// Output:
	// events forwarded: 4
}
