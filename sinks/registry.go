package sinks

import (
	"context"

	"github.com/taskmeter/taskmeter/hub"
	"github.com/taskmeter/taskmeter/registry"
)

// RegistrySink folds progress events into the in-memory status registry
// that backs the HTTP status API.
type RegistrySink struct {
	registry *registry.Registry
}

// NewRegistrySink constructs a RegistrySink over the provided registry.
func NewRegistrySink(reg *registry.Registry) *RegistrySink {
	return &RegistrySink{registry: reg}
}

// Consume upserts the latest status for every task touched by the batch.
func (s *RegistrySink) Consume(_ context.Context, batch []hub.Event) error {
	if s == nil || s.registry == nil {
		return nil
	}
	for _, evt := range batch {
		state := registry.StateRunning
		if evt.Stage == hub.StageTaskDone {
			state = registry.StateDone
		}
		s.registry.Upsert(registry.Status{
			TaskID:    evt.TaskUUID(),
			Key:       evt.Key,
			Depth:     evt.Depth,
			Step:      evt.Step,
			Fraction:  evt.Aggregate,
			State:     state,
			UpdatedAt: evt.TS,
		})
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *RegistrySink) Close(context.Context) error {
	return nil
}
