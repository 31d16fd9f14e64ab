package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/taskmeter/taskmeter/hub"
)

// LogSink emits structured logs for debugging progress streams. It is useful
// during development or audits where metrics scraping is unavailable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []hub.Event) error {
	for _, evt := range batch {
		s.logger.Info("task progress",
			zap.String("task_id", evt.TaskUUID().String()),
			zap.String("stage", string(evt.Stage)),
			zap.String("key", evt.Key),
			zap.Int("depth", evt.Depth),
			zap.Int("step", evt.Step),
			zap.Float64("local", evt.Local),
			zap.Float64("aggregate", evt.Aggregate),
			zap.Duration("dur", evt.Dur),
		)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
