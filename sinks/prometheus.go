package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskmeter/taskmeter/hub"
)

// PrometheusSink exports task progress metrics. It owns all collectors for
// tasks started/completed/running, step throughput, per-key fractions, and
// runtime distribution.
type PrometheusSink struct {
	tasksStarted   prometheus.Counter
	tasksCompleted prometheus.Counter
	tasksRunning   prometheus.Gauge
	taskRuntime    prometheus.Histogram
	taskSteps      *prometheus.CounterVec
	taskFraction   *prometheus.GaugeVec

	tracker *taskTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		tasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmeter_tasks_started_total",
			Help: "Total tasks that have begun.",
		}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmeter_tasks_completed_total",
			Help: "Total tasks that have ended.",
		}),
		tasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskmeter_tasks_running",
			Help: "Current number of active tasks.",
		}),
		taskRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskmeter_task_runtime_seconds",
			Help:    "Wall time per completed task.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 1200},
		}),
		taskSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskmeter_task_steps_total",
			Help: "Steps advanced partitioned by task key.",
		}, []string{"key"}),
		taskFraction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskmeter_task_fraction",
			Help: "Latest aggregate fraction observed at the stack root, partitioned by task key.",
		}, []string{"key"}),
		tracker: newTaskTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.tasksStarted,
		s.tasksCompleted,
		s.tasksRunning,
		s.taskRuntime,
		s.taskSteps,
		s.taskFraction,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors using the provided batch. It is safe for
// concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []hub.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt hub.Event) {
	key := evt.Key
	if key == "" {
		key = "unknown"
	}
	switch evt.Stage {
	case hub.StageTaskBegin:
		s.tasksStarted.Inc()
		if s.tracker.start(evt.TaskID) {
			s.tasksRunning.Inc()
		}
	case hub.StageTaskAdvance:
		s.taskSteps.WithLabelValues(key).Inc()
	case hub.StageTaskDone:
		s.tasksCompleted.Inc()
		if s.tracker.complete(evt.TaskID) {
			s.tasksRunning.Dec()
		}
		if evt.Dur > 0 {
			s.taskRuntime.Observe(evt.Dur.Seconds())
		}
	}
	s.taskFraction.WithLabelValues(key).Set(evt.Aggregate)
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type taskTracker struct {
	mu      sync.Mutex
	running map[[16]byte]struct{}
}

func newTaskTracker() *taskTracker {
	return &taskTracker{running: make(map[[16]byte]struct{})}
}

func (t *taskTracker) start(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *taskTracker) complete(id [16]byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
