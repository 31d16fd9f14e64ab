// Package registry keeps the latest known status of every observed task in
// memory, serving read access for the HTTP status API. It is the
// process-local stand-in for a durable progress store: tasks are transient,
// so nothing is persisted.
package registry

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound signals that the requested task is not in the registry.
var ErrNotFound = errors.New("task status not found")

// State is the coarse lifecycle state of a tracked task.
type State string

// Supported task states.
const (
	StateRunning State = "running"
	StateDone    State = "done"
)

// Status is the latest known view of one task.
type Status struct {
	TaskID    uuid.UUID
	Key       string
	Depth     int
	Step      int
	Fraction  float64
	State     State
	StartedAt time.Time
	UpdatedAt time.Time
}

// Registry is a mutex-guarded map of task statuses. Writers are hub sinks
// (one goroutine); readers are HTTP handlers, so the lock stays.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]Status
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{tasks: make(map[uuid.UUID]Status)}
}

// Upsert records the latest status for a task. The first write for a task
// pins StartedAt; later writes keep it.
func (r *Registry) Upsert(status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.tasks[status.TaskID]; ok {
		status.StartedAt = existing.StartedAt
		// A done task never reverts to running from late-arriving batches.
		if existing.State == StateDone {
			status.State = StateDone
			if status.Fraction < existing.Fraction {
				status.Fraction = existing.Fraction
			}
		}
	} else if status.StartedAt.IsZero() {
		status.StartedAt = status.UpdatedAt
	}
	r.tasks[status.TaskID] = status
}

// Get loads a single task status or returns ErrNotFound.
func (r *Registry) Get(id uuid.UUID) (Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, ok := r.tasks[id]
	if !ok {
		return Status{}, ErrNotFound
	}
	return status, nil
}

// List returns statuses ordered most recently updated first, optionally
// filtered by state. limit <= 0 means no bound.
func (r *Registry) List(state State, limit int) []Status {
	r.mu.RLock()
	out := make([]Status, 0, len(r.tasks))
	for _, status := range r.tasks {
		if state != "" && status.State != state {
			continue
		}
		out = append(out, status)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].TaskID.String() < out[j].TaskID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Prune drops done tasks whose last update is older than cutoff and returns
// how many were removed.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, status := range r.tasks {
		if status.State == StateDone && status.UpdatedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
