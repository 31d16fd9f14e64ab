package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskmeter/taskmeter/registry"
)

const (
	defaultTaskLimit = 50
	maxTaskLimit     = 500
)

// listTasks handles GET /api/tasks?state=&limit=. It returns a JSON object
// {"tasks": [...]} on success, 400 for invalid filters, or 503 when the
// registry is not wired.
func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "task registry unavailable", s.logger)
		return
	}
	limit, err := parseLimit(r, defaultTaskLimit, maxTaskLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	state, err := parseState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	statuses := s.registry.List(state, limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": toTaskDTOs(statuses),
	}, s.logger)
}

// getTask handles GET /api/tasks/{task_id}. It returns {"task": {...}} on
// success, 400 for malformed IDs, 404 when the registry reports
// registry.ErrNotFound, or 503 when the registry is not wired.
func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "task registry unavailable", s.logger)
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), s.logger)
		return
	}
	status, err := s.registry.Get(taskID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, http.StatusNotFound, "task not found", s.logger)
			return
		}
		s.logger.Error("get task failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load task", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": toTaskDTO(status)}, s.logger)
}

func parseTaskID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "task_id")
	if raw == "" {
		return uuid.UUID{}, errors.New("task_id is required")
	}
	taskID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, errors.New("invalid task_id")
	}
	return taskID, nil
}

func parseLimit(r *http.Request, def, maxLimit int) (int, error) {
	limStr := r.URL.Query().Get("limit")
	if limStr == "" {
		return def, nil
	}
	val, err := strconv.Atoi(limStr)
	if err != nil || val <= 0 {
		return 0, errors.New("invalid limit")
	}
	if val > maxLimit {
		val = maxLimit
	}
	return val, nil
}

func parseState(input string) (registry.State, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return "", nil
	case "running":
		return registry.StateRunning, nil
	case "done", "finished", "complete":
		return registry.StateDone, nil
	default:
		return "", errors.New("invalid state")
	}
}

func toTaskDTOs(in []registry.Status) []taskDTO {
	out := make([]taskDTO, 0, len(in))
	for _, status := range in {
		out = append(out, toTaskDTO(status))
	}
	return out
}

func toTaskDTO(status registry.Status) taskDTO {
	return taskDTO{
		TaskID:    status.TaskID.String(),
		Key:       status.Key,
		Depth:     status.Depth,
		Step:      status.Step,
		Fraction:  status.Fraction,
		State:     string(status.State),
		StartedAt: status.StartedAt,
		UpdatedAt: status.UpdatedAt,
	}
}

type taskDTO struct {
	TaskID    string    `json:"task_id"`
	Key       string    `json:"key,omitempty"`
	Depth     int       `json:"depth"`
	Step      int       `json:"step"`
	Fraction  float64   `json:"fraction"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
