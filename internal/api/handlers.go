package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"smartsched/internal/sched"
	"smartsched/internal/store"
)

// Handlers contains the HTTP handler methods for the API.
type Handlers struct {
	store   *store.Store
	cache   *lru.Cache[uint64, sched.Result] // keyed by store revision, nil = disabled
	maxBody int64
	log     zerolog.Logger
}

// defaultMaxBody limits request bodies when no limit is configured (1MB).
const defaultMaxBody = 1 << 20

// NewHandlers creates a new Handlers instance. A cacheSize of 0 disables
// caching of POST /schedule results.
func NewHandlers(st *store.Store, cacheSize int, maxBody int64, log zerolog.Logger) (*Handlers, error) {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	h := &Handlers{store: st, maxBody: maxBody, log: log}
	if cacheSize > 0 {
		cache, err := lru.New[uint64, sched.Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("schedule cache: %w", err)
		}
		h.cache = cache
	}
	return h, nil
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCreateTask handles POST /tasks.
func (h *Handlers) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in TaskIn
	if err := h.decode(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	task, err := in.ToTask()
	if err != nil {
		WriteError(w, err)
		return
	}
	h.store.Upsert(task)

	writeJSON(w, http.StatusOK, taskToOut(task))
}

// HandleListTasks handles GET /tasks.
func (h *Handlers) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tasksToOut(h.store.List()))
}

// HandleGetTask handles GET /tasks/{id}.
func (h *Handlers) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := h.store.Get(id)
	if !ok {
		WriteError(w, fmt.Errorf("task %s: %w", id, ErrTaskNotFound))
		return
	}
	writeJSON(w, http.StatusOK, taskToOut(task))
}

// HandleDeleteTask handles DELETE /tasks/{id}.
func (h *Handlers) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.store.Delete(id) {
		WriteError(w, fmt.Errorf("task %s: %w", id, ErrTaskNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// HandleClearTasks handles DELETE /tasks.
func (h *Handlers) HandleClearTasks(w http.ResponseWriter, r *http.Request) {
	n := h.store.Clear()
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

// HandleSchedule handles POST /schedule over the stored tasks.
func (h *Handlers) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	tasks, rev := h.store.Snapshot()

	if h.cache != nil {
		if res, ok := h.cache.Get(rev); ok {
			h.log.Debug().Uint64("revision", rev).Msg("schedule cache hit")
			writeJSON(w, http.StatusOK, resultToOut(res))
			return
		}
	}

	res, err := sched.Schedule(tasks)
	if err != nil {
		WriteError(w, err)
		return
	}
	if h.cache != nil {
		h.cache.Add(rev, res)
	}

	h.log.Info().
		Int("tasks", len(tasks)).
		Int("selected", len(res.Tasks)).
		Int("total_priority", res.TotalPriority).
		Uint64("revision", rev).
		Msg("scheduled stored tasks")
	writeJSON(w, http.StatusOK, resultToOut(res))
}

// HandlePreview handles POST /schedule/preview. Nothing is persisted.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var in PreviewIn
	if err := h.decode(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	if in.Tasks == nil {
		WriteError(w, fmt.Errorf("tasks is required: %w", ErrInvalidInput))
		return
	}

	tasks := make([]sched.Task, 0, len(*in.Tasks))
	for i, ti := range *in.Tasks {
		task, err := ti.ToTask()
		if err != nil {
			WriteError(w, fmt.Errorf("tasks[%d]: %w", i, err))
			return
		}
		tasks = append(tasks, task)
	}

	res, err := sched.Schedule(tasks)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.log.Debug().
		Int("tasks", len(tasks)).
		Int("total_priority", res.TotalPriority).
		Msg("scheduled preview")
	writeJSON(w, http.StatusOK, resultToOut(res))
}

// decode reads a size-limited JSON body into v.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body too large (max %d bytes): %w", h.maxBody, ErrInvalidInput)
		}
		return fmt.Errorf("invalid JSON: %v: %w", err, ErrInvalidInput)
	}
	return nil
}
