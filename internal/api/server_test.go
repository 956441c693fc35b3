package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartsched/internal/config"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := NewServer(cfg, zerolog.Nop())
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

var scenarioTasks = []string{
	`{"task_id":"T1","start":"2026-01-16T01:00:00Z","end":"2026-01-16T03:00:00Z","priority":5}`,
	`{"task_id":"T2","start":"2026-01-16T02:00:00Z","end":"2026-01-16T05:00:00Z","priority":6}`,
	`{"task_id":"T3","start":"2026-01-16T04:00:00Z","end":"2026-01-16T06:00:00Z","priority":5}`,
	`{"task_id":"T4","start":"2026-01-16T06:00:00Z","end":"2026-01-16T07:00:00Z","priority":4}`,
	`{"task_id":"T5","start":"2026-01-16T05:00:00Z","end":"2026-01-16T08:00:00Z","priority":11}`,
	`{"task_id":"T6","start":"2026-01-16T07:00:00Z","end":"2026-01-16T09:00:00Z","priority":2}`,
}

func outIDs(tasks []TaskOut) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.TaskID
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestScheduleRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range scenarioTasks {
		w := do(t, srv, http.MethodPost, "/tasks", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(t, srv, http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody[[]TaskOut](t, w)
	assert.Equal(t, []string{"T1", "T2", "T3", "T4", "T5", "T6"}, outIDs(listed))

	w = do(t, srv, http.MethodPost, "/schedule", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeBody[ScheduleOut](t, w)
	assert.Equal(t, 17, res.TotalPriority)
	assert.Equal(t, []string{"T2", "T5"}, outIDs(res.Tasks))
	assert.Equal(t, "2026-01-16T02:00:00Z", res.Tasks[0].Start.String())
}

func TestScheduleCacheFollowsRevision(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/tasks", scenarioTasks[1])

	first := decodeBody[ScheduleOut](t, do(t, srv, http.MethodPost, "/schedule", ""))
	again := decodeBody[ScheduleOut](t, do(t, srv, http.MethodPost, "/schedule", ""))
	assert.Equal(t, first, again)
	assert.Equal(t, 6, first.TotalPriority)

	do(t, srv, http.MethodPost, "/tasks", scenarioTasks[4])
	after := decodeBody[ScheduleOut](t, do(t, srv, http.MethodPost, "/schedule", ""))
	assert.Equal(t, 17, after.TotalPriority)
}

func TestScheduleEmptyStore(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.CacheSize = 0 })

	w := do(t, srv, http.MethodPost, "/schedule", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_priority":0,"tasks":[]}`, w.Body.String())
}

func TestCreateTask_GeneratesID(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/tasks",
		`{"start":"2026-01-16T09:00:00","end":"2026-01-16T10:00:00","priority":1,"meta":{"room":"A"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decodeBody[TaskOut](t, w)
	assert.Len(t, out.TaskID, 36)
	assert.Equal(t, "A", out.Meta["room"])
	assert.Equal(t, "2026-01-16T09:00:00", out.Start.String())

	w = do(t, srv, http.MethodGet, "/tasks/"+out.TaskID, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCreateTask_Invalid(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"inverted", `{"start":"2026-01-16T10:00:00Z","end":"2026-01-16T09:00:00Z","priority":1}`, "invalid_task"},
		{"negative priority", `{"start":"2026-01-16T09:00:00Z","end":"2026-01-16T10:00:00Z","priority":-1}`, "invalid_task"},
		{"mixed awareness", `{"start":"2026-01-16T09:00:00Z","end":"2026-01-16T10:00:00","priority":1}`, "invalid_task"},
		{"missing priority", `{"start":"2026-01-16T09:00:00Z","end":"2026-01-16T10:00:00Z"}`, "invalid_input"},
		{"bad time", `{"start":"soon","end":"2026-01-16T10:00:00Z","priority":1}`, "invalid_input"},
		{"not json", `{`, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/tasks", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeBody[ErrorDTO](t, w).Code)
		})
	}
	assert.Equal(t, 0, srv.Store().Len())
}

func TestCreateTask_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.MaxBodyBytes = 16 })

	w := do(t, srv, http.MethodPost, "/tasks", scenarioTasks[0])
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "too large")
}

func TestDeleteTask(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/tasks", scenarioTasks[0])

	w := do(t, srv, http.MethodDelete, "/tasks/T1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":"T1"}`, w.Body.String())

	w = do(t, srv, http.MethodDelete, "/tasks/T1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeBody[ErrorDTO](t, w).Detail, "task not found")

	w = do(t, srv, http.MethodGet, "/tasks/T1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearTasks(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/tasks", scenarioTasks[0])
	do(t, srv, http.MethodPost, "/tasks", scenarioTasks[1])

	w := do(t, srv, http.MethodDelete, "/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cleared":2}`, w.Body.String())
	assert.Equal(t, 0, srv.Store().Len())
}

func TestPreview_DoesNotPersist(t *testing.T) {
	srv := newTestServer(t)

	body := `{"tasks":[` + strings.Join(scenarioTasks, ",") + `]}`
	w := do(t, srv, http.MethodPost, "/schedule/preview", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decodeBody[ScheduleOut](t, w)
	assert.Equal(t, 17, res.TotalPriority)
	assert.Equal(t, []string{"T2", "T5"}, outIDs(res.Tasks))
	assert.Equal(t, 0, srv.Store().Len())
}

func TestPreview_MixedAwareness(t *testing.T) {
	srv := newTestServer(t)

	body := `{"tasks":[
		{"task_id":"A","start":"2026-01-16T09:00:00Z","end":"2026-01-16T10:00:00Z","priority":5},
		{"task_id":"N","start":"2026-01-16T10:00:00","end":"2026-01-16T11:00:00","priority":4}
	]}`
	w := do(t, srv, http.MethodPost, "/schedule/preview", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	dto := decodeBody[ErrorDTO](t, w)
	assert.Equal(t, "mixed_awareness", dto.Code)
	assert.Contains(t, dto.Detail, "timezone")
}

func TestSchedule_MixedAwarenessInStore(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/tasks", scenarioTasks[0])
	do(t, srv, http.MethodPost, "/tasks",
		`{"task_id":"N","start":"2026-01-16T10:00:00","end":"2026-01-16T11:00:00","priority":4}`)

	w := do(t, srv, http.MethodPost, "/schedule", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "mixed_awareness", decodeBody[ErrorDTO](t, w).Code)
}

func TestPreview_TasksRequired(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`{}`, `{"tasks":null}`} {
		w := do(t, srv, http.MethodPost, "/schedule/preview", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "invalid_input", decodeBody[ErrorDTO](t, w).Code)
	}

	w := do(t, srv, http.MethodPost, "/schedule/preview", `{"tasks":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_priority":0,"tasks":[]}`, w.Body.String())
}

func TestCreateTask_PriorityAboveMax(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/tasks",
		`{"task_id":"big","start":"2026-01-16T09:00:00Z","end":"2026-01-16T10:00:00Z","priority":4611686018427387905}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "invalid_task", decodeBody[ErrorDTO](t, w).Code)
	assert.Equal(t, 0, srv.Store().Len())
}

func TestPreview_InvalidTaskIndexed(t *testing.T) {
	srv := newTestServer(t)

	body := `{"tasks":[` + scenarioTasks[0] + `,{"start":"2026-01-16T10:00:00Z","end":"2026-01-16T10:00:00Z","priority":1}]}`
	w := do(t, srv, http.MethodPost, "/schedule/preview", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[ErrorDTO](t, w).Detail, "tasks[1]")
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.RateLimit = 0.001
		c.RateBurst = 2
	})

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", "").Code)

	w := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decodeBody[ErrorDTO](t, w).Code)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))
	assert.Equal(t, http.StatusInternalServerError, MapError(io.ErrUnexpectedEOF).StatusCode)
	assert.Equal(t, http.StatusNotFound, MapError(ErrTaskNotFound).StatusCode)
}
