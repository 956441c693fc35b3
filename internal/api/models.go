package api

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"smartsched/internal/sched"
)

// TaskIn is the request body of POST /tasks and one element of a preview.
type TaskIn struct {
	TaskID   string         `json:"task_id,omitempty"` // generated when empty
	Start    *sched.Instant `json:"start"`
	End      *sched.Instant `json:"end"`
	Priority *int           `json:"priority"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// TaskOut is the wire form of a stored or selected task.
type TaskOut struct {
	TaskID   string         `json:"task_id"`
	Start    sched.Instant  `json:"start"`
	End      sched.Instant  `json:"end"`
	Priority int            `json:"priority"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// ScheduleOut is the response of both scheduling endpoints.
type ScheduleOut struct {
	TotalPriority int       `json:"total_priority"`
	Tasks         []TaskOut `json:"tasks"`
}

// PreviewIn is the request body of POST /schedule/preview.
type PreviewIn struct {
	Tasks *[]TaskIn `json:"tasks"` // required, may be empty
}

// ErrorDTO is the body of every error response.
type ErrorDTO struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// ToTask validates the request fields and builds a task.
func (in TaskIn) ToTask() (sched.Task, error) {
	switch {
	case in.Start == nil:
		return sched.Task{}, fmt.Errorf("start is required: %w", ErrInvalidInput)
	case in.End == nil:
		return sched.Task{}, fmt.Errorf("end is required: %w", ErrInvalidInput)
	case in.Priority == nil:
		return sched.Task{}, fmt.Errorf("priority is required: %w", ErrInvalidInput)
	}

	id := strings.TrimSpace(in.TaskID)
	if id == "" {
		id = uuid.NewString()
	}
	return sched.NewTask(id, *in.Start, *in.End, *in.Priority, in.Meta)
}

func taskToOut(t sched.Task) TaskOut {
	return TaskOut{
		TaskID:   t.ID(),
		Start:    t.Start(),
		End:      t.End(),
		Priority: t.Priority(),
		Meta:     t.Meta(),
	}
}

func tasksToOut(tasks []sched.Task) []TaskOut {
	out := make([]TaskOut, len(tasks))
	for i, t := range tasks {
		out[i] = taskToOut(t)
	}
	return out
}

func resultToOut(res sched.Result) ScheduleOut {
	return ScheduleOut{
		TotalPriority: res.TotalPriority,
		Tasks:         tasksToOut(res.Tasks),
	}
}
