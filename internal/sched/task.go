package sched

import (
	"errors"
	"fmt"
	"maps"
	"math"
)

// MaxPriority bounds task priorities so that summed schedule totals stay far
// from integer overflow.
const MaxPriority = math.MaxInt32

var (
	// ErrInvalidTask is returned when task fields violate an invariant.
	ErrInvalidTask = errors.New("invalid task")

	// ErrMixedAwareness is returned when one scheduling call mixes naive and
	// timezone-aware instants.
	ErrMixedAwareness = errors.New("cannot mix naive and timezone-aware time values")
)

// Task represents one schedulable interval [start, end) with a weight.
// The zero value is not a valid task; use NewTask.
type Task struct {
	id       string
	start    Instant
	end      Instant
	priority int
	meta     map[string]any // opaque, carried through untouched
}

// NewTask validates the fields and returns an immutable task.
func NewTask(id string, start, end Instant, priority int, meta map[string]any) (Task, error) {
	if start.IsAware() != end.IsAware() {
		return Task{}, fmt.Errorf("task %q: start and end must both be timezone-aware or both naive: %w", id, ErrInvalidTask)
	}
	if end.Compare(start) <= 0 {
		return Task{}, fmt.Errorf("task %q: end must be strictly after start: %w", id, ErrInvalidTask)
	}
	if priority < 0 {
		return Task{}, fmt.Errorf("task %q: priority must be non-negative: %w", id, ErrInvalidTask)
	}
	if priority > MaxPriority {
		return Task{}, fmt.Errorf("task %q: priority must not exceed %d: %w", id, MaxPriority, ErrInvalidTask)
	}

	return Task{
		id:       id,
		start:    start,
		end:      end,
		priority: priority,
		meta:     maps.Clone(meta),
	}, nil
}

func (t Task) ID() string     { return t.id }
func (t Task) Start() Instant { return t.start }
func (t Task) End() Instant   { return t.end }
func (t Task) Priority() int  { return t.priority }
func (t Task) IsAware() bool  { return t.start.IsAware() }

// Meta returns a shallow copy of the auxiliary payload, nil if none was set.
func (t Task) Meta() map[string]any { return maps.Clone(t.meta) }

// Overlaps reports whether the half-open intervals of t and o intersect.
func (t Task) Overlaps(o Task) bool {
	return t.start.Before(o.end) && o.start.Before(t.end)
}
