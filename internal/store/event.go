// internal/store/event.go

package store

import (
	"time"
)

// EventKind represents the type of store mutation
type EventKind int

const (
	EventUpsert EventKind = iota
	EventDelete
	EventClear
)

// Event is emitted after every mutation that changed the store contents.
type Event struct {
	Time     time.Time
	Kind     EventKind
	TaskID   string // empty for EventClear
	Revision uint64
	Removed  int // number of tasks dropped by EventClear
}

// Observer receives store events. It runs on the mutating goroutine after the
// store lock has been released, so it may call back into the store.
type Observer func(Event)

func (k EventKind) String() string {
	switch k {
	case EventUpsert:
		return "Upsert"
	case EventDelete:
		return "Delete"
	case EventClear:
		return "Clear"
	default:
		return "Unknown"
	}
}
