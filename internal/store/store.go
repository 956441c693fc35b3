// internal/store/store.go

package store

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/trees/redblacktree"

	"smartsched/internal/sched"
)

// Store is a concurrency-safe in-memory collection of tasks keyed by id.
// Every read hands out copies, never the tree itself.
type Store struct {
	mu        sync.RWMutex       // protects tree and revision
	tree      *redblacktree.Tree // task id -> sched.Task, ordered by id
	revision  uint64             // bumped on every content change
	observers []Observer
}

// New creates an empty store. Observers are notified of every mutation.
func New(observers ...Observer) *Store {
	return &Store{
		tree:      redblacktree.NewWithStringComparator(),
		observers: observers,
	}
}

// Upsert inserts the task or replaces the one with the same id.
func (s *Store) Upsert(t sched.Task) {
	s.mu.Lock()
	s.tree.Put(t.ID(), t)
	s.revision++
	ev := Event{Time: time.Now(), Kind: EventUpsert, TaskID: t.ID(), Revision: s.revision}
	s.mu.Unlock() // NOTE: unlock before notifying so observers may read the store

	s.notify(ev)
}

// Get returns the task stored under id.
func (s *Store) Get(id string) (sched.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.tree.Get(id)
	if !ok {
		return sched.Task{}, false
	}
	return v.(sched.Task), true
}

// Delete removes the task stored under id. It reports false if there was none.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	if _, ok := s.tree.Get(id); !ok {
		s.mu.Unlock()
		return false
	}
	s.tree.Remove(id)
	s.revision++
	ev := Event{Time: time.Now(), Kind: EventDelete, TaskID: id, Revision: s.revision}
	s.mu.Unlock()

	s.notify(ev)
	return true
}

// List returns a point-in-time copy of all tasks, ordered by id.
func (s *Store) List() []sched.Task {
	tasks, _ := s.Snapshot()
	return tasks
}

// Snapshot returns the same copy as List together with the revision it
// was taken at.
func (s *Store) Snapshot() ([]sched.Task, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := s.tree.Values()
	tasks := make([]sched.Task, len(values))
	for i, v := range values {
		tasks[i] = v.(sched.Task)
	}
	return tasks, s.revision
}

// Clear drops every task. Clearing an empty store is not a change.
func (s *Store) Clear() int {
	s.mu.Lock()
	n := s.tree.Size()
	if n == 0 {
		s.mu.Unlock()
		return 0
	}
	s.tree.Clear()
	s.revision++
	ev := Event{Time: time.Now(), Kind: EventClear, Revision: s.revision, Removed: n}
	s.mu.Unlock()

	s.notify(ev)
	return n
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Size()
}

// Revision returns the current content revision.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) notify(ev Event) {
	for _, o := range s.observers {
		o(ev)
	}
}
