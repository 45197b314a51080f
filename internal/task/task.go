// Package task implements the task store: task lifecycle, history, and the
// monotonic total-task counter.
package task

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/payment"
)

// State is one of a task's lifecycle states.
type State string

const (
	StateSubmitted     State = "submitted"
	StateWorking       State = "working"
	StateInputRequired State = "input-required"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
	StateCanceled      State = "canceled"
)

// terminal reports whether a state is one of the three terminal states.
func (s State) terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCanceled
}

// IsTerminal reports whether a state is one of the three terminal states.
func (s State) IsTerminal() bool { return s.terminal() }

// Task is one task record, keyed by its opaque id.
type Task struct {
	ID            string
	ContextID     string
	State         State
	PaymentStatus message.PaymentStatus
	History       []message.Message
	Metadata      map[string]json.RawMessage

	CreatedAt time.Time
	UpdatedAt time.Time
	// InputRequiredDeadline is set when the task enters input-required and
	// bounds how long it may be retained before eviction (spec §9 open
	// question on task-store eviction policy).
	InputRequiredDeadline time.Time
}

// Clone returns a deep-enough copy for safe return across the store
// boundary (history slice and metadata map are copied; message contents are
// shared, since Message values are treated as immutable once appended).
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	cp.History = append([]message.Message(nil), t.History...)
	cp.Metadata = make(map[string]json.RawMessage, len(t.Metadata))
	for k, v := range t.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

// SetMetadata marshals v and stores it under key.
func (t *Task) SetMetadata(key string, v interface{}) {
	if t.Metadata == nil {
		t.Metadata = map[string]json.RawMessage{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	t.Metadata[key] = b
}

// Receipts returns the receipts attached to this task's metadata, if any.
func (t *Task) Receipts() []payment.Receipt {
	raw, ok := t.Metadata["receipts"]
	if !ok {
		return nil
	}
	var out []payment.Receipt
	_ = json.Unmarshal(raw, &out)
	return out
}

// Store is the concurrency-safe task store.
type Store struct {
	mu         sync.RWMutex
	tasks      map[string]*Task
	totalTasks uint64
}

// New creates an empty task store.
func New() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

// Create inserts a new task, incrementing the monotonic total-task counter.
func (s *Store) Create(id, contextID string, state State, msg *message.Message) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t := &Task{
		ID:        id,
		ContextID: contextID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]json.RawMessage{},
	}
	if msg != nil {
		t.History = append(t.History, *msg)
	}
	s.tasks[id] = t
	s.totalTasks++
	return t.Clone()
}

// Get returns a copy of the task with the given id, and whether it exists.
func (s *Store) Get(id string) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Mutate runs fn against the live task under the store lock, allowing the
// caller to make a read-modify-write update atomically (used by the engine
// to implement correlated resubmission's at-most-once guarantee, spec §5).
// fn must not block. Returns false if the task does not exist.
func (s *Store) Mutate(id string, fn func(t *Task)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return true
}

// Update transitions the task to newState, refusing transitions that would
// regress a terminal state (spec invariant 1). Appends msg to history and
// merges metaPatch if provided. A zero paymentStatus leaves the existing
// value unchanged. Returns false if the task does not exist or the
// transition was refused.
func (s *Store) Update(id string, newState State, paymentStatus message.PaymentStatus, msg *message.Message, metaPatch map[string]json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	if t.State.terminal() && newState != t.State {
		return false
	}
	t.State = newState
	if paymentStatus != "" {
		t.PaymentStatus = paymentStatus
	}
	if msg != nil {
		t.History = append(t.History, *msg)
	}
	for k, v := range metaPatch {
		t.Metadata[k] = v
	}
	t.UpdatedAt = time.Now()
	return true
}

// Cancel forces state=canceled on any non-terminal task. An already-terminal
// task is returned unchanged, so a completed or failed task never turns
// into a canceled one.
func (s *Store) Cancel(id string) (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	if !t.State.terminal() {
		t.State = StateCanceled
		t.UpdatedAt = time.Now()
	}
	return t.Clone(), true
}

// TotalTasks returns the monotonic total-task counter.
func (s *Store) TotalTasks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalTasks
}

// CountByState returns the number of live (non-evicted) tasks in each state.
func (s *Store) CountByState() map[State]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[State]int{}
	for _, t := range s.tasks {
		out[t.State]++
	}
	return out
}

// SetTotalTasks restores the monotonic counter from a snapshot. Used only
// at startup.
func (s *Store) SetTotalTasks(n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.totalTasks {
		s.totalTasks = n
	}
}

// EvictExpired removes terminal tasks older than retention and
// input-required tasks past their InputRequiredDeadline. It never touches
// the session store or event log (spec §9).
func (s *Store) EvictExpired(now time.Time, retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		switch {
		case t.State.terminal() && now.Sub(t.UpdatedAt) > retention:
			delete(s.tasks, id)
			removed++
		case t.State == StateInputRequired && !t.InputRequiredDeadline.IsZero() && now.After(t.InputRequiredDeadline):
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}
