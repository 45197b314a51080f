package task

import (
	"testing"
	"time"
)

func TestStoreCreateAssignsInitialState(t *testing.T) {
	s := New()
	tk := s.Create("t1", "ctx1", StateSubmitted, nil)
	if tk.State != StateSubmitted {
		t.Fatalf("state = %v, want submitted", tk.State)
	}
	if s.TotalTasks() != 1 {
		t.Fatalf("total tasks = %d, want 1", s.TotalTasks())
	}
}

func TestStoreUpdateRefusesTerminalRegression(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	if !s.Update("t1", StateCompleted, "", nil, nil) {
		t.Fatalf("expected transition to completed to succeed")
	}
	if s.Update("t1", StateWorking, "", nil, nil) {
		t.Fatalf("expected transition out of a terminal state to be refused")
	}
	got, _ := s.Get("t1")
	if got.State != StateCompleted {
		t.Fatalf("state = %v, want completed to remain unchanged", got.State)
	}
}

func TestStoreUpdateSameTerminalStateIsANoRegression(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	s.Update("t1", StateFailed, "", nil, nil)
	if !s.Update("t1", StateFailed, "", nil, nil) {
		t.Fatalf("re-asserting the same terminal state should not be refused")
	}
}

func TestStoreUpdateEmptyPaymentStatusLeavesExistingValue(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	s.Update("t1", StateWorking, "payment-verified", nil, nil)
	s.Update("t1", StateCompleted, "", nil, nil)
	got, _ := s.Get("t1")
	if got.PaymentStatus != "payment-verified" {
		t.Fatalf("payment status = %q, want it to survive an empty-status update", got.PaymentStatus)
	}
}

func TestStoreCancelDoesNotResurrectTerminalTask(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	s.Update("t1", StateCompleted, "", nil, nil)
	got, ok := s.Cancel("t1")
	if !ok {
		t.Fatalf("cancel of unknown id")
	}
	if got.State != StateCompleted {
		t.Fatalf("state = %v, want completed task to stay completed", got.State)
	}
}

func TestStoreGetReturnsIndependentCopies(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	a, _ := s.Get("t1")
	a.SetMetadata("x", "mutated")
	b, _ := s.Get("t1")
	if _, ok := b.Metadata["x"]; ok {
		t.Fatalf("mutating a Get() result leaked into the store")
	}
}

func TestStoreEvictExpiredRemovesOldTerminalTasks(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	s.Update("t1", StateCompleted, "", nil, nil)

	removed := s.EvictExpired(time.Now(), time.Hour)
	if removed != 0 {
		t.Fatalf("removed = %d, want 0 (not yet past retention)", removed)
	}

	removed = s.EvictExpired(time.Now().Add(2*time.Hour), time.Hour)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := s.Get("t1"); ok {
		t.Fatalf("task still present after eviction")
	}
}

func TestStoreEvictExpiredRemovesStaleInputRequired(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	s.Mutate("t1", func(tk *Task) {
		tk.State = StateInputRequired
		tk.InputRequiredDeadline = time.Now().Add(-time.Minute)
	})
	if removed := s.EvictExpired(time.Now(), time.Hour); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestSetTotalTasksNeverDecreases(t *testing.T) {
	s := New()
	s.Create("t1", "", StateSubmitted, nil)
	s.SetTotalTasks(0)
	if s.TotalTasks() != 1 {
		t.Fatalf("total tasks = %d, want 1 (restore must not decrease)", s.TotalTasks())
	}
	s.SetTotalTasks(50)
	if s.TotalTasks() != 50 {
		t.Fatalf("total tasks = %d, want 50", s.TotalTasks())
	}
}
