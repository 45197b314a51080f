package eventlog

import (
	"testing"
	"time"
)

func TestAppendAndAll(t *testing.T) {
	l := New()
	l.Append(Event{Kind: KindPaymentRequired, TaskID: "t1", Skill: "screenshot", Timestamp: time.Now()})
	l.Append(Event{Kind: KindPaymentSettled, TaskID: "t1", Skill: "screenshot", Timestamp: time.Now()})

	all := l.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[0].Kind != KindPaymentRequired || all[1].Kind != KindPaymentSettled {
		t.Fatalf("append order not preserved: %+v", all)
	}
}

func TestAllReturnsACopy(t *testing.T) {
	l := New()
	l.Append(Event{Kind: KindPaymentRequired, TaskID: "t1"})
	got := l.All()
	got[0].TaskID = "mutated"
	if l.All()[0].TaskID != "t1" {
		t.Fatalf("mutating All() result leaked into the log")
	}
}

func TestCountByKind(t *testing.T) {
	l := New()
	l.Append(Event{Kind: KindPaymentRequired})
	l.Append(Event{Kind: KindPaymentRequired})
	l.Append(Event{Kind: KindPaymentSettled})

	counts := l.CountByKind()
	if counts[KindPaymentRequired] != 2 {
		t.Fatalf("count[payment-required] = %d, want 2", counts[KindPaymentRequired])
	}
	if counts[KindPaymentSettled] != 1 {
		t.Fatalf("count[payment-settled] = %d, want 1", counts[KindPaymentSettled])
	}
}

func TestLoadSnapshotReplacesContents(t *testing.T) {
	l := New()
	l.Append(Event{Kind: KindPaymentRequired})
	l.LoadSnapshot([]Event{{Kind: KindSIWXAccess}})
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1 after snapshot load", l.Len())
	}
	if l.All()[0].Kind != KindSIWXAccess {
		t.Fatalf("snapshot load did not replace contents")
	}
}
