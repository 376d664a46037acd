package ticket

import (
	"testing"
	"time"
)

func TestTicketLifecycle(t *testing.T) {
	now := time.Now()
	tk := &Ticket{Status: StatusOpen}

	if err := tk.Resolve(now); err == nil {
		t.Fatalf("expected error resolving an open ticket before work starts")
	}
	if err := tk.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tk.Start(now); err == nil {
		t.Fatalf("expected error starting twice")
	}
	if err := tk.Resolve(now); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tk.ResolvedAt == nil || !tk.ResolvedAt.Equal(now) {
		t.Fatalf("expected resolution timestamp")
	}
	if err := tk.Close(now); err == nil {
		t.Fatalf("expected error closing a resolved ticket")
	}
}

func TestTicketClose(t *testing.T) {
	now := time.Now()
	tk := &Ticket{Status: StatusOpen}
	if err := tk.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := tk.Close(now); err != nil {
		t.Fatalf("close from in progress: %v", err)
	}
	if tk.Status != StatusClosed {
		t.Fatalf("status = %s, want CLOSED", tk.Status)
	}
}

func TestPriorityDefaultsToMedium(t *testing.T) {
	r := &UpsertRequest{Subject: "Printer on fire"}
	r.Normalize()
	if r.Priority != string(PriorityMedium) {
		t.Fatalf("priority = %q, want MEDIUM", r.Priority)
	}
}
