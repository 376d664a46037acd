package invoice

import (
	"testing"
	"time"
)

func TestInvoiceLifecycle(t *testing.T) {
	now := time.Now()
	i := &Invoice{Status: StatusDraft}

	if err := i.MarkPaid(now); err == nil {
		t.Fatalf("expected error paying a draft")
	}
	if err := i.Void(now); err == nil {
		t.Fatalf("expected error voiding a draft")
	}

	if err := i.Send(now); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := i.Send(now); err == nil {
		t.Fatalf("expected error sending twice")
	}

	if err := i.MarkPaid(now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if i.PaidAt == nil || !i.PaidAt.Equal(now) {
		t.Fatalf("expected PaidAt to be stamped")
	}
	if err := i.Void(now); err == nil {
		t.Fatalf("expected error voiding a paid invoice")
	}
}

func TestOverdue(t *testing.T) {
	now := time.Now()
	due := now.Add(-24 * time.Hour)

	sent := &Invoice{Status: StatusSent, DueAt: due}
	if !sent.Overdue(now) {
		t.Fatalf("expected a sent invoice past its due date to be overdue")
	}

	draft := &Invoice{Status: StatusDraft, DueAt: due}
	if draft.Overdue(now) {
		t.Fatalf("a draft is never overdue")
	}

	future := &Invoice{Status: StatusSent, DueAt: now.Add(24 * time.Hour)}
	if future.Overdue(now) {
		t.Fatalf("an invoice due tomorrow is not overdue")
	}
}
