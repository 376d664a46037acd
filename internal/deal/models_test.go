package deal

import (
	"testing"
	"time"
)

func TestStageTransitions(t *testing.T) {
	cases := []struct {
		from    Stage
		to      Stage
		allowed bool
	}{
		{StageLead, StageQualified, true},
		{StageLead, StageLost, true},
		{StageLead, StageProposal, false},
		{StageLead, StageWon, false},
		{StageQualified, StageProposal, true},
		{StageQualified, StageLost, true},
		{StageQualified, StageLead, false},
		{StageProposal, StageNegotiation, true},
		{StageProposal, StageWon, false},
		{StageNegotiation, StageWon, true},
		{StageNegotiation, StageLost, true},
		{StageWon, StageLost, false},
		{StageLost, StageLead, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanMoveTo(tc.to); got != tc.allowed {
			t.Fatalf("CanMoveTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestMoveToStampsClosedAt(t *testing.T) {
	now := time.Now()
	d := &Deal{Stage: StageNegotiation}
	if err := d.MoveTo(StageWon, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ClosedAt == nil || !d.ClosedAt.Equal(now) {
		t.Fatalf("expected ClosedAt to be stamped on terminal move")
	}

	open := &Deal{Stage: StageLead}
	if err := open.MoveTo(StageQualified, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.ClosedAt != nil {
		t.Fatalf("expected ClosedAt to stay nil on open move")
	}
}

func TestMoveToRejectsInvalid(t *testing.T) {
	d := &Deal{Stage: StageWon}
	if err := d.MoveTo(StageLost, time.Now()); err == nil {
		t.Fatalf("expected error moving a terminal deal")
	}
	if err := d.MoveTo(Stage("BOGUS"), time.Now()); err == nil {
		t.Fatalf("expected error for unknown stage")
	}
}
