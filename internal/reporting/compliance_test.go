package reporting

import (
	"testing"
	"time"
)

func TestEvaluateSubmittedStates(t *testing.T) {
	d := NewDeadline(12, time.UTC)
	week, _ := ParseWeek("2024-03-11")
	cutoff := d.Cutoff(week)

	if cutoff != time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected cutoff: %s", cutoff)
	}

	now := cutoff.Add(48 * time.Hour)

	at := cutoff // exactly the cutoff is still on time
	if got := d.Evaluate(week, &at, now); got.State != StateOnTime {
		t.Fatalf("expected on_time at cutoff, got %+v", got)
	}

	at = cutoff.Add(time.Second)
	if got := d.Evaluate(week, &at, now); got.State != StateLate {
		t.Fatalf("expected late one second after cutoff, got %+v", got)
	}

	// Terminal once submitted: now does not matter.
	at = cutoff.Add(-time.Hour)
	if got := d.Evaluate(week, &at, cutoff.Add(1000*time.Hour)); got.State != StateOnTime {
		t.Fatalf("submitted state must not change retroactively, got %+v", got)
	}
}

func TestEvaluatePendingStates(t *testing.T) {
	d := NewDeadline(12, time.UTC)
	week, _ := ParseWeek("2024-03-11")
	cutoff := d.Cutoff(week)

	if got := d.Evaluate(week, nil, cutoff.Add(time.Minute)); got.State != StateOverdue {
		t.Fatalf("expected overdue after cutoff, got %+v", got)
	}

	got := d.Evaluate(week, nil, cutoff.Add(-time.Hour))
	if got.State != StateDueSoon || got.HoursLeft != 1 {
		t.Fatalf("expected due_soon with 1 hour left, got %+v", got)
	}

	got = d.Evaluate(week, nil, cutoff.Add(-2*time.Hour))
	if got.State != StateDueSoon || got.HoursLeft != 2 {
		t.Fatalf("expected due_soon with 2 hours left, got %+v", got)
	}

	// 90 minutes rounds to the nearest whole hour.
	got = d.Evaluate(week, nil, cutoff.Add(-90*time.Minute))
	if got.State != StateDueSoon || got.HoursLeft != 2 {
		t.Fatalf("expected due_soon with 2 hours (rounded), got %+v", got)
	}

	if got := d.Evaluate(week, nil, cutoff.Add(-3*time.Hour)); got.State != StatePending {
		t.Fatalf("expected pending well before cutoff, got %+v", got)
	}
}

func TestCountStates(t *testing.T) {
	counts := CountStates([]Compliance{
		{State: StateOnTime},
		{State: StateOnTime},
		{State: StateLate},
		{State: StateOverdue},
		{State: StateDueSoon, HoursLeft: 1},
		{State: StatePending},
	})
	if counts.OnTime != 2 || counts.Late != 1 || counts.Overdue != 1 || counts.DueSoon != 1 || counts.Pending != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
