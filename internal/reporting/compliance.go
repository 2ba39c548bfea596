package reporting

import (
	"math"
	"time"
)

// ComplianceState classifies a site's submission timeliness for a week.
type ComplianceState string

const (
	// StateOnTime: submitted at or before the cutoff. Terminal.
	StateOnTime ComplianceState = "on_time"
	// StateLate: submitted after the cutoff. Terminal.
	StateLate ComplianceState = "late"
	// StateOverdue: not submitted and the cutoff has passed.
	StateOverdue ComplianceState = "overdue"
	// StateDueSoon: not submitted, two hours or less remain.
	StateDueSoon ComplianceState = "due_soon"
	// StatePending: not submitted, cutoff comfortably ahead.
	StatePending ComplianceState = "pending"
)

const dueSoonWindow = 2 * time.Hour

// Compliance is the evaluated status; HoursLeft is populated only for
// due_soon, rounded to the nearest whole hour.
type Compliance struct {
	State     ComplianceState `json:"state"`
	HoursLeft int             `json:"hours_left,omitempty"`
}

// Deadline evaluates submission timeliness against a weekly cutoff: the
// configured hour-of-day on the week's Monday, in the configured location.
type Deadline struct {
	Hour     int
	Location *time.Location
}

// NewDeadline builds an evaluator; a nil location means UTC.
func NewDeadline(hour int, loc *time.Location) Deadline {
	if loc == nil {
		loc = time.UTC
	}
	return Deadline{Hour: hour, Location: loc}
}

// Cutoff returns the cutoff instant for a week.
func (d Deadline) Cutoff(week WeekKey) time.Time {
	monday := week.Start()
	return time.Date(monday.Year(), monday.Month(), monday.Day(), d.Hour, 0, 0, 0, d.Location)
}

// Evaluate is a pure projection of (week, submittedAt, now) onto a
// compliance state. A submission's state is fixed by its timestamp and
// never changes retroactively; absent submissions depend on now.
func (d Deadline) Evaluate(week WeekKey, submittedAt *time.Time, now time.Time) Compliance {
	cutoff := d.Cutoff(week)
	if submittedAt != nil {
		if submittedAt.After(cutoff) {
			return Compliance{State: StateLate}
		}
		return Compliance{State: StateOnTime}
	}
	if now.After(cutoff) {
		return Compliance{State: StateOverdue}
	}
	remaining := cutoff.Sub(now)
	if remaining <= dueSoonWindow {
		return Compliance{
			State:     StateDueSoon,
			HoursLeft: int(math.Round(remaining.Hours())),
		}
	}
	return Compliance{State: StatePending}
}

// ComplianceCounts tallies terminal and urgent states across the group.
type ComplianceCounts struct {
	OnTime  int `json:"on_time"`
	Late    int `json:"late"`
	Overdue int `json:"overdue"`
	DueSoon int `json:"due_soon"`
	Pending int `json:"pending"`
}

// CountStates folds evaluated statuses into simple counters.
func CountStates(statuses []Compliance) ComplianceCounts {
	var c ComplianceCounts
	for _, s := range statuses {
		switch s.State {
		case StateOnTime:
			c.OnTime++
		case StateLate:
			c.Late++
		case StateOverdue:
			c.Overdue++
		case StateDueSoon:
			c.DueSoon++
		case StatePending:
			c.Pending++
		}
	}
	return c
}
