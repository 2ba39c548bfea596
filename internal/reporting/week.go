package reporting

import (
	"errors"
	"fmt"
	"time"
)

const weekKeyFormat = "2006-01-02"

// ErrBadWeek marks an unparsable week parameter.
var ErrBadWeek = errors.New("reporting: invalid week date")

// WeekKey identifies an ISO calendar week by its Monday date. The zero
// value is not a valid key; construct via WeekOf or ParseWeek.
type WeekKey struct {
	monday time.Time
}

// WeekOf normalises any instant to the Monday of its week at midnight UTC.
func WeekOf(t time.Time) WeekKey {
	t = t.UTC()
	// time.Weekday has Sunday == 0; shift so Monday == 0.
	back := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day()-back, 0, 0, 0, 0, time.UTC)
	return WeekKey{monday: monday}
}

// ParseWeek parses a YYYY-MM-DD date and snaps it to its week's Monday.
func ParseWeek(s string) (WeekKey, error) {
	t, err := time.Parse(weekKeyFormat, s)
	if err != nil {
		return WeekKey{}, fmt.Errorf("%w: %q", ErrBadWeek, s)
	}
	return WeekOf(t), nil
}

// Start returns the Monday midnight instant in UTC.
func (w WeekKey) Start() time.Time {
	return w.monday
}

// Offset returns the key n weeks away; n may be negative.
func (w WeekKey) Offset(n int) WeekKey {
	return WeekKey{monday: w.monday.AddDate(0, 0, 7*n)}
}

// Month returns the YYYY-MM bucket the week belongs to. A week spanning
// two months is attributed entirely to the month containing its Monday.
func (w WeekKey) Month() string {
	return w.monday.Format("2006-01")
}

// Before reports chronological order.
func (w WeekKey) Before(other WeekKey) bool {
	return w.monday.Before(other.monday)
}

// IsZero reports whether the key was never set.
func (w WeekKey) IsZero() bool {
	return w.monday.IsZero()
}

func (w WeekKey) String() string {
	return w.monday.Format(weekKeyFormat)
}

// MarshalJSON renders the key as its Monday date string.
func (w WeekKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON accepts a YYYY-MM-DD date string.
func (w *WeekKey) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("reporting: week key must be a date string, got %s", s)
	}
	key, err := ParseWeek(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*w = key
	return nil
}

// Window enumerates the n week keys ending at (and including) end,
// oldest first.
func Window(end WeekKey, n int) []WeekKey {
	if n <= 0 {
		return nil
	}
	keys := make([]WeekKey, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, end.Offset(-i))
	}
	return keys
}
