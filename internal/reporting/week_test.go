package reporting

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWeekOfNormalisesToMonday(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-29", "2024-01-29"}, // already a Monday
		{"2024-01-31", "2024-01-29"}, // Wednesday
		{"2024-02-04", "2024-01-29"}, // Sunday still belongs to the prior Monday
		{"2024-02-05", "2024-02-05"}, // next Monday
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.in)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.in, err)
		}
		if got := WeekOf(d).String(); got != tc.want {
			t.Fatalf("WeekOf(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseWeekSnapsToMonday(t *testing.T) {
	key, err := ParseWeek("2024-03-14")
	if err != nil {
		t.Fatalf("parse week: %v", err)
	}
	if key.String() != "2024-03-11" {
		t.Fatalf("expected 2024-03-11, got %s", key)
	}
	if _, err := ParseWeek("not-a-date"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOffsetCrossesMonthAndYear(t *testing.T) {
	key, _ := ParseWeek("2024-01-01")
	if got := key.Offset(-1).String(); got != "2023-12-25" {
		t.Fatalf("offset -1 = %s, want 2023-12-25", got)
	}
	if got := key.Offset(5).String(); got != "2024-02-05" {
		t.Fatalf("offset +5 = %s, want 2024-02-05", got)
	}
	if back := key.Offset(-12).Offset(12); back != key {
		t.Fatalf("offset round trip mismatch: %s", back)
	}
}

func TestMonthUsesMonday(t *testing.T) {
	// Week commencing 2024-01-29 spans Jan/Feb; it belongs to January.
	key, _ := ParseWeek("2024-01-29")
	if got := key.Month(); got != "2024-01" {
		t.Fatalf("month = %s, want 2024-01", got)
	}
}

func TestWindowEnumeratesAscending(t *testing.T) {
	end, _ := ParseWeek("2024-03-25")
	keys := Window(end, 12)
	if len(keys) != 12 {
		t.Fatalf("expected 12 keys, got %d", len(keys))
	}
	if keys[0].String() != "2024-01-08" {
		t.Fatalf("oldest key = %s, want 2024-01-08", keys[0])
	}
	if keys[11] != end {
		t.Fatalf("newest key = %s, want %s", keys[11], end)
	}
	for i := 1; i < len(keys); i++ {
		if !keys[i-1].Before(keys[i]) {
			t.Fatalf("keys not ascending at %d", i)
		}
	}
	if Window(end, 0) != nil {
		t.Fatalf("expected nil window for size 0")
	}
}

func TestWeekKeyJSONRoundTrip(t *testing.T) {
	key, _ := ParseWeek("2024-02-12")
	raw, err := json.Marshal(key)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-02-12"` {
		t.Fatalf("unexpected json: %s", raw)
	}
	var decoded WeekKey
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != key {
		t.Fatalf("round trip mismatch: %s", decoded)
	}
}
