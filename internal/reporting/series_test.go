package reporting

import "testing"

func TestBuildWeeklySeriesAlwaysFillsWindow(t *testing.T) {
	roster := []string{"Alpha Pharmacy", "Beta Pharmacy"}
	current, _ := ParseWeek("2024-03-25")

	// No submissions at all: twelve zero-valued buckets, ascending.
	points := BuildWeeklySeries(roster, current, 12, nil)
	if len(points) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(points))
	}
	for i, p := range points {
		if p.Total != 0 {
			t.Fatalf("bucket %d should be zero, got %v", i, p.Total)
		}
		if len(p.PerPharmacy) != 2 {
			t.Fatalf("bucket %d missing roster slots: %+v", i, p.PerPharmacy)
		}
		if i > 0 && !points[i-1].Week.Before(p.Week) {
			t.Fatalf("buckets not chronological at %d", i)
		}
	}
	if points[11].Week != current {
		t.Fatalf("newest bucket should be the current week, got %s", points[11].Week)
	}
}

func TestBuildWeeklySeriesFoldsRows(t *testing.T) {
	roster := []string{"Alpha Pharmacy", "Beta Pharmacy"}
	current, _ := ParseWeek("2024-03-25")
	prev := current.Offset(-1)
	outside := current.Offset(-12)

	rows := []SubmissionTotal{
		{Pharmacy: "Alpha Pharmacy", Week: current, TotalRevenue: 100},
		{Pharmacy: "Beta Pharmacy", Week: current, TotalRevenue: 40},
		{Pharmacy: "Alpha Pharmacy", Week: prev, TotalRevenue: 70},
		{Pharmacy: "Alpha Pharmacy", Week: outside, TotalRevenue: 999}, // beyond window
	}

	points := BuildWeeklySeries(roster, current, 12, rows)
	last := points[11]
	if last.Total != 140 {
		t.Fatalf("expected current bucket 140, got %v", last.Total)
	}
	if last.PerPharmacy["Alpha Pharmacy"] != 100 || last.PerPharmacy["Beta Pharmacy"] != 40 {
		t.Fatalf("unexpected per-pharmacy slots: %+v", last.PerPharmacy)
	}
	if points[10].Total != 70 {
		t.Fatalf("expected prior bucket 70, got %v", points[10].Total)
	}
	for _, p := range points {
		if p.Total == 999 {
			t.Fatalf("row outside window leaked into series")
		}
	}
}

func TestBuildMonthlySeriesAttribution(t *testing.T) {
	roster := []string{"Alpha Pharmacy"}
	current, _ := ParseWeek("2024-02-26")
	spanning, _ := ParseWeek("2024-01-29") // week runs into February

	rows := []SubmissionTotal{
		{Pharmacy: "Alpha Pharmacy", Week: spanning, TotalRevenue: 50},
		{Pharmacy: "Alpha Pharmacy", Week: current, TotalRevenue: 30},
	}

	points := BuildMonthlySeries(roster, current, 26, rows)
	if len(points) == 0 {
		t.Fatalf("expected month buckets")
	}
	byMonth := make(map[string]MonthPoint, len(points))
	for i, p := range points {
		byMonth[p.Month] = p
		if i > 0 && points[i-1].Month >= p.Month {
			t.Fatalf("months not ascending: %s then %s", points[i-1].Month, p.Month)
		}
	}
	// Week commencing 2024-01-29 spans Jan/Feb but belongs wholly to January.
	if got := byMonth["2024-01"].Total; got != 50 {
		t.Fatalf("expected 2024-01 total 50, got %v", got)
	}
	if got := byMonth["2024-02"].Total; got != 30 {
		t.Fatalf("expected 2024-02 total 30, got %v", got)
	}
}

func TestBuildMonthlySeriesCoversWindowWithZeroes(t *testing.T) {
	roster := []string{"Alpha Pharmacy"}
	current, _ := ParseWeek("2024-06-24")

	points := BuildMonthlySeries(roster, current, 26, nil)
	// 26 weeks reach back to Monday 2024-01-01: six month buckets.
	if len(points) != 6 {
		t.Fatalf("expected 6 month buckets, got %d", len(points))
	}
	if points[0].Month != "2024-01" || points[len(points)-1].Month != "2024-06" {
		t.Fatalf("unexpected month range: %s .. %s", points[0].Month, points[len(points)-1].Month)
	}
	for _, p := range points {
		if p.Total != 0 || p.PerPharmacy["Alpha Pharmacy"] != 0 {
			t.Fatalf("expected zero bucket, got %+v", p)
		}
	}
}
