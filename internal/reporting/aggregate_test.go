package reporting

import (
	"testing"

	"github.com/pharmalink/pharmalink/internal/catalog"
)

func TestAggregateEndToEnd(t *testing.T) {
	cat := fixtureCatalog()
	week, _ := ParseWeek("2024-03-11")

	subs := []WeeklySubmission{
		{
			Pharmacy: "Alpha Pharmacy",
			Week:     week,
			Counts:   map[string]int{"fixed_ten": 3},
			Revenues: map[string]float64{"variable": 25},
		},
	}

	summary := Aggregate(cat, week, subs)

	if summary.TotalRevenue != 55 {
		t.Fatalf("expected total revenue 55, got %v", summary.TotalRevenue)
	}
	if summary.TotalSessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", summary.TotalSessions)
	}
	if summary.SubmittedCount != 1 {
		t.Fatalf("expected 1 submission, got %d", summary.SubmittedCount)
	}
	if got := summary.CategoryTotals[catalog.CategoryNHSClinical]; got != 30 {
		t.Fatalf("expected NHS Clinical 30, got %v", got)
	}
	if got := summary.CategoryTotals[catalog.CategoryPrivateClinics]; got != 25 {
		t.Fatalf("expected Private Clinics 25, got %v", got)
	}
}

func TestAggregateRosterSlotsForMissingSites(t *testing.T) {
	cat := fixtureCatalog()
	week, _ := ParseWeek("2024-03-11")

	summary := Aggregate(cat, week, nil)

	if summary.TotalRevenue != 0 || summary.SubmittedCount != 0 {
		t.Fatalf("empty week should aggregate to zero, got %+v", summary)
	}
	if len(summary.PerPharmacy) != 2 {
		t.Fatalf("expected a slot per roster member, got %d", len(summary.PerPharmacy))
	}
	for _, slot := range summary.PerPharmacy {
		if slot.Submitted || slot.Revenue != 0 {
			t.Fatalf("expected empty slot, got %+v", slot)
		}
	}
	// Category map still iterates every category for rendering.
	if len(summary.CategoryTotals) != len(cat.Categories()) {
		t.Fatalf("expected %d categories, got %d", len(cat.Categories()), len(summary.CategoryTotals))
	}
}

func TestAggregateServiceTotalsSortedByRevenue(t *testing.T) {
	five, twenty := 5.0, 20.0
	cat := catalog.New([]catalog.Service{
		{ID: "a", Label: "A", Fee: &five, Category: catalog.CategoryCPCS},
		{ID: "b", Label: "B", Fee: &twenty, Category: catalog.CategoryCPCS},
		{ID: "c", Label: "C", Fee: &five, Category: catalog.CategoryCPCS},
	}, []string{"Alpha Pharmacy"})
	week, _ := ParseWeek("2024-03-11")

	subs := []WeeklySubmission{{
		Pharmacy: "Alpha Pharmacy",
		Week:     week,
		Counts:   map[string]int{"a": 2, "b": 1, "c": 2},
	}}

	summary := Aggregate(cat, week, subs)
	if len(summary.ServiceTotals) != 3 {
		t.Fatalf("expected 3 service totals, got %d", len(summary.ServiceTotals))
	}
	// b leads on revenue (20); a and c tie on 10 and keep catalog order.
	if summary.ServiceTotals[0].Service.ID != "b" {
		t.Fatalf("expected b first, got %s", summary.ServiceTotals[0].Service.ID)
	}
	if summary.ServiceTotals[1].Service.ID != "a" || summary.ServiceTotals[2].Service.ID != "c" {
		t.Fatalf("tie break should keep catalog order, got %s then %s",
			summary.ServiceTotals[1].Service.ID, summary.ServiceTotals[2].Service.ID)
	}
	if summary.ServiceTotals[0].Count != 1 || summary.ServiceTotals[0].Revenue != 20 {
		t.Fatalf("unexpected leader totals: %+v", summary.ServiceTotals[0])
	}
}

func TestAggregateIdempotentUnderResubmission(t *testing.T) {
	cat := fixtureCatalog()
	week, _ := ParseWeek("2024-03-11")
	sub := WeeklySubmission{
		Pharmacy: "Alpha Pharmacy",
		Week:     week,
		Counts:   map[string]int{"fixed_ten": 3},
		Revenues: map[string]float64{"variable": 25},
	}

	// Upsert semantics: an identical resubmission replaces the record, so
	// aggregating the stored state twice yields identical totals.
	first := Aggregate(cat, week, []WeeklySubmission{sub})
	second := Aggregate(cat, week, []WeeklySubmission{sub})
	if first.TotalRevenue != second.TotalRevenue || first.SubmittedCount != second.SubmittedCount {
		t.Fatalf("aggregation not stable: %+v vs %+v", first, second)
	}
}
