package reporting

import (
	"sort"

	"github.com/pharmalink/pharmalink/internal/catalog"
)

// ServiceTotal aggregates one service across every submission in a week.
// Variable-revenue services carry no session count.
type ServiceTotal struct {
	Service catalog.Service
	Count   int
	Revenue float64
}

// PharmacySlot is one roster entry in a week summary. Sites without a
// submission still get a slot so consumers can render "not submitted".
type PharmacySlot struct {
	Pharmacy  string
	Submitted bool
	Revenue   float64
	Sessions  int
}

// WeekSummary is the aggregate view of a single week across the group.
type WeekSummary struct {
	Week           WeekKey
	TotalRevenue   float64
	TotalSessions  int
	SubmittedCount int
	CategoryTotals map[catalog.Category]float64
	ServiceTotals  []ServiceTotal
	PerPharmacy    []PharmacySlot
}

// Submission returns the slot for a pharmacy, if present.
func (s WeekSummary) Submission(pharmacy string) (PharmacySlot, bool) {
	for _, slot := range s.PerPharmacy {
		if slot.Pharmacy == pharmacy {
			return slot, true
		}
	}
	return PharmacySlot{}, false
}

// ServiceRevenue returns the aggregated revenue for a service id.
func (s WeekSummary) ServiceRevenue(id string) float64 {
	for _, st := range s.ServiceTotals {
		if st.Service.ID == id {
			return st.Revenue
		}
	}
	return 0
}

// Aggregate folds a week's submissions (at most one per pharmacy) into
// group, category, service and per-site totals. Totals are recomputed
// from raw counts/revenues; persisted caches are never trusted here.
func Aggregate(cat *catalog.Catalog, week WeekKey, subs []WeeklySubmission) WeekSummary {
	byPharmacy := make(map[string]*WeeklySubmission, len(subs))
	for i := range subs {
		byPharmacy[subs[i].Pharmacy] = &subs[i]
	}

	summary := WeekSummary{
		Week:           week,
		CategoryTotals: make(map[catalog.Category]float64, len(cat.Categories())),
	}
	for _, category := range cat.Categories() {
		summary.CategoryTotals[category] = 0
	}

	services := cat.Services()
	totals := make([]ServiceTotal, 0, len(services))
	for _, svc := range services {
		st := ServiceTotal{Service: svc}
		for _, name := range cat.Pharmacies() {
			sub := byPharmacy[name]
			if sub == nil {
				continue
			}
			if svc.Fixed() {
				if n := sub.Counts[svc.ID]; n > 0 {
					st.Count += n
				}
			}
			st.Revenue += Revenue(svc, sub)
		}
		summary.CategoryTotals[svc.Category] += st.Revenue
		totals = append(totals, st)
	}
	// Descending revenue; stable keeps catalog order on ties.
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Revenue > totals[j].Revenue
	})
	summary.ServiceTotals = totals

	for _, name := range cat.Pharmacies() {
		slot := PharmacySlot{Pharmacy: name}
		if sub, ok := byPharmacy[name]; ok {
			slot.Submitted = true
			slot.Revenue, slot.Sessions = SubmissionTotals(cat, sub)
			summary.SubmittedCount++
			summary.TotalRevenue += slot.Revenue
			summary.TotalSessions += slot.Sessions
		}
		summary.PerPharmacy = append(summary.PerPharmacy, slot)
	}

	return summary
}
