package reportinghttp

import (
	"math"

	"github.com/pharmalink/pharmalink/internal/catalog"
	"github.com/pharmalink/pharmalink/internal/reporting"
)

// KPIBlock is the headline strip of the overview: group totals plus
// week-over-week movement. Delta pointers are nil when no prior week
// percentage is computable.
type KPIBlock struct {
	TotalRevenue    float64          `json:"total_revenue"`
	RevenueDelta    *reporting.Delta `json:"revenue_delta,omitempty"`
	TotalSessions   int              `json:"total_sessions"`
	SessionsDelta   *reporting.Delta `json:"sessions_delta,omitempty"`
	SubmittedCount  int              `json:"submitted_count"`
	RosterSize      int              `json:"roster_size"`
	SubmissionRate  float64          `json:"submission_rate"`
	AvgPerSubmitted float64          `json:"avg_per_submitted"`
	TopSite         string           `json:"top_site,omitempty"`
}

// CategoryRow is one category rollup in catalog order.
type CategoryRow struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// ServiceRow is one service rollup with its week-over-week movement.
type ServiceRow struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Category string           `json:"category"`
	Count    int              `json:"count"`
	Revenue  float64          `json:"revenue"`
	Delta    *reporting.Delta `json:"delta,omitempty"`
}

// PharmacyRow pairs a roster slot's status with its week-over-week
// movement. Delta is nil when the site had no prior-week revenue.
type PharmacyRow struct {
	reporting.SiteStatus
	Delta *reporting.Delta `json:"delta,omitempty"`
}

// Overview is the dashboard view model for one week.
type Overview struct {
	Week       string                     `json:"week"`
	KPI        KPIBlock                   `json:"kpi"`
	Categories []CategoryRow              `json:"categories"`
	Services   []ServiceRow               `json:"services"`
	Pharmacies []PharmacyRow              `json:"pharmacies"`
	Compliance reporting.ComplianceCounts `json:"compliance"`
}

// BuildOverview folds the current week, its predecessor and the
// compliance projection into the dashboard view model. previous may be
// nil when no prior week exists.
func BuildOverview(cat *catalog.Catalog, current reporting.WeekSummary, previous *reporting.WeekSummary, statuses []reporting.SiteStatus, counts reporting.ComplianceCounts) Overview {
	o := Overview{
		Week:       current.Week.String(),
		Compliance: counts,
	}

	for _, status := range statuses {
		row := PharmacyRow{SiteStatus: status}
		if previous != nil {
			if prev, ok := previous.Submission(status.Pharmacy); ok {
				if d, ok := reporting.Compare(status.Revenue, prev.Revenue); ok {
					row.Delta = &d
				}
			}
		}
		o.Pharmacies = append(o.Pharmacies, row)
	}

	o.KPI = KPIBlock{
		TotalRevenue:   current.TotalRevenue,
		TotalSessions:  current.TotalSessions,
		SubmittedCount: current.SubmittedCount,
		RosterSize:     len(cat.Pharmacies()),
	}
	if o.KPI.RosterSize > 0 {
		o.KPI.SubmissionRate = round1(float64(current.SubmittedCount) / float64(o.KPI.RosterSize) * 100)
	}
	if current.SubmittedCount > 0 {
		o.KPI.AvgPerSubmitted = current.TotalRevenue / float64(current.SubmittedCount)
	}
	o.KPI.TopSite = topSite(current)

	if previous != nil {
		if d, ok := reporting.Compare(current.TotalRevenue, previous.TotalRevenue); ok {
			o.KPI.RevenueDelta = &d
		}
		if d, ok := reporting.Compare(float64(current.TotalSessions), float64(previous.TotalSessions)); ok {
			o.KPI.SessionsDelta = &d
		}
	}

	for _, category := range cat.Categories() {
		o.Categories = append(o.Categories, CategoryRow{
			Category: string(category),
			Revenue:  current.CategoryTotals[category],
		})
	}

	for _, st := range current.ServiceTotals {
		row := ServiceRow{
			ID:       st.Service.ID,
			Label:    st.Service.Label,
			Category: string(st.Service.Category),
			Count:    st.Count,
			Revenue:  st.Revenue,
		}
		if previous != nil {
			if d, ok := reporting.Compare(st.Revenue, previous.ServiceRevenue(st.Service.ID)); ok {
				row.Delta = &d
			}
		}
		o.Services = append(o.Services, row)
	}

	return o
}

// topSite returns the highest-revenue submitted site; roster order breaks
// ties.
func topSite(summary reporting.WeekSummary) string {
	best := ""
	bestRevenue := math.Inf(-1)
	for _, slot := range summary.PerPharmacy {
		if slot.Submitted && slot.Revenue > bestRevenue {
			best = slot.Pharmacy
			bestRevenue = slot.Revenue
		}
	}
	return best
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
