package reporting

import (
	"time"

	"github.com/pharmalink/pharmalink/internal/catalog"
)

// WeeklySubmission is one pharmacy's reported service activity for one
// week. (Pharmacy, Week) is the upsert key; a resubmission overwrites the
// prior record in full.
type WeeklySubmission struct {
	Pharmacy    string             `json:"pharmacy"`
	Week        WeekKey            `json:"week"`
	Counts      map[string]int     `json:"counts"`
	Revenues    map[string]float64 `json:"revenues"`
	Notes       string             `json:"notes,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`

	// Persisted caches of the calculator output. The aggregator always
	// recomputes; these exist so range queries can skip the jsonb columns.
	TotalRevenue  float64 `json:"total_revenue"`
	TotalSessions int     `json:"total_sessions"`
}

// SubmissionTotal is the slim row shape returned by range queries: enough
// to fold into time-series buckets without decoding counts/revenues.
type SubmissionTotal struct {
	Pharmacy     string
	Week         WeekKey
	TotalRevenue float64
}

// Revenue computes the revenue one service contributed to a submission.
// Nil submissions, missing keys, negative or unparsable entries all
// degrade to zero; the function never fails.
func Revenue(svc catalog.Service, sub *WeeklySubmission) float64 {
	if sub == nil {
		return 0
	}
	if svc.Fee == nil {
		v := sub.Revenues[svc.ID]
		if v < 0 {
			return 0
		}
		return v
	}
	n := sub.Counts[svc.ID]
	if n < 0 {
		return 0
	}
	return float64(n) * *svc.Fee
}

// SubmissionTotals recomputes total revenue and session count for a
// submission against the catalog. Must agree with any persisted cache.
func SubmissionTotals(cat *catalog.Catalog, sub *WeeklySubmission) (revenue float64, sessions int) {
	if sub == nil {
		return 0, 0
	}
	for _, svc := range cat.Services() {
		revenue += Revenue(svc, sub)
	}
	for _, n := range sub.Counts {
		if n > 0 {
			sessions += n
		}
	}
	return revenue, sessions
}
