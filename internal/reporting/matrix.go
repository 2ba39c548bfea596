package reporting

import "github.com/pharmalink/pharmalink/internal/catalog"

// MatrixRow is one pharmacy's revenue split across every catalog service,
// in catalog display order.
type MatrixRow struct {
	Pharmacy  string    `json:"pharmacy"`
	Submitted bool      `json:"submitted"`
	Revenues  []float64 `json:"revenues"`
	Total     float64   `json:"total"`
}

// Matrix is the site-by-service revenue breakdown for one week. Columns
// follow catalog order; rows follow the roster.
type Matrix struct {
	Week     WeekKey     `json:"week"`
	Services []string    `json:"services"`
	Rows     []MatrixRow `json:"rows"`
}

// BuildMatrix computes the per-site per-service revenue grid. Sites
// without a submission get a zero row, same as the aggregator's slots.
func BuildMatrix(cat *catalog.Catalog, week WeekKey, subs []WeeklySubmission) Matrix {
	byPharmacy := make(map[string]*WeeklySubmission, len(subs))
	for i := range subs {
		byPharmacy[subs[i].Pharmacy] = &subs[i]
	}

	services := cat.Services()
	m := Matrix{Week: week, Services: make([]string, 0, len(services))}
	for _, svc := range services {
		m.Services = append(m.Services, svc.ID)
	}

	for _, name := range cat.Pharmacies() {
		row := MatrixRow{Pharmacy: name, Revenues: make([]float64, len(services))}
		if sub, ok := byPharmacy[name]; ok {
			row.Submitted = true
			for i, svc := range services {
				v := Revenue(svc, sub)
				row.Revenues[i] = v
				row.Total += v
			}
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}
