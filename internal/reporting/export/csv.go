// Package export serialises dashboard data for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pharmalink/pharmalink/internal/catalog"
	"github.com/pharmalink/pharmalink/internal/reporting"
)

// WriteSummaryCSV serialises the headline week metrics.
func WriteSummaryCSV(w io.Writer, summary reporting.WeekSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Week Commencing", summary.Week.String()},
		{"Total Revenue", formatFloat(summary.TotalRevenue)},
		{"Total Sessions", strconv.Itoa(summary.TotalSessions)},
		{"Sites Submitted", strconv.Itoa(summary.SubmittedCount)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteServiceTotalsCSV emits the per-service rollup, already sorted by
// revenue descending.
func WriteServiceTotalsCSV(w io.Writer, totals []reporting.ServiceTotal) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Service", "Category", "Sessions", "Revenue"}); err != nil {
		return err
	}
	for _, st := range totals {
		sessions := ""
		if st.Service.Fixed() {
			sessions = strconv.Itoa(st.Count)
		}
		if err := writer.Write([]string{
			st.Service.Label,
			string(st.Service.Category),
			sessions,
			formatFloat(st.Revenue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMatrixCSV prints the site-by-service revenue grid with catalog
// labels as column headers.
func WriteMatrixCSV(w io.Writer, cat *catalog.Catalog, m reporting.Matrix) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(m.Services)+2)
	header = append(header, "Pharmacy")
	for _, id := range m.Services {
		label := id
		if svc, ok := cat.Service(id); ok {
			label = svc.Label
		}
		header = append(header, label)
	}
	header = append(header, "Total")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range m.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Pharmacy)
		for _, v := range row.Revenues {
			record = append(record, formatFloat(v))
		}
		record = append(record, formatFloat(row.Total))
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
