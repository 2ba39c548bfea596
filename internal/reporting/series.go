package reporting

// WeekPoint is one bucket of the weekly trend: the group total plus one
// slot per pharmacy. Weeks with no submissions still appear zero-valued.
type WeekPoint struct {
	Week        WeekKey            `json:"week"`
	Total       float64            `json:"total"`
	PerPharmacy map[string]float64 `json:"per_pharmacy"`
}

// MonthPoint is one bucket of the monthly trend, keyed YYYY-MM.
type MonthPoint struct {
	Month       string             `json:"month"`
	Total       float64            `json:"total"`
	PerPharmacy map[string]float64 `json:"per_pharmacy"`
}

// BuildWeeklySeries buckets submission totals into the `window` most
// recent weeks ending at current, oldest first. Rows outside the window
// are ignored; every bucket is pre-initialised to zero for every roster
// member so charts keep a continuous axis.
func BuildWeeklySeries(roster []string, current WeekKey, window int, rows []SubmissionTotal) []WeekPoint {
	keys := Window(current, window)
	index := make(map[WeekKey]int, len(keys))
	points := make([]WeekPoint, len(keys))
	for i, key := range keys {
		points[i] = WeekPoint{Week: key, PerPharmacy: zeroSlots(roster)}
		index[key] = i
	}
	for _, row := range rows {
		i, ok := index[row.Week]
		if !ok {
			continue
		}
		points[i].Total += row.TotalRevenue
		points[i].PerPharmacy[row.Pharmacy] += row.TotalRevenue
	}
	return points
}

// BuildMonthlySeries collapses the `weeks` most recent week keys into
// their YYYY-MM months and folds submission totals into them. A week is
// attributed entirely to the month containing its Monday.
func BuildMonthlySeries(roster []string, current WeekKey, weeks int, rows []SubmissionTotal) []MonthPoint {
	keys := Window(current, weeks)
	monthOf := make(map[WeekKey]string, len(keys))
	index := make(map[string]int)
	points := make([]MonthPoint, 0)
	for _, key := range keys {
		month := key.Month()
		monthOf[key] = month
		if _, ok := index[month]; !ok {
			index[month] = len(points)
			points = append(points, MonthPoint{Month: month, PerPharmacy: zeroSlots(roster)})
		}
	}
	for _, row := range rows {
		month, ok := monthOf[row.Week]
		if !ok {
			continue
		}
		i := index[month]
		points[i].Total += row.TotalRevenue
		points[i].PerPharmacy[row.Pharmacy] += row.TotalRevenue
	}
	return points
}

func zeroSlots(roster []string) map[string]float64 {
	slots := make(map[string]float64, len(roster))
	for _, name := range roster {
		slots[name] = 0
	}
	return slots
}
