package reporting

import "math"

// Direction classifies a period-over-period movement.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Movements inside this band read as noise and report flat.
const flatThresholdPct = 0.5

// Delta is a classified period-over-period change. Percent is the
// absolute magnitude rounded to one decimal place; zero when flat.
type Delta struct {
	Direction Direction `json:"direction"`
	Percent   float64   `json:"percent"`
}

// Compare computes the percentage change from previous to current. The
// second return is false when previous is zero or missing: no percentage
// is computable and none is fabricated.
func Compare(current, previous float64) (Delta, bool) {
	if previous == 0 {
		return Delta{}, false
	}
	pct := (current - previous) / previous * 100
	if math.Abs(pct) < flatThresholdPct {
		return Delta{Direction: DirectionFlat, Percent: 0}, true
	}
	d := Delta{Percent: round1(math.Abs(pct))}
	if pct > 0 {
		d.Direction = DirectionUp
	} else {
		d.Direction = DirectionDown
	}
	return d, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
