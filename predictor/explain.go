package predictor

import "fmt"

// Impact labels a factor's direction on the confirmation outlook.
type Impact string

const (
	ImpactHighNegative Impact = "High Negative"
	ImpactNegative     Impact = "Negative"
	ImpactNeutral      Impact = "Neutral"
	ImpactPositive     Impact = "Positive"
	ImpactGuaranteed   Impact = "Guaranteed"
	ImpactImpossible   Impact = "Impossible"
	ImpactHard         Impact = "Hard"
	ImpactModerate     Impact = "Moderate"
	ImpactLow          Impact = "Low Difficulty"
)

const (
	colorRed    = "red"
	colorOrange = "orange"
	colorGreen  = "green"
	colorGray   = "gray"
)

// Factor is one human-readable contributor to the estimate. The list order
// produced by Explain is a display contract and never re-sorted.
type Factor struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Impact Impact `json:"impact"`
	Color  string `json:"color"`
}

// Cancellation-need analysis assumes a fixed rake regardless of the actual
// train class. Known approximation, kept until real capacity becomes an
// input.
const (
	assumedTotalSeats = 1000
	assumedRACSeats   = 100
)

// thresholdRow is one row of an exceeds-threshold decision table, scanned
// top to bottom; the first match wins.
type thresholdRow struct {
	above  float64
	impact Impact
	color  string
}

// waitlistTable maps the current waitlist to an impact. The positive branch
// (wl < 20) is handled before the table is consulted.
var waitlistTable = []thresholdRow{
	{above: 100, impact: ImpactHighNegative, color: colorRed},
	{above: 50, impact: ImpactNegative, color: colorOrange},
}

// daysBelowTable is scanned top to bottom against the journey horizon;
// the long-horizon positive branch (days > 30) is handled after the scan.
var daysBelowTable = []struct {
	below  float64
	impact Impact
	color  string
}{
	{below: 3, impact: ImpactHighNegative, color: colorRed},
	{below: 10, impact: ImpactNegative, color: colorOrange},
}

var cnfTable = []thresholdRow{
	{above: 15, impact: ImpactImpossible, color: colorRed},
	{above: 5, impact: ImpactHard, color: colorOrange},
}

var racTable = []thresholdRow{
	{above: 10, impact: ImpactHard, color: colorRed},
	{above: 3, impact: ImpactModerate, color: colorOrange},
}

func scanTable(table []thresholdRow, value float64, fallback Impact, fallbackColor string) (Impact, string) {
	for _, row := range table {
		if value > row.above {
			return row.impact, row.color
		}
	}
	return fallback, fallbackColor
}

// Explain decomposes a prediction into ordered display factors. It is pure
// and independent of the model that produced probability: every threshold
// is a fixed constant.
func Explain(fv FeatureVector, probability float64) []Factor {
	factors := make([]Factor, 0, 6)

	factors = append(factors, explainWaitlist(fv.CurrentWaitlist))
	factors = append(factors, explainDays(fv.DaysToJourney))

	if fv.IsWeekend {
		factors = append(factors, Factor{Name: "Travel Day", Value: "Weekend", Impact: ImpactNegative, Color: colorOrange})
	} else {
		factors = append(factors, Factor{Name: "Travel Day", Value: "Weekday", Impact: ImpactPositive, Color: colorGreen})
	}

	// Season only appears on holidays.
	if fv.IsHoliday {
		factors = append(factors, Factor{Name: "Season", Value: "Holiday", Impact: ImpactHighNegative, Color: colorRed})
	}

	factors = append(factors, explainCNF(fv.CurrentWaitlist))
	factors = append(factors, explainRAC(fv.CurrentWaitlist))

	return factors
}

func explainWaitlist(wl int) Factor {
	impact, color := scanTable(waitlistTable, float64(wl), ImpactNeutral, colorGray)
	if wl < 20 {
		impact, color = ImpactPositive, colorGreen
	}
	return Factor{Name: "Current Waitlist", Value: fmt.Sprintf("%d", wl), Impact: impact, Color: color}
}

func explainDays(days int) Factor {
	impact, color := ImpactNeutral, colorGray
	matched := false
	for _, row := range daysBelowTable {
		if float64(days) < row.below {
			impact, color = row.impact, row.color
			matched = true
			break
		}
	}
	if !matched && days > 30 {
		impact, color = ImpactPositive, colorGreen
	}
	return Factor{Name: "Days to Journey", Value: fmt.Sprintf("%d Days", days), Impact: impact, Color: color}
}

// explainCNF estimates how many cancellations a full confirmation needs:
// every ticket ahead of this one must clear.
func explainCNF(wl int) Factor {
	pct := float64(wl) / assumedTotalSeats * 100
	impact, color := scanTable(cnfTable, pct, ImpactLow, colorGreen)
	return Factor{
		Name:   "Cancellations for CNF",
		Value:  fmt.Sprintf("%d (%.1f%% of train)", wl, pct),
		Impact: impact,
		Color:  color,
	}
}

// explainRAC estimates the cancellations needed just to enter the RAC pool.
func explainRAC(wl int) Factor {
	needed := wl - assumedRACSeats
	if needed <= 0 {
		return Factor{
			Name:   "Cancellations for RAC",
			Value:  "0 (Already in RAC range)",
			Impact: ImpactGuaranteed,
			Color:  colorGreen,
		}
	}
	pct := float64(needed) / assumedTotalSeats * 100
	impact, color := scanTable(racTable, pct, ImpactLow, colorGreen)
	return Factor{
		Name:   "Cancellations for RAC",
		Value:  fmt.Sprintf("%d (%.1f%% of train)", needed, pct),
		Impact: impact,
		Color:  color,
	}
}
