package predictor

// FeatureVector holds the normalized classifier inputs for one request.
// DaysToJourney is never negative: past journey dates are rejected before
// a vector is built.
type FeatureVector struct {
	DaysToJourney   int
	CurrentWaitlist int
	IsWeekend       bool
	IsHoliday       bool
}

// floats returns the vector in training column order:
// [days_to_journey, current_wl, is_weekend, is_holiday].
func (fv FeatureVector) floats() []float64 {
	row := []float64{float64(fv.DaysToJourney), float64(fv.CurrentWaitlist), 0, 0}
	if fv.IsWeekend {
		row[2] = 1
	}
	if fv.IsHoliday {
		row[3] = 1
	}
	return row
}

type TrainingExample struct {
	Features  FeatureVector
	Confirmed bool
}
