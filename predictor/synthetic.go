package predictor

import "math/rand"

// BaseConfirmProbability is the closed-form rule the synthetic corpus is
// labeled with and the classifier is trained to approximate:
//
//	p = clamp(1 - wl/200 + days/100 - 0.1*weekend - 0.2*holiday, 0, 1)
//
// High waitlist and short horizon push confirmation down; weekends and
// holidays add fixed penalties.
func BaseConfirmProbability(fv FeatureVector) float64 {
	p := 1.0
	p -= float64(fv.CurrentWaitlist) / 200.0
	p += float64(fv.DaysToJourney) / 100.0
	if fv.IsWeekend {
		p -= 0.1
	}
	if fv.IsHoliday {
		p -= 0.2
	}
	return clamp01(p)
}

// GenerateCorpus draws n labeled examples from the synthetic rule.
// days_to_journey ~ U[1,120], current_wl ~ U[1,400], weekend and holiday
// are fair coins; the label is a Bernoulli draw on BaseConfirmProbability.
// The rng is explicit so callers control reproducibility.
func GenerateCorpus(rng *rand.Rand, n int) []TrainingExample {
	corpus := make([]TrainingExample, 0, n)
	for i := 0; i < n; i++ {
		fv := FeatureVector{
			DaysToJourney:   1 + rng.Intn(120),
			CurrentWaitlist: 1 + rng.Intn(400),
			IsWeekend:       rng.Intn(2) == 1,
			IsHoliday:       rng.Intn(2) == 1,
		}
		corpus = append(corpus, TrainingExample{
			Features:  fv,
			Confirmed: rng.Float64() < BaseConfirmProbability(fv),
		})
	}
	return corpus
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
