package predictor

import (
	"math"
	"math/rand"
	"testing"
)

func TestBaseConfirmProbability(t *testing.T) {
	tests := []struct {
		name string
		fv   FeatureVector
		want float64
	}{
		{"balanced", FeatureVector{DaysToJourney: 50, CurrentWaitlist: 100}, 1.0},
		{"deep waitlist clamps to zero", FeatureVector{DaysToJourney: 1, CurrentWaitlist: 400}, 0.0},
		{"weekend penalty", FeatureVector{DaysToJourney: 50, CurrentWaitlist: 200, IsWeekend: true}, 0.4},
		{"holiday penalty", FeatureVector{DaysToJourney: 50, CurrentWaitlist: 200, IsHoliday: true}, 0.3},
		{"both penalties", FeatureVector{DaysToJourney: 50, CurrentWaitlist: 200, IsWeekend: true, IsHoliday: true}, 0.2},
		{"low waitlist long horizon clamps to one", FeatureVector{DaysToJourney: 45, CurrentWaitlist: 30}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaseConfirmProbability(tt.fv)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("BaseConfirmProbability(%+v) = %v, want %v", tt.fv, got, tt.want)
			}
		})
	}
}

func TestGenerateCorpusRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	corpus := GenerateCorpus(rng, 500)

	if len(corpus) != 500 {
		t.Fatalf("len(corpus) = %d, want 500", len(corpus))
	}
	for i, ex := range corpus {
		if ex.Features.DaysToJourney < 1 || ex.Features.DaysToJourney > 120 {
			t.Fatalf("example %d: DaysToJourney = %d, want [1,120]", i, ex.Features.DaysToJourney)
		}
		if ex.Features.CurrentWaitlist < 1 || ex.Features.CurrentWaitlist > 400 {
			t.Fatalf("example %d: CurrentWaitlist = %d, want [1,400]", i, ex.Features.CurrentWaitlist)
		}
	}
}

func TestGenerateCorpusReproducible(t *testing.T) {
	a := GenerateCorpus(rand.New(rand.NewSource(7)), 200)
	b := GenerateCorpus(rand.New(rand.NewSource(7)), 200)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("example %d differs between equally seeded runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// The labels must follow the generating rule statistically: examples with a
// short waitlist and a long horizon confirm far more often than the deep
// waitlist, last-minute ones.
func TestGenerateCorpusLabelCorrelation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	corpus := GenerateCorpus(rng, 5000)

	var easyConfirmed, easyTotal, hardConfirmed, hardTotal int
	for _, ex := range corpus {
		switch {
		case ex.Features.CurrentWaitlist < 50 && ex.Features.DaysToJourney > 60:
			easyTotal++
			if ex.Confirmed {
				easyConfirmed++
			}
		case ex.Features.CurrentWaitlist > 300 && ex.Features.DaysToJourney < 30:
			hardTotal++
			if ex.Confirmed {
				hardConfirmed++
			}
		}
	}

	if easyTotal == 0 || hardTotal == 0 {
		t.Fatal("corpus did not cover both feature regions")
	}
	easyRate := float64(easyConfirmed) / float64(easyTotal)
	hardRate := float64(hardConfirmed) / float64(hardTotal)
	if easyRate <= hardRate {
		t.Errorf("easy region confirm rate %.2f should exceed hard region %.2f", easyRate, hardRate)
	}
	if easyRate < 0.9 {
		t.Errorf("easy region confirm rate = %.2f, expected near certainty", easyRate)
	}
	if hardRate > 0.1 {
		t.Errorf("hard region confirm rate = %.2f, expected near zero", hardRate)
	}
}
