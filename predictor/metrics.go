package predictor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railwl_predictions_total",
		Help: "Total number of waitlist predictions served.",
	})
	predictionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railwl_predictions_rejected_total",
		Help: "Total number of prediction requests rejected as invalid input.",
	})
	trainingRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railwl_training_runs_total",
		Help: "Total number of model training runs.",
	})
	trainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "railwl_training_duration_seconds",
		Help:    "Duration of a full training run including corpus generation.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
)
