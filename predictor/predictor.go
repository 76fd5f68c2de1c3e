package predictor

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"
)

var (
	// ErrPastJourneyDate rejects journey dates strictly before today.
	ErrPastJourneyDate = errors.New("journey date cannot be in the past")
	// ErrNegativeWaitlist rejects waitlist positions below zero.
	ErrNegativeWaitlist = errors.New("waitlist position cannot be negative")
)

const (
	ChartNotPrepared = "Not Prepared"
	ChartPrepared    = "Chart Prepared / In Progress"
)

// HolidayCalendar decides whether a journey date falls in a holiday season.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// NeverHoliday is the default calendar: no date is a holiday.
type NeverHoliday struct{}

func (NeverHoliday) IsHoliday(time.Time) bool { return false }

// DateListCalendar marks an explicit set of ISO dates as holidays.
type DateListCalendar struct {
	dates map[string]struct{}
}

func NewDateListCalendar(isoDates []string) *DateListCalendar {
	c := &DateListCalendar{dates: make(map[string]struct{}, len(isoDates))}
	for _, d := range isoDates {
		c.dates[d] = struct{}{}
	}
	return c
}

func (c *DateListCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.dates[date.Format("2006-01-02")]
	return ok
}

// Options configures the prediction service.
type Options struct {
	ArtifactPath string
	CorpusSize   int
	Forest       ForestOptions
	Calendar     HolidayCalendar
	// CorpusSeed seeds corpus generation when non-zero; otherwise each
	// training run draws a fresh corpus.
	CorpusSeed int64
}

// Result is the merged output of one prediction call.
type Result struct {
	Probability   float64  `json:"probability"`
	Factors       []Factor `json:"factors"`
	DaysToJourney int      `json:"days_to_journey"`
	ChartStatus   string   `json:"chart_status"`
}

// Service owns the model lifecycle: load the artifact at startup if present,
// lazily train on the first prediction otherwise, at most one training run
// in flight at a time.
type Service struct {
	opts Options

	mu         sync.Mutex
	forest     *Forest
	lastReport TrainReport
}

func New(opts Options) *Service {
	if opts.CorpusSize <= 0 {
		opts.CorpusSize = 1000
	}
	if opts.Calendar == nil {
		opts.Calendar = NeverHoliday{}
	}
	return &Service{opts: opts}
}

// Load reads the persisted model artifact if one exists. A missing artifact
// is not an error; training is deferred to the first prediction.
func (s *Service) Load() error {
	forest, err := LoadForest(s.opts.ArtifactPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("no model artifact at %s, will train on first prediction", s.opts.ArtifactPath)
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.forest = forest
	s.mu.Unlock()
	log.Printf("loaded model artifact from %s (%d trees)", s.opts.ArtifactPath, len(forest.Trees))
	return nil
}

// EnsureTrained trains and persists a model if none is loaded. Concurrent
// callers serialize on the lock; whoever arrives second finds the model
// already fitted and returns immediately.
func (s *Service) EnsureTrained(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forest != nil {
		return nil
	}
	return s.trainLocked(ctx)
}

// Retrain discards the current model and fits a fresh one on a new corpus.
func (s *Service) Retrain(ctx context.Context) (TrainReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forest = nil
	if err := s.trainLocked(ctx); err != nil {
		return TrainReport{}, err
	}
	return s.lastReport, nil
}

// trainLocked fits the model. Callers must hold s.mu.
func (s *Service) trainLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	seed := s.opts.CorpusSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	log.Printf("generating %d synthetic records for training", s.opts.CorpusSize)
	corpus := GenerateCorpus(rng, s.opts.CorpusSize)

	forest, report, err := TrainForest(corpus, s.opts.Forest)
	if err != nil {
		return err
	}
	s.forest = forest
	s.lastReport = report
	trainingRuns.Inc()
	trainingDuration.Observe(time.Since(start).Seconds())
	log.Printf("model trained: accuracy=%.2f auc=%.2f train=%d holdout=%d (%.2fs)",
		report.Accuracy, report.AUC, report.TrainSize, report.HoldoutSize, time.Since(start).Seconds())

	if s.opts.ArtifactPath != "" {
		if err := forest.Save(s.opts.ArtifactPath); err != nil {
			return err
		}
		log.Printf("model saved to %s", s.opts.ArtifactPath)
	}
	return nil
}

// Predict validates the request, builds the feature vector and returns the
// probability with its factor decomposition. now anchors "today" so tests
// can pin the clock.
func (s *Service) Predict(ctx context.Context, currentWaitlist int, journeyDate, now time.Time) (*Result, error) {
	if currentWaitlist < 0 {
		predictionsRejected.Inc()
		return nil, ErrNegativeWaitlist
	}

	today := truncateToDay(now)
	journey := truncateToDay(journeyDate)
	days := int(journey.Sub(today).Hours() / 24)
	if days < 0 {
		predictionsRejected.Inc()
		return nil, ErrPastJourneyDate
	}

	fv := FeatureVector{
		DaysToJourney:   days,
		CurrentWaitlist: currentWaitlist,
		IsWeekend:       journey.Weekday() == time.Saturday || journey.Weekday() == time.Sunday,
		IsHoliday:       s.opts.Calendar.IsHoliday(journey),
	}

	if err := s.EnsureTrained(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	probability := s.forest.PredictProbability(fv)
	s.mu.Unlock()

	chartStatus := ChartPrepared
	if days > 0 {
		chartStatus = ChartNotPrepared
	}

	predictionsTotal.Inc()
	return &Result{
		Probability:   probability,
		Factors:       Explain(fv, probability),
		DaysToJourney: days,
		ChartStatus:   chartStatus,
	}, nil
}

// truncateToDay normalizes to UTC midnight so day arithmetic is exact even
// when the journey date and the server clock carry different zones.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
