package services

import (
	"context"
	"errors"
	"log"
	"time"

	"waitlist-prediction-api/models"
)

// MetadataProvider fetches descriptive metadata for a train from the
// external enquiry source.
type MetadataProvider interface {
	Fetch(ctx context.Context, trainNo string) (*models.Train, []models.ScheduleStop, error)
}

// EnrichmentOrchestrator decides, per request, whether the stored train
// record is usable or must be refreshed from the provider. A record is
// usable once it is complete; absent or incomplete records trigger at most
// one fetch per Resolve call. Provider failures are absorbed: prediction
// must never block on enrichment.
type EnrichmentOrchestrator struct {
	store        TrainStore
	provider     MetadataProvider
	fetchTimeout time.Duration
}

func NewEnrichmentOrchestrator(store TrainStore, provider MetadataProvider, fetchTimeout time.Duration) *EnrichmentOrchestrator {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &EnrichmentOrchestrator{
		store:        store,
		provider:     provider,
		fetchTimeout: fetchTimeout,
	}
}

// Resolve returns a metadata record for the train. Store errors propagate;
// provider errors degrade to the best available record, down to an
// "Unknown Train" placeholder when nothing is stored at all.
func (o *EnrichmentOrchestrator) Resolve(ctx context.Context, trainNo string) (*models.Train, error) {
	existing, err := o.store.GetTrain(ctx, trainNo)
	if err != nil && !errors.Is(err, ErrTrainNotFound) {
		return nil, err
	}
	if existing != nil && existing.Complete() {
		return existing, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	fetched, stops, fetchErr := o.provider.Fetch(fetchCtx, trainNo)
	if fetchErr != nil {
		log.Printf("enrichment: provider fetch for train %s failed: %v", trainNo, fetchErr)
		if existing != nil {
			return existing, nil
		}
		return UnknownTrain(trainNo), nil
	}

	if err := o.store.UpsertTrain(ctx, fetched); err != nil {
		return nil, err
	}
	if err := o.store.ReplaceSchedule(ctx, trainNo, stops); err != nil {
		return nil, err
	}

	// The re-read, not the fetch result, is authoritative: the store stays
	// the single source of truth for callers.
	record, err := o.store.GetTrain(ctx, trainNo)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// UnknownTrain is the placeholder served when a train has never been seen
// and the provider is unreachable.
func UnknownTrain(trainNo string) *models.Train {
	na := "N/A"
	empty := ""
	return &models.Train{
		TrainNo:          trainNo,
		Name:             "Unknown Train",
		Source:           na,
		Destination:      na,
		AvgSpeed:         &na,
		CoachComposition: &na,
		ImageURL:         &empty,
	}
}
