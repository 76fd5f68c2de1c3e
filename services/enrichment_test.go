package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"waitlist-prediction-api/models"
)

type fakeStore struct {
	trains    map[string]models.Train
	schedules map[string][]models.ScheduleStop
	readErr   error
	writeErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		trains:    make(map[string]models.Train),
		schedules: make(map[string][]models.ScheduleStop),
	}
}

func (s *fakeStore) GetTrain(_ context.Context, trainNo string) (*models.Train, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	train, ok := s.trains[trainNo]
	if !ok {
		return nil, ErrTrainNotFound
	}
	copied := train
	return &copied, nil
}

func (s *fakeStore) UpsertTrain(_ context.Context, train *models.Train) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	stored := *train
	// The store normalizes what it persists; Resolve must serve this row,
	// not the provider's raw result.
	stored.Name = strings.TrimSpace(stored.Name)
	s.trains[train.TrainNo] = stored
	return nil
}

func (s *fakeStore) GetSchedule(_ context.Context, trainNo string) ([]models.ScheduleStop, error) {
	return s.schedules[trainNo], nil
}

func (s *fakeStore) ReplaceSchedule(_ context.Context, trainNo string, stops []models.ScheduleStop) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.schedules[trainNo] = stops
	return nil
}

type fakeProvider struct {
	calls int
	fail  bool
	train *models.Train
	stops []models.ScheduleStop
}

func (p *fakeProvider) Fetch(_ context.Context, trainNo string) (*models.Train, []models.ScheduleStop, error) {
	p.calls++
	if p.fail {
		return nil, nil, errors.New("enquiry site unreachable")
	}
	copied := *p.train
	return &copied, p.stops, nil
}

func completeTrain(trainNo string) *models.Train {
	speed := "85 km/hr"
	comp := "1A(1), 2A(3), 3A(9), PC(1)"
	img := "https://example.com/rajdhani.jpg"
	return &models.Train{
		TrainNo:          trainNo,
		Name:             "Mumbai Rajdhani",
		Source:           "BCT",
		Destination:      "NDLS",
		AvgSpeed:         &speed,
		CoachComposition: &comp,
		ImageURL:         &img,
	}
}

func TestResolveAbsentFetchesAndCaches(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{train: completeTrain("12951")}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	train, err := orch.Resolve(context.Background(), "12951")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !train.Complete() {
		t.Error("resolved record should be complete after fetch")
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}

	// Second resolve is a cache hit: no further fetch.
	if _, err := orch.Resolve(context.Background(), "12951"); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times after cache hit, want 1", provider.calls)
	}
}

func TestResolveIncompleteTriggersRefetch(t *testing.T) {
	store := newFakeStore()
	// Partial row: no avg_speed, as written before enrichment existed.
	store.trains["12951"] = models.Train{TrainNo: "12951", Name: "Mumbai Rajdhani", Source: "BCT", Destination: "NDLS"}

	provider := &fakeProvider{train: completeTrain("12951")}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	train, err := orch.Resolve(context.Background(), "12951")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}
	if !train.Complete() {
		t.Error("incomplete record should be replaced by the fetched one")
	}
}

func TestResolveServesStoreRow(t *testing.T) {
	store := newFakeStore()
	fetched := completeTrain("12951")
	fetched.Name = "  Mumbai Rajdhani  "
	provider := &fakeProvider{train: fetched}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	train, err := orch.Resolve(context.Background(), "12951")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// The post-upsert re-read is authoritative, so the store's normalized
	// name wins over the provider's raw one.
	if train.Name != "Mumbai Rajdhani" {
		t.Errorf("Name = %q, want the store's normalized row", train.Name)
	}
}

func TestResolveProviderFailureAbsent(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{fail: true}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	train, err := orch.Resolve(context.Background(), "99999")
	if err != nil {
		t.Fatalf("Resolve must absorb provider failure, got: %v", err)
	}
	if train.Name != "Unknown Train" {
		t.Errorf("Name = %q, want %q", train.Name, "Unknown Train")
	}
	if train.Source != "N/A" || train.Destination != "N/A" {
		t.Errorf("route = %q -> %q, want N/A markers", train.Source, train.Destination)
	}
	if train.AvgSpeed == nil || *train.AvgSpeed != "N/A" {
		t.Errorf("AvgSpeed = %v, want N/A marker", train.AvgSpeed)
	}
}

func TestResolveProviderFailureKeepsPartialRecord(t *testing.T) {
	store := newFakeStore()
	store.trains["12951"] = models.Train{TrainNo: "12951", Name: "Mumbai Rajdhani", Source: "BCT", Destination: "NDLS"}
	provider := &fakeProvider{fail: true}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	train, err := orch.Resolve(context.Background(), "12951")
	if err != nil {
		t.Fatalf("Resolve must absorb provider failure, got: %v", err)
	}
	if train.Name != "Mumbai Rajdhani" {
		t.Errorf("Name = %q, want the stored partial record", train.Name)
	}
	if train.Complete() {
		t.Error("record should still be incomplete")
	}
}

func TestResolveStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.readErr = errors.New("connection refused")
	provider := &fakeProvider{train: completeTrain("12951")}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	if _, err := orch.Resolve(context.Background(), "12951"); err == nil {
		t.Fatal("store outage must propagate, not degrade")
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times during store outage, want 0", provider.calls)
	}
}

func TestResolveUpsertErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.writeErr = errors.New("read-only replica")
	provider := &fakeProvider{train: completeTrain("12951")}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	if _, err := orch.Resolve(context.Background(), "12951"); err == nil {
		t.Fatal("store write failure must propagate")
	}
}

func TestResolveStoresSchedule(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{
		train: completeTrain("12951"),
		stops: []models.ScheduleStop{
			{TrainNo: "12951", StationCode: "BCT", DistanceKM: 0},
			{TrainNo: "12951", StationCode: "NDLS", DistanceKM: 1600},
		},
	}
	orch := NewEnrichmentOrchestrator(store, provider, time.Second)

	if _, err := orch.Resolve(context.Background(), "12951"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(store.schedules["12951"]) != 2 {
		t.Errorf("stored %d schedule stops, want 2", len(store.schedules["12951"]))
	}
}
