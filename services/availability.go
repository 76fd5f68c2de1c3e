package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"waitlist-prediction-api/models"

	"gorm.io/gorm"
)

// AvailabilityService records simulated booking-status snapshots. Real-time
// availability scraping is CAPTCHA-protected upstream, so statuses are
// generated from the journey horizon: close dates show deep waitlists, far
// dates show open berths.
type AvailabilityService struct {
	db    *gorm.DB
	cache *CacheService
	rng   *rand.Rand
}

func NewAvailabilityService(db *gorm.DB, cache *CacheService, rng *rand.Rand) *AvailabilityService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AvailabilityService{db: db, cache: cache, rng: rng}
}

// SimulateStatus derives a plausible booking status for a journey the given
// number of days out.
func (s *AvailabilityService) SimulateStatus(daysOut int) string {
	switch {
	case daysOut < 0:
		return "TRAIN DEPARTED"
	case daysOut < 5:
		return fmt.Sprintf("WL%d", 50+s.rng.Intn(101))
	case daysOut < 15:
		return fmt.Sprintf("WL%d", 10+s.rng.Intn(41))
	case daysOut < 30:
		return fmt.Sprintf("RAC%d", 1+s.rng.Intn(20))
	default:
		return "AVAILABLE"
	}
}

// Snapshot stores one simulated snapshot per journey date and publishes
// each on the live channel.
func (s *AvailabilityService) Snapshot(ctx context.Context, trainNo string, dates []time.Time, now time.Time) ([]models.AvailabilitySnapshot, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	snapshots := make([]models.AvailabilitySnapshot, 0, len(dates))
	for _, date := range dates {
		journey := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		daysOut := int(journey.Sub(today).Hours() / 24)
		status := s.SimulateStatus(daysOut)

		snapshots = append(snapshots, models.AvailabilitySnapshot{
			TrainNo:       trainNo,
			JourneyDate:   journey.Format("2006-01-02"),
			ClassCode:     "3A",
			Quota:         "GN",
			CurrentStatus: status,
			BookingStatus: status,
			ScrapedAt:     now,
		})
	}

	if err := s.db.WithContext(ctx).Create(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("store availability snapshots for %s: %w", trainNo, err)
	}

	for _, snap := range snapshots {
		if err := s.cache.Publish(ctx, LiveChannel, snap); err != nil {
			log.Printf("availability: publish failed for %s %s: %v", snap.TrainNo, snap.JourneyDate, err)
		}
	}

	return snapshots, nil
}

// NextDays lists the next n journey dates starting tomorrow.
func NextDays(now time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		dates = append(dates, now.AddDate(0, 0, i))
	}
	return dates
}
