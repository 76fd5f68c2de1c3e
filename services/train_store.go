package services

import (
	"context"
	"errors"
	"fmt"

	"waitlist-prediction-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTrainNotFound marks the Absent state: no row for the train number.
// Any other store error means the persistence layer itself misbehaved and
// must propagate.
var ErrTrainNotFound = errors.New("train not found")

// TrainStore is the persisted source of truth for train metadata.
type TrainStore interface {
	GetTrain(ctx context.Context, trainNo string) (*models.Train, error)
	UpsertTrain(ctx context.Context, train *models.Train) error
	GetSchedule(ctx context.Context, trainNo string) ([]models.ScheduleStop, error)
	ReplaceSchedule(ctx context.Context, trainNo string, stops []models.ScheduleStop) error
}

type GormTrainStore struct {
	db *gorm.DB
}

func NewGormTrainStore(db *gorm.DB) *GormTrainStore {
	return &GormTrainStore{db: db}
}

func (s *GormTrainStore) GetTrain(ctx context.Context, trainNo string) (*models.Train, error) {
	var train models.Train
	err := s.db.WithContext(ctx).Where("train_number = ?", trainNo).First(&train).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTrainNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read train %s: %w", trainNo, err)
	}
	return &train, nil
}

// UpsertTrain overwrites any partial row so a completed fetch replaces an
// incomplete record wholesale.
func (s *GormTrainStore) UpsertTrain(ctx context.Context, train *models.Train) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "train_number"}},
		UpdateAll: true,
	}).Create(train).Error
	if err != nil {
		return fmt.Errorf("upsert train %s: %w", train.TrainNo, err)
	}
	return nil
}

func (s *GormTrainStore) GetSchedule(ctx context.Context, trainNo string) ([]models.ScheduleStop, error) {
	var stops []models.ScheduleStop
	err := s.db.WithContext(ctx).
		Where("train_number = ?", trainNo).
		Order("distance_km").
		Find(&stops).Error
	if err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", trainNo, err)
	}
	return stops, nil
}

func (s *GormTrainStore) ReplaceSchedule(ctx context.Context, trainNo string, stops []models.ScheduleStop) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("train_number = ?", trainNo).Delete(&models.ScheduleStop{}).Error; err != nil {
			return fmt.Errorf("clear schedule %s: %w", trainNo, err)
		}
		if len(stops) == 0 {
			return nil
		}
		if err := tx.Create(&stops).Error; err != nil {
			return fmt.Errorf("insert schedule %s: %w", trainNo, err)
		}
		return nil
	})
}
