package models

import "time"

type AvailabilitySnapshot struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrainNo       string    `gorm:"column:train_number;index" json:"train_no"`
	JourneyDate   string    `gorm:"column:journey_date" json:"journey_date"`
	ClassCode     string    `gorm:"column:class_code" json:"class_code"`
	Quota         string    `gorm:"column:quota" json:"quota"`
	CurrentStatus string    `gorm:"column:current_status" json:"current_status"`
	BookingStatus string    `gorm:"column:booking_status" json:"booking_status"`
	ScrapedAt     time.Time `gorm:"column:scraped_at" json:"scraped_at"`
}

func (AvailabilitySnapshot) TableName() string { return "availability" }
