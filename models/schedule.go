package models

type ScheduleStop struct {
	ID            uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TrainNo       string `gorm:"column:train_number;index" json:"train_no"`
	StationCode   string `gorm:"column:station_code" json:"station_code"`
	StationName   string `gorm:"column:station_name" json:"station_name"`
	ArrivalTime   string `gorm:"column:arrival_time" json:"arrival_time"`
	DepartureTime string `gorm:"column:departure_time" json:"departure_time"`
	DistanceKM    int    `gorm:"column:distance_km" json:"distance_km"`
	DayCount      int    `gorm:"column:day_count" json:"day_count"`
}

func (ScheduleStop) TableName() string { return "schedules" }
