package models

type Train struct {
	TrainNo          string  `gorm:"column:train_number;primaryKey" json:"train_no"`
	Name             string  `gorm:"column:train_name" json:"name"`
	Source           string  `gorm:"column:source" json:"source"`
	Destination      string  `gorm:"column:destination" json:"destination"`
	AvgSpeed         *string `gorm:"column:avg_speed" json:"avg_speed"`
	CoachComposition *string `gorm:"column:coach_composition" json:"coach_composition"`
	ImageURL         *string `gorm:"column:image_url" json:"image_url"`
}

func (Train) TableName() string { return "trains" }

// Complete reports whether the record carries the derived spec fields.
// A row without avg_speed predates enrichment and must be re-fetched.
func (t Train) Complete() bool {
	return t.AvgSpeed != nil
}
