package models

import "time"

// Feedback is a citizen rating of a location. Rows are never updated or deleted.
type Feedback struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	LocationID  uint      `json:"location_id" gorm:"not null;index"`
	Location    *Location `json:"-" gorm:"foreignKey:LocationID;constraint:OnDelete:RESTRICT"`
	Cleanliness int       `json:"cleanliness" gorm:"not null"`
	WaterSoap   int       `json:"water_soap" gorm:"not null"`
	Hygiene     int       `json:"hygiene" gorm:"not null"`
	Odor        int       `json:"odor" gorm:"not null"`
	Comment     *string   `json:"comment" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName sets custom table name
func (Feedback) TableName() string { return "feedback" }

// Average is the mean of the four sub-ratings.
func (f Feedback) Average() float64 {
	return float64(f.Cleanliness+f.WaterSoap+f.Hygiene+f.Odor) / 4
}

// FeedbackWithLocation is a feedback row joined with its location name.
type FeedbackWithLocation struct {
	ID           uint      `json:"id"`
	LocationID   uint      `json:"location_id"`
	LocationName string    `json:"location_name"`
	Cleanliness  int       `json:"cleanliness"`
	WaterSoap    int       `json:"water_soap"`
	Hygiene      int       `json:"hygiene"`
	Odor         int       `json:"odor"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
