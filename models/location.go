package models

// Location is a sanitation facility that citizens can rate.
type Location struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:255;not null;uniqueIndex"`
}

// TableName specifies the table name for the Location model
func (Location) TableName() string {
	return "locations"
}
