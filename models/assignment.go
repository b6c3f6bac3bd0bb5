package models

// Assignment associates a staff member with a location they service.
type Assignment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	StaffID    uint      `json:"staff_id" gorm:"not null;uniqueIndex:idx_assignment_staff_location"`
	Staff      *Staff    `json:"-" gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE"`
	LocationID uint      `json:"location_id" gorm:"not null;uniqueIndex:idx_assignment_staff_location"`
	Location   *Location `json:"-" gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Assignment model
func (Assignment) TableName() string {
	return "assignments"
}
