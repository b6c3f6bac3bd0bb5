package models

// Admin is an operator allowed to read reports and grade staff.
type Admin struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // Hidden from JSON
}

// TableName specifies the table name for the Admin model
func (Admin) TableName() string {
	return "admin"
}

// Staff is a cleaner or attendant responsible for one or more locations.
type Staff struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
}

// TableName specifies the table name for the Staff model
func (Staff) TableName() string {
	return "staff"
}
