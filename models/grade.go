package models

import "time"

// Grade letters, best to worst.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
	GradeE = "E"
)

// Grade is one entry of a staff member's append-only grade history.
type Grade struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StaffID   uint      `json:"staff_id" gorm:"not null;index"`
	Staff     *Staff    `json:"-" gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE"`
	Grade     string    `json:"grade" gorm:"type:varchar(1);not null;check:grade IN ('A','B','C','D','E')"`
	Note      *string   `json:"note" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Grade model
func (Grade) TableName() string {
	return "grades"
}

// IsValidGrade checks if the letter is one of A through E
func IsValidGrade(grade string) bool {
	switch grade {
	case GradeA, GradeB, GradeC, GradeD, GradeE:
		return true
	default:
		return false
	}
}
