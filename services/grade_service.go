package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"sanitation-feedback-server/models"
)

// GradeService appends to and reads the per-staff grade history.
type GradeService struct {
	db *gorm.DB
}

func NewGradeService(db *gorm.DB) *GradeService {
	return &GradeService{db: db}
}

// Assign appends a grade. Earlier grades are never modified.
func (s *GradeService) Assign(ctx context.Context, staffID uint, grade string, note *string) (*models.Grade, error) {
	if staffID == 0 {
		return nil, NewInvalidInputError("staffId is required")
	}
	if !models.IsValidGrade(grade) {
		return nil, NewInvalidInputError("grade must be one of A, B, C, D, E")
	}
	if note != nil && strings.TrimSpace(*note) == "" {
		note = nil
	}

	record := &models.Grade{StaffID: staffID, Grade: grade, Note: note}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, NewStorageError(err)
	}
	return record, nil
}

// History lists every grade for a staff member, newest first.
func (s *GradeService) History(ctx context.Context, staffID uint) ([]models.Grade, error) {
	if staffID == 0 {
		return nil, NewInvalidInputError("staffId is required")
	}
	return gradeHistory(ctx, s.db, staffID)
}

// Latest returns the most recently created grade, or nil if there is none.
func (s *GradeService) Latest(ctx context.Context, staffID uint) (*models.Grade, error) {
	if staffID == 0 {
		return nil, NewInvalidInputError("staffId is required")
	}
	return latestGrade(ctx, s.db, staffID)
}
