package services

import (
	"context"

	"gorm.io/gorm"

	"sanitation-feedback-server/models"
)

const (
	AdminFeedbackLimit     = 100
	DashboardFeedbackLimit = 50
	ExportFeedbackLimit    = 1000
)

// The functions below are the typed building blocks handlers compose. Each is one
// statement; none of them wraps another in a transaction.

func assignedLocations(ctx context.Context, db *gorm.DB, staffID uint) ([]models.Location, error) {
	locations := []models.Location{}
	err := db.WithContext(ctx).
		Joins("JOIN assignments ON assignments.location_id = locations.id").
		Where("assignments.staff_id = ?", staffID).
		Order("locations.id").
		Find(&locations).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return locations, nil
}

func locationIDs(locations []models.Location) []uint {
	ids := make([]uint, 0, len(locations))
	for _, l := range locations {
		ids = append(ids, l.ID)
	}
	return ids
}

func feedbackWithLocation(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("feedback AS f").
		Select("f.id, f.location_id, l.name AS location_name, f.cleanliness, f.water_soap, f.hygiene, f.odor, f.comment, f.created_at").
		Joins("JOIN locations l ON l.id = f.location_id").
		Order("f.created_at DESC, f.id DESC")
}

func recentFeedback(ctx context.Context, db *gorm.DB, limit int) ([]models.FeedbackWithLocation, error) {
	rows := []models.FeedbackWithLocation{}
	if err := feedbackWithLocation(ctx, db).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

// feedbackForLocations returns an empty result, without querying, for an empty id set.
func feedbackForLocations(ctx context.Context, db *gorm.DB, ids []uint, limit int) ([]models.FeedbackWithLocation, error) {
	rows := []models.FeedbackWithLocation{}
	if len(ids) == 0 {
		return rows, nil
	}
	err := feedbackWithLocation(ctx, db).
		Where("f.location_id IN ?", ids).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rows, nil
}

func gradeHistory(ctx context.Context, db *gorm.DB, staffID uint) ([]models.Grade, error) {
	grades := []models.Grade{}
	err := db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Order("created_at DESC, id DESC").
		Find(&grades).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return grades, nil
}

// latestGrade returns nil when the staff member has never been graded.
func latestGrade(ctx context.Context, db *gorm.DB, staffID uint) (*models.Grade, error) {
	var grades []models.Grade
	err := db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&grades).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	if len(grades) == 0 {
		return nil, nil
	}
	return &grades[0], nil
}
