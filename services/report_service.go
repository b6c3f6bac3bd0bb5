package services

import (
	"context"

	"gorm.io/gorm"

	"sanitation-feedback-server/models"
)

// StaffPerformance is one staff member's average rating across all assigned locations.
type StaffPerformance struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	AvgRating float64 `json:"avg_rating" gorm:"column:avg_rating"`
}

type Summary struct {
	TotalFeedback    int64              `json:"totalFeedback"`
	StaffPerformance []StaffPerformance `json:"staffPerformance"`
}

// ReportService answers the admin's read-only questions.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Summary counts all feedback and averages ratings per staff member. Staff with no
// assignments or no linked feedback are included with an average of 0.
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	summary := &Summary{StaffPerformance: []StaffPerformance{}}

	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).Count(&summary.TotalFeedback).Error; err != nil {
		return nil, NewStorageError(err)
	}

	err := s.db.WithContext(ctx).
		Table("staff AS s").
		Select("s.id, s.name, COALESCE(AVG((f.cleanliness + f.water_soap + f.hygiene + f.odor) / 4.0), 0) AS avg_rating").
		Joins("LEFT JOIN assignments a ON a.staff_id = s.id").
		Joins("LEFT JOIN locations l ON l.id = a.location_id").
		Joins("LEFT JOIN feedback f ON f.location_id = l.id").
		Group("s.id, s.name").
		Order("s.id").
		Scan(&summary.StaffPerformance).Error
	if err != nil {
		return nil, NewStorageError(err)
	}
	return summary, nil
}

// RecentFeedback returns the newest feedback system-wide, joined with location names.
func (s *ReportService) RecentFeedback(ctx context.Context, limit int) ([]models.FeedbackWithLocation, error) {
	if limit <= 0 {
		limit = AdminFeedbackLimit
	}
	return recentFeedback(ctx, s.db, limit)
}
