package services

import (
	"context"

	"gorm.io/gorm"

	"sanitation-feedback-server/models"
)

type Dashboard struct {
	Locations   []models.Location             `json:"locations"`
	Feedback    []models.FeedbackWithLocation `json:"feedback"`
	LatestGrade *models.Grade                 `json:"latestGrade"`
}

// DashboardService builds a staff member's own view. Nothing outside the staff
// member's assignments is ever read.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ForStaff runs assignments -> feedback for those locations, then the latest grade.
// The steps are separate statements with no shared snapshot.
func (s *DashboardService) ForStaff(ctx context.Context, staffID uint) (*Dashboard, error) {
	locations, err := assignedLocations(ctx, s.db, staffID)
	if err != nil {
		return nil, err
	}

	feedback, err := feedbackForLocations(ctx, s.db, locationIDs(locations), DashboardFeedbackLimit)
	if err != nil {
		return nil, err
	}

	grade, err := latestGrade(ctx, s.db, staffID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Locations: locations, Feedback: feedback, LatestGrade: grade}, nil
}
