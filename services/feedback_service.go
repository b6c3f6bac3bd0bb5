package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"sanitation-feedback-server/models"
)

// FeedbackNotifier is told about every stored submission. Implementations must not block.
type FeedbackNotifier interface {
	FeedbackSubmitted(feedback models.Feedback)
}

// FeedbackInput is a public rating submission.
type FeedbackInput struct {
	LocationID  uint
	Cleanliness int
	WaterSoap   int
	Hygiene     int
	Odor        int
	Comment     *string
}

// Validate rejects an absent or zero location id or rating. A rating of 0 is treated the
// same as a missing one.
func (in FeedbackInput) Validate() error {
	if in.LocationID == 0 || in.Cleanliness == 0 || in.WaterSoap == 0 || in.Hygiene == 0 || in.Odor == 0 {
		return NewInvalidInputError("locationId, cleanliness, waterSoap, hygiene and odor are required")
	}
	return nil
}

type FeedbackService struct {
	db       *gorm.DB
	notifier FeedbackNotifier
}

// NewFeedbackService creates the submission service. notifier may be nil.
func NewFeedbackService(db *gorm.DB, notifier FeedbackNotifier) *FeedbackService {
	return &FeedbackService{db: db, notifier: notifier}
}

// Submit validates and stores a submission, returning the stored row.
func (s *FeedbackService) Submit(ctx context.Context, in FeedbackInput) (*models.Feedback, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	comment := in.Comment
	if comment != nil && strings.TrimSpace(*comment) == "" {
		comment = nil
	}

	feedback := &models.Feedback{
		LocationID:  in.LocationID,
		Cleanliness: in.Cleanliness,
		WaterSoap:   in.WaterSoap,
		Hygiene:     in.Hygiene,
		Odor:        in.Odor,
		Comment:     comment,
	}
	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, NewStorageError(err)
	}

	if s.notifier != nil {
		s.notifier.FeedbackSubmitted(*feedback)
	}
	return feedback, nil
}

// ListLocations returns every location for the submission form.
func (s *FeedbackService) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	if err := s.db.WithContext(ctx).Find(&locations).Error; err != nil {
		return nil, NewStorageError(err)
	}
	return locations, nil
}
