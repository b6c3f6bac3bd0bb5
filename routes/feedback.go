package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sanitation-feedback-server/services"
)

// feedbackRequest mirrors the public form. "required" rejects zero as well as absent.
type feedbackRequest struct {
	LocationID  uint    `json:"locationId" binding:"required"`
	Cleanliness int     `json:"cleanliness" binding:"required"`
	WaterSoap   int     `json:"waterSoap" binding:"required"`
	Hygiene     int     `json:"hygiene" binding:"required"`
	Odor        int     `json:"odor" binding:"required"`
	Comment     *string `json:"comment"`
}

// RegisterFeedbackRoutes registers the public submission endpoint
func RegisterFeedbackRoutes(router *gin.RouterGroup, deps *Dependencies) {
	router.POST("/feedback", deps.rateLimited(), deps.submitFeedback)
}

func (d *Dependencies) submitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		d.respondError(c, services.NewInvalidInputError("locationId, cleanliness, waterSoap, hygiene and odor are required"))
		return
	}

	feedback, err := d.Feedback.Submit(c.Request.Context(), services.FeedbackInput{
		LocationID:  req.LocationID,
		Cleanliness: req.Cleanliness,
		WaterSoap:   req.WaterSoap,
		Hygiene:     req.Hygiene,
		Odor:        req.Odor,
		Comment:     req.Comment,
	})
	if err != nil {
		d.respondError(c, err)
		return
	}

	d.Logger.Info("feedback submitted", zap.Uint("id", feedback.ID), zap.Uint("location_id", feedback.LocationID))
	c.JSON(http.StatusCreated, gin.H{"id": feedback.ID})
}
