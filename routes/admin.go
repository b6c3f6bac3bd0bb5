package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sanitation-feedback-server/middleware"
	"sanitation-feedback-server/services"
	"sanitation-feedback-server/types"
)

type gradeRequest struct {
	StaffID uint    `json:"staffId" binding:"required"`
	Grade   string  `json:"grade" binding:"required,oneof=A B C D E"`
	Note    *string `json:"note"`
}

// RegisterAdminRoutes registers the admin-only endpoints
func RegisterAdminRoutes(router *gin.RouterGroup, deps *Dependencies) {
	admin := router.Group("/admin")

	protected := admin.Group("")
	protected.Use(middleware.RequireRole(deps.Tokens, types.RoleAdmin, deps.Logger))
	{
		protected.GET("/summary", deps.adminSummary)
		protected.POST("/grade", deps.assignGrade)
		protected.GET("/grades", deps.gradeHistory)
		protected.GET("/grades/latest", deps.latestGrade)
		protected.GET("/feedback", deps.adminFeedback)
		protected.GET("/feedback/export", deps.exportFeedback)
	}

	if deps.Hub != nil {
		// browsers cannot set an Authorization header on an upgrade
		admin.GET("/feedback/stream",
			middleware.RequireRoleWebSocket(deps.Tokens, types.RoleAdmin, deps.Logger),
			deps.feedbackStream)
	}
}

func (d *Dependencies) adminSummary(c *gin.Context) {
	summary, err := d.Reports.Summary(c.Request.Context())
	if err != nil {
		d.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (d *Dependencies) assignGrade(c *gin.Context) {
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		d.respondError(c, services.NewInvalidInputError("staffId and a grade of A, B, C, D or E are required"))
		return
	}

	grade, err := d.Grades.Assign(c.Request.Context(), req.StaffID, req.Grade, req.Note)
	if err != nil {
		d.respondError(c, err)
		return
	}

	d.Logger.Info("grade assigned",
		zap.Uint("id", grade.ID),
		zap.Uint("staff_id", grade.StaffID),
		zap.String("grade", grade.Grade),
		zap.Uint("admin_id", middleware.SubjectID(c)))
	c.JSON(http.StatusCreated, gin.H{"id": grade.ID})
}

func (d *Dependencies) gradeHistory(c *gin.Context) {
	staffID, err := staffIDQuery(c)
	if err != nil {
		d.respondError(c, err)
		return
	}

	grades, err := d.Grades.History(c.Request.Context(), staffID)
	if err != nil {
		d.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

func (d *Dependencies) latestGrade(c *gin.Context) {
	staffID, err := staffIDQuery(c)
	if err != nil {
		d.respondError(c, err)
		return
	}

	grade, err := d.Grades.Latest(c.Request.Context(), staffID)
	if err != nil {
		d.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grade)
}

func (d *Dependencies) adminFeedback(c *gin.Context) {
	feedback, err := d.Reports.RecentFeedback(c.Request.Context(), services.AdminFeedbackLimit)
	if err != nil {
		d.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func staffIDQuery(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Query("staffId"), 10, 32)
	if err != nil || id == 0 {
		return 0, services.NewInvalidInputError("staffId query parameter must be a positive integer")
	}
	return uint(id), nil
}
