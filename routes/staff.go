package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sanitation-feedback-server/middleware"
	"sanitation-feedback-server/types"
)

// RegisterStaffRoutes registers the staff-only endpoints
func RegisterStaffRoutes(router *gin.RouterGroup, deps *Dependencies) {
	staff := router.Group("/staff")
	staff.Use(middleware.RequireRole(deps.Tokens, types.RoleStaff, deps.Logger))
	{
		staff.GET("/dashboard", deps.staffDashboard)
	}
}

func (d *Dependencies) staffDashboard(c *gin.Context) {
	dashboard, err := d.Dashboard.ForStaff(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		d.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
