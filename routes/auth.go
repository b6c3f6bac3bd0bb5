package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sanitation-feedback-server/services"
	"sanitation-feedback-server/types"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterAuthRoutes registers the admin and staff login endpoints
func RegisterAuthRoutes(router *gin.RouterGroup, deps *Dependencies) {
	router.POST("/admin/login", deps.rateLimited(), deps.login(types.RoleAdmin))
	router.POST("/staff/login", deps.rateLimited(), deps.login(types.RoleStaff))
}

func (d *Dependencies) login(role types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			d.respondError(c, services.NewInvalidInputError("email and password are required"))
			return
		}

		token, err := d.Auth.Login(c.Request.Context(), role, req.Email, req.Password)
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
