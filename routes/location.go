package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterLocationRoutes registers the public location listing
func RegisterLocationRoutes(router *gin.RouterGroup, deps *Dependencies) {
	router.GET("/locations", deps.listLocations)
}

func (d *Dependencies) listLocations(c *gin.Context) {
	locations, err := d.Feedback.ListLocations(c.Request.Context())
	if err != nil {
		d.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}
