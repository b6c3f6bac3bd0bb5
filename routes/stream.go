package routes

import (
	"github.com/gin-gonic/gin"

	"sanitation-feedback-server/middleware"
	"sanitation-feedback-server/websocket"
)

// feedbackStream upgrades to a websocket that receives every new submission.
func (d *Dependencies) feedbackStream(c *gin.Context) {
	websocket.ServeWebSocket(d.Hub, d.Upgrader, c.Writer, c.Request, middleware.SubjectID(c))
}
