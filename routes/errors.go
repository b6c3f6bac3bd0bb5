package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sanitation-feedback-server/middleware"
	"sanitation-feedback-server/services"
)

const opaqueStorageMessage = "internal error"

// respondError writes {"error": message} with the status of the error's kind. Storage
// failures are always logged; their text reaches the client only when configured to.
func (d *Dependencies) respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	message := err.Error()

	if kind == services.ErrorStorageFailure {
		d.Logger.Error("storage failure",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.ContextRequestID)),
			zap.Error(err))
		if !d.Config.ExposeStorageErrors {
			message = opaqueStorageMessage
		}
	}

	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": message})
}
