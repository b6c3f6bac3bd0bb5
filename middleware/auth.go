package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sanitation-feedback-server/services"
	"sanitation-feedback-server/types"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// TokenVerifier is satisfied by services.TokenService.
type TokenVerifier interface {
	Verify(tokenString string) (*types.Claims, error)
}

// RequireRole validates the bearer token and the role it carries, then sets
// user_id, role and claims on the context.
func RequireRole(tokens TokenVerifier, role types.Role, logger *zap.Logger) gin.HandlerFunc {
	return requireRole(tokens, role, logger, false)
}

// RequireRoleWebSocket is RequireRole that also accepts ?token= since browsers cannot set
// headers on websocket upgrades.
func RequireRoleWebSocket(tokens TokenVerifier, role types.Role, logger *zap.Logger) gin.HandlerFunc {
	return requireRole(tokens, role, logger, true)
}

func requireRole(tokens TokenVerifier, role types.Role, logger *zap.Logger, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil && allowQuery && c.Query("token") != "" {
			tokenString, err = c.Query("token"), nil
		}
		if err != nil {
			abort(c, err)
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			logger.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			abort(c, err)
			return
		}

		if err := services.Authorize(claims, role); err != nil {
			logger.Info("role mismatch",
				zap.String("path", c.FullPath()),
				zap.String("have", string(claims.Role)),
				zap.String("want", string(role)))
			abort(c, err)
			return
		}

		// Verify already checked the subject parses.
		id, _ := claims.SubjectID()
		c.Set(ContextUserID, id)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", services.NewUnauthenticatedError("Authorization header required", nil)
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header || strings.TrimSpace(tokenString) == "" {
		return "", services.NewUnauthenticatedError("Token must be in format: Bearer <token>", nil)
	}
	return strings.TrimSpace(tokenString), nil
}

func abort(c *gin.Context, err error) {
	kind := services.KindOf(err)
	c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{"error": err.Error()})
}

// SubjectID returns the authenticated account id set by RequireRole.
func SubjectID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}
