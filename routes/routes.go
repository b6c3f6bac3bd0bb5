package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sanitation-feedback-server/config"
	"sanitation-feedback-server/middleware"
	"sanitation-feedback-server/services"
	"sanitation-feedback-server/websocket"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Dependencies is everything the handlers need. Nothing is global.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Hub       *websocket.Hub
	Upgrader  *gorillaws.Upgrader
	Limiter   *middleware.RateLimiter
	Tokens    *services.TokenService
	Auth      *services.AuthService
	Feedback  *services.FeedbackService
	Reports   *services.ReportService
	Grades    *services.GradeService
	Dashboard *services.DashboardService
}

// NewDependencies wires the services over db. hub may be nil, in which case new
// feedback is not streamed and the stream endpoint is not registered.
func NewDependencies(cfg *config.Config, db *gorm.DB, logger *zap.Logger, hub *websocket.Hub) *Dependencies {
	tokens := services.NewTokenService(cfg.JWT)

	var notifier services.FeedbackNotifier
	if hub != nil {
		notifier = hub
	}

	return &Dependencies{
		Config:    cfg,
		Logger:    logger,
		Hub:       hub,
		Upgrader:  websocket.NewUpgrader(cfg.CORS.AllowedOrigins),
		Limiter:   middleware.NewRateLimiter(),
		Tokens:    tokens,
		Auth:      services.NewAuthService(db, tokens, logger),
		Feedback:  services.NewFeedbackService(db, notifier),
		Reports:   services.NewReportService(db),
		Grades:    services.NewGradeService(db),
		Dashboard: services.NewDashboardService(db),
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.Logger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.SecurityHeadersMiddleware(),
		middleware.CORSMiddleware(deps.Config.CORS.AllowedOrigins),
		middleware.BodyLimitMiddleware(maxBodyBytes),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	api := router.Group("/api")
	{
		RegisterLocationRoutes(api, deps)
		RegisterFeedbackRoutes(api, deps)
		RegisterAuthRoutes(api, deps)
		RegisterAdminRoutes(api, deps)
		RegisterStaffRoutes(api, deps)
	}

	return router
}

// rateLimited applies the configured per-client limit to a public write.
func (d *Dependencies) rateLimited() gin.HandlerFunc {
	return middleware.RateLimitMiddleware(d.Limiter, d.Config.RateLimit.PerMinute, d.Config.RateLimit.Burst, d.Logger)
}
