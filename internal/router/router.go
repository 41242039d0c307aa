package router

import (
	"github.com/gin-gonic/gin"

	"shipdesk/internal/handler"
	"shipdesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	draftH *handler.DraftHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz"))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	drafts := v1.Group("/draft")
	drafts.GET("", draftH.Get)
	drafts.PUT("", draftH.Replace)
	drafts.PATCH("", draftH.Patch)
	drafts.DELETE("", draftH.Clear)
	drafts.PUT("/mode", draftH.SetMode)
	drafts.GET("/autofilled", draftH.AutoFilled)
	drafts.POST("/extract", draftH.Extract)
	drafts.GET("/quote", draftH.Quote)

	return r
}
