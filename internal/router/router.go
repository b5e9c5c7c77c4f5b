package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rmtl/internal/handler"
	"rmtl/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger *zap.Logger,
	corsOrigins []string,
	workspaceH *handler.WorkspaceHandler,
	enumH *handler.EnumHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	v1.GET("/enums", enumH.List)
	v1.GET("/report-types", enumH.ReportTypes)

	// Batch-entry workspaces
	ws := v1.Group("/workspaces")
	ws.POST("", workspaceH.Open)
	ws.GET("/:id", workspaceH.Get)
	ws.DELETE("/:id", workspaceH.Close)
	ws.POST("/:id/reload", workspaceH.Reload)
	ws.PUT("/:id/header", workspaceH.SetHeader)
	ws.POST("/:id/validate", workspaceH.Validate)
	ws.POST("/:id/clear", workspaceH.Clear)
	ws.POST("/:id/submit", workspaceH.Submit)

	rows := ws.Group("/:id/rows")
	rows.POST("", workspaceH.AppendRow)
	rows.POST("/pick", workspaceH.Pick)
	rows.GET("/:pos", workspaceH.GetRow)
	rows.PUT("/:pos", workspaceH.UpdateRow)
	rows.DELETE("/:pos", workspaceH.RemoveRow)
	rows.PUT("/:pos/serial", workspaceH.SetSerial)

	return r
}
