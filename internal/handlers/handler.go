package handlers

import (
	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Window events of one session (HTTP upgrade), same port
	router.GET("/ws/sessions/:id", h.wsSession)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorIdentity)
	{
		h.registerSessionRoutes(api)
		h.registerLogRoutes(api)
		h.registerSystemRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.startSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.endSession)
		// Body: raw form text, e.g. {"length":"100","width":"50",...}
		sessions.POST("/:id/board", h.submitBoard)
		sessions.POST("/:id/process", h.submitProcess)
		sessions.POST("/:id/back", h.back)
		sessions.DELETE("/:id/windows/:stage", h.closeWindow)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}

func (h *Handler) registerSystemRoutes(api *gin.RouterGroup) {
	api.GET("/backend/status", h.getBackendStatus)
	api.POST("/spreadsheet/open", h.openSpreadsheet)
}
