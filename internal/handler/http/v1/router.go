package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты дашборда
	api.GET("/dashboard/overview", h.getOverview)
	api.POST("/dashboard/refresh", h.refreshDashboard)
	api.GET("/alerts/groups", h.getAlertGroups)
	api.GET("/updates", h.getUpdates)

	// Маршруты чата
	sessions := api.Group("/chat/sessions")
	{
		sessions.POST("", h.openSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.closeSession)
		sessions.POST("/:id/messages", h.sendMessage)
		sessions.POST("/:id/report", h.generateReport)
		sessions.GET("/:id/transcript", h.getTranscript)
	}

	// Скачивание PDF-отчётов
	api.GET("/artifacts/:id", h.downloadArtifact)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
