package api

import (
	"github.com/gin-gonic/gin"

	"surfalert-service/internal/config"
	"surfalert-service/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Alert preferences
		api.POST("/alerts", h.CreateAlert)
		api.GET("/alerts", h.GetAlertsByEmail)
		api.POST("/alerts/preview", h.PreviewAlert)
		api.PATCH("/alerts/:id/deactivate", h.DeactivateAlert)
		api.DELETE("/alerts/:id", h.DeleteAlert)

		// Spots and conditions
		api.GET("/spots", h.GetSpots)
		api.GET("/spots/:slug", h.GetSpot)
		api.GET("/charts", h.GetChart)
		api.GET("/wind-directions", h.GetWindDirections)

		// Processing and delivery
		api.POST("/process", h.TriggerProcess)
		api.GET("/notifications", h.GetNotificationsByEmail)
		api.GET("/ws", h.HandleWebSocket)

		api.GET("/health", h.Health)
	}
	return r
}
