package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes on the given router.
func SetupRoutes(router *gin.Engine, handler *Handler, hub *Hub) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handler.GetStatus)
		v1.GET("/config", handler.GetConfig)
		v1.GET("/summary", handler.GetSummary)
		v1.GET("/transitions", handler.GetTransitions)

		v1.GET("/interfaces", handler.GetInterfaces)
		v1.GET("/interfaces/:name", handler.GetInterface)
		v1.GET("/interfaces/:name/history", handler.GetInterfaceHistory)

		if hub != nil {
			v1.GET("/ws", ServeWebSocket(hub))
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
}
