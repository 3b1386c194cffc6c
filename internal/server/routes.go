package server

import (
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/USA-RedDragon/ota-server/internal/server/controllers"
	"github.com/gin-gonic/gin"
)

func applyRoutes(r *gin.Engine, config *config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Native clients identify themselves in the request body.
	r.POST("/updates", controllers.POSTUpdates)
	r.POST("/channel_self", controllers.POSTChannelSelf)
	r.PUT("/channel_self", controllers.PUTChannelSelf)
	r.DELETE("/channel_self", controllers.DELETEChannelSelf)

	admin := r.Group("/", requireAPIKey(config))
	admin.GET("/app", controllers.GETApps)
	admin.POST("/app", controllers.POSTApp)
	admin.GET("/channel", controllers.GETChannel)
	admin.POST("/channel", controllers.POSTChannel)
	admin.DELETE("/channel", controllers.DELETEChannel)
	admin.GET("/bundle", controllers.GETBundle)
	admin.POST("/bundle", controllers.POSTBundle)
	admin.DELETE("/bundle", controllers.DELETEBundle)
	admin.POST("/device", controllers.POSTDeviceOverride)
	admin.DELETE("/device", controllers.DELETEDeviceOverride)

	r.NoRoute(func(c *gin.Context) {
		slog.Warn("Not Found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
}
