package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", handler.healthz)

	api := router.Group("/api/v1")
	api.Use(authMiddleware)
	{
		api.GET("/vehicles", handler.listVehicles)
		api.GET("/vehicles/:id", handler.getVehicle)
		api.POST("/vehicles", handler.addVehicle)
		api.DELETE("/vehicles/:id", handler.removeVehicle)
		api.GET("/vehicles/:id/summary", handler.summarizeVehicle)

		api.POST("/checks", handler.runCheck)
		api.POST("/test-runs", handler.runTest)

		api.GET("/settings", handler.getSettings)
		api.PUT("/settings", handler.updateSettings)

		api.GET("/logs", handler.listLogs)
		api.DELETE("/logs", handler.clearLogs)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse("route not found"))
	})

	return router
}
