package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, logger *slog.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware(logger))

	api := engine.Group("/api/v1")
	api.POST("/backfill", handler.Backfill)
	api.GET("/clusters", handler.TopClusters)

	engine.GET("/health", handler.Health)

	return engine
}
