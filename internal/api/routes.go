// routes.go - Route registration
package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	api := e.Group("/api")

	api.GET("/health", h.HandleHealth)

	// Node catalog
	api.GET("/nodes", h.HandleListNodes)
	api.GET("/nodes/:id", h.HandleGetNode)

	// Measurement jobs
	api.POST("/measurements", h.HandleSubmitMeasurement)
	api.GET("/measurements/:id", h.HandleGetMeasurement)

	// Usage log
	api.POST("/logs", h.HandleAppendLog)
	api.GET("/logs", h.HandleListLogs)
	api.GET("/logs/msgpack", h.HandleListLogsMsgpack)
	api.GET("/stats", h.HandleStats)
	api.GET("/stats/archive", h.HandleArchiveStats)
}
