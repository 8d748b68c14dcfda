// handlers_health.go - Health check handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/looking-glass/backend/internal/logstore"
)

// HandleHealth returns server health status, including whether the log
// storage backend is reachable.
func (h *Handler) HandleHealth(c echo.Context) error {
	backend := "ok"

	if _, err := h.logs.List(c.Request().Context(), 1); err != nil {
		if errors.Is(err, logstore.ErrBackendUnavailable) {
			backend = "unavailable"
		} else {
			backend = "error"
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"backend": backend,
	})
}
