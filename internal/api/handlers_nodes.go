// handlers_nodes.go - Node catalog
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleListNodes returns the static node catalog.
func (h *Handler) HandleListNodes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"nodes": h.catalog.All(),
	})
}

// HandleGetNode returns one node by id.
func (h *Handler) HandleGetNode(c echo.Context) error {
	node, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		return NewNotFoundError("node", c.Param("id"))
	}

	return c.JSON(http.StatusOK, node)
}
