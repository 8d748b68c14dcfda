// handlers_logs.go - Usage log ingestion, listing and statistics
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/looking-glass/backend/internal/logstore"
)

// appendLogRequest is the POST /api/logs body. Any client-supplied id or
// timestamp is ignored; both are assigned server-side.
type appendLogRequest struct {
	Action       string `json:"action"`
	NodeName     string `json:"nodeName"`
	NodeLocation string `json:"nodeLocation"`
	TestType     string `json:"testType"`
	Target       string `json:"target"`
	SessionID    string `json:"sessionId"`
}

// HandleAppendLog records one user action into the bounded log.
func (h *Handler) HandleAppendLog(c echo.Context) error {
	var req appendLogRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	entry, total, err := h.logs.Append(c.Request().Context(), logstore.AppendInput{
		Action:       req.Action,
		NodeName:     req.NodeName,
		NodeLocation: req.NodeLocation,
		TestType:     req.TestType,
		Target:       req.Target,
		SessionID:    req.SessionID,
		IP:           c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
		Country:      geoHeader(c, "CF-IPCountry"),
		City:         geoHeader(c, "CF-IPCity"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success":      true,
		"id":           entry.ID,
		"totalRecords": total,
	})
}

// HandleListLogs returns the most recent entries, newest first.
// ?limit=N caps the page; the default is 200.
func (h *Handler) HandleListLogs(c echo.Context) error {
	record, err := h.logs.List(c.Request().Context(), listLimit(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// HandleListLogsMsgpack is HandleListLogs with a msgpack body, for clients
// that poll the log frequently.
func (h *Handler) HandleListLogsMsgpack(c echo.Context) error {
	record, err := h.logs.List(c.Request().Context(), listLimit(c))
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(record)
	if err != nil {
		return NewInternalError("failed to encode logs", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleStats derives aggregate usage counters from the stored log.
func (h *Handler) HandleStats(c echo.Context) error {
	summary, err := h.logs.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}

// HandleArchiveStats reports all-time counters over entries trimmed from
// the bounded log. 404 when archiving is disabled.
func (h *Handler) HandleArchiveStats(c echo.Context) error {
	if h.archive == nil {
		return NewNotFoundError("archive", "not configured")
	}

	summary, err := h.archive.Stats(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to read archive", err)
	}

	return c.JSON(http.StatusOK, summary)
}

func listLimit(c echo.Context) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}

	return limit
}

// geoHeader reads an edge-supplied geolocation header, defaulting to
// "unknown" when the deployment has no geo-aware proxy in front.
func geoHeader(c echo.Context, name string) string {
	if v := c.Request().Header.Get(name); v != "" {
		return v
	}

	return "unknown"
}
