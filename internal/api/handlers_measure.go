// handlers_measure.go - Measurement submission and job status
package api

import (
	"html"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/looking-glass/backend/internal/models"
)

// submitMeasurementRequest is the POST /api/measurements body. The probe
// tag is resolved from the chosen node, never taken from the client.
type submitMeasurementRequest struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	NodeID string `json:"nodeId"`
}

// HandleSubmitMeasurement submits a test toward the target and starts
// polling it in the background. The response carries the job id the client
// follows up on.
func (h *Handler) HandleSubmitMeasurement(c echo.Context) error {
	var req submitMeasurementRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if strings.TrimSpace(req.Target) == "" {
		return NewValidationError("target")
	}

	testType := models.TestType(req.Type)
	if !models.ValidTestType(testType) {
		return NewValidationError("type")
	}

	node, ok := h.catalog.Get(req.NodeID)
	if !ok {
		return NewNotFoundError("node", req.NodeID)
	}

	job, err := h.jobs.Start(c.Request().Context(), models.TestRequest{
		Type:   testType,
		Target: strings.TrimSpace(req.Target),
		Tag:    node.Tag,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, job)
}

// HandleGetMeasurement returns the current state of a job. The raw output
// comes from the provider and is escaped before it reaches a browser.
func (h *Handler) HandleGetMeasurement(c echo.Context) error {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		return err
	}

	job.RawOutput = html.EscapeString(job.RawOutput)
	job.Message = html.EscapeString(job.Message)

	return c.JSON(http.StatusOK, job)
}
