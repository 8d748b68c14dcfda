// Package measure talks to the external measurement provider: it submits
// test requests, polls them to a terminal outcome and tracks the jobs in
// flight.
package measure

import (
	"encoding/json"
	"strings"

	"github.com/looking-glass/backend/internal/models"
)

// ResultStatus is the status the provider reports for a measurement. It
// appears twice in the response schema, once on the measurement and once
// nested inside each result; the poller checks both.
type ResultStatus string

const (
	ResultCreating   ResultStatus = "creating"
	ResultInProgress ResultStatus = "in-progress"
	ResultFinished   ResultStatus = "finished"
	ResultFailed     ResultStatus = "failed"
)

// submission is the outbound request body. Exactly one probe is requested
// per job.
type submission struct {
	Type              models.TestType `json:"type"`
	Target            string          `json:"target"`
	InProgressUpdates bool            `json:"inProgressUpdates"`
	Limit             int             `json:"limit"`
	Locations         []location      `json:"locations"`
}

type location struct {
	Magic string `json:"magic"`
}

// submitResponse is the body of a successful submission.
type submitResponse struct {
	ID string `json:"id"`
}

// errorResponse is the provider's error envelope.
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// measurement is the status-query response body.
type measurement struct {
	ID      string              `json:"id"`
	Status  ResultStatus        `json:"status"`
	Results []measurementResult `json:"results"`
}

type measurementResult struct {
	Probe  probe        `json:"probe"`
	Result resultDetail `json:"result"`
}

type probe struct {
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Network   string   `json:"network"`
	ASN       int      `json:"asn"`
	Longitude float64  `json:"longitude"`
	Latitude  float64  `json:"latitude"`
	Resolvers []string `json:"resolvers"`
}

type resultDetail struct {
	Status ResultStatus `json:"status"`
	// RawOutput is a plain string for most test types but a structured
	// object for some; keep the raw bytes and normalize on access.
	RawOutput json.RawMessage `json:"rawOutput"`
}

// rawOutputString renders RawOutput for display: strings are unquoted,
// anything else is returned as its JSON text.
func (r *resultDetail) rawOutputString() string {
	if len(r.RawOutput) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(r.RawOutput, &s); err == nil {
		return s
	}

	return strings.TrimSpace(string(r.RawOutput))
}

func (p *probe) toModel() *models.ProbeInfo {
	return &models.ProbeInfo{
		City:      p.City,
		Country:   p.Country,
		Network:   p.Network,
		ASN:       p.ASN,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
		Resolvers: p.Resolvers,
	}
}
