package measure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/looking-glass/backend/internal/models"
)

const (
	submitTimeout = 30 * time.Second
	queryTimeout  = 10 * time.Second
)

// Client submits measurement requests and queries their status. It owns no
// state beyond the outbound calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the provider API at baseURL
// (e.g. "https://api.globalping.io/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: submitTimeout},
	}
}

// Submit sends a measurement request and returns the provider-issued job
// id. Validation failures and provider rejections are *SubmissionError.
func (c *Client) Submit(ctx context.Context, req models.TestRequest) (string, error) {
	if !models.ValidTestType(req.Type) {
		return "", &SubmissionError{Message: fmt.Sprintf("unrecognized test type %q", req.Type)}
	}

	target := strings.TrimSpace(req.Target)
	if target == "" {
		return "", &SubmissionError{Message: "target is required"}
	}

	body := submission{
		Type:              req.Type,
		Target:            target,
		InProgressUpdates: true,
		Limit:             1,
		Locations:         []location{{Magic: req.Tag}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/measurements", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building submission request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending submission: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading submission response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &SubmissionError{
			StatusCode: resp.StatusCode,
			Message:    providerMessage(raw),
		}
	}

	var sr submitResponse
	if err := json.Unmarshal(raw, &sr); err != nil || sr.ID == "" {
		return "", &SubmissionError{Message: "missing job id"}
	}

	return sr.ID, nil
}

// GetMeasurement queries the status of a submitted job by id.
func (c *Client) GetMeasurement(ctx context.Context, id string) (*measurement, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/measurements/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("querying measurement %s: %w", id, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("measurement %s query returned status %d: %s",
			id, resp.StatusCode, providerMessage(raw))
	}

	var m measurement
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding measurement %s: %w", id, err)
	}

	return &m, nil
}

// providerMessage extracts the provider's error text from a response body,
// falling back to the raw body.
func providerMessage(raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}

	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no error details provided"
	}

	return msg
}
