package measure

import (
	"errors"
	"fmt"
)

// ErrJobNotFound means the manager has no job under the requested id.
var ErrJobNotFound = errors.New("measurement job not found")

// SubmissionError means the provider rejected a measurement request or
// returned a malformed response. The caller must not proceed to polling.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("measurement submission failed (status %d): %s", e.StatusCode, e.Message)
	}

	return "measurement submission failed: " + e.Message
}
