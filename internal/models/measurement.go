package models

import "time"

// TestType represents the kind of measurement to run.
type TestType string

const (
	TestPing       TestType = "ping"
	TestTraceroute TestType = "traceroute"
	TestDNS        TestType = "dns"
	TestMTR        TestType = "mtr"
	TestHTTP       TestType = "http"
)

// ValidTestType reports whether t is one of the recognized test kinds.
func ValidTestType(t TestType) bool {
	switch t {
	case TestPing, TestTraceroute, TestDNS, TestMTR, TestHTTP:
		return true
	}
	return false
}

// JobStatus represents the lifecycle state of a measurement job.
type JobStatus string

const (
	JobSubmitted  JobStatus = "submitted"
	JobInProgress JobStatus = "in-progress"
	JobFinished   JobStatus = "finished"
	JobFailed     JobStatus = "failed"
	JobTimedOut   JobStatus = "timed-out"
	JobErrored    JobStatus = "errored"
)

// Terminal reports whether no further transitions are permitted from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobFinished, JobFailed, JobTimedOut, JobErrored:
		return true
	}
	return false
}

// TestRequest describes one user-initiated measurement. The Tag is copied
// from the chosen Node and selects the probe that runs the test.
type TestRequest struct {
	Type   TestType `json:"type"`
	Target string   `json:"target"`
	Tag    string   `json:"tag"`
}

// ProbeInfo describes the probe that executed a finished measurement.
type ProbeInfo struct {
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Network   string   `json:"network,omitempty"`
	ASN       int      `json:"asn,omitempty"`
	Longitude float64  `json:"longitude,omitempty"`
	Latitude  float64  `json:"latitude,omitempty"`
	Resolvers []string `json:"resolvers,omitempty"`
}

// MeasurementJob is the observable state of one submitted test run. It is
// created on successful submission and mutated only by the poller; once the
// status is terminal no further transitions happen.
type MeasurementJob struct {
	ID          string     `json:"id"`
	Type        TestType   `json:"type"`
	Target      string     `json:"target"`
	Status      JobStatus  `json:"status"`
	Elapsed     float64    `json:"elapsedSeconds"`
	Message     string     `json:"message,omitempty"`
	Probe       *ProbeInfo `json:"probe,omitempty"`
	RawOutput   string     `json:"rawOutput,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
