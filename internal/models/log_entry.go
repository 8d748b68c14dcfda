package models

import "time"

// LogEntry represents one recorded user action. Entries are immutable once
// created; identity is the ID, which is assigned server-side.
type LogEntry struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	NodeName     string    `json:"nodeName"`
	NodeLocation string    `json:"nodeLocation,omitempty"`
	TestType     string    `json:"testType,omitempty"`
	Target       string    `json:"target,omitempty"`
	IP           string    `json:"ip,omitempty"`
	UserAgent    string    `json:"userAgent,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	Country      string    `json:"country,omitempty"`
	City         string    `json:"city,omitempty"`
}

// LogRecord is the persisted shape of the whole log store: the bounded,
// most-recent-first entry list plus derived counters.
type LogRecord struct {
	Logs         []LogEntry `json:"logs"`
	TotalRecords int        `json:"totalRecords"`
	LastUpdate   time.Time  `json:"lastUpdate"`
}

// StatsSummary holds aggregate usage counters derived from the log store.
// It is recomputed on every call and never persisted.
type StatsSummary struct {
	TotalLogs  int            `json:"totalLogs"`
	UniqueIPs  int            `json:"uniqueIPs"`
	Nodes      map[string]int `json:"nodes"`
	TestTypes  map[string]int `json:"testTypes"`
	Countries  map[string]int `json:"countries"`
	LastUpdate time.Time      `json:"lastUpdate"`
}
