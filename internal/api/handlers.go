package api

import (
	"github.com/looking-glass/backend/internal/archive"
	"github.com/looking-glass/backend/internal/logstore"
	"github.com/looking-glass/backend/internal/measure"
	"github.com/looking-glass/backend/internal/nodes"
)

// Handler handles API requests.
type Handler struct {
	logs    *logstore.Store
	jobs    *measure.Manager
	catalog *nodes.Catalog
	archive *archive.Store // nil when archiving is disabled
	version string
}

// NewHandler creates a new API handler. archive may be nil.
func NewHandler(logs *logstore.Store, jobs *measure.Manager, catalog *nodes.Catalog, arc *archive.Store, version string) *Handler {
	return &Handler{
		logs:    logs,
		jobs:    jobs,
		catalog: catalog,
		archive: arc,
		version: version,
	}
}
