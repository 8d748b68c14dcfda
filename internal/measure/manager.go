package measure

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/looking-glass/backend/internal/models"
)

// submitter is the part of Client the manager needs for submissions.
type submitter interface {
	Submit(ctx context.Context, req models.TestRequest) (string, error)
	GetMeasurement(ctx context.Context, id string) (*measurement, error)
}

// Manager tracks measurement jobs in flight. Each job owns its own request
// and state; jobs from different sessions run concurrently and share
// nothing. Finished jobs stay readable until retention expires.
type Manager struct {
	mu     sync.RWMutex
	jobs   map[string]*models.MeasurementJob
	client submitter
	poller *Poller
	log    zerolog.Logger

	retention time.Duration
}

// NewManager creates a manager that submits through client and polls with
// the given poller options.
func NewManager(client submitter, log zerolog.Logger, opts ...PollerOption) *Manager {
	return &Manager{
		jobs:      make(map[string]*models.MeasurementJob),
		client:    client,
		poller:    NewPoller(client, opts...),
		log:       log,
		retention: 10 * time.Minute,
	}
}

// Start submits the request and, on success, begins polling the job in the
// background. The returned snapshot has status submitted; callers follow
// progress through Get.
func (m *Manager) Start(ctx context.Context, req models.TestRequest) (*models.MeasurementJob, error) {
	id, err := m.client.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	job := &models.MeasurementJob{
		ID:        id,
		Type:      req.Type,
		Target:    req.Target,
		Status:    models.JobSubmitted,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	m.log.Info().Str("job_id", id).Str("type", string(req.Type)).
		Str("target", req.Target).Msg("measurement submitted")

	// Polling deliberately does not inherit the request context: the job
	// keeps running after the submitting request returns.
	go m.poll(context.Background(), id)

	return m.snapshot(id), nil
}

// Get returns a snapshot of the job's current state.
func (m *Manager) Get(id string) (*models.MeasurementJob, error) {
	job := m.snapshot(id)
	if job == nil {
		return nil, ErrJobNotFound
	}

	return job, nil
}

func (m *Manager) poll(ctx context.Context, id string) {
	outcome := m.poller.Run(ctx, id, func(message string, elapsed time.Duration) {
		m.progress(id, message, elapsed)
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}

	now := time.Now().UTC()
	job.Status = outcome.Status
	job.Message = outcome.Message
	job.Probe = outcome.Probe
	job.RawOutput = outcome.RawOutput
	job.Elapsed = outcome.Elapsed.Seconds()
	job.CompletedAt = &now

	m.log.Info().Str("job_id", id).Str("status", string(outcome.Status)).
		Dur("elapsed", outcome.Elapsed).Msg("measurement finished polling")

	m.scheduleExpiry(id)
}

// progress records an advisory update on a non-terminal job.
func (m *Manager) progress(id, message string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}

	job.Status = models.JobInProgress
	job.Message = message
	job.Elapsed = elapsed.Seconds()
}

func (m *Manager) snapshot(id string) *models.MeasurementJob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil
	}

	copied := *job

	return &copied
}

// scheduleExpiry drops a terminal job from the registry after retention.
// Caller holds the lock.
func (m *Manager) scheduleExpiry(id string) {
	time.AfterFunc(m.retention, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.jobs, id)
	})
}
