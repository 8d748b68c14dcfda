package measure

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looking-glass/backend/internal/models"
)

// fakeProvider implements submitter with canned answers.
type fakeProvider struct {
	submitID  string
	submitErr error
	script    *scriptedClient
}

func (f *fakeProvider) Submit(_ context.Context, _ models.TestRequest) (string, error) {
	return f.submitID, f.submitErr
}

func (f *fakeProvider) GetMeasurement(ctx context.Context, id string) (*measurement, error) {
	return f.script.GetMeasurement(ctx, id)
}

func newTestManager(provider *fakeProvider) *Manager {
	return NewManager(provider, zerolog.Nop(), WithBudget(10, time.Millisecond))
}

func TestManager_StartAndFollow(t *testing.T) {
	provider := &fakeProvider{
		submitID: "job-1",
		script: &scriptedClient{steps: []scriptStep{
			{m: inProgress()},
			{m: finished("PING output")},
		}},
	}

	mgr := newTestManager(provider)

	job, err := mgr.Start(context.Background(), pingRequest())
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, models.JobSubmitted, job.Status)
	assert.False(t, job.CreatedAt.IsZero())

	require.Eventually(t, func() bool {
		got, err := mgr.Get("job-1")
		return err == nil && got.Status == models.JobFinished
	}, time.Second, 5*time.Millisecond)

	got, err := mgr.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, "PING output", got.RawOutput)
	require.NotNil(t, got.Probe)
	assert.Equal(t, "Frankfurt", got.Probe.City)
	require.NotNil(t, got.CompletedAt)
}

func TestManager_SubmitFailureStartsNothing(t *testing.T) {
	provider := &fakeProvider{
		submitErr: &SubmissionError{StatusCode: 422, Message: "invalid target"},
		script:    &scriptedClient{steps: []scriptStep{{m: inProgress()}}},
	}

	mgr := newTestManager(provider)

	_, err := mgr.Start(context.Background(), pingRequest())

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)

	// No job was registered and no polling happened.
	assert.Zero(t, provider.script.calls)
}

func TestManager_TerminalStateIsStable(t *testing.T) {
	provider := &fakeProvider{
		submitID: "job-2",
		script: &scriptedClient{steps: []scriptStep{
			{m: &measurement{Status: ResultFailed}},
		}},
	}

	mgr := newTestManager(provider)

	_, err := mgr.Start(context.Background(), pingRequest())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := mgr.Get("job-2")
		return err == nil && got.Status.Terminal()
	}, time.Second, 5*time.Millisecond)

	first, err := mgr.Get("job-2")
	require.NoError(t, err)

	// A late progress callback must not move the job out of its terminal
	// state.
	mgr.progress("job-2", "stale update", time.Second)

	second, err := mgr.Get("job-2")
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Message, second.Message)
}

func TestManager_GetUnknownJob(t *testing.T) {
	mgr := newTestManager(&fakeProvider{script: &scriptedClient{steps: []scriptStep{{m: inProgress()}}}})

	_, err := mgr.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
