package measure

import (
	"context"
	"fmt"
	"time"

	"github.com/looking-glass/backend/internal/models"
)

const (
	// DefaultAttempts and DefaultInterval bound the total wait to about
	// two minutes. The interval is fixed, not adaptive.
	DefaultAttempts = 60
	DefaultInterval = 2 * time.Second
)

// Observer receives a human-readable progress line at least once per poll
// attempt. Advisory only: it never affects the state machine.
type Observer func(message string, elapsed time.Duration)

// statusClient is the part of Client the poller needs.
type statusClient interface {
	GetMeasurement(ctx context.Context, id string) (*measurement, error)
}

// Outcome is the terminal result of a polled job.
type Outcome struct {
	Status    models.JobStatus // one of finished, failed, timed-out, errored
	Message   string
	Probe     *models.ProbeInfo
	RawOutput string
	Elapsed   time.Duration
}

// Poller drives a submitted job to a terminal outcome: it queries the job
// status at a fixed interval until the provider reports finished or failed,
// the attempt budget runs out, or the final attempt's query fails.
type Poller struct {
	client   statusClient
	attempts int
	interval time.Duration
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithBudget overrides the attempt count and inter-attempt interval.
func WithBudget(attempts int, interval time.Duration) PollerOption {
	return func(p *Poller) {
		p.attempts = attempts
		p.interval = interval
	}
}

// NewPoller creates a poller over the given client.
func NewPoller(client statusClient, opts ...PollerOption) *Poller {
	p := &Poller{
		client:   client,
		attempts: DefaultAttempts,
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run polls jobID until a terminal outcome. Exactly one query is in flight
// at a time, each preceded by the fixed delay. Cancelling ctx stops
// scheduling further attempts; a query already issued runs to completion on
// the provider's side regardless.
func (p *Poller) Run(ctx context.Context, jobID string, observe Observer) *Outcome {
	if observe == nil {
		observe = func(string, time.Duration) {}
	}

	for attempt := 1; attempt <= p.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return &Outcome{
				Status:  models.JobErrored,
				Message: "polling cancelled: " + ctx.Err().Error(),
				Elapsed: time.Duration(attempt-1) * p.interval,
			}
		case <-time.After(p.interval):
		}

		elapsed := time.Duration(attempt) * p.interval
		lastAttempt := attempt == p.attempts

		m, err := p.client.GetMeasurement(ctx, jobID)
		if err != nil {
			// Transient while budget remains; terminal on the final try.
			if lastAttempt {
				return &Outcome{
					Status:  models.JobErrored,
					Message: "status query failed: " + err.Error(),
					Elapsed: elapsed,
				}
			}

			observe(fmt.Sprintf("status query failed, retrying (waited %s)", elapsed), elapsed)

			continue
		}

		switch m.Status {
		case ResultFinished:
			if outcome := finishedOutcome(m, elapsed); outcome != nil {
				return outcome
			}

			// Outer status says finished but no completed result is
			// embedded yet; only the last attempt gives up on it.
			if lastAttempt {
				return &Outcome{
					Status:  models.JobTimedOut,
					Message: "measurement reported finished without results",
					Elapsed: elapsed,
				}
			}

			observe(fmt.Sprintf("waiting for results (waited %s)", elapsed), elapsed)

		case ResultFailed:
			msg := "measurement failed"
			if detail := failureDetail(m); detail != "" {
				msg = detail
			}

			return &Outcome{
				Status:  models.JobFailed,
				Message: msg,
				Elapsed: elapsed,
			}

		default:
			// creating, in-progress, or anything unrecognized: keep waiting.
			observe(fmt.Sprintf("measurement in progress (waited %s)", elapsed), elapsed)
		}
	}

	return &Outcome{
		Status:  models.JobTimedOut,
		Message: fmt.Sprintf("measurement did not complete within %s", time.Duration(p.attempts)*p.interval),
		Elapsed: time.Duration(p.attempts) * p.interval,
	}
}

// finishedOutcome returns a Finished outcome when the measurement carries at
// least one result whose nested status is also finished, nil otherwise. The
// provider nests the status twice and the two can disagree mid-flight, so
// both are checked.
func finishedOutcome(m *measurement, elapsed time.Duration) *Outcome {
	if len(m.Results) == 0 {
		return nil
	}

	r := &m.Results[0]
	if r.Result.Status != ResultFinished {
		return nil
	}

	return &Outcome{
		Status:    models.JobFinished,
		Probe:     r.Probe.toModel(),
		RawOutput: r.Result.rawOutputString(),
		Elapsed:   elapsed,
	}
}

// failureDetail surfaces the provider's own failure text when present.
func failureDetail(m *measurement) string {
	if len(m.Results) == 0 {
		return ""
	}

	return m.Results[0].Result.rawOutputString()
}
