package nanobanana

import (
	"context"
	"fmt"
	"time"

	"tryon/internal/domain"
	"tryon/internal/infra"
)

// Success flags reported by record-info.
const (
	FlagPending        = 0
	FlagSuccess        = 1
	FlagCreateFailed   = 2
	FlagGenerateFailed = 3
)

const (
	DefaultMaxAttempts = 60
	DefaultInterval    = 2 * time.Second
)

// Clock is the tick source between poll attempts.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock { return realClock{} }

// StatusFetcher looks up a task's current status.
type StatusFetcher interface {
	RecordInfo(ctx context.Context, taskID string) (*TaskStatus, error)
}

// Progress is reported after every attempt.
type Progress struct {
	TaskID      string
	Attempt     int
	MaxAttempts int
	Status      domain.JobStatus
	// Err is the swallowed transient failure, if any.
	Err error
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	MaxAttempts int
	Interval    time.Duration
	Clock       Clock
	Logger      *infra.Logger
}

// Poller drives a job from pending to a terminal state with a fixed attempt
// budget and a fixed delay before every attempt.
type Poller struct {
	fetcher     StatusFetcher
	maxAttempts int
	interval    time.Duration
	clock       Clock
	logger      *infra.Logger
}

// NewPoller constructs a Poller, filling defaults for unset options.
func NewPoller(fetcher StatusFetcher, opts PollerOptions) *Poller {
	p := &Poller{
		fetcher:     fetcher,
		maxAttempts: opts.MaxAttempts,
		interval:    opts.Interval,
		clock:       opts.Clock,
		logger:      opts.Logger,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.clock == nil {
		p.clock = SystemClock()
	}
	if p.logger == nil {
		p.logger = infra.NopLogger()
	}
	return p
}

// Wait polls until job reaches a terminal state and mutates it accordingly.
//
// Transient failures (non-200, transport or decode errors, unknown flags)
// count against the budget and are only reported through onProgress. Flags
// 2 and 3 end the loop immediately with domain.ErrGenerationFailed. A success
// flag without any result URL is domain.ErrMissingResult. Exhausting the
// budget yields domain.ErrTimeout. Cancelling ctx stops the loop and leaves
// the job pending.
func (p *Poller) Wait(ctx context.Context, job *domain.Job, onProgress func(Progress)) error {
	report := func(attempt int, status domain.JobStatus, err error) {
		job.Attempts = attempt
		if onProgress != nil {
			onProgress(Progress{TaskID: job.TaskID, Attempt: attempt, MaxAttempts: p.maxAttempts, Status: status, Err: err})
		}
	}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.interval):
		}

		status, err := p.fetcher.RecordInfo(ctx, job.TaskID)
		if err != nil {
			// Transport errors, non-200 replies and undecodable bodies all spend
			// one attempt and keep the task pending.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.logger.Debug().Err(err).Str("task_id", job.TaskID).Int("attempt", attempt).Msg("nanobanana: transient poll failure")
			report(attempt, domain.JobStatusPending, err)
			continue
		}

		if status.Flag == nil {
			report(attempt, domain.JobStatusPending, nil)
			continue
		}
		switch *status.Flag {
		case FlagSuccess:
			resultURL := status.ResultURL
			if resultURL == "" {
				resultURL = status.OriginURL
			}
			if resultURL == "" {
				job.Finish(domain.JobStatusFailed, "", p.clock.Now())
				report(attempt, domain.JobStatusFailed, nil)
				return domain.ErrMissingResult
			}
			job.Finish(domain.JobStatusSuccess, resultURL, p.clock.Now())
			report(attempt, domain.JobStatusSuccess, nil)
			p.logger.Info().Str("task_id", job.TaskID).Int("attempt", attempt).Msg("nanobanana: task succeeded")
			return nil
		case FlagCreateFailed, FlagGenerateFailed:
			job.Finish(domain.JobStatusFailed, "", p.clock.Now())
			report(attempt, domain.JobStatusFailed, nil)
			if status.ErrorMessage != "" {
				return fmt.Errorf("%w: %s (flag %d)", domain.ErrGenerationFailed, status.ErrorMessage, *status.Flag)
			}
			return fmt.Errorf("%w (flag %d)", domain.ErrGenerationFailed, *status.Flag)
		default:
			report(attempt, domain.JobStatusPending, nil)
		}
	}

	job.Finish(domain.JobStatusTimeout, "", p.clock.Now())
	p.logger.Warn().Str("task_id", job.TaskID).Int("attempts", p.maxAttempts).Msg("nanobanana: polling budget exhausted")
	return domain.ErrTimeout
}
