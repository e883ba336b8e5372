package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"remindme-server/logger"
	"remindme-server/models"
)

// JobHandler executes a fired job and reports its outcome status.
type JobHandler func(ctx context.Context, payload json.RawMessage) (string, error)

// DueJobSource hands out due jobs and records their outcome.
type DueJobSource interface {
	ClaimDueJobs(ctx context.Context, now time.Time, limit int) ([]models.ScheduledJob, error)
	MarkJobResult(ctx context.Context, id, status, errMsg string) error
}

const (
	// DefaultJobTimeout bounds a single handler invocation
	DefaultJobTimeout = 30 * time.Second

	markTimeout = 5 * time.Second
)

// ScheduleRunner polls for due one-shot jobs and invokes the handler
// registered under each job's name. Claimed jobs are never re-run, so a
// claimed batch runs to completion even after ctx is cancelled; cancellation
// only stops new claims.
type ScheduleRunner struct {
	source     DueJobSource
	handlers   map[string]JobHandler
	interval   time.Duration
	batchSize  int
	jobTimeout time.Duration
	now        func() time.Time
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	mu         sync.RWMutex
}

func NewScheduleRunner(source DueJobSource, interval time.Duration, batchSize int) *ScheduleRunner {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &ScheduleRunner{
		source:     source,
		handlers:   make(map[string]JobHandler),
		interval:   interval,
		batchSize:  batchSize,
		jobTimeout: DefaultJobTimeout,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
}

// Register binds a handler to a job name.
func (r *ScheduleRunner) Register(name string, h JobHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

func (r *ScheduleRunner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := r.RunOnce(ctx); err != nil {
					logger.Named("runner").Error().Err(err).Msg("failed to claim due jobs")
				}
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			}
		}
	}()
	logger.Named("runner").Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("schedule runner started")
}

// Stop waits for the running batch to finish. It is safe to call more than once.
func (r *ScheduleRunner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
		logger.Named("runner").Info().Msg("schedule runner stopped")
	})
}

// RunOnce claims one batch of due jobs, runs them and waits for them to
// finish. It returns the number of jobs claimed.
func (r *ScheduleRunner) RunOnce(ctx context.Context) (int, error) {
	jobs, err := r.source.ClaimDueJobs(ctx, r.now(), r.batchSize)
	if err != nil {
		return 0, err
	}

	// claimed jobs are already marked fired
	jobCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job models.ScheduledJob) {
			defer wg.Done()
			r.execute(jobCtx, job)
		}(job)
	}
	wg.Wait()

	return len(jobs), nil
}

func (r *ScheduleRunner) execute(ctx context.Context, job models.ScheduledJob) {
	log := logger.Named("runner").With().Str("job_id", job.ID).Str("job_name", job.Name).Logger()

	r.mu.RLock()
	h, ok := r.handlers[job.Name]
	r.mu.RUnlock()
	if !ok {
		log.Error().Msg("no handler registered for job")
		r.mark(ctx, job.ID, models.JobStatusFailed, "no handler registered for "+job.Name)
		return
	}

	hctx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	status, err := r.invoke(hctx, h, job)
	cancel()
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	if status == "" {
		status = models.JobStatusFailed
	}

	log.Debug().Str("status", status).Dur("lateness", r.now().Sub(job.RunAt)).Msg("job fired")
	r.mark(ctx, job.ID, status, errMsg)
}

func (r *ScheduleRunner) invoke(ctx context.Context, h JobHandler, job models.ScheduledJob) (status string, err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Named("runner").Error().Str("job_id", job.ID).Interface("panic", p).Msg("job handler panicked")
			status = models.JobStatusFailed
			err = errors.Errorf("handler panicked: %v", p)
		}
	}()
	return h(ctx, job.Payload)
}

func (r *ScheduleRunner) mark(ctx context.Context, id, status, errMsg string) {
	ctx, cancel := context.WithTimeout(ctx, markTimeout)
	defer cancel()
	if err := r.source.MarkJobResult(ctx, id, status, errMsg); err != nil {
		logger.Named("runner").Warn().Err(err).Str("job_id", id).Msg("failed to record job result")
	}
}
