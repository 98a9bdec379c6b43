package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"reel/internal/config"
	"reel/internal/executor"
	"reel/internal/history"
	"reel/internal/job"
	"reel/internal/logging"
	"reel/internal/notifications"
	"reel/internal/progress"
)

const defaultEventBuffer = 64

// ErrClosed reports a submission after Close.
var ErrClosed = errors.New("scheduler closed")

// Runner executes one job to its terminal state. The production runner is
// the sandboxed executor; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, cfg job.Config, flag *job.CancelFlag, bridge *progress.Bridge) job.Outcome
}

// Option configures optional Scheduler collaborators.
type Option func(*Scheduler)

// WithRunner overrides the job runner.
func WithRunner(r Runner) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithHistory records every terminal outcome to the store.
func WithHistory(store *history.Store) Option {
	return func(s *Scheduler) {
		s.store = store
	}
}

// WithNotifier overrides the notification service.
func WithNotifier(n notifications.Service) Option {
	return func(s *Scheduler) {
		if n != nil {
			s.notifier = n
		}
	}
}

// Scheduler admits jobs up to the configured concurrency bound and tracks
// every in-flight job by ID until its terminal event. Submission never blocks
// on a slot; queued jobs wait in their own goroutine. The merged event stream
// must be consumed: once its buffer fills, delivery blocks the forwarding
// goroutines, never the executors.
type Scheduler struct {
	cfg      *config.Config
	runner   Runner
	store    *history.Store
	notifier notifications.Service
	logger   *slog.Logger

	sem    chan struct{}
	events chan progress.Event

	mu     sync.Mutex
	jobs   map[string]*handle
	closed bool

	jobWG     sync.WaitGroup
	fwdWG     sync.WaitGroup
	closeOnce sync.Once
}

type handle struct {
	cfg      job.Config
	flag     *job.CancelFlag
	bridge   *progress.Bridge
	queuedAt time.Time
	once     sync.Once
}

// New builds a scheduler bound to the runtime configuration. Without options
// it runs the sandboxed executor and notifies through the configured service;
// history recording is enabled by WithHistory.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	bound := cfg.Downloads.MaxConcurrent
	if bound <= 0 {
		bound = 1
	}

	s := &Scheduler{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
		sem:      make(chan struct{}, bound),
		events:   make(chan progress.Event, defaultEventBuffer),
		jobs:     make(map[string]*handle),
		notifier: notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = executor.New(cfg, nil, logger)
	}
	return s
}

// Submit registers the job and returns its ID. The job starts once a slot
// frees; the caller never blocks on the download itself.
func (s *Scheduler) Submit(cfg job.Config) (string, error) {
	if cfg.ID == "" {
		return "", errors.New("job config carries no id")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if _, exists := s.jobs[cfg.ID]; exists {
		s.mu.Unlock()
		return "", fmt.Errorf("job %s already submitted", cfg.ID)
	}
	h := &handle{
		cfg:      cfg,
		flag:     job.NewCancelFlag(),
		bridge:   progress.NewBridge(cfg.ID, 0),
		queuedAt: time.Now(),
	}
	s.jobs[cfg.ID] = h
	s.jobWG.Add(1)
	s.fwdWG.Add(1)
	s.mu.Unlock()

	h.bridge.Publish(job.StatusQueued)
	s.logger.Info("job queued",
		logging.String(logging.FieldEventType, "job_queued"),
		logging.String(logging.FieldJobID, cfg.ID),
		logging.String("url", cfg.URL),
	)

	go s.forward(h)
	go s.run(h)
	return cfg.ID, nil
}

// Cancel requests cooperative cancellation for the job. It reports false when
// the ID is unknown or the job already reached a terminal state.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	h, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	h.flag.Request()
	return true
}

// CancelAll requests cancellation for every in-flight job.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	handles := make([]*handle, 0, len(s.jobs))
	for _, h := range s.jobs {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.flag.Request()
	}
}

// Active returns the number of jobs not yet terminal.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Events exposes the merged per-job event stream. The channel closes after
// Close once every submitted job has delivered its terminal event.
func (s *Scheduler) Events() <-chan progress.Event {
	return s.events
}

// Wait blocks until every submitted job is terminal.
func (s *Scheduler) Wait() {
	s.jobWG.Wait()
}

// Close stops admission, waits for in-flight jobs, and closes the event
// stream. It does not cancel running jobs; use CancelAll first for a fast
// shutdown.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		s.jobWG.Wait()
		s.fwdWG.Wait()
		close(s.events)
	})
}

func (s *Scheduler) run(h *handle) {
	defer s.jobWG.Done()

	select {
	case s.sem <- struct{}{}:
	case <-h.flag.Done():
		s.terminate(h, s.queuedCancelOutcome(h))
		return
	}
	defer func() { <-s.sem }()

	outcome := s.runner.Run(context.Background(), h.cfg, h.flag, h.bridge)
	s.terminate(h, outcome)
}

func (s *Scheduler) forward(h *handle) {
	defer s.fwdWG.Done()
	for ev := range h.bridge.Events() {
		s.events <- ev
	}
}

// terminate delivers the terminal event and retires the registry entry.
// Guarded so a job is removed exactly once however its run ended.
func (s *Scheduler) terminate(h *handle, outcome job.Outcome) {
	h.once.Do(func() {
		h.bridge.Terminal(outcome)

		s.mu.Lock()
		delete(s.jobs, h.cfg.ID)
		s.mu.Unlock()

		s.record(outcome)
		s.notify(outcome)
	})
}

func (s *Scheduler) queuedCancelOutcome(h *handle) job.Outcome {
	return job.Outcome{
		JobID:      h.cfg.ID,
		URL:        h.cfg.URL,
		MediaType:  h.cfg.MediaType,
		Container:  h.cfg.Container,
		Status:     job.StatusCancelled,
		Reason:     "cancelled while queued",
		Elapsed:    time.Since(h.queuedAt),
		FinishedAt: time.Now().UTC(),
	}
}

func (s *Scheduler) record(outcome job.Outcome) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Record(ctx, outcome); err != nil {
		logging.WarnWithContext(s.logger, "failed to record job history", "history_record_failed",
			logging.String(logging.FieldJobID, outcome.JobID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "job missing from reel history"),
		)
	}
}

func (s *Scheduler) notify(outcome job.Outcome) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	switch outcome.Status {
	case job.StatusCompleted:
		err = s.notifier.NotifyDownloadCompleted(ctx, outcome.Title, len(outcome.Files), outcome.Bytes)
	case job.StatusFailed:
		err = s.notifier.NotifyDownloadFailed(ctx, outcome.Title, outcome.Reason)
	}
	if err != nil {
		s.logger.Debug("job notification failed", logging.Error(err))
	}
}
