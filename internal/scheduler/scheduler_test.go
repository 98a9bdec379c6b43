package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"reel/internal/config"
	"reel/internal/job"
	"reel/internal/logging"
	"reel/internal/progress"
	"reel/internal/scheduler"
	"reel/internal/testsupport"
)

// stubRunner completes jobs on demand so tests control slot occupancy.
type stubRunner struct {
	mu      sync.Mutex
	started []string
	release chan struct{}
	status  job.Status
}

func (r *stubRunner) Run(ctx context.Context, cfg job.Config, flag *job.CancelFlag, bridge *progress.Bridge) job.Outcome {
	r.mu.Lock()
	r.started = append(r.started, cfg.ID)
	r.mu.Unlock()

	bridge.Publish(job.StatusDownloading)
	if r.release != nil {
		select {
		case <-r.release:
		case <-flag.Done():
			return job.Outcome{JobID: cfg.ID, Status: job.StatusCancelled, Reason: "cancelled", FinishedAt: time.Now().UTC()}
		}
	}
	if flag.Requested() {
		return job.Outcome{JobID: cfg.ID, Status: job.StatusCancelled, Reason: "cancelled", FinishedAt: time.Now().UTC()}
	}

	status := r.status
	if status == "" {
		status = job.StatusCompleted
	}
	return job.Outcome{
		JobID:      cfg.ID,
		URL:        cfg.URL,
		Title:      "Stub Title",
		MediaType:  cfg.MediaType,
		Container:  cfg.Container,
		Status:     status,
		FinishedAt: time.Now().UTC(),
	}
}

func (r *stubRunner) startedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.started))
	copy(out, r.started)
	return out
}

func newJob(t *testing.T, cfg *config.Config) job.Config {
	t.Helper()
	jc, err := job.New(job.Config{
		URL:       "https://example.com/watch?v=abc",
		OutputDir: cfg.Paths.OutputDir,
		MediaType: job.MediaAudio,
		Container: "mp3",
	})
	if err != nil {
		t.Fatalf("job.New: %v", err)
	}
	return jc
}

func collectEvents(t *testing.T, sched *scheduler.Scheduler) []progress.Event {
	t.Helper()
	var events []progress.Event
	for ev := range sched.Events() {
		events = append(events, ev)
	}
	return events
}

func TestSubmitRunsJobToTerminal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := &stubRunner{}
	sched := scheduler.New(cfg, logging.NewNop(),
		scheduler.WithRunner(runner),
		scheduler.WithHistory(store),
	)

	id, err := sched.Submit(newJob(t, cfg))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	sched.Wait()
	sched.Close()

	events := collectEvents(t, sched)
	if len(events) < 2 {
		t.Fatalf("expected queued and terminal events, got %v", events)
	}
	if events[0].Status != job.StatusQueued {
		t.Fatalf("expected first event Queued, got %s", events[0].Status)
	}
	last := events[len(events)-1]
	if !last.Terminal || last.Status != job.StatusCompleted || last.JobID != id {
		t.Fatalf("unexpected terminal event %+v", last)
	}

	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].JobID != id || entries[0].Status != job.StatusCompleted {
		t.Fatalf("unexpected history entries %+v", entries)
	}
}

func TestBoundHoldsSecondJobQueued(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxConcurrent(1))
	release := make(chan struct{})
	runner := &stubRunner{release: release}
	sched := scheduler.New(cfg, logging.NewNop(), scheduler.WithRunner(runner))

	first, err := sched.Submit(newJob(t, cfg))
	if err != nil {
		t.Fatalf("Submit first: %v", err)
	}
	if _, err := sched.Submit(newJob(t, cfg)); err != nil {
		t.Fatalf("Submit second: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(runner.startedIDs()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first job never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(50 * time.Millisecond)
	if started := runner.startedIDs(); len(started) != 1 || started[0] != first {
		t.Fatalf("expected only the first job running, got %v", started)
	}

	close(release)
	sched.Wait()
	sched.Close()

	if started := runner.startedIDs(); len(started) != 2 {
		t.Fatalf("expected both jobs to run, got %v", started)
	}
	drainEvents(sched)
}

func TestCancelWhileQueuedSkipsExecutor(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxConcurrent(1))
	store := testsupport.MustOpenStore(t, cfg)
	release := make(chan struct{})
	runner := &stubRunner{release: release}
	sched := scheduler.New(cfg, logging.NewNop(),
		scheduler.WithRunner(runner),
		scheduler.WithHistory(store),
	)

	if _, err := sched.Submit(newJob(t, cfg)); err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	queued, err := sched.Submit(newJob(t, cfg))
	if err != nil {
		t.Fatalf("Submit queued: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(runner.startedIDs()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("blocker never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !sched.Cancel(queued) {
		t.Fatal("expected Cancel to find the queued job")
	}
	close(release)
	sched.Wait()
	sched.Close()

	for _, id := range runner.startedIDs() {
		if id == queued {
			t.Fatal("cancelled-while-queued job must never start the executor")
		}
	}

	events := collectEvents(t, sched)
	var sawQueuedTerminal bool
	for _, ev := range events {
		if ev.JobID == queued && ev.Terminal {
			sawQueuedTerminal = true
			if ev.Status != job.StatusCancelled {
				t.Fatalf("expected cancelled terminal, got %s", ev.Status)
			}
		}
	}
	if !sawQueuedTerminal {
		t.Fatal("queued job must still deliver a terminal event")
	}

	entries, err := store.List(context.Background(), 0, job.StatusCancelled)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].JobID != queued {
		t.Fatalf("expected cancelled history entry for %s, got %+v", queued, entries)
	}
}

func TestCancelRunningJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	release := make(chan struct{})
	runner := &stubRunner{release: release}
	sched := scheduler.New(cfg, logging.NewNop(), scheduler.WithRunner(runner))

	id, err := sched.Submit(newJob(t, cfg))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(runner.startedIDs()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !sched.Cancel(id) {
		t.Fatal("expected Cancel to reach the running job")
	}
	sched.Wait()
	sched.Close()

	events := collectEvents(t, sched)
	last := events[len(events)-1]
	if last.Status != job.StatusCancelled || !last.Terminal {
		t.Fatalf("expected cancelled terminal event, got %+v", last)
	}
}

func TestCancelUnknownJobIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sched := scheduler.New(cfg, logging.NewNop(), scheduler.WithRunner(&stubRunner{}))
	if sched.Cancel("no-such-job") {
		t.Fatal("expected Cancel of unknown id to report false")
	}
	sched.Close()
	drainEvents(sched)
}

func TestCancelAfterTerminalIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &stubRunner{}
	sched := scheduler.New(cfg, logging.NewNop(), scheduler.WithRunner(runner))

	id, err := sched.Submit(newJob(t, cfg))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	sched.Wait()
	if sched.Cancel(id) {
		t.Fatal("expected Cancel after terminal to report false")
	}
	if sched.Active() != 0 {
		t.Fatalf("expected empty registry, got %d", sched.Active())
	}
	sched.Close()
	drainEvents(sched)
}

func TestSubmitAfterCloseFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sched := scheduler.New(cfg, logging.NewNop(), scheduler.WithRunner(&stubRunner{}))
	sched.Close()
	drainEvents(sched)

	if _, err := sched.Submit(newJob(t, cfg)); err != scheduler.ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSubmitDuplicateIDFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	release := make(chan struct{})
	runner := &stubRunner{release: release}
	sched := scheduler.New(cfg, logging.NewNop(), scheduler.WithRunner(runner))

	jc := newJob(t, cfg)
	if _, err := sched.Submit(jc); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := sched.Submit(jc); err == nil {
		t.Fatal("expected duplicate submission to fail")
	}
	close(release)
	sched.Wait()
	sched.Close()
	drainEvents(sched)
}

func drainEvents(sched *scheduler.Scheduler) {
	for range sched.Events() {
	}
}
