package executor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"reel/internal/config"
	"reel/internal/executor"
	"reel/internal/job"
	"reel/internal/logging"
	"reel/internal/media"
	"reel/internal/pipeline"
	"reel/internal/progress"
	"reel/internal/services/ytdlp"
	"reel/internal/staging"
	"reel/internal/testsupport"
)

type fakeClient struct {
	mu           sync.Mutex
	resolveCalls int
	executeCalls int

	info       *media.Info
	resolveErr error
	executeErr error
	execute    func(ctx context.Context, spec pipeline.Spec, onProgress func(ytdlp.Event) bool) error
}

func (f *fakeClient) Resolve(ctx context.Context, url string, opts ytdlp.ResolveOptions) (*media.Info, error) {
	f.mu.Lock()
	f.resolveCalls++
	f.mu.Unlock()
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if f.info != nil {
		return f.info, nil
	}
	return &media.Info{Title: "Test Track"}, nil
}

func (f *fakeClient) Execute(ctx context.Context, url string, spec pipeline.Spec, onProgress func(ytdlp.Event) bool) error {
	f.mu.Lock()
	f.executeCalls++
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, spec, onProgress)
	}
	return f.executeErr
}

func (f *fakeClient) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolveCalls, f.executeCalls
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

func runJob(t *testing.T, cfg *config.Config, client ytdlp.Client, jc job.Config, flag *job.CancelFlag) (job.Outcome, *progress.Bridge) {
	t.Helper()
	bridge := progress.NewBridge(jc.ID, 64)
	exec := executor.New(cfg, client, logging.NewNop())
	outcome := exec.Run(context.Background(), jc, flag, bridge)
	return outcome, bridge
}

func drainPhases(bridge *progress.Bridge, outcome job.Outcome) []string {
	bridge.Terminal(outcome)
	var phases []string
	for ev := range bridge.Events() {
		phases = append(phases, ev.Phase)
	}
	return phases
}

func TestRunCompletesAndPlacesFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	client := &fakeClient{
		execute: func(ctx context.Context, spec pipeline.Spec, onProgress func(ytdlp.Event) bool) error {
			dir := filepath.Dir(spec.OutputTemplate)
			testsupport.WriteFile(t, filepath.Join(dir, "track.mp3"), 2048)
			testsupport.WriteFile(t, filepath.Join(dir, "track.mp3.part"), 16)
			onProgress(ytdlp.Event{Phase: "downloading", DownloadedBytes: 1024, TotalBytes: 2048, SpeedBps: 2 << 20})
			onProgress(ytdlp.Event{Phase: "finished"})
			return nil
		},
	}

	outcome, bridge := runJob(t, cfg, client, jc, job.NewCancelFlag())
	if outcome.Status != job.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", outcome.Status, outcome.Reason)
	}
	if outcome.Title != "Test Track" {
		t.Fatalf("unexpected title %q", outcome.Title)
	}

	placed := filepath.Join(cfg.Paths.OutputDir, "track.mp3")
	if _, err := os.Stat(placed); err != nil {
		t.Fatalf("expected placed file: %v", err)
	}
	if len(outcome.Files) != 1 || outcome.Files[0] != placed {
		t.Fatalf("unexpected outcome files: %v", outcome.Files)
	}
	if outcome.Bytes != 2048 {
		t.Fatalf("unexpected byte count %d", outcome.Bytes)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "track.mp3.part")); !os.IsNotExist(err) {
		t.Fatalf("partial artifact must not reach the destination")
	}
	if _, err := os.Stat(staging.JobDir(cfg.Paths.OutputDir, jc.ID)); !os.IsNotExist(err) {
		t.Fatalf("expected sandbox removed after finalize")
	}

	phases := drainPhases(bridge, outcome)
	if len(phases) == 0 || phases[len(phases)-1] != "Completed" {
		t.Fatalf("expected terminal phase last, got %v", phases)
	}
	var sawProcessing bool
	for _, phase := range phases {
		if phase == "Processing" {
			sawProcessing = true
		}
	}
	if !sawProcessing {
		t.Fatalf("expected a Processing phase after finished, got %v", phases)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	client := &fakeClient{}
	flag := job.NewCancelFlag()
	flag.Request()

	outcome, _ := runJob(t, cfg, client, jc, flag)
	if outcome.Status != job.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", outcome.Status)
	}
	resolves, executes := client.calls()
	if resolves != 0 || executes != 0 {
		t.Fatalf("cancelled job must not touch the extractor, got resolve=%d execute=%d", resolves, executes)
	}
	if _, err := os.Stat(staging.Root(cfg.Paths.OutputDir)); !os.IsNotExist(err) {
		t.Fatalf("cancelled-before-start job must not create a sandbox")
	}
}

func TestRunCancelledDuringDownload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	flag := job.NewCancelFlag()
	client := &fakeClient{
		execute: func(ctx context.Context, spec pipeline.Spec, onProgress func(ytdlp.Event) bool) error {
			if !onProgress(ytdlp.Event{Phase: "downloading", DownloadedBytes: 100, TotalBytes: 1000}) {
				t.Fatal("cancel requested before the first report")
			}
			flag.Request()
			if onProgress(ytdlp.Event{Phase: "downloading", DownloadedBytes: 200, TotalBytes: 1000}) {
				t.Fatal("expected the callback to request a stop")
			}
			return ytdlp.ErrAborted
		},
	}

	outcome, _ := runJob(t, cfg, client, jc, flag)
	if outcome.Status != job.StatusCancelled {
		t.Fatalf("expected cancelled, got %s (%s)", outcome.Status, outcome.Reason)
	}
	if _, err := os.Stat(staging.JobDir(cfg.Paths.OutputDir, jc.ID)); !os.IsNotExist(err) {
		t.Fatalf("expected sandbox removed after cancel")
	}
}

func TestRunResolutionFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	client := &fakeClient{resolveErr: errors.New("no such video")}

	outcome, _ := runJob(t, cfg, client, jc, job.NewCancelFlag())
	if outcome.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Reason, "resolve source metadata") {
		t.Fatalf("unexpected reason %q", outcome.Reason)
	}
	if _, executes := client.calls(); executes != 0 {
		t.Fatalf("resolution failure must skip the download")
	}
}

func TestRunResolutionTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	client := &fakeClient{resolveErr: context.DeadlineExceeded}

	outcome, _ := runJob(t, cfg, client, jc, job.NewCancelFlag())
	if outcome.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Reason, "timed out") {
		t.Fatalf("unexpected reason %q", outcome.Reason)
	}
}

func TestRunPipelineFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	client := &fakeClient{executeErr: errors.New("ffmpeg exited with status 1")}

	outcome, _ := runJob(t, cfg, client, jc, job.NewCancelFlag())
	if outcome.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Reason, "Extraction pipeline failed") {
		t.Fatalf("unexpected reason %q", outcome.Reason)
	}
	if _, err := os.Stat(staging.JobDir(cfg.Paths.OutputDir, jc.ID)); !os.IsNotExist(err) {
		t.Fatalf("expected sandbox removed after failure")
	}
}

func TestRunFailureDoesNotAffectLaterJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	failing := newJob(t, cfg)
	outcome, _ := runJob(t, cfg, &fakeClient{executeErr: errors.New("boom")}, failing, job.NewCancelFlag())
	if outcome.Status != job.StatusFailed {
		t.Fatalf("expected failed, got %s", outcome.Status)
	}

	healthy := newJob(t, cfg)
	client := &fakeClient{
		execute: func(ctx context.Context, spec pipeline.Spec, onProgress func(ytdlp.Event) bool) error {
			testsupport.WriteFile(t, filepath.Join(filepath.Dir(spec.OutputTemplate), "ok.mp3"), 64)
			return nil
		},
	}
	outcome, _ = runJob(t, cfg, client, healthy, job.NewCancelFlag())
	if outcome.Status != job.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", outcome.Status, outcome.Reason)
	}
}

func TestRunBuildsSpecInsideSandbox(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	jc := newJob(t, cfg)
	var gotTemplate string
	client := &fakeClient{
		execute: func(ctx context.Context, spec pipeline.Spec, onProgress func(ytdlp.Event) bool) error {
			gotTemplate = spec.OutputTemplate
			return nil
		},
	}

	outcome, _ := runJob(t, cfg, client, jc, job.NewCancelFlag())
	if outcome.Status != job.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", outcome.Status, outcome.Reason)
	}
	wantPrefix := staging.JobDir(cfg.Paths.OutputDir, jc.ID) + string(os.PathSeparator)
	if !strings.HasPrefix(gotTemplate, wantPrefix) {
		t.Fatalf("output template %q not rooted in sandbox %q", gotTemplate, wantPrefix)
	}
}
