package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"reel/internal/config"
	"reel/internal/job"
	"reel/internal/logging"
	"reel/internal/media"
	"reel/internal/pipeline"
	"reel/internal/progress"
	"reel/internal/services"
	"reel/internal/services/ytdlp"
	"reel/internal/staging"
)

// Executor runs one job at a time inside a per-job sandbox under the
// destination directory. It owns the lifecycle between Queued and the
// terminal state; the scheduler delivers the terminal event and records the
// outcome.
type Executor struct {
	cfg     *config.Config
	client  ytdlp.Client
	builder pipeline.Builder
	logger  *slog.Logger
}

// New builds an executor bound to the runtime configuration. A nil client
// selects the yt-dlp CLI with the configured binaries.
func New(cfg *config.Config, client ytdlp.Client, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if client == nil {
		client = ytdlp.NewCLI(
			ytdlp.WithBinary(cfg.YtDlpBinary()),
			ytdlp.WithFFmpeg(cfg.FFmpegBinary()),
		)
	}
	return &Executor{
		cfg:    cfg,
		client: client,
		builder: pipeline.Builder{
			LoudnessIntegrated: cfg.Audio.NormalizeIntegrated,
			LoudnessTruePeak:   cfg.Audio.NormalizeTruePeak,
			LoudnessRange:      cfg.Audio.NormalizeRange,
			SubtitleLanguages:  cfg.Downloads.SubtitleLanguages,
			CookiesBrowser:     cfg.Tools.CookiesFromBrowser,
		},
		logger: logging.NewComponentLogger(logger, "executor"),
	}
}

// Run executes one job to its terminal state. Cancellation is cooperative:
// the flag is observed at the checkpoints between steps and inside every
// progress callback, never by preemption. Exactly one outcome is returned;
// the bridge receives the non-terminal lifecycle events along the way.
func (e *Executor) Run(ctx context.Context, cfg job.Config, flag *job.CancelFlag, bridge *progress.Bridge) job.Outcome {
	ctx = services.WithJobID(ctx, cfg.ID)
	r := &run{
		exec:    e,
		job:     cfg,
		flag:    flag,
		bridge:  bridge,
		logger:  logging.WithContext(ctx, e.logger),
		started: time.Now(),
	}
	return r.do(ctx)
}

// run carries the mutable state of one job execution.
type run struct {
	exec    *Executor
	job     job.Config
	flag    *job.CancelFlag
	bridge  *progress.Bridge
	logger  *slog.Logger
	started time.Time

	workDir string
	lock    *flock.Flock
	title   string
}

func (r *run) do(ctx context.Context) job.Outcome {
	if r.flag.Requested() {
		return r.abort("start", "Cancelled before the job started")
	}

	r.logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("url", r.job.URL),
		logging.String("media_type", string(r.job.MediaType)),
		logging.String("container", r.job.Container),
	)
	r.publish(job.StatusInitializing)

	workDir, err := staging.Prepare(r.job.OutputDir, r.job.ID)
	if err != nil {
		return r.finish(job.StatusFailed, services.Wrap(services.ErrConfiguration, "executor", "prepare sandbox", "Failed to create the work directory", err), nil, 0)
	}
	r.workDir = workDir

	lock, err := staging.AcquireShared(ctx, r.job.OutputDir)
	if err != nil {
		r.cleanup()
		return r.finish(job.StatusFailed, services.Wrap(services.ErrConfiguration, "executor", "lock sandbox", "Failed to lock the sandbox namespace", err), nil, 0)
	}
	r.lock = lock
	defer r.release()

	if r.flag.Requested() {
		r.cleanup()
		return r.abort("resolve", "Cancelled before resolution")
	}

	r.publish(job.StatusResolving)
	info, err := r.resolve(ctx)
	if err != nil {
		r.cleanup()
		return r.finish(services.TerminalStatus(err), err, nil, 0)
	}
	r.title = info.DisplayTitle()
	r.logger.Info("source resolved",
		logging.String(logging.FieldEventType, "job_resolved"),
		logging.String("title", r.title),
		logging.Duration("duration", info.Duration),
		logging.Bool("playlist", info.Playlist),
	)

	if r.flag.Requested() {
		r.cleanup()
		return r.abort("download", "Cancelled before download")
	}

	spec := r.exec.builder.Build(r.job, r.workDir)
	r.publish(job.StatusDownloading)
	if err := r.download(ctx, spec); err != nil {
		r.cleanup()
		return r.finish(services.TerminalStatus(err), err, nil, 0)
	}

	if r.flag.Requested() {
		r.cleanup()
		return r.abort("finalize", "Cancelled before finalization")
	}

	r.publish(job.StatusFinalizing)
	files, bytes, err := Finalize(r.logger, r.workDir, r.job.OutputDir)
	r.cleanup()
	if err != nil {
		return r.finish(job.StatusFailed, err, files, bytes)
	}
	return r.finish(job.StatusCompleted, nil, files, bytes)
}

func (r *run) resolve(ctx context.Context) (*media.Info, error) {
	timeout := time.Duration(r.exec.cfg.Downloads.ResolveTimeout) * time.Second
	resolveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	info, err := r.exec.client.Resolve(resolveCtx, r.job.URL, ytdlp.ResolveOptions{
		Playlist:           r.job.Playlist,
		CookiesFromBrowser: r.cookiesBrowser(),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrResolution, "executor", "resolve", fmt.Sprintf("Source resolution timed out after %s", timeout), err)
		}
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrCancelled, "executor", "resolve", "Run context cancelled", ctx.Err())
		}
		return nil, services.Wrap(services.ErrResolution, "executor", "resolve", "Failed to resolve source metadata", err)
	}
	return info, nil
}

func (r *run) download(ctx context.Context, spec pipeline.Spec) error {
	sampler := logging.NewProgressSampler(0)
	err := r.exec.client.Execute(ctx, r.job.URL, spec, func(raw ytdlp.Event) bool {
		r.ingest(raw)
		r.logProgress(sampler, raw)
		return !r.flag.Requested()
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ytdlp.ErrAborted) {
		return services.Wrap(services.ErrCancelled, "executor", "download", "Cancelled during download", nil)
	}
	if ctx.Err() != nil {
		return services.Wrap(services.ErrCancelled, "executor", "download", "Run context cancelled", ctx.Err())
	}
	return services.Wrap(services.ErrPipeline, "executor", "download", "Extraction pipeline failed", err)
}

// abort reports a checkpoint cancellation. The reason names the step that
// never ran.
func (r *run) abort(operation, message string) job.Outcome {
	err := services.Wrap(services.ErrCancelled, "executor", operation, message, nil)
	return r.finish(job.StatusCancelled, err, nil, 0)
}

func (r *run) finish(status job.Status, err error, files []string, bytes int64) job.Outcome {
	outcome := job.Outcome{
		JobID:      r.job.ID,
		URL:        r.job.URL,
		Title:      r.title,
		MediaType:  r.job.MediaType,
		Container:  r.job.Container,
		Status:     status,
		Reason:     services.Reason(err),
		Files:      files,
		Bytes:      bytes,
		Elapsed:    time.Since(r.started),
		FinishedAt: time.Now().UTC(),
	}

	switch status {
	case job.StatusCompleted:
		r.logger.Info("job completed",
			logging.String(logging.FieldEventType, "job_complete"),
			logging.String("title", r.title),
			logging.Int("files", len(files)),
			logging.Int64("bytes", bytes),
			logging.Duration("elapsed", outcome.Elapsed),
		)
	case job.StatusCancelled:
		r.logger.Info("job cancelled",
			logging.String(logging.FieldEventType, "job_cancelled"),
			logging.Duration("elapsed", outcome.Elapsed),
		)
	default:
		logging.ErrorWithContext(r.logger, "job failed", "job_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the reason and retry the job"),
			logging.String(logging.FieldImpact, "no files were placed"),
		)
	}
	return outcome
}

func (r *run) publish(status job.Status) {
	if r.bridge != nil {
		r.bridge.Publish(status)
	}
}

func (r *run) ingest(raw ytdlp.Event) {
	if r.bridge != nil {
		r.bridge.Ingest(raw)
	}
}

func (r *run) logProgress(sampler *logging.ProgressSampler, raw ytdlp.Event) {
	if raw.Phase != "downloading" || raw.TotalBytes <= 0 {
		return
	}
	percent := float64(raw.DownloadedBytes) / float64(raw.TotalBytes) * 100
	if !sampler.ShouldLog(percent, raw.Phase) {
		return
	}
	r.logger.Debug("download progress",
		logging.Float64("percent", percent),
		logging.Int64("downloaded_bytes", raw.DownloadedBytes),
		logging.Int64("total_bytes", raw.TotalBytes),
	)
}

// cleanup removes the job sandbox. Failures are logged and never escalate;
// the orphan cleaner picks up whatever remains.
func (r *run) cleanup() {
	if r.workDir == "" {
		return
	}
	if err := os.RemoveAll(r.workDir); err != nil {
		logging.WarnWithContext(r.logger, "failed to remove sandbox", "sandbox_remove_failed",
			logging.String("path", r.workDir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run reel clean once downloads are idle"),
			logging.String(logging.FieldImpact, "stale files remain under the sandbox namespace"),
		)
		return
	}
	r.workDir = ""
}

func (r *run) release() {
	if r.lock == nil {
		return
	}
	_ = r.lock.Unlock()
	r.lock = nil
}

func (r *run) cookiesBrowser() string {
	if !r.job.UseBrowserCookies {
		return ""
	}
	if browser := strings.TrimSpace(r.exec.cfg.Tools.CookiesFromBrowser); browser != "" {
		return browser
	}
	return pipeline.DefaultCookiesBrowser
}
