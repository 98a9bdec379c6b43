package ytdlp

import (
	"context"
	"errors"
	"os/exec"

	"reel/internal/media"
	"reel/internal/pipeline"
)

var commandContext = exec.CommandContext

// ErrAborted reports that the progress callback asked the extractor to stop.
// This is the cooperative-cancel outcome, not a tool failure.
var ErrAborted = errors.New("aborted by caller")

// Event mirrors one raw extractor progress line before normalization.
type Event struct {
	Phase           string
	DownloadedBytes int64
	TotalBytes      int64
	SpeedBps        float64
}

// ResolveOptions control metadata resolution.
type ResolveOptions struct {
	Playlist           bool
	CookiesFromBrowser string
}

// Client defines the extractor surface the executor depends on. A false
// return from the Execute progress callback requests a cooperative stop; the
// client then terminates the tool and returns ErrAborted.
type Client interface {
	Resolve(ctx context.Context, url string, opts ResolveOptions) (*media.Info, error)
	Execute(ctx context.Context, url string, spec pipeline.Spec, onProgress func(Event) bool) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithFFmpeg points the extractor at a specific ffmpeg binary.
func WithFFmpeg(path string) Option {
	return func(c *CLI) {
		c.ffmpeg = path
	}
}

// CLI wraps the yt-dlp command-line extractor.
type CLI struct {
	binary string
	ffmpeg string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

var _ Client = (*CLI)(nil)
