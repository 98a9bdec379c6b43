package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reel/internal/config"
	"reel/internal/history"
	"reel/internal/job"
	"reel/internal/media"
	"reel/internal/presets"
	"reel/internal/progress"
	"reel/internal/scheduler"
)

const (
	defaultAudioContainer = "mp3"
	defaultVideoContainer = "mp4"
)

// jobFlags holds the job-shaping flags shared between get and batch.
type jobFlags struct {
	output    string
	mediaType string
	video     bool
	container string

	audioCodec string
	videoCodec string
	quality    string

	bitrateKbps  int
	sampleRateHz int

	template string
	filename string
	preset   string

	metaTitle       string
	metaArtist      string
	metaAlbum       string
	metaGenre       string
	metaDate        string
	metaDescription string

	normalize      bool
	embedMetadata  bool
	embedThumbnail bool
	embedSubtitles bool
	playlist       bool
	browserCookies bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "Destination directory (default from config)")
	flags.StringVar(&f.mediaType, "media-type", "", "Media type: audio or video")
	flags.BoolVar(&f.video, "video", false, "Shorthand for --media-type video")
	flags.StringVarP(&f.container, "format", "f", "", "Target container (see reel formats)")
	flags.StringVar(&f.audioCodec, "audio-codec", "", "Preferred audio codec family for video jobs")
	flags.StringVar(&f.videoCodec, "video-codec", "", "Preferred video codec family")
	flags.StringVarP(&f.quality, "quality", "q", "", "Resolution ceiling for video jobs (see reel formats)")
	flags.IntVarP(&f.bitrateKbps, "bitrate", "b", 0, "Audio bitrate in kbps (0 keeps the codec default)")
	flags.IntVar(&f.sampleRateHz, "sample-rate", 0, "Audio resample target in Hz (0 keeps the source rate)")
	flags.StringVarP(&f.template, "template", "t", "", "Named output template (see reel formats)")
	flags.StringVarP(&f.preset, "preset", "p", "", "Apply a named preset before other flags")
	flags.StringVar(&f.metaTitle, "meta-title", "", "Override the title tag")
	flags.StringVar(&f.metaArtist, "meta-artist", "", "Override the artist tag")
	flags.StringVar(&f.metaAlbum, "meta-album", "", "Override the album tag")
	flags.StringVar(&f.metaGenre, "meta-genre", "", "Override the genre tag")
	flags.StringVar(&f.metaDate, "meta-date", "", "Override the date tag (YYYY or YYYY-MM-DD)")
	flags.StringVar(&f.metaDescription, "meta-description", "", "Override the description tag")
	flags.BoolVarP(&f.normalize, "normalize", "n", false, "Normalize audio loudness")
	flags.BoolVar(&f.embedMetadata, "embed-metadata", false, "Embed tags into the output file")
	flags.BoolVar(&f.embedThumbnail, "embed-thumbnail", false, "Embed the source thumbnail as cover art")
	flags.BoolVar(&f.embedSubtitles, "embed-subs", false, "Embed subtitle tracks (video jobs)")
	flags.BoolVar(&f.playlist, "playlist", false, "Expand playlists instead of taking the first entry")
	flags.BoolVar(&f.browserCookies, "cookies", false, "Send browser cookies to the extractor")
}

func newGetCommand(ctx *commandContext) *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Download one URL",
		Long: `Download one URL through the job pipeline: resolve metadata, extract into
a sandbox under the destination, then move the finished files into place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, ctx, f, args[0])
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.filename, "filename", "", "Base name for the output file (overrides the template)")
	return cmd
}

func runGet(cmd *cobra.Command, ctx *commandContext, f jobFlags, url string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	draft, warnings, err := buildJobDraft(cfg, presets.NewStore(cfg), cmd, f, url)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
	}

	jobCfg, err := job.New(draft)
	if err != nil {
		return err
	}

	if err := gatePreflight(cmd, cfg, jobCfg.OutputDir); err != nil {
		return err
	}

	logger, err := ctx.runLogger()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sched := scheduler.New(cfg, logger, scheduler.WithHistory(store))
	if _, err := sched.Submit(jobCfg); err != nil {
		return err
	}
	go func() {
		sched.Wait()
		sched.Close()
	}()

	stop := watchInterrupt(sched, cmd.ErrOrStderr())
	defer stop()

	renderer := newProgressRenderer(cmd.OutOrStdout())
	var final progress.Event
	for ev := range sched.Events() {
		renderer.Observe(ev)
		if ev.Terminal {
			final = ev
		}
	}

	switch final.Status {
	case job.StatusCompleted:
		return nil
	case job.StatusCancelled:
		return context.Canceled
	default:
		reason := final.Reason
		if reason == "" {
			reason = "unknown failure"
		}
		return fmt.Errorf("download failed: %s", reason)
	}
}

// buildJobDraft folds config defaults, the optional preset, and explicit flags
// into a draft config, in that precedence order. The returned warnings are
// advisory; the draft still validates through job.New.
func buildJobDraft(cfg *config.Config, store *presets.Store, cmd *cobra.Command, f jobFlags, url string) (job.Config, []string, error) {
	draft := job.Config{
		URL:            url,
		OutputDir:      cfg.Paths.OutputDir,
		MediaType:      job.MediaAudio,
		OutputTemplate: cfg.Downloads.OutputTemplate,
		Playlist:       cfg.Downloads.Playlist,
	}

	if name := strings.TrimSpace(f.preset); name != "" {
		preset, ok, err := store.Get(name)
		if err != nil {
			return job.Config{}, nil, err
		}
		if !ok {
			return job.Config{}, nil, fmt.Errorf("preset %q not found", name)
		}
		preset.Apply(&draft)
	}

	flags := cmd.Flags()
	if flags.Changed("media-type") {
		mediaType, ok := job.ParseMediaType(f.mediaType)
		if !ok {
			return job.Config{}, nil, fmt.Errorf("unknown media type %q", f.mediaType)
		}
		draft.MediaType = mediaType
	}
	if f.video {
		draft.MediaType = job.MediaVideo
	}
	if flags.Changed("format") {
		draft.Container = f.container
	}
	if draft.Container == "" && !flags.Changed("format") {
		if draft.MediaType == job.MediaVideo {
			draft.Container = defaultVideoContainer
		} else {
			draft.Container = defaultAudioContainer
		}
	}
	if flags.Changed("audio-codec") {
		draft.AudioCodec = f.audioCodec
	}
	if flags.Changed("video-codec") {
		draft.VideoCodec = f.videoCodec
	}
	if flags.Changed("quality") {
		draft.QualityPreset = f.quality
	}
	if flags.Changed("bitrate") {
		draft.BitrateKbps = f.bitrateKbps
	}
	if flags.Changed("sample-rate") {
		draft.SampleRateHz = f.sampleRateHz
	}
	if flags.Changed("template") {
		draft.OutputTemplate = f.template
	}
	if flags.Changed("playlist") {
		draft.Playlist = f.playlist
	}
	if flags.Changed("normalize") {
		draft.NormalizeAudio = f.normalize
	}
	if flags.Changed("embed-metadata") {
		draft.EmbedMetadata = f.embedMetadata
	}
	if flags.Changed("embed-thumbnail") {
		draft.EmbedThumbnail = f.embedThumbnail
	}
	if flags.Changed("embed-subs") {
		draft.EmbedSubtitles = f.embedSubtitles
	}
	if flags.Changed("cookies") {
		draft.UseBrowserCookies = f.browserCookies
	}

	if out := strings.TrimSpace(f.output); out != "" {
		expanded, err := config.ExpandPath(out)
		if err != nil {
			return job.Config{}, nil, err
		}
		draft.OutputDir = expanded
	}

	draft.CustomFilename = f.filename
	draft.Metadata = job.Metadata{
		Title:       f.metaTitle,
		Artist:      f.metaArtist,
		Album:       f.metaAlbum,
		Genre:       f.metaGenre,
		Date:        f.metaDate,
		Description: f.metaDescription,
	}

	return draft, draftWarnings(draft), nil
}

// draftWarnings flags advisory issues that never fail the job.
func draftWarnings(draft job.Config) []string {
	var warnings []string
	if draft.MediaType == job.MediaAudio && draft.BitrateKbps > 0 {
		container := media.NormalizeContainer(draft.Container)
		switch {
		case media.IsLossless(container):
			warnings = append(warnings, fmt.Sprintf(
				"bitrate %d kbps has no effect on lossless container %s", draft.BitrateKbps, container))
		case !media.OnBitrateMenu(container, draft.BitrateKbps):
			if menu := media.LossyBitrates(container); len(menu) > 0 {
				warnings = append(warnings, fmt.Sprintf(
					"bitrate %d kbps is off the recommended %s menu (%s kbps)",
					draft.BitrateKbps, container, joinInts(menu, ", ")))
			}
		}
	}
	return warnings
}

// gatePreflight checks the job's actual destination, which may differ from the
// configured default when --output is set. The destination is created first
// since it may legitimately not exist yet.
func gatePreflight(cmd *cobra.Command, cfg *config.Config, outputDir string) error {
	_ = os.MkdirAll(outputDir, 0o755)
	checkCfg := *cfg
	checkCfg.Paths.OutputDir = outputDir
	return runPreflight(cmd, &checkCfg)
}
