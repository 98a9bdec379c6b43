package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"reel/internal/job"
	"reel/internal/media"
)

// DefaultCookiesBrowser is the browser consulted when a job asks for browser
// cookies and no override is configured.
const DefaultCookiesBrowser = "firefox"

// Builder derives pipeline specs from job configs. The zero value uses the
// default loudness targets, subtitle languages, and cookie browser.
type Builder struct {
	// LoudnessIntegrated is the loudnorm integrated target in LUFS; zero
	// selects the default.
	LoudnessIntegrated float64
	// LoudnessTruePeak is the loudnorm true-peak ceiling in dBTP; zero
	// selects the default.
	LoudnessTruePeak float64
	// LoudnessRange is the loudnorm loudness-range target in LU; zero selects
	// the default.
	LoudnessRange float64
	// SubtitleLanguages is the fixed subtitle preference list; empty selects
	// English.
	SubtitleLanguages []string
	// CookiesBrowser names the browser consulted for UseBrowserCookies jobs.
	CookiesBrowser string
}

// Build maps one job config to its pipeline spec, targeting workDir as the
// output root. It is deterministic and performs no I/O. Options with no
// effect for the selected container are dropped silently.
func (b Builder) Build(cfg job.Config, workDir string) Spec {
	spec := Spec{
		Container: cfg.Container,
		Playlist:  cfg.Playlist,
	}

	if cfg.MediaType == job.MediaVideo {
		b.buildVideo(cfg, &spec)
	} else {
		b.buildAudio(cfg, &spec)
	}

	if cfg.EmbedMetadata {
		spec.Steps = append(spec.Steps, Step{
			Kind:     StepEmbedMetadata,
			Chapters: true,
			Tags:     overrideTags(cfg.Metadata),
		})
	}
	if cfg.EmbedThumbnail {
		spec.Steps = append(spec.Steps, Step{Kind: StepEmbedThumbnail})
	}
	if cfg.EmbedSubtitles {
		spec.Steps = append(spec.Steps, Step{Kind: StepSubtitles, Languages: b.subtitleLanguages()})
	}

	spec.OutputTemplate = filepath.Join(workDir, outputTemplate(cfg))

	if cfg.UseBrowserCookies {
		browser := strings.TrimSpace(b.CookiesBrowser)
		if browser == "" {
			browser = DefaultCookiesBrowser
		}
		spec.CookiesFromBrowser = browser
	}

	return spec
}

func (b Builder) buildAudio(cfg job.Config, spec *Spec) {
	spec.Format = "bestaudio/best"

	step := Step{Kind: StepExtractAudio, Codec: cfg.Container}
	if cfg.BitrateKbps > 0 && !media.IsLossless(cfg.Container) {
		step.Quality = strconv.Itoa(cfg.BitrateKbps)
	}
	if cfg.SampleRateHz > 0 {
		step.Directives = append(step.Directives, fmt.Sprintf("-ar %d", cfg.SampleRateHz))
	}
	if cfg.NormalizeAudio {
		step.Directives = append(step.Directives, b.loudnormDirective())
	}
	spec.Steps = append(spec.Steps, step)
}

func (b Builder) buildVideo(cfg job.Config, spec *Spec) {
	height, _ := media.QualityHeight(cfg.QualityPreset)

	video := "bestvideo"
	if height > 0 {
		video += fmt.Sprintf("[height<=%d]", height)
	}
	if prefix, ok := media.VideoCodecPrefix(cfg.VideoCodec); ok && prefix != "" {
		video += fmt.Sprintf("[vcodec^=%s]", prefix)
	}

	audio := "bestaudio"
	if prefix, ok := media.AudioCodecPrefix(cfg.AudioCodec); ok && prefix != "" {
		audio += fmt.Sprintf("[acodec^=%s]", prefix)
	}

	tiers := []string{video + "+" + audio}
	if height > 0 {
		tiers = append(tiers, fmt.Sprintf("best[height<=%d]", height))
	}
	tiers = append(tiers, "best")
	spec.Format = strings.Join(tiers, "/")

	if media.Muxable(cfg.Container, cfg.VideoCodec, cfg.AudioCodec) {
		spec.MergeContainer = cfg.Container
	} else {
		spec.Steps = append(spec.Steps, Step{Kind: StepRemux, Codec: cfg.Container})
	}
}

func (b Builder) loudnormDirective() string {
	integrated := b.LoudnessIntegrated
	if integrated == 0 {
		integrated = media.LoudnessIntegratedDefault
	}
	truePeak := b.LoudnessTruePeak
	if truePeak == 0 {
		truePeak = media.LoudnessTruePeakDefault
	}
	loudnessRange := b.LoudnessRange
	if loudnessRange == 0 {
		loudnessRange = media.LoudnessRangeDefault
	}
	return fmt.Sprintf("-af loudnorm=I=%s:TP=%s:LRA=%s",
		formatTarget(integrated), formatTarget(truePeak), formatTarget(loudnessRange))
}

func (b Builder) subtitleLanguages() []string {
	if len(b.SubtitleLanguages) == 0 {
		return []string{"en"}
	}
	out := make([]string, len(b.SubtitleLanguages))
	copy(out, b.SubtitleLanguages)
	return out
}

func outputTemplate(cfg job.Config) string {
	if cfg.CustomFilename != "" {
		return cfg.CustomFilename + ".%(ext)s"
	}
	tmpl, ok := media.OutputTemplate(cfg.OutputTemplate)
	if !ok {
		tmpl, _ = media.OutputTemplate(media.DefaultTemplate)
	}
	return tmpl
}

func overrideTags(m job.Metadata) map[string]string {
	tags := make(map[string]string)
	put := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			tags[key] = value
		}
	}
	put("title", m.Title)
	put("artist", m.Artist)
	put("album", m.Album)
	put("genre", m.Genre)
	put("date", NormalizeDate(m.Date))
	put("description", m.Description)
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func formatTarget(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
