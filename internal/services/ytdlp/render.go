package ytdlp

import (
	"fmt"
	"sort"
	"strings"

	"reel/internal/pipeline"
)

// renderArgs maps a declarative pipeline spec onto yt-dlp arguments. Filter
// and metadata directives from every step collapse into a single
// postprocessor-args value so later steps never clobber earlier ones.
func (c *CLI) renderArgs(spec pipeline.Spec) []string {
	args := []string{
		"-f", spec.Format,
		"-o", spec.OutputTemplate,
		"--no-warnings",
		"--newline",
		"--progress-template", progressTemplate,
	}
	if spec.Playlist {
		args = append(args, "--yes-playlist")
	} else {
		args = append(args, "--no-playlist")
	}
	if spec.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", spec.CookiesFromBrowser)
	}
	if spec.MergeContainer != "" {
		args = append(args, "--merge-output-format", spec.MergeContainer)
	}
	if c.ffmpeg != "" {
		args = append(args, "--ffmpeg-location", c.ffmpeg)
	}

	var ffmpegArgs []string
	for _, step := range spec.Steps {
		switch step.Kind {
		case pipeline.StepExtractAudio:
			args = append(args, "-x", "--audio-format", step.Codec)
			if step.Quality != "" {
				args = append(args, "--audio-quality", step.Quality)
			}
			ffmpegArgs = append(ffmpegArgs, step.Directives...)
		case pipeline.StepRemux:
			args = append(args, "--remux-video", step.Codec)
		case pipeline.StepEmbedMetadata:
			args = append(args, "--embed-metadata")
			if step.Chapters {
				args = append(args, "--embed-chapters")
			}
			ffmpegArgs = append(ffmpegArgs, metadataAssignments(step.Tags)...)
		case pipeline.StepEmbedThumbnail:
			args = append(args, "--embed-thumbnail")
		case pipeline.StepSubtitles:
			args = append(args, "--embed-subs")
			if len(step.Languages) > 0 {
				args = append(args, "--sub-langs", strings.Join(step.Languages, ","))
			}
		}
	}
	if len(ffmpegArgs) > 0 {
		args = append(args, "--postprocessor-args", "ffmpeg:"+strings.Join(ffmpegArgs, " "))
	}
	return args
}

func metadataAssignments(tags map[string]string) []string {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, fmt.Sprintf("-metadata %s=%s", key, quoteValue(tags[key])))
	}
	return out
}

// quoteValue protects tag values for the shell-style splitting yt-dlp applies
// to postprocessor argument strings.
func quoteValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\"'") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}
