package pipeline

// StepKind names a post-processing step.
type StepKind string

const (
	// StepExtractAudio pulls the audio stream and transcodes it to the target
	// codec.
	StepExtractAudio StepKind = "extract_audio"
	// StepRemux rewraps merged streams into the target container.
	StepRemux StepKind = "remux"
	// StepEmbedMetadata writes general metadata and chapters, applying any tag
	// overrides.
	StepEmbedMetadata StepKind = "embed_metadata"
	// StepEmbedThumbnail fetches the source thumbnail during resolution and
	// embeds it after extraction.
	StepEmbedThumbnail StepKind = "embed_thumbnail"
	// StepSubtitles requests and embeds subtitle tracks for the preferred
	// languages.
	StepSubtitles StepKind = "subtitles"
)

// Step is one ordered post-processing action. Only the fields meaningful for
// its kind are set.
type Step struct {
	Kind StepKind

	// Codec is the extraction target for StepExtractAudio and the container
	// target for StepRemux.
	Codec string
	// Quality is the lossy bitrate hint in kbps; empty means codec default.
	Quality string
	// Directives are transcode filter arguments applied during the step, in
	// order.
	Directives []string
	// Tags maps tag names to override values for StepEmbedMetadata.
	Tags map[string]string
	// Chapters embeds chapter markers during StepEmbedMetadata.
	Chapters bool
	// Languages is the subtitle preference list for StepSubtitles.
	Languages []string
}

// Spec is the declarative pipeline derived from one job config. It is built
// fresh per run and never mutated afterwards.
type Spec struct {
	// Format is the stream-selection expression handed to the extractor,
	// including fallback tiers.
	Format string
	// Container is the requested target container.
	Container string
	// MergeContainer is the merge target for video jobs whose container the
	// selected streams mux into natively; empty otherwise.
	MergeContainer string
	// OutputTemplate is the extractor output template rooted in the sandbox.
	OutputTemplate string
	// Playlist allows the extractor to expand playlist URLs.
	Playlist bool
	// CookiesFromBrowser names the browser whose cookies the extractor should
	// load; empty disables cookie loading.
	CookiesFromBrowser string
	// Steps run in order after stream download.
	Steps []Step
}

// Step returns the first step of the given kind, if present.
func (s Spec) Step(kind StepKind) (Step, bool) {
	for _, step := range s.Steps {
		if step.Kind == kind {
			return step, true
		}
	}
	return Step{}, false
}
