package job

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"reel/internal/media"
	"reel/internal/textutil"
)

// MediaType selects the download mode for a job.
type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// ParseMediaType normalizes a raw media type string.
func ParseMediaType(value string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(value))) {
	case MediaAudio:
		return MediaAudio, true
	case MediaVideo:
		return MediaVideo, true
	default:
		return "", false
	}
}

// Metadata carries per-field tag overrides. An empty field keeps the
// source-derived value.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Date        string
	Description string
}

// Empty reports whether no override is set.
func (m Metadata) Empty() bool {
	return m == Metadata{}
}

// Config describes one requested download. It is immutable once constructed
// by New; re-running requires a new Config with a new ID.
type Config struct {
	ID            string
	URL           string
	OutputDir     string
	MediaType     MediaType
	Container     string
	AudioCodec    string
	VideoCodec    string
	QualityPreset string
	SampleRateHz  int
	BitrateKbps   int
	Metadata      Metadata

	EmbedMetadata     bool
	EmbedThumbnail    bool
	EmbedSubtitles    bool
	NormalizeAudio    bool
	UseBrowserCookies bool

	CustomFilename string
	OutputTemplate string
	Playlist       bool
}

// New validates and normalizes a draft config and assigns its job ID. The
// draft must not carry an ID; identifiers are owned by this constructor so
// every job carries a fresh one.
func New(draft Config) (Config, error) {
	if draft.ID != "" {
		return Config{}, errors.New("job id is assigned at creation")
	}

	draft.URL = strings.TrimSpace(draft.URL)
	if err := validateURL(draft.URL); err != nil {
		return Config{}, err
	}

	draft.OutputDir = strings.TrimSpace(draft.OutputDir)
	if draft.OutputDir == "" {
		return Config{}, errors.New("output directory must be set")
	}

	if draft.MediaType == "" {
		draft.MediaType = MediaAudio
	}
	if _, ok := ParseMediaType(string(draft.MediaType)); !ok {
		return Config{}, fmt.Errorf("unknown media type %q", draft.MediaType)
	}

	draft.Container = media.NormalizeContainer(draft.Container)
	if draft.Container == "" {
		return Config{}, errors.New("container must be set")
	}

	if draft.SampleRateHz < 0 {
		return Config{}, fmt.Errorf("sample rate must not be negative, got %d", draft.SampleRateHz)
	}
	if draft.BitrateKbps < 0 {
		return Config{}, fmt.Errorf("bitrate must not be negative, got %d", draft.BitrateKbps)
	}

	switch draft.MediaType {
	case MediaAudio:
		if !media.IsAudioContainer(draft.Container) {
			return Config{}, fmt.Errorf("unknown audio container %q", draft.Container)
		}
	case MediaVideo:
		if !media.IsVideoContainer(draft.Container) {
			return Config{}, fmt.Errorf("unknown video container %q", draft.Container)
		}
		draft.VideoCodec = media.NormalizeCodec(draft.VideoCodec)
		if _, ok := media.VideoCodecPrefix(draft.VideoCodec); !ok {
			return Config{}, fmt.Errorf("unknown video codec %q", draft.VideoCodec)
		}
		draft.AudioCodec = media.NormalizeCodec(draft.AudioCodec)
		if _, ok := media.AudioCodecPrefix(draft.AudioCodec); !ok {
			return Config{}, fmt.Errorf("unknown audio codec %q", draft.AudioCodec)
		}
		draft.QualityPreset = strings.TrimSpace(draft.QualityPreset)
		if draft.QualityPreset == "" {
			draft.QualityPreset = media.QualityBest
		}
		if _, ok := media.QualityHeight(draft.QualityPreset); !ok {
			return Config{}, fmt.Errorf("unknown quality preset %q", draft.QualityPreset)
		}
	}

	draft.OutputTemplate = strings.TrimSpace(draft.OutputTemplate)
	if _, ok := media.OutputTemplate(draft.OutputTemplate); !ok {
		return Config{}, fmt.Errorf("unknown output template %q", draft.OutputTemplate)
	}

	draft.CustomFilename = textutil.SanitizeFileName(draft.CustomFilename)

	draft.ID = uuid.NewString()
	return draft, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url must be set")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("url scheme %q not supported", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}
