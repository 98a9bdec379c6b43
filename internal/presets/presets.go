package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"reel/internal/config"
	"reel/internal/job"
)

const fileName = "presets.toml"

// Preset is a named partial job configuration. Zero fields leave the draft
// untouched when applied; boolean fields enable features and never disable
// what a flag turned on.
type Preset struct {
	MediaType      string `toml:"media_type,omitempty"`
	Container      string `toml:"container,omitempty"`
	AudioCodec     string `toml:"audio_codec,omitempty"`
	VideoCodec     string `toml:"video_codec,omitempty"`
	Quality        string `toml:"quality,omitempty"`
	BitrateKbps    int    `toml:"bitrate_kbps,omitempty"`
	SampleRateHz   int    `toml:"sample_rate_hz,omitempty"`
	OutputTemplate string `toml:"output_template,omitempty"`

	Normalize      bool `toml:"normalize,omitempty"`
	EmbedMetadata  bool `toml:"embed_metadata,omitempty"`
	EmbedThumbnail bool `toml:"embed_thumbnail,omitempty"`
	EmbedSubtitles bool `toml:"embed_subtitles,omitempty"`
	Playlist       bool `toml:"playlist,omitempty"`
	BrowserCookies bool `toml:"browser_cookies,omitempty"`
}

// Named pairs a preset with its name for listings.
type Named struct {
	Name   string
	Preset Preset
}

// Apply copies the preset's set fields onto the draft. Command-line flags
// override afterwards, so the precedence is defaults, then preset, then
// flags.
func (p Preset) Apply(draft *job.Config) {
	if p.MediaType != "" {
		draft.MediaType = job.MediaType(p.MediaType)
	}
	if p.Container != "" {
		draft.Container = p.Container
	}
	if p.AudioCodec != "" {
		draft.AudioCodec = p.AudioCodec
	}
	if p.VideoCodec != "" {
		draft.VideoCodec = p.VideoCodec
	}
	if p.Quality != "" {
		draft.QualityPreset = p.Quality
	}
	if p.BitrateKbps > 0 {
		draft.BitrateKbps = p.BitrateKbps
	}
	if p.SampleRateHz > 0 {
		draft.SampleRateHz = p.SampleRateHz
	}
	if p.OutputTemplate != "" {
		draft.OutputTemplate = p.OutputTemplate
	}
	if p.Normalize {
		draft.NormalizeAudio = true
	}
	if p.EmbedMetadata {
		draft.EmbedMetadata = true
	}
	if p.EmbedThumbnail {
		draft.EmbedThumbnail = true
	}
	if p.EmbedSubtitles {
		draft.EmbedSubtitles = true
	}
	if p.Playlist {
		draft.Playlist = true
	}
	if p.BrowserCookies {
		draft.UseBrowserCookies = true
	}
}

// Store reads and writes the named preset file under the state directory.
type Store struct {
	path string
}

// NewStore builds a store rooted at the configured state directory.
func NewStore(cfg *config.Config) *Store {
	return &Store{path: filepath.Join(cfg.Paths.StateDir, fileName)}
}

// Path returns the preset file location.
func (s *Store) Path() string {
	return s.path
}

// List returns every preset sorted by name. A missing file is an empty list.
func (s *Store) List() ([]Named, error) {
	presets, err := s.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Named, 0, len(names))
	for _, name := range names {
		out = append(out, Named{Name: name, Preset: presets[name]})
	}
	return out, nil
}

// Get looks up one preset by name.
func (s *Store) Get(name string) (Preset, bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Preset{}, false, err
	}
	presets, err := s.load()
	if err != nil {
		return Preset{}, false, err
	}
	preset, ok := presets[name]
	return preset, ok, nil
}

// Save writes or replaces the named preset.
func (s *Store) Save(name string, preset Preset) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	presets, err := s.load()
	if err != nil {
		return err
	}
	presets[name] = preset
	return s.write(presets)
}

// Delete removes the named preset, reporting whether it existed.
func (s *Store) Delete(name string) (bool, error) {
	name, err := normalizeName(name)
	if err != nil {
		return false, err
	}
	presets, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := presets[name]; !ok {
		return false, nil
	}
	delete(presets, name)
	return true, s.write(presets)
}

type presetFile struct {
	Presets map[string]Preset `toml:"presets"`
}

func (s *Store) load() (map[string]Preset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Preset{}, nil
		}
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var file presetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse presets file %s: %w", s.path, err)
	}
	if file.Presets == nil {
		file.Presets = map[string]Preset{}
	}
	return file.Presets, nil
}

func (s *Store) write(presets map[string]Preset) error {
	data, err := toml.Marshal(presetFile{Presets: presets})
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write presets file: %w", err)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", errors.New("preset name must not be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return "", fmt.Errorf("preset name %q may only use letters, digits, dash, and underscore", name)
		}
	}
	return name, nil
}
