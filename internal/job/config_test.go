package job_test

import (
	"strings"
	"testing"

	"reel/internal/job"
	"reel/internal/media"
)

func audioDraft() job.Config {
	return job.Config{
		URL:       "https://example.com/watch?v=abc123",
		OutputDir: "/tmp/music",
		MediaType: job.MediaAudio,
		Container: "mp3",
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	first, err := job.New(audioDraft())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	second, err := job.New(audioDraft())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both %s", first.ID)
	}
}

func TestNewRejectsPresetID(t *testing.T) {
	draft := audioDraft()
	draft.ID = "chosen"
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for caller-supplied id")
	}
}

func TestNewValidatesURLs(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"no scheme", "example.com/watch"},
		{"bad scheme", "ftp://example.com/file"},
		{"no host", "https:///path"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := audioDraft()
			draft.URL = tc.url
			if _, err := job.New(draft); err == nil {
				t.Fatalf("expected error for url %q", tc.url)
			}
		})
	}
}

func TestNewValidatesContainers(t *testing.T) {
	draft := audioDraft()
	draft.Container = "ogg"
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for unknown audio container")
	}

	draft = audioDraft()
	draft.MediaType = job.MediaVideo
	draft.Container = "mp3"
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for audio container on video job")
	}

	draft = audioDraft()
	draft.Container = "  FLAC "
	cfg, err := job.New(draft)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.Container != "flac" {
		t.Fatalf("expected normalized container flac, got %q", cfg.Container)
	}
}

func TestNewVideoDefaults(t *testing.T) {
	draft := job.Config{
		URL:       "https://example.com/watch?v=abc123",
		OutputDir: "/tmp/video",
		MediaType: job.MediaVideo,
		Container: "mkv",
	}
	cfg, err := job.New(draft)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.VideoCodec != media.CodecBest || cfg.AudioCodec != media.CodecBest {
		t.Fatalf("expected best codecs by default, got %q/%q", cfg.VideoCodec, cfg.AudioCodec)
	}
	if cfg.QualityPreset != media.QualityBest {
		t.Fatalf("expected default quality preset, got %q", cfg.QualityPreset)
	}

	draft.QualityPreset = "8K"
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for unknown quality preset")
	}
	draft.QualityPreset = ""
	draft.VideoCodec = "h265"
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for unknown video codec")
	}
}

func TestNewRejectsNegativeNumbers(t *testing.T) {
	draft := audioDraft()
	draft.SampleRateHz = -1
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for negative sample rate")
	}
	draft = audioDraft()
	draft.BitrateKbps = -192
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for negative bitrate")
	}
}

func TestNewSanitizesCustomFilename(t *testing.T) {
	draft := audioDraft()
	draft.CustomFilename = ` my/track: "final" `
	cfg, err := job.New(draft)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if strings.ContainsAny(cfg.CustomFilename, `/\:"*?<>|`) {
		t.Fatalf("expected sanitized filename, got %q", cfg.CustomFilename)
	}
}

func TestNewValidatesOutputTemplate(t *testing.T) {
	draft := audioDraft()
	draft.OutputTemplate = "bogus"
	if _, err := job.New(draft); err == nil {
		t.Fatal("expected error for unknown output template")
	}
	draft.OutputTemplate = "playlist"
	if _, err := job.New(draft); err != nil {
		t.Fatalf("expected playlist template to be accepted: %v", err)
	}
}
