package presets_test

import (
	"os"
	"testing"

	"reel/internal/job"
	"reel/internal/presets"
	"reel/internal/testsupport"
)

func TestListMissingFileIsEmpty(t *testing.T) {
	store := presets.NewStore(testsupport.NewConfig(t))
	named, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(named) != 0 {
		t.Fatalf("expected empty list, got %v", named)
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	store := presets.NewStore(testsupport.NewConfig(t))
	want := presets.Preset{
		MediaType:   "audio",
		Container:   "mp3",
		BitrateKbps: 192,
		Normalize:   true,
	}
	if err := store.Save("Podcast", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Get("podcast")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected preset to exist under its normalized name")
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	if _, err := os.Stat(store.Path()); err != nil {
		t.Fatalf("expected preset file on disk: %v", err)
	}
}

func TestListSortsByName(t *testing.T) {
	store := presets.NewStore(testsupport.NewConfig(t))
	for _, name := range []string{"zebra", "alpha", "mid"} {
		if err := store.Save(name, presets.Preset{Container: "opus"}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	named, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(named) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(named))
	}
	for i, want := range []string{"alpha", "mid", "zebra"} {
		if named[i].Name != want {
			t.Fatalf("expected %q at %d, got %q", want, i, named[i].Name)
		}
	}
}

func TestDelete(t *testing.T) {
	store := presets.NewStore(testsupport.NewConfig(t))
	if err := store.Save("tmp", presets.Preset{Container: "flac"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	removed, err := store.Delete("tmp")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("expected delete to report removal")
	}

	removed, err = store.Delete("tmp")
	if err != nil {
		t.Fatalf("Delete second: %v", err)
	}
	if removed {
		t.Fatal("expected second delete to be a no-op")
	}
}

func TestSaveRejectsInvalidNames(t *testing.T) {
	store := presets.NewStore(testsupport.NewConfig(t))
	for _, name := range []string{"", "  ", "bad name", "semi;colon"} {
		if err := store.Save(name, presets.Preset{}); err == nil {
			t.Fatalf("expected invalid name %q to fail", name)
		}
	}
}

func TestApplyPrecedence(t *testing.T) {
	preset := presets.Preset{
		Container:      "opus",
		BitrateKbps:    128,
		Normalize:      true,
		OutputTemplate: "title-artist",
	}

	draft := job.Config{
		URL:       "https://example.com/a",
		OutputDir: "/downloads",
		Container: "mp3",
	}
	preset.Apply(&draft)

	if draft.Container != "opus" {
		t.Fatalf("expected preset container to win over the draft default, got %q", draft.Container)
	}
	if draft.BitrateKbps != 128 || !draft.NormalizeAudio {
		t.Fatalf("expected preset fields applied, got %+v", draft)
	}

	// Flags run after Apply; later assignments must stick.
	draft.BitrateKbps = 256
	if draft.BitrateKbps != 256 {
		t.Fatalf("expected flag override to stick, got %d", draft.BitrateKbps)
	}
}

func TestApplyLeavesUnsetFieldsAlone(t *testing.T) {
	var preset presets.Preset
	draft := job.Config{
		Container:   "flac",
		BitrateKbps: 0,
		MediaType:   job.MediaAudio,
	}
	before := draft
	preset.Apply(&draft)
	if draft != before {
		t.Fatalf("empty preset must not modify the draft: got %+v want %+v", draft, before)
	}
}
