package executor_test

import (
	"os"
	"path/filepath"
	"testing"

	"reel/internal/executor"
	"reel/internal/logging"
	"reel/internal/testsupport"
)

func TestFinalizePreservesRelativePaths(t *testing.T) {
	work := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(work, "album", "01 - intro.opus"), 512)
	testsupport.WriteFile(t, filepath.Join(work, "album", "02 - outro.opus"), 256)

	files, bytes, err := executor.Finalize(logging.NewNop(), work, dest)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 placed files, got %v", files)
	}
	if bytes != 768 {
		t.Fatalf("unexpected total bytes %d", bytes)
	}
	if _, err := os.Stat(filepath.Join(dest, "album", "01 - intro.opus")); err != nil {
		t.Fatalf("expected nested file placed: %v", err)
	}
}

func TestFinalizeOverwritesExistingDestination(t *testing.T) {
	work := t.TempDir()
	dest := t.TempDir()
	target := filepath.Join(dest, "track.mp3")
	if err := os.WriteFile(target, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(work, "track.mp3"), 100)

	if _, _, err := executor.Finalize(logging.NewNop(), work, dest); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("stat destination: %v", err)
	}
	if info.Size() != 100 {
		t.Fatalf("expected last writer to win, got %d bytes", info.Size())
	}
}

func TestFinalizeSkipsPartialArtifacts(t *testing.T) {
	work := t.TempDir()
	dest := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(work, "video.mp4"), 64)
	testsupport.WriteFile(t, filepath.Join(work, "video.mp4.part"), 32)
	testsupport.WriteFile(t, filepath.Join(work, "video.mp4.ytdl"), 8)
	testsupport.WriteFile(t, filepath.Join(work, "video.mp4.part-Frag0007"), 16)

	files, _, err := executor.Finalize(logging.NewNop(), work, dest)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "video.mp4" {
		t.Fatalf("expected only the final file placed, got %v", files)
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 destination entry, got %d", len(entries))
	}
}

func TestFinalizeEmptySandboxIsNoop(t *testing.T) {
	work := t.TempDir()
	dest := t.TempDir()

	for i := 0; i < 2; i++ {
		files, bytes, err := executor.Finalize(logging.NewNop(), work, dest)
		if err != nil {
			t.Fatalf("Finalize pass %d: %v", i+1, err)
		}
		if len(files) != 0 || bytes != 0 {
			t.Fatalf("expected no-op, got files=%v bytes=%d", files, bytes)
		}
	}
}

func TestFinalizeMissingSandboxIsNoop(t *testing.T) {
	dest := t.TempDir()
	missing := filepath.Join(dest, "never-created")

	files, bytes, err := executor.Finalize(logging.NewNop(), missing, dest)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(files) != 0 || bytes != 0 {
		t.Fatalf("expected no-op on missing sandbox, got files=%v bytes=%d", files, bytes)
	}
}
