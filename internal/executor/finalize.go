package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"reel/internal/fileutil"
	"reel/internal/logging"
	"reel/internal/services"
)

// Finalize moves every regular file under workDir into destDir, preserving
// relative paths. Same-named destination files are overwritten; the last
// writer wins. Partial-download artifacts are skipped. A missing or empty
// workDir is a no-op, so finalizing twice is safe. It returns the placed
// destination paths and their total size; the error wraps ErrFinalize when
// any file failed to move.
func Finalize(logger *slog.Logger, workDir, destDir string) ([]string, int64, error) {
	if _, err := os.Stat(workDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, services.Wrap(services.ErrFinalize, "executor", "finalize", "Failed to read sandbox", err)
	}

	var (
		placed []string
		total  int64
		errs   []error
	)
	walkErr := filepath.WalkDir(workDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if isPartialArtifact(entry.Name()) {
			return nil
		}

		rel, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			errs = append(errs, relErr)
			return nil
		}
		dest := filepath.Join(destDir, rel)
		if mkErr := os.MkdirAll(filepath.Dir(dest), 0o755); mkErr != nil {
			errs = append(errs, fmt.Errorf("create destination for %q: %w", rel, mkErr))
			return nil
		}

		size := fileSize(path)
		if moveErr := moveFile(logger, path, dest); moveErr != nil {
			errs = append(errs, moveErr)
			return nil
		}
		placed = append(placed, dest)
		total += size
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}

	if len(errs) > 0 {
		return placed, total, services.Wrap(services.ErrFinalize, "executor", "finalize", "Failed to place downloaded files", errors.Join(errs...))
	}
	return placed, total, nil
}

// moveFile renames source onto target, falling back to verified copy+delete
// for cross-device moves.
func moveFile(logger *slog.Logger, source, target string) error {
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := fileutil.CopyFileVerified(source, target); copyErr != nil {
			return fmt.Errorf("copy %q across devices: %w", filepath.Base(source), copyErr)
		}
		if err := os.Remove(source); err != nil && logger != nil {
			logger.Warn("failed to remove source file after copy", logging.Error(err))
		}
		return nil
	}
	return fmt.Errorf("move %q: %w", filepath.Base(source), renameErr)
}

// isPartialArtifact reports whether a file name is extractor working state
// that must never reach the destination.
func isPartialArtifact(name string) bool {
	if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
		return true
	}
	return strings.Contains(name, ".part-Frag")
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
