package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"reel/internal/logging"
)

const (
	// sandboxDirName is the hidden namespace under the destination that
	// holds per-job work directories until finalization.
	sandboxDirName = ".inprogress"
	lockFileName   = ".lock"
)

// Root returns the sandbox namespace under the destination directory.
func Root(outputDir string) string {
	return filepath.Join(outputDir, sandboxDirName)
}

// JobDir returns the work directory for one job inside the sandbox namespace.
func JobDir(outputDir, jobID string) string {
	return filepath.Join(Root(outputDir), jobID)
}

// LockPath returns the advisory lock file shared by executors and the
// cleaner. Executors hold it shared for the duration of a run; the cleaner
// takes it exclusively so it never removes a live sandbox.
func LockPath(outputDir string) string {
	return filepath.Join(Root(outputDir), lockFileName)
}

// Prepare creates the work directory for a job and returns its path.
func Prepare(outputDir, jobID string) (string, error) {
	dir := JobDir(outputDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create sandbox %q: %w", dir, err)
	}
	return dir, nil
}

// AcquireShared takes the executor side of the sandbox lock. The returned
// lock must be released with Unlock once the job leaves the sandbox.
func AcquireShared(ctx context.Context, outputDir string) (*flock.Flock, error) {
	lock := flock.New(LockPath(outputDir))
	ok, err := lock.TryRLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire sandbox lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("sandbox lock %q unavailable", lock.Path())
	}
	return lock, nil
}

// Result contains the outcome of a sandbox cleanup operation.
type Result struct {
	Removed []string
	Kept    int
	Errors  []CleanupError
	Skipped bool
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanOrphaned removes leftover job sandboxes under the destination. When
// any executor holds the shared lock the whole pass is skipped, so live
// downloads are never touched. A positive maxAge keeps sandboxes modified
// more recently than that. The namespace directory is removed as a final
// step once nothing remains in it.
func CleanOrphaned(ctx context.Context, outputDir string, maxAge time.Duration, logger *slog.Logger) Result {
	result := Result{}

	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return result
	}
	root := Root(outputDir)
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		}
		return result
	}

	lock := flock.New(LockPath(outputDir))
	ok, err := lock.TryLock()
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: lock.Path(), Error: err})
		return result
	}
	if !ok {
		result.Skipped = true
		if logger != nil {
			logger.Info("sandbox cleanup skipped; downloads in progress",
				logging.String("path", root),
				logging.String(logging.FieldEventType, "sandbox_cleanup_skipped"),
			)
		}
		return result
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: root, Error: err})
		_ = lock.Unlock()
		return result
	}

	var cutoff time.Time
	if maxAge > 0 {
		cutoff = time.Now().Add(-maxAge)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		if !cutoff.IsZero() {
			if info, err := entry.Info(); err == nil && info.ModTime().After(cutoff) {
				result.Kept++
				continue
			}
		}
		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove orphaned sandbox", "sandbox_cleanup_failed",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed orphaned sandbox",
				logging.String("path", dirPath),
				logging.String(logging.FieldEventType, "sandbox_cleanup"),
			)
		}
	}

	_ = lock.Unlock()
	if len(result.Errors) == 0 && result.Kept == 0 {
		_ = os.Remove(lock.Path())
		_ = os.Remove(root)
	}

	return result
}

// DirInfo contains metadata about a job sandbox.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListSandboxes returns the job sandboxes under the destination with their
// metadata, for display before a cleanup pass.
func ListSandboxes(outputDir string) ([]DirInfo, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(Root(outputDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(Root(outputDir), entry.Name())
		size, _ := dirSize(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
