package services

import (
	"errors"
	"fmt"
	"strings"

	"reel/internal/job"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrResolution    = errors.New("resolution error")
	ErrPipeline      = errors.New("pipeline error")
	ErrCancelled     = errors.New("cancelled")
	ErrFinalize      = errors.New("finalize error")
	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later terminal-state classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrPipeline
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// TerminalStatus maps a job error to the terminal status the executor should
// report after a failed run.
func TerminalStatus(err error) job.Status {
	if errors.Is(err, ErrCancelled) {
		return job.StatusCancelled
	}
	return job.StatusFailed
}

// Reason renders an error as the human-readable reason string surfaced
// alongside a terminal state. Nil yields the empty string.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
