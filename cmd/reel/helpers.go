package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/config"
	"reel/internal/pipeline"
	"reel/internal/preflight"
	"reel/internal/scheduler"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runPreflight gates a submission on the environment checks. Failures are
// printed individually before the command errors out.
func runPreflight(cmd *cobra.Command, cfg *config.Config) error {
	results := preflight.RunAll(cfg)
	if !preflight.Failed(results) {
		return nil
	}
	out := cmd.ErrOrStderr()
	for _, result := range results {
		if result.Passed {
			continue
		}
		fmt.Fprintf(out, "Preflight: %s: %s\n", result.Name, result.Detail)
	}
	return errors.New("preflight checks failed")
}

// watchInterrupt routes the first SIGINT/SIGTERM to a cooperative cancel of
// every in-flight job. The returned stop function releases the signal handler.
func watchInterrupt(sched *scheduler.Scheduler, errOut io.Writer) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(errOut, "Interrupt received; cancelling downloads")
			sched.CancelAll()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// browserCookieSource resolves the browser to read cookies from when the job
// enables them.
func browserCookieSource(cfg *config.Config, enabled bool) string {
	if !enabled {
		return ""
	}
	if browser := strings.TrimSpace(cfg.Tools.CookiesFromBrowser); browser != "" {
		return browser
	}
	return pipeline.DefaultCookiesBrowser
}

func formatAge(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func truncate(value string, max int) string {
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}

func joinInts(values []int, sep string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, sep)
}
