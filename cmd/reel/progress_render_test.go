package main

import (
	"bytes"
	"strings"
	"testing"

	"reel/internal/job"
	"reel/internal/progress"
)

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestProgressRendererCollapsesSmallSteps(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf)

	for _, percent := range []float64{1, 5, 9} {
		r.Observe(progress.Event{JobID: "a", Phase: "Downloading", Status: job.StatusDownloading, Percent: percent})
	}
	r.Observe(progress.Event{JobID: "a", Phase: "Downloading", Status: job.StatusDownloading, Percent: 12})

	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	requireContains(t, lines[0], "1%")
	requireContains(t, lines[1], "12%")
}

func TestProgressRendererPrintsPhaseChanges(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf)

	r.Observe(progress.Event{JobID: "a", Phase: "Resolving", Status: job.StatusResolving})
	r.Observe(progress.Event{JobID: "a", Phase: "Resolving", Status: job.StatusResolving})
	r.Observe(progress.Event{JobID: "a", Phase: "Downloading", Status: job.StatusDownloading})

	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	requireContains(t, lines[0], "Resolving")
	requireContains(t, lines[1], "Downloading")
}

func TestProgressRendererTerminalLines(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf)

	r.Observe(progress.Event{JobID: "a", Phase: "Completed", Status: job.StatusCompleted, Terminal: true, Reason: "files moved"})
	r.Observe(progress.Event{JobID: "b", Phase: "Failed", Status: job.StatusFailed, Terminal: true, Reason: "boom"})

	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if lines[0] != "Completed" {
		t.Fatalf("success line should omit the reason, got %q", lines[0])
	}
	if lines[1] != "Failed: boom" {
		t.Fatalf("unexpected failure line: %q", lines[1])
	}
}

func TestProgressRendererLabelsAndIndeterminate(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf)
	r.SetLabel("a", "[1/3]")

	r.Observe(progress.Event{
		JobID:         "a",
		Phase:         "Downloading",
		Status:        job.StatusDownloading,
		Indeterminate: true,
		Speed:         "2.0 MiB/s",
	})

	line := strings.TrimSpace(buf.String())
	if line != "[1/3] Downloading ... (2.0 MiB/s)" {
		t.Fatalf("unexpected line: %q", line)
	}
}

func TestProgressRendererTracksJobsIndependently(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf)

	r.Observe(progress.Event{JobID: "a", Phase: "Downloading", Status: job.StatusDownloading, Percent: 5})
	r.Observe(progress.Event{JobID: "b", Phase: "Downloading", Status: job.StatusDownloading, Percent: 5})
	r.Observe(progress.Event{JobID: "a", Phase: "Downloading", Status: job.StatusDownloading, Percent: 8})

	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("each job should print its first report once, got %d lines:\n%s", len(lines), buf.String())
	}
}
