package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reel/internal/config"
	"reel/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func captureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		_ = r.Body.Close()
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyDownloadCompleted(context.Background(), "Example", 1, 1024); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsDownloadCompleted(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 5

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyDownloadCompleted(context.Background(), "Great Mix", 3, 8<<20); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}

	if len(sink) != 1 {
		t.Fatalf("expected 1 request, got %d", len(sink))
	}
	got := sink[0]
	if got.title != "Reel - Complete" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.body != "Downloaded: Great Mix (3 files)\nSize: 8.0 MiB" {
		t.Fatalf("unexpected message %q", got.body)
	}
	if got.tags != "reel,download,completed" {
		t.Fatalf("unexpected tags %q", got.tags)
	}
	if got.priority != "" {
		t.Fatalf("unexpected priority %q", got.priority)
	}
}

func TestNtfyServiceFormatsDownloadFailed(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyDownloadFailed(context.Background(), "Broken Clip", "network unreachable"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}

	if len(sink) != 1 {
		t.Fatalf("expected 1 request, got %d", len(sink))
	}
	got := sink[0]
	if got.title != "Reel - Failed" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.body != "Failed: Broken Clip\nnetwork unreachable" {
		t.Fatalf("unexpected message %q", got.body)
	}
	if got.priority != "high" {
		t.Fatalf("expected high priority, got %q", got.priority)
	}
}

func TestNtfyServiceFormatsBatchCompleted(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyBatchCompleted(context.Background(), 4, 1, 90*time.Second); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}

	if len(sink) != 1 {
		t.Fatalf("expected 1 request, got %d", len(sink))
	}
	got := sink[0]
	if got.title != "Reel - Batch Complete (with errors)" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.body != "Batch complete: 4 succeeded, 1 failed in 1m30s" {
		t.Fatalf("unexpected message %q", got.body)
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completed = false
	cfg.Notifications.Failed = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyDownloadCompleted(context.Background(), "Quiet", 1, 1); err != nil {
		t.Fatalf("expected suppressed completed event, got %v", err)
	}
	if err := svc.NotifyDownloadFailed(context.Background(), "Quiet", "reason"); err != nil {
		t.Fatalf("expected suppressed failed event, got %v", err)
	}
}
