package progress_test

import (
	"sync"
	"testing"

	"reel/internal/job"
	"reel/internal/progress"
	"reel/internal/services/ytdlp"
)

func drain(b *progress.Bridge) []progress.Event {
	var events []progress.Event
	for ev := range b.Events() {
		events = append(events, ev)
	}
	return events
}

func TestBridgePercentMonotonic(t *testing.T) {
	b := progress.NewBridge("job-1", 32)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 50, TotalBytes: 100})
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 30, TotalBytes: 100})
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 80, TotalBytes: 100})
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	percents := []float64{events[0].Percent, events[1].Percent, events[2].Percent}
	want := []float64{50, 50, 80}
	for i, percent := range percents {
		if percent != want[i] {
			t.Fatalf("event %d percent = %v, want %v", i, percent, want[i])
		}
	}
	for _, ev := range events {
		if ev.JobID != "job-1" {
			t.Fatalf("event carried job id %q", ev.JobID)
		}
	}
}

func TestBridgeClampsPercent(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 150, TotalBytes: 100})
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	if events[0].Percent != 100 {
		t.Fatalf("percent = %v, want clamp to 100", events[0].Percent)
	}
}

func TestBridgeIndeterminateWithoutTotal(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 40, TotalBytes: 100})
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 90})
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	if events[0].Indeterminate {
		t.Fatal("report with a known total marked indeterminate")
	}
	if !events[1].Indeterminate {
		t.Fatal("report without a total not marked indeterminate")
	}
	if events[1].Percent != 40 {
		t.Fatalf("indeterminate report percent = %v, want last known 40", events[1].Percent)
	}
}

func TestBridgeFinishedMarksProcessing(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 95, TotalBytes: 100})
	b.Ingest(ytdlp.Event{Phase: "finished"})
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	finished := events[1]
	if finished.Phase != "Processing" {
		t.Fatalf("finished phase = %q, want Processing", finished.Phase)
	}
	if finished.Status != job.StatusPostProcessing {
		t.Fatalf("finished status = %q", finished.Status)
	}
	if finished.Percent != 100 {
		t.Fatalf("finished percent = %v, want 100", finished.Percent)
	}
}

func TestBridgePlaylistEntryResetsFloor(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 100, TotalBytes: 100})
	b.Ingest(ytdlp.Event{Phase: "finished"})
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 10, TotalBytes: 100})
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	next := events[2]
	if next.Percent != 10 {
		t.Fatalf("next entry percent = %v, want fresh 10", next.Percent)
	}
	if next.Status != job.StatusDownloading {
		t.Fatalf("next entry status = %q", next.Status)
	}
}

func TestBridgeSpeedLabel(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 10, TotalBytes: 100, SpeedBps: 2 * 1024 * 1024})
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 20, TotalBytes: 100})
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	if events[0].Speed != "2.0 MiB/s" {
		t.Fatalf("speed label = %q", events[0].Speed)
	}
	if events[1].Speed != "" {
		t.Fatalf("missing speed rendered as %q, want empty", events[1].Speed)
	}
}

func TestBridgePublishCarriesLastPercent(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Publish(job.StatusResolving)
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 40, TotalBytes: 100})
	b.Publish(job.StatusFinalizing)
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})

	events := drain(b)
	if events[0].Phase != "Resolving" || events[0].Percent != 0 {
		t.Fatalf("resolving event = %+v", events[0])
	}
	if events[2].Phase != "Finalizing" || events[2].Percent != 40 {
		t.Fatalf("finalizing event = %+v", events[2])
	}
}

func TestBridgeTerminalSurvivesLag(t *testing.T) {
	b := progress.NewBridge("job-1", 1)
	for i := 1; i <= 50; i++ {
		b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: int64(i), TotalBytes: 50})
	}
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusFailed, Reason: "network unreachable"})

	events := drain(b)
	if len(events) == 0 {
		t.Fatal("no events delivered")
	}
	last := events[len(events)-1]
	if !last.Terminal {
		t.Fatalf("last event not terminal: %+v", last)
	}
	if last.Status != job.StatusFailed || last.Reason != "network unreachable" {
		t.Fatalf("terminal event = %+v", last)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.Terminal {
			t.Fatal("terminal event delivered before the end of the stream")
		}
	}
}

func TestBridgeTerminalExactlyOnce(t *testing.T) {
	b := progress.NewBridge("job-1", 8)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCancelled})
		}()
	}
	wg.Wait()

	events := drain(b)
	if len(events) != 1 {
		t.Fatalf("expected exactly one terminal event, got %d", len(events))
	}
	if !events[0].Terminal || events[0].Status != job.StatusCancelled {
		t.Fatalf("terminal event = %+v", events[0])
	}
}

func TestBridgeIgnoresReportsAfterTerminal(t *testing.T) {
	b := progress.NewBridge("job-1", 8)
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})
	b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: 10, TotalBytes: 100})
	b.Publish(job.StatusFinalizing)

	events := drain(b)
	if len(events) != 1 {
		t.Fatalf("expected only the terminal event, got %d", len(events))
	}
	if events[0].Percent != 100 {
		t.Fatalf("completed terminal percent = %v, want 100", events[0].Percent)
	}
}

func TestBridgeConcurrentConsumerSeesTerminalLast(t *testing.T) {
	b := progress.NewBridge("job-1", 4)

	var events []progress.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		events = drain(b)
	}()

	for i := 1; i <= 100; i++ {
		b.Ingest(ytdlp.Event{Phase: "downloading", DownloadedBytes: int64(i), TotalBytes: 100})
	}
	b.Terminal(job.Outcome{JobID: "job-1", Status: job.StatusCompleted})
	<-done

	if len(events) == 0 {
		t.Fatal("no events delivered")
	}
	last := events[len(events)-1]
	if !last.Terminal || last.Status != job.StatusCompleted {
		t.Fatalf("last event = %+v", last)
	}
	floor := 0.0
	for _, ev := range events {
		if ev.Indeterminate {
			continue
		}
		if ev.Percent < floor {
			t.Fatalf("percent regressed from %v to %v", floor, ev.Percent)
		}
		floor = ev.Percent
	}
}
