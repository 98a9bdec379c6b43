package progress

import (
	"sync"

	"github.com/dustin/go-humanize"

	"reel/internal/job"
	"reel/internal/services/ytdlp"
)

const defaultBuffer = 16

// Event is one normalized progress report for a job. Percent stays within
// [0,100]; Indeterminate marks reports where the total is unknown. Terminal
// events carry the final status and, for failures, the reason.
type Event struct {
	JobID         string
	Phase         string
	Status        job.Status
	Percent       float64
	Indeterminate bool
	Speed         string
	Terminal      bool
	Reason        string
}

// Bridge normalizes raw extractor progress into an ordered event stream for
// exactly one subscriber. Delivery never blocks the executor: when the
// subscriber lags, the oldest pending report is dropped. The terminal event
// is never dropped and is always the last event observed.
type Bridge struct {
	jobID string

	mu          sync.Mutex
	ch          chan Event
	lastPercent float64
	seenFinish  bool
	terminal    bool
}

// NewBridge builds a bridge for the job. A non-positive buffer selects the
// default.
func NewBridge(jobID string, buffer int) *Bridge {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bridge{
		jobID: jobID,
		ch:    make(chan Event, buffer),
	}
}

// Events exposes the subscriber stream. The channel closes after the
// terminal event.
func (b *Bridge) Events() <-chan Event {
	return b.ch
}

// Publish reports a lifecycle checkpoint (queued, resolving, finalizing).
func (b *Bridge) Publish(status job.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.terminal {
		return
	}
	b.sendLocked(Event{
		JobID:   b.jobID,
		Phase:   status.Display(),
		Status:  status,
		Percent: b.lastPercent,
	})
}

// Ingest normalizes one raw extractor report. Downloading percents are
// non-decreasing; an unknown total yields an indeterminate report. The
// finished report forces 100 percent and flips the phase to Processing. A
// later downloading report reopens the download segment (playlist entries)
// and resets the monotonic floor.
func (b *Bridge) Ingest(raw ytdlp.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.terminal {
		return
	}

	switch raw.Phase {
	case "downloading":
		ev := Event{
			JobID:  b.jobID,
			Phase:  job.StatusDownloading.Display(),
			Status: job.StatusDownloading,
			Speed:  speedLabel(raw.SpeedBps),
		}
		if raw.TotalBytes > 0 {
			percent := float64(raw.DownloadedBytes) / float64(raw.TotalBytes) * 100
			if percent < 0 {
				percent = 0
			}
			if percent > 100 {
				percent = 100
			}
			if b.seenFinish {
				b.seenFinish = false
				b.lastPercent = percent
			} else if percent < b.lastPercent {
				percent = b.lastPercent
			}
			b.lastPercent = percent
			ev.Percent = percent
		} else {
			ev.Percent = b.lastPercent
			ev.Indeterminate = true
		}
		b.sendLocked(ev)
	case "finished":
		b.seenFinish = true
		b.lastPercent = 100
		b.sendLocked(Event{
			JobID:   b.jobID,
			Phase:   job.StatusPostProcessing.Display(),
			Status:  job.StatusPostProcessing,
			Percent: 100,
		})
	}
}

// Terminal delivers the final event and closes the stream. It never blocks:
// pending reports are discarded to make room if the subscriber lags. Exactly
// one terminal event is ever sent, and it is the last event before the
// channel closes.
func (b *Bridge) Terminal(outcome job.Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.terminal {
		return
	}
	b.terminal = true

	percent := b.lastPercent
	if outcome.Status == job.StatusCompleted {
		percent = 100
	}
	ev := Event{
		JobID:    b.jobID,
		Phase:    outcome.Status.Display(),
		Status:   outcome.Status,
		Percent:  percent,
		Terminal: true,
		Reason:   outcome.Reason,
	}
	for {
		select {
		case b.ch <- ev:
			close(b.ch)
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// sendLocked delivers without blocking, dropping the oldest pending report
// when the subscriber lags.
func (b *Bridge) sendLocked(ev Event) {
	select {
	case b.ch <- ev:
		return
	default:
	}
	select {
	case <-b.ch:
	default:
	}
	select {
	case b.ch <- ev:
	default:
	}
}

func speedLabel(bps float64) string {
	if bps <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(bps)) + "/s"
}
