package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"reel/internal/job"
	"reel/internal/progress"
)

// progressRenderer turns the scheduler's merged event stream into terminal
// output. On a TTY non-terminal events redraw a single status line in place
// and terminal events commit their own line. Off a TTY it prints one line per
// phase change and per ten-percent step so piped output stays readable.
type progressRenderer struct {
	out io.Writer
	tty bool

	labels     map[string]string
	lastPhase  map[string]string
	lastBucket map[string]int
	lineWidth  int
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	r := &progressRenderer{
		out:        out,
		labels:     make(map[string]string),
		lastPhase:  make(map[string]string),
		lastBucket: make(map[string]int),
	}
	if f, ok := out.(*os.File); ok {
		r.tty = isatty.IsTerminal(f.Fd())
	}
	return r
}

// SetLabel prefixes the job's lines so multiplexed jobs stay tellable apart.
func (r *progressRenderer) SetLabel(jobID, label string) {
	if label != "" {
		r.labels[jobID] = label
	}
}

// Observe renders one event.
func (r *progressRenderer) Observe(ev progress.Event) {
	if ev.Terminal {
		r.commit(r.line(ev))
		delete(r.lastPhase, ev.JobID)
		delete(r.lastBucket, ev.JobID)
		return
	}

	if r.tty {
		r.redraw(r.line(ev))
		return
	}

	bucket := int(ev.Percent) / 10
	if ev.Phase == r.lastPhase[ev.JobID] && bucket == r.lastBucket[ev.JobID] {
		return
	}
	r.lastPhase[ev.JobID] = ev.Phase
	r.lastBucket[ev.JobID] = bucket
	fmt.Fprintln(r.out, r.line(ev))
}

func (r *progressRenderer) redraw(line string) {
	fmt.Fprintf(r.out, "\r%s", padLine(line, r.lineWidth))
	if len(line) > r.lineWidth {
		r.lineWidth = len(line)
	}
}

func (r *progressRenderer) commit(line string) {
	if r.tty && r.lineWidth > 0 {
		fmt.Fprintf(r.out, "\r%s\n", padLine(line, r.lineWidth))
		r.lineWidth = 0
		return
	}
	fmt.Fprintln(r.out, line)
}

func (r *progressRenderer) line(ev progress.Event) string {
	var b strings.Builder
	if label := r.labels[ev.JobID]; label != "" {
		b.WriteString(label)
		b.WriteByte(' ')
	}
	b.WriteString(ev.Phase)

	if ev.Terminal {
		if ev.Reason != "" && ev.Status != job.StatusCompleted {
			b.WriteString(": ")
			b.WriteString(ev.Reason)
		}
		return b.String()
	}

	if ev.Status == job.StatusDownloading {
		if ev.Indeterminate {
			b.WriteString(" ...")
		} else {
			fmt.Fprintf(&b, " %3.0f%%", ev.Percent)
		}
		if ev.Speed != "" {
			fmt.Fprintf(&b, " (%s)", ev.Speed)
		}
	}
	return b.String()
}

func padLine(line string, width int) string {
	if len(line) >= width {
		return line
	}
	return line + strings.Repeat(" ", width-len(line))
}
