package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"reel/internal/pipeline"
)

// progressTemplate makes yt-dlp emit its whole progress dict as one JSON
// document per line; everything else on the stream stays plain text.
const progressTemplate = "download:%(progress)j"

const outputTailLines = 8

type progressPayload struct {
	Status             string  `json:"status"`
	DownloadedBytes    float64 `json:"downloaded_bytes"`
	TotalBytes         float64 `json:"total_bytes"`
	TotalBytesEstimate float64 `json:"total_bytes_estimate"`
	Speed              float64 `json:"speed"`
}

// Execute renders the pipeline spec into extractor arguments and runs the
// download. Progress lines are decoded and handed to onProgress; a false
// return stops the tool and yields ErrAborted.
func (c *CLI) Execute(ctx context.Context, url string, spec pipeline.Spec, onProgress func(Event) bool) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("url required")
	}
	if spec.Format == "" {
		return errors.New("pipeline spec missing format selection")
	}

	args := c.renderArgs(spec)
	args = append(args, url)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start yt-dlp: %w", err)
	}

	var tail []string
	aborted := false

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var payload progressPayload
		if err := json.Unmarshal(line, &payload); err != nil || payload.Status == "" {
			tail = appendTail(tail, string(line))
			continue
		}
		if aborted || onProgress == nil {
			continue
		}
		if !onProgress(payloadEvent(payload)) {
			aborted = true
			interrupt(cmd)
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if aborted {
		return fmt.Errorf("%w: extractor interrupted after cancel request", ErrAborted)
	}
	if scanErr != nil {
		return fmt.Errorf("read yt-dlp output: %w", scanErr)
	}
	if waitErr != nil {
		if detail := strings.Join(tail, " | "); detail != "" {
			return fmt.Errorf("yt-dlp failed: %w: %s", waitErr, detail)
		}
		return fmt.Errorf("yt-dlp failed: %w", waitErr)
	}
	return nil
}

func payloadEvent(p progressPayload) Event {
	total := int64(p.TotalBytes)
	if total == 0 {
		total = int64(p.TotalBytesEstimate)
	}
	return Event{
		Phase:           p.Status,
		DownloadedBytes: int64(p.DownloadedBytes),
		TotalBytes:      total,
		SpeedBps:        p.Speed,
	}
}

func appendTail(tail []string, line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return tail
	}
	tail = append(tail, line)
	if len(tail) > outputTailLines {
		tail = tail[len(tail)-outputTailLines:]
	}
	return tail
}

func interrupt(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(os.Interrupt)
}
