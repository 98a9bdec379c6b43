package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reel/internal/media"
)

type infoPayload struct {
	Type        string            `json:"_type"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	Album       string            `json:"album"`
	Track       string            `json:"track"`
	Channel     string            `json:"channel"`
	Uploader    string            `json:"uploader"`
	Description string            `json:"description"`
	Thumbnail   string            `json:"thumbnail"`
	UploadDate  string            `json:"upload_date"`
	Duration    float64           `json:"duration"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	FPS         float64           `json:"fps"`
	Entries     []json.RawMessage `json:"entries"`
}

// Resolve probes the URL and returns its source metadata without downloading
// anything. The caller bounds the call with a context deadline.
func (c *CLI) Resolve(ctx context.Context, url string, opts ResolveOptions) (*media.Info, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("url required")
	}

	args := []string{"-J", "--no-warnings"}
	if opts.Playlist {
		args = append(args, "--yes-playlist")
	} else {
		args = append(args, "--no-playlist")
	}
	if opts.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", opts.CookiesFromBrowser)
	}
	args = append(args, url)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("probe timed out: %w", ctx.Err())
		}
		if detail := lastLine(stderr.String()); detail != "" {
			return nil, fmt.Errorf("yt-dlp probe failed: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("yt-dlp probe failed: %w", err)
	}

	var payload infoPayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &media.Info{
		Title:        payload.Title,
		Artist:       payload.Artist,
		Album:        payload.Album,
		Track:        payload.Track,
		Channel:      payload.Channel,
		Uploader:     payload.Uploader,
		Description:  payload.Description,
		ThumbnailURL: payload.Thumbnail,
		UploadDate:   payload.UploadDate,
		Duration:     time.Duration(payload.Duration * float64(time.Second)),
		Width:        payload.Width,
		Height:       payload.Height,
		FPS:          payload.FPS,
	}
	if payload.Type == "playlist" {
		info.Playlist = true
		info.EntryCount = len(payload.Entries)
	}
	return info, nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
