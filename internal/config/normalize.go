package config

import (
	"fmt"
	"strings"

	"reel/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownloads()
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownloads() {
	if c.Downloads.ResolveTimeout <= 0 {
		c.Downloads.ResolveTimeout = defaultResolveTimeout
	}
	if c.Downloads.ResolveTimeout < minResolveTimeout {
		c.Downloads.ResolveTimeout = minResolveTimeout
	}
	if c.Downloads.ResolveTimeout > maxResolveTimeout {
		c.Downloads.ResolveTimeout = maxResolveTimeout
	}
	c.Downloads.OutputTemplate = strings.ToLower(strings.TrimSpace(c.Downloads.OutputTemplate))
	langs := language.NormalizeList(c.Downloads.SubtitleLanguages)
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	c.Downloads.SubtitleLanguages = langs
}

func (c *Config) normalizeTools() error {
	var err error
	c.Tools.YtDlpBin = strings.TrimSpace(c.Tools.YtDlpBin)
	if strings.Contains(c.Tools.YtDlpBin, "/") {
		if c.Tools.YtDlpBin, err = expandPath(c.Tools.YtDlpBin); err != nil {
			return fmt.Errorf("tools.yt_dlp_bin: %w", err)
		}
	}
	c.Tools.FFmpegBin = strings.TrimSpace(c.Tools.FFmpegBin)
	if strings.Contains(c.Tools.FFmpegBin, "/") {
		if c.Tools.FFmpegBin, err = expandPath(c.Tools.FFmpegBin); err != nil {
			return fmt.Errorf("tools.ffmpeg_bin: %w", err)
		}
	}
	c.Tools.CookiesFromBrowser = strings.ToLower(strings.TrimSpace(c.Tools.CookiesFromBrowser))
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
