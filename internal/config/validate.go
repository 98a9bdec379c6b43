package config

import (
	"errors"
	"fmt"
	"strings"

	"reel/internal/media"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDownloads(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if c.Downloads.MaxConcurrent <= 0 {
		return errors.New("downloads.max_concurrent must be positive")
	}
	if _, ok := media.OutputTemplate(c.Downloads.OutputTemplate); !ok {
		return fmt.Errorf("downloads.output_template %q is not a known template (choose from %s)",
			c.Downloads.OutputTemplate, strings.Join(media.OutputTemplates(), ", "))
	}
	return nil
}

// Loudnorm target bounds accepted by the ffmpeg filter.
func (c *Config) validateAudio() error {
	if c.Audio.NormalizeIntegrated < -70 || c.Audio.NormalizeIntegrated > -5 {
		return errors.New("audio.normalize_integrated must be between -70 and -5 LUFS")
	}
	if c.Audio.NormalizeTruePeak < -9 || c.Audio.NormalizeTruePeak > 0 {
		return errors.New("audio.normalize_true_peak must be between -9 and 0 dBTP")
	}
	if c.Audio.NormalizeRange < 1 || c.Audio.NormalizeRange > 50 {
		return errors.New("audio.normalize_range must be between 1 and 50 LU")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
