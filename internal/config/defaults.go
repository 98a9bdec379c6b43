package config

import "reel/internal/media"

const (
	defaultOutputDir          = "~/Downloads"
	defaultStateDir           = "~/.local/share/reel"
	defaultLogDir             = "~/.local/share/reel/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	defaultMaxConcurrent      = 3
	defaultResolveTimeout     = 15
	minResolveTimeout         = 5
	maxResolveTimeout         = 30
	defaultCookiesFromBrowser = "firefox"
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Downloads: Downloads{
			MaxConcurrent:     defaultMaxConcurrent,
			ResolveTimeout:    defaultResolveTimeout,
			OutputTemplate:    media.DefaultTemplate,
			SubtitleLanguages: []string{"en"},
		},
		Audio: Audio{
			NormalizeIntegrated: media.LoudnessIntegratedDefault,
			NormalizeTruePeak:   media.LoudnessTruePeakDefault,
			NormalizeRange:      media.LoudnessRangeDefault,
		},
		Tools: Tools{
			CookiesFromBrowser: defaultCookiesFromBrowser,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Failed:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
