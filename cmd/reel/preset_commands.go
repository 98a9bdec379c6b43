package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reel/internal/job"
	"reel/internal/media"
	"reel/internal/presets"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage named download presets",
	}

	presetsCmd.AddCommand(newPresetsListCommand(ctx))
	presetsCmd.AddCommand(newPresetsShowCommand(ctx))
	presetsCmd.AddCommand(newPresetsSaveCommand(ctx))
	presetsCmd.AddCommand(newPresetsDeleteCommand(ctx))

	return presetsCmd
}

func newPresetsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			named, err := presets.NewStore(cfg).List()
			if err != nil {
				return err
			}
			if len(named) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No presets saved")
				return nil
			}

			rows := make([][]string, 0, len(named))
			for _, entry := range named {
				rows = append(rows, []string{
					entry.Name,
					entry.Preset.MediaType,
					entry.Preset.Container,
					presetBitrate(entry.Preset),
					entry.Preset.Quality,
					entry.Preset.OutputTemplate,
					presetOptions(entry.Preset),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Media", "Format", "Bitrate", "Quality", "Template", "Options"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newPresetsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show one preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			preset, ok, err := presets.NewStore(cfg).Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("preset %q not found", args[0])
			}

			out := cmd.OutOrStdout()
			write := func(field, value string) {
				if value != "" {
					fmt.Fprintf(out, "%-14s %s\n", field+":", value)
				}
			}
			write("Name", strings.ToLower(strings.TrimSpace(args[0])))
			write("Media type", preset.MediaType)
			write("Container", preset.Container)
			write("Audio codec", preset.AudioCodec)
			write("Video codec", preset.VideoCodec)
			write("Quality", preset.Quality)
			if preset.BitrateKbps > 0 {
				write("Bitrate", strconv.Itoa(preset.BitrateKbps)+" kbps")
			}
			if preset.SampleRateHz > 0 {
				write("Sample rate", strconv.Itoa(preset.SampleRateHz)+" Hz")
			}
			write("Template", preset.OutputTemplate)
			write("Options", presetOptions(preset))
			return nil
		},
	}
}

func newPresetsSaveCommand(ctx *commandContext) *cobra.Command {
	var p presets.Preset

	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save or replace a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := validatePreset(p); err != nil {
				return err
			}
			store := presets.NewStore(cfg)
			if err := store.Save(args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s to %s\n",
				strings.ToLower(strings.TrimSpace(args[0])), store.Path())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&p.MediaType, "media-type", "", "Media type: audio or video")
	flags.StringVarP(&p.Container, "format", "f", "", "Target container")
	flags.StringVar(&p.AudioCodec, "audio-codec", "", "Preferred audio codec family")
	flags.StringVar(&p.VideoCodec, "video-codec", "", "Preferred video codec family")
	flags.StringVarP(&p.Quality, "quality", "q", "", "Resolution ceiling for video jobs")
	flags.IntVarP(&p.BitrateKbps, "bitrate", "b", 0, "Audio bitrate in kbps")
	flags.IntVar(&p.SampleRateHz, "sample-rate", 0, "Audio resample target in Hz")
	flags.StringVarP(&p.OutputTemplate, "template", "t", "", "Named output template")
	flags.BoolVarP(&p.Normalize, "normalize", "n", false, "Normalize audio loudness")
	flags.BoolVar(&p.EmbedMetadata, "embed-metadata", false, "Embed tags into the output file")
	flags.BoolVar(&p.EmbedThumbnail, "embed-thumbnail", false, "Embed the source thumbnail as cover art")
	flags.BoolVar(&p.EmbedSubtitles, "embed-subs", false, "Embed subtitle tracks")
	flags.BoolVar(&p.Playlist, "playlist", false, "Expand playlists")
	flags.BoolVar(&p.BrowserCookies, "cookies", false, "Send browser cookies to the extractor")
	return cmd
}

func newPresetsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			removed, err := presets.NewStore(cfg).Delete(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("preset %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", strings.ToLower(strings.TrimSpace(args[0])))
			return nil
		},
	}
}

// validatePreset rejects values job.New would refuse later, so a bad preset
// fails at save time instead of at download time.
func validatePreset(p presets.Preset) error {
	if p.MediaType != "" {
		if _, ok := job.ParseMediaType(p.MediaType); !ok {
			return fmt.Errorf("unknown media type %q", p.MediaType)
		}
	}
	if p.Container != "" {
		container := media.NormalizeContainer(p.Container)
		if !media.IsAudioContainer(container) && !media.IsVideoContainer(container) {
			return fmt.Errorf("unknown container %q", p.Container)
		}
	}
	if p.AudioCodec != "" {
		if _, ok := media.AudioCodecPrefix(p.AudioCodec); !ok {
			return fmt.Errorf("unknown audio codec %q", p.AudioCodec)
		}
	}
	if p.VideoCodec != "" {
		if _, ok := media.VideoCodecPrefix(p.VideoCodec); !ok {
			return fmt.Errorf("unknown video codec %q", p.VideoCodec)
		}
	}
	if p.Quality != "" {
		if _, ok := media.QualityHeight(p.Quality); !ok {
			return fmt.Errorf("unknown quality preset %q", p.Quality)
		}
	}
	if p.OutputTemplate != "" {
		if _, ok := media.OutputTemplate(p.OutputTemplate); !ok {
			return fmt.Errorf("unknown output template %q", p.OutputTemplate)
		}
	}
	if p.BitrateKbps < 0 {
		return fmt.Errorf("bitrate must not be negative, got %d", p.BitrateKbps)
	}
	if p.SampleRateHz < 0 {
		return fmt.Errorf("sample rate must not be negative, got %d", p.SampleRateHz)
	}
	return nil
}

func presetBitrate(p presets.Preset) string {
	if p.BitrateKbps <= 0 {
		return ""
	}
	return strconv.Itoa(p.BitrateKbps)
}

func presetOptions(p presets.Preset) string {
	var opts []string
	if p.Normalize {
		opts = append(opts, "normalize")
	}
	if p.EmbedMetadata {
		opts = append(opts, "metadata")
	}
	if p.EmbedThumbnail {
		opts = append(opts, "thumbnail")
	}
	if p.EmbedSubtitles {
		opts = append(opts, "subs")
	}
	if p.Playlist {
		opts = append(opts, "playlist")
	}
	if p.BrowserCookies {
		opts = append(opts, "cookies")
	}
	return strings.Join(opts, ", ")
}
