package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/media"
	"reel/internal/services/ytdlp"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var playlist bool
	var cookies bool

	cmd := &cobra.Command{
		Use:   "probe URL",
		Short: "Resolve source metadata without downloading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := ytdlp.NewCLI(
				ytdlp.WithBinary(cfg.YtDlpBinary()),
				ytdlp.WithFFmpeg(cfg.FFmpegBinary()),
			)
			timeout := time.Duration(cfg.Downloads.ResolveTimeout) * time.Second
			resolveCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			info, err := client.Resolve(resolveCtx, args[0], ytdlp.ResolveOptions{
				Playlist:           playlist,
				CookiesFromBrowser: browserCookieSource(cfg, cookies),
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, info)
			}
			printInfo(cmd, args[0], info)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the metadata as JSON")
	cmd.Flags().BoolVar(&playlist, "playlist", false, "Resolve the whole playlist instead of the first entry")
	cmd.Flags().BoolVar(&cookies, "cookies", false, "Send browser cookies to the extractor")
	return cmd
}

func printInfo(cmd *cobra.Command, url string, info *media.Info) {
	rows := [][]string{
		{"URL", url},
		{"Title", info.DisplayTitle()},
	}
	appendRow := func(field, value string) {
		if strings.TrimSpace(value) != "" {
			rows = append(rows, []string{field, value})
		}
	}

	appendRow("Artist", info.Artist)
	appendRow("Album", info.Album)
	appendRow("Channel", info.Channel)
	if info.Channel == "" {
		appendRow("Uploader", info.Uploader)
	}
	if info.Duration > 0 {
		appendRow("Duration", formatElapsed(info.Duration))
	}
	if info.Width > 0 && info.Height > 0 {
		resolution := fmt.Sprintf("%dx%d", info.Width, info.Height)
		if info.FPS > 0 {
			resolution += fmt.Sprintf(" @ %g fps", info.FPS)
		}
		appendRow("Resolution", resolution)
	}
	appendRow("Upload date", info.UploadDate)
	if info.Playlist {
		appendRow("Playlist", fmt.Sprintf("yes (%d entries)", info.EntryCount))
	}
	appendRow("Description", truncate(strings.ReplaceAll(info.Description, "\n", " "), 100))

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Field", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignLeft},
	))
}
