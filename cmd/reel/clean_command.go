package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reel/internal/logging"
	"reel/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun bool
		maxAge time.Duration
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove orphaned job sandboxes and prune old logs",
		Long: "Clean removes leftover download sandboxes from the destination and\n" +
			"prunes log files past the retention window. The whole pass is skipped\n" +
			"while any download holds the sandbox lock, so running it alongside\n" +
			"active jobs is safe.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dryRun {
				return listSandboxes(cmd, cfg.Paths.OutputDir)
			}

			logger, err := ctx.runLogger()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result := staging.CleanOrphaned(cmd.Context(), cfg.Paths.OutputDir, maxAge, logger)
			if result.Skipped {
				fmt.Fprintln(out, "Downloads in progress; nothing removed")
				return nil
			}
			if len(result.Removed) == 0 {
				fmt.Fprintln(out, "No orphaned sandboxes found")
			} else {
				fmt.Fprintf(out, "Removed %d orphaned sandboxes\n", len(result.Removed))
			}
			if result.Kept > 0 {
				fmt.Fprintf(out, "Kept %d newer than %s\n", result.Kept, maxAge)
			}
			for _, failure := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to remove %s: %v\n", failure.Path, failure.Error)
			}

			if cfg.Logging.RetentionDays > 0 && cfg.Paths.LogDir != "" {
				logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
					Dir:     cfg.Paths.LogDir,
					Pattern: "*.log",
					Exclude: []string{filepath.Join(cfg.Paths.LogDir, "reel.log")},
				})
				fmt.Fprintf(out, "Pruned logs older than %d days\n", cfg.Logging.RetentionDays)
			}

			if len(result.Errors) > 0 {
				return fmt.Errorf("cleanup finished with %d errors", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List sandboxes without removing anything")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Only remove sandboxes older than this (e.g. 24h)")
	return cmd
}

func listSandboxes(cmd *cobra.Command, outputDir string) error {
	dirs, err := staging.ListSandboxes(outputDir)
	if err != nil {
		return fmt.Errorf("list sandboxes: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(dirs) == 0 {
		fmt.Fprintln(out, "No job sandboxes found")
		return nil
	}

	rows := make([][]string, 0, len(dirs))
	var total int64
	for _, dir := range dirs {
		rows = append(rows, []string{
			dir.Name,
			formatAge(time.Since(dir.ModTime)),
			humanize.IBytes(uint64(dir.Size)),
		})
		total += dir.Size
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Job", "Age", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	))
	fmt.Fprintf(out, "%d sandboxes, %s total\n", len(dirs), humanize.IBytes(uint64(total)))
	return nil
}
