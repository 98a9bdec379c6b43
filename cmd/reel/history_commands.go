package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reel/internal/history"
	"reel/internal/job"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded download outcomes",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]job.Status, 0, len(statusFilters))
			for _, raw := range statusFilters {
				status, ok := job.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				statuses = append(statuses, status)
			}

			return ctx.withHistory(func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, historyRow(entry))
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Finished", "Title", "Format", "Status", "Size", "Time", "Job"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 shows everything)")
	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by terminal status (repeatable)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB",
		Short: "Show one recorded download by job ID or prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				entry, err := findHistoryEntry(cmd, store, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				write := func(field, value string) {
					if value != "" {
						fmt.Fprintf(out, "%-10s %s\n", field+":", value)
					}
				}
				write("Job", entry.JobID)
				write("URL", entry.URL)
				write("Title", entry.Title)
				write("Format", fmt.Sprintf("%s (%s)", entry.Container, entry.MediaType))
				write("Status", entry.Status.Display())
				write("Reason", entry.Reason)
				if entry.Bytes > 0 {
					write("Size", humanize.IBytes(uint64(entry.Bytes)))
				}
				write("Elapsed", formatElapsed(entry.Elapsed))
				if !entry.FinishedAt.IsZero() {
					write("Finished", entry.FinishedAt.Local().Format("2006-01-02 15:04:05"))
				}
				for i, file := range entry.Files {
					field := ""
					if i == 0 {
						field = "Files:"
					}
					fmt.Fprintf(out, "%-10s %s\n", field, file)
				}
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show history totals by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
					return nil
				}

				keys := make([]string, 0, len(stats))
				for status := range stats {
					keys = append(keys, string(status))
				}
				sort.Strings(keys)

				rows := make([][]string, 0, len(keys))
				for _, key := range keys {
					status := job.Status(key)
					rows = append(rows, []string{status.Display(), fmt.Sprintf("%d", stats[status])})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Status", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove history entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				var removed int64
				var err error
				if failedOnly {
					removed, err = store.ClearFailed(cmd.Context())
				} else {
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				label := "entries"
				if failedOnly {
					label = "failed entries"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Remove only failed entries")
	return cmd
}

func historyRow(entry history.Entry) []string {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = entry.URL
	}
	size := ""
	if entry.Bytes > 0 {
		size = humanize.IBytes(uint64(entry.Bytes))
	}
	return []string{
		entry.FinishedAt.Local().Format("2006-01-02 15:04"),
		truncate(title, 40),
		entry.Container,
		entry.Status.Display(),
		size,
		formatElapsed(entry.Elapsed),
		shortJobID(entry.JobID),
	}
}

func findHistoryEntry(cmd *cobra.Command, store *history.Store, ref string) (history.Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return history.Entry{}, errors.New("job id is required")
	}
	entries, err := store.List(cmd.Context(), 0)
	if err != nil {
		return history.Entry{}, err
	}

	var matches []history.Entry
	for _, entry := range entries {
		if entry.JobID == ref {
			return entry, nil
		}
		if strings.HasPrefix(entry.JobID, ref) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		return history.Entry{}, fmt.Errorf("no history entry matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return history.Entry{}, fmt.Errorf("job id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
