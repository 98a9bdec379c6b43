package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reel/internal/history"
	"reel/internal/job"
	"reel/internal/logging"
	"reel/internal/notifications"
	"reel/internal/presets"
	"reel/internal/scheduler"
)

type batchItem struct {
	index  int
	url    string
	id     string
	status job.Status
	reason string
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Download every URL listed in a file",
		Long: `Download every URL in FILE through the bounded scheduler. One URL per
line; blank lines and lines starting with # are skipped. Pass - to read
the list from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, f, args[0])
		},
	}

	f.register(cmd)
	return cmd
}

func runBatch(cmd *cobra.Command, ctx *commandContext, f jobFlags, source string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	urls, err := readBatchURLs(source, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", displaySource(source))
	}

	store := presets.NewStore(cfg)
	items := make([]*batchItem, 0, len(urls))
	configs := make([]job.Config, 0, len(urls))
	for i, url := range urls {
		draft, warnings, err := buildJobDraft(cfg, store, cmd, f, url)
		if err != nil {
			return fmt.Errorf("url %d (%s): %w", i+1, url, err)
		}
		if i == 0 {
			for _, warning := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", warning)
			}
		}
		jobCfg, err := job.New(draft)
		if err != nil {
			return fmt.Errorf("url %d (%s): %w", i+1, url, err)
		}
		configs = append(configs, jobCfg)
		items = append(items, &batchItem{index: i + 1, url: url, id: jobCfg.ID})
	}

	if err := gatePreflight(cmd, cfg, configs[0].OutputDir); err != nil {
		return err
	}

	logger, err := ctx.runLogger()
	if err != nil {
		return err
	}
	hist, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	out := cmd.OutOrStdout()
	sched := scheduler.New(cfg, logger, scheduler.WithHistory(hist))
	renderer := newProgressRenderer(out)
	byID := make(map[string]*batchItem, len(items))

	started := time.Now()
	for i, item := range items {
		byID[item.id] = item
		label := fmt.Sprintf("[%d/%d]", item.index, len(items))
		renderer.SetLabel(item.id, label)
		fmt.Fprintf(out, "%s %s\n", label, item.url)
		if _, err := sched.Submit(configs[i]); err != nil {
			return err
		}
	}

	go func() {
		sched.Wait()
		sched.Close()
	}()

	stop := watchInterrupt(sched, cmd.ErrOrStderr())
	defer stop()

	for ev := range sched.Events() {
		renderer.Observe(ev)
		if !ev.Terminal {
			continue
		}
		if item, ok := byID[ev.JobID]; ok {
			item.status = ev.Status
			item.reason = ev.Reason
		}
	}

	completed, failed, cancelled := 0, 0, 0
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		switch item.status {
		case job.StatusCompleted:
			completed++
		case job.StatusCancelled:
			cancelled++
		default:
			failed++
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.index),
			truncate(item.url, 60),
			item.status.Display(),
			truncate(item.reason, 48),
		})
	}

	elapsed := time.Since(started)
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "URL", "Status", "Reason"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d completed, %d failed, %d cancelled in %s\n",
		completed, failed, cancelled, formatElapsed(elapsed))

	notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := notifications.NewService(cfg).NotifyBatchCompleted(notifyCtx, completed, failed, elapsed); err != nil {
		logger.Debug("batch notification failed", logging.Error(err))
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d downloads failed", failed, len(items))
	case cancelled > 0:
		return context.Canceled
	}
	return nil
}

func readBatchURLs(source string, stdin io.Reader) ([]string, error) {
	var reader io.Reader
	if source == "-" {
		reader = stdin
	} else {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var urls []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch input: %w", err)
	}
	return urls, nil
}

func displaySource(source string) string {
	if source == "-" {
		return "stdin"
	}
	return source
}
