package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/dailyarxiv/archive"
	"github.com/pevans/dailyarxiv/fetch"
	"github.com/pevans/dailyarxiv/papers"
	"github.com/pevans/dailyarxiv/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var crawlFlags struct {
	categories  string
	mode        string
	out         string
	dir         string
	archive     string
	concurrency int
}

func init() {
	f := crawlCmd.Flags()
	f.StringVar(&crawlFlags.categories, "categories", "", "Comma-separated categories (overrides CATEGORIES)")
	f.StringVar(&crawlFlags.mode, "mode", "", "Listing source: html or rss")
	f.StringVar(&crawlFlags.out, "out", "", "JSON lines output file, - for stdout")
	f.StringVar(&crawlFlags.dir, "dir", "", "Also store each paper as a JSON file in this directory")
	f.StringVar(&crawlFlags.archive, "archive", "", "Also record the run in this SQLite archive")
	f.IntVar(&crawlFlags.concurrency, "concurrency", 0, "Pages fetched ahead in parallel")

	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetch today's listings and emit matching papers",
	Long: `Fetch the listing of every target category in priority order and emit
the matching papers, one JSON object per line.

Example:
  CATEGORIES=math.QA,math.RT dailyarxiv crawl --archive papers.db`,
	Args: cobra.NoArgs,
	RunE: runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if crawlFlags.categories != "" {
		cfg.Categories = crawlFlags.categories
	}
	if crawlFlags.mode != "" {
		cfg.Mode = crawlFlags.mode
	}
	if crawlFlags.out != "" {
		cfg.Output.Path = crawlFlags.out
	}
	if crawlFlags.dir != "" {
		cfg.Output.Dir = crawlFlags.dir
	}
	if crawlFlags.archive != "" {
		cfg.Archive.DSN = crawlFlags.archive
	}
	if crawlFlags.concurrency > 0 {
		cfg.Concurrency = crawlFlags.concurrency
	}

	mode, err := pipeline.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	targets := cfg.CategorySet()

	out, closeOut, err := openOutput(cfg.Output.Path)
	if err != nil {
		return err
	}
	defer closeOut()

	sinks := papers.MultiSink{papers.NewJSONLines(out)}

	if cfg.Output.Dir != "" {
		dir, err := papers.NewDir(cfg.Output.Dir)
		if err != nil {
			return err
		}
		sinks = append(sinks, dir)
	}

	var store *archive.Store
	if cfg.Archive.DSN != "" {
		store, err = archive.NewStore(cfg.Archive.DSN)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer store.Close()

		run, err := store.BeginRun(targets.Codes())
		if err != nil {
			return err
		}
		logger.Info("archiving run", zap.String("run_id", run.RunID.String()))
		sinks = append(sinks, store)
	}

	fetcher := fetch.NewClient(
		fetch.WithInterval(cfg.RateInterval),
		fetch.WithHTTPClient(newHTTPClient(cfg.Timeout)),
	)
	driver := pipeline.NewDriver(targets, fetcher, &pipeline.Config{
		Mode:        mode,
		Concurrency: cfg.Concurrency,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting crawl",
		zap.Strings("categories", targets.Codes()),
		zap.String("mode", string(mode)),
	)

	result, err := driver.Run(ctx, sinks)

	if store != nil {
		if _, ferr := store.FinishRun(); ferr != nil {
			logger.Error("failed to finish archive run", zap.Error(ferr))
		}
	}

	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	logger.Info("crawl completed",
		zap.Int("pages_processed", result.PagesProcessed),
		zap.Int("pages_failed", result.PagesFailed),
		zap.Int("papers_emitted", result.PapersEmitted),
	)

	if result.PagesFailed > 0 {
		return fmt.Errorf("%d of %d pages failed", result.PagesFailed, result.PagesFailed+result.PagesProcessed)
	}

	return nil
}

// openOutput opens the JSON lines destination. Empty or "-" is stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
