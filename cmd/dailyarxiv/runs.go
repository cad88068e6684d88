package main

import (
	"fmt"
	"strings"

	"github.com/pevans/dailyarxiv/archive"
	"github.com/spf13/cobra"
)

var runsArchive string

func init() {
	runsCmd.Flags().StringVar(&runsArchive, "archive", "", "SQLite archive (default: DAILYARXIV_ARCHIVE_DSN)")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived crawl runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	dsn := runsArchive
	if dsn == "" {
		dsn = cfg.Archive.DSN
	}
	if dsn == "" {
		return fmt.Errorf("--archive is required")
	}

	store, err := archive.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs archived.")
		return nil
	}

	fmt.Printf("%-36s %-20s %-8s %s\n", "RUN ID", "STARTED", "PAPERS", "CATEGORIES")
	fmt.Println(strings.Repeat("-", 100))

	for _, run := range runs {
		status := ""
		if run.FinishedAt == nil {
			status = " (unfinished)"
		}
		fmt.Printf("%-36s %-20s %-8d %s%s\n",
			run.RunID.String(),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.PapersEmitted,
			truncate(strings.Join(run.Categories, ","), 40),
			status,
		)
	}

	return nil
}
