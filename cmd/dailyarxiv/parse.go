package main

import (
	"fmt"
	"os"

	"github.com/pevans/dailyarxiv/categories"
	"github.com/pevans/dailyarxiv/classify"
	"github.com/pevans/dailyarxiv/fetch"
	"github.com/pevans/dailyarxiv/papers"
	"github.com/pevans/dailyarxiv/pipeline"
	"github.com/spf13/cobra"
)

var parseFlags struct {
	url        string
	categories string
	mode       string
}

func init() {
	f := parseCmd.Flags()
	f.StringVar(&parseFlags.url, "url", "", "URL the page was fetched from (default: listing URL of the first target)")
	f.StringVar(&parseFlags.categories, "categories", "", "Comma-separated categories (overrides CATEGORIES)")
	f.StringVar(&parseFlags.mode, "mode", "", "Page type: html or rss")

	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Run the filter and ranking on a saved listing page",
	Long: `Parse a listing page saved to disk and print the papers a crawl would
emit for it. The page URL determines the source category.

Example:
  dailyarxiv parse new.html --url https://arxiv.org/list/math.QA/new --categories math.QA`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseFlags.categories != "" {
		cfg.Categories = parseFlags.categories
	}
	if parseFlags.mode != "" {
		cfg.Mode = parseFlags.mode
	}

	mode, err := pipeline.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	targets := cfg.CategorySet()

	pageURL := parseFlags.url
	if pageURL == "" {
		first := targets.Ordered()[0].Code
		pageURL = categories.ListingURL(first)
		if mode == pipeline.ModeRSS {
			pageURL = categories.FeedURL(first)
		}
	}

	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}

	driver := pipeline.NewDriver(targets, nil, &pipeline.Config{Mode: mode}, logger)
	ps, err := driver.ProcessPage(&fetch.Page{URL: pageURL, Body: body}, classify.NewSeenSet())
	if err != nil {
		return err
	}

	return papers.NewJSONLines(cmd.OutOrStdout()).Write(cmd.Context(), ps)
}
