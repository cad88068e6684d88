// Package pipeline drives a crawl: it fetches each target category's listing
// in priority order and feeds the pages through parsing, classification and
// ranking.
package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pevans/dailyarxiv/categories"
	"github.com/pevans/dailyarxiv/classify"
	"github.com/pevans/dailyarxiv/fetch"
	"github.com/pevans/dailyarxiv/listing"
	"github.com/pevans/dailyarxiv/papers"
	"github.com/pevans/dailyarxiv/rank"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mode selects which arXiv surface is crawled.
type Mode string

const (
	// ModeHTML crawls https://arxiv.org/list/<category>/new.
	ModeHTML Mode = "html"
	// ModeRSS crawls https://rss.arxiv.org/rss/<category>.
	ModeRSS Mode = "rss"
)

// ParseMode validates a mode name. Empty selects ModeHTML.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeHTML:
		return ModeHTML, nil
	case ModeRSS:
		return ModeRSS, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want html or rss)", s)
	}
}

// Fetcher retrieves a page by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Config holds driver settings.
type Config struct {
	Mode Mode
	// Maximum number of pages fetched ahead in parallel. Processing is
	// always sequential.
	Concurrency int
}

// DefaultConfig matches a single in-flight request.
func DefaultConfig() *Config {
	return &Config{
		Mode:        ModeHTML,
		Concurrency: 1,
	}
}

// PageError records a page that could not be fetched or parsed.
type PageError struct {
	URL      string
	Category string
	Err      error
}

func (e PageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Category, e.URL, e.Err)
}

// Result summarizes a run.
type Result struct {
	PagesProcessed int
	PagesFailed    int
	PapersEmitted  int
	Errors         []PageError
}

// Driver sequences page fetches and processing for one set of targets.
type Driver struct {
	targets categories.Set
	fetcher Fetcher
	parser  *listing.Parser
	config  *Config
	logger  *zap.Logger
}

// NewDriver creates a driver. A nil config uses DefaultConfig and a nil
// logger discards output.
func NewDriver(targets categories.Set, fetcher Fetcher, config *Config, logger *zap.Logger) *Driver {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		targets: targets,
		fetcher: fetcher,
		parser:  listing.NewParser(logger),
		config:  &cfg,
		logger:  logger,
	}
}

type target struct {
	category categories.Category
	url      string
}

func (d *Driver) plan() []target {
	ordered := d.targets.Ordered()
	plan := make([]target, 0, len(ordered))
	for _, c := range ordered {
		u := categories.ListingURL(c.Code)
		if d.config.Mode == ModeRSS {
			u = categories.FeedURL(c.Code)
		}
		plan = append(plan, target{category: c, url: u})
	}
	return plan
}

// URLs returns the pages a run fetches, in processing order.
func (d *Driver) URLs() []string {
	var urls []string
	for _, t := range d.plan() {
		urls = append(urls, t.url)
	}
	return urls
}

type fetchResult struct {
	page *fetch.Page
	err  error
}

// Run fetches and processes every target page, writing each page's ranked
// papers to sink before moving to the next. Pages are processed strictly in
// priority order with one seen set for the whole run. A failed page is
// recorded in the result and the run continues; a sink failure or
// cancellation stops the run.
func (d *Driver) Run(ctx context.Context, sink papers.Sink) (*Result, error) {
	plan := d.plan()
	classifier := classify.New(d.targets, classify.NewSeenSet(), d.logger)

	results := make([]chan fetchResult, len(plan))
	for i := range results {
		results[i] = make(chan fetchResult, 1)
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.SetLimit(d.config.Concurrency)

	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, t := range plan {
			g.Go(func() error {
				page, err := d.fetcher.Fetch(gctx, t.url)
				results[i] <- fetchResult{page: page, err: err}
				return nil
			})
		}
	}()
	defer func() {
		cancel()
		<-launched
		_ = g.Wait()
	}()

	result := &Result{}
	for i, t := range plan {
		var fr fetchResult
		select {
		case fr = <-results[i]:
		case <-ctx.Done():
			return result, ctx.Err()
		}

		logger := d.logger.With(zap.String("category", t.category.Code), zap.String("url", t.url))

		if fr.err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Error("failed to fetch page", zap.Error(fr.err))
			result.PagesFailed++
			result.Errors = append(result.Errors, PageError{URL: t.url, Category: t.category.Code, Err: fr.err})
			continue
		}

		ranked, err := d.process(fr.page, classifier)
		if err != nil {
			logger.Error("failed to parse page", zap.Error(err))
			result.PagesFailed++
			result.Errors = append(result.Errors, PageError{URL: t.url, Category: t.category.Code, Err: err})
			continue
		}

		if err := sink.Write(ctx, ranked); err != nil {
			return result, fmt.Errorf("failed to write papers: %w", err)
		}

		result.PagesProcessed++
		result.PapersEmitted += len(ranked)
		logger.Info("processed page", zap.Int("papers", len(ranked)))
	}

	return result, nil
}

// ProcessPage parses, classifies and ranks a single fetched page against a
// seen set. It is the per-page body of Run.
func (d *Driver) ProcessPage(page *fetch.Page, seen *classify.SeenSet) ([]papers.Paper, error) {
	return d.process(page, classify.New(d.targets, seen, d.logger))
}

func (d *Driver) process(page *fetch.Page, classifier *classify.Classifier) ([]papers.Paper, error) {
	var parsed *listing.Page
	var err error

	switch d.config.Mode {
	case ModeRSS:
		parsed, err = d.parser.ParseFeed(bytes.NewReader(page.Body), page.URL)
	default:
		parsed, err = d.parser.ParseHTML(bytes.NewReader(page.Body), page.URL)
	}
	if err != nil {
		return nil, err
	}

	return rank.Papers(classifier.Classify(parsed)), nil
}
