package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/dailyarxiv/papers"
	"go.uber.org/zap"
)

// SectionForAnnounceType maps an arxiv:announce_type value from the RSS feed
// to a section.
func SectionForAnnounceType(announceType string) Section {
	switch strings.ToLower(strings.TrimSpace(announceType)) {
	case "new":
		return SectionNew
	case "cross":
		return SectionCross
	case "replace", "replace-cross":
		return SectionReplacement
	default:
		return SectionUnknown
	}
}

// ParseFeed reads the daily RSS feed for a category and extracts its
// candidates. Feed items carry their section in arxiv:announce_type instead of
// page headings, and their category codes as bare <category> elements.
func (p *Parser) ParseFeed(r io.Reader, feedURL string) (*Page, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return p.ParseGofeed(feed, feedURL), nil
}

// ParseGofeed extracts candidates from an already parsed feed.
func (p *Parser) ParseGofeed(feed *gofeed.Feed, feedURL string) *Page {
	source := FeedCategory(feedURL)
	logger := p.logger.With(zap.String("feed", source))

	page := &Page{URL: feedURL, SourceCategory: source}
	for _, item := range feed.Items {
		c, ok := feedCandidate(item, logger)
		if ok {
			page.Candidates = append(page.Candidates, c)
		}
	}
	return page
}

func feedCandidate(item *gofeed.Item, logger *zap.Logger) (Candidate, bool) {
	absURL := strings.TrimSpace(item.Link)
	id, ok := ExtractID(absURL)
	if !ok {
		logger.Debug("skipping feed item with unrecognized link", zap.String("link", absURL))
		return Candidate{}, false
	}

	codes := map[string]struct{}{}
	var subjects []string
	for _, c := range item.Categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		subjects = append(subjects, c)
		if bareCodePattern.MatchString(c) {
			codes[c] = struct{}{}
		}
	}

	return Candidate{
		ID:           id,
		AbsURL:       absURL,
		PDFURL:       papers.PDFURL(absURL),
		Categories:   codes,
		SubjectsText: strings.Join(subjects, " "),
		Section:      SectionForAnnounceType(announceType(item)),
	}, true
}

func announceType(item *gofeed.Item) string {
	ns, ok := item.Extensions["arxiv"]
	if !ok {
		return ""
	}
	values := ns["announce_type"]
	if len(values) == 0 {
		return ""
	}
	return values[0].Value
}
