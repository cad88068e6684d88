package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Parser extracts candidates from listing pages and feeds.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser. A nil logger discards output.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseHTML reads listing page markup and extracts its candidates. Only a
// failure to read the markup is an error; malformed entries are dropped.
func (p *Parser) ParseHTML(r io.Reader, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.ParseDocument(doc, pageURL), nil
}

// ParseDocument extracts candidates from an already parsed listing page.
func (p *Parser) ParseDocument(doc *goquery.Document, pageURL string) *Page {
	source := SourceCategory(pageURL)
	logger := p.logger.With(zap.String("page", source))

	return &Page{
		URL:            pageURL,
		SourceCategory: source,
		Candidates:     Fold(Blocks(doc), pageURL, logger),
	}
}

// Blocks returns the h3 and dl children of #dlpage as typed blocks in
// document order. Headings nested directly inside a dl split it into
// separate entry lists, so both the flat and the nested page layouts yield
// the same sequence.
func Blocks(doc *goquery.Document) []Block {
	var blocks []Block

	doc.Find("div#dlpage").First().Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h3":
			blocks = append(blocks, headingBlock(s))
		case "dl":
			blocks = append(blocks, dlBlocks(s)...)
		}
	})

	return blocks
}

func headingBlock(s *goquery.Selection) Heading {
	text := strings.TrimSpace(s.Text())
	return Heading{Text: text, Section: SectionFor(text)}
}

// dlBlocks pairs the dt and dd children of a dl in order. An h3 child closes
// the current pairing and emits a Heading.
func dlBlocks(dl *goquery.Selection) []Block {
	var blocks []Block
	var dts, dds []*goquery.Selection

	flush := func() {
		n := min(len(dts), len(dds))
		if n > 0 {
			list := EntryList{Entries: make([]RawEntry, 0, n)}
			for i := range n {
				list.Entries = append(list.Entries, rawEntry(dts[i], dds[i]))
			}
			blocks = append(blocks, list)
		}
		dts, dds = nil, nil
	}

	dl.Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "dt":
			dts = append(dts, s)
		case "dd":
			dds = append(dds, s)
		case "h3":
			flush()
			blocks = append(blocks, headingBlock(s))
		}
	})
	flush()

	return blocks
}

func rawEntry(dt, dd *goquery.Selection) RawEntry {
	href, ok := dt.Find("a[title='Abstract']").First().Attr("href")
	if !ok || href == "" {
		href, _ = dt.Find("a[href*='/abs/']").First().Attr("href")
	}

	return RawEntry{
		AbsHref:      strings.TrimSpace(href),
		SubjectsText: subjectsText(dd.Find(".list-subjects")),
	}
}

// subjectsText joins every trimmed, non-empty text node under s with single
// spaces.
func subjectsText(s *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}
