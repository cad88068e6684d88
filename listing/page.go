// Package listing turns arXiv "new submissions" pages into paper candidates.
//
// A page is modelled as an ordered sequence of blocks: section headings and
// entry lists. The section rank of an entry depends on the last heading seen
// before it, so candidates are produced by folding over the blocks in
// document order.
package listing

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pevans/dailyarxiv/papers"
	"go.uber.org/zap"
)

// Section is the structural region of a listing page an entry appeared in.
// Lower values rank first.
type Section int

const (
	SectionNew Section = iota
	SectionCross
	SectionReplacement
	SectionUnknown
)

func (s Section) String() string {
	switch s {
	case SectionNew:
		return "new"
	case SectionCross:
		return "cross"
	case SectionReplacement:
		return "replacement"
	default:
		return "unknown"
	}
}

// SectionFor maps heading text to a section.
func SectionFor(heading string) Section {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "new submission"):
		return SectionNew
	case strings.Contains(h, "cross submission"):
		return SectionCross
	case strings.Contains(h, "replacement"):
		return SectionReplacement
	default:
		return SectionUnknown
	}
}

var (
	idPattern       = regexp.MustCompile(`/abs/([0-9]{4}\.[0-9]{5})`)
	codePattern     = regexp.MustCompile(`\(([a-z\-]+\.[A-Z]{2})\)`)
	listPattern     = regexp.MustCompile(`/list/([^/]+)/new`)
	feedPattern     = regexp.MustCompile(`/rss/([^/?#]+)`)
	bareCodePattern = regexp.MustCompile(`^[a-z\-]+\.[A-Z]{2}$`)
)

// Candidate is a paper parsed from a page, before classification.
type Candidate struct {
	ID           string
	AbsURL       string
	PDFURL       string
	Categories   map[string]struct{}
	SubjectsText string
	Section      Section
}

// Page is the parse result of one fetched listing.
type Page struct {
	URL            string
	SourceCategory string
	Candidates     []Candidate
}

// SourceCategory extracts the category from a listing URL of the form
// /list/<category>/new. It returns "" when the URL does not match.
func SourceCategory(pageURL string) string {
	m := listPattern.FindStringSubmatch(pageURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// FeedCategory extracts the category from an RSS feed URL of the form
// /rss/<category>.
func FeedCategory(feedURL string) string {
	m := feedPattern.FindStringSubmatch(feedURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractCodes returns the set of parenthesized subject codes such as
// (math.QA) or (hep-th.XX) found in text.
func ExtractCodes(text string) map[string]struct{} {
	codes := map[string]struct{}{}
	for _, m := range codePattern.FindAllStringSubmatch(text, -1) {
		codes[m[1]] = struct{}{}
	}
	return codes
}

// ExtractID returns the YYYY.NNNNN identifier from an abstract URL.
func ExtractID(absURL string) (string, bool) {
	m := idPattern.FindStringSubmatch(absURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Block is one structural element of a listing page: a Heading or an
// EntryList.
type Block interface {
	block()
}

// Heading starts a new section. It applies to every following entry list
// until the next heading.
type Heading struct {
	Text    string
	Section Section
}

// EntryList holds the raw entries between headings, in document order.
type EntryList struct {
	Entries []RawEntry
}

func (Heading) block()   {}
func (EntryList) block() {}

// RawEntry is the unresolved content of one dt/dd pair.
type RawEntry struct {
	AbsHref      string
	SubjectsText string
}

// foldState is threaded through Fold. It is passed by value so each step
// returns the next state explicitly.
type foldState struct {
	section    Section
	candidates []Candidate
}

// Fold walks blocks in order and produces candidates. The section starts as
// SectionUnknown and changes at each Heading. Entries without a usable
// abstract link or identifier are dropped.
func Fold(blocks []Block, pageURL string, logger *zap.Logger) []Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		logger.Debug("page URL is not parseable", zap.String("url", pageURL), zap.Error(err))
	}

	st := foldState{section: SectionUnknown}
	for _, b := range blocks {
		st = step(st, b, base, logger)
	}
	return st.candidates
}

func step(st foldState, b Block, base *url.URL, logger *zap.Logger) foldState {
	switch b := b.(type) {
	case Heading:
		st.section = b.Section
	case EntryList:
		for _, e := range b.Entries {
			c, ok := resolve(e, st.section, base, logger)
			if ok {
				st.candidates = append(st.candidates, c)
			}
		}
	}
	return st
}

func resolve(e RawEntry, section Section, base *url.URL, logger *zap.Logger) (Candidate, bool) {
	if e.AbsHref == "" {
		logger.Debug("skipping entry without abstract link")
		return Candidate{}, false
	}

	ref, err := url.Parse(e.AbsHref)
	if err != nil {
		logger.Debug("skipping entry with unparseable abstract link", zap.String("href", e.AbsHref))
		return Candidate{}, false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme == "" || ref.Host == "" {
		logger.Debug("skipping entry with relative abstract link", zap.String("href", e.AbsHref))
		return Candidate{}, false
	}
	absURL := ref.String()

	id, ok := ExtractID(absURL)
	if !ok {
		logger.Debug("skipping entry with unrecognized identifier", zap.String("href", absURL))
		return Candidate{}, false
	}

	return Candidate{
		ID:           id,
		AbsURL:       absURL,
		PDFURL:       papers.PDFURL(absURL),
		Categories:   ExtractCodes(e.SubjectsText),
		SubjectsText: e.SubjectsText,
		Section:      section,
	}, true
}
