package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSectionFor verifies heading classification
func TestSectionFor(t *testing.T) {
	tests := []struct {
		heading string
		want    Section
	}{
		{"New submissions (showing 30 of 30 entries)", SectionNew},
		{"NEW SUBMISSIONS", SectionNew},
		{"Cross submissions (showing 5 of 5 entries)", SectionCross},
		{"Replacement submissions", SectionReplacement},
		{"Replacements for Mon, 3 Nov 25", SectionReplacement},
		{"Quantum Algebra", SectionUnknown},
		{"", SectionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			assert.Equal(t, tt.want, SectionFor(tt.heading))
		})
	}
}

// TestSourceCategory verifies category extraction from listing URLs
func TestSourceCategory(t *testing.T) {
	assert.Equal(t, "math.QA", SourceCategory("https://arxiv.org/list/math.QA/new"))
	assert.Equal(t, "hep-th", SourceCategory("https://arxiv.org/list/hep-th/new?skip=0"))
	assert.Equal(t, "", SourceCategory("https://arxiv.org/list/math.QA/recent"))
	assert.Equal(t, "", SourceCategory(""))
}

// TestFeedCategory verifies category extraction from feed URLs
func TestFeedCategory(t *testing.T) {
	assert.Equal(t, "math.QA", FeedCategory("https://rss.arxiv.org/rss/math.QA"))
	assert.Equal(t, "cs.CV", FeedCategory("https://rss.arxiv.org/rss/cs.CV?version=2.0"))
	assert.Equal(t, "", FeedCategory("https://arxiv.org/list/cs.CV/new"))
}

// TestExtractCodes verifies parenthesized code extraction
func TestExtractCodes(t *testing.T) {
	codes := ExtractCodes("Representation Theory (math.RT); Quantum Algebra (math.QA); Quantum Algebra (math.QA)")
	assert.Equal(t, map[string]struct{}{"math.RT": {}, "math.QA": {}}, codes)

	codes = ExtractCodes("Mathematical Physics (math-ph); High Energy (hep-th.XX)")
	assert.Equal(t, map[string]struct{}{"hep-th.XX": {}}, codes, "codes need a dot and two capitals")

	assert.Empty(t, ExtractCodes(""))
}

// TestExtractID verifies identifier extraction
func TestExtractID(t *testing.T) {
	id, ok := ExtractID("https://arxiv.org/abs/2511.00001")
	require.True(t, ok)
	assert.Equal(t, "2511.00001", id)

	id, ok = ExtractID("https://arxiv.org/abs/2511.00001v2")
	require.True(t, ok)
	assert.Equal(t, "2511.00001", id)

	_, ok = ExtractID("https://arxiv.org/abs/math/0601001")
	assert.False(t, ok)
}

// TestFold_SectionTracking verifies headings apply to following entry lists
func TestFold_SectionTracking(t *testing.T) {
	blocks := []Block{
		EntryList{Entries: []RawEntry{{AbsHref: "/abs/2511.00009"}}},
		Heading{Section: SectionNew},
		EntryList{Entries: []RawEntry{{AbsHref: "/abs/2511.00001"}}},
		EntryList{Entries: []RawEntry{{AbsHref: "/abs/2511.00002"}}},
		Heading{Section: SectionCross},
		EntryList{Entries: []RawEntry{{AbsHref: "/abs/2511.00003"}}},
		Heading{Section: SectionReplacement},
		EntryList{Entries: []RawEntry{{AbsHref: "/abs/2511.00004"}}},
	}

	candidates := Fold(blocks, "https://arxiv.org/list/math.QA/new", nil)

	require.Len(t, candidates, 5)
	assert.Equal(t, SectionUnknown, candidates[0].Section, "entries before any heading are unknown")
	assert.Equal(t, SectionNew, candidates[1].Section)
	assert.Equal(t, SectionNew, candidates[2].Section)
	assert.Equal(t, SectionCross, candidates[3].Section)
	assert.Equal(t, SectionReplacement, candidates[4].Section)
}

// TestFold_ResolvesURLs verifies absolute URL resolution and PDF derivation
func TestFold_ResolvesURLs(t *testing.T) {
	blocks := []Block{
		EntryList{Entries: []RawEntry{
			{AbsHref: "/abs/2511.00001", SubjectsText: "Quantum Algebra (math.QA)"},
			{AbsHref: "https://export.arxiv.org/abs/2511.00002"},
		}},
	}

	candidates := Fold(blocks, "https://arxiv.org/list/math.QA/new", nil)

	require.Len(t, candidates, 2)
	assert.Equal(t, "https://arxiv.org/abs/2511.00001", candidates[0].AbsURL)
	assert.Equal(t, "https://arxiv.org/pdf/2511.00001", candidates[0].PDFURL)
	assert.Equal(t, map[string]struct{}{"math.QA": {}}, candidates[0].Categories)
	assert.Equal(t, "https://export.arxiv.org/abs/2511.00002", candidates[1].AbsURL)
	assert.Empty(t, candidates[1].Categories)
}

// TestFold_DropsMalformed verifies entries without link or identifier are
// dropped
func TestFold_DropsMalformed(t *testing.T) {
	blocks := []Block{
		EntryList{Entries: []RawEntry{
			{AbsHref: ""},
			{AbsHref: "/abs/hep-th/9901001"},
			{AbsHref: "/abs/2511.00001"},
		}},
	}

	candidates := Fold(blocks, "https://arxiv.org/list/math.QA/new", nil)

	require.Len(t, candidates, 1)
	assert.Equal(t, "2511.00001", candidates[0].ID)
}

// TestFold_DropsUnresolvableLinks verifies relative links are dropped when
// the page URL cannot serve as a base
func TestFold_DropsUnresolvableLinks(t *testing.T) {
	blocks := []Block{
		EntryList{Entries: []RawEntry{
			{AbsHref: "/abs/2511.00001"},
			{AbsHref: "https://arxiv.org/abs/2511.00002"},
		}},
	}

	for _, pageURL := range []string{"", "://bad url", "list/math.QA/new"} {
		candidates := Fold(blocks, pageURL, nil)

		require.Len(t, candidates, 1, "page URL %q", pageURL)
		assert.Equal(t, "2511.00002", candidates[0].ID)
		assert.Equal(t, "https://arxiv.org/pdf/2511.00002", candidates[0].PDFURL)
	}
}

// TestSectionString verifies section names
func TestSectionString(t *testing.T) {
	assert.Equal(t, "new", SectionNew.String())
	assert.Equal(t, "cross", SectionCross.String())
	assert.Equal(t, "replacement", SectionReplacement.String())
	assert.Equal(t, "unknown", SectionUnknown.String())
	assert.Equal(t, "unknown", Section(42).String())
}
