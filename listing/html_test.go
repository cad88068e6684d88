package listing

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const qaPageURL = "https://arxiv.org/list/math.QA/new"

func parseString(t *testing.T, markup, pageURL string) *Page {
	page, err := NewParser(nil).ParseHTML(strings.NewReader(markup), pageURL)
	require.NoError(t, err)
	return page
}

// TestParseHTML_Fixture verifies a full listing page
func TestParseHTML_Fixture(t *testing.T) {
	f, err := os.Open("testdata/math_qa_new.html")
	require.NoError(t, err)
	defer f.Close()

	page, err := NewParser(nil).ParseHTML(f, qaPageURL)
	require.NoError(t, err)

	assert.Equal(t, "math.QA", page.SourceCategory)
	assert.Equal(t, qaPageURL, page.URL)
	require.Len(t, page.Candidates, 4, "entry without abstract link is dropped")

	first := page.Candidates[0]
	assert.Equal(t, "2511.00011", first.ID)
	assert.Equal(t, "https://arxiv.org/abs/2511.00011", first.AbsURL)
	assert.Equal(t, "https://arxiv.org/pdf/2511.00011", first.PDFURL)
	assert.Equal(t, SectionNew, first.Section)
	assert.Equal(t, map[string]struct{}{"math.QA": {}, "math.CT": {}}, first.Categories)
	assert.Equal(t, "Subjects: Quantum Algebra (math.QA) ; Category Theory (math.CT)", first.SubjectsText)

	second := page.Candidates[1]
	assert.Equal(t, "2511.00012", second.ID)
	assert.Equal(t, map[string]struct{}{"math.RT": {}, "math.QA": {}}, second.Categories)

	cross := page.Candidates[2]
	assert.Equal(t, "2511.00003", cross.ID)
	assert.Equal(t, SectionCross, cross.Section)
	assert.Equal(t, map[string]struct{}{"math.QA": {}}, cross.Categories)

	replacement := page.Candidates[3]
	assert.Equal(t, "2409.01234", replacement.ID, "falls back to any /abs/ link")
	assert.Equal(t, SectionReplacement, replacement.Section)
}

// TestParseHTML_NestedHeadings verifies headings inside a single dl
func TestParseHTML_NestedHeadings(t *testing.T) {
	markup := `<div id="dlpage"><dl id="articles">
		<h3>New submissions (showing 1 of 1 entries)</h3>
		<dt><a href="/abs/2511.00001" title="Abstract">arXiv:2511.00001</a></dt>
		<dd><div class="list-subjects">Quantum Algebra (math.QA)</div></dd>
		<h3>Cross submissions (showing 1 of 1 entries)</h3>
		<dt><a href="/abs/2511.00002" title="Abstract">arXiv:2511.00002</a></dt>
		<dd><div class="list-subjects">Representation Theory (math.RT)</div></dd>
	</dl></div>`

	page := parseString(t, markup, qaPageURL)

	require.Len(t, page.Candidates, 2)
	assert.Equal(t, SectionNew, page.Candidates[0].Section)
	assert.Equal(t, SectionCross, page.Candidates[1].Section)
}

// TestParseHTML_UnknownHeading verifies unrecognized headings reset the rank
func TestParseHTML_UnknownHeading(t *testing.T) {
	markup := `<div id="dlpage">
		<h3>New submissions</h3>
		<h3>Something else entirely</h3>
		<dl>
			<dt><a href="/abs/2511.00001" title="Abstract">x</a></dt>
			<dd><div class="list-subjects">Quantum Algebra (math.QA)</div></dd>
		</dl>
	</div>`

	page := parseString(t, markup, qaPageURL)

	require.Len(t, page.Candidates, 1)
	assert.Equal(t, SectionUnknown, page.Candidates[0].Section)
}

// TestParseHTML_EmptySubjects verifies missing subjects yield empty text
func TestParseHTML_EmptySubjects(t *testing.T) {
	markup := `<div id="dlpage"><h3>New submissions</h3><dl>
		<dt><a href="/abs/2511.00001" title="Abstract">x</a></dt>
		<dd><div class="meta"></div></dd>
	</dl></div>`

	page := parseString(t, markup, qaPageURL)

	require.Len(t, page.Candidates, 1)
	assert.Empty(t, page.Candidates[0].SubjectsText)
	assert.Empty(t, page.Candidates[0].Categories)
}

// TestParseHTML_UnpairedEntries verifies extra dt elements are ignored
func TestParseHTML_UnpairedEntries(t *testing.T) {
	markup := `<div id="dlpage"><dl>
		<dt><a href="/abs/2511.00001" title="Abstract">x</a></dt>
		<dd><div class="list-subjects">Quantum Algebra (math.QA)</div></dd>
		<dt><a href="/abs/2511.00002" title="Abstract">y</a></dt>
	</dl></div>`

	page := parseString(t, markup, qaPageURL)

	require.Len(t, page.Candidates, 1)
	assert.Equal(t, "2511.00001", page.Candidates[0].ID)
}

// TestParseHTML_NoListing verifies pages without #dlpage produce nothing
func TestParseHTML_NoListing(t *testing.T) {
	page := parseString(t, `<html><body><p>Service unavailable</p></body></html>`, qaPageURL)

	assert.Empty(t, page.Candidates)
	assert.Equal(t, "math.QA", page.SourceCategory)
}

// TestParseHTML_LogsDroppedEntries verifies drops are logged at debug level
func TestParseHTML_LogsDroppedEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parser := NewParser(zap.New(core))

	markup := `<div id="dlpage"><dl>
		<dt><a href="/list/math.QA/recent">nothing</a></dt>
		<dd><div class="list-subjects">Quantum Algebra (math.QA)</div></dd>
	</dl></div>`

	page, err := parser.ParseHTML(strings.NewReader(markup), qaPageURL)
	require.NoError(t, err)

	assert.Empty(t, page.Candidates)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
}
