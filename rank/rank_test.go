package rank

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/pevans/dailyarxiv/classify"
	"github.com/pevans/dailyarxiv/listing"
	"github.com/pevans/dailyarxiv/papers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, priority int, section listing.Section) classify.Entry {
	return classify.Entry{
		Paper:            papers.New(id, "https://arxiv.org/abs/"+id, nil),
		CategoryPriority: priority,
		Section:          section,
	}
}

func ids(ps []papers.Paper) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

// TestPapers_CompositeOrder verifies priority, section, then id descending
func TestPapers_CompositeOrder(t *testing.T) {
	entries := []classify.Entry{
		entry("2511.00001", 99, listing.SectionNew),
		entry("2511.00002", 0, listing.SectionCross),
		entry("2511.00003", 0, listing.SectionNew),
		entry("2511.00004", 0, listing.SectionNew),
		entry("2511.00005", 1, listing.SectionUnknown),
		entry("2511.00006", 0, listing.SectionReplacement),
		entry("2511.00007", 1, listing.SectionNew),
	}

	got := ids(Papers(entries))

	assert.Equal(t, []string{
		"2511.00004", "2511.00003", // priority 0, new
		"2511.00002",               // priority 0, cross
		"2511.00006",               // priority 0, replacement
		"2511.00007",               // priority 1, new
		"2511.00005",               // priority 1, unknown
		"2511.00001",               // priority 99
	}, got)
}

// TestPapers_TwoSectionScenario verifies new entries precede cross entries
func TestPapers_TwoSectionScenario(t *testing.T) {
	entries := []classify.Entry{
		entry("2511.00002", 0, listing.SectionCross),
		entry("2511.00001", 0, listing.SectionNew),
	}

	assert.Equal(t, []string{"2511.00001", "2511.00002"}, ids(Papers(entries)))
}

// TestSort_MatchesThreeStablePasses verifies the composite comparator gives
// the same order as sorting by id, then section, then priority
func TestSort_MatchesThreeStablePasses(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	var entries []classify.Entry
	for i := range 200 {
		id := fmt.Sprintf("2511.%05d", i)
		entries = append(entries, entry(id, []int{0, 1, 99}[r.IntN(3)], listing.Section(r.IntN(4))))
	}
	r.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })

	passes := slices.Clone(entries)
	slices.SortStableFunc(passes, func(a, b classify.Entry) int { return strings.Compare(b.Paper.ID, a.Paper.ID) })
	slices.SortStableFunc(passes, func(a, b classify.Entry) int { return int(a.Section) - int(b.Section) })
	slices.SortStableFunc(passes, func(a, b classify.Entry) int { return a.CategoryPriority - b.CategoryPriority })

	Sort(entries)

	require.Len(t, entries, len(passes))
	for i := range entries {
		assert.Equal(t, passes[i].Paper.ID, entries[i].Paper.ID, "position %d", i)
	}

	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, Compare(entries[i-1], entries[i]), 0)
	}
}

// TestPapers_Empty verifies an empty page yields an empty slice
func TestPapers_Empty(t *testing.T) {
	got := Papers(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
