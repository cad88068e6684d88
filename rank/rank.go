// Package rank orders the classified entries of a page.
package rank

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pevans/dailyarxiv/classify"
	"github.com/pevans/dailyarxiv/papers"
)

// Compare orders entries by category priority ascending, then section
// ascending, then identifier descending. Identifiers are fixed width, so the
// string comparison is also numeric.
func Compare(a, b classify.Entry) int {
	if c := cmp.Compare(a.CategoryPriority, b.CategoryPriority); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Section, b.Section); c != 0 {
		return c
	}
	return strings.Compare(b.Paper.ID, a.Paper.ID)
}

// Sort orders entries in place.
func Sort(entries []classify.Entry) {
	slices.SortStableFunc(entries, Compare)
}

// Papers sorts entries and returns their papers, dropping the sort keys.
func Papers(entries []classify.Entry) []papers.Paper {
	Sort(entries)

	out := make([]papers.Paper, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Paper)
	}
	return out
}
