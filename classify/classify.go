// Package classify decides which parsed candidates belong to the target
// categories and removes identifiers already emitted in the run.
package classify

import (
	"maps"
	"slices"

	"github.com/pevans/dailyarxiv/categories"
	"github.com/pevans/dailyarxiv/listing"
	"github.com/pevans/dailyarxiv/papers"
	"go.uber.org/zap"
)

// Reason records which rule admitted a candidate.
type Reason int

const (
	// Excluded candidates are not emitted.
	Excluded Reason = iota
	// MatchedTarget means an extracted code is a target category.
	MatchedTarget
	// SourceTarget means the page's own category is a target, and was added
	// to the candidate's categories.
	SourceTarget
	// MissingSubjects means no subjects text was found, so the candidate is
	// kept with no categories in the unknown section.
	MissingSubjects
)

// Entry is a surviving candidate ready for ranking.
type Entry struct {
	Paper            papers.Paper
	CategoryPriority int
	Section          listing.Section
}

// Classifier filters candidates against the target categories.
type Classifier struct {
	targets categories.Set
	seen    *SeenSet
	logger  *zap.Logger
}

// New creates a classifier. The seen set is shared with every page of the
// run and is owned by the caller.
func New(targets categories.Set, seen *SeenSet, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{targets: targets, seen: seen, logger: logger}
}

// Decide applies the inclusion rules to one candidate. It returns the
// possibly adjusted candidate and the rule that admitted it, or Excluded.
// It does not consult the seen set.
func (c *Classifier) Decide(cand listing.Candidate, sourceCategory string) (listing.Candidate, Reason) {
	if c.targets.Intersects(cand.Categories) {
		return cand, MatchedTarget
	}

	if c.targets.Contains(sourceCategory) {
		codes := maps.Clone(cand.Categories)
		if codes == nil {
			codes = map[string]struct{}{}
		}
		codes[sourceCategory] = struct{}{}
		cand.Categories = codes
		return cand, SourceTarget
	}

	if cand.SubjectsText == "" {
		cand.Categories = map[string]struct{}{}
		cand.Section = listing.SectionUnknown
		return cand, MissingSubjects
	}

	return cand, Excluded
}

// Classify filters a page's candidates in document order. Each identifier is
// emitted at most once across every page sharing the seen set.
func (c *Classifier) Classify(page *listing.Page) []Entry {
	priority := c.targets.PriorityOf(page.SourceCategory)
	logger := c.logger.With(zap.String("page", page.SourceCategory))

	var entries []Entry
	for _, cand := range page.Candidates {
		if c.seen.Has(cand.ID) {
			continue
		}

		decided, reason := c.Decide(cand, page.SourceCategory)
		switch reason {
		case Excluded:
			logger.Debug("skipping paper outside target categories",
				zap.String("id", cand.ID),
				zap.Strings("categories", slices.Sorted(maps.Keys(cand.Categories))),
				zap.Strings("targets", c.targets.Codes()),
				zap.String("subjects", cand.SubjectsText),
			)
			continue
		case MissingSubjects:
			logger.Warn("could not extract categories for paper, including anyway",
				zap.String("id", cand.ID),
			)
		}

		if !c.seen.Claim(cand.ID) {
			continue
		}

		entries = append(entries, Entry{
			Paper:            papers.New(decided.ID, decided.AbsURL, decided.Categories),
			CategoryPriority: priority,
			Section:          decided.Section,
		})
	}

	return entries
}
