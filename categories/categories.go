package categories

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultCategory is used when no categories are configured.
const DefaultCategory = "cs.CV"

// DefaultPriority is the priority of any category missing from the override
// table.
const DefaultPriority = 99

// DefaultPriorities is the built-in override table. Lower values are fetched
// and ranked first.
var DefaultPriorities = map[string]int{
	"math.QA": 0,
	"math.RT": 1,
}

// Category is a target category code paired with its priority.
type Category struct {
	Code     string
	Priority int
}

// Set is an immutable, priority-ordered collection of target categories.
type Set struct {
	ordered    []Category
	members    map[string]struct{}
	priorities map[string]int
}

// Parse builds a Set from a comma-separated category list using the default
// override table.
func Parse(list string) Set {
	return ParseWithPriorities(list, DefaultPriorities)
}

// ParseWithPriorities builds a Set from a comma-separated category list.
// Tokens are trimmed and empty tokens dropped. An empty list yields the
// default category. Codes absent from priorities get DefaultPriority.
func ParseWithPriorities(list string, priorities map[string]int) Set {
	table := make(map[string]int, len(priorities))
	for code, p := range priorities {
		table[code] = p
	}

	s := Set{
		members:    make(map[string]struct{}),
		priorities: table,
	}

	for token := range strings.SplitSeq(list, ",") {
		code := strings.TrimSpace(token)
		if code == "" {
			continue
		}
		s.add(code)
	}

	if len(s.ordered) == 0 {
		s.add(DefaultCategory)
	}

	// Stable so that default-priority codes keep their encounter order
	slices.SortStableFunc(s.ordered, func(a, b Category) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	return s
}

func (s *Set) add(code string) {
	if _, ok := s.members[code]; ok {
		return
	}
	s.members[code] = struct{}{}
	s.ordered = append(s.ordered, Category{Code: code, Priority: s.PriorityOf(code)})
}

// PriorityOf returns the priority of code, or DefaultPriority when the code
// has no override. The code does not need to be a member of the set.
func (s Set) PriorityOf(code string) int {
	if p, ok := s.priorities[code]; ok {
		return p
	}
	return DefaultPriority
}

// Contains reports whether code is a target category.
func (s Set) Contains(code string) bool {
	_, ok := s.members[code]
	return ok
}

// Intersects reports whether any of codes is a target category.
func (s Set) Intersects(codes map[string]struct{}) bool {
	for code := range codes {
		if s.Contains(code) {
			return true
		}
	}
	return false
}

// Ordered returns the categories sorted by ascending priority.
func (s Set) Ordered() []Category {
	return slices.Clone(s.ordered)
}

// Codes returns the category codes in priority order.
func (s Set) Codes() []string {
	codes := make([]string, 0, len(s.ordered))
	for _, c := range s.ordered {
		codes = append(codes, c.Code)
	}
	return codes
}

// Len returns the number of target categories.
func (s Set) Len() int {
	return len(s.ordered)
}

// ListingURL returns the "new submissions" listing page for a category.
func ListingURL(code string) string {
	return "https://arxiv.org/list/" + code + "/new"
}

// FeedURL returns the daily RSS feed for a category.
func FeedURL(code string) string {
	return "https://rss.arxiv.org/rss/" + code
}
