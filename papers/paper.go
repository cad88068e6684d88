package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"
)

var idPattern = regexp.MustCompile(`^\d{4}\.\d{5}$`)

// Paper is a single emitted listing record.
type Paper struct {
	ID         string   `json:"id"`
	Abs        string   `json:"abs"`
	PDF        string   `json:"pdf"`
	Categories []string `json:"categories"`
}

// New creates a Paper from an abstract URL and a category set. The PDF URL is
// the abstract URL with /abs/ replaced by /pdf/. Categories are sorted so
// output is stable; an empty set becomes an empty, non-nil slice.
func New(id, absURL string, categories map[string]struct{}) Paper {
	cats := make([]string, 0, len(categories))
	for code := range categories {
		cats = append(cats, code)
	}
	slices.Sort(cats)

	return Paper{
		ID:         id,
		Abs:        absURL,
		PDF:        PDFURL(absURL),
		Categories: cats,
	}
}

// PDFURL derives the PDF link from an abstract link.
func PDFURL(absURL string) string {
	return strings.ReplaceAll(absURL, "/abs/", "/pdf/")
}

// ValidID reports whether id has the canonical YYYY.NNNNN form.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// HasCategory reports whether the paper is tagged with code.
func (p Paper) HasCategory(code string) bool {
	return slices.Contains(p.Categories, code)
}

// Sink receives the ordered papers of one page at a time.
type Sink interface {
	Write(ctx context.Context, papers []Paper) error
}

// Reader provides read access to stored papers.
type Reader interface {
	Papers() ([]Paper, error)
	Get(id string) (*Paper, error)
}

// JSONLines writes each paper as a single line of JSON.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLines creates a JSON lines sink on w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

// Write encodes papers in order.
func (j *JSONLines) Write(ctx context.Context, papers []Paper) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode paper %s: %w", p.ID, err)
		}
	}
	return nil
}

// MultiSink fans each write out to every sink in order, stopping at the first
// failure.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, papers []Paper) error {
	for _, s := range m {
		if err := s.Write(ctx, papers); err != nil {
			return err
		}
	}
	return nil
}
