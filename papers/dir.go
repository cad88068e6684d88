package papers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrPaperNotFound is returned when a paper is not present in a store.
var ErrPaperNotFound = errors.New("paper not found")

// Dir stores papers as individual JSON files in a directory.
type Dir struct {
	storageDir string
}

// ReadError describes a failure to read a single paper file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// ListResult contains the papers read from a directory along with any
// per-file errors.
type ListResult struct {
	Papers []Paper
	Errors []ReadError
}

// NewDir creates a paper store rooted at storageDir, creating the directory
// if needed.
func NewDir(storageDir string) (*Dir, error) {
	// 0700: owner-only access
	if err := os.MkdirAll(storageDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Dir{storageDir: storageDir}, nil
}

func (d *Dir) filename(id string) string {
	return filepath.Join(d.storageDir, id+".json")
}

// Add saves a paper, replacing any existing file for the same identifier.
func (d *Dir) Add(p Paper) error {
	if !ValidID(p.ID) {
		return fmt.Errorf("invalid paper id %q", p.ID)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal paper: %w", err)
	}

	// 0600: owner-only read/write
	if err := os.WriteFile(d.filename(p.ID), data, 0o600); err != nil {
		return fmt.Errorf("failed to write paper: %w", err)
	}

	return nil
}

// Write implements Sink.
func (d *Dir) Write(ctx context.Context, papers []Paper) error {
	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// List returns every paper in the directory. Unreadable or corrupt files are
// collected in the result's Errors rather than failing the whole call.
func (d *Dir) List() (*ListResult, error) {
	entries, err := os.ReadDir(d.storageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	result := &ListResult{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(d.storageDir, entry.Name()))
		if err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}

		var p Paper
		if err := json.Unmarshal(data, &p); err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}

		result.Papers = append(result.Papers, p)
	}

	// Newest identifiers first
	slices.SortFunc(result.Papers, func(a, b Paper) int {
		return strings.Compare(b.ID, a.ID)
	})

	return result, nil
}

// Papers implements Reader.
func (d *Dir) Papers() ([]Paper, error) {
	result, err := d.List()
	if err != nil {
		return nil, err
	}
	return result.Papers, nil
}

// Get retrieves a paper by identifier. It returns ErrPaperNotFound when no
// file exists.
func (d *Dir) Get(id string) (*Paper, error) {
	if !ValidID(id) {
		return nil, ErrPaperNotFound
	}

	data, err := os.ReadFile(d.filename(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPaperNotFound
		}
		return nil, fmt.Errorf("failed to read paper: %w", err)
	}

	var p Paper
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paper: %w", err)
	}

	return &p, nil
}

// Delete removes a paper by identifier.
func (d *Dir) Delete(id string) error {
	if !ValidID(id) {
		return ErrPaperNotFound
	}
	if err := os.Remove(d.filename(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrPaperNotFound
		}
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	return nil
}
