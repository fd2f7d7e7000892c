// Package history persists a bounded, line-oriented command history. It is
// an independent collaborator of the tool manager: nothing in pkg/mcphub
// depends on it.
package history

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLimit caps the history when a Store is created with a non-positive
// limit.
const DefaultLimit = 1000

// Store trims a list of text lines to a bounded count and persists them to a
// file as newline-terminated text.
type Store struct {
	path  string
	limit int
}

// NewStore creates a store backed by the given file path, keeping at most
// limit entries.
func NewStore(path string, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{path: path, limit: limit}
}

// Normalize flattens arbitrary values into single lines: control characters
// are stripped, surrounding whitespace trimmed, and blank results dropped.
func Normalize(values []any) []string {
	lines := make([]string, 0, len(values))
	for _, v := range values {
		line := strings.TrimSpace(stripControl(fmt.Sprint(v)))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Save normalizes the entries, truncates to the most recent limit, and
// writes them newline-terminated, replacing any previous content.
func (s *Store) Save(values []any) error {
	lines := Normalize(values)
	if len(lines) > s.limit {
		lines = lines[len(lines)-s.limit:]
	}
	var content string
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("history: creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("history: writing %s: %w", s.path, err)
	}
	return nil
}

// Load reads the persisted history back. A missing file is an empty
// history, not an error.
func (s *Store) Load() ([]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: reading %s: %w", s.path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// stripControl removes control characters, mapping each run of them to
// nothing so multi-line values collapse into one line.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
