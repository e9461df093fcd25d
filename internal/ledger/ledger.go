// Package ledger persists message classifications across runs so that
// previously categorized messages never trigger another remote call.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/crimson-sun/sawmill/internal/model"
)

// Ledger is a file-backed map from message text to classification.
// Safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	path    string
	entries map[string]model.Classification
	dirty   bool
}

// entry is the on-disk representation of a classification.
type entry struct {
	Category    string  `json:"category"`
	SubCategory string  `json:"sub_category,omitempty"`
	Confidence  float64 `json:"confidence"`
	Rationale   string  `json:"rationale,omitempty"`
}

// Open loads the ledger at path. A missing file yields an empty ledger;
// entries with unknown category labels are dropped.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path:    path,
		entries: make(map[string]model.Classification),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}

	for msg, e := range raw {
		if !model.ValidCategory(e.Category) {
			continue
		}
		l.entries[msg] = model.Classification{
			Category:    model.ErrorCategory(e.Category),
			SubCategory: e.SubCategory,
			Confidence:  e.Confidence,
			Rationale:   e.Rationale,
		}
	}
	return l, nil
}

// Lookup returns the stored classification for message, if any.
func (l *Ledger) Lookup(message string) (model.Classification, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.entries[message]
	return c, ok
}

// Record stores the classification for message. Invalid category labels
// are ignored.
func (l *Ledger) Record(message string, c model.Classification) {
	if !model.ValidCategory(string(c.Category)) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[message] = c
	l.dirty = true
}

// Len returns the number of stored entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Save writes the ledger back to its file atomically. A ledger with no
// new entries since Open is not rewritten.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}

	raw := make(map[string]entry, len(l.entries))
	for msg, c := range l.entries {
		raw[msg] = entry{
			Category:    string(c.Category),
			SubCategory: c.SubCategory,
			Confidence:  c.Confidence,
			Rationale:   c.Rationale,
		}
	}

	// json.Marshal sorts map keys, so output is deterministic.
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}

	l.dirty = false
	return nil
}
