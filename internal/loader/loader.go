// Package loader reads spreadsheet-like source files into tables. One
// adapter is registered per file extension; each adapter tries an ordered
// list of fallback strategies and the first non-empty table wins.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crimson-sun/sawmill/internal/model"
)

// ErrUnsupportedFormat is returned when no adapter is registered for the
// file's extension.
var ErrUnsupportedFormat = errors.New("loader: unsupported file format")

// LoadError reports that every strategy of the matching adapter failed,
// or that the file produced no rows.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loader: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Adapter reads one source format into a table.
type Adapter interface {
	Load(path string) (*model.Table, error)
}

var adapters = map[string]Adapter{}

// Register binds an adapter to a file extension (lower-case, with dot).
func Register(ext string, a Adapter) {
	adapters[ext] = a
}

// SupportedFormats returns the registered extensions, sorted.
func SupportedFormats() []string {
	exts := make([]string, 0, len(adapters))
	for ext := range adapters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load reads the file at path into a table. It returns
// ErrUnsupportedFormat for unregistered extensions and *LoadError when
// the adapter exhausts its strategies or yields an empty table. The
// source file is never modified.
func Load(path string) (*model.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	a, ok := adapters[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext,
			strings.Join(SupportedFormats(), ", "))
	}

	t, err := a.Load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if t == nil || t.NumRows() == 0 {
		return nil, &LoadError{Path: path, Err: errors.New("no data found in file")}
	}
	return t, nil
}

// tableFromRecords builds a table from a header row plus string records,
// padding short records with nil cells. Blank cells become nil.
func tableFromRecords(header []string, records [][]string) *model.Table {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	t := model.NewTable(cols)
	for _, rec := range records {
		cells := make([]any, len(cols))
		for i := range cols {
			if i < len(rec) && strings.TrimSpace(rec[i]) != "" {
				cells[i] = rec[i]
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
