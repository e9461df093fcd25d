package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/crimson-sun/sawmill/internal/model"
)

func init() {
	Register(".json", &jsonAdapter{})
}

// wrapperKeys are probed, in order, on a top-level object to find the
// record array inside common export envelopes.
var wrapperKeys = []string{"data", "records", "results"}

// jsonAdapter reads structured-object sources. Supported shapes: a
// top-level array of records; an object wrapping the array under a
// conventional key; an object whose every value is a collection (treated
// as columnar); any other object as one single record.
type jsonAdapter struct{}

func (a *jsonAdapter) Load(path string) (*model.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		return tableFromJSONRecords(v)
	case map[string]any:
		for _, key := range wrapperKeys {
			if arr, ok := v[key].([]any); ok {
				return tableFromJSONRecords(arr)
			}
		}
		if allCollections(v) {
			return tableFromColumnar(v)
		}
		return tableFromJSONRecords([]any{v})
	default:
		return nil, errors.New("unsupported json structure")
	}
}

func allCollections(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for _, v := range obj {
		switch v.(type) {
		case []any, map[string]any:
		default:
			return false
		}
	}
	return true
}

// tableFromJSONRecords builds a table from an array of objects. Column
// order is first-seen key order across records so repeated loads of the
// same file are stable.
func tableFromJSONRecords(records []any) (*model.Table, error) {
	var cols []string
	seen := map[string]bool{}
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			return nil, errors.New("record is not an object")
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	t := model.NewTable(cols)
	for _, rec := range records {
		obj := rec.(map[string]any)
		cells := make([]any, len(cols))
		for i, c := range cols {
			cells[i] = obj[c]
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// tableFromColumnar builds a table from an object of column-name →
// value-array. Keys are sorted for deterministic column order; short
// columns are padded with nil.
func tableFromColumnar(obj map[string]any) (*model.Table, error) {
	cols := make([]string, 0, len(obj))
	for k := range obj {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	height := 0
	values := make([][]any, len(cols))
	for i, c := range cols {
		arr, ok := obj[c].([]any)
		if !ok {
			return nil, fmt.Errorf("column %q is not an array", c)
		}
		values[i] = arr
		if len(arr) > height {
			height = len(arr)
		}
	}

	t := model.NewTable(cols)
	for row := 0; row < height; row++ {
		cells := make([]any, len(cols))
		for i := range cols {
			if row < len(values[i]) {
				cells[i] = values[i][row]
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
