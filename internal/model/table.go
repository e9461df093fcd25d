package model

// Table is an ordered, column-named grid of untyped cells, row-major.
// Loaders produce it; the cleaner replaces it with derived tables rather
// than mutating in place, so re-running a stage is always safe.
type Table struct {
	Columns []string
	Rows    [][]any // each row has len(Columns) cells; nil cell = missing
}

// NewTable creates an empty table with the given column names.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name). Missing column or
// out-of-range row yields nil.
func (t *Table) Cell(row int, column string) any {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][idx]
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(cells []any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}
