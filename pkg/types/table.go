package types

// Table is the in-memory dataset shared by every codec. Data is usually a
// []any of []any rows, but structured formats may load any value of the
// model: string, json.Number, bool, nil, []any, or *Object.
type Table struct {
	Data any
}

// NewTable wraps a decoded value.
func NewTable(data any) *Table {
	return &Table{Data: data}
}

// NewGrid builds a tabular Table from text rows.
func NewGrid(rows [][]string) *Table {
	data := make([]any, len(rows))
	for y, row := range rows {
		cells := make([]any, len(row))
		for x, c := range row {
			cells[x] = c
		}
		data[y] = cells
	}
	return &Table{Data: data}
}

// Rows returns the top-level sequence. ok is false when Data is not a
// sequence.
func (t *Table) Rows() (rows []any, ok bool) {
	rows, ok = t.Data.([]any)
	return rows, ok
}

// Len returns the number of rows, or 0 when Data is not a sequence.
func (t *Table) Len() int {
	rows, _ := t.Rows()
	return len(rows)
}

// Cell returns the value at column x of row y. ok is false when the
// coordinates are out of range or the target is not indexable.
func (t *Table) Cell(x, y int) (any, bool) {
	row, ok := t.row(y)
	if !ok || x < 0 || x >= len(row) {
		return nil, false
	}
	return row[x], true
}

// SetCell replaces the value at column x of row y. It reports false and
// leaves the table unchanged when the cell does not exist.
func (t *Table) SetCell(x, y int, v any) bool {
	row, ok := t.row(y)
	if !ok || x < 0 || x >= len(row) {
		return false
	}
	row[x] = v
	return true
}

func (t *Table) row(y int) ([]any, bool) {
	rows, ok := t.Rows()
	if !ok || y < 0 || y >= len(rows) {
		return nil, false
	}
	row, ok := rows[y].([]any)
	return row, ok
}

// Pad extends every row to the length of the longest row using fill.
// Rows that are not sequences are left alone.
func (t *Table) Pad(fill any) {
	rows, ok := t.Rows()
	if !ok {
		return
	}
	width := 0
	for _, r := range rows {
		if row, ok := r.([]any); ok && len(row) > width {
			width = len(row)
		}
	}
	for i, r := range rows {
		row, ok := r.([]any)
		if !ok {
			continue
		}
		for len(row) < width {
			row = append(row, fill)
		}
		rows[i] = row
	}
}

// Records renders the table as text rows for the tabular writers. A row
// that is not a sequence becomes a single-cell record. It returns
// ErrNotTabular when Data is not a sequence.
func (t *Table) Records() ([][]string, error) {
	rows, ok := t.Rows()
	if !ok {
		return nil, ErrNotTabular
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		row, ok := r.([]any)
		if !ok {
			out[i] = []string{Text(r)}
			continue
		}
		rec := make([]string, len(row))
		for j, c := range row {
			rec[j] = Text(c)
		}
		out[i] = rec
	}
	return out, nil
}

// Equal reports whether both tables hold deeply equal data.
func (t *Table) Equal(other *Table) bool {
	return Equal(t.Data, other.Data)
}
