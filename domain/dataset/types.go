package dataset

import (
	"fmt"

	"github.com/google/uuid"

	"gocleanse/domain/core"
)

// Dataset is an ordered table of typed cells. Rows[i][j] holds the value of
// Columns[j] for row i; every row has exactly len(Columns) cells.
type Dataset struct {
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// New creates an empty dataset with the given column order
func New(columns ...string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// AppendRow adds a row; it must match the column count
func (d *Dataset) AppendRow(values ...Value) error {
	if len(values) != len(d.Columns) {
		return core.NewInputError(fmt.Sprintf("row has %d cells, dataset has %d columns", len(values), len(d.Columns)))
	}
	d.Rows = append(d.Rows, append([]Value(nil), values...))
	return nil
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// IsEmpty reports whether the dataset has no rows
func (d *Dataset) IsEmpty() bool {
	return d.RowCount() == 0
}

// Validate checks the rectangular-shape and unique-column invariants
func (d *Dataset) Validate() error {
	if d == nil {
		return core.NewInputError("dataset is nil")
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if seen[c] {
			return core.NewInputError(fmt.Sprintf("duplicate column name %q", c))
		}
		seen[c] = true
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return core.NewInputError(fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(d.Columns)))
		}
	}
	return nil
}

// ColumnIndex returns the position of a column
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of the values of a single column
func (d *Dataset) Column(name string) ([]Value, error) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrColumnNotFound, name)
	}
	return d.ColumnAt(idx), nil
}

// ColumnAt returns a copy of the values at column position idx
func (d *Dataset) ColumnAt(idx int) []Value {
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx]
	}
	return out
}

// Clone returns a deep copy of the row structure. Values are immutable so
// cells are shared.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([][]Value, len(d.Rows)),
	}
	for i, row := range d.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}

// SelectRows returns a new dataset holding the rows where keep is true,
// in their original order.
func (d *Dataset) SelectRows(keep []bool) *Dataset {
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	for i, row := range d.Rows {
		if i < len(keep) && keep[i] {
			out.Rows = append(out.Rows, append([]Value(nil), row...))
		}
	}
	return out
}

// WithColumn returns a copy of the dataset with an extra trailing column
func (d *Dataset) WithColumn(name string, values []Value) (*Dataset, error) {
	if _, exists := d.ColumnIndex(name); exists {
		return nil, core.NewInputError(fmt.Sprintf("column %q already exists", name))
	}
	if len(values) != len(d.Rows) {
		return nil, core.NewInputError(fmt.Sprintf("column %q has %d values, dataset has %d rows", name, len(values), len(d.Rows)))
	}
	out := d.Clone()
	out.Columns = append(out.Columns, name)
	for i := range out.Rows {
		out.Rows[i] = append(out.Rows[i], values[i])
	}
	return out, nil
}

// WithoutColumns returns a copy without the named columns. Unknown names
// are ignored.
func (d *Dataset) WithoutColumns(names ...string) *Dataset {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []int
	out := &Dataset{Rows: make([][]Value, len(d.Rows))}
	for j, c := range d.Columns {
		if !drop[c] {
			keep = append(keep, j)
			out.Columns = append(out.Columns, c)
		}
	}
	for i, row := range d.Rows {
		out.Rows[i] = make([]Value, len(keep))
		for k, j := range keep {
			out.Rows[i][k] = row[j]
		}
	}
	return out
}

// WithRowIDs adds a synthetic identifier column filled with fresh UUIDs.
// Duplicate detection should ignore this column.
func (d *Dataset) WithRowIDs(column string) (*Dataset, error) {
	ids := make([]Value, len(d.Rows))
	for i := range ids {
		ids[i] = NewStringValue(uuid.NewString())
	}
	return d.WithColumn(column, ids)
}

// Equal reports whether two datasets have the same columns and cells
func (d *Dataset) Equal(other *Dataset) bool {
	if d.ColumnCount() != other.ColumnCount() || d.RowCount() != other.RowCount() {
		return false
	}
	for i, c := range d.Columns {
		if other.Columns[i] != c {
			return false
		}
	}
	for i, row := range d.Rows {
		for j, v := range row {
			if !v.Equal(other.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}
