// Package table implements the in-memory dataset that dataprep transforms.
//
// A Table is a set of equally long, named columns. Cells hold the values JSON
// lines and Parquet decode into: nil, string, int64, float64, bool, []any and
// map[string]any. Column order is preserved from the source and through every
// export format.
//
// A Table is not safe for concurrent use.
package table

import (
	"fmt"
	"iter"
	"slices"

	"github.com/samber/lo"
)

// Row is one record of a Table, keyed by column name.
type Row map[string]any

// Table is an in-memory columnar dataset.
type Table struct {
	names   []string
	columns map[string][]any
	rows    int
}

// New returns an empty table with the given columns.
func New(names ...string) (*Table, error) {
	t := &Table{columns: make(map[string][]any, len(names))}
	for _, name := range names {
		if err := t.AddColumn(name, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromColumns builds a table from parallel name and value slices.
// All columns must have the same length.
func FromColumns(names []string, columns ...[]any) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns: %w", len(names), len(columns), ErrRowCount)
	}
	t := &Table{columns: make(map[string][]any, len(names))}
	if len(columns) > 0 {
		t.rows = len(columns[0])
	}
	for i, name := range names {
		if err := t.AddColumn(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AppendRow appends one record. Values are given in column order.
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.names) {
		return fmt.Errorf("row has %d values for %d columns: %w", len(values), len(t.names), ErrRowCount)
	}
	for i, name := range t.names {
		t.columns[name] = append(t.columns[name], values[i])
	}
	t.rows++
	return nil
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	return slices.Clone(t.names)
}

// NumRows returns the number of records.
func (t *Table) NumRows() int {
	return t.rows
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]any, error) {
	values, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return slices.Clone(values), nil
}

// SetColumn replaces the values of an existing column.
func (t *Table) SetColumn(name string, values []any) error {
	if !t.HasColumn(name) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("column %q has %d values for %d rows: %w", name, len(values), t.rows, ErrRowCount)
	}
	t.columns[name] = slices.Clone(values)
	return nil
}

// AddColumn appends a new column. A nil values slice adds an all-null column.
func (t *Table) AddColumn(name string, values []any) error {
	if t.HasColumn(name) {
		return fmt.Errorf("%w: %q", ErrColumnExists, name)
	}
	if values == nil {
		values = make([]any, t.rows)
	}
	if len(values) != t.rows {
		return fmt.Errorf("column %q has %d values for %d rows: %w", name, len(values), t.rows, ErrRowCount)
	}
	t.names = append(t.names, name)
	t.columns[name] = slices.Clone(values)
	return nil
}

// PutColumn sets the named column, adding it at the end if it does not exist.
func (t *Table) PutColumn(name string, values []any) error {
	if t.HasColumn(name) {
		return t.SetColumn(name, values)
	}
	return t.AddColumn(name, values)
}

// RenameColumn renames a column in place, keeping its position.
func (t *Table) RenameColumn(oldName, newName string) error {
	values, ok := t.columns[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, oldName)
	}
	if oldName == newName {
		return nil
	}
	if t.HasColumn(newName) {
		return fmt.Errorf("%w: %q", ErrColumnExists, newName)
	}
	t.names[lo.IndexOf(t.names, oldName)] = newName
	delete(t.columns, oldName)
	t.columns[newName] = values
	return nil
}

// Row returns record i. It panics if i is out of range.
func (t *Table) Row(i int) Row {
	if i < 0 || i >= t.rows {
		panic(fmt.Sprintf("table: row %d out of range [0,%d)", i, t.rows))
	}
	row := make(Row, len(t.names))
	for _, name := range t.names {
		row[name] = t.columns[name][i]
	}
	return row
}

// Rows iterates the records in table order.
func (t *Table) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i := 0; i < t.rows; i++ {
			if !yield(i, t.Row(i)) {
				return
			}
		}
	}
}

// keepRows drops every record whose keep flag is false.
func (t *Table) keepRows(keep []bool) {
	kept := lo.Count(keep, true)
	for _, name := range t.names {
		t.columns[name] = lo.Filter(t.columns[name], func(_ any, i int) bool {
			return keep[i]
		})
	}
	t.rows = kept
}
