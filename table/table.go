// Package table implements the in-memory columnar table store and the
// session catalog.
//
// Data is organized as one value array per column rather than per row. A
// Table is immutable once built: operators and load paths construct a new
// Table through a Builder and swap whole catalog entries, they never mutate
// cells in place.
package table

import (
	"fmt"
	"reflect"
)

// Column is a named, typed array of values. All columns of a table have the
// same length. A nil value is NULL.
type Column struct {
	Name   string
	Type   Type
	Values []interface{}
}

// Table is an ordered set of equal-length columns with unique names.
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a table from fully populated columns.
//
// Returns DuplicateColumnError if two columns share a name, or an error if
// the columns have unequal lengths.
func New(cols []Column) (*Table, error) {
	t := &Table{
		cols:  cols,
		index: make(map[string]int, len(cols)),
	}
	for i, col := range cols {
		if _, exists := t.index[col.Name]; exists {
			return nil, &DuplicateColumnError{Column: col.Name}
		}
		t.index[col.Name] = i
		if i == 0 {
			t.rows = len(col.Values)
		} else if len(col.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", col.Name, len(col.Values), t.rows)
		}
	}
	return t, nil
}

// Empty returns a zero-row table with the given column specs.
func Empty(cols []Column) (*Table, error) {
	specs := make([]Column, len(cols))
	for i, col := range cols {
		specs[i] = Column{Name: col.Name, Type: col.Type, Values: []interface{}{}}
	}
	return New(specs)
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// Columns returns the ordered columns. The slice is shared; callers must not
// modify it.
func (t *Table) Columns() []Column {
	return t.cols
}

// Column returns the column at position i.
func (t *Table) Column(i int) Column {
	return t.cols[i]
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or false if absent.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the cell at (column, row).
func (t *Table) Value(col, row int) interface{} {
	return t.cols[col].Values[row]
}

// Row copies row i into a value slice in column order.
func (t *Table) Row(i int) []interface{} {
	vals := make([]interface{}, len(t.cols))
	for c := range t.cols {
		vals[c] = t.cols[c].Values[i]
	}
	return vals
}

// Equal reports whether two tables have identical column names, types, and
// values in the same order. Used by tests and the round-trip checks.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.cols) != len(other.cols) || t.rows != other.rows {
		return false
	}
	for i := range t.cols {
		if t.cols[i].Name != other.cols[i].Name || t.cols[i].Type != other.cols[i].Type {
			return false
		}
		if !reflect.DeepEqual(t.cols[i].Values, other.cols[i].Values) {
			return false
		}
	}
	return true
}

// Builder accumulates columns and rows for a new table.
type Builder struct {
	cols  []Column
	index map[string]int
	rows  int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// AddColumn declares a column. Fails with DuplicateColumnError if the name
// is already declared. Columns must be declared before rows are appended.
func (b *Builder) AddColumn(name string, typ Type) error {
	if _, exists := b.index[name]; exists {
		return &DuplicateColumnError{Column: name}
	}
	if b.rows > 0 {
		return fmt.Errorf("cannot add column %q after rows have been appended", name)
	}
	b.index[name] = len(b.cols)
	b.cols = append(b.cols, Column{Name: name, Type: typ})
	return nil
}

// AppendRow appends one value per declared column, in declaration order.
func (b *Builder) AppendRow(vals ...interface{}) error {
	if len(vals) != len(b.cols) {
		return fmt.Errorf("row has %d values, table has %d columns", len(vals), len(b.cols))
	}
	for i := range b.cols {
		b.cols[i].Values = append(b.cols[i].Values, vals[i])
	}
	b.rows++
	return nil
}

// NumRows returns the number of rows appended so far.
func (b *Builder) NumRows() int {
	return b.rows
}

// Build seals the builder into an immutable table. The builder must not be
// used afterwards.
func (b *Builder) Build() *Table {
	t := &Table{cols: b.cols, index: b.index, rows: b.rows}
	if t.cols == nil {
		t.cols = []Column{}
	}
	return t
}
