package query

import (
	"errors"

	"github.com/vegasq/csvql/table"
)

// HashJoin joins two inputs on a single equality key. The right side
// is built into a hash table and the left side probes it, so output
// rows keep the left input's order. Rows with a NULL key never match.
type HashJoin struct {
	Left     Operator
	Right    Operator
	LeftKey  string
	RightKey string
	Type     JoinType
}

func (j *HashJoin) Execute(ctx *ExecContext) (*table.Table, error) {
	left, err := j.Left.Execute(ctx)
	if err != nil {
		return nil, err
	}
	right, err := j.Right.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.done(); err != nil {
		return nil, err
	}

	leftCol, rightCol, err := j.resolveKeys(left, right)
	if err != nil {
		return nil, err
	}

	// Output schema is all left columns followed by all right columns.
	names := make(map[string]bool, left.NumColumns()+right.NumColumns())
	for _, col := range left.Columns() {
		names[col.Name] = true
	}
	for _, col := range right.Columns() {
		if names[col.Name] {
			return nil, &table.DuplicateColumnError{Column: col.Name}
		}
	}

	// Build phase over the right input.
	buckets := make(map[interface{}][]int, right.NumRows())
	for i := 0; i < right.NumRows(); i++ {
		key := joinKey(right.Value(rightCol, i))
		if key == nil {
			continue
		}
		buckets[key] = append(buckets[key], i)
	}

	// Probe phase over the left input, preserving its order.
	total := left.NumColumns() + right.NumColumns()
	var out [][]interface{}
	for i := 0; i < left.NumRows(); i++ {
		matches := []int(nil)
		if key := joinKey(left.Value(leftCol, i)); key != nil {
			matches = buckets[key]
		}

		if len(matches) == 0 {
			if j.Type == JoinLeftOuter {
				row := make([]interface{}, total)
				copy(row, left.Row(i))
				out = append(out, row)
			}
			continue
		}
		for _, m := range matches {
			row := make([]interface{}, 0, total)
			row = append(row, left.Row(i)...)
			row = append(row, right.Row(m)...)
			out = append(out, row)
		}
	}

	cols := make([]table.Column, 0, total)
	appendColumns := func(src *table.Table, offset int) {
		for c, col := range src.Columns() {
			values := make([]interface{}, len(out))
			for r, row := range out {
				values[r] = row[offset+c]
			}
			cols = append(cols, table.Column{Name: col.Name, Type: col.Type, Values: values})
		}
	}
	appendColumns(left, 0)
	appendColumns(right, left.NumColumns())

	return table.New(cols)
}

// resolveKeys locates the join key columns. The ON clause does not say
// which side each key belongs to, so if the pair does not resolve
// as written it is tried swapped. A key that matches several columns
// on one side is reported as ambiguous rather than missing.
func (j *HashJoin) resolveKeys(left, right *table.Table) (int, int, error) {
	l, lerr := findColumn(left, j.LeftKey)
	r, rerr := findColumn(right, j.RightKey)
	if lerr == nil && rerr == nil {
		return l, r, nil
	}

	ls, lserr := findColumn(left, j.RightKey)
	rs, rserr := findColumn(right, j.LeftKey)
	if lserr == nil && rserr == nil {
		return ls, rs, nil
	}

	for _, err := range []error{lerr, rerr, lserr, rserr} {
		var amb *AmbiguousColumnError
		if errors.As(err, &amb) {
			return 0, 0, err
		}
	}
	if lerr != nil && rserr != nil {
		return 0, 0, &ColumnNotFoundError{Column: j.LeftKey}
	}
	return 0, 0, &ColumnNotFoundError{Column: j.RightKey}
}

// findColumn resolves a possibly-qualified column name against a
// table, accepting a unique ".name" suffix match.
func findColumn(t *table.Table, name string) (int, error) {
	if i, ok := t.ColumnIndex(name); ok {
		return i, nil
	}
	suffix := "." + name
	found := -1
	for i, colName := range t.ColumnNames() {
		if len(colName) > len(suffix) && colName[len(colName)-len(suffix):] == suffix {
			if found >= 0 {
				return 0, &AmbiguousColumnError{Column: name}
			}
			found = i
		}
	}
	if found < 0 {
		return 0, &ColumnNotFoundError{Column: name}
	}
	return found, nil
}

// joinKey normalizes a value for hashing. Numeric keys collapse onto
// float64 so an int64 key matches the equal float64 key, the same way
// the comparison operators treat them.
func joinKey(v interface{}) interface{} {
	switch n := v.(type) {
	case nil:
		return nil
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return v
	}
}
