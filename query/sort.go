package query

import (
	"sort"

	"github.com/vegasq/csvql/table"
)

// Sort orders rows by the ORDER BY columns. The sort is stable, so
// rows equal under every key keep their input order. NULLs sort first
// ascending and last descending.
type Sort struct {
	Input Operator
	Items []OrderByItem
}

func (s *Sort) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := s.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.done(); err != nil {
		return nil, err
	}

	cols := make([]int, len(s.Items))
	for i, item := range s.Items {
		col, err := findColumn(input, item.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	order := make([]int, input.NumRows())
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		for i, col := range cols {
			cmp := compareValues(input.Value(col, order[a]), input.Value(col, order[b]))
			if cmp == 0 {
				continue
			}
			if s.Items[i].Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	return takeRows(input, order)
}

// Limit caps the number of output rows.
type Limit struct {
	Input Operator
	N     int64
}

func (l *Limit) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := l.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if int64(input.NumRows()) <= l.N {
		return input, nil
	}
	rows := make([]int, l.N)
	for i := range rows {
		rows[i] = i
	}
	return takeRows(input, rows)
}

// Offset skips the first N output rows.
type Offset struct {
	Input Operator
	N     int64
}

func (o *Offset) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := o.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if o.N <= 0 {
		return input, nil
	}
	var rows []int
	for i := int(o.N); i < input.NumRows(); i++ {
		rows = append(rows, i)
	}
	return takeRows(input, rows)
}
