package query

import (
	"fmt"

	"github.com/vegasq/csvql/table"
)

// Aggregate groups input rows and computes aggregate functions per
// group. Groups appear in output in the order their first row appears
// in the input. Without GROUP BY the whole input forms one group, and
// an empty input still produces a single row of aggregates.
type Aggregate struct {
	Input   Operator
	GroupBy []string
	Items   []SelectItem
	Having  Expr
}

// newAggregate validates the select list against the GROUP BY clause:
// every column referenced outside an aggregate must be a grouping
// column.
func newAggregate(input Operator, stmt *SelectStmt) (*Aggregate, error) {
	grouped := make(map[string]bool, len(stmt.GroupBy))
	for _, name := range stmt.GroupBy {
		grouped[name] = true
	}

	for _, item := range stmt.Items {
		if isStar(item) {
			return nil, &UnsupportedSyntaxError{Token: "*"}
		}
		for _, ref := range bareColumnRefs(item.Expr) {
			if !grouped[ref] {
				return nil, fmt.Errorf("column %q must appear in GROUP BY or inside an aggregate", ref)
			}
		}
	}

	return &Aggregate{
		Input:   input,
		GroupBy: stmt.GroupBy,
		Items:   stmt.Items,
		Having:  stmt.Having,
	}, nil
}

// bareColumnRefs collects the column names referenced by an expression
// outside of aggregate calls.
func bareColumnRefs(e Expr) []string {
	switch v := e.(type) {
	case *ColumnRef:
		return []string{v.Name}
	case *BinaryExpr:
		return append(bareColumnRefs(v.Left), bareColumnRefs(v.Right)...)
	case *UnaryExpr:
		return bareColumnRefs(v.Operand)
	case *IsNullExpr:
		return bareColumnRefs(v.Operand)
	case *FunctionCall:
		var refs []string
		for _, arg := range v.Args {
			refs = append(refs, bareColumnRefs(arg)...)
		}
		return refs
	default:
		// Literals and aggregates contribute nothing.
		return nil
	}
}

// group is one bucket of input rows sharing a grouping key.
type group struct {
	rows []int
}

func (a *Aggregate) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := a.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.done(); err != nil {
		return nil, err
	}

	groupCols := make([]int, len(a.GroupBy))
	for i, name := range a.GroupBy {
		col, err := findColumn(input, name)
		if err != nil {
			return nil, err
		}
		groupCols[i] = col
	}

	// Bucket rows, keeping first-seen group order.
	var groups []group
	index := make(map[string]int)
	for row := 0; row < input.NumRows(); row++ {
		key := ""
		for _, col := range groupCols {
			key += cellKey(input.Value(col, row))
		}
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, group{})
		}
		groups[g].rows = append(groups[g].rows, row)
	}
	if len(groups) == 0 && len(a.GroupBy) == 0 {
		groups = append(groups, group{})
	}

	// HAVING aggregates become hidden output columns so the predicate
	// can be evaluated row-wise against the grouped result.
	items := a.Items
	having := a.Having
	var hidden []string
	if having != nil {
		having = rewriteAggregates(having, func(agg *AggregateExpr) Expr {
			name := fmt.Sprintf("__having_%d", len(hidden))
			hidden = append(hidden, name)
			items = append(items, SelectItem{Expr: agg, Alias: name})
			return &ColumnRef{Name: name}
		})
	}

	values := make([][]interface{}, len(items))
	for i := range values {
		values[i] = make([]interface{}, len(groups))
	}
	for g, grp := range groups {
		for i, item := range items {
			v, err := a.evalItem(item.Expr, input, grp)
			if err != nil {
				return nil, err
			}
			values[i][g] = v
		}
	}

	visible := len(items) - len(hidden)
	seen := make(map[string]bool, visible)
	cols := make([]table.Column, len(items))
	for i, item := range items {
		name := item.OutputName()
		if i < visible {
			if seen[name] {
				return nil, &table.DuplicateColumnError{Column: name}
			}
			seen[name] = true
		}
		cols[i] = table.Column{Name: name, Type: columnTypeOf(values[i]), Values: values[i]}
	}

	out, err := table.New(cols)
	if err != nil {
		return nil, err
	}

	if having != nil {
		var keep []int
		for row := 0; row < out.NumRows(); row++ {
			ok, err := predicateHolds(having, tableRow{tbl: out, idx: row})
			if err != nil {
				return nil, err
			}
			if ok {
				keep = append(keep, row)
			}
		}
		out, err = takeRows(out, keep)
		if err != nil {
			return nil, err
		}
	}

	if len(hidden) == 0 {
		return out, nil
	}
	return takeColumns(out, visible)
}

// takeColumns keeps the first n columns of a table.
func takeColumns(t *table.Table, n int) (*table.Table, error) {
	return table.New(t.Columns()[:n])
}

// evalItem evaluates one select-list expression for a group. Aggregate
// calls consume the whole group and are folded in as literals first, so
// expressions like sum(amt) + 1 work; the remainder is evaluated
// against the group's first row, which validation guarantees only
// touches grouping columns.
func (a *Aggregate) evalItem(e Expr, input *table.Table, grp group) (interface{}, error) {
	var aggErr error
	e = rewriteAggregates(e, func(agg *AggregateExpr) Expr {
		v, err := a.evalAggregate(agg, input, grp)
		if err != nil && aggErr == nil {
			aggErr = err
		}
		return &Literal{Value: v}
	})
	if aggErr != nil {
		return nil, aggErr
	}
	if len(grp.rows) == 0 {
		return e.Eval(emptyRow{})
	}
	return e.Eval(tableRow{tbl: input, idx: grp.rows[0]})
}

// emptyRow backs expression evaluation for the aggregate-over-nothing
// case, where no input row exists to resolve columns against.
type emptyRow struct{}

func (emptyRow) Lookup(name string) (interface{}, error) {
	return nil, &ColumnNotFoundError{Column: name}
}

// evalAggregate computes a single aggregate over a group's rows.
// NULL inputs are skipped; SUM, AVG, MIN and MAX of no values is
// NULL, while COUNT of no values is zero.
func (a *Aggregate) evalAggregate(agg *AggregateExpr, input *table.Table, grp group) (interface{}, error) {
	if agg.Star {
		return int64(len(grp.rows)), nil
	}

	var vals []interface{}
	for _, row := range grp.rows {
		v, err := agg.Arg.Eval(tableRow{tbl: input, idx: row})
		if err != nil {
			return nil, err
		}
		if v != nil {
			vals = append(vals, v)
		}
	}

	switch agg.Function {
	case "count":
		return int64(len(vals)), nil

	case "sum":
		if len(vals) == 0 {
			return nil, nil
		}
		return sumValues(agg.Function, vals)

	case "avg":
		if len(vals) == 0 {
			return nil, nil
		}
		sum, err := sumValues(agg.Function, vals)
		if err != nil {
			return nil, err
		}
		f, _ := toFloat64(sum)
		return f / float64(len(vals)), nil

	case "min", "max":
		if len(vals) == 0 {
			return nil, nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			if err := comparableForAggregate(agg.Function, best, v); err != nil {
				return nil, err
			}
			cmp := compareValues(v, best)
			if (agg.Function == "min" && cmp < 0) || (agg.Function == "max" && cmp > 0) {
				best = v
			}
		}
		return best, nil

	default:
		return nil, &UnsupportedSyntaxError{Token: agg.Function}
	}
}

// sumValues adds numeric values, returning int64 when every input is
// an integer and float64 otherwise.
func sumValues(fn string, vals []interface{}) (interface{}, error) {
	allInts := true
	var intSum int64
	var floatSum float64
	for _, v := range vals {
		switch n := v.(type) {
		case int64:
			intSum += n
			floatSum += float64(n)
		case float64:
			allInts = false
			floatSum += n
		default:
			return nil, &TypeMismatchError{Operator: fn, Left: typeName(v), Right: typeName(v)}
		}
	}
	if allInts {
		return intSum, nil
	}
	return floatSum, nil
}

// comparableForAggregate rejects mixed-type MIN/MAX inputs that the
// ordering cannot handle, such as a string next to a number.
func comparableForAggregate(fn string, a, b interface{}) error {
	_, aNum := toFloat64(a)
	_, bNum := toFloat64(b)
	if aNum != bNum {
		return &TypeMismatchError{Operator: fn, Left: typeName(a), Right: typeName(b)}
	}
	if !aNum {
		if _, ok := a.(string); ok {
			if _, ok := b.(string); !ok {
				return &TypeMismatchError{Operator: fn, Left: typeName(a), Right: typeName(b)}
			}
		}
	}
	return nil
}

// rewriteAggregates returns a copy of the expression with every
// aggregate call replaced by the expression produced by replace.
func rewriteAggregates(e Expr, replace func(*AggregateExpr) Expr) Expr {
	switch v := e.(type) {
	case *AggregateExpr:
		return replace(v)
	case *BinaryExpr:
		return &BinaryExpr{
			Left:     rewriteAggregates(v.Left, replace),
			Operator: v.Operator,
			Right:    rewriteAggregates(v.Right, replace),
		}
	case *UnaryExpr:
		return &UnaryExpr{Operator: v.Operator, Operand: rewriteAggregates(v.Operand, replace)}
	case *IsNullExpr:
		return &IsNullExpr{Operand: rewriteAggregates(v.Operand, replace), Negate: v.Negate}
	case *FunctionCall:
		args := make([]Expr, len(v.Args))
		for i, arg := range v.Args {
			args[i] = rewriteAggregates(arg, replace)
		}
		return &FunctionCall{Name: v.Name, Args: args}
	default:
		return e
	}
}
