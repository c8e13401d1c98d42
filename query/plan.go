package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vegasq/csvql/table"
)

// ExecContext holds the state an operator tree executes against.
type ExecContext struct {
	// Catalog resolves table names referenced by the plan.
	Catalog *table.Catalog
	// Context cancels long-running plans between pipeline stages.
	Context context.Context
}

// done reports whether the execution context has been cancelled.
func (ctx *ExecContext) done() error {
	if ctx.Context == nil {
		return nil
	}
	return ctx.Context.Err()
}

// Operator is a node in the execution plan. Each operator consumes the
// output of its child and produces a new table.
type Operator interface {
	Execute(ctx *ExecContext) (*table.Table, error)
}

// tableRow is a read-only view over a single row of a table. It
// implements the column resolution rules: an exact name match wins,
// otherwise a unique ".name" suffix match is accepted.
type tableRow struct {
	tbl *table.Table
	idx int
}

func (r tableRow) Lookup(name string) (interface{}, error) {
	if col, ok := r.tbl.ColumnIndex(name); ok {
		return r.tbl.Value(col, r.idx), nil
	}

	suffix := "." + name
	found := -1
	for i, colName := range r.tbl.ColumnNames() {
		if len(colName) > len(suffix) && colName[len(colName)-len(suffix):] == suffix {
			if found >= 0 {
				return nil, &AmbiguousColumnError{Column: name}
			}
			found = i
		}
	}
	if found < 0 {
		return nil, &ColumnNotFoundError{Column: name}
	}
	return r.tbl.Value(found, r.idx), nil
}

// Scan reads a table out of the catalog. The result shares the stored
// table's column arrays; downstream operators never mutate them.
type Scan struct {
	Table string
}

func (s *Scan) Execute(ctx *ExecContext) (*table.Table, error) {
	return ctx.Catalog.Get(s.Table)
}

// Prefix qualifies every column name with a table alias, producing
// names of the form "alias.column". It is applied on each side of a
// join so both inputs can be referenced unambiguously.
type Prefix struct {
	Input     Operator
	Qualifier string
}

func (p *Prefix) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := p.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}

	cols := make([]table.Column, input.NumColumns())
	for i, col := range input.Columns() {
		cols[i] = table.Column{
			Name:   p.Qualifier + "." + col.Name,
			Type:   col.Type,
			Values: col.Values,
		}
	}
	return table.New(cols)
}

// Filter keeps only the rows for which the predicate evaluates to
// true. Rows where the predicate is false or NULL are excluded.
type Filter struct {
	Input Operator
	Pred  Expr
}

func (f *Filter) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := f.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.done(); err != nil {
		return nil, err
	}

	var keep []int
	for i := 0; i < input.NumRows(); i++ {
		ok, err := predicateHolds(f.Pred, tableRow{tbl: input, idx: i})
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}

	return takeRows(input, keep)
}

// takeRows builds a new table holding the given row indices of the
// input, in order. Column names and types are preserved.
func takeRows(input *table.Table, rows []int) (*table.Table, error) {
	cols := make([]table.Column, input.NumColumns())
	for i, col := range input.Columns() {
		values := make([]interface{}, len(rows))
		for j, row := range rows {
			values[j] = col.Values[row]
		}
		cols[i] = table.Column{Name: col.Name, Type: col.Type, Values: values}
	}
	return table.New(cols)
}

// Project evaluates the select list against each input row. A bare
// star expands to all input columns in order.
type Project struct {
	Input Operator
	Items []SelectItem
}

func (p *Project) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := p.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.done(); err != nil {
		return nil, err
	}

	// SELECT * with nothing else keeps the input as-is.
	if len(p.Items) == 1 && isStar(p.Items[0]) {
		return input, nil
	}

	var names []string
	var exprs []Expr
	for _, item := range p.Items {
		if isStar(item) {
			for _, col := range input.Columns() {
				names = append(names, col.Name)
				exprs = append(exprs, &ColumnRef{Name: col.Name})
			}
			continue
		}
		names = append(names, item.OutputName())
		exprs = append(exprs, item.Expr)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, &table.DuplicateColumnError{Column: name}
		}
		seen[name] = true
	}

	values := make([][]interface{}, len(exprs))
	for i := range values {
		values[i] = make([]interface{}, input.NumRows())
	}
	for row := 0; row < input.NumRows(); row++ {
		view := tableRow{tbl: input, idx: row}
		for i, expr := range exprs {
			v, err := expr.Eval(view)
			if err != nil {
				return nil, err
			}
			values[i][row] = v
		}
	}

	cols := make([]table.Column, len(exprs))
	for i := range exprs {
		cols[i] = table.Column{Name: names[i], Type: columnTypeOf(values[i]), Values: values[i]}
	}
	return table.New(cols)
}

func isStar(item SelectItem) bool {
	ref, ok := item.Expr.(*ColumnRef)
	return ok && ref.Name == "*"
}

// columnTypeOf infers a column type by unifying the types of its
// values. Columns that cannot be unified fall back to TEXT.
func columnTypeOf(values []interface{}) table.Type {
	typ := table.TypeNull
	for _, v := range values {
		unified, ok := table.CommonType(typ, table.TypeOf(v))
		if !ok {
			return table.TypeString
		}
		typ = unified
	}
	return typ
}

// Distinct removes duplicate rows, keeping the first occurrence.
type Distinct struct {
	Input Operator
}

func (d *Distinct) Execute(ctx *ExecContext) (*table.Table, error) {
	input, err := d.Input.Execute(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var keep []int
	for i := 0; i < input.NumRows(); i++ {
		key := ""
		for col := 0; col < input.NumColumns(); col++ {
			key += cellKey(input.Value(col, i))
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	return takeRows(input, keep)
}

// cellKey encodes a cell for DISTINCT and GROUP BY hashing. The
// encoding is tagged by kind so a number, a string and a bool never
// collide, while int64 and float64 collapse together the same way the
// comparison operators and join keys treat them. Strings are quoted so
// the separator cannot appear unescaped.
func cellKey(v interface{}) string {
	switch n := joinKey(v).(type) {
	case nil:
		return "_;"
	case float64:
		return "n" + strconv.FormatFloat(n, 'g', -1, 64) + ";"
	case string:
		return "s" + strconv.Quote(n) + ";"
	case bool:
		return "b" + strconv.FormatBool(n) + ";"
	default:
		return fmt.Sprintf("%#v;", n)
	}
}

// BuildPlan compiles a statement into an operator tree.
func BuildPlan(stmt Statement) (Operator, error) {
	switch s := stmt.(type) {
	case *SelectStmt:
		return buildSelect(s)
	case *CreateTableStmt:
		return buildCreateTable(s)
	case *CopyStmt:
		return buildCopy(s)
	default:
		return nil, fmt.Errorf("unknown statement type %T", stmt)
	}
}

// buildSelect assembles the pipeline:
// scan -> joins -> filter -> aggregate|project -> distinct -> sort -> offset/limit.
func buildSelect(stmt *SelectStmt) (Operator, error) {
	var op Operator = &Scan{Table: stmt.From.Name}

	if len(stmt.Joins) == 0 {
		// A single table is scanned under bare column names, so
		// references written as alias.column resolve by dropping the
		// qualifier.
		stmt = stripQualifiers(stmt, stmt.From.Qualifier())
	}

	if len(stmt.Joins) > 0 {
		op = &Prefix{Input: op, Qualifier: stmt.From.Qualifier()}
		for _, join := range stmt.Joins {
			var right Operator = &Scan{Table: join.Table.Name}
			right = &Prefix{Input: right, Qualifier: join.Table.Qualifier()}
			op = &HashJoin{
				Left:     op,
				Right:    right,
				LeftKey:  join.LeftKey,
				RightKey: join.RightKey,
				Type:     join.Type,
			}
		}
	}

	if stmt.Where != nil {
		op = &Filter{Input: op, Pred: stmt.Where}
	}

	if len(stmt.GroupBy) > 0 || HasAggregate(stmt.Items) {
		agg, err := newAggregate(op, stmt)
		if err != nil {
			return nil, err
		}
		op = agg
	} else {
		if stmt.Having != nil {
			return nil, &UnsupportedSyntaxError{Token: "HAVING"}
		}
		op = &Project{Input: op, Items: stmt.Items}
	}

	if stmt.Distinct {
		op = &Distinct{Input: op}
	}

	if len(stmt.OrderBy) > 0 {
		op = &Sort{Input: op, Items: stmt.OrderBy}
	}

	if stmt.Offset != nil {
		op = &Offset{Input: op, N: *stmt.Offset}
	}
	if stmt.Limit != nil {
		op = &Limit{Input: op, N: *stmt.Limit}
	}

	return op, nil
}

// stripQualifiers returns a copy of the statement with the table's
// qualifier removed from every column reference.
func stripQualifiers(stmt *SelectStmt, qualifier string) *SelectStmt {
	prefix := qualifier + "."
	rename := func(name string) string {
		return strings.TrimPrefix(name, prefix)
	}

	out := *stmt
	out.Items = make([]SelectItem, len(stmt.Items))
	for i, item := range stmt.Items {
		out.Items[i] = SelectItem{Expr: rewriteColumnRefs(item.Expr, rename), Alias: item.Alias}
	}
	if stmt.Where != nil {
		out.Where = rewriteColumnRefs(stmt.Where, rename)
	}
	if stmt.Having != nil {
		out.Having = rewriteColumnRefs(stmt.Having, rename)
	}
	out.GroupBy = make([]string, len(stmt.GroupBy))
	for i, name := range stmt.GroupBy {
		out.GroupBy[i] = rename(name)
	}
	out.OrderBy = make([]OrderByItem, len(stmt.OrderBy))
	for i, item := range stmt.OrderBy {
		out.OrderBy[i] = OrderByItem{Column: rename(item.Column), Desc: item.Desc}
	}
	return &out
}

// rewriteColumnRefs returns a copy of the expression with every column
// reference renamed.
func rewriteColumnRefs(e Expr, rename func(string) string) Expr {
	switch v := e.(type) {
	case *ColumnRef:
		return &ColumnRef{Name: rename(v.Name)}
	case *BinaryExpr:
		return &BinaryExpr{
			Left:     rewriteColumnRefs(v.Left, rename),
			Operator: v.Operator,
			Right:    rewriteColumnRefs(v.Right, rename),
		}
	case *UnaryExpr:
		return &UnaryExpr{Operator: v.Operator, Operand: rewriteColumnRefs(v.Operand, rename)}
	case *IsNullExpr:
		return &IsNullExpr{Operand: rewriteColumnRefs(v.Operand, rename), Negate: v.Negate}
	case *FunctionCall:
		args := make([]Expr, len(v.Args))
		for i, arg := range v.Args {
			args[i] = rewriteColumnRefs(arg, rename)
		}
		return &FunctionCall{Name: v.Name, Args: args}
	case *AggregateExpr:
		if v.Star {
			return v
		}
		return &AggregateExpr{Function: v.Function, Arg: rewriteColumnRefs(v.Arg, rename)}
	default:
		return e
	}
}
