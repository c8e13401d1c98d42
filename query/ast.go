package query

import (
	"fmt"
	"strings"

	"github.com/vegasq/csvql/table"
)

// Statement is a parsed SQL statement
type Statement interface {
	statement()
}

// SelectStmt represents a SELECT query
type SelectStmt struct {
	Distinct bool
	Items    []SelectItem
	From     TableRef
	Joins    []JoinClause
	Where    Expr
	GroupBy  []string
	Having   Expr
	OrderBy  []OrderByItem
	Limit    *int64
	Offset   *int64
}

// CreateTableStmt represents CREATE TABLE, with either a typed column list
// or an AS SELECT source.
type CreateTableStmt struct {
	Name    string
	Columns []ColumnDef
	As      *SelectStmt
}

// CopyStmt represents COPY ... FROM 'path' and COPY ... TO 'path'.
type CopyStmt struct {
	Table   string      // table name; empty when Query is set
	Query   *SelectStmt // COPY (SELECT ...) TO only
	Path    string
	To      bool
	Options CopyOptions
}

// CopyOptions carries the option list of a COPY statement.
type CopyOptions struct {
	Format    string // csv, json, parquet; empty means infer from extension
	Header    *bool
	Delimiter rune
}

func (*SelectStmt) statement()      {}
func (*CreateTableStmt) statement() {}
func (*CopyStmt) statement()        {}

// TableRef names a table with an optional alias
type TableRef struct {
	Name  string
	Alias string
}

// Qualifier returns the name columns are qualified with in join queries.
func (r TableRef) Qualifier() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.Name
}

// JoinType represents the type of join operation
type JoinType int

const (
	JoinInner     JoinType = iota // INNER JOIN (default)
	JoinLeftOuter                 // LEFT JOIN / LEFT OUTER JOIN
)

// JoinClause represents a JOIN ... ON left = right clause. The two key names
// are stored as written; the executor resolves which side each belongs to.
type JoinClause struct {
	Type     JoinType
	Table    TableRef
	LeftKey  string
	RightKey string
}

// OrderByItem represents a column to sort by
type OrderByItem struct {
	Column string
	Desc   bool
}

// SelectItem represents a column or expression in the SELECT list
type SelectItem struct {
	Expr  Expr
	Alias string
}

// OutputName returns the result column name for the item: the alias if set,
// otherwise a name derived from the expression.
func (s SelectItem) OutputName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return exprName(s.Expr)
}

// ColumnDef is one entry of a CREATE TABLE column list.
type ColumnDef struct {
	Name string
	Type table.Type
}

// Expr is an expression evaluated against one row. Eval returns nil for
// NULL; NULL propagates through comparisons and arithmetic per three-valued
// logic.
type Expr interface {
	Eval(row Row) (interface{}, error)
}

// ColumnRef references a column, optionally qualified (t.col).
type ColumnRef struct {
	Name string
}

// Eval resolves the column in the current row.
func (c *ColumnRef) Eval(row Row) (interface{}, error) {
	return row.Lookup(c.Name)
}

// Literal is a constant value (int64, float64, string, bool, or nil).
type Literal struct {
	Value interface{}
}

// Eval returns the literal value.
func (l *Literal) Eval(Row) (interface{}, error) {
	return l.Value, nil
}

// BinaryExpr is a comparison, boolean connective, or arithmetic operation.
type BinaryExpr struct {
	Left     Expr
	Operator TokenType
	Right    Expr
}

// Eval evaluates both operands and applies the operator.
func (b *BinaryExpr) Eval(row Row) (interface{}, error) {
	left, err := b.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	right, err := b.Right.Eval(row)
	if err != nil {
		return nil, err
	}

	switch b.Operator {
	case TokenAnd, TokenOr:
		return evalConnective(left, b.Operator, right)
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		return compare(left, b.Operator, right)
	case TokenPlus, TokenMinus, TokenStar, TokenSlash:
		return arithmetic(left, b.Operator, right)
	default:
		return nil, fmt.Errorf("unsupported binary operator: %v", b.Operator)
	}
}

// UnaryExpr is NOT expr or -expr.
type UnaryExpr struct {
	Operator TokenType
	Operand  Expr
}

// Eval evaluates the operand and applies the operator. NULL propagates.
func (u *UnaryExpr) Eval(row Row) (interface{}, error) {
	val, err := u.Operand.Eval(row)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, nil
	}

	switch u.Operator {
	case TokenNot:
		b, ok := val.(bool)
		if !ok {
			return nil, &TypeMismatchError{Operator: "NOT", Left: typeName(val), Right: "-"}
		}
		return !b, nil
	case TokenMinus:
		switch v := val.(type) {
		case int64:
			return -v, nil
		case float64:
			return -v, nil
		default:
			return nil, &TypeMismatchError{Operator: "-", Left: typeName(val), Right: "-"}
		}
	default:
		return nil, fmt.Errorf("unsupported unary operator: %v", u.Operator)
	}
}

// IsNullExpr is col IS NULL / col IS NOT NULL.
type IsNullExpr struct {
	Operand Expr
	Negate  bool
}

// Eval returns whether the operand is NULL. Unlike comparisons this never
// yields NULL itself.
func (i *IsNullExpr) Eval(row Row) (interface{}, error) {
	val, err := i.Operand.Eval(row)
	if err != nil {
		return nil, err
	}
	isNull := val == nil
	if i.Negate {
		return !isNull, nil
	}
	return isNull, nil
}

// FunctionCall is a scalar function invocation.
type FunctionCall struct {
	Name string
	Args []Expr
}

// Eval looks the function up in the registry and applies it.
func (f *FunctionCall) Eval(row Row) (interface{}, error) {
	fn, exists := scalarFuncs[strings.ToLower(f.Name)]
	if !exists {
		return nil, fmt.Errorf("unknown function: %s", f.Name)
	}
	if len(f.Args) < fn.minArgs || (fn.maxArgs >= 0 && len(f.Args) > fn.maxArgs) {
		return nil, fmt.Errorf("function %s: wrong number of arguments: %d", f.Name, len(f.Args))
	}

	args := make([]interface{}, len(f.Args))
	for i, arg := range f.Args {
		val, err := arg.Eval(row)
		if err != nil {
			return nil, fmt.Errorf("function %s: argument %d: %w", f.Name, i+1, err)
		}
		args[i] = val
	}
	return fn.apply(args)
}

// AggregateExpr is an aggregate function reference (COUNT, SUM, AVG, MIN,
// MAX). It cannot be evaluated per row; the aggregate operator computes it
// over a group.
type AggregateExpr struct {
	Function string
	Arg      Expr
	Star     bool // COUNT(*)
}

// Eval always fails: aggregates are computed by the aggregation operator.
func (a *AggregateExpr) Eval(Row) (interface{}, error) {
	return nil, fmt.Errorf("aggregate function %s cannot be evaluated on individual rows", a.Function)
}

// exprName derives a result column name from an expression.
func exprName(e Expr) string {
	switch expr := e.(type) {
	case *ColumnRef:
		// Qualified references surface under their bare column name.
		if i := strings.LastIndex(expr.Name, "."); i >= 0 {
			return expr.Name[i+1:]
		}
		return expr.Name
	case *FunctionCall:
		return strings.ToLower(expr.Name)
	case *AggregateExpr:
		return strings.ToLower(expr.Function)
	default:
		return ""
	}
}

// HasAggregate reports whether any select item contains an aggregate
// call, including aggregates nested inside expressions such as
// sum(amt) + 1.
func HasAggregate(items []SelectItem) bool {
	for _, item := range items {
		if containsAggregate(item.Expr) {
			return true
		}
	}
	return false
}

func containsAggregate(e Expr) bool {
	switch v := e.(type) {
	case *AggregateExpr:
		return true
	case *BinaryExpr:
		return containsAggregate(v.Left) || containsAggregate(v.Right)
	case *UnaryExpr:
		return containsAggregate(v.Operand)
	case *IsNullExpr:
		return containsAggregate(v.Operand)
	case *FunctionCall:
		for _, arg := range v.Args {
			if containsAggregate(arg) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
