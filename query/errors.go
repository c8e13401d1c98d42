package query

import "fmt"

// UnsupportedSyntaxError is returned when a statement uses a construct
// outside the supported SQL subset. Token is the offending token text.
type UnsupportedSyntaxError struct {
	Token string
}

func (e *UnsupportedSyntaxError) Error() string {
	return fmt.Sprintf("unsupported syntax near %q", e.Token)
}

// TypeMismatchError is returned when an operator is applied to incompatible
// operand types. There is no implicit string-to-number coercion.
type TypeMismatchError struct {
	Operator string
	Left     string
	Right    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: cannot apply %s to %s and %s", e.Operator, e.Left, e.Right)
}

// DivisionByZeroError is returned when a division's right operand is zero.
type DivisionByZeroError struct{}

func (e *DivisionByZeroError) Error() string {
	return "division by zero"
}

// AmbiguousColumnError is returned when an unqualified column reference
// matches columns from more than one joined table.
type AmbiguousColumnError struct {
	Column string
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("column reference %q is ambiguous", e.Column)
}

// ColumnNotFoundError is returned when a column reference matches nothing in
// the current row.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}
