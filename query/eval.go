package query

import (
	"github.com/vegasq/csvql/table"
)

// Row provides column lookup during expression evaluation.
//
// Lookup resolves a possibly qualified reference: an exact column name
// match wins; otherwise an unqualified name matches any column with a
// ".name" suffix. No match fails with ColumnNotFoundError, more than one
// with AmbiguousColumnError.
type Row interface {
	Lookup(name string) (interface{}, error)
}

// compare compares two values using the given operator.
//
// Three-valued logic: any NULL operand yields NULL. Numbers compare with
// integer-to-float promotion; strings and booleans compare within their own
// type; anything else is a type mismatch.
func compare(left interface{}, operator TokenType, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)
	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, operator, rightNum), nil
	}

	leftStr, leftIsStr := left.(string)
	rightStr, rightIsStr := right.(string)
	if leftIsStr && rightIsStr {
		return compareStrings(leftStr, operator, rightStr), nil
	}

	leftBool, leftIsBool := left.(bool)
	rightBool, rightIsBool := right.(bool)
	if leftIsBool && rightIsBool {
		switch operator {
		case TokenEqual:
			return leftBool == rightBool, nil
		case TokenNotEqual:
			return leftBool != rightBool, nil
		default:
			return nil, &TypeMismatchError{Operator: operator.String(), Left: "BOOLEAN", Right: "BOOLEAN"}
		}
	}

	return nil, &TypeMismatchError{Operator: operator.String(), Left: typeName(left), Right: typeName(right)}
}

// compareNumbers compares two numbers
func compareNumbers(left float64, operator TokenType, right float64) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// arithmetic applies +, -, *, / with numeric promotion. Integer operands
// stay integer unless mixed with a float. Any NULL operand yields NULL.
func arithmetic(left interface{}, operator TokenType, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	leftInt, leftIsInt := left.(int64)
	rightInt, rightIsInt := right.(int64)
	if leftIsInt && rightIsInt {
		switch operator {
		case TokenPlus:
			return leftInt + rightInt, nil
		case TokenMinus:
			return leftInt - rightInt, nil
		case TokenStar:
			return leftInt * rightInt, nil
		case TokenSlash:
			if rightInt == 0 {
				return nil, &DivisionByZeroError{}
			}
			return leftInt / rightInt, nil
		}
	}

	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)
	if !leftIsNum || !rightIsNum {
		return nil, &TypeMismatchError{Operator: operator.String(), Left: typeName(left), Right: typeName(right)}
	}

	switch operator {
	case TokenPlus:
		return leftNum + rightNum, nil
	case TokenMinus:
		return leftNum - rightNum, nil
	case TokenStar:
		return leftNum * rightNum, nil
	case TokenSlash:
		if rightNum == 0 {
			return nil, &DivisionByZeroError{}
		}
		return leftNum / rightNum, nil
	default:
		return nil, &TypeMismatchError{Operator: operator.String(), Left: typeName(left), Right: typeName(right)}
	}
}

// evalConnective applies AND/OR with three-valued logic: NULL is unknown,
// but false AND unknown is false and true OR unknown is true.
func evalConnective(left interface{}, operator TokenType, right interface{}) (interface{}, error) {
	leftBool, err := asBoolOrNull(left, operator)
	if err != nil {
		return nil, err
	}
	rightBool, err := asBoolOrNull(right, operator)
	if err != nil {
		return nil, err
	}

	switch operator {
	case TokenAnd:
		if leftBool != nil && !*leftBool || rightBool != nil && !*rightBool {
			return false, nil
		}
		if leftBool == nil || rightBool == nil {
			return nil, nil
		}
		return true, nil
	default: // TokenOr
		if leftBool != nil && *leftBool || rightBool != nil && *rightBool {
			return true, nil
		}
		if leftBool == nil || rightBool == nil {
			return nil, nil
		}
		return false, nil
	}
}

// asBoolOrNull narrows a connective operand to bool or NULL.
func asBoolOrNull(v interface{}, operator TokenType) (*bool, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, &TypeMismatchError{Operator: operator.String(), Left: typeName(v), Right: "BOOLEAN"}
	}
	return &b, nil
}

// predicateHolds evaluates a predicate for row filtering: true keeps the
// row, false and NULL exclude it, non-boolean results are a mismatch.
func predicateHolds(pred Expr, row Row) (bool, error) {
	val, err := pred.Eval(row)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	b, ok := val.(bool)
	if !ok {
		return false, &TypeMismatchError{Operator: "WHERE", Left: typeName(val), Right: "BOOLEAN"}
	}
	return b, nil
}

// toFloat64 converts a numeric value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// typeName describes a cell value's type for error messages.
func typeName(v interface{}) string {
	return table.TypeOf(v).String()
}

// compareValues orders two values for sorting and MIN/MAX:
// -1 if a < b, 0 if equal, +1 if a > b. NULL sorts before everything.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		switch {
		case aStr < bStr:
			return -1
		case aStr > bStr:
			return 1
		default:
			return 0
		}
	}

	aBool, aIsBool := a.(bool)
	bBool, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		switch {
		case !aBool && bBool:
			return -1
		case aBool && !bBool:
			return 1
		default:
			return 0
		}
	}

	// Incomparable types keep their relative order.
	return 0
}
