package table

import "fmt"

// Type is the declared type of a column.
//
// Cell values are dynamically typed: int64, float64, string, bool, with nil
// representing NULL regardless of the column type.
type Type int

const (
	// TypeNull is the type of a column with no non-null values.
	TypeNull Type = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeBoolean
)

// String returns the SQL-ish name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "TEXT"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// TypeOf returns the column type matching a cell value.
func TypeOf(v interface{}) Type {
	switch v.(type) {
	case nil:
		return TypeNull
	case int64:
		return TypeInteger
	case float64:
		return TypeFloat
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	default:
		return TypeString
	}
}

// CommonType returns the narrowest type that accepts values of both inputs.
// Integer widens to Float; NULL unifies with anything; everything else only
// unifies with itself.
func CommonType(a, b Type) (Type, bool) {
	if a == b {
		return a, true
	}
	if a == TypeNull {
		return b, true
	}
	if b == TypeNull {
		return a, true
	}
	if (a == TypeInteger && b == TypeFloat) || (a == TypeFloat && b == TypeInteger) {
		return TypeFloat, true
	}
	return TypeNull, false
}
