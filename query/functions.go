package query

import (
	"fmt"
	"math"
	"strings"
)

// scalarFunc is one entry of the scalar function registry. maxArgs of -1
// means variadic.
type scalarFunc struct {
	minArgs int
	maxArgs int
	apply   func(args []interface{}) (interface{}, error)
}

// scalarFuncs is the registry of supported scalar functions. All functions
// propagate NULL arguments except COALESCE, which exists to absorb them.
var scalarFuncs = map[string]scalarFunc{
	"upper": {minArgs: 1, maxArgs: 1, apply: func(args []interface{}) (interface{}, error) {
		s, err := stringArg("UPPER", args[0])
		if err != nil || s == nil {
			return nil, err
		}
		return strings.ToUpper(*s), nil
	}},
	"lower": {minArgs: 1, maxArgs: 1, apply: func(args []interface{}) (interface{}, error) {
		s, err := stringArg("LOWER", args[0])
		if err != nil || s == nil {
			return nil, err
		}
		return strings.ToLower(*s), nil
	}},
	"length": {minArgs: 1, maxArgs: 1, apply: func(args []interface{}) (interface{}, error) {
		s, err := stringArg("LENGTH", args[0])
		if err != nil || s == nil {
			return nil, err
		}
		return int64(len(*s)), nil
	}},
	"abs": {minArgs: 1, maxArgs: 1, apply: func(args []interface{}) (interface{}, error) {
		switch v := args[0].(type) {
		case nil:
			return nil, nil
		case int64:
			if v < 0 {
				return -v, nil
			}
			return v, nil
		case float64:
			return math.Abs(v), nil
		default:
			return nil, fmt.Errorf("ABS: expected a number, got %s", typeName(args[0]))
		}
	}},
	"round": {minArgs: 1, maxArgs: 2, apply: func(args []interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		num, ok := toFloat64(args[0])
		if !ok {
			return nil, fmt.Errorf("ROUND: expected a number, got %s", typeName(args[0]))
		}
		digits := int64(0)
		if len(args) == 2 {
			if args[1] == nil {
				return nil, nil
			}
			d, ok := args[1].(int64)
			if !ok {
				return nil, fmt.Errorf("ROUND: digits must be an integer, got %s", typeName(args[1]))
			}
			digits = d
		}
		scale := math.Pow(10, float64(digits))
		return math.Round(num*scale) / scale, nil
	}},
	"coalesce": {minArgs: 1, maxArgs: -1, apply: func(args []interface{}) (interface{}, error) {
		for _, arg := range args {
			if arg != nil {
				return arg, nil
			}
		}
		return nil, nil
	}},
}

// stringArg narrows a function argument to string or NULL.
func stringArg(fn string, v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%s: expected a string, got %s", fn, typeName(v))
	}
	return &s, nil
}
