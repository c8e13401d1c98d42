package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vegasq/csvql/table"
)

// SchemaConflictError is returned when the same key holds incompatible JSON
// types across records.
type SchemaConflictError struct {
	Key  string
	Have string
	Got  string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict on key %q: cannot unify %s with %s", e.Key, e.Have, e.Got)
}

// ReadJSONRecords parses a JSON array of flat records into a table.
//
// The column set is the union of keys across records, in first-seen order.
// Keys missing from a record yield NULL. Integer and Float unify to Float;
// any other cross-record type disagreement, or a nested object/array value,
// fails with SchemaConflictError.
func ReadJSONRecords(data []byte) (*table.Table, error) {
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("expected a JSON array of records, got %s", jsonTypeName(parsed))
	}

	var (
		names   []string
		index   = make(map[string]int)
		types   []table.Type
		columns [][]interface{}
	)
	numRows := 0

	var iterErr error
	parsed.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			iterErr = fmt.Errorf("record %d is not an object", numRows)
			return false
		}

		rec.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			col, seen := index[name]
			if !seen {
				col = len(names)
				index[name] = col
				names = append(names, name)
				types = append(types, table.TypeNull)
				// Backfill NULLs for rows read before this key appeared.
				columns = append(columns, make([]interface{}, numRows))
			}

			val, typ, err := jsonValue(value)
			if err != nil {
				iterErr = &SchemaConflictError{Key: name, Have: types[col].String(), Got: jsonTypeName(value)}
				return false
			}

			unified, ok := table.CommonType(types[col], typ)
			if !ok {
				iterErr = &SchemaConflictError{Key: name, Have: types[col].String(), Got: typ.String()}
				return false
			}
			types[col] = unified
			columns[col] = append(columns[col], val)
			return true
		})
		if iterErr != nil {
			return false
		}

		numRows++
		// Pad columns whose key was missing from this record.
		for c := range columns {
			if len(columns[c]) < numRows {
				columns[c] = append(columns[c], nil)
			}
		}
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}

	cols := make([]table.Column, len(names))
	for c, name := range names {
		if types[c] == table.TypeFloat {
			promoteIntegers(columns[c])
		}
		cols[c] = table.Column{Name: name, Type: types[c], Values: columns[c]}
	}

	return table.New(cols)
}

// LoadJSONFile reads the file at path through ReadJSONRecords.
func LoadJSONFile(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	t, err := ReadJSONRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// jsonValue converts a scalar gjson result to a cell value and its type.
// Nested objects and arrays are rejected: records must be flat.
func jsonValue(v gjson.Result) (interface{}, table.Type, error) {
	switch v.Type {
	case gjson.Null:
		return nil, table.TypeNull, nil
	case gjson.True:
		return true, table.TypeBoolean, nil
	case gjson.False:
		return false, table.TypeBoolean, nil
	case gjson.String:
		return v.String(), table.TypeString, nil
	case gjson.Number:
		if strings.ContainsAny(v.Raw, ".eE") {
			return v.Float(), table.TypeFloat, nil
		}
		return v.Int(), table.TypeInteger, nil
	default:
		return nil, table.TypeNull, fmt.Errorf("nested value")
	}
}

// jsonTypeName describes a gjson result for error messages.
func jsonTypeName(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "array"
	case v.IsObject():
		return "object"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.True || v.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}

// promoteIntegers rewrites int64 cells as float64 after a column widened to
// Float.
func promoteIntegers(values []interface{}) {
	for i, v := range values {
		if n, ok := v.(int64); ok {
			values[i] = float64(n)
		}
	}
}
