// Package output writes tables to files and terminals.
//
// Supported file formats:
//   - CSV: header row by default, NULL as an empty field
//   - JSON Lines: one JSON object per row
//   - Parquet: one optional leaf column per table column
//
// Example usage:
//
//	if err := output.WriteCSVFile("out.csv", tbl, output.CSVOptions{Header: true, Delimiter: ','}); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"fmt"
	"strconv"
	"strings"
)

// IOError wraps a filesystem failure with the path being written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// formatValue converts a cell to its CSV text form. NULL becomes the
// empty field, so a written file reloads to the same table.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		// Keep a decimal point so the value reloads as a float, not
		// an integer.
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
