// Package ingest parses external files into columnar tables.
//
// Three formats are supported: delimited text (CSV), JSON record arrays, and
// parquet. Each ingester scans the whole input, infers a type per column,
// and materializes an immutable table.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vegasq/csvql/table"
)

// CSVOptions configures the CSV ingester.
type CSVOptions struct {
	// Header treats the first row as column names. Without it columns are
	// named col0, col1, ...
	Header bool
	// Delimiter is the field separator. Zero means comma.
	Delimiter rune
}

// MalformedRowError is returned when a CSV row's field count differs from
// the header's. Row is the 1-based data row index.
type MalformedRowError struct {
	Row      int
	Expected int
	Got      int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row %d: expected %d fields, got %d", e.Row, e.Expected, e.Got)
}

// ReadCSV parses delimited text into a table.
//
// Column types are inferred by scanning every row and picking the narrowest
// type that accepts all values: a column of true/false literals is Boolean,
// otherwise Integer narrows to Float narrows to String. Empty fields are
// NULL and do not constrain the type.
func ReadCSV(r io.Reader, opts CSVOptions) (*table.Table, error) {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	// Field count mismatches are reported as MalformedRowError below, with
	// the offending row index.
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	var names []string
	if opts.Header {
		if len(records) == 0 {
			return nil, fmt.Errorf("CSV input is empty, expected a header row")
		}
		names = records[0]
		records = records[1:]
	} else if len(records) > 0 {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = fmt.Sprintf("col%d", i)
		}
	}

	for i, rec := range records {
		if len(rec) != len(names) {
			return nil, &MalformedRowError{Row: i + 1, Expected: len(names), Got: len(rec)}
		}
	}

	cols := make([]table.Column, len(names))
	for c, name := range names {
		values := make([]string, len(records))
		for r := range records {
			values[r] = records[r][c]
		}
		cols[c] = inferColumn(name, values)
	}

	return table.New(cols)
}

// LoadCSVFile reads the file at path through ReadCSV.
func LoadCSVFile(path string, opts CSVOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// inferColumn picks the narrowest type accepting every raw value and
// converts the values to it.
func inferColumn(name string, raw []string) table.Column {
	canInt, canFloat, canBool := true, true, true
	allEmpty := true

	for _, v := range raw {
		if v == "" {
			continue
		}
		allEmpty = false
		if canInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				canInt = false
			}
		}
		if canFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				canFloat = false
			}
		}
		if canBool {
			if lower := strings.ToLower(v); lower != "true" && lower != "false" {
				canBool = false
			}
		}
	}

	typ := table.TypeString
	switch {
	case allEmpty:
		typ = table.TypeNull
	case canBool:
		typ = table.TypeBoolean
	case canInt:
		typ = table.TypeInteger
	case canFloat:
		typ = table.TypeFloat
	}

	values := make([]interface{}, len(raw))
	for i, v := range raw {
		if v == "" {
			continue // NULL
		}
		switch typ {
		case table.TypeInteger:
			n, _ := strconv.ParseInt(v, 10, 64)
			values[i] = n
		case table.TypeFloat:
			f, _ := strconv.ParseFloat(v, 64)
			values[i] = f
		case table.TypeBoolean:
			values[i] = strings.ToLower(v) == "true"
		default:
			values[i] = v
		}
	}

	return table.Column{Name: name, Type: typ, Values: values}
}
