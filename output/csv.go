package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/vegasq/csvql/table"
)

// CSVOptions controls CSV output.
type CSVOptions struct {
	// Header writes the column names as the first record.
	Header bool
	// Delimiter separates fields. Zero means comma.
	Delimiter rune
}

// WriteCSV writes a table as CSV.
func WriteCSV(w io.Writer, t *table.Table, opts CSVOptions) error {
	csvWriter := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		csvWriter.Comma = opts.Delimiter
	}

	if opts.Header {
		if err := csvWriter.Write(t.ColumnNames()); err != nil {
			return err
		}
	}

	record := make([]string, t.NumColumns())
	for row := 0; row < t.NumRows(); row++ {
		for col := 0; col < t.NumColumns(); col++ {
			record[col] = formatValue(t.Value(col, row))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// WriteCSVFile writes a table to a CSV file.
func WriteCSVFile(path string, t *table.Table, opts CSVOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	if err := WriteCSV(f, t, opts); err != nil {
		_ = f.Close()
		return &IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
