package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/csvql/table"
)

// ReadParquetFile reads a parquet file into a table.
//
// The whole file is materialized in memory. Column order follows the
// parquet schema. Leaf values map onto engine types: integer widths collapse
// to Integer, float widths to Float, byte arrays to String.
func ReadParquetFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	pqFile, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}

	schema := pqFile.Schema()
	names := make([]string, 0, len(schema.Fields()))
	for _, field := range schema.Fields() {
		names = append(names, field.Name())
	}

	reader := parquet.NewReader(pqFile)
	defer func() { _ = reader.Close() }()

	columns := make([][]interface{}, len(names))
	types := make([]table.Type, len(names))

	for {
		row := make(map[string]interface{})
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		for c, name := range names {
			val := normalizeParquetValue(row[name])
			unified, ok := table.CommonType(types[c], table.TypeOf(val))
			if !ok {
				// Widen to String rather than fail: parquet schemas are
				// typed per column, so this only happens for exotic types.
				unified = table.TypeString
				val = fmt.Sprintf("%v", val)
			}
			types[c] = unified
			columns[c] = append(columns[c], val)
		}
	}

	cols := make([]table.Column, len(names))
	for c, name := range names {
		if types[c] == table.TypeFloat {
			promoteIntegers(columns[c])
		}
		if columns[c] == nil {
			columns[c] = []interface{}{}
		}
		cols[c] = table.Column{Name: name, Type: types[c], Values: columns[c]}
	}

	return table.New(cols)
}

// normalizeParquetValue collapses the Go types produced by the parquet
// reader onto the engine's cell types.
func normalizeParquetValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case []byte:
		return string(val)
	case string:
		return val
	case bool:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
