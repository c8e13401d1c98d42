package output

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/csvql/table"
)

// WriteParquet writes a table as a parquet file. Every column maps to
// an optional leaf so NULL cells round-trip.
func WriteParquet(w io.Writer, t *table.Table) error {
	group := parquet.Group{}
	for _, col := range t.Columns() {
		node, err := parquetNode(col.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
		group[col.Name] = parquet.Optional(node)
	}
	schema := parquet.NewSchema("table", group)

	writer := parquet.NewGenericWriter[map[string]interface{}](w, schema)

	rows := make([]map[string]interface{}, t.NumRows())
	for i := range rows {
		row := make(map[string]interface{}, t.NumColumns())
		for col, name := range t.ColumnNames() {
			row[name] = t.Value(col, i)
		}
		rows[i] = row
	}

	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return err
		}
	}
	return writer.Close()
}

// parquetNode maps an engine type onto a parquet leaf node. Untyped
// all-NULL columns are stored as strings.
func parquetNode(typ table.Type) (parquet.Node, error) {
	switch typ {
	case table.TypeInteger:
		return parquet.Int(64), nil
	case table.TypeFloat:
		return parquet.Leaf(parquet.DoubleType), nil
	case table.TypeBoolean:
		return parquet.Leaf(parquet.BooleanType), nil
	case table.TypeString, table.TypeNull:
		return parquet.String(), nil
	default:
		return nil, fmt.Errorf("unsupported column type %v", typ)
	}
}

// WriteParquetFile writes a table to a parquet file.
func WriteParquetFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	if err := WriteParquet(f, t); err != nil {
		_ = f.Close()
		return &IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
