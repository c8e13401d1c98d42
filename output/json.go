package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/vegasq/csvql/table"
)

// WriteJSONLines writes a table as JSON Lines, one object per row.
// Keys appear in column order, which encoding a map would not
// preserve, so objects are assembled field by field.
func WriteJSONLines(w io.Writer, t *table.Table) error {
	names := t.ColumnNames()

	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	for row := 0; row < t.NumRows(); row++ {
		buf.Reset()
		buf.WriteByte('{')
		for col := 0; col < t.NumColumns(); col++ {
			if col > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[col])
			buf.WriteByte(':')
			v, err := json.Marshal(t.Value(col, row))
			if err != nil {
				return err
			}
			buf.Write(v)
		}
		buf.WriteString("}\n")

		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSONLinesFile writes a table to a JSON Lines file.
func WriteJSONLinesFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	if err := WriteJSONLines(f, t); err != nil {
		_ = f.Close()
		return &IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
