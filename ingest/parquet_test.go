package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/csvql/table"
)

func TestReadParquetFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pokemon.parquet")

	type Row struct {
		ID     int64   `parquet:"id"`
		Name   string  `parquet:"name"`
		Height float64 `parquet:"height"`
		Legend bool    `parquet:"legend"`
	}
	data := []Row{
		{ID: 1, Name: "Bulbasaur", Height: 0.7, Legend: false},
		{ID: 2, Name: "Ivysaur", Height: 1.0, Legend: false},
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	writer := parquet.NewGenericWriter[Row](f)
	if _, err := writer.Write(data); err != nil {
		t.Fatalf("failed to write parquet: %v", err)
	}
	_ = writer.Close()
	_ = f.Close()

	tbl, err := ReadParquetFile(path)
	if err != nil {
		t.Fatalf("ReadParquetFile() error = %v", err)
	}

	if tbl.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2", tbl.NumRows())
	}

	idx, ok := tbl.ColumnIndex("name")
	if !ok {
		t.Fatalf("column name missing, have %v", tbl.ColumnNames())
	}
	if typ := tbl.Column(idx).Type; typ != table.TypeString {
		t.Errorf("name type = %v, want TEXT", typ)
	}
	if v := tbl.Value(idx, 0); v != "Bulbasaur" {
		t.Errorf("name[0] = %v, want Bulbasaur", v)
	}

	idx, _ = tbl.ColumnIndex("id")
	if typ := tbl.Column(idx).Type; typ != table.TypeInteger {
		t.Errorf("id type = %v, want INTEGER", typ)
	}
	idx, _ = tbl.ColumnIndex("height")
	if v := tbl.Value(idx, 1); v != 1.0 {
		t.Errorf("height[1] = %v, want 1.0", v)
	}
}

func TestReadParquetFile_Missing(t *testing.T) {
	if _, err := ReadParquetFile(filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Fatal("ReadParquetFile() expected error for missing file")
	}
}
