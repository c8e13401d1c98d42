package query

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vegasq/csvql/output"
)

func TestExecute_CopyToAndFrom(t *testing.T) {
	catalog := testCatalog(t)
	path := filepath.Join(t.TempDir(), "pokemon.csv")

	if _, err := runErr(catalog, "copy pokemon to '"+path+"'"); err != nil {
		t.Fatalf("COPY TO error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "id,name\n1,Bulbasaur\n2,Ivysaur\n"
	if string(data) != want {
		t.Errorf("COPY TO wrote %q, want %q", data, want)
	}

	// Loading the file back yields the same table.
	if _, err := runErr(catalog, "copy reloaded from '"+path+"'"); err != nil {
		t.Fatalf("COPY FROM error = %v", err)
	}
	original, _ := catalog.Get("pokemon")
	reloaded, err := catalog.Get("reloaded")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reloaded.Equal(original) {
		t.Errorf("COPY round trip changed the table")
	}
}

func TestExecute_CopyFromReplacesTable(t *testing.T) {
	catalog := testCatalog(t)
	path := filepath.Join(t.TempDir(), "new.csv")
	if err := os.WriteFile(path, []byte("id,name\n9,Venusaur\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := runErr(catalog, "copy pokemon from '"+path+"'"); err != nil {
		t.Fatalf("COPY FROM error = %v", err)
	}

	tbl, _ := catalog.Get("pokemon")
	if tbl.NumRows() != 1 {
		t.Fatalf("Get() rows = %d, want 1", tbl.NumRows())
	}
	if got := tbl.Value(1, 0); got != "Venusaur" {
		t.Errorf("Get() name = %v, want Venusaur", got)
	}
}

func TestExecute_CopyQueryTo(t *testing.T) {
	catalog := testCatalog(t)
	path := filepath.Join(t.TempDir(), "filtered.csv")

	if _, err := runErr(catalog,
		"copy (select name from pokemon where id > 1) to '"+path+"'"); err != nil {
		t.Fatalf("COPY TO error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "name\nIvysaur\n"
	if string(data) != want {
		t.Errorf("COPY TO wrote %q, want %q", data, want)
	}
}

func TestExecute_CopyOptions(t *testing.T) {
	catalog := testCatalog(t)
	path := filepath.Join(t.TempDir(), "pokemon.txt")

	if _, err := runErr(catalog,
		"copy pokemon to '"+path+"' (format csv, header false, delimiter '|')"); err != nil {
		t.Fatalf("COPY TO error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "1|Bulbasaur\n2|Ivysaur\n"
	if string(data) != want {
		t.Errorf("COPY TO wrote %q, want %q", data, want)
	}
}

func TestExecute_CopyJSONLines(t *testing.T) {
	catalog := testCatalog(t)
	path := filepath.Join(t.TempDir(), "pokemon.jsonl")

	if _, err := runErr(catalog, "copy pokemon to '"+path+"'"); err != nil {
		t.Fatalf("COPY TO error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "{\"id\":1,\"name\":\"Bulbasaur\"}\n{\"id\":2,\"name\":\"Ivysaur\"}\n"
	if string(data) != want {
		t.Errorf("COPY TO wrote %q, want %q", data, want)
	}
}

func TestExecute_CopyParquetRoundTrip(t *testing.T) {
	catalog := testCatalog(t)
	path := filepath.Join(t.TempDir(), "pokemon.parquet")

	if _, err := runErr(catalog, "copy pokemon to '"+path+"'"); err != nil {
		t.Fatalf("COPY TO error = %v", err)
	}
	if _, err := runErr(catalog, "copy reloaded from '"+path+"'"); err != nil {
		t.Fatalf("COPY FROM error = %v", err)
	}

	reloaded, err := catalog.Get("reloaded")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if reloaded.NumRows() != 2 {
		t.Fatalf("Get() rows = %d, want 2", reloaded.NumRows())
	}
	if got := reloaded.Value(1, 1); got != "Ivysaur" {
		t.Errorf("Get() name = %v, want Ivysaur", got)
	}
}

func TestExecute_CopyToUnwritablePath(t *testing.T) {
	_, err := runErr(testCatalog(t), "copy pokemon to '/nonexistent-dir/out.csv'")
	var ioErr *output.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Execute() error = %v, want *IOError", err)
	}
}
