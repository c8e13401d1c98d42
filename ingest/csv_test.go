package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/vegasq/csvql/table"
)

func TestReadCSV_WithHeader(t *testing.T) {
	input := "id,name\n1,Bulbasaur\n2,Ivysaur\n"

	tbl, err := ReadCSV(strings.NewReader(input), CSVOptions{Header: true, Delimiter: ','})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if tbl.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2", tbl.NumRows())
	}
	if got := tbl.ColumnNames(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("ColumnNames() = %v, want [id name]", got)
	}

	id := tbl.Column(0)
	if id.Type != table.TypeInteger {
		t.Errorf("id column type = %v, want INTEGER", id.Type)
	}
	if id.Values[0] != int64(1) || id.Values[1] != int64(2) {
		t.Errorf("id values = %v, want [1 2]", id.Values)
	}

	name := tbl.Column(1)
	if name.Type != table.TypeString {
		t.Errorf("name column type = %v, want TEXT", name.Type)
	}
	if name.Values[1] != "Ivysaur" {
		t.Errorf("name[1] = %v, want Ivysaur", name.Values[1])
	}
}

func TestReadCSV_NoHeader(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("1,a\n2,b\n"), CSVOptions{})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if got := tbl.ColumnNames(); got[0] != "col0" || got[1] != "col1" {
		t.Errorf("ColumnNames() = %v, want [col0 col1]", got)
	}
}

func TestReadCSV_TypeInference(t *testing.T) {
	tests := []struct {
		name   string
		values string
		want   table.Type
	}{
		{"integers", "1\n-2\n30", table.TypeInteger},
		{"mixed int and float promotes to float", "1\n2.5\n3", table.TypeFloat},
		{"floats", "1.5\n2.25", table.TypeFloat},
		{"scientific notation", "1e3\n2.5", table.TypeFloat},
		{"unparseable forces string", "1\ntwo\n3", table.TypeString},
		{"booleans", "true\nFalse\nTRUE", table.TypeBoolean},
		{"empty values do not constrain", "1\n\n3", table.TypeInteger},
		{"all empty", "\n\n", table.TypeNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader("v\n"+tt.values+"\n"), CSVOptions{Header: true})
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}
			if got := tbl.Column(0).Type; got != tt.want {
				t.Errorf("inferred type = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadCSV_EmptyFieldIsNull(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n1,\n,x\n"), CSVOptions{Header: true})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if v := tbl.Value(1, 0); v != nil {
		t.Errorf("b[0] = %v, want NULL", v)
	}
	if v := tbl.Value(0, 1); v != nil {
		t.Errorf("a[1] = %v, want NULL", v)
	}
}

func TestReadCSV_MalformedRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"), CSVOptions{Header: true})

	var malformed *MalformedRowError
	if !errors.As(err, &malformed) {
		t.Fatalf("ReadCSV() error = %v, want MalformedRowError", err)
	}
	if malformed.Row != 2 {
		t.Errorf("Row = %d, want 2", malformed.Row)
	}
	if malformed.Expected != 2 || malformed.Got != 1 {
		t.Errorf("Expected/Got = %d/%d, want 2/1", malformed.Expected, malformed.Got)
	}
}

func TestReadCSV_CustomDelimiter(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a;b\n1;2\n"), CSVOptions{Header: true, Delimiter: ';'})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if tbl.NumColumns() != 2 {
		t.Errorf("NumColumns() = %d, want 2", tbl.NumColumns())
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("a,b\n"), CSVOptions{Header: true})
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if tbl.NumRows() != 0 {
		t.Errorf("NumRows() = %d, want 0", tbl.NumRows())
	}
}

func TestReadCSV_EmptyInputNeedsHeader(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), CSVOptions{Header: true}); err == nil {
		t.Fatal("ReadCSV() expected error for empty input with header option")
	}
}
