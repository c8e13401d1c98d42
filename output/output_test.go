package output

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vegasq/csvql/table"
)

func fixtureTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]table.Column{
		{Name: "id", Type: table.TypeInteger, Values: []interface{}{int64(1), int64(2), nil}},
		{Name: "name", Type: table.TypeString, Values: []interface{}{"Bulbasaur", "Ivysaur", "Venusaur"}},
		{Name: "score", Type: table.TypeFloat, Values: []interface{}{1.5, nil, 3.25}},
		{Name: "active", Type: table.TypeBoolean, Values: []interface{}{true, false, nil}},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}
	return tbl
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, fixtureTable(t), CSVOptions{Header: true, Delimiter: ','}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "id,name,score,active\n" +
		"1,Bulbasaur,1.5,true\n" +
		"2,Ivysaur,,false\n" +
		",Venusaur,3.25,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV_IntegralFloatKeepsDecimalPoint(t *testing.T) {
	tbl, err := table.New([]table.Column{
		{Name: "x", Type: table.TypeFloat, Values: []interface{}{1.0, 2.0, 1e21}},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl, CSVOptions{Header: true, Delimiter: ','}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "x\n1.0\n2.0\n1e+21\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, fixtureTable(t), CSVOptions{Header: false}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if strings.HasPrefix(buf.String(), "id,") {
		t.Errorf("WriteCSV() wrote header: %q", buf.String())
	}
}

func TestWriteCSV_CustomDelimiter(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, fixtureTable(t), CSVOptions{Header: true, Delimiter: ';'}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "id;name;score;active\n") {
		t.Errorf("WriteCSV() = %q, want ; delimited", buf.String())
	}
}

func TestWriteCSV_QuotesFieldsWithDelimiter(t *testing.T) {
	tbl, err := table.New([]table.Column{
		{Name: "note", Type: table.TypeString, Values: []interface{}{"a,b"}},
	})
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl, CSVOptions{Header: false, Delimiter: ','}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if buf.String() != "\"a,b\"\n" {
		t.Errorf("WriteCSV() = %q, want quoted field", buf.String())
	}
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONLines(&buf, fixtureTable(t)); err != nil {
		t.Fatalf("WriteJSONLines() error = %v", err)
	}

	want := `{"id":1,"name":"Bulbasaur","score":1.5,"active":true}` + "\n" +
		`{"id":2,"name":"Ivysaur","score":null,"active":false}` + "\n" +
		`{"id":null,"name":"Venusaur","score":3.25,"active":null}` + "\n"
	if buf.String() != want {
		t.Errorf("WriteJSONLines() = %q, want %q", buf.String(), want)
	}
}

func TestWriteParquetFile_RoundTripSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	if err := WriteParquetFile(path, fixtureTable(t)); err != nil {
		t.Fatalf("WriteParquetFile() error = %v", err)
	}
}

func TestWriteCSVFile_BadPath(t *testing.T) {
	err := WriteCSVFile("/nonexistent-dir/out.csv", fixtureTable(t), CSVOptions{Header: true})
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("WriteCSVFile() error = %v, want *IOError", err)
	}
	if ioErr.Path != "/nonexistent-dir/out.csv" {
		t.Errorf("IOError path = %q", ioErr.Path)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, fixtureTable(t))

	out := buf.String()
	for _, want := range []string{"id", "name", "Bulbasaur", "Ivysaur"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}
