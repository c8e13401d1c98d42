package query

import (
	"path/filepath"
	"strings"

	"github.com/vegasq/csvql/ingest"
	"github.com/vegasq/csvql/output"
	"github.com/vegasq/csvql/table"
)

// CreateTable registers a new empty table with the given schema.
type CreateTable struct {
	Name    string
	Columns []ColumnDef
}

func (c *CreateTable) Execute(ctx *ExecContext) (*table.Table, error) {
	cols := make([]table.Column, len(c.Columns))
	for i, def := range c.Columns {
		cols[i] = table.Column{Name: def.Name, Type: def.Type}
	}
	tbl, err := table.Empty(cols)
	if err != nil {
		return nil, err
	}
	if err := ctx.Catalog.Create(c.Name, tbl); err != nil {
		return nil, err
	}
	return nil, nil
}

// CreateTableAs materializes a query result as a new table.
type CreateTableAs struct {
	Name  string
	Query Operator
}

func (c *CreateTableAs) Execute(ctx *ExecContext) (*table.Table, error) {
	result, err := c.Query.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Catalog.Create(c.Name, result); err != nil {
		return nil, err
	}
	return nil, nil
}

func buildCreateTable(stmt *CreateTableStmt) (Operator, error) {
	if stmt.As != nil {
		sel, err := buildSelect(stmt.As)
		if err != nil {
			return nil, err
		}
		return &CreateTableAs{Name: stmt.Name, Query: sel}, nil
	}
	return &CreateTable{Name: stmt.Name, Columns: stmt.Columns}, nil
}

// CopyFrom loads a file into the catalog, replacing any table with the
// same name in one step so concurrent readers see either the old or
// the new contents.
type CopyFrom struct {
	Table   string
	Path    string
	Options CopyOptions
}

func (c *CopyFrom) Execute(ctx *ExecContext) (*table.Table, error) {
	var tbl *table.Table
	var err error

	switch copyFormat(c.Options, c.Path) {
	case "json":
		tbl, err = ingest.LoadJSONFile(c.Path)
	case "parquet":
		tbl, err = ingest.ReadParquetFile(c.Path)
	default:
		tbl, err = ingest.LoadCSVFile(c.Path, csvReadOptions(c.Options))
	}
	if err != nil {
		return nil, err
	}

	ctx.Catalog.Replace(c.Table, tbl)
	return nil, nil
}

// CopyTo writes a table or a query result to a file.
type CopyTo struct {
	Table   string
	Query   Operator
	Path    string
	Options CopyOptions
}

func (c *CopyTo) Execute(ctx *ExecContext) (*table.Table, error) {
	var src *table.Table
	var err error
	if c.Query != nil {
		src, err = c.Query.Execute(ctx)
	} else {
		src, err = ctx.Catalog.Get(c.Table)
	}
	if err != nil {
		return nil, err
	}

	switch copyFormat(c.Options, c.Path) {
	case "json":
		err = output.WriteJSONLinesFile(c.Path, src)
	case "parquet":
		err = output.WriteParquetFile(c.Path, src)
	default:
		err = output.WriteCSVFile(c.Path, src, csvWriteOptions(c.Options))
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func buildCopy(stmt *CopyStmt) (Operator, error) {
	if !stmt.To {
		return &CopyFrom{Table: stmt.Table, Path: stmt.Path, Options: stmt.Options}, nil
	}

	var query Operator
	if stmt.Query != nil {
		var err error
		query, err = buildSelect(stmt.Query)
		if err != nil {
			return nil, err
		}
	}
	return &CopyTo{Table: stmt.Table, Query: query, Path: stmt.Path, Options: stmt.Options}, nil
}

// copyFormat resolves the effective file format: an explicit FORMAT
// option wins, otherwise the file extension decides, defaulting to CSV.
func copyFormat(opts CopyOptions, path string) string {
	if opts.Format != "" {
		return opts.Format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return "json"
	case ".parquet":
		return "parquet"
	default:
		return "csv"
	}
}

func csvReadOptions(opts CopyOptions) ingest.CSVOptions {
	out := ingest.CSVOptions{Header: true, Delimiter: ','}
	if opts.Header != nil {
		out.Header = *opts.Header
	}
	if opts.Delimiter != 0 {
		out.Delimiter = opts.Delimiter
	}
	return out
}

func csvWriteOptions(opts CopyOptions) output.CSVOptions {
	out := output.CSVOptions{Header: true, Delimiter: ','}
	if opts.Header != nil {
		out.Header = *opts.Header
	}
	if opts.Delimiter != 0 {
		out.Delimiter = opts.Delimiter
	}
	return out
}
