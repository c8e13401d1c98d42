package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/csvql/table"
)

// Render draws a table as an ASCII grid for terminal display. NULL
// cells render as the empty string.
func Render(w io.Writer, t *table.Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.ColumnNames())
	tw.SetAutoFormatHeaders(false)

	for row := 0; row < t.NumRows(); row++ {
		record := make([]string, t.NumColumns())
		for col := 0; col < t.NumColumns(); col++ {
			record[col] = formatValue(t.Value(col, row))
		}
		tw.Append(record)
	}
	tw.Render()
}
