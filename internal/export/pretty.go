package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"MarketLens/internal/model"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes the last lastN rows of t to w as a terminal table.
// lastN <= 0 renders every row.
func Render(w io.Writer, t *model.Table, lastN int) {
	if t.Empty() {
		fmt.Fprintln(w, "(no data)")
		return
	}
	if lastN > 0 {
		t = t.Tail(lastN)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.SetTitle("%s %s", t.Symbol, t.Kind)

	cols := t.Columns()
	header := table.Row{"time"}
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header = append(header, c)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	layout := timeLayout(t.Kind)
	for i := 0; i < t.Len(); i++ {
		row := table.Row{t.Index[i].Format(layout)}
		for _, c := range cols {
			row = append(row, formatCell(t.Value(i, c)))
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func formatCell(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
