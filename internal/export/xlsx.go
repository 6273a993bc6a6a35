package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"MarketLens/internal/model"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteXLSX saves the table to path as a single sheet: a "time" column
// followed by every table column. NaN cells are left blank.
func WriteXLSX(t *model.Table, path string) error {
	if t.Empty() {
		return fmt.Errorf("write xlsx: empty table")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := append([]interface{}{"time"}, toInterfaces(t.Columns())...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	layout := timeLayout(t.Kind)
	cols := t.Columns()
	for i := 0; i < t.Len(); i++ {
		row := make([]interface{}, 0, len(cols)+1)
		row = append(row, t.Index[i].Format(layout))
		for _, c := range cols {
			v := t.Value(i, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// sheetName derives a valid sheet name from the symbol.
func sheetName(t *model.Table) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, t.Symbol)
	if name == "" {
		name = "series"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func timeLayout(kind model.SeriesKind) string {
	if kind == model.KindIntraday {
		return time.DateTime
	}
	return time.DateOnly
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
