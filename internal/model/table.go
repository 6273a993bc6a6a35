package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrLengthMismatch = errors.New("column length does not match index")
)

// Table is a time-indexed set of numeric columns, one row per period.
// Missing cells are NaN. A nil *Table is the empty result.
type Table struct {
	Symbol string
	Kind   SeriesKind
	Meta   map[string]string
	Index  []time.Time

	columns []string
	data    map[string][]float64
}

// NewTable creates a table over the given index with no columns.
func NewTable(index []time.Time) *Table {
	return &Table{
		Meta:  map[string]string{},
		Index: index,
		data:  map[string][]float64{},
	}
}

// Len returns the number of rows. It is safe to call on nil.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.data[name]
	return ok
}

// Column returns the values of a column. The slice is shared with the table
// and must not be modified.
func (t *Table) Column(name string) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	v, ok := t.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return v, nil
}

// SetColumn appends a new column, or overwrites the values of an existing one
// in place so column order never changes.
func (t *Table) SetColumn(name string, values []float64) error {
	if len(values) != len(t.Index) {
		return fmt.Errorf("%w: %q has %d values, index has %d", ErrLengthMismatch, name, len(values), len(t.Index))
	}
	if t.data == nil {
		t.data = map[string][]float64{}
	}
	if _, ok := t.data[name]; !ok {
		t.columns = append(t.columns, name)
	}
	t.data[name] = values
	return nil
}

func (t *Table) mustSet(name string, values []float64) {
	if err := t.SetColumn(name, values); err != nil {
		panic(err)
	}
}

// Value returns the cell at row i, or NaN when the row or column is absent.
func (t *Table) Value(i int, name string) float64 {
	if t == nil || i < 0 || i >= len(t.Index) {
		return math.NaN()
	}
	v, ok := t.data[name]
	if !ok {
		return math.NaN()
	}
	return v[i]
}

// Last returns the most recent non-NaN value of a column.
func (t *Table) Last(name string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.data[name]
	if !ok {
		return 0, false
	}
	for i := len(v) - 1; i >= 0; i-- {
		if !math.IsNaN(v[i]) {
			return v[i], true
		}
	}
	return 0, false
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := NewTable(append([]time.Time(nil), t.Index...))
	c.Symbol = t.Symbol
	c.Kind = t.Kind
	for k, v := range t.Meta {
		c.Meta[k] = v
	}
	for _, name := range t.columns {
		c.columns = append(c.columns, name)
		c.data[name] = append([]float64(nil), t.data[name]...)
	}
	return c
}

// Tail returns a copy holding the last n rows.
func (t *Table) Tail(n int) *Table {
	if t == nil {
		return nil
	}
	start := len(t.Index) - n
	if start < 0 {
		start = 0
	}
	c := t.Clone()
	c.Index = c.Index[start:]
	for name, v := range c.data {
		c.data[name] = v[start:]
	}
	return c
}

type tableJSON struct {
	Symbol  string                `json:"symbol"`
	Kind    SeriesKind            `json:"kind"`
	Meta    map[string]string     `json:"meta,omitempty"`
	Index   []time.Time           `json:"index"`
	Columns []string              `json:"columns"`
	Data    map[string][]*float64 `json:"data"`
}

// MarshalJSON encodes the table column-wise with NaN cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Symbol:  t.Symbol,
		Kind:    t.Kind,
		Meta:    t.Meta,
		Index:   t.Index,
		Columns: t.Columns(),
		Data:    make(map[string][]*float64, len(t.columns)),
	}
	if out.Index == nil {
		out.Index = []time.Time{}
	}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	for _, name := range t.columns {
		vals := t.data[name]
		cells := make([]*float64, len(vals))
		for i := range vals {
			if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
				continue
			}
			v := vals[i]
			cells[i] = &v
		}
		out.Data[name] = cells
	}
	return json.Marshal(out)
}
