package series

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Unit conversions shared by readers and the resampling pipeline.
const (
	SecondToNanosecond = int64(time.Second)
	HourToSecond       = 60 * 60
	DayToSecond        = 24 * HourToSecond
	MPSToKPH           = 60.0 * 60.0 / 1000.0
)

// Epoch returns the instant all simulation timestamps are anchored at.
// Simulation second s maps to Epoch().Add(s * time.Second).
func Epoch() time.Time {
	return time.Unix(0, 0).UTC()
}

// At converts seconds since epoch into an index timestamp.
func At(seconds float64) time.Time {
	return Epoch().Add(time.Duration(seconds * float64(time.Second)))
}

// Seconds converts an index timestamp back into seconds since epoch.
func Seconds(t time.Time) float64 {
	return t.Sub(Epoch()).Seconds()
}

// Absent reports whether v represents a missing measurement.
// NaN marks absence; infinities are treated the same way.
func Absent(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Column is a named numeric column. Absent values are NaN.
type Column struct {
	Name    string
	Values  []float64
	Integer bool // values are whole numbers (sample counts)
}

// LabelColumn is a named categorical column.
type LabelColumn struct {
	Name   string
	Values []string
}

// Table is a time-indexed columnar table.
//
// Keys is nil for single-entity tables. Fan-out results carry one entity key
// per row and are indexed jointly by (Keys[i], Time[i]).
type Table struct {
	Time    []time.Time
	Keys    []string
	KeyName string
	Numeric []Column
	Labels  []LabelColumn
}

// New creates a table over the given index. The slice is copied.
func New(index []time.Time) *Table {
	return &Table{Time: slices.Clone(index)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Time)
}

// Keyed reports whether rows carry an entity key.
func (t *Table) Keyed() bool {
	return t.Keys != nil
}

// Column returns the numeric column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Numeric {
		if t.Numeric[i].Name == name {
			return &t.Numeric[i], true
		}
	}
	return nil, false
}

// Label returns the categorical column with the given name.
func (t *Table) Label(name string) (*LabelColumn, bool) {
	for i := range t.Labels {
		if t.Labels[i].Name == name {
			return &t.Labels[i], true
		}
	}
	return nil, false
}

// HasColumn reports whether a numeric or categorical column exists.
func (t *Table) HasColumn(name string) bool {
	if _, ok := t.Column(name); ok {
		return true
	}
	_, ok := t.Label(name)
	return ok
}

// ColumnNames returns numeric column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Numeric))
	for i, c := range t.Numeric {
		names[i] = c.Name
	}
	return names
}

// SetColumn replaces the numeric column with the given name, or appends it.
func (t *Table) SetColumn(col Column) error {
	if len(col.Values) != t.Len() {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, len(col.Values), t.Len())
	}
	if existing, ok := t.Column(col.Name); ok {
		*existing = col
		return nil
	}
	t.Numeric = append(t.Numeric, col)
	return nil
}

// SetLabel replaces the categorical column with the given name, or appends it.
func (t *Table) SetLabel(col LabelColumn) error {
	if len(col.Values) != t.Len() {
		return fmt.Errorf("label %q has %d values, table has %d rows", col.Name, len(col.Values), t.Len())
	}
	if existing, ok := t.Label(col.Name); ok {
		*existing = col
		return nil
	}
	t.Labels = append(t.Labels, col)
	return nil
}

// Validate checks column lengths and index ordering.
func (t *Table) Validate() error {
	n := t.Len()
	if t.Keys != nil && len(t.Keys) != n {
		return fmt.Errorf("keys have %d values, table has %d rows", len(t.Keys), n)
	}
	for _, c := range t.Numeric {
		if len(c.Values) != n {
			return fmt.Errorf("column %q has %d values, table has %d rows", c.Name, len(c.Values), n)
		}
	}
	for _, c := range t.Labels {
		if len(c.Values) != n {
			return fmt.Errorf("label %q has %d values, table has %d rows", c.Name, len(c.Values), n)
		}
	}
	if t.Keys == nil {
		for i := 1; i < n; i++ {
			if t.Time[i].Before(t.Time[i-1]) {
				return fmt.Errorf("index not ordered at row %d", i)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Time:    slices.Clone(t.Time),
		KeyName: t.KeyName,
	}
	if t.Keys != nil {
		out.Keys = slices.Clone(t.Keys)
	}
	for _, c := range t.Numeric {
		out.Numeric = append(out.Numeric, Column{Name: c.Name, Values: slices.Clone(c.Values), Integer: c.Integer})
	}
	for _, c := range t.Labels {
		out.Labels = append(out.Labels, LabelColumn{Name: c.Name, Values: slices.Clone(c.Values)})
	}
	return out
}

// Select returns a new table holding the given rows in the given order.
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		Time:    make([]time.Time, len(rows)),
		KeyName: t.KeyName,
	}
	if t.Keys != nil {
		out.Keys = make([]string, len(rows))
	}
	for i, r := range rows {
		out.Time[i] = t.Time[r]
		if t.Keys != nil {
			out.Keys[i] = t.Keys[r]
		}
	}
	for _, c := range t.Numeric {
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = c.Values[r]
		}
		out.Numeric = append(out.Numeric, Column{Name: c.Name, Values: vals, Integer: c.Integer})
	}
	for _, c := range t.Labels {
		vals := make([]string, len(rows))
		for i, r := range rows {
			vals[i] = c.Values[r]
		}
		out.Labels = append(out.Labels, LabelColumn{Name: c.Name, Values: vals})
	}
	return out
}

// Concat stacks tables vertically. All parts must share the numeric and
// categorical column layout of the first non-empty part.
func Concat(parts ...*Table) (*Table, error) {
	var layout *Table
	for _, p := range parts {
		if p.Len() > 0 {
			layout = p
			break
		}
	}
	if layout == nil {
		if len(parts) == 0 {
			return &Table{}, nil
		}
		return parts[0].Clone(), nil
	}

	out := &Table{KeyName: layout.KeyName}
	if layout.Keys != nil {
		out.Keys = []string{}
	}
	for _, c := range layout.Numeric {
		out.Numeric = append(out.Numeric, Column{Name: c.Name, Integer: c.Integer})
	}
	for _, c := range layout.Labels {
		out.Labels = append(out.Labels, LabelColumn{Name: c.Name})
	}

	for _, p := range parts {
		if p.Len() == 0 {
			continue
		}
		if len(p.Numeric) != len(out.Numeric) || len(p.Labels) != len(out.Labels) || (p.Keys == nil) != (out.Keys == nil) {
			return nil, fmt.Errorf("concat: column layout mismatch")
		}
		out.Time = append(out.Time, p.Time...)
		if out.Keys != nil {
			out.Keys = append(out.Keys, p.Keys...)
		}
		for i := range out.Numeric {
			if p.Numeric[i].Name != out.Numeric[i].Name {
				return nil, fmt.Errorf("concat: expected column %q, got %q", out.Numeric[i].Name, p.Numeric[i].Name)
			}
			out.Numeric[i].Values = append(out.Numeric[i].Values, p.Numeric[i].Values...)
			out.Numeric[i].Integer = out.Numeric[i].Integer && p.Numeric[i].Integer
		}
		for i := range out.Labels {
			if p.Labels[i].Name != out.Labels[i].Name {
				return nil, fmt.Errorf("concat: expected label %q, got %q", out.Labels[i].Name, p.Labels[i].Name)
			}
			out.Labels[i].Values = append(out.Labels[i].Values, p.Labels[i].Values...)
		}
	}
	return out, nil
}
