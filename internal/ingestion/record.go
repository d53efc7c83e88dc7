package ingestion

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/tse-eval/resampler/internal/core/series"
)

// ErrSequenceConsumed is yielded when a record stream is iterated twice.
var ErrSequenceConsumed = errors.New("record sequence already consumed")

// Attr is one raw attribute of a record.
type Attr struct {
	Name  string
	Value string
}

// Record is a flat measurement in source attribute order.
type Record []Attr

// Get returns the value of the named attribute.
func (r Record) Get(name string) (string, bool) {
	for _, a := range r {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it.
func (r Record) Set(name, value string) Record {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = value
			return r
		}
	}
	return append(r, Attr{Name: name, Value: value})
}

// Layout describes how raw records become a time-indexed table.
type Layout struct {
	// TimeColumn names the timestamp attribute after renaming.
	TimeColumn string
	// TimeUnit is the unit timestamp values are expressed in.
	TimeUnit time.Duration
	// StoreNanos rewrites the kept time column in nanoseconds.
	StoreNanos bool
	Drop       []string
	Rename     map[string]string
	// Labels are always categorical. Other attributes are numeric unless a
	// value fails to parse as a number.
	Labels []string
}

const cancelCheckEvery = 4096

// BuildTable drains seq into a table ordered by time. Rows keep their source
// order within equal timestamps. Missing numeric values are NaN.
func BuildTable(ctx context.Context, seq iter.Seq2[Record, error], layout Layout) (*series.Table, error) {
	if layout.TimeColumn == "" {
		return nil, fmt.Errorf("layout: time column must be set")
	}
	unit := layout.TimeUnit
	if unit <= 0 {
		unit = time.Nanosecond
	}

	var (
		names []string
		seen  = map[string]int{}
		rows  []map[int]string
		times []float64
	)
	var iterErr error
	n := 0
	for rec, err := range seq {
		if err != nil {
			iterErr = err
			break
		}
		if n%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		n++

		row := make(map[int]string, len(rec))
		for _, a := range rec {
			if slices.Contains(layout.Drop, a.Name) {
				continue
			}
			name := a.Name
			if renamed, ok := layout.Rename[name]; ok {
				name = renamed
			}
			idx, ok := seen[name]
			if !ok {
				idx = len(names)
				seen[name] = idx
				names = append(names, name)
			}
			row[idx] = a.Value
		}

		timeIdx, ok := seen[layout.TimeColumn]
		if !ok {
			return nil, fmt.Errorf("record %d: missing time attribute %q", n, layout.TimeColumn)
		}
		raw, ok := row[timeIdx]
		if !ok {
			return nil, fmt.Errorf("record %d: missing time attribute %q", n, layout.TimeColumn)
		}
		ts, err := strconv.ParseFloat(raw, 64)
		if err != nil || series.Absent(ts) {
			return nil, fmt.Errorf("record %d: invalid %s %q", n, layout.TimeColumn, raw)
		}
		rows = append(rows, row)
		times = append(times, ts)
	}
	if iterErr != nil {
		return nil, iterErr
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case times[a] < times[b]:
			return -1
		case times[a] > times[b]:
			return 1
		}
		return 0
	})

	tbl := &series.Table{Time: make([]time.Time, len(rows))}
	for i, r := range order {
		tbl.Time[i] = series.Epoch().Add(time.Duration(times[r] * float64(unit)))
	}

	for idx, name := range names {
		raw := make([]string, len(order))
		for i, r := range order {
			raw[i] = rows[r][idx]
		}

		if name == layout.TimeColumn {
			values := make([]float64, len(order))
			for i, r := range order {
				values[i] = times[r]
				if layout.StoreNanos {
					values[i] = math.Round(times[r] * float64(unit))
				}
			}
			tbl.Numeric = append(tbl.Numeric, series.Column{Name: name, Values: values, Integer: allWhole(values)})
			continue
		}

		if !slices.Contains(layout.Labels, name) {
			if values, ok := parseNumeric(raw); ok {
				tbl.Numeric = append(tbl.Numeric, series.Column{Name: name, Values: values, Integer: allWhole(values)})
				continue
			}
		}
		tbl.Labels = append(tbl.Labels, series.LabelColumn{Name: name, Values: raw})
	}
	return tbl, nil
}

// parseNumeric parses every value; empty strings become NaN.
func parseNumeric(raw []string) ([]float64, bool) {
	values := make([]float64, len(raw))
	for i, s := range raw {
		if s == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func allWhole(values []float64) bool {
	for _, v := range values {
		if series.Absent(v) {
			continue
		}
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}
