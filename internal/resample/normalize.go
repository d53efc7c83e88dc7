package resample

import (
	"fmt"
	"math"
	"time"

	"github.com/tse-eval/resampler/internal/core/series"
)

// DayGridRows is the number of rows of a reindexed day: every second from
// 00:00:00 to 24:00:00 inclusive.
const DayGridRows = series.DayToSecond + 1

// Normalize reindexes a single-entity table onto one row per second of the
// simulated day. Rows that are not on the per-second grid are dropped.
//
// Absent numeric values are filled with method across at most window-1
// further rows, so a value at T covers exactly window seconds. Anything still
// absent becomes 0. Categorical columns get the same bounded fill and are
// left empty otherwise.
func Normalize(in *series.Table, window time.Duration, method FillMethod) (*series.Table, error) {
	if in.Keyed() {
		return nil, stageErr(StageNormalize, "table", fmt.Errorf("expected a single-entity table"))
	}
	if window < time.Second {
		return nil, stageErr(StageNormalize, "window", fmt.Errorf("window %v is shorter than the one-second grid", window))
	}
	if method != FillForward && method != FillBackward {
		return nil, stageErr(StageNormalize, "fill_method", fmt.Errorf("%w: %q", ErrInvalidFillMethod, method))
	}
	if in.Len() == 0 {
		return in.Clone(), nil
	}

	// grid position for every input row, -1 when off grid
	positions := make([]int, in.Len())
	for i, ts := range in.Time {
		positions[i] = gridPosition(ts)
	}

	index := make([]time.Time, DayGridRows)
	for s := range index {
		index[s] = series.At(float64(s))
	}
	out := &series.Table{Time: index}
	limit := int(window/time.Second) - 1

	for _, c := range in.Numeric {
		values := make([]float64, DayGridRows)
		for s := range values {
			values[s] = math.NaN()
		}
		for i, pos := range positions {
			if pos >= 0 && math.IsNaN(values[pos]) {
				values[pos] = c.Values[i]
			}
		}
		fillBounded(len(values), limit, method,
			func(s int) bool { return series.Absent(values[s]) },
			func(dst, src int) { values[dst] = values[src] },
		)
		for s, v := range values {
			if series.Absent(v) {
				values[s] = 0
			}
		}
		out.Numeric = append(out.Numeric, series.Column{Name: c.Name, Values: values, Integer: c.Integer})
	}

	for _, c := range in.Labels {
		values := make([]string, DayGridRows)
		for i, pos := range positions {
			if pos >= 0 && values[pos] == "" {
				values[pos] = c.Values[i]
			}
		}
		fillBounded(len(values), limit, method,
			func(s int) bool { return values[s] == "" },
			func(dst, src int) { values[dst] = values[src] },
		)
		out.Labels = append(out.Labels, series.LabelColumn{Name: c.Name, Values: values})
	}
	return out, nil
}

// gridPosition returns the second of day ts sits on, or -1.
func gridPosition(ts time.Time) int {
	d := ts.Sub(series.Epoch())
	if d < 0 || d%time.Second != 0 {
		return -1
	}
	s := int(d / time.Second)
	if s >= DayGridRows {
		return -1
	}
	return s
}

// fillBounded propagates valid values over at most limit absent positions
// following (ffill) or preceding (bfill) them.
func fillBounded(n, limit int, method FillMethod, absent func(int) bool, copyValue func(dst, src int)) {
	if limit <= 0 {
		return
	}
	start, end, step := 0, n, 1
	if method == FillBackward {
		start, end, step = n-1, -1, -1
	}
	source, run := -1, 0
	for s := start; s != end; s += step {
		if !absent(s) {
			source, run = s, 0
			continue
		}
		if source < 0 || run >= limit {
			continue
		}
		copyValue(s, source)
		run++
	}
}
