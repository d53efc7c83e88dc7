package resample

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tse-eval/resampler/internal/core/series"
)

// Smooth replaces each numeric value at t with the mean of the valid values
// strictly inside (t-width, t). The current row is never part of its own
// window. Rows whose window reaches before the first row, and rows whose
// window holds no valid value, become NaN. The timeStamp column is kept as is.
func Smooth(in *series.Table, width time.Duration) (*series.Table, error) {
	if width <= 0 {
		return nil, stageErr(StageSmooth, "rolling_window", fmt.Errorf("width must be positive, got %v", width))
	}
	if in.Keyed() {
		return nil, stageErr(StageSmooth, "table", fmt.Errorf("expected a single-entity table"))
	}
	if err := in.Validate(); err != nil {
		return nil, stageErr(StageSmooth, "table", err)
	}

	out := in.Clone()
	n := out.Len()
	if n == 0 {
		return out, nil
	}

	// window bounds per row: rows [lo[i], hi[i]) lie strictly inside (t-width, t)
	lo := make([]int, n)
	hi := make([]int, n)
	full := make([]bool, n)
	for i, ts := range in.Time {
		start := ts.Add(-width)
		full[i] = !start.Before(in.Time[0])
		lo[i] = sort.Search(n, func(j int) bool { return in.Time[j].After(start) })
		hi[i] = sort.Search(n, func(j int) bool { return !in.Time[j].Before(ts) })
	}

	sums := make([]float64, n+1)
	counts := make([]int, n+1)
	for c := range out.Numeric {
		col := &out.Numeric[c]
		if col.Name == TimeStampColumn {
			continue
		}
		src := in.Numeric[c].Values
		for i, v := range src {
			sums[i+1], counts[i+1] = sums[i], counts[i]
			if !series.Absent(v) {
				sums[i+1] += v
				counts[i+1]++
			}
		}
		for i := range col.Values {
			k := 0
			if hi[i] > lo[i] {
				k = counts[hi[i]] - counts[lo[i]]
			}
			if !full[i] || k == 0 {
				col.Values[i] = math.NaN()
				continue
			}
			col.Values[i] = (sums[hi[i]] - sums[lo[i]]) / float64(k)
		}
		col.Integer = false
	}
	return out, nil
}
