package resample

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tse-eval/resampler/internal/core/series"
)

func tableAt(t testing.TB, seconds []float64, cols ...series.Column) *series.Table {
	t.Helper()
	tbl := &series.Table{Time: make([]time.Time, len(seconds))}
	for i, s := range seconds {
		tbl.Time[i] = series.At(s)
	}
	for _, c := range cols {
		require.NoError(t, tbl.SetColumn(c))
	}
	return tbl
}

func col(name string, values ...float64) series.Column {
	return series.Column{Name: name, Values: values}
}

func columnValues(t testing.TB, tbl *series.Table, name string) []float64 {
	t.Helper()
	c, ok := tbl.Column(name)
	require.True(t, ok, "column %q missing, have %v", name, tbl.ColumnNames())
	return c.Values
}

func requireSameValues(t testing.TB, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			require.True(t, math.IsNaN(got[i]), "row %d: want NaN, got %v", i, got[i])
			continue
		}
		require.Equal(t, want[i], got[i], "row %d", i)
	}
}

// requireSameTable compares tables treating NaN as equal to NaN.
func requireSameTable(t testing.TB, want, got *series.Table) {
	t.Helper()
	require.Equal(t, want.Time, got.Time)
	require.Equal(t, want.Keys, got.Keys)
	require.Equal(t, want.KeyName, got.KeyName)
	require.Equal(t, want.ColumnNames(), got.ColumnNames())
	require.Equal(t, want.Labels, got.Labels)
	for i := range want.Numeric {
		require.Equal(t, want.Numeric[i].Integer, got.Numeric[i].Integer, want.Numeric[i].Name)
		requireSameValues(t, want.Numeric[i].Values, got.Numeric[i].Values)
	}
}

func secondsOf(tbl *series.Table) []float64 {
	out := make([]float64, tbl.Len())
	for i, ts := range tbl.Time {
		out[i] = series.Seconds(ts)
	}
	return out
}
