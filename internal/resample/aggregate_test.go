package resample

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tse-eval/resampler/internal/core/aggregation"
	"github.com/tse-eval/resampler/internal/core/series"
)

func TestAggregate_BucketCountIgnoresSparsity(t *testing.T) {
	dense := make([]float64, 360)
	for i := range dense {
		dense[i] = float64(i * 10)
	}

	tests := []struct {
		name    string
		seconds []float64
		window  time.Duration
		want    int
	}{
		{name: "two rows 15min", seconds: []float64{100, 40000}, window: 15 * time.Minute, want: 45},
		{name: "two rows hourly", seconds: []float64{100, 40000}, window: time.Hour, want: 12},
		{name: "two rows 7min", seconds: []float64{100, 40000}, window: 7 * time.Minute, want: 96},
		{name: "single row", seconds: []float64{5000}, window: 15 * time.Minute, want: 1},
		{name: "dense first hour", seconds: dense, window: 15 * time.Minute, want: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			speeds := make([]float64, len(tc.seconds))
			in := tableAt(t, tc.seconds, col("speed", speeds...))

			out, err := Aggregate(in, aggregation.EdgeSpec(), tc.window)
			require.NoError(t, err)
			require.Equal(t, tc.want, out.Len())
			require.NoError(t, out.Validate())

			// buckets tile the span with no gaps
			for i := 1; i < out.Len(); i++ {
				require.Equal(t, tc.window, out.Time[i].Sub(out.Time[i-1]))
			}
		})
	}
}

func TestAggregate_CalendarAlignedBuckets(t *testing.T) {
	// 10:35:42 lands in the 10:30 bucket
	in := tableAt(t, []float64{10*3600 + 35*60 + 42}, col("speed", 50))

	out, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []float64{10*3600 + 30*60}, secondsOf(out))
}

func TestAggregate_SynthesizesSampleCount(t *testing.T) {
	in := tableAt(t, []float64{60, 120, 180}, col("speed", 10, 20, 30))

	out, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"speed", SampleColumn}, out.ColumnNames())
	require.Equal(t, []float64{20}, columnValues(t, out, "speed"))
	require.Equal(t, []float64{3}, columnValues(t, out, SampleColumn))

	samples, _ := out.Column(SampleColumn)
	require.True(t, samples.Integer)
}

func TestAggregate_EmptyBuckets(t *testing.T) {
	in := tableAt(t, []float64{0, 1900}, col("speed", 10, 30))

	out, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 900, 1800}, secondsOf(out))
	requireSameValues(t, []float64{10, math.NaN(), 30}, columnValues(t, out, "speed"))
	require.Equal(t, []float64{1, 0, 1}, columnValues(t, out, SampleColumn))
}

func TestAggregate_ExistingSampleColumnNotOverwritten(t *testing.T) {
	in := tableAt(t, []float64{60, 120},
		col("temporalMeanSpeed", 10, 20),
		col("spatialMeanSpeed", 12, 22),
		series.Column{Name: "samples", Values: []float64{5, 7}, Integer: true},
	)

	out, err := Aggregate(in, aggregation.TraversalSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"temporalMeanSpeed", "spatialMeanSpeed", "samples"}, out.ColumnNames())
	require.Equal(t, []float64{12}, columnValues(t, out, "samples"))
	require.Equal(t, []float64{15}, columnValues(t, out, "temporalMeanSpeed"))
}

func TestAggregate_SampleAmountSuppressesSynthesis(t *testing.T) {
	in := tableAt(t, []float64{60, 120}, col("speed", 10, 20), col(SampleAmountColumn, 4, 4))

	out, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"speed"}, out.ColumnNames())
}

func TestAggregate_TraversalSpecUsesSynthesizedSamples(t *testing.T) {
	in := tableAt(t, []float64{60, 120, 1000},
		col("temporalMeanSpeed", 10, 20, 30),
		col("spatialMeanSpeed", 12, 22, 32),
	)

	out, err := Aggregate(in, aggregation.TraversalSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"temporalMeanSpeed", "spatialMeanSpeed", "samples"}, out.ColumnNames())
	require.Equal(t, []float64{2, 1}, columnValues(t, out, "samples"))
}

func TestAggregate_SkipsAbsentValues(t *testing.T) {
	in := tableAt(t, []float64{60, 120, 180}, col("speed", 10, math.NaN(), math.Inf(1)))

	out, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, []float64{10}, columnValues(t, out, "speed"))
	require.Equal(t, []float64{3}, columnValues(t, out, SampleColumn), "every row still counts as a sample")
}

func TestAggregate_MissingColumn(t *testing.T) {
	in := tableAt(t, []float64{60}, col("speed", 10))

	_, err := Aggregate(in, aggregation.MustSpec("density", aggregation.KindMean), 15*time.Minute)
	require.ErrorIs(t, err, ErrMissingColumn)

	var stage *StageError
	require.True(t, errors.As(err, &stage))
	require.Equal(t, StageAggregate, stage.Stage)
	require.Equal(t, "spec.density", stage.Param)
}

func TestAggregate_CategoricalFirstLast(t *testing.T) {
	in := tableAt(t, []float64{60, 120, 500, 2000}, col("speed", 10, 20, 30, 40))
	require.NoError(t, in.SetLabel(series.LabelColumn{Name: "vehID", Values: []string{"", "v1", "v2", "v3"}}))

	tests := []struct {
		name string
		kind aggregation.Kind
		want []string
	}{
		{name: "first skips empty", kind: aggregation.KindFirst, want: []string{"v1", "", "v3"}},
		{name: "last", kind: aggregation.KindLast, want: []string{"v2", "", "v3"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := aggregation.MustSpec("speed", aggregation.KindMean, "vehID", tc.kind)
			out, err := Aggregate(in, spec, 15*time.Minute)
			require.NoError(t, err)
			require.NoError(t, out.Validate())
			require.Equal(t, []string{"speed", SampleColumn}, out.ColumnNames())

			vehID, ok := out.Label("vehID")
			require.True(t, ok)
			require.Equal(t, tc.want, vehID.Values)
		})
	}
}

func TestAggregate_CategoricalRejectsNumericKinds(t *testing.T) {
	in := tableAt(t, []float64{60}, col("speed", 10))
	require.NoError(t, in.SetLabel(series.LabelColumn{Name: "vehID", Values: []string{"v1"}}))

	_, err := Aggregate(in, aggregation.MustSpec("vehID", aggregation.KindMean), 15*time.Minute)
	require.ErrorIs(t, err, ErrCategoricalKind)
	require.False(t, errors.Is(err, ErrMissingColumn))

	var stage *StageError
	require.True(t, errors.As(err, &stage))
	require.Equal(t, "spec.vehID", stage.Param)
}

func TestAggregate_EmptyInputKeepsCategorical(t *testing.T) {
	in := tableAt(t, nil, col("speed"))
	require.NoError(t, in.SetLabel(series.LabelColumn{Name: "vehID", Values: []string{}}))

	out, err := Aggregate(in, aggregation.MustSpec("speed", aggregation.KindMean, "vehID", aggregation.KindLast), 15*time.Minute)
	require.NoError(t, err)
	_, ok := out.Label("vehID")
	require.True(t, ok)
}

func TestAggregate_EmptyInput(t *testing.T) {
	in := tableAt(t, nil, col("speed"))

	out, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 0, out.Len())
	require.Equal(t, []string{"speed", SampleColumn}, out.ColumnNames())
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	in := tableAt(t, []float64{60, 1900}, col("speed", 10, 30))
	before := in.Clone()

	_, err := Aggregate(in, aggregation.EdgeSpec(), 15*time.Minute)
	require.NoError(t, err)
	requireSameTable(t, before, in)
}
