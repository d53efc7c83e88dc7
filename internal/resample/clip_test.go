package resample

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClip_KeepsInclusiveFrame(t *testing.T) {
	in := tableAt(t, []float64{0, 21599, 21600, 40000, 64800, 64801, 86400}, col("speed", 1, 2, 3, 4, 5, 6, 7))

	out, err := Clip(in, TimeFrame{Start: 6, End: 18})
	require.NoError(t, err)
	require.Equal(t, []float64{21600, 40000, 64800}, columnValues(t, out, TimeStampColumn))
	require.Equal(t, []float64{3, 4, 5}, columnValues(t, out, "speed"))
}

func TestClip_FullDayKeepsEverything(t *testing.T) {
	in := tableAt(t, []float64{0, 86400}, col("speed", 1, 2))

	out, err := Clip(in, FullDay())
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	require.Equal(t, []float64{0, 86400}, columnValues(t, out, TimeStampColumn))
	require.False(t, in.HasColumn(TimeStampColumn), "input is not modified")
}

func TestClip_RestoresTimestampColumn(t *testing.T) {
	// a stale timeStamp column is overwritten from the index
	in := tableAt(t, []float64{30, 60}, col("speed", 1, 2), col(TimeStampColumn, 9, 9))

	out, err := Clip(in, FullDay())
	require.NoError(t, err)
	require.Equal(t, []float64{30, 60}, columnValues(t, out, TimeStampColumn))
}

func TestClip_InvalidFrame(t *testing.T) {
	in := tableAt(t, []float64{30}, col("speed", 1))

	for _, frame := range []TimeFrame{{Start: 18, End: 6}, {Start: -1, End: 6}, {Start: 0, End: 25}} {
		_, err := Clip(in, frame)
		require.ErrorIs(t, err, ErrInvalidTimeFrame, "%+v", frame)
	}
}

func TestClip_EmptyInput(t *testing.T) {
	out, err := Clip(tableAt(t, nil, col("speed")), TimeFrame{Start: 6, End: 18})
	require.NoError(t, err)
	require.Equal(t, 0, out.Len())
}
