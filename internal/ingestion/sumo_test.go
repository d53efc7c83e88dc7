package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tse-eval/resampler/internal/core/series"
)

const edgeDump = `<?xml version="1.0" encoding="UTF-8"?>
<meandata xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
    <interval begin="0.00" end="900.00" id="dump_900">
        <edge id="-100#0" sampledSeconds="10.00" traveltime="5.00" density="1.50" speed="13.20"/>
        <edge id="200" density="2.00" speed="10.00"/>
    </interval>
    <interval begin="900.00" end="1800.00" id="dump_900">
        <edge id="-100#0" density="1.00" speed="12.00"/>
    </interval>
</meandata>
`

const loopDump = `<?xml version="1.0" encoding="UTF-8"?>
<detector>
    <!-- induction loop e1_0 -->
    <interval begin="60.00" end="120.00" id="e1_0" nVehContrib="3" flow="180.00" occupancy="4.50" speed="12.10" harmonicMeanSpeed="11.90" length="5.00" nVehEntered="3"/>
    <interval begin="0.00" end="60.00" id="e1_0" nVehContrib="0" flow="0.00" occupancy="0.00" speed="-1.00" harmonicMeanSpeed="-1.00" length="5.00" nVehEntered="0"/>
</detector>
`

func TestEdgeRecords_MergesIntervalAttributes(t *testing.T) {
	var got []Record
	for rec, err := range EdgeRecords(strings.NewReader(edgeDump)) {
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Len(t, got, 3)

	id, _ := got[0].Get("id")
	require.Equal(t, "-100#0", id, "sample id overrides interval id")
	begin, _ := got[2].Get("begin")
	require.Equal(t, "900.00", begin)
	end, _ := got[1].Get("end")
	require.Equal(t, "900.00", end)
}

func TestRecords_SingleUse(t *testing.T) {
	seq := LoopRecords(strings.NewReader(loopDump))
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)

	for rec, err := range seq {
		require.Nil(t, rec)
		require.ErrorIs(t, err, ErrSequenceConsumed)
	}
}

func TestRecords_StopEarly(t *testing.T) {
	count := 0
	for range EdgeRecords(strings.NewReader(edgeDump)) {
		count++
		break
	}
	require.Equal(t, 1, count)
}

func TestRecords_MalformedXML(t *testing.T) {
	var lastErr error
	for _, err := range LoopRecords(strings.NewReader(`<detector><interval begin="0"`)) {
		lastErr = err
	}
	require.ErrorContains(t, lastErr, "decode xml")
}

func TestBuildTable_EdgeLayout(t *testing.T) {
	tbl, err := BuildTable(context.Background(), EdgeRecords(strings.NewReader(edgeDump)), EdgeDataLayout())
	require.NoError(t, err)
	require.NoError(t, tbl.Validate())

	require.Equal(t, []string{"timeStamp", "density", "speed"}, tbl.ColumnNames())
	require.Equal(t, []float64{0, 0, 900e9}, mustColumn(t, tbl, "timeStamp"))
	require.Equal(t, []float64{13.2, 10, 12}, mustColumn(t, tbl, "speed"))
	require.Equal(t, series.At(900), tbl.Time[2])

	ids, ok := tbl.Label("connectionID")
	require.True(t, ok)
	require.Equal(t, []string{"-100#0", "200", "-100#0"}, ids.Values)
	require.False(t, tbl.HasColumn("sampledSeconds"))
	require.False(t, tbl.HasColumn("end"))
}

func TestBuildTable_LoopLayoutSortsByBegin(t *testing.T) {
	tbl, err := BuildTable(context.Background(), LoopRecords(strings.NewReader(loopDump)), LoopDataLayout())
	require.NoError(t, err)

	require.Equal(t, []float64{0, 60}, mustColumn(t, tbl, "begin"))
	require.Equal(t, []float64{60, 120}, mustColumn(t, tbl, "end"))
	require.Equal(t, []float64{0, 180}, mustColumn(t, tbl, "flow"))
	require.Equal(t, []float64{-1, 12.1}, mustColumn(t, tbl, "speed"))
	require.Equal(t, []time.Time{series.At(0), series.At(60)}, tbl.Time)
	require.False(t, tbl.HasColumn("length"))

	nVeh, _ := tbl.Column("nVehContrib")
	require.True(t, nVeh.Integer)
	flow, _ := tbl.Column("flow")
	require.True(t, flow.Integer)
	speed, _ := tbl.Column("speed")
	require.False(t, speed.Integer)
}

func TestBuildTable_MissingTime(t *testing.T) {
	_, err := BuildTable(context.Background(),
		LoopRecords(strings.NewReader(`<detector><interval id="e1" flow="1"/></detector>`)),
		LoopDataLayout())
	require.ErrorContains(t, err, `missing time attribute "begin"`)
}

func TestBuildTable_InvalidTime(t *testing.T) {
	_, err := BuildTable(context.Background(),
		LoopRecords(strings.NewReader(`<detector><interval begin="soon" id="e1"/></detector>`)),
		LoopDataLayout())
	require.ErrorContains(t, err, `invalid begin "soon"`)
}

func TestBuildTable_NonNumericColumnBecomesLabel(t *testing.T) {
	tbl, err := BuildTable(context.Background(),
		LoopRecords(strings.NewReader(`<detector><interval begin="0" state="free"/><interval begin="1" state="jam"/></detector>`)),
		LoopDataLayout())
	require.NoError(t, err)
	state, ok := tbl.Label("state")
	require.True(t, ok)
	require.Equal(t, []string{"free", "jam"}, state.Values)
}

func TestBuildTable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildTable(ctx, LoopRecords(strings.NewReader(loopDump)), LoopDataLayout())
	require.ErrorIs(t, err, context.Canceled)
}

func TestXMLSources(t *testing.T) {
	dir := t.TempDir()
	edgePath := filepath.Join(dir, "edges.xml")
	loopPath := filepath.Join(dir, "loops.xml")
	require.NoError(t, os.WriteFile(edgePath, []byte(edgeDump), 0o644))
	require.NoError(t, os.WriteFile(loopPath, []byte(loopDump), 0o644))

	edges, err := EdgeDataSource{Path: edgePath}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, edges.Len())

	loops, err := LoopDataSource{Path: loopPath}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, loops.Len())

	_, err = EdgeDataSource{Path: filepath.Join(dir, "missing.xml")}.Load(context.Background())
	require.Error(t, err)
}

func mustColumn(t *testing.T, tbl *series.Table, name string) []float64 {
	t.Helper()
	c, ok := tbl.Column(name)
	require.True(t, ok, "column %q missing, have %v", name, tbl.ColumnNames())
	return c.Values
}
