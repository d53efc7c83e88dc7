package export

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tse-eval/resampler/internal/core/series"
)

func sampleTable() *series.Table {
	tbl := series.New([]time.Time{series.At(0), series.At(900)})
	tbl.Numeric = []series.Column{
		{Name: "speed", Values: []float64{12.5, math.NaN()}},
		{Name: "samples", Values: []float64{3, 0}, Integer: true},
		{Name: "timeStamp", Values: []float64{0, 900}},
	}
	return tbl
}

func TestRecords(t *testing.T) {
	records := Records(sampleTable())
	require.Equal(t, [][]string{
		{"time", "speed", "samples", "timeStamp"},
		{"1970-01-01 00:00:00", "12.5", "3", "0"},
		{"1970-01-01 00:15:00", "", "0", "900"},
	}, records)
}

func TestRecords_Keyed(t *testing.T) {
	tbl := sampleTable()
	tbl.Keys = []string{"e1", "e2"}
	tbl.KeyName = "connectionID"
	tbl.Labels = []series.LabelColumn{{Name: "vehID", Values: []string{"v1", "v2"}}}

	records := Records(tbl)
	require.Equal(t, []string{"connectionID", "time", "speed", "samples", "timeStamp", "vehID"}, records[0])
	require.Equal(t, []string{"e2", "1970-01-01 00:15:00", "", "0", "900", "v2"}, records[2])
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "", FormatValue(math.NaN(), false))
	require.Equal(t, "", FormatValue(math.Inf(1), true))
	require.Equal(t, "4", FormatValue(4, true))
	require.Equal(t, "0.1", FormatValue(0.1, false))
	require.Equal(t, "0.0000001", FormatValue(1e-7, false))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "resampled.csv")
	require.NoError(t, WriteCSV(path, sampleTable()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, Records(sampleTable()), rows)
}

func TestWriteCSV_RejectsRaggedTable(t *testing.T) {
	tbl := sampleTable()
	tbl.Numeric[0].Values = tbl.Numeric[0].Values[:1]
	err := WriteCSV(filepath.Join(t.TempDir(), "bad.csv"), tbl)
	require.ErrorContains(t, err, `column "speed"`)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resampled.xlsx")
	require.NoError(t, WriteXLSX(path, sampleTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"time", "speed", "samples", "timeStamp"}, rows[0])
	require.Equal(t, []string{"1970-01-01 00:00:00", "12.5", "3", "0"}, rows[1])
	require.Equal(t, []string{"1970-01-01 00:15:00", "", "0", "900"}, rows[2])
}

func TestWriteXLSX_Empty(t *testing.T) {
	tbl := series.New(nil)
	tbl.Numeric = []series.Column{{Name: "speed"}}
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, tbl))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"time", "speed"}}, rows)
}
