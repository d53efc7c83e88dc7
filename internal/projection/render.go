package projection

import (
	"github.com/shopspring/decimal"

	"github.com/tse-eval/resampler/internal/core/series"
)

// toSeriesResponse converts a resampled table into the response shape.
func toSeriesResponse(tbl *series.Table, window string, perEdge bool) SeriesResponse {
	resp := SeriesResponse{
		Window:  window,
		PerEdge: perEdge,
		Columns: tbl.ColumnNames(),
		Rows:    make([]SeriesRow, tbl.Len()),
	}
	for i := range resp.Rows {
		row := SeriesRow{
			Time:   tbl.Time[i].UTC(),
			Values: make(map[string]*decimal.Decimal, len(tbl.Numeric)),
		}
		if tbl.Keyed() {
			row.Entity = tbl.Keys[i]
		}
		for _, c := range tbl.Numeric {
			v := c.Values[i]
			if series.Absent(v) {
				row.Values[c.Name] = nil
				continue
			}
			d := decimal.NewFromFloat(v)
			row.Values[c.Name] = &d
		}
		if len(tbl.Labels) > 0 {
			row.Labels = make(map[string]string, len(tbl.Labels))
			for _, l := range tbl.Labels {
				row.Labels[l.Name] = l.Values[i]
			}
		}
		resp.Rows[i] = row
	}
	return resp
}
