package resample

import (
	"github.com/tse-eval/resampler/internal/core/series"
)

// WithSeconds returns a copy of in with the timeStamp column set to the
// index expressed as seconds since epoch.
func WithSeconds(in *series.Table) *series.Table {
	out := in.Clone()
	seconds := make([]float64, out.Len())
	for i, ts := range out.Time {
		seconds[i] = series.Seconds(ts)
	}
	// lengths match by construction
	_ = out.SetColumn(series.Column{Name: TimeStampColumn, Values: seconds})
	return out
}

// Clip restores the timeStamp column and keeps rows whose timestamp lies in
// the frame, both ends inclusive. Row order is preserved.
func Clip(in *series.Table, frame TimeFrame) (*series.Table, error) {
	if err := frame.Validate(); err != nil {
		return nil, stageErr(StageClip, "time_frame", err)
	}
	lo, hi := frame.Bounds()
	withSeconds := WithSeconds(in)
	seconds, _ := withSeconds.Column(TimeStampColumn)

	keep := make([]int, 0, withSeconds.Len())
	for i, s := range seconds.Values {
		if s >= lo && s <= hi {
			keep = append(keep, i)
		}
	}
	if len(keep) == withSeconds.Len() {
		return withSeconds, nil
	}
	return withSeconds.Select(keep), nil
}
