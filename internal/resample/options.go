package resample

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/tse-eval/resampler/internal/core/aggregation"
	"github.com/tse-eval/resampler/internal/core/series"
)

// Default column names shared with the readers.
const (
	TimeStampColumn    = "timeStamp"
	SampleColumn       = "samples"
	SampleAmountColumn = "sampleAmount"
	EntityColumn       = "connectionID"
	DefaultWindow      = "15min"
)

// FillMethod selects the propagation direction when reindexing.
type FillMethod string

const (
	FillForward  FillMethod = "ffill"
	FillBackward FillMethod = "bfill"
)

// ParseFillMethod accepts ffill/pad/forward and bfill/backfill/backward.
// An empty string means ffill.
func ParseFillMethod(s string) (FillMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ffill", "pad", "forward":
		return FillForward, nil
	case "bfill", "backfill", "backward":
		return FillBackward, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFillMethod, s)
	}
}

// TimeFrame selects hours [Start, End] of the simulated day.
type TimeFrame struct {
	Start float64
	End   float64
}

// FullDay is the (0, 24) frame.
func FullDay() TimeFrame {
	return TimeFrame{Start: 0, End: 24}
}

// Validate checks 0 <= Start <= End <= 24.
func (f TimeFrame) Validate() error {
	if f.Start < 0 || f.End > 24 || f.Start > f.End || series.Absent(f.Start) || series.Absent(f.End) {
		return fmt.Errorf("%w: (%g, %g)", ErrInvalidTimeFrame, f.Start, f.End)
	}
	return nil
}

// Bounds returns the frame in seconds since epoch, both ends inclusive.
func (f TimeFrame) Bounds() (lo, hi float64) {
	return f.Start * series.HourToSecond, f.End * series.HourToSecond
}

// Options configures one pipeline call.
type Options struct {
	Spec aggregation.Spec
	// Window is the bucket width, e.g. "15min". Empty means DefaultWindow.
	Window string
	// TimeFrame is the kept sub-range of the day. Nil means FullDay.
	TimeFrame *TimeFrame
	// Reindex expands output to one row per second over the whole day.
	Reindex    bool
	FillMethod FillMethod
	// RollingWindow enables smoothing when non-empty.
	RollingWindow string
	// EntityColumn partitions input in FanOut. Empty means connectionID.
	EntityColumn string
	// Workers bounds FanOut concurrency. Zero means GOMAXPROCS.
	Workers int
}

// plan is a validated Options value.
type plan struct {
	spec    aggregation.Spec
	window  time.Duration
	frame   TimeFrame
	reindex bool
	fill    FillMethod
	rolling time.Duration
	entity  string
	workers int
}

func (o Options) compile() (plan, error) {
	if len(o.Spec.Rules) == 0 {
		return plan{}, stageErr(StageParse, "spec", ErrEmptySpec)
	}

	label := o.Window
	if strings.TrimSpace(label) == "" {
		label = DefaultWindow
	}
	window, err := aggregation.ParseWindowSize(label)
	if err != nil {
		return plan{}, stageErr(StageParse, "window", err)
	}

	p := plan{
		spec:    o.Spec,
		window:  window.Size,
		frame:   FullDay(),
		reindex: o.Reindex,
		entity:  o.EntityColumn,
		workers: o.Workers,
	}

	if o.TimeFrame != nil {
		p.frame = *o.TimeFrame
	}
	if err := p.frame.Validate(); err != nil {
		return plan{}, stageErr(StageParse, "time_frame", err)
	}

	if p.fill, err = ParseFillMethod(string(o.FillMethod)); err != nil {
		return plan{}, stageErr(StageParse, "fill_method", err)
	}

	if strings.TrimSpace(o.RollingWindow) != "" {
		rolling, err := aggregation.ParseWindowSize(o.RollingWindow)
		if err != nil {
			return plan{}, stageErr(StageParse, "rolling_window", err)
		}
		p.rolling = rolling.Size
	}

	if p.entity == "" {
		p.entity = EntityColumn
	}
	if p.workers <= 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	return p, nil
}

// Validate reports whether the options would be accepted by Resample.
func (o Options) Validate() error {
	_, err := o.compile()
	return err
}

// WindowSize returns the parsed bucket width.
func (o Options) WindowSize() (time.Duration, error) {
	p, err := o.compile()
	if err != nil {
		return 0, err
	}
	return p.window, nil
}
