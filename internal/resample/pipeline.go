package resample

import (
	"log/slog"

	"github.com/tse-eval/resampler/internal/core/series"
)

// Resample runs the single-entity pipeline: aggregate, optionally reindex to
// per-second resolution, restore the timeStamp column, optionally smooth and
// finally clip to the time frame. The input is never modified.
func Resample(in *series.Table, opts Options) (*series.Table, error) {
	p, err := opts.compile()
	if err != nil {
		return nil, err
	}
	return p.run(in)
}

func (p plan) run(in *series.Table) (*series.Table, error) {
	out, err := Aggregate(in, p.spec, p.window)
	if err != nil {
		return nil, err
	}
	if p.reindex {
		if out, err = Normalize(out, p.window, p.fill); err != nil {
			return nil, err
		}
	}
	out = WithSeconds(out)
	if p.rolling > 0 {
		if out, err = Smooth(out, p.rolling); err != nil {
			return nil, err
		}
	}
	out, err = Clip(out, p.frame)
	if err != nil {
		return nil, err
	}

	slog.Debug("[Resample] Pipeline complete",
		"input_rows", in.Len(),
		"output_rows", out.Len(),
		"reindex", p.reindex,
		"rolling", p.rolling,
	)
	return out, nil
}
