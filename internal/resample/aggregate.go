package resample

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/tse-eval/resampler/internal/core/aggregation"
	"github.com/tse-eval/resampler/internal/core/series"
)

// Aggregate groups a single-entity table into fixed-width buckets anchored at
// midnight of the first row's day and applies each rule of spec per bucket.
//
// The output has exactly one row per bucket from the first row's bucket to
// the last row's bucket. Empty buckets carry NaN in every aggregated column.
// When the input has neither a samples nor a sampleAmount column, a samples
// column counting contributing rows is appended (0 for empty buckets).
//
// Categorical columns accept first and last only. They keep the first or
// last non-empty value of each bucket and stay empty for empty buckets.
func Aggregate(in *series.Table, spec aggregation.Spec, window time.Duration) (*series.Table, error) {
	if window <= 0 {
		return nil, stageErr(StageAggregate, "window", fmt.Errorf("%w: %v", aggregation.ErrInvalidWindow, window))
	}
	if len(spec.Rules) == 0 {
		return nil, stageErr(StageAggregate, "spec", ErrEmptySpec)
	}

	synthesize := !in.HasColumn(SampleColumn) && !in.HasColumn(SampleAmountColumn)

	sources := make([]*series.Column, len(spec.Rules))
	labels := make([]*series.LabelColumn, len(spec.Rules))
	for i, rule := range spec.Rules {
		if synthesize && rule.Column == SampleColumn {
			continue
		}
		if col, ok := in.Column(rule.Column); ok {
			sources[i] = col
			continue
		}
		label, ok := in.Label(rule.Column)
		if !ok {
			return nil, stageErr(StageAggregate, "spec."+rule.Column, fmt.Errorf("%w: %q", ErrMissingColumn, rule.Column))
		}
		if rule.Kind != aggregation.KindFirst && rule.Kind != aggregation.KindLast {
			return nil, stageErr(StageAggregate, "spec."+rule.Column, fmt.Errorf("%w: %s on %q", ErrCategoricalKind, rule.Kind, rule.Column))
		}
		labels[i] = label
	}

	if in.Len() == 0 {
		return emptyAggregate(spec, sources, labels, synthesize), nil
	}

	lo, hi := slices.MinFunc(in.Time, compareTime), slices.MaxFunc(in.Time, compareTime)
	origin := aggregation.DayStart(lo.UTC())
	first := aggregation.BucketIndex(lo, origin, window)
	count := int(aggregation.BucketIndex(hi, origin, window)-first) + 1

	buckets := make([][]int, count)
	for row, ts := range in.Time {
		b := int(aggregation.BucketIndex(ts, origin, window) - first)
		buckets[b] = append(buckets[b], row)
	}

	index := make([]time.Time, count)
	for b := range index {
		index[b] = origin.Add(time.Duration(first+int64(b)) * window)
	}
	out := &series.Table{Time: index}

	values := make([]float64, 0, 16)
	for i, rule := range spec.Rules {
		if labels[i] != nil {
			out.Labels = append(out.Labels, reduceLabel(labels[i], rule.Kind, buckets))
			continue
		}
		src := sources[i]
		if src == nil {
			continue
		}
		col := series.Column{
			Name:    rule.Column,
			Values:  make([]float64, count),
			Integer: keepsInteger(rule.Kind, src.Integer),
		}
		for b, rows := range buckets {
			if len(rows) == 0 {
				col.Values[b] = math.NaN()
				continue
			}
			values = values[:0]
			for _, r := range rows {
				if v := src.Values[r]; !series.Absent(v) {
					values = append(values, v)
				}
			}
			v, ok := rule.Reduce(values)
			if !ok {
				v = math.NaN()
			}
			col.Values[b] = v
		}
		out.Numeric = append(out.Numeric, col)
	}

	if synthesize {
		samples := series.Column{Name: SampleColumn, Values: make([]float64, count), Integer: true}
		for b, rows := range buckets {
			samples.Values[b] = float64(len(rows))
		}
		out.Numeric = append(out.Numeric, samples)
	}

	slog.Debug("[Resample] Aggregated buckets",
		"rows", in.Len(),
		"buckets", count,
		"window", window,
		"synthesized_samples", synthesize,
	)
	return out, nil
}

// reduceLabel keeps the first or last non-empty value of each bucket.
func reduceLabel(src *series.LabelColumn, kind aggregation.Kind, buckets [][]int) series.LabelColumn {
	out := series.LabelColumn{Name: src.Name, Values: make([]string, len(buckets))}
	for b, rows := range buckets {
		for _, r := range rows {
			v := src.Values[r]
			if v == "" {
				continue
			}
			out.Values[b] = v
			if kind == aggregation.KindFirst {
				break
			}
		}
	}
	return out
}

func emptyAggregate(spec aggregation.Spec, sources []*series.Column, labels []*series.LabelColumn, synthesize bool) *series.Table {
	out := &series.Table{Time: []time.Time{}}
	for i, rule := range spec.Rules {
		if labels[i] != nil {
			out.Labels = append(out.Labels, series.LabelColumn{Name: rule.Column, Values: []string{}})
			continue
		}
		if sources[i] == nil {
			continue
		}
		out.Numeric = append(out.Numeric, series.Column{
			Name:    rule.Column,
			Values:  []float64{},
			Integer: keepsInteger(rule.Kind, sources[i].Integer),
		})
	}
	if synthesize {
		out.Numeric = append(out.Numeric, series.Column{Name: SampleColumn, Values: []float64{}, Integer: true})
	}
	return out
}

// keepsInteger reports whether a reduction of whole numbers stays whole.
func keepsInteger(k aggregation.Kind, integer bool) bool {
	switch k {
	case aggregation.KindCount:
		return true
	case aggregation.KindSum, aggregation.KindFirst, aggregation.KindLast, aggregation.KindMin, aggregation.KindMax:
		return integer
	default:
		return false
	}
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}
