package resample

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/tse-eval/resampler/internal/core/partition"
	"github.com/tse-eval/resampler/internal/core/series"
)

// FanOut partitions in by the entity column, resamples every partition
// independently with the same options and unions the results into a table
// keyed by (entity, timestamp). Entities appear in ascending lexical order.
//
// Partitions are sharded over a bounded worker pool; the first failure
// cancels the remaining partitions.
func FanOut(ctx context.Context, in *series.Table, opts Options) (*series.Table, error) {
	p, err := opts.compile()
	if err != nil {
		return nil, err
	}

	keys, err := entityKeys(in, p.entity)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]int)
	for row, key := range keys {
		if key == nil {
			continue
		}
		groups[*key] = append(groups[*key], row)
	}
	entities := make([]string, 0, len(groups))
	for e := range groups {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	if len(entities) == 0 {
		return &series.Table{Keys: []string{}, KeyName: p.entity}, nil
	}

	position := make(map[string]int, len(entities))
	for i, e := range entities {
		position[e] = i
	}
	results := make([]*series.Table, len(entities))

	workers := min(p.workers, len(entities))
	slog.Debug("[Resample] Fan-out starting",
		"entities", len(entities),
		"workers", workers,
		"entity_column", p.entity,
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range partition.Group(entities, workers) {
		if len(shard) == 0 {
			continue
		}
		g.Go(func() error {
			for _, entity := range shard {
				if err := gctx.Err(); err != nil {
					return err
				}
				part := in.Select(groups[entity])
				part.Keys, part.KeyName = nil, ""
				out, err := p.run(part)
				if err != nil {
					return fmt.Errorf("entity %q: %w", entity, err)
				}
				out.KeyName = p.entity
				out.Keys = make([]string, out.Len())
				for i := range out.Keys {
					out.Keys[i] = entity
				}
				results[position[entity]] = out
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := series.Concat(results...)
	if err != nil {
		return nil, stageErr(StageFanOut, "merge", err)
	}
	merged.KeyName = p.entity
	if merged.Keys == nil {
		merged.Keys = []string{}
	}
	return merged, nil
}

// entityKeys returns the entity of every row; nil marks rows without one.
// A keyed table whose key is the entity column is grouped by its keys.
func entityKeys(in *series.Table, column string) ([]*string, error) {
	keys := make([]*string, in.Len())
	if label, ok := in.Label(column); ok {
		for i := range label.Values {
			keys[i] = &label.Values[i]
		}
		return keys, nil
	}
	if numeric, ok := in.Column(column); ok {
		for i, v := range numeric.Values {
			if series.Absent(v) {
				continue
			}
			k := strconv.FormatFloat(v, 'f', -1, 64)
			keys[i] = &k
		}
		return keys, nil
	}
	if in.Keys != nil && in.KeyName == column {
		for i := range in.Keys {
			keys[i] = &in.Keys[i]
		}
		return keys, nil
	}
	if in.Len() == 0 {
		return keys, nil
	}
	return nil, stageErr(StageFanOut, "entity_column", fmt.Errorf("%w: %q", ErrMissingColumn, column))
}
