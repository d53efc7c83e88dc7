package postgres

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tse-eval/resampler/internal/core/series"
	"github.com/tse-eval/resampler/internal/core/storage"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans a resample_runs row. Compatible with both sql.Row and sql.Rows.
func scanRun(row scanner) (storage.Run, error) {
	var (
		run storage.Run
		id  string
	)
	err := row.Scan(
		&id,
		&run.Source,
		&run.Preset,
		&run.Window,
		&run.PerEdge,
		&run.Rows,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return storage.Run{}, err
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return storage.Run{}, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	return run, nil
}

// tableBuilder reassembles cells ordered by (entity, time, column index).
type tableBuilder struct {
	keyed   bool
	tbl     *series.Table
	names   []string
	columns map[int][]float64
	entity  string
	start   time.Time
}

func newTableBuilder(keyed bool) *tableBuilder {
	b := &tableBuilder{keyed: keyed, tbl: &series.Table{Time: []time.Time{}}, columns: map[int][]float64{}}
	if keyed {
		b.tbl.Keys = []string{}
	}
	return b
}

func (b *tableBuilder) add(entity string, start time.Time, idx int, name string, v float64) {
	n := b.tbl.Len()
	if n == 0 || entity != b.entity || !start.Equal(b.start) {
		b.tbl.Time = append(b.tbl.Time, start)
		if b.keyed {
			b.tbl.Keys = append(b.tbl.Keys, entity)
		}
		b.entity, b.start = entity, start
		n++
	}
	for len(b.names) <= idx {
		b.names = append(b.names, "")
	}
	b.names[idx] = name

	values := b.columns[idx]
	for len(values) < n-1 {
		values = append(values, math.NaN())
	}
	b.columns[idx] = append(values, v)
}

func (b *tableBuilder) table() *series.Table {
	n := b.tbl.Len()
	for idx, name := range b.names {
		if name == "" {
			continue
		}
		values := b.columns[idx]
		for len(values) < n {
			values = append(values, math.NaN())
		}
		b.tbl.Numeric = append(b.tbl.Numeric, series.Column{Name: name, Values: values})
	}
	return b.tbl
}
