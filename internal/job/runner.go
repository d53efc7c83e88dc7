// Package job runs the configured resampling pipeline end to end.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tse-eval/resampler/internal/core/config"
	"github.com/tse-eval/resampler/internal/core/series"
	"github.com/tse-eval/resampler/internal/core/storage"
	"github.com/tse-eval/resampler/internal/export"
	"github.com/tse-eval/resampler/internal/ingestion"
	"github.com/tse-eval/resampler/internal/metrics"
	"github.com/tse-eval/resampler/internal/resample"
)

// Metric trigger labels.
const (
	TriggerJob = "job"
	TriggerAPI = "api"
)

// Execute runs the single-entity pipeline, or the per-entity fan-out when
// perEdge is set.
func Execute(ctx context.Context, in *series.Table, opts resample.Options, perEdge bool) (*series.Table, error) {
	if perEdge {
		return resample.FanOut(ctx, in, opts)
	}
	return resample.Resample(in, opts)
}

// Result describes one finished run.
type Result struct {
	Run      storage.Run
	Table    *series.Table
	Entities int
}

// Runner loads the configured input, resamples it, writes the configured
// exports and persists the result when a store is set.
type Runner struct {
	cfg    *config.Config
	source ingestion.Source
	store  storage.ResultStore
	now    func() time.Time
}

// NewRunner creates a runner. store may be nil.
func NewRunner(cfg *config.Config, source ingestion.Source, store storage.ResultStore) *Runner {
	return &Runner{
		cfg:    cfg,
		source: source,
		store:  store,
		now:    time.Now,
	}
}

// Run executes the pipeline once under a fresh run id.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	run := storage.Run{
		ID:        uuid.New(),
		Source:    SourceName(r.cfg.Input),
		Preset:    r.cfg.Resample.Preset,
		Window:    r.cfg.Options.Window,
		PerEdge:   r.cfg.Resample.PerEdge,
		StartedAt: r.now().UTC(),
	}
	if run.Window == "" {
		run.Window = resample.DefaultWindow
	}

	slog.Info("[Job] Starting resample run",
		"run_id", run.ID,
		"source", run.Source,
		"preset", run.Preset,
		"window", run.Window,
		"per_edge", run.PerEdge,
	)

	res, err := r.run(ctx, run)
	elapsed := r.now().UTC().Sub(run.StartedAt)
	rows := 0
	if res.Table != nil {
		rows = res.Table.Len()
	}
	metrics.RecordRun(TriggerJob, err, elapsed.Seconds(), rows)
	if err != nil {
		slog.Error("[Job] Run failed", "run_id", run.ID, "error", err)
		return Result{}, err
	}

	slog.Info("[Job] Run complete",
		"run_id", run.ID,
		"rows", rows,
		"entities", res.Entities,
		"took", elapsed,
	)
	return res, nil
}

func (r *Runner) run(ctx context.Context, run storage.Run) (Result, error) {
	in, err := r.source.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load input: %w", err)
	}
	metrics.RecordSourceRows(r.cfg.Input.Type, in.Len())

	out, err := Execute(ctx, in, r.cfg.Options, run.PerEdge)
	if err != nil {
		return Result{}, fmt.Errorf("resample: %w", err)
	}

	res := Result{Table: out}
	if run.PerEdge {
		res.Entities = countEntities(out)
		metrics.RecordEntities(TriggerJob, res.Entities)
	}

	if path := r.cfg.Output.CSVPath; path != "" {
		if err := export.WriteCSV(path, out); err != nil {
			return Result{}, fmt.Errorf("write output: %w", err)
		}
	}
	if path := r.cfg.Output.XLSXPath; path != "" {
		if err := export.WriteXLSX(path, out); err != nil {
			return Result{}, fmt.Errorf("write output: %w", err)
		}
	}

	run.Rows = out.Len()
	run.FinishedAt = r.now().UTC()
	if r.store != nil {
		if err := r.store.SaveRun(ctx, run, out); err != nil {
			return Result{}, fmt.Errorf("save run: %w", err)
		}
	}
	res.Run = run
	return res, nil
}

func countEntities(tbl *series.Table) int {
	n := 0
	for i, k := range tbl.Keys {
		if i == 0 || k != tbl.Keys[i-1] {
			n++
		}
	}
	return n
}
