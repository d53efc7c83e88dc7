package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tse-eval/resampler/internal/core/series"
	"github.com/tse-eval/resampler/internal/core/storage"
	"github.com/tse-eval/resampler/internal/ingestion"
	"github.com/tse-eval/resampler/internal/job"
	"github.com/tse-eval/resampler/internal/metrics"
	"github.com/tse-eval/resampler/internal/resample"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

var (
	// ErrInvalidQuery marks request validation errors that should return HTTP 400.
	ErrInvalidQuery = errors.New("invalid series query")
	// ErrDatasetNotLoaded is returned before Load has succeeded.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	// ErrStoreNotConfigured is returned by run queries without a result store.
	ErrStoreNotConfigured = errors.New("result store not configured")
)

// Service resamples the loaded dataset on demand and serves persisted runs.
type Service struct {
	source  ingestion.Source
	store   storage.ResultStore
	base    resample.Options
	perEdge bool

	mu      sync.RWMutex
	dataset *series.Table
}

// NewService creates a query service. base holds the configured options that
// requests override. store may be nil.
func NewService(source ingestion.Source, store storage.ResultStore, base resample.Options, perEdge bool) *Service {
	return &Service{
		source:  source,
		store:   store,
		base:    base,
		perEdge: perEdge,
	}
}

// Load reads the dataset from source, replacing any previous one.
func (s *Service) Load(ctx context.Context) error {
	tbl, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	s.mu.Lock()
	s.dataset = tbl
	s.mu.Unlock()

	slog.Info("[Projection] Dataset loaded", "rows", tbl.Len(), "columns", len(tbl.Numeric)+len(tbl.Labels))
	return nil
}

func (s *Service) loaded() (*series.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.dataset != nil
}

// QuerySeries resamples the dataset with q applied over the configured options.
func (s *Service) QuerySeries(ctx context.Context, q SeriesQuery) (SeriesResponse, error) {
	in, ok := s.loaded()
	if !ok {
		return SeriesResponse{}, ErrDatasetNotLoaded
	}

	opts, perEdge, err := s.options(q)
	if err != nil {
		return SeriesResponse{}, err
	}

	if q.Entity != "" {
		in, err = selectEntity(in, opts.EntityColumn, q.Entity)
		if err != nil {
			return SeriesResponse{}, err
		}
	}

	start := time.Now()
	out, err := job.Execute(ctx, in, opts, perEdge)
	rows := 0
	if out != nil {
		rows = out.Len()
	}
	metrics.RecordRun(job.TriggerAPI, err, time.Since(start).Seconds(), rows)
	if err != nil {
		return SeriesResponse{}, err
	}

	window := opts.Window
	if window == "" {
		window = resample.DefaultWindow
	}
	return toSeriesResponse(out, window, perEdge), nil
}

// options applies q over the configured options and validates the result.
func (s *Service) options(q SeriesQuery) (resample.Options, bool, error) {
	opts := s.base
	perEdge := s.perEdge

	if q.Window != "" {
		opts.Window = q.Window
	}
	if q.Reindex != nil {
		opts.Reindex = *q.Reindex
	}
	if q.FillMethod != "" {
		fill, err := resample.ParseFillMethod(q.FillMethod)
		if err != nil {
			return resample.Options{}, false, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		opts.FillMethod = fill
	}
	if q.RollingWindow != nil {
		opts.RollingWindow = *q.RollingWindow
	}
	if q.TimeFrame != "" {
		frame, err := parseTimeFrame(q.TimeFrame)
		if err != nil {
			return resample.Options{}, false, err
		}
		opts.TimeFrame = &frame
	}
	if q.PerEdge != nil {
		perEdge = *q.PerEdge
	}
	if opts.EntityColumn == "" {
		opts.EntityColumn = resample.EntityColumn
	}

	if err := opts.Validate(); err != nil {
		return resample.Options{}, false, err
	}
	return opts, perEdge, nil
}

// parseTimeFrame parses "start,end" in hours.
func parseTimeFrame(raw string) (resample.TimeFrame, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return resample.TimeFrame{}, fmt.Errorf("%w: time_frame must be \"start,end\", got %q", ErrInvalidQuery, raw)
	}
	var bounds [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return resample.TimeFrame{}, fmt.Errorf("%w: time_frame %q: %v", ErrInvalidQuery, raw, err)
		}
		bounds[i] = v
	}
	return resample.TimeFrame{Start: bounds[0], End: bounds[1]}, nil
}

// selectEntity keeps the rows of in whose entity column equals entity.
func selectEntity(in *series.Table, column, entity string) (*series.Table, error) {
	var rows []int
	if l, ok := in.Label(column); ok {
		for i, v := range l.Values {
			if v == entity {
				rows = append(rows, i)
			}
		}
		return in.Select(rows), nil
	}
	if c, ok := in.Column(column); ok {
		for i, v := range c.Values {
			if !series.Absent(v) && strconv.FormatFloat(v, 'f', -1, 64) == entity {
				rows = append(rows, i)
			}
		}
		return in.Select(rows), nil
	}
	return nil, fmt.Errorf("%w: entity column %q not in dataset", ErrInvalidQuery, column)
}

// ListRuns returns persisted runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		return nil, fmt.Errorf("%w: limit must be <= %d", ErrInvalidQuery, maxRunsLimit)
	}

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]RunSummary, len(runs))
	for i, r := range runs {
		out[i] = summarize(r)
	}
	return out, nil
}

// GetRun returns a persisted run with its rows.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (RunResponse, error) {
	if s.store == nil {
		return RunResponse{}, ErrStoreNotConfigured
	}
	run, tbl, err := s.store.LoadRun(ctx, id)
	if err != nil {
		return RunResponse{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return RunResponse{
		Run:    summarize(run),
		Series: toSeriesResponse(tbl, run.Window, run.PerEdge),
	}, nil
}
