package projection

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tse-eval/resampler/internal/core/storage"
)

// SeriesQuery holds per-request overrides of the configured pipeline options.
// Unset fields keep the configured value.
type SeriesQuery struct {
	Window        string  `form:"window"`
	Reindex       *bool   `form:"reindex"`
	FillMethod    string  `form:"fill_method"`
	RollingWindow *string `form:"rolling_window"` // empty disables smoothing
	TimeFrame     string  `form:"time_frame"`     // "start,end" in hours
	PerEdge       *bool   `form:"per_edge"`
	Entity        string  `form:"entity"` // restrict input to one entity
}

// SeriesRow is one output row. Absent values are null.
type SeriesRow struct {
	Entity string                      `json:"entity,omitempty"`
	Time   time.Time                   `json:"time"`
	Values map[string]*decimal.Decimal `json:"values"`
	Labels map[string]string           `json:"labels,omitempty"`
}

// SeriesResponse is the body of GET /v1/series and GET /v1/runs/:id.
type SeriesResponse struct {
	Window  string      `json:"window"`
	PerEdge bool        `json:"per_edge"`
	Columns []string    `json:"columns"`
	Rows    []SeriesRow `json:"rows"`
}

// RunSummary describes a persisted run.
type RunSummary struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Preset     string    `json:"preset"`
	Window     string    `json:"window"`
	PerEdge    bool      `json:"per_edge"`
	Rows       int       `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunResponse is a persisted run with its rows.
type RunResponse struct {
	Run    RunSummary     `json:"run"`
	Series SeriesResponse `json:"series"`
}

func summarize(run storage.Run) RunSummary {
	return RunSummary{
		ID:         run.ID,
		Source:     run.Source,
		Preset:     run.Preset,
		Window:     run.Window,
		PerEdge:    run.PerEdge,
		Rows:       run.Rows,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}
