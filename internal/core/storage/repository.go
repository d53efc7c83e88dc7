package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tse-eval/resampler/internal/core/series"
)

// ErrRunNotFound is returned when no run with the requested id exists.
var ErrRunNotFound = errors.New("run not found")

// Run describes one pipeline execution whose output was persisted.
type Run struct {
	ID         uuid.UUID
	Source     string
	Preset     string
	Window     string
	PerEdge    bool
	Rows       int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ResultStore persists resampled tables.
type ResultStore interface {
	// SaveRun writes the run and every numeric cell of tbl atomically.
	// Absent values are stored as NULL.
	SaveRun(ctx context.Context, run Run, tbl *series.Table) error

	// LoadRun rebuilds the table saved for id. Returns ErrRunNotFound if the
	// run does not exist.
	LoadRun(ctx context.Context, id uuid.UUID) (Run, *series.Table, error)

	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
