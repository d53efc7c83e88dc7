package resample

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn     = errors.New("column missing from input")
	ErrInvalidTimeFrame  = errors.New("invalid time frame")
	ErrInvalidFillMethod = errors.New("invalid fill method")
	ErrEmptySpec         = errors.New("aggregation spec has no rules")
	ErrCategoricalKind   = errors.New("aggregation not supported on categorical column")
)

// Pipeline stages reported by StageError.
const (
	StageParse     = "parse"
	StageAggregate = "aggregate"
	StageNormalize = "normalize"
	StageSmooth    = "smooth"
	StageClip      = "clip"
	StageFanOut    = "fanout"
)

// StageError identifies the pipeline stage and the parameter that caused a
// failure. Use errors.Is on it to reach the underlying sentinel.
type StageError struct {
	Stage string
	Param string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("resample %s: %s: %v", e.Stage, e.Param, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage, param string, err error) error {
	return &StageError{Stage: stage, Param: param, Err: err}
}
