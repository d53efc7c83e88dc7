package aggregation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a supported per-column aggregation.
type Kind int

const (
	KindMean Kind = iota + 1
	KindSum
	KindFirst
	KindLast
	KindMin
	KindMax
	KindCount
	KindMedian
	// KindCustom resolves to a reducer registered in a Registry.
	KindCustom
)

var (
	// ErrUnknownKind is returned when a spec names an aggregation that is
	// neither built in nor registered.
	ErrUnknownKind = errors.New("unknown aggregation kind")

	// ErrInvalidWindow is returned for malformed or non-positive durations.
	ErrInvalidWindow = errors.New("invalid window")
)

// kindNames maps accepted spellings to kinds, including the names used by
// existing evaluation configs.
var kindNames = map[string]Kind{
	"mean":        KindMean,
	"avg":         KindMean,
	"sum":         KindSum,
	"first":       KindFirst,
	"first-valid": KindFirst,
	"last":        KindLast,
	"min":         KindMin,
	"max":         KindMax,
	"count":       KindCount,
	"median":      KindMedian,
}

// ParseKind resolves a built-in aggregation name.
func ParseKind(s string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

func (k Kind) String() string {
	switch k {
	case KindMean:
		return "mean"
	case KindSum:
		return "sum"
	case KindFirst:
		return "first"
	case KindLast:
		return "last"
	case KindMin:
		return "min"
	case KindMax:
		return "max"
	case KindCount:
		return "count"
	case KindMedian:
		return "median"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}
