package aggregation

import (
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

// Reducer folds the valid (non-absent) values of one bucket into a single
// value. ok=false marks the result as absent.
//
// Reducers are only called for buckets that received at least one input row;
// values may still be empty when every row in the bucket was absent.
type Reducer interface {
	Reduce(values []float64) (result float64, ok bool)
}

// ReduceFunc adapts a plain function to Reducer.
type ReduceFunc func(values []float64) (float64, bool)

func (f ReduceFunc) Reduce(values []float64) (float64, bool) { return f(values) }

// builtin is the reducer table for every non-custom kind.
var builtin = map[Kind]Reducer{
	KindMean:   meanReducer{},
	KindSum:    sumReducer{},
	KindFirst:  firstReducer{},
	KindLast:   lastReducer{},
	KindMin:    minReducer{},
	KindMax:    maxReducer{},
	KindCount:  countReducer{},
	KindMedian: medianReducer{},
}

// ReducerFor returns the reducer of a built-in kind.
func ReducerFor(k Kind) (Reducer, bool) {
	r, ok := builtin[k]
	return r, ok
}

// sumReducer adds values with exact decimal arithmetic so long buckets do
// not drift. A bucket with rows but no valid values sums to 0.
type sumReducer struct{}

func (sumReducer) Reduce(values []float64) (float64, bool) {
	f, _ := decimalSum(values).Float64()
	return f, true
}

// meanReducer divides the exact sum by the number of valid values.
type meanReducer struct{}

func (meanReducer) Reduce(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	f, _ := decimalSum(values).Div(decimal.NewFromInt(int64(len(values)))).Float64()
	return f, true
}

func decimalSum(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

type firstReducer struct{}

func (firstReducer) Reduce(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

type lastReducer struct{}

func (lastReducer) Reduce(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

type minReducer struct{}

func (minReducer) Reduce(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return slices.Min(values), true
}

type maxReducer struct{}

func (maxReducer) Reduce(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return slices.Max(values), true
}

// countReducer counts valid values.
type countReducer struct{}

func (countReducer) Reduce(values []float64) (float64, bool) {
	return float64(len(values)), true
}

type medianReducer struct{}

func (medianReducer) Reduce(values []float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// Registry holds caller-defined reducers that specs may reference by name.
type Registry struct {
	mu       sync.RWMutex
	reducers map[string]Reducer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{reducers: make(map[string]Reducer)}
}

// Register adds a named reducer. Built-in names cannot be shadowed.
func (r *Registry) Register(name string, reducer Reducer) error {
	if _, err := ParseKind(name); err == nil {
		return fmt.Errorf("aggregation %q is built in", name)
	}
	if reducer == nil {
		return fmt.Errorf("aggregation %q: nil reducer", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reducers[name]; exists {
		return fmt.Errorf("aggregation %q already registered", name)
	}
	r.reducers[name] = reducer
	return nil
}

// Lookup returns the reducer registered under name.
func (r *Registry) Lookup(name string) (Reducer, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	red, ok := r.reducers[name]
	return red, ok
}
