package aggregation

import (
	"fmt"
	"sort"
	"strings"
)

// Preset names accepted by config.
const (
	PresetTraversal = "traversal"
	PresetEdge      = "edge"
	PresetCustom    = "custom"
)

// Rule assigns one aggregation to one column.
type Rule struct {
	Column  string
	Kind    Kind
	Name    string // the aggregation name as configured
	reducer Reducer
}

// Reduce applies the rule's reducer.
func (r Rule) Reduce(values []float64) (float64, bool) {
	return r.reducer.Reduce(values)
}

// Spec is an ordered, fully resolved set of column rules.
type Spec struct {
	Rules []Rule
}

// NewRule builds a rule for a built-in kind.
func NewRule(column string, k Kind) (Rule, error) {
	red, ok := ReducerFor(k)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %v", ErrUnknownKind, k)
	}
	return Rule{Column: column, Kind: k, Name: k.String(), reducer: red}, nil
}

// MustSpec builds a spec from column/kind pairs of built-in kinds and panics
// on error. Intended for presets and tests.
func MustSpec(pairs ...any) Spec {
	if len(pairs)%2 != 0 {
		panic("aggregation: MustSpec needs column/kind pairs")
	}
	var spec Spec
	for i := 0; i < len(pairs); i += 2 {
		rule, err := NewRule(pairs[i].(string), pairs[i+1].(Kind))
		if err != nil {
			panic(err)
		}
		spec.Rules = append(spec.Rules, rule)
	}
	return spec
}

// ParseSpec resolves a column → aggregation-name mapping. Unknown names are
// rejected here, before any data is touched. Columns are ordered by name.
// custom may be nil.
func ParseSpec(mapping map[string]string, custom *Registry) (Spec, error) {
	columns := make([]string, 0, len(mapping))
	for col := range mapping {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	var spec Spec
	for _, col := range columns {
		if strings.TrimSpace(col) == "" {
			return Spec{}, fmt.Errorf("aggregation spec: empty column name")
		}
		name := mapping[col]
		if k, err := ParseKind(name); err == nil {
			rule, _ := NewRule(col, k)
			spec.Rules = append(spec.Rules, rule)
			continue
		}
		red, ok := custom.Lookup(name)
		if !ok {
			return Spec{}, fmt.Errorf("aggregation spec: column %q: %w: %q", col, ErrUnknownKind, name)
		}
		spec.Rules = append(spec.Rules, Rule{Column: col, Kind: KindCustom, Name: name, reducer: red})
	}
	return spec, nil
}

// TraversalSpec aggregates traversal metrics from an FCD database.
func TraversalSpec() Spec {
	return MustSpec(
		"temporalMeanSpeed", KindMean,
		"spatialMeanSpeed", KindMean,
		"samples", KindSum,
	)
}

// EdgeSpec aggregates SUMO edge data.
func EdgeSpec() Spec {
	return MustSpec("speed", KindMean)
}

// Preset returns a named default spec. custom falls back to mapping.
func Preset(name string, mapping map[string]string, registry *Registry) (Spec, error) {
	switch name {
	case PresetTraversal:
		return TraversalSpec(), nil
	case PresetEdge:
		return EdgeSpec(), nil
	case PresetCustom, "":
		if len(mapping) == 0 {
			return Spec{}, fmt.Errorf("aggregation spec: custom preset needs a grouper mapping")
		}
		return ParseSpec(mapping, registry)
	default:
		return Spec{}, fmt.Errorf("aggregation spec: unknown preset %q", name)
	}
}

// Columns returns the rule columns in order.
func (s Spec) Columns() []string {
	cols := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		cols[i] = r.Column
	}
	return cols
}

// Has reports whether a rule exists for column.
func (s Spec) Has(column string) bool {
	for _, r := range s.Rules {
		if r.Column == column {
			return true
		}
	}
	return false
}

// Identity returns a spec taking the first valid value of every column.
func Identity(columns ...string) Spec {
	var spec Spec
	for _, c := range columns {
		rule, _ := NewRule(c, KindFirst)
		spec.Rules = append(spec.Rules, rule)
	}
	return spec
}
