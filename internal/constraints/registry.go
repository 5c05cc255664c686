// Package constraints implements C4 (the hard/soft constraint registry) and
// C6 (the evaluator that runs enabled constraints over a decoded
// individual). The registry generalizes the teacher's single-float
// constructedSchedule.Evaluate into a named, enable/weight-configurable set
// of checks, modeled on noah-isme-sma-adp-api's typed sub-config structs.
package constraints

import (
	"sort"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/decode"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// Violation is one witness of a hard or soft constraint failure, kept for
// the output contract's violation digest.
type Violation struct {
	Constraint string
	Detail     string
	Weight     float64 // 0 for hard constraints (unweighted witness count)
}

// HardConstraint counts violating witnesses; target is always 0.
type HardConstraint interface {
	Name() string
	Evaluate(sessions []domain.DecodedSession, genes []domain.SessionGene, ctx *schedctx.Context) (count int, violations []Violation)
}

// SoftConstraint computes a raw (pre-weight) penalty.
type SoftConstraint interface {
	Name() string
	Evaluate(sessions []domain.DecodedSession, ctx *schedctx.Context) float64
}

// Toggle configures whether a named constraint participates, and its weight
// (meaningful for soft constraints; hard constraints use weight 1).
type Toggle struct {
	Enabled bool
	Weight  float64
}

// Registry holds the enabled/weighted constraint set plus a deterministic
// iteration order (constraint name, ascending).
type Registry struct {
	hard     map[string]HardConstraint
	soft     map[string]SoftConstraint
	hardCfg  map[string]Toggle
	softCfg  map[string]Toggle
	hardOrder []string
	softOrder []string
}

// NewRegistry builds the registry with the standard constraint set and the
// given configuration. Unknown keys in hardCfg/softCfg are a
// ConfigurationError, surfaced by the caller via UnknownKeys (the root
// scheduler.New checks this right after building the registry).
func NewRegistry(hardCfg, softCfg map[string]Toggle) *Registry {
	r := &Registry{
		hard:    standardHardConstraints(),
		soft:    standardSoftConstraints(),
		hardCfg: hardCfg,
		softCfg: softCfg,
	}
	for name := range r.hard {
		r.hardOrder = append(r.hardOrder, name)
	}
	for name := range r.soft {
		r.softOrder = append(r.softOrder, name)
	}
	sort.Strings(r.hardOrder)
	sort.Strings(r.softOrder)
	return r
}

// UnknownKeys returns any configured constraint name this registry does not
// recognize — surfaced by callers as a ConfigurationError.
func (r *Registry) UnknownKeys() []string {
	var unknown []string
	for name := range r.hardCfg {
		if _, ok := r.hard[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	for name := range r.softCfg {
		if _, ok := r.soft[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func (r *Registry) hardEnabled(name string) (Toggle, bool) {
	t, ok := r.hardCfg[name]
	if !ok {
		return Toggle{Enabled: true, Weight: 1}, true // default-on
	}
	return t, t.Enabled
}

func (r *Registry) softEnabled(name string) (Toggle, bool) {
	t, ok := r.softCfg[name]
	if !ok {
		return Toggle{Enabled: true, Weight: 1}, true // default-on
	}
	return t, t.Enabled
}

// Evaluate runs every enabled hard constraint once over the decoded
// individual, summing raw violation counts, then every enabled soft
// constraint, summing weight*penalty. Both passes are deterministic given
// fixed inputs and registry configuration.
func (r *Registry) Evaluate(genes []domain.SessionGene, ctx *schedctx.Context) (domain.Fitness, []Violation, error) {
	sessions, err := decode.Decode(genes, ctx)
	if err != nil {
		return domain.Fitness{}, nil, err
	}

	var hardTotal int
	var softTotal float64
	var violations []Violation

	for _, name := range r.hardOrder {
		toggle, enabled := r.hardEnabled(name)
		if !enabled {
			continue
		}
		_ = toggle
		count, vs := r.hard[name].Evaluate(sessions, genes, ctx)
		hardTotal += count
		violations = append(violations, vs...)
	}

	for _, name := range r.softOrder {
		toggle, enabled := r.softEnabled(name)
		if !enabled {
			continue
		}
		penalty := r.soft[name].Evaluate(sessions, ctx)
		weighted := penalty * toggle.Weight
		softTotal += weighted
		if penalty != 0 {
			violations = append(violations, Violation{Constraint: name, Detail: "soft penalty", Weight: weighted})
		}
	}

	return domain.Fitness{HardCount: hardTotal, SoftPenalty: softTotal, Valid: true}, violations, nil
}

// CountHard runs only the named hard constraint — used by repair heuristics
// that need the pre/post count of the single violation kind they target
// (spec.md §8 property 5: repair non-worsening for targeted violations).
func (r *Registry) CountHard(name string, genes []domain.SessionGene, ctx *schedctx.Context) (int, error) {
	sessions, err := decode.Decode(genes, ctx)
	if err != nil {
		return 0, err
	}
	hc, ok := r.hard[name]
	if !ok {
		return 0, nil
	}
	count, _ := hc.Evaluate(sessions, genes, ctx)
	return count, nil
}
