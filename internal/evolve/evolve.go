package evolve

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/constraints"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/repair"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/seed"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/variation"
)

// Config is the subset of spec.md §6's configuration the loop itself reads.
type Config struct {
	PopSize              int
	NGen                 int
	CXPB                 float64
	MUTPB                float64
	MaxSessionCoalescence int
	UseMultiprocessing   bool
	NumWorkers           int
	Seed                 int64
}

// GenerationMetric is one row of the per-generation metrics history
// returned in the output contract (spec.md §6).
type GenerationMetric struct {
	Gen          int
	BestHard     int
	BestSoft     float64
	MeanHard     float64
	MeanSoft     float64
	Diversity    float64
	RepairCounts repair.FixCounts
}

// Result is the C10 output: the best individual found, its metrics history,
// and a violation digest. UnresolvedViolation is not an error (spec.md §7):
// it simply flags that the returned best individual still has hard > 0.
type Result struct {
	Best                *domain.Individual
	History             []GenerationMetric
	Violations          []constraints.Violation
	UnresolvedViolation bool
}

// Engine wires C7-C10 together: seeding, variation, repair, evaluation, and
// multi-objective selection, over an immutable Context.
type Engine struct {
	Context     *schedctx.Context
	Constraints *constraints.Registry
	Repair      *repair.Registry
	Config      Config
	Logger      *zap.Logger
}

// Run executes the evolutionary loop. It is cancellable at generation
// boundaries: ctx is checked between parallel barriers, never mid-evaluation
// (spec.md §5) — the current barrier always drains before Run returns.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(e.Config.Seed))
	workers := e.Config.NumWorkers
	if !e.Config.UseMultiprocessing {
		workers = 1
	} else if workers <= 0 {
		workers = 4
	}

	pop := seed.NewPopulation(e.Context, e.Config.PopSize, rng)
	for _, ind := range pop {
		e.Repair.Run(ind, e.Context)
	}
	// Generation 0's evaluation always runs to completion, even if ctx is
	// already cancelled: cancellation takes effect at generation boundaries
	// (spec.md §5), and there is no generation before this one whose result
	// could be returned instead.
	if _, err := evaluateParallel(context.Background(), e.Context, e.Constraints, pop, workers); err != nil {
		return nil, err
	}

	var history []GenerationMetric
	history = append(history, e.recordMetrics(0, pop, nil))

	ngen := e.Config.NGen
	if ngen <= 0 {
		ngen = 100
	}

	for gen := 1; gen <= ngen; gen++ {
		select {
		case <-ctx.Done():
			return e.finish(pop, history), ctx.Err()
		default:
		}

		frontOf, dist := frontAssignment(pop)
		offspring := make([]*domain.Individual, 0, e.Config.PopSize)
		repairTotals := make(repair.FixCounts)

		for len(offspring) < e.Config.PopSize {
			p1 := tournamentSelect(pop, frontOf, dist, rng)
			p2 := tournamentSelect(pop, frontOf, dist, rng)

			var c1, c2 *domain.Individual
			if rng.Float64() < e.Config.CXPB {
				c1, c2 = variation.Crossover(p1, p2, rng)
			} else {
				c1, c2 = p1.Clone(), p2.Clone()
			}

			for _, child := range []*domain.Individual{c1, c2} {
				mutated := false
				if rng.Float64() < e.Config.MUTPB {
					variation.Mutate(child, e.Context, e.Config.MaxSessionCoalescence, rng)
					mutated = true
				}
				if mutated || !e.Repair.ApplyAfterMutation() {
					counts := e.Repair.Run(child, e.Context)
					for k, v := range counts {
						repairTotals[k] += v
					}
				}
				offspring = append(offspring, child)
			}
		}
		offspring = offspring[:e.Config.PopSize]

		if _, err := evaluateParallel(context.Background(), e.Context, e.Constraints, offspring, workers); err != nil {
			return nil, err
		}

		merged := make([]*domain.Individual, 0, len(pop)+len(offspring))
		merged = append(merged, pop...)
		merged = append(merged, offspring...)
		pop = selectNextGeneration(merged, e.Config.PopSize)

		// Memetic elite pass (spec.md §9 OQ-b): when MEMETIC_MODE is on, the
		// leading ElitePercentage fraction of the freshly selected generation
		// (already front-rank ordered by selectNextGeneration) gets
		// MemeticIterations extra repair passes beyond the one every
		// offspring already received above.
		if eliteCount := e.Repair.EliteCount(len(pop)); eliteCount > 0 {
			elite := pop[:eliteCount]
			counts := e.Repair.RunElite(elite, e.Context)
			for k, v := range counts {
				repairTotals[k] += v
			}
			if _, err := evaluateParallel(context.Background(), e.Context, e.Constraints, elite, workers); err != nil {
				return nil, err
			}
		}

		history = append(history, e.recordMetrics(gen, pop, repairTotals))
		m := history[len(history)-1]
		logger.Info("generation complete",
			zap.Int("gen", gen),
			zap.Int("best_hard", m.BestHard),
			zap.Float64("best_soft", m.BestSoft),
			zap.Float64("diversity", m.Diversity),
		)
	}

	return e.finish(pop, history), nil
}

func (e *Engine) finish(pop []*domain.Individual, history []GenerationMetric) *Result {
	best := bestOf(pop)
	_, violations, _ := e.Constraints.Evaluate(best.Genes, e.Context)
	return &Result{
		Best:                best,
		History:             history,
		Violations:          violations,
		UnresolvedViolation: best.Fitness.HardCount > 0,
	}
}

// bestOf returns the individual with the lowest hard count, tiebreaking on
// the lowest soft penalty (spec.md §4.8 termination rule).
func bestOf(pop []*domain.Individual) *domain.Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness.HardCount < best.Fitness.HardCount ||
			(ind.Fitness.HardCount == best.Fitness.HardCount && ind.Fitness.SoftPenalty < best.Fitness.SoftPenalty) {
			best = ind
		}
	}
	return best
}

func (e *Engine) recordMetrics(gen int, pop []*domain.Individual, repairTotals repair.FixCounts) GenerationMetric {
	best := bestOf(pop)
	var sumHard, sumSoft float64
	for _, ind := range pop {
		sumHard += float64(ind.Fitness.HardCount)
		sumSoft += ind.Fitness.SoftPenalty
	}
	n := float64(len(pop))
	return GenerationMetric{
		Gen:          gen,
		BestHard:     best.Fitness.HardCount,
		BestSoft:     best.Fitness.SoftPenalty,
		MeanHard:     sumHard / n,
		MeanSoft:     sumSoft / n,
		Diversity:    averagePairwiseGeneDifference(pop),
		RepairCounts: repairTotals,
	}
}

// averagePairwiseGeneDifference is the diversity metric named in spec.md
// §4.8: the mean, over all unordered pairs, of the number of gene positions
// at which two individuals differ (by instructor, room, or quanta).
func averagePairwiseGeneDifference(pop []*domain.Individual) float64 {
	n := len(pop)
	if n < 2 {
		return 0
	}
	var total int
	var pairs int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			total += geneDifference(pop[i], pop[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(total) / float64(pairs)
}

func geneDifference(a, b *domain.Individual) int {
	n := len(a.Genes)
	if len(b.Genes) < n {
		n = len(b.Genes)
	}
	diff := 0
	for i := 0; i < n; i++ {
		ga, gb := a.Genes[i], b.Genes[i]
		if ga.InstructorID != gb.InstructorID || ga.RoomID != gb.RoomID || !sameQuanta(ga.Quanta, gb.Quanta) {
			diff++
		}
	}
	return diff
}

func sameQuanta(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
