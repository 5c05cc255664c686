// Package evolve implements C10: the multi-objective evolutionary loop and
// its parallel fitness-evaluation model (spec.md §5). The scheduling model
// is a worker pool executing fitness evaluations in parallel via a map
// primitive; every other phase (selection, variation, repair, metrics) runs
// on a single coordinator goroutine.
package evolve

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/constraints"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// evaluateParallel fills in the fitness of every individual in pop whose
// Fitness.Valid is false, using up to `workers` concurrent goroutines. The
// context (schedctx.Context) is read-only and safely shared by reference;
// each individual crossing the worker boundary is only ever touched by one
// worker at a time and workers only ever write to that individual's own
// Fitness field. Fitness evaluation is purely CPU-bound; workers never
// block on I/O.
func evaluateParallel(ctx context.Context, sched *schedctx.Context, registry *constraints.Registry, pop []*domain.Individual, workers int) ([][]constraints.Violation, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	allViolations := make([][]constraints.Violation, len(pop))

	for i, ind := range pop {
		if ind.Fitness.Valid {
			continue
		}
		i, ind := i, ind
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer sem.Release(1)
			fitness, violations, err := registry.Evaluate(ind.Genes, sched)
			if err != nil {
				return err
			}
			ind.Fitness = fitness
			allViolations[i] = violations
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return allViolations, nil
}
