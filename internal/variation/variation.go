// Package variation implements C8: uniform crossover and slot/instructor/
// room mutation. Grounded on the teacher's candidate.Crossover/Mutate
// (eaopt.CrossCXInt/eaopt.MutPermuteInt, lib.go), generalized from
// permutation genomes to gene-position uniform swap/resample.
//
// Operators preserve the schedule-completeness invariant: they never add or
// remove genes, and never change a gene's quantum count. They may introduce
// other hard violations; internal/repair is responsible for those.
package variation

import (
	"math/rand"
	"sort"

	"github.com/MaxHalford/eaopt"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// Crossover performs uniform crossover between two parents already the same
// length and gene-position-aligned (both built by iterating the same
// ctx.CourseGroupPairs order). The swap mask itself is computed by
// eaopt.CrossUniformInt over a zero/one sentinel pair rather than a
// hand-rolled coin flip per position, so the position-swap decision reuses
// the teacher's uniform-crossover operator verbatim; only the payload being
// swapped (a SessionGene instead of an int) is new.
func Crossover(a, b *domain.Individual, rng *rand.Rand) (*domain.Individual, *domain.Individual) {
	childA := a.Clone()
	childB := b.Clone()
	n := len(childA.Genes)
	if len(childB.Genes) < n {
		n = len(childB.Genes)
	}

	zeros := make([]int, n)
	ones := make([]int, n)
	for i := range ones {
		ones[i] = 1
	}
	mask, _ := eaopt.CrossUniformInt(zeros, ones, rng)

	for i := 0; i < n; i++ {
		if mask[i] == 1 {
			childA.Genes[i], childB.Genes[i] = childB.Genes[i], childA.Genes[i]
		}
	}
	childA.Invalidate()
	childB.Invalidate()
	return childA, childB
}

// mutationBranch is one of the three mutation kinds spec.md §4.6 names.
type mutationBranch int

const (
	mutateQuanta mutationBranch = iota
	mutateInstructor
	mutateRoom
)

// Mutate mutates exactly one gene of ind, chosen uniformly, by resampling
// exactly one of its quanta/instructor/room fields. Per-individual
// invocation; the caller (internal/evolve) applies this at the configured
// MUTPB rate.
func Mutate(ind *domain.Individual, ctx *schedctx.Context, maxSessionCoalescence int, rng *rand.Rand) {
	if len(ind.Genes) == 0 {
		return
	}
	idx := rng.Intn(len(ind.Genes))
	branch := mutationBranch(rng.Intn(3))

	switch branch {
	case mutateQuanta:
		mutateGeneQuanta(&ind.Genes[idx], ctx, maxSessionCoalescence, rng)
	case mutateInstructor:
		mutateGeneInstructor(&ind.Genes[idx], ctx, rng)
	case mutateRoom:
		mutateGeneRoom(&ind.Genes[idx], ctx, rng)
	}
	ind.Invalidate()
}

// mutateGeneInstructor samples from the course's qualified set, keeping the
// current instructor with probability 0.7 if it is qualified. If the
// qualified set is empty, samples uniformly from *all* instructors rather
// than freezing the gene (spec.md §9: an empty qualified set must never
// freeze the search).
func mutateGeneInstructor(g *domain.SessionGene, ctx *schedctx.Context, rng *rand.Rand) {
	course, ok := ctx.Courses[domain.CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}]
	if !ok {
		return
	}
	qualified := course.QualifiedInstructorIDs
	currentQualified := false
	for _, id := range qualified {
		if id == g.InstructorID {
			currentQualified = true
			break
		}
	}
	if currentQualified && rng.Float64() < 0.7 {
		return
	}
	if len(qualified) > 0 {
		g.InstructorID = qualified[rng.Intn(len(qualified))]
		return
	}
	all := make([]string, 0, len(ctx.Instructors))
	for id := range ctx.Instructors {
		all = append(all, id)
	}
	if len(all) == 0 {
		return
	}
	g.InstructorID = all[rng.Intn(len(all))]
}

func mutateGeneRoom(g *domain.SessionGene, ctx *schedctx.Context, rng *rand.Rand) {
	course, ok := ctx.Courses[domain.CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}]
	if !ok {
		return
	}
	bundle := schedctx.GroupBundle{GroupIDs: g.GroupIDs}
	exact, flexible, capOnly := ctx.FindSuitableRoomsByTier(course, bundle)
	for _, tier := range [][]domain.Room{exact, flexible, capOnly} {
		if len(tier) > 0 {
			g.RoomID = tier[rng.Intn(len(tier))].RoomID
			return
		}
	}
}

// mutateGeneQuanta resamples a contiguous block of the gene's required size
// from the intersection of its actors' availability sets, respecting the
// configured coalescence preference.
func mutateGeneQuanta(g *domain.SessionGene, ctx *schedctx.Context, maxSessionCoalescence int, rng *rand.Rand) {
	needed := len(g.Quanta)
	if needed == 0 {
		return
	}
	available := ctx.AvailabilityIntersection(g.InstructorID, g.RoomID, g.GroupIDs)
	if len(available) == 0 {
		return
	}

	chunk := maxSessionCoalescence
	if chunk <= 0 {
		chunk = needed
	}

	blocks := contiguousRuns(available)
	rng.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })

	chosen := make([]int, 0, needed)
	seen := make(map[int]struct{}, needed)
	for _, block := range blocks {
		if len(chosen) >= needed {
			break
		}
		for start := 0; start < len(block) && len(chosen) < needed; start += chunk {
			end := start + chunk
			if end > len(block) {
				end = len(block)
			}
			for _, q := range block[start:end] {
				if len(chosen) >= needed {
					break
				}
				if _, dup := seen[q]; dup {
					continue
				}
				chosen = append(chosen, q)
				seen[q] = struct{}{}
			}
		}
	}
	if len(chosen) < needed {
		// not enough in the intersection: keep what we found and pad from
		// the full available list so the gene's length invariant holds.
		for _, q := range available {
			if len(chosen) >= needed {
				break
			}
			if _, dup := seen[q]; dup {
				continue
			}
			chosen = append(chosen, q)
			seen[q] = struct{}{}
		}
	}
	if len(chosen) < needed {
		return // leave the gene untouched rather than shrink it
	}

	sort.Ints(chosen)
	g.Quanta = chosen
}

func contiguousRuns(quanta []int) [][]int {
	if len(quanta) == 0 {
		return nil
	}
	sorted := append([]int(nil), quanta...)
	sort.Ints(sorted)
	var blocks [][]int
	current := []int{sorted[0]}
	for _, q := range sorted[1:] {
		if q == current[len(current)-1]+1 {
			current = append(current, q)
			continue
		}
		blocks = append(blocks, current)
		current = []int{q}
	}
	blocks = append(blocks, current)
	return blocks
}
