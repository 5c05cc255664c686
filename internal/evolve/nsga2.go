package evolve

import (
	"math"
	"sort"

	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// fastNonDominatedSort groups pop into Pareto fronts such that no member of
// a front is dominated by any other member, à la NSGA-II. Front 0 is the
// non-dominated set.
func fastNonDominatedSort(pop []*domain.Individual) [][]int {
	n := len(pop)
	dominationCount := make([]int, n)
	dominated := make([][]int, n)
	var fronts [][]int
	front0 := []int{}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if pop[i].Fitness.Dominates(pop[j].Fitness) {
				dominated[i] = append(dominated[i], j)
			} else if pop[j].Fitness.Dominates(pop[i].Fitness) {
				dominationCount[i]++
			}
		}
		if dominationCount[i] == 0 {
			front0 = append(front0, i)
		}
	}
	fronts = append(fronts, front0)

	current := front0
	for len(current) > 0 {
		var next []int
		for _, i := range current {
			for _, j := range dominated[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		fronts = append(fronts, next)
		current = next
	}
	return fronts
}

// crowdingDistance computes the NSGA-II crowding distance for every index in
// front, over the two objectives (hard count, soft penalty). Boundary
// points get +Inf so they are always preferred in the tiebreak.
func crowdingDistance(pop []*domain.Individual, front []int) map[int]float64 {
	dist := make(map[int]float64, len(front))
	for _, i := range front {
		dist[i] = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	assign := func(values func(int) float64) {
		sorted := append([]int(nil), front...)
		sort.Slice(sorted, func(a, b int) bool { return values(sorted[a]) < values(sorted[b]) })
		lo := values(sorted[0])
		hi := values(sorted[len(sorted)-1])
		dist[sorted[0]] = math.Inf(1)
		dist[sorted[len(sorted)-1]] = math.Inf(1)
		span := hi - lo
		if span == 0 {
			return
		}
		for k := 1; k < len(sorted)-1; k++ {
			prev := values(sorted[k-1])
			next := values(sorted[k+1])
			if math.IsInf(dist[sorted[k]], 1) {
				continue
			}
			dist[sorted[k]] += (next - prev) / span
		}
	}

	assign(func(i int) float64 { return float64(pop[i].Fitness.HardCount) })
	assign(func(i int) float64 { return pop[i].Fitness.SoftPenalty })
	return dist
}

// selectNextGeneration fills the next generation of size `size` by front
// order, tiebreaking within the last admitted front by crowding distance
// (descending — a larger crowding distance means a less-crowded region of
// objective space and is preferred).
func selectNextGeneration(pop []*domain.Individual, size int) []*domain.Individual {
	fronts := fastNonDominatedSort(pop)
	next := make([]*domain.Individual, 0, size)

	for _, front := range fronts {
		if len(next)+len(front) <= size {
			for _, i := range front {
				next = append(next, pop[i])
			}
			continue
		}
		remaining := size - len(next)
		if remaining <= 0 {
			break
		}
		dist := crowdingDistance(pop, front)
		sorted := append([]int(nil), front...)
		sort.Slice(sorted, func(a, b int) bool { return dist[sorted[a]] > dist[sorted[b]] })
		for k := 0; k < remaining; k++ {
			next = append(next, pop[sorted[k]])
		}
		break
	}
	return next
}

// tournamentSelect runs binary tournament selection using pure Pareto
// comparison (front rank then crowding distance) — never a scalarized
// weighted sum, resolving spec.md §9 Open Question (c). frontOf/dist are
// keyed by index into pop.
func tournamentSelect(pop []*domain.Individual, frontOf map[int]int, dist map[int]float64, rng interface{ Intn(int) int }) *domain.Individual {
	a := rng.Intn(len(pop))
	b := rng.Intn(len(pop))
	if frontOf[a] != frontOf[b] {
		if frontOf[a] < frontOf[b] {
			return pop[a]
		}
		return pop[b]
	}
	if dist[a] > dist[b] {
		return pop[a]
	}
	return pop[b]
}

// frontAssignment returns, for every population index, its front rank and
// crowding distance — used to drive tournamentSelect.
func frontAssignment(pop []*domain.Individual) (frontOf map[int]int, dist map[int]float64) {
	fronts := fastNonDominatedSort(pop)
	frontOf = make(map[int]int, len(pop))
	dist = make(map[int]float64, len(pop))
	for rank, front := range fronts {
		fd := crowdingDistance(pop, front)
		for _, i := range front {
			frontOf[i] = rank
			dist[i] = fd[i]
		}
	}
	return frontOf, dist
}
