// Package seed implements C7: enrollment-aware construction of initial
// individuals. Grounded on the teacher's ScheduleFactory (shuffle-order
// random individual, lib.go) combined with smeggmann99-Arrango's
// randomIndividual/pickLeastLoadedDay day-balancing and three-tier room
// pick (pickClassroom).
package seed

import (
	"math/rand"
	"sort"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

// NewPopulation produces `size` independent individuals. Repeated calls with
// distinct rng state yield independent individuals; when a choice set is
// empty at any step the seeder falls back to the unrestricted choice and a
// violation is left for the evolutionary loop to resolve (spec.md §4.5).
func NewPopulation(ctx *schedctx.Context, size int, rng *rand.Rand) []*domain.Individual {
	pop := make([]*domain.Individual, size)
	for i := 0; i < size; i++ {
		pop[i] = NewIndividual(ctx, rng)
	}
	return pop
}

// NewIndividual builds one structurally-valid seed individual: one gene per
// course-group pairing in ctx.CourseGroupPairs.
func NewIndividual(ctx *schedctx.Context, rng *rand.Rand) *domain.Individual {
	genes := make([]domain.SessionGene, 0, len(ctx.CourseGroupPairs))
	// dayLoad tracks, for this individual only, how many quanta have already
	// been placed on each operating day so chooseQuanta can keep spreading
	// later genes onto the day currently carrying the fewest of them —
	// smeggmann99-Arrango's pickLeastLoadedDay, adapted from "fewest subject
	// groups on the day" to "fewest quanta placed so far".
	dayLoad := make(map[quantum.Day]int)
	for _, pair := range ctx.CourseGroupPairs {
		genes = append(genes, geneFor(ctx, pair, rng, dayLoad))
	}
	return domain.NewIndividual(genes)
}

func geneFor(ctx *schedctx.Context, pair schedctx.CourseGroupPair, rng *rand.Rand, dayLoad map[quantum.Day]int) domain.SessionGene {
	course := ctx.Courses[pair.CourseKey]

	instructorID := chooseInstructor(ctx, course, rng)
	roomID := chooseRoom(ctx, course, pair.Bundle, rng)
	quanta := chooseQuanta(ctx, instructorID, roomID, pair, rng, dayLoad)

	return domain.SessionGene{
		CourseID:     pair.CourseKey.CourseCode,
		CourseType:   pair.CourseKey.CourseType,
		InstructorID: instructorID,
		RoomID:       roomID,
		GroupIDs:     append([]string(nil), pair.Bundle.GroupIDs...),
		Quanta:       quanta,
	}
}

// chooseInstructor samples uniformly from the course's qualified set;
// falls back to any instructor if that set is empty (leaving an
// instructor_not_qualified violation that repair cannot invent data to fix).
func chooseInstructor(ctx *schedctx.Context, course domain.Course, rng *rand.Rand) string {
	if len(course.QualifiedInstructorIDs) > 0 {
		return course.QualifiedInstructorIDs[rng.Intn(len(course.QualifiedInstructorIDs))]
	}
	all := allInstructorIDs(ctx)
	if len(all) == 0 {
		return ""
	}
	return all[rng.Intn(len(all))]
}

func allInstructorIDs(ctx *schedctx.Context) []string {
	ids := make([]string, 0, len(ctx.Instructors))
	for id := range ctx.Instructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// chooseRoom prioritizes exact-feature match, then flexible, then
// capacity-only fallback, sampling uniformly within the first non-empty
// tier.
func chooseRoom(ctx *schedctx.Context, course domain.Course, bundle schedctx.GroupBundle, rng *rand.Rand) string {
	exact, flexible, capOnly := ctx.FindSuitableRoomsByTier(course, bundle)
	for _, tier := range [][]domain.Room{exact, flexible, capOnly} {
		if len(tier) > 0 {
			return tier[rng.Intn(len(tier))].RoomID
		}
	}
	// Unrestricted fallback: any room at all, records a room_type_mismatch.
	all := make([]domain.Room, 0, len(ctx.Rooms))
	for _, r := range ctx.Rooms {
		all = append(all, r)
	}
	if len(all) == 0 {
		return ""
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RoomID < all[j].RoomID })
	return all[rng.Intn(len(all))].RoomID
}

// chooseQuanta selects pair.RequiredQuanta indices from the intersection of
// instructor/room/group availability, preferring contiguous blocks of size
// ctx.MaxSessionCoalescence. Falls back to any quanta in range when the
// intersection is too small — a structural seed need not be hard-feasible.
//
// Candidate blocks are tried least-loaded-day first (dayLoad, updated as
// genes are placed across one individual's construction), shuffled first so
// equally-loaded days still tie-break randomly rather than always favoring
// whichever operating day sorts first.
func chooseQuanta(ctx *schedctx.Context, instructorID, roomID string, pair schedctx.CourseGroupPair, rng *rand.Rand, dayLoad map[quantum.Day]int) []int {
	available := ctx.AvailabilityIntersection(instructorID, roomID, pair.Bundle.GroupIDs)
	chunk := ctx.MaxSessionCoalescence
	if chunk <= 0 {
		chunk = 2
	}

	needed := pair.RequiredQuanta
	var chosen []int
	chosenSet := make(map[int]struct{}, needed)

	blocks := contiguousBlocks(available)
	rng.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
	sort.SliceStable(blocks, func(i, j int) bool {
		return dayLoad[blockDay(ctx, blocks[i])] < dayLoad[blockDay(ctx, blocks[j])]
	})

	for _, block := range blocks {
		if len(chosen) >= needed {
			break
		}
		for start := 0; start+1 <= len(block) && len(chosen) < needed; start += chunk {
			end := start + chunk
			if end > len(block) {
				end = len(block)
			}
			for _, q := range block[start:end] {
				if len(chosen) >= needed {
					break
				}
				if _, dup := chosenSet[q]; dup {
					continue
				}
				chosen = append(chosen, q)
				chosenSet[q] = struct{}{}
			}
		}
	}

	if len(chosen) < needed {
		// Unrestricted fallback over the whole operating week — records an
		// availability_violations witness the evolutionary loop will try
		// to repair.
		total := ctx.QTS.TotalQuanta()
		order := rng.Perm(total)
		for _, q := range order {
			if len(chosen) >= needed {
				break
			}
			if _, dup := chosenSet[q]; dup {
				continue
			}
			chosen = append(chosen, q)
			chosenSet[q] = struct{}{}
		}
	}

	for _, q := range chosen {
		if day, _, err := ctx.QTS.QuantaToTime(q); err == nil {
			dayLoad[day]++
		}
	}

	sort.Ints(chosen)
	return chosen
}

// blockDay reports the operating day of a contiguous block's first quantum,
// used only to rank blocks by dayLoad — a block that happens to straddle a
// day boundary (adjacent dense indices on different days, spec.md §9) is
// keyed by where it starts.
func blockDay(ctx *schedctx.Context, block []int) quantum.Day {
	if len(block) == 0 {
		return ""
	}
	day, _, err := ctx.QTS.QuantaToTime(block[0])
	if err != nil {
		return ""
	}
	return day
}

// contiguousBlocks groups a sorted-or-unsorted quantum slice into maximal
// runs of consecutive indices.
func contiguousBlocks(quanta []int) [][]int {
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
