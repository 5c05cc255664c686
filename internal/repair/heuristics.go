package repair

import (
	"sort"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// availabilityRepair fixes repair_availability_violations: for each
// gene-quantum in an unavailability set, it finds an alternative quantum in
// the intersection of the gene's actors' available sets and replaces that
// single quantum. If no alternative exists at the current resources, it
// falls through to substituting an alternative qualified instructor or
// suitable room simultaneously.
type availabilityRepair struct{}

func (availabilityRepair) Name() string { return "repair_availability_violations" }

func (availabilityRepair) Apply(ind *domain.Individual, ctx *schedctx.Context) int {
	fixed := 0
	for gi := range ind.Genes {
		g := &ind.Genes[gi]
		for qi, q := range g.Quanta {
			if !isUnavailable(ctx, *g, q) {
				continue
			}
			if alt, ok := firstAvailableReplacement(ctx, *g, q); ok {
				g.Quanta[qi] = alt
				fixed++
				continue
			}
			if swapped := trySubstituteActors(ind, gi, ctx); swapped {
				fixed++
			}
		}
		sort.Ints(g.Quanta)
	}
	return fixed
}

func isUnavailable(ctx *schedctx.Context, g domain.SessionGene, q int) bool {
	ins := ctx.Instructors[g.InstructorID]
	room := ctx.Rooms[g.RoomID]
	if _, bad := ins.UnavailableQuanta[q]; bad {
		return true
	}
	if _, bad := room.UnavailableQuanta[q]; bad {
		return true
	}
	for _, gid := range g.GroupIDs {
		if _, bad := ctx.Groups[gid].UnavailableQuanta[q]; bad {
			return true
		}
	}
	return false
}

func firstAvailableReplacement(ctx *schedctx.Context, g domain.SessionGene, avoid int) (int, bool) {
	taken := make(map[int]struct{}, len(g.Quanta))
	for _, q := range g.Quanta {
		taken[q] = struct{}{}
	}
	for _, q := range ctx.AvailabilityIntersection(g.InstructorID, g.RoomID, g.GroupIDs) {
		if q == avoid {
			continue
		}
		if _, dup := taken[q]; dup {
			continue
		}
		return q, true
	}
	return 0, false
}

// trySubstituteActors attempts to replace the gene's instructor or room with
// an alternative qualified/suitable one that clears every current
// unavailability witness simultaneously.
func trySubstituteActors(ind *domain.Individual, geneIdx int, ctx *schedctx.Context) bool {
	g := &ind.Genes[geneIdx]
	course, ok := ctx.Courses[domain.CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}]
	if !ok {
		return false
	}

	for _, insID := range course.QualifiedInstructorIDs {
		if blockAvailable(ctx, g.Quanta, insID, g.RoomID, g.GroupIDs) {
			g.InstructorID = insID
			return true
		}
	}
	for _, r := range ctx.FindSuitableRooms(course, schedctx.GroupBundle{GroupIDs: g.GroupIDs}) {
		if blockAvailable(ctx, g.Quanta, g.InstructorID, r.RoomID, g.GroupIDs) {
			g.RoomID = r.RoomID
			return true
		}
	}
	return false
}

// occupancyRepair is the shared implementation behind repair_group_overlaps,
// repair_room_conflicts, and repair_instructor_conflicts: for each owner
// claimed by more than one gene at a quantum, move the least-constrained
// gene (the one with more qualified-instructor freedom) to a new slot found
// via FindAvailableSlotSmart.
func occupancyRepair(ind *domain.Individual, ctx *schedctx.Context, owners func(domain.SessionGene) []string, swapActor bool) int {
	fixed := 0
	type claim struct {
		owner string
		q     int
	}
	claimedBy := make(map[claim][]int) // gene indices
	for i, g := range ind.Genes {
		for _, o := range owners(g) {
			for _, q := range g.Quanta {
				k := claim{o, q}
				claimedBy[k] = append(claimedBy[k], i)
			}
		}
	}

	moved := make(map[int]bool)
	var keys []claim
	for k, idxs := range claimedBy {
		if len(idxs) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].owner != keys[j].owner {
			return keys[i].owner < keys[j].owner
		}
		return keys[i].q < keys[j].q
	})

	for _, k := range keys {
		idxs := claimedBy[k]
		toMove := pickLeastConstrained(ind, ctx, idxs, moved)
		if toMove < 0 {
			continue
		}
		if relocateGene(ind, toMove, ctx, swapActor) {
			fixed++
			moved[toMove] = true
		}
	}
	return fixed
}

// pickLeastConstrained returns the gene index (among idxs, excluding any
// already moved this pass) with the most qualified instructors — the least
// constrained gene, which is the one relocated; genes with fewer options
// stay put. Ties go to the first such index in idxs.
func pickLeastConstrained(ind *domain.Individual, ctx *schedctx.Context, idxs []int, moved map[int]bool) int {
	best := -1
	bestOptions := -1
	for _, i := range idxs {
		if moved[i] {
			continue
		}
		g := ind.Genes[i]
		course := ctx.Courses[domain.CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}]
		options := len(course.QualifiedInstructorIDs)
		if options > bestOptions {
			bestOptions = options
			best = i
		}
	}
	return best
}

func relocateGene(ind *domain.Individual, geneIdx int, ctx *schedctx.Context, swapActor bool) bool {
	start, insID, roomID, found := FindAvailableSlotSmart(ind, geneIdx, ctx)
	if !found {
		return false
	}
	g := &ind.Genes[geneIdx]
	needed := len(g.Quanta)
	block := contiguousBlockFrom(start, needed)
	g.Quanta = block
	if swapActor {
		g.InstructorID = insID
		g.RoomID = roomID
	}
	return true
}

type groupOverlapRepair struct{}

func (groupOverlapRepair) Name() string { return "repair_group_overlaps" }
func (groupOverlapRepair) Apply(ind *domain.Individual, ctx *schedctx.Context) int {
	return occupancyRepair(ind, ctx, func(g domain.SessionGene) []string { return g.GroupIDs }, false)
}

type roomConflictRepair struct{}

func (roomConflictRepair) Name() string { return "repair_room_conflicts" }
func (roomConflictRepair) Apply(ind *domain.Individual, ctx *schedctx.Context) int {
	return occupancyRepair(ind, ctx, func(g domain.SessionGene) []string { return []string{g.RoomID} }, true)
}

type instructorConflictRepair struct{}

func (instructorConflictRepair) Name() string { return "repair_instructor_conflicts" }
func (instructorConflictRepair) Apply(ind *domain.Individual, ctx *schedctx.Context) int {
	return occupancyRepair(ind, ctx, func(g domain.SessionGene) []string { return []string{g.InstructorID} }, true)
}

// roomTypeRepair replaces the room using the three-tier matcher; if none is
// available at the gene's current quanta, it tries a small time-shift
// (delegated to FindAvailableSlotSmart) that unlocks a suitable room.
type roomTypeRepair struct{}

func (roomTypeRepair) Name() string { return "repair_room_type_mismatches" }
func (roomTypeRepair) Apply(ind *domain.Individual, ctx *schedctx.Context) int {
	fixed := 0
	for gi := range ind.Genes {
		g := &ind.Genes[gi]
		course, ok := ctx.Courses[domain.CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}]
		if !ok {
			continue
		}
		if roomFits(ctx, course, *g) {
			continue
		}
		replaced := false
		for _, r := range ctx.FindSuitableRooms(course, schedctx.GroupBundle{GroupIDs: g.GroupIDs}) {
			if blockAvailable(ctx, g.Quanta, g.InstructorID, r.RoomID, g.GroupIDs) {
				g.RoomID = r.RoomID
				fixed++
				replaced = true
				break
			}
		}
		if !replaced {
			if relocateGene(ind, gi, ctx, true) {
				fixed++
			}
		}
	}
	return fixed
}

func roomFits(ctx *schedctx.Context, course domain.Course, g domain.SessionGene) bool {
	room, ok := ctx.Rooms[g.RoomID]
	if !ok {
		return false
	}
	size := 0
	for _, gid := range g.GroupIDs {
		size += ctx.Groups[gid].Size
	}
	return room.IsSuitableForCourseType(g.CourseType) && room.Capacity >= size && room.FeatureMatchTier(course.RequiredRoomFeatures) != domain.NoMatch
}

// clusteringRepair is a pure rearrangement: it relocates an isolated
// 1-quantum gene fragment to be adjacent to an existing block of the same
// course-group pairing. It never changes total quanta.
type clusteringRepair struct{}

func (clusteringRepair) Name() string { return "repair_session_clustering" }
func (clusteringRepair) Apply(ind *domain.Individual, ctx *schedctx.Context) int {
	fixed := 0
	for gi := range ind.Genes {
		g := ind.Genes[gi]
		if len(g.Quanta) == 0 {
			continue
		}
		isolated := isolatedSingletons(g.Quanta)
		if len(isolated) == 0 {
			continue
		}
		sameBundle := sameBundleQuantaSet(ind, gi)
		if len(sameBundle) == 0 {
			continue
		}
		for _, q := range isolated {
			target, ok := adjacentFreeSlot(ctx, &ind.Genes[gi], q, sameBundle)
			if !ok {
				continue
			}
			replaceQuantum(&ind.Genes[gi], q, target)
			fixed++
		}
	}
	return fixed
}

func isolatedSingletons(quanta []int) []int {
	sorted := append([]int(nil), quanta...)
	sort.Ints(sorted)
	set := make(map[int]struct{}, len(sorted))
	for _, q := range sorted {
		set[q] = struct{}{}
	}
	var out []int
	for _, q := range sorted {
		_, prevOK := set[q-1]
		_, nextOK := set[q+1]
		if !prevOK && !nextOK {
			out = append(out, q)
		}
	}
	return out
}

func adjacentFreeSlot(ctx *schedctx.Context, g *domain.SessionGene, current int, sameBundle map[int]struct{}) (int, bool) {
	own := make(map[int]struct{}, len(g.Quanta))
	for _, q := range g.Quanta {
		own[q] = struct{}{}
	}
	for target := range sameBundle {
		for _, cand := range []int{target - 1, target + 1} {
			if cand == current {
				continue
			}
			if _, taken := own[cand]; taken {
				continue
			}
			if !blockAvailable(ctx, []int{cand}, g.InstructorID, g.RoomID, g.GroupIDs) {
				continue
			}
			return cand, true
		}
	}
	return 0, false
}

func replaceQuantum(g *domain.SessionGene, old, new int) {
	for i, q := range g.Quanta {
		if q == old {
			g.Quanta[i] = new
			break
		}
	}
	sort.Ints(g.Quanta)
}
