// Package repair implements C9: the priority-ordered repair-heuristic
// registry that locally corrects infeasibilities introduced by variation.
// Grounded on the teacher's constructedSchedule.Add iterate-and-retry
// pattern (lib.go) — MaxIterations there is the direct ancestor of
// max_iterations here.
package repair

import (
	"slices"
	"sort"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

// Heuristic is a single named, priority-ordered repair transformation. Apply
// mutates ind in place and returns the number of fixes it performed; it
// never raises for violations it cannot fix, it simply returns a smaller
// count (spec.md §7).
type Heuristic interface {
	Name() string
	Apply(ind *domain.Individual, ctx *schedctx.Context) int
}

// Toggle configures whether a heuristic runs, and at what priority
// (ascending order of Priority within a pass).
type Toggle struct {
	Enabled  bool
	Priority int
}

// Config is REPAIR_HEURISTICS_CONFIG from spec.md §6, plus the memetic
// knobs. Resolution of the memetic-mode Open Question is recorded in
// DESIGN.md (OQ-b): repair runs on offspring immediately after variation,
// before the parent+offspring merge; with ApplyAfterMutation set, only
// offspring that were mutated are repaired.
type Config struct {
	Heuristics         map[string]Toggle
	MaxIterations      int
	ApplyAfterMutation bool
	MemeticMode        bool
	ElitePercentage    float64
	MemeticIterations  int
}

// Registry is the ordered, enabled set of repair heuristics.
type Registry struct {
	heuristics map[string]Heuristic
	cfg        Config
	order      []string
}

// NewRegistry builds the standard heuristic set under the given config.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		heuristics: standardHeuristics(),
		cfg:        cfg,
	}
	r.rebuildOrder()
	return r
}

func (r *Registry) rebuildOrder() {
	type entry struct {
		name     string
		priority int
	}
	var entries []entry
	for name := range r.heuristics {
		t, ok := r.cfg.Heuristics[name]
		if !ok {
			t = Toggle{Enabled: true, Priority: defaultPriority[name]}
		}
		if !t.Enabled {
			continue
		}
		entries = append(entries, entry{name, t.Priority})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].name < entries[j].name
	})
	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.name
	}
	r.order = order
}

// FixCounts reports the number of fixes performed per heuristic kind, for
// observability in the evolutionary loop's per-generation metrics.
type FixCounts map[string]int

// Run applies every enabled heuristic, in ascending priority, up to
// cfg.MaxIterations times, stopping early once a full pass fixes nothing.
func (r *Registry) Run(ind *domain.Individual, ctx *schedctx.Context) FixCounts {
	totals := make(FixCounts)
	maxIter := r.cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 3
	}
	for iter := 0; iter < maxIter; iter++ {
		fixedThisPass := 0
		for _, name := range r.order {
			n := r.heuristics[name].Apply(ind, ctx)
			totals[name] += n
			fixedThisPass += n
		}
		if fixedThisPass == 0 {
			break
		}
	}
	ind.Invalidate()
	return totals
}

// ApplyAfterMutation reports whether Run should be gated on a gene having
// just been mutated this generation (spec.md §6 APPLY_AFTER_MUTATION): when
// true, the caller only repairs individuals that variation actually touched
// this pass; when false, every offspring is repaired regardless, including
// ones produced by crossover alone.
func (r *Registry) ApplyAfterMutation() bool {
	return r.cfg.ApplyAfterMutation
}

// EliteCount returns how many of the leading popSize individuals (assumed
// already front-rank sorted, e.g. the output of selectNextGeneration) are
// eligible for the memetic elite repair pass. It is 0 whenever memetic mode
// is off or ElitePercentage is not positive; a positive ElitePercentage that
// rounds down to nothing still yields 1.
func (r *Registry) EliteCount(popSize int) int {
	if !r.cfg.MemeticMode || popSize <= 0 {
		return 0
	}
	n := int(r.cfg.ElitePercentage * float64(popSize))
	if n <= 0 && r.cfg.ElitePercentage > 0 {
		n = 1
	}
	if n > popSize {
		n = popSize
	}
	return n
}

// MemeticIterations is how many extra Run passes RunElite performs over the
// elite fraction, on top of the MaxIterations passes Run already runs once
// per call.
func (r *Registry) MemeticIterations() int {
	if r.cfg.MemeticIterations <= 0 {
		return 1
	}
	return r.cfg.MemeticIterations
}

// RunElite applies MemeticIterations additional Run passes to each of the
// given individuals — intended to be called on the leading elite fraction
// of a freshly selected generation (spec.md §9 OQ-b) — and reports the
// combined fix counts across the whole elite slice.
func (r *Registry) RunElite(elite []*domain.Individual, ctx *schedctx.Context) FixCounts {
	totals := make(FixCounts)
	iterations := r.MemeticIterations()
	for i := 0; i < iterations; i++ {
		for _, ind := range elite {
			counts := r.Run(ind, ctx)
			for k, v := range counts {
				totals[k] += v
			}
		}
	}
	return totals
}

var defaultPriority = map[string]int{
	"repair_availability_violations": 1,
	"repair_group_overlaps":          2,
	"repair_room_conflicts":          3,
	"repair_instructor_conflicts":    4,
	"repair_room_type_mismatches":    5,
	"repair_session_clustering":      6,
}

func standardHeuristics() map[string]Heuristic {
	return map[string]Heuristic{
		"repair_availability_violations": availabilityRepair{},
		"repair_group_overlaps":          groupOverlapRepair{},
		"repair_room_conflicts":          roomConflictRepair{},
		"repair_instructor_conflicts":    instructorConflictRepair{},
		"repair_room_type_mismatches":    roomTypeRepair{},
		"repair_session_clustering":      clusteringRepair{},
	}
}

// candidateSlot is one (quantumStart, instructor, room) triple considered by
// FindAvailableSlotSmart.
type candidateSlot struct {
	quantumStart int
	instructorID string
	roomID       string
	score        int
}

// FindAvailableSlotSmart enumerates candidate relocations for gene g,
// restricted to the course's qualified instructors and suitable rooms,
// intersected with availability, and returns the highest-scoring one.
// Scoring: +100 for being adjacent to another quantum of the same
// course-group bundle, +10 for falling on the same day as the gene's
// existing quanta, 0 otherwise. Blocks that overlap a quantum held by
// another gene sharing a group, the instructor, or the room with g are
// skipped. Candidates are enumerated in a fixed
// deterministic order (day, quantum, room, instructor) and the first
// max-scoring candidate wins — resolving spec.md §9 Open Question (a).
func FindAvailableSlotSmart(ind *domain.Individual, geneIdx int, ctx *schedctx.Context) (quantumStart int, instructorID string, roomID string, found bool) {
	g := ind.Genes[geneIdx]
	needed := len(g.Quanta)
	if needed == 0 {
		return 0, "", "", false
	}

	course, ok := ctx.Courses[domain.CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}]
	if !ok {
		return 0, "", "", false
	}

	instructors := course.QualifiedInstructorIDs
	if len(instructors) == 0 {
		instructors = allInstructorIDsSorted(ctx)
	}
	rooms := ctx.FindSuitableRooms(course, schedctx.GroupBundle{GroupIDs: g.GroupIDs})
	if len(rooms) == 0 {
		return 0, "", "", false
	}

	sameBundleQuanta := sameBundleQuantaSet(ind, geneIdx)
	existingDays := daysOf(ctx, g.Quanta)

	held := make(map[int]struct{})
	for i, o := range ind.Genes {
		for _, gid := range o.GroupIDs {
			if i != geneIdx && (slices.Contains(g.GroupIDs, gid) || o.InstructorID == g.InstructorID || o.RoomID == g.RoomID) {
				for _, q := range o.Quanta {
					held[q] = struct{}{}
				}
			}
		}
	}

	var best *candidateSlot
	total := ctx.QTS.TotalQuanta()
	for start := 0; start+needed <= total; start++ {
		block := contiguousBlockFrom(start, needed)
		if slices.ContainsFunc(block, func(q int) bool { _, busy := held[q]; return busy }) {
			continue
		}
		for _, roomObj := range rooms {
			for _, insID := range instructors {
				if !blockAvailable(ctx, block, insID, roomObj.RoomID, g.GroupIDs) {
					continue
				}
				score := scoreBlock(ctx, block, sameBundleQuanta, existingDays)
				cand := candidateSlot{quantumStart: start, instructorID: insID, roomID: roomObj.RoomID, score: score}
				if best == nil || cand.score > best.score {
					c := cand
					best = &c
				}
			}
		}
	}
	if best == nil {
		return 0, "", "", false
	}
	return best.quantumStart, best.instructorID, best.roomID, true
}

func contiguousBlockFrom(start, length int) []int {
	block := make([]int, length)
	for i := 0; i < length; i++ {
		block[i] = start + i
	}
	return block
}

func blockAvailable(ctx *schedctx.Context, block []int, instructorID, roomID string, groupIDs []string) bool {
	ins := ctx.Instructors[instructorID]
	room := ctx.Rooms[roomID]
	for _, q := range block {
		if _, bad := ins.UnavailableQuanta[q]; bad {
			return false
		}
		if _, bad := room.UnavailableQuanta[q]; bad {
			return false
		}
		for _, gid := range groupIDs {
			if _, bad := ctx.Groups[gid].UnavailableQuanta[q]; bad {
				return false
			}
		}
		if _, err := ctx.QTS.QuantaToTime(q); err != nil {
			return false
		}
	}
	return true
}

func scoreBlock(ctx *schedctx.Context, block []int, sameBundleQuanta map[int]struct{}, existingDays map[quantum.Day]struct{}) int {
	score := 0
	for _, q := range block {
		for _, adjacent := range []int{q - 1, q + 1} {
			if _, ok := sameBundleQuanta[adjacent]; ok {
				score += 100
				break
			}
		}
		day, _, err := ctx.QTS.QuantaToTime(q)
		if err == nil {
			if _, ok := existingDays[day]; ok {
				score += 10
			}
		}
	}
	return score
}

func sameBundleQuantaSet(ind *domain.Individual, excludeIdx int) map[int]struct{} {
	target, bundle := ind.Genes[excludeIdx].Key()
	out := make(map[int]struct{})
	for i, g := range ind.Genes {
		if i == excludeIdx {
			continue
		}
		k, b := g.Key()
		if k != target || b != bundle {
			continue
		}
		for _, q := range g.Quanta {
			out[q] = struct{}{}
		}
	}
	return out
}

func daysOf(ctx *schedctx.Context, quanta []int) map[quantum.Day]struct{} {
	out := make(map[quantum.Day]struct{})
	for _, q := range quanta {
		day, _, err := ctx.QTS.QuantaToTime(q)
		if err == nil {
			out[day] = struct{}{}
		}
	}
	return out
}

func allInstructorIDsSorted(ctx *schedctx.Context) []string {
	ids := make([]string, 0, len(ctx.Instructors))
	for id := range ctx.Instructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
