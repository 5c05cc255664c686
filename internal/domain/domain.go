// Package domain holds the core entities of the timetabling problem: courses,
// groups, instructors, rooms, and the gene/individual chromosome model built
// from them.
//
// Field shapes generalize the teacher's Attendee/Room/ScheduleRequest model
// (meeting + attendees + room) to course + groups + instructor + room.
package domain

import "github.com/google/uuid"

// CourseType is a closed enumeration: dispatch on it is always explicit, never
// dynamic attribute lookup.
type CourseType string

const (
	Theory    CourseType = "theory"
	Practical CourseType = "practical"
)

// CourseKey uniquely identifies a schedulable course object.
type CourseKey struct {
	CourseCode string
	CourseType CourseType
}

// RoomCategory is the closed set of physical room kinds. Each category
// admits one or more course types via IsSuitableForCourseType.
type RoomCategory string

const (
	RoomLecture     RoomCategory = "lecture"
	RoomAuditorium  RoomCategory = "auditorium"
	RoomSeminar     RoomCategory = "seminar"
	RoomLab         RoomCategory = "lab"
	RoomComputerLab RoomCategory = "computer_lab"
	RoomScienceLab  RoomCategory = "science_lab"
)

// Course is identified by (CourseCode, CourseType). A theory object exists
// iff L+T>0; a practical iff P>0 — the two are independent schedulable units
// sharing a code.
type Course struct {
	CourseCode           string
	CourseType           CourseType
	LectureHours         float64
	TutorialHours        float64
	PracticalHours       float64
	RequiredRoomFeatures map[string]struct{}

	// QualifiedInstructorIDs is populated by internal/context's Assemble.
	QualifiedInstructorIDs []string
}

// Key returns the course's CourseKey.
func (c Course) Key() CourseKey {
	return CourseKey{CourseCode: c.CourseCode, CourseType: c.CourseType}
}

// RequiredQuanta is the total number of quanta of quantumMin minutes the
// course needs per week, rounded up to a whole quantum.
func (c Course) RequiredQuanta(quantumMin int) int {
	var hours float64
	switch c.CourseType {
	case Theory:
		hours = c.LectureHours + c.TutorialHours
	case Practical:
		hours = c.PracticalHours
	}
	minutes := hours * 60
	if quantumMin <= 0 {
		return 0
	}
	q := int(minutes) / quantumMin
	if int(minutes)%quantumMin != 0 {
		q++
	}
	return q
}

// Group is a student cohort: an enrollment set and a weekly unavailability
// set of quantum indices.
type Group struct {
	GroupID             string
	Size                int
	EnrolledCourseCodes map[string]struct{}
	UnavailableQuanta   map[int]struct{}
}

// Instructor carries both the raw (OriginalQualifiedCourses) and the
// context-filtered (QualifiedCourses) qualification sets. Filtering happens
// exactly once, in internal/context's Assemble — C3's only permitted
// mutation of instructor state.
type Instructor struct {
	InstructorID            string
	Name                    string
	QualifiedCourses        []CourseKey
	OriginalQualifiedCourses []CourseKey
	UnavailableQuanta       map[int]struct{}
}

// IsQualifiedFor reports whether the instructor may teach the given course key.
func (i Instructor) IsQualifiedFor(key CourseKey) bool {
	for _, k := range i.QualifiedCourses {
		if k == key {
			return true
		}
	}
	return false
}

// Room is a bookable physical space with a feature set and a capability
// predicate over course types.
type Room struct {
	RoomID            string
	Capacity          int
	Category          RoomCategory
	RoomFeatures       map[string]struct{}
	UnavailableQuanta map[int]struct{}
}

// IsSuitableForCourseType admits compatible variants: lecture/auditorium/
// seminar rooms accept "theory" courses; lab/computer_lab/science_lab rooms
// accept "practical" courses.
func (r Room) IsSuitableForCourseType(ct CourseType) bool {
	switch ct {
	case Theory:
		switch r.Category {
		case RoomLecture, RoomAuditorium, RoomSeminar:
			return true
		}
	case Practical:
		switch r.Category {
		case RoomLab, RoomComputerLab, RoomScienceLab:
			return true
		}
	}
	return false
}

// MatchTier describes how strongly a room's features satisfy a course's
// required features, used by the three-tier room matcher (C7/C9).
type MatchTier int

const (
	NoMatch MatchTier = iota
	CapacityOnly
	Flexible
	Exact
)

// FeatureMatchTier scores how well the room satisfies the course's required
// features, ignoring capacity (callers check capacity separately).
func (r Room) FeatureMatchTier(required map[string]struct{}) MatchTier {
	if !r.featuresSatisfy(required) {
		// Flexible: room has some but not all required features.
		if r.hasAnyFeature(required) {
			return Flexible
		}
		return CapacityOnly
	}
	if len(required) == 0 {
		return CapacityOnly
	}
	return Exact
}

func (r Room) featuresSatisfy(required map[string]struct{}) bool {
	for f := range required {
		if _, ok := r.RoomFeatures[f]; !ok {
			return false
		}
	}
	return true
}

func (r Room) hasAnyFeature(required map[string]struct{}) bool {
	for f := range required {
		if _, ok := r.RoomFeatures[f]; ok {
			return true
		}
	}
	return false
}

// SessionGene is the atomic schedulable unit: one contiguous pedagogical
// unit binding a course, groups, an instructor, a room, and a set of quanta.
// Contiguity of Quanta in time is a soft preference, not an invariant.
type SessionGene struct {
	CourseID   string
	CourseType CourseType
	InstructorID string
	RoomID     string
	GroupIDs   []string // non-empty, ordered, unique
	Quanta     []int    // ordered quantum indices; len == required slot count
}

// Key returns the (CourseKey, GroupBundle) identity of the gene.
func (g SessionGene) Key() (CourseKey, string) {
	return CourseKey{CourseCode: g.CourseID, CourseType: g.CourseType}, GroupBundleKey(g.GroupIDs)
}

// GroupBundleKey canonicalizes a group-id list into a stable bundle key.
// Callers must pass already-deduplicated, already-ordered ids (the ordering
// established at context-assembly time); GroupBundleKey does not reorder,
// so that two bundles built from the same canonical order compare equal.
func GroupBundleKey(groupIDs []string) string {
	key := ""
	for i, g := range groupIDs {
		if i > 0 {
			key += "+"
		}
		key += g
	}
	return key
}

// Fitness is the two-objective tuple attached to an Individual: both
// minimized, hard dominates soft lexicographically via Pareto comparison.
type Fitness struct {
	HardCount   int
	SoftPenalty float64
	Valid       bool // false until the individual has been (re)evaluated
}

// Dominates reports whether f Pareto-dominates other: f is no worse in both
// objectives and strictly better in at least one.
func (f Fitness) Dominates(other Fitness) bool {
	notWorse := f.HardCount <= other.HardCount && f.SoftPenalty <= other.SoftPenalty
	strictlyBetter := f.HardCount < other.HardCount || f.SoftPenalty < other.SoftPenalty
	return notWorse && strictlyBetter
}

// Individual is a complete timetable: the ordered gene list covering every
// required course-group pairing, plus its (possibly stale) fitness.
type Individual struct {
	TraceID string
	Genes   []SessionGene
	Fitness Fitness
}

// NewIndividual wraps a gene list with a fresh trace id and invalid fitness.
func NewIndividual(genes []SessionGene) *Individual {
	return &Individual{
		TraceID: uuid.NewString(),
		Genes:   genes,
	}
}

// Clone deep-copies an individual so variation/repair on the copy never
// aliases the original's gene slices.
func (ind *Individual) Clone() *Individual {
	genes := make([]SessionGene, len(ind.Genes))
	for i, g := range ind.Genes {
		genes[i] = SessionGene{
			CourseID:     g.CourseID,
			CourseType:   g.CourseType,
			InstructorID: g.InstructorID,
			RoomID:       g.RoomID,
			GroupIDs:     append([]string(nil), g.GroupIDs...),
			Quanta:       append([]int(nil), g.Quanta...),
		}
	}
	return &Individual{
		TraceID: uuid.NewString(),
		Genes:   genes,
		Fitness: Fitness{}, // a clone's fitness is always invalid until re-evaluated
	}
}

// Invalidate marks the individual's fitness stale; must be called whenever
// any gene is mutated in place.
func (ind *Individual) Invalidate() {
	ind.Fitness.Valid = false
}

// DecodedSession is the denormalized projection of a SessionGene used by
// evaluators: same data, plus human-readable day/time spans. Produced by
// internal/decode; must stay side-effect free and deterministic.
type DecodedSession struct {
	CourseID     string
	CourseType   CourseType
	InstructorID string
	RoomID       string
	GroupIDs     []string

	// Spans is one (day, startMin, endMin) tuple per contiguous run of
	// quanta in the originating gene; a gene with non-contiguous quanta
	// yields multiple spans.
	Spans []Span

	Quanta []int
}

// Span is a contiguous wall-clock run on a single operating day.
type Span struct {
	Day      string
	StartMin int
	EndMin   int
}
