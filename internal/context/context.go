// Package schedctx assembles the read-only Context a run operates over:
// enrollment filtering, instructor-qualification intersection, and the
// course-group pairing list that drives seeding. The Context is immutable
// once built and safely shareable across the worker pool in internal/evolve.
package schedctx

import (
	"sort"

	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/ports"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

// GroupBundle is either a single group or a pre-defined lecture bundle
// (multiple groups sharing a theory lecture).
type GroupBundle struct {
	GroupIDs []string
}

// CourseGroupPair drives seeding: one schedulable unit of work.
type CourseGroupPair struct {
	CourseKey      domain.CourseKey
	Bundle         GroupBundle
	RequiredQuanta int
}

// Context is the immutable, read-only world a run operates over.
type Context struct {
	QTS *quantum.System

	Courses     map[domain.CourseKey]domain.Course
	Groups      map[string]domain.Group
	Instructors map[string]domain.Instructor
	Rooms       map[string]domain.Room

	CourseGroupPairs []CourseGroupPair

	EarliestPreferredMin int
	LatestPreferredMin   int
	MiddayBreakStartMin  int
	MiddayBreakEndMin    int
	MaxSessionCoalescence int
}

// LectureBundles optionally groups multiple groups onto a shared theory
// lecture. Any enrolled group not named in a bundle schedules alone.
type LectureBundles map[domain.CourseKey][][]string

// Assemble runs the five C3 steps in order: enrollment union, course
// filtering, instructor-qualification intersection, qualified-instructor
// back-reference, and course-group-pair derivation.
func Assemble(
	courses []domain.Course,
	groups []domain.Group,
	instructors []domain.Instructor,
	rooms []domain.Room,
	qts *quantum.System,
	bundles LectureBundles,
	prefs Preferences,
) (*Context, error) {
	if qts == nil {
		return nil, ports.New(ports.InvariantBreach, "Assemble called without a quantum system")
	}

	// Step 1: enrolled_course_codes = union of group.enrolled_course_codes.
	enrolled := make(map[string]struct{})
	groupIndex := make(map[string]domain.Group, len(groups))
	for _, g := range groups {
		groupIndex[g.GroupID] = g
		for code := range g.EnrolledCourseCodes {
			enrolled[code] = struct{}{}
		}
	}

	// Step 2: retain only Course objects whose course_code is enrolled.
	courseIndex := make(map[domain.CourseKey]domain.Course)
	for _, c := range courses {
		if _, ok := enrolled[c.CourseCode]; !ok {
			continue
		}
		courseIndex[c.Key()] = c
	}
	if len(courseIndex) == 0 {
		return nil, ports.New(ports.InfeasibleSearch, "no course is enrolled by any group")
	}

	// Step 3: filter each instructor's qualifications to retained course keys.
	instructorIndex := make(map[string]domain.Instructor, len(instructors))
	for _, ins := range instructors {
		ins.OriginalQualifiedCourses = append([]domain.CourseKey(nil), ins.QualifiedCourses...)
		filtered := ins.QualifiedCourses[:0:0]
		for _, key := range ins.QualifiedCourses {
			if _, ok := courseIndex[key]; ok {
				filtered = append(filtered, key)
			}
		}
		ins.QualifiedCourses = filtered
		instructorIndex[ins.InstructorID] = ins
	}

	// Step 4: back-reference qualified instructor ids onto each course.
	for key, c := range courseIndex {
		var qualified []string
		for id, ins := range instructorIndex {
			if ins.IsQualifiedFor(key) {
				qualified = append(qualified, id)
			}
		}
		sort.Strings(qualified)
		c.QualifiedInstructorIDs = qualified
		courseIndex[key] = c
	}

	roomIndex := make(map[string]domain.Room, len(rooms))
	for _, r := range rooms {
		roomIndex[r.RoomID] = r
	}

	// Step 5: derive course_group_pairs.
	pairs, err := derivePairs(courseIndex, groupIndex, qts, bundles)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ports.New(ports.InfeasibleSearch, "no course-group pairing could be derived")
	}

	return &Context{
		QTS:                   qts,
		Courses:               courseIndex,
		Groups:                groupIndex,
		Instructors:           instructorIndex,
		Rooms:                 roomIndex,
		CourseGroupPairs:      pairs,
		EarliestPreferredMin:  prefs.EarliestPreferredMin,
		LatestPreferredMin:    prefs.LatestPreferredMin,
		MiddayBreakStartMin:   prefs.MiddayBreakStartMin,
		MiddayBreakEndMin:     prefs.MiddayBreakEndMin,
		MaxSessionCoalescence: prefs.MaxSessionCoalescence,
	}, nil
}

// Preferences carries the time-model preference constants from configuration.
type Preferences struct {
	EarliestPreferredMin  int
	LatestPreferredMin    int
	MiddayBreakStartMin   int
	MiddayBreakEndMin     int
	MaxSessionCoalescence int
}

func derivePairs(
	courses map[domain.CourseKey]domain.Course,
	groups map[string]domain.Group,
	qts *quantum.System,
	bundles LectureBundles,
) ([]CourseGroupPair, error) {
	var pairs []CourseGroupPair

	// index: which groups enroll which course code
	enrollingGroups := make(map[string][]string)
	for gid, g := range groups {
		for code := range g.EnrolledCourseCodes {
			enrollingGroups[code] = append(enrollingGroups[code], gid)
		}
	}
	for code := range enrollingGroups {
		sort.Strings(enrollingGroups[code])
	}

	quantumMin := qts.QuantumMinutes()

	for key, course := range courses {
		enrolledGroupIDs := enrollingGroups[course.CourseCode]
		if len(enrolledGroupIDs) == 0 {
			return nil, ports.New(ports.InvariantBreach, "course "+course.CourseCode+" retained with no enrolled group")
		}

		required := course.RequiredQuanta(quantumMin)
		if required <= 0 {
			continue
		}

		if key.CourseType == domain.Theory {
			if bundleList, ok := bundles[key]; ok {
				bundled := make(map[string]struct{})
				for _, groupIDs := range bundleList {
					ids := append([]string(nil), groupIDs...)
					sort.Strings(ids)
					pairs = append(pairs, CourseGroupPair{
						CourseKey:      key,
						Bundle:         GroupBundle{GroupIDs: ids},
						RequiredQuanta: required,
					})
					for _, id := range ids {
						bundled[id] = struct{}{}
					}
				}
				for _, gid := range enrolledGroupIDs {
					if _, done := bundled[gid]; done {
						continue
					}
					pairs = append(pairs, CourseGroupPair{
						CourseKey:      key,
						Bundle:         GroupBundle{GroupIDs: []string{gid}},
						RequiredQuanta: required,
					})
				}
				continue
			}
		}

		for _, gid := range enrolledGroupIDs {
			pairs = append(pairs, CourseGroupPair{
				CourseKey:      key,
				Bundle:         GroupBundle{GroupIDs: []string{gid}},
				RequiredQuanta: required,
			})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].CourseKey.CourseCode != pairs[j].CourseKey.CourseCode {
			return pairs[i].CourseKey.CourseCode < pairs[j].CourseKey.CourseCode
		}
		if pairs[i].CourseKey.CourseType != pairs[j].CourseKey.CourseType {
			return pairs[i].CourseKey.CourseType < pairs[j].CourseKey.CourseType
		}
		return domain.GroupBundleKey(pairs[i].Bundle.GroupIDs) < domain.GroupBundleKey(pairs[j].Bundle.GroupIDs)
	})

	return pairs, nil
}

// FindSuitableRooms returns rooms admitting the course's type, sorted by
// match tier (exact > flexible > capacity-only) then by id for determinism.
// A room is only returned if it has enough capacity for the bundle's total
// enrolled size.
func (c *Context) FindSuitableRooms(course domain.Course, bundle GroupBundle) []domain.Room {
	exact, flexible, capOnly := c.FindSuitableRoomsByTier(course, bundle)
	out := make([]domain.Room, 0, len(exact)+len(flexible)+len(capOnly))
	out = append(out, exact...)
	out = append(out, flexible...)
	out = append(out, capOnly...)
	return out
}

// FindSuitableRoomsByTier is FindSuitableRooms split by match tier, so
// callers (the seeder, mutation, repair) can prefer an exact match and only
// fall back to flexible/capacity-only tiers when the preferred tier is
// empty.
func (c *Context) FindSuitableRoomsByTier(course domain.Course, bundle GroupBundle) (exact, flexible, capOnly []domain.Room) {
	total := 0
	for _, gid := range bundle.GroupIDs {
		total += c.Groups[gid].Size
	}

	for _, r := range c.Rooms {
		if !r.IsSuitableForCourseType(course.CourseType) {
			continue
		}
		if r.Capacity < total {
			continue
		}
		switch r.FeatureMatchTier(course.RequiredRoomFeatures) {
		case domain.Exact:
			exact = append(exact, r)
		case domain.Flexible:
			flexible = append(flexible, r)
		default:
			capOnly = append(capOnly, r)
		}
	}
	byID := func(rs []domain.Room) {
		sort.Slice(rs, func(i, j int) bool { return rs[i].RoomID < rs[j].RoomID })
	}
	byID(exact)
	byID(flexible)
	byID(capOnly)
	return exact, flexible, capOnly
}

// AvailabilityIntersection returns the set of quanta where the instructor,
// room, and every group in groupIDs are simultaneously available.
func (c *Context) AvailabilityIntersection(instructorID, roomID string, groupIDs []string) []int {
	ins := c.Instructors[instructorID]
	room := c.Rooms[roomID]
	total := c.QTS.TotalQuanta()

	var out []int
	for q := 0; q < total; q++ {
		if _, bad := ins.UnavailableQuanta[q]; bad {
			continue
		}
		if _, bad := room.UnavailableQuanta[q]; bad {
			continue
		}
		blocked := false
		for _, gid := range groupIDs {
			if _, bad := c.Groups[gid].UnavailableQuanta[q]; bad {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		out = append(out, q)
	}
	return out
}
