package constraints

import (
	"fmt"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

func standardHardConstraints() map[string]HardConstraint {
	return map[string]HardConstraint{
		"no_group_overlap":        noGroupOverlap{},
		"no_instructor_conflict":  noInstructorConflict{},
		"no_room_conflict":        noRoomConflict{},
		"availability_violations": availabilityViolations{},
		"instructor_not_qualified": instructorNotQualified{},
		"room_type_mismatch":      roomTypeMismatch{},
		"schedule_completeness":   scheduleCompleteness{},
	}
}

// occupancyConflicts counts, for every key in `owner(quantum)`, the number
// of (owner,quantum) pairs claimed by more than one session — each excess
// claim counts once as a violating witness.
func occupancyConflicts(sessions []domain.DecodedSession, owners func(domain.DecodedSession) []string, label string) (int, []Violation) {
	type slot struct {
		owner string
		q     int
	}
	claims := make(map[slot]int)
	for _, s := range sessions {
		for _, o := range owners(s) {
			for _, q := range s.Quanta {
				claims[slot{o, q}]++
			}
		}
	}
	count := 0
	var violations []Violation
	for k, n := range claims {
		if n > 1 {
			count += n - 1
			violations = append(violations, Violation{
				Constraint: label,
				Detail:     fmt.Sprintf("%s at quantum %d claimed %d times", k.owner, k.q, n),
			})
		}
	}
	return count, violations
}

type noGroupOverlap struct{}

func (noGroupOverlap) Name() string { return "no_group_overlap" }
func (noGroupOverlap) Evaluate(sessions []domain.DecodedSession, _ []domain.SessionGene, _ *schedctx.Context) (int, []Violation) {
	return occupancyConflicts(sessions, func(s domain.DecodedSession) []string { return s.GroupIDs }, "no_group_overlap")
}

type noInstructorConflict struct{}

func (noInstructorConflict) Name() string { return "no_instructor_conflict" }
func (noInstructorConflict) Evaluate(sessions []domain.DecodedSession, _ []domain.SessionGene, _ *schedctx.Context) (int, []Violation) {
	return occupancyConflicts(sessions, func(s domain.DecodedSession) []string { return []string{s.InstructorID} }, "no_instructor_conflict")
}

type noRoomConflict struct{}

func (noRoomConflict) Name() string { return "no_room_conflict" }
func (noRoomConflict) Evaluate(sessions []domain.DecodedSession, _ []domain.SessionGene, _ *schedctx.Context) (int, []Violation) {
	return occupancyConflicts(sessions, func(s domain.DecodedSession) []string { return []string{s.RoomID} }, "no_room_conflict")
}

type availabilityViolations struct{}

func (availabilityViolations) Name() string { return "availability_violations" }
func (availabilityViolations) Evaluate(sessions []domain.DecodedSession, _ []domain.SessionGene, ctx *schedctx.Context) (int, []Violation) {
	count := 0
	var violations []Violation
	for _, s := range sessions {
		ins := ctx.Instructors[s.InstructorID]
		room := ctx.Rooms[s.RoomID]
		for _, q := range s.Quanta {
			if _, bad := ins.UnavailableQuanta[q]; bad {
				count++
				violations = append(violations, Violation{Constraint: "availability_violations", Detail: fmt.Sprintf("instructor %s unavailable at %d", s.InstructorID, q)})
			}
			if _, bad := room.UnavailableQuanta[q]; bad {
				count++
				violations = append(violations, Violation{Constraint: "availability_violations", Detail: fmt.Sprintf("room %s unavailable at %d", s.RoomID, q)})
			}
			for _, gid := range s.GroupIDs {
				if _, bad := ctx.Groups[gid].UnavailableQuanta[q]; bad {
					count++
					violations = append(violations, Violation{Constraint: "availability_violations", Detail: fmt.Sprintf("group %s unavailable at %d", gid, q)})
				}
			}
		}
	}
	return count, violations
}

type instructorNotQualified struct{}

func (instructorNotQualified) Name() string { return "instructor_not_qualified" }
func (instructorNotQualified) Evaluate(sessions []domain.DecodedSession, _ []domain.SessionGene, ctx *schedctx.Context) (int, []Violation) {
	count := 0
	var violations []Violation
	for _, s := range sessions {
		ins, ok := ctx.Instructors[s.InstructorID]
		key := domain.CourseKey{CourseCode: s.CourseID, CourseType: s.CourseType}
		if !ok || !ins.IsQualifiedFor(key) {
			count++
			violations = append(violations, Violation{Constraint: "instructor_not_qualified", Detail: fmt.Sprintf("%s not qualified for %s/%s", s.InstructorID, s.CourseID, s.CourseType)})
		}
	}
	return count, violations
}

type roomTypeMismatch struct{}

func (roomTypeMismatch) Name() string { return "room_type_mismatch" }
func (roomTypeMismatch) Evaluate(sessions []domain.DecodedSession, _ []domain.SessionGene, ctx *schedctx.Context) (int, []Violation) {
	count := 0
	var violations []Violation
	for _, s := range sessions {
		room, ok := ctx.Rooms[s.RoomID]
		course, courseOK := ctx.Courses[domain.CourseKey{CourseCode: s.CourseID, CourseType: s.CourseType}]
		if !ok || !courseOK {
			count++
			violations = append(violations, Violation{Constraint: "room_type_mismatch", Detail: "unknown room or course"})
			continue
		}
		size := 0
		for _, gid := range s.GroupIDs {
			size += ctx.Groups[gid].Size
		}
		if !room.IsSuitableForCourseType(s.CourseType) || room.Capacity < size || room.FeatureMatchTier(course.RequiredRoomFeatures) == domain.NoMatch {
			count++
			violations = append(violations, Violation{Constraint: "room_type_mismatch", Detail: fmt.Sprintf("room %s unsuitable for %s/%s", s.RoomID, s.CourseID, s.CourseType)})
		}
	}
	return count, violations
}

type scheduleCompleteness struct{}

func (scheduleCompleteness) Name() string { return "schedule_completeness" }
func (scheduleCompleteness) Evaluate(_ []domain.DecodedSession, genes []domain.SessionGene, ctx *schedctx.Context) (int, []Violation) {
	totals := make(map[string]int)
	for _, g := range genes {
		key, bundle := g.Key()
		totals[key.CourseCode+"|"+string(key.CourseType)+"|"+bundle] += len(g.Quanta)
	}

	count := 0
	var violations []Violation
	for _, pair := range ctx.CourseGroupPairs {
		bundle := domain.GroupBundleKey(pair.Bundle.GroupIDs)
		id := pair.CourseKey.CourseCode + "|" + string(pair.CourseKey.CourseType) + "|" + bundle
		got := totals[id]
		if got != pair.RequiredQuanta {
			diff := pair.RequiredQuanta - got
			if diff < 0 {
				diff = -diff
			}
			count += diff
			violations = append(violations, Violation{Constraint: "schedule_completeness", Detail: fmt.Sprintf("%s wanted %d quanta, got %d", id, pair.RequiredQuanta, got)})
		}
	}
	return count, violations
}
