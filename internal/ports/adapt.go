package ports

import (
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

// Adapt resolves an already-decoded InputSet's wall-clock unavailability
// tuples into quantum index sets via qts, and reshapes the wire records into
// domain entities. This is the C11 input-adapter boundary: it assumes
// upstream JSON/schema validation already happened (spec.md §7's
// InputSchemaError is raised by that out-of-scope collaborator, before the
// core ever sees an InputSet). It raises InvariantBreach for an
// unresolvable day/time tuple; a malformed HH:MM string surfaces as
// ParseHHMM's InputSchemaError.
func Adapt(qts *quantum.System, in InputSet) ([]domain.Course, []domain.Group, []domain.Instructor, []domain.Room, error) {
	courses, err := adaptCourses(in.Courses)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	groups, err := adaptGroups(qts, in.Groups)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	instructors, err := adaptInstructors(qts, in.Instructors)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rooms, err := adaptRooms(qts, in.Rooms)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return courses, groups, instructors, rooms, nil
}

func adaptCourses(in []CourseInput) ([]domain.Course, error) {
	var out []domain.Course
	for _, c := range in {
		features := make(map[string]struct{}, len(c.RequiredRoomFeatures))
		for _, f := range c.RequiredRoomFeatures {
			features[f] = struct{}{}
		}
		if c.LectureHours+c.TutorialHours > 0 {
			out = append(out, domain.Course{
				CourseCode:           c.CourseCode,
				CourseType:           domain.Theory,
				LectureHours:         c.LectureHours,
				TutorialHours:        c.TutorialHours,
				RequiredRoomFeatures: features,
			})
		}
		if c.PracticalHours > 0 {
			out = append(out, domain.Course{
				CourseCode:           c.CourseCode,
				CourseType:           domain.Practical,
				PracticalHours:       c.PracticalHours,
				RequiredRoomFeatures: features,
			})
		}
	}
	return out, nil
}

func resolveUnavailability(qts *quantum.System, entries []UnavailabilityInput) (map[int]struct{}, error) {
	out := make(map[int]struct{})
	for _, e := range entries {
		startMin, err := ParseHHMM(e.StartTime)
		if err != nil {
			return nil, err
		}
		endMin, err := ParseHHMM(e.EndTime)
		if err != nil {
			return nil, err
		}
		quantumMin := qts.QuantumMinutes()
		for m := startMin; m < endMin; m += quantumMin {
			q, err := qts.TimeToQuanta(quantum.Day(e.Day), m)
			if err != nil {
				return nil, Wrap(err, InvariantBreach, "unresolvable unavailability tuple")
			}
			out[q] = struct{}{}
		}
	}
	return out, nil
}

func adaptGroups(qts *quantum.System, in []GroupInput) ([]domain.Group, error) {
	var out []domain.Group
	for _, g := range in {
		unavail, err := resolveUnavailability(qts, g.Unavailability)
		if err != nil {
			return nil, err
		}
		codes := make(map[string]struct{}, len(g.EnrolledCourseCodes))
		for _, c := range g.EnrolledCourseCodes {
			codes[c] = struct{}{}
		}
		out = append(out, domain.Group{
			GroupID:             g.GroupID,
			Size:                g.Size,
			EnrolledCourseCodes: codes,
			UnavailableQuanta:   unavail,
		})
	}
	return out, nil
}

func adaptInstructors(qts *quantum.System, in []InstructorInput) ([]domain.Instructor, error) {
	var out []domain.Instructor
	for _, ins := range in {
		unavail, err := resolveUnavailability(qts, ins.Unavailability)
		if err != nil {
			return nil, err
		}
		var quals []domain.CourseKey
		for _, q := range ins.QualifiedCourses {
			quals = append(quals, domain.CourseKey{CourseCode: q.CourseCode, CourseType: domain.CourseType(q.CourseType)})
		}
		out = append(out, domain.Instructor{
			InstructorID:     ins.InstructorID,
			Name:             ins.Name,
			QualifiedCourses: quals,
			UnavailableQuanta: unavail,
		})
	}
	return out, nil
}

func adaptRooms(qts *quantum.System, in []RoomInput) ([]domain.Room, error) {
	var out []domain.Room
	for _, r := range in {
		unavail, err := resolveUnavailability(qts, r.Unavailability)
		if err != nil {
			return nil, err
		}
		features := make(map[string]struct{}, len(r.RoomFeatures))
		for _, f := range r.RoomFeatures {
			features[f] = struct{}{}
		}
		out = append(out, domain.Room{
			RoomID:            r.RoomID,
			Capacity:          r.Capacity,
			Category:          domain.RoomCategory(r.Category),
			RoomFeatures:      features,
			UnavailableQuanta: unavail,
		})
	}
	return out, nil
}
