package schedctx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

func sampleQTS(t *testing.T) *quantum.System {
	t.Helper()
	qts, err := quantum.New([]quantum.OperatingDay{
		{Day: "Sun", OpenMin: 8 * 60, CloseMin: 18 * 60},
	}, 15)
	require.NoError(t, err)
	return qts
}

func TestAssembleFiltersUnenrolledCourses(t *testing.T) {
	qts := sampleQTS(t)
	courses := []domain.Course{
		{CourseCode: "ENME 103", CourseType: domain.Theory, LectureHours: 2},
		{CourseCode: "UNUSED 1", CourseType: domain.Theory, LectureHours: 2},
	}
	groups := []domain.Group{
		{GroupID: "G1", Size: 30, EnrolledCourseCodes: map[string]struct{}{"ENME 103": {}}},
	}
	instructors := []domain.Instructor{
		{InstructorID: "I1", QualifiedCourses: []domain.CourseKey{
			{CourseCode: "ENME 103", CourseType: domain.Theory},
			{CourseCode: "UNUSED 1", CourseType: domain.Theory},
		}},
	}
	rooms := []domain.Room{
		{RoomID: "R1", Capacity: 40, Category: domain.RoomLecture},
	}

	ctx, err := Assemble(courses, groups, instructors, rooms, qts, nil, Preferences{LatestPreferredMin: 18 * 60})
	require.NoError(t, err)

	require.Len(t, ctx.Courses, 1)
	ins := ctx.Instructors["I1"]
	require.Len(t, ins.QualifiedCourses, 1, "instructor qualifications must be intersected with retained courses")
	require.Len(t, ins.OriginalQualifiedCourses, 2, "original qualifications must be preserved")

	require.Len(t, ctx.CourseGroupPairs, 1)
	require.Equal(t, []string{"I1"}, ctx.Courses[domain.CourseKey{CourseCode: "ENME 103", CourseType: domain.Theory}].QualifiedInstructorIDs)
}

func TestAssembleFailsWithNoEnrolledCourse(t *testing.T) {
	qts := sampleQTS(t)
	_, err := Assemble(nil, nil, nil, nil, qts, nil, Preferences{})
	require.Error(t, err)
}

func TestFindSuitableRoomsByTierPrefersExact(t *testing.T) {
	qts := sampleQTS(t)
	courses := []domain.Course{
		{CourseCode: "C1", CourseType: domain.Theory, LectureHours: 2, RequiredRoomFeatures: map[string]struct{}{"projector": {}}},
	}
	groups := []domain.Group{
		{GroupID: "G1", Size: 10, EnrolledCourseCodes: map[string]struct{}{"C1": {}}},
	}
	instructors := []domain.Instructor{
		{InstructorID: "I1", QualifiedCourses: []domain.CourseKey{{CourseCode: "C1", CourseType: domain.Theory}}},
	}
	rooms := []domain.Room{
		{RoomID: "Exact", Capacity: 40, Category: domain.RoomLecture, RoomFeatures: map[string]struct{}{"projector": {}}},
		{RoomID: "CapOnly", Capacity: 40, Category: domain.RoomLecture},
	}
	ctx, err := Assemble(courses, groups, instructors, rooms, qts, nil, Preferences{LatestPreferredMin: 18 * 60})
	require.NoError(t, err)

	exact, _, capOnly := ctx.FindSuitableRoomsByTier(ctx.Courses[domain.CourseKey{CourseCode: "C1", CourseType: domain.Theory}], GroupBundle{GroupIDs: []string{"G1"}})
	require.Len(t, exact, 1)
	require.Equal(t, "Exact", exact[0].RoomID)
	require.Len(t, capOnly, 1)
}
