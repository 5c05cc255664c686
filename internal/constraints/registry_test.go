package constraints

import (
	"testing"

	"github.com/stretchr/testify/require"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

// buildCtx assembles a one-course, one-group, one-instructor, one-room
// context spanning a single Sunday, mirroring spec.md §8 scenario S1.
func buildCtx(t *testing.T) *schedctx.Context {
	t.Helper()
	qts, err := quantum.New([]quantum.OperatingDay{
		{Day: "Sun", OpenMin: 8 * 60, CloseMin: 18 * 60},
	}, 15)
	require.NoError(t, err)

	courses := []domain.Course{
		{CourseCode: "ENME 103", CourseType: domain.Theory, LectureHours: 2},
	}
	groups := []domain.Group{
		{GroupID: "G1", Size: 30, EnrolledCourseCodes: map[string]struct{}{"ENME 103": {}}},
	}
	instructors := []domain.Instructor{
		{InstructorID: "I1", QualifiedCourses: []domain.CourseKey{{CourseCode: "ENME 103", CourseType: domain.Theory}}},
	}
	rooms := []domain.Room{
		{RoomID: "R1", Capacity: 40, Category: domain.RoomLecture},
	}

	ctx, err := schedctx.Assemble(courses, groups, instructors, rooms, qts, nil, schedctx.Preferences{
		EarliestPreferredMin: 8 * 60,
		LatestPreferredMin:   18 * 60,
	})
	require.NoError(t, err)
	return ctx
}

func TestRegistryEvaluateCleanScheduleHasZeroHard(t *testing.T) {
	ctx := buildCtx(t)
	required := ctx.CourseGroupPairs[0].RequiredQuanta

	quanta := make([]int, required)
	for i := range quanta {
		quanta[i] = i
	}
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: quanta},
	}

	reg := NewRegistry(nil, nil)
	fitness, violations, err := reg.Evaluate(genes, ctx)
	require.NoError(t, err)
	require.Equal(t, 0, fitness.HardCount, "violations: %+v", violations)
	require.True(t, fitness.Valid)
}

func TestRegistryDetectsGroupOverlap(t *testing.T) {
	ctx := buildCtx(t)
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1, 2, 3}},
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{3, 4, 5, 6}},
	}
	reg := NewRegistry(nil, nil)
	fitness, _, err := reg.Evaluate(genes, ctx)
	require.NoError(t, err)
	require.Greater(t, fitness.HardCount, 0, "overlapping quantum 3 must register as a group/instructor/room conflict")
}

func TestRegistryDetectsUnqualifiedInstructor(t *testing.T) {
	ctx := buildCtx(t)
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "NOBODY", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1, 2, 3}},
	}
	reg := NewRegistry(nil, nil)
	count, err := reg.CountHard("instructor_not_qualified", genes, ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRegistryUnknownConstraintKeyIsReported(t *testing.T) {
	reg := NewRegistry(map[string]Toggle{"not_a_real_constraint": {Enabled: true, Weight: 1}}, nil)
	unknown := reg.UnknownKeys()
	require.Contains(t, unknown, "not_a_real_constraint")
}

func TestScheduleCompletenessPenalizesShortfall(t *testing.T) {
	ctx := buildCtx(t)
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1}},
	}
	reg := NewRegistry(nil, nil)
	count, err := reg.CountHard("schedule_completeness", genes, ctx)
	require.NoError(t, err)
	require.Equal(t, ctx.CourseGroupPairs[0].RequiredQuanta-2, count)
}
