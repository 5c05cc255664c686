package repair

import (
	"testing"

	"github.com/stretchr/testify/require"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

func buildCtx(t *testing.T, instructorUnavail, roomUnavail map[int]struct{}) *schedctx.Context {
	t.Helper()
	qts, err := quantum.New([]quantum.OperatingDay{
		{Day: "Sun", OpenMin: 8 * 60, CloseMin: 18 * 60},
	}, 15)
	require.NoError(t, err)

	courses := []domain.Course{
		{CourseCode: "C1", CourseType: domain.Theory, LectureHours: 2},
	}
	groups := []domain.Group{
		{GroupID: "G1", Size: 10, EnrolledCourseCodes: map[string]struct{}{"C1": {}}},
	}
	instructors := []domain.Instructor{
		{InstructorID: "I1", QualifiedCourses: []domain.CourseKey{{CourseCode: "C1", CourseType: domain.Theory}}, UnavailableQuanta: instructorUnavail},
	}
	rooms := []domain.Room{
		{RoomID: "R1", Capacity: 40, Category: domain.RoomLecture, UnavailableQuanta: roomUnavail},
	}
	ctx, err := schedctx.Assemble(courses, groups, instructors, rooms, qts, nil, schedctx.Preferences{})
	require.NoError(t, err)
	return ctx
}

func TestAvailabilityRepairClearsUnavailableQuantum(t *testing.T) {
	ctx := buildCtx(t, map[int]struct{}{0: {}}, nil)
	ind := domain.NewIndividual([]domain.SessionGene{
		{CourseID: "C1", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1, 2, 3}},
	})

	r := availabilityRepair{}
	fixed := r.Apply(ind, ctx)
	require.Greater(t, fixed, 0)
	for _, q := range ind.Genes[0].Quanta {
		require.NotEqual(t, 0, q, "the repaired gene must no longer occupy the unavailable quantum")
	}
	require.Len(t, ind.Genes[0].Quanta, 4, "repair must preserve the gene's quantum count")
}

func TestAvailabilityRepairIsIdempotent(t *testing.T) {
	ctx := buildCtx(t, map[int]struct{}{0: {}}, nil)
	ind := domain.NewIndividual([]domain.SessionGene{
		{CourseID: "C1", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1, 2, 3}},
	})

	r := availabilityRepair{}
	r.Apply(ind, ctx)
	secondPassFixes := r.Apply(ind, ctx)
	require.Equal(t, 0, secondPassFixes, "a second repair pass over an already-clean gene must fix nothing")
}

func TestOccupancyRepairResolvesRoomConflict(t *testing.T) {
	ctx := buildCtx(t, nil, nil)
	ind := domain.NewIndividual([]domain.SessionGene{
		{CourseID: "C1", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1}},
		{CourseID: "C1", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{1, 2}},
	})

	reg := NewRegistry(Config{MaxIterations: 3})
	reg.Run(ind, ctx)

	claims := make(map[int]int)
	for _, g := range ind.Genes {
		for _, q := range g.Quanta {
			claims[q]++
		}
	}
	for q, n := range claims {
		require.LessOrEqual(t, n, 1, "quantum %d still claimed more than once after repair", q)
	}
}

func TestClusteringRepairPreservesQuantumCount(t *testing.T) {
	ctx := buildCtx(t, nil, nil)
	ind := domain.NewIndividual([]domain.SessionGene{
		{CourseID: "C1", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1, 5}},
	})
	before := len(ind.Genes[0].Quanta)

	r := clusteringRepair{}
	r.Apply(ind, ctx)
	require.Len(t, ind.Genes[0].Quanta, before, "clustering repair never changes total quanta")
}
