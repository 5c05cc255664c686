package seed

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

func buildCtx(t *testing.T) *schedctx.Context {
	t.Helper()
	qts, err := quantum.New([]quantum.OperatingDay{
		{Day: "Sun", OpenMin: 8 * 60, CloseMin: 18 * 60},
		{Day: "Mon", OpenMin: 8 * 60, CloseMin: 18 * 60},
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
		MaxSessionCoalescence: 2,
	})
	require.NoError(t, err)
	return ctx
}

func TestNewIndividualSatisfiesCompletenessInvariant(t *testing.T) {
	ctx := buildCtx(t)
	rng := rand.New(rand.NewSource(1))
	ind := NewIndividual(ctx, rng)

	require.Len(t, ind.Genes, len(ctx.CourseGroupPairs))
	for i, g := range ind.Genes {
		require.Equal(t, ctx.CourseGroupPairs[i].RequiredQuanta, len(g.Quanta),
			"seeded gene must carry exactly the required quantum count")
		require.NotEmpty(t, g.InstructorID)
		require.NotEmpty(t, g.RoomID)
	}
}

func TestNewPopulationProducesIndependentIndividuals(t *testing.T) {
	ctx := buildCtx(t)
	rng := rand.New(rand.NewSource(42))
	pop := NewPopulation(ctx, 5, rng)
	require.Len(t, pop, 5)
	for _, ind := range pop {
		require.False(t, ind.Fitness.Valid, "a freshly seeded individual has no fitness yet")
	}
}

func TestContiguousBlocksGroupsRuns(t *testing.T) {
	blocks := contiguousBlocks([]int{5, 1, 2, 9, 3})
	require.Equal(t, [][]int{{1, 2, 3}, {5}, {9}}, blocks)
}

// TestChooseQuantaPrefersLeastLoadedDay splits the two operating days into
// two distinct contiguous blocks (by making the room unavailable at the
// Sun/Mon boundary, since the dense index is otherwise one uninterrupted
// run across both days) and checks a dayLoad already biased toward Sunday
// pushes the gene onto Monday instead — the day-balancing behavior the
// package header claims.
func TestChooseQuantaPrefersLeastLoadedDay(t *testing.T) {
	qts, err := quantum.New([]quantum.OperatingDay{
		{Day: "Sun", OpenMin: 8 * 60, CloseMin: 18 * 60},
		{Day: "Mon", OpenMin: 8 * 60, CloseMin: 18 * 60},
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
	lastSunQuantum, err := qts.TimeToQuanta("Sun", 18*60-15)
	require.NoError(t, err)
	rooms := []domain.Room{
		{RoomID: "R1", Capacity: 40, Category: domain.RoomLecture, UnavailableQuanta: map[int]struct{}{lastSunQuantum: {}}},
	}

	ctx, err := schedctx.Assemble(courses, groups, instructors, rooms, qts, nil, schedctx.Preferences{MaxSessionCoalescence: 2})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	pair := ctx.CourseGroupPairs[0]

	dayLoad := map[quantum.Day]int{"Sun": 1000}
	chosen := chooseQuanta(ctx, "I1", "R1", pair, rng, dayLoad)
	require.NotEmpty(t, chosen)

	day, _, err := ctx.QTS.QuantaToTime(chosen[0])
	require.NoError(t, err)
	require.Equal(t, quantum.Day("Mon"), day, "Sunday was pre-loaded, so the gene should seed onto Monday")
}
