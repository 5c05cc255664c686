package variation

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
	}, 15)
	require.NoError(t, err)

	courses := []domain.Course{
		{CourseCode: "C1", CourseType: domain.Theory, LectureHours: 2},
	}
	groups := []domain.Group{
		{GroupID: "G1", Size: 10, EnrolledCourseCodes: map[string]struct{}{"C1": {}}},
	}
	instructors := []domain.Instructor{
		{InstructorID: "I1", QualifiedCourses: []domain.CourseKey{{CourseCode: "C1", CourseType: domain.Theory}}},
		{InstructorID: "I2", QualifiedCourses: []domain.CourseKey{{CourseCode: "C1", CourseType: domain.Theory}}},
	}
	rooms := []domain.Room{
		{RoomID: "R1", Capacity: 40, Category: domain.RoomLecture},
		{RoomID: "R2", Capacity: 40, Category: domain.RoomLecture},
	}
	ctx, err := schedctx.Assemble(courses, groups, instructors, rooms, qts, nil, schedctx.Preferences{MaxSessionCoalescence: 2})
	require.NoError(t, err)
	return ctx
}

func twoGeneIndividual(required int) *domain.Individual {
	quanta := make([]int, required)
	for i := range quanta {
		quanta[i] = i
	}
	return domain.NewIndividual([]domain.SessionGene{
		{CourseID: "C1", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: append([]int(nil), quanta...)},
	})
}

func TestCrossoverPreservesGeneCountAndLength(t *testing.T) {
	a := twoGeneIndividual(8)
	b := twoGeneIndividual(8)
	rng := rand.New(rand.NewSource(7))

	childA, childB := Crossover(a, b, rng)
	require.Len(t, childA.Genes, len(a.Genes))
	require.Len(t, childB.Genes, len(b.Genes))
	for i := range childA.Genes {
		require.Len(t, childA.Genes[i].Quanta, len(a.Genes[i].Quanta))
	}
	require.False(t, childA.Fitness.Valid)
	require.False(t, childB.Fitness.Valid)
}

func TestCrossoverDoesNotMutateParents(t *testing.T) {
	a := twoGeneIndividual(4)
	b := twoGeneIndividual(4)
	b.Genes[0].RoomID = "R2"
	rng := rand.New(rand.NewSource(1))

	Crossover(a, b, rng)
	require.Equal(t, "R1", a.Genes[0].RoomID, "crossover must clone before swapping")
	require.Equal(t, "R2", b.Genes[0].RoomID)
}

func TestMutatePreservesQuantumCount(t *testing.T) {
	ctx := buildCtx(t)
	required := ctx.CourseGroupPairs[0].RequiredQuanta
	ind := twoGeneIndividual(required)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 20; i++ {
		Mutate(ind, ctx, 2, rng)
		require.Len(t, ind.Genes[0].Quanta, required, "mutation must never change the gene's quantum count")
	}
}

func TestMutateInstructorLeavesUnknownCourseUntouched(t *testing.T) {
	ctx := buildCtx(t)
	gene := domain.SessionGene{CourseID: "MISSING", CourseType: domain.Theory, InstructorID: "", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1}}
	rng := rand.New(rand.NewSource(9))
	mutateGeneInstructor(&gene, ctx, rng)
	require.Empty(t, gene.InstructorID, "unknown course key leaves the gene untouched")
}
