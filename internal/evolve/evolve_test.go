package evolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/constraints"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/repair"
)

// scenarioS1Context builds spec.md's smallest feasible scenario: one theory
// course, one group, one unconstrained qualified instructor, one classroom.
func scenarioS1Context(t *testing.T) *schedctx.Context {
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
		EarliestPreferredMin:  8 * 60,
		LatestPreferredMin:    18 * 60,
		MaxSessionCoalescence: 2,
	})
	require.NoError(t, err)
	return ctx
}

func TestEngineRunConvergesToZeroHardOnS1(t *testing.T) {
	ctx := scenarioS1Context(t)
	engine := &Engine{
		Context:     ctx,
		Constraints: constraints.NewRegistry(nil, nil),
		Repair:      repair.NewRegistry(repair.Config{MaxIterations: 3}),
		Config: Config{
			PopSize: 12,
			NGen:    15,
			CXPB:    0.7,
			MUTPB:   0.3,
			MaxSessionCoalescence: 2,
			Seed:                  1,
		},
	}

	result, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	require.False(t, result.UnresolvedViolation, "a single-course, single-instructor scenario with no unavailability must resolve fully: %+v", result.Violations)
	require.Equal(t, 0, result.Best.Fitness.HardCount)
	require.NotEmpty(t, result.History)
}

func TestEngineRunRespectsContextCancellation(t *testing.T) {
	ctx := scenarioS1Context(t)
	engine := &Engine{
		Context:     ctx,
		Constraints: constraints.NewRegistry(nil, nil),
		Repair:      repair.NewRegistry(repair.Config{MaxIterations: 1}),
		Config: Config{
			PopSize: 8,
			NGen:    1000,
			CXPB:    0.7,
			MUTPB:   0.3,
			Seed:    2,
		},
	}

	runCtx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := engine.Run(runCtx)
	require.Error(t, err)
	require.NotNil(t, result, "a cancelled run still returns the best individual found so far")
}
