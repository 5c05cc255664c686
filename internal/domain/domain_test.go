package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitnessDominates(t *testing.T) {
	better := Fitness{HardCount: 0, SoftPenalty: 5}
	worse := Fitness{HardCount: 1, SoftPenalty: 5}
	require.True(t, better.Dominates(worse))
	require.False(t, worse.Dominates(better))

	tie := Fitness{HardCount: 0, SoftPenalty: 5}
	require.False(t, better.Dominates(tie))
}

func TestIndividualCloneIsDeep(t *testing.T) {
	ind := NewIndividual([]SessionGene{
		{CourseID: "C1", CourseType: Theory, GroupIDs: []string{"G1"}, Quanta: []int{1, 2}},
	})
	ind.Fitness = Fitness{HardCount: 0, SoftPenalty: 1, Valid: true}

	clone := ind.Clone()
	clone.Genes[0].Quanta[0] = 99
	require.Equal(t, 1, ind.Genes[0].Quanta[0], "mutating the clone must not affect the original")
	require.False(t, clone.Fitness.Valid, "a clone's fitness starts invalid")
	require.NotEqual(t, ind.TraceID, clone.TraceID)
}

func TestRoomFeatureMatchTiers(t *testing.T) {
	r := Room{RoomFeatures: map[string]struct{}{"projector": {}, "whiteboard": {}}}
	require.Equal(t, Exact, r.FeatureMatchTier(map[string]struct{}{"projector": {}}))
	require.Equal(t, CapacityOnly, r.FeatureMatchTier(map[string]struct{}{}))
	require.Equal(t, Flexible, r.FeatureMatchTier(map[string]struct{}{"projector": {}, "lab_bench": {}}))
	require.Equal(t, CapacityOnly, Room{}.FeatureMatchTier(map[string]struct{}{}))
}

func TestCourseRequiredQuanta(t *testing.T) {
	c := Course{CourseType: Theory, LectureHours: 2}
	require.Equal(t, 8, c.RequiredQuanta(15))
}
