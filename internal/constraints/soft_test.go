package constraints

import (
	"testing"

	"github.com/stretchr/testify/require"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/decode"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// softCtx mirrors buildCtx but narrows the preferred window so a quantum
// near the open of the operating day can be pushed outside it.
func softCtx(t *testing.T, earliest, latest int) *schedctx.Context {
	t.Helper()
	ctx := buildCtx(t)
	ctx.EarliestPreferredMin = earliest
	ctx.LatestPreferredMin = latest
	return ctx
}

func TestEarlyOrLateSessionPenaltyCountsQuantaNotSpans(t *testing.T) {
	// Preferred window opens at 08:30; the operating day (and the gene)
	// starts at 08:00, so the first two 15-minute quanta (08:00-08:30) are
	// out of range and the rest of the 2-hour block is not.
	ctx := softCtx(t, 8*60+30, 18*60)
	required := ctx.CourseGroupPairs[0].RequiredQuanta
	quanta := make([]int, required)
	for i := range quanta {
		quanta[i] = i
	}
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: quanta},
	}
	sessions, err := decode.Decode(genes, ctx)
	require.NoError(t, err)

	penalty := earlyOrLateSessionPenalty{}.Evaluate(sessions, ctx)
	require.Equal(t, float64(2), penalty, "exactly the two pre-08:30 quanta should count, not the whole span")
}

func TestEarlyOrLateSessionPenaltyZeroWhenFullyWithinWindow(t *testing.T) {
	ctx := buildCtx(t) // preferred window == the full operating day
	required := ctx.CourseGroupPairs[0].RequiredQuanta
	quanta := make([]int, required)
	for i := range quanta {
		quanta[i] = i
	}
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: quanta},
	}
	sessions, err := decode.Decode(genes, ctx)
	require.NoError(t, err)

	penalty := earlyOrLateSessionPenalty{}.Evaluate(sessions, ctx)
	require.Equal(t, float64(0), penalty)
}

func TestCourseSplitPenaltyCountsExtraDaysUsed(t *testing.T) {
	ctx := buildCtx(t)
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1}},
	}
	sessions, err := decode.Decode(genes, ctx)
	require.NoError(t, err)

	penalty := courseSplitPenalty{}.Evaluate(sessions, ctx)
	require.Equal(t, float64(0), penalty, "a single day's worth of quanta must not be penalized as split")
}

func TestGroupGapsPenaltySumsIdleQuantaBetweenSessions(t *testing.T) {
	ctx := buildCtx(t)
	genes := []domain.SessionGene{
		{CourseID: "ENME 103", CourseType: domain.Theory, InstructorID: "I1", RoomID: "R1", GroupIDs: []string{"G1"}, Quanta: []int{0, 1, 5, 6}},
	}
	sessions, err := decode.Decode(genes, ctx)
	require.NoError(t, err)

	penalty := groupGapsPenalty{}.Evaluate(sessions, ctx)
	require.Equal(t, float64(3), penalty, "quanta 2,3,4 sit idle between the two occupied blocks")
}
