// Package decode projects SessionGene lists into DecodedSession lists: a
// pure, side-effect free, deterministic denormalization used by the
// evaluator. It performs no mutation of its inputs.
package decode

import (
	"sort"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
)

// Decode converts every gene in genes into a DecodedSession, resolving each
// gene's quanta into contiguous wall-clock spans via the context's QTS.
func Decode(genes []domain.SessionGene, ctx *schedctx.Context) ([]domain.DecodedSession, error) {
	out := make([]domain.DecodedSession, 0, len(genes))
	for _, g := range genes {
		spans, err := spansFor(g.Quanta, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.DecodedSession{
			CourseID:     g.CourseID,
			CourseType:   g.CourseType,
			InstructorID: g.InstructorID,
			RoomID:       g.RoomID,
			GroupIDs:     append([]string(nil), g.GroupIDs...),
			Spans:        spans,
			Quanta:       append([]int(nil), g.Quanta...),
		})
	}
	return out, nil
}

// spansFor groups an ordered quantum list into contiguous per-day runs.
func spansFor(quanta []int, ctx *schedctx.Context) ([]domain.Span, error) {
	if len(quanta) == 0 {
		return nil, nil
	}

	sorted := append([]int(nil), quanta...)
	sort.Ints(sorted)

	type resolved struct {
		q        int
		day      quantumDay
		startMin int
	}
	var resolvedAll []resolved
	for _, q := range sorted {
		day, minute, err := ctx.QTS.QuantaToTime(q)
		if err != nil {
			return nil, err
		}
		resolvedAll = append(resolvedAll, resolved{q: q, day: quantumDay(day), startMin: minute})
	}

	quantumMin := ctx.QTS.QuantumMinutes()

	var spans []domain.Span
	i := 0
	for i < len(resolvedAll) {
		j := i
		for j+1 < len(resolvedAll) &&
			resolvedAll[j+1].q == resolvedAll[j].q+1 &&
			resolvedAll[j+1].day == resolvedAll[i].day {
			j++
		}
		spans = append(spans, domain.Span{
			Day:      string(resolvedAll[i].day),
			StartMin: resolvedAll[i].startMin,
			EndMin:   resolvedAll[j].startMin + quantumMin,
		})
		i = j + 1
	}
	return spans, nil
}

type quantumDay string
