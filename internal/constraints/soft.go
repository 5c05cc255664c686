package constraints

import (
	"sort"

	schedctx "github.com/whoisdinanath/schedule-engine-sub001/internal/context"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/domain"
	"github.com/whoisdinanath/schedule-engine-sub001/internal/quantum"
)

func standardSoftConstraints() map[string]SoftConstraint {
	return map[string]SoftConstraint{
		"group_gaps_penalty":             groupGapsPenalty{},
		"instructor_gaps_penalty":        instructorGapsPenalty{},
		"group_midday_break_violation":   groupMiddayBreakViolation{},
		"course_split_penalty":           courseSplitPenalty{},
		"early_or_late_session_penalty":  earlyOrLateSessionPenalty{},
	}
}

// quantaByOwnerDay groups every quantum assigned to `owner` by operating day.
func quantaByOwnerDay(sessions []domain.DecodedSession, ctx *schedctx.Context, owners func(domain.DecodedSession) []string) map[string]map[quantum.Day][]int {
	out := make(map[string]map[quantum.Day][]int)
	for _, s := range sessions {
		for _, o := range owners(s) {
			if out[o] == nil {
				out[o] = make(map[quantum.Day][]int)
			}
			for _, q := range s.Quanta {
				day, _, err := ctx.QTS.QuantaToTime(q)
				if err != nil {
					continue
				}
				out[o][day] = append(out[o][day], q)
			}
		}
	}
	for _, days := range out {
		for d := range days {
			sort.Ints(days[d])
		}
	}
	return out
}

// gapPenalty sums, per owner per day, the total length of gaps between the
// first and last occupied quantum of that day.
func gapPenalty(sessions []domain.DecodedSession, ctx *schedctx.Context, owners func(domain.DecodedSession) []string) float64 {
	byOwnerDay := quantaByOwnerDay(sessions, ctx, owners)
	total := 0
	for _, days := range byOwnerDay {
		for _, qs := range days {
			dedup := dedupSorted(qs)
			for i := 1; i < len(dedup); i++ {
				gap := dedup[i] - dedup[i-1] - 1
				if gap > 0 {
					total += gap
				}
			}
		}
	}
	return float64(total)
}

func dedupSorted(qs []int) []int {
	if len(qs) == 0 {
		return nil
	}
	out := []int{qs[0]}
	for _, q := range qs[1:] {
		if q != out[len(out)-1] {
			out = append(out, q)
		}
	}
	return out
}

type groupGapsPenalty struct{}

func (groupGapsPenalty) Name() string { return "group_gaps_penalty" }
func (groupGapsPenalty) Evaluate(sessions []domain.DecodedSession, ctx *schedctx.Context) float64 {
	return gapPenalty(sessions, ctx, func(s domain.DecodedSession) []string { return s.GroupIDs })
}

type instructorGapsPenalty struct{}

func (instructorGapsPenalty) Name() string { return "instructor_gaps_penalty" }
func (instructorGapsPenalty) Evaluate(sessions []domain.DecodedSession, ctx *schedctx.Context) float64 {
	return gapPenalty(sessions, ctx, func(s domain.DecodedSession) []string { return []string{s.InstructorID} })
}

type groupMiddayBreakViolation struct{}

func (groupMiddayBreakViolation) Name() string { return "group_midday_break_violation" }
func (groupMiddayBreakViolation) Evaluate(sessions []domain.DecodedSession, ctx *schedctx.Context) float64 {
	breakSets := ctx.QTS.GetMiddayBreakQuanta(ctx.MiddayBreakStartMin, ctx.MiddayBreakEndMin)
	breakQuanta := make(map[int]struct{})
	for _, qs := range breakSets {
		for _, q := range qs {
			breakQuanta[q] = struct{}{}
		}
	}
	count := 0
	for _, s := range sessions {
		if len(s.GroupIDs) == 0 {
			continue
		}
		for _, q := range s.Quanta {
			if _, hit := breakQuanta[q]; hit {
				count += len(s.GroupIDs)
			}
		}
	}
	return float64(count)
}

type courseSplitPenalty struct{}

func (courseSplitPenalty) Name() string { return "course_split_penalty" }
func (courseSplitPenalty) Evaluate(sessions []domain.DecodedSession, ctx *schedctx.Context) float64 {
	daysUsed := make(map[string]map[quantum.Day]struct{})
	for _, s := range sessions {
		id := s.CourseID + "|" + string(s.CourseType) + "|" + domain.GroupBundleKey(s.GroupIDs)
		if daysUsed[id] == nil {
			daysUsed[id] = make(map[quantum.Day]struct{})
		}
		for _, q := range s.Quanta {
			day, _, err := ctx.QTS.QuantaToTime(q)
			if err != nil {
				continue
			}
			daysUsed[id][day] = struct{}{}
		}
	}
	total := 0
	for _, days := range daysUsed {
		if len(days) > 1 {
			total += len(days) - 1
		}
	}
	return float64(total)
}

type earlyOrLateSessionPenalty struct{}

func (earlyOrLateSessionPenalty) Name() string { return "early_or_late_session_penalty" }

// Evaluate counts quanta, not spans: a span straddling the preferred window
// contributes once per out-of-range quantum it contains, not once per span
// (spec.md §4.4's early_or_late_session_penalty is a per-quantum count).
func (earlyOrLateSessionPenalty) Evaluate(sessions []domain.DecodedSession, ctx *schedctx.Context) float64 {
	quantumMin := ctx.QTS.QuantumMinutes()
	count := 0
	for _, s := range sessions {
		for _, q := range s.Quanta {
			_, minute, err := ctx.QTS.QuantaToTime(q)
			if err != nil {
				continue
			}
			if minute < ctx.EarliestPreferredMin || minute+quantumMin > ctx.LatestPreferredMin {
				count++
			}
		}
	}
	return float64(count)
}
