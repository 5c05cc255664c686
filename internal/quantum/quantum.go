// Package quantum implements the continuous quantum time model: a dense
// integer indexing of every operating minute across a week, built by
// concatenating only the in-operation windows of each operating day.
//
// Day groupings must never use q % quantaPerDay — operating windows differ in
// length per day, so all day arithmetic routes through QuantaToTime.
package quantum

import "fmt"

// Day is a weekday label. The system is agnostic to which days are
// "operating" — that is configured by the caller via OperatingDay.
type Day string

// OperatingDay describes one day's operating window in minutes-since-midnight.
type OperatingDay struct {
	Day       Day
	OpenMin   int // inclusive, minutes since midnight
	CloseMin  int // exclusive, minutes since midnight
}

func (d OperatingDay) lengthMin() int {
	return d.CloseMin - d.OpenMin
}

// DomainError reports an out-of-range conversion. Per spec.md §4.1 these are
// programming errors, not user errors: the caller halts evaluation of the
// offending individual and surfaces this upward.
type DomainError struct {
	Op  string
	Msg string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("quantum: %s: %s", e.Op, e.Msg)
}

// System is a QuantumTimeSystem (QTS): an ordered list of operating days,
// each with its own window, sliced into fixed-size quanta.
type System struct {
	days          []OperatingDay
	quantumMin    int
	dayStartIndex []int // cumulative quanta before day i
	totalQuanta   int
}

// New builds a System from ordered operating days and a quantum size in
// minutes. Days must be listed in calendar order; each day's window length
// must be evenly divisible by quantumMin.
func New(days []OperatingDay, quantumMin int) (*System, error) {
	if quantumMin <= 0 {
		return nil, &DomainError{"New", "quantum size must be positive"}
	}
	if len(days) == 0 {
		return nil, &DomainError{"New", "at least one operating day is required"}
	}

	s := &System{
		days:          append([]OperatingDay(nil), days...),
		quantumMin:    quantumMin,
		dayStartIndex: make([]int, len(days)),
	}

	running := 0
	for i, d := range s.days {
		if d.lengthMin() <= 0 {
			return nil, &DomainError{"New", fmt.Sprintf("day %s has non-positive operating window", d.Day)}
		}
		if d.lengthMin()%quantumMin != 0 {
			return nil, &DomainError{"New", fmt.Sprintf("day %s window is not a multiple of the quantum size", d.Day)}
		}
		s.dayStartIndex[i] = running
		running += d.lengthMin() / quantumMin
	}
	s.totalQuanta = running
	return s, nil
}

// TotalQuanta is the dense count of quanta across the whole operating week.
func (s *System) TotalQuanta() int {
	return s.totalQuanta
}

// QuantumMinutes returns the configured quantum size in minutes. Callers that
// need to convert hours/minutes into a quanta count (Course.RequiredQuanta,
// unavailability resolution) must use this rather than assuming a default.
func (s *System) QuantumMinutes() int {
	return s.quantumMin
}

// Days returns the configured operating days, in order.
func (s *System) Days() []OperatingDay {
	return append([]OperatingDay(nil), s.days...)
}

// QuantaToTime inverts a dense quantum index back to (day, minute-of-day).
func (s *System) QuantaToTime(q int) (Day, int, error) {
	if q < 0 || q >= s.totalQuanta {
		return "", 0, &DomainError{"QuantaToTime", fmt.Sprintf("quantum %d out of range [0,%d)", q, s.totalQuanta)}
	}
	for i := len(s.days) - 1; i >= 0; i-- {
		if q >= s.dayStartIndex[i] {
			offset := q - s.dayStartIndex[i]
			return s.days[i].Day, s.days[i].OpenMin + offset*s.quantumMin, nil
		}
	}
	// unreachable given the bounds check above.
	return "", 0, &DomainError{"QuantaToTime", "internal index corruption"}
}

// TimeToQuanta converts a wall-clock (day, minute-of-day) into its dense
// quantum index. Fails with a DomainError for non-operating days/times.
func (s *System) TimeToQuanta(day Day, minute int) (int, error) {
	for i, d := range s.days {
		if d.Day != day {
			continue
		}
		if minute < d.OpenMin || minute >= d.CloseMin {
			return 0, &DomainError{"TimeToQuanta", fmt.Sprintf("%s %d is outside the operating window [%d,%d)", day, minute, d.OpenMin, d.CloseMin)}
		}
		if (minute-d.OpenMin)%s.quantumMin != 0 {
			return 0, &DomainError{"TimeToQuanta", fmt.Sprintf("%s %d does not fall on a quantum boundary", day, minute)}
		}
		return s.dayStartIndex[i] + (minute-d.OpenMin)/s.quantumMin, nil
	}
	return 0, &DomainError{"TimeToQuanta", fmt.Sprintf("%s is not an operating day", day)}
}

// QuantaPerDay returns the quantum count for the given day, or 0 if it is not
// an operating day. Callers that need "is this a boundary of this day"
// should use DayQuanta instead of dividing totalQuanta by len(days).
func (s *System) QuantaPerDay(day Day) int {
	for _, d := range s.days {
		if d.Day == day {
			return d.lengthMin() / s.quantumMin
		}
	}
	return 0
}

// DayQuanta returns the full ordered set of quantum indices belonging to the
// given operating day.
func (s *System) DayQuanta(day Day) []int {
	for i, d := range s.days {
		if d.Day != day {
			continue
		}
		n := d.lengthMin() / s.quantumMin
		out := make([]int, n)
		for j := 0; j < n; j++ {
			out[j] = s.dayStartIndex[i] + j
		}
		return out
	}
	return nil
}

// RangeQuanta returns the quanta on `day` whose wall-clock minute falls in
// [fromMin, toMin). Used by GetPreferredTimeRangeQuanta and
// GetMiddayBreakQuanta.
func (s *System) RangeQuanta(day Day, fromMin, toMin int) []int {
	var out []int
	for _, q := range s.DayQuanta(day) {
		_, minute, err := s.QuantaToTime(q)
		if err != nil {
			continue
		}
		if minute >= fromMin && minute < toMin {
			out = append(out, q)
		}
	}
	return out
}

// GetPreferredTimeRangeQuanta returns, per operating day, the quanta whose
// wall-clock time falls within [earliestMin, latestMin).
func (s *System) GetPreferredTimeRangeQuanta(earliestMin, latestMin int) map[Day][]int {
	out := make(map[Day][]int, len(s.days))
	for _, d := range s.days {
		out[d.Day] = s.RangeQuanta(d.Day, earliestMin, latestMin)
	}
	return out
}

// GetMiddayBreakQuanta returns, per operating day, the quanta overlapping the
// configured midday break window.
func (s *System) GetMiddayBreakQuanta(breakStartMin, breakEndMin int) map[Day][]int {
	return s.GetPreferredTimeRangeQuanta(breakStartMin, breakEndMin)
}

// SameDay reports whether two quanta fall on the same operating day. Routes
// through QuantaToTime rather than any modulo arithmetic, per spec.md §9.
func (s *System) SameDay(a, b int) (bool, error) {
	da, _, err := s.QuantaToTime(a)
	if err != nil {
		return false, err
	}
	db, _, err := s.QuantaToTime(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

// Adjacent reports whether quantum b immediately follows quantum a in the
// dense index space (used by clustering scoring in internal/repair).
func Adjacent(a, b int) bool {
	return b == a+1 || a == b+1
}

// FormatMinute renders minutes-since-midnight as HH:MM.
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
