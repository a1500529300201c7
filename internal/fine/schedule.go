package fine

import (
	"fmt"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

// Schedule maps violation codes to fine amounts. It is immutable once built.
type Schedule struct {
	amounts map[violation.Code]int
}

// DefaultSchedule is the stock tariff: 500 for no helmet, 300 for no
// seatbelt, 700 for triple riding.
func DefaultSchedule() Schedule {
	schedule, _ := NewSchedule(map[violation.Code]int{
		violation.NoHelmet:     500,
		violation.NoSeatbelt:   300,
		violation.TripleRiding: 700,
	})
	return schedule
}

// NewSchedule copies amounts into a new Schedule.
func NewSchedule(amounts map[violation.Code]int) (Schedule, error) {
	copied := make(map[violation.Code]int, len(amounts))
	for code, amount := range amounts {
		if !code.Valid() {
			return Schedule{}, fmt.Errorf("unknown violation code %q in fine schedule", code)
		}
		if amount < 0 {
			return Schedule{}, fmt.Errorf("negative fine %d for %s", amount, code)
		}
		copied[code] = amount
	}
	return Schedule{amounts: copied}, nil
}

// ParseSchedule builds a Schedule from configuration keys, which may be
// canonical codes or display names.
func ParseSchedule(amounts map[string]int) (Schedule, error) {
	codes := make(map[violation.Code]int, len(amounts))
	for name, amount := range amounts {
		code, err := violation.ParseCode(name)
		if err != nil {
			return Schedule{}, fmt.Errorf("fine schedule: %w", err)
		}
		if _, dup := codes[code]; dup {
			return Schedule{}, fmt.Errorf("fine schedule: %s configured twice", code)
		}
		codes[code] = amount
	}
	return NewSchedule(codes)
}

// Amount returns the fine for code, or 0 if the schedule has none.
func (s Schedule) Amount(code violation.Code) int {
	return s.amounts[code]
}

// Amounts returns a copy of the schedule keyed by code.
func (s Schedule) Amounts() map[violation.Code]int {
	out := make(map[violation.Code]int, len(s.amounts))
	for code, amount := range s.amounts {
		out[code] = amount
	}
	return out
}
