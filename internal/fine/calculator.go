package fine

import "github.com/povarna/generative-ai-agents/challan-agent/internal/violation"

type Calculator struct {
	schedule Schedule
}

func NewCalculator(schedule Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// Total sums the scheduled amount of every code in the set. Codes missing
// from the schedule contribute 0.
func (c *Calculator) Total(set violation.Set) int {
	return Compute(set, c.schedule)
}

func (c *Calculator) Schedule() Schedule {
	return c.schedule
}

func Compute(set violation.Set, schedule Schedule) int {
	total := 0
	for _, code := range set {
		total += schedule.Amount(code)
	}
	return total
}
