package domain

import "github.com/shopspring/decimal"

// maxProjectionSteps caps the compounding loop. Odds that never grow the
// stake, or grow it too slowly against a distant goal, hit the cap and the
// ladder is rejected at creation instead of being silently truncated.
const maxProjectionSteps = 500

// Step is one projected day of a ladder. Immutable once the ladder exists.
type Step struct {
	DayNumber   int             `json:"day_number"`
	Stake       decimal.Decimal `json:"stake"`
	Profit      decimal.Decimal `json:"profit"`
	NextBalance decimal.Decimal `json:"next_balance"`
	IsGoalDay   bool            `json:"is_goal_day"`
}

// ProjectSteps compounds startStake at the given American odds until the
// balance reaches goalAmount or the step ceiling is hit. Each step stakes
// the previous step's resulting balance. Only a step whose balance actually
// reaches the goal is marked as the goal day; callers must reject a sequence
// whose last step is not one.
func ProjectSteps(startStake, goalAmount decimal.Decimal, odds string) []Step {
	steps := make([]Step, 0, 16)

	stake := startStake
	for day := 1; day <= maxProjectionSteps; day++ {
		profit := Profit(stake, odds)
		next := stake.Add(profit)
		goalDay := next.GreaterThanOrEqual(goalAmount)

		steps = append(steps, Step{
			DayNumber:   day,
			Stake:       stake,
			Profit:      profit,
			NextBalance: next,
			IsGoalDay:   goalDay,
		})

		if goalDay {
			break
		}
		stake = next
	}

	return steps
}
