// Package domain holds the betting-ladder entities and the pure math that
// projects and advances them.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cashoutThreshold is the running balance at which the UI shows the
// advisory cashout reminder.
var cashoutThreshold = decimal.NewFromInt(50)

// LadderState is the progress state of a ladder.
type LadderState int

const (
	// StateActive means there are steps left to play.
	StateActive LadderState = iota
	// StateGoalReached means the cursor ran past the last step.
	StateGoalReached
)

// String returns a human-readable state name.
func (s LadderState) String() string {
	if s == StateGoalReached {
		return "goal_reached"
	}
	return "active"
}

// Ladder is the sole persisted entity: a projected stake-compounding path
// from a start stake to a goal, plus a mutable cursor through it. Steps are
// computed once at creation and never re-derived.
type Ladder struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	StartStake       decimal.Decimal `json:"start_stake"`
	GoalAmount       decimal.Decimal `json:"goal_amount"`
	Odds             string          `json:"odds"`
	Steps            []Step          `json:"ladder_steps"`
	CurrentAmount    decimal.Decimal `json:"current_amount"`
	CurrentStepIndex int             `json:"current_step_index"`
	LastUpdated      time.Time       `json:"last_updated"`
}

// NewLadder validates the inputs, projects the full step sequence and
// returns a fresh ladder positioned at day one. Creation is atomic: any
// validation or projection failure rejects the whole ladder.
func NewLadder(name string, startStake, goalAmount decimal.Decimal, odds string) (*Ladder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationf("name must not be empty")
	}
	if startStake.LessThanOrEqual(decimal.Zero) {
		return nil, validationf("start stake must be positive, got %s", startStake.String())
	}
	if goalAmount.LessThanOrEqual(startStake) {
		return nil, validationf("goal amount must be greater than start stake")
	}
	if !ValidOdds(odds) {
		return nil, validationf("odds must be American style, like +150 or -110")
	}

	steps := ProjectSteps(startStake, goalAmount, odds)
	if len(steps) == 0 || !steps[len(steps)-1].IsGoalDay {
		return nil, ErrNotConverging
	}

	return &Ladder{
		ID:            uuid.NewString(),
		Name:          name,
		StartStake:    startStake,
		GoalAmount:    goalAmount,
		Odds:          odds,
		Steps:         steps,
		CurrentAmount: startStake,
		LastUpdated:   time.Now(),
	}, nil
}

// State derives the progress state from the cursor position.
func (l *Ladder) State() LadderState {
	if l.CurrentStepIndex >= len(l.Steps) {
		return StateGoalReached
	}
	return StateActive
}

// CurrentStep returns the step the next win would resolve, or nil once the
// goal has been reached.
func (l *Ladder) CurrentStep() *Step {
	if l.CurrentStepIndex >= len(l.Steps) {
		return nil
	}
	return &l.Steps[l.CurrentStepIndex]
}

// ApplyWin advances the ladder one step. On the goal day the balance is set
// to the goal amount. Returns ErrAlreadyComplete once the goal is reached.
func (l *Ladder) ApplyWin() error {
	step := l.CurrentStep()
	if step == nil {
		return ErrAlreadyComplete
	}

	if step.IsGoalDay {
		l.CurrentAmount = l.GoalAmount
	} else {
		l.CurrentAmount = step.NextBalance
	}
	l.CurrentStepIndex++
	l.LastUpdated = time.Now()

	return nil
}

// ApplyLoss sends the ladder back to day one. A completed ladder is frozen
// until deleted, so a loss on it is rejected the same way a win is.
func (l *Ladder) ApplyLoss() error {
	if l.State() == StateGoalReached {
		return ErrAlreadyComplete
	}

	l.CurrentAmount = l.StartStake
	l.CurrentStepIndex = 0
	l.LastUpdated = time.Now()

	return nil
}

// CashoutAvailable reports the advisory reminder: the running balance sits
// at or above the threshold and there are still steps left to risk it on.
func (l *Ladder) CashoutAvailable() bool {
	return l.State() == StateActive && l.CurrentAmount.GreaterThanOrEqual(cashoutThreshold)
}
