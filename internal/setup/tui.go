// Package setup is the terminal front end: an interactive form collecting
// the raw ladder inputs and a styled rendering of the projected steps.
package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/laddr/internal/domain"
	"github.com/vadiminshakov/laddr/internal/services/tracker"
	"github.com/vadiminshakov/laddr/pkg/currency"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	goalStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true)
)

// LadderCreator is the slice of the tracker the wizard needs.
type LadderCreator interface {
	Create(ctx context.Context, req tracker.CreateRequest) (*domain.Ladder, error)
}

// RunCreateWizard collects ladder inputs, creates the ladder and prints the
// projected steps. On a rejected input the form is shown again with the
// entered values kept, so the user only fixes the offending field.
func RunCreateWizard(ctx context.Context, creator LadderCreator) error {
	var req tracker.CreateRequest

	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Println(headerStyle.Render("NEW BETTING LADDER"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Stake, goal, odds. The rest is compounding.\n"))

	for {
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Name").
					Description("A label for this ladder").
					Value(&req.Name).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("name cannot be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("Start Stake").
					Description("First wager, e.g. 100").
					Value(&req.StartStake).
					Validate(validatePositiveAmount),
				huh.NewInput().
					Title("Goal Amount").
					Description("Target balance, must exceed the start stake").
					Value(&req.GoalAmount).
					Validate(validatePositiveAmount),
				huh.NewInput().
					Title("Odds").
					Description("American odds, e.g. +150 or -110").
					Value(&req.Odds).
					Validate(func(s string) error {
						if !domain.ValidOdds(s) {
							return fmt.Errorf("odds must look like +150 or -110")
						}
						return nil
					}),
			),
		).Run()
		if err != nil {
			return err
		}

		ladder, err := creator.Create(ctx, req)
		if err != nil {
			// entered values stay in req, the user corrects and retries
			fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %v", err)))
			continue
		}

		fmt.Println(renderLadder(ladder))
		return nil
	}
}

func validatePositiveAmount(s string) error {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// renderLadder prints the projected path as a bordered table.
func renderLadder(l *domain.Ladder) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s -> %s at %s\n\n",
		l.Name, currency.USD(l.StartStake), currency.USD(l.GoalAmount), l.Odds)
	fmt.Fprintf(&b, "%4s  %12s  %12s  %12s\n", "DAY", "STAKE", "PROFIT", "BALANCE")

	for _, step := range l.Steps {
		row := fmt.Sprintf("%4d  %12s  %12s  %12s",
			step.DayNumber,
			currency.USD(step.Stake),
			currency.USD(step.Profit),
			currency.USD(step.NextBalance))
		if step.IsGoalDay {
			row = goalStyle.Render(row + "  ← goal")
		}
		b.WriteString(row + "\n")
	}

	return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(b.String())
}
