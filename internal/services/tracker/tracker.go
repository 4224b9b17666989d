// Package tracker owns ladder lifecycle: validated creation, the double-tap
// win path, losses, deletion and selection. All mutations are serialized and
// written to the store before the new state is exposed, so a failed write
// leaves the previously observed state intact.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/laddr/internal/domain"
	"github.com/vadiminshakov/laddr/internal/services/confirm"
	"github.com/vadiminshakov/laddr/internal/storage"
)

// EventLog receives one event per applied mutation. The journal implements
// it; a nil log disables event publishing.
type EventLog interface {
	Append(event domain.LadderEvent) error
}

// CreateRequest carries the raw form input for a new ladder. Amounts arrive
// as text exactly as the user typed them.
type CreateRequest struct {
	Name       string `json:"name"`
	StartStake string `json:"start_stake"`
	GoalAmount string `json:"goal_amount"`
	Odds       string `json:"odds"`
}

// TapResult tells the caller what a win tap did.
type TapResult struct {
	// Applied is false for the first tap of the pair: the win is armed,
	// not executed.
	Applied     bool
	GoalReached bool
	Ladder      *domain.Ladder
}

// Tracker is the single entry point for ladder mutations.
type Tracker struct {
	mu       sync.Mutex
	store    storage.Ladders
	events   EventLog
	gate     *confirm.Gate
	selected string
	log      *zap.Logger
}

// New wires a tracker over the given store. window is the win-confirmation
// window; zero picks the default.
func New(log *zap.Logger, store storage.Ladders, events EventLog, window time.Duration) *Tracker {
	t := &Tracker{
		store:  store,
		events: events,
		log:    log,
	}
	t.gate = confirm.New(window, t.confirmExpired)
	return t
}

// Close drops any pending confirmation.
func (t *Tracker) Close() {
	t.gate.Reset()
}

// Create validates the raw input, projects the ladder and persists it.
func (t *Tracker) Create(ctx context.Context, req CreateRequest) (*domain.Ladder, error) {
	startStake, err := decimal.NewFromString(req.StartStake)
	if err != nil {
		return nil, &domain.ValidationError{Msg: "start stake must be a number"}
	}
	goalAmount, err := decimal.NewFromString(req.GoalAmount)
	if err != nil {
		return nil, &domain.ValidationError{Msg: "goal amount must be a number"}
	}

	ladder, err := domain.NewLadder(req.Name, startStake, goalAmount, req.Odds)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Create(ctx, ladder); err != nil {
		return nil, errors.Wrap(err, "persist new ladder")
	}

	t.publish(domain.LadderEvent{
		Kind:          domain.EventCreated,
		LadderID:      ladder.ID,
		Name:          ladder.Name,
		CurrentAmount: ladder.CurrentAmount.String(),
		Timestamp:     time.Now(),
	})
	t.log.Info("ladder created",
		zap.String("id", ladder.ID),
		zap.String("name", ladder.Name),
		zap.Int("steps", len(ladder.Steps)))

	return ladder, nil
}

// Tap is the win path. The first tap arms the confirmation gate and applies
// nothing; the second tap within the window applies the win and persists it.
// Tapping a completed ladder reports ErrAlreadyComplete without arming.
func (t *Tracker) Tap(ctx context.Context, id string) (TapResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ladder, err := t.store.Get(ctx, id)
	if err != nil {
		return TapResult{}, err
	}
	if ladder.State() == domain.StateGoalReached {
		return TapResult{}, domain.ErrAlreadyComplete
	}

	if !t.gate.Tap(id) {
		t.publish(domain.LadderEvent{
			Kind:      domain.EventConfirmPending,
			LadderID:  id,
			Timestamp: time.Now(),
		})
		return TapResult{Applied: false}, nil
	}

	next := *ladder
	if err := next.ApplyWin(); err != nil {
		return TapResult{}, err
	}
	if err := t.store.Update(ctx, &next); err != nil {
		return TapResult{}, errors.Wrap(err, "persist win")
	}

	kind := domain.EventWin
	goalReached := next.State() == domain.StateGoalReached
	if goalReached {
		kind = domain.EventGoalReached
	}
	t.publish(domain.LadderEvent{
		Kind:          kind,
		LadderID:      next.ID,
		Name:          next.Name,
		CurrentAmount: next.CurrentAmount.String(),
		StepIndex:     next.CurrentStepIndex,
		Timestamp:     time.Now(),
	})
	t.log.Info("win applied",
		zap.String("id", next.ID),
		zap.String("balance", next.CurrentAmount.String()),
		zap.Bool("goal_reached", goalReached))

	return TapResult{Applied: true, GoalReached: goalReached, Ladder: &next}, nil
}

// Loss resets the ladder to its start stake and persists the reset.
func (t *Tracker) Loss(ctx context.Context, id string) (*domain.Ladder, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ladder, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *ladder
	if err := next.ApplyLoss(); err != nil {
		return nil, err
	}
	if err := t.store.Update(ctx, &next); err != nil {
		return nil, errors.Wrap(err, "persist loss")
	}

	t.publish(domain.LadderEvent{
		Kind:          domain.EventLoss,
		LadderID:      next.ID,
		Name:          next.Name,
		CurrentAmount: next.CurrentAmount.String(),
		Timestamp:     time.Now(),
	})
	t.log.Info("loss applied, ladder reset", zap.String("id", next.ID))

	return &next, nil
}

// Delete removes the ladder. Deletion resets the confirmation gate and, if
// the ladder was selected, clears the selection so it never dangles.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Delete(ctx, id); err != nil {
		return err
	}

	t.gate.Reset()
	if t.selected == id {
		t.selected = ""
	}

	t.publish(domain.LadderEvent{
		Kind:      domain.EventDeleted,
		LadderID:  id,
		Timestamp: time.Now(),
	})
	t.log.Info("ladder deleted", zap.String("id", id))

	return nil
}

// Select marks the ladder as the one on display. Any pending win
// confirmation belongs to the previous selection and is dropped.
func (t *Tracker) Select(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.store.Get(ctx, id); err != nil {
		return err
	}

	t.gate.Reset()
	t.selected = id

	t.publish(domain.LadderEvent{
		Kind:      domain.EventSelected,
		LadderID:  id,
		Timestamp: time.Now(),
	})

	return nil
}

// Selected returns the id of the ladder on display, empty when none.
func (t *Tracker) Selected() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected
}

// Get returns one ladder.
func (t *Tracker) Get(ctx context.Context, id string) (*domain.Ladder, error) {
	return t.store.Get(ctx, id)
}

// List returns all ladders.
func (t *Tracker) List(ctx context.Context) ([]*domain.Ladder, error) {
	return t.store.List(ctx)
}

// ConfirmPending reports whether a win confirmation is awaiting its second
// tap, and for which ladder.
func (t *Tracker) ConfirmPending() (string, bool) {
	return t.gate.Pending()
}

func (t *Tracker) confirmExpired(ladderID string) {
	t.publish(domain.LadderEvent{
		Kind:      domain.EventConfirmExpired,
		LadderID:  ladderID,
		Timestamp: time.Now(),
	})
	t.log.Info("win confirmation expired", zap.String("id", ladderID))
}

func (t *Tracker) publish(event domain.LadderEvent) {
	if t.events == nil {
		return
	}
	if err := t.events.Append(event); err != nil {
		t.log.Error("append ladder event", zap.Error(err))
	}
}
