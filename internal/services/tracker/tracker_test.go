package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/laddr/internal/domain"
	"github.com/vadiminshakov/laddr/internal/storage"
	"github.com/vadiminshakov/laddr/internal/storage/file"
)

type memoryLog struct {
	mu     sync.Mutex
	events []domain.LadderEvent
}

func (m *memoryLog) Append(event domain.LadderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memoryLog) kinds() []domain.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make([]domain.EventKind, 0, len(m.events))
	for _, e := range m.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// flakyStore fails Update a fixed number of times before delegating.
type flakyStore struct {
	storage.Ladders
	failures int
}

func (f *flakyStore) Update(ctx context.Context, ladder *domain.Ladder) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("store unavailable")
	}
	return f.Ladders.Update(ctx, ladder)
}

func newTracker(t *testing.T, window time.Duration) (*Tracker, *memoryLog) {
	t.Helper()
	store, err := file.New(t.TempDir())
	require.NoError(t, err)

	log := &memoryLog{}
	tr := New(zap.NewNop(), store, log, window)
	t.Cleanup(tr.Close)
	return tr, log
}

func createLadder(t *testing.T, tr *Tracker) *domain.Ladder {
	t.Helper()
	ladder, err := tr.Create(context.Background(), CreateRequest{
		Name:       "nba ladder",
		StartStake: "100",
		GoalAmount: "1000",
		Odds:       "+150",
	})
	require.NoError(t, err)
	return ladder
}

func TestCreateValidatesRawInput(t *testing.T) {
	tr, _ := newTracker(t, time.Second)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"non-numeric stake", CreateRequest{Name: "x", StartStake: "ten", GoalAmount: "100", Odds: "+150"}},
		{"non-numeric goal", CreateRequest{Name: "x", StartStake: "10", GoalAmount: "lots", Odds: "+150"}},
		{"empty name", CreateRequest{Name: "", StartStake: "10", GoalAmount: "100", Odds: "+150"}},
		{"bad odds", CreateRequest{Name: "x", StartStake: "10", GoalAmount: "100", Odds: "abc"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tr.Create(ctx, tc.req)
			require.Error(t, err)
			require.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateSurfacesCalculationErrorDistinctly(t *testing.T) {
	tr, _ := newTracker(t, time.Second)

	_, err := tr.Create(context.Background(), CreateRequest{
		Name: "stuck", StartStake: "100", GoalAmount: "200", Odds: "+0",
	})
	require.ErrorIs(t, err, domain.ErrNotConverging)
	require.False(t, domain.IsValidation(err))
}

func TestCreatePersistsLadder(t *testing.T) {
	tr, log := newTracker(t, time.Second)
	ladder := createLadder(t, tr)

	got, err := tr.Get(context.Background(), ladder.ID)
	require.NoError(t, err)
	require.Equal(t, ladder.Name, got.Name)
	require.Len(t, got.Steps, 3)
	require.Equal(t, []domain.EventKind{domain.EventCreated}, log.kinds())
}

func TestTapRequiresSecondTap(t *testing.T) {
	tr, log := newTracker(t, time.Second)
	ladder := createLadder(t, tr)
	ctx := context.Background()

	res, err := tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	require.False(t, res.Applied)

	// nothing was persisted by the first tap
	got, err := tr.Get(ctx, ladder.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CurrentStepIndex)

	res, err = tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.False(t, res.GoalReached)
	require.Equal(t, 1, res.Ladder.CurrentStepIndex)

	got, err = tr.Get(ctx, ladder.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentStepIndex)

	require.Equal(t, []domain.EventKind{
		domain.EventCreated,
		domain.EventConfirmPending,
		domain.EventWin,
	}, log.kinds())
}

func TestTapExpiryDropsConfirmation(t *testing.T) {
	tr, log := newTracker(t, 20*time.Millisecond)
	ladder := createLadder(t, tr)
	ctx := context.Background()

	res, err := tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	require.False(t, res.Applied)

	require.Eventually(t, func() bool {
		kinds := log.kinds()
		return len(kinds) > 0 && kinds[len(kinds)-1] == domain.EventConfirmExpired
	}, time.Second, 5*time.Millisecond)

	// the window elapsed, so this tap arms again instead of confirming
	res, err = tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	require.False(t, res.Applied)

	got, err := tr.Get(ctx, ladder.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CurrentStepIndex)
}

func TestTapReportsAlreadyComplete(t *testing.T) {
	tr, _ := newTracker(t, time.Second)
	ctx := context.Background()

	ladder, err := tr.Create(ctx, CreateRequest{
		Name: "oneshot", StartStake: "100", GoalAmount: "150", Odds: "-110",
	})
	require.NoError(t, err)

	_, err = tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	res, err := tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	require.True(t, res.Applied)
	require.True(t, res.GoalReached)

	_, err = tr.Tap(ctx, ladder.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyComplete)
}

func TestSelectResetsPendingConfirmation(t *testing.T) {
	tr, _ := newTracker(t, time.Second)
	ctx := context.Background()
	first := createLadder(t, tr)
	second := createLadder(t, tr)

	_, err := tr.Tap(ctx, first.ID)
	require.NoError(t, err)
	_, pending := tr.ConfirmPending()
	require.True(t, pending)

	require.NoError(t, tr.Select(ctx, second.ID))
	_, pending = tr.ConfirmPending()
	require.False(t, pending, "selection change must drop the pending confirmation")

	// the abandoned confirmation must not leak into the first ladder's win
	res, err := tr.Tap(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, res.Applied)
}

func TestLossResetsAndPersists(t *testing.T) {
	tr, _ := newTracker(t, time.Second)
	ladder := createLadder(t, tr)
	ctx := context.Background()

	_, err := tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	_, err = tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)

	got, err := tr.Loss(ctx, ladder.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CurrentStepIndex)
	require.True(t, got.CurrentAmount.Equal(got.StartStake))

	stored, err := tr.Get(ctx, ladder.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.CurrentStepIndex)
}

func TestDeleteClearsSelection(t *testing.T) {
	tr, _ := newTracker(t, time.Second)
	ctx := context.Background()
	ladder := createLadder(t, tr)

	require.NoError(t, tr.Select(ctx, ladder.ID))
	require.Equal(t, ladder.ID, tr.Selected())

	require.NoError(t, tr.Delete(ctx, ladder.ID))
	require.Empty(t, tr.Selected())

	_, err := tr.Get(ctx, ladder.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFailedWriteLeavesStateIntact(t *testing.T) {
	fs, err := file.New(t.TempDir())
	require.NoError(t, err)
	flaky := &flakyStore{Ladders: fs, failures: 1}

	tr := New(zap.NewNop(), flaky, nil, time.Second)
	t.Cleanup(tr.Close)
	ctx := context.Background()

	ladder, err := tr.Create(ctx, CreateRequest{
		Name: "nba", StartStake: "100", GoalAmount: "1000", Odds: "+150",
	})
	require.NoError(t, err)

	_, err = tr.Tap(ctx, ladder.ID)
	require.NoError(t, err)
	_, err = tr.Tap(ctx, ladder.ID)
	require.Error(t, err, "failed write must surface")

	got, err := tr.Get(ctx, ladder.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.CurrentStepIndex, "failed write must not advance the ladder")
	require.True(t, got.CurrentAmount.Equal(got.StartStake))
}
