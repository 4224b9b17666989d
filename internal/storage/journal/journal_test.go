package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/laddr/internal/domain"
)

func event(kind domain.EventKind, id string) domain.LadderEvent {
	return domain.LadderEvent{
		Kind:      kind,
		LadderID:  id,
		Timestamp: time.Now(),
	}
}

func TestJournalAppendAndReadBack(t *testing.T) {
	j, err := New(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(event(domain.EventCreated, "a")))
	require.NoError(t, j.Append(event(domain.EventWin, "a")))
	require.NoError(t, j.Append(event(domain.EventLoss, "b")))

	records, err := j.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, domain.EventCreated, records[0].Event.Kind)
	require.Equal(t, domain.EventWin, records[1].Event.Kind)
	require.Equal(t, "b", records[2].Event.LadderID)
}

func TestJournalEventsAfterSkipsConsumed(t *testing.T) {
	j, err := New(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Append(event(domain.EventCreated, "a")))
	require.NoError(t, j.Append(event(domain.EventWin, "a")))

	first, err := j.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// nothing new past the last consumed index
	rest, err := j.EventsAfter(first[len(first)-1].Index)
	require.NoError(t, err)
	require.Empty(t, rest)

	require.NoError(t, j.Append(event(domain.EventGoalReached, "a")))
	rest, err = j.EventsAfter(first[len(first)-1].Index)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, domain.EventGoalReached, rest[0].Event.Kind)
}

func TestJournalRejectsEventWithoutLadderID(t *testing.T) {
	j, err := New(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	require.Error(t, j.Append(domain.LadderEvent{Kind: domain.EventWin}))
}
