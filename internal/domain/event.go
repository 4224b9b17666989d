package domain

import "time"

// EventKind labels a ladder mutation in the event journal.
type EventKind string

const (
	EventCreated        EventKind = "created"
	EventWin            EventKind = "win"
	EventGoalReached    EventKind = "goal_reached"
	EventLoss           EventKind = "loss"
	EventDeleted        EventKind = "deleted"
	EventSelected       EventKind = "selected"
	EventConfirmPending EventKind = "confirm_pending"
	EventConfirmExpired EventKind = "confirm_expired"
)

// LadderEvent records one mutation for the UI stream. Amounts are carried
// as strings so the journal encoding stays stable.
type LadderEvent struct {
	Kind          EventKind `json:"kind"`
	LadderID      string    `json:"ladder_id"`
	Name          string    `json:"name,omitempty"`
	CurrentAmount string    `json:"current_amount,omitempty"`
	StepIndex     int       `json:"step_index,omitempty"`
	Timestamp     time.Time `json:"ts"`
}

// LadderEventRecord bundles an event with its journal index.
type LadderEventRecord struct {
	Index uint64
	Event LadderEvent
}
