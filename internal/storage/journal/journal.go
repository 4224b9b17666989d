// Package journal keeps an append-only WAL of ladder mutations. The web
// layer polls it with EventsAfter to stream changes to clients, which is the
// explicit observer contract between the core and the presentation layer.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/laddr/internal/domain"
)

const (
	defaultJournalDir   = "./wal/ladders"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	eventKeyPrefix      = "ladder_event_"
)

// Journal is a WAL-backed event log of ladder mutations.
type Journal struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// New opens (or creates) the journal under the provided directory.
func New(dir string) (*Journal, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "events_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init ladder event journal")
	}

	return &Journal{wal: wal}, nil
}

// Append writes one event. Events without a ladder id are rejected.
func (j *Journal) Append(event domain.LadderEvent) error {
	if j == nil || j.wal == nil {
		return errors.New("ladder event journal is not initialized")
	}
	if event.LadderID == "" {
		return errors.New("ladder event requires a ladder id")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal ladder event")
	}

	key := fmt.Sprintf("%s%s", eventKeyPrefix, event.LadderID)

	j.mu.Lock()
	defer j.mu.Unlock()

	nextIndex := j.wal.CurrentIndex() + 1
	return j.wal.Write(nextIndex, key, payload)
}

// EventsAfter returns all events written after the provided index, in order.
func (j *Journal) EventsAfter(index uint64) ([]domain.LadderEventRecord, error) {
	if j == nil || j.wal == nil {
		return nil, errors.New("ladder event journal is not initialized")
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	current := j.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.LadderEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := j.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, eventKeyPrefix) {
			continue
		}

		var event domain.LadderEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrap(err, "decode ladder event")
		}
		records = append(records, domain.LadderEventRecord{Index: idx, Event: event})
	}

	return records, nil
}

// CurrentIndex returns the latest journal index written.
func (j *Journal) CurrentIndex() uint64 {
	if j == nil || j.wal == nil {
		return 0
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	return j.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (j *Journal) Close() error {
	if j == nil || j.wal == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return j.wal.Close()
}
