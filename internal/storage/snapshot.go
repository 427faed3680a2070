package storage

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"pomodesk/internal/core/model"

	"gopkg.in/yaml.v3"
)

// SnapshotKey is the well-known slot key holding the timer snapshot.
const SnapshotKey = "timer.snapshot"

var errIncompleteSnapshot = errors.New("snapshot record is incomplete")

// snapshotRecord is the persisted wire format. Pointer fields detect missing keys.
type snapshotRecord struct {
	Phase                 *string `yaml:"phase"`
	RemainingSeconds      *int    `yaml:"remainingSeconds"`
	Running               *bool   `yaml:"running"`
	CompletedWorkSessions *int    `yaml:"completedWorkSessions"`
	SavedAtEpochMillis    *int64  `yaml:"savedAtEpochMillis"`
}

// SnapshotOptions configures a SnapshotStore.
type SnapshotOptions struct {
	Durations  model.DurationTable
	StaleAfter time.Duration
	Now        func() time.Time
	Logger     Logger
}

// SnapshotStore saves and restores the timer snapshot with staleness recovery.
// Errors are logged and never returned to callers.
type SnapshotStore struct {
	mu         sync.Mutex
	slot       Slot
	durations  model.DurationTable
	staleAfter time.Duration
	now        func() time.Time
	logger     Logger
}

// NewSnapshotStore creates a store on top of slot.
func NewSnapshotStore(slot Slot, options SnapshotOptions) *SnapshotStore {
	if options.Durations == (model.DurationTable{}) {
		options.Durations = model.DefaultDurations()
	}
	if options.StaleAfter <= 0 {
		options.StaleAfter = model.DefaultStaleAfter
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return &SnapshotStore{
		slot:       slot,
		durations:  options.Durations,
		staleAfter: options.StaleAfter,
		now:        options.Now,
		logger:     options.Logger,
	}
}

// UpdateConfig replaces the duration table and staleness threshold used by Load.
func (store *SnapshotStore) UpdateConfig(config model.TimerConfig) {
	config = config.Normalize()
	store.mu.Lock()
	store.durations = config.Durations
	store.staleAfter = config.StaleAfter
	store.mu.Unlock()
}

// Save writes snapshot stamped with the current time, replacing any prior value.
func (store *SnapshotStore) Save(snapshot model.Snapshot) {
	store.mu.Lock()
	defer store.mu.Unlock()

	phase := string(snapshot.Phase)
	savedAt := store.now().UnixMilli()
	record := snapshotRecord{
		Phase:                 &phase,
		RemainingSeconds:      &snapshot.RemainingSeconds,
		Running:               &snapshot.Running,
		CompletedWorkSessions: &snapshot.CompletedWorkSessions,
		SavedAtEpochMillis:    &savedAt,
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		store.logger.Printf("snapshot: marshal: %v", err)
		return
	}
	if err := store.slot.Write(SnapshotKey, data); err != nil {
		store.logger.Printf("snapshot: save: %v", err)
	}
}

// Load restores the snapshot. It returns false when there is nothing usable:
// no record, a corrupt record, or a record older than the staleness threshold.
// A running snapshot is advanced by the whole seconds elapsed since it was saved.
func (store *SnapshotStore) Load() (model.Snapshot, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := store.slot.Read(SnapshotKey)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			store.logger.Printf("snapshot: load: %v", err)
		}
		return model.Snapshot{}, false
	}

	snapshot, err := store.decode(data)
	if err != nil {
		store.logger.Printf("snapshot: discarding unreadable record: %v", err)
		return model.Snapshot{}, false
	}

	elapsed := store.now().Sub(snapshot.SavedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > store.staleAfter {
		store.logger.Printf("snapshot: discarding record saved %s ago", elapsed.Round(time.Second))
		if err := store.slot.Delete(SnapshotKey); err != nil {
			store.logger.Printf("snapshot: clear stale record: %v", err)
		}
		return model.Snapshot{}, false
	}

	if snapshot.Running {
		snapshot.RemainingSeconds -= int(elapsed / time.Second)
		if snapshot.RemainingSeconds <= 0 {
			snapshot.RemainingSeconds = 0
			snapshot.Running = false
		}
	}
	return snapshot, true
}

// Clear discards the persisted snapshot.
func (store *SnapshotStore) Clear() {
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.slot.Delete(SnapshotKey); err != nil {
		store.logger.Printf("snapshot: clear: %v", err)
	}
}

func (store *SnapshotStore) decode(data []byte) (model.Snapshot, error) {
	var record snapshotRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return model.Snapshot{}, fmt.Errorf("parse snapshot yaml: %w", err)
	}
	if record.Phase == nil || record.RemainingSeconds == nil || record.Running == nil ||
		record.CompletedWorkSessions == nil || record.SavedAtEpochMillis == nil {
		return model.Snapshot{}, errIncompleteSnapshot
	}

	phase := model.Phase(*record.Phase)
	if !phase.Valid() {
		return model.Snapshot{}, fmt.Errorf("unknown phase %q", *record.Phase)
	}
	if *record.RemainingSeconds < 0 || *record.CompletedWorkSessions < 0 {
		return model.Snapshot{}, fmt.Errorf("negative counters in snapshot")
	}

	remaining := *record.RemainingSeconds
	if nominal := store.durations.Nominal(phase); remaining > nominal {
		remaining = nominal
	}

	return model.Snapshot{
		Phase:                 phase,
		RemainingSeconds:      remaining,
		Running:               *record.Running,
		CompletedWorkSessions: *record.CompletedWorkSessions,
		SavedAt:               time.UnixMilli(*record.SavedAtEpochMillis),
	}, nil
}
