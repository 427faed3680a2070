package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"

	"github.com/google/uuid"
)

// Session is one completed (or skipped) phase.
type Session struct {
	ID          string
	Phase       model.Phase
	TaskID      string
	CompletedAt time.Time
	Duration    time.Duration
	Skipped     bool
}

// Summary aggregates sessions over a period.
type Summary struct {
	WorkSessions int
	Breaks       int
	FocusTime    time.Duration
}

// RecordSession stores a completed phase.
func (store *Store) RecordSession(ctx context.Context, session Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	var taskID sql.NullString
	if session.TaskID != "" {
		taskID = sql.NullString{String: session.TaskID, Valid: true}
	}

	_, err := store.db.ExecContext(ctx, `
        INSERT INTO sessions (id, phase, task_id, completed_at, duration_seconds, skipped)
        VALUES (?, ?, ?, ?, ?, ?)
    `, session.ID, string(session.Phase), taskID, session.CompletedAt.UTC(),
		int64(session.Duration/time.Second), session.Skipped)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Summarize aggregates sessions completed at or after since.
func (store *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	var summary Summary
	var focusSeconds int64
	err := store.db.QueryRowContext(ctx, `
        SELECT
            COALESCE(SUM(CASE WHEN phase = ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN phase != ? THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN phase = ? THEN duration_seconds ELSE 0 END), 0)
        FROM sessions
        WHERE completed_at >= ?
    `, string(model.PhaseWork), string(model.PhaseWork), string(model.PhaseWork), since.UTC()).
		Scan(&summary.WorkSessions, &summary.Breaks, &focusSeconds)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize sessions: %w", err)
	}
	summary.FocusTime = time.Duration(focusSeconds) * time.Second
	return summary, nil
}

// Recorder writes a session row for every phase completion the engine reports.
type Recorder struct {
	store  *Store
	logger timer.Logger
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store *Store, logger timer.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Run consumes events until the channel is closed or ctx is done.
func (recorder *Recorder) Run(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			recorder.handle(ctx, event)
		}
	}
}

func (recorder *Recorder) handle(ctx context.Context, event timer.Event) {
	if event.Type != timer.EventPhaseComplete {
		return
	}
	session := Session{
		Phase:       event.CompletedPhase,
		TaskID:      event.TaskID,
		CompletedAt: event.At,
		Duration:    event.Elapsed,
		Skipped:     event.Skipped,
	}
	if err := recorder.store.RecordSession(ctx, session); err != nil {
		recorder.logger.Printf("history: %v", err)
	}
}
