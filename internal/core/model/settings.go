package model

import "time"

// Snapshot backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Settings defines editable user preferences.
type Settings struct {
	WorkDuration          time.Duration
	ShortBreakDuration    time.Duration
	LongBreakDuration     time.Duration
	CyclesBeforeLongBreak int
	StaleAfter            time.Duration

	PausedStatus        string
	ResetStatus         string
	WorkCompletedStatus string
	DetachedStatus      string

	SnapshotBackend string
	MetricsAddr     string
}

// DefaultSettings returns default settings for pomodesk.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:          DefaultWorkDuration,
		ShortBreakDuration:    DefaultShortBreakDuration,
		LongBreakDuration:     DefaultLongBreakDuration,
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
		StaleAfter:            DefaultStaleAfter,
		PausedStatus:          DefaultTaskStatus,
		ResetStatus:           DefaultTaskStatus,
		WorkCompletedStatus:   DefaultTaskStatus,
		DetachedStatus:        DefaultTaskStatus,
		SnapshotBackend:       BackendFile,
	}
}

// TimerConfig converts settings to TimerConfig.
func (settings Settings) TimerConfig() TimerConfig {
	return TimerConfig{
		Durations: DurationTable{
			Work:       settings.WorkDuration,
			ShortBreak: settings.ShortBreakDuration,
			LongBreak:  settings.LongBreakDuration,
		},
		CyclesBeforeLongBreak: settings.CyclesBeforeLongBreak,
		StaleAfter:            settings.StaleAfter,
		Statuses: StatusMapping{
			Paused:        settings.PausedStatus,
			Reset:         settings.ResetStatus,
			WorkCompleted: settings.WorkCompletedStatus,
			Detached:      settings.DetachedStatus,
		},
	}.Normalize()
}
