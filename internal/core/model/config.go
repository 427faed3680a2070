package model

import (
	"fmt"
	"time"
)

// Phase is the timer's current mode.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Valid reports whether the phase is one of the known phases.
func (phase Phase) Valid() bool {
	switch phase {
	case PhaseWork, PhaseShortBreak, PhaseLongBreak:
		return true
	}
	return false
}

// IsBreak reports whether the phase is a short or long break.
func (phase Phase) IsBreak() bool {
	return phase == PhaseShortBreak || phase == PhaseLongBreak
}

// Label returns a human readable phase name.
func (phase Phase) Label() string {
	switch phase {
	case PhaseWork:
		return "Work"
	case PhaseShortBreak:
		return "Short break"
	case PhaseLongBreak:
		return "Long break"
	default:
		return "Unknown"
	}
}

// Default timer settings.
const (
	DefaultWorkDuration          = 25 * time.Minute
	DefaultShortBreakDuration    = 5 * time.Minute
	DefaultLongBreakDuration     = 15 * time.Minute
	DefaultCyclesBeforeLongBreak = 4
	DefaultStaleAfter            = time.Hour

	// DefaultTaskStatus is sent through the completion hook on every detach trigger.
	DefaultTaskStatus = "todo"
)

// DurationTable maps each phase to its nominal duration.
type DurationTable struct {
	Work       time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
}

// DefaultDurations returns the classic 25/5/15 minute table.
func DefaultDurations() DurationTable {
	return DurationTable{
		Work:       DefaultWorkDuration,
		ShortBreak: DefaultShortBreakDuration,
		LongBreak:  DefaultLongBreakDuration,
	}
}

// Duration returns the nominal duration of phase, or zero for unknown phases.
func (table DurationTable) Duration(phase Phase) time.Duration {
	switch phase {
	case PhaseWork:
		return table.Work
	case PhaseShortBreak:
		return table.ShortBreak
	case PhaseLongBreak:
		return table.LongBreak
	}
	return 0
}

// Nominal returns the nominal duration of phase in whole seconds.
func (table DurationTable) Nominal(phase Phase) int {
	return int(table.Duration(phase) / time.Second)
}

// StatusMapping holds the task status reported through the completion hook for
// each trigger that releases the bound task.
type StatusMapping struct {
	Paused        string
	Reset         string
	WorkCompleted string
	Detached      string
}

// DefaultStatusMapping reports the same status for every trigger.
func DefaultStatusMapping() StatusMapping {
	return StatusMapping{
		Paused:        DefaultTaskStatus,
		Reset:         DefaultTaskStatus,
		WorkCompleted: DefaultTaskStatus,
		Detached:      DefaultTaskStatus,
	}
}

// TimerConfig contains runtime settings for the timer state machine.
type TimerConfig struct {
	Durations             DurationTable
	CyclesBeforeLongBreak int
	StaleAfter            time.Duration
	Statuses              StatusMapping
}

// DefaultTimerConfig returns the default timer configuration.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Durations:             DefaultDurations(),
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
		StaleAfter:            DefaultStaleAfter,
		Statuses:              DefaultStatusMapping(),
	}
}

// Normalize replaces unset or invalid values with defaults.
func (config TimerConfig) Normalize() TimerConfig {
	defaults := DefaultTimerConfig()
	if config.Durations.Work < time.Second {
		config.Durations.Work = defaults.Durations.Work
	}
	if config.Durations.ShortBreak < time.Second {
		config.Durations.ShortBreak = defaults.Durations.ShortBreak
	}
	if config.Durations.LongBreak < time.Second {
		config.Durations.LongBreak = defaults.Durations.LongBreak
	}
	if config.CyclesBeforeLongBreak <= 0 {
		config.CyclesBeforeLongBreak = defaults.CyclesBeforeLongBreak
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = defaults.StaleAfter
	}
	if config.Statuses.Paused == "" {
		config.Statuses.Paused = defaults.Statuses.Paused
	}
	if config.Statuses.Reset == "" {
		config.Statuses.Reset = defaults.Statuses.Reset
	}
	if config.Statuses.WorkCompleted == "" {
		config.Statuses.WorkCompleted = defaults.Statuses.WorkCompleted
	}
	if config.Statuses.Detached == "" {
		config.Statuses.Detached = defaults.Statuses.Detached
	}
	return config
}

// NextPhase returns the phase that follows current once it completes.
// completedWorkSessions is the count after the completion has been recorded.
func (config TimerConfig) NextPhase(current Phase, completedWorkSessions int) Phase {
	if current.IsBreak() {
		return PhaseWork
	}
	cycles := config.CyclesBeforeLongBreak
	if cycles <= 0 {
		cycles = DefaultCyclesBeforeLongBreak
	}
	if completedWorkSessions > 0 && completedWorkSessions%cycles == 0 {
		return PhaseLongBreak
	}
	return PhaseShortBreak
}

// FormatRemaining renders seconds as mm:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
