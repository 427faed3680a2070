package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pomodesk/internal/core/model"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlStatuses struct {
	Paused        string `yaml:"paused"`
	Reset         string `yaml:"reset"`
	WorkCompleted string `yaml:"work_completed"`
	Detached      string `yaml:"detached"`
}

type yamlSettings struct {
	WorkMinutes           int          `yaml:"work_minutes"`
	ShortBreakMinutes     int          `yaml:"short_break_minutes"`
	LongBreakMinutes      int          `yaml:"long_break_minutes"`
	CyclesBeforeLongBreak int          `yaml:"cycles_before_long_break"`
	StaleAfterMinutes     int          `yaml:"stale_after_minutes"`
	TaskStatuses          yamlStatuses `yaml:"task_statuses"`
	SnapshotBackend       string       `yaml:"snapshot_backend"`
	MetricsAddr           string       `yaml:"metrics_addr"`
}

// LoadSettings reads user preferences from settings.yaml inside dir.
// If the file does not exist, default settings are returned.
func LoadSettings(dir string) (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(filepath.Join(dir, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to settings.yaml inside dir.
func SaveSettings(dir string, settings model.Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		WorkMinutes:           int(settings.WorkDuration / time.Minute),
		ShortBreakMinutes:     int(settings.ShortBreakDuration / time.Minute),
		LongBreakMinutes:      int(settings.LongBreakDuration / time.Minute),
		CyclesBeforeLongBreak: settings.CyclesBeforeLongBreak,
		StaleAfterMinutes:     int(settings.StaleAfter / time.Minute),
		TaskStatuses: yamlStatuses{
			Paused:        settings.PausedStatus,
			Reset:         settings.ResetStatus,
			WorkCompleted: settings.WorkCompletedStatus,
			Detached:      settings.DetachedStatus,
		},
		SnapshotBackend: settings.SnapshotBackend,
		MetricsAddr:     settings.MetricsAddr,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, settingsFileName), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if fileData.WorkMinutes > 0 {
		settings.WorkDuration = time.Duration(fileData.WorkMinutes) * time.Minute
	}
	if fileData.ShortBreakMinutes > 0 {
		settings.ShortBreakDuration = time.Duration(fileData.ShortBreakMinutes) * time.Minute
	}
	if fileData.LongBreakMinutes > 0 {
		settings.LongBreakDuration = time.Duration(fileData.LongBreakMinutes) * time.Minute
	}
	if fileData.CyclesBeforeLongBreak > 0 {
		settings.CyclesBeforeLongBreak = fileData.CyclesBeforeLongBreak
	}
	if fileData.StaleAfterMinutes > 0 {
		settings.StaleAfter = time.Duration(fileData.StaleAfterMinutes) * time.Minute
	}

	if model.ValidTaskStatus(fileData.TaskStatuses.Paused) {
		settings.PausedStatus = fileData.TaskStatuses.Paused
	}
	if model.ValidTaskStatus(fileData.TaskStatuses.Reset) {
		settings.ResetStatus = fileData.TaskStatuses.Reset
	}
	if model.ValidTaskStatus(fileData.TaskStatuses.WorkCompleted) {
		settings.WorkCompletedStatus = fileData.TaskStatuses.WorkCompleted
	}
	if model.ValidTaskStatus(fileData.TaskStatuses.Detached) {
		settings.DetachedStatus = fileData.TaskStatuses.Detached
	}

	switch fileData.SnapshotBackend {
	case model.BackendFile, model.BackendSQLite:
		settings.SnapshotBackend = fileData.SnapshotBackend
	}
	settings.MetricsAddr = fileData.MetricsAddr
}
