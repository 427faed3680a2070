// Package app wires settings, storage, the task store and the timer engine
// into one explicitly owned instance.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"
	"pomodesk/internal/platform"
	"pomodesk/internal/storage"
	"pomodesk/internal/tasks"
)

// Name is the application name used for directories and the instance lock.
const Name = "pomodesk"

const databaseFileName = "pomodesk.db"

// Options configures Open.
type Options struct {
	DataDir string
	Logger  *log.Logger
}

// App is the composition root shared by the CLI and the GUI.
type App struct {
	DataDir   string
	Settings  model.Settings
	DB        *sql.DB
	Tasks     *tasks.Store
	Snapshots *storage.SnapshotStore
	Logger    *log.Logger
}

// Open loads settings and opens the database and snapshot slot.
func Open(options Options) (*App, error) {
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	dataDir, err := platform.DataDir(Name, options.DataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	settings, err := storage.LoadSettings(dataDir)
	if err != nil {
		logger.Printf("settings: %v (using defaults)", err)
	}

	db, err := storage.OpenDatabase(filepath.Join(dataDir, databaseFileName))
	if err != nil {
		return nil, err
	}

	taskStore, err := tasks.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	slot, err := openSlot(settings.SnapshotBackend, dataDir, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	config := settings.TimerConfig()
	snapshots := storage.NewSnapshotStore(slot, storage.SnapshotOptions{
		Durations:  config.Durations,
		StaleAfter: config.StaleAfter,
		Logger:     logger,
	})

	return &App{
		DataDir:   dataDir,
		Settings:  settings,
		DB:        db,
		Tasks:     taskStore,
		Snapshots: snapshots,
		Logger:    logger,
	}, nil
}

func openSlot(backend, dataDir string, db *sql.DB) (storage.Slot, error) {
	switch backend {
	case model.BackendSQLite:
		return storage.NewSQLiteSlot(db)
	case model.BackendFile, "":
		return storage.NewFileSlot(filepath.Join(dataDir, "state")), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}

// NewEngine creates the timer engine restored from the snapshot slot.
func (application *App) NewEngine(options timer.Options) *timer.Engine {
	if options.Logger == nil {
		options.Logger = application.Logger
	}
	return timer.New(application.Settings.TimerConfig(), application.Snapshots, options)
}

// UpdateSettings persists settings and applies the timer part to engine.
func (application *App) UpdateSettings(engine *timer.Engine, settings model.Settings) error {
	if err := storage.SaveSettings(application.DataDir, settings); err != nil {
		return err
	}
	application.Settings = settings
	config := settings.TimerConfig()
	application.Snapshots.UpdateConfig(config)
	if engine != nil {
		engine.UpdateConfig(config)
	}
	return nil
}

// AttachTask marks task as in progress and binds it to engine, with the task
// store as the completion hook. A different task already bound is detached
// first so it does not stay in progress. Hooks still running for taskID are
// awaited so their late update cannot overwrite the new status.
func (application *App) AttachTask(ctx context.Context, engine *timer.Engine, taskID string) (model.Task, error) {
	if current := engine.State().Task; current != nil && current.ID != taskID {
		engine.Detach()
	}
	engine.WaitForTask(taskID)

	task, err := application.Tasks.UpdateStatus(ctx, taskID, model.StatusUpdate{Status: model.TaskStatusInProgress})
	if err != nil {
		return model.Task{}, fmt.Errorf("attach task: %w", err)
	}
	engine.Attach(task.ID, task.Name, task.Description, application.Tasks.UpdateStatus)
	return task, nil
}

// Close releases the database.
func (application *App) Close() error {
	if application == nil || application.DB == nil {
		return nil
	}
	err := application.DB.Close()
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}
