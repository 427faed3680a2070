package app

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"
	"pomodesk/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestApp(t *testing.T, dir string) *App {
	t.Helper()
	application, err := Open(Options{DataDir: dir, Logger: log.New(&bytes.Buffer{}, "", 0)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	return application
}

func TestOpenWithDefaults(t *testing.T) {
	dir := t.TempDir()
	application := openTestApp(t, dir)

	assert.Equal(t, dir, application.DataDir)
	assert.Equal(t, model.DefaultSettings(), application.Settings)
	assert.NotNil(t, application.Tasks)
	assert.NotNil(t, application.Snapshots)
}

func TestEngineSurvivesRestart(t *testing.T) {
	for _, backend := range []string{model.BackendFile, model.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			settings := model.DefaultSettings()
			settings.SnapshotBackend = backend
			require.NoError(t, storage.SaveSettings(dir, settings))

			first, err := Open(Options{DataDir: dir, Logger: log.New(&bytes.Buffer{}, "", 0)})
			require.NoError(t, err)
			engine := first.NewEngine(timer.Options{TickInterval: time.Hour})
			engine.Skip()
			engine.Close()
			require.NoError(t, first.Close())

			second := openTestApp(t, dir)
			restored := second.NewEngine(timer.Options{TickInterval: time.Hour})
			defer restored.Close()

			state := restored.State()
			assert.Equal(t, model.PhaseShortBreak, state.Phase)
			assert.Equal(t, 300, state.RemainingSeconds)
			assert.Equal(t, 1, state.CompletedWorkSessions)
		})
	}
}

func TestAttachTaskUsesStoreAsHook(t *testing.T) {
	application := openTestApp(t, t.TempDir())
	ctx := context.Background()

	task, err := application.Tasks.Add(ctx, "Review PR", "")
	require.NoError(t, err)

	engine := application.NewEngine(timer.Options{TickInterval: time.Hour})
	defer engine.Close()

	attached, err := application.AttachTask(ctx, engine, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, attached.Status)
	assert.Equal(t, task.ID, engine.State().Task.ID)

	engine.Start()
	engine.Pause()
	engine.WaitForHooks()

	loaded, err := application.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusTodo, loaded.Status)
	assert.Nil(t, engine.State().Task)
}

func TestAttachTaskReleasesReplacedTask(t *testing.T) {
	application := openTestApp(t, t.TempDir())
	ctx := context.Background()

	first, err := application.Tasks.Add(ctx, "Write report", "")
	require.NoError(t, err)
	second, err := application.Tasks.Add(ctx, "Answer mail", "")
	require.NoError(t, err)

	engine := application.NewEngine(timer.Options{TickInterval: time.Hour})
	defer engine.Close()

	_, err = application.AttachTask(ctx, engine, first.ID)
	require.NoError(t, err)
	_, err = application.AttachTask(ctx, engine, second.ID)
	require.NoError(t, err)
	engine.WaitForHooks()

	loaded, err := application.Tasks.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusTodo, loaded.Status)
	loaded, err = application.Tasks.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, loaded.Status)
	assert.Equal(t, second.ID, engine.State().Task.ID)

	engine.Start()
	engine.Pause()
	engine.WaitForHooks()

	for _, id := range []string{first.ID, second.ID} {
		loaded, err := application.Tasks.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.TaskStatusTodo, loaded.Status, id)
	}
}

func TestReattachAfterPauseKeepsTaskInProgress(t *testing.T) {
	application := openTestApp(t, t.TempDir())
	ctx := context.Background()

	task, err := application.Tasks.Add(ctx, "Refactor parser", "")
	require.NoError(t, err)

	engine := application.NewEngine(timer.Options{TickInterval: time.Hour})
	defer engine.Close()

	_, err = application.AttachTask(ctx, engine, task.ID)
	require.NoError(t, err)
	engine.Start()
	engine.Pause()
	_, err = application.AttachTask(ctx, engine, task.ID)
	require.NoError(t, err)
	engine.WaitForHooks()

	loaded, err := application.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, loaded.Status)
	assert.Equal(t, task.ID, engine.State().Task.ID)
}

func TestAttachMissingTask(t *testing.T) {
	application := openTestApp(t, t.TempDir())
	engine := application.NewEngine(timer.Options{TickInterval: time.Hour})
	defer engine.Close()

	_, err := application.AttachTask(context.Background(), engine, "missing")
	assert.Error(t, err)
	assert.Nil(t, engine.State().Task)
}

func TestUpdateSettings(t *testing.T) {
	dir := t.TempDir()
	application := openTestApp(t, dir)
	engine := application.NewEngine(timer.Options{TickInterval: time.Hour})
	defer engine.Close()

	settings := application.Settings
	settings.WorkDuration = 45 * time.Minute
	settings.WorkCompletedStatus = model.TaskStatusDone
	require.NoError(t, application.UpdateSettings(engine, settings))

	assert.Equal(t, 2700, engine.State().RemainingSeconds)
	assert.Equal(t, model.TaskStatusDone, engine.Config().Statuses.WorkCompleted)

	reloaded, err := storage.LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, settings, reloaded)
}
