package preferences

import (
	"testing"
	"time"

	"pomodesk/internal/core/model"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestSaveAppliesEditedValues(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	var saved model.Settings
	prefs := New(app, model.DefaultSettings(), func(settings model.Settings) {
		saved = settings
	})

	prefs.work.SetText("50")
	prefs.cycles.SetText("3")
	prefs.shortBreak.SetText("not a number")
	prefs.doneStatus.SetText(" done ")
	prefs.pausedStatus.SetText("")
	prefs.resetStatus.SetText("someday")
	prefs.backend.SetSelected(model.BackendSQLite)
	prefs.handleSave()

	assert.Equal(t, 50*time.Minute, saved.WorkDuration)
	assert.Equal(t, 3, saved.CyclesBeforeLongBreak)
	assert.Equal(t, model.DefaultShortBreakDuration, saved.ShortBreakDuration)
	assert.Equal(t, "done", saved.WorkCompletedStatus)
	assert.Equal(t, model.DefaultTaskStatus, saved.PausedStatus)
	assert.Equal(t, model.DefaultTaskStatus, saved.ResetStatus)
	assert.Equal(t, model.BackendSQLite, saved.SnapshotBackend)
}

func TestUpdateSettingsFillsForm(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	prefs := New(app, model.DefaultSettings(), nil)
	settings := model.DefaultSettings()
	settings.LongBreakDuration = 20 * time.Minute
	settings.MetricsAddr = "127.0.0.1:9464"
	prefs.UpdateSettings(settings)

	assert.Equal(t, "20", prefs.longBreak.Text)
	assert.Equal(t, "25", prefs.work.Text)
	assert.Equal(t, "127.0.0.1:9464", prefs.metricsAddr.Text)
	assert.Equal(t, model.BackendFile, prefs.backend.Selected)
}

func TestParsePositiveInt(t *testing.T) {
	value, ok := parsePositiveInt(" 15 ")
	assert.True(t, ok)
	assert.Equal(t, 15, value)

	_, ok = parsePositiveInt("0")
	assert.False(t, ok)
	_, ok = parsePositiveInt("x")
	assert.False(t, ok)
}
