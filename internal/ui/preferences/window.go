package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pomodesk/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      model.Settings
	onSave        func(model.Settings)
	work          *widget.Entry
	shortBreak    *widget.Entry
	longBreak     *widget.Entry
	cycles        *widget.Entry
	staleAfter    *widget.Entry
	pausedStatus  *widget.Entry
	resetStatus   *widget.Entry
	doneStatus    *widget.Entry
	detachStatus  *widget.Entry
	backend       *widget.RadioGroup
	metricsAddr   *widget.Entry
	restartNotice *widget.Label
}

// New creates a preferences window.
func New(app fyne.App, settings model.Settings, onSave func(model.Settings)) *Window {
	window := app.NewWindow("pomodesk Settings")

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		work:          widget.NewEntry(),
		shortBreak:    widget.NewEntry(),
		longBreak:     widget.NewEntry(),
		cycles:        widget.NewEntry(),
		staleAfter:    widget.NewEntry(),
		pausedStatus:  widget.NewEntry(),
		resetStatus:   widget.NewEntry(),
		doneStatus:    widget.NewEntry(),
		detachStatus:  widget.NewEntry(),
		backend:       widget.NewRadioGroup([]string{model.BackendFile, model.BackendSQLite}, nil),
		metricsAddr:   widget.NewEntry(),
		restartNotice: widget.NewLabel("Storage and metrics changes apply after a restart."),
	}
	prefs.backend.Horizontal = true
	prefs.metricsAddr.SetPlaceHolder("disabled (e.g. 127.0.0.1:9464)")

	form := widget.NewForm(
		widget.NewFormItem("Work (min)", prefs.work),
		widget.NewFormItem("Short break (min)", prefs.shortBreak),
		widget.NewFormItem("Long break (min)", prefs.longBreak),
		widget.NewFormItem("Long break every", prefs.cycles),
		widget.NewFormItem("Forget state after (min)", prefs.staleAfter),
	)
	statuses := widget.NewForm(
		widget.NewFormItem("On pause", prefs.pausedStatus),
		widget.NewFormItem("On reset", prefs.resetStatus),
		widget.NewFormItem("On work completed", prefs.doneStatus),
		widget.NewFormItem("On detach", prefs.detachStatus),
	)
	advanced := widget.NewForm(
		widget.NewFormItem("Timer state", prefs.backend),
		widget.NewFormItem("Metrics address", prefs.metricsAddr),
	)

	body := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		widget.NewLabelWithStyle("Task status reported", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		statuses,
		widget.NewLabelWithStyle("Advanced", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		advanced,
		prefs.restartNotice,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, container.NewVScroll(body)))
	window.Resize(fyne.NewSize(440, 560))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	prefs.settings = settings
	prefs.work.SetText(formatMinutes(settings.WorkDuration))
	prefs.shortBreak.SetText(formatMinutes(settings.ShortBreakDuration))
	prefs.longBreak.SetText(formatMinutes(settings.LongBreakDuration))
	prefs.cycles.SetText(strconv.Itoa(settings.CyclesBeforeLongBreak))
	prefs.staleAfter.SetText(formatMinutes(settings.StaleAfter))
	prefs.pausedStatus.SetText(settings.PausedStatus)
	prefs.resetStatus.SetText(settings.ResetStatus)
	prefs.doneStatus.SetText(settings.WorkCompletedStatus)
	prefs.detachStatus.SetText(settings.DetachedStatus)
	prefs.backend.SetSelected(settings.SnapshotBackend)
	prefs.metricsAddr.SetText(settings.MetricsAddr)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if minutes, ok := parsePositiveInt(prefs.work.Text); ok {
		settings.WorkDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.shortBreak.Text); ok {
		settings.ShortBreakDuration = time.Duration(minutes) * time.Minute
	}
	if minutes, ok := parsePositiveInt(prefs.longBreak.Text); ok {
		settings.LongBreakDuration = time.Duration(minutes) * time.Minute
	}
	if cycles, ok := parsePositiveInt(prefs.cycles.Text); ok {
		settings.CyclesBeforeLongBreak = cycles
	}
	if minutes, ok := parsePositiveInt(prefs.staleAfter.Text); ok {
		settings.StaleAfter = time.Duration(minutes) * time.Minute
	}

	settings.PausedStatus = statusOrDefault(prefs.pausedStatus.Text)
	settings.ResetStatus = statusOrDefault(prefs.resetStatus.Text)
	settings.WorkCompletedStatus = statusOrDefault(prefs.doneStatus.Text)
	settings.DetachedStatus = statusOrDefault(prefs.detachStatus.Text)

	if prefs.backend.Selected != "" {
		settings.SnapshotBackend = prefs.backend.Selected
	}
	settings.MetricsAddr = strings.TrimSpace(prefs.metricsAddr.Text)

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func formatMinutes(duration time.Duration) string {
	return fmt.Sprintf("%d", int(duration.Minutes()))
}

func statusOrDefault(value string) string {
	value = strings.TrimSpace(value)
	if !model.ValidTaskStatus(value) {
		return model.DefaultTaskStatus
	}
	return value
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
