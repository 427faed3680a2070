package timerview

import (
	"fmt"
	"image/color"

	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines timer window action handlers.
type Callbacks struct {
	OnStartPause func()
	OnReset      func()
	OnSkip       func()
	OnAttach     func(task model.Task)
	OnDetach     func()
	OnAddTask    func(name string)
}

// Window shows the countdown, the bound task and the timer controls.
type Window struct {
	window        fyne.Window
	callbacks     Callbacks
	phaseLabel    *widget.Label
	timerText     *canvas.Text
	progress      *widget.ProgressBar
	sessionsLabel *widget.Label
	taskLabel     *widget.Label
	startButton   *widget.Button
	detachButton  *widget.Button
	taskSelect    *widget.Select
	newTask       *widget.Entry
	tasks         []model.Task
}

var phaseColors = map[model.Phase]color.NRGBA{
	model.PhaseWork:       {R: 217, G: 83, B: 79, A: 255},
	model.PhaseShortBreak: {R: 92, G: 184, B: 92, A: 255},
	model.PhaseLongBreak:  {R: 66, G: 139, B: 202, A: 255},
}

// New creates the timer window.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("pomodesk")

	view := &Window{
		window:        window,
		callbacks:     callbacks,
		phaseLabel:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		timerText:     canvas.NewText("--:--", phaseColors[model.PhaseWork]),
		progress:      widget.NewProgressBar(),
		sessionsLabel: widget.NewLabel(""),
		taskLabel:     widget.NewLabel("No task attached"),
		newTask:       widget.NewEntry(),
	}
	view.timerText.Alignment = fyne.TextAlignCenter
	view.timerText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.timerText.TextSize = 56
	view.taskLabel.Wrapping = fyne.TextWrapWord

	view.startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		if view.callbacks.OnStartPause != nil {
			view.callbacks.OnStartPause()
		}
	})
	resetButton := widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), func() {
		if view.callbacks.OnReset != nil {
			view.callbacks.OnReset()
		}
	})
	skipButton := widget.NewButtonWithIcon("Skip", theme.MediaSkipNextIcon(), func() {
		if view.callbacks.OnSkip != nil {
			view.callbacks.OnSkip()
		}
	})

	view.taskSelect = widget.NewSelect(nil, func(name string) {
		task, ok := view.taskByName(name)
		if ok && view.callbacks.OnAttach != nil {
			view.callbacks.OnAttach(task)
		}
	})
	view.taskSelect.PlaceHolder = "Attach a task"

	view.detachButton = widget.NewButton("Detach", func() {
		if view.callbacks.OnDetach != nil {
			view.callbacks.OnDetach()
		}
	})
	view.detachButton.Disable()

	view.newTask.SetPlaceHolder("New task")
	view.newTask.OnSubmitted = view.submitTask
	addButton := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		view.submitTask(view.newTask.Text)
	})

	controls := container.NewHBox(layout.NewSpacer(), view.startButton, resetButton, skipButton, layout.NewSpacer())
	taskRow := container.NewBorder(nil, nil, nil, view.detachButton, view.taskSelect)
	addRow := container.NewBorder(nil, nil, nil, addButton, view.newTask)

	content := container.NewVBox(
		view.phaseLabel,
		view.timerText,
		view.progress,
		controls,
		view.sessionsLabel,
		widget.NewSeparator(),
		view.taskLabel,
		taskRow,
		addRow,
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(360, 420))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	return view
}

// Show displays the window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Update renders the engine state. Call from the fyne goroutine.
func (view *Window) Update(status timer.Status, nominalSeconds int) {
	view.phaseLabel.SetText(status.Phase.Label())
	view.timerText.Text = model.FormatRemaining(status.RemainingSeconds)
	if phaseColor, ok := phaseColors[status.Phase]; ok {
		view.timerText.Color = phaseColor
	}
	view.timerText.Refresh()

	if nominalSeconds > 0 {
		view.progress.SetValue(float64(nominalSeconds-status.RemainingSeconds) / float64(nominalSeconds))
	}

	if status.Running {
		view.startButton.SetText("Pause")
		view.startButton.SetIcon(theme.MediaPauseIcon())
	} else {
		view.startButton.SetText("Start")
		view.startButton.SetIcon(theme.MediaPlayIcon())
	}

	view.sessionsLabel.SetText(fmt.Sprintf("Completed work sessions: %d", status.CompletedWorkSessions))

	if status.Task == nil {
		view.taskLabel.SetText("No task attached")
		view.detachButton.Disable()
		view.taskSelect.ClearSelected()
		return
	}
	text := "Working on: " + status.Task.Name
	if status.Task.Description != "" {
		text += "\n" + status.Task.Description
	}
	view.taskLabel.SetText(text)
	view.detachButton.Enable()
}

// SetTasks replaces the attachable tasks.
func (view *Window) SetTasks(tasks []model.Task) {
	view.tasks = tasks
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	view.taskSelect.Options = names
	view.taskSelect.Refresh()
}

func (view *Window) taskByName(name string) (model.Task, bool) {
	for _, task := range view.tasks {
		if task.Name == name {
			return task, true
		}
	}
	return model.Task{}, false
}

func (view *Window) submitTask(name string) {
	if name == "" {
		return
	}
	view.newTask.SetText("")
	if view.callbacks.OnAddTask != nil {
		view.callbacks.OnAddTask(name)
	}
}
