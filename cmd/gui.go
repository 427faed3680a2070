package main

import (
	"context"
	"fmt"
	"log"
	"time"

	pomodesk "pomodesk/internal/app"
	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"
	"pomodesk/internal/metrics"
	"pomodesk/internal/platform"
	"pomodesk/internal/tasks"
	"pomodesk/internal/ui/preferences"
	"pomodesk/internal/ui/timerview"
	"pomodesk/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/prometheus/client_golang/prometheus"
)

func runDesktop(application *pomodesk.App) error {
	guard, err := platform.AcquireInstanceLock(pomodesk.Name)
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := application.NewEngine(timer.Options{TickInterval: time.Second})
	defer engine.Close()

	recorder := tasks.NewRecorder(application.Tasks, application.Logger)
	go recorder.Run(ctx, engine.Subscribe(16))

	if addr := application.Settings.MetricsAddr; addr != "" {
		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(registry)
		go collector.Run(ctx, engine.Subscribe(16))
		go func() {
			if err := metrics.Serve(ctx, addr, registry); err != nil {
				log.Printf("metrics: %v", err)
			}
		}()
	}

	fyneApp := app.NewWithID("com.pomodesk.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return fmt.Errorf("system tray unsupported on this platform")
	}

	trayWindow := fyneApp.NewWindow("pomodesk")
	trayWindow.SetContent(widget.NewLabel("pomodesk is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	var view *timerview.Window
	refreshTasks := func() {
		list, err := application.Tasks.List(ctx, "")
		if err != nil {
			log.Printf("tasks: %v", err)
			return
		}
		open := list[:0]
		for _, task := range list {
			if task.Status != model.TaskStatusDone {
				open = append(open, task)
			}
		}
		view.SetTasks(open)
	}

	view = timerview.New(fyneApp, timerview.Callbacks{
		OnStartPause: engine.StartPause,
		OnReset:      engine.Reset,
		OnSkip:       engine.Skip,
		OnAttach: func(task model.Task) {
			if _, err := application.AttachTask(ctx, engine, task.ID); err != nil {
				log.Printf("attach: %v", err)
			}
		},
		OnDetach: engine.Detach,
		OnAddTask: func(name string) {
			if _, err := application.Tasks.Add(ctx, name, ""); err != nil {
				log.Printf("add task: %v", err)
				return
			}
			refreshTasks()
		},
	})

	prefsWindow := preferences.New(fyneApp, application.Settings, func(updated model.Settings) {
		if err := application.UpdateSettings(engine, updated); err != nil {
			log.Printf("save settings: %v", err)
		}
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnShow:        view.Show,
		OnStartPause:  engine.StartPause,
		OnReset:       engine.Reset,
		OnSkip:        engine.Skip,
		OnPreferences: prefsWindow.Show,
		OnQuit:        fyneApp.Quit,
	})

	render := func(status timer.Status) {
		nominal := engine.Config().Durations.Nominal(status.Phase)
		view.Update(status, nominal)
		trayManager.SetStatus(fmt.Sprintf("%s %s", status.Phase.Label(), model.FormatRemaining(status.RemainingSeconds)))
		trayManager.SetRunning(status.Running)
	}

	events := engine.Subscribe(8)
	go func() {
		for event := range events {
			if event.Type == timer.EventTaskUpdated || event.Type == timer.EventHookFailed {
				fyne.Do(refreshTasks)
			}
			status := engine.State()
			fyne.Do(func() {
				render(status)
			})
		}
	}()

	refreshTasks()
	render(engine.State())
	view.Show()
	fyneApp.Run()
	return nil
}
