// Package metrics exposes timer activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the timer metrics.
type Collector struct {
	phasesCompleted  *prometheus.CounterVec
	workSessions     prometheus.Counter
	tasksReleased    *prometheus.CounterVec
	hookFailures     prometheus.Counter
	remainingSeconds prometheus.Gauge
	running          prometheus.Gauge
	phase            *prometheus.GaugeVec
}

// NewCollector creates the collectors and registers them with registerer.
func NewCollector(registerer prometheus.Registerer) *Collector {
	collector := &Collector{
		phasesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomodesk_phases_completed_total",
			Help: "Completed phases by phase and whether they were skipped",
		}, []string{"phase", "skipped"}),
		workSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomodesk_work_sessions_total",
			Help: "Total number of completed work sessions",
		}),
		tasksReleased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pomodesk_tasks_released_total",
			Help: "Tasks released from the timer by reported status",
		}, []string{"status"}),
		hookFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pomodesk_task_update_failures_total",
			Help: "Task status updates that failed",
		}),
		remainingSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pomodesk_remaining_seconds",
			Help: "Seconds left in the current phase",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pomodesk_running",
			Help: "1 while the countdown is running",
		}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pomodesk_phase",
			Help: "1 for the active phase, 0 otherwise",
		}, []string{"phase"}),
	}

	registerer.MustRegister(
		collector.phasesCompleted,
		collector.workSessions,
		collector.tasksReleased,
		collector.hookFailures,
		collector.remainingSeconds,
		collector.running,
		collector.phase,
	)
	return collector
}

// Observe updates the metrics from a single timer event.
func (collector *Collector) Observe(event timer.Event) {
	switch event.Type {
	case timer.EventPhaseComplete:
		skipped := "false"
		if event.Skipped {
			skipped = "true"
		}
		collector.phasesCompleted.WithLabelValues(string(event.CompletedPhase), skipped).Inc()
		if event.CompletedPhase == model.PhaseWork {
			collector.workSessions.Inc()
		}
	case timer.EventTaskDetached:
		collector.tasksReleased.WithLabelValues(event.Status).Inc()
	case timer.EventHookFailed:
		collector.hookFailures.Inc()
	}

	collector.remainingSeconds.Set(event.Remaining.Seconds())
	if event.Running {
		collector.running.Set(1)
	} else {
		collector.running.Set(0)
	}
	for _, phase := range []model.Phase{model.PhaseWork, model.PhaseShortBreak, model.PhaseLongBreak} {
		value := 0.0
		if phase == event.Phase {
			value = 1
		}
		collector.phase.WithLabelValues(string(phase)).Set(value)
	}
}

// Run observes events until the channel is closed or ctx is done.
func (collector *Collector) Run(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			collector.Observe(event)
		}
	}
}

// Serve exposes gatherer on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
