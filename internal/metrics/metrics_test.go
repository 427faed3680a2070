package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"pomodesk/internal/core/model"
	"pomodesk/internal/core/timer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)

	assert.NotNil(t, collector)
	assert.Panics(t, func() { NewCollector(registry) }, "duplicate registration should panic")
}

func TestObservePhaseCompletion(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.Observe(timer.Event{Type: timer.EventPhaseComplete, CompletedPhase: model.PhaseWork, Phase: model.PhaseShortBreak, Remaining: 300 * time.Second})
	collector.Observe(timer.Event{Type: timer.EventPhaseComplete, CompletedPhase: model.PhaseShortBreak, Phase: model.PhaseWork, Skipped: true})

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.workSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phasesCompleted.WithLabelValues("work", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phasesCompleted.WithLabelValues("short_break", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phase.WithLabelValues("work")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.phase.WithLabelValues("short_break")))
}

func TestObserveTaskEvents(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	collector.Observe(timer.Event{Type: timer.EventTaskDetached, Status: "todo", Phase: model.PhaseWork})
	collector.Observe(timer.Event{Type: timer.EventHookFailed, Status: "todo", Phase: model.PhaseWork})
	collector.Observe(timer.Event{Type: timer.EventProgress, Phase: model.PhaseWork, Running: true, Remaining: 42 * time.Second})

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.tasksReleased.WithLabelValues("todo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.hookFailures))
	assert.Equal(t, 42.0, testutil.ToFloat64(collector.remainingSeconds))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.running))
}

func TestRunConsumesEngineEvents(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	engine := timer.New(model.DefaultTimerConfig(), nil, timer.Options{TickInterval: time.Hour})
	events := engine.Subscribe(64)

	done := make(chan struct{})
	go func() {
		collector.Run(context.Background(), events)
		close(done)
	}()

	for i := 0; i < 4; i++ {
		engine.Skip()
		engine.Skip()
	}
	engine.Close()
	<-done

	assert.Equal(t, 4.0, testutil.ToFloat64(collector.workSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phasesCompleted.WithLabelValues("long_break", "true")))
}

func TestServeExposesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(registry)
	collector.Observe(timer.Event{Type: timer.EventPhaseComplete, CompletedPhase: model.PhaseWork, Phase: model.PhaseShortBreak})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- Serve(ctx, addr, registry) }()

	var body string
	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, body, "pomodesk_work_sessions_total 1")

	cancel()
	assert.NoError(t, <-served)
}
