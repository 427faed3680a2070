package timer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pomodesk/internal/core/model"
)

// Persister saves and restores timer snapshots. Implementations handle their
// own failures; the engine never sees a persistence error.
type Persister interface {
	Save(snapshot model.Snapshot)
	Load() (model.Snapshot, bool)
}

// Logger is the subset of *log.Logger used by the engine.
type Logger interface {
	Printf(format string, args ...any)
}

// Options contains runtime options for the Engine.
type Options struct {
	TickInterval time.Duration
	HookTimeout  time.Duration
	Logger       Logger
	Now          func() time.Time
}

// Status is a read-only view of the engine state.
type Status struct {
	Phase                 model.Phase
	RemainingSeconds      int
	Running               bool
	CompletedWorkSessions int
	Task                  *BoundTask
}

// Remaining returns the remaining time as a duration.
func (status Status) Remaining() time.Duration {
	return time.Duration(status.RemainingSeconds) * time.Second
}

// Engine is the pomodoro state machine. It owns the phase, the countdown, the
// completed-session counter and the task binding; all mutation goes through
// its methods and every mutation is persisted before the method returns.
type Engine struct {
	mu      sync.Mutex
	config  model.TimerConfig
	options Options
	store   Persister

	phase     model.Phase
	remaining int
	running   bool
	completed int
	binding   binding

	ticker  *Ticker
	tickGen uint64

	events []chan Event
	closed bool

	// In-flight completion hooks, total and per task ID.
	hooksRunning int
	hooksByTask  map[string]int
	hookDone     *sync.Cond
}

// New creates an engine, restoring state from store when a usable snapshot
// exists. A restored running snapshot resumes ticking immediately.
func New(config model.TimerConfig, store Persister, options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.HookTimeout <= 0 {
		options.HookTimeout = 10 * time.Second
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if store == nil {
		store = nopPersister{}
	}

	engine := &Engine{
		config:  config.Normalize(),
		options: options,
		store:   store,
		ticker:  NewTicker(options.TickInterval),

		hooksByTask: make(map[string]int),
	}
	engine.hookDone = sync.NewCond(&engine.mu)

	snapshot, ok := store.Load()
	if !ok {
		snapshot = model.FreshSnapshot(engine.config.Durations)
	}
	engine.phase = snapshot.Phase
	engine.remaining = snapshot.RemainingSeconds
	engine.running = snapshot.Running
	engine.completed = snapshot.CompletedWorkSessions

	if engine.running {
		engine.armTickerLocked()
	}
	return engine
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the timer.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	return ch
}

// State returns the current phase, countdown, running flag, session count
// and bound task.
func (engine *Engine) State() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.statusLocked()
}

// Config returns the active timer configuration.
func (engine *Engine) Config() model.TimerConfig {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.config
}

// StartPause toggles the running flag. Pausing releases the bound task.
func (engine *Engine) StartPause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	if engine.running {
		engine.pauseLocked()
	} else {
		engine.startLocked()
	}
}

// Start resumes the countdown. It is a no-op when already running.
func (engine *Engine) Start() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed || engine.running {
		return
	}
	engine.startLocked()
}

// Pause stops the countdown and releases the bound task. It is a no-op when
// already paused.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed || !engine.running {
		return
	}
	engine.pauseLocked()
}

// Reset releases the bound task, stops the countdown and restores the full
// duration of the current phase. Phase and session count are kept.
func (engine *Engine) Reset() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}

	engine.detachLocked(engine.config.Statuses.Reset)
	engine.running = false
	engine.cancelTickerLocked()
	engine.remaining = engine.config.Durations.Nominal(engine.phase)

	engine.store.Save(engine.snapshotLocked())
	engine.emitStateLocked(EventStateChange)
}

// Skip moves to the next phase immediately, regardless of remaining time.
func (engine *Engine) Skip() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	engine.transitionLocked(engine.remaining > 0)
}

// Tick advances the countdown by one second. It only acts while running and
// completes the phase once the countdown reaches zero.
func (engine *Engine) Tick() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.tickLocked(engine.tickGen)
}

// Attach binds a task to the timer, replacing any current binding without
// notifying the replaced task.
func (engine *Engine) Attach(taskID, name, description string, onComplete CompleteFunc) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	engine.binding.attach(BoundTask{ID: taskID, Name: name, Description: description}, onComplete)
	engine.emitStateLocked(EventStateChange)
}

// Detach releases the bound task. It is a no-op when nothing is bound.
func (engine *Engine) Detach() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	if engine.detachLocked(engine.config.Statuses.Detached) {
		engine.emitStateLocked(EventStateChange)
	}
}

// UpdateConfig applies new durations, cycle length and status mapping. A paused
// timer sitting at the full old duration moves to the full new duration;
// otherwise the countdown is clamped to the new duration.
func (engine *Engine) UpdateConfig(config model.TimerConfig) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}

	config = config.Normalize()
	oldNominal := engine.config.Durations.Nominal(engine.phase)
	newNominal := config.Durations.Nominal(engine.phase)
	engine.config = config

	if !engine.running && engine.remaining == oldNominal {
		engine.remaining = newNominal
	}
	if engine.remaining > newNominal {
		engine.remaining = newNominal
	}

	engine.store.Save(engine.snapshotLocked())
	engine.emitStateLocked(EventStateChange)
}

// WaitForHooks blocks until every started completion hook has returned.
func (engine *Engine) WaitForHooks() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	for engine.hooksRunning > 0 {
		engine.hookDone.Wait()
	}
}

// WaitForTask blocks until the completion hooks started for taskID have
// returned. Callers writing the task's status themselves use it so a late hook
// cannot overwrite their update.
func (engine *Engine) WaitForTask(taskID string) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	for engine.hooksByTask[taskID] > 0 {
		engine.hookDone.Wait()
	}
}

// Close stops the countdown, waits for in-flight completion hooks and closes
// observer channels. The engine ignores all operations afterwards.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.closed = true
	engine.cancelTickerLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	engine.ticker.Wait()
	engine.WaitForHooks()
	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) startLocked() {
	engine.running = true
	engine.armTickerLocked()
	engine.store.Save(engine.snapshotLocked())
	engine.emitStateLocked(EventStateChange)
}

func (engine *Engine) pauseLocked() {
	engine.running = false
	engine.cancelTickerLocked()
	engine.detachLocked(engine.config.Statuses.Paused)
	engine.store.Save(engine.snapshotLocked())
	engine.emitStateLocked(EventStateChange)
}

func (engine *Engine) tickLocked(gen uint64) {
	if engine.closed || gen != engine.tickGen || !engine.running {
		return
	}

	if engine.remaining > 0 {
		engine.remaining--
	}
	if engine.remaining <= 0 {
		engine.remaining = 0
		engine.transitionLocked(false)
		return
	}

	engine.store.Save(engine.snapshotLocked())
	engine.emitStateLocked(EventProgress)
}

// transitionLocked completes the current phase. Work completion releases the
// bound task before the new phase is committed and persisted.
func (engine *Engine) transitionLocked(skipped bool) {
	completedPhase := engine.phase
	elapsed := time.Duration(engine.config.Durations.Nominal(completedPhase)-engine.remaining) * time.Second
	if elapsed < 0 {
		elapsed = 0
	}

	engine.running = false
	engine.cancelTickerLocked()

	var taskID string
	if completedPhase == model.PhaseWork {
		if task := engine.binding.snapshot(); task != nil {
			taskID = task.ID
		}
		engine.detachLocked(engine.config.Statuses.WorkCompleted)
		engine.completed++
	}

	engine.phase = engine.config.NextPhase(completedPhase, engine.completed)
	engine.remaining = engine.config.Durations.Nominal(engine.phase)
	engine.store.Save(engine.snapshotLocked())

	event := engine.eventLocked(EventPhaseComplete)
	event.CompletedPhase = completedPhase
	event.Elapsed = elapsed
	event.Skipped = skipped
	event.TaskID = taskID
	engine.emitLocked(event)
	engine.emitStateLocked(EventStateChange)
}

// detachLocked clears the binding and, when a hook was supplied, starts it
// without waiting for the result. It reports whether a task was bound.
func (engine *Engine) detachLocked(status string) bool {
	task, hook, ok := engine.binding.release()
	if !ok {
		return false
	}

	event := engine.eventLocked(EventTaskDetached)
	event.TaskID = task.ID
	event.TaskName = task.Name
	event.Status = status
	engine.emitLocked(event)

	if hook != nil {
		engine.hooksRunning++
		engine.hooksByTask[task.ID]++
		go engine.runHook(task, status, hook)
	}
	return true
}

func (engine *Engine) runHook(task BoundTask, status string, hook CompleteFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), engine.options.HookTimeout)
	defer cancel()

	err := callHook(ctx, hook, task.ID, model.StatusUpdate{Status: status})
	if err != nil {
		engine.options.Logger.Printf("timer: update task %s to %q: %v", task.ID, status, err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.hooksRunning--
	engine.hooksByTask[task.ID]--
	if engine.hooksByTask[task.ID] <= 0 {
		delete(engine.hooksByTask, task.ID)
	}

	eventType := EventTaskUpdated
	if err != nil {
		eventType = EventHookFailed
	}
	event := engine.eventLocked(eventType)
	event.TaskID = task.ID
	event.TaskName = task.Name
	event.Status = status
	if err != nil {
		event.Message = err.Error()
	}
	engine.emitLocked(event)
	engine.hookDone.Broadcast()
}

func callHook(ctx context.Context, hook CompleteFunc, taskID string, update model.StatusUpdate) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("completion hook panicked: %v", recovered)
		}
	}()
	_, err = hook(ctx, taskID, update)
	return err
}

func (engine *Engine) armTickerLocked() {
	engine.tickGen++
	gen := engine.tickGen
	engine.ticker.Arm(func(time.Time) {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		engine.tickLocked(gen)
	})
}

// cancelTickerLocked stops the loop and invalidates any tick already waiting
// for the lock.
func (engine *Engine) cancelTickerLocked() {
	engine.tickGen++
	engine.ticker.Cancel()
}

func (engine *Engine) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		Phase:                 engine.phase,
		RemainingSeconds:      engine.remaining,
		Running:               engine.running,
		CompletedWorkSessions: engine.completed,
	}
}

func (engine *Engine) statusLocked() Status {
	return Status{
		Phase:                 engine.phase,
		RemainingSeconds:      engine.remaining,
		Running:               engine.running,
		CompletedWorkSessions: engine.completed,
		Task:                  engine.binding.snapshot(),
	}
}

func (engine *Engine) progressLocked() float64 {
	total := engine.config.Durations.Nominal(engine.phase)
	if total <= 0 {
		return 1
	}
	progress := float64(total-engine.remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (engine *Engine) eventLocked(eventType EventType) Event {
	event := Event{
		Type:                  eventType,
		Phase:                 engine.phase,
		Remaining:             time.Duration(engine.remaining) * time.Second,
		Progress:              engine.progressLocked(),
		Running:               engine.running,
		CompletedWorkSessions: engine.completed,
		At:                    engine.options.Now(),
	}
	if task := engine.binding.snapshot(); task != nil {
		event.TaskID = task.ID
		event.TaskName = task.Name
	}
	return event
}

func (engine *Engine) emitStateLocked(eventType EventType) {
	engine.emitLocked(engine.eventLocked(eventType))
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

type nopPersister struct{}

func (nopPersister) Save(model.Snapshot) {}

func (nopPersister) Load() (model.Snapshot, bool) { return model.Snapshot{}, false }
