package timekeeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"codepomodoro/internal/core/model"
)

// DefaultStateKey is the persisted store key of the session record.
const DefaultStateKey = "pomodoroState"

// ActionStartNext is offered with the phase-complete notification.
const ActionStartNext = "Start Next"

const persistTimeout = 2 * time.Second

// ConfigSource returns the current timer settings.
type ConfigSource interface {
	Config() model.Config
}

// StaticConfig is a ConfigSource that never changes.
type StaticConfig model.Config

// Config implements ConfigSource.
func (config StaticConfig) Config() model.Config {
	return model.Config(config)
}

// StateStore persists the session record between runs.
type StateStore interface {
	Save(ctx context.Context, key string, state model.SessionState) error
	Load(ctx context.Context, key string) (model.SessionState, bool, error)
}

// HistoryRecorder keeps a log of completed phases.
type HistoryRecorder interface {
	RecordCompletion(ctx context.Context, session model.SessionType, at time.Time) error
}

// Notifier shows user-facing messages.
// NotifyWithAction blocks until the user picks an action or dismisses the message.
type Notifier interface {
	Notify(message string)
	NotifyWithAction(message string, actions ...string) (string, bool)
}

// Dependencies are the collaborators of a TimeKeeper. Only Settings is required.
type Dependencies struct {
	Settings ConfigSource
	Store    StateStore
	History  HistoryRecorder
	Notifier Notifier
}

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval   time.Duration
	AutoStartDelay time.Duration
	StateKey       string
	Scheduler      Scheduler
	Now            func() time.Time
	Logger         *slog.Logger
}

// TimeKeeper is the pomodoro session engine. It owns the session record,
// the one-second cadence and the deferred auto-start.
type TimeKeeper struct {
	mu      sync.Mutex
	deps    Dependencies
	options Config
	state   model.SessionState
	events  []chan Event
	closed  bool

	cadenceStop   CancelFunc
	cadenceGen    uint64
	autoStartStop CancelFunc
	autoStartGen  uint64
}

// New creates a TimeKeeper, restoring the persisted record when present.
func New(deps Dependencies, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.AutoStartDelay <= 0 {
		options.AutoStartDelay = time.Second
	}
	if options.StateKey == "" {
		options.StateKey = DefaultStateKey
	}
	if options.Scheduler == nil {
		options.Scheduler = NewScheduler()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if deps.Settings == nil {
		deps.Settings = StaticConfig(model.DefaultConfig())
	}

	keeper := &TimeKeeper{
		deps:    deps,
		options: options,
	}
	keeper.state = keeper.restore()
	return keeper
}

func (keeper *TimeKeeper) restore() model.SessionState {
	config := keeper.configLocked()
	if keeper.deps.Store == nil {
		return model.DefaultState(config)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	loaded, ok, err := keeper.deps.Store.Load(ctx, keeper.options.StateKey)
	if err != nil {
		keeper.options.Logger.Warn("load session state", "error", err)
		return model.DefaultState(config)
	}
	if !ok {
		return model.DefaultState(config)
	}
	return model.Restore(loaded, config, keeper.options.Now())
}

// Subscribe registers a new observer channel. When the buffer is full the
// oldest pending event is dropped so observers always see the latest snapshot.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		close(ch)
		return ch
	}
	keeper.events = append(keeper.events, ch)
	return ch
}

// Unsubscribe removes and closes an observer channel.
func (keeper *TimeKeeper) Unsubscribe(events <-chan Event) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	for index, ch := range keeper.events {
		if ch == events {
			keeper.events = append(keeper.events[:index], keeper.events[index+1:]...)
			close(ch)
			return
		}
	}
}

// Snapshot returns the current state and config.
func (keeper *TimeKeeper) Snapshot() model.Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked()
}

// IsRunning reports whether the cadence is active.
func (keeper *TimeKeeper) IsRunning() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state.IsRunning
}

// Refresh republishes the current snapshot. The daily counter is cleared
// first when the calendar day has changed.
func (keeper *TimeKeeper) Refresh() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		return
	}
	countedOn := keeper.state.CountedOn
	keeper.state.RollDay(keeper.options.Now())
	if keeper.state.CountedOn != countedOn {
		keeper.commitLocked(EventRefresh)
		return
	}
	keeper.publishLocked(EventRefresh)
}

// Start begins the cadence for the current phase. No-op when running.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	if keeper.closed || keeper.state.IsRunning {
		keeper.mu.Unlock()
		return
	}
	keeper.startLocked()
	message := fmt.Sprintf("🍅 %s session started!", keeper.state.CurrentSession.DisplayName())
	keeper.mu.Unlock()

	keeper.notify(message)
}

// Pause halts the cadence and keeps the remaining time. No-op when not running.
func (keeper *TimeKeeper) Pause() {
	keeper.mu.Lock()
	if keeper.closed || !keeper.state.IsRunning {
		keeper.mu.Unlock()
		return
	}
	keeper.haltLocked()
	keeper.state.IsPaused = true
	keeper.commitLocked(EventPaused)
	keeper.mu.Unlock()

	keeper.notify("⏸️ Pomodoro paused.")
}

// Toggle pauses a running timer and starts an idle one.
func (keeper *TimeKeeper) Toggle() {
	if keeper.IsRunning() {
		keeper.Pause()
		return
	}
	keeper.Start()
}

// Reset clears the cycle counter and returns to a full work phase.
func (keeper *TimeKeeper) Reset() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.haltLocked()
	keeper.state.CompletedWorkSessions = 0
	keeper.resetSessionLocked(model.SessionWork, keeper.configLocked())
	keeper.commitLocked(EventReset)
	keeper.mu.Unlock()

	keeper.notify("🔄 Pomodoro reset.")
}

// Skip moves to the next phase without counting the current one and
// without auto-starting.
func (keeper *TimeKeeper) Skip() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.haltLocked()
	keeper.nextSessionLocked(false, EventSkipped)
	message := fmt.Sprintf("⏭️ Skipped to %s.", keeper.state.CurrentSession.DisplayName())
	keeper.mu.Unlock()

	keeper.notify(message)
}

// StartSession jumps to the given phase with its full duration and starts it.
func (keeper *TimeKeeper) StartSession(session model.SessionType) {
	if !session.Valid() {
		return
	}
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	keeper.haltLocked()
	keeper.resetSessionLocked(session, keeper.configLocked())
	keeper.startLocked()
	message := fmt.Sprintf("🍅 %s session started!", session.DisplayName())
	keeper.mu.Unlock()

	keeper.notify(message)
}

// Tick advances the countdown by one second. No-op when not running.
func (keeper *TimeKeeper) Tick() {
	keeper.mu.Lock()
	actions := keeper.tickLocked()
	keeper.mu.Unlock()

	runActions(actions)
}

// OnConfigurationChanged re-reads settings. An idle timer restarts its
// phase with the new full duration.
func (keeper *TimeKeeper) OnConfigurationChanged() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.closed {
		return
	}
	config := keeper.configLocked()
	keeper.state.TotalWorkSessions = config.SessionsBeforeLongBreak
	if !keeper.state.IsRunning {
		keeper.resetSessionLocked(keeper.state.CurrentSession, config)
	}
	keeper.commitLocked(EventConfigChanged)
}

// Close halts every schedule, persists the record a final time and closes
// observer channels. A running phase is stored as paused.
func (keeper *TimeKeeper) Close() {
	keeper.mu.Lock()
	if keeper.closed {
		keeper.mu.Unlock()
		return
	}
	wasRunning := keeper.state.IsRunning
	keeper.haltLocked()
	if wasRunning {
		keeper.state.IsPaused = true
	}
	keeper.persistLocked()
	keeper.closed = true
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (keeper *TimeKeeper) tickCadence(generation uint64) {
	keeper.mu.Lock()
	if generation != keeper.cadenceGen {
		keeper.mu.Unlock()
		return
	}
	actions := keeper.tickLocked()
	keeper.mu.Unlock()

	runActions(actions)
}

func (keeper *TimeKeeper) tickLocked() []func() {
	if keeper.closed || !keeper.state.IsRunning {
		return nil
	}
	keeper.state.TimeRemaining--
	if keeper.state.TimeRemaining <= 0 {
		keeper.state.TimeRemaining = 0
		return keeper.completeLocked()
	}
	keeper.commitLocked(EventTick)
	return nil
}

func (keeper *TimeKeeper) completeLocked() []func() {
	keeper.haltLocked()

	completed := keeper.state.CurrentSession
	now := keeper.options.Now()
	if completed == model.SessionWork {
		keeper.state.RollDay(now)
		keeper.state.CompletedWorkSessions++
		keeper.state.DailyPomodoros++
	}
	keeper.commitLocked(EventCompleted)

	message := fmt.Sprintf("✅ %s complete! Time for a %s.",
		completed.DisplayName(), keeper.nextTypeLocked().DisplayName())
	keeper.nextSessionLocked(true, EventTransition)

	return []func(){
		func() { keeper.recordCompletion(completed, now) },
		func() { keeper.notifyCompletion(message) },
	}
}

func (keeper *TimeKeeper) nextTypeLocked() model.SessionType {
	if keeper.state.CurrentSession != model.SessionWork {
		return model.SessionWork
	}
	if keeper.state.CompletedWorkSessions >= keeper.state.TotalWorkSessions {
		return model.SessionLongBreak
	}
	return model.SessionShortBreak
}

func (keeper *TimeKeeper) nextSessionLocked(autoStart bool, eventType EventType) {
	next := keeper.nextTypeLocked()
	if next == model.SessionLongBreak {
		keeper.state.CompletedWorkSessions = 0
	}

	config := keeper.configLocked()
	keeper.resetSessionLocked(next, config)
	keeper.commitLocked(eventType)

	if autoStart && config.AutoStarts(next) {
		keeper.autoStartGen++
		generation := keeper.autoStartGen
		keeper.autoStartStop = keeper.options.Scheduler.After(keeper.options.AutoStartDelay, func() {
			keeper.autoStart(generation)
		})
	}
}

func (keeper *TimeKeeper) autoStart(generation uint64) {
	keeper.mu.Lock()
	if keeper.closed || generation != keeper.autoStartGen {
		keeper.mu.Unlock()
		return
	}
	keeper.autoStartStop = nil
	if keeper.state.IsRunning {
		keeper.mu.Unlock()
		return
	}
	keeper.startLocked()
	message := fmt.Sprintf("🍅 %s session started!", keeper.state.CurrentSession.DisplayName())
	keeper.mu.Unlock()

	keeper.notify(message)
}

func (keeper *TimeKeeper) startLocked() {
	keeper.cancelAutoStartLocked()
	keeper.state.IsRunning = true
	keeper.state.IsPaused = false

	keeper.cadenceGen++
	generation := keeper.cadenceGen
	keeper.cadenceStop = keeper.options.Scheduler.Every(keeper.options.TickInterval, func() {
		keeper.tickCadence(generation)
	})
	keeper.commitLocked(EventStarted)
}

// haltLocked cancels the cadence and any pending auto-start and clears the
// running flags.
func (keeper *TimeKeeper) haltLocked() {
	if keeper.cadenceStop != nil {
		keeper.cadenceStop()
		keeper.cadenceStop = nil
	}
	keeper.cadenceGen++
	keeper.cancelAutoStartLocked()
	keeper.state.IsRunning = false
	keeper.state.IsPaused = false
}

func (keeper *TimeKeeper) cancelAutoStartLocked() {
	if keeper.autoStartStop != nil {
		keeper.autoStartStop()
		keeper.autoStartStop = nil
	}
	keeper.autoStartGen++
}

func (keeper *TimeKeeper) resetSessionLocked(session model.SessionType, config model.Config) {
	duration := config.Seconds(session)
	keeper.state.CurrentSession = session
	keeper.state.TimeRemaining = duration
	keeper.state.SessionDuration = duration
}

func (keeper *TimeKeeper) configLocked() model.Config {
	return keeper.deps.Settings.Config().Normalize()
}

func (keeper *TimeKeeper) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		State:  keeper.state,
		Config: keeper.configLocked(),
	}
}

func (keeper *TimeKeeper) commitLocked(eventType EventType) {
	keeper.persistLocked()
	keeper.publishLocked(eventType)
}

func (keeper *TimeKeeper) persistLocked() {
	if keeper.deps.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := keeper.deps.Store.Save(ctx, keeper.options.StateKey, keeper.state); err != nil {
		keeper.options.Logger.Warn("persist session state", "error", err)
	}
}

func (keeper *TimeKeeper) publishLocked(eventType EventType) {
	event := Event{
		Type:     eventType,
		Snapshot: keeper.snapshotLocked(),
		At:       keeper.options.Now(),
	}
	for _, ch := range keeper.events {
		select {
		case ch <- event:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

func (keeper *TimeKeeper) notify(message string) {
	if keeper.deps.Notifier == nil {
		return
	}
	keeper.deps.Notifier.Notify(message)
}

func (keeper *TimeKeeper) notifyCompletion(message string) {
	if keeper.deps.Notifier == nil {
		return
	}
	go func() {
		action, ok := keeper.deps.Notifier.NotifyWithAction(message, ActionStartNext)
		if ok && action == ActionStartNext {
			keeper.Start()
		}
	}()
}

func (keeper *TimeKeeper) recordCompletion(session model.SessionType, at time.Time) {
	if keeper.deps.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := keeper.deps.History.RecordCompletion(ctx, session, at); err != nil {
		keeper.options.Logger.Warn("record completion", "session", session, "error", err)
	}
}

func runActions(actions []func()) {
	for _, action := range actions {
		action()
	}
}
