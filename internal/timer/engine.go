// Package timer drives the two clocks of an active workout session: the
// count-up workout clock and the rest countdown. Each active clock is one
// goroutine on a time.Ticker, torn down synchronously before any state
// transition returns, so no tick can fire against state that has moved on.
package timer

import (
	"sync"
	"time"
)

// DefaultInterval is one wall-clock tick.
const DefaultInterval = time.Second

// Engine owns the workout and rest timers. The two counters live on disjoint
// fields and tick independently; a single mutex orders their mutations with
// the control methods.
type Engine struct {
	mu       sync.Mutex
	interval time.Duration

	running        bool
	workoutSeconds int
	restSeconds    int

	workoutStop chan struct{}
	restStop    chan struct{}

	// onChange, when set, fires after every counter mutation (outside the
	// engine lock). The session controller uses it for write-through
	// persistence.
	onChange func()
}

// New returns an Engine ticking at the given interval. Zero or negative
// means DefaultInterval.
func New(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{interval: interval}
}

// OnChange registers a callback invoked after each tick or reset. Must be
// set before the engine starts ticking.
func (e *Engine) OnChange(fn func()) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Running reports whether the workout clock is counting.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// WorkoutSeconds returns the elapsed workout time.
func (e *Engine) WorkoutSeconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workoutSeconds
}

// RestSeconds returns the remaining rest countdown.
func (e *Engine) RestSeconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restSeconds
}

// SetWorkoutSeconds overwrites the elapsed counter. Used when restoring a
// persisted session.
func (e *Engine) SetWorkoutSeconds(seconds int) {
	e.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	e.workoutSeconds = seconds
	e.mu.Unlock()
}

// SetRunning starts or pauses the workout clock. Pausing freezes the elapsed
// value; the recurring tick task is cancelled before this returns.
func (e *Engine) SetRunning(run bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if run == e.running {
		return
	}
	e.running = run

	if run {
		stop := make(chan struct{})
		e.workoutStop = stop
		go e.runWorkout(stop)
		return
	}
	if e.workoutStop != nil {
		close(e.workoutStop)
		e.workoutStop = nil
	}
}

// StartRest begins a rest countdown from the given number of seconds,
// atomically replacing any countdown already in flight.
func (e *Engine) StartRest(seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.restStop != nil {
		close(e.restStop)
		e.restStop = nil
	}
	if seconds < 0 {
		seconds = 0
	}
	e.restSeconds = seconds
	if seconds > 0 {
		stop := make(chan struct{})
		e.restStop = stop
		go e.runRest(stop)
	}
}

// Reset stops both timers and zeroes both counters. Callers that want the
// workout clock to keep counting (restart-from-zero) follow up with
// SetRunning(true).
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.workoutStop != nil {
		close(e.workoutStop)
		e.workoutStop = nil
	}
	if e.restStop != nil {
		close(e.restStop)
		e.restStop = nil
	}
	e.running = false
	e.workoutSeconds = 0
	e.restSeconds = 0
	fn := e.onChange
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (e *Engine) runWorkout(stop chan struct{}) {
	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !e.tickWorkout(stop) {
				return
			}
		}
	}
}

// tickWorkout increments the elapsed counter if the given stop handle is
// still the live one. Returns false once the tick task has been superseded.
func (e *Engine) tickWorkout(stop chan struct{}) bool {
	e.mu.Lock()
	if e.workoutStop != stop {
		e.mu.Unlock()
		return false
	}
	e.workoutSeconds++
	fn := e.onChange
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

func (e *Engine) runRest(stop chan struct{}) {
	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !e.tickRest(stop) {
				return
			}
		}
	}
}

// tickRest decrements the countdown, clamping at 0 and retiring the tick
// task once it gets there.
func (e *Engine) tickRest(stop chan struct{}) bool {
	e.mu.Lock()
	if e.restStop != stop {
		e.mu.Unlock()
		return false
	}
	alive := true
	if e.restSeconds > 0 {
		e.restSeconds--
	}
	if e.restSeconds == 0 {
		e.restStop = nil
		alive = false
	}
	fn := e.onChange
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
	return alive
}
