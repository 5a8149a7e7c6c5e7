package timer

import (
	"testing"
	"time"
)

// newIdle returns an engine whose real tickers never fire during the test,
// so ticks are driven manually through tickWorkout/tickRest.
func newIdle() *Engine {
	return New(time.Hour)
}

func (e *Engine) workoutHandle() chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workoutStop
}

func (e *Engine) restHandle() chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restStop
}

// TestInitialState verifies a fresh engine is stopped at zero.
func TestInitialState(t *testing.T) {
	e := newIdle()
	if e.Running() {
		t.Error("new engine should not be running")
	}
	if e.WorkoutSeconds() != 0 || e.RestSeconds() != 0 {
		t.Errorf("counters = %d/%d, want 0/0", e.WorkoutSeconds(), e.RestSeconds())
	}
}

// TestWorkoutTimerCountsUp verifies the workout clock increments once per
// tick while running.
func TestWorkoutTimerCountsUp(t *testing.T) {
	e := newIdle()
	e.SetRunning(true)

	h := e.workoutHandle()
	for i := 0; i < 5; i++ {
		e.tickWorkout(h)
	}
	if got := e.WorkoutSeconds(); got != 5 {
		t.Errorf("workoutSeconds = %d, want 5", got)
	}
}

// TestPauseFreezesElapsedTime verifies ticks arriving after a pause do not
// move the counter: the old tick handle is retired by SetRunning(false).
func TestPauseFreezesElapsedTime(t *testing.T) {
	e := newIdle()
	e.SetRunning(true)

	h := e.workoutHandle()
	for i := 0; i < 3; i++ {
		e.tickWorkout(h)
	}
	e.SetRunning(false)

	// A straggler tick from the cancelled task must be a no-op.
	for i := 0; i < 2; i++ {
		if e.tickWorkout(h) {
			t.Error("tick on a retired handle should report dead")
		}
	}
	if got := e.WorkoutSeconds(); got != 3 {
		t.Errorf("workoutSeconds = %d, want 3 (frozen)", got)
	}
}

// TestSetRunningIdempotent verifies repeated starts do not stack tick tasks.
func TestSetRunningIdempotent(t *testing.T) {
	e := newIdle()
	e.SetRunning(true)
	h := e.workoutHandle()
	e.SetRunning(true)
	if e.workoutHandle() != h {
		t.Error("second SetRunning(true) replaced the live tick task")
	}
}

// TestRestCountdown verifies StartRest(60) then 5 ticks leaves 55.
func TestRestCountdown(t *testing.T) {
	e := newIdle()
	e.StartRest(60)
	if got := e.RestSeconds(); got != 60 {
		t.Fatalf("restSeconds = %d, want 60", got)
	}

	h := e.restHandle()
	for i := 0; i < 5; i++ {
		e.tickRest(h)
	}
	if got := e.RestSeconds(); got != 55 {
		t.Errorf("restSeconds = %d, want 55", got)
	}
}

// TestRestClampsAtZero verifies the countdown stops at 0, never going
// negative, and the tick task retires itself.
func TestRestClampsAtZero(t *testing.T) {
	e := newIdle()
	e.StartRest(5)

	h := e.restHandle()
	for i := 0; i < 5; i++ {
		e.tickRest(h)
	}
	if got := e.RestSeconds(); got != 0 {
		t.Fatalf("restSeconds = %d, want 0", got)
	}
	if e.restHandle() != nil {
		t.Error("rest tick task should have retired at 0")
	}
	if e.tickRest(h) {
		t.Error("tick after reaching 0 should report dead")
	}
	if got := e.RestSeconds(); got != 0 {
		t.Errorf("restSeconds = %d after extra ticks, want 0", got)
	}
}

// TestStartRestReplacesInFlightCountdown verifies a new countdown supersedes
// an old one: the old handle is dead and the counter reflects the new start.
func TestStartRestReplacesInFlightCountdown(t *testing.T) {
	e := newIdle()
	e.StartRest(60)
	old := e.restHandle()
	e.tickRest(old)

	e.StartRest(90)
	if e.tickRest(old) {
		t.Error("old countdown handle should be dead after restart")
	}
	if got := e.RestSeconds(); got != 90 {
		t.Errorf("restSeconds = %d, want 90", got)
	}
}

// TestResetZeroesBothTimers verifies Reset stops and zeroes both counters.
func TestResetZeroesBothTimers(t *testing.T) {
	e := newIdle()
	e.SetRunning(true)
	wh := e.workoutHandle()
	for i := 0; i < 10; i++ {
		e.tickWorkout(wh)
	}
	e.StartRest(60)
	rh := e.restHandle()

	e.Reset()

	if e.Running() {
		t.Error("engine should be stopped after Reset")
	}
	if e.WorkoutSeconds() != 0 || e.RestSeconds() != 0 {
		t.Errorf("counters = %d/%d after Reset, want 0/0", e.WorkoutSeconds(), e.RestSeconds())
	}
	if e.tickWorkout(wh) || e.tickRest(rh) {
		t.Error("old tick handles must be dead after Reset")
	}
}

// TestOnChangeFiresPerTick verifies the write-through callback fires once
// per counter mutation.
func TestOnChangeFiresPerTick(t *testing.T) {
	e := newIdle()
	var calls int
	e.OnChange(func() { calls++ })

	e.SetRunning(true)
	h := e.workoutHandle()
	for i := 0; i < 4; i++ {
		e.tickWorkout(h)
	}
	if calls != 4 {
		t.Errorf("onChange calls = %d, want 4", calls)
	}
}

// TestTickerIntegration exercises the real goroutine path with a short
// interval: the clock must advance and then hold after pause.
func TestTickerIntegration(t *testing.T) {
	e := New(5 * time.Millisecond)
	e.SetRunning(true)

	deadline := time.After(2 * time.Second)
	for e.WorkoutSeconds() < 2 {
		select {
		case <-deadline:
			t.Fatal("workout clock never advanced")
		case <-time.After(time.Millisecond):
		}
	}

	e.SetRunning(false)
	frozen := e.WorkoutSeconds()
	time.Sleep(30 * time.Millisecond)
	if got := e.WorkoutSeconds(); got != frozen {
		t.Errorf("workoutSeconds moved from %d to %d while paused", frozen, got)
	}
}
