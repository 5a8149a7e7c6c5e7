// Package session is the top-level state machine for an in-progress workout.
// A Controller owns the Session exclusively: every mutation goes through its
// public operations, which coordinate the timers, the exercise list, and
// write-through persistence under a single lock.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/meltforce/repset/internal/persist"
	"github.com/meltforce/repset/internal/timer"
	"github.com/meltforce/repset/internal/workout"
)

// DefaultName is the workout name used when start omits one.
const DefaultName = "Current Workout"

// DefaultRestSeconds is the rest countdown started after every completed
// set, whether or not the exercise's full target was reached.
const DefaultRestSeconds = 60

// ErrNoExercise is returned when an operation targets an exercise index that
// does not exist. Callers surface it as a user notice; state is untouched.
var ErrNoExercise = errors.New("no exercise at index")

// Store receives finished workouts for durable persistence. Implemented by
// the Postgres storage layer; nil disables remote saves.
type Store interface {
	SaveCompletedWorkout(ctx context.Context, cw CompletedWorkout) error
}

// CompletedWorkout is the payload handed to the Store on finish.
type CompletedWorkout struct {
	Name            string             `json:"name"`
	Exercises       []workout.Exercise `json:"exercises"`
	DurationSeconds int                `json:"durationSeconds"`
	Note            string             `json:"note,omitempty"`
	RoutineID       string             `json:"routineId,omitempty"`
	SourceWorkoutID string             `json:"sourceWorkoutId,omitempty"`
	FinishedAt      time.Time          `json:"finishedAt"`
}

// Snapshot is a read-only copy of the live session.
type Snapshot struct {
	WorkoutName      string             `json:"workoutName"`
	Exercises        []workout.Exercise `json:"exercises"`
	CurrentIndex     int                `json:"currentIndex"`
	IsRunning        bool               `json:"isRunning"`
	WorkoutSeconds   int                `json:"workoutSeconds"`
	RestSeconds      int                `json:"restSeconds"`
	RoutineID        string             `json:"routineId,omitempty"`
	SourceWorkoutID  string             `json:"sourceWorkoutId,omitempty"`
	HasActiveSession bool               `json:"hasActiveSession"`
	Expanded         bool               `json:"expanded"`
}

// StartOptions parameterize StartWorkout. A nil Exercises slice keeps the
// current list; an empty one is allowed ("start empty" workflow).
type StartOptions struct {
	Exercises       []workout.Exercise
	Name            string
	RoutineID       string
	SourceWorkoutID string
}

// ExerciseUpdate shallow-merges set fields into an exercise. Nil fields are
// left alone.
type ExerciseUpdate struct {
	Name *string
	Sets *int
	Reps *int
}

// Controller owns the session. All exported methods are safe for concurrent
// use; mutation is serialized on one mutex, matching the single-writer model
// the apps rely on.
type Controller struct {
	mu sync.Mutex

	name            string
	exercises       []workout.Exercise
	currentIndex    int
	routineID       string
	sourceWorkoutID string
	hasActive       bool
	expanded        bool
	startedAt       time.Time

	timers  *timer.Engine
	adapter *persist.Adapter
	store   Store
	log     *slog.Logger

	restSeconds int
}

// Options configure a Controller.
type Options struct {
	// TickInterval is the wall-clock tick for both timers. Zero means one
	// second.
	TickInterval time.Duration
	// RestSeconds is the countdown started after each completed set. Zero
	// means DefaultRestSeconds.
	RestSeconds int
	// Adapter is the persistence write-through. Nil means a fresh in-memory
	// adapter (state lost on exit).
	Adapter *persist.Adapter
	// Store receives finished workouts. Nil disables durable saves.
	Store Store
	// Log defaults to slog.Default.
	Log *slog.Logger
}

// New creates a Controller seeded with the stock three-exercise plan. Call
// Restore before handing it out if persisted state should be applied.
func New(opts Options) *Controller {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Adapter == nil {
		opts.Adapter = persist.NewAdapter(persist.NewMemory(), "repset", opts.Log)
	}
	if opts.RestSeconds <= 0 {
		opts.RestSeconds = DefaultRestSeconds
	}

	c := &Controller{
		name:        DefaultName,
		exercises:   defaultExercises(),
		timers:      timer.New(opts.TickInterval),
		adapter:     opts.Adapter,
		store:       opts.Store,
		log:         opts.Log,
		restSeconds: opts.RestSeconds,
	}
	// Timer ticks write through on their own; everything else persists at
	// the end of each mutating operation.
	c.timers.OnChange(func() { c.persistTick() })
	return c
}

func defaultExercises() []workout.Exercise {
	return []workout.Exercise{
		{ID: "1", Name: "Push Ups", Sets: 3, Reps: 12, Logs: []workout.SetLog{}},
		{ID: "2", Name: "Squats", Sets: 3, Reps: 10, Logs: []workout.SetLog{}},
		{ID: "3", Name: "Plank (sec)", Sets: 3, Reps: 45, Logs: []workout.SetLog{}},
	}
}

// Restore loads persisted session state and applies whatever was stored.
// A stored running flag restarts the workout clock and marks the session
// active. Must run before the controller becomes interactive.
func (c *Controller) Restore() {
	st := c.adapter.Load()

	c.mu.Lock()
	if st.HasExercises {
		c.exercises = st.Exercises
	}
	if st.HasSeconds {
		c.timers.SetWorkoutSeconds(st.Seconds)
	}
	if st.HasName {
		c.name = st.Name
	}
	if st.RoutineID != "" {
		c.routineID = st.RoutineID
	}
	resume := st.HasRunning && st.Running
	if resume {
		c.hasActive = true
	}
	c.mu.Unlock()

	if resume {
		c.timers.SetRunning(true)
	}
}

// Snapshot returns a consistent copy of the session for readers.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		WorkoutName:      c.name,
		Exercises:        workout.CloneAll(c.exercises),
		CurrentIndex:     c.currentIndex,
		IsRunning:        c.timers.Running(),
		WorkoutSeconds:   c.timers.WorkoutSeconds(),
		RestSeconds:      c.timers.RestSeconds(),
		RoutineID:        c.routineID,
		SourceWorkoutID:  c.sourceWorkoutID,
		HasActiveSession: c.hasActive,
		Expanded:         c.expanded,
	}
}

// StartWorkout begins (or resumes) a session. Supplied exercises replace the
// current list; an empty list is permitted. The name falls back to
// DefaultName when omitted.
func (c *Controller) StartWorkout(opts StartOptions) {
	c.mu.Lock()
	if opts.Exercises != nil {
		c.exercises = opts.Exercises
	}
	if opts.Name != "" {
		c.name = opts.Name
	} else {
		c.name = DefaultName
	}
	c.routineID = opts.RoutineID
	c.sourceWorkoutID = opts.SourceWorkoutID
	if !c.hasActive {
		c.startedAt = time.Now()
	}
	c.hasActive = true
	c.expanded = true
	c.mu.Unlock()

	c.timers.SetRunning(true)
	c.persistTick()
}

// PauseWorkout freezes the workout clock, keeping all other state.
func (c *Controller) PauseWorkout() {
	c.timers.SetRunning(false)
	c.persistTick()
}

// ResetWorkout restarts the same plan from zero: timers zeroed, focus back
// to the first exercise, per-exercise progress wiped, targets kept. The
// clock keeps counting (resumes if paused).
func (c *Controller) ResetWorkout() {
	c.mu.Lock()
	c.currentIndex = 0
	for i := range c.exercises {
		c.exercises[i].CompletedSets = 0
		c.exercises[i].Logs = []workout.SetLog{}
	}
	c.hasActive = true
	c.mu.Unlock()

	c.timers.Reset()
	c.timers.SetRunning(true)
	c.persistTick()
}

// FinishWorkout hands the session to the store for durable persistence, then
// resets local state and clears persisted keys. On store failure the session
// is left untouched so the user can retry.
func (c *Controller) FinishWorkout(ctx context.Context, note string) error {
	c.mu.Lock()
	cw := CompletedWorkout{
		Name:            c.name,
		Exercises:       workout.CloneAll(c.exercises),
		DurationSeconds: c.timers.WorkoutSeconds(),
		Note:            note,
		RoutineID:       c.routineID,
		SourceWorkoutID: c.sourceWorkoutID,
		FinishedAt:      time.Now(),
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SaveCompletedWorkout(ctx, cw); err != nil {
			c.log.Error("saving completed workout", "name", cw.Name, "error", err)
			return err
		}
	} else {
		c.log.Warn("no workout store configured; finished workout discarded", "name", cw.Name)
	}

	c.resetState()
	return nil
}

// CancelWorkout discards the session without saving.
func (c *Controller) CancelWorkout() {
	c.resetState()
}

// resetState is the shared finish/cancel teardown: timers stopped and
// zeroed, session back to defaults, persisted keys removed.
func (c *Controller) resetState() {
	c.timers.Reset()

	c.mu.Lock()
	c.currentIndex = 0
	for i := range c.exercises {
		c.exercises[i].CompletedSets = 0
		c.exercises[i].Logs = []workout.SetLog{}
	}
	c.name = DefaultName
	c.routineID = ""
	c.sourceWorkoutID = ""
	c.hasActive = false
	c.expanded = false
	c.startedAt = time.Time{}
	c.mu.Unlock()

	c.adapter.Clear()
}

// CompleteSet logs one performed set against the exercise at index and
// starts the rest countdown. Rest fires after every set, not just the final
// one of an exercise.
func (c *Controller) CompleteSet(index int, input *workout.SetInput) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.exercises) {
		c.mu.Unlock()
		return ErrNoExercise
	}
	ex := &c.exercises[index]
	ex.Logs = append(ex.Logs, workout.NewSetLog(input, ex.Reps))
	ex.CompletedSets = len(ex.Logs)
	c.mu.Unlock()

	c.timers.StartRest(c.restSeconds)
	c.persistTick()
	return nil
}

// QuickCompleteSet is the one-tap flow: count a set against the focused
// exercise with no per-set metrics, advancing focus once its target fills.
// Rest starts as with any completed set.
func (c *Controller) QuickCompleteSet() error {
	c.mu.Lock()
	updated, next, ok := workout.NextState(c.exercises, c.currentIndex)
	if !ok {
		c.mu.Unlock()
		return ErrNoExercise
	}
	// Keep the log in step with the counter the legacy flow increments.
	ex := &updated[c.currentIndex]
	ex.Logs = append(ex.Logs, workout.NewSetLog(nil, ex.Reps))
	c.exercises = updated
	c.currentIndex = next
	c.mu.Unlock()

	c.timers.StartRest(c.restSeconds)
	c.persistTick()
	return nil
}

// SummaryJSON renders the session summary for sharing or display.
func (c *Controller) SummaryJSON() (string, error) {
	c.mu.Lock()
	seconds := c.timers.WorkoutSeconds()
	exercises := workout.CloneAll(c.exercises)
	startedAt := ""
	if !c.startedAt.IsZero() {
		startedAt = c.startedAt.Format(time.RFC3339)
	}
	c.mu.Unlock()

	return workout.Summary(seconds, exercises, startedAt)
}

// DeleteSet removes the set at setIndex from the exercise at index. A
// completed set loses both its log entry and the target slot it occupied; a
// pending slot only shrinks the target. Targets never go below zero.
func (c *Controller) DeleteSet(index, setIndex int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.exercises) {
		c.mu.Unlock()
		return ErrNoExercise
	}
	ex := &c.exercises[index]
	if setIndex >= 0 && setIndex < len(ex.Logs) {
		ex.Logs = append(ex.Logs[:setIndex], ex.Logs[setIndex+1:]...)
		ex.CompletedSets = len(ex.Logs)
	}
	if ex.Sets > 0 {
		ex.Sets--
	}
	c.mu.Unlock()

	c.persistTick()
	return nil
}

// AddExercise appends a new exercise built from free-form input.
func (c *Controller) AddExercise(name, sets, reps string, properties ...string) workout.Exercise {
	ex := workout.CreateExercise(name, sets, reps, properties...)

	c.mu.Lock()
	c.exercises = append(c.exercises, ex)
	c.mu.Unlock()

	c.persistTick()
	return ex
}

// UpdateExercise merges the non-nil fields of the update into the exercise
// at index. Shrinking the target below the completed count truncates the
// logs to match.
func (c *Controller) UpdateExercise(index int, update ExerciseUpdate) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.exercises) {
		c.mu.Unlock()
		return ErrNoExercise
	}
	ex := &c.exercises[index]
	if update.Name != nil {
		ex.Name = *update.Name
	}
	if update.Reps != nil {
		ex.Reps = *update.Reps
	}
	if update.Sets != nil {
		sets := *update.Sets
		if sets < 0 {
			sets = 0
		}
		ex.Sets = sets
		if len(ex.Logs) > sets {
			ex.Logs = ex.Logs[:sets]
			ex.CompletedSets = len(ex.Logs)
		}
	}
	c.mu.Unlock()

	c.persistTick()
	return nil
}

// NextExercise moves focus forward, clamped to the last exercise.
func (c *Controller) NextExercise() {
	c.mu.Lock()
	if c.currentIndex < len(c.exercises)-1 {
		c.currentIndex++
	}
	c.mu.Unlock()
	c.persistTick()
}

// PrevExercise moves focus back, clamped to the first exercise.
func (c *Controller) PrevExercise() {
	c.mu.Lock()
	if c.currentIndex > 0 {
		c.currentIndex--
	}
	c.mu.Unlock()
	c.persistTick()
}

// SetWorkoutName renames the session.
func (c *Controller) SetWorkoutName(name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
	c.persistTick()
}

// SetExpanded controls the session overlay surface.
func (c *Controller) SetExpanded(expanded bool) {
	c.mu.Lock()
	c.expanded = expanded
	c.mu.Unlock()
}

// ToggleExpanded flips the session overlay surface.
func (c *Controller) ToggleExpanded() {
	c.mu.Lock()
	c.expanded = !c.expanded
	c.mu.Unlock()
}

// Close stops both timers. Called on shutdown so no tick outlives the
// controller.
func (c *Controller) Close() {
	c.timers.SetRunning(false)
	c.timers.StartRest(0)
}

// persistTick writes the current session through to storage. Fire-and-forget:
// failures are swallowed inside the adapter.
func (c *Controller) persistTick() {
	c.mu.Lock()
	st := persist.State{
		Exercises: workout.CloneAll(c.exercises),
		Seconds:   c.timers.WorkoutSeconds(),
		Name:      c.name,
		RoutineID: c.routineID,
		Running:   c.timers.Running(),
	}
	c.mu.Unlock()

	c.adapter.Save(st)
}
