// Package routine tracks progress through a multi-day workout routine: which
// day is active, when it was last completed, and the auto-advance rule that
// moves the cursor to the next day on the following calendar date.
package routine

import (
	"time"

	"github.com/meltforce/repset/internal/workout"
)

// Day types within a routine sequence.
const (
	DayRest    = "rest"
	DayWorkout = "workout"
)

// Day is one entry in a routine's sequence: either a rest day or a reference
// to a workout template.
type Day struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	WorkoutID string `json:"workoutId,omitempty"`
}

// Routine is a named, ordered multi-day plan. Read-only input from the
// workout store.
type Routine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sequence []Day  `json:"sequence"`
}

// Progress is the mutable cursor over an active routine. Nil means no
// routine is active.
type Progress struct {
	RoutineID         string     `json:"id"`
	DayIndex          int        `json:"dayIndex"`
	LastCompletedDate *time.Time `json:"lastCompletedDate,omitempty"`
}

// NewRestDay returns a rest-day sequence entry.
func NewRestDay() Day {
	return Day{ID: workout.NewID(), Type: DayRest, Name: "Rest"}
}

// NewWorkoutDay returns a sequence entry referencing a workout template.
func NewWorkoutDay(workoutID, name string) Day {
	return Day{ID: workout.NewID(), Type: DayWorkout, Name: name, WorkoutID: workoutID}
}

// ReorderSequence moves the entry at index one position in the given
// direction (-1 or +1). Moves that would leave the sequence are rejected and
// the input is returned unchanged.
func ReorderSequence(sequence []Day, index, dir int) []Day {
	target := index + dir
	if index < 0 || index >= len(sequence) || target < 0 || target >= len(sequence) {
		return sequence
	}
	out := make([]Day, len(sequence))
	copy(out, sequence)
	out[index], out[target] = out[target], out[index]
	return out
}

// EvaluateAutoAdvance applies the day-rollover rule to a progress cursor: if
// the current day was completed on an earlier calendar date (local time), the
// cursor advances to the next day, wrapping at the end of the sequence, and
// the completion marker is cleared. Unknown routines and empty sequences are
// treated as length 1. The input is never mutated.
func EvaluateAutoAdvance(p *Progress, routines []Routine, now time.Time) *Progress {
	if p == nil || p.LastCompletedDate == nil {
		return p
	}

	last := calendarDate(p.LastCompletedDate.Local())
	today := calendarDate(now.Local())
	if !last.Before(today) {
		return p
	}

	length := 1
	for _, r := range routines {
		if r.ID == p.RoutineID {
			if len(r.Sequence) > 0 {
				length = len(r.Sequence)
			}
			break
		}
	}

	return &Progress{
		RoutineID: p.RoutineID,
		DayIndex:  (p.DayIndex + 1) % length,
	}
}

// calendarDate zeroes the time-of-day components for date-only comparison.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
