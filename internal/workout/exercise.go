package workout

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Exercise is one entry in an active workout: a target (sets x reps) plus the
// log of sets performed so far. CompletedSets always equals len(Logs) after
// any mutation that touches the logs.
type Exercise struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Sets          int      `json:"sets"`
	Reps          int      `json:"reps"`
	CompletedSets int      `json:"completedSets"`
	Logs          []SetLog `json:"logs,omitempty"`
	Properties    []string `json:"properties,omitempty"`
}

// SetLog records one completed set. Immutable after creation except for
// deletion. Only the fields the user actually entered are set.
type SetLog struct {
	ID       string   `json:"id"`
	Weight   *float64 `json:"weight,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// SetInput carries the optional per-set metrics entered when completing a set.
type SetInput struct {
	Weight   *float64
	Reps     *int
	Duration *float64
	Distance *float64
}

// idCounter disambiguates ids generated within the same nanosecond.
var idCounter atomic.Int64

// NewID returns a timestamp-derived id, unique within the process.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixNano()+idCounter.Add(1), 10)
}

// CreateExercise builds a fresh Exercise from free-form sets/reps input.
// Invalid or non-positive values clamp to 1. A blank name gets a generated
// placeholder.
func CreateExercise(name, setsStr, repsStr string, properties ...string) Exercise {
	id := NewID()
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Exercise %s", id)
	}
	return Exercise{
		ID:         id,
		Name:       name,
		Sets:       parseTarget(setsStr),
		Reps:       parseTarget(repsStr),
		Properties: properties,
		Logs:       []SetLog{},
	}
}

// parseTarget parses a sets/reps count, clamping to a minimum of 1.
func parseTarget(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NewSetLog builds the log entry for one completed set. Reps falls back to
// the exercise's target when the input omits it.
func NewSetLog(input *SetInput, fallbackReps int) SetLog {
	log := SetLog{ID: NewID()}
	if input != nil {
		log.Weight = input.Weight
		log.Reps = input.Reps
		log.Duration = input.Duration
		log.Distance = input.Distance
	}
	if log.Reps == nil {
		reps := fallbackReps
		log.Reps = &reps
	}
	return log
}

// Clone returns a deep copy of the exercise, so callers can mutate the copy
// without aliasing the original's logs.
func (e Exercise) Clone() Exercise {
	out := e
	if e.Logs != nil {
		out.Logs = make([]SetLog, len(e.Logs))
		copy(out.Logs, e.Logs)
	}
	if e.Properties != nil {
		out.Properties = make([]string, len(e.Properties))
		copy(out.Properties, e.Properties)
	}
	return out
}

// CloneAll deep-copies a slice of exercises.
func CloneAll(exercises []Exercise) []Exercise {
	out := make([]Exercise, len(exercises))
	for i, e := range exercises {
		out[i] = e.Clone()
	}
	return out
}
