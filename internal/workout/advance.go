package workout

import "encoding/json"

// NextState implements the legacy single-exercise-focus flow: complete one
// set of the exercise at currentIndex and, if that filled its target, move
// focus to the next exercise (clamped, never wrapping). Rest is signalled
// after every completed set regardless of whether the exercise finished.
func NextState(exercises []Exercise, currentIndex int) (updated []Exercise, nextIndex int, shouldRest bool) {
	if currentIndex < 0 || currentIndex >= len(exercises) {
		return exercises, currentIndex, false
	}

	updated = CloneAll(exercises)
	cur := &updated[currentIndex]
	cur.CompletedSets++

	nextIndex = currentIndex
	if cur.CompletedSets >= cur.Sets {
		nextIndex = min(len(updated)-1, currentIndex+1)
	}
	return updated, nextIndex, true
}

// SessionSummary is the JSON shape handed to clients when a workout wraps up.
type SessionSummary struct {
	TotalTime int        `json:"totalTime"`
	Exercises []Exercise `json:"exercises"`
	StartedAt string     `json:"startedAt"`
}

// Summary renders a human-readable JSON summary of a finished session.
func Summary(workoutSeconds int, exercises []Exercise, startedAt string) (string, error) {
	data, err := json.MarshalIndent(SessionSummary{
		TotalTime: workoutSeconds,
		Exercises: exercises,
		StartedAt: startedAt,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
