package persist

import (
	"errors"
	"testing"

	"github.com/meltforce/repset/internal/workout"
)

// TestSaveBeforeLoadIsInert verifies the mount-guard: nothing is written
// until Load has run once, preventing defaults from clobbering stored state.
func TestSaveBeforeLoadIsInert(t *testing.T) {
	kv := NewMemory()
	a := NewAdapter(kv, "testapp", nil)

	a.Save(State{Name: "Should Not Persist", Seconds: 99})

	if _, ok, _ := kv.Get("testapp_workout_name"); ok {
		t.Error("Save before Load must not write")
	}
}

// TestSaveRoundTrip verifies a save/load cycle restores every field and that
// presence flags reflect what was stored.
func TestSaveRoundTrip(t *testing.T) {
	kv := NewMemory()
	a := NewAdapter(kv, "testapp", nil)
	a.Load() // prime

	a.Save(State{
		Exercises: []workout.Exercise{{ID: "1", Name: "Push Ups", Sets: 3, Reps: 12}},
		Seconds:   25,
		Name:      "Loaded Workout",
		RoutineID: "routine-saved",
		Running:   true,
	})

	got := NewAdapter(kv, "testapp", nil).Load()
	if !got.HasExercises || len(got.Exercises) != 1 || got.Exercises[0].Name != "Push Ups" {
		t.Errorf("exercises = %+v", got.Exercises)
	}
	if !got.HasSeconds || got.Seconds != 25 {
		t.Errorf("seconds = %d (has=%v), want 25", got.Seconds, got.HasSeconds)
	}
	if !got.HasName || got.Name != "Loaded Workout" {
		t.Errorf("name = %q (has=%v)", got.Name, got.HasName)
	}
	if got.RoutineID != "routine-saved" {
		t.Errorf("routineID = %q, want %q", got.RoutineID, "routine-saved")
	}
	if !got.HasRunning || !got.Running {
		t.Errorf("running = %v (has=%v), want true", got.Running, got.HasRunning)
	}
}

// TestEmptyRoutineIDRemovesKey verifies a session without a routine removes
// the routine key instead of writing an empty sentinel.
func TestEmptyRoutineIDRemovesKey(t *testing.T) {
	kv := NewMemory()
	a := NewAdapter(kv, "testapp", nil)
	a.Load()

	a.Save(State{RoutineID: "routine-1"})
	if _, ok, _ := kv.Get("testapp_workout_routine_id"); !ok {
		t.Fatal("routine key should exist after save with routine")
	}

	a.Save(State{RoutineID: ""})
	if _, ok, _ := kv.Get("testapp_workout_routine_id"); ok {
		t.Error("routine key should be removed when no routine is active")
	}
}

// TestLoadEmptyStore verifies loading from an empty store reports nothing
// present.
func TestLoadEmptyStore(t *testing.T) {
	a := NewAdapter(NewMemory(), "testapp", nil)
	st := a.Load()
	if st.HasExercises || st.HasSeconds || st.HasName || st.HasRunning || st.RoutineID != "" {
		t.Errorf("empty store should report nothing present, got %+v", st)
	}
}

// TestClearRemovesAllKeys verifies Clear drops every session-scoped key.
func TestClearRemovesAllKeys(t *testing.T) {
	kv := NewMemory()
	a := NewAdapter(kv, "testapp", nil)
	a.Load()
	a.Save(State{Name: "W", Seconds: 5, RoutineID: "r", Running: true})

	a.Clear()

	for _, key := range []string{
		"testapp_workout_exercises",
		"testapp_workout_seconds",
		"testapp_workout_name",
		"testapp_workout_routine_id",
		"testapp_workout_running",
	} {
		if _, ok, _ := kv.Get(key); ok {
			t.Errorf("key %q should be gone after Clear", key)
		}
	}
}

// failingKV errors on every operation, standing in for an unavailable store.
type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("storage down") }
func (failingKV) Set(string, string) error         { return errors.New("storage down") }
func (failingKV) Delete(string) error              { return errors.New("storage down") }

// TestStorageFailuresAreSwallowed verifies the adapter never panics or
// surfaces errors when the store is unavailable.
func TestStorageFailuresAreSwallowed(t *testing.T) {
	a := NewAdapter(failingKV{}, "testapp", nil)

	st := a.Load()
	if st.HasName || st.HasSeconds {
		t.Error("failing store should load nothing")
	}
	a.Save(State{Name: "W"}) // must not panic
	a.Clear()                // must not panic
}

// TestCorruptPayloadsIgnored verifies malformed stored values are skipped
// field by field rather than failing the whole load.
func TestCorruptPayloadsIgnored(t *testing.T) {
	kv := NewMemory()
	kv.Set("testapp_workout_exercises", "{not json")
	kv.Set("testapp_workout_seconds", "NaN")
	kv.Set("testapp_workout_running", "yes")
	kv.Set("testapp_workout_name", "Still Fine")

	st := NewAdapter(kv, "testapp", nil).Load()
	if st.HasExercises || st.HasSeconds || st.HasRunning {
		t.Errorf("corrupt fields should be absent, got %+v", st)
	}
	if !st.HasName || st.Name != "Still Fine" {
		t.Errorf("valid field should load: name = %q", st.Name)
	}
}
