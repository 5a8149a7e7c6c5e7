package persist

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/meltforce/repset/internal/workout"
)

// Key suffixes under the app prefix; one key per session field. The routine
// id key is removed, not blanked, when no routine is active — absence is the
// canonical "no routine" signal.
const (
	keyExercises = "_workout_exercises"
	keySeconds   = "_workout_seconds"
	keyName      = "_workout_name"
	keyRoutineID = "_workout_routine_id"
	keyRunning   = "_workout_running"
)

// State is the persisted slice of a session. Has* flags record which keys
// were actually present on load, so restore only touches stored fields.
type State struct {
	Exercises    []workout.Exercise
	HasExercises bool
	Seconds      int
	HasSeconds   bool
	Name         string
	HasName      bool
	RoutineID    string // empty means no routine
	Running      bool
	HasRunning   bool
}

// Adapter writes session state through to a KV and restores it on boot.
// Save is inert until Load has run once, so restoring persisted values never
// triggers an immediate rewrite of defaults over them.
type Adapter struct {
	kv     KV
	prefix string
	log    *slog.Logger

	mu     sync.Mutex
	primed bool
}

// NewAdapter returns an adapter scoped to the given app prefix (e.g.
// "myhealth" produces keys like "myhealth_workout_exercises").
func NewAdapter(kv KV, appPrefix string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{kv: kv, prefix: appPrefix, log: log}
}

// Load reads every session key and returns whatever was stored. It also
// primes the adapter: only after Load do Save calls write anything.
func (a *Adapter) Load() State {
	a.mu.Lock()
	a.primed = true
	a.mu.Unlock()

	var st State

	if raw, ok := a.get(a.prefix + keyExercises); ok {
		var exs []workout.Exercise
		if err := json.Unmarshal([]byte(raw), &exs); err != nil {
			a.log.Warn("persist: bad exercises payload", "error", err)
		} else {
			st.Exercises = exs
			st.HasExercises = true
		}
	}
	if raw, ok := a.get(a.prefix + keySeconds); ok {
		if sec, err := strconv.Atoi(raw); err == nil {
			st.Seconds = sec
			st.HasSeconds = true
		}
	}
	if raw, ok := a.get(a.prefix + keyName); ok {
		st.Name = raw
		st.HasName = true
	}
	if raw, ok := a.get(a.prefix + keyRoutineID); ok {
		st.RoutineID = raw
	}
	if raw, ok := a.get(a.prefix + keyRunning); ok {
		var running bool
		if err := json.Unmarshal([]byte(raw), &running); err == nil {
			st.Running = running
			st.HasRunning = true
		}
	}
	return st
}

// Save writes every session field under its own key. A no-op until Load has
// primed the adapter. Never fails from the caller's point of view.
func (a *Adapter) Save(st State) {
	a.mu.Lock()
	primed := a.primed
	a.mu.Unlock()
	if !primed {
		return
	}

	if data, err := json.Marshal(st.Exercises); err != nil {
		a.log.Warn("persist: marshal exercises", "error", err)
	} else {
		a.set(a.prefix+keyExercises, string(data))
	}
	a.set(a.prefix+keySeconds, strconv.Itoa(st.Seconds))
	a.set(a.prefix+keyName, st.Name)
	if st.RoutineID != "" {
		a.set(a.prefix+keyRoutineID, st.RoutineID)
	} else {
		a.delete(a.prefix + keyRoutineID)
	}
	running := "false"
	if st.Running {
		running = "true"
	}
	a.set(a.prefix+keyRunning, running)
}

// Clear removes every session-scoped key unconditionally.
func (a *Adapter) Clear() {
	for _, suffix := range []string{keyExercises, keySeconds, keyName, keyRoutineID, keyRunning} {
		a.delete(a.prefix + suffix)
	}
}

func (a *Adapter) get(key string) (string, bool) {
	v, ok, err := a.kv.Get(key)
	if err != nil {
		a.log.Warn("persist: get failed", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

func (a *Adapter) set(key, value string) {
	if err := a.kv.Set(key, value); err != nil {
		a.log.Warn("persist: set failed", "key", key, "error", err)
	}
}

func (a *Adapter) delete(key string) {
	if err := a.kv.Delete(key); err != nil {
		a.log.Warn("persist: delete failed", "key", key, "error", err)
	}
}
