package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	mcpapi "github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/repset/internal/routine"
	"github.com/meltforce/repset/internal/session"
	"github.com/meltforce/repset/internal/storage"
)

type fakeHistory struct {
	workouts []storage.CompletedWorkoutRow
	routines []routine.Routine
}

func (f *fakeHistory) ListCompletedWorkouts(ctx context.Context, start, end time.Time, userID int) ([]storage.CompletedWorkoutRow, error) {
	return f.workouts, nil
}

func (f *fakeHistory) ListRoutines(ctx context.Context, userID int) ([]routine.Routine, error) {
	return f.routines, nil
}

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := session.New(session.Options{TickInterval: time.Hour, Log: log})
	t.Cleanup(engine.Close)
	return &handlers{engine: engine, history: &fakeHistory{}, log: log}
}

func callReq(args map[string]any) mcpapi.CallToolRequest {
	req := mcpapi.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultSnapshot(t *testing.T, res *mcpapi.CallToolResult) session.Snapshot {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	text, ok := res.Content[0].(mcpapi.TextContent)
	if !ok {
		t.Fatalf("content[0] = %T, want TextContent", res.Content[0])
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(text.Text), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return snap
}

// TestStartWorkoutTool verifies start_workout marks the session running and
// applies the given name.
func TestStartWorkoutTool(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.startWorkout(context.Background(), callReq(map[string]any{"name": "Leg Day"}))
	if err != nil {
		t.Fatalf("startWorkout: %v", err)
	}
	snap := resultSnapshot(t, res)
	if !snap.IsRunning || !snap.HasActiveSession {
		t.Error("session should be running and active after start_workout")
	}
	if snap.WorkoutName != "Leg Day" {
		t.Errorf("workoutName = %q, want %q", snap.WorkoutName, "Leg Day")
	}
}

// TestCompleteSetTool verifies complete_set logs a set and starts the rest
// countdown.
func TestCompleteSetTool(t *testing.T) {
	h := newTestHandlers(t)
	h.startWorkout(context.Background(), callReq(nil))

	res, err := h.completeSet(context.Background(), callReq(map[string]any{
		"index":  float64(0),
		"weight": 60.0,
	}))
	if err != nil {
		t.Fatalf("completeSet: %v", err)
	}
	snap := resultSnapshot(t, res)
	if snap.Exercises[0].CompletedSets != 1 {
		t.Errorf("completedSets = %d, want 1", snap.Exercises[0].CompletedSets)
	}
	if snap.RestSeconds != session.DefaultRestSeconds {
		t.Errorf("restSeconds = %d, want %d", snap.RestSeconds, session.DefaultRestSeconds)
	}
	if got := snap.Exercises[0].Logs[0]; got.Weight == nil || *got.Weight != 60 {
		t.Errorf("logged weight = %v, want 60", got.Weight)
	}
}

// TestCompleteSetToolMissingIndex verifies the required index parameter is
// enforced without an engine mutation.
func TestCompleteSetToolMissingIndex(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.completeSet(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("completeSet: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result without index")
	}
	if snap := h.engine.Snapshot(); snap.Exercises[0].CompletedSets != 0 {
		t.Error("failed call must not log a set")
	}
}

// TestCompleteSetToolOutOfRange verifies a bad index surfaces as a tool
// error, not a protocol error.
func TestCompleteSetToolOutOfRange(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.completeSet(context.Background(), callReq(map[string]any{"index": float64(99)}))
	if err != nil {
		t.Fatalf("completeSet: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result for out-of-range index")
	}
}

// TestPauseWorkoutTool verifies pause_workout stops the clock but keeps the
// session active.
func TestPauseWorkoutTool(t *testing.T) {
	h := newTestHandlers(t)
	h.startWorkout(context.Background(), callReq(nil))

	res, err := h.pauseWorkout(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("pauseWorkout: %v", err)
	}
	snap := resultSnapshot(t, res)
	if snap.IsRunning {
		t.Error("pause should stop the clock")
	}
	if !snap.HasActiveSession {
		t.Error("pause should keep the session active")
	}
}

// TestCancelWorkoutTool verifies cancel_workout resets the session without
// touching history.
func TestCancelWorkoutTool(t *testing.T) {
	h := newTestHandlers(t)
	h.startWorkout(context.Background(), callReq(map[string]any{"name": "Throwaway"}))
	h.completeSet(context.Background(), callReq(map[string]any{"index": float64(0)}))

	res, err := h.cancelWorkout(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("cancelWorkout: %v", err)
	}
	snap := resultSnapshot(t, res)
	if snap.HasActiveSession || snap.IsRunning {
		t.Error("cancel should deactivate the session")
	}
	if snap.WorkoutName != session.DefaultName {
		t.Errorf("workoutName = %q, want %q", snap.WorkoutName, session.DefaultName)
	}
	if snap.Exercises[0].CompletedSets != 0 {
		t.Error("cancel should wipe set progress")
	}
}

// TestGetWorkoutHistoryToolNoStore verifies history tools degrade gracefully
// when no store is configured.
func TestGetWorkoutHistoryToolNoStore(t *testing.T) {
	h := newTestHandlers(t)
	h.history = nil

	res, err := h.getWorkoutHistory(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("getWorkoutHistory: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result without a store")
	}
}

// TestListRoutinesTool verifies routines round-trip through the tool result.
func TestListRoutinesTool(t *testing.T) {
	h := newTestHandlers(t)
	h.history = &fakeHistory{routines: []routine.Routine{
		{ID: "r-1", Name: "PPL", Sequence: []routine.Day{{ID: "d1", Type: routine.DayWorkout, Name: "Push"}}},
	}}

	res, err := h.listRoutines(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("listRoutines: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
	text := res.Content[0].(mcpapi.TextContent)
	var routines []routine.Routine
	if err := json.Unmarshal([]byte(text.Text), &routines); err != nil {
		t.Fatalf("unmarshal routines: %v", err)
	}
	if len(routines) != 1 || routines[0].ID != "r-1" {
		t.Errorf("routines = %+v, want the single saved routine", routines)
	}
}
