package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/repset/internal/session"
	"github.com/meltforce/repset/internal/workout"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Get the current workout session state: name, exercise list with completed sets, current exercise index, elapsed and rest timers."),
)

var toolStartWorkout = mcp.NewTool("start_workout",
	mcp.WithDescription("Start (or resume) the workout session. The current exercise list is kept; pass a name to rename the workout."),
	mcp.WithString("name", mcp.Description("Workout name. Defaults to the current name.")),
	mcp.WithString("routine_id", mcp.Description("Routine this workout belongs to, if any.")),
)

var toolCompleteSet = mcp.NewTool("complete_set",
	mcp.WithDescription("Log a completed set for an exercise and start the rest countdown. Reps default to the exercise target."),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based exercise index in the session list")),
	mcp.WithNumber("weight", mcp.Description("Weight used, in the user's unit")),
	mcp.WithNumber("reps", mcp.Description("Reps performed. Defaults to the exercise's target reps.")),
	mcp.WithNumber("duration", mcp.Description("Duration in seconds, for timed exercises")),
	mcp.WithNumber("distance", mcp.Description("Distance covered, for cardio exercises")),
)

var toolPauseWorkout = mcp.NewTool("pause_workout",
	mcp.WithDescription("Pause the workout clock. Session state and elapsed time are kept."),
)

var toolFinishWorkout = mcp.NewTool("finish_workout",
	mcp.WithDescription("Finish the workout: save it to history and reset the session. Fails without resetting if the save fails."),
	mcp.WithString("note", mcp.Description("Optional note stored with the completed workout")),
)

var toolCancelWorkout = mcp.NewTool("cancel_workout",
	mcp.WithDescription("Discard the workout session without saving anything to history."),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Query completed workouts. Returns name, duration, exercises with logged sets, and notes."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("List saved routines with their day sequences (workout and rest days)."),
)

// --- Tool handlers ---

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.engine.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) startWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.StartWorkout(session.StartOptions{
		Name:      req.GetString("name", ""),
		RoutineID: req.GetString("routine_id", ""),
	})

	result, err := mcp.NewToolResultJSON(h.engine.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) completeSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("index parameter is required"), nil
	}

	input := &workout.SetInput{}
	if v := req.GetFloat("weight", -1); v >= 0 {
		input.Weight = &v
	}
	if v := req.GetInt("reps", -1); v >= 0 {
		input.Reps = &v
	}
	if v := req.GetFloat("duration", -1); v >= 0 {
		input.Duration = &v
	}
	if v := req.GetFloat("distance", -1); v >= 0 {
		input.Distance = &v
	}

	if err := h.engine.CompleteSet(index, input); err != nil {
		return mcp.NewToolResultError("completing set: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.engine.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) pauseWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.PauseWorkout()

	result, err := mcp.NewToolResultJSON(h.engine.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) finishWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note := req.GetString("note", "")

	if err := h.engine.FinishWorkout(ctx, note); err != nil {
		h.log.Error("mcp finish_workout", "error", err)
		return mcp.NewToolResultError("saving workout: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.engine.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) cancelWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.CancelWorkout()

	result, err := mcp.NewToolResultJSON(h.engine.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.history == nil {
		return mcp.NewToolResultError("workout store is not configured"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.history.ListCompletedWorkouts(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.history == nil {
		return mcp.NewToolResultError("workout store is not configured"), nil
	}

	uid := UserIDFromContext(ctx)
	routines, err := h.history.ListRoutines(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(routines)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
