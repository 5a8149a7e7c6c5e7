// Package mcp exposes the live workout session and the workout store to
// model-driven clients over the Model Context Protocol. Tools mutate the
// session through the same controller the HTTP API uses, so both surfaces
// always agree on state.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/repset/internal/session"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// history may be nil when no workout store is configured; history tools
// then report that the store is unavailable.
func New(engine *session.Controller, history HistorySource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepSet", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepSet workout session server. Inspect and drive the active workout session (start, log sets, pause, finish) and query completed workout history and routines."),
	)

	h := &handlers{engine: engine, history: history, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetActiveSession, Handler: h.getActiveSession},
		server.ServerTool{Tool: toolStartWorkout, Handler: h.startWorkout},
		server.ServerTool{Tool: toolCompleteSet, Handler: h.completeSet},
		server.ServerTool{Tool: toolPauseWorkout, Handler: h.pauseWorkout},
		server.ServerTool{Tool: toolFinishWorkout, Handler: h.finishWorkout},
		server.ServerTool{Tool: toolCancelWorkout, Handler: h.cancelWorkout},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolListRoutines, Handler: h.listRoutines},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActiveSession, Handler: h.activeSession},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	engine  *session.Controller
	history HistorySource
	log     *slog.Logger
}

// --- Resource definitions ---

var resActiveSession = mcp.NewResource(
	"repset://active_session",
	"Active Session",
	mcp.WithResourceDescription("Live snapshot of the in-progress workout: name, exercises, completed sets, timers"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"repset://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Completed workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
