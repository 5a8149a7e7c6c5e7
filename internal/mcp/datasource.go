package mcp

import (
	"context"
	"time"

	"github.com/meltforce/repset/internal/routine"
	"github.com/meltforce/repset/internal/storage"
)

// HistorySource is the slice of the storage layer the history tools need.
// *storage.DB satisfies it; the standalone stdio binary runs without one.
type HistorySource interface {
	ListCompletedWorkouts(ctx context.Context, start, end time.Time, userID int) ([]storage.CompletedWorkoutRow, error)
	ListRoutines(ctx context.Context, userID int) ([]routine.Routine, error)
}

// Compile-time check: *storage.DB satisfies HistorySource.
var _ HistorySource = (*storage.DB)(nil)
