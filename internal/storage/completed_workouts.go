package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repset/internal/session"
	"github.com/meltforce/repset/internal/workout"
)

// CompletedWorkoutRow is a finished workout as stored, exercises serialized
// as JSONB.
type CompletedWorkoutRow struct {
	ID              uuid.UUID          `json:"id"`
	UserID          int                `json:"userId"`
	Name            string             `json:"name"`
	DurationSec     int                `json:"durationSec"`
	Note            string             `json:"note,omitempty"`
	RoutineID       string             `json:"routineId,omitempty"`
	SourceWorkoutID string             `json:"sourceWorkoutId,omitempty"`
	Exercises       []workout.Exercise `json:"exercises"`
	PerformedAt     time.Time          `json:"performedAt"`
}

// SaveCompletedWorkout persists a finished session. Satisfies session.Store.
func (db *DB) SaveCompletedWorkout(ctx context.Context, cw session.CompletedWorkout) error {
	exercises, err := json.Marshal(cw.Exercises)
	if err != nil {
		return fmt.Errorf("marshaling exercises: %w", err)
	}

	performedAt := cw.FinishedAt
	if performedAt.IsZero() {
		performedAt = time.Now()
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO completed_workouts (id, user_id, name, duration_sec, note, routine_id, source_workout_id, exercises, performed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		uuid.New(), 1, cw.Name, cw.DurationSeconds, cw.Note,
		nullIfEmpty(cw.RoutineID), nullIfEmpty(cw.SourceWorkoutID), exercises, performedAt)
	if err != nil {
		return fmt.Errorf("inserting completed workout: %w", err)
	}
	return nil
}

// Compile-time check: *DB satisfies session.Store.
var _ session.Store = (*DB)(nil)

// ListCompletedWorkouts retrieves workout history in a time range, newest
// first.
func (db *DB) ListCompletedWorkouts(ctx context.Context, start, end time.Time, userID int) ([]CompletedWorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, duration_sec, COALESCE(note, ''), COALESCE(routine_id, ''),
		 COALESCE(source_workout_id, ''), exercises, performed_at
		 FROM completed_workouts
		 WHERE performed_at >= $1 AND performed_at < $2 AND user_id = $3
		 ORDER BY performed_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()

	var result []CompletedWorkoutRow
	for rows.Next() {
		var cw CompletedWorkoutRow
		var exercises []byte
		if err := rows.Scan(&cw.ID, &cw.UserID, &cw.Name, &cw.DurationSec, &cw.Note,
			&cw.RoutineID, &cw.SourceWorkoutID, &exercises, &cw.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning completed workout: %w", err)
		}
		if err := json.Unmarshal(exercises, &cw.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises: %w", err)
		}
		result = append(result, cw)
	}
	return result, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
