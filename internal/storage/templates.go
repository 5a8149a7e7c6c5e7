package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repset/internal/workout"
)

// ErrNotFound reports that the requested row does not exist.
var ErrNotFound = errors.New("not found")

// WorkoutTemplate is a saved workout plan the apps start sessions from.
type WorkoutTemplate struct {
	ID        uuid.UUID          `json:"id"`
	UserID    int                `json:"userId"`
	Name      string             `json:"name"`
	Exercises []workout.Exercise `json:"exercises"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// SaveWorkoutTemplate inserts a new template and returns it with the
// generated id.
func (db *DB) SaveWorkoutTemplate(ctx context.Context, userID int, name string, exercises []workout.Exercise) (*WorkoutTemplate, error) {
	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshaling exercises: %w", err)
	}

	t := &WorkoutTemplate{ID: uuid.New(), UserID: userID, Name: name, Exercises: exercises}
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO workout_templates (id, user_id, name, exercises)
		 VALUES ($1,$2,$3,$4)
		 RETURNING created_at, updated_at`,
		t.ID, userID, name, data).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting workout template: %w", err)
	}
	return t, nil
}

// UpdateWorkoutTemplate replaces a template's name and exercises.
func (db *DB) UpdateWorkoutTemplate(ctx context.Context, id uuid.UUID, userID int, name string, exercises []workout.Exercise) error {
	data, err := json.Marshal(exercises)
	if err != nil {
		return fmt.Errorf("marshaling exercises: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_templates SET name = $1, exercises = $2, updated_at = now()
		 WHERE id = $3 AND user_id = $4`,
		name, data, id, userID)
	if err != nil {
		return fmt.Errorf("updating workout template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorkoutTemplate removes a template.
func (db *DB) DeleteWorkoutTemplate(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting workout template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWorkoutTemplates retrieves a user's saved templates, newest first.
func (db *DB) ListWorkoutTemplates(ctx context.Context, userID int) ([]WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, exercises, created_at, updated_at
		 FROM workout_templates
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout templates: %w", err)
	}
	defer rows.Close()

	var result []WorkoutTemplate
	for rows.Next() {
		var t WorkoutTemplate
		var data []byte
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &data, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout template: %w", err)
		}
		if err := json.Unmarshal(data, &t.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
