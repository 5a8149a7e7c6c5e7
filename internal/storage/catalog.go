package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CatalogExercise is one entry in the browsable exercise catalog. Custom
// exercises belong to a user; stock entries have UserID 0.
type CatalogExercise struct {
	ID          uuid.UUID `json:"id"`
	UserID      int       `json:"userId,omitempty"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscleGroup"`
	IsCustom    bool      `json:"isCustom"`
}

// FetchExercises retrieves the catalog visible to a user: stock entries plus
// their own custom ones.
func (db *DB) FetchExercises(ctx context.Context, userID int) ([]CatalogExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, muscle_group, is_custom
		 FROM catalog_exercises
		 WHERE user_id = 0 OR user_id = $1
		 ORDER BY muscle_group, name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise catalog: %w", err)
	}
	defer rows.Close()

	var result []CatalogExercise
	for rows.Next() {
		var e CatalogExercise
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.MuscleGroup, &e.IsCustom); err != nil {
			return nil, fmt.Errorf("scanning catalog exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// FetchMuscleGroups retrieves the distinct muscle groups in the catalog.
func (db *DB) FetchMuscleGroups(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT muscle_group FROM catalog_exercises ORDER BY muscle_group`)
	if err != nil {
		return nil, fmt.Errorf("querying muscle groups: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scanning muscle group: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// CreateCustomExercise adds a user-defined exercise to the catalog.
func (db *DB) CreateCustomExercise(ctx context.Context, userID int, name, muscleGroup string) (*CatalogExercise, error) {
	e := &CatalogExercise{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		MuscleGroup: muscleGroup,
		IsCustom:    true,
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO catalog_exercises (id, user_id, name, muscle_group, is_custom)
		 VALUES ($1,$2,$3,$4,true)`,
		e.ID, userID, name, muscleGroup)
	if err != nil {
		return nil, fmt.Errorf("inserting custom exercise: %w", err)
	}
	return e, nil
}
