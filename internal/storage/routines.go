package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/repset/internal/routine"
)

// SaveRoutine inserts a routine definition with its day sequence as JSONB.
// The given id is kept when valid so clients can reference routines they
// created offline; otherwise a new one is generated.
func (db *DB) SaveRoutine(ctx context.Context, userID int, r routine.Routine) (routine.Routine, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	sequence, err := json.Marshal(r.Sequence)
	if err != nil {
		return r, fmt.Errorf("marshaling sequence: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO routines (id, user_id, name, sequence)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, sequence = excluded.sequence`,
		r.ID, userID, r.Name, sequence)
	if err != nil {
		return r, fmt.Errorf("inserting routine: %w", err)
	}
	return r, nil
}

// ListRoutines retrieves a user's routine definitions.
func (db *DB) ListRoutines(ctx context.Context, userID int) ([]routine.Routine, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, sequence FROM routines WHERE user_id = $1 ORDER BY created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []routine.Routine
	for rows.Next() {
		var r routine.Routine
		var sequence []byte
		if err := rows.Scan(&r.ID, &r.Name, &sequence); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		if err := json.Unmarshal(sequence, &r.Sequence); err != nil {
			return nil, fmt.Errorf("decoding sequence: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteRoutine removes a routine definition.
func (db *DB) DeleteRoutine(ctx context.Context, id string, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM routines WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
