package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// CreateWorkoutSession writes a history record and all its sets in one
// transaction. Either the whole session lands or none of it does; the session
// state machine relies on that for its no-partial-finish contract.
func (db *DB) CreateWorkoutSession(ctx context.Context, rec models.WorkoutSession) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workout_sessions (id, workout_id, performed_at, bodyweight_kg)
		 VALUES (?, ?, ?, ?)`,
		rec.ID, rec.WorkoutID, rec.PerformedAt, rec.BodyweightKg)
	if err != nil {
		return fmt.Errorf("inserting workout session: %w", err)
	}
	if err := insertSessionSets(ctx, tx, rec.ID, rec.Sets); err != nil {
		return err
	}
	return tx.Commit()
}

// HasWorkoutSessionSince reports whether any history record exists for the
// workout performed at or after the given instant. Recovery uses it to detect
// a stale active-session blob left behind by a failed post-finish clear.
func (db *DB) HasWorkoutSessionSince(ctx context.Context, workoutID uuid.UUID, since time.Time) (bool, error) {
	var exists bool
	err := db.sql.QueryRowContext(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM workout_sessions WHERE workout_id = ? AND performed_at >= ?
		 )`, workoutID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking workout history: %w", err)
	}
	return exists, nil
}

// QueryWorkoutSessions retrieves history records in a time range, newest
// first, with their sets loaded in logged order.
func (db *DB) QueryWorkoutSessions(ctx context.Context, start, end time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, workout_id, performed_at, bodyweight_kg
		 FROM workout_sessions
		 WHERE performed_at >= ? AND performed_at < ?
		 ORDER BY performed_at DESC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workout sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		var rec models.WorkoutSession
		if err := rows.Scan(&rec.ID, &rec.WorkoutID, &rec.PerformedAt, &rec.BodyweightKg); err != nil {
			return nil, fmt.Errorf("scanning workout session: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Sets, err = db.setsFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// GetWorkoutSession retrieves one history record with its sets. Returns
// (nil, nil) when it does not exist.
func (db *DB) GetWorkoutSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	var rec models.WorkoutSession
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, workout_id, performed_at, bodyweight_kg
		 FROM workout_sessions WHERE id = ?`, id).
		Scan(&rec.ID, &rec.WorkoutID, &rec.PerformedAt, &rec.BodyweightKg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout session: %w", err)
	}

	rec.Sets, err = db.setsFor(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateWorkoutSession replaces a history record's fields and sets. Returns
// false if the record does not exist.
func (db *DB) UpdateWorkoutSession(ctx context.Context, rec models.WorkoutSession) (bool, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE workout_sessions SET performed_at = ?, bodyweight_kg = ? WHERE id = ?`,
		rec.PerformedAt, rec.BodyweightKg, rec.ID)
	if err != nil {
		return false, fmt.Errorf("updating workout session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_sets WHERE session_id = ?`, rec.ID); err != nil {
		return false, fmt.Errorf("clearing session sets: %w", err)
	}
	if err := insertSessionSets(ctx, tx, rec.ID, rec.Sets); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// DeleteWorkoutSession removes a history record and its sets. Returns false
// if the record does not exist.
func (db *DB) DeleteWorkoutSession(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := db.sql.ExecContext(ctx,
		`DELETE FROM workout_sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting workout session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *DB) setsFor(ctx context.Context, sessionID uuid.UUID) ([]models.SessionSet, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT workout_exercise_id, exercise_name, set_number, reps, weight_kg
		 FROM session_sets WHERE session_id = ? ORDER BY position ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SessionSet
	for rows.Next() {
		var s models.SessionSet
		if err := rows.Scan(&s.WorkoutExerciseID, &s.ExerciseName, &s.SetNumber, &s.Reps, &s.WeightKg); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func insertSessionSets(ctx context.Context, tx *sql.Tx, sessionID uuid.UUID, sets []models.SessionSet) error {
	for i, s := range sets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_sets (session_id, position, workout_exercise_id,
			 exercise_name, set_number, reps, weight_kg)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, i, s.WorkoutExerciseID, s.ExerciseName, s.SetNumber, s.Reps, s.WeightKg)
		if err != nil {
			return fmt.Errorf("inserting session set: %w", err)
		}
	}
	return nil
}
