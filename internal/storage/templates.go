package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// CreateTemplate inserts a template and its exercises in one transaction.
func (db *DB) CreateTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO workout_templates (id, name, created_at, weeks_completed)
		 VALUES (?, ?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt, t.WeeksCompleted)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	if err := insertExercises(ctx, tx, t.ID, t.Exercises); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTemplate retrieves a template with its exercises ordered by sort_order.
// Returns (nil, nil) when the template does not exist.
func (db *DB) GetTemplate(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, name, created_at, weeks_completed
		 FROM workout_templates WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.WeeksCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}

	t.Exercises, err = db.exercisesFor(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTemplates retrieves all templates, newest first, with exercises loaded.
func (db *DB) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, created_at, weeks_completed
		 FROM workout_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		var t models.WorkoutTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.WeeksCompleted); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].Exercises, err = db.exercisesFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpdateTemplate replaces a template's name and exercise list. The weeks
// counter is preserved; AdvanceWeek is the only writer of it. Returns false
// if the template does not exist.
func (db *DB) UpdateTemplate(ctx context.Context, t models.WorkoutTemplate) (bool, error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE workout_templates SET name = ? WHERE id = ?`, t.Name, t.ID)
	if err != nil {
		return false, fmt.Errorf("updating template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM template_exercises WHERE template_id = ?`, t.ID); err != nil {
		return false, fmt.Errorf("clearing template exercises: %w", err)
	}
	if err := insertExercises(ctx, tx, t.ID, t.Exercises); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// DeleteTemplate removes a template and, via cascade, its exercises. Returns
// false if the template does not exist.
func (db *DB) DeleteTemplate(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := db.sql.ExecContext(ctx,
		`DELETE FROM workout_templates WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AdvanceWeek bumps the template's completed-week counter by exactly one and
// returns the new value. Each call is one more week: the user saying "this
// week's targets are done", not an idempotent upsert. Returns false if the
// template does not exist.
func (db *DB) AdvanceWeek(ctx context.Context, id uuid.UUID) (int, bool, error) {
	var weeks int
	err := db.sql.QueryRowContext(ctx,
		`UPDATE workout_templates SET weeks_completed = weeks_completed + 1
		 WHERE id = ? RETURNING weeks_completed`, id).Scan(&weeks)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("advancing week: %w", err)
	}
	return weeks, true, nil
}

func (db *DB) exercisesFor(ctx context.Context, templateID uuid.UUID) ([]models.ExerciseSpec, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, sets_count, reps_target, rest_seconds,
		 start_weight_kg, weekly_increment_kg, sort_order
		 FROM template_exercises WHERE template_id = ? ORDER BY sort_order ASC`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseSpec
	for rows.Next() {
		var e models.ExerciseSpec
		if err := rows.Scan(&e.ID, &e.Name, &e.SetsCount, &e.RepsTarget, &e.RestSeconds,
			&e.StartWeightKg, &e.WeeklyIncrementKg, &e.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func insertExercises(ctx context.Context, tx *sql.Tx, templateID uuid.UUID, exercises []models.ExerciseSpec) error {
	for _, e := range exercises {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO template_exercises (id, template_id, name, sets_count, reps_target,
			 rest_seconds, start_weight_kg, weekly_increment_kg, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, templateID, e.Name, e.SetsCount, e.RepsTarget,
			e.RestSeconds, e.StartWeightKg, e.WeeklyIncrementKg, e.SortOrder)
		if err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
	}
	return nil
}
