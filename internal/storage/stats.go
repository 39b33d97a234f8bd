package storage

import (
	"context"
	"fmt"
	"time"
)

// TrendPoint is one performed session's summary for a single exercise: the
// heaviest completed set and the total volume (reps × weight over all
// completed sets).
type TrendPoint struct {
	PerformedAt time.Time `json:"performedAt"`
	TopWeightKg float64   `json:"topWeightKg"`
	VolumeKg    float64   `json:"volumeKg"`
}

// ExerciseTrend returns the per-session progression of one exercise across a
// time range, oldest first. Only completed sets (reps > 0) count.
func (db *DB) ExerciseTrend(ctx context.Context, exerciseName string, start, end time.Time) ([]TrendPoint, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT ws.performed_at, MAX(ss.weight_kg), SUM(ss.reps * ss.weight_kg)
		 FROM session_sets ss
		 JOIN workout_sessions ws ON ws.id = ss.session_id
		 WHERE ss.exercise_name = ? AND ss.reps > 0
		   AND ws.performed_at >= ? AND ws.performed_at < ?
		 GROUP BY ss.session_id, ws.performed_at
		 ORDER BY ws.performed_at ASC`,
		exerciseName, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying exercise trend: %w", err)
	}
	defer rows.Close()

	var result []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.PerformedAt, &p.TopWeightKg, &p.VolumeKg); err != nil {
			return nil, fmt.Errorf("scanning trend point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// WeeklyVolume is the training volume of one ISO week.
type WeeklyVolume struct {
	WeekStart time.Time `json:"weekStart"`
	Sets      int       `json:"sets"`
	VolumeKg  float64   `json:"volumeKg"`
}

// WeeklyVolumeSeries aggregates completed sets into per-week volume over a
// time range, oldest week first. Bucketing happens in Go so it doesn't lean
// on SQLite date-function behavior against driver-formatted timestamps.
func (db *DB) WeeklyVolumeSeries(ctx context.Context, start, end time.Time) ([]WeeklyVolume, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT ws.performed_at, ss.reps, ss.weight_kg
		 FROM session_sets ss
		 JOIN workout_sessions ws ON ws.id = ss.session_id
		 WHERE ss.reps > 0 AND ws.performed_at >= ? AND ws.performed_at < ?
		 ORDER BY ws.performed_at ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying weekly volume: %w", err)
	}
	defer rows.Close()

	var result []WeeklyVolume
	index := make(map[time.Time]int)
	for rows.Next() {
		var performedAt time.Time
		var reps int
		var weight float64
		if err := rows.Scan(&performedAt, &reps, &weight); err != nil {
			return nil, fmt.Errorf("scanning volume row: %w", err)
		}
		wk := weekStart(performedAt)
		i, ok := index[wk]
		if !ok {
			i = len(result)
			index[wk] = i
			result = append(result, WeeklyVolume{WeekStart: wk})
		}
		result[i].Sets++
		result[i].VolumeKg += float64(reps) * weight
	}
	return result, rows.Err()
}

// ExerciseRecord is the heaviest completed set ever logged for an exercise.
type ExerciseRecord struct {
	ExerciseName string    `json:"exerciseName"`
	WeightKg     float64   `json:"weightKg"`
	Reps         int       `json:"reps"`
	PerformedAt  time.Time `json:"performedAt"`
}

// ExerciseRecords returns the all-time best set per exercise, alphabetically.
// Relies on SQLite's bare-column-with-MAX semantics to pick the record row.
func (db *DB) ExerciseRecords(ctx context.Context) ([]ExerciseRecord, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT ss.exercise_name, MAX(ss.weight_kg), ss.reps, ws.performed_at
		 FROM session_sets ss
		 JOIN workout_sessions ws ON ws.id = ss.session_id
		 WHERE ss.reps > 0
		 GROUP BY ss.exercise_name
		 ORDER BY ss.exercise_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise records: %w", err)
	}
	defer rows.Close()

	var result []ExerciseRecord
	for rows.Next() {
		var r ExerciseRecord
		if err := rows.Scan(&r.ExerciseName, &r.WeightKg, &r.Reps, &r.PerformedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// weekStart truncates a timestamp to the preceding Monday, midnight UTC.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
