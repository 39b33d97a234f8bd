package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools; *storage.DB satisfies it.
type DataSource interface {
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error)
	QueryWorkoutSessions(ctx context.Context, start, end time.Time) ([]models.WorkoutSession, error)
	ExerciseTrend(ctx context.Context, exerciseName string, start, end time.Time) ([]storage.TrendPoint, error)
	WeeklyVolumeSeries(ctx context.Context, start, end time.Time) ([]storage.WeeklyVolume, error)
	ExerciseRecords(ctx context.Context) ([]storage.ExerciseRecord, error)
	LoadActiveSession(ctx context.Context) ([]byte, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
