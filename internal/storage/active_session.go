package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SaveActiveSession upserts the singleton crash-recovery blob. There is at
// most one active session system-wide, so the row id is fixed.
func (db *DB) SaveActiveSession(ctx context.Context, blob []byte) error {
	_, err := db.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO active_session (id, payload, updated_at)
		 VALUES (1, ?, CURRENT_TIMESTAMP)`, string(blob))
	if err != nil {
		return fmt.Errorf("saving active session: %w", err)
	}
	return nil
}

// LoadActiveSession returns the persisted blob, or (nil, nil) when no session
// is stored.
func (db *DB) LoadActiveSession(ctx context.Context) ([]byte, error) {
	var payload string
	err := db.sql.QueryRowContext(ctx,
		`SELECT payload FROM active_session WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading active session: %w", err)
	}
	return []byte(payload), nil
}

// ClearActiveSession deletes the singleton row. Clearing an empty store is a
// no-op.
func (db *DB) ClearActiveSession(ctx context.Context) error {
	if _, err := db.sql.ExecContext(ctx, `DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}
