package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/snipstudio/snipstudio/apperror"
)

// GetSetting reads one settings row. An absent key is ErrNotFound, which
// the settings service treats as "no value", not a failure.
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("setting", key)
		}
		return "", apperror.PersistenceFailed(fmt.Sprintf("sqlite: getting setting %s", key), err)
	}
	return value, nil
}

// SetSetting upserts a settings row. Idempotent: repeated calls with the
// same pair are indistinguishable from one.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return apperror.PersistenceFailed(fmt.Sprintf("sqlite: setting %s", key), err)
	}
	return nil
}

// DeleteSetting removes a settings row. Deleting an absent key is not an
// error; the post-condition (key absent) already holds.
func (db *DB) DeleteSetting(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return apperror.PersistenceFailed(fmt.Sprintf("sqlite: deleting setting %s", key), err)
	}
	return nil
}
