package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/acesped/portal/internal/app/models"
	"github.com/jackc/pgx/v5"
)

// SystemSettingRepository handles versioned key/value settings
type SystemSettingRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewSystemSettingRepository(db DBTX) *SystemSettingRepository {
	return &SystemSettingRepository{db: db, sb: newStatementBuilder()}
}

func (r *SystemSettingRepository) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	sql, args, err := r.sb.Select("key", "value", "version", "updated_by", "updated_at").
		From("system_settings").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get setting query: %w", err)
	}
	var s models.SystemSetting
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.Key, &s.Value, &s.Version, &s.UpdatedBy, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving setting: %w", err)
	}
	return &s, nil
}

func (r *SystemSettingRepository) Put(ctx context.Context, key, value string, expectedVersion *int64, updatedBy *int64, at time.Time) (*models.SystemSetting, error) {
	var (
		sql  string
		args []interface{}
		err  error
	)
	switch {
	case expectedVersion == nil:
		// Last write wins.
		sql, args, err = r.sb.Insert("system_settings").
			Columns("key", "value", "version", "updated_by", "updated_at").
			Values(key, value, 1, updatedBy, at).
			Suffix(`ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
				    version = system_settings.version + 1,
				    updated_by = EXCLUDED.updated_by,
				    updated_at = EXCLUDED.updated_at
				RETURNING key, value, version, updated_by, updated_at`).
			ToSql()
	case *expectedVersion == 0:
		// Only if nobody has written it yet.
		sql, args, err = r.sb.Insert("system_settings").
			Columns("key", "value", "version", "updated_by", "updated_at").
			Values(key, value, 1, updatedBy, at).
			Suffix("ON CONFLICT (key) DO NOTHING RETURNING key, value, version, updated_by, updated_at").
			ToSql()
	default:
		sql, args, err = r.sb.Update("system_settings").
			Set("value", value).
			Set("version", squirrel.Expr("version + 1")).
			Set("updated_by", updatedBy).
			Set("updated_at", at).
			Where(squirrel.Eq{"key": key, "version": *expectedVersion}).
			Suffix("RETURNING key, value, version, updated_by, updated_at").
			ToSql()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build put setting query: %w", err)
	}

	var s models.SystemSetting
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.Key, &s.Value, &s.Version, &s.UpdatedBy, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVersionMismatch
		}
		return nil, fmt.Errorf("error saving setting: %w", err)
	}
	return &s, nil
}
