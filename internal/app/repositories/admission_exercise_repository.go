package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/acesped/portal/internal/app/models"
	"github.com/jackc/pgx/v5"
)

// AdmissionExerciseRepository stores exercise scores keyed by application number.
type AdmissionExerciseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewAdmissionExerciseRepository(db DBTX) *AdmissionExerciseRepository {
	return &AdmissionExerciseRepository{db: db, sb: newStatementBuilder()}
}

// Upsert inserts or replaces the exercise for its application number.
func (r *AdmissionExerciseRepository) Upsert(ctx context.Context, ex *models.AdmissionExercise) error {
	sql, args, err := r.sb.Insert("admission_exercises").
		Columns("application_number", "components", "total", "recorded_by").
		Values(ex.ApplicationNumber, ex.Components, ex.Total, ex.RecordedBy).
		Suffix(`ON CONFLICT (application_number) DO UPDATE
			SET components = EXCLUDED.components,
			    total = EXCLUDED.total,
			    recorded_by = EXCLUDED.recorded_by,
			    updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert exercise query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ex.ID, &ex.CreatedAt, &ex.UpdatedAt); err != nil {
		return fmt.Errorf("error saving admission exercise: %w", err)
	}
	return nil
}

func (r *AdmissionExerciseRepository) GetByApplicationNumber(ctx context.Context, number string) (*models.AdmissionExercise, error) {
	sql, args, err := r.sb.Select("id", "application_number", "components", "total", "recorded_by", "created_at", "updated_at").
		From("admission_exercises").
		Where(squirrel.Eq{"application_number": number}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exercise query: %w", err)
	}

	var ex models.AdmissionExercise
	err = r.db.QueryRow(ctx, sql, args...).Scan(&ex.ID, &ex.ApplicationNumber, &ex.Components, &ex.Total,
		&ex.RecordedBy, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving admission exercise: %w", err)
	}
	return &ex, nil
}
