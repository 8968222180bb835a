package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/pkg/dberrors"
	"github.com/acesped/portal/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

var registrationColumns = []string{
	"id", "student_id", "course_id", "session", "semester", "status", "score", "grade",
	"result_recorded_by", "result_recorded_at", "created_at", "updated_at",
}

// RegistrationRepository handles course registration rows
type RegistrationRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewRegistrationRepository(db DBTX) *RegistrationRepository {
	return &RegistrationRepository{db: db, sb: newStatementBuilder()}
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.StudentID, &reg.CourseID, &reg.Session, &reg.Semester, &reg.Status,
		&reg.Score, &reg.Grade, &reg.ResultRecordedBy, &reg.ResultRecordedAt, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	sql, args, err := r.sb.Insert("course_registrations").
		Columns("student_id", "course_id", "session", "semester", "status").
		Values(reg.StudentID, reg.CourseID, reg.Session, reg.Semester, reg.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create registration query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "course_registrations_student_course_term_key") {
			return ErrRegistrationExists
		}
		logger.Error().Err(err).Int64("studentID", reg.StudentID).Int64("courseID", reg.CourseID).Msg("Error creating registration")
		return fmt.Errorf("error creating registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*models.Registration, error) {
	sql, args, err := r.sb.Select(registrationColumns...).From("course_registrations").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get registration query: %w", err)
	}
	reg, err := scanRegistration(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Registration, error) {
	sql, args, err := r.sb.Select(registrationColumns...).From("course_registrations").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("session", "semester", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list registrations query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *RegistrationRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("course_registrations").Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count registrations query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting registrations: %w", err)
	}
	return n, nil
}

func (r *RegistrationRepository) Withdraw(ctx context.Context, id int64, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("course_registrations").
		Set("status", models.RegistrationWithdrawn).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": models.RegistrationRegistered, "grade": nil}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build withdraw query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error withdrawing registration: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RegistrationRepository) RecordResult(ctx context.Context, id int64, score float64, grade models.Grade, recordedBy *int64, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("course_registrations").
		Set("score", score).
		Set("grade", grade).
		Set("result_recorded_by", recordedBy).
		Set("result_recorded_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": models.RegistrationRegistered}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build record result query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error recording result: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RegistrationRepository) GradedForStudent(ctx context.Context, studentID int64) ([]models.GradedRegistration, error) {
	sql, args, err := r.sb.Select("r.id", "r.course_id", "r.session", "r.semester", "c.credit_hours", "r.grade").
		From("course_registrations r").
		Join("courses c ON c.id = r.course_id").
		Where(squirrel.Eq{"r.student_id": studentID}).
		Where(squirrel.NotEq{"r.grade": nil}).
		OrderBy("r.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build graded registrations query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading graded registrations: %w", err)
	}
	defer rows.Close()

	graded := make([]models.GradedRegistration, 0)
	for rows.Next() {
		var g models.GradedRegistration
		if err := rows.Scan(&g.RegistrationID, &g.CourseID, &g.Session, &g.Semester, &g.CreditHours, &g.Grade); err != nil {
			return nil, err
		}
		graded = append(graded, g)
	}
	return graded, rows.Err()
}
