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

var applicationColumns = []string{
	"id", "application_number", "first_name", "last_name", "email", "phone", "gender",
	"nationality", "highest_qualification", "program_id", "admission_session", "status",
	"reviewed_by", "status_updated_at", "interview_scheduled_for", "created_at", "updated_at",
}

// ApplicationRepository handles database operations for applications
type ApplicationRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db, sb: newStatementBuilder()}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.ApplicationNumber, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.Gender,
		&a.Nationality, &a.HighestQualification, &a.ProgramID, &a.AdmissionSession, &a.Status,
		&a.ReviewedBy, &a.StatusUpdatedAt, &a.InterviewScheduledFor, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an application. Uniqueness is left to the constraints so
// concurrent duplicate submissions cannot both succeed.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	sql, args, err := r.sb.Insert("applications").
		Columns("application_number", "first_name", "last_name", "email", "phone", "gender",
			"nationality", "highest_qualification", "program_id", "admission_session", "status").
		Values(app.ApplicationNumber, app.FirstName, app.LastName, app.Email, app.Phone, app.Gender,
			app.Nationality, app.HighestQualification, app.ProgramID, app.AdmissionSession, app.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "applications_email_session_key"):
			return ErrApplicationExists
		case dberrors.IsDuplicateConstraintError(err, "applications_application_number_key"):
			return ErrApplicationNumberTaken
		}
		logger.Error().Err(err).Str("email", app.Email).Msg("Error creating application")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).From("applications").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}
	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *ApplicationRepository) GetByNumber(ctx context.Context, number string) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"application_number": number})
}

func (r *ApplicationRepository) GetByEmailAndSession(ctx context.Context, email, session string) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email, "admission_session": session})
}

func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationListFilter) ([]*models.Application, int64, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.AdmissionSession != "" {
		where = append(where, squirrel.Eq{"admission_session": filter.AdmissionSession})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	sql, args, err := r.sb.Select(applicationColumns...).From("applications").Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(filter.Offset).
		Limit(uint64(filter.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *ApplicationRepository) TransitionStatus(ctx context.Context, number string, from, to models.ApplicationStatus, reviewedBy *int64, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("applications").
		Set("status", to).
		Set("reviewed_by", reviewedBy).
		Set("status_updated_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"application_number": number, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build transition status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("applicationNumber", number).Msg("Error updating application status")
		return false, fmt.Errorf("error updating application status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ApplicationRepository) SetInterviewDate(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := r.sb.Update("applications").
		Set("interview_scheduled_for", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set interview date query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting interview date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
