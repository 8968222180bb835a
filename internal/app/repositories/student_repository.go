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

var studentColumns = []string{
	"id", "application_id", "matric_number", "first_name", "last_name", "email", "phone",
	"personal_info_confirmed", "password", "status", "graduated_at", "created_at", "updated_at",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DBTX) *StudentRepository {
	return &StudentRepository{db: db, sb: newStatementBuilder()}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.ApplicationID, &s.MatricNumber, &s.FirstName, &s.LastName, &s.Email, &s.Phone,
		&s.PersonalInfoConfirmed, &s.Password, &s.Status, &s.GraduatedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("application_id", "matric_number", "first_name", "last_name", "email", "phone",
			"personal_info_confirmed", "password", "status").
		Values(student.ApplicationID, student.MatricNumber, student.FirstName, student.LastName, student.Email,
			student.Phone, student.PersonalInfoConfirmed, student.Password, student.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "students_application_id_key"):
			logger.Warn().Interface("applicationID", student.ApplicationID).Msg("Attempted to create a second student for an application")
			return ErrStudentExists
		case dberrors.IsDuplicateConstraintError(err, "students_matric_number_key"):
			return ErrMatricNumberTaken
		}
		logger.Error().Err(err).Str("matricNumber", student.MatricNumber).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Int64("studentID", student.ID).Str("matricNumber", student.MatricNumber).Msg("Student created successfully")
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *StudentRepository) GetByApplicationID(ctx context.Context, applicationID int64) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"application_id": applicationID})
}

func (r *StudentRepository) GetByMatricNumber(ctx context.Context, matric string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"matric_number": matric})
}

func (r *StudentRepository) MarkGraduated(ctx context.Context, id int64, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("students").
		Set("status", models.StudentGraduated).
		Set("graduated_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": models.StudentGraduated}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build graduate student query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error graduating student: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *StudentRepository) UpdatePersonalInfo(ctx context.Context, id int64, firstName, lastName string, phone *string) error {
	sql, args, err := r.sb.Update("students").
		Set("first_name", firstName).
		Set("last_name", lastName).
		Set("phone", phone).
		Set("personal_info_confirmed", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update personal info query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating personal info: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// StudentProgrammeRepository handles student_programmes rows
type StudentProgrammeRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewStudentProgrammeRepository(db DBTX) *StudentProgrammeRepository {
	return &StudentProgrammeRepository{db: db, sb: newStatementBuilder()}
}

func (r *StudentProgrammeRepository) Create(ctx context.Context, p *models.StudentProgramme) error {
	sql, args, err := r.sb.Insert("student_programmes").
		Columns("student_id", "program_id", "status", "supervisor_id", "start_date").
		Values(p.StudentID, p.ProgramID, p.Status, p.SupervisorID, p.StartDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create programme query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "student_programmes_student_program_key") {
			return ErrProgrammeExists
		}
		return fmt.Errorf("error creating student programme: %w", err)
	}
	return nil
}

func (r *StudentProgrammeRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.StudentProgramme, error) {
	sql, args, err := r.sb.Select("id", "student_id", "program_id", "status", "supervisor_id",
		"internal_examiner_id", "external_examiner_id", "start_date", "end_date", "created_at", "updated_at").
		From("student_programmes").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list programmes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing student programmes: %w", err)
	}
	defer rows.Close()

	programmes := make([]*models.StudentProgramme, 0)
	for rows.Next() {
		var p models.StudentProgramme
		if err := rows.Scan(&p.ID, &p.StudentID, &p.ProgramID, &p.Status, &p.SupervisorID,
			&p.InternalExaminerID, &p.ExternalExaminerID, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		programmes = append(programmes, &p)
	}
	return programmes, rows.Err()
}

func (r *StudentProgrammeRepository) AdvanceStatus(ctx context.Context, studentID int64, from []models.ProgrammeStatus, to models.ProgrammeStatus, endDate *time.Time) (int64, error) {
	q := r.sb.Update("student_programmes").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"student_id": studentID, "status": from})
	if endDate != nil {
		q = q.Set("end_date", *endDate)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build advance programme query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error advancing student programmes: %w", err)
	}
	return tag.RowsAffected(), nil
}
