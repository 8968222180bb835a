package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// ProgramRepository handles database operations for programs
type ProgramRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db, sb: newStatementBuilder()}
}

func (r *ProgramRepository) Create(ctx context.Context, p *models.Program) error {
	sql, args, err := r.sb.Insert("programs").
		Columns("code", "name", "service", "head_of_program_id").
		Values(p.Code, p.Name, p.Service, p.HeadOfProgramID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create program query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "programs_code_key") {
			return ErrProgramCodeTaken
		}
		return fmt.Errorf("error creating program: %w", err)
	}
	return nil
}

func (r *ProgramRepository) selectPrograms() squirrel.SelectBuilder {
	return r.sb.Select("id", "code", "name", "service", "head_of_program_id", "created_at", "updated_at").From("programs")
}

func scanProgram(row pgx.Row) (*models.Program, error) {
	var p models.Program
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Service, &p.HeadOfProgramID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	sql, args, err := r.selectPrograms().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}
	p, err := scanProgram(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return p, nil
}

func (r *ProgramRepository) List(ctx context.Context) ([]*models.Program, error) {
	sql, args, err := r.selectPrograms().OrderBy("code").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list programs query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	programs := make([]*models.Program, 0)
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// CourseRepository handles database operations for courses and their
// lecturer assignments
type CourseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db, sb: newStatementBuilder()}
}

func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("program_id", "code", "title", "credit_hours").
		Values(c.ProgramID, c.Code, c.Title, c.CreditHours).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "courses_code_key") {
			return ErrCourseCodeTaken
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// selectCourses aggregates lecturer IDs so one query loads a course fully.
func (r *CourseRepository) selectCourses() squirrel.SelectBuilder {
	return r.sb.Select("c.id", "c.program_id", "c.code", "c.title", "c.credit_hours",
		"COALESCE(array_agg(cl.lecturer_id) FILTER (WHERE cl.lecturer_id IS NOT NULL), '{}')",
		"c.created_at", "c.updated_at").
		From("courses c").
		LeftJoin("course_lecturers cl ON cl.course_id = c.id").
		GroupBy("c.id")
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	if err := row.Scan(&c.ID, &c.ProgramID, &c.Code, &c.Title, &c.CreditHours, &c.LecturerIDs, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.selectCourses().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}
	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return c, nil
}

func (r *CourseRepository) List(ctx context.Context, programID *int64) ([]*models.Course, error) {
	q := r.selectCourses().OrderBy("c.code")
	if programID != nil {
		q = q.Where(squirrel.Eq{"c.program_id": *programID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// AssignLecturer is idempotent.
func (r *CourseRepository) AssignLecturer(ctx context.Context, courseID, lecturerID int64) error {
	sql, args, err := r.sb.Insert("course_lecturers").
		Columns("course_id", "lecturer_id").
		Values(courseID, lecturerID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign lecturer query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error assigning lecturer: %w", err)
	}
	return nil
}
