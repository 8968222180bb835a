package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository errors. Implementations translate storage-specific failures
// (unique violations, missing rows) into these.
var (
	ErrNotFound               = errors.New("record not found")
	ErrApplicationExists      = errors.New("an application for this email and session already exists")
	ErrApplicationNumberTaken = errors.New("application number already in use")
	ErrStudentExists          = errors.New("a student already exists for this application")
	ErrMatricNumberTaken      = errors.New("matric number already in use")
	ErrProgrammeExists        = errors.New("student is already enrolled in this program")
	ErrRegistrationExists     = errors.New("student is already registered for this course in this session and semester")
	ErrEmailTaken             = errors.New("email already in use")
	ErrAccessCodeTaken        = errors.New("access code already in use")
	ErrCourseCodeTaken        = errors.New("course code already in use")
	ErrProgramCodeTaken       = errors.New("program code already in use")
	ErrVersionMismatch        = errors.New("setting was changed by someone else")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// ApplicationListFilter narrows List. Zero values mean "any".
type ApplicationListFilter struct {
	Status           models.ApplicationStatus
	AdmissionSession string
	Offset           uint64
	Limit            int
}

type IApplicationRepository interface {
	// Create fails with ErrApplicationExists on a duplicate (email, session)
	// and ErrApplicationNumberTaken on a number collision.
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByNumber(ctx context.Context, number string) (*models.Application, error)
	GetByEmailAndSession(ctx context.Context, email, session string) (*models.Application, error)
	List(ctx context.Context, filter ApplicationListFilter) ([]*models.Application, int64, error)
	// TransitionStatus moves the application from one status to another
	// only if it is still in from. It reports whether a row changed.
	TransitionStatus(ctx context.Context, number string, from, to models.ApplicationStatus, reviewedBy *int64, at time.Time) (bool, error)
	SetInterviewDate(ctx context.Context, id int64, at time.Time) error
}

type IAdmissionExerciseRepository interface {
	Upsert(ctx context.Context, exercise *models.AdmissionExercise) error
	GetByApplicationNumber(ctx context.Context, number string) (*models.AdmissionExercise, error)
}

type IStudentRepository interface {
	// Create fails with ErrStudentExists when the application already has a
	// student and ErrMatricNumberTaken on a matric number collision.
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByApplicationID(ctx context.Context, applicationID int64) (*models.Student, error)
	GetByMatricNumber(ctx context.Context, matric string) (*models.Student, error)
	// MarkGraduated reports false when the student was already graduated.
	MarkGraduated(ctx context.Context, id int64, at time.Time) (bool, error)
	UpdatePersonalInfo(ctx context.Context, id int64, firstName, lastName string, phone *string) error
}

type IStudentProgrammeRepository interface {
	Create(ctx context.Context, programme *models.StudentProgramme) error
	ListByStudent(ctx context.Context, studentID int64) ([]*models.StudentProgramme, error)
	// AdvanceStatus moves every programme of the student whose status is in
	// from to status to, stamping endDate when non-nil. It returns the number
	// of programmes changed.
	AdvanceStatus(ctx context.Context, studentID int64, from []models.ProgrammeStatus, to models.ProgrammeStatus, endDate *time.Time) (int64, error)
}

type IProgramRepository interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	List(ctx context.Context) ([]*models.Program, error)
}

type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	// GetByID loads the course with its lecturer IDs.
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, programID *int64) ([]*models.Course, error)
	AssignLecturer(ctx context.Context, courseID, lecturerID int64) error
}

type IRegistrationRepository interface {
	// Create fails with ErrRegistrationExists on a duplicate
	// (student, course, session, semester), whatever the existing row's status.
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int64) (*models.Registration, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Registration, error)
	CountByStudent(ctx context.Context, studentID int64) (int64, error)
	// Withdraw only affects a REGISTERED row without a grade.
	Withdraw(ctx context.Context, id int64, at time.Time) (bool, error)
	// RecordResult only affects a REGISTERED row.
	RecordResult(ctx context.Context, id int64, score float64, grade models.Grade, recordedBy *int64, at time.Time) (bool, error)
	// GradedForStudent returns every registration of the student that has a
	// grade, joined with its course's credit hours.
	GradedForStudent(ctx context.Context, studentID int64) ([]models.GradedRegistration, error)
}

type IAccessCodeRepository interface {
	Create(ctx context.Context, code *models.AccessCode) error
	GetByCode(ctx context.Context, code string) (*models.AccessCode, error)
	// IncrementUsage consumes one use of an active, non-exhausted code in a
	// single guarded update. ok is false when nothing was consumed.
	IncrementUsage(ctx context.Context, code string) (accessTo []int64, ok bool, err error)
	SetActive(ctx context.Context, code string, active bool) (bool, error)
}

type IProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Project, error)
}

type ISystemSettingRepository interface {
	Get(ctx context.Context, key string) (*models.SystemSetting, error)
	// Put writes value and bumps the version. With expectedVersion set the
	// write only happens against that version (0 meaning "not yet set") and
	// fails with ErrVersionMismatch otherwise.
	Put(ctx context.Context, key, value string, expectedVersion *int64, updatedBy *int64, at time.Time) (*models.SystemSetting, error)
}

// TxFn runs against repositories bound to one transaction.
type TxFn func(ctx context.Context, repos *Repositories) error

// Transactor runs fn atomically. fn's repositories must be used instead of
// the outer ones for the work to be part of the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn TxFn) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Users         IUserRepository
	Applications  IApplicationRepository
	Exercises     IAdmissionExerciseRepository
	Students      IStudentRepository
	Programmes    IStudentProgrammeRepository
	Programs      IProgramRepository
	Courses       ICourseRepository
	Registrations IRegistrationRepository
	AccessCodes   IAccessCodeRepository
	Projects      IProjectRepository
	Settings      ISystemSettingRepository

	Transactor Transactor
}

// WithinTransaction runs fn atomically through the configured Transactor.
func (r *Repositories) WithinTransaction(ctx context.Context, fn TxFn) error {
	return r.Transactor.WithinTransaction(ctx, fn)
}
