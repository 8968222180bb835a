package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appauth "github.com/acesped/portal/internal/app/auth"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/metrics"
	"github.com/acesped/portal/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// RegistrationService keeps the course registration ledger.
type RegistrationService interface {
	Register(ctx context.Context, principal auth.Principal, req *dto.RegisterCourseRequest) (*models.Registration, error)
	Withdraw(ctx context.Context, principal auth.Principal, registrationID int64) (*models.Registration, error)
	ListForStudent(ctx context.Context, principal auth.Principal, studentID int64) ([]*models.Registration, error)
}

type registrationServiceImpl struct {
	repos      *repositories.Repositories
	settings   SettingsService
	authorizer *appauth.AuthorizationService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(repos *repositories.Repositories, settings SettingsService, authorizer *appauth.AuthorizationService, logger zerolog.Logger) RegistrationService {
	return &registrationServiceImpl{
		repos:      repos,
		settings:   settings,
		authorizer: authorizer,
		logger:     logger,
		now:        time.Now,
	}
}

// resolveTerm fills in the active session and rejects any other term while
// one is set.
func (s *registrationServiceImpl) resolveTerm(ctx context.Context, session, semester string) (string, models.Semester, error) {
	active, hasActive, err := s.settings.CurrentSession(ctx)
	if err != nil {
		return "", "", err
	}

	session = strings.TrimSpace(session)
	if session == "" {
		if !hasActive {
			return "", "", apperrors.NewValidationError("session is required while no academic session is active")
		}
		session = active.Session
	}
	if !validation.ValidAcademicSession(session) {
		return "", "", apperrors.NewValidationError("session must look like 2025/2026")
	}

	var sem models.Semester
	if strings.TrimSpace(semester) == "" {
		if !hasActive {
			return "", "", apperrors.NewValidationError("semester is required while no academic session is active")
		}
		sem = active.Semester
	} else if sem, err = models.ParseSemester(semester); err != nil {
		return "", "", apperrors.NewValidationError("semester must be First or Second")
	}

	if hasActive && (session != active.Session || sem != active.Semester) {
		return "", "", apperrors.NewStateError(fmt.Sprintf("registration is only open for %s %s semester", active.Session, active.Semester))
	}
	return session, sem, nil
}

// Register records a student's enrolment in a course for one term. The
// same (student, course, session, semester) twice is a ConflictError.
func (s *registrationServiceImpl) Register(ctx context.Context, principal auth.Principal, req *dto.RegisterCourseRequest) (*models.Registration, error) {
	studentID := req.StudentID
	if principal.IsStudent() && studentID == 0 {
		studentID = principal.ID
	}
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("studentId is required")
	}
	if err := s.authorizer.RequireSelfOr(principal, studentID, models.PermRegistrationManage); err != nil {
		return nil, err
	}
	if req.CourseID <= 0 {
		return nil, apperrors.NewValidationError("courseId is required")
	}

	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, internal("get student", err)
	}
	if student.Status != models.StudentActive {
		return nil, apperrors.NewStateError(fmt.Sprintf("student is %s; only active students can register", student.Status))
	}
	if _, err := s.repos.Courses.GetByID(ctx, req.CourseID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("course not found")
		}
		return nil, internal("get course", err)
	}

	session, semester, err := s.resolveTerm(ctx, req.Session, req.Semester)
	if err != nil {
		return nil, err
	}

	reg := &models.Registration{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Session:   session,
		Semester:  semester,
		Status:    models.RegistrationRegistered,
	}
	err = s.repos.WithinTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		if err := tx.Registrations.Create(ctx, reg); err != nil {
			return err
		}
		_, err := tx.Programmes.AdvanceStatus(ctx, studentID, []models.ProgrammeStatus{models.ProgrammeAdmitted}, models.ProgrammeRegistered, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationExists) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("student is already registered for this course in %s %s semester", session, semester))
		}
		return nil, internal("register course", err)
	}

	metrics.CourseRegistrations.Inc()
	s.logger.Info().
		Int64("studentID", studentID).
		Int64("courseID", req.CourseID).
		Str("session", session).
		Str("semester", string(semester)).
		Msg("Course registered")
	return reg, nil
}

// Withdraw marks a registration WITHDRAWN. Rows are never deleted.
func (s *registrationServiceImpl) Withdraw(ctx context.Context, principal auth.Principal, registrationID int64) (*models.Registration, error) {
	if registrationID <= 0 {
		return nil, apperrors.NewValidationError("invalid registration ID")
	}
	reg, err := s.repos.Registrations.GetByID(ctx, registrationID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("registration not found")
		}
		return nil, internal("get registration", err)
	}
	if err := s.authorizer.RequireSelfOr(principal, reg.StudentID, models.PermRegistrationManage); err != nil {
		return nil, err
	}
	if reg.Status == models.RegistrationWithdrawn {
		return nil, apperrors.NewStateError("registration is already withdrawn")
	}
	if reg.Grade != nil {
		return nil, apperrors.NewStateError("a graded registration cannot be withdrawn")
	}

	changed, err := s.repos.Registrations.Withdraw(ctx, reg.ID, s.now())
	if err != nil {
		return nil, internal("withdraw registration", err)
	}
	if !changed {
		return nil, apperrors.NewStateError("registration changed while withdrawing; reload and try again")
	}
	return s.repos.Registrations.GetByID(ctx, reg.ID)
}

func (s *registrationServiceImpl) ListForStudent(ctx context.Context, principal auth.Principal, studentID int64) ([]*models.Registration, error) {
	if err := s.authorizer.RequireSelfOr(principal, studentID, models.PermStudentView); err != nil {
		return nil, err
	}
	if _, err := s.repos.Students.GetByID(ctx, studentID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, internal("get student", err)
	}
	regs, err := s.repos.Registrations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, internal("list registrations", err)
	}
	return regs, nil
}
