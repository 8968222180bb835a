package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/acesped/portal/internal/pkg/helpers"
	"github.com/acesped/portal/internal/pkg/metrics"
	"github.com/acesped/portal/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// temporaryPasswordLength is the length of the password mailed to new
// students.
const temporaryPasswordLength = 12

// StudentService converts approved applicants and graduates students.
type StudentService interface {
	ConvertToStudent(ctx context.Context, applicationID int64) (*dto.ConvertToStudentResponse, error)
	Graduate(ctx context.Context, applicationID int64) (*dto.GraduateResponse, error)
	GetStudent(ctx context.Context, studentID int64) (*models.Student, error)
	UpdatePersonalInfo(ctx context.Context, principal auth.Principal, req *dto.UpdatePersonalInfoRequest) (*models.Student, error)
}

type studentServiceImpl struct {
	repos    *repositories.Repositories
	notifier email.Sender
	config   AdmissionConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStudentService creates a new student service instance
func NewStudentService(repos *repositories.Repositories, notifier email.Sender, config AdmissionConfig, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		repos:    repos,
		notifier: notNil(notifier),
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *studentServiceImpl) getApplication(ctx context.Context, applicationID int64) (*models.Application, error) {
	if applicationID <= 0 {
		return nil, apperrors.NewValidationError("invalid application ID")
	}
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("application not found")
		}
		return nil, internal("get application", err)
	}
	return app, nil
}

func (s *studentServiceImpl) newMatricNumber(startYear int) (string, error) {
	suffix, err := helpers.RandomBase36(6)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(fmt.Sprintf("%s/%d/%s", s.config.MatricPrefix, startYear, suffix)), nil
}

var errStudentExists = apperrors.NewStateError("a student has already been created for this application")

// ConvertToStudent creates the one student an approved application may have,
// plus an ADMITTED programme when the application named a program.
func (s *studentServiceImpl) ConvertToStudent(ctx context.Context, applicationID int64) (*dto.ConvertToStudentResponse, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationApproved {
		return nil, apperrors.NewStateError(fmt.Sprintf("application is %s; only approved applications can be converted", app.Status))
	}
	if _, err := s.repos.Students.GetByApplicationID(ctx, app.ID); err == nil {
		return nil, errStudentExists
	} else if !isNotFound(err) {
		return nil, internal("check existing student", err)
	}

	startYear, ok := validation.SessionStartYear(app.AdmissionSession)
	if !ok {
		startYear = s.now().Year()
	}
	password, err := auth.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, internal("generate password", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	var out *dto.ConvertToStudentResponse
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		matric, genErr := s.newMatricNumber(startYear)
		if genErr != nil {
			return nil, internal("generate matric number", genErr)
		}
		err = s.repos.WithinTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
			var txErr error
			out, txErr = s.createStudent(ctx, tx, app, matric, hash)
			return txErr
		})
		if !errors.Is(err, repositories.ErrMatricNumberTaken) {
			break
		}
		s.logger.Warn().Str("matricNumber", matric).Msg("Matric number collision, retrying")
	}
	if err != nil {
		if errors.Is(err, repositories.ErrStudentExists) {
			return nil, errStudentExists
		}
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, internal("convert application to student", err)
	}

	metrics.StudentsConverted.Inc()
	s.logger.Info().
		Str("applicationNumber", app.ApplicationNumber).
		Str("matricNumber", out.Student.MatricNumber).
		Msg("Applicant converted to student")

	s.notifier.Notify(email.TemplateStudentCredentials, mail.Address{Name: app.FullName(), Address: out.Student.Email}, map[string]string{
		"name":         app.FullName(),
		"matricNumber": out.Student.MatricNumber,
		"password":     password,
	})
	return out, nil
}

func (s *studentServiceImpl) createStudent(ctx context.Context, tx *repositories.Repositories, app *models.Application, matric, hash string) (*dto.ConvertToStudentResponse, error) {
	appID := app.ID
	student := &models.Student{
		ApplicationID: &appID,
		MatricNumber:  matric,
		FirstName:     app.FirstName,
		LastName:      app.LastName,
		Email:         app.Email,
		Phone:         app.Phone,
		Password:      hash,
		Status:        models.StudentActive,
	}
	if err := tx.Students.Create(ctx, student); err != nil {
		return nil, err
	}

	out := &dto.ConvertToStudentResponse{Student: student}
	if app.ProgramID == nil {
		return out, nil
	}
	if _, err := tx.Programs.GetByID(ctx, *app.ProgramID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("the application's program no longer exists")
		}
		return nil, err
	}
	programme := &models.StudentProgramme{
		StudentID: student.ID,
		ProgramID: *app.ProgramID,
		Status:    models.ProgrammeAdmitted,
		StartDate: s.now(),
	}
	if err := tx.Programmes.Create(ctx, programme); err != nil {
		return nil, err
	}
	out.Programme = programme
	return out, nil
}

var errAlreadyGraduated = apperrors.NewStateError("student has already graduated")

// Graduate marks the application's student GRADUATED and completes every
// open programme in one transaction.
func (s *studentServiceImpl) Graduate(ctx context.Context, applicationID int64) (*dto.GraduateResponse, error) {
	app, err := s.getApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationApproved {
		return nil, apperrors.NewStateError(fmt.Sprintf("application is %s; only approved applicants can graduate", app.Status))
	}
	student, err := s.repos.Students.GetByApplicationID(ctx, app.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewStateError("application has not been converted to a student")
		}
		return nil, internal("get student", err)
	}
	if student.Status == models.StudentGraduated {
		return nil, errAlreadyGraduated
	}

	now := s.now()
	var completed int64
	err = s.repos.WithinTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		changed, err := tx.Students.MarkGraduated(ctx, student.ID, now)
		if err != nil {
			return err
		}
		if !changed {
			return errAlreadyGraduated
		}
		completed, err = tx.Programmes.AdvanceStatus(ctx, student.ID, models.OpenProgrammeStatuses, models.ProgrammeCompleted, &now)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, err
		}
		return nil, internal("graduate student", err)
	}

	graduated, err := s.repos.Students.GetByID(ctx, student.ID)
	if err != nil {
		return nil, internal("reload student", err)
	}
	metrics.StudentsGraduated.Inc()
	s.logger.Info().
		Str("matricNumber", graduated.MatricNumber).
		Int64("completedProgrammes", completed).
		Msg("Student graduated")
	return &dto.GraduateResponse{Student: graduated, CompletedProgrammes: int(completed)}, nil
}

func (s *studentServiceImpl) GetStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("invalid student ID")
	}
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, internal("get student", err)
	}
	return student, nil
}

// UpdatePersonalInfo lets a student replace the details copied from their
// application.
func (s *studentServiceImpl) UpdatePersonalInfo(ctx context.Context, principal auth.Principal, req *dto.UpdatePersonalInfoRequest) (*models.Student, error) {
	if !principal.IsStudent() {
		return nil, apperrors.NewForbiddenError("only students can confirm personal information")
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.NewValidationError("firstName and lastName are required")
	}
	if err := s.repos.Students.UpdatePersonalInfo(ctx, principal.ID, firstName, lastName, req.Phone); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, internal("update personal info", err)
	}
	return s.GetStudent(ctx, principal.ID)
}
