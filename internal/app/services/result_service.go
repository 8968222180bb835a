package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	appauth "github.com/acesped/portal/internal/app/auth"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// ResultService records course results and derives GPAs from them. GPAs
// are never stored.
type ResultService interface {
	RecordResult(ctx context.Context, principal auth.Principal, registrationID int64, score *float64, grade string) (*models.Registration, error)
	ComputeCGPA(ctx context.Context, principal auth.Principal, studentID int64) (string, error)
	ComputeGPA(ctx context.Context, principal auth.Principal, studentID int64, session, semester string) (string, error)
}

type resultServiceImpl struct {
	repos      *repositories.Repositories
	authorizer *appauth.AuthorizationService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewResultService creates a new result service instance
func NewResultService(repos *repositories.Repositories, authorizer *appauth.AuthorizationService, logger zerolog.Logger) ResultService {
	return &resultServiceImpl{repos: repos, authorizer: authorizer, logger: logger, now: time.Now}
}

// CalculateGPA weights each grade's points (A=5 … F=0) by credit hours.
// Registrations without a recognised grade count in neither sum. It returns
// "0.00" when no credit hours were attempted.
func CalculateGPA(graded []models.GradedRegistration) string {
	var points float64
	var credits int
	for _, g := range graded {
		if g.Grade == nil || g.CreditHours <= 0 {
			continue
		}
		p, ok := g.Grade.Points()
		if !ok {
			continue
		}
		points += p * float64(g.CreditHours)
		credits += g.CreditHours
	}
	if credits == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", points/float64(credits))
}

// RecordResult stores the score and grade on a registration. An empty grade
// is derived from the score.
func (s *resultServiceImpl) RecordResult(ctx context.Context, principal auth.Principal, registrationID int64, score *float64, grade string) (*models.Registration, error) {
	if registrationID <= 0 {
		return nil, apperrors.NewValidationError("invalid registration ID")
	}
	if score == nil {
		return nil, apperrors.NewValidationError("score is required")
	}
	if *score < 0 || *score > 100 {
		return nil, apperrors.NewValidationError("score must be between 0 and 100")
	}
	g := models.GradeForScore(*score)
	if strings.TrimSpace(grade) != "" {
		var err error
		if g, err = models.ParseGrade(grade); err != nil {
			return nil, apperrors.NewValidationError("grade must be one of A, B, C, D, E, F")
		}
	}

	reg, err := s.repos.Registrations.GetByID(ctx, registrationID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("registration not found")
		}
		return nil, internal("get registration", err)
	}
	if err := s.authorizer.CanRecordResult(ctx, principal, reg.CourseID); err != nil {
		return nil, err
	}
	if reg.Status == models.RegistrationWithdrawn {
		return nil, apperrors.NewStateError("cannot record a result for a withdrawn registration")
	}

	recordedBy := principal.ID
	err = s.repos.WithinTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		changed, err := tx.Registrations.RecordResult(ctx, reg.ID, *score, g, &recordedBy, s.now())
		if err != nil {
			return err
		}
		if !changed {
			return apperrors.NewStateError("cannot record a result for a withdrawn registration")
		}
		_, err = tx.Programmes.AdvanceStatus(ctx, reg.StudentID, []models.ProgrammeStatus{models.ProgrammeRegistered}, models.ProgrammeInProgress, nil)
		return err
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidState) {
			return nil, err
		}
		return nil, internal("record result", err)
	}

	s.logger.Info().
		Int64("registrationID", reg.ID).
		Str("grade", string(g)).
		Int64("recordedBy", recordedBy).
		Msg("Result recorded")
	return s.repos.Registrations.GetByID(ctx, reg.ID)
}

func (s *resultServiceImpl) graded(ctx context.Context, principal auth.Principal, studentID int64) ([]models.GradedRegistration, error) {
	if studentID <= 0 {
		return nil, apperrors.NewValidationError("invalid student ID")
	}
	if err := s.authorizer.RequireSelfOr(principal, studentID, models.PermStudentView); err != nil {
		return nil, err
	}
	if _, err := s.repos.Students.GetByID(ctx, studentID); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, internal("get student", err)
	}
	graded, err := s.repos.Registrations.GradedForStudent(ctx, studentID)
	if err != nil {
		return nil, internal("load graded registrations", err)
	}
	return graded, nil
}

func (s *resultServiceImpl) ComputeCGPA(ctx context.Context, principal auth.Principal, studentID int64) (string, error) {
	graded, err := s.graded(ctx, principal, studentID)
	if err != nil {
		return "", err
	}
	return CalculateGPA(graded), nil
}

// ComputeGPA is ComputeCGPA restricted to one session and semester.
func (s *resultServiceImpl) ComputeGPA(ctx context.Context, principal auth.Principal, studentID int64, session, semester string) (string, error) {
	if !validation.ValidAcademicSession(session) {
		return "", apperrors.NewValidationError("session must look like 2025/2026")
	}
	sem, err := models.ParseSemester(semester)
	if err != nil {
		return "", apperrors.NewValidationError("semester must be First or Second")
	}
	graded, err := s.graded(ctx, principal, studentID)
	if err != nil {
		return "", err
	}
	term := graded[:0:0]
	for _, g := range graded {
		if g.Session == session && g.Semester == sem {
			term = append(term, g)
		}
	}
	return CalculateGPA(term), nil
}
