package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
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

// AdmissionService covers intake, exercise scoring and the approval gate.
type AdmissionService interface {
	SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*models.Application, error)
	GetApplicationStatus(ctx context.Context, number, email string) (*models.Application, error)
	ListApplications(ctx context.Context, filter dto.ApplicationFilter) ([]*models.Application, dto.PaginationInfo, error)
	RecordExerciseScore(ctx context.Context, principal auth.Principal, number string, components map[string]float64) (*models.AdmissionExercise, error)
	GetExercise(ctx context.Context, number string) (*models.AdmissionExercise, error)
	SetApplicationStatus(ctx context.Context, principal auth.Principal, number string, status models.ApplicationStatus) (*models.Application, error)
	SendInterviewInvitation(ctx context.Context, number, venue string) (*models.Application, error)
}

type admissionServiceImpl struct {
	repos    *repositories.Repositories
	notifier email.Sender
	config   AdmissionConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdmissionService creates a new admission service instance
func NewAdmissionService(repos *repositories.Repositories, notifier email.Sender, config AdmissionConfig, logger zerolog.Logger) AdmissionService {
	return &admissionServiceImpl{
		repos:    repos,
		notifier: notNil(notifier),
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *admissionServiceImpl) newApplicationNumber(year int) (string, error) {
	suffix, err := helpers.RandomBase36(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", s.config.ApplicationPrefix, year, suffix), nil
}

// SubmitApplication stores a PENDING application. A second submission for the
// same email and session is a DuplicateError carrying the first one's number.
func (s *admissionServiceImpl) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*models.Application, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("application is required")
	}
	addr := helpers.NormalizeEmail(req.Email)
	session := strings.TrimSpace(req.AdmissionSession)
	if addr == "" {
		return nil, apperrors.NewValidationError("email is required")
	}
	if session == "" {
		return nil, apperrors.NewValidationError("admissionSession is required")
	}
	if !validation.ValidAcademicSession(session) {
		return nil, apperrors.NewValidationError("admissionSession must look like 2025/2026")
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, apperrors.NewValidationError("firstName is required")
	}

	app := &models.Application{
		FirstName:            firstName,
		LastName:             strings.TrimSpace(req.LastName),
		Email:                addr,
		Phone:                req.Phone,
		Gender:               req.Gender,
		Nationality:          req.Nationality,
		HighestQualification: req.HighestQualification,
		ProgramID:            req.ProgramID,
		AdmissionSession:     session,
		Status:               models.ApplicationPending,
	}

	year := s.now().Year()
	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		app.ApplicationNumber, err = s.newApplicationNumber(year)
		if err != nil {
			return nil, internal("generate application number", err)
		}
		err = s.repos.Applications.Create(ctx, app)
		if !errors.Is(err, repositories.ErrApplicationNumberTaken) {
			break
		}
		s.logger.Warn().Str("applicationNumber", app.ApplicationNumber).Msg("Application number collision, retrying")
	}
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationExists) {
			return nil, s.duplicateApplication(ctx, addr, session)
		}
		if errors.Is(err, repositories.ErrApplicationNumberTaken) {
			return nil, internal("allocate application number", err)
		}
		return nil, internal("create application", err)
	}

	metrics.ApplicationsSubmitted.Inc()
	s.logger.Info().Str("applicationNumber", app.ApplicationNumber).Str("session", session).Msg("Application submitted")

	s.notifier.Notify(email.TemplateApplicationReceived, mail.Address{Name: app.FullName(), Address: app.Email}, map[string]string{
		"name":              app.FullName(),
		"session":           app.AdmissionSession,
		"applicationNumber": app.ApplicationNumber,
	})
	return app, nil
}

func (s *admissionServiceImpl) duplicateApplication(ctx context.Context, addr, session string) error {
	dup := apperrors.NewDuplicateError("an application for this email already exists for " + session)
	existing, err := s.repos.Applications.GetByEmailAndSession(ctx, addr, session)
	if err != nil {
		s.logger.Error().Err(err).Str("email", addr).Msg("Failed to load existing application after duplicate")
		return dup
	}
	return dup.WithDetails(map[string]interface{}{"applicationNumber": existing.ApplicationNumber})
}

// GetApplicationStatus is the public lookup. A number/email mismatch reads
// as not found.
func (s *admissionServiceImpl) GetApplicationStatus(ctx context.Context, number, addr string) (*models.Application, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperrors.NewValidationError("applicationNumber is required")
	}
	app, err := s.repos.Applications.GetByNumber(ctx, number)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("application not found")
		}
		return nil, internal("get application", err)
	}
	if app.Email != helpers.NormalizeEmail(addr) {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	return app, nil
}

func (s *admissionServiceImpl) ListApplications(ctx context.Context, filter dto.ApplicationFilter) ([]*models.Application, dto.PaginationInfo, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("unknown status filter")
	}
	if filter.AdmissionSession != "" && !validation.ValidAcademicSession(filter.AdmissionSession) {
		return nil, dto.PaginationInfo{}, apperrors.NewValidationError("admissionSession must look like 2025/2026")
	}
	page := helpers.NewPage(filter.Page, filter.Size)
	apps, total, err := s.repos.Applications.List(ctx, repositories.ApplicationListFilter{
		Status:           filter.Status,
		AdmissionSession: filter.AdmissionSession,
		Offset:           page.Offset(),
		Limit:            page.Size,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, internal("list applications", err)
	}
	return apps, page.Info(total), nil
}

func (s *admissionServiceImpl) getByNumber(ctx context.Context, number string) (*models.Application, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperrors.NewValidationError("applicationNumber is required")
	}
	app, err := s.repos.Applications.GetByNumber(ctx, number)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("application " + number + " not found")
		}
		return nil, internal("get application", err)
	}
	return app, nil
}

// RecordExerciseScore replaces the exercise components of an application and
// stores their sum as the total.
func (s *admissionServiceImpl) RecordExerciseScore(ctx context.Context, principal auth.Principal, number string, components map[string]float64) (*models.AdmissionExercise, error) {
	app, err := s.getByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, apperrors.NewValidationError("at least one exercise component is required")
	}
	clean := make(map[string]float64, len(components))
	for name, score := range components {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apperrors.NewValidationError("exercise component names cannot be empty")
		}
		if score < 0 {
			return nil, apperrors.NewValidationError("exercise component " + name + " cannot be negative")
		}
		clean[name] = score
	}

	ex := &models.AdmissionExercise{
		ApplicationNumber: app.ApplicationNumber,
		Components:        clean,
		Total:             models.SumComponents(clean),
	}
	if principal.ID > 0 && !principal.IsStudent() {
		id := principal.ID
		ex.RecordedBy = &id
	}
	if err := s.repos.Exercises.Upsert(ctx, ex); err != nil {
		return nil, internal("save admission exercise", err)
	}
	s.logger.Info().Str("applicationNumber", app.ApplicationNumber).Float64("total", ex.Total).Msg("Admission exercise recorded")
	return ex, nil
}

func (s *admissionServiceImpl) GetExercise(ctx context.Context, number string) (*models.AdmissionExercise, error) {
	app, err := s.getByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	ex, err := s.repos.Exercises.GetByApplicationNumber(ctx, app.ApplicationNumber)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewResourceNotFoundError("no admission exercise recorded for " + app.ApplicationNumber)
		}
		return nil, internal("get admission exercise", err)
	}
	return ex, nil
}

func (s *admissionServiceImpl) exerciseTotal(ctx context.Context, number string) (float64, error) {
	ex, err := s.repos.Exercises.GetByApplicationNumber(ctx, number)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, internal("get admission exercise", err)
	}
	return ex.Total, nil
}

// SetApplicationStatus decides a PENDING application. Repeating the current
// decision succeeds without side effects; reversing a decision is a
// StateError.
func (s *admissionServiceImpl) SetApplicationStatus(ctx context.Context, principal auth.Principal, number string, status models.ApplicationStatus) (*models.Application, error) {
	app, err := s.getByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !status.IsDecision() {
		return nil, apperrors.NewValidationError("status must be APPROVED or REJECTED")
	}

	switch app.Status {
	case status:
		return app, nil
	case models.ApplicationApproved, models.ApplicationRejected:
		return nil, apperrors.NewStateError(fmt.Sprintf("application is already %s and cannot be changed to %s", app.Status, status))
	case models.ApplicationPending:
	}

	if status == models.ApplicationApproved {
		total, err := s.exerciseTotal(ctx, app.ApplicationNumber)
		if err != nil {
			return nil, err
		}
		if total < s.config.MinApprovalScore {
			return nil, apperrors.NewThresholdError(fmt.Sprintf(
				"admission exercise total %s is below the minimum of %s",
				strconv.FormatFloat(total, 'f', -1, 64),
				strconv.FormatFloat(s.config.MinApprovalScore, 'f', -1, 64),
			)).WithDetails(map[string]interface{}{"total": total, "minimum": s.config.MinApprovalScore})
		}
	}

	var reviewer *int64
	if !principal.IsStudent() && principal.ID > 0 {
		id := principal.ID
		reviewer = &id
	}
	changed, err := s.repos.Applications.TransitionStatus(ctx, app.ApplicationNumber, models.ApplicationPending, status, reviewer, s.now())
	if err != nil {
		return nil, internal("update application status", err)
	}

	updated, err := s.repos.Applications.GetByNumber(ctx, app.ApplicationNumber)
	if err != nil {
		return nil, internal("reload application", err)
	}
	if !changed {
		// Someone else decided it first.
		if updated.Status == status {
			return updated, nil
		}
		return nil, apperrors.NewStateError(fmt.Sprintf("application is already %s and cannot be changed to %s", updated.Status, status))
	}

	metrics.AdmissionDecisions.WithLabelValues(string(status)).Inc()
	s.logger.Info().
		Str("applicationNumber", updated.ApplicationNumber).
		Str("status", string(status)).
		Int64("reviewedBy", principal.ID).
		Msg("Application decided")

	template := email.TemplateApplicationRejected
	if status == models.ApplicationApproved {
		template = email.TemplateApplicationApproved
	}
	s.notifier.Notify(template, mail.Address{Name: updated.FullName(), Address: updated.Email}, map[string]string{
		"name":              updated.FullName(),
		"session":           updated.AdmissionSession,
		"applicationNumber": updated.ApplicationNumber,
	})
	return updated, nil
}

// SendInterviewInvitation schedules a PENDING applicant for interview
// InterviewLeadDays working days from now and notifies them.
func (s *admissionServiceImpl) SendInterviewInvitation(ctx context.Context, number, venue string) (*models.Application, error) {
	app, err := s.getByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationPending {
		return nil, apperrors.NewStateError("interviews can only be scheduled for pending applications")
	}

	at := helpers.AddWorkingDays(s.now(), s.config.InterviewLeadDays)
	if err := s.repos.Applications.SetInterviewDate(ctx, app.ID, at); err != nil {
		return nil, internal("set interview date", err)
	}
	app.InterviewScheduledFor = &at

	venue = strings.TrimSpace(venue)
	if venue == "" {
		venue = "ACE-SPED Centre"
	}
	s.notifier.Notify(email.TemplateInterviewInvitation, mail.Address{Name: app.FullName(), Address: app.Email}, map[string]string{
		"name":              app.FullName(),
		"applicationNumber": app.ApplicationNumber,
		"interviewDate":     at.Format("Monday, 2 January 2006"),
		"venue":             venue,
	})
	return app, nil
}
