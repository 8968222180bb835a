// Package services holds the admission and academic-record business logic.
// Services take an already verified auth.Principal where access matters and
// return apperrors values the HTTP layer maps to status codes.
package services

import (
	"errors"
	"fmt"
	"net/mail"

	appauth "github.com/acesped/portal/internal/app/auth"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/rs/zerolog"
)

// maxNumberAttempts bounds retries when a generated application or matric
// number collides with an existing one.
const maxNumberAttempts = 5

// AdmissionConfig carries the admission rules. MinApprovalScore is the only
// approval threshold in the system.
type AdmissionConfig struct {
	MinApprovalScore  float64
	ApplicationPrefix string
	MatricPrefix      string
	InterviewLeadDays int
}

// DefaultAdmissionConfig mirrors the configuration defaults.
func DefaultAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{
		MinApprovalScore:  50,
		ApplicationPrefix: "ACE",
		MatricPrefix:      "ACE",
		InterviewLeadDays: 5,
	}
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Repos      *repositories.Repositories
	Notifier   email.Sender
	JWT        *auth.JWTService
	Authorizer *appauth.AuthorizationService
	Admission  AdmissionConfig
	Logger     zerolog.Logger
}

// Services holds every service instance.
type Services struct {
	Admission    AdmissionService
	Student      StudentService
	Registration RegistrationService
	Result       ResultService
	AccessCode   AccessCodeService
	Settings     SettingsService
	Academic     AcademicService
	Auth         AuthService
}

// NewServices wires every service against deps.
func NewServices(deps Deps) *Services {
	if deps.Authorizer == nil {
		deps.Authorizer = appauth.NewAuthorizationService(deps.Repos.Courses)
	}
	settings := NewSettingsService(deps.Repos, deps.Admission, deps.Logger)
	return &Services{
		Admission:    NewAdmissionService(deps.Repos, deps.Notifier, deps.Admission, deps.Logger),
		Student:      NewStudentService(deps.Repos, deps.Notifier, deps.Admission, deps.Logger),
		Registration: NewRegistrationService(deps.Repos, settings, deps.Authorizer, deps.Logger),
		Result:       NewResultService(deps.Repos, deps.Authorizer, deps.Logger),
		AccessCode:   NewAccessCodeService(deps.Repos, deps.Logger),
		Settings:     settings,
		Academic:     NewAcademicService(deps.Repos, deps.Logger),
		Auth:         NewAuthService(deps.Repos, deps.JWT, deps.Logger),
	}
}

// notNil turns a nil sender into one that drops everything.
func notNil(n email.Sender) email.Sender {
	if n == nil {
		return discard{}
	}
	return n
}

type discard struct{}

func (discard) Notify(email.Template, mail.Address, map[string]string) {}

// internal wraps an unexpected storage failure.
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
