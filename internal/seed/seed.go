package seed

import (
	"context"
	"errors"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// Options controls what CreateDefaultData writes. Empty fields are skipped.
type Options struct {
	AdminEmail    string
	AdminPassword string

	// Session and Semester set the active academic session when none is set.
	Session  string
	Semester string

	// SampleCatalogue adds one programme with two courses.
	SampleCatalogue bool
}

// DefaultOptions is what a fresh development database gets.
func DefaultOptions() Options {
	return Options{
		AdminEmail:      "admin@acesped.local",
		AdminPassword:   "Admin123!",
		Session:         "2025/2026",
		Semester:        string(models.SemesterFirst),
		SampleCatalogue: true,
	}
}

// systemPrincipal acts for the seeder where services require a staff caller.
var systemPrincipal = auth.Principal{Kind: auth.KindStaff, Role: models.RoleSuperAdmin}

// CreateDefaultData creates the default super admin, the active session and,
// optionally, a sample catalogue. Items that already exist are left alone and
// errors are collected rather than stopping the run.
func CreateDefaultData(ctx context.Context, svc *services.Services, opts Options, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Default super admin --- //
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		admin, err := svc.Auth.CreateUser(ctx, &dto.CreateUserRequest{
			Email:     opts.AdminEmail,
			Password:  opts.AdminPassword,
			FirstName: "System",
			LastName:  "Administrator",
			Role:      string(models.RoleSuperAdmin),
		})
		switch {
		case err == nil:
			lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			lgr.Info().Msg("Admin user already exists, skipping creation")
		default:
			lgr.Error().Err(err).Msg("Error creating admin user")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Active academic session --- //
	if opts.Session != "" {
		_, ok, err := svc.Settings.CurrentSession(ctx)
		switch {
		case err != nil:
			lgr.Error().Err(err).Msg("Error reading active session")
			finalErr = errors.Join(finalErr, err)
		case ok:
			lgr.Info().Msg("Active session already set, skipping")
		default:
			zero := int64(0)
			_, err := svc.Settings.UpdateActiveSession(ctx, systemPrincipal, &dto.UpdateAcademicSessionRequest{
				Session:         opts.Session,
				Semester:        opts.Semester,
				ExpectedVersion: &zero,
			})
			if err != nil && !errors.Is(err, apperrors.ErrConflict) {
				lgr.Error().Err(err).Msg("Error setting active session")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	// --- Sample catalogue --- //
	if opts.SampleCatalogue {
		finalErr = errors.Join(finalErr, createSampleCatalogue(ctx, svc.Academic, lgr))
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createSampleCatalogue(ctx context.Context, academic services.AcademicService, lgr zerolog.Logger) error {
	const programCode = "MSC-SPED"

	program, err := academic.CreateProgram(ctx, &dto.CreateProgramRequest{
		Code:    programCode,
		Name:    "M.Sc. Special Education",
		Service: "Postgraduate",
	})
	if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
		lgr.Info().Str("code", programCode).Msg("Sample program already exists, skipping catalogue")
		return nil
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating sample program")
		return err
	}

	var finalErr error
	for _, c := range []dto.CreateCourseRequest{
		{ProgramID: program.ID, Code: "SPD801", Title: "Foundations of Special Education", CreditHours: 3},
		{ProgramID: program.ID, Code: "SPD802", Title: "Assessment in Special Needs Education", CreditHours: 2},
	} {
		if _, err := academic.CreateCourse(ctx, &c); err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("code", c.Code).Msg("Error creating sample course")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}
