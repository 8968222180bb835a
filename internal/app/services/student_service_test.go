package services

import (
	"context"
	"testing"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	program, _ := env.catalogue(t)
	app := env.approved(t, "chioma@example.com", &program.ID)

	out, err := env.svc.Student.ConvertToStudent(ctx, app.ID)
	require.NoError(t, err)

	s := out.Student
	assert.Regexp(t, `^ACE/2025/[0-9A-Z]{6}$`, s.MatricNumber)
	assert.Equal(t, "Chioma", s.FirstName)
	assert.Equal(t, "chioma@example.com", s.Email)
	assert.False(t, s.PersonalInfoConfirmed)
	assert.Equal(t, models.StudentActive, s.Status)
	require.NotNil(t, out.Programme)
	assert.Equal(t, models.ProgrammeAdmitted, out.Programme.Status)

	assert.Equal(t, 1, env.sent(email.TemplateStudentCredentials))
	var password string
	for _, m := range env.recorder.Sent() {
		if m.Template == email.TemplateStudentCredentials {
			password = m.Data["password"]
		}
	}
	assert.True(t, auth.CheckPassword(s.Password, password))

	// The mailed credentials work.
	resp, err := env.svc.Auth.StudentLogin(ctx, &dto.StudentLoginRequest{MatricNumber: s.MatricNumber, Password: password})
	require.NoError(t, err)
	assert.Equal(t, s.ID, resp.Principal.ID)
}

func TestConvertToStudent_OnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.approved(t, "chioma@example.com", nil)

	_, err := env.svc.Student.ConvertToStudent(ctx, app.ID)
	require.NoError(t, err)
	_, err = env.svc.Student.ConvertToStudent(ctx, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestConvertToStudent_RequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)

	_, err := env.svc.Student.ConvertToStudent(ctx, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = env.svc.Student.ConvertToStudent(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestGraduate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	program, _ := env.catalogue(t)
	app := env.approved(t, "chioma@example.com", &program.ID)
	converted, err := env.svc.Student.ConvertToStudent(ctx, app.ID)
	require.NoError(t, err)

	out, err := env.svc.Student.Graduate(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StudentGraduated, out.Student.Status)
	assert.NotNil(t, out.Student.GraduatedAt)
	assert.Equal(t, 1, out.CompletedProgrammes)

	programmes, err := env.repos.Programmes.ListByStudent(ctx, converted.Student.ID)
	require.NoError(t, err)
	require.Len(t, programmes, 1)
	assert.Equal(t, models.ProgrammeCompleted, programmes[0].Status)
	require.NotNil(t, programmes[0].EndDate)
	firstEnd := *programmes[0].EndDate

	_, err = env.svc.Student.Graduate(ctx, app.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Contains(t, err.Error(), "already graduated")

	programmes, err = env.repos.Programmes.ListByStudent(ctx, converted.Student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProgrammeCompleted, programmes[0].Status)
	assert.Equal(t, firstEnd, *programmes[0].EndDate)
}

func TestGraduate_RequiresStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.approved(t, "chioma@example.com", nil)

	_, err := env.svc.Student.Graduate(ctx, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestUpdatePersonalInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.approved(t, "chioma@example.com", nil)
	converted, err := env.svc.Student.ConvertToStudent(ctx, app.ID)
	require.NoError(t, err)

	phone := "+2348000000000"
	s, err := env.svc.Student.UpdatePersonalInfo(ctx, studentPrincipal(converted.Student), &dto.UpdatePersonalInfoRequest{
		FirstName: "Chiamaka",
		LastName:  "Okafor-Eze",
		Phone:     &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Chiamaka", s.FirstName)
	assert.True(t, s.PersonalInfoConfirmed)

	_, err = env.svc.Student.UpdatePersonalInfo(ctx, env.admin, &dto.UpdatePersonalInfoRequest{FirstName: "X", LastName: "Y"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
