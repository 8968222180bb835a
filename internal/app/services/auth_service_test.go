package services

import (
	"context"
	"testing"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Auth.CreateUser(ctx, &dto.CreateUserRequest{
		Email:     "Coordinator@ACESPED.test",
		Password:  "password1",
		FirstName: "Bola",
		LastName:  "Ade",
		Role:      "academic_program_coordinator",
	})
	require.NoError(t, err)

	resp, err := env.svc.Auth.StaffLogin(ctx, &dto.StaffLoginRequest{Email: "coordinator@acesped.test", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAcademicProgramCoordinator, resp.Principal.Role)
	assert.Equal(t, "staff", resp.Principal.Kind)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.AccessToken)

	user, err := env.repos.Users.GetByEmail(ctx, "coordinator@acesped.test")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)

	_, err = env.svc.Auth.StaffLogin(ctx, &dto.StaffLoginRequest{Email: "coordinator@acesped.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = env.svc.Auth.StaffLogin(ctx, &dto.StaffLoginRequest{Email: "nobody@acesped.test", Password: "password1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := &dto.CreateUserRequest{Email: "hop@acesped.test", Password: "password1", FirstName: "A", LastName: "B", Role: "HEAD_OF_PROGRAM"}

	_, err := env.svc.Auth.CreateUser(ctx, req)
	require.NoError(t, err)
	_, err = env.svc.Auth.CreateUser(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	_, err = env.svc.Auth.CreateUser(ctx, &dto.CreateUserRequest{Email: "s@acesped.test", Password: "password1", Role: "STUDENT"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	student := env.student(t, "chioma@example.com", nil)

	_, err := env.svc.Auth.StudentLogin(context.Background(), &dto.StudentLoginRequest{MatricNumber: student.MatricNumber, Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
