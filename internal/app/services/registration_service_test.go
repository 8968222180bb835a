package services

import (
	"context"
	"testing"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) student(t *testing.T, addr string, programID *int64) *models.Student {
	t.Helper()
	app := e.approved(t, addr, programID)
	out, err := e.svc.Student.ConvertToStudent(context.Background(), app.ID)
	require.NoError(t, err)
	return out.Student
}

func TestRegister_TwiceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	program, courses := env.catalogue(t, 3)
	student := env.student(t, "chioma@example.com", &program.ID)
	req := &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"}

	reg, err := env.svc.Registration.Register(ctx, env.admin, req)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRegistered, reg.Status)
	assert.Equal(t, models.SemesterFirst, reg.Semester)

	_, err = env.svc.Registration.Register(ctx, env.admin, req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	regs, err := env.svc.Registration.ListForStudent(ctx, env.admin, student.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 1)

	programmes, err := env.repos.Programmes.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProgrammeRegistered, programmes[0].Status)
}

func TestRegister_StudentSelfService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, courses := env.catalogue(t, 3)
	me := env.student(t, "me@example.com", nil)
	other := env.student(t, "other@example.com", nil)

	reg, err := env.svc.Registration.Register(ctx, studentPrincipal(me), &dto.RegisterCourseRequest{CourseID: courses[0].ID, Session: "2025/2026", Semester: "second"})
	require.NoError(t, err)
	assert.Equal(t, me.ID, reg.StudentID)
	assert.Equal(t, models.SemesterSecond, reg.Semester)

	_, err = env.svc.Registration.Register(ctx, studentPrincipal(me), &dto.RegisterCourseRequest{StudentID: other.ID, CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.svc.Registration.ListForStudent(ctx, studentPrincipal(me), other.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRegister_UsesActiveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, courses := env.catalogue(t, 3, 2)
	student := env.student(t, "chioma@example.com", nil)

	_, err := env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[0].ID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.svc.Settings.UpdateActiveSession(ctx, env.admin, &dto.UpdateAcademicSessionRequest{Session: "2025/2026", Semester: "Second"})
	require.NoError(t, err)

	reg, err := env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", reg.Session)
	assert.Equal(t, models.SemesterSecond, reg.Semester)

	_, err = env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[1].ID, Session: "2025/2026", Semester: "First"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRegister_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, courses := env.catalogue(t, 3)
	student := env.student(t, "chioma@example.com", nil)

	_, err := env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: 999, Session: "2025/2026", Semester: "First"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: 999, CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[0].ID, Session: "2025/2026", Semester: "Third"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	app, err := env.repos.Applications.GetByID(ctx, *student.ApplicationID)
	require.NoError(t, err)
	_, err = env.svc.Student.Graduate(ctx, app.ID)
	require.NoError(t, err)
	_, err = env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, courses := env.catalogue(t, 3, 2)
	student := env.student(t, "chioma@example.com", nil)
	me := studentPrincipal(student)

	reg, err := env.svc.Registration.Register(ctx, me, &dto.RegisterCourseRequest{CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"})
	require.NoError(t, err)

	withdrawn, err := env.svc.Registration.Withdraw(ctx, me, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationWithdrawn, withdrawn.Status)

	_, err = env.svc.Registration.Withdraw(ctx, me, reg.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// Withdrawn rows still count as the term's registration.
	_, err = env.svc.Registration.Register(ctx, me, &dto.RegisterCourseRequest{CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	graded, err := env.svc.Registration.Register(ctx, me, &dto.RegisterCourseRequest{CourseID: courses[1].ID, Session: "2025/2026", Semester: "First"})
	require.NoError(t, err)
	score := 72.0
	_, err = env.svc.Result.RecordResult(ctx, env.admin, graded.ID, &score, "")
	require.NoError(t, err)
	_, err = env.svc.Registration.Withdraw(ctx, me, graded.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestWithdraw_StampsInjectedClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	env.svc.Registration.(*registrationServiceImpl).now = func() time.Time { return at }

	_, courses := env.catalogue(t, 3)
	student := env.student(t, "chioma@example.com", nil)
	reg, err := env.svc.Registration.Register(ctx, env.admin, &dto.RegisterCourseRequest{StudentID: student.ID, CourseID: courses[0].ID, Session: "2025/2026", Semester: "First"})
	require.NoError(t, err)

	withdrawn, err := env.svc.Registration.Withdraw(ctx, env.admin, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, at, withdrawn.UpdatedAt)
}
