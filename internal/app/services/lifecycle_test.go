package services

import (
	"context"
	"testing"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Application to CGPA through every stage.
func TestAdmissionToCGPA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	program, courses := env.catalogue(t, 3)

	app := env.submit(t, "ngozi@example.com", "2025/2026", &program.ID)

	ex, err := env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"interview": 45, "written": 30})
	require.NoError(t, err)
	require.Equal(t, 75.0, ex.Total)

	app, err = env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationApproved)
	require.NoError(t, err)

	converted, err := env.svc.Student.ConvertToStudent(ctx, app.ID)
	require.NoError(t, err)

	reg, err := env.svc.Registration.Register(ctx, studentPrincipal(converted.Student), &dto.RegisterCourseRequest{
		CourseID: courses[0].ID,
		Session:  "2025/2026",
		Semester: "First",
	})
	require.NoError(t, err)

	score := 62.0
	_, err = env.svc.Result.RecordResult(ctx, env.admin, reg.ID, &score, "B")
	require.NoError(t, err)

	cgpa, err := env.svc.Result.ComputeCGPA(ctx, studentPrincipal(converted.Student), converted.Student.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.00", cgpa)

	graduated, err := env.svc.Student.Graduate(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StudentGraduated, graduated.Student.Status)

	assert.Equal(t, 1, env.sent(email.TemplateApplicationReceived))
	assert.Equal(t, 1, env.sent(email.TemplateApplicationApproved))
	assert.Equal(t, 1, env.sent(email.TemplateStudentCredentials))
}
