//go:build integration

package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acesped/portal/internal/app/migrations"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/db"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/app/repositories/
func openRepositories(t *testing.T) *repositories.Repositories {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).Migrate(ctx, migrations.Files()))
	_, err = pool.Exec(ctx, `TRUNCATE users, programs, courses, course_lecturers, applications,
		admission_exercises, students, student_programmes, course_registrations, projects,
		project_access_codes, system_settings RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return repositories.NewPostgresRepositories(&db.PostgresDB{Pool: pool})
}

func newApplication(number, email string) *models.Application {
	return &models.Application{
		ApplicationNumber: number,
		FirstName:         "Chioma",
		Email:             email,
		AdmissionSession:  "2025/2026",
		Status:            models.ApplicationPending,
	}
}

func TestPostgres_ApplicationUniqueness(t *testing.T) {
	repos := openRepositories(t)
	ctx := context.Background()

	first := newApplication("ACE-2025-AAAAAA", "chioma@example.com")
	require.NoError(t, repos.Applications.Create(ctx, first))
	assert.NotZero(t, first.ID)

	err := repos.Applications.Create(ctx, newApplication("ACE-2025-BBBBBB", "chioma@example.com"))
	assert.ErrorIs(t, err, repositories.ErrApplicationExists)

	err = repos.Applications.Create(ctx, newApplication("ACE-2025-AAAAAA", "other@example.com"))
	assert.ErrorIs(t, err, repositories.ErrApplicationNumberTaken)

	changed, err := repos.Applications.TransitionStatus(ctx, first.ApplicationNumber, models.ApplicationPending, models.ApplicationApproved, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repos.Applications.TransitionStatus(ctx, first.ApplicationNumber, models.ApplicationPending, models.ApplicationRejected, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	page, total, err := repos.Applications.List(ctx, repositories.ApplicationListFilter{Offset: 1_000_000, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Equal(t, int64(1), total)
}

func TestPostgres_StudentAndRegistrationUniqueness(t *testing.T) {
	repos := openRepositories(t)
	ctx := context.Background()

	app := newApplication("ACE-2025-CCCCCC", "ada@example.com")
	require.NoError(t, repos.Applications.Create(ctx, app))

	student := &models.Student{ApplicationID: &app.ID, MatricNumber: "ACE/2025/0001", FirstName: "Ada", Email: app.Email, Password: "x", Status: models.StudentActive}
	require.NoError(t, repos.Students.Create(ctx, student))

	twin := &models.Student{ApplicationID: &app.ID, MatricNumber: "ACE/2025/0002", FirstName: "Ada", Email: app.Email, Password: "x", Status: models.StudentActive}
	assert.ErrorIs(t, repos.Students.Create(ctx, twin), repositories.ErrStudentExists)

	clash := &models.Student{MatricNumber: "ACE/2025/0001", FirstName: "Obi", Email: "obi@example.com", Password: "x", Status: models.StudentActive}
	assert.ErrorIs(t, repos.Students.Create(ctx, clash), repositories.ErrMatricNumberTaken)

	program := &models.Program{Code: "MSC-SPED", Name: "MSc Special Education", Service: "Postgraduate"}
	require.NoError(t, repos.Programs.Create(ctx, program))
	course := &models.Course{ProgramID: program.ID, Code: "SPE801", Title: "Inclusive Pedagogy", CreditHours: 3}
	require.NoError(t, repos.Courses.Create(ctx, course))
	assert.ErrorIs(t, repos.Courses.Create(ctx, &models.Course{ProgramID: program.ID, Code: "SPE801", Title: "Again", CreditHours: 2}), repositories.ErrCourseCodeTaken)

	reg := &models.Registration{StudentID: student.ID, CourseID: course.ID, Session: "2025/2026", Semester: models.SemesterFirst, Status: models.RegistrationRegistered}
	require.NoError(t, repos.Registrations.Create(ctx, reg))

	withdrawn, err := repos.Registrations.Withdraw(ctx, reg.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, withdrawn)

	// A withdrawn row still occupies the term.
	again := &models.Registration{StudentID: student.ID, CourseID: course.ID, Session: "2025/2026", Semester: models.SemesterFirst, Status: models.RegistrationRegistered}
	assert.ErrorIs(t, repos.Registrations.Create(ctx, again), repositories.ErrRegistrationExists)

	recorded, err := repos.Registrations.RecordResult(ctx, reg.ID, 70, models.GradeA, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, recorded)
}

func TestPostgres_AccessCodeUsageIsGuarded(t *testing.T) {
	repos := openRepositories(t)
	ctx := context.Background()

	project := &models.Project{Title: "Sign language corpus"}
	require.NoError(t, repos.Projects.Create(ctx, project))

	maxUses := 2
	code := &models.AccessCode{Code: "PAC-TEST", AccessTo: []int64{project.ID}, IsActive: true, MaxUses: &maxUses}
	require.NoError(t, repos.AccessCodes.Create(ctx, code))
	assert.ErrorIs(t, repos.AccessCodes.Create(ctx, &models.AccessCode{Code: "PAC-TEST", AccessTo: []int64{project.ID}, IsActive: true}), repositories.ErrAccessCodeTaken)

	for i := 0; i < maxUses; i++ {
		accessTo, ok, err := repos.AccessCodes.IncrementUsage(ctx, code.Code)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []int64{project.ID}, accessTo)
	}
	_, ok, err := repos.AccessCodes.IncrementUsage(ctx, code.Code)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repos.AccessCodes.GetByCode(ctx, code.Code)
	require.NoError(t, err)
	assert.Equal(t, maxUses, stored.UsageCount)
}

func TestPostgres_SettingVersionCheck(t *testing.T) {
	repos := openRepositories(t)
	ctx := context.Background()
	unset := int64(0)

	first, err := repos.Settings.Put(ctx, models.ActiveSessionKey, `{"session":"2025/2026","semester":"First"}`, &unset, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	_, err = repos.Settings.Put(ctx, models.ActiveSessionKey, `{"session":"2026/2027","semester":"First"}`, &unset, nil, time.Now())
	assert.ErrorIs(t, err, repositories.ErrVersionMismatch)

	second, err := repos.Settings.Put(ctx, models.ActiveSessionKey, `{"session":"2025/2026","semester":"Second"}`, &first.Version, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
}
