package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCourse(t *testing.T, repos *repositories.Repositories) *models.Course {
	t.Helper()
	ctx := context.Background()
	program := &models.Program{Code: "MSC-SPED", Name: "MSc Special Education", Service: "Postgraduate"}
	require.NoError(t, repos.Programs.Create(ctx, program))
	course := &models.Course{ProgramID: program.ID, Code: "SPD801", Title: "Inclusive Pedagogy", CreditHours: 3}
	require.NoError(t, repos.Courses.Create(ctx, course))
	return course
}

func TestApplicationUniqueness(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()

	first := &models.Application{ApplicationNumber: "ACE-2026-AAAAAA", Email: "a@example.com", AdmissionSession: "2026/2027", Status: models.ApplicationPending}
	require.NoError(t, repos.Applications.Create(ctx, first))

	dup := &models.Application{ApplicationNumber: "ACE-2026-BBBBBB", Email: "a@example.com", AdmissionSession: "2026/2027"}
	assert.ErrorIs(t, repos.Applications.Create(ctx, dup), repositories.ErrApplicationExists)

	sameNumber := &models.Application{ApplicationNumber: "ACE-2026-AAAAAA", Email: "b@example.com", AdmissionSession: "2026/2027"}
	assert.ErrorIs(t, repos.Applications.Create(ctx, sameNumber), repositories.ErrApplicationNumberTaken)

	otherSession := &models.Application{ApplicationNumber: "ACE-2027-CCCCCC", Email: "a@example.com", AdmissionSession: "2027/2028"}
	require.NoError(t, repos.Applications.Create(ctx, otherSession))
}

func TestTransitionStatusIsConditional(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	app := &models.Application{ApplicationNumber: "ACE-2026-AAAAAA", Email: "a@example.com", AdmissionSession: "2026/2027", Status: models.ApplicationPending}
	require.NoError(t, repos.Applications.Create(ctx, app))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repos.Applications.TransitionStatus(ctx, app.ApplicationNumber, models.ApplicationPending, models.ApplicationApproved, nil, time.Now())
			require.NoError(t, err)
			if ok {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, changed)

	got, err := repos.Applications.GetByNumber(ctx, app.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, got.Status)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.WithinTransaction(ctx, func(ctx context.Context, tx *repositories.Repositories) error {
		require.NoError(t, tx.Students.Create(ctx, &models.Student{MatricNumber: "ACE/2026/000001", Status: models.StudentActive}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Students.GetByMatricNumber(ctx, "ACE/2026/000001")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Sequence numbers are rolled back too.
	s := &models.Student{MatricNumber: "ACE/2026/000002", Status: models.StudentActive}
	require.NoError(t, repos.Students.Create(ctx, s))
	assert.Equal(t, int64(1), s.ID)
}

func TestRegistrationLifecycle(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	course := seedCourse(t, repos)

	reg := &models.Registration{StudentID: 1, CourseID: course.ID, Session: "2025/2026", Semester: models.SemesterFirst, Status: models.RegistrationRegistered}
	require.NoError(t, repos.Registrations.Create(ctx, reg))

	again := &models.Registration{StudentID: 1, CourseID: course.ID, Session: "2025/2026", Semester: models.SemesterFirst, Status: models.RegistrationRegistered}
	assert.ErrorIs(t, repos.Registrations.Create(ctx, again), repositories.ErrRegistrationExists)

	ok, err := repos.Registrations.RecordResult(ctx, reg.ID, 65, models.GradeB, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Registrations.Withdraw(ctx, reg.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "graded registrations cannot be withdrawn")

	graded, err := repos.Registrations.GradedForStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, graded, 1)
	assert.Equal(t, 3, graded[0].CreditHours)
	assert.Equal(t, models.GradeB, *graded[0].Grade)
}

func TestAccessCodeUsageIsBounded(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	max := 2
	require.NoError(t, repos.AccessCodes.Create(ctx, &models.AccessCode{Code: "OPEN-DAY", AccessTo: []int64{1, 2}, IsActive: true, MaxUses: &max}))

	for i := 0; i < 2; i++ {
		ids, ok, err := repos.AccessCodes.IncrementUsage(ctx, "OPEN-DAY")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int64{1, 2}, ids)
	}
	_, ok, err := repos.AccessCodes.IncrementUsage(ctx, "OPEN-DAY")
	require.NoError(t, err)
	assert.False(t, ok)

	ac, err := repos.AccessCodes.GetByCode(ctx, "OPEN-DAY")
	require.NoError(t, err)
	assert.Equal(t, 2, ac.UsageCount)
}

func TestSettingsVersioning(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	zero := int64(0)

	s, err := repos.Settings.Put(ctx, models.ActiveSessionKey, "v1", &zero, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Version)

	_, err = repos.Settings.Put(ctx, models.ActiveSessionKey, "v2", &zero, nil, time.Now())
	assert.ErrorIs(t, err, repositories.ErrVersionMismatch)

	s, err = repos.Settings.Put(ctx, models.ActiveSessionKey, "v3", nil, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Version)
	assert.Equal(t, "v3", s.Value)
}

func TestReadsReturnCopies(t *testing.T) {
	repos := NewRepositories(NewStore())
	ctx := context.Background()
	course := seedCourse(t, repos)
	require.NoError(t, repos.Courses.AssignLecturer(ctx, course.ID, 7))

	got, err := repos.Courses.GetByID(ctx, course.ID)
	require.NoError(t, err)
	got.LecturerIDs[0] = 99
	got.Title = "changed"

	again, err := repos.Courses.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, again.LecturerIDs)
	assert.Equal(t, "Inclusive Pedagogy", again.Title)
}
