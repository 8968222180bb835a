package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/pkg/apperrors"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/acesped/portal/internal/pkg/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitApplication(t *testing.T) {
	env := newTestEnv(t)
	app := env.submit(t, "  Chioma@Example.com ", "2025/2026", nil)

	assert.Regexp(t, `^ACE-\d{4}-[0-9A-Z]{6}$`, app.ApplicationNumber)
	assert.Equal(t, "chioma@example.com", app.Email)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, 1, env.sent(email.TemplateApplicationReceived))
}

func TestSubmitApplication_DuplicateReportsOriginalNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.submit(t, "chioma@example.com", "2025/2026", nil)

	_, err := env.svc.Admission.SubmitApplication(ctx, &dto.SubmitApplicationRequest{
		FirstName:        "Chioma",
		Email:            "CHIOMA@example.com",
		AdmissionSession: "2025/2026",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
	assert.Equal(t, first.ApplicationNumber, apperrors.DetailsOf(err)["applicationNumber"])

	_, total, err := env.repos.Applications.List(ctx, repositories.ApplicationListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSubmitApplication_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Admission.SubmitApplication(ctx, &dto.SubmitApplicationRequest{
				FirstName:        "Chioma",
				Email:            "chioma@example.com",
				AdmissionSession: "2025/2026",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
	}
	assert.Equal(t, 1, ok)
}

func TestSubmitApplication_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []dto.SubmitApplicationRequest{
		{FirstName: "A", Email: "   ", AdmissionSession: "2025/2026"},
		{FirstName: "A", Email: "a@example.com", AdmissionSession: " "},
		{FirstName: "A", Email: "a@example.com", AdmissionSession: "2025/2027"},
		{FirstName: "", Email: "a@example.com", AdmissionSession: "2025/2026"},
	}
	for _, req := range cases {
		req := req
		_, err := env.svc.Admission.SubmitApplication(ctx, &req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	}
}

func TestGetApplicationStatus_RequiresMatchingEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)

	got, err := env.svc.Admission.GetApplicationStatus(ctx, app.ApplicationNumber, "Chioma@Example.com")
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)

	_, err = env.svc.Admission.GetApplicationStatus(ctx, app.ApplicationNumber, "someone@example.com")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestRecordExerciseScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)

	ex, err := env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"interview": 20, "written": 12.5})
	require.NoError(t, err)
	assert.Equal(t, 32.5, ex.Total)

	ex, err = env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"interview": 30})
	require.NoError(t, err)
	assert.Equal(t, 30.0, ex.Total)

	got, err := env.svc.Admission.GetExercise(ctx, app.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"interview": 30}, got.Components)

	_, err = env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	_, err = env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"written": -1})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	_, err = env.svc.Admission.RecordExerciseScore(ctx, env.admin, "ACE-0000-NOPE00", map[string]float64{"written": 1})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSetApplicationStatus_BelowThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)

	// No exercise at all counts as zero.
	_, err := env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationApproved)
	assert.ErrorIs(t, err, apperrors.ErrThresholdNotMet)

	_, err = env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"interview": 49.5})
	require.NoError(t, err)
	_, err = env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationApproved)
	assert.ErrorIs(t, err, apperrors.ErrThresholdNotMet)

	got, err := env.repos.Applications.GetByNumber(ctx, app.ApplicationNumber)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, got.Status)
	assert.Zero(t, env.sent(email.TemplateApplicationApproved))
}

func TestSetApplicationStatus_ApproveTwiceNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.approved(t, "chioma@example.com", nil)
	assert.Equal(t, models.ApplicationApproved, app.Status)
	require.NotNil(t, app.ReviewedBy)
	assert.Equal(t, env.admin.ID, *app.ReviewedBy)

	again, err := env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, again.Status)
	assert.Equal(t, 1, env.sent(email.TemplateApplicationApproved))
}

func TestSetApplicationStatus_ConcurrentApprovalsNotifyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)
	_, err := env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"interview": 80})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationApproved)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, env.sent(email.TemplateApplicationApproved))
}

func TestSetApplicationStatus_DecisionsAreTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)

	rejected, err := env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationRejected)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, rejected.Status)
	assert.Equal(t, 1, env.sent(email.TemplateApplicationRejected))

	_, err = env.svc.Admission.RecordExerciseScore(ctx, env.admin, app.ApplicationNumber, map[string]float64{"interview": 90})
	require.NoError(t, err)
	_, err = env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationApproved)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationPending)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.svc.Admission.SetApplicationStatus(ctx, env.admin, "ACE-0000-NOPE00", models.ApplicationRejected)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSendInterviewInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.submit(t, "chioma@example.com", "2025/2026", nil)

	invited, err := env.svc.Admission.SendInterviewInvitation(ctx, app.ApplicationNumber, "Room 4")
	require.NoError(t, err)
	require.NotNil(t, invited.InterviewScheduledFor)
	assert.True(t, helpers.IsWorkingDay(*invited.InterviewScheduledFor))
	assert.True(t, invited.InterviewScheduledFor.After(app.CreatedAt))
	assert.Equal(t, 1, env.sent(email.TemplateInterviewInvitation))

	_, err = env.svc.Admission.SetApplicationStatus(ctx, env.admin, app.ApplicationNumber, models.ApplicationRejected)
	require.NoError(t, err)
	_, err = env.svc.Admission.SendInterviewInvitation(ctx, app.ApplicationNumber, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestListApplications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.submit(t, "a@example.com", "2025/2026", nil)
	env.submit(t, "b@example.com", "2025/2026", nil)
	rejected := env.submit(t, "c@example.com", "2026/2027", nil)
	_, err := env.svc.Admission.SetApplicationStatus(ctx, env.admin, rejected.ApplicationNumber, models.ApplicationRejected)
	require.NoError(t, err)

	apps, page, err := env.svc.Admission.ListApplications(ctx, dto.ApplicationFilter{Status: models.ApplicationPending, Page: 1, Size: 1})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	apps, _, err = env.svc.Admission.ListApplications(ctx, dto.ApplicationFilter{AdmissionSession: "2026/2027"})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, rejected.ApplicationNumber, apps[0].ApplicationNumber)
}

func TestListApplications_PageBeyondEndIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "a@example.com", "2025/2026", nil)

	var (
		apps []*models.Application
		page dto.PaginationInfo
		err  error
	)
	assert.NotPanics(t, func() {
		apps, page, err = env.svc.Admission.ListApplications(context.Background(), dto.ApplicationFilter{Page: math.MaxInt64 / 10, Size: 20})
	})
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.Equal(t, int64(1), page.TotalItems)
	assert.Equal(t, helpers.MaxPageNumber, page.CurrentPage)
}
