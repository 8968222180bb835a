package services

import (
	"context"
	"testing"
	"time"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/app/repositories/memory"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	repos      *repositories.Repositories
	recorder   *email.Recorder
	dispatcher *email.Dispatcher
	svc        *Services
	admin      auth.Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	auth.BcryptCost = bcrypt.MinCost

	repos := memory.NewRepositories(memory.NewStore())
	rec := &email.Recorder{}
	dispatcher := email.NewDispatcher(rec, time.Second, zerolog.Nop())
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, TokenIssuer: "test"})

	env := &testEnv{
		repos:      repos,
		recorder:   rec,
		dispatcher: dispatcher,
		svc: NewServices(Deps{
			Repos:     repos,
			Notifier:  dispatcher,
			JWT:       jwt,
			Admission: DefaultAdmissionConfig(),
			Logger:    zerolog.Nop(),
		}),
	}
	admin := &models.User{Email: "admin@acesped.test", FirstName: "Ada", Role: models.RoleSuperAdmin, IsActive: true}
	require.NoError(t, repos.Users.Create(context.Background(), admin))
	env.admin = auth.Principal{ID: admin.ID, Kind: auth.KindStaff, Role: admin.Role, Email: admin.Email}
	return env
}

// sent waits for in-flight notifications and counts template t.
func (e *testEnv) sent(t email.Template) int {
	e.dispatcher.Wait()
	return e.recorder.Count(t)
}

func (e *testEnv) submit(t *testing.T, addr, session string, programID *int64) *models.Application {
	t.Helper()
	app, err := e.svc.Admission.SubmitApplication(context.Background(), &dto.SubmitApplicationRequest{
		FirstName:        "Chioma",
		LastName:         "Okafor",
		Email:            addr,
		ProgramID:        programID,
		AdmissionSession: session,
	})
	require.NoError(t, err)
	return app
}

func (e *testEnv) approved(t *testing.T, addr string, programID *int64) *models.Application {
	t.Helper()
	ctx := context.Background()
	app := e.submit(t, addr, "2025/2026", programID)
	_, err := e.svc.Admission.RecordExerciseScore(ctx, e.admin, app.ApplicationNumber, map[string]float64{"interview": 40, "written": 35})
	require.NoError(t, err)
	app, err = e.svc.Admission.SetApplicationStatus(ctx, e.admin, app.ApplicationNumber, models.ApplicationApproved)
	require.NoError(t, err)
	return app
}

func (e *testEnv) catalogue(t *testing.T, creditHours ...int) (*models.Program, []*models.Course) {
	t.Helper()
	ctx := context.Background()
	program, err := e.svc.Academic.CreateProgram(ctx, &dto.CreateProgramRequest{Code: "MSC-SPED", Name: "MSc Special Education", Service: "Postgraduate"})
	require.NoError(t, err)
	courses := make([]*models.Course, 0, len(creditHours))
	for i, ch := range creditHours {
		c, err := e.svc.Academic.CreateCourse(ctx, &dto.CreateCourseRequest{
			ProgramID:   program.ID,
			Code:        "SPD80" + string(rune('1'+i)),
			Title:       "Course",
			CreditHours: ch,
		})
		require.NoError(t, err)
		courses = append(courses, c)
	}
	return program, courses
}

func studentPrincipal(s *models.Student) auth.Principal {
	return auth.Principal{ID: s.ID, Kind: auth.KindStudent, Role: models.RoleStudent, Email: s.Email}
}
