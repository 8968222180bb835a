package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acesped/portal/internal/app/controllers"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/app/repositories/memory"
	"github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/middleware"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/email"
)

const (
	adminEmail    = "admin@acesped.test"
	adminPassword = "Admin123!"
)

type apiEnv struct {
	router     *gin.Engine
	svc        *services.Services
	recorder   *email.Recorder
	dispatcher *email.Dispatcher
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
	require.NoError(t, middleware.RegisterValidators())

	lgr := zerolog.Nop()
	repos := memory.NewRepositories(memory.NewStore())
	rec := &email.Recorder{}
	dispatcher := email.NewDispatcher(rec, time.Second, lgr)
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour, TokenIssuer: "test"})

	svc := services.NewServices(services.Deps{
		Repos:     repos,
		Notifier:  dispatcher,
		JWT:       jwt,
		Admission: services.DefaultAdmissionConfig(),
		Logger:    lgr,
	})

	_, err := svc.Auth.CreateUser(context.Background(), &dto.CreateUserRequest{
		Email:     adminEmail,
		Password:  adminPassword,
		FirstName: "Ada",
		LastName:  "Obi",
		Role:      string(models.RoleSuperAdmin),
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery())
	SetupRouter(router, &Controllers{
		Admission:    controllers.NewAdmissionController(svc.Admission),
		Student:      controllers.NewStudentController(svc.Student),
		Registration: controllers.NewRegistrationController(svc.Registration, svc.Result),
		Academic:     controllers.NewAcademicController(svc.Academic),
		AccessCode:   controllers.NewAccessCodeController(svc.AccessCode),
		Settings:     controllers.NewSettingsController(svc.Settings),
		Auth:         controllers.NewAuthController(svc.Auth, controllers.SessionCookie{Name: "ace_session"}, lgr),
		User:         controllers.NewUserController(svc.Auth),
		Health:       controllers.NewHealthController(nil),
	}, middleware.NewAuthMiddleware(jwt, "ace_session"))

	return &apiEnv{router: router, svc: svc, recorder: rec, dispatcher: dispatcher}
}

// do sends body as JSON and decodes the response into a generic map.
func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (e *apiEnv) login(t *testing.T, path string, body interface{}) string {
	t.Helper()
	status, resp := e.do(t, http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, status, resp)
	return resp["token"].(map[string]interface{})["accessToken"].(string)
}

func (e *apiEnv) staffToken(t *testing.T) string {
	return e.login(t, "/api/v1/auth/staff/login", dto.StaffLoginRequest{Email: adminEmail, Password: adminPassword})
}

// credentials returns the matric number and password mailed on conversion.
func (e *apiEnv) credentials(t *testing.T) (string, string) {
	t.Helper()
	e.dispatcher.Wait()
	for _, m := range e.recorder.Sent() {
		if m.Template == email.TemplateStudentCredentials {
			return m.Data["matricNumber"], m.Data["password"]
		}
	}
	t.Fatal("no credentials message sent")
	return "", ""
}

func errorCode(resp map[string]interface{}) string {
	detail, _ := resp["error"].(map[string]interface{})
	code, _ := detail["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	env := newAPIEnv(t)

	status, resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "memory", resp["database"])
}

func TestAdmissionToGraduationOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	staff := env.staffToken(t)

	// Catalogue
	status, resp := env.do(t, http.MethodPost, "/api/v1/programs", staff, dto.CreateProgramRequest{
		Code: "MSC-SPED", Name: "M.Sc. Special Education", Service: "Postgraduate",
	})
	require.Equal(t, http.StatusCreated, status, resp)
	programID := int64(resp["program"].(map[string]interface{})["id"].(float64))

	status, resp = env.do(t, http.MethodPost, "/api/v1/courses", staff, dto.CreateCourseRequest{
		ProgramID: programID, Code: "SPD801", Title: "Foundations", CreditHours: 3,
	})
	require.Equal(t, http.StatusCreated, status, resp)
	courseID := int64(resp["course"].(map[string]interface{})["id"].(float64))

	// Public intake
	application := dto.SubmitApplicationRequest{
		FirstName:        "Chioma",
		LastName:         "Okafor",
		Email:            "chioma@example.com",
		ProgramID:        &programID,
		AdmissionSession: "2025/2026",
	}
	status, resp = env.do(t, http.MethodPost, "/api/v1/applications", "", application)
	require.Equal(t, http.StatusCreated, status, resp)
	number := resp["applicationNumber"].(string)
	assert.Equal(t, string(models.ApplicationPending), resp["status"])

	status, resp = env.do(t, http.MethodPost, "/api/v1/applications", "", application)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "RES_002", errorCode(resp))

	status, _ = env.do(t, http.MethodGet, "/api/v1/applications/status?applicationNumber="+number+"&email=chioma@example.com", "", nil)
	assert.Equal(t, http.StatusOK, status)

	// Approval gate
	status, resp = env.do(t, http.MethodPatch, "/api/v1/admissions/"+number+"/status", staff, dto.SetApplicationStatusRequest{Status: "approved"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BUS_002", errorCode(resp))

	status, resp = env.do(t, http.MethodPut, "/api/v1/admissions/"+number+"/exercise", staff, dto.RecordExerciseRequest{
		Components: map[string]float64{"interview": 40, "written": 35},
	})
	require.Equal(t, http.StatusOK, status, resp)

	status, resp = env.do(t, http.MethodPatch, "/api/v1/admissions/"+number+"/status", staff, dto.SetApplicationStatusRequest{Status: "approved"})
	require.Equal(t, http.StatusOK, status, resp)

	status, resp = env.do(t, http.MethodGet, "/api/v1/applications?status=APPROVED", staff, nil)
	require.Equal(t, http.StatusOK, status, resp)
	apps := resp["applications"].([]interface{})
	require.Len(t, apps, 1)
	applicationID := int64(apps[0].(map[string]interface{})["id"].(float64))

	// Conversion
	status, resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/%d/convert", applicationID), staff, nil)
	require.Equal(t, http.StatusCreated, status, resp)
	studentID := int64(resp["student"].(map[string]interface{})["id"].(float64))

	status, resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/applications/%d/convert", applicationID), staff, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BUS_001", errorCode(resp))

	matric, password := env.credentials(t)
	student := env.login(t, "/api/v1/auth/student/login", dto.StudentLoginRequest{MatricNumber: matric, Password: password})

	status, resp = env.do(t, http.MethodGet, "/api/v1/students/me", student, nil)
	require.Equal(t, http.StatusOK, status, resp)

	// Registration and results
	status, resp = env.do(t, http.MethodPost, "/api/v1/registrations", student, dto.RegisterCourseRequest{
		CourseID: courseID, Session: "2025/2026", Semester: "First",
	})
	require.Equal(t, http.StatusCreated, status, resp)
	registrationID := int64(resp["registration"].(map[string]interface{})["id"].(float64))

	score := 65.0
	resultPath := fmt.Sprintf("/api/v1/registrations/%d/result", registrationID)
	status, resp = env.do(t, http.MethodPut, resultPath, student, dto.RecordResultRequest{Score: &score, Grade: "B"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_009", errorCode(resp))

	status, resp = env.do(t, http.MethodPut, resultPath, staff, dto.RecordResultRequest{Score: &score, Grade: "B"})
	require.Equal(t, http.StatusOK, status, resp)

	status, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/students/%d/cgpa", studentID), student, nil)
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, "4.00", resp["result"].(map[string]interface{})["cgpa"])

	// Graduation
	graduatePath := fmt.Sprintf("/api/v1/applications/%d/graduate", applicationID)
	status, resp = env.do(t, http.MethodPost, graduatePath, staff, nil)
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, string(models.StudentGraduated), resp["student"].(map[string]interface{})["status"])

	status, resp = env.do(t, http.MethodPost, graduatePath, staff, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BUS_001", errorCode(resp))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newAPIEnv(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/applications", "/api/v1/programs", "/api/v1/settings/academic-session"} {
		status, resp := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "AUTH_008", errorCode(resp), path)
	}
}

func TestStaffPermissions(t *testing.T) {
	env := newAPIEnv(t)
	admin := env.staffToken(t)

	status, resp := env.do(t, http.MethodPost, "/api/v1/users", admin, dto.CreateUserRequest{
		Email:     "lecturer@acesped.test",
		Password:  "Lecturer123!",
		FirstName: "Emeka",
		LastName:  "Eze",
		Role:      string(models.RoleLecturer),
	})
	require.Equal(t, http.StatusCreated, status, resp)

	lecturer := env.login(t, "/api/v1/auth/staff/login", dto.StaffLoginRequest{Email: "lecturer@acesped.test", Password: "Lecturer123!"})

	status, resp = env.do(t, http.MethodGet, "/api/v1/applications", lecturer, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_009", errorCode(resp))

	status, _ = env.do(t, http.MethodPost, "/api/v1/programs", lecturer, dto.CreateProgramRequest{Code: "X", Name: "X", Service: "X"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/programs", lecturer, nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = env.do(t, http.MethodGet, "/api/v1/students/me", lecturer, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_009", errorCode(resp))
}

func TestSubmitApplicationValidation(t *testing.T) {
	env := newAPIEnv(t)

	status, resp := env.do(t, http.MethodPost, "/api/v1/applications", "", map[string]string{
		"firstName":        "Chioma",
		"email":            "not-an-email",
		"admissionSession": "2025/2026",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VAL_001", errorCode(resp))
}

func TestShowcaseAccessCodes(t *testing.T) {
	env := newAPIEnv(t)
	staff := env.staffToken(t)

	status, resp := env.do(t, http.MethodGet, "/api/v1/showcase", "", nil)
	assert.Equal(t, http.StatusBadRequest, status, resp)

	status, resp = env.do(t, http.MethodGet, "/api/v1/showcase?code=NOPE1234", "", nil)
	assert.Equal(t, http.StatusNotFound, status, resp)

	status, resp = env.do(t, http.MethodPost, "/api/v1/projects", staff, dto.CreateProjectRequest{Title: "Braille reader"})
	require.Equal(t, http.StatusCreated, status, resp)
	projectID := int64(resp["project"].(map[string]interface{})["id"].(float64))

	maxUses := 1
	status, resp = env.do(t, http.MethodPost, "/api/v1/access-codes", staff, dto.CreateAccessCodeRequest{AccessTo: []int64{projectID}, MaxUses: &maxUses})
	require.Equal(t, http.StatusCreated, status, resp)
	code := resp["accessCode"].(map[string]interface{})["code"].(string)

	status, resp = env.do(t, http.MethodGet, "/api/v1/showcase?code="+code, "", nil)
	require.Equal(t, http.StatusOK, status, resp)
	assert.Len(t, resp["projects"], 1)

	status, resp = env.do(t, http.MethodPost, "/api/v1/showcase/redeem", "", dto.RedeemAccessCodeRequest{Code: code})
	require.Equal(t, http.StatusOK, status, resp)

	// The single use is spent.
	status, _ = env.do(t, http.MethodPost, "/api/v1/showcase/redeem", "", dto.RedeemAccessCodeRequest{Code: code})
	assert.Equal(t, http.StatusNotFound, status)
}
