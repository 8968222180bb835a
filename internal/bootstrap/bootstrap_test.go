package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acesped/portal/internal/config"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/acesped/portal/internal/seed"
)

func memoryConfig(t *testing.T, mode string) *config.Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "bootstrap-test")
	t.Setenv("DB_DRIVER", config.DriverMemory)
	t.Setenv("SERVER_MODE", mode)

	cfg, _, err := LoadConfigAndSetupLogger("")
	require.NoError(t, err)
	return cfg
}

func buildRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *Dependencies) {
	t.Helper()
	lgr := zerolog.Nop()
	database, repos, err := SetupStorage(context.Background(), cfg, lgr)
	require.NoError(t, err)
	assert.Nil(t, database)

	deps := BuildDependencies(cfg, database, repos, lgr)
	router, err := SetupRouter(cfg, deps, lgr)
	require.NoError(t, err)
	return router, deps
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSetupRouter_Development(t *testing.T) {
	cfg := memoryConfig(t, "development")
	router, deps := buildRouter(t, cfg)
	defer deps.Dispatcher.Wait()

	assert.Equal(t, http.StatusOK, get(router, "/health").Code)

	metrics := get(router, cfg.Metrics.Path)
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "http_requests_total")

	doc := get(router, "/swagger/doc.json")
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "ACE-SPED Portal API")

	w := get(router, "/api/v1/auth/me")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetupRouter_ProductionHidesSwagger(t *testing.T) {
	cfg := memoryConfig(t, config.ModeProduction)
	router, deps := buildRouter(t, cfg)
	defer deps.Dispatcher.Wait()

	assert.Equal(t, http.StatusNotFound, get(router, "/swagger/doc.json").Code)
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg := memoryConfig(t, "development")
	_, deps := buildRouter(t, cfg)
	defer deps.Dispatcher.Wait()

	ctx := context.Background()
	opts := seed.DefaultOptions()
	require.NoError(t, seed.CreateDefaultData(ctx, deps.Services, opts, zerolog.Nop()))
	require.NoError(t, seed.CreateDefaultData(ctx, deps.Services, opts, zerolog.Nop()))

	session, ok, err := deps.Services.Settings.CurrentSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, opts.Session, session.Session)

	courses, err := deps.Repos.Courses.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestNewNotifier(t *testing.T) {
	cfg := &config.Config{}

	cfg.Mail.Provider = config.MailProviderLog
	assert.IsType(t, &email.LogNotifier{}, NewNotifier(cfg, zerolog.Nop()))

	cfg.Mail.Provider = config.MailProviderSMTP
	assert.IsType(t, &email.SMTPNotifier{}, NewNotifier(cfg, zerolog.Nop()))

	cfg.Mail.Provider = config.MailProviderSendGrid
	assert.IsType(t, &email.SendGridNotifier{}, NewNotifier(cfg, zerolog.Nop()))
}

func TestAdmissionConfigCarriesThreshold(t *testing.T) {
	t.Setenv("ADMISSION_MIN_APPROVAL_SCORE", "60")
	cfg := memoryConfig(t, "development")

	ac := AdmissionConfig(cfg)
	assert.Equal(t, 60.0, ac.MinApprovalScore)
	assert.Equal(t, "ACE", ac.MatricPrefix)
}
