package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 50.0, cfg.Admission.MinApprovalScore)
	assert.Equal(t, "ACE", cfg.Admission.ApplicationPrefix)
	assert.Equal(t, MailProviderLog, cfg.Mail.Provider)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  mode: Production
database:
  driver: memory
jwt:
  secret: from-file
admission:
  min_approval_score: 60
  matric_prefix: SPED
`)
	t.Setenv("ADMISSION_MIN_APPROVAL_SCORE", "65.5")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRATION", "2h")

	cfg, err := load(path, "")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 65.5, cfg.Admission.MinApprovalScore)
	assert.Equal(t, "SPED", cfg.Admission.MatricPrefix)
	assert.Equal(t, 2*time.Hour, Duration(cfg.JWT.AccessTokenExpiration, 0))
}

func TestLoad_DotEnv(t *testing.T) {
	dotEnv := writeFile(t, ".env", "JWT_SECRET=from-dotenv\n")
	// os.Unsetenv is undone by t.Setenv's cleanup.
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := load("", dotEnv)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.JWT.Secret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"negative threshold", map[string]string{"ADMISSION_MIN_APPROVAL_SCORE": "-1"}},
		{"smtp without host", map[string]string{"MAIL_PROVIDER": "smtp"}},
		{"sendgrid without key", map[string]string{"MAIL_PROVIDER": "sendgrid"}},
		{"bad duration", map[string]string{"JWT_ACCESS_TOKEN_EXPIRATION": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load("", "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedEnvNamesVariable(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_OPEN_CONNS")
}
