package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Mail providers
const (
	MailProviderLog      = "log"
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
)

// ModeProduction hides internal error detail from API responses.
const ModeProduction = "production"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
		CookieName            string `yaml:"cookie_name" env:"JWT_COOKIE_NAME"`
		CookieSecure          bool   `yaml:"cookie_secure" env:"JWT_COOKIE_SECURE"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Admission struct {
		MinApprovalScore  float64 `yaml:"min_approval_score" env:"ADMISSION_MIN_APPROVAL_SCORE"`
		ApplicationPrefix string  `yaml:"application_prefix" env:"ADMISSION_APPLICATION_PREFIX"`
		MatricPrefix      string  `yaml:"matric_prefix" env:"ADMISSION_MATRIC_PREFIX"`
		InterviewLeadDays int     `yaml:"interview_lead_days" env:"ADMISSION_INTERVIEW_LEAD_DAYS"`
	} `yaml:"admission"`

	Mail struct {
		Provider       string `yaml:"provider" env:"MAIL_PROVIDER"`
		FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		FromEmail      string `yaml:"from_email" env:"MAIL_FROM_EMAIL"`
		Timeout        string `yaml:"timeout" env:"MAIL_TIMEOUT"`
		SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername   string `yaml:"smtp_username" env:"SMTP_USERNAME"`
		SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	} `yaml:"mail"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`
}

// LoadConfig loads configuration from a YAML file, then a .env file, then
// the process environment. Later sources win. Missing files are skipped.
func LoadConfig(configPath string) (*Config, error) {
	return load(configPath, ".env")
}

func load(configPath, dotEnvPath string) (*Config, error) {
	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// godotenv.Load never overrides variables already set in the environment.
	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
		}
	}

	// Override with environment variables
	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	normalize(config)
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = "15s"

	// Database defaults
	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "acesped"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	// JWT defaults
	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "acesped.portal"
	config.JWT.CookieName = "acesped_session"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Admission defaults
	config.Admission.MinApprovalScore = 50
	config.Admission.ApplicationPrefix = "ACE"
	config.Admission.MatricPrefix = "ACE"
	config.Admission.InterviewLeadDays = 5

	// Mail defaults
	config.Mail.Provider = MailProviderLog
	config.Mail.FromName = "ACE-SPED"
	config.Mail.FromEmail = "no-reply@acesped.local"
	config.Mail.Timeout = "15s"
	config.Mail.SMTPPort = 587

	// Metrics defaults
	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"
}

func normalize(config *Config) {
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	config.Mail.Provider = strings.ToLower(strings.TrimSpace(config.Mail.Provider))
	config.Server.Mode = strings.ToLower(strings.TrimSpace(config.Server.Mode))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database connection max lifetime: %w", err)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	if _, err := time.ParseDuration(config.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server shutdown timeout: %w", err)
	}

	if config.Admission.MinApprovalScore < 0 {
		return fmt.Errorf("admission min_approval_score cannot be negative")
	}
	if config.Admission.InterviewLeadDays < 0 {
		return fmt.Errorf("admission interview_lead_days cannot be negative")
	}
	if config.Admission.ApplicationPrefix == "" || config.Admission.MatricPrefix == "" {
		return fmt.Errorf("admission number prefixes are required")
	}

	switch config.Mail.Provider {
	case MailProviderLog:
	case MailProviderSMTP:
		if config.Mail.SMTPHost == "" {
			return fmt.Errorf("smtp_host is required for the smtp mail provider")
		}
	case MailProviderSendGrid:
		if config.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid_api_key is required for the sendgrid mail provider")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", config.Mail.Provider)
	}
	if _, err := time.ParseDuration(config.Mail.Timeout); err != nil {
		return fmt.Errorf("invalid mail timeout: %w", err)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == ModeProduction
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Duration parses one of the already validated duration fields.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
