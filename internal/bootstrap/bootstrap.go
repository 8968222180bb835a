package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appAuth "github.com/acesped/portal/internal/app/auth"
	appControllers "github.com/acesped/portal/internal/app/controllers"
	appMigrations "github.com/acesped/portal/internal/app/migrations"
	appRepos "github.com/acesped/portal/internal/app/repositories"
	"github.com/acesped/portal/internal/app/repositories/memory"
	appRoutes "github.com/acesped/portal/internal/app/routes"
	appServices "github.com/acesped/portal/internal/app/services"
	"github.com/acesped/portal/internal/config"
	"github.com/acesped/portal/internal/db"
	appMiddleware "github.com/acesped/portal/internal/middleware"
	pkgAuth "github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/email"
	"github.com/acesped/portal/internal/pkg/logger"
)

const serviceName = "acesped-portal"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config         *config.Config
	Logger         zerolog.Logger
	DB             *db.PostgresDB // nil with the memory driver
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Dispatcher     *email.Dispatcher
	Services       *appServices.Services
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    *appRoutes.Controllers
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   cfg.Logging.Level,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: serviceName,
	})
	lgr.Info().
		Str("logLevel", logger.ParseLevel(cfg.Logging.Level).String()).
		Str("logFormat", cfg.Logging.Format).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured store. With the postgres driver it
// connects, optionally migrates, and returns the pool for shutdown; with the
// memory driver the returned *db.PostgresDB is nil.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, *appRepos.Repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return nil, memory.NewRepositories(memory.NewStore()), nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(ctx, database, lgr); err != nil {
			database.Close()
			return nil, nil, err
		}
	}

	return database, appRepos.NewPostgresRepositories(database), nil
}

// RunMigrations applies the embedded SQL migrations.
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// NewNotifier picks the mail transport named by cfg.Mail.Provider.
func NewNotifier(cfg *config.Config, lgr zerolog.Logger) email.Notifier {
	switch cfg.Mail.Provider {
	case config.MailProviderSMTP:
		return email.NewSMTPNotifier(email.SMTPConfig{
			Host:      cfg.Mail.SMTPHost,
			Port:      cfg.Mail.SMTPPort,
			Username:  cfg.Mail.SMTPUsername,
			Password:  cfg.Mail.SMTPPassword,
			FromName:  cfg.Mail.FromName,
			FromEmail: cfg.Mail.FromEmail,
			UseTLS:    cfg.Mail.SMTPPort == 465,
		}, lgr)
	case config.MailProviderSendGrid:
		return email.NewSendGridNotifier(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	default:
		return email.NewLogNotifier(lgr)
	}
}

// AdmissionConfig converts the admission section into service rules.
func AdmissionConfig(cfg *config.Config) appServices.AdmissionConfig {
	return appServices.AdmissionConfig{
		MinApprovalScore:  cfg.Admission.MinApprovalScore,
		ApplicationPrefix: cfg.Admission.ApplicationPrefix,
		MatricPrefix:      cfg.Admission.MatricPrefix,
		InterviewLeadDays: cfg.Admission.InterviewLeadDays,
	}
}

// BuildServices wires the service layer. The returned dispatcher must be
// shut down to flush pending notifications.
func BuildServices(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*appServices.Services, *pkgAuth.JWTService, *appAuth.AuthorizationService, *email.Dispatcher) {
	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	authz := appAuth.NewAuthorizationService(repos.Courses)
	dispatcher := email.NewDispatcher(NewNotifier(cfg, lgr), config.Duration(cfg.Mail.Timeout, 15*time.Second), lgr)

	svc := appServices.NewServices(appServices.Deps{
		Repos:      repos,
		Notifier:   dispatcher,
		JWT:        jwtService,
		Authorizer: authz,
		Admission:  AdmissionConfig(cfg),
		Logger:     lgr,
	})
	return svc, jwtService, authz, dispatcher
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, repos *appRepos.Repositories, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Config: cfg, Logger: lgr, DB: database, Repos: repos}
	deps.Services, deps.JWTService, deps.AuthzService, deps.Dispatcher = BuildServices(cfg, repos, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.JWT.CookieName)

	var pinger appControllers.Pinger
	if database != nil {
		pinger = database
	}
	svc := deps.Services
	deps.Controllers = &appRoutes.Controllers{
		Admission:    appControllers.NewAdmissionController(svc.Admission),
		Student:      appControllers.NewStudentController(svc.Student),
		Registration: appControllers.NewRegistrationController(svc.Registration, svc.Result),
		Academic:     appControllers.NewAcademicController(svc.Academic),
		AccessCode:   appControllers.NewAccessCodeController(svc.AccessCode),
		Settings:     appControllers.NewSettingsController(svc.Settings),
		Auth: appControllers.NewAuthController(svc.Auth, appControllers.SessionCookie{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.JWT.CookieSecure,
		}, lgr),
		User:   appControllers.NewUserController(svc.Auth),
		Health: appControllers.NewHealthController(pinger),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}
	appMiddleware.SetDebugMode(!cfg.IsProduction())

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(lgr),
	)
	if cfg.Metrics.Enabled {
		router.Use(appMiddleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}
