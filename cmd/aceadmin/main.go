// Command aceadmin runs one-off maintenance tasks against the portal database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/app/models/dto"
	"github.com/acesped/portal/internal/bootstrap"
	"github.com/acesped/portal/internal/config"
	"github.com/acesped/portal/internal/pkg/auth"
	"github.com/acesped/portal/internal/pkg/logger"
	"github.com/acesped/portal/internal/seed"
)

func main() {
	app := &cli.App{
		Name:  "aceadmin",
		Usage: "ACE-SPED portal maintenance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   filepath.Join("configs", "config.yaml"),
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to the YAML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: migrate,
			},
			{
				Name:  "seed",
				Usage: "create the default admin, active session and sample catalogue",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin-email", Value: seed.DefaultOptions().AdminEmail},
					&cli.StringFlag{Name: "admin-password", EnvVars: []string{"ACE_ADMIN_PASSWORD"}, Required: true},
					&cli.BoolFlag{Name: "sample-catalogue", Value: true},
				},
				Action: seedData,
			},
			{
				Name:      "set-session",
				Usage:     "set the active academic session",
				ArgsUsage: "<session> <semester>",
				Action:    setSession,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("aceadmin failed")
		os.Exit(1)
	}
}

func migrate(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return errors.New("migrate requires the postgres driver")
	}
	// SetupStorage migrates on its own when auto_migrate is on.
	cfg.Database.AutoMigrate = false
	database, _, err := bootstrap.SetupStorage(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()
	return bootstrap.RunMigrations(c.Context, database, lgr)
}

func seedData(c *cli.Context) error {
	return withServices(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		opts := seed.DefaultOptions()
		opts.AdminEmail = c.String("admin-email")
		opts.AdminPassword = c.String("admin-password")
		opts.SampleCatalogue = c.Bool("sample-catalogue")
		return seed.CreateDefaultData(ctx, deps.Services, opts, deps.Logger)
	})
}

func setSession(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: aceadmin set-session <session> <semester>", 2)
	}
	return withServices(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
		principal := auth.Principal{Kind: auth.KindStaff, Role: models.RoleSuperAdmin}
		session, err := deps.Services.Settings.UpdateActiveSession(ctx, principal, &dto.UpdateAcademicSessionRequest{
			Session:  c.Args().Get(0),
			Semester: c.Args().Get(1),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "active session: %s %s (version %d)\n", session.Session, session.Semester, session.Version)
		return nil
	})
}

// withServices opens storage, wires the service layer and tears both down
// after fn, waiting for any notifications fn queued.
func withServices(c *cli.Context, fn func(context.Context, *bootstrap.Dependencies) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	database, repos, err := bootstrap.SetupStorage(c.Context, cfg, lgr)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	deps := bootstrap.BuildDependencies(cfg, database, repos, lgr)
	defer deps.Dispatcher.Wait()

	return fn(c.Context, deps)
}
