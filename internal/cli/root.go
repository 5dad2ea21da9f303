package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/alexanderramin/tempo/internal/logging"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds the configuration and wired services shared by every command.
// Fields left nil are filled in by Open from the loaded configuration, so
// tests can pre-wire an in-memory database.
type App struct {
	ConfigPath string
	Config     config.Config
	Logger     *slog.Logger
	Now        func() time.Time

	DB       *sql.DB
	Sessions service.SessionService
	Queries  service.QueryService
	Tags     service.TagService
	Users    service.UserService
	Logins   *identity.TokenAuthenticator
	Metrics  *telemetry.Metrics

	// IsInteractive reports whether prompts and TUIs may be shown.
	IsInteractive func() bool

	ownsDB bool
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Personal time tracking: schedule, run and review focus sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.Open()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.Close()
		},
	}
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", os.Getenv("TEMPO_CONFIG"), "Path to a YAML config file")

	root.AddCommand(
		newServeCmd(app),
		newMigrateCmd(app),
		newUserCmd(app),
		newTagCmd(app),
		newSessionCmd(app),
		newPlanCmd(app),
		newHistoryCmd(app),
		newAnalyticsCmd(app),
		newWatchCmd(app),
		newImportCmd(app),
		newExportCmd(app),
	)
	return root
}

// Open loads configuration and wires everything that is not already set.
func (a *App) Open() error {
	if a.Now == nil {
		a.Now = func() time.Time { return time.Now().UTC() }
	}
	if a.DB == nil {
		cfg, err := config.Load(a.ConfigPath)
		if err != nil {
			return err
		}
		a.Config = cfg
		database, err := db.OpenDB(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		a.DB = database
		a.ownsDB = true
	}
	if a.Logger == nil {
		logger, err := logging.New(a.Config.Log, os.Stderr, a.Config.Telemetry.ServiceName)
		if err != nil {
			return err
		}
		a.Logger = logger
	}
	if a.IsInteractive == nil {
		a.IsInteractive = func() bool { return false }
	}
	a.wire()
	return nil
}

func (a *App) wire() {
	if a.Metrics == nil && a.Config.Telemetry.Metrics {
		a.Metrics = telemetry.NewMetrics(prometheus.NewRegistry())
	}
	observers := []service.UseCaseObserver{service.NewLogUseCaseObserver(a.Logger)}
	if a.Metrics != nil {
		observers = append(observers, a.Metrics)
	}
	opts := []service.Option{
		service.WithClock(a.Now),
		service.WithObserver(service.CombineObservers(observers...)),
	}

	uow := db.NewSQLiteUnitOfWork(a.DB)
	sessionRepo := repository.NewSQLiteSessionRepo(a.DB)
	userRepo := repository.NewSQLiteUserRepo(a.DB)

	if a.Sessions == nil {
		a.Sessions = service.NewSessionService(sessionRepo, repository.NewSQLiteBreakRepo(a.DB), uow, opts...)
	}
	if a.Queries == nil {
		a.Queries = service.NewQueryService(sessionRepo, userRepo, opts...)
	}
	if a.Tags == nil {
		a.Tags = service.NewTagService(repository.NewSQLiteTagRepo(a.DB), uow, opts...)
	}
	if a.Users == nil {
		a.Users = service.NewUserService(userRepo, uow, opts...)
	}
	if a.Logins == nil {
		a.Logins = identity.NewTokenAuthenticator(
			repository.NewSQLiteAuthSessionRepo(a.DB),
			a.Config.Auth.CookieName,
			a.Config.Auth.MaxAge,
			identity.WithSecureCookie(a.Config.IsProduction()),
			identity.WithTokenClock(a.Now),
		)
	}
}

// Close releases the database when Open created it.
func (a *App) Close() error {
	if a.ownsDB && a.DB != nil {
		err := a.DB.Close()
		a.DB = nil
		a.ownsDB = false
		return err
	}
	return nil
}

// asUser resolves the --as subject to a user, creating it on first use.
func (a *App) asUser(ctx context.Context, subject string) (*domain.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: --as (or TEMPO_USER) is required", domain.ErrValidation)
	}
	return a.Users.Provision(ctx, subject, "")
}

// addUserFlag registers --as, defaulting to $TEMPO_USER.
func addUserFlag(cmd *cobra.Command, subject *string) {
	cmd.Flags().StringVar(subject, "as", os.Getenv("TEMPO_USER"), "Identity subject to act as")
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
