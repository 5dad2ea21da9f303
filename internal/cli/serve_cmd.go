package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tempo/internal/api"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/alexanderramin/tempo/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				app.Config.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// serve runs the HTTP server and, in cookie mode, the login pruner until ctx
// ends, then shuts both down.
func (a *App) serve(ctx context.Context) error {
	cfg := a.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, cfg.App.Env)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.Logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	var auth identity.Authenticator = a.Logins
	if cfg.Auth.Mode == config.AuthModeHeader {
		auth = identity.NewHeaderAuthenticator(a.Users, cfg.Auth.TrustedHeader, cfg.Auth.NameHeader)
	}

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Logger:   a.Logger,
		Sessions: a.Sessions,
		Queries:  a.Queries,
		Tags:     a.Tags,
		Users:    a.Users,
		Auth:     auth,
		Metrics:  a.Metrics,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", srv.Addr, "auth_mode", cfg.Auth.Mode, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Auth.Mode == config.AuthModeCookie {
		var onPruned func(int64)
		if a.Metrics != nil {
			onPruned = func(n int64) { a.Metrics.ExpiredLogins.Add(float64(n)) }
		}
		pruner := identity.NewPruner(a.Logins, cfg.Auth.PruneInterval, a.Logger, onPruned)
		g.Go(func() error { return pruner.Run(gctx) })
	}
	return g.Wait()
}
